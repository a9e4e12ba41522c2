package mesh

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	. "github.com/stevegt/goadapt"
)

// SaveWeights writes the weights of every connection that is not
// frozen. Each connection is a header line "<from> -> <to>" followed by
// one line per matrix row. Values use the shortest representation that
// reads back to the same float64.
func (n *Network) SaveWeights(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	for _, c := range n.conns.Elements() {
		if c.Frozen {
			continue
		}
		_, err = bw.WriteString(c.From.name + " -> " + c.To.name + "\n")
		if err != nil {
			return resourceErrorf(err, "writing weights")
		}
		rows, _ := c.Weights.Dims()
		for i := 0; i < rows; i++ {
			row := c.Weights.Row(i)
			parts := make([]string, len(row))
			for j, x := range row {
				parts[j] = strconv.FormatFloat(x, 'g', -1, 64)
			}
			_, err = bw.WriteString(strings.Join(parts, " ") + "\n")
			if err != nil {
				return resourceErrorf(err, "writing weights")
			}
		}
	}
	err = bw.Flush()
	if err != nil {
		return resourceErrorf(err, "writing weights")
	}
	return
}

// SaveWeightsFile writes the weights to the named file.
func (n *Network) SaveWeightsFile(path string) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return resourceErrorf(err, "cannot create weight file")
	}
	err = n.SaveWeights(fh)
	cerr := fh.Close()
	if err == nil && cerr != nil {
		err = resourceErrorf(cerr, "closing weight file")
	}
	return
}

var weightHeaderRe = regexp.MustCompile(`^(\S+)\s+->\s+(\S+)$`)

type weightRecord struct {
	from, to string
	rows     [][]float64
	line     int
}

// readWeightRecords splits a weight file into header records and their
// rows.
func readWeightRecords(r io.Reader) (recs []*weightRecord, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := weightHeaderRe.FindStringSubmatch(line); m != nil {
			recs = append(recs, &weightRecord{from: m[1], to: m[2], line: lineno})
			continue
		}
		if len(recs) == 0 {
			return nil, dataErrorf("weights:%d: values before first header", lineno)
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for j, f := range fields {
			row[j], err = strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, dataErrorf("weights:%d: %v", lineno, err)
			}
		}
		rec := recs[len(recs)-1]
		rec.rows = append(rec.rows, row)
	}
	if err = sc.Err(); err != nil {
		return nil, resourceErrorf(err, "reading weights")
	}
	return
}

// match returns the connection rec names, or nil, and checks that the
// record's shape fits it.
func (rec *weightRecord) match(n *Network) (c *Connection, err error) {
	c = n.Connection(rec.from, rec.to)
	if c == nil {
		return
	}
	rows, cols := c.Weights.Dims()
	if len(rec.rows) != rows {
		return nil, dataErrorf("weights:%d: %s -> %s has %d rows, want %d", rec.line, rec.from, rec.to, len(rec.rows), rows)
	}
	for i, row := range rec.rows {
		if len(row) != cols {
			return nil, dataErrorf("weights:%d: %s -> %s row %d has %d values, want %d", rec.line, rec.from, rec.to, i+1, len(row), cols)
		}
	}
	return
}

// LoadWeights reads weights written by SaveWeights. Every record is
// checked against the network before any weight changes. Records that
// name no connection are skipped and reported in a data error once the
// other records have been loaded.
func (n *Network) LoadWeights(r io.Reader) (err error) {
	defer Return(&err)
	recs, err := readWeightRecords(r)
	Ck(err)

	matched := make(map[*weightRecord]*Connection)
	var unmatched []string
	for _, rec := range recs {
		c, err := rec.match(n)
		Ck(err)
		if c == nil {
			unmatched = append(unmatched, rec.from+" -> "+rec.to)
			continue
		}
		matched[rec] = c
	}

	for _, rec := range recs {
		c, ok := matched[rec]
		if !ok {
			continue
		}
		for i, row := range rec.rows {
			copy(c.Weights.Row(i), row)
		}
	}
	if len(unmatched) > 0 {
		return dataErrorf("no matching connection for: %s", strings.Join(unmatched, ", "))
	}
	return
}

// LoadWeightsFile reads weights from the named file.
func (n *Network) LoadWeightsFile(path string) (err error) {
	fh, err := os.Open(path)
	if err != nil {
		return resourceErrorf(err, "cannot open weight file")
	}
	defer fh.Close()
	return n.LoadWeights(fh)
}
