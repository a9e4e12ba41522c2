package mesh

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/shape"
)

// ParseNetwork builds a network from its text description.
func ParseNetwork(txt string) (n *Network, err error) {
	s, err := shape.Parse(txt)
	if err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}
	return FromShape(s)
}

// ReadNetwork builds a network from the description in r.
func ReadNetwork(r io.Reader) (n *Network, err error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, resourceErrorf(err, "reading network description")
	}
	return ParseNetwork(string(buf))
}

// LoadNetwork builds a network from the description file at path.
func LoadNetwork(path string) (n *Network, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, resourceErrorf(err, "opening network description")
	}
	defer fh.Close()
	return ReadNetwork(fh)
}

// FromShape builds a network from a parsed description. Statements are
// applied in order: groups, links, input and output, parameters, then
// algorithms.
func FromShape(s *shape.Shape) (n *Network, err error) {
	defer func() {
		if err != nil {
			err = errors.WithMessagef(err, "network %s", s.Name)
			n = nil
		}
	}()
	defer Return(&err)

	kind, err := ParseKind(s.Kind)
	Ck(err)
	n = NewNetwork(s.Name, kind)
	for _, gs := range s.Groups {
		_, err = n.CreateGroup(gs.Name, gs.Size, gs.Bias, gs.Recurrent)
		Ck(err)
		if gs.Act != "" {
			Ck(n.SetActFunc(gs.Name, gs.Act))
		}
		if gs.Err != "" {
			Ck(n.SetErrFunc(gs.Name, gs.Err))
		}
	}
	for _, l := range s.Links {
		switch l.Op {
		case "bias":
			_, err = n.AttachBias(l.To)
		case "connect":
			_, err = n.Connect(l.From, l.To)
		case "elman":
			err = n.Elman(l.From, l.To)
		case "tunnel":
			r := l.Ranges
			_, err = n.Tunnel(l.From, r[0], r[1], l.To, r[2], r[3])
		case "freeze":
			err = n.Freeze(l.From, l.To)
		default:
			err = configErrorf("unknown link statement: %s", l.Op)
		}
		Ck(err)
	}
	if s.Input != "" {
		Ck(n.SetInputGroup(s.Input))
	}
	if s.Output != "" {
		Ck(n.SetOutputGroup(s.Output))
	}
	for _, p := range s.Params {
		v, perr := strconv.ParseFloat(p.Value, 64)
		if perr != nil {
			Ck(configErrorf("parameter %s: %v", p.Name, perr))
		}
		Ck(n.SetParam(p.Name, v))
	}
	for _, a := range s.Algorithms {
		switch a.Name {
		case "random":
			err = n.SetRandomAlgorithm(a.Value)
		case "learn":
			err = n.SetLearningAlgorithm(a.Value)
		case "update":
			err = n.SetUpdateAlgorithm(a.Value)
		case "order":
			err = n.SetTrainingOrder(a.Value)
		case "similarity":
			err = n.SetSimilarityMetric(a.Value)
		default:
			err = configErrorf("unknown algorithm kind: %s", a.Name)
		}
		Ck(err)
	}
	return
}
