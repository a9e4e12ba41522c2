package mesh

import (
	"bufio"
	"io"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"

	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/array"
	"github.com/stevegt/mesh/num"
)

// Event is one step of an item. Target is nil when the event has none.
type Event struct {
	Input  *num.Vector
	Target *num.Vector
}

// Item is a named sequence of events.
type Item struct {
	name   string
	Meta   string
	Events []*Event
}

// Name returns the item's name.
func (it *Item) Name() string {
	return it.name
}

// Set is a named collection of items together with the order they are
// presented in.
type Set struct {
	name  string
	Items *array.Array[*Item]
	// Order holds item indices in presentation order.
	Order []int
}

// Name returns the set's name.
func (s *Set) Name() string {
	return s.name
}

// NewSet returns an empty set.
func NewSet(name string) *Set {
	return &Set{name: name, Items: array.New[*Item]()}
}

// AddItem appends an item and resets the presentation order.
func (s *Set) AddItem(name, meta string, events ...*Event) (it *Item) {
	it = &Item{name: name, Meta: meta, Events: events}
	s.Items.Add(it)
	s.OrderItems()
	return
}

// OrderItems presents items in storage order.
func (s *Set) OrderItems() {
	s.Order = make([]int, s.Items.Len())
	for i := range s.Order {
		s.Order[i] = i
	}
}

// Permute presents every item once, in random order.
func (s *Set) Permute(rng *rand.Rand) {
	s.Order = rng.Perm(s.Items.Len())
}

// Randomize presents items drawn at random with replacement.
func (s *Set) Randomize(rng *rand.Rand) {
	if len(s.Order) != s.Items.Len() {
		s.Order = make([]int, s.Items.Len())
	}
	for i := range s.Order {
		s.Order[i] = rng.Intn(s.Items.Len())
	}
}

var headerRe = regexp.MustCompile(`^Name\s+"([^"]*)"\s+(\d+)(?:\s+"([^"]*)")?\s*$`)

// ParseSet reads a set from r. inSize and outSize are the sizes of the
// network's input and output groups.
func ParseSet(name string, r io.Reader, inSize, outSize int) (s *Set, err error) {
	defer Return(&err)
	set := NewSet(name)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineno := 0
	next := func() (line string, ok bool) {
		for sc.Scan() {
			lineno++
			line = strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}
	for {
		line, ok := next()
		if !ok {
			break
		}
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			return nil, dataErrorf("%s:%d: expected item header, got %q", name, lineno, line)
		}
		count, err := strconv.Atoi(m[2])
		if err != nil || count < 1 {
			return nil, dataErrorf("%s:%d: bad event count %q", name, lineno, m[2])
		}
		// the count is untrusted, so events grow as lines arrive
		var events []*Event
		for len(events) < count {
			line, ok := next()
			if !ok {
				return nil, dataErrorf("%s: item %q: expected %d events, got %d", name, m[1], count, len(events))
			}
			ev, err := parseEvent(line, inSize, outSize)
			Ck(err, "%s:%d", name, lineno)
			events = append(events, ev)
		}
		set.Items.Add(&Item{name: m[1], Meta: m[3], Events: events})
	}
	if err = sc.Err(); err != nil {
		return nil, resourceErrorf(err, "reading %s", name)
	}
	if set.Items.Len() == 0 {
		return nil, dataErrorf("%s: no items", name)
	}
	set.OrderItems()
	s = set
	return
}

// parseEvent parses "Input v1 .. vn [Target t1 .. tm]".
func parseEvent(line string, inSize, outSize int) (ev *Event, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "Input" {
		return nil, dataErrorf("expected Input, got %q", line)
	}
	fields = fields[1:]
	ev = &Event{}
	ev.Input, fields, err = parseFloats(fields, inSize, "input")
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return
	}
	if fields[0] != "Target" {
		return nil, dataErrorf("expected Target, got %q", fields[0])
	}
	ev.Target, fields, err = parseFloats(fields[1:], outSize, "target")
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, dataErrorf("trailing fields: %v", fields)
	}
	return
}

// parseFloats consumes exactly size values from fields.
func parseFloats(fields []string, size int, what string) (v *num.Vector, rest []string, err error) {
	v = num.NewVector(size)
	for i := 0; i < size; i++ {
		if i >= len(fields) || fields[i] == "Target" {
			return nil, nil, dataErrorf("%s has %d values, want %d", what, i, size)
		}
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, nil, dataErrorf("%s value %d: %v", what, i+1, err)
		}
		v.Set(i, x)
	}
	rest = fields[size:]
	if len(rest) > 0 && rest[0] != "Target" {
		return nil, nil, dataErrorf("%s has more than %d values", what, size)
	}
	return
}

// ReadSet parses a set from r, adds it to the network and makes it the
// active set. On failure the active set is left untouched.
func (n *Network) ReadSet(name string, r io.Reader) (s *Set, err error) {
	if n.Input == nil || n.Output == nil {
		return nil, configErrorf("network %s has no input or output group", n.name)
	}
	if n.FindSet(name) != nil {
		return nil, configErrorf("set already exists: %s", name)
	}
	s, err = ParseSet(name, r, n.Input.Size(), n.Output.Size())
	if err != nil {
		return nil, err
	}
	n.sets.Add(s)
	n.Active = s
	n.itemItr = 0
	return
}

// LoadSet reads the set in the named file. The set is named after the
// file.
func (n *Network) LoadSet(path string) (s *Set, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, resourceErrorf(err, "cannot open set")
	}
	defer fh.Close()
	return n.ReadSet(path, fh)
}

// AddSet adds a set built in code and makes it active.
func (n *Network) AddSet(s *Set) (err error) {
	if n.Input == nil || n.Output == nil {
		return configErrorf("network %s has no input or output group", n.name)
	}
	if n.FindSet(s.name) != nil {
		return configErrorf("set already exists: %s", s.name)
	}
	for _, it := range s.Items.Elements() {
		for _, ev := range it.Events {
			if ev.Input.Len() != n.Input.Size() {
				return dataErrorf("item %s: input size %d, want %d", it.name, ev.Input.Len(), n.Input.Size())
			}
			if ev.Target != nil && ev.Target.Len() != n.Output.Size() {
				return dataErrorf("item %s: target size %d, want %d", it.name, ev.Target.Len(), n.Output.Size())
			}
		}
	}
	n.sets.Add(s)
	n.Active = s
	n.itemItr = 0
	return
}

// Sets returns the loaded sets.
func (n *Network) Sets() []*Set {
	return n.sets.Elements()
}

// FindSet returns the named set, or nil.
func (n *Network) FindSet(name string) *Set {
	s, _ := n.sets.Find(name)
	return s
}

// SelectSet makes the named set active.
func (n *Network) SelectSet(name string) (err error) {
	s := n.FindSet(name)
	if s == nil {
		return configErrorf("no such set: %s", name)
	}
	n.Active = s
	n.itemItr = 0
	return
}

// RemoveSet drops the named set. Removing the active set leaves no set
// active.
func (n *Network) RemoveSet(name string) (err error) {
	s := n.FindSet(name)
	if s == nil {
		return configErrorf("no such set: %s", name)
	}
	n.sets.Remove(s)
	if n.Active == s {
		n.Active = nil
	}
	if n.stageSet == s {
		n.ClearMultiStage()
	}
	return
}
