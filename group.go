package mesh

import (
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/array"
	"github.com/stevegt/mesh/num"
)

// Default per-group parameters.
const (
	DefaultReluAlpha   = 0.1
	DefaultLogisticFSC = 0.1
)

// Group is a layer of units.
type Group struct {
	name string
	// Vector holds the unit activations.
	Vector *num.Vector
	// Error holds the error signal of each unit.
	Error *num.Vector
	Act   ActFunc
	Err   ErrFunc
	// Bias groups are size 1 and always active at 1.0.
	Bias bool
	// Recurrent groups receive their own previous activation through
	// a self connection when the network is unfolded.
	Recurrent   bool
	ReluAlpha   float64
	LogisticFSC float64

	// Incoming and Outgoing hold this group's half of each connection.
	Incoming *array.Array[*Link]
	Outgoing *array.Array[*Link]
	// Context lists the groups that receive a copy of this group's
	// activation before each event of a sequence.
	Context *array.Array[*Group]

	// loop is the self connection of a recurrent group.
	loop *Connection
	// refs indexes every connection touching this group by ID.
	refs map[int]*Connection
	// contextOf lists the groups that name this group as context.
	contextOf *array.Array[*Group]
	// idx is the group's position in declared order.
	idx    int
	lookup *LookupTable
}

func newGroup(name string, size int, bias, recurrent bool) (g *Group) {
	Assert(size > 0, "group %s: size %d", name, size)
	g = &Group{
		name:        name,
		Vector:      num.NewVector(size),
		Error:       num.NewVector(size),
		Bias:        bias,
		Recurrent:   recurrent,
		ReluAlpha:   DefaultReluAlpha,
		LogisticFSC: DefaultLogisticFSC,
		Incoming:    array.New[*Link](),
		Outgoing:    array.New[*Link](),
		Context:     array.New[*Group](),
		refs:        make(map[int]*Connection),
		contextOf:   array.New[*Group](),
	}
	var err error
	g.Act, err = actFuncs("linear")
	Ck(err)
	g.Err, err = errFuncs("sum_of_squares")
	Ck(err)
	if bias {
		g.Vector.Fill(1)
	}
	return
}

// Name returns the group's name.
func (g *Group) Name() string {
	return g.name
}

// Size returns the number of units.
func (g *Group) Size() int {
	return g.Vector.Len()
}

// Loop returns the self connection of a recurrent group, or nil.
func (g *Group) Loop() *Connection {
	return g.loop
}

// References returns the connections touching g, in no particular
// order.
func (g *Group) References() (conns []*Connection) {
	for _, c := range g.refs {
		conns = append(conns, c)
	}
	return
}

// ContextOf returns the groups that copy their activation into g.
func (g *Group) ContextOf() []*Group {
	return g.contextOf.Elements()
}

// buildLookup tabulates the group's activation function when enabled.
func (g *Group) buildLookup(enabled bool) {
	g.lookup = nil
	if !enabled {
		return
	}
	a, ok := g.Act.(*elementwise)
	if !ok {
		return
	}
	g.lookup = newLookupTable(func(x float64) float64 { return a.f(g, x) })
}
