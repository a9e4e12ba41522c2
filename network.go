package mesh

import (
	"math/rand"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/array"
)

// Status is a snapshot of training progress.
type Status struct {
	Epoch     int
	Error     float64
	PrevError float64
	// WeightCost is the sum of squared weights.
	WeightCost float64
	// GradientLinearity is the negative cosine between the previous
	// weight deltas and the current gradients.
	GradientLinearity float64
	LastDeltasLength  float64
	GradientsLength   float64
	// SDScaleFactor is the step scale used by bounded steepest descent.
	SDScaleFactor float64
}

// Network is a set of groups wired by connections, together with its
// hyperparameters, selected algorithms and training sets.
//
// A Network does no locking. Structural edits must not overlap a
// training or test pass.
type Network struct {
	name string
	Kind Kind

	groups *array.Array[*Group]
	conns  *array.Array[*Connection]
	nextID int

	Input  *Group
	Output *Group
	// Initialized is set by Init and cleared by any change that
	// requires weights or dynamic parameters to be set up again.
	Initialized bool

	Params Params
	Random RandomAlgo
	Learn  LearnAlgo
	Update UpdateAlgo
	Order  TrainOrder

	// Similarity is the metric SimilarityMatrix compares with.
	Similarity SimilarityMetric
	Status     Status

	sets   *array.Array[*Set]
	Active *Set
	// stage and stageSet are set during multi-stage training.
	stage    *Group
	stageSet *Set

	// Unfolded is the replica arena of an initialized RNN.
	Unfolded *Unfolded

	rng  *rand.Rand
	log  *logrus.Logger
	stop atomic.Bool
	// live is the replica view of the groups' own buffers.
	live *Replica
	// itemItr is the position of the next item within an epoch.
	itemItr int
}

// NewNetwork returns an empty network of the given kind with default
// parameters.
func NewNetwork(name string, kind Kind) (n *Network) {
	n = &Network{
		name:   name,
		Kind:   kind,
		groups: array.New[*Group](),
		conns:  array.New[*Connection](),
		Params: DefaultParams(),
		Random: Range,
		Update: Steepest,
		sets:   array.New[*Set](),
		log:    logrus.StandardLogger(),
	}
	if kind == RNN {
		n.Learn = BPTT
	}
	n.rng = rand.New(rand.NewSource(n.Params.RandomSeed))
	return
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// SetLogger replaces the logger progress reports are written to.
func (n *Network) SetLogger(log *logrus.Logger) {
	n.log = log
}

// Logger returns the network's logger.
func (n *Network) Logger() *logrus.Logger {
	return n.log
}

// Groups returns the groups in declared order.
func (n *Network) Groups() []*Group {
	return n.groups.Elements()
}

// FindGroup returns the named group, or nil.
func (n *Network) FindGroup(name string) *Group {
	g, _ := n.groups.Find(name)
	return g
}

// Connections returns every connection in creation order, including
// recurrent self connections.
func (n *Network) Connections() []*Connection {
	return n.conns.Elements()
}

// Connection returns the connection from one named group to another,
// or nil. A group named twice refers to its self connection.
func (n *Network) Connection(from, to string) *Connection {
	fg, tg := n.FindGroup(from), n.FindGroup(to)
	if fg == nil || tg == nil {
		return nil
	}
	return n.findConnection(fg, tg)
}

func (n *Network) findConnection(from, to *Group) *Connection {
	if from == to {
		return from.loop
	}
	for _, l := range from.Outgoing.Elements() {
		if l.Group == to {
			return l.conn
		}
	}
	return nil
}

// invalidate marks the network as needing Init after a structural
// change.
func (n *Network) invalidate() {
	n.Initialized = false
	n.Unfolded = nil
	n.live = nil
}

func (n *Network) reindex() {
	for i, g := range n.groups.Elements() {
		g.idx = i
	}
	for i, c := range n.conns.Elements() {
		c.idx = i
	}
}

func (n *Network) lookupGroup(name string) (g *Group, err error) {
	g = n.FindGroup(name)
	if g == nil {
		err = configErrorf("no such group: %s", name)
	}
	return
}

// CreateGroup appends a group of size units with linear activation and
// sum of squares error. A recurrent group gets a self connection and
// is only allowed in an RNN.
func (n *Network) CreateGroup(name string, size int, bias, recurrent bool) (g *Group, err error) {
	switch {
	case name == "":
		return nil, configErrorf("group name must not be empty")
	case n.FindGroup(name) != nil:
		return nil, configErrorf("group already exists: %s", name)
	case size <= 0:
		return nil, configErrorf("group %s: size must be positive: %d", name, size)
	case bias && size != 1:
		return nil, configErrorf("bias group %s must have size 1", name)
	case bias && recurrent:
		return nil, configErrorf("bias group %s cannot be recurrent", name)
	case recurrent && n.Kind != RNN:
		return nil, configErrorf("recurrent group %s requires an %s network", name, RNN)
	}
	g = newGroup(name, size, bias, false)
	n.groups.Add(g)
	if recurrent {
		n.addConnection(g, g)
	}
	n.reindex()
	n.invalidate()
	return
}

// DisposeGroup removes the named group after severing every
// connection and context link that refers to it.
func (n *Network) DisposeGroup(name string) (err error) {
	g, err := n.lookupGroup(name)
	if err != nil {
		return
	}
	for _, c := range g.References() {
		n.removeConnection(c)
	}
	for _, h := range g.contextOf.Elements() {
		h.Context.Remove(g)
	}
	for _, h := range g.Context.Elements() {
		h.contextOf.Remove(g)
	}
	g.contextOf.Dispose(nil)
	g.Context.Dispose(nil)
	if n.Input == g {
		n.Input = nil
	}
	if n.Output == g {
		n.Output = nil
	}
	if n.stage == g {
		n.ClearMultiStage()
	}
	Assert(n.groups.Remove(g), "group %s not registered", g.name)
	n.reindex()
	n.invalidate()
	return
}

// SetInputGroup designates the named group as the network input.
func (n *Network) SetInputGroup(name string) (err error) {
	g, err := n.lookupGroup(name)
	if err != nil {
		return
	}
	n.Input = g
	n.invalidate()
	return
}

// SetOutputGroup designates the named group as the network output.
func (n *Network) SetOutputGroup(name string) (err error) {
	g, err := n.lookupGroup(name)
	if err != nil {
		return
	}
	n.Output = g
	n.invalidate()
	return
}

// SetActFunc selects the activation function of the named group.
func (n *Network) SetActFunc(group, name string) (err error) {
	g, err := n.lookupGroup(group)
	if err != nil {
		return
	}
	act, err := actFuncs(name)
	if err != nil {
		return
	}
	g.Act = act
	g.lookup = nil
	n.Initialized = false
	return
}

// SetErrFunc selects the error function of the named group.
func (n *Network) SetErrFunc(group, name string) (err error) {
	g, err := n.lookupGroup(group)
	if err != nil {
		return
	}
	ef, err := errFuncs(name)
	if err != nil {
		return
	}
	g.Err = ef
	return
}

// AttachBias creates a bias group named <group>_bias and connects it
// to the named group.
func (n *Network) AttachBias(group string) (bg *Group, err error) {
	g, err := n.lookupGroup(group)
	if err != nil {
		return
	}
	name := g.name + "_bias"
	if n.FindGroup(name) != nil {
		return nil, configErrorf("group already exists: %s", name)
	}
	bg, err = n.CreateGroup(name, 1, true, false)
	if err != nil {
		return
	}
	n.addConnection(bg, g)
	return
}

// addConnection allocates a connection and records it in the registry,
// both groups' adjacency lists and both back-reference indexes.
func (n *Network) addConnection(from, to *Group) (c *Connection) {
	c = newConnection(n.nextID, from, to)
	n.nextID++
	if from == to {
		from.loop = c
		from.Recurrent = true
	} else {
		from.Outgoing.Add(&Link{Group: to, conn: c})
		to.Incoming.Add(&Link{Group: from, conn: c})
	}
	from.refs[c.ID] = c
	to.refs[c.ID] = c
	n.conns.Add(c)
	n.reindex()
	n.invalidate()
	return
}

func removeLink(links *array.Array[*Link], c *Connection) (ok bool) {
	for _, l := range links.Elements() {
		if l.conn == c {
			return links.Remove(l)
		}
	}
	return
}

// removeConnection undoes addConnection.
func (n *Network) removeConnection(c *Connection) {
	if c.IsLoop() {
		c.From.loop = nil
		c.From.Recurrent = false
	} else {
		ok := removeLink(c.From.Outgoing, c) && removeLink(c.To.Incoming, c)
		Assert(ok, "missing twin record for %s -> %s", c.From.name, c.To.name)
	}
	delete(c.From.refs, c.ID)
	delete(c.To.refs, c.ID)
	Assert(n.conns.Remove(c), "connection %s -> %s not registered", c.From.name, c.To.name)
	n.reindex()
	n.invalidate()
}

// Connect creates a connection between two named groups. Naming the
// same group twice makes it self recurrent, which only an RNN allows.
func (n *Network) Connect(from, to string) (c *Connection, err error) {
	fg, err := n.lookupGroup(from)
	if err != nil {
		return
	}
	tg, err := n.lookupGroup(to)
	if err != nil {
		return
	}
	if fg == tg {
		if n.Kind != RNN {
			return nil, configErrorf("recurrent connection %s -> %s requires an %s network", from, to, RNN)
		}
		if fg.Bias {
			return nil, configErrorf("bias group %s cannot be recurrent", from)
		}
	}
	if n.findConnection(fg, tg) != nil {
		return nil, configErrorf("connection already exists: %s -> %s", from, to)
	}
	c = n.addConnection(fg, tg)
	return
}

// Disconnect removes the connection between two named groups.
func (n *Network) Disconnect(from, to string) (err error) {
	c, err := n.lookupConnection(from, to)
	if err != nil {
		return
	}
	n.removeConnection(c)
	return
}

func (n *Network) lookupConnection(from, to string) (c *Connection, err error) {
	fg, err := n.lookupGroup(from)
	if err != nil {
		return
	}
	tg, err := n.lookupGroup(to)
	if err != nil {
		return
	}
	c = n.findConnection(fg, tg)
	if c == nil {
		err = configErrorf("no such connection: %s -> %s", from, to)
	}
	return
}

// Elman makes to a context group of from: before each event after the
// first, from's activation is copied into to.
func (n *Network) Elman(from, to string) (err error) {
	fg, err := n.lookupGroup(from)
	if err != nil {
		return
	}
	tg, err := n.lookupGroup(to)
	if err != nil {
		return
	}
	switch {
	case fg == tg:
		return configErrorf("copy connection %s -> %s is recurrent", from, to)
	case fg.Size() != tg.Size():
		return configErrorf("copy connection %s -> %s: sizes differ (%d and %d)", from, to, fg.Size(), tg.Size())
	case fg.Context.Contains(tg):
		return configErrorf("copy connection already exists: %s -> %s", from, to)
	}
	fg.Context.Add(tg)
	tg.contextOf.Add(fg)
	tg.Vector.Fill(n.Params.InitContextUnits)
	return
}

// RemoveElman removes a copy connection created with Elman.
func (n *Network) RemoveElman(from, to string) (err error) {
	fg, err := n.lookupGroup(from)
	if err != nil {
		return
	}
	tg, err := n.lookupGroup(to)
	if err != nil {
		return
	}
	if !fg.Context.Remove(tg) {
		return configErrorf("no such copy connection: %s -> %s", from, to)
	}
	tg.contextOf.Remove(fg)
	return
}

// Tunnel creates a frozen connection that copies units s1..e1 of from
// onto units s2..e2 of to. Bounds are 1-based and inclusive.
func (n *Network) Tunnel(from string, s1, e1 int, to string, s2, e2 int) (c *Connection, err error) {
	fg, err := n.lookupGroup(from)
	if err != nil {
		return
	}
	tg, err := n.lookupGroup(to)
	if err != nil {
		return
	}
	switch {
	case fg == tg:
		return nil, configErrorf("tunnel %s -> %s is recurrent", from, to)
	case fg.Recurrent:
		return nil, configErrorf("cannot tunnel from recurrent group %s", from)
	case n.findConnection(fg, tg) != nil:
		return nil, configErrorf("connection already exists: %s -> %s", from, to)
	case s1 < 1 || e1 < s1 || e1 > fg.Size():
		return nil, configErrorf("tunnel range [%d:%d] out of bounds for %s (size %d)", s1, e1, from, fg.Size())
	case s2 < 1 || e2 < s2 || e2 > tg.Size():
		return nil, configErrorf("tunnel range [%d:%d] out of bounds for %s (size %d)", s2, e2, to, tg.Size())
	case e1-s1 != e2-s2:
		return nil, configErrorf("tunnel ranges differ in length: [%d:%d] and [%d:%d]", s1, e1, s2, e2)
	}
	c = n.addConnection(fg, tg)
	for k := 0; k <= e1-s1; k++ {
		c.Weights.Set(s1-1+k, s2-1+k, 1)
	}
	c.Frozen = true
	return
}

// Freeze exempts a connection from weight updates.
func (n *Network) Freeze(from, to string) (err error) {
	c, err := n.lookupConnection(from, to)
	if err != nil {
		return
	}
	c.Frozen = true
	return
}

// Unfreeze undoes Freeze.
func (n *Network) Unfreeze(from, to string) (err error) {
	c, err := n.lookupConnection(from, to)
	if err != nil {
		return
	}
	c.Frozen = false
	return
}

// Interrupt asks a running Train or Test to return after the current
// item.
func (n *Network) Interrupt() {
	n.stop.Store(true)
}

// interrupted reports and clears a pending interrupt.
func (n *Network) interrupted() bool {
	return n.stop.Swap(false)
}
