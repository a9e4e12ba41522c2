package mesh

import (
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/num"
)

// Replica holds one copy of a network's state: an activation and an
// error vector per group, and a gradient matrix per connection.
// Weights always come from the connections themselves. The network's
// live replica is a view of the groups' and connections' own buffers;
// the replicas of an unfolded network own theirs.
type Replica struct {
	acts  []*num.Vector
	errs  []*num.Vector
	grads []*num.Matrix
	// target is the target of the current event, or nil.
	target *num.Vector
}

// Activation returns g's activation vector in this replica.
func (r *Replica) Activation(g *Group) *num.Vector {
	Assert(g.idx < len(r.acts) && r.acts[g.idx].Len() == g.Size(), "replica does not hold group %s", g.name)
	return r.acts[g.idx]
}

// Error returns g's error vector in this replica.
func (r *Replica) Error(g *Group) *num.Vector {
	Assert(g.idx < len(r.errs) && r.errs[g.idx].Len() == g.Size(), "replica does not hold group %s", g.name)
	return r.errs[g.idx]
}

// Gradients returns c's gradient matrix in this replica.
func (r *Replica) Gradients(c *Connection) *num.Matrix {
	Assert(c.idx < len(r.grads), "replica does not hold connection %s -> %s", c.From.name, c.To.name)
	return r.grads[c.idx]
}

// liveReplica returns the replica viewing the network's own buffers.
func (n *Network) liveReplica() *Replica {
	if n.live != nil {
		return n.live
	}
	gs := n.groups.Elements()
	cs := n.conns.Elements()
	r := &Replica{
		acts:  make([]*num.Vector, len(gs)),
		errs:  make([]*num.Vector, len(gs)),
		grads: make([]*num.Matrix, len(cs)),
	}
	for i, g := range gs {
		r.acts[i] = g.Vector
		r.errs[i] = g.Error
	}
	for i, c := range cs {
		r.grads[i] = c.Gradients
	}
	n.live = r
	return r
}

// newReplica allocates a replica with buffers of its own. Bias units
// start at 1.
func (n *Network) newReplica() (r *Replica) {
	gs := n.groups.Elements()
	cs := n.conns.Elements()
	r = &Replica{
		acts:  make([]*num.Vector, len(gs)),
		errs:  make([]*num.Vector, len(gs)),
		grads: make([]*num.Matrix, len(cs)),
	}
	for i, g := range gs {
		r.acts[i] = num.NewVector(g.Size())
		r.errs[i] = num.NewVector(g.Size())
		if g.Bias {
			r.acts[i].Fill(1)
		}
	}
	for i, c := range cs {
		rows, cols := c.Weights.Dims()
		r.grads[i] = num.NewMatrix(rows, cols)
	}
	return
}

// forward computes activations in declared order. Groups without
// incoming connections keep their values. prior holds, per group
// index, the previous state of each recurrent group, or is nil outside
// an unfolded network.
func (n *Network) forward(r *Replica, prior []*num.Vector) {
	Assert(len(r.acts) == n.groups.Len(), "replica has %d groups, network %s has %d", len(r.acts), n.name, n.groups.Len())
	for _, g := range n.groups.Elements() {
		if g == n.Input || g.Bias {
			continue
		}
		n.activate(r, g, prior)
	}
}

// forwardFrom recomputes, in declared order, every group reachable
// from g. g itself keeps its activation.
func (n *Network) forwardFrom(r *Replica, g *Group) {
	down := make(map[*Group]bool)
	queue := []*Group{g}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		for _, l := range h.Outgoing.Elements() {
			if !down[l.Group] && l.Group != g {
				down[l.Group] = true
				queue = append(queue, l.Group)
			}
		}
	}
	for _, h := range n.groups.Elements() {
		if down[h] && h != n.Input {
			n.activate(r, h, nil)
		}
	}
}

// activate computes g's activation from its incoming connections.
func (n *Network) activate(r *Replica, g *Group, prior []*num.Vector) {
	loop := g.loop != nil && prior != nil
	if g.Incoming.Len() == 0 && !loop {
		return
	}
	y := r.acts[g.idx]
	y.Zero()
	for _, l := range g.Incoming.Elements() {
		l.conn.Weights.MulVecAdd(r.acts[l.Group.idx].Data(), y.Data())
	}
	if loop {
		g.loop.Weights.MulVecAdd(prior[g.idx].Data(), y.Data())
	}
	g.Act.Activate(g, y.Data())
}

// backward computes the error signal of every group in reverse
// declared order and accumulates gradients. If r has a target, the
// output group's error derivative starts the pass. next is the replica
// one time step later, whose recurrent errors flow back into r, and
// prior is as for forward.
func (n *Network) backward(r *Replica, next *Replica, prior []*num.Vector) {
	tr, zr := n.Params.TargetRadius, n.Params.ZeroErrorRadius
	gs := n.groups.Elements()
	Assert(len(r.errs) == len(gs) && len(r.grads) == n.conns.Len(), "replica out of step with network %s", n.name)
	Assert(next == nil || len(next.errs) == len(gs))
	for i := len(gs) - 1; i >= 0; i-- {
		g := gs[i]
		e := r.errs[g.idx].Data()
		y := r.acts[g.idx].Data()
		for j := range e {
			e[j] = 0
		}
		if g == n.Output && r.target != nil {
			g.Err.Deriv(y, r.target.Data(), e, tr, zr)
		}
		for _, l := range g.Outgoing.Elements() {
			l.conn.Weights.MulTransVecAdd(r.errs[l.Group.idx].Data(), e)
		}
		if g.loop != nil && next != nil {
			g.loop.Weights.MulTransVecAdd(next.errs[g.idx].Data(), e)
		}
		for j := range e {
			e[j] *= g.Act.Deriv(g, y[j])
		}
	}
	for _, c := range n.conns.Elements() {
		if c.Frozen {
			continue
		}
		var x []float64
		switch {
		case !c.IsLoop():
			x = r.acts[c.From.idx].Data()
		case prior != nil:
			x = prior[c.From.idx].Data()
		default:
			continue
		}
		r.grads[c.idx].AddOuter(x, r.errs[c.To.idx].Data())
	}
}

// outputError returns the output group's error against the replica's
// target.
func (n *Network) outputError(r *Replica) float64 {
	g := n.Output
	Assert(r.target != nil && r.target.Len() == g.Size(), "target does not fit output group %s", g.name)
	return g.Err.Error(r.acts[g.idx].Data(), r.target.Data(), n.Params.TargetRadius, n.Params.ZeroErrorRadius)
}

// resetContexts sets every context group to the initial context value.
func (n *Network) resetContexts() {
	for _, g := range n.groups.Elements() {
		if g.contextOf.Len() > 0 {
			g.Vector.Fill(n.Params.InitContextUnits)
		}
	}
}

// copyContexts copies each group's activation into its context groups.
func (n *Network) copyContexts() {
	for _, g := range n.groups.Elements() {
		for _, h := range g.Context.Elements() {
			h.Vector.CopyFrom(g.Vector)
		}
	}
}
