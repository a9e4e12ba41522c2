package mesh

import (
	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/num"
)

// Unfolded is a recurrent network unrolled into a fixed stack of
// replicas, one per time step, for backpropagation through time. The
// replicas are allocated once and rotated in place: depth k lives in
// slot (head+k) mod size.
type Unfolded struct {
	n     *Network
	slots []*Replica
	head  int
	sp    int
	// terminal holds, per group index, the state the recurrent groups
	// at depth 0 start from.
	terminal  []*num.Vector
	recurrent []*Group
}

// unfold builds the replica stack for n.
func (n *Network) unfold() (u *Unfolded) {
	size := n.Params.BackTicks + 1
	gs := n.groups.Elements()
	u = &Unfolded{
		n:        n,
		slots:    make([]*Replica, size),
		terminal: make([]*num.Vector, len(gs)),
	}
	for i := range u.slots {
		u.slots[i] = n.newReplica()
	}
	for i, g := range gs {
		if g.loop == nil {
			continue
		}
		u.recurrent = append(u.recurrent, g)
		u.terminal[i] = num.NewVector(g.Size())
	}
	u.Reset()
	n.log.WithFields(logrus.Fields{
		"network":   n.name,
		"depth":     size,
		"recurrent": len(u.recurrent),
	}).Debug("unfolded network")
	return
}

// Size returns the number of replicas.
func (u *Unfolded) Size() int {
	return len(u.slots)
}

// SP returns the depth of the current replica.
func (u *Unfolded) SP() int {
	return u.sp
}

// Slot returns the replica at depth k.
func (u *Unfolded) Slot(k int) *Replica {
	Assert(k >= 0 && k < len(u.slots), "depth %d outside stack of %d", k, len(u.slots))
	return u.slots[(u.head+k)%len(u.slots)]
}

// Current returns the replica at the current depth.
func (u *Unfolded) Current() *Replica {
	return u.Slot(u.sp)
}

// Full reports whether the current replica is the last one.
func (u *Unfolded) Full() bool {
	return u.sp == len(u.slots)-1
}

// prior returns the previous recurrent state for depth k.
func (u *Unfolded) prior(k int) []*num.Vector {
	if k == 0 {
		return u.terminal
	}
	return u.Slot(k - 1).acts
}

// Reset rewinds to depth 0 and sets every recurrent state to the
// initial context value.
func (u *Unfolded) Reset() {
	u.sp = 0
	u.head = 0
	cv := u.n.Params.InitContextUnits
	for _, g := range u.recurrent {
		u.terminal[g.idx].Fill(cv)
	}
	for _, r := range u.slots {
		for i, e := range r.errs {
			e.Zero()
			if u.n.groups.At(i).Bias {
				r.acts[i].Fill(1)
			}
		}
		for _, g := range u.recurrent {
			r.acts[g.idx].Fill(cv)
		}
		r.target = nil
	}
}

// Advance moves to the next depth, or cycles the stack when it is
// full.
func (u *Unfolded) Advance() {
	if !u.Full() {
		u.sp++
		return
	}
	u.Cycle()
}

// Cycle drops the oldest replica: its recurrent state becomes the
// terminal state and its slot becomes the newest replica.
func (u *Unfolded) Cycle() {
	oldest := u.Slot(0)
	for _, g := range u.recurrent {
		u.terminal[g.idx].CopyFrom(oldest.acts[g.idx])
	}
	oldest.target = nil
	u.head = (u.head + 1) % len(u.slots)
}

// Forward feeds input into the current replica and propagates it.
func (u *Unfolded) Forward(input *num.Vector) {
	r := u.Current()
	r.acts[u.n.Input.idx].CopyFrom(input)
	u.n.forward(r, u.prior(u.sp))
}

// Backward propagates the error of target at the current depth back
// through every replica down to depth 0.
func (u *Unfolded) Backward(target *num.Vector) {
	for k := 0; k < u.sp; k++ {
		u.Slot(k).target = nil
	}
	u.Current().target = target
	for k := u.sp; k >= 0; k-- {
		var next *Replica
		if k < u.sp {
			next = u.Slot(k + 1)
		}
		u.n.backward(u.Slot(k), next, u.prior(k))
	}
}

// SumGradients adds the gradients of every replica into the
// connections' own gradients and zeroes the replicas' gradients.
func (u *Unfolded) SumGradients() {
	for _, c := range u.n.conns.Elements() {
		rows, cols := c.Gradients.Dims()
		for _, r := range u.slots {
			g := r.grads[c.idx]
			gr, gc := g.Dims()
			Assert(gr == rows && gc == cols, "slot gradients %dx%d, connection %s -> %s is %dx%d", gr, gc, c.From.name, c.To.name, rows, cols)
			c.Gradients.Add(g)
			g.Zero()
		}
	}
}
