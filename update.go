package mesh

import (
	"math"

	. "github.com/stevegt/goadapt"
)

const (
	rpropMaxStep = 50.0
	rpropMinStep = 1e-6
	qpropMaxStep = 1.75
	dbdBase      = 0.7
)

// weightState is one weight of a connection and everything the update
// algorithms keep about it.
type weightState struct {
	w, g, pg, pd, dyn *float64
}

// kernel computes the change of one weight. It may adjust the weight,
// its gradient and its dynamic parameter directly, and returns the
// delta to remember as the previous delta.
type kernel func(n *Network, s weightState) (delta float64)

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// steepest is gradient descent with momentum and weight decay, scaled
// by the bounded steepest descent factor.
func steepest(n *Network, s weightState) (delta float64) {
	p := &n.Params
	delta = -p.LearningRate * n.Status.SDScaleFactor * *s.g
	delta += p.Momentum * *s.pd
	delta -= p.WeightDecay * *s.w
	*s.w += delta
	return
}

// rprop implements the four resilient propagation variants. They
// differ in what happens when the gradient changes sign.
func rprop(n *Network, s weightState) (delta float64) {
	p := &n.Params
	delta = -p.WeightDecay * *s.w
	prod := *s.pg * *s.g
	switch {
	case prod > 0:
		*s.dyn = math.Min(*s.dyn*p.RPEtaPlus, rpropMaxStep)
		delta += -sign(*s.g) * *s.dyn
		*s.w += delta
	case prod < 0:
		*s.dyn = math.Max(*s.dyn*p.RPEtaMinus, rpropMinStep)
		switch {
		case n.Update == RpropPlus:
			*s.w -= *s.pd
		case n.Update == IRpropPlus && n.Status.Error > n.Status.PrevError:
			*s.w -= *s.pd
		}
		if n.Update != RpropMinus {
			*s.g = 0
		}
		if n.Update == RpropMinus || n.Update == IRpropMinus {
			delta += -sign(*s.g) * *s.dyn
			*s.w += delta
		}
	default:
		delta += -sign(*s.g) * *s.dyn
		*s.w += delta
	}
	return
}

// quickprop jumps towards the minimum of a parabola fitted through the
// current and previous gradients.
func quickprop(n *Network, s weightState) (delta float64) {
	p := &n.Params
	shrink := qpropMaxStep / (1 + qpropMaxStep)
	g, pg, pd := *s.g, *s.pg, *s.pd
	switch {
	case pd > 0:
		if g < 0 {
			delta += -p.LearningRate * g
		}
		if g < shrink*pg || pg == g {
			delta += qpropMaxStep * pd
		} else {
			delta += g / (pg - g) * pd
		}
	case pd < 0:
		if g > 0 {
			delta += -p.LearningRate * g
		}
		if g > shrink*pg || pg == g {
			delta += qpropMaxStep * pd
		} else {
			delta += g / (pg - g) * pd
		}
	default:
		delta += -p.LearningRate * g
		delta += p.Momentum * pd
	}
	delta -= p.WeightDecay * *s.w
	*s.w += delta
	return
}

// deltaBarDelta is steepest descent with a learning rate per weight,
// raised while the gradient agrees with its exponential average and
// cut when it does not. The average is kept in the previous gradient.
func deltaBarDelta(n *Network, s weightState) (delta float64) {
	p := &n.Params
	delta = -*s.dyn * *s.g
	delta += p.Momentum * *s.pd
	delta -= p.WeightDecay * *s.w
	*s.w += delta
	prod := *s.pg * *s.g
	switch {
	case prod > 0:
		*s.dyn += p.DBDRateIncrement
	case prod < 0:
		*s.dyn -= p.DBDRateDecrement * *s.dyn
	}
	g, pg := *s.g, *s.pg
	*s.pg = (1-dbdBase)*g + dbdBase*pg
	return
}

func (n *Network) kernel() kernel {
	switch {
	case n.Update == Steepest || n.Update == Bounded:
		return steepest
	case n.Update.isRprop():
		return rprop
	case n.Update == Quickprop:
		return quickprop
	case n.Update == DBD:
		return deltaBarDelta
	}
	Assert(false, "no kernel for update algorithm %d", int(n.Update))
	return nil
}

// sdScaleFactor returns the step scale for bounded steepest descent:
// one over the gradient length when that exceeds one.
func (n *Network) sdScaleFactor() float64 {
	if n.Update != Bounded {
		return 1
	}
	ssq := 0.0
	for _, c := range n.conns.Elements() {
		if !c.Frozen {
			ssq += c.Gradients.SumSquares()
		}
	}
	if ssq > 1 {
		return 1 / math.Sqrt(ssq)
	}
	return 1
}

// UpdateWeights applies the selected update algorithm to every
// connection that is not frozen, using the gradients accumulated since
// the last update, and then zeroes the gradients.
func (n *Network) UpdateWeights() {
	st := &n.Status
	st.WeightCost = 0
	st.GradientLinearity = 0
	st.LastDeltasLength = 0
	st.GradientsLength = 0
	st.SDScaleFactor = n.sdScaleFactor()

	fn := n.kernel()
	for _, c := range n.conns.Elements() {
		w, g := c.Weights.Raw(), c.Gradients.Raw()
		pg, pd, dyn := c.PrevGradients.Raw(), c.PrevDeltas.Raw(), c.Dynamic.Raw()
		if !c.Frozen {
			for k := range w {
				delta := fn(n, weightState{&w[k], &g[k], &pg[k], &pd[k], &dyn[k]})
				st.WeightCost += w[k] * w[k]
				st.GradientLinearity += pd[k] * g[k]
				st.LastDeltasLength += pd[k] * pd[k]
				st.GradientsLength += g[k] * g[k]
				pd[k] = delta
			}
		}
		if n.Update != DBD {
			c.PrevGradients.CopyFrom(c.Gradients)
		}
		c.Gradients.Zero()
	}

	denom := math.Sqrt(st.LastDeltasLength * st.GradientsLength)
	if denom > 0 {
		st.GradientLinearity = -st.GradientLinearity / denom
	} else {
		st.GradientLinearity = 0
	}
}

// initDynamic sets every dynamic parameter to its starting value: the
// learning rate for delta-bar-delta, the initial update value
// otherwise.
func (n *Network) initDynamic() {
	v := n.Params.RPInitUpdate
	if n.Update == DBD {
		v = n.Params.LearningRate
	}
	for _, c := range n.conns.Elements() {
		c.Dynamic.Fill(v)
	}
}
