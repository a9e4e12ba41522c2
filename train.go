package mesh

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stevegt/mesh/num"
)

// Init prepares the network for training: it verifies the topology,
// randomizes every connection that is not frozen, sets the dynamic
// parameters and clears all training history. An RNN is unfolded.
func (n *Network) Init() (err error) {
	err = n.Verify()
	if err != nil {
		return
	}
	n.Randomize()
	n.initDynamic()
	for _, c := range n.conns.Elements() {
		c.Gradients.Zero()
		c.PrevGradients.Zero()
		c.PrevDeltas.Zero()
	}
	for _, g := range n.groups.Elements() {
		g.buildLookup(n.Params.ActLookup)
		g.Error.Zero()
	}
	n.live = nil
	n.Unfolded = nil
	if n.Kind == RNN {
		n.Unfolded = n.unfold()
	}
	n.resetContexts()
	n.Status = Status{}
	n.itemItr = 0
	n.stop.Store(false)
	n.Initialized = true
	n.log.WithFields(logrus.Fields{
		"network": n.name,
		"kind":    n.Kind,
		"random":  n.Random,
		"update":  n.Update,
		"seed":    n.Params.RandomSeed,
	}).Debug("initialized network")
	return
}

// ready checks that training or testing can start.
func (n *Network) ready() (err error) {
	if !n.Initialized {
		return configErrorf("network %s is not initialized", n.name)
	}
	if n.Active == nil || n.Active.Items.Len() == 0 {
		return configErrorf("network %s has no active set", n.name)
	}
	return
}

// batchSize resolves a zero batch size to the size of the active set.
func (n *Network) batchSize() int {
	if n.Params.BatchSize == 0 {
		return n.Active.Items.Len()
	}
	return n.Params.BatchSize
}

// nextItem returns the next item of the active set in presentation
// order, reordering the set whenever a pass over it starts.
func (n *Network) nextItem() (it *Item) {
	s := n.Active
	if len(s.Order) != s.Items.Len() {
		s.OrderItems()
		n.itemItr = 0
	}
	if n.itemItr == 0 {
		switch n.Order {
		case Permuted:
			s.Permute(n.rng)
		case Randomized:
			s.Randomize(n.rng)
		}
	}
	it = s.Items.At(s.Order[n.itemItr])
	n.itemItr = (n.itemItr + 1) % s.Items.Len()
	return
}

// discardGradients drops gradients accumulated but not yet applied.
func (n *Network) discardGradients() {
	for _, c := range n.conns.Elements() {
		c.Gradients.Zero()
	}
	if n.Unfolded != nil {
		for _, r := range n.Unfolded.slots {
			for _, g := range r.grads {
				g.Zero()
			}
		}
	}
}

// Train trains on the active set until the error drops below the error
// threshold or MaxEpochs is reached, in which case ErrMaxEpochs is
// returned. An interrupt makes Train return early without error and
// drops the gradients of the unfinished batch. Training always starts
// from zero gradients.
func (n *Network) Train() (err error) {
	err = n.ready()
	if err != nil {
		return
	}
	err = n.checkMultiStage()
	if err != nil {
		return
	}
	n.discardGradients()
	if n.Order == Ordered {
		n.Active.OrderItems()
	}
	n.itemItr = 0
	n.log.WithFields(logrus.Fields{
		"network": n.name,
		"set":     n.Active.name,
		"learn":   n.Learn,
		"update":  n.Update,
		"order":   n.Order,
	}).Info("training started")

	st := &n.Status
	batch := n.batchSize()
	for epoch := 1; epoch <= n.Params.MaxEpochs; epoch++ {
		st.Epoch = epoch
		st.PrevError = st.Error
		st.Error = 0
		if n.Learn == BPTT {
			if n.interrupted() {
				n.logInterrupt()
				return
			}
			st.Error = n.learnSequence(n.nextItem())
		} else {
			for i := 0; i < batch; i++ {
				if n.interrupted() {
					n.logInterrupt()
					return
				}
				st.Error += n.learnItem(n.nextItem()) / float64(batch)
			}
		}
		if st.Error < n.Params.ErrorThreshold {
			n.logSummary()
			return
		}
		if n.Learn == BP {
			n.UpdateWeights()
		}
		n.scaleParams()
		n.logProgress()
	}
	n.logSummary()
	return errors.Wrapf(ErrMaxEpochs, "network %s: error %g after %d epochs", n.name, st.Error, st.Epoch)
}

// LearnItem propagates every event of an item forward and backward
// and returns the error of its last event. Gradients accumulate; no
// weights change. Not available for an RNN, whose gradients are
// computed through the unfolded network.
func (n *Network) LearnItem(it *Item) (e float64, err error) {
	if !n.Initialized {
		return 0, configErrorf("network %s is not initialized", n.name)
	}
	if n.Kind == RNN {
		return 0, configErrorf("network %s: items of an %s are learned through time", n.name, RNN)
	}
	err = n.checkStageItem(it)
	if err != nil {
		return
	}
	e = n.learnItem(it)
	return
}

func (n *Network) learnItem(it *Item) (e float64) {
	r := n.liveReplica()
	if n.Kind == SRN && n.Params.ResetContexts {
		n.resetContexts()
	}
	for i, ev := range it.Events {
		if n.Kind == SRN && i > 0 {
			n.copyContexts()
		}
		n.Input.Vector.CopyFrom(ev.Input)
		n.forward(r, nil)
		if ev.Target == nil {
			continue
		}
		r.target = ev.Target
		n.backward(r, nil, nil)
		if i == len(it.Events)-1 {
			e = n.outputError(r)
		}
		r.target = nil
		if n.stage != nil {
			n.clampStage(r, it, i)
		}
	}
	return
}

// learnSequence runs an item through the unfolded network. Once the
// stack is full, every event with a target is backpropagated through
// time and the weights are updated. It returns the summed error of
// those events.
func (n *Network) learnSequence(it *Item) (e float64) {
	u := n.Unfolded
	u.Reset()
	for _, ev := range it.Events {
		u.Forward(ev.Input)
		if ev.Target != nil && u.Full() {
			u.Backward(ev.Target)
			e += n.outputError(u.Current())
			u.SumGradients()
			n.UpdateWeights()
		}
		u.Advance()
	}
	return
}

// scaleParams applies the learning rate, momentum and weight decay
// schedules.
func (n *Network) scaleParams() {
	p := &n.Params
	scale := func(name string, v *float64, factor, after float64) {
		sa := int(after * float64(p.MaxEpochs))
		if sa <= 0 || n.Status.Epoch%sa != 0 {
			return
		}
		old := *v
		*v *= factor
		n.log.WithFields(logrus.Fields{
			"network": n.name,
			"epoch":   n.Status.Epoch,
			"from":    old,
			"to":      *v,
		}).Infof("scaled %s", name)
	}
	scale("learning rate", &p.LearningRate, p.LRScaleFactor, p.LRScaleAfter)
	scale("momentum", &p.Momentum, p.MNScaleFactor, p.MNScaleAfter)
	scale("weight decay", &p.WeightDecay, p.WDScaleFactor, p.WDScaleAfter)
}

func (n *Network) statusFields() logrus.Fields {
	return logrus.Fields{
		"network":            n.name,
		"epoch":              n.Status.Epoch,
		"error":              n.Status.Error,
		"weight_cost":        n.Status.WeightCost,
		"gradient_linearity": n.Status.GradientLinearity,
	}
}

func (n *Network) logProgress() {
	ep := n.Status.Epoch
	if ep == 1 || (n.Params.ReportAfter > 0 && ep%n.Params.ReportAfter == 0) {
		n.log.WithFields(n.statusFields()).Info("training")
	}
}

func (n *Network) logSummary() {
	n.log.WithFields(n.statusFields()).Info("training finished")
}

func (n *Network) logInterrupt() {
	n.discardGradients()
	n.log.WithFields(n.statusFields()).Warn("training interrupted")
}

// TestResult summarizes a test pass over a set.
type TestResult struct {
	// Error is the summed error over all items.
	Error float64
	Items int
	// Reached counts the items whose error is within the error
	// threshold.
	Reached int
}

// Test runs every item of the active set forward. For an FFN or SRN
// the error of an item is that of its last event; for an RNN it is the
// summed error of all events with a target.
func (n *Network) Test() (res TestResult, err error) {
	err = n.ready()
	if err != nil {
		return
	}
	for _, it := range n.Active.Items.Elements() {
		if n.interrupted() {
			n.log.WithField("network", n.name).Warn("testing interrupted")
			break
		}
		e, _ := n.runItem(it, nil)
		res.Error += e
		res.Items++
		if e <= n.Params.ErrorThreshold {
			res.Reached++
		}
	}
	n.Status.Error = res.Error
	n.log.WithFields(logrus.Fields{
		"network": n.name,
		"set":     n.Active.name,
		"error":   res.Error,
		"items":   res.Items,
		"reached": res.Reached,
	}).Info("tested network")
	return
}

// EventResult is the network output for one event of a tested item.
type EventResult struct {
	Input  *num.Vector
	Target *num.Vector
	Output *num.Vector
	// Error is zero for events without a target.
	Error float64
}

// TestItem runs the named item of the active set forward and returns
// the output of every event.
func (n *Network) TestItem(name string) (events []EventResult, err error) {
	err = n.ready()
	if err != nil {
		return
	}
	it, ok := n.Active.Items.Find(name)
	if !ok {
		return nil, configErrorf("no such item: %s", name)
	}
	_, events = n.runItem(it, []EventResult{})
	return
}

// runItem runs an item forward. If out is not nil, the result of each
// event is appended to it.
func (n *Network) runItem(it *Item, out []EventResult) (e float64, events []EventResult) {
	events = out
	var u *Unfolded
	r := n.liveReplica()
	switch n.Kind {
	case SRN:
		if n.Params.ResetContexts {
			n.resetContexts()
		}
	case RNN:
		u = n.Unfolded
		u.Reset()
	}
	last := len(it.Events) - 1
	for i, ev := range it.Events {
		if u != nil {
			u.Forward(ev.Input)
			r = u.Current()
		} else {
			if n.Kind == SRN && i > 0 {
				n.copyContexts()
			}
			n.Input.Vector.CopyFrom(ev.Input)
			n.forward(r, nil)
		}
		ee := 0.0
		if ev.Target != nil {
			r.target = ev.Target
			ee = n.outputError(r)
			r.target = nil
			if u != nil || i == last {
				e += ee
			}
		}
		if out != nil {
			y := num.NewVector(n.Output.Size())
			y.CopyFrom(r.Activation(n.Output))
			events = append(events, EventResult{Input: ev.Input, Target: ev.Target, Output: y, Error: ee})
		}
		if u != nil {
			u.Advance()
		}
	}
	return
}

// Forward propagates a single input vector through an FFN or SRN and
// returns a copy of the output activation.
func (n *Network) Forward(input []float64) (output []float64, err error) {
	if n.Kind == RNN {
		return nil, configErrorf("network %s: use an item to run an %s", n.name, RNN)
	}
	if n.Input == nil || n.Output == nil {
		return nil, configErrorf("network %s has no input or output group", n.name)
	}
	if len(input) != n.Input.Size() {
		return nil, dataErrorf("input size %d, want %d", len(input), n.Input.Size())
	}
	copy(n.Input.Vector.Data(), input)
	n.forward(n.liveReplica(), nil)
	output = append([]float64(nil), n.Output.Vector.Data()...)
	return
}
