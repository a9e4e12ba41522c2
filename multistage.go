package mesh

import (
	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// SetMultiStage turns on multi-stage training. After each event with a
// target, the input of the same event of the like-named item in s is
// clamped onto the named group and propagated forward from there, so
// that a later stage of the network is trained on the output of an
// earlier one. The inputs of s must have the group's size; ParseSet
// reads such a set when given that size.
func (n *Network) SetMultiStage(group string, s *Set) (err error) {
	if n.Kind == RNN {
		return configErrorf("network %s: multi-stage training needs an %s or %s network", n.name, FFN, SRN)
	}
	g, err := n.lookupGroup(group)
	if err != nil {
		return
	}
	if g == n.Input || g.Bias {
		return configErrorf("group %s cannot be a multi-stage input", group)
	}
	if s == nil {
		return configErrorf("network %s: no multi-stage set", n.name)
	}
	for _, it := range s.Items.Elements() {
		for _, ev := range it.Events {
			if ev.Input.Len() != g.Size() {
				return dataErrorf("set %s item %s: input size %d, want %d for group %s", s.name, it.name, ev.Input.Len(), g.Size(), group)
			}
		}
	}
	n.stage = g
	n.stageSet = s
	n.log.WithFields(logrus.Fields{
		"network": n.name,
		"group":   group,
		"set":     s.name,
	}).Info("multi-stage training on")
	return
}

// ClearMultiStage turns multi-stage training off.
func (n *Network) ClearMultiStage() {
	n.stage = nil
	n.stageSet = nil
}

// MultiStage returns the multi-stage group and set, or nils when
// training is single-stage.
func (n *Network) MultiStage() (g *Group, s *Set) {
	return n.stage, n.stageSet
}

// checkMultiStage makes sure every item of the active set has a
// counterpart in the multi-stage set.
func (n *Network) checkMultiStage() (err error) {
	if n.stage == nil {
		return
	}
	for _, it := range n.Active.Items.Elements() {
		err = n.checkStageItem(it)
		if err != nil {
			return
		}
	}
	return
}

// checkStageItem makes sure the multi-stage set has a like-named item
// with at least as many events as it.
func (n *Network) checkStageItem(it *Item) (err error) {
	if n.stage == nil {
		return
	}
	ms, ok := n.stageSet.Items.Find(it.name)
	if !ok {
		return dataErrorf("no item %s in multi-stage set %s", it.name, n.stageSet.name)
	}
	if len(ms.Events) < len(it.Events) {
		return dataErrorf("multi-stage item %s has %d events, want %d", it.name, len(ms.Events), len(it.Events))
	}
	return
}

// clampStage copies the input of event i of the item's multi-stage
// counterpart onto the multi-stage group and propagates it.
func (n *Network) clampStage(r *Replica, it *Item, i int) {
	ms, ok := n.stageSet.Items.Find(it.name)
	Assert(ok && i < len(ms.Events), "multi-stage item %s unchecked", it.name)
	r.acts[n.stage.idx].CopyFrom(ms.Events[i].Input)
	n.forwardFrom(r, n.stage)
}
