package mesh

import (
	"math"
	"strings"
	"testing"

	. "github.com/stevegt/goadapt"
)

// stageSet holds, per xor item, a hidden-layer pattern.
func stageSet() (s *Set) {
	s = NewSet("stage")
	s.AddItem("00", "", &Event{Input: vec(-0.5, -0.5)})
	s.AddItem("01", "", &Event{Input: vec(-0.5, 0.5)})
	s.AddItem("10", "", &Event{Input: vec(0.5, -0.5)})
	s.AddItem("11", "", &Event{Input: vec(0.5, 0.5)})
	return
}

func TestMultiStageClamp(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "tanh")
	Tassert(t, n.AddSet(xorSet()) == nil)
	Tassert(t, n.Init() == nil)
	ms := stageSet()
	Tassert(t, n.SetMultiStage("hidden", ms) == nil)
	g, s := n.MultiStage()
	Tassert(t, g == n.FindGroup("hidden") && s == ms)

	it := n.Active.Items.At(1)
	_, err := n.LearnItem(it)
	Tassert(t, err == nil, err)

	// the hidden group holds the clamped pattern and the output follows
	// from it
	h := n.FindGroup("hidden").Vector
	Tassert(t, h.Equal(vec(-0.5, 0.5)), h)
	w := n.Connection("hidden", "output").Weights
	b := n.Connection("output_bias", "output").Weights
	want := math.Tanh(-0.5*w.At(0, 0) + 0.5*w.At(1, 0) + b.At(0, 0))
	got := n.Output.Vector.At(0)
	Tassert(t, math.Abs(got-want) < 1e-12, got, want)

	n.Params.MaxEpochs = 3
	n.Params.ErrorThreshold = 0
	Tassert(t, IsMaxEpochs(n.Train()))

	n.ClearMultiStage()
	g, s = n.MultiStage()
	Tassert(t, g == nil && s == nil)
}

func TestMultiStageErrors(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "tanh")
	Tassert(t, n.AddSet(xorSet()) == nil)
	Tassert(t, n.Init() == nil)

	Tassert(t, IsConfig(n.SetMultiStage("nosuch", stageSet())))
	Tassert(t, IsConfig(n.SetMultiStage("input", stageSet())))
	Tassert(t, IsConfig(n.SetMultiStage("hidden_bias", stageSet())))
	Tassert(t, IsConfig(n.SetMultiStage("hidden", nil)))
	wide := NewSet("wide")
	wide.AddItem("00", "", &Event{Input: vec(1, 2, 3)})
	Tassert(t, IsData(n.SetMultiStage("hidden", wide)))
	g, _ := n.MultiStage()
	Tassert(t, g == nil)

	r := NewNetwork("rnn", RNN)
	_, err := r.CreateGroup("a", 2, false, false)
	Tassert(t, err == nil, err)
	Tassert(t, IsConfig(r.SetMultiStage("a", stageSet())))

	// every trained item needs a counterpart
	partial := NewSet("partial")
	partial.AddItem("00", "", &Event{Input: vec(0, 0)})
	Tassert(t, n.SetMultiStage("hidden", partial) == nil)
	Tassert(t, IsData(n.Train()))
	_, err = n.LearnItem(n.Active.Items.At(3))
	Tassert(t, IsData(err), err)
	_, err = n.LearnItem(n.Active.Items.At(0))
	Tassert(t, err == nil, err)
}

func TestMultiStageFollowsRemoval(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "tanh")
	Tassert(t, n.AddSet(xorSet()) == nil)
	ms, err := ParseSet("stage", strings.NewReader("Name \"00\" 1\nInput 0.5 0.5\n"), 2, 1)
	Tassert(t, err == nil, err)
	Tassert(t, n.AddSet(ms) == nil)
	Tassert(t, n.SetMultiStage("hidden", ms) == nil)
	Tassert(t, n.RemoveSet("stage") == nil)
	g, s := n.MultiStage()
	Tassert(t, g == nil && s == nil)

	Tassert(t, n.SetMultiStage("hidden", stageSet()) == nil)
	Tassert(t, n.DisposeGroup("hidden") == nil)
	g, s = n.MultiStage()
	Tassert(t, g == nil && s == nil)
}

func TestInterruptDropsBatch(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "logistic")
	Tassert(t, n.AddSet(xorSet()) == nil)
	Tassert(t, n.Init() == nil)
	for _, it := range n.Active.Items.Elements()[:2] {
		_, err := n.LearnItem(it)
		Tassert(t, err == nil, err)
	}
	dirty := false
	for _, c := range n.Connections() {
		for _, g := range c.Gradients.Raw() {
			dirty = dirty || g != 0
		}
	}
	Tassert(t, dirty)

	n.Interrupt()
	Tassert(t, n.Train() == nil)
	for _, c := range n.Connections() {
		for _, g := range c.Gradients.Raw() {
			Tassert(t, g == 0, c.From.Name(), c.To.Name(), g)
		}
	}
}
