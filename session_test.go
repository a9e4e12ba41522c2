package mesh

import (
	"testing"

	. "github.com/stevegt/goadapt"
)

func TestSession(t *testing.T) {
	s := NewSession(quietLogger())
	a, err := s.CreateNetwork("a", FFN)
	Tassert(t, err == nil, err)
	Tassert(t, s.Active == a)
	Tassert(t, a.Logger() == s.log)
	b, err := s.CreateNetwork("b", RNN)
	Tassert(t, err == nil, err)
	Tassert(t, s.Active == b)
	Tassert(t, b.Learn == BPTT)

	_, err = s.CreateNetwork("a", SRN)
	Tassert(t, IsConfig(err), err)
	_, err = s.CreateNetwork("", SRN)
	Tassert(t, IsConfig(err), err)
	Tassert(t, IsConfig(s.Add(NewNetwork("b", FFN))))
	Tassert(t, len(s.Networks()) == 2)

	Tassert(t, s.SwitchNetwork("a") == nil)
	Tassert(t, s.Active == a)
	Tassert(t, IsConfig(s.SwitchNetwork("c")))
	Tassert(t, s.Active == a)

	Tassert(t, s.DisposeNetwork("b") == nil)
	Tassert(t, s.Active == a)
	Tassert(t, s.DisposeNetwork("a") == nil)
	Tassert(t, s.Active == nil)
	Tassert(t, IsConfig(s.DisposeNetwork("a")))
	Tassert(t, len(s.Networks()) == 0)

	c := NewNetwork("c", FFN)
	Tassert(t, s.Add(c) == nil)
	Tassert(t, s.Find("c") == c)
}

func TestParams(t *testing.T) {
	n := NewNetwork("net", FFN)
	Tassert(t, n.SetParam("learning_rate", 0.25) == nil)
	Tassert(t, n.Params.LearningRate == 0.25)
	Tassert(t, n.SetParam("batch_size", 2) == nil)
	Tassert(t, n.Params.BatchSize == 2)
	Tassert(t, n.SetParam("reset_contexts", 0) == nil)
	Tassert(t, !n.Params.ResetContexts)
	Tassert(t, n.SetParam("random_seed", 99) == nil)
	Tassert(t, n.Params.RandomSeed == 99)

	before := n.Params
	Tassert(t, IsConfig(n.SetParam("batch_size", 1.5)))
	Tassert(t, IsConfig(n.SetParam("max_epochs", 0)))
	Tassert(t, IsConfig(n.SetParam("batch_size", -1)))
	Tassert(t, IsConfig(n.SetParam("back_ticks", 3)))
	Tassert(t, IsConfig(n.SetParam("nosuch", 1)))
	Tassert(t, IsConfig(n.SetIntParam("learning_rate", 1)))
	Tassert(t, IsConfig(n.SetFloatParam("max_epochs", 1)))
	Tassert(t, n.Params == before)

	r := NewNetwork("rnn", RNN)
	Tassert(t, r.SetParam("back_ticks", 3) == nil)
	Tassert(t, r.Params.BackTicks == 3)
}

func TestAlgorithmNames(t *testing.T) {
	n := NewNetwork("net", FFN)
	for _, name := range []string{"steepest", "bounded", "rprop+", "rprop-", "irprop+", "irprop-", "qprop", "dbd"} {
		Tassert(t, n.SetUpdateAlgorithm(name) == nil, name)
		Tassert(t, n.Update.String() == name, n.Update)
	}
	Tassert(t, n.SetUpdateAlgorithm("irprop_minus") == nil)
	Tassert(t, n.Update == IRpropMinus)
	Tassert(t, n.SetUpdateAlgorithm("QuickProp") == nil)
	Tassert(t, n.Update == Quickprop)

	before := n.Update
	Tassert(t, IsConfig(n.SetUpdateAlgorithm("adam")))
	Tassert(t, n.Update == before)
	Tassert(t, IsConfig(n.SetRandomAlgorithm("xavier")))
	Tassert(t, n.Random == Range)
	Tassert(t, IsConfig(n.SetLearningAlgorithm("bptt")))
	Tassert(t, n.Learn == BP)

	k, err := ParseKind("SRN")
	Tassert(t, err == nil && k == SRN, k, err)
	_, err = ParseKind("cnn")
	Tassert(t, IsConfig(err), err)
}

func TestSetActFuncErrors(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "tanh")
	Tassert(t, IsConfig(n.SetActFunc("hidden", "nosuch")))
	Tassert(t, n.FindGroup("hidden").Act.Name() == "tanh")
	Tassert(t, IsConfig(n.SetActFunc("nosuch", "tanh")))
	Tassert(t, IsConfig(n.SetErrFunc("output", "nosuch")))
	Tassert(t, n.Output.Err.Name() == "sum_of_squares")
	Tassert(t, IsConfig(n.SetInputGroup("nosuch")))
	Tassert(t, n.Input.Name() == "input")
	_, err := n.AttachBias("hidden")
	Tassert(t, IsConfig(err), err)
}
