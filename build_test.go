package mesh

import (
	"testing"

	. "github.com/stevegt/goadapt"
)

func TestLoadNetwork(t *testing.T) {
	n, err := LoadNetwork("testdata/xor.net")
	Tassert(t, err == nil, err)
	n.SetLogger(quietLogger())
	Tassert(t, n.Name() == "xor" && n.Kind == FFN, n.Name(), n.Kind)
	Tassert(t, len(n.Groups()) == 5, len(n.Groups()))
	Tassert(t, n.FindGroup("hidden_bias").Bias)
	Tassert(t, n.FindGroup("hidden").Act.Name() == "logistic")
	Tassert(t, n.Input.Name() == "input" && n.Output.Name() == "output")
	Tassert(t, len(n.Connections()) == 4)
	Tassert(t, n.Params.RandomSeed == 1)
	Tassert(t, n.Params.MaxEpochs == 5000)
	Tassert(t, n.Params.LearningRate == 0.3, n.Params.LearningRate)
	Tassert(t, n.Update == Steepest)

	_, err = n.LoadSet("testdata/xor.set")
	Tassert(t, err == nil, err)
	Tassert(t, n.Active.Items.Len() == 4)
	Tassert(t, n.Init() == nil)
	err = n.Train()
	Tassert(t, err == nil || IsMaxEpochs(err), err)
}

func TestLoadRecurrent(t *testing.T) {
	n, err := LoadNetwork("testdata/echo.net")
	Tassert(t, err == nil, err)
	n.SetLogger(quietLogger())
	Tassert(t, n.Kind == RNN && n.Learn == BPTT)
	Tassert(t, n.FindGroup("hidden").Loop() != nil)
	Tassert(t, n.Params.BackTicks == 3)
	Tassert(t, n.Update == IRpropMinus)
	_, err = n.LoadSet("testdata/echo.set")
	Tassert(t, err == nil, err)
	Tassert(t, n.Init() == nil)
	Tassert(t, n.Unfolded.Size() == 4)
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork(`(ctx srn
		(group in 2)
		(group hid 3 (act tanh))
		(group ctx 3)
		(group out 2 (act softmax) (err cross_entropy))
		(connect in hid)
		(connect ctx hid)
		(connect hid out)
		(elman hid ctx)
		(tunnel in 1 2 out 1 2)
		(freeze in hid)
		(input in)
		(output out)
		(set reset_contexts 0)
		(order permuted))`)
	Tassert(t, err == nil, err)
	Tassert(t, n.Kind == SRN)
	Tassert(t, n.FindGroup("hid").Context.Len() == 1)
	Tassert(t, n.Connection("in", "hid").Frozen)
	Tassert(t, n.Connection("in", "out").Frozen)
	Tassert(t, n.Output.Err.Name() == "cross_entropy")
	Tassert(t, !n.Params.ResetContexts)
	Tassert(t, n.Order == Permuted)
}

func TestParseNetworkErrors(t *testing.T) {
	bad := []string{
		"",
		"(x)",
		"(x ffn (group a))",
		"(x ffn (bogus a b))",
		"(x ffn (group a 1)",
		"(x cnn (group a 1))",
		"(x ffn (group a 1) (group a 1))",
		"(x ffn (group a 1 recurrent))",
		"(x ffn (group a 1) (connect a b))",
		"(x ffn (group a 1 (act nosuch)))",
		"(x ffn (group a 1) (input b))",
		"(x ffn (set nosuch 1))",
		"(x ffn (set max_epochs 0))",
		"(x ffn (update adam))",
		"(x ffn (learn bptt))",
		"(x ffn (group a 2) (group b 2) (tunnel a 1 2 b 2 3))",
	}
	for _, txt := range bad {
		n, err := ParseNetwork(txt)
		Tassert(t, IsConfig(err), "%s: %v", txt, err)
		Tassert(t, n == nil, txt)
	}

	_, err := LoadNetwork("testdata/nosuch.net")
	Tassert(t, IsResource(err), err)
}
