package shape

import (
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
)

func TestParse(t *testing.T) {
	txt := `(seq rnn
		(group in 3)
		(group hid 4 recurrent (act tanh))
		(group out 2 (act logistic) (err cross_entropy))
		(bias hid)
		(connect in hid)
		(connect hid out)
		(tunnel in 1 2 out 1 2)
		(freeze in hid)
		(input in)
		(output out)
		(set learning_rate 0.2)
		(set back_ticks 3)
		(update rprop_plus)
		(learn bptt))`
	s, err := Parse(txt)
	Tassert(t, err == nil, err)
	Tassert(t, s.Name == "seq", "name %s", s.Name)
	Tassert(t, s.Kind == "rnn", "kind %s", s.Kind)
	Tassert(t, len(s.Groups) == 3, s.Groups)
	Tassert(t, s.Groups[0].Name == "in" && s.Groups[0].Size == 3, s.Groups[0])
	Tassert(t, s.Groups[1].Recurrent, s.Groups[1])
	Tassert(t, s.Groups[1].Act == "tanh", s.Groups[1].Act)
	Tassert(t, s.Groups[2].Err == "cross_entropy", s.Groups[2].Err)
	Tassert(t, len(s.Links) == 5, s.Links)
	Tassert(t, s.Links[0].Op == "bias" && s.Links[0].To == "hid", s.Links[0])
	Tassert(t, s.Links[1].Op == "connect" && s.Links[1].From == "in" && s.Links[1].To == "hid", s.Links[1])
	Tassert(t, s.Links[3].Op == "tunnel", s.Links[3])
	Tassert(t, s.Links[3].Ranges == [4]int{1, 2, 1, 2}, s.Links[3].Ranges)
	Tassert(t, s.Links[4].Op == "freeze", s.Links[4])
	Tassert(t, s.Input == "in" && s.Output == "out", s.Input, s.Output)
	Tassert(t, len(s.Params) == 2, s.Params)
	Tassert(t, s.Params[0].Name == "learning_rate", s.Params[0])
	lr, err := strconv.ParseFloat(s.Params[0].Value, 64)
	Tassert(t, err == nil && lr == 0.2, s.Params[0].Value)
	Tassert(t, s.Params[1].Value == "3", s.Params[1].Value)
	Tassert(t, len(s.Algorithms) == 2, s.Algorithms)
	Tassert(t, s.Algorithms[0].Name == "update" && s.Algorithms[0].Value == "rprop_plus", s.Algorithms[0])
}

func TestString(t *testing.T) {
	txt := "(xor ffn (group in 2) (group hid 2 (act logistic)) (group out 1 (act logistic) (err sum_of_squares)) (bias hid) (bias out) (connect in hid) (connect hid out) (input in) (output out) (set max_epochs 100) (random range) (update steepest))"
	s, err := Parse(txt)
	Tassert(t, err == nil, err)
	got := s.String()
	Tassert(t, got == txt, "\nwant %s\ngot  %s", txt, got)
}

func TestSyntaxErrors(t *testing.T) {
	bad := []string{
		"(net)",
		"(net ffn (group a))",
		"(net ffn (group a x))",
		"(net ffn (group a 2 sideways))",
		"(net ffn (connect a))",
		"(net ffn (tunnel a 1 2 b 3))",
		"(net ffn (set learning_rate fast))",
		"(net ffn (bogus a b))",
		"(net ffn plain)",
	}
	for _, txt := range bad {
		s, err := Parse(txt)
		Tassert(t, s == nil, "%s: got shape %v", txt, s)
		var se *SyntaxError
		Tassert(t, errors.As(err, &se), "%s: want a syntax error, got %v", txt, err)
		Tassert(t, strings.HasPrefix(err.Error(), "[shape:1:"), err)
		Tassert(t, !strings.Contains(err.Error(), "%!"), err)
	}

	// the root list has no token, so no position
	_, err := Parse("")
	var se *SyntaxError
	Tassert(t, errors.As(err, &se), err)
	Tassert(t, strings.HasPrefix(err.Error(), "[shape:-]"), err)
	Tassert(t, se.Msg() == "root has 0 children", se.Msg())

	// lexer and parser failures come back as errors too
	_, err = Parse("(net ffn")
	Tassert(t, err != nil)
}
