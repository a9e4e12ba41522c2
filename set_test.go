package mesh

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/stevegt/goadapt"
)

const xorSetText = `# exclusive or
Name "00" 1
Input 0 0 Target 0
Name "01" 1
Input 0 1 Target 1

Name "10" 1 "first bit"
Input 1 0 Target 1
Name "11" 1
Input 1 1 Target 0
`

func TestParseSet(t *testing.T) {
	s, err := ParseSet("xor", strings.NewReader(xorSetText), 2, 1)
	Tassert(t, err == nil, err)
	Tassert(t, s.Name() == "xor")
	Tassert(t, s.Items.Len() == 4, s.Items.Len())
	it, ok := s.Items.Find("10")
	Tassert(t, ok)
	Tassert(t, it.Meta == "first bit", it.Meta)
	Tassert(t, it.Events[0].Input.At(0) == 1 && it.Events[0].Input.At(1) == 0)
	Tassert(t, it.Events[0].Target.At(0) == 1)
	Tassert(t, len(s.Order) == 4)
}

func TestParseSequence(t *testing.T) {
	txt := `Name "seq" 3
Input 0.5
Input -0.5 Target 0.5
Input 1e-3 Target -0.5
`
	s, err := ParseSet("seq", strings.NewReader(txt), 1, 1)
	Tassert(t, err == nil, err)
	it := s.Items.At(0)
	Tassert(t, len(it.Events) == 3)
	Tassert(t, it.Events[0].Target == nil)
	Tassert(t, it.Events[2].Input.At(0) == 1e-3)
	Tassert(t, it.Events[2].Target.At(0) == -0.5)
}

func TestParseSetErrors(t *testing.T) {
	bad := []string{
		"",
		"Input 0 0 Target 0\n",
		"Name \"a\" 0\n",
		"Name \"a\" 2\nInput 0 0 Target 1\n",
		"Name \"a\" 1\nInput 0 Target 1\n",
		"Name \"a\" 1\nInput 0 0 0 Target 1\n",
		"Name \"a\" 1\nInput 0 0 Target 1 1\n",
		"Name \"a\" 1\nInput 0 x Target 1\n",
		"Name \"a\" 1\nInput 0 0 Output 1\n",
		"Name a 1\nInput 0 0 Target 1\n",
	}
	for _, txt := range bad {
		s, err := ParseSet("bad", strings.NewReader(txt), 2, 1)
		Tassert(t, IsData(err), "%q: %v", txt, err)
		Tassert(t, s == nil, txt)
	}
}

func TestParseSetHugeCount(t *testing.T) {
	for _, count := range []string{"100000000000000000", "1000000000000", "99999999999999999999999"} {
		txt := "Name \"a\" " + count + "\nInput 1 Target 1\n"
		s, err := ParseSet("bad", strings.NewReader(txt), 1, 1)
		Tassert(t, IsData(err), "%s: %v", count, err)
		Tassert(t, s == nil, count)
	}
}

func TestReadSet(t *testing.T) {
	n := mkNet(t, FFN, 2, 2, 1, "logistic")
	s, err := n.ReadSet("xor", strings.NewReader(xorSetText))
	Tassert(t, err == nil, err)
	Tassert(t, n.Active == s)

	// a failed load leaves the active set alone
	_, err = n.ReadSet("wide", strings.NewReader("Name \"a\" 1\nInput 0 0 0\n"))
	Tassert(t, IsData(err), err)
	Tassert(t, n.Active == s)
	Tassert(t, n.FindSet("wide") == nil)

	_, err = n.ReadSet("xor", strings.NewReader(xorSetText))
	Tassert(t, IsConfig(err), err)

	_, err = n.LoadSet(filepath.Join(t.TempDir(), "missing"))
	Tassert(t, IsResource(err), err)
	Tassert(t, n.Active == s)

	other := NewSet("other")
	other.AddItem("x", "", &Event{Input: vec(1, 1, 1)})
	Tassert(t, IsData(n.AddSet(other)))
	Tassert(t, n.Active == s)

	other = NewSet("other")
	other.AddItem("x", "", &Event{Input: vec(1, 1)})
	Tassert(t, n.AddSet(other) == nil)
	Tassert(t, n.Active == other)
	Tassert(t, n.SelectSet("xor") == nil)
	Tassert(t, n.Active == s)
	Tassert(t, IsConfig(n.SelectSet("nosuch")))
	Tassert(t, len(n.Sets()) == 2)
	Tassert(t, n.RemoveSet("xor") == nil)
	Tassert(t, n.Active == nil)
	Tassert(t, IsConfig(n.RemoveSet("xor")))
}

func TestSetOrders(t *testing.T) {
	s, err := ParseSet("xor", strings.NewReader(xorSetText), 2, 1)
	Tassert(t, err == nil, err)
	rng := rand.New(rand.NewSource(1))
	s.Permute(rng)
	seen := make(map[int]bool)
	for _, i := range s.Order {
		seen[i] = true
	}
	Tassert(t, len(seen) == 4, s.Order)
	s.Randomize(rng)
	Tassert(t, len(s.Order) == 4)
	for _, i := range s.Order {
		Tassert(t, i >= 0 && i < 4, i)
	}
	s.OrderItems()
	for i, j := range s.Order {
		Tassert(t, i == j, s.Order)
	}
}
