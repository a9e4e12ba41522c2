package shape

import (
	"strconv"
	"strings"

	. "github.com/stevegt/goadapt"
	"github.com/xiam/sexpr/ast"
	"github.com/xiam/sexpr/parser"
)

// Shape is a description of a network: its groups, how they are
// wired, and how it is trained.
//
//	(xor ffn
//	  (group input 2)
//	  (group hidden 2 (act logistic))
//	  (group output 1 (act logistic))
//	  (bias hidden) (bias output)
//	  (connect input hidden) (connect hidden output)
//	  (input input) (output output)
//	  (set learning_rate 0.2)
//	  (update steepest))
type Shape struct {
	Name   string
	Kind   string
	Groups []*GroupShape
	// Links are the connection statements in the order given.
	Links  []*LinkShape
	Input  string
	Output string
	Params []*ParamShape
	// Algorithms holds the algorithm selections in the order given.
	Algorithms []*ParamShape
}

// GroupShape describes one group.
type GroupShape struct {
	Name      string
	Size      int
	Act       string
	Err       string
	Bias      bool
	Recurrent bool
}

// LinkShape is a connect, bias, elman, tunnel or freeze statement.
type LinkShape struct {
	Op   string
	From string
	To   string
	// Ranges holds the 1-based inclusive unit ranges of a tunnel:
	// from start, from end, to start, to end.
	Ranges [4]int
}

// ParamShape is a name and a value.
type ParamShape struct {
	Name  string
	Value string
}

func (s *Shape) String() (out string) {
	parts := []string{s.Name, s.Kind}
	for _, g := range s.Groups {
		parts = append(parts, g.String())
	}
	for _, l := range s.Links {
		parts = append(parts, l.String())
	}
	if s.Input != "" {
		parts = append(parts, Spf("(input %s)", s.Input))
	}
	if s.Output != "" {
		parts = append(parts, Spf("(output %s)", s.Output))
	}
	for _, p := range s.Params {
		parts = append(parts, Spf("(set %s %s)", p.Name, p.Value))
	}
	for _, a := range s.Algorithms {
		parts = append(parts, Spf("(%s %s)", a.Name, a.Value))
	}
	out = "(" + strings.Join(parts, " ") + ")"
	return
}

func (g *GroupShape) String() (out string) {
	parts := []string{"group", g.Name, strconv.Itoa(g.Size)}
	if g.Bias {
		parts = append(parts, "bias")
	}
	if g.Recurrent {
		parts = append(parts, "recurrent")
	}
	if g.Act != "" {
		parts = append(parts, Spf("(act %s)", g.Act))
	}
	if g.Err != "" {
		parts = append(parts, Spf("(err %s)", g.Err))
	}
	out = "(" + strings.Join(parts, " ") + ")"
	return
}

func (l *LinkShape) String() (out string) {
	switch l.Op {
	case "bias":
		out = Spf("(bias %s)", l.To)
	case "tunnel":
		r := l.Ranges
		out = Spf("(tunnel %s %d %d %s %d %d)", l.From, r[0], r[1], l.To, r[2], r[3])
	default:
		out = Spf("(%s %s %s)", l.Op, l.From, l.To)
	}
	return
}

// SyntaxError is a syntax error.
type SyntaxError struct {
	msg  string
	node *ast.Node
}

func (e *SyntaxError) Error() string {
	pos := "-"
	if tok := e.node.Token(); tok != nil {
		p := tok.Pos()
		pos = Spf("%d:%d", p.Line, p.Column)
	}
	return Spf("[shape:%s] %s:\n%s", pos, e.msg, e.node.String())
}

// Msg returns the message without position or node.
func (e *SyntaxError) Msg() string {
	return e.msg
}

// synck raises a syntax err if cond is false.
func synck(node *ast.Node, cond bool, args ...interface{}) {
	if !cond {
		msg := FormatArgs(args...)
		panic(&SyntaxError{msg, node})
	}
}

// syntaxReturn turns a SyntaxError raised by synck into err. Other
// panics pass through.
func syntaxReturn(err *error) {
	r := recover()
	if r == nil {
		return
	}
	se, ok := r.(*SyntaxError)
	if !ok {
		panic(r)
	}
	*err = se
}

// Parse parses a network description. Malformed text yields a
// *SyntaxError.
func Parse(txt string) (s *Shape, err error) {
	defer Return(&err)
	defer syntaxReturn(&err)
	root, err := parser.Parse([]byte(txt))
	Ck(err)

	// root is a list
	synck(root, root.Type() == ast.NodeTypeList, "root is not a list")
	// root has one child
	children := root.List()
	synck(root, len(children) == 1, "root has %d children", len(children))
	// root's child is an expression
	expr := children[0]
	synck(expr, expr.Type() == ast.NodeTypeExpression, "root's child is not an expression")
	s, err = parseShape(expr)
	Ck(err)
	return
}

// Expr is a parsed s-expression. Leaves have no Args and Sub unset.
type Expr struct {
	Op   string
	Args []Expr
	Sub  bool
	node *ast.Node
}

// leaf returns the text of a leaf argument.
func (e Expr) leaf(what string) string {
	synck(e.node, !e.Sub, "%s must not be a list", what)
	return e.Op
}

func (e Expr) integer(what string) int {
	txt := e.leaf(what)
	i, err := strconv.Atoi(txt)
	synck(e.node, err == nil, "%s is not an integer: %s", what, txt)
	return i
}

func (e Expr) arity(n int) {
	synck(e.node, len(e.Args) == n, "%s takes %d arguments, got %d", e.Op, n, len(e.Args))
}

func parseShape(n *ast.Node) (s *Shape, err error) {
	defer Return(&err)

	expr, err := parseExpr(n)
	Ck(err)
	synck(n, len(expr.Args) > 0, "missing network kind")
	s = &Shape{
		Name: expr.Op,
		Kind: expr.Args[0].leaf("network kind"),
	}
	for _, stmt := range expr.Args[1:] {
		synck(stmt.node, stmt.Sub, "expected a statement, got %s", stmt.Op)
		switch stmt.Op {
		case "group":
			s.Groups = append(s.Groups, parseGroup(stmt))
		case "connect", "elman", "freeze":
			stmt.arity(2)
			s.Links = append(s.Links, &LinkShape{
				Op:   stmt.Op,
				From: stmt.Args[0].leaf("source group"),
				To:   stmt.Args[1].leaf("target group"),
			})
		case "bias":
			stmt.arity(1)
			s.Links = append(s.Links, &LinkShape{Op: "bias", To: stmt.Args[0].leaf("group")})
		case "tunnel":
			stmt.arity(6)
			a := stmt.Args
			s.Links = append(s.Links, &LinkShape{
				Op:   "tunnel",
				From: a[0].leaf("source group"),
				To:   a[3].leaf("target group"),
				Ranges: [4]int{
					a[1].integer("range start"), a[2].integer("range end"),
					a[4].integer("range start"), a[5].integer("range end"),
				},
			})
		case "input":
			stmt.arity(1)
			s.Input = stmt.Args[0].leaf("input group")
		case "output":
			stmt.arity(1)
			s.Output = stmt.Args[0].leaf("output group")
		case "set":
			stmt.arity(2)
			p := &ParamShape{Name: stmt.Args[0].leaf("parameter"), Value: stmt.Args[1].leaf("value")}
			_, perr := strconv.ParseFloat(p.Value, 64)
			synck(stmt.Args[1].node, perr == nil, "parameter %s: not a number: %s", p.Name, p.Value)
			s.Params = append(s.Params, p)
		case "random", "learn", "update", "order", "similarity":
			stmt.arity(1)
			s.Algorithms = append(s.Algorithms, &ParamShape{Name: stmt.Op, Value: stmt.Args[0].leaf("algorithm")})
		default:
			synck(stmt.node, false, "unknown statement: %s", stmt.Op)
		}
	}
	return
}

func parseGroup(stmt Expr) (g *GroupShape) {
	synck(stmt.node, len(stmt.Args) >= 2, "group needs a name and a size")
	g = &GroupShape{
		Name: stmt.Args[0].leaf("group name"),
		Size: stmt.Args[1].integer("group size"),
	}
	for _, opt := range stmt.Args[2:] {
		if !opt.Sub {
			switch opt.Op {
			case "bias":
				g.Bias = true
			case "recurrent":
				g.Recurrent = true
			default:
				synck(opt.node, false, "unknown group flag: %s", opt.Op)
			}
			continue
		}
		opt.arity(1)
		switch opt.Op {
		case "act":
			g.Act = opt.Args[0].leaf("activation function")
		case "err":
			g.Err = opt.Args[0].leaf("error function")
		default:
			synck(opt.node, false, "unknown group option: %s", opt.Op)
		}
	}
	return
}

func parseExpr(n *ast.Node) (expr *Expr, err error) {
	defer Return(&err)
	children := n.List()
	synck(n, len(children) > 0, "missing opcode")
	synck(n, children[0].Type() == ast.NodeTypeSymbol, "first word is not a symbol")
	expr = &Expr{Sub: true, node: n}
	expr.Op = children[0].Encode()
	for i := 1; i < len(children); i++ {
		switch children[i].Type() {
		case ast.NodeTypeSymbol, ast.NodeTypeInt, ast.NodeTypeFloat:
			expr.Args = append(expr.Args, Expr{Op: children[i].Encode(), node: children[i]})
		case ast.NodeTypeExpression:
			arg, err := parseExpr(children[i])
			Ck(err)
			expr.Args = append(expr.Args, *arg)
		default:
			synck(children[i], false, "unknown node type %v", children[i].Type())
		}
	}
	return
}
