package mesh

import (
	"strconv"

	"github.com/emicklei/dot"
)

// Graph returns the network topology as a graphviz graph. Frozen
// connections are dashed and copy connections dotted.
func (n *Network) Graph() (g *dot.Graph) {
	g = dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "BT")
	g.Attr("label", n.name)
	nodes := make(map[*Group]dot.Node)
	for _, grp := range n.groups.Elements() {
		nd := g.Node(grp.name).Box()
		nd.Label(grp.name + " (" + strconv.Itoa(grp.Size()) + ")")
		switch {
		case grp == n.Input:
			nd.Attr("shape", "invhouse")
		case grp == n.Output:
			nd.Attr("shape", "house")
		case grp.Bias:
			nd.Attr("shape", "ellipse")
		}
		nodes[grp] = nd
	}
	for _, c := range n.conns.Elements() {
		e := g.Edge(nodes[c.From], nodes[c.To])
		if c.Frozen {
			e.Dashed()
		}
	}
	for _, grp := range n.groups.Elements() {
		for _, ctx := range grp.Context.Elements() {
			g.Edge(nodes[grp], nodes[ctx]).Dotted().Attr("constraint", "false")
		}
	}
	return
}

// Dot returns the network topology in graphviz dot syntax.
func (n *Network) Dot() string {
	return n.Graph().String()
}
