package mesh

// Verify checks that the network has input and output groups and that
// the output can be reached from the input.
func (n *Network) Verify() (err error) {
	if n.Input == nil {
		return configErrorf("network %s has no input group", n.name)
	}
	if n.Output == nil {
		return configErrorf("network %s has no output group", n.name)
	}
	seen := map[*Group]bool{n.Input: true}
	queue := []*Group{n.Input}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if g == n.Output {
			return
		}
		for _, l := range g.Outgoing.Elements() {
			if !seen[l.Group] {
				seen[l.Group] = true
				queue = append(queue, l.Group)
			}
		}
	}
	return configErrorf("network %s: no path from %s to %s", n.name, n.Input.name, n.Output.name)
}
