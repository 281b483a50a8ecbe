package igr

import "slices"

// Visitor holds the callbacks of a depth-first walk. Nil callbacks are skipped.
type Visitor struct {
	Node          func(*Node)
	EnterSubGraph func(*SubGraph)
	LeaveSubGraph func(*SubGraph)
	EnterCompound func(*Node)
	LeaveCompound func(*Node)
}

// Walk visits every registered function in registration order.
//
// Each node list is snapshotted before iteration, so callbacks may add or
// remove nodes freely: nodes removed before their turn are skipped, nodes
// added during the walk of a list are not visited in that walk, and a node
// removed by its own callback is not descended into.
func (g *Graph) Walk(v Visitor) {
	for _, id := range slices.Clone(g.order) {
		g.WalkSubGraph(id, v)
	}
}

// WalkSubGraph visits one subgraph and, through compound nodes, every
// subgraph nested in it.
func (g *Graph) WalkSubGraph(id ID, v Visitor) {
	sg := g.SubGraph(id)
	if sg == nil {
		return
	}
	if v.EnterSubGraph != nil {
		v.EnterSubGraph(sg)
	}
	for _, nid := range slices.Clone(sg.Nodes) {
		n := g.Node(nid)
		if n == nil {
			continue
		}
		if v.Node != nil {
			v.Node(n)
		}
		if g.Node(nid) == nil || !n.IsCompound() {
			continue
		}
		if v.EnterCompound != nil {
			v.EnterCompound(n)
		}
		for _, b := range n.Branches() {
			g.WalkSubGraph(b, v)
		}
		if v.LeaveCompound != nil {
			v.LeaveCompound(n)
		}
	}
	if g.SubGraph(id) == nil {
		return
	}
	if v.LeaveSubGraph != nil {
		v.LeaveSubGraph(sg)
	}
}
