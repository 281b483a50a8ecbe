package testkit

import (
	"errors"
	"fmt"

	"dlc/internal/igr"
)

// CheckGraphInvariants runs the structural checks of igr.Validate plus
// the ones only tests care about:
// 1) every registered function is reachable by name and owns itself
// 2) no node appears twice across the whole program
func CheckGraphInvariants(g *igr.Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}
	var errs []error
	if err := igr.Validate(g); err != nil {
		errs = append(errs, err)
	}

	// 1) registry round trip
	for _, fn := range g.Functions() {
		got, err := g.Function(fn.Name)
		if err != nil || got != fn {
			errs = append(errs, fmt.Errorf("function %s does not resolve to itself", fn.Name))
		}
		if !fn.IsFunction() || fn.Func != fn.ID {
			errs = append(errs, fmt.Errorf("function %s has branch back-references", fn.Name))
		}
	}

	// 2) unique membership
	seen := make(map[igr.ID]struct{})
	for _, n := range Nodes(g) {
		if _, dup := seen[n.ID]; dup {
			errs = append(errs, fmt.Errorf("%s visited twice", n))
		}
		seen[n.ID] = struct{}{}
	}
	return errors.Join(errs...)
}

// CheckNoOrphans reports nodes whose output feeds nothing.
func CheckNoOrphans(g *igr.Graph) error {
	var errs []error
	for _, n := range Nodes(g) {
		if !n.Out.Bound() {
			errs = append(errs, fmt.Errorf("%s in %s has no consumer", n, g.SubGraph(n.Owner).Name))
		}
	}
	return errors.Join(errs...)
}

// Nodes lists every node of the program in traversal order.
func Nodes(g *igr.Graph) []*igr.Node {
	var out []*igr.Node
	g.Walk(igr.Visitor{Node: func(n *igr.Node) { out = append(out, n) }})
	return out
}

// CountCalls counts call sites targeting callee.
func CountCalls(g *igr.Graph, callee string) int {
	count := 0
	for _, n := range Nodes(g) {
		if n.Kind == igr.NodeCall && n.Call.Callee == callee {
			count++
		}
	}
	return count
}

// CountOps counts operation nodes with the given opcode.
func CountOps(g *igr.Graph, code string) int {
	count := 0
	for _, n := range Nodes(g) {
		if n.Kind == igr.NodeOp && n.Op.Code == code {
			count++
		}
	}
	return count
}
