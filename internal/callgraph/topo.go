package callgraph

import (
	"slices"
)

type Topo struct {
	Order   []FuncID   // вызывающие раньше вызываемых (только зарегистрированные)
	Batches [][]FuncID // волны независимых функций
	Cyclic  bool
	Cycles  []FuncID // узлы, оставшиеся в цикле или за ним
}

func ToposortKahn(g *Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]FuncID, 0, nodeCount),
		Batches: make([][]FuncID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]FuncID, 0, nodeCount)
	for i := range nodeCount {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, FuncID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]FuncID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, FuncID(i))
			}
		}
	}
	return topo
}

// CalleesFirst returns registered function names with callees before their
// callers; functions stuck behind a cycle come last in name order.
func CalleesFirst(g *Graph) []string {
	topo := ToposortKahn(g)
	names := g.Names(topo.Order)
	slices.Reverse(names)
	return append(names, g.Names(topo.Cycles)...)
}
