// Package callgraph builds the function-level call graph of an IGR program.
package callgraph

import (
	"slices"

	"dlc/internal/igr"
)

type Graph struct {
	Index
	Edges   [][]FuncID // Edges[caller] = []callee, без самовызовов
	Indeg   []int      // входящие степени для Kahn (только присутствующие функции)
	Present []bool     // функция зарегистрирована, а не только вызывается
	Sites   []int      // число нерекурсивных мест вызова каждой функции
	SelfRec []bool     // функция вызывает саму себя напрямую
}

// Build walks every function of g once and records who calls whom.
func Build(g *igr.Graph) *Graph {
	idx := BuildIndex(g)
	n := len(idx.IDToName)
	cg := &Graph{
		Index:   idx,
		Edges:   make([][]FuncID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
		Sites:   make([]int, n),
		SelfRec: make([]bool, n),
	}
	for _, name := range g.FunctionNames() {
		cg.Present[int(idx.NameToID[name])] = true
	}

	seen := make([]map[FuncID]struct{}, n)
	g.Walk(igr.Visitor{Node: func(node *igr.Node) {
		if node.Kind != igr.NodeCall {
			return
		}
		from := idx.NameToID[g.FuncOf(node.Owner).Name]
		to := idx.NameToID[node.Call.Callee]
		if node.Call.Recursive || from == to {
			cg.SelfRec[int(from)] = true
			return
		}
		cg.Sites[int(to)]++
		if seen[from] == nil {
			seen[from] = make(map[FuncID]struct{})
		}
		if _, dup := seen[from][to]; dup {
			return
		}
		seen[from][to] = struct{}{}
		cg.Edges[from] = append(cg.Edges[from], to)
		if cg.Present[int(to)] {
			cg.Indeg[int(to)]++
		}
	}})
	for from := range cg.Edges {
		if len(cg.Edges[from]) > 1 {
			slices.Sort(cg.Edges[from])
		}
	}
	return cg
}

// ID returns the id of a function name.
func (cg *Graph) ID(name string) (FuncID, bool) {
	id, ok := cg.NameToID[name]
	return id, ok
}

// Reachable returns name and every function it transitively calls, sorted.
func (cg *Graph) Reachable(name string) []string {
	start, ok := cg.NameToID[name]
	if !ok {
		return nil
	}
	visited := make([]bool, len(cg.Edges))
	stack := []FuncID{start}
	visited[start] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range cg.Edges[id] {
			if !visited[to] {
				visited[to] = true
				stack = append(stack, to)
			}
		}
	}
	var out []string
	for i, ok := range visited {
		if ok {
			out = append(out, cg.IDToName[i])
		}
	}
	return out
}

// OnCycle reports whether name takes part in a call cycle, either by
// calling itself or through other functions.
func (cg *Graph) OnCycle(name string) bool {
	start, ok := cg.NameToID[name]
	if !ok {
		return false
	}
	if cg.SelfRec[start] {
		return true
	}
	visited := make([]bool, len(cg.Edges))
	stack := slices.Clone(cg.Edges[start])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == start {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, cg.Edges[id]...)
	}
	return false
}
