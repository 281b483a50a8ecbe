package callgraph

import (
	"sort"

	"dlc/internal/igr"
)

type FuncID uint32

type Index struct {
	NameToID map[string]FuncID
	IDToName []string
}

// собрать имена функций и вызываемых, отсортировать, раздать ID по порядку
func BuildIndex(g *igr.Graph) Index {
	uniq := make(map[string]struct{})
	for _, name := range g.FunctionNames() {
		uniq[name] = struct{}{}
	}
	g.Walk(igr.Visitor{Node: func(n *igr.Node) {
		if n.Kind == igr.NodeCall {
			uniq[n.Call.Callee] = struct{}{}
		}
	}})

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]FuncID, len(names))
	for i, name := range names {
		nameToID[name] = FuncID(i)
	}
	return Index{NameToID: nameToID, IDToName: names}
}

func (idx Index) Names(ids []FuncID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
