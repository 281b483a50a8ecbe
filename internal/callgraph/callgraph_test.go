package callgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dlc/internal/igr"
)

// program builds functions whose bodies only call the listed callees.
func program(t *testing.T, calls map[string][]string, order ...string) *igr.Graph {
	t.Helper()
	g := igr.New()
	for _, name := range order {
		sg := g.NewSubGraph(name)
		if err := g.AddFunction(sg); err != nil {
			t.Fatal(err)
		}
		for _, callee := range calls[name] {
			g.AddCall(sg.ID, callee, 0)
		}
	}
	return g
}

func TestBuildCountsSites(t *testing.T) {
	g := program(t, map[string][]string{
		"main": {"f", "f", "g"},
		"f":    {"f", "g"},
		"g":    nil,
	}, "main", "f", "g")

	cg := Build(g)
	sites := map[string]int{}
	for i, name := range cg.IDToName {
		sites[name] = cg.Sites[i]
	}
	want := map[string]int{"main": 0, "f": 2, "g": 2}
	if diff := cmp.Diff(want, sites); diff != "" {
		t.Fatalf("sites mismatch (-want +got):\n%s", diff)
	}
	if f, _ := cg.ID("f"); !cg.SelfRec[f] {
		t.Fatalf("f not marked self-recursive")
	}
}

func TestToposortAndCycles(t *testing.T) {
	g := program(t, map[string][]string{
		"main": {"a", "c"},
		"a":    {"b"},
		"b":    {"a", "leaf"},
		"c":    {"leaf"},
		"leaf": nil,
	}, "main", "a", "b", "c", "leaf")
	cg := Build(g)

	for name, want := range map[string]bool{"a": true, "b": true, "c": false, "leaf": false, "main": false} {
		if got := cg.OnCycle(name); got != want {
			t.Errorf("OnCycle(%s) = %v, want %v", name, got, want)
		}
	}

	topo := ToposortKahn(cg)
	if !topo.Cyclic {
		t.Fatalf("cycle a<->b not detected")
	}
	if diff := cmp.Diff([]string{"a", "b", "leaf"}, cg.Names(topo.Cycles)); diff != "" {
		t.Fatalf("cycles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "main", "a", "b", "leaf"}, CalleesFirst(cg)); diff != "" {
		t.Fatalf("callees-first mismatch (-want +got):\n%s", diff)
	}
}

func TestReachable(t *testing.T) {
	g := program(t, map[string][]string{
		"main": {"f"},
		"f":    {"g"},
		"h":    {"g"},
	}, "main", "f", "g", "h")
	cg := Build(g)
	if diff := cmp.Diff([]string{"f", "g"}, cg.Reachable("f")); diff != "" {
		t.Fatalf("Reachable(f) mismatch (-want +got):\n%s", diff)
	}
	if got := cg.Reachable("missing"); got != nil {
		t.Fatalf("Reachable(missing) = %v", got)
	}
}
