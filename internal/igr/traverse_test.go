package igr

import (
	"fmt"
	"slices"
	"testing"
)

func TestWalkCallbackOrder(t *testing.T) {
	g := New()
	f := newFunc(t, g, "f", 1)
	a := g.AddOperation(f.ID, "int", 1)
	iff := g.AddIf(f.ID)
	g.AddOperation(iff.If.Then, "neg", 1)
	b := g.AddOperation(f.ID, "not", 1)

	var got []string
	g.Walk(Visitor{
		Node:          func(n *Node) { got = append(got, fmt.Sprintf("node %d", n.ID)) },
		EnterSubGraph: func(sg *SubGraph) { got = append(got, "enter "+sg.Name) },
		LeaveSubGraph: func(sg *SubGraph) { got = append(got, "leave "+sg.Name) },
		EnterCompound: func(n *Node) { got = append(got, fmt.Sprintf("in %d", n.ID)) },
		LeaveCompound: func(n *Node) { got = append(got, fmt.Sprintf("out %d", n.ID)) },
	})

	then := g.SubGraph(iff.If.Then)
	els := g.SubGraph(iff.If.Else)
	want := []string{
		"enter f",
		fmt.Sprintf("node %d", a.ID),
		fmt.Sprintf("node %d", iff.ID),
		fmt.Sprintf("in %d", iff.ID),
		"enter " + then.Name,
		fmt.Sprintf("node %d", then.Nodes[0]),
		"leave " + then.Name,
		"enter " + els.Name,
		"leave " + els.Name,
		fmt.Sprintf("out %d", iff.ID),
		fmt.Sprintf("node %d", b.ID),
		"leave f",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("walk order:\n got %v\nwant %v", got, want)
	}
}

// Deleting node K while visiting node K+1 must neither skip nor repeat the
// remaining nodes, and a node deleted ahead of the cursor is never visited.
func TestWalkSnapshotToleratesMutation(t *testing.T) {
	g := New()
	f := newFunc(t, g, "f", 0)
	var ids []ID
	for i := range 5 {
		ids = append(ids, g.AddOperation(f.ID, fmt.Sprintf("op%d", i), 0).ID)
	}

	var visited []ID
	g.Walk(Visitor{Node: func(n *Node) {
		visited = append(visited, n.ID)
		switch n.ID {
		case ids[1]:
			g.RemoveNode(ids[0])
			g.RemoveNode(ids[3])
			g.AddOperation(f.ID, "late", 0)
		}
	}})

	want := []ID{ids[0], ids[1], ids[2], ids[4]}
	if !slices.Equal(visited, want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	if len(f.Nodes) != 4 {
		t.Fatalf("node list has %d entries, want 4", len(f.Nodes))
	}
}

func TestWalkSkipsBranchesOfDeletedCompound(t *testing.T) {
	g := New()
	f := newFunc(t, g, "f", 0)
	iff := g.AddIf(f.ID)
	g.AddOperation(iff.If.Then, "x", 0)

	entered := 0
	g.Walk(Visitor{
		Node: func(n *Node) {
			if n.ID == iff.ID {
				g.RemoveNode(n.ID)
			}
		},
		EnterSubGraph: func(*SubGraph) { entered++ },
	})
	if entered != 1 {
		t.Fatalf("entered %d subgraphs, want only f", entered)
	}
}

func TestWalkSurvivesFunctionRemoval(t *testing.T) {
	g := New()
	f := newFunc(t, g, "f", 0)
	h := newFunc(t, g, "h", 0)
	g.AddOperation(h.ID, "x", 0)
	g.AddOperation(f.ID, "x", 0)

	var names []string
	g.Walk(Visitor{
		EnterSubGraph: func(sg *SubGraph) {
			names = append(names, sg.Name)
			if sg.Name == "f" {
				if err := g.RemoveFunction("h"); err != nil {
					t.Fatalf("RemoveFunction: %v", err)
				}
			}
		},
	})
	if !slices.Equal(names, []string{"f"}) {
		t.Fatalf("walked %v", names)
	}
}
