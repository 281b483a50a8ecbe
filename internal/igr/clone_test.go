package igr

import (
	"strings"
	"testing"
)

// buildSquarePlusOne builds sq(x) = if x then x*x else 1 with a captured
// input threaded into the then branch.
func buildSquarePlusOne(t *testing.T, g *Graph) *SubGraph {
	t.Helper()
	sq := newFunc(t, g, "sq", 1)
	iff := g.AddIf(sq.ID)
	g.Bind(sq.EntryRef(0), iff.InRef(0))
	p := g.AddCompoundPort(iff.ID)
	g.Bind(sq.EntryRef(0), iff.InRef(p))

	then := g.SubGraph(iff.If.Then)
	mul := g.AddOperation(then.ID, "mul", 2)
	g.Bind(then.EntryRef(p), mul.InRef(0))
	g.Bind(then.EntryRef(p), mul.InRef(1))
	g.Bind(mul.OutRef(), then.ExitRef())

	els := g.SubGraph(iff.If.Else)
	g.BindLiteral(NewLiteral(IntValue(1)), els.ExitRef())

	g.Bind(iff.OutRef(), sq.ExitRef())
	return sq
}

func TestCopyBodyDeepCopiesBranches(t *testing.T) {
	g := New()
	sq := buildSquarePlusOne(t, g)
	main := newFunc(t, g, "main", 1)
	before := g.NodeCount()

	bc := g.CopyBody(sq.ID, main.ID)

	if got := g.NodeCount() - before; got != 2 {
		t.Fatalf("copied %d nodes, want 2 (if + mul)", got)
	}
	if len(bc.Params) != 1 || len(bc.Params[0]) != 2 {
		t.Fatalf("params = %v, want two consumers of entry 0", bc.Params)
	}
	for _, in := range bc.Params[0] {
		if g.In(in).Bound() {
			t.Fatalf("param consumer %v should be left unbound", in)
		}
		g.Bind(main.EntryRef(0), in)
	}
	res, ok := bc.Result.(OutRef)
	if !ok || g.Node(res.Owner).Kind != NodeIf {
		t.Fatalf("result = %#v, want the copied if", bc.Result)
	}
	g.Bind(res, main.ExitRef())

	cp := g.Node(res.Owner)
	els := g.SubGraph(cp.If.Else)
	orig := g.SubGraph(g.Node(sq.Nodes[0]).If.Else)
	if els.Exit.Literal() == orig.Exit.Literal() {
		t.Fatalf("branch literal shared between original and copy")
	}
	if g.FuncOf(els.ID) != main {
		t.Fatalf("copied branch func back-reference points at %s", g.FuncOf(els.ID).Name)
	}
	if err := Validate(g); err != nil {
		t.Fatalf("Validate after copy: %v", err)
	}
}

func TestCopyBodyParamResult(t *testing.T) {
	g := New()
	id := newFunc(t, g, "id", 1)
	g.Bind(id.EntryRef(0), id.ExitRef())
	main := newFunc(t, g, "main", 0)

	bc := g.CopyBody(id.ID, main.ID)
	if bc.Result != nil || bc.ResultParam != 0 {
		t.Fatalf("result = %v/%d, want entry 0", bc.Result, bc.ResultParam)
	}
}

func TestCopyBodyRecomputesRecursion(t *testing.T) {
	g := New()
	helper := newFunc(t, g, "helper", 0)
	call := g.AddCall(helper.ID, "main", 0)
	g.Bind(call.OutRef(), helper.ExitRef())
	main := newFunc(t, g, "main", 0)

	bc := g.CopyBody(helper.ID, main.ID)
	cp := g.Node(bc.Nodes[call.ID])
	if !cp.Call.Recursive || !main.Recursive {
		t.Fatalf("call to main copied into main should become recursive")
	}
}

func TestWriteDot(t *testing.T) {
	g := New()
	buildSquarePlusOne(t, g)
	var sb strings.Builder
	if err := WriteDot(&sb, g); err != nil {
		t.Fatalf("WriteDot: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"digraph IGR {", "cluster_sq", "cluster_compound_", "sq_in:O0 ->", "mul"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dot output misses %q:\n%s", want, out)
		}
	}
}
