package scope

import (
	"testing"

	"dlc/internal/igr"
)

func setup(t *testing.T) (*igr.Graph, *igr.SubGraph, *Resolver) {
	t.Helper()
	g := igr.New()
	fn := g.NewSubGraph("f")
	fn.AddParam(igr.TypeInt)
	fn.AddParam(igr.TypeInt)
	if err := g.AddFunction(fn); err != nil {
		t.Fatal(err)
	}
	r := New(g)
	r.EnterFunction(fn)
	r.Declare("a", fn.EntryRef(0))
	r.Declare("b", fn.EntryRef(1))
	return g, fn, r
}

func TestLookupThreadsOnce(t *testing.T) {
	g, fn, r := setup(t)
	iff := g.AddIf(fn.ID)
	g.Bind(fn.EntryRef(0), iff.InRef(0))

	r.Enter(g.SubGraph(iff.If.Then))
	first, ok := r.Lookup("b")
	if !ok {
		t.Fatalf("b not found")
	}
	second, _ := r.Lookup("b")
	if first != second {
		t.Fatalf("repeated lookup threaded twice: %v vs %v", first, second)
	}
	if iff.Arity() != 2 {
		t.Fatalf("if arity = %d, want 2", iff.Arity())
	}
	if src, _ := iff.In[1].Source(); src != fn.EntryRef(1) {
		t.Fatalf("threaded input reads %v", src)
	}
	if ref := first.(igr.OutRef); ref.Owner != iff.If.Then || ref.Index != 1 {
		t.Fatalf("lookup returned %v, want then entry 1", ref)
	}
	if typ := g.SubGraph(iff.If.Then).Entry[1].Type; typ != igr.TypeInt {
		t.Fatalf("threaded entry type = %s", typ)
	}
	r.Leave()

	// the sibling branch reuses the input already threaded for b
	r.Enter(g.SubGraph(iff.If.Else))
	other, _ := r.Lookup("b")
	if ref := other.(igr.OutRef); ref.Owner != iff.If.Else || ref.Index != 1 {
		t.Fatalf("else lookup returned %v, want else entry 1", ref)
	}
	if iff.Arity() != 2 {
		t.Fatalf("else lookup added a port: arity %d", iff.Arity())
	}
}

func TestLookupNeverReusesConditionPort(t *testing.T) {
	g, fn, r := setup(t)
	iff := g.AddIf(fn.ID)
	g.Bind(fn.EntryRef(0), iff.InRef(0))

	r.Enter(g.SubGraph(iff.If.Then))
	src, _ := r.Lookup("a")
	if ref := src.(igr.OutRef); ref.Index != 1 {
		t.Fatalf("a resolved to entry %d, want a fresh capture port", ref.Index)
	}
}

func TestLookupThreadsTransitively(t *testing.T) {
	g, fn, r := setup(t)
	outer := g.AddFor(fn.ID)
	g.Bind(fn.EntryRef(0), outer.InRef(0))
	body := g.SubGraph(outer.For.Body)
	r.Enter(body)
	r.Declare("el", body.EntryRef(0))

	inner := g.AddIf(body.ID)
	g.Bind(body.EntryRef(0), inner.InRef(0))
	then := g.SubGraph(inner.If.Then)
	r.Enter(then)
	if r.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", r.Depth())
	}

	src, ok := r.Lookup("b")
	if !ok {
		t.Fatalf("b not found two levels deep")
	}
	if ref := src.(igr.OutRef); ref.Owner != then.ID {
		t.Fatalf("lookup returned %v, want an entry of the innermost branch", ref)
	}
	if outer.Arity() != 2 || inner.Arity() != 2 {
		t.Fatalf("arities for/if = %d/%d, want 2/2", outer.Arity(), inner.Arity())
	}
	if s, _ := inner.In[1].Source(); s != body.EntryRef(1) {
		t.Fatalf("inner capture reads %v, want the for body entry", s)
	}

	el, _ := r.Lookup("el")
	if ref := el.(igr.OutRef); ref.Owner != then.ID || ref.Index != 2 {
		t.Fatalf("el resolved to %v", ref)
	}
	if err := igr.Validate(g); err == nil {
		t.Fatalf("expected unbound exits to be reported")
	}
}

func TestLookupPassesLiteralsThrough(t *testing.T) {
	g, fn, r := setup(t)
	r.PushScope()
	lit := igr.NewLiteral(igr.IntValue(3))
	r.Declare("k", lit)

	iff := g.AddIf(fn.ID)
	g.Bind(fn.EntryRef(0), iff.InRef(0))
	r.Enter(g.SubGraph(iff.If.Then))
	src, _ := r.Lookup("k")
	if src != igr.Bindable(lit) {
		t.Fatalf("literal lookup returned %v", src)
	}
	if iff.Arity() != 1 {
		t.Fatalf("literal was threaded as a port")
	}
}

func TestShadowingAndScopes(t *testing.T) {
	g, fn, r := setup(t)
	r.PushScope()
	shadow := g.AddOperation(fn.ID, "neg", 1)
	if !r.Declare("a", shadow.OutRef()) {
		t.Fatalf("shadowing in a nested scope rejected")
	}
	if r.Declare("a", shadow.OutRef()) {
		t.Fatalf("duplicate in the same scope accepted")
	}
	if src, _ := r.Lookup("a"); src != igr.Bindable(shadow.OutRef()) {
		t.Fatalf("inner a = %v", src)
	}
	r.PopScope()
	if src, _ := r.Lookup("a"); src != igr.Bindable(fn.EntryRef(0)) {
		t.Fatalf("outer a = %v", src)
	}
	if _, ok := r.Lookup("zzz"); ok {
		t.Fatalf("unknown name resolved")
	}
}
