package testkit

import (
	"fmt"

	"dlc/internal/igr"
)

// Func creates and registers a function with n int parameters.
func Func(g *igr.Graph, name string, params int) *igr.SubGraph {
	sg := g.NewSubGraph(name)
	for range params {
		sg.AddParam(igr.TypeInt)
	}
	if err := g.AddFunction(sg); err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	return sg
}

// Lit returns a fresh int literal.
func Lit(v int64) *igr.Literal { return igr.NewLiteral(igr.IntValue(v)) }

// Op appends an operation fed by srcs in order.
func Op(g *igr.Graph, owner igr.ID, code string, srcs ...igr.Bindable) *igr.Node {
	n := g.AddOperation(owner, code, len(srcs))
	for i, s := range srcs {
		g.Connect(s, n.InRef(i))
	}
	return n
}

// Call appends a call fed by srcs in order.
func Call(g *igr.Graph, owner igr.ID, callee string, srcs ...igr.Bindable) *igr.Node {
	n := g.AddCall(owner, callee, len(srcs))
	for i, s := range srcs {
		g.Connect(s, n.InRef(i))
	}
	return n
}

// Fac builds
//
//	fac(n) = if n < 1 then 1 else n * fac(n - 1)
//
// with the condition coerced through int and n threaded into the branches.
func Fac(g *igr.Graph) *igr.SubGraph {
	fac := Func(g, "fac", 1)
	less := Op(g, fac.ID, "less", fac.EntryRef(0), Lit(1))
	cond := Op(g, fac.ID, "int", less.OutRef())

	iff := g.AddIf(fac.ID)
	g.Bind(cond.OutRef(), iff.InRef(0))
	n := g.AddCompoundPort(iff.ID)
	g.Bind(fac.EntryRef(0), iff.InRef(n))

	then := g.SubGraph(iff.If.Then)
	g.BindLiteral(Lit(1), then.ExitRef())

	els := g.SubGraph(iff.If.Else)
	sub := Op(g, els.ID, "sub", els.EntryRef(n), Lit(1))
	rec := Call(g, els.ID, "fac", sub.OutRef())
	mul := Op(g, els.ID, "mul", els.EntryRef(n), rec.OutRef())
	g.Bind(mul.OutRef(), els.ExitRef())

	g.Bind(iff.OutRef(), fac.ExitRef())
	return fac
}

// ForIn builds
//
//	main(a, b, c, d) = for el in [a..b] do if el > 0 then el + c + d + 7 else 0
//
// Run on 1, 10, 3, 4 it yields [15, 16, ..., 24].
func ForIn(g *igr.Graph) *igr.SubGraph {
	main := Func(g, "main", 4)
	rng := Op(g, main.ID, "range", main.EntryRef(0), main.EntryRef(1))

	loop := g.AddFor(main.ID)
	g.Bind(rng.OutRef(), loop.InRef(0))
	c := g.AddCompoundPort(loop.ID)
	g.Bind(main.EntryRef(2), loop.InRef(c))
	d := g.AddCompoundPort(loop.ID)
	g.Bind(main.EntryRef(3), loop.InRef(d))
	body := g.SubGraph(loop.For.Body)

	more := Op(g, body.ID, "more", body.EntryRef(0), Lit(0))
	cond := Op(g, body.ID, "int", more.OutRef())
	iff := g.AddIf(body.ID)
	g.Bind(cond.OutRef(), iff.InRef(0))
	el := g.AddCompoundPort(iff.ID)
	g.Bind(body.EntryRef(0), iff.InRef(el))
	ic := g.AddCompoundPort(iff.ID)
	g.Bind(body.EntryRef(c), iff.InRef(ic))
	id := g.AddCompoundPort(iff.ID)
	g.Bind(body.EntryRef(d), iff.InRef(id))

	then := g.SubGraph(iff.If.Then)
	s1 := Op(g, then.ID, "add", then.EntryRef(el), then.EntryRef(ic))
	s2 := Op(g, then.ID, "add", s1.OutRef(), then.EntryRef(id))
	s3 := Op(g, then.ID, "add", s2.OutRef(), Lit(7))
	g.Bind(s3.OutRef(), then.ExitRef())

	els := g.SubGraph(iff.If.Else)
	g.BindLiteral(Lit(0), els.ExitRef())

	g.Bind(iff.OutRef(), body.ExitRef())
	g.Bind(loop.OutRef(), main.ExitRef())
	return main
}
