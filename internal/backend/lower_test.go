package backend

import (
	"errors"
	"strings"
	"testing"

	"dlc/internal/dis"
	"dlc/internal/igr"
)

func function(t *testing.T, g *igr.Graph, name string, params int) *igr.SubGraph {
	t.Helper()
	sg := g.NewSubGraph(name)
	for range params {
		sg.AddParam(igr.TypeInt)
	}
	if err := g.AddFunction(sg); err != nil {
		t.Fatal(err)
	}
	return sg
}

func lit(v int64) *igr.Literal { return igr.NewLiteral(igr.IntValue(v)) }

func TestLowerOperation(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	add := g.AddOperation(main.ID, "add", 2)
	g.Bind(main.EntryRef(0), add.InRef(0))
	g.BindLiteral(lit(1), add.InRef(1))
	g.Bind(add.OutRef(), main.ExitRef())

	res, err := Lower(g, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := strings.Join([]string{
		"$ Starting subgraph main",
		"INST 0 2 SNK",
		"INST 0 3 RST",
		"INST 1 0 OPR add 2",
		"",
		"LINK 0 2 0 -> 1 0 0",
		"LINK 1 0 0 -> 0 3 0",
		"LITR 1 -> 1 0 1",
		"$ Leaving subgraph main",
		"",
		"$ Implicit call to main",
		"INST 0 4 CHN 1 1 0 2 0 1",
		"LINK 0 0 0 -> 0 4 0",
		"",
	}, "\n")
	if res.Text != want {
		t.Fatalf("listing:\n%s\nwant:\n%s", res.Text, want)
	}
}

func TestLowerPatchesForwardCalls(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	call := g.AddCall(main.ID, "f", 1)
	g.Bind(main.EntryRef(0), call.InRef(0))
	g.Bind(call.OutRef(), main.ExitRef())
	f := function(t, g, "f", 1)
	g.Bind(f.EntryRef(0), f.ExitRef())

	res, err := Lower(g, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	inst, ok := res.Program.Instruction(dis.Addr{Chunk: 0, Key: 4})
	if !ok || inst.Op != "CHN" {
		t.Fatalf("no call at 0 4: %+v", inst)
	}
	if got := strings.Join(inst.Args, " "); got != "1 1 0 6 0 5" {
		t.Fatalf("call args = %q, want callee SNK 0 6 and return sink 0 5", got)
	}
	// the call's producer is its return sink, its consumer the CHN itself
	for _, want := range []string{"LINK 0 2 0 -> 0 4 0", "LINK 0 5 0 -> 0 3 0"} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("listing misses %q:\n%s", want, res.Text)
		}
	}
}

func TestLowerIf(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	iff := g.AddIf(main.ID)
	g.Bind(main.EntryRef(0), iff.InRef(0))
	then := g.SubGraph(iff.If.Then)
	g.Bind(then.EntryRef(0), then.ExitRef())
	els := g.SubGraph(iff.If.Else)
	g.BindLiteral(lit(0), els.ExitRef())
	g.Bind(iff.OutRef(), main.ExitRef())

	res, err := Lower(g, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	for _, want := range []string{
		"INST 0 4 SWI 0 6 0 7",
		"INST 0 5 SNK",
		"LINK 0 2 0 -> 0 4 0", // condition into the switch
		"LINK 0 7 0 -> 0 5 0", // then returns its entry into the shared sink
		"INST 0 8 CNS <= 0",   // else literal triggered by its entry
		"LINK 0 6 0 -> 0 8 0",
		"LINK 0 8 0 -> 0 5 0",
		"LINK 0 5 0 -> 0 3 0", // if result into the function exit
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("listing misses %q:\n%s", want, res.Text)
		}
	}
}

func TestLowerFor(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	loop := g.AddFor(main.ID)
	g.Bind(main.EntryRef(0), loop.InRef(0))
	body := g.SubGraph(loop.For.Body)
	neg := g.AddOperation(body.ID, "neg", 1)
	g.Bind(body.EntryRef(0), neg.InRef(0))
	g.Bind(neg.OutRef(), body.ExitRef())
	g.Bind(loop.OutRef(), main.ExitRef())

	res, err := Lower(g, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	for _, want := range []string{
		"INST 1 0 SPL 1 0 4 1 1",
		"INST 0 4 SNK",
		"INST 0 5 RST",
		"INST 1 1 OPR array 0",
		"INST 1 2 OPR neg 1",
		"LINK 0 4 0 -> 1 2 0",
		"LINK 1 2 0 -> 0 5 0",
		"LINK 1 1 0 -> 0 3 0",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("listing misses %q:\n%s", want, res.Text)
		}
	}
}

func TestLowerTrivialEntry(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 0)
	g.BindLiteral(lit(42), main.ExitRef())

	res, err := Lower(g, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !res.Trivial || res.Text != "TRIV <= 42" || res.Program != nil {
		t.Fatalf("result = %+v", res)
	}

	g2 := igr.New()
	m2 := function(t, g2, "main", 0)
	call := g2.AddCall(m2.ID, "main", 0)
	g2.Bind(call.OutRef(), m2.ExitRef())
	if _, err := Lower(g2, Options{}); !errors.Is(err, ErrEntryNotConstant) {
		t.Fatalf("non-constant entry: %v", err)
	}
	if _, err := Lower(g2, Options{Entry: "start"}); !errors.Is(err, igr.ErrUnknownFunction) {
		t.Fatalf("missing entry: %v", err)
	}
}

func TestLowerLinkTo(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	add := g.AddOperation(main.ID, "add", 2)
	g.BindLiteral(lit(2), add.InRef(0))
	g.BindLiteral(lit(3), add.InRef(1))
	mul := g.AddOperation(main.ID, "mul", 2)
	g.Bind(main.EntryRef(0), mul.InRef(0))
	g.Bind(add.OutRef(), mul.InRef(1))
	g.Bind(mul.OutRef(), main.ExitRef())

	res, err := Lower(g, Options{LinkTo: add})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Program.Inputs != 2 {
		t.Fatalf("inputs = %d", res.Program.Inputs)
	}
	// add is OPR 1 0; its inputs come from the start instruction and its
	// output goes to stop, not into mul
	for _, want := range []string{"LINK 0 0 0 -> 1 0 0", "LINK 0 0 1 -> 1 0 1", "LINK 1 0 0 -> 0 1 0"} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("listing misses %q:\n%s", want, res.Text)
		}
	}
	for _, bad := range []string{"LITR 2", "LINK 1 0 0 -> 1 1 1", "Implicit call"} {
		if strings.Contains(res.Text, bad) {
			t.Fatalf("listing contains %q:\n%s", bad, res.Text)
		}
	}
}

func TestLowerUnboundPortPanics(t *testing.T) {
	g := igr.New()
	main := function(t, g, "main", 1)
	neg := g.AddOperation(main.ID, "neg", 1)
	g.Bind(neg.OutRef(), main.ExitRef())

	defer func() {
		if _, ok := recover().(igr.InvariantError); !ok {
			t.Fatalf("expected invariant panic")
		}
	}()
	_, _ = Lower(g, Options{})
}
