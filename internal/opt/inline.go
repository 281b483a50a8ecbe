package opt

import (
	"context"
	"fmt"

	"dlc/internal/callgraph"
	"dlc/internal/igr"
	"dlc/internal/trace"
)

// DefaultInlineThreshold is the largest call-site count at which a function
// is still inlined everywhere.
const DefaultInlineThreshold = 2

// Inline removes functions nobody calls and copies small non-recursive
// functions into their call sites.
//
// Each round counts the non-recursive call sites of every function and
// acts on the first function, callees before callers, that either has no
// sites left or qualifies for inlining: it is not on a call cycle and has
// at most Threshold sites or no parameters. The entry function is never
// touched.
type Inline struct {
	Entry     string
	Threshold int
}

func (*Inline) Name() string { return PassInline }

func (p *Inline) Run(ctx context.Context, g *igr.Graph) (bool, error) {
	changed := false
	for {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		acted, err := p.round(ctx, g)
		if err != nil || !acted {
			return changed, err
		}
		changed = true
	}
}

func (p *Inline) entry() string {
	if p.Entry == "" {
		return "main"
	}
	return p.Entry
}

func (p *Inline) threshold() int {
	if p.Threshold <= 0 {
		return DefaultInlineThreshold
	}
	return p.Threshold
}

// CallSites maps every function name to its non-recursive call nodes in
// traversal order. Functions without sites map to an empty list.
func CallSites(g *igr.Graph) map[string][]igr.ID {
	sites := make(map[string][]igr.ID)
	for _, name := range g.FunctionNames() {
		sites[name] = nil
	}
	g.Walk(igr.Visitor{
		Node: func(n *igr.Node) {
			if n.Kind == igr.NodeCall && !n.Call.Recursive {
				sites[n.Call.Callee] = append(sites[n.Call.Callee], n.ID)
			}
		},
	})
	return sites
}

func (p *Inline) round(ctx context.Context, g *igr.Graph) (bool, error) {
	sites := CallSites(g)
	cg := callgraph.Build(g)
	for _, name := range callgraph.CalleesFirst(cg) {
		fn, err := g.Function(name)
		if err != nil || name == p.entry() {
			continue
		}
		calls := sites[name]
		if len(calls) == 0 {
			trace.PointCtx(ctx, trace.ScopeModule, "inline-drop", name)
			if err := g.RemoveFunction(name); err != nil {
				return false, fmt.Errorf("inline: %w", err)
			}
			return true, nil
		}
		if fn.Recursive || cg.OnCycle(name) {
			continue
		}
		if len(calls) > p.threshold() && fn.Arity() != 0 {
			continue
		}
		trace.PointCtx(ctx, trace.ScopeModule, "inline", name, "sites", fmt.Sprint(len(calls)))
		for _, id := range calls {
			inlineCall(g, g.Node(id), fn)
		}
		return true, nil
	}
	return false, nil
}

// inlineCall replaces call by a copy of fn's body in the call's subgraph.
func inlineCall(g *igr.Graph, call *igr.Node, fn *igr.SubGraph) {
	bc := g.CopyBody(fn.ID, call.Owner)
	args := make([]igr.Bindable, call.Arity())
	for i := range args {
		args[i] = g.Source(call.InRef(i))
		for _, dst := range bc.Params[i] {
			g.Connect(args[i], dst)
		}
	}
	result := bc.Result
	if result == nil {
		result = args[bc.ResultParam]
	}
	g.Retarget(call.OutRef(), result)
	g.Delete(call.ID)
}
