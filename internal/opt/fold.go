package opt

import (
	"context"
	"errors"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// Fold replaces nodes fed only by literals with the literal they compute.
//
// A call to a function whose result is constant folds without evaluation.
// A branch whose exit became a literal is collapsed into a single const
// operation triggered by entry 0, so it still produces a token when taken.
type Fold struct {
	Evaluator Evaluator
}

func (*Fold) Name() string { return PassFold }

func (f *Fold) Run(ctx context.Context, g *igr.Graph) (bool, error) {
	changed := false
	for {
		n, err := f.round(ctx, g)
		if err != nil {
			return changed, err
		}
		if n == 0 {
			return changed, nil
		}
		changed = true
	}
}

func (f *Fold) round(ctx context.Context, g *igr.Graph) (int, error) {
	folded := 0
	var failed error
	g.Walk(igr.Visitor{
		Node: func(n *igr.Node) {
			if failed != nil {
				return
			}
			ok, err := f.node(ctx, g, n)
			if err != nil {
				failed = err
				return
			}
			if ok {
				folded++
			}
		},
		LeaveSubGraph: func(sg *igr.SubGraph) {
			if failed == nil && collapse(g, sg) {
				folded++
			}
		},
	})
	return folded, failed
}

func (f *Fold) node(ctx context.Context, g *igr.Graph, n *igr.Node) (bool, error) {
	if n.Kind == igr.NodeCall {
		if callee, err := g.Function(n.Call.Callee); err == nil {
			if v, ok := g.ConstantResult(callee); ok {
				propagate(g, n, v)
				return true, nil
			}
		}
	}
	if !n.AllLiteral() {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v, err := f.Evaluator.Eval(ctx, g, n, n.LiteralValues())
	if err != nil {
		if errors.Is(err, ErrUnfoldable) {
			trace.PointCtx(ctx, trace.ScopeNode, "fold-skip", n.String(), "err", err.Error())
			return false, nil
		}
		return false, err
	}
	trace.PointCtx(ctx, trace.ScopeNode, "fold", n.String(), "value", v.String())
	propagate(g, n, v)
	return true, nil
}

// propagate feeds a literal copy of v to every consumer of n and deletes n.
func propagate(g *igr.Graph, n *igr.Node, v igr.Value) {
	g.Retarget(n.OutRef(), igr.NewTypedLiteral(v, n.Out.Type))
	g.Delete(n.ID)
}

func collapse(g *igr.Graph, sg *igr.SubGraph) bool {
	if sg.IsFunction() || !sg.Exit.HasLiteral() || sg.Arity() == 0 {
		return false
	}
	lit := sg.Exit.Literal()
	c := g.AddConstant(sg.ID, lit.Value)
	c.Out.Type = lit.Type
	g.Bind(sg.EntryRef(0), c.InRef(0))
	g.Bind(c.OutRef(), sg.ExitRef())
	return true
}
