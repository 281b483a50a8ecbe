package opt

import (
	"context"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// CSE merges equivalent nodes of the same subgraph. The consumers of the
// later node move to the earlier one.
type CSE struct{}

func (CSE) Name() string { return PassCSE }

func (CSE) Run(ctx context.Context, g *igr.Graph) (bool, error) {
	changed := false
	for {
		merged := 0
		g.Walk(igr.Visitor{
			EnterSubGraph: func(sg *igr.SubGraph) {
				merged += mergeCommon(ctx, g, sg)
			},
		})
		if merged == 0 {
			return changed, ctx.Err()
		}
		changed = true
		if err := ctx.Err(); err != nil {
			return changed, err
		}
	}
}

// mergeCommon merges the node list of sg pairwise, earlier nodes winning.
func mergeCommon(ctx context.Context, g *igr.Graph, sg *igr.SubGraph) int {
	merged := 0
	for i := 0; i < len(sg.Nodes); i++ {
		keep := g.Node(sg.Nodes[i])
		for j := i + 1; j < len(sg.Nodes); {
			dup := g.Node(sg.Nodes[j])
			if !equivalent(keep, dup) {
				j++
				continue
			}
			trace.PointCtx(ctx, trace.ScopeNode, "cse", dup.String(), "into", keep.String())
			g.Retarget(dup.OutRef(), keep.OutRef())
			g.Delete(dup.ID) // shifts sg.Nodes; j now names the next node
			merged++
		}
	}
	return merged
}

func equivalent(a, b *igr.Node) bool {
	if a.ID == b.ID || a.Kind != b.Kind || a.Arity() != b.Arity() {
		return false
	}
	switch a.Kind {
	case igr.NodeOp:
		if a.Op.Code != b.Op.Code {
			return false
		}
		if a.Op.Code == igr.OpConst && !a.Op.Const.Equal(b.Op.Const) {
			return false
		}
	case igr.NodeCall:
		if a.Call.Callee != b.Call.Callee || a.Call.Recursive || b.Call.Recursive {
			return false
		}
	default:
		return false
	}
	for i := range a.In {
		pa, pb := &a.In[i], &b.In[i]
		switch {
		case pa.HasLiteral() && pb.HasLiteral():
			if !pa.Literal().Value.Equal(pb.Literal().Value) {
				return false
			}
		case pa.HasLiteral() || pb.HasLiteral():
			return false
		default:
			sa, _ := pa.Source()
			sb, _ := pb.Source()
			if sa != sb {
				return false
			}
		}
	}
	return true
}
