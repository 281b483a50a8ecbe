package opt

import (
	"context"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// Prune deletes nodes whose output feeds nothing. A subgraph exit counts as
// a consumer. After a deletion the owning function is walked again, since
// the inputs of the deleted node may have lost their last consumer.
type Prune struct{}

func (Prune) Name() string { return PassPrune }

func (Prune) Run(ctx context.Context, g *igr.Graph) (bool, error) {
	changed := false
	for _, fn := range g.Functions() {
		for {
			if err := ctx.Err(); err != nil {
				return changed, err
			}
			removed := 0
			g.WalkSubGraph(fn.ID, igr.Visitor{
				Node: func(n *igr.Node) {
					if n.Out.Bound() {
						return
					}
					trace.PointCtx(ctx, trace.ScopeNode, "prune", n.String())
					g.Delete(n.ID)
					removed++
				},
			})
			if removed == 0 {
				break
			}
			changed = true
		}
	}
	return changed, nil
}
