package opt

import (
	"context"
	"errors"
	"fmt"

	"dlc/internal/backend"
	"dlc/internal/callgraph"
	"dlc/internal/eval"
	"dlc/internal/igr"
	"dlc/internal/oracle"
)

// ErrUnfoldable marks an evaluation failure that only means the node stays
// in the graph. Any other evaluator error aborts folding.
var ErrUnfoldable = errors.New("node cannot be folded")

// Evaluator computes the value of a node whose inputs are all literals.
type Evaluator interface {
	Eval(ctx context.Context, g *igr.Graph, n *igr.Node, args []igr.Value) (igr.Value, error)
}

// NativeEvaluator interprets the node with the eval package.
type NativeEvaluator struct {
	MaxSteps int
}

func (e NativeEvaluator) Eval(ctx context.Context, g *igr.Graph, n *igr.Node, args []igr.Value) (igr.Value, error) {
	var opts []eval.Option
	if e.MaxSteps > 0 {
		opts = append(opts, eval.WithMaxSteps(e.MaxSteps))
	}
	v, err := eval.New(g, opts...).EvalNode(ctx, n, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return igr.Value{}, ctxErr
		}
		return igr.Value{}, fmt.Errorf("%w: %w", ErrUnfoldable, err)
	}
	return v, nil
}

// OracleEvaluator lowers the function owning the node, wired so the
// program inputs feed the node and its output is the program result, and
// runs it on the oracle. Every oracle failure is fatal.
type OracleEvaluator struct {
	Oracle oracle.Oracle
}

func (e OracleEvaluator) Eval(ctx context.Context, g *igr.Graph, n *igr.Node, args []igr.Value) (igr.Value, error) {
	fn := g.FuncOf(n.Owner)
	res, err := backend.Lower(g, backend.Options{
		LinkTo:    n,
		Functions: callgraph.Build(g).Reachable(fn.Name),
	})
	if err != nil {
		return igr.Value{}, fmt.Errorf("fold %s: %w", n, err)
	}
	v, err := e.Oracle.Run(ctx, res.Text, args)
	if err != nil {
		return igr.Value{}, fmt.Errorf("fold %s in %s: %w", n, fn.Name, err)
	}
	return v, nil
}
