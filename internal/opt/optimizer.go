package opt

import (
	"context"
	"strconv"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// DefaultMaxRounds bounds the global fixpoint.
const DefaultMaxRounds = 64

// Optimizer runs a pass list to a global fixpoint.
type Optimizer struct {
	Passes    []Pass
	MaxRounds int
}

// Report summarises an optimizer run.
type Report struct {
	Rounds int
	// Changed counts the rounds in which each pass changed the graph.
	Changed map[string]int
	// Converged is false when MaxRounds stopped the run.
	Converged bool
}

// Run applies the passes in order, round after round, until no pass
// changes the graph or MaxRounds is reached.
func (o *Optimizer) Run(ctx context.Context, g *igr.Graph) (Report, error) {
	maxRounds := o.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	rep := Report{Changed: make(map[string]int, len(o.Passes))}

	span, ctx := trace.BeginCtx(ctx, trace.ScopePass, "optimize")
	defer func() {
		span.WithExtra("rounds", strconv.Itoa(rep.Rounds)).
			WithExtra("converged", strconv.FormatBool(rep.Converged)).
			End("")
	}()

	for rep.Rounds < maxRounds {
		rep.Rounds++
		changed, err := o.round(ctx, g, rep.Rounds, rep.Changed)
		if err != nil {
			return rep, err
		}
		if !changed {
			rep.Converged = true
			return rep, nil
		}
	}
	return rep, nil
}

func (o *Optimizer) round(ctx context.Context, g *igr.Graph, n int, counts map[string]int) (bool, error) {
	span, ctx := trace.BeginCtx(ctx, trace.ScopeModule, "round")
	span.WithExtra("round", strconv.Itoa(n))

	dirty := false
	for _, p := range o.Passes {
		if err := ctx.Err(); err != nil {
			span.End("cancelled")
			return false, err
		}
		ps, pctx := trace.BeginCtx(ctx, trace.ScopePass, "pass:"+p.Name())
		changed, err := p.Run(pctx, g)
		ps.WithExtra("changed", strconv.FormatBool(changed))
		if err != nil {
			ps.End("error")
			span.End("error")
			return false, err
		}
		ps.End("")
		if changed {
			counts[p.Name()]++
			dirty = true
		}
	}
	span.WithExtra("changed", strconv.FormatBool(dirty)).End("")
	return dirty, nil
}
