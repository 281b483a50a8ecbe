package driver

import (
	"context"
	"fmt"
	"strconv"

	"dlc/internal/config"
	"dlc/internal/eval"
	"dlc/internal/igr"
	"dlc/internal/oracle"
	"dlc/internal/trace"
)

// ParseArgs converts command line values into program inputs.
func ParseArgs(args []string) ([]igr.Value, error) {
	values := make([]igr.Value, 0, len(args))
	for i, a := range args {
		v, err := igr.ParseValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// Run executes a compiled program on inputs. The native engine interprets
// the optimized graph; the dvm engine runs the lowered listing through o,
// or through a process oracle built from cfg when o is nil.
func Run(ctx context.Context, res *Result, cfg config.Config, o oracle.Oracle, inputs []igr.Value) (igr.Value, error) {
	if res == nil || res.Graph == nil {
		return igr.Value{}, fmt.Errorf("run: nothing compiled")
	}
	entry, err := res.Graph.Function(cfg.Compile.Entry)
	if err != nil {
		return igr.Value{}, fmt.Errorf("run: %w", err)
	}
	if entry.Arity() != len(inputs) {
		return igr.Value{}, fmt.Errorf("run: %s expects %d inputs, got %d", cfg.Compile.Entry, entry.Arity(), len(inputs))
	}

	span, ctx := trace.BeginCtx(ctx, trace.ScopePass, PhaseRun)
	span.WithExtra("engine", cfg.Oracle.Engine)

	var v igr.Value
	switch cfg.Oracle.Engine {
	case config.EngineDVM:
		if res.Lowered == nil {
			span.End("error")
			return igr.Value{}, fmt.Errorf("run: program was not lowered")
		}
		if o == nil {
			if o, err = NewOracle(cfg.Oracle); err != nil {
				span.End("error")
				return igr.Value{}, err
			}
		}
		v, err = o.Run(ctx, res.Lowered.Text, inputs)
	default:
		var opts []eval.Option
		if cfg.Oracle.MaxSteps > 0 {
			opts = append(opts, eval.WithMaxSteps(cfg.Oracle.MaxSteps))
		}
		m := eval.New(res.Graph, opts...)
		v, err = m.Call(ctx, cfg.Compile.Entry, inputs)
		span.WithExtra("steps", strconv.Itoa(m.Steps()))
	}
	if err != nil {
		span.End("error")
		return igr.Value{}, err
	}
	span.End(v.String())
	return v, nil
}
