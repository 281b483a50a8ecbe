// Package opt rewrites an IGR program to a fixpoint.
//
// Every pass walks the graph with igr.Walk and reports whether it changed
// anything; the Optimizer repeats its pass list until a whole round is quiet.
package opt

import (
	"context"
	"fmt"
	"strings"

	"dlc/internal/igr"
)

// Pass is one graph rewrite.
type Pass interface {
	Name() string
	// Run rewrites g until the pass itself reaches a fixpoint and reports
	// whether anything changed.
	Run(ctx context.Context, g *igr.Graph) (bool, error)
}

// Pass names accepted by NewPipeline.
const (
	PassFold   = "fold"
	PassCSE    = "cse"
	PassPrune  = "prune"
	PassInline = "inline"
)

// DefaultPasses is the standard pipeline order.
var DefaultPasses = []string{PassFold, PassCSE, PassPrune, PassInline}

// Config selects and tunes the passes of a pipeline.
type Config struct {
	Passes          []string
	Entry           string
	InlineThreshold int
	MaxRounds       int
	Evaluator       Evaluator
}

// NewPipeline builds an Optimizer from cfg. Unknown pass names are errors.
func NewPipeline(cfg Config) (*Optimizer, error) {
	names := cfg.Passes
	if names == nil {
		names = DefaultPasses
	}
	passes := make([]Pass, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case PassFold:
			ev := cfg.Evaluator
			if ev == nil {
				ev = NativeEvaluator{}
			}
			passes = append(passes, &Fold{Evaluator: ev})
		case PassCSE:
			passes = append(passes, CSE{})
		case PassPrune:
			passes = append(passes, Prune{})
		case PassInline:
			passes = append(passes, &Inline{Entry: cfg.Entry, Threshold: cfg.InlineThreshold})
		default:
			return nil, fmt.Errorf("unknown pass %q (expected: %s)", name, strings.Join(DefaultPasses, "|"))
		}
	}
	return &Optimizer{Passes: passes, MaxRounds: cfg.MaxRounds}, nil
}
