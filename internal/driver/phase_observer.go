package driver

import (
	"context"
	"time"

	"dlc/internal/observ"
	"dlc/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names reported to observers.
const (
	PhaseLoad     = "load_file"
	PhaseParse    = "parse"
	PhaseVerify   = "verify"
	PhaseOptimize = "optimize"
	PhaseLower    = "lower"
	PhaseRun      = "run"
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted during Compile.
type PhaseObserver func(PhaseEvent)

// phases связывает таймер, трейсер и наблюдателя одной компиляции.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

type phaseEnd func(note string, err error)

func (p *phases) begin(ctx context.Context, name string) (context.Context, phaseEnd) {
	idx := p.timer.Begin(name)
	span, ctx := trace.BeginCtx(ctx, trace.ScopePass, name)
	start := time.Now()
	p.emit(PhaseEvent{Name: name, Status: PhaseStart})
	return ctx, func(note string, err error) {
		p.timer.End(idx, note)
		if err != nil {
			span.WithExtra("error", err.Error())
		}
		span.End(note)
		p.emit(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Err: err})
	}
}

func (p *phases) emit(ev PhaseEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}
