// Package trace is the structured event log of the dlc compiler.
//
// It records pipeline phases, optimizer rounds and individual oracle
// evaluations so slow or hanging compilations can be diagnosed.
//
// # Usage
//
//	dlc compile --trace=- --trace-level=detail prog.dfl
//
// # Tracers
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event immediately (text, NDJSON or Chrome)
//   - RingTracer: keeps the last N events for a crash dump
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A level selects the scopes that are recorded:
//
//	phase   driver + optimizer passes
//	detail  + per-function and per-round events
//	debug   + per-node events (oracle calls, folded nodes)
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.BeginCtx(ctx, trace.ScopePass, "fold")
//	defer span.End("")
package trace
