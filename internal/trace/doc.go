// Package trace provides the tracing subsystem of cbrace.
//
// The trace package records batch, per-file and per-pass spans so that slow
// or failing runs over large source trees can be inspected afterwards.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	cbrace fmt --trace=- --trace-level=detail Core/Src
//
// # Architecture
//
//   - nop tracer: zero-overhead when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: last N events in memory, dumped when a run fails
//   - MultiTracer: combines several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures (point events)
//   - LevelPhase: batch and per-file spans
//   - LevelDetail: plus pass spans (read, braces, comments, write)
//   - LevelDebug: everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "braces", parentID)
//	defer span.End("")
package trace
