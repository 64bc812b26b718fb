// Package trace provides lightweight tracing for flowfmt runs.
//
// Tracing follows the formatter from the CLI down to individual files so slow
// or stuck runs can be diagnosed.
//
// # Usage
//
//	flowfmt --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Driver and phase boundaries (collect, format, write)
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "collect", parentID)
//	defer span.End("")
package trace
