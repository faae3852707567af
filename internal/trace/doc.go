// Package trace is cguard's structured event log.
//
// The driver and CLI emit span and point events through a Tracer; the guard
// and catalog packages never log. Tracing is off unless requested:
//
//	cguard check --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: immediate write to a file or stderr, text or NDJSON
//   - RingTracer: circular buffer kept in memory and dumped on exit
//   - MultiTracer: fan-out to several tracers
//
// # Levels and scopes
//
// A level admits every scope at or above its granularity:
//
//   - LevelPhase: ScopeDriver and ScopePass (load, guard, parse)
//   - LevelDetail: adds ScopeFile (one span per checked file)
//   - LevelDebug: adds ScopeLine (one point per finding)
//
// LevelError admits only heartbeats. In ring mode the ring is dumped to
// stderr when the command exits.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "guard", parentID)
//	defer span.End("")
package trace
