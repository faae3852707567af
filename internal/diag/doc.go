// Package diag defines the diagnostic model shared by the guard, the C
// parser and the driver.
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form such as G1001.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Producers emit through a Reporter (usually a BagReporter, optionally wrapped
// in a DedupReporter) and never format anything themselves. Rendering lives in
// internal/diagfmt.
//
// Keep the data model deterministic: diagnostics are cached and compared in
// tests, so any new field must be plain data.
package diag
