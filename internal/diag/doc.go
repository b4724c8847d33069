// Package diag defines the diagnostic model shared by the formatter passes and
// the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form such as FMT1003 or IO4001.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing at the affected line.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Passes report through a diag.Reporter so emission is decoupled from storage.
// BagReporter collects into a bounded Bag which supports sorting,
// deduplication and filtering; NopReporter drops everything.
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt; the driver owns one Bag per processed file.
package diag
