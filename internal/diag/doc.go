// Package diag defines the diagnostic model shared by the symbol loader and
// the type engine.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: ordered enum (Note, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with a stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Subject: the qualified name of the symbol or type the finding is about.
//   - Notes: optional secondary subjects with additional context.
//
// Engine queries never report directly. They return a Fragment, a code plus
// arguments, which callers either wrap into an error or hand to a Reporter.
// Producers emit through the Reporter interface, so the storage (Bag), the
// deduplication policy and any rendering stay out of the engine.
package diag
