// Package diag defines the diagnostic model shared by the rule engine, the
// fix engine and every output format.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Code: the rule identifier ("MNT3011"), see codes.go.
//   - Severity: Info, Warning or Error.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: the source.Span the finding is reported at. Spans never include
//     the outer trivia of the node they point to.
//   - Secondary: further spans belonging to the same finding, e.g. every call
//     site of a violation repeated in one method.
//   - Props: string data a rule hands to its fix. Props are not rendered.
//   - Internal: set by the engine for findings about the analysis itself
//     (a rule that panicked or returned an error).
//
// Two diagnostics are the same finding iff Code and Primary match (see Same);
// message differences alone never make findings distinct.
//
// # Emitting diagnostics
//
// Rules use a Reporter to decouple emission from storage: they build a
// ReportBuilder via NewReportBuilder (ReportInfo for informational notes),
// chain WithSecondary / WithProp and call Emit. BagReporter aggregates into a
// Bag, which supports sorting, deduplication and filtering.
//
// Package diag does no formatting beyond the line-oriented golden form; the
// pretty, json and sarif renderers live in internal/diagfmt.
package diag
