package diag

import (
	"sharpfix/internal/source"
)

// Diagnostic is one finding of one rule.
type Diagnostic struct {
	Code      Code
	Severity  Severity
	Message   string
	Primary   source.Span
	Secondary []source.Span     // further offending locations of the same finding
	Props     map[string]string // rule-to-fix data, never rendered
	Internal  bool              // raised by the engine itself, e.g. a failing rule
}

// Same reports whether a and b describe the same finding: same code and
// primary span. Messages are not compared.
func Same(a, b Diagnostic) bool {
	return a.Code == b.Code && a.Primary == b.Primary
}

// Less orders diagnostics by primary span (file, start, end) and then by code.
func Less(a, b Diagnostic) bool {
	if a.Primary != b.Primary {
		return a.Primary.Less(b.Primary)
	}
	return a.Code < b.Code
}

// Prop returns the named property, "" when absent.
func (d Diagnostic) Prop(key string) string {
	return d.Props[key]
}

// Spans returns the primary span followed by the secondary ones.
func (d Diagnostic) Spans() []source.Span {
	out := make([]source.Span, 0, 1+len(d.Secondary))
	out = append(out, d.Primary)
	return append(out, d.Secondary...)
}
