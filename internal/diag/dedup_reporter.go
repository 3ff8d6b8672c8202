package diag

import "sharpfix/internal/source"

type dedupKey struct {
	code  Code
	file  source.FileID
	start uint32
	end   uint32
}

// DedupReporter wraps another Reporter and suppresses reports of a finding
// already seen: same code and primary span.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, secondary []source.Span, props map[string]string) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:  code,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, secondary, props)
	}
}

// Reset forgets every finding seen so far.
func (r *DedupReporter) Reset() {
	clear(r.seen)
}
