package fix

import (
	"fmt"

	"sharpfix/internal/diag"
)

// Registry maps rule codes to their fix. It is immutable once built.
type Registry struct {
	byCode map[diag.Code]*Fix
	codes  []diag.Code
}

// NewRegistry indexes fixes; two fixes for one code are an error.
func NewRegistry(fixes ...*Fix) (*Registry, error) {
	r := &Registry{byCode: make(map[diag.Code]*Fix, len(fixes))}
	for _, f := range fixes {
		switch {
		case f == nil || f.Code == "":
			return nil, fmt.Errorf("fix without code")
		case f.Compute == nil:
			return nil, fmt.Errorf("fix %s: no Compute", f.Code)
		}
		if _, dup := r.byCode[f.Code]; dup {
			return nil, fmt.Errorf("fix %s registered twice", f.Code)
		}
		r.byCode[f.Code] = f
		r.codes = append(r.codes, f.Code)
	}
	return r, nil
}

// Get returns the fix for code.
func (r *Registry) Get(code diag.Code) (*Fix, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.byCode[code]
	return f, ok
}

// Fixable reports whether d has a registered fix that does not reject it.
func (r *Registry) Fixable(d diag.Diagnostic) bool {
	f, ok := r.Get(d.Code)
	if !ok || d.Internal {
		return false
	}
	return f.Applies == nil || f.Applies(d)
}

// Codes lists the codes with a fix in registration order.
func (r *Registry) Codes() []diag.Code {
	if r == nil {
		return nil
	}
	return r.codes
}
