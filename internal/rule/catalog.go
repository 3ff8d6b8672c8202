package rule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"sharpfix/internal/diag"
	"sharpfix/internal/syntax"
)

// Catalog is the ordered collection of every known rule. It is immutable after
// NewCatalog returns.
type Catalog struct {
	rules  []*Rule
	byCode map[diag.Code]*Rule
}

// NewCatalog validates rules and keeps them in registration order.
func NewCatalog(rules ...*Rule) (*Catalog, error) {
	c := &Catalog{byCode: make(map[diag.Code]*Rule, len(rules))}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[r.Code]; dup {
			return nil, fmt.Errorf("%s: %w", r.Code, ErrDuplicateCode)
		}
		c.byCode[r.Code] = r
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Rules returns the rules in registration order. Do not modify the slice.
func (c *Catalog) Rules() []*Rule { return c.rules }

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// Get looks a rule up by code.
func (c *Catalog) Get(code diag.Code) (*Rule, bool) {
	r, ok := c.byCode[code]
	return r, ok
}

// Selection picks the rules of a Set. The zero value enables every rule at
// its default severity.
type Selection struct {
	Only     []diag.Code // when non-empty, nothing else runs
	Disable  []diag.Code
	Severity map[diag.Code]diag.Severity
}

// Set is the enabled subset of a catalog, indexed by node kind.
type Set struct {
	rules    []*Rule
	severity map[*Rule]diag.Severity
	byKind   map[syntax.Kind][]*Rule
	byScope  map[syntax.Kind][]*Rule
}

// All enables every rule of c.
func (c *Catalog) All() *Set {
	s, _ := c.Select(Selection{})
	return s
}

// Only enables exactly the given rules.
func (c *Catalog) Only(codes ...diag.Code) (*Set, error) {
	return c.Select(Selection{Only: codes})
}

// Select builds a Set. Codes naming no rule are an error.
func (c *Catalog) Select(sel Selection) (*Set, error) {
	for _, list := range [][]diag.Code{sel.Only, sel.Disable} {
		for _, code := range list {
			if _, ok := c.byCode[code]; !ok {
				return nil, fmt.Errorf("%s: %w", code, ErrUnknownRule)
			}
		}
	}
	for code := range sel.Severity {
		if _, ok := c.byCode[code]; !ok {
			return nil, fmt.Errorf("%s: %w", code, ErrUnknownRule)
		}
	}

	s := &Set{
		severity: make(map[*Rule]diag.Severity),
		byKind:   make(map[syntax.Kind][]*Rule),
		byScope:  make(map[syntax.Kind][]*Rule),
	}
	for _, r := range c.rules {
		if len(sel.Only) > 0 && !slices.Contains(sel.Only, r.Code) {
			continue
		}
		if slices.Contains(sel.Disable, r.Code) {
			continue
		}
		sev := r.Severity
		if override, ok := sel.Severity[r.Code]; ok {
			sev = override
		}
		s.rules = append(s.rules, r)
		s.severity[r] = sev
		if r.Check != nil {
			for _, k := range uniqueKinds(r.Kinds) {
				s.byKind[k] = append(s.byKind[k], r)
			}
		}
		if r.Scoped() {
			for _, k := range uniqueKinds(r.Scope) {
				s.byScope[k] = append(s.byScope[k], r)
			}
		}
	}
	return s, nil
}

func uniqueKinds(kinds []syntax.Kind) []syntax.Kind {
	out := slices.Clone(kinds)
	slices.Sort(out)
	return slices.Compact(out)
}

// Rules returns the enabled rules in catalog order.
func (s *Set) Rules() []*Rule { return s.rules }

// Len returns the number of enabled rules.
func (s *Set) Len() int { return len(s.rules) }

// Severity returns the effective severity of r.
func (s *Set) Severity(r *Rule) diag.Severity {
	if sev, ok := s.severity[r]; ok {
		return sev
	}
	return r.Severity
}

// ForKind returns the rules checking nodes of kind k, in catalog order.
func (s *Set) ForKind(k syntax.Kind) []*Rule { return s.byKind[k] }

// ScopesFor returns the scoped rules for which kind k opens a scope.
func (s *Set) ScopesFor(k syntax.Kind) []*Rule { return s.byScope[k] }

// Codes returns the codes of the enabled rules.
func (s *Set) Codes() []diag.Code {
	out := make([]diag.Code, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Code
	}
	return out
}

// Fingerprint identifies the enabled rules and their severities; cached
// results are only reused under the same fingerprint.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	for _, r := range s.rules {
		fmt.Fprintf(h, "%s:%d;", r.Code, s.severity[r])
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
