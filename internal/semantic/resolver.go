// Package semantic binds names in one C# compilation unit to symbols and types.
package semantic

import "sharpfix/internal/syntax"

// Resolver is the semantic view rules consult next to the syntax tree. Every
// lookup reports ok == false when resolution fails (unknown names, incomplete
// code); rules must then suppress their finding instead of guessing.
type Resolver interface {
	// Resolve binds an identifier, member access, type name, invocation or
	// declaration node to the symbol it names.
	Resolve(n *syntax.Node) (*Symbol, bool)
	// TypeOf returns the static type of an expression.
	TypeOf(expr *syntax.Node) (*TypeInfo, bool)
	// IsSubtype reports whether t is base or derives from (implements) it.
	IsSubtype(t, base *TypeInfo) bool
	// WellKnownType looks up a framework type by fully qualified metadata
	// name, independent of any using directive or alias in the source.
	WellKnownType(fullName string) (*TypeInfo, bool)
}

// Null resolves nothing. It serves rules that only need syntax and tests.
type Null struct{}

func (Null) Resolve(*syntax.Node) (*Symbol, bool)   { return nil, false }
func (Null) TypeOf(*syntax.Node) (*TypeInfo, bool)  { return nil, false }
func (Null) IsSubtype(*TypeInfo, *TypeInfo) bool    { return false }
func (Null) WellKnownType(string) (*TypeInfo, bool) { return nil, false }

var (
	_ Resolver = (*Binder)(nil)
	_ Resolver = Null{}
)
