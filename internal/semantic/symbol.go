package semantic

import (
	"fmt"
	"strings"

	"sharpfix/internal/syntax"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolNamespace
	SymbolType
	SymbolMethod
	SymbolConstructor
	SymbolField
	SymbolProperty
	SymbolEvent
	SymbolParameter
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolNamespace:
		return "namespace"
	case SymbolType:
		return "type"
	case SymbolMethod:
		return "method"
	case SymbolConstructor:
		return "constructor"
	case SymbolField:
		return "field"
	case SymbolProperty:
		return "property"
	case SymbolEvent:
		return "event"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	default:
		return "invalid"
	}
}

// IsValue reports whether symbols of this kind denote a value with a type.
func (k SymbolKind) IsValue() bool {
	switch k {
	case SymbolField, SymbolProperty, SymbolEvent, SymbolParameter, SymbolLocal:
		return true
	default:
		return false
	}
}

// Access is the declared accessibility of a symbol.
type Access uint8

const (
	AccessPrivate Access = iota
	AccessPrivateProtected
	AccessProtected
	AccessInternal
	AccessProtectedInternal
	AccessPublic
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessProtectedInternal:
		return "protected internal"
	case AccessPrivateProtected:
		return "private protected"
	default:
		return "private"
	}
}

// SymbolFlags encode declaration modifiers for quick checks.
type SymbolFlags uint16

const (
	FlagStatic SymbolFlags = 1 << iota
	FlagAbstract
	FlagVirtual
	FlagOverride
	FlagSealed
	FlagConst
	FlagReadonly
	FlagPartial
	FlagAsync
	FlagExtern
)

var flagNames = [...]string{"static", "abstract", "virtual", "override", "sealed", "const", "readonly", "partial", "async", "extern"}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			labels = append(labels, name)
		}
	}
	return labels
}

// Param is one declared parameter of a method-like symbol.
type Param struct {
	Name      string
	Type      *TypeInfo // nil when the type could not be resolved
	TypeName  string    // type as written
	Modifiers []string
}

// Symbol is the semantic identity of a declaration.
type Symbol struct {
	Kind       SymbolKind
	Name       string
	Type       *TypeInfo // declared type (return type for methods), nil when unknown
	TypeName   string
	Containing *TypeInfo
	Access     Access
	Flags      SymbolFlags
	Params     []Param
	Decl       *syntax.Node
	Overrides  []*Symbol // base or interface members this one overrides or implements
	Constant   string    // literal text of a const initializer
}

func (s *Symbol) Static() bool   { return s.Flags&FlagStatic != 0 }
func (s *Symbol) Abstract() bool { return s.Flags&FlagAbstract != 0 }
func (s *Symbol) Virtual() bool  { return s.Flags&FlagVirtual != 0 }
func (s *Symbol) Override() bool { return s.Flags&FlagOverride != 0 }
func (s *Symbol) Sealed() bool   { return s.Flags&FlagSealed != 0 }

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	if s.Containing != nil && s.Kind != SymbolType && s.Kind != SymbolLocal && s.Kind != SymbolParameter {
		b.WriteString(s.Containing.FullName)
		b.WriteByte('.')
	}
	b.WriteString(s.Name)
	if s.Kind == SymbolMethod || s.Kind == SymbolConstructor {
		parts := make([]string, len(s.Params))
		for i, p := range s.Params {
			parts[i] = p.TypeName
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
	}
	return b.String()
}
