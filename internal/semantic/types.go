package semantic

import "sharpfix/internal/syntax"

// TypeKind classifies a type.
type TypeKind uint8

const (
	TypeError TypeKind = iota
	TypeClass
	TypeStruct
	TypeInterface
	TypeEnum
	TypeDelegate
	TypeRecord
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeStruct:
		return "struct"
	case TypeInterface:
		return "interface"
	case TypeEnum:
		return "enum"
	case TypeDelegate:
		return "delegate"
	case TypeRecord:
		return "record"
	default:
		return "error"
	}
}

// TypeInfo describes a declared or well-known type. Generic types carry their
// arity in FullName the way metadata names do ("System.EventHandler`1").
type TypeInfo struct {
	FullName  string
	Name      string
	Kind      TypeKind
	Bases     []string // full names when resolvable, otherwise as written
	Members   []*Symbol
	Partial   []*syntax.Node // one declaration per partial part
	WellKnown bool
	Symbol    *Symbol
}

// Member returns the members declared (not inherited) with the given name.
func (t *TypeInfo) Member(name string) []*Symbol {
	if t == nil {
		return nil
	}
	var out []*Symbol
	for _, m := range t.Members {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (t *TypeInfo) addMember(sym *Symbol) {
	sym.Containing = t
	t.Members = append(t.Members, sym)
}

func (t *TypeInfo) String() string {
	if t == nil {
		return "<unknown>"
	}
	return t.FullName
}

func typeKindOf(k syntax.Kind) TypeKind {
	switch k {
	case syntax.KindClass:
		return TypeClass
	case syntax.KindStruct, syntax.KindRecordStruct:
		return TypeStruct
	case syntax.KindInterface:
		return TypeInterface
	case syntax.KindEnum:
		return TypeEnum
	case syntax.KindDelegate:
		return TypeDelegate
	case syntax.KindRecord:
		return TypeRecord
	default:
		return TypeError
	}
}

// implicitBase is the base every type of kind k derives from when it lists none.
func implicitBase(k TypeKind) string {
	switch k {
	case TypeStruct:
		return "System.ValueType"
	case TypeEnum:
		return "System.Enum"
	case TypeDelegate:
		return "System.MulticastDelegate"
	case TypeInterface:
		return ""
	default:
		return "System.Object"
	}
}
