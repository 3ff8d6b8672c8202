package semantic

import "sync"

type memberSpec struct {
	kind   SymbolKind
	name   string
	typ    string // full name of the member type or return type
	static bool
	params []string
}

type typeSpec struct {
	name    string
	kind    TypeKind
	bases   []string
	members []memberSpec
}

// wellKnownDefs lists framework types rules reason about. Only the members
// rules need are declared.
var wellKnownDefs = []typeSpec{
	{name: "System.Object", kind: TypeClass, members: []memberSpec{
		{kind: SymbolMethod, name: "Equals", typ: "System.Boolean", params: []string{"System.Object"}},
		{kind: SymbolMethod, name: "Equals", typ: "System.Boolean", static: true, params: []string{"System.Object", "System.Object"}},
		{kind: SymbolMethod, name: "ReferenceEquals", typ: "System.Boolean", static: true, params: []string{"System.Object", "System.Object"}},
		{kind: SymbolMethod, name: "GetHashCode", typ: "System.Int32"},
		{kind: SymbolMethod, name: "ToString", typ: "System.String"},
	}},
	{name: "System.String", kind: TypeClass, bases: []string{"System.Object"}, members: []memberSpec{
		{kind: SymbolMethod, name: "Equals", typ: "System.Boolean", params: []string{"System.String"}},
		{kind: SymbolMethod, name: "Equals", typ: "System.Boolean", static: true, params: []string{"System.String", "System.String"}},
		{kind: SymbolMethod, name: "IsNullOrEmpty", typ: "System.Boolean", static: true, params: []string{"System.String"}},
		{kind: SymbolMethod, name: "Format", typ: "System.String", static: true, params: []string{"System.String", "System.Object"}},
		{kind: SymbolProperty, name: "Length", typ: "System.Int32"},
		{kind: SymbolField, name: "Empty", typ: "System.String", static: true},
	}},
	{name: "System.ValueType", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.Enum", kind: TypeClass, bases: []string{"System.ValueType"}},
	{name: "System.Void", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Boolean", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Char", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Byte", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.SByte", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Int16", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.UInt16", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Int32", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.UInt32", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Int64", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.UInt64", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.IntPtr", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.UIntPtr", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Single", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Double", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Decimal", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Guid", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.DateTime", kind: TypeStruct, bases: []string{"System.ValueType"}},
	{name: "System.Type", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.Array", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.Attribute", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.IDisposable", kind: TypeInterface, members: []memberSpec{
		{kind: SymbolMethod, name: "Dispose", typ: "System.Void"},
	}},
	{name: "System.EventArgs", kind: TypeClass, bases: []string{"System.Object"}, members: []memberSpec{
		{kind: SymbolField, name: "Empty", typ: "System.EventArgs", static: true},
	}},
	{name: "System.Delegate", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.MulticastDelegate", kind: TypeClass, bases: []string{"System.Delegate"}},
	{name: "System.EventHandler", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}, members: []memberSpec{
		{kind: SymbolMethod, name: "Invoke", typ: "System.Void", params: []string{"System.Object", "System.EventArgs"}},
	}},
	{name: "System.EventHandler`1", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}, members: []memberSpec{
		{kind: SymbolMethod, name: "Invoke", typ: "System.Void", params: []string{"System.Object", "TEventArgs"}},
	}},
	{name: "System.Action", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}},
	{name: "System.Action`1", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}},
	{name: "System.Func`1", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}},
	{name: "System.Func`2", kind: TypeDelegate, bases: []string{"System.MulticastDelegate"}},
	{name: "System.Exception", kind: TypeClass, bases: []string{"System.Object"}, members: []memberSpec{
		{kind: SymbolProperty, name: "Message", typ: "System.String"},
		{kind: SymbolProperty, name: "InnerException", typ: "System.Exception"},
	}},
	{name: "System.SystemException", kind: TypeClass, bases: []string{"System.Exception"}},
	{name: "System.ArgumentException", kind: TypeClass, bases: []string{"System.SystemException"}, members: []memberSpec{
		{kind: SymbolProperty, name: "ParamName", typ: "System.String"},
	}},
	{name: "System.ArgumentNullException", kind: TypeClass, bases: []string{"System.ArgumentException"}},
	{name: "System.ArgumentOutOfRangeException", kind: TypeClass, bases: []string{"System.ArgumentException"}, members: []memberSpec{
		{kind: SymbolProperty, name: "ActualValue", typ: "System.Object"},
	}},
	{name: "System.ComponentModel.InvalidEnumArgumentException", kind: TypeClass, bases: []string{"System.ArgumentException"}},
	{name: "System.InvalidOperationException", kind: TypeClass, bases: []string{"System.SystemException"}},
	{name: "System.ObjectDisposedException", kind: TypeClass, bases: []string{"System.InvalidOperationException"}},
	{name: "System.NotSupportedException", kind: TypeClass, bases: []string{"System.SystemException"}},
	{name: "System.NotImplementedException", kind: TypeClass, bases: []string{"System.SystemException"}},
	{name: "System.NullReferenceException", kind: TypeClass, bases: []string{"System.SystemException"}},
	{name: "System.Collections.Generic.List`1", kind: TypeClass, bases: []string{"System.Object"}, members: []memberSpec{
		{kind: SymbolProperty, name: "Count", typ: "System.Int32"},
		{kind: SymbolMethod, name: "Add", typ: "System.Void", params: []string{"T"}},
	}},
	{name: "System.Threading.Monitor", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "System.Threading.Tasks.Task", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "NUnit.Framework.Assert", kind: TypeClass, bases: []string{"System.Object"}, members: []memberSpec{
		{kind: SymbolMethod, name: "That", typ: "System.Void", static: true, params: []string{"System.Object", "System.Object"}},
		{kind: SymbolMethod, name: "AreEqual", typ: "System.Void", static: true, params: []string{"System.Object", "System.Object"}},
		{kind: SymbolMethod, name: "AreNotEqual", typ: "System.Void", static: true, params: []string{"System.Object", "System.Object"}},
		{kind: SymbolMethod, name: "IsTrue", typ: "System.Void", static: true, params: []string{"System.Boolean"}},
		{kind: SymbolMethod, name: "IsFalse", typ: "System.Void", static: true, params: []string{"System.Boolean"}},
		{kind: SymbolMethod, name: "IsNull", typ: "System.Void", static: true, params: []string{"System.Object"}},
		{kind: SymbolMethod, name: "IsNotNull", typ: "System.Void", static: true, params: []string{"System.Object"}},
	}},
	{name: "NUnit.Framework.Is", kind: TypeClass, bases: []string{"System.Object"}},
	{name: "NUnit.Framework.TestAttribute", kind: TypeClass, bases: []string{"System.Attribute"}},
	{name: "NUnit.Framework.TestFixtureAttribute", kind: TypeClass, bases: []string{"System.Attribute"}},
}

// predefinedTypes maps C# keywords to their framework types.
var predefinedTypes = map[string]string{
	"object":  "System.Object",
	"string":  "System.String",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
	"float":   "System.Single",
	"double":  "System.Double",
	"decimal": "System.Decimal",
	"void":    "System.Void",
}

// DefaultImplicitUsings mirrors the namespaces the .NET SDK imports implicitly.
var DefaultImplicitUsings = []string{
	"System",
	"System.Collections.Generic",
	"System.IO",
	"System.Linq",
	"System.Net.Http",
	"System.Threading",
	"System.Threading.Tasks",
}

var (
	wellKnownOnce  sync.Once
	wellKnownTypes map[string]*TypeInfo
)

// wellKnown returns the shared, read-only table of framework types.
func wellKnown() map[string]*TypeInfo {
	wellKnownOnce.Do(func() {
		wellKnownTypes = make(map[string]*TypeInfo, len(wellKnownDefs))
		for _, def := range wellKnownDefs {
			ti := &TypeInfo{
				FullName:  def.name,
				Name:      simpleName(def.name),
				Kind:      def.kind,
				Bases:     def.bases,
				WellKnown: true,
			}
			ti.Symbol = &Symbol{Kind: SymbolType, Name: ti.Name, Type: ti, Access: AccessPublic}
			wellKnownTypes[def.name] = ti
		}
		for _, def := range wellKnownDefs {
			ti := wellKnownTypes[def.name]
			for _, m := range def.members {
				sym := &Symbol{
					Kind:     m.kind,
					Name:     m.name,
					Type:     wellKnownTypes[m.typ],
					TypeName: m.typ,
					Access:   AccessPublic,
				}
				if m.static {
					sym.Flags |= FlagStatic
				}
				for i, p := range m.params {
					sym.Params = append(sym.Params, Param{Name: paramName(i), Type: wellKnownTypes[p], TypeName: p})
				}
				ti.addMember(sym)
			}
		}
	})
	return wellKnownTypes
}

func paramName(i int) string {
	return string(rune('a' + i))
}
