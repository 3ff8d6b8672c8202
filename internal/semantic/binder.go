package semantic

import (
	"strconv"
	"strings"
	"sync"

	"sharpfix/internal/syntax"
)

const maxDepth = 32

// Binder is the default Resolver for one syntax tree. Declarations are bound
// eagerly by Bind; locals and expression types are resolved on demand.
// A Binder is safe for concurrent use.
type Binder struct {
	tree *syntax.Tree

	types    map[string]*TypeInfo       // types declared in this unit by full name
	order    []*TypeInfo                // declaration order, for deterministic walks
	typeDecl map[*syntax.Node]*TypeInfo // type declaration node -> type
	decls    map[*syntax.Node]*Symbol   // member, declarator and parameter nodes -> symbol

	usings  []string          // imported namespaces, implicit ones last
	aliases map[string]string // using X = Y
	statics []string          // using static
	fileNS  string            // file-scoped namespace in grammars that keep it a sibling

	mu     sync.Mutex
	locals map[*syntax.Node]*Symbol
}

// Option configures Bind.
type Option func(*Binder)

// WithImplicitUsings adds namespaces imported without a using directive.
func WithImplicitUsings(namespaces ...string) Option {
	return func(b *Binder) {
		b.usings = append(b.usings, namespaces...)
	}
}

// Bind collects the declarations of tree.
func Bind(tree *syntax.Tree, opts ...Option) *Binder {
	b := &Binder{
		tree:     tree,
		types:    make(map[string]*TypeInfo),
		typeDecl: make(map[*syntax.Node]*TypeInfo),
		decls:    make(map[*syntax.Node]*Symbol),
		aliases:  make(map[string]string),
		locals:   make(map[*syntax.Node]*Symbol),
	}
	b.collect(tree.Root(), "", nil)
	for _, opt := range opts {
		opt(b)
	}
	b.resolveBases()
	b.resolveMemberTypes()
	b.linkOverrides()
	return b
}

// Tree returns the bound tree.
func (b *Binder) Tree() *syntax.Tree { return b.tree }

// Types returns the types declared in the unit in declaration order.
func (b *Binder) Types() []*TypeInfo { return b.order }

// Declared returns a type declared in this unit by full name.
func (b *Binder) Declared(fullName string) (*TypeInfo, bool) {
	ti, ok := b.types[fullName]
	return ti, ok
}

// WellKnownType implements Resolver.
func (b *Binder) WellKnownType(fullName string) (*TypeInfo, bool) {
	ti, ok := wellKnown()[fullName]
	return ti, ok
}

func (b *Binder) lookupType(full string) *TypeInfo {
	if ti := b.types[full]; ti != nil {
		return ti
	}
	return wellKnown()[full]
}

func (b *Binder) collect(n *syntax.Node, ns string, outer *TypeInfo) {
	for _, c := range n.Children() {
		switch {
		case c.Is(syntax.KindUsingDirective):
			b.addUsing(c)
		case c.Is(syntax.KindNamespace):
			name := qualify(ns, namespaceName(c))
			if body := syntax.Body(c); body != nil {
				b.collect(body, name, nil)
			} else if body := c.ChildOfKind(syntax.KindDeclarationList); body != nil {
				b.collect(body, name, nil)
			}
		case c.Is(syntax.KindFileScopedNamespace):
			// дальше по файлу всё лежит в этом пространстве имён
			ns = qualify(ns, namespaceName(c))
			b.fileNS = ns
			b.collect(c, ns, nil)
		case c.Kind().IsTypeDeclaration():
			b.declareType(c, ns, outer)
		case c.Is(syntax.KindDeclarationList, "global_attribute", "preproc_if", "preproc_else", "preproc_elif", "preproc_region"):
			b.collect(c, ns, outer)
		}
	}
}

func (b *Binder) addUsing(n *syntax.Node) {
	var names []string
	var alias string
	static := false
	for _, c := range n.Children() {
		switch {
		case c.IsToken() && c.Text() == "static":
			static = true
		case c.Is("name_equals"):
			if id := c.ChildOfKind(syntax.KindIdentifier); id != nil {
				alias = id.Text()
			}
		case c.IsToken() && c.Text() == "=" && len(names) == 1:
			alias, names = names[0], nil
		case c.IsNamed() && c.Kind() != syntax.KindComment:
			names = append(names, compact(c.SignificantText()))
		}
	}
	if f := n.Field("alias"); f != nil {
		alias = f.SignificantText()
		names = removeString(names, alias)
	}
	if len(names) == 0 {
		return
	}
	target := strings.TrimPrefix(names[len(names)-1], "global::")
	switch {
	case alias != "":
		b.aliases[alias] = target
	case static:
		b.statics = append(b.statics, target)
	default:
		b.usings = append(b.usings, target)
	}
}

func (b *Binder) declareType(n *syntax.Node, ns string, outer *TypeInfo) {
	name := syntax.DeclNameText(n)
	if name == "" {
		return
	}
	meta := name
	if tp := n.ChildOfKind(syntax.KindTypeParameterList); tp != nil {
		meta += "`" + strconv.Itoa(len(tp.ChildrenOfKind("type_parameter")))
	}
	prefix := ns
	if outer != nil {
		prefix = outer.FullName
	}
	full := qualify(prefix, meta)

	ti := b.types[full]
	if ti == nil {
		ti = &TypeInfo{FullName: full, Name: name, Kind: typeKindOf(n.Kind())}
		ti.Symbol = &Symbol{Kind: SymbolType, Name: name, Type: ti, Decl: n}
		b.types[full] = ti
		b.order = append(b.order, ti)
	}
	if outer != nil {
		ti.Symbol.Containing = outer
	}
	mods := syntax.Modifiers(n)
	ti.Symbol.Flags |= flagsOf(mods)
	if acc, ok := accessOf(mods); ok {
		ti.Symbol.Access = acc
	} else if len(ti.Partial) == 0 {
		ti.Symbol.Access = AccessInternal
		if outer != nil {
			ti.Symbol.Access = AccessPrivate
		}
	}
	ti.Partial = append(ti.Partial, n)
	b.typeDecl[n] = ti

	if ti.Kind == TypeDelegate {
		sym := b.methodSymbol(n, SymbolMethod, "Invoke", ti)
		ti.addMember(sym)
		return
	}
	body := syntax.Body(n)
	if body == nil {
		body = n.ChildOfKind(syntax.KindDeclarationList, "enum_member_declaration_list")
	}
	if body == nil {
		return
	}
	for _, m := range body.Children() {
		b.declareMember(ti, m, ns)
	}
}

func (b *Binder) declareMember(ti *TypeInfo, m *syntax.Node, ns string) {
	if m.Kind().IsTypeDeclaration() {
		b.declareType(m, ns, ti)
		return
	}
	switch m.Kind() {
	case syntax.KindMethod, syntax.KindLocalFunction:
		ti.addMember(b.methodSymbol(m, SymbolMethod, syntax.DeclNameText(m), ti))
	case syntax.KindConstructor:
		ti.addMember(b.methodSymbol(m, SymbolConstructor, ti.Name, ti))
	case syntax.KindOperator, syntax.KindConversionOperator:
		ti.addMember(b.methodSymbol(m, SymbolMethod, "op_"+operatorName(m), ti))
	case syntax.KindProperty, syntax.KindIndexer, syntax.KindEventDeclaration:
		kind := SymbolProperty
		name := syntax.DeclNameText(m)
		if m.Is(syntax.KindEventDeclaration) {
			kind = SymbolEvent
		}
		if m.Is(syntax.KindIndexer) {
			name = "this[]"
		}
		sym := b.memberSymbol(m, kind, name, ti)
		if m.Is(syntax.KindIndexer) {
			sym.Params = b.params(m)
		}
		ti.addMember(sym)
	case syntax.KindField, syntax.KindEventField:
		kind := SymbolField
		if m.Is(syntax.KindEventField) {
			kind = SymbolEvent
		}
		for _, d := range syntax.Declarators(m) {
			name, value := syntax.DeclaratorParts(d)
			if name == nil {
				continue
			}
			sym := b.memberSymbol(m, kind, name.Text(), ti)
			sym.Decl = d
			if sym.Flags&FlagConst != 0 && value != nil {
				sym.Constant = value.SignificantText()
			}
			b.decls[d] = sym
			ti.addMember(sym)
		}
	case syntax.KindEnumMemberDeclaration:
		sym := &Symbol{
			Kind:     SymbolField,
			Name:     syntax.DeclNameText(m),
			Type:     ti,
			TypeName: ti.Name,
			Access:   AccessPublic,
			Flags:    FlagStatic | FlagConst,
			Decl:     m,
		}
		b.decls[m] = sym
		ti.addMember(sym)
	}
}

func (b *Binder) memberSymbol(m *syntax.Node, kind SymbolKind, name string, ti *TypeInfo) *Symbol {
	mods := syntax.Modifiers(m)
	sym := &Symbol{Kind: kind, Name: name, Decl: m, Flags: flagsOf(mods)}
	if typ := syntax.DeclaredType(m); typ != nil {
		sym.TypeName = compact(typ.SignificantText())
	}
	if acc, ok := accessOf(mods); ok {
		sym.Access = acc
	} else if ti.Kind == TypeInterface {
		sym.Access = AccessPublic
	}
	if ti.Kind == TypeInterface && sym.Flags&FlagStatic == 0 && syntax.Body(m) == nil {
		sym.Flags |= FlagAbstract
	}
	b.decls[m] = sym
	return sym
}

func (b *Binder) methodSymbol(m *syntax.Node, kind SymbolKind, name string, ti *TypeInfo) *Symbol {
	sym := b.memberSymbol(m, kind, name, ti)
	if kind == SymbolConstructor {
		sym.TypeName = ""
	}
	sym.Params = b.params(m)
	return sym
}

func (b *Binder) params(m *syntax.Node) []Param {
	parts := syntax.ParameterParts(m)
	out := make([]Param, 0, len(parts))
	for _, p := range parts {
		par := Param{Name: p.Name, Modifiers: p.Modifiers}
		if p.Type != nil {
			par.TypeName = compact(p.Type.SignificantText())
		}
		out = append(out, par)
		b.decls[p.Node] = &Symbol{
			Kind:     SymbolParameter,
			Name:     p.Name,
			TypeName: par.TypeName,
			Decl:     p.Node,
		}
	}
	return out
}

func (b *Binder) resolveBases() {
	for _, ti := range b.order {
		seen := map[string]bool{}
		for _, decl := range ti.Partial {
			list := decl.ChildOfKind(syntax.KindBaseList)
			if list == nil {
				continue
			}
			for _, c := range list.Children() {
				if !c.IsNamed() || c.Kind() == syntax.KindComment {
					continue
				}
				if c.Is("primary_constructor_base_type") {
					if inner := c.Child(0); inner != nil {
						c = inner
					}
				}
				text := compact(c.SignificantText())
				name := text
				if base := b.resolveTypeText(text, decl); base != nil {
					name = base.FullName
				}
				if !seen[name] {
					seen[name] = true
					ti.Bases = append(ti.Bases, name)
				}
			}
		}
		if len(ti.Bases) == 0 {
			if base := implicitBase(ti.Kind); base != "" {
				ti.Bases = []string{base}
			}
		}
	}
}

func (b *Binder) resolveMemberTypes() {
	for _, ti := range b.order {
		for _, m := range ti.Members {
			b.resolveSymbolTypes(m)
			for _, d := range m.paramDecls() {
				if ps := b.decls[d]; ps != nil {
					b.resolveSymbolTypes(ps)
				}
			}
		}
	}
}

func (b *Binder) resolveSymbolTypes(sym *Symbol) {
	if sym.Type == nil && sym.TypeName != "" && sym.Decl != nil {
		sym.Type = b.resolveTypeText(sym.TypeName, sym.Decl)
	}
	for i := range sym.Params {
		if sym.Params[i].Type == nil && sym.Params[i].TypeName != "" {
			sym.Params[i].Type = b.resolveTypeText(sym.Params[i].TypeName, sym.Decl)
		}
	}
}

func (s *Symbol) paramDecls() []*syntax.Node {
	if s.Decl == nil || len(s.Params) == 0 {
		return nil
	}
	parts := syntax.ParameterParts(s.Decl)
	out := make([]*syntax.Node, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.Node)
	}
	return out
}

// linkOverrides connects overriding and implementing members to the members
// they override in base classes or implement from interfaces.
func (b *Binder) linkOverrides() {
	for _, ti := range b.order {
		for _, m := range ti.Members {
			if m.Kind != SymbolMethod && m.Kind != SymbolProperty && m.Kind != SymbolEvent {
				continue
			}
			for _, base := range b.supertypes(ti) {
				if !m.Override() && base.Kind != TypeInterface {
					continue
				}
				for _, cand := range base.Member(m.Name) {
					if cand.Kind == m.Kind && len(cand.Params) == len(m.Params) {
						m.Overrides = append(m.Overrides, cand)
					}
				}
			}
		}
	}
}

// supertypes returns every base class and interface of t, nearest first.
func (b *Binder) supertypes(t *TypeInfo) []*TypeInfo {
	var out []*TypeInfo
	seen := map[string]bool{t.FullName: true}
	queue := []*TypeInfo{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, name := range cur.Bases {
			if seen[name] {
				continue
			}
			seen[name] = true
			if base := b.lookupType(name); base != nil {
				out = append(out, base)
				queue = append(queue, base)
			}
		}
	}
	return out
}

// IsSubtype implements Resolver.
func (b *Binder) IsSubtype(t, base *TypeInfo) bool {
	if t == nil || base == nil {
		return false
	}
	if t.FullName == base.FullName || base.FullName == "System.Object" {
		return true
	}
	for _, st := range b.supertypes(t) {
		if st.FullName == base.FullName {
			return true
		}
	}
	return false
}

func flagsOf(mods []string) SymbolFlags {
	var f SymbolFlags
	for _, m := range mods {
		for i, name := range flagNames {
			if m == name {
				f |= 1 << i
			}
		}
	}
	return f
}

func accessOf(mods []string) (Access, bool) {
	has := func(s string) bool {
		for _, m := range mods {
			if m == s {
				return true
			}
		}
		return false
	}
	switch {
	case has("public"):
		return AccessPublic, true
	case has("protected") && has("internal"):
		return AccessProtectedInternal, true
	case has("private") && has("protected"):
		return AccessPrivateProtected, true
	case has("protected"):
		return AccessProtected, true
	case has("internal"):
		return AccessInternal, true
	case has("private"):
		return AccessPrivate, true
	}
	return AccessPrivate, false
}

func operatorName(m *syntax.Node) string {
	seen := false
	for _, c := range m.Children() {
		if !c.IsToken() {
			continue
		}
		if seen {
			return c.Text()
		}
		seen = c.Text() == "operator"
	}
	return "conversion"
}

func namespaceName(n *syntax.Node) string {
	if f := n.Field("name"); f != nil {
		return compact(f.SignificantText())
	}
	if c := n.ChildOfKind(syntax.KindQualifiedName, syntax.KindIdentifier); c != nil {
		return compact(c.SignificantText())
	}
	return ""
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// compact removes whitespace and comments from a name as written.
func compact(s string) string {
	if !strings.ContainsAny(s, " \t\r\n/") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

func simpleName(full string) string {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.IndexByte(full, '`'); i >= 0 {
		full = full[:i]
	}
	return full
}
