package semantic

import (
	"strconv"
	"strings"

	"sharpfix/internal/syntax"
)

// Resolve implements Resolver.
func (b *Binder) Resolve(n *syntax.Node) (*Symbol, bool) {
	if n == nil || !b.tree.Contains(n) {
		return nil, false
	}
	sym := b.resolve(n, 0)
	return sym, sym != nil
}

func (b *Binder) resolve(n *syntax.Node, depth int) *Symbol {
	if depth > maxDepth {
		return nil
	}
	if sym := b.decls[n]; sym != nil {
		return sym
	}
	if ti := b.typeDecl[n]; ti != nil {
		return ti.Symbol
	}
	if n.IsToken() && n.Kind() != syntax.KindIdentifier && n.Kind() != syntax.KindPredefined {
		return nil
	}
	if b.tree.Ancestor(n, syntax.KindQuery) != nil {
		// переменные диапазона запросов не связываются
		return nil
	}

	switch n.Kind() {
	case syntax.KindIdentifier:
		parent := b.tree.Parent(n)
		if parent != nil && isDeclKind(parent.Kind()) && declNameOf(parent) == n {
			return b.declared(parent, depth)
		}
		if parent != nil && parent.Is(syntax.KindMemberAccess) {
			if _, name := syntax.CalleeParts(parent); name == n.Text() && parent.Child(0) != n {
				return b.resolveMember(parent, depth+1)
			}
		}
		if parent != nil && parent.Is(syntax.KindMemberBinding) {
			return nil
		}
		return b.lookupName(n.Text(), n, depth+1)
	case syntax.KindGenericName:
		if ti := b.resolveTypeText(compact(n.SignificantText()), n); ti != nil {
			return ti.Symbol
		}
		return b.lookupName(syntax.DeclNameText(n), n, depth+1)
	case syntax.KindMemberAccess:
		return b.resolveMember(n, depth+1)
	case syntax.KindQualifiedName, syntax.KindPredefined, syntax.KindNullableType, syntax.KindArrayType:
		if ti := b.resolveTypeText(compact(n.SignificantText()), n); ti != nil {
			return ti.Symbol
		}
	case syntax.KindInvocation:
		if callee, _, ok := syntax.InvocationParts(n); ok {
			return b.resolve(callee, depth+1)
		}
	case syntax.KindObjectCreation:
		if typ, _, _, ok := syntax.ObjectCreationParts(n); ok {
			return b.resolve(typ, depth+1)
		}
	case syntax.KindParenthesized:
		if inner := syntax.Unparen(n); inner != n {
			return b.resolve(inner, depth+1)
		}
	case syntax.KindConditionalAccess:
		// a?.B: символ справа от ?.
		if recv, name := syntax.CalleeParts(n); recv != nil && name != "" {
			if t := b.typeOf(recv, depth+1); t != nil {
				return b.findMember(t, name, 0)
			}
		}
	}
	return nil
}

func isDeclKind(k syntax.Kind) bool {
	switch k {
	case syntax.KindVariableDeclarator, syntax.KindParameter, syntax.KindProperty, syntax.KindEventDeclaration,
		syntax.KindEnumMemberDeclaration, syntax.KindMethod, syntax.KindConstructor, syntax.KindLocalFunction,
		syntax.KindForeach, syntax.KindForEachLegacy, "catch_declaration":
		return true
	}
	return k.IsTypeDeclaration()
}

func declNameOf(n *syntax.Node) *syntax.Node {
	if n.Is(syntax.KindForeach, syntax.KindForEachLegacy) {
		return foreachVariable(n)
	}
	return syntax.DeclName(n)
}

// foreachVariable returns the loop variable identifier of a foreach statement.
func foreachVariable(n *syntax.Node) *syntax.Node {
	if left := n.Field("left"); left != nil && left.Kind() == syntax.KindIdentifier {
		return left
	}
	var last *syntax.Node
	for _, c := range n.Children() {
		if c.IsToken() && c.Text() == "in" {
			return last
		}
		if c.Kind() == syntax.KindIdentifier {
			last = c
		}
	}
	return nil
}

// declared returns the symbol a declaration node introduces.
func (b *Binder) declared(decl *syntax.Node, depth int) *Symbol {
	if sym := b.decls[decl]; sym != nil {
		return sym
	}
	if ti := b.typeDecl[decl]; ti != nil {
		return ti.Symbol
	}
	switch decl.Kind() {
	case syntax.KindVariableDeclarator:
		return b.localFromDeclarator(decl, depth)
	case syntax.KindParameter:
		return b.localParam(decl, depth)
	case syntax.KindForeach, syntax.KindForEachLegacy, "catch_declaration":
		return b.localNamed(decl, depth)
	case syntax.KindLocalFunction:
		return b.localFunction(decl)
	}
	return nil
}

func (b *Binder) cached(n *syntax.Node) *Symbol {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locals[n]
}

func (b *Binder) store(n *syntax.Node, sym *Symbol) *Symbol {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing := b.locals[n]; existing != nil {
		return existing
	}
	b.locals[n] = sym
	return sym
}

func (b *Binder) localFromDeclarator(d *syntax.Node, depth int) *Symbol {
	if sym := b.cached(d); sym != nil {
		return sym
	}
	name, value := syntax.DeclaratorParts(d)
	if name == nil {
		return nil
	}
	sym := &Symbol{Kind: SymbolLocal, Name: name.Text(), Decl: d}
	vdecl := b.tree.Parent(d)
	if typ := syntax.DeclaredType(vdecl); typ != nil {
		sym.TypeName = compact(typ.SignificantText())
	}
	if stmt := b.tree.Parent(vdecl); stmt != nil && syntax.HasModifier(stmt, "const") {
		sym.Flags |= FlagConst
		if value != nil {
			sym.Constant = value.SignificantText()
		}
	}
	switch {
	case sym.TypeName == "var" || sym.TypeName == "":
		if value != nil {
			sym.Type = b.typeOf(value, depth+1)
		}
	default:
		sym.Type = b.resolveTypeText(sym.TypeName, d)
	}
	return b.store(d, sym)
}

func (b *Binder) localParam(p *syntax.Node, depth int) *Symbol {
	if sym := b.cached(p); sym != nil {
		return sym
	}
	sym := &Symbol{Kind: SymbolParameter, Name: syntax.DeclNameText(p), Decl: p}
	if typ := syntax.DeclaredType(p); typ != nil {
		sym.TypeName = compact(typ.SignificantText())
		sym.Type = b.resolveTypeText(sym.TypeName, p)
	}
	return b.store(p, sym)
}

func (b *Binder) localNamed(decl *syntax.Node, depth int) *Symbol {
	if sym := b.cached(decl); sym != nil {
		return sym
	}
	id := declNameOf(decl)
	if id == nil {
		return nil
	}
	sym := &Symbol{Kind: SymbolLocal, Name: id.Text(), Decl: decl}
	if typ := syntax.DeclaredType(decl); typ != nil {
		sym.TypeName = compact(typ.SignificantText())
		if sym.TypeName != "var" {
			sym.Type = b.resolveTypeText(sym.TypeName, decl)
		}
	}
	return b.store(decl, sym)
}

func (b *Binder) localFunction(decl *syntax.Node) *Symbol {
	if sym := b.cached(decl); sym != nil {
		return sym
	}
	sym := &Symbol{Kind: SymbolMethod, Name: syntax.DeclNameText(decl), Decl: decl, Flags: flagsOf(syntax.Modifiers(decl))}
	if typ := syntax.DeclaredType(decl); typ != nil {
		sym.TypeName = compact(typ.SignificantText())
		sym.Type = b.resolveTypeText(sym.TypeName, decl)
	}
	sym.Params = b.params(decl)
	b.resolveSymbolTypes(sym)
	return b.store(decl, sym)
}

// lookupName resolves a simple name used at node at: locals and parameters of
// the enclosing scopes first, then members of the enclosing types and their
// bases, static imports and finally type names.
func (b *Binder) lookupName(name string, at *syntax.Node, depth int) *Symbol {
	if name == "" || depth > maxDepth {
		return nil
	}
	cur := at
	for anc := b.tree.Parent(at); anc != nil; cur, anc = anc, b.tree.Parent(anc) {
		if anc.Kind().IsTypeDeclaration() {
			break
		}
		if sym := b.scopeLookup(anc, cur, name, depth); sym != nil {
			return sym
		}
	}
	for _, ti := range b.enclosingTypes(at) {
		if sym := b.findMember(ti, name, 0); sym != nil {
			return sym
		}
	}
	for _, st := range b.statics {
		if ti := b.lookupType(st); ti != nil {
			if sym := b.findMember(ti, name, 0); sym != nil && sym.Static() {
				return sym
			}
		}
	}
	if ti := b.resolveTypeText(name, at); ti != nil {
		return ti.Symbol
	}
	return nil
}

// scopeLookup searches the declarations scope introduces before child cur.
func (b *Binder) scopeLookup(scope, cur *syntax.Node, name string, depth int) *Symbol {
	switch {
	case scope.Is(syntax.KindBlock, syntax.KindSwitchSection, syntax.KindCompilationUnit, "global_statement"):
		for _, c := range scope.Children() {
			if c == cur {
				break
			}
			switch {
			case c.Is(syntax.KindLocalDeclaration):
				if d := declaratorNamed(c, name); d != nil {
					return b.localFromDeclarator(d, depth)
				}
			case c.Is(syntax.KindLocalFunction) && syntax.DeclNameText(c) == name:
				return b.localFunction(c)
			}
		}
		// локальные функции видны во всём блоке
		for _, c := range scope.ChildrenOfKind(syntax.KindLocalFunction) {
			if syntax.DeclNameText(c) == name {
				return b.localFunction(c)
			}
		}
	case scope.Is(syntax.KindFor, syntax.KindUsingStmt, "fixed_statement"):
		for _, c := range scope.ChildrenOfKind(syntax.KindVariableDeclaration) {
			if c == cur {
				continue
			}
			if d := declaratorNamed(c, name); d != nil {
				return b.localFromDeclarator(d, depth)
			}
		}
	case scope.Is(syntax.KindForeach, syntax.KindForEachLegacy):
		if id := foreachVariable(scope); id != nil && id.Text() == name && cur != scope.Field("right") {
			return b.localNamed(scope, depth)
		}
	case scope.Is("catch_clause"):
		if decl := scope.ChildOfKind("catch_declaration"); decl != nil && syntax.DeclNameText(decl) == name {
			return b.localNamed(decl, depth)
		}
	case scope.Kind().IsFunctionLike():
		for _, p := range syntax.ParameterParts(scope) {
			if p.Name != name {
				continue
			}
			if sym := b.decls[p.Node]; sym != nil {
				return sym
			}
			if p.Node.Kind() == syntax.KindParameter {
				return b.localParam(p.Node, depth)
			}
			// x => ... без скобок: тип неизвестен
			return b.store(p.Node, &Symbol{Kind: SymbolParameter, Name: name, Decl: p.Node})
		}
	}
	return nil
}

func declaratorNamed(n *syntax.Node, name string) *syntax.Node {
	for _, d := range syntax.Declarators(n) {
		if id, _ := syntax.DeclaratorParts(d); id != nil && id.Text() == name {
			return d
		}
	}
	return nil
}

// findMember looks name up in t and its supertypes. Constructors are skipped.
func (b *Binder) findMember(t *TypeInfo, name string, depth int) *Symbol {
	if t == nil {
		return nil
	}
	for _, m := range t.Member(name) {
		if m.Kind != SymbolConstructor {
			return m
		}
	}
	for _, st := range b.supertypes(t) {
		for _, m := range st.Member(name) {
			if m.Kind != SymbolConstructor {
				return m
			}
		}
	}
	if nested := b.lookupType(t.FullName + "." + name); nested != nil {
		return nested.Symbol
	}
	return nil
}

func (b *Binder) resolveMember(ma *syntax.Node, depth int) *Symbol {
	recv, name := syntax.CalleeParts(ma)
	if recv == nil || name == "" || depth > maxDepth {
		return nil
	}
	recv = syntax.Unparen(recv)
	switch text := recv.SignificantText(); {
	case recv.Is(syntax.KindThis) || text == "this":
		return b.findMember(b.EnclosingType(ma), name, 0)
	case recv.Is(syntax.KindBase) || text == "base":
		if t := b.EnclosingType(ma); t != nil && len(t.Bases) > 0 {
			return b.findMember(b.lookupType(t.Bases[0]), name, 0)
		}
		return nil
	}
	if rs := b.resolve(recv, depth+1); rs != nil {
		switch {
		case rs.Kind == SymbolType:
			return b.findMember(rs.Type, name, 0)
		case rs.Kind.IsValue():
			return b.findMember(b.symbolType(rs, depth+1), name, 0)
		case rs.Kind == SymbolMethod:
			return nil
		}
	}
	// NUnit.Framework.Assert и подобные полные имена
	if ti := b.resolveTypeText(compact(ma.SignificantText()), ma); ti != nil {
		return ti.Symbol
	}
	return nil
}

func (b *Binder) symbolType(sym *Symbol, depth int) *TypeInfo {
	if sym == nil {
		return nil
	}
	if sym.Type != nil {
		return sym.Type
	}
	if sym.TypeName != "" && sym.TypeName != "var" && sym.Decl != nil {
		return b.resolveTypeText(sym.TypeName, sym.Decl)
	}
	return nil
}

// EnclosingType returns the innermost type declared around n.
func (b *Binder) EnclosingType(n *syntax.Node) *TypeInfo {
	if ti := b.typeDecl[n]; ti != nil {
		return ti
	}
	for _, anc := range b.tree.Ancestors(n) {
		if ti := b.typeDecl[anc]; ti != nil {
			return ti
		}
	}
	return nil
}

func (b *Binder) enclosingTypes(n *syntax.Node) []*TypeInfo {
	var out []*TypeInfo
	if ti := b.typeDecl[n]; ti != nil {
		out = append(out, ti)
	}
	for _, anc := range b.tree.Ancestors(n) {
		if ti := b.typeDecl[anc]; ti != nil {
			out = append(out, ti)
		}
	}
	return out
}

func (b *Binder) namespaceOf(n *syntax.Node) string {
	var parts []string
	for _, anc := range b.tree.Ancestors(n) {
		if anc.Is(syntax.KindNamespace, syntax.KindFileScopedNamespace) {
			parts = append(parts, namespaceName(anc))
		}
	}
	if len(parts) == 0 {
		return b.fileNS
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// resolveTypeText resolves a type as written at node at.
func (b *Binder) resolveTypeText(text string, at *syntax.Node) *TypeInfo {
	text = strings.TrimSuffix(compact(text), "?")
	text = strings.TrimPrefix(text, "global::")
	if text == "" || text == "var" || text == "dynamic" {
		return nil
	}
	if strings.HasSuffix(text, "]") {
		return b.lookupType("System.Array")
	}
	if full, ok := predefinedTypes[text]; ok {
		return b.lookupType(full)
	}
	if i := strings.IndexByte(text, '<'); i >= 0 {
		if !strings.HasSuffix(text, ">") {
			return nil
		}
		text = text[:i] + "`" + strconv.Itoa(genericArity(text[i+1:len(text)-1]))
	}
	for _, cand := range b.candidates(text, at) {
		if ti := b.lookupType(cand); ti != nil {
			return ti
		}
	}
	return nil
}

func genericArity(args string) int {
	n, depth := 1, 0
	for _, c := range args {
		switch c {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				n++
			}
		}
	}
	return n
}

// candidates lists the full names a type name may stand for at node at, in
// lookup order.
func (b *Binder) candidates(name string, at *syntax.Node) []string {
	first, rest, dotted := strings.Cut(name, ".")
	if target, ok := b.aliases[first]; ok {
		if dotted {
			name = target + "." + rest
		} else {
			name = target
		}
	}
	var out []string
	if at != nil {
		for _, ti := range b.enclosingTypes(at) {
			out = append(out, ti.FullName+"."+name)
		}
	}
	ns := b.namespaceOf(at)
	for ns != "" {
		out = append(out, ns+"."+name)
		i := strings.LastIndexByte(ns, '.')
		if i < 0 {
			break
		}
		ns = ns[:i]
	}
	out = append(out, name)
	for _, u := range b.usings {
		out = append(out, u+"."+name)
	}
	return out
}
