package syntax

import "strings"

// The helpers below read C# shapes. They prefer grammar field labels and fall
// back to positional lookups so both older and newer grammar revisions work.

// Unparen strips any number of enclosing parenthesized_expression nodes.
func Unparen(n *Node) *Node {
	for n != nil && n.kind == KindParenthesized {
		inner := n.firstNamed()
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

func (n *Node) firstNamed() *Node {
	for _, c := range n.children {
		if c.IsNamed() && c.kind != KindComment {
			return c
		}
	}
	return nil
}

func (n *Node) lastNamed() *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if c.IsNamed() && c.kind != KindComment {
			return c
		}
	}
	return nil
}

// DeclName returns the identifier that names a declaration, parameter or declarator.
func DeclName(n *Node) *Node {
	if n == nil {
		return nil
	}
	if id := n.Field("name"); id != nil && id.kind == KindIdentifier {
		return id
	}
	var last *Node
	for _, c := range n.children {
		switch {
		case c.kind == KindIdentifier:
			last = c
		case isNameTerminator(c):
			if last != nil {
				return last
			}
		}
	}
	return last
}

func isNameTerminator(c *Node) bool {
	switch c.kind {
	case KindParameterList, KindTypeParameterList, KindAccessorList, KindArrowExpressionClause,
		KindBaseList, KindDeclarationList, KindEqualsValueClause, KindBlock:
		return true
	}
	if c.IsToken() && !c.IsNamed() {
		switch c.text {
		case "=", ";", "{", "(", ",", ":":
			return true
		}
	}
	return false
}

// DeclNameText is DeclName as text, "" when the node has no name.
func DeclNameText(n *Node) string {
	if id := DeclName(n); id != nil {
		return id.text
	}
	return ""
}

// Modifiers returns the modifier keywords of a declaration in source order.
func Modifiers(n *Node) []string {
	var out []string
	for _, c := range n.children {
		switch {
		case c.kind == KindModifier:
			out = append(out, c.SignificantText())
		case c.IsToken() && !c.IsNamed() && modifierKeywords[c.text]:
			out = append(out, c.text)
		}
	}
	return out
}

var modifierKeywords = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true, "static": true,
	"abstract": true, "virtual": true, "override": true, "sealed": true, "readonly": true,
	"const": true, "partial": true, "async": true, "extern": true, "new": true,
	"unsafe": true, "volatile": true, "required": true, "file": true,
}

// HasModifier reports whether the declaration carries modifier m.
func HasModifier(n *Node, m string) bool {
	for _, x := range Modifiers(n) {
		if x == m {
			return true
		}
	}
	return false
}

// BinaryParts splits a binary_expression into its operands and operator text.
func BinaryParts(n *Node) (left *Node, op string, right *Node, ok bool) {
	if n == nil || n.kind != KindBinary {
		return nil, "", nil, false
	}
	left, right = n.Field("left"), n.Field("right")
	if o := n.Field("operator"); o != nil {
		op = o.SignificantText()
	}
	if left == nil || right == nil || op == "" {
		if len(n.children) != 3 {
			return nil, "", nil, false
		}
		left, right = n.children[0], n.children[2]
		op = n.children[1].SignificantText()
	}
	return left, op, right, true
}

// AssignmentParts splits an assignment_expression; op is "=", "+=", "-=", ...
func AssignmentParts(n *Node) (left *Node, op string, right *Node, ok bool) {
	if n == nil || n.kind != KindAssignment || len(n.children) < 3 {
		return nil, "", nil, false
	}
	left, right = n.Field("left"), n.Field("right")
	if o := n.Field("operator"); o != nil {
		op = o.SignificantText()
	} else if o := n.ChildOfKind(KindAssignmentOperator); o != nil {
		op = o.SignificantText()
	}
	if left == nil {
		left = n.children[0]
	}
	if right == nil {
		right = n.children[len(n.children)-1]
	}
	if op == "" {
		op = n.children[1].SignificantText()
	}
	return left, op, right, true
}

// AssignmentOf returns the assignment held by an expression_statement, if any.
func AssignmentOf(stmt *Node) *Node {
	if stmt == nil || stmt.kind != KindExpressionStmt {
		return nil
	}
	if e := stmt.firstNamed(); e != nil && e.kind == KindAssignment {
		return e
	}
	return nil
}

// InvocationParts splits an invocation_expression into callee and argument_list.
func InvocationParts(n *Node) (callee, args *Node, ok bool) {
	if n == nil || n.kind != KindInvocation {
		return nil, nil, false
	}
	callee, args = n.Field("function"), n.Field("arguments")
	if args == nil {
		args = n.ChildOfKind(KindArgumentList)
	}
	if callee == nil && len(n.children) > 0 {
		callee = n.children[0]
	}
	return callee, args, callee != nil && args != nil
}

// CalleeParts splits a callee into receiver and simple member name. A bare
// name has no receiver; generic arguments are dropped from the name.
func CalleeParts(callee *Node) (receiver *Node, name string) {
	switch callee.Kind() {
	case KindIdentifier:
		return nil, callee.text
	case KindGenericName:
		return nil, DeclNameText(callee)
	case KindMemberAccess:
		recv := callee.Field("expression")
		nm := callee.Field("name")
		if recv == nil {
			recv = callee.firstNamed()
		}
		if nm == nil {
			nm = callee.lastNamed()
		}
		if nm == nil || nm == recv {
			return recv, ""
		}
		if nm.kind == KindGenericName {
			return recv, DeclNameText(nm)
		}
		return recv, nm.SignificantText()
	case KindConditionalAccess:
		recv := callee.Field("condition")
		if recv == nil {
			recv = callee.firstNamed()
		}
		if b := callee.ChildOfKind(KindMemberBinding); b != nil {
			if nm := b.lastNamed(); nm != nil {
				return recv, nm.SignificantText()
			}
		}
		return recv, ""
	}
	return nil, ""
}

// Arguments returns the argument nodes of an argument_list.
func Arguments(list *Node) []*Node {
	if list == nil {
		return nil
	}
	return list.ChildrenOfKind(KindArgument)
}

// ArgumentExpr returns the value expression of an argument, skipping any
// name: label and ref/out/in keyword.
func ArgumentExpr(arg *Node) *Node {
	if arg == nil {
		return nil
	}
	if arg.kind != KindArgument {
		return arg
	}
	return arg.lastNamed()
}

// IsNamedArgument reports whether arg uses "name: value" syntax.
func IsNamedArgument(arg *Node) bool {
	if arg == nil {
		return false
	}
	if arg.ChildOfKind("name_colon") != nil {
		return true
	}
	return arg.TokenChild(":") != nil
}

// ObjectCreationParts splits new T(args) { init }.
func ObjectCreationParts(n *Node) (typ, args, init *Node, ok bool) {
	if n == nil || n.kind != KindObjectCreation {
		return nil, nil, nil, false
	}
	typ, args, init = n.Field("type"), n.Field("arguments"), n.Field("initializer")
	if args == nil {
		args = n.ChildOfKind(KindArgumentList)
	}
	if init == nil {
		init = n.ChildOfKind(KindInitializer)
	}
	if typ == nil {
		for _, c := range n.children {
			if c.IsNamed() && c != args && c != init {
				typ = c
				break
			}
		}
	}
	return typ, args, init, typ != nil
}

// DeclaratorParts splits a variable_declarator into name and initial value.
func DeclaratorParts(n *Node) (name, value *Node) {
	if n == nil || n.kind != KindVariableDeclarator {
		return nil, nil
	}
	name = DeclName(n)
	if eq := n.ChildOfKind(KindEqualsValueClause); eq != nil {
		return name, eq.lastNamed()
	}
	seenEq := false
	for _, c := range n.children {
		if c.IsToken() && c.text == "=" {
			seenEq = true
			continue
		}
		if seenEq && c.IsNamed() {
			return name, c
		}
	}
	return name, nil
}

// Declarators returns the variable_declarators of a field, event field or local declaration.
func Declarators(n *Node) []*Node {
	if n == nil {
		return nil
	}
	decl := n
	if n.kind != KindVariableDeclaration {
		decl = n.ChildOfKind(KindVariableDeclaration)
	}
	if decl == nil {
		return nil
	}
	return decl.ChildrenOfKind(KindVariableDeclarator)
}

// DeclaredType returns the type node of a field, local, event field, property,
// parameter or the return type of a method.
func DeclaredType(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindField, KindLocalDeclaration, KindEventField:
		return DeclaredType(n.ChildOfKind(KindVariableDeclaration))
	}
	for _, f := range []string{"type", "returns"} {
		if t := n.Field(f); t != nil {
			return t
		}
	}
	name := DeclName(n)
	for _, c := range n.children {
		if c == name {
			break
		}
		if c.IsNamed() && isTypeKind(c.kind) {
			return c
		}
	}
	return nil
}

func isTypeKind(k Kind) bool {
	switch k {
	case KindIdentifier, KindQualifiedName, KindGenericName, KindPredefined, KindNullableType,
		KindArrayType, KindImplicitType, "pointer_type", "tuple_type", "function_pointer_type", "ref_type", "scoped_type":
		return true
	}
	return false
}

// Parameter describes one entry of a parameter_list.
type Parameter struct {
	Node      *Node
	Name      string
	Type      *Node
	Modifiers []string
}

var parameterModifiers = map[string]bool{
	"ref": true, "out": true, "in": true, "this": true, "params": true, "scoped": true, "readonly": true,
}

// ParameterParts returns the parameters declared by n (a parameter_list or a
// declaration owning one).
func ParameterParts(n *Node) []Parameter {
	if n == nil {
		return nil
	}
	list := n
	if n.kind != KindParameterList {
		list = n.Field("parameters")
		if list == nil {
			list = n.ChildOfKind(KindParameterList, "bracketed_parameter_list")
		}
	}
	if list == nil {
		// x => ... с единственным параметром без скобок
		if n.kind == KindLambda {
			if id := n.ChildOfKind(KindIdentifier); id != nil {
				return []Parameter{{Node: id, Name: id.text}}
			}
		}
		return nil
	}

	var out []Parameter
	for _, p := range list.ChildrenOfKind(KindParameter) {
		par := Parameter{Node: p, Name: DeclNameText(p), Type: DeclaredType(p)}
		for _, c := range p.children {
			switch {
			case c.kind == "parameter_modifier" || c.kind == KindModifier:
				par.Modifiers = append(par.Modifiers, c.SignificantText())
			case c.IsToken() && !c.IsNamed() && parameterModifiers[c.text]:
				par.Modifiers = append(par.Modifiers, c.text)
			}
		}
		out = append(out, par)
	}
	return out
}

// Body returns the block or arrow_expression_clause of a function-like node.
func Body(n *Node) *Node {
	if n == nil {
		return nil
	}
	if b := n.Field("body"); b != nil {
		return b
	}
	return n.ChildOfKind(KindBlock, KindArrowExpressionClause)
}

// Statements returns the statements of a block or switch_section in order.
func Statements(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.kind.IsStatement() {
			out = append(out, c)
		}
	}
	return out
}

// SwitchSections returns the sections of a switch_statement.
func SwitchSections(n *Node) []*Node {
	if n == nil {
		return nil
	}
	body := n.Field("body")
	if body == nil {
		body = n.ChildOfKind(KindSwitchBody)
	}
	if body == nil {
		return nil
	}
	return body.ChildrenOfKind(KindSwitchSection)
}

// IsDefaultSection reports whether a switch_section carries a default label.
func IsDefaultSection(section *Node) bool {
	for _, c := range section.children {
		if c.kind == "default_switch_label" {
			return true
		}
		if c.IsToken() && c.text == "default" {
			return true
		}
	}
	return false
}

// ThrownExpression returns the expression of a throw statement or expression.
func ThrownExpression(n *Node) *Node {
	if n == nil || !n.Is(KindThrow, KindThrowExpression) {
		return nil
	}
	return n.firstNamed()
}

// ReturnedExpression returns the expression of a return statement.
func ReturnedExpression(n *Node) *Node {
	if n == nil || n.kind != KindReturn {
		return nil
	}
	return n.firstNamed()
}

// LockParts splits lock (expr) body.
func LockParts(n *Node) (expr, body *Node, ok bool) {
	if n == nil || n.kind != KindLock {
		return nil, nil, false
	}
	var named []*Node
	for _, c := range n.children {
		if c.IsNamed() && c.kind != KindComment {
			named = append(named, c)
		}
	}
	if len(named) < 2 {
		return nil, nil, false
	}
	return named[0], named[len(named)-1], true
}

// IsNullLiteral reports whether n (parentheses ignored) is the null literal.
func IsNullLiteral(n *Node) bool {
	n = Unparen(n)
	if n == nil {
		return false
	}
	return n.kind == KindNullLiteral || n.SignificantText() == "null"
}

// IsSimpleName reports whether n is a plain identifier, optionally this-qualified.
func IsSimpleName(n *Node) bool {
	n = Unparen(n)
	if n == nil {
		return false
	}
	if n.kind == KindIdentifier {
		return true
	}
	if n.kind == KindMemberAccess {
		recv, name := CalleeParts(n)
		return name != "" && recv != nil && recv.SignificantText() == "this"
	}
	return false
}

// SimpleNameText returns the identifier of IsSimpleName nodes ("this." dropped).
func SimpleNameText(n *Node) string {
	n = Unparen(n)
	if n == nil {
		return ""
	}
	if n.kind == KindIdentifier {
		return n.text
	}
	if _, name := CalleeParts(n); name != "" {
		return name
	}
	return ""
}

// SameExpression compares two expressions by significant text with
// whitespace and comments removed.
func SameExpression(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	return compactText(Unparen(a)) == compactText(Unparen(b))
}

func compactText(n *Node) string {
	var b strings.Builder
	n.Tokens(func(tok *Node) bool {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.text)
		return true
	})
	return b.String()
}
