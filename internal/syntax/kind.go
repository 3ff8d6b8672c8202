package syntax

import "strings"

// Kind tags a node. C# kinds reuse the grammar's node type names so trees
// produced by the parser adapter need no translation table.
type Kind string

// Synthetic kinds created by this package rather than the parser.
const (
	KindEndOfFile Kind = "end_of_file"
	KindRaw       Kind = "raw"
	KindError     Kind = "ERROR"
)

// Declarations.
const (
	KindCompilationUnit       Kind = "compilation_unit"
	KindUsingDirective        Kind = "using_directive"
	KindNamespace             Kind = "namespace_declaration"
	KindFileScopedNamespace   Kind = "file_scoped_namespace_declaration"
	KindClass                 Kind = "class_declaration"
	KindStruct                Kind = "struct_declaration"
	KindInterface             Kind = "interface_declaration"
	KindRecord                Kind = "record_declaration"
	KindRecordStruct          Kind = "record_struct_declaration"
	KindEnum                  Kind = "enum_declaration"
	KindDelegate              Kind = "delegate_declaration"
	KindDeclarationList       Kind = "declaration_list"
	KindBaseList              Kind = "base_list"
	KindMethod                Kind = "method_declaration"
	KindConstructor           Kind = "constructor_declaration"
	KindDestructor            Kind = "destructor_declaration"
	KindOperator              Kind = "operator_declaration"
	KindConversionOperator    Kind = "conversion_operator_declaration"
	KindProperty              Kind = "property_declaration"
	KindIndexer               Kind = "indexer_declaration"
	KindEventDeclaration      Kind = "event_declaration"
	KindEventField            Kind = "event_field_declaration"
	KindField                 Kind = "field_declaration"
	KindAccessor              Kind = "accessor_declaration"
	KindAccessorList          Kind = "accessor_list"
	KindParameterList         Kind = "parameter_list"
	KindParameter             Kind = "parameter"
	KindTypeParameterList     Kind = "type_parameter_list"
	KindVariableDeclaration   Kind = "variable_declaration"
	KindVariableDeclarator    Kind = "variable_declarator"
	KindEqualsValueClause     Kind = "equals_value_clause"
	KindModifier              Kind = "modifier"
	KindAttributeList         Kind = "attribute_list"
	KindAttribute             Kind = "attribute"
	KindArrowExpressionClause Kind = "arrow_expression_clause"
	KindEnumMemberDeclaration Kind = "enum_member_declaration"
)

// Types and names.
const (
	KindIdentifier    Kind = "identifier"
	KindQualifiedName Kind = "qualified_name"
	KindGenericName   Kind = "generic_name"
	KindPredefined    Kind = "predefined_type"
	KindNullableType  Kind = "nullable_type"
	KindArrayType     Kind = "array_type"
	KindImplicitType  Kind = "implicit_type"
)

// Statements.
const (
	KindBlock            Kind = "block"
	KindExpressionStmt   Kind = "expression_statement"
	KindLocalDeclaration Kind = "local_declaration_statement"
	KindLocalFunction    Kind = "local_function_statement"
	KindIf               Kind = "if_statement"
	KindElseClause       Kind = "else_clause"
	KindSwitch           Kind = "switch_statement"
	KindSwitchBody       Kind = "switch_body"
	KindSwitchSection    Kind = "switch_section"
	KindFor              Kind = "for_statement"
	KindForeach          Kind = "foreach_statement"
	KindForEachLegacy    Kind = "for_each_statement"
	KindWhile            Kind = "while_statement"
	KindDo               Kind = "do_statement"
	KindTry              Kind = "try_statement"
	KindLock             Kind = "lock_statement"
	KindUsingStmt        Kind = "using_statement"
	KindReturn           Kind = "return_statement"
	KindThrow            Kind = "throw_statement"
	KindBreak            Kind = "break_statement"
	KindContinue         Kind = "continue_statement"
	KindYield            Kind = "yield_statement"
	KindGoto             Kind = "goto_statement"
	KindEmpty            Kind = "empty_statement"
)

// Expressions.
const (
	KindInvocation            Kind = "invocation_expression"
	KindArgumentList          Kind = "argument_list"
	KindArgument              Kind = "argument"
	KindMemberAccess          Kind = "member_access_expression"
	KindConditionalAccess     Kind = "conditional_access_expression"
	KindMemberBinding         Kind = "member_binding_expression"
	KindObjectCreation        Kind = "object_creation_expression"
	KindImplicitCreation      Kind = "implicit_object_creation_expression"
	KindInitializer           Kind = "initializer_expression"
	KindBinary                Kind = "binary_expression"
	KindPrefixUnary           Kind = "prefix_unary_expression"
	KindAssignment            Kind = "assignment_expression"
	KindAssignmentOperator    Kind = "assignment_operator"
	KindParenthesized         Kind = "parenthesized_expression"
	KindIsPattern             Kind = "is_pattern_expression"
	KindCast                  Kind = "cast_expression"
	KindLambda                Kind = "lambda_expression"
	KindAnonymousMethod       Kind = "anonymous_method_expression"
	KindThrowExpression       Kind = "throw_expression"
	KindInterpolatedString    Kind = "interpolated_string_expression"
	KindStringLiteral         Kind = "string_literal"
	KindVerbatimStringLiteral Kind = "verbatim_string_literal"
	KindRawStringLiteral      Kind = "raw_string_literal"
	KindCharLiteral           Kind = "character_literal"
	KindIntegerLiteral        Kind = "integer_literal"
	KindRealLiteral           Kind = "real_literal"
	KindBooleanLiteral        Kind = "boolean_literal"
	KindNullLiteral           Kind = "null_literal"
	KindThis                  Kind = "this"
	KindBase                  Kind = "base"
	KindQuery                 Kind = "query_expression"
	KindComment               Kind = "comment"
)

// IsStatement reports whether k is a statement kind (blocks included).
func (k Kind) IsStatement() bool {
	return k == KindBlock || strings.HasSuffix(string(k), "_statement")
}

// IsControlFlow reports whether k is a compound statement that opens its own block.
func (k Kind) IsControlFlow() bool {
	switch k {
	case KindIf, KindSwitch, KindFor, KindForeach, KindForEachLegacy, KindWhile,
		KindDo, KindTry, KindLock, KindUsingStmt:
		return true
	default:
		return false
	}
}

// IsTypeDeclaration reports whether k declares a type.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClass, KindStruct, KindInterface, KindRecord, KindRecordStruct, KindEnum, KindDelegate:
		return true
	default:
		return false
	}
}

// IsFunctionLike reports whether k owns a body with parameters and locals.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindMethod, KindConstructor, KindDestructor, KindOperator, KindConversionOperator,
		KindAccessor, KindLocalFunction, KindLambda, KindAnonymousMethod:
		return true
	default:
		return false
	}
}

// IsStringLiteral reports whether k is any string literal flavour.
func (k Kind) IsStringLiteral() bool {
	switch k {
	case KindStringLiteral, KindVerbatimStringLiteral, KindRawStringLiteral, KindInterpolatedString:
		return true
	default:
		return false
	}
}

// FunctionScopes lists the kinds rules use to scope per-body state.
var FunctionScopes = []Kind{
	KindMethod, KindConstructor, KindDestructor, KindOperator, KindConversionOperator,
	KindAccessor, KindLocalFunction,
}

// ControlFlowKinds lists every kind for which IsControlFlow is true.
var ControlFlowKinds = []Kind{
	KindIf, KindSwitch, KindFor, KindForeach, KindForEachLegacy, KindWhile,
	KindDo, KindTry, KindLock, KindUsingStmt,
}
