package ir

// Kind tags the variant of an IR node. The set is fixed: the validator
// rejects any document containing a kind outside this vocabulary, and the
// emitter dispatches over it exhaustively.
type Kind string

const (
	KindProgram Kind = "Program"

	// Declarations
	KindFunctionDecl  Kind = "FunctionDeclaration"
	KindFunctionExpr  Kind = "FunctionExpression"
	KindVarDecl       Kind = "VariableDeclaration"
	KindVarDeclarator Kind = "VariableDeclarator"

	// Statements
	KindBlock      Kind = "BlockStatement"
	KindIf         Kind = "IfStatement"
	KindWhile      Kind = "WhileStatement"
	KindDoWhile    Kind = "DoWhileStatement"
	KindFor        Kind = "ForStatement"
	KindForIn      Kind = "ForInStatement"
	KindForOf      Kind = "ForOfStatement"
	KindSwitch     Kind = "SwitchStatement"
	KindSwitchCase Kind = "SwitchCase"
	KindReturn     Kind = "ReturnStatement"
	KindBreak      Kind = "BreakStatement"
	KindContinue   Kind = "ContinueStatement"
	KindThrow      Kind = "ThrowStatement"
	KindTry        Kind = "TryStatement"
	KindCatch      Kind = "CatchClause"
	KindExprStmt   Kind = "ExpressionStatement"

	// Expressions
	KindBinary      Kind = "BinaryExpression"
	KindLogical     Kind = "LogicalExpression"
	KindAssign      Kind = "AssignmentExpression"
	KindUpdate      Kind = "UpdateExpression"
	KindConditional Kind = "ConditionalExpression"
	KindUnary       Kind = "UnaryExpression"
	KindCall        Kind = "CallExpression"
	KindNew         Kind = "NewExpression"
	KindMember      Kind = "MemberExpression"
	KindArrayLit    Kind = "ArrayExpression"
	KindObjectLit   Kind = "ObjectExpression"
	KindProperty    Kind = "Property"
	KindIdentifier  Kind = "Identifier"
	KindLiteral     Kind = "Literal"
	KindAwait       Kind = "AwaitExpression"

	// Pattern-only kinds. Patterns are preserved structurally during
	// lowering; the emitter performs the recursive unpacking.
	KindArrayPattern  Kind = "ArrayPattern"
	KindObjectPattern Kind = "ObjectPattern"
	KindRestElement   Kind = "RestElement"
	KindAssignPattern Kind = "AssignmentPattern"
)

// AllKinds is the fixed kind vocabulary.
var AllKinds = map[Kind]bool{
	KindProgram:       true,
	KindFunctionDecl:  true,
	KindFunctionExpr:  true,
	KindVarDecl:       true,
	KindVarDeclarator: true,
	KindBlock:         true,
	KindIf:            true,
	KindWhile:         true,
	KindDoWhile:       true,
	KindFor:           true,
	KindForIn:         true,
	KindForOf:         true,
	KindSwitch:        true,
	KindSwitchCase:    true,
	KindReturn:        true,
	KindBreak:         true,
	KindContinue:      true,
	KindThrow:         true,
	KindTry:           true,
	KindCatch:         true,
	KindExprStmt:      true,
	KindBinary:        true,
	KindLogical:       true,
	KindAssign:        true,
	KindUpdate:        true,
	KindConditional:   true,
	KindUnary:         true,
	KindCall:          true,
	KindNew:           true,
	KindMember:        true,
	KindArrayLit:      true,
	KindObjectLit:     true,
	KindProperty:      true,
	KindIdentifier:    true,
	KindLiteral:       true,
	KindAwait:         true,
	KindArrayPattern:  true,
	KindObjectPattern: true,
	KindRestElement:   true,
	KindAssignPattern: true,
}

// Per-class operator allow-lists. The lowerer rejects anything outside these
// sets up front; the validator re-checks documents arriving from elsewhere.
var (
	BinaryOps = map[string]bool{
		"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
		"==": true, "!=": true, "===": true, "!==": true,
		"<": true, "<=": true, ">": true, ">=": true,
	}

	LogicalOps = map[string]bool{
		"&&": true, "||": true,
	}

	UnaryOps = map[string]bool{
		"-": true, "+": true, "!": true, "typeof": true,
	}

	UpdateOps = map[string]bool{
		"++": true, "--": true,
	}

	AssignOps = map[string]bool{
		"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	}
)

// DeclKinds is the set of normalized variable declaration kind tags.
var DeclKinds = map[string]bool{
	"var": true, "let": true, "const": true,
}

// Category returns the ID category prefix for a kind. Categories group
// related kinds so that IDs read as rough structural hints in dumps and
// diffs.
func (k Kind) Category() string {
	switch k {
	case KindProgram:
		return "prog"
	case KindFunctionDecl, KindFunctionExpr:
		return "fn"
	case KindVarDecl, KindVarDeclarator:
		return "decl"
	case KindBlock, KindIf, KindWhile, KindDoWhile, KindFor, KindForIn,
		KindForOf, KindSwitch, KindSwitchCase, KindReturn, KindBreak,
		KindContinue, KindThrow, KindTry, KindCatch, KindExprStmt:
		return "stmt"
	case KindArrayPattern, KindObjectPattern, KindRestElement,
		KindAssignPattern:
		return "pat"
	case KindProperty:
		return "prop"
	case KindIdentifier:
		return "id"
	case KindLiteral:
		return "lit"
	default:
		return "expr"
	}
}

// IsStatement reports whether the kind may appear in a statement list.
func (k Kind) IsStatement() bool {
	switch k {
	case KindBlock, KindIf, KindWhile, KindDoWhile, KindFor, KindForIn,
		KindForOf, KindSwitch, KindReturn, KindBreak, KindContinue,
		KindThrow, KindTry, KindExprStmt, KindVarDecl, KindFunctionDecl:
		return true
	}
	return false
}

// IsPattern reports whether the kind is a destructuring pattern form.
func (k Kind) IsPattern() bool {
	switch k {
	case KindArrayPattern, KindObjectPattern, KindRestElement,
		KindAssignPattern:
		return true
	}
	return false
}
