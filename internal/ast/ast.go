// Package ast defines the raw parsed tree handed to the core pipeline by
// the front end. The normalizer canonicalizes trees in place; the lowerer
// consumes only normalized trees.
package ast

import "github.com/moonsmith/moonsmith/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node. Destructuring patterns implement
// Expr as well since they occupy expression positions in the grammar.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Program is a parsed compilation unit.
type Program struct {
	Body []Stmt
	Loc  lexer.Span
}

func (p *Program) Span() lexer.Span { return p.Loc }

// Ident is an identifier reference or binding.
type Ident struct {
	Name string
	Loc  lexer.Span
}

func (n *Ident) Span() lexer.Span { return n.Loc }
func (*Ident) exprNode()          {}

// Literal is a number, string, boolean, or null literal.
type Literal struct {
	Type string // "number" | "string" | "boolean" | "null"
	Num  float64
	Str  string
	Bool bool
	Raw  string
	Loc  lexer.Span
}

func (n *Literal) Span() lexer.Span { return n.Loc }
func (*Literal) exprNode()          {}

// BinaryExpr is an arithmetic or comparison expression.
type BinaryExpr struct {
	Op          string
	Left, Right Expr
	Loc         lexer.Span
}

func (n *BinaryExpr) Span() lexer.Span { return n.Loc }
func (*BinaryExpr) exprNode()          {}

// LogicalExpr is a short-circuiting && or || expression.
type LogicalExpr struct {
	Op          string
	Left, Right Expr
	Loc         lexer.Span
}

func (n *LogicalExpr) Span() lexer.Span { return n.Loc }
func (*LogicalExpr) exprNode()          {}

// AssignExpr assigns Value to Target with a plain or compound operator.
type AssignExpr struct {
	Op     string
	Target Expr
	Value  Expr
	Loc    lexer.Span
}

func (n *AssignExpr) Span() lexer.Span { return n.Loc }
func (*AssignExpr) exprNode()          {}

// UpdateExpr is ++ or -- in prefix or postfix position.
type UpdateExpr struct {
	Op     string
	Prefix bool
	Arg    Expr
	Loc    lexer.Span
}

func (n *UpdateExpr) Span() lexer.Span { return n.Loc }
func (*UpdateExpr) exprNode()          {}

// UnaryExpr is a prefix operator expression.
type UnaryExpr struct {
	Op  string
	Arg Expr
	Loc lexer.Span
}

func (n *UnaryExpr) Span() lexer.Span { return n.Loc }
func (*UnaryExpr) exprNode()          {}

// CondExpr is the ternary conditional.
type CondExpr struct {
	Test, Then, Else Expr
	Loc              lexer.Span
}

func (n *CondExpr) Span() lexer.Span { return n.Loc }
func (*CondExpr) exprNode()          {}

// CallExpr is a function call.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Loc    lexer.Span
}

func (n *CallExpr) Span() lexer.Span { return n.Loc }
func (*CallExpr) exprNode()          {}

// NewExpr is a constructor call.
type NewExpr struct {
	Callee Expr
	Args   []Expr
	Loc    lexer.Span
}

func (n *NewExpr) Span() lexer.Span { return n.Loc }
func (*NewExpr) exprNode()          {}

// MemberExpr is property access, dotted or computed.
type MemberExpr struct {
	Object   Expr
	Property Expr
	Computed bool
	Loc      lexer.Span
}

func (n *MemberExpr) Span() lexer.Span { return n.Loc }
func (*MemberExpr) exprNode()          {}

// ArrayLit is an array literal. A nil element is an elision (hole).
type ArrayLit struct {
	Elems []Expr
	Loc   lexer.Span
}

func (n *ArrayLit) Span() lexer.Span { return n.Loc }
func (*ArrayLit) exprNode()          {}

// ObjectLit is an object literal.
type ObjectLit struct {
	Props []*Property
	Loc   lexer.Span
}

func (n *ObjectLit) Span() lexer.Span { return n.Loc }
func (*ObjectLit) exprNode()          {}

// Property is one key/value entry of an object literal or object pattern.
type Property struct {
	Key       Expr
	Value     Expr
	Computed  bool
	Shorthand bool
	Loc       lexer.Span
}

func (n *Property) Span() lexer.Span { return n.Loc }

// AwaitExpr suspends on its argument inside an async function.
type AwaitExpr struct {
	Arg Expr
	Loc lexer.Span
}

func (n *AwaitExpr) Span() lexer.Span { return n.Loc }
func (*AwaitExpr) exprNode()          {}

// FuncExpr is a function expression.
type FuncExpr struct {
	Async  bool
	Name   *Ident // optional
	Params []Expr
	Body   *BlockStmt
	Loc    lexer.Span
}

func (n *FuncExpr) Span() lexer.Span { return n.Loc }
func (*FuncExpr) exprNode()          {}

// Patterns. These occupy binding positions (declarator targets); the
// parser produces them by reinterpreting array/object literal syntax.

// ArrayPattern destructures positionally. A nil element is a hole: the
// source slot is skipped and introduces no binding.
type ArrayPattern struct {
	Elems []Expr
	Loc   lexer.Span
}

func (n *ArrayPattern) Span() lexer.Span { return n.Loc }
func (*ArrayPattern) exprNode()          {}

// ObjectPattern destructures by key.
type ObjectPattern struct {
	Props []*Property
	Loc   lexer.Span
}

func (n *ObjectPattern) Span() lexer.Span { return n.Loc }
func (*ObjectPattern) exprNode()          {}

// RestElement captures the trailing elements of an array pattern.
type RestElement struct {
	Arg Expr
	Loc lexer.Span
}

func (n *RestElement) Span() lexer.Span { return n.Loc }
func (*RestElement) exprNode()          {}

// AssignPattern wraps a pattern target with a default value. The default
// is never pre-evaluated; it surfaces in the IR and applies at emission.
type AssignPattern struct {
	Target  Expr
	Default Expr
	Loc     lexer.Span
}

func (n *AssignPattern) Span() lexer.Span { return n.Loc }
func (*AssignPattern) exprNode()          {}

// Statements.

// ExprStmt wraps an expression in statement position.
type ExprStmt struct {
	X   Expr
	Loc lexer.Span
}

func (n *ExprStmt) Span() lexer.Span { return n.Loc }
func (*ExprStmt) stmtNode()          {}

// VarDecl declares one or more variables with a shared kind tag.
type VarDecl struct {
	Kind  string // var | let | const (normalized lower-case)
	Decls []*VarDeclarator
	Loc   lexer.Span
}

func (n *VarDecl) Span() lexer.Span { return n.Loc }
func (*VarDecl) stmtNode()          {}

// VarDeclarator binds one target (identifier or pattern) to an optional
// initializer. Kind is copied from the enclosing declaration by the
// normalizer so each declarator is self-describing.
type VarDeclarator struct {
	Target Expr
	Init   Expr // optional
	Kind   string
	Loc    lexer.Span
}

func (n *VarDeclarator) Span() lexer.Span { return n.Loc }

// FuncDecl is a function declaration statement.
type FuncDecl struct {
	Async  bool
	Name   *Ident
	Params []Expr
	Body   *BlockStmt
	Loc    lexer.Span
}

func (n *FuncDecl) Span() lexer.Span { return n.Loc }
func (*FuncDecl) stmtNode()          {}

// BlockStmt is a braced statement list.
type BlockStmt struct {
	List []Stmt
	Loc  lexer.Span
}

func (n *BlockStmt) Span() lexer.Span { return n.Loc }
func (*BlockStmt) stmtNode()          {}

// IfStmt is a conditional statement with an optional else branch.
type IfStmt struct {
	Test Expr
	Then Stmt
	Else Stmt // optional
	Loc  lexer.Span
}

func (n *IfStmt) Span() lexer.Span { return n.Loc }
func (*IfStmt) stmtNode()          {}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Test Expr
	Body Stmt
	Loc  lexer.Span
}

func (n *WhileStmt) Span() lexer.Span { return n.Loc }
func (*WhileStmt) stmtNode()          {}

// DoWhileStmt is a post-tested loop.
type DoWhileStmt struct {
	Body Stmt
	Test Expr
	Loc  lexer.Span
}

func (n *DoWhileStmt) Span() lexer.Span { return n.Loc }
func (*DoWhileStmt) stmtNode()          {}

// ForStmt is the classic three-clause loop. Any clause may be nil.
type ForStmt struct {
	Init Node // *VarDecl or Expr, optional
	Test Expr // optional
	Post Expr // optional
	Body Stmt
	Loc  lexer.Span
}

func (n *ForStmt) Span() lexer.Span { return n.Loc }
func (*ForStmt) stmtNode()          {}

// ForInStmt iterates object keys.
type ForInStmt struct {
	Left  Node // *VarDecl or Expr
	Right Expr
	Body  Stmt
	Loc   lexer.Span
}

func (n *ForInStmt) Span() lexer.Span { return n.Loc }
func (*ForInStmt) stmtNode()          {}

// ForOfStmt iterates sequence values.
type ForOfStmt struct {
	Left  Node // *VarDecl or Expr
	Right Expr
	Body  Stmt
	Loc   lexer.Span
}

func (n *ForOfStmt) Span() lexer.Span { return n.Loc }
func (*ForOfStmt) stmtNode()          {}

// SwitchStmt dispatches on a discriminant expression.
type SwitchStmt struct {
	Disc  Expr
	Cases []*CaseClause
	Loc   lexer.Span
}

func (n *SwitchStmt) Span() lexer.Span { return n.Loc }
func (*SwitchStmt) stmtNode()          {}

// CaseClause is one case of a switch; Test is nil for default.
type CaseClause struct {
	Test Expr // nil = default
	Body []Stmt
	Loc  lexer.Span
}

func (n *CaseClause) Span() lexer.Span { return n.Loc }

// ReturnStmt exits the enclosing function, optionally with a value.
type ReturnStmt struct {
	Arg Expr // optional
	Loc lexer.Span
}

func (n *ReturnStmt) Span() lexer.Span { return n.Loc }
func (*ReturnStmt) stmtNode()          {}

// BreakStmt exits the enclosing loop or switch.
type BreakStmt struct {
	Loc lexer.Span
}

func (n *BreakStmt) Span() lexer.Span { return n.Loc }
func (*BreakStmt) stmtNode()          {}

// ContinueStmt restarts the enclosing loop.
type ContinueStmt struct {
	Loc lexer.Span
}

func (n *ContinueStmt) Span() lexer.Span { return n.Loc }
func (*ContinueStmt) stmtNode()          {}

// ThrowStmt raises its argument.
type ThrowStmt struct {
	Arg Expr
	Loc lexer.Span
}

func (n *ThrowStmt) Span() lexer.Span { return n.Loc }
func (*ThrowStmt) stmtNode()          {}

// TryStmt guards a block with a catch handler and/or finalizer.
type TryStmt struct {
	Body    *BlockStmt
	Catch   *CatchClause // optional
	Finally *BlockStmt   // optional; lowering rejects it explicitly
	Loc     lexer.Span
}

func (n *TryStmt) Span() lexer.Span { return n.Loc }
func (*TryStmt) stmtNode()          {}

// CatchClause handles an exception bound to Param.
type CatchClause struct {
	Param *Ident
	Body  *BlockStmt
	Loc   lexer.Span
}

func (n *CatchClause) Span() lexer.Span { return n.Loc }
