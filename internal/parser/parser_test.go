package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ast"
)

func parseOne(t *testing.T, src string) ast.Stmt {
	t.Helper()
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	return prog.Body[0]
}

func parseExprOf(t *testing.T, src string) ast.Expr {
	t.Helper()
	stmt, ok := parseOne(t, src).(*ast.ExprStmt)
	require.True(t, ok, "expected expression statement")
	return stmt.X
}

func TestVarDeclarations(t *testing.T) {
	decl, ok := parseOne(t, "let x = 1, y;").(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "let", decl.Kind)
	require.Len(t, decl.Decls, 2)

	x, ok := decl.Decls[0].Target.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "x", x.Name)
	require.NotNil(t, decl.Decls[0].Init)

	y, ok := decl.Decls[1].Target.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "y", y.Name)
	assert.Nil(t, decl.Decls[1].Init)
}

func TestBinaryPrecedence(t *testing.T) {
	// a + b * c parses as a + (b * c).
	bin, ok := parseExprOf(t, "a + b * c;").(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestPowIsRightAssociative(t *testing.T) {
	// a ** b ** c parses as a ** (b ** c).
	bin, ok := parseExprOf(t, "a ** b ** c;").(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "**", bin.Op)
	_, leftIsIdent := bin.Left.(*ast.Ident)
	assert.True(t, leftIsIdent)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "**", right.Op)
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	// a - b - c parses as (a - b) - c.
	bin, ok := parseExprOf(t, "a - b - c;").(*ast.BinaryExpr)
	require.True(t, ok)
	left, ok := bin.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-", left.Op)
	_, rightIsIdent := bin.Right.(*ast.Ident)
	assert.True(t, rightIsIdent)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	asn, ok := parseExprOf(t, "a = b = 1;").(*ast.AssignExpr)
	require.True(t, ok)
	inner, ok := asn.Value.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "=", inner.Op)
}

func TestConditionalExpression(t *testing.T) {
	cond, ok := parseExprOf(t, "a ? b : c;").(*ast.CondExpr)
	require.True(t, ok)
	assert.NotNil(t, cond.Test)
	assert.NotNil(t, cond.Then)
	assert.NotNil(t, cond.Else)
}

func TestLogicalVersusBinary(t *testing.T) {
	lg, ok := parseExprOf(t, "a && b || c;").(*ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, "||", lg.Op)
	left, ok := lg.Left.(*ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", left.Op)
}

func TestMemberAndCallChain(t *testing.T) {
	// a.b[c](d) parses inside out: call of member of member.
	call, ok := parseExprOf(t, "a.b[c](d);").(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	computed, ok := call.Callee.(*ast.MemberExpr)
	require.True(t, ok)
	assert.True(t, computed.Computed)
	dotted, ok := computed.Object.(*ast.MemberExpr)
	require.True(t, ok)
	assert.False(t, dotted.Computed)
}

func TestNewExpression(t *testing.T) {
	// In new a.b(c), the argument list belongs to the new-expression.
	nx, ok := parseExprOf(t, "new a.b(c);").(*ast.NewExpr)
	require.True(t, ok)
	_, calleeIsMember := nx.Callee.(*ast.MemberExpr)
	assert.True(t, calleeIsMember)
	assert.Len(t, nx.Args, 1)
}

func TestUpdateExpressions(t *testing.T) {
	post, ok := parseExprOf(t, "i++;").(*ast.UpdateExpr)
	require.True(t, ok)
	assert.Equal(t, "++", post.Op)
	assert.False(t, post.Prefix)

	pre, ok := parseExprOf(t, "--i;").(*ast.UpdateExpr)
	require.True(t, ok)
	assert.Equal(t, "--", pre.Op)
	assert.True(t, pre.Prefix)
}

func TestTypeofSpelling(t *testing.T) {
	un, ok := parseExprOf(t, "typeof x;").(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "typeof", un.Op)
}

func TestArrayLiteralHoles(t *testing.T) {
	arr, ok := parseExprOf(t, "[1, , 3];").(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 3)
	assert.NotNil(t, arr.Elems[0])
	assert.Nil(t, arr.Elems[1])
	assert.NotNil(t, arr.Elems[2])
}

func TestObjectLiteralForms(t *testing.T) {
	obj, ok := parseExprOf(t, `({a: 1, b, "c d": 2, [k]: 3});`).(*ast.ObjectLit)
	require.True(t, ok)
	require.Len(t, obj.Props, 4)

	assert.False(t, obj.Props[0].Shorthand)
	assert.True(t, obj.Props[1].Shorthand)

	lit, ok := obj.Props[2].Key.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "c d", lit.Str)

	assert.True(t, obj.Props[3].Computed)
}

func TestArrayPatternWithRestAndDefault(t *testing.T) {
	decl, ok := parseOne(t, "const [a = 1, , ...rest] = xs;").(*ast.VarDecl)
	require.True(t, ok)
	pat, ok := decl.Decls[0].Target.(*ast.ArrayPattern)
	require.True(t, ok)
	require.Len(t, pat.Elems, 3)

	_, ok = pat.Elems[0].(*ast.AssignPattern)
	assert.True(t, ok)
	assert.Nil(t, pat.Elems[1])
	_, ok = pat.Elems[2].(*ast.RestElement)
	assert.True(t, ok)
}

func TestObjectPatternRenaming(t *testing.T) {
	decl, ok := parseOne(t, "const {a: x, b = 2} = o;").(*ast.VarDecl)
	require.True(t, ok)
	pat, ok := decl.Decls[0].Target.(*ast.ObjectPattern)
	require.True(t, ok)
	require.Len(t, pat.Props, 2)

	renamed, ok := pat.Props[0].Value.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "x", renamed.Name)

	_, ok = pat.Props[1].Value.(*ast.AssignPattern)
	assert.True(t, ok)
}

func TestForVariants(t *testing.T) {
	_, isFor := parseOne(t, "for (let i = 0; i < 3; i++) {}").(*ast.ForStmt)
	assert.True(t, isFor)
	_, isForIn := parseOne(t, "for (const k in o) {}").(*ast.ForInStmt)
	assert.True(t, isForIn)
	_, isForOf := parseOne(t, "for (const v of xs) {}").(*ast.ForOfStmt)
	assert.True(t, isForOf)
}

func TestSwitchCases(t *testing.T) {
	sw, ok := parseOne(t, `switch (x) { case 1: a(); case 2: break; default: b(); }`).(*ast.SwitchStmt)
	require.True(t, ok)
	require.Len(t, sw.Cases, 3)
	assert.NotNil(t, sw.Cases[0].Test)
	assert.NotNil(t, sw.Cases[1].Test)
	assert.Nil(t, sw.Cases[2].Test)
}

func TestTryCatchFinally(t *testing.T) {
	try, ok := parseOne(t, "try { a(); } catch (e) { b(); } finally { c(); }").(*ast.TryStmt)
	require.True(t, ok)
	require.NotNil(t, try.Catch)
	assert.Equal(t, "e", try.Catch.Param.Name)
	assert.NotNil(t, try.Finally)
}

func TestBareTryIsRejected(t *testing.T) {
	_, err := Parse("try { a(); }")
	assert.Error(t, err)
}

func TestAsyncFunctionAndAwait(t *testing.T) {
	fn, ok := parseOne(t, "async function f() { let v = await g(); return v; }").(*ast.FuncDecl)
	require.True(t, ok)
	assert.True(t, fn.Async)
	require.NotEmpty(t, fn.Body.List)
	decl, ok := fn.Body.List[0].(*ast.VarDecl)
	require.True(t, ok)
	_, isAwait := decl.Decls[0].Init.(*ast.AwaitExpr)
	assert.True(t, isAwait)
}

func TestFunctionExpression(t *testing.T) {
	stmt, ok := parseOne(t, "const f = function g(a, b) { return a; };").(*ast.VarDecl)
	require.True(t, ok)
	fx, ok := stmt.Decls[0].Init.(*ast.FuncExpr)
	require.True(t, ok)
	require.NotNil(t, fx.Name)
	assert.Equal(t, "g", fx.Name.Name)
	assert.Len(t, fx.Params, 2)
}

func TestParseErrorsJoined(t *testing.T) {
	_, err := Parse("let = ;")
	assert.Error(t, err)
}

func TestLexErrorSurfaces(t *testing.T) {
	_, err := Parse("let x = @;")
	assert.Error(t, err)
}
