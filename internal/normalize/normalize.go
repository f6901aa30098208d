// Package normalize canonicalizes the raw parsed tree before lowering.
//
// Normalization fills omitted optional fields with explicit defaults,
// normalizes declaration-kind tags, and checks that every recognized node
// carries its mandatory fields. It performs no desugaring; that is
// strictly the lowerer's job.
package normalize

import (
	"fmt"
	"strings"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/lexer"
)

// StructuralError reports a recognized node kind missing a mandatory
// field. Normalization is fail-fast: the first structural defect aborts
// the stage.
type StructuralError struct {
	Kind  string
	Field string
	Span  lexer.Span
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%d:%d: %s is missing mandatory field %q",
		e.Span.Start.Line, e.Span.Start.Column, e.Kind, e.Field)
}

// Normalize canonicalizes a raw tree. The tree is canonicalized in place
// and returned; no state outside the tree is touched, so two calls over
// structurally equal input yield structurally equal output. The source
// text parameter is reserved for diagnostics and default synthesis that
// need raw text access.
func Normalize(prog *ast.Program, src string) (*ast.Program, error) {
	if prog == nil {
		return nil, &StructuralError{Kind: "Program", Field: "body"}
	}
	n := &normalizer{src: src}
	for _, stmt := range prog.Body {
		if err := n.stmt(stmt); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

type normalizer struct {
	src string
}

func (n *normalizer) missing(node ast.Node, kind, field string) error {
	var span lexer.Span
	if node != nil {
		span = node.Span()
	}
	return &StructuralError{Kind: kind, Field: field, Span: span}
}

func (n *normalizer) stmt(s ast.Stmt) error {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		for _, inner := range stmt.List {
			if err := n.stmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *ast.VarDecl:
		return n.varDecl(stmt)

	case *ast.FuncDecl:
		if stmt.Name == nil || stmt.Name.Name == "" {
			return n.missing(stmt, "FunctionDeclaration", "name")
		}
		if stmt.Body == nil {
			return n.missing(stmt, "FunctionDeclaration", "body")
		}
		if err := n.exprList(stmt.Params); err != nil {
			return err
		}
		return n.stmt(stmt.Body)

	case *ast.IfStmt:
		if stmt.Test == nil {
			return n.missing(stmt, "IfStatement", "test")
		}
		if stmt.Then == nil {
			return n.missing(stmt, "IfStatement", "consequent")
		}
		if err := n.expr(stmt.Test); err != nil {
			return err
		}
		if err := n.stmt(stmt.Then); err != nil {
			return err
		}
		if stmt.Else != nil {
			return n.stmt(stmt.Else)
		}
		return nil

	case *ast.WhileStmt:
		if stmt.Test == nil {
			return n.missing(stmt, "WhileStatement", "test")
		}
		if stmt.Body == nil {
			return n.missing(stmt, "WhileStatement", "body")
		}
		if err := n.expr(stmt.Test); err != nil {
			return err
		}
		return n.stmt(stmt.Body)

	case *ast.DoWhileStmt:
		if stmt.Test == nil {
			return n.missing(stmt, "DoWhileStatement", "test")
		}
		if stmt.Body == nil {
			return n.missing(stmt, "DoWhileStatement", "body")
		}
		if err := n.stmt(stmt.Body); err != nil {
			return err
		}
		return n.expr(stmt.Test)

	case *ast.ForStmt:
		// All three clauses are optional; absence stays explicit as nil.
		if stmt.Body == nil {
			return n.missing(stmt, "ForStatement", "body")
		}
		if stmt.Init != nil {
			if err := n.forInit(stmt.Init); err != nil {
				return err
			}
		}
		if stmt.Test != nil {
			if err := n.expr(stmt.Test); err != nil {
				return err
			}
		}
		if stmt.Post != nil {
			if err := n.expr(stmt.Post); err != nil {
				return err
			}
		}
		return n.stmt(stmt.Body)

	case *ast.ForInStmt:
		return n.forEach(stmt, "ForInStatement", stmt.Left, stmt.Right, stmt.Body)

	case *ast.ForOfStmt:
		return n.forEach(stmt, "ForOfStatement", stmt.Left, stmt.Right, stmt.Body)

	case *ast.SwitchStmt:
		if stmt.Disc == nil {
			return n.missing(stmt, "SwitchStatement", "discriminant")
		}
		if err := n.expr(stmt.Disc); err != nil {
			return err
		}
		for _, clause := range stmt.Cases {
			if clause.Test != nil {
				if err := n.expr(clause.Test); err != nil {
					return err
				}
			}
			for _, inner := range clause.Body {
				if err := n.stmt(inner); err != nil {
					return err
				}
			}
		}
		return nil

	case *ast.ReturnStmt:
		if stmt.Arg != nil {
			return n.expr(stmt.Arg)
		}
		return nil

	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil

	case *ast.ThrowStmt:
		if stmt.Arg == nil {
			return n.missing(stmt, "ThrowStatement", "argument")
		}
		return n.expr(stmt.Arg)

	case *ast.TryStmt:
		if stmt.Body == nil {
			return n.missing(stmt, "TryStatement", "block")
		}
		if err := n.stmt(stmt.Body); err != nil {
			return err
		}
		if stmt.Catch != nil {
			if stmt.Catch.Body == nil {
				return n.missing(stmt.Catch, "CatchClause", "body")
			}
			if err := n.stmt(stmt.Catch.Body); err != nil {
				return err
			}
		}
		if stmt.Finally != nil {
			return n.stmt(stmt.Finally)
		}
		return nil

	case *ast.ExprStmt:
		if stmt.X == nil {
			return n.missing(stmt, "ExpressionStatement", "expression")
		}
		return n.expr(stmt.X)

	default:
		// Unrecognized statement kinds are the lowerer's concern; the
		// normalizer passes them through untouched.
		return nil
	}
}

func (n *normalizer) forInit(node ast.Node) error {
	switch init := node.(type) {
	case *ast.VarDecl:
		return n.varDecl(init)
	case ast.Expr:
		return n.expr(init)
	default:
		return n.missing(node, "ForStatement", "init")
	}
}

func (n *normalizer) forEach(node ast.Node, kind string, left ast.Node, right ast.Expr, body ast.Stmt) error {
	if left == nil {
		return n.missing(node, kind, "left")
	}
	if right == nil {
		return n.missing(node, kind, "right")
	}
	if body == nil {
		return n.missing(node, kind, "body")
	}
	if err := n.forInit(left); err != nil {
		return err
	}
	if err := n.expr(right); err != nil {
		return err
	}
	return n.stmt(body)
}

func (n *normalizer) varDecl(decl *ast.VarDecl) error {
	// Normalize the declaration-kind tag: trim and lower-case, default
	// to "var" when omitted.
	kind := strings.ToLower(strings.TrimSpace(decl.Kind))
	if kind == "" {
		kind = "var"
	}
	switch kind {
	case "var", "let", "const":
	default:
		return &StructuralError{Kind: "VariableDeclaration", Field: "kind", Span: decl.Span()}
	}
	decl.Kind = kind

	if len(decl.Decls) == 0 {
		return n.missing(decl, "VariableDeclaration", "declarations")
	}
	for _, d := range decl.Decls {
		if d.Target == nil {
			return n.missing(d, "VariableDeclarator", "id")
		}
		// Each declarator becomes self-describing.
		d.Kind = kind
		if err := n.expr(d.Target); err != nil {
			return err
		}
		if d.Init != nil {
			if err := n.expr(d.Init); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *normalizer) exprList(list []ast.Expr) error {
	for _, e := range list {
		if e == nil {
			continue // array holes stay explicit
		}
		if err := n.expr(e); err != nil {
			return err
		}
	}
	return nil
}

func (n *normalizer) expr(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.Ident:
		if x.Name == "" {
			return n.missing(x, "Identifier", "name")
		}
		return nil

	case *ast.Literal:
		switch x.Type {
		case "number", "string", "boolean", "null":
			return nil
		case "":
			return n.missing(x, "Literal", "type")
		default:
			return &StructuralError{Kind: "Literal", Field: "type", Span: x.Span()}
		}

	case *ast.BinaryExpr:
		return n.binaryLike(x, "BinaryExpression", x.Op, x.Left, x.Right)

	case *ast.LogicalExpr:
		return n.binaryLike(x, "LogicalExpression", x.Op, x.Left, x.Right)

	case *ast.AssignExpr:
		if x.Op == "" {
			x.Op = "="
		}
		if x.Target == nil {
			return n.missing(x, "AssignmentExpression", "left")
		}
		if x.Value == nil {
			return n.missing(x, "AssignmentExpression", "right")
		}
		if err := n.expr(x.Target); err != nil {
			return err
		}
		return n.expr(x.Value)

	case *ast.UpdateExpr:
		if x.Op == "" {
			return n.missing(x, "UpdateExpression", "operator")
		}
		if x.Arg == nil {
			return n.missing(x, "UpdateExpression", "argument")
		}
		return n.expr(x.Arg)

	case *ast.UnaryExpr:
		if x.Op == "" {
			return n.missing(x, "UnaryExpression", "operator")
		}
		if x.Arg == nil {
			return n.missing(x, "UnaryExpression", "argument")
		}
		return n.expr(x.Arg)

	case *ast.CondExpr:
		if x.Test == nil {
			return n.missing(x, "ConditionalExpression", "test")
		}
		if x.Then == nil {
			return n.missing(x, "ConditionalExpression", "consequent")
		}
		if x.Else == nil {
			return n.missing(x, "ConditionalExpression", "alternate")
		}
		if err := n.expr(x.Test); err != nil {
			return err
		}
		if err := n.expr(x.Then); err != nil {
			return err
		}
		return n.expr(x.Else)

	case *ast.CallExpr:
		if x.Callee == nil {
			return n.missing(x, "CallExpression", "callee")
		}
		if err := n.expr(x.Callee); err != nil {
			return err
		}
		return n.exprList(x.Args)

	case *ast.NewExpr:
		if x.Callee == nil {
			return n.missing(x, "NewExpression", "callee")
		}
		if err := n.expr(x.Callee); err != nil {
			return err
		}
		return n.exprList(x.Args)

	case *ast.MemberExpr:
		if x.Object == nil {
			return n.missing(x, "MemberExpression", "object")
		}
		if x.Property == nil {
			return n.missing(x, "MemberExpression", "property")
		}
		if err := n.expr(x.Object); err != nil {
			return err
		}
		return n.expr(x.Property)

	case *ast.ArrayLit:
		return n.exprList(x.Elems)

	case *ast.ObjectLit:
		return n.props(x.Props)

	case *ast.AwaitExpr:
		if x.Arg == nil {
			return n.missing(x, "AwaitExpression", "argument")
		}
		return n.expr(x.Arg)

	case *ast.FuncExpr:
		if x.Body == nil {
			return n.missing(x, "FunctionExpression", "body")
		}
		if err := n.exprList(x.Params); err != nil {
			return err
		}
		return n.stmt(x.Body)

	case *ast.ArrayPattern:
		return n.exprList(x.Elems)

	case *ast.ObjectPattern:
		return n.props(x.Props)

	case *ast.RestElement:
		if x.Arg == nil {
			return n.missing(x, "RestElement", "argument")
		}
		return n.expr(x.Arg)

	case *ast.AssignPattern:
		if x.Target == nil {
			return n.missing(x, "AssignmentPattern", "left")
		}
		if x.Default == nil {
			return n.missing(x, "AssignmentPattern", "right")
		}
		if err := n.expr(x.Target); err != nil {
			return err
		}
		return n.expr(x.Default)

	default:
		// Unrecognized expression kinds pass through; the lowerer
		// reports them explicitly.
		return nil
	}
}

func (n *normalizer) binaryLike(node ast.Node, kind, op string, left, right ast.Expr) error {
	if op == "" {
		return n.missing(node, kind, "operator")
	}
	if left == nil {
		return n.missing(node, kind, "left")
	}
	if right == nil {
		return n.missing(node, kind, "right")
	}
	if err := n.expr(left); err != nil {
		return err
	}
	return n.expr(right)
}

func (n *normalizer) props(props []*ast.Property) error {
	for _, prop := range props {
		if prop.Value == nil {
			return n.missing(prop, "Property", "value")
		}
		if prop.Key == nil {
			// Only a rest property may omit its key.
			if _, ok := prop.Value.(*ast.RestElement); !ok {
				return n.missing(prop, "Property", "key")
			}
		} else if err := n.expr(prop.Key); err != nil {
			return err
		}
		if err := n.expr(prop.Value); err != nil {
			return err
		}
	}
	return nil
}
