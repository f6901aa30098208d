package lower

import (
	"fmt"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/lexer"
)

func (l *lowerer) expr(e ast.Expr) (ir.NodeID, error) {
	switch x := e.(type) {
	case *ast.Ident:
		n := l.newNode(ir.KindIdentifier, x.Loc)
		n.Name = x.Name
		return n.ID, nil

	case *ast.Literal:
		n := l.newNode(ir.KindLiteral, x.Loc)
		n.Lit = &ir.Literal{Type: x.Type, Num: x.Num, Str: x.Str, Bool: x.Bool, Raw: x.Raw}
		return n.ID, nil

	case *ast.BinaryExpr:
		if !ir.BinaryOps[x.Op] {
			return "", l.unsupported(fmt.Sprintf("binary operator %q", x.Op), x.Loc)
		}
		return l.binaryLike(ir.KindBinary, x.Op, x.Left, x.Right, x.Loc)

	case *ast.LogicalExpr:
		if !ir.LogicalOps[x.Op] {
			return "", l.unsupported(fmt.Sprintf("logical operator %q", x.Op), x.Loc)
		}
		return l.binaryLike(ir.KindLogical, x.Op, x.Left, x.Right, x.Loc)

	case *ast.AssignExpr:
		if !ir.AssignOps[x.Op] {
			return "", l.unsupported(fmt.Sprintf("assignment operator %q", x.Op), x.Loc)
		}
		switch x.Target.(type) {
		case *ast.Ident, *ast.MemberExpr:
		case *ast.ArrayLit, *ast.ObjectLit, *ast.ArrayPattern, *ast.ObjectPattern:
			return "", l.unsupported("destructuring in assignment position", x.Loc)
		default:
			return "", l.unsupported(fmt.Sprintf("assignment target %T", x.Target), x.Loc)
		}
		return l.binaryLike(ir.KindAssign, x.Op, x.Target, x.Value, x.Loc)

	case *ast.UpdateExpr:
		if !ir.UpdateOps[x.Op] {
			return "", l.unsupported(fmt.Sprintf("update operator %q", x.Op), x.Loc)
		}
		n := l.newNode(ir.KindUpdate, x.Loc)
		n.Op = x.Op
		n.Prefix = x.Prefix
		var err error
		if n.Arg, err = l.expr(x.Arg); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.UnaryExpr:
		if !ir.UnaryOps[x.Op] {
			return "", l.unsupported(fmt.Sprintf("unary operator %q", x.Op), x.Loc)
		}
		n := l.newNode(ir.KindUnary, x.Loc)
		n.Op = x.Op
		var err error
		if n.Arg, err = l.expr(x.Arg); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.CondExpr:
		n := l.newNode(ir.KindConditional, x.Loc)
		var err error
		if n.Test, err = l.expr(x.Test); err != nil {
			return "", err
		}
		if n.Then, err = l.expr(x.Then); err != nil {
			return "", err
		}
		if n.Else, err = l.expr(x.Else); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.CallExpr:
		return l.callLike(ir.KindCall, x.Callee, x.Args, x.Loc)

	case *ast.NewExpr:
		return l.callLike(ir.KindNew, x.Callee, x.Args, x.Loc)

	case *ast.MemberExpr:
		n := l.newNode(ir.KindMember, x.Loc)
		n.Computed = x.Computed
		var err error
		if n.Object, err = l.expr(x.Object); err != nil {
			return "", err
		}
		if n.Property, err = l.expr(x.Property); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.ArrayLit:
		n := l.newNode(ir.KindArrayLit, x.Loc)
		for _, elem := range x.Elems {
			if elem == nil {
				// Literal elision stays an explicit empty slot.
				n.Elems = append(n.Elems, ir.NilID)
				continue
			}
			id, err := l.expr(elem)
			if err != nil {
				return "", err
			}
			n.Elems = append(n.Elems, id)
		}
		return n.ID, nil

	case *ast.ObjectLit:
		n := l.newNode(ir.KindObjectLit, x.Loc)
		for _, prop := range x.Props {
			id, err := l.property(prop, "")
			if err != nil {
				return "", err
			}
			n.Props = append(n.Props, id)
		}
		return n.ID, nil

	case *ast.AwaitExpr:
		if l.asyncDepth == 0 {
			return "", l.unsupported("await outside an async function", x.Loc)
		}
		// Suspension point: the emitter encodes the yield/resume shape;
		// scheduling belongs to the external runtime.
		n := l.newNode(ir.KindAwait, x.Loc)
		var err error
		if n.Arg, err = l.expr(x.Arg); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.FuncExpr:
		return l.function(ir.KindFunctionExpr, x.Async, x.Name, x.Params, x.Body, x)

	case *ast.ArrayPattern, *ast.ObjectPattern, *ast.RestElement, *ast.AssignPattern:
		return "", l.unsupported(fmt.Sprintf("pattern %T outside a binding position", e), e.Span())

	default:
		return "", l.unsupported(fmt.Sprintf("expression kind %T", e), e.Span())
	}
}

func (l *lowerer) binaryLike(kind ir.Kind, op string, left, right ast.Expr, loc lexer.Span) (ir.NodeID, error) {
	n := l.newNode(kind, loc)
	n.Op = op
	var err error
	if n.Left, err = l.expr(left); err != nil {
		return "", err
	}
	if n.Right, err = l.expr(right); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (l *lowerer) callLike(kind ir.Kind, callee ast.Expr, args []ast.Expr, loc lexer.Span) (ir.NodeID, error) {
	n := l.newNode(kind, loc)
	var err error
	if n.Callee, err = l.expr(callee); err != nil {
		return "", err
	}
	for _, arg := range args {
		id, err := l.expr(arg)
		if err != nil {
			return "", err
		}
		n.Args = append(n.Args, id)
	}
	return n.ID, nil
}
