package lower

import (
	"fmt"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/ir"
)

func (l *lowerer) stmt(s ast.Stmt) (ir.NodeID, error) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		return l.block(stmt)

	case *ast.VarDecl:
		return l.varDecl(stmt)

	case *ast.FuncDecl:
		return l.function(ir.KindFunctionDecl, stmt.Async, stmt.Name, stmt.Params, stmt.Body, stmt)

	case *ast.IfStmt:
		n := l.newNode(ir.KindIf, stmt.Loc)
		var err error
		if n.Test, err = l.expr(stmt.Test); err != nil {
			return "", err
		}
		if n.Then, err = l.stmt(stmt.Then); err != nil {
			return "", err
		}
		if stmt.Else != nil {
			if n.Else, err = l.stmt(stmt.Else); err != nil {
				return "", err
			}
		}
		return n.ID, nil

	case *ast.WhileStmt:
		n := l.newNode(ir.KindWhile, stmt.Loc)
		var err error
		if n.Test, err = l.expr(stmt.Test); err != nil {
			return "", err
		}
		if n.Body, err = l.loopBody(stmt.Body); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.DoWhileStmt:
		n := l.newNode(ir.KindDoWhile, stmt.Loc)
		var err error
		if n.Body, err = l.loopBody(stmt.Body); err != nil {
			return "", err
		}
		if n.Test, err = l.expr(stmt.Test); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.ForStmt:
		n := l.newNode(ir.KindFor, stmt.Loc)
		var err error
		if stmt.Init != nil {
			if n.Init, err = l.forInit(stmt.Init); err != nil {
				return "", err
			}
		}
		if stmt.Test != nil {
			if n.Test, err = l.expr(stmt.Test); err != nil {
				return "", err
			}
		}
		if stmt.Post != nil {
			if n.Update, err = l.expr(stmt.Post); err != nil {
				return "", err
			}
		}
		if n.Body, err = l.loopBody(stmt.Body); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.ForInStmt:
		return l.forEach(ir.KindForIn, stmt.Left, stmt.Right, stmt.Body, stmt)

	case *ast.ForOfStmt:
		return l.forEach(ir.KindForOf, stmt.Left, stmt.Right, stmt.Body, stmt)

	case *ast.SwitchStmt:
		n := l.newNode(ir.KindSwitch, stmt.Loc)
		var err error
		if n.Test, err = l.expr(stmt.Disc); err != nil {
			return "", err
		}
		for _, clause := range stmt.Cases {
			c := l.newNode(ir.KindSwitchCase, clause.Loc)
			if clause.Test != nil {
				if c.Test, err = l.expr(clause.Test); err != nil {
					return "", err
				}
			}
			l.breakDepth++
			for _, inner := range clause.Body {
				id, err := l.stmt(inner)
				if err != nil {
					l.breakDepth--
					return "", err
				}
				c.Stmts = append(c.Stmts, id)
			}
			l.breakDepth--
			n.Cases = append(n.Cases, c.ID)
		}
		return n.ID, nil

	case *ast.ReturnStmt:
		n := l.newNode(ir.KindReturn, stmt.Loc)
		if stmt.Arg != nil {
			var err error
			if n.Arg, err = l.expr(stmt.Arg); err != nil {
				return "", err
			}
		}
		return n.ID, nil

	case *ast.BreakStmt:
		if l.tryDepth > 0 && l.breakDepth == 0 {
			return "", l.unsupported("break statement crossing a try boundary", stmt.Loc)
		}
		return l.newNode(ir.KindBreak, stmt.Loc).ID, nil

	case *ast.ContinueStmt:
		if l.tryDepth > 0 && l.loopDepth == 0 {
			return "", l.unsupported("continue statement crossing a try boundary", stmt.Loc)
		}
		return l.newNode(ir.KindContinue, stmt.Loc).ID, nil

	case *ast.ThrowStmt:
		n := l.newNode(ir.KindThrow, stmt.Loc)
		var err error
		if n.Arg, err = l.expr(stmt.Arg); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.TryStmt:
		if stmt.Finally != nil {
			return "", l.unsupported("try statement finalizer", stmt.Loc)
		}
		if stmt.Catch == nil {
			return "", l.unsupported("try statement without catch clause", stmt.Loc)
		}
		n := l.newNode(ir.KindTry, stmt.Loc)
		var err error
		n.Body, err = l.tryBody(stmt.Body)
		if err != nil {
			return "", err
		}
		c := l.newNode(ir.KindCatch, stmt.Catch.Loc)
		if stmt.Catch.Param != nil {
			param := l.newNode(ir.KindIdentifier, stmt.Catch.Param.Loc)
			param.Name = stmt.Catch.Param.Name
			c.Param = param.ID
		}
		if c.Body, err = l.stmt(stmt.Catch.Body); err != nil {
			return "", err
		}
		n.Handler = c.ID
		return n.ID, nil

	case *ast.ExprStmt:
		n := l.newNode(ir.KindExprStmt, stmt.Loc)
		var err error
		if n.Arg, err = l.expr(stmt.X); err != nil {
			return "", err
		}
		return n.ID, nil

	default:
		return "", l.unsupported(fmt.Sprintf("statement kind %T", s), s.Span())
	}
}

func (l *lowerer) loopBody(s ast.Stmt) (ir.NodeID, error) {
	l.loopDepth++
	l.breakDepth++
	id, err := l.stmt(s)
	l.loopDepth--
	l.breakDepth--
	return id, err
}

// tryBody lowers a try body with the loop counters zeroed: the body
// compiles to a protected closure, and Lua rejects a break or goto that
// crosses a function boundary.
func (l *lowerer) tryBody(s ast.Stmt) (ir.NodeID, error) {
	savedLoop, savedBreak := l.loopDepth, l.breakDepth
	l.loopDepth, l.breakDepth = 0, 0
	l.tryDepth++
	id, err := l.stmt(s)
	l.tryDepth--
	l.loopDepth, l.breakDepth = savedLoop, savedBreak
	return id, err
}

func (l *lowerer) block(b *ast.BlockStmt) (ir.NodeID, error) {
	n := l.newNode(ir.KindBlock, b.Loc)
	for _, inner := range b.List {
		id, err := l.stmt(inner)
		if err != nil {
			return "", err
		}
		n.Stmts = append(n.Stmts, id)
	}
	return n.ID, nil
}

func (l *lowerer) varDecl(decl *ast.VarDecl) (ir.NodeID, error) {
	n := l.newNode(ir.KindVarDecl, decl.Loc)
	n.DeclKind = decl.Kind
	for _, d := range decl.Decls {
		dn := l.newNode(ir.KindVarDeclarator, d.Loc)
		dn.DeclKind = d.Kind
		var err error
		if dn.Target, err = l.binding(d.Target, d.Kind); err != nil {
			return "", err
		}
		if d.Init != nil {
			if dn.Init, err = l.expr(d.Init); err != nil {
				return "", err
			}
		}
		n.Decls = append(n.Decls, dn.ID)
	}
	return n.ID, nil
}

func (l *lowerer) forInit(node ast.Node) (ir.NodeID, error) {
	switch init := node.(type) {
	case *ast.VarDecl:
		return l.varDecl(init)
	case ast.Expr:
		return l.expr(init)
	default:
		return "", l.unsupported(fmt.Sprintf("for clause %T", node), node.Span())
	}
}

func (l *lowerer) forEach(kind ir.Kind, left ast.Node, right ast.Expr, body ast.Stmt, stmt ast.Stmt) (ir.NodeID, error) {
	n := l.newNode(kind, stmt.Span())
	var err error
	if n.Left, err = l.forInit(left); err != nil {
		return "", err
	}
	if n.Right, err = l.expr(right); err != nil {
		return "", err
	}
	if n.Body, err = l.loopBody(body); err != nil {
		return "", err
	}
	return n.ID, nil
}

// function lowers a declaration or expression form. The async flag marks
// the body as a suspension-capable unit; scheduling itself belongs to the
// target runtime.
func (l *lowerer) function(kind ir.Kind, async bool, name *ast.Ident, params []ast.Expr, body *ast.BlockStmt, loc ast.Node) (ir.NodeID, error) {
	n := l.newNode(kind, loc.Span())
	n.Async = async
	if name != nil {
		n.Name = name.Name
		if kind == ir.KindFunctionDecl {
			if err := l.register(name.Name, "function", name.Loc); err != nil {
				return "", err
			}
		}
	}

	l.pushScope()
	defer l.popScope()
	if async {
		l.asyncDepth++
		defer func() { l.asyncDepth-- }()
	}

	// Loop control never crosses a function boundary.
	savedLoop, savedBreak, savedTry := l.loopDepth, l.breakDepth, l.tryDepth
	l.loopDepth, l.breakDepth, l.tryDepth = 0, 0, 0
	defer func() { l.loopDepth, l.breakDepth, l.tryDepth = savedLoop, savedBreak, savedTry }()

	for _, param := range params {
		ident, ok := param.(*ast.Ident)
		if !ok {
			// Parameter-position destructuring is a documented gap.
			return "", l.unsupported("destructuring pattern in parameter position", param.Span())
		}
		pn := l.newNode(ir.KindIdentifier, ident.Loc)
		pn.Name = ident.Name
		if err := l.register(ident.Name, "param", ident.Loc); err != nil {
			return "", err
		}
		n.Params = append(n.Params, pn.ID)
	}

	bodyID, err := l.block(body)
	if err != nil {
		return "", err
	}
	n.Body = bodyID

	if l.opts.BuildCFG {
		l.buildCFG(n)
	}
	return n.ID, nil
}
