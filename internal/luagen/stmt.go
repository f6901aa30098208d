package luagen

import (
	"strings"

	"github.com/moonsmith/moonsmith/internal/ir"
)

func (e *emitter) stmt(id ir.NodeID) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}

	switch n.Kind {
	case ir.KindVarDecl:
		return e.varDecl(n)

	case ir.KindFunctionDecl:
		return e.functionDecl(n)

	case ir.KindExprStmt:
		return e.exprStmt(n)

	case ir.KindBlock:
		e.linef("do")
		e.indent++
		err := e.stmts(n.Stmts)
		e.indent--
		if err != nil {
			return err
		}
		e.linef("end")
		return nil

	case ir.KindIf:
		return e.ifChain(n)

	case ir.KindWhile:
		return e.whileLoop(n)

	case ir.KindDoWhile:
		return e.repeatLoop(n)

	case ir.KindFor:
		return e.forLoop(n)

	case ir.KindForIn, ir.KindForOf:
		return e.forEach(n)

	case ir.KindSwitch:
		return e.switchStmt(n)

	case ir.KindReturn:
		if n.Arg == ir.NilID {
			e.linef("return")
			return nil
		}
		arg, _, err := e.expr(n.Arg)
		if err != nil {
			return err
		}
		e.linef("return %s", arg)
		return nil

	case ir.KindBreak:
		e.linef("break")
		return nil

	case ir.KindContinue:
		e.linef("goto __continue")
		return nil

	case ir.KindThrow:
		arg, _, err := e.expr(n.Arg)
		if err != nil {
			return err
		}
		e.linef("error(%s)", arg)
		return nil

	case ir.KindTry:
		return e.tryStmt(n)

	default:
		return e.fail(n, "not a statement kind")
	}
}

func (e *emitter) stmts(ids []ir.NodeID) error {
	for _, sid := range ids {
		if err := e.stmt(sid); err != nil {
			return err
		}
	}
	return nil
}

// body flattens a block statement into the current level; a non-block
// body emits as the single statement it is.
func (e *emitter) body(id ir.NodeID) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if n.Kind == ir.KindBlock {
		return e.stmts(n.Stmts)
	}
	return e.stmt(id)
}

func (e *emitter) exprStmt(n *ir.Node) error {
	arg, err := e.node(n.Arg)
	if err != nil {
		return err
	}
	switch arg.Kind {
	case ir.KindAssign:
		return e.assign(arg)
	case ir.KindUpdate:
		return e.update(arg)
	case ir.KindCall, ir.KindNew:
		s, err := e.call(arg)
		if err != nil {
			return err
		}
		e.linef("%s", s)
		return nil
	default:
		// Only calls stand alone as statements in the target; anything
		// else is evaluated into a throwaway local.
		s, _, err := e.expr(n.Arg)
		if err != nil {
			return err
		}
		e.linef("local _ = %s", s)
		return nil
	}
}

// assign emits an assignment. Compound forms expand to the plain binary
// operator; the target has no compound assignment.
func (e *emitter) assign(n *ir.Node) error {
	target, _, err := e.expr(n.Left)
	if err != nil {
		return err
	}
	if n.Op == "=" {
		value, _, err := e.expr(n.Right)
		if err != nil {
			return err
		}
		e.linef("%s = %s", target, value)
		return nil
	}
	op, ok := binaryOp[strings.TrimSuffix(n.Op, "=")]
	if !ok {
		return e.fail(n, "unknown operator %q", n.Op)
	}
	value, err := e.exprAsChild(n.Right, op, false)
	if err != nil {
		return err
	}
	e.linef("%s = %s %s %s", target, target, op.text, value)
	return nil
}

func (e *emitter) update(n *ir.Node) error {
	target, _, err := e.expr(n.Arg)
	if err != nil {
		return err
	}
	switch n.Op {
	case "++":
		e.linef("%s = %s + 1", target, target)
	case "--":
		e.linef("%s = %s - 1", target, target)
	default:
		return e.fail(n, "unknown operator %q", n.Op)
	}
	return nil
}

func (e *emitter) ifChain(n *ir.Node) error {
	test, _, err := e.expr(n.Test)
	if err != nil {
		return err
	}
	e.linef("if %s then", test)
	for {
		e.indent++
		err = e.body(n.Then)
		e.indent--
		if err != nil {
			return err
		}
		if n.Else == ir.NilID {
			break
		}
		alt, err := e.node(n.Else)
		if err != nil {
			return err
		}
		if alt.Kind != ir.KindIf {
			e.linef("else")
			e.indent++
			err = e.body(n.Else)
			e.indent--
			if err != nil {
				return err
			}
			break
		}
		test, _, err := e.expr(alt.Test)
		if err != nil {
			return err
		}
		e.linef("elseif %s then", test)
		n = alt
	}
	e.linef("end")
	return nil
}

// loopBody emits a loop body, appending the continue landing label when
// the body actually jumps to it.
func (e *emitter) loopBody(id ir.NodeID) error {
	if err := e.body(id); err != nil {
		return err
	}
	if e.hasContinue(id) {
		e.linef("::__continue::")
	}
	return nil
}

func (e *emitter) whileLoop(n *ir.Node) error {
	test, _, err := e.expr(n.Test)
	if err != nil {
		return err
	}
	e.linef("while %s do", test)
	e.indent++
	err = e.loopBody(n.Body)
	e.indent--
	if err != nil {
		return err
	}
	e.linef("end")
	return nil
}

func (e *emitter) repeatLoop(n *ir.Node) error {
	e.linef("repeat")
	e.indent++
	err := e.loopBody(n.Body)
	e.indent--
	if err != nil {
		return err
	}
	test, p, err := e.expr(n.Test)
	if err != nil {
		return err
	}
	if p < precUnary {
		test = "(" + test + ")"
	}
	e.linef("until not %s", test)
	return nil
}

// forLoop rewrites the three-clause form as a while. The init clause gets
// its own enclosing block so its locals stay scoped to the loop; a
// continue lands on the label ahead of the update.
func (e *emitter) forLoop(n *ir.Node) error {
	scoped := n.Init != ir.NilID
	if scoped {
		e.linef("do")
		e.indent++
		if err := e.forClause(n.Init); err != nil {
			return err
		}
	}

	test := "true"
	if n.Test != ir.NilID {
		var err error
		if test, _, err = e.expr(n.Test); err != nil {
			return err
		}
	}
	e.linef("while %s do", test)
	e.indent++

	if n.Update != ir.NilID && e.hasContinue(n.Body) {
		// The label must close a block, so the body gets one of its own.
		e.linef("do")
		e.indent++
		if err := e.body(n.Body); err != nil {
			return err
		}
		e.linef("::__continue::")
		e.indent--
		e.linef("end")
	} else if err := e.loopBody(n.Body); err != nil {
		return err
	}
	if n.Update != ir.NilID {
		if err := e.forClause(n.Update); err != nil {
			return err
		}
	}

	e.indent--
	e.linef("end")
	if scoped {
		e.indent--
		e.linef("end")
	}
	return nil
}

// forClause emits an init or update clause in statement position.
func (e *emitter) forClause(id ir.NodeID) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	switch n.Kind {
	case ir.KindVarDecl:
		return e.varDecl(n)
	case ir.KindAssign:
		return e.assign(n)
	case ir.KindUpdate:
		return e.update(n)
	case ir.KindCall, ir.KindNew:
		s, err := e.call(n)
		if err != nil {
			return err
		}
		e.linef("%s", s)
		return nil
	default:
		s, _, err := e.expr(id)
		if err != nil {
			return err
		}
		e.linef("local _ = %s", s)
		return nil
	}
}

// forEach renders key iteration over pairs and value iteration over
// ipairs. The head must bind a single name.
func (e *emitter) forEach(n *ir.Node) error {
	name, declared, err := e.forEachName(n)
	if err != nil {
		return err
	}
	right, err := e.prefixedIter(n.Right)
	if err != nil {
		return err
	}

	loopVar := name
	if !declared {
		// Assigning an existing variable: iterate a fresh name, copy in.
		loopVar = "__it"
	}
	if n.Kind == ir.KindForIn {
		e.linef("for %s in pairs(%s) do", loopVar, right)
	} else {
		e.linef("for _, %s in ipairs(%s) do", loopVar, right)
	}
	e.indent++
	if !declared {
		e.linef("%s = %s", name, loopVar)
	}
	err = e.loopBody(n.Body)
	e.indent--
	if err != nil {
		return err
	}
	e.linef("end")
	return nil
}

// forEachName resolves the iteration head to one identifier. declared
// reports whether the head introduces the binding itself.
func (e *emitter) forEachName(n *ir.Node) (string, bool, error) {
	left, err := e.node(n.Left)
	if err != nil {
		return "", false, err
	}
	switch left.Kind {
	case ir.KindIdentifier:
		return left.Name, false, nil
	case ir.KindVarDecl:
		if len(left.Decls) != 1 {
			return "", false, e.fail(left, "iteration head declares %d names, want 1", len(left.Decls))
		}
		d, err := e.node(left.Decls[0])
		if err != nil {
			return "", false, err
		}
		target, err := e.node(d.Target)
		if err != nil {
			return "", false, err
		}
		if target.Kind != ir.KindIdentifier {
			return "", false, e.fail(target, "pattern in iteration head")
		}
		return target.Name, true, nil
	default:
		return "", false, e.fail(left, "unsupported iteration head")
	}
}

// prefixedIter renders the iterated expression for a pairs/ipairs call
// argument; no grouping needed, any expression is a valid argument.
func (e *emitter) prefixedIter(id ir.NodeID) (string, error) {
	s, _, err := e.expr(id)
	return s, err
}

// switchStmt compiles dispatch in two phases inside a repeat/until true
// block, so a break leaves the construct. Phase one selects the first
// matching case index (or the default's); phase two runs every case from
// the selected one onward, preserving fall-through.
func (e *emitter) switchStmt(n *ir.Node) error {
	disc, _, err := e.expr(n.Test)
	if err != nil {
		return err
	}
	e.linef("repeat")
	e.indent++
	e.linef("local __s = %s", disc)
	e.linef("local __t")

	defaultIdx := -1
	first := true
	for i, cid := range n.Cases {
		c, err := e.node(cid)
		if err != nil {
			return err
		}
		if c.Test == ir.NilID {
			defaultIdx = i
			continue
		}
		test, _, err := e.expr(c.Test)
		if err != nil {
			return err
		}
		if first {
			e.linef("if __s == %s then", test)
			first = false
		} else {
			e.linef("elseif __s == %s then", test)
		}
		e.indent++
		e.linef("__t = %d", i+1)
		e.indent--
	}
	switch {
	case first && defaultIdx >= 0:
		e.linef("__t = %d", defaultIdx+1)
	case defaultIdx >= 0:
		e.linef("else")
		e.indent++
		e.linef("__t = %d", defaultIdx+1)
		e.indent--
		e.linef("end")
	case !first:
		e.linef("end")
	}

	for i, cid := range n.Cases {
		c, err := e.node(cid)
		if err != nil {
			return err
		}
		e.linef("if __t ~= nil and __t <= %d then", i+1)
		e.indent++
		err = e.stmts(c.Stmts)
		e.indent--
		if err != nil {
			return err
		}
		e.linef("end")
	}

	e.indent--
	e.linef("until true")
	return nil
}

// tryStmt runs the protected body inside pcall; the handler sees the
// raised value. A return inside the protected body leaves only the
// closure, which is the documented shape of this construct.
func (e *emitter) tryStmt(n *ir.Node) error {
	e.linef("local __ok, __err = pcall(function()")
	e.indent++
	if err := e.body(n.Body); err != nil {
		return err
	}
	e.indent--
	e.linef("end)")

	handler, err := e.node(n.Handler)
	if err != nil {
		return err
	}
	e.linef("if not __ok then")
	e.indent++
	if handler.Param != ir.NilID {
		param, err := e.node(handler.Param)
		if err != nil {
			return err
		}
		e.linef("local %s = __err", param.Name)
	}
	err = e.body(handler.Body)
	e.indent--
	if err != nil {
		return err
	}
	e.linef("end")
	return nil
}

// hasContinue reports whether the statement subtree jumps to the
// enclosing loop's continue label. Nested loops and function bodies bind
// their own continues and stop the walk.
func (e *emitter) hasContinue(id ir.NodeID) bool {
	if id == ir.NilID {
		return false
	}
	n := e.doc.Node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case ir.KindContinue:
		return true
	case ir.KindWhile, ir.KindDoWhile, ir.KindFor, ir.KindForIn, ir.KindForOf,
		ir.KindFunctionDecl, ir.KindFunctionExpr:
		return false
	case ir.KindBlock, ir.KindProgram:
		for _, sid := range n.Stmts {
			if e.hasContinue(sid) {
				return true
			}
		}
	case ir.KindIf:
		return e.hasContinue(n.Then) || e.hasContinue(n.Else)
	case ir.KindSwitch:
		for _, cid := range n.Cases {
			c := e.doc.Node(cid)
			if c == nil {
				continue
			}
			for _, sid := range c.Stmts {
				if e.hasContinue(sid) {
					return true
				}
			}
		}
	case ir.KindTry:
		if e.hasContinue(n.Body) {
			return true
		}
		if h := e.doc.Node(n.Handler); h != nil {
			return e.hasContinue(h.Body)
		}
	}
	return false
}
