package luagen

import (
	"fmt"
	"strings"

	"github.com/moonsmith/moonsmith/internal/ir"
)

func (e *emitter) functionDecl(n *ir.Node) error {
	params, err := e.paramList(n)
	if err != nil {
		return err
	}
	e.linef("local function %s(%s)", n.Name, params)
	e.indent++
	err = e.functionBody(n)
	e.indent--
	if err != nil {
		return err
	}
	e.linef("end")
	return nil
}

func (e *emitter) functionExpr(n *ir.Node) (string, error) {
	params, err := e.paramList(n)
	if err != nil {
		return "", err
	}
	sub := &emitter{doc: e.doc, indent: e.indent + 1}
	if err := sub.functionBody(n); err != nil {
		return "", err
	}
	return "function(" + params + ")\n" + sub.buf.String() + e.pad() + "end", nil
}

func (e *emitter) paramList(n *ir.Node) (string, error) {
	params := make([]string, 0, len(n.Params))
	for _, pid := range n.Params {
		p, err := e.node(pid)
		if err != nil {
			return "", err
		}
		if p.Kind != ir.KindIdentifier {
			return "", e.fail(p, "pattern in parameter position")
		}
		params = append(params, p.Name)
	}
	return strings.Join(params, ", "), nil
}

// functionBody emits the statements of a function at the current level.
// An async body runs inside a coroutine task: the call returns the task
// immediately and every await inside yields to the resuming scheduler.
func (e *emitter) functionBody(n *ir.Node) error {
	if !n.Async {
		return e.body(n.Body)
	}
	e.linef("return __async(function()")
	e.indent++
	err := e.body(n.Body)
	e.indent--
	if err != nil {
		return err
	}
	e.linef("end)")
	return nil
}

func (e *emitter) varDecl(n *ir.Node) error {
	for _, did := range n.Decls {
		d, err := e.node(did)
		if err != nil {
			return err
		}
		target, err := e.node(d.Target)
		if err != nil {
			return err
		}

		if target.Kind == ir.KindIdentifier {
			if d.Init == ir.NilID {
				e.linef("local %s", target.Name)
				continue
			}
			value, _, err := e.expr(d.Init)
			if err != nil {
				return err
			}
			e.linef("local %s = %s", target.Name, value)
			continue
		}

		// Destructuring: the right side is evaluated into exactly one
		// temporary and every read goes through it.
		if d.Init == ir.NilID {
			return e.fail(d, "destructuring declarator without an initializer")
		}
		value, _, err := e.expr(d.Init)
		if err != nil {
			return err
		}
		tmp := tempName(0)
		e.linef("local %s = %s", tmp, value)
		if err := e.destructure(target, tmp, 0); err != nil {
			return err
		}
	}
	return nil
}

// tempName names the holder for one nesting level. Sibling patterns at
// the same depth reuse the name; each shadowing local is dead by then.
func tempName(depth int) string {
	return fmt.Sprintf("__d%d", depth)
}

// destructure expands a pattern reading from src, one statement per leaf
// binding. Holes are skipped entirely and introduce nothing.
func (e *emitter) destructure(pattern *ir.Node, src string, depth int) error {
	switch pattern.Kind {
	case ir.KindArrayPattern:
		for i, eid := range pattern.Elems {
			if eid == ir.NilID {
				continue
			}
			el, err := e.node(eid)
			if err != nil {
				return err
			}
			if el.Kind == ir.KindRestElement {
				if err := e.restBinding(el, src, i); err != nil {
					return err
				}
				continue
			}
			// Source position i is 0-based; the target sequence starts at 1.
			if err := e.bindSlot(el, fmt.Sprintf("%s[%d]", src, i+1), depth); err != nil {
				return err
			}
		}
		return nil

	case ir.KindObjectPattern:
		for _, pid := range pattern.Props {
			prop, err := e.node(pid)
			if err != nil {
				return err
			}
			access, err := e.propAccess(prop, src)
			if err != nil {
				return err
			}
			value, err := e.node(prop.Value)
			if err != nil {
				return err
			}
			if err := e.bindSlot(value, access, depth); err != nil {
				return err
			}
		}
		return nil

	default:
		return e.fail(pattern, "not a pattern kind")
	}
}

// bindSlot binds one pattern slot to the value behind access. Nested
// patterns pull the value into the next level's temporary first so it is
// read exactly once.
func (e *emitter) bindSlot(target *ir.Node, access string, depth int) error {
	switch target.Kind {
	case ir.KindIdentifier:
		e.linef("local %s = %s", target.Name, access)
		return nil

	case ir.KindAssignPattern:
		left, err := e.node(target.Left)
		if err != nil {
			return err
		}
		def, _, err := e.expr(target.Right)
		if err != nil {
			return err
		}
		if left.Kind == ir.KindIdentifier {
			e.linef("local %s = %s", left.Name, access)
			// The default fires only on the absent sentinel, never on
			// other falsy values.
			e.linef("if %s == nil then %s = %s end", left.Name, left.Name, def)
			return nil
		}
		tmp := tempName(depth + 1)
		e.linef("local %s = %s", tmp, access)
		e.linef("if %s == nil then %s = %s end", tmp, tmp, def)
		return e.destructure(left, tmp, depth+1)

	case ir.KindArrayPattern, ir.KindObjectPattern:
		tmp := tempName(depth + 1)
		e.linef("local %s = %s", tmp, access)
		return e.destructure(target, tmp, depth+1)

	default:
		return e.fail(target, "unsupported pattern slot")
	}
}

// restBinding collects the trailing elements after 0-based position start
// into a fresh sequence, preserving order.
func (e *emitter) restBinding(rest *ir.Node, src string, start int) error {
	target, err := e.node(rest.Arg)
	if err != nil {
		return err
	}
	if target.Kind != ir.KindIdentifier {
		return e.fail(target, "non-identifier rest target")
	}
	e.linef("local %s = {}", target.Name)
	e.linef("for __i = %d, #%s do", start+1, src)
	e.indent++
	e.linef("%s[#%s + 1] = %s[__i]", target.Name, target.Name, src)
	e.indent--
	e.linef("end")
	return nil
}

// propAccess renders the source-side read for one object-pattern
// property: a single canonical lookup, dot for bare names and bracket
// for everything else.
func (e *emitter) propAccess(prop *ir.Node, src string) (string, error) {
	key, err := e.node(prop.Key)
	if err != nil {
		return "", err
	}
	if prop.Computed {
		idx, _, err := e.expr(prop.Key)
		if err != nil {
			return "", err
		}
		return src + "[" + idx + "]", nil
	}
	switch key.Kind {
	case ir.KindIdentifier:
		return src + keyAccess(key.Name), nil
	case ir.KindLiteral:
		if key.Lit == nil {
			return "", e.fail(key, "literal without a payload")
		}
		switch key.Lit.Type {
		case "string":
			return src + keyAccess(key.Lit.Str), nil
		case "number":
			lit, err := e.literal(key)
			if err != nil {
				return "", err
			}
			return src + "[" + lit + "]", nil
		}
	}
	return "", e.fail(key, "unsupported property key")
}
