package luagen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/moonsmith/moonsmith/internal/ir"
)

// Lua operator precedence, lowest to highest. Concatenation and
// exponentiation are right-associative; everything else associates left.
const (
	precOr = iota + 1
	precAnd
	precCmp
	precConcat
	precAdd
	precMul
	precUnary
	precPow

	// precAtom ranks names, literals, calls, table constructors and
	// parenthesized text: never grouped by a parent.
	precAtom = 10
)

type opInfo struct {
	text       string
	prec       int
	rightAssoc bool
}

// binaryOp maps source operators onto Lua. Strict and loose equality
// collapse: the target has a single equality.
var binaryOp = map[string]opInfo{
	"||":  {"or", precOr, false},
	"&&":  {"and", precAnd, false},
	"==":  {"==", precCmp, false},
	"===": {"==", precCmp, false},
	"!=":  {"~=", precCmp, false},
	"!==": {"~=", precCmp, false},
	"<":   {"<", precCmp, false},
	"<=":  {"<=", precCmp, false},
	">":   {">", precCmp, false},
	">=":  {">=", precCmp, false},
	"+":   {"+", precAdd, false},
	"-":   {"-", precAdd, false},
	"*":   {"*", precMul, false},
	"/":   {"/", precMul, false},
	"%":   {"%", precMul, false},
	"**":  {"^", precPow, true},
}

// expr renders an expression and reports the precedence of its topmost
// operator so the caller can decide grouping.
func (e *emitter) expr(id ir.NodeID) (string, int, error) {
	n, err := e.node(id)
	if err != nil {
		return "", 0, err
	}

	switch n.Kind {
	case ir.KindIdentifier:
		return n.Name, precAtom, nil

	case ir.KindLiteral:
		s, err := e.literal(n)
		return s, precAtom, err

	case ir.KindBinary, ir.KindLogical:
		return e.binary(n)

	case ir.KindUnary:
		return e.unary(n)

	case ir.KindConditional:
		return e.conditional(n)

	case ir.KindCall, ir.KindNew:
		s, err := e.call(n)
		return s, precAtom, err

	case ir.KindMember:
		s, err := e.member(n)
		return s, precAtom, err

	case ir.KindArrayLit:
		s, err := e.arrayLit(n)
		return s, precAtom, err

	case ir.KindObjectLit:
		s, err := e.objectLit(n)
		return s, precAtom, err

	case ir.KindAwait:
		arg, _, err := e.expr(n.Arg)
		if err != nil {
			return "", 0, err
		}
		return "__await(" + arg + ")", precAtom, nil

	case ir.KindFunctionExpr:
		s, err := e.functionExpr(n)
		return s, precAtom, err

	case ir.KindAssign, ir.KindUpdate:
		return "", 0, e.fail(n, "%s is only emitted in statement position", n.Kind)

	default:
		return "", 0, e.fail(n, "not an expression kind")
	}
}

// exprAsChild renders a child expression, grouping it when the parent's
// precedence requires. A child is parenthesized when its precedence is
// strictly lower, or equal on the side the parent's associativity does
// not cover.
func (e *emitter) exprAsChild(id ir.NodeID, parent opInfo, left bool) (string, error) {
	s, p, err := e.expr(id)
	if err != nil {
		return "", err
	}
	group := p < parent.prec
	if p == parent.prec {
		if parent.rightAssoc {
			group = left
		} else {
			group = !left
		}
	}
	if group {
		s = "(" + s + ")"
	}
	return s, nil
}

func (e *emitter) binary(n *ir.Node) (string, int, error) {
	op, ok := binaryOp[n.Op]
	if !ok {
		return "", 0, e.fail(n, "unknown operator %q", n.Op)
	}
	left, err := e.exprAsChild(n.Left, op, true)
	if err != nil {
		return "", 0, err
	}
	right, err := e.exprAsChild(n.Right, op, false)
	if err != nil {
		return "", 0, err
	}
	return left + " " + op.text + " " + right, op.prec, nil
}

func (e *emitter) unary(n *ir.Node) (string, int, error) {
	arg, p, err := e.expr(n.Arg)
	if err != nil {
		return "", 0, err
	}
	switch n.Op {
	case "+":
		// The target has no unary plus; the operand is already numeric
		// or will fail there the same way it would here.
		return arg, p, nil
	case "typeof":
		return "type(" + arg + ")", precAtom, nil
	}
	if p < precUnary {
		arg = "(" + arg + ")"
	}
	switch n.Op {
	case "!":
		return "not " + arg, precUnary, nil
	case "-":
		if strings.HasPrefix(arg, "-") {
			// "--" would open a comment.
			return "- " + arg, precUnary, nil
		}
		return "-" + arg, precUnary, nil
	default:
		return "", 0, e.fail(n, "unknown operator %q", n.Op)
	}
}

// conditional lowers test ? then : else onto the and/or selection idiom.
// The middle operand ends up on the right of "and", so a falsy consequent
// would mis-select; accepted for the literal-free common case.
func (e *emitter) conditional(n *ir.Node) (string, int, error) {
	andOp := opInfo{"and", precAnd, false}
	orOp := opInfo{"or", precOr, false}

	test, err := e.exprAsChild(n.Test, andOp, true)
	if err != nil {
		return "", 0, err
	}
	then, err := e.exprAsChild(n.Then, andOp, false)
	if err != nil {
		return "", 0, err
	}
	alt, err := e.exprAsChild(n.Else, orOp, false)
	if err != nil {
		return "", 0, err
	}
	return test + " and " + then + " or " + alt, precOr, nil
}

// prefixed renders an expression in callee/object position. Lua only
// allows calls and indexes on names, other calls/indexes, and
// parenthesized expressions, so anything else is wrapped.
func (e *emitter) prefixed(id ir.NodeID) (string, error) {
	n, err := e.node(id)
	if err != nil {
		return "", err
	}
	s, _, err := e.expr(id)
	if err != nil {
		return "", err
	}
	switch n.Kind {
	case ir.KindIdentifier, ir.KindMember, ir.KindCall, ir.KindNew:
		return s, nil
	}
	return "(" + s + ")", nil
}

// call renders call and construction expressions identically: the target
// has no operator for construction, so a constructor is just a function.
func (e *emitter) call(n *ir.Node) (string, error) {
	callee, err := e.prefixed(n.Callee)
	if err != nil {
		return "", err
	}
	args := make([]string, 0, len(n.Args))
	for _, aid := range n.Args {
		a, _, err := e.expr(aid)
		if err != nil {
			return "", err
		}
		args = append(args, a)
	}
	return callee + "(" + strings.Join(args, ", ") + ")", nil
}

func (e *emitter) member(n *ir.Node) (string, error) {
	obj, err := e.prefixed(n.Object)
	if err != nil {
		return "", err
	}
	if !n.Computed {
		prop, err := e.node(n.Property)
		if err != nil {
			return "", err
		}
		if prop.Kind != ir.KindIdentifier {
			return "", e.fail(n, "non-identifier property in dot position")
		}
		return obj + keyAccess(prop.Name), nil
	}
	idx, _, err := e.expr(n.Property)
	if err != nil {
		return "", err
	}
	return obj + "[" + idx + "]", nil
}

func (e *emitter) arrayLit(n *ir.Node) (string, error) {
	parts := make([]string, 0, len(n.Elems))
	for _, eid := range n.Elems {
		if eid == ir.NilID {
			// A hole keeps its slot so later positions stay aligned.
			parts = append(parts, "nil")
			continue
		}
		s, _, err := e.expr(eid)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func (e *emitter) objectLit(n *ir.Node) (string, error) {
	parts := make([]string, 0, len(n.Props))
	for _, pid := range n.Props {
		prop, err := e.node(pid)
		if err != nil {
			return "", err
		}
		key, err := e.entryKey(prop)
		if err != nil {
			return "", err
		}
		val, _, err := e.expr(prop.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, key+" = "+val)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// entryKey renders a table-constructor key: a bare name when the key is a
// plain identifier the target accepts, bracketed otherwise.
func (e *emitter) entryKey(prop *ir.Node) (string, error) {
	k, err := e.node(prop.Key)
	if err != nil {
		return "", err
	}
	if !prop.Computed {
		switch k.Kind {
		case ir.KindIdentifier:
			if isLuaName(k.Name) {
				return k.Name, nil
			}
			return "[" + quoteLua(k.Name) + "]", nil
		case ir.KindLiteral:
			if k.Lit != nil && k.Lit.Type == "string" {
				if isLuaName(k.Lit.Str) {
					return k.Lit.Str, nil
				}
				return "[" + quoteLua(k.Lit.Str) + "]", nil
			}
		}
	}
	s, _, err := e.expr(prop.Key)
	if err != nil {
		return "", err
	}
	return "[" + s + "]", nil
}

func (e *emitter) literal(n *ir.Node) (string, error) {
	if n.Lit == nil {
		return "", e.fail(n, "literal without a payload")
	}
	switch n.Lit.Type {
	case "number":
		if n.Lit.Raw != "" {
			return n.Lit.Raw, nil
		}
		return strconv.FormatFloat(n.Lit.Num, 'g', -1, 64), nil
	case "string":
		return quoteLua(n.Lit.Str), nil
	case "boolean":
		if n.Lit.Bool {
			return "true", nil
		}
		return "false", nil
	case "null":
		return "nil", nil
	default:
		return "", e.fail(n, "unknown literal type %q", n.Lit.Type)
	}
}

var luaName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var luaReserved = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

func isLuaName(s string) bool {
	return luaName.MatchString(s) && !luaReserved[s]
}

// keyAccess picks the single canonical lookup style for a known key: dot
// when the key is a bare name, bracket otherwise.
func keyAccess(name string) string {
	if isLuaName(name) {
		return "." + name
	}
	return "[" + quoteLua(name) + "]"
}

func quoteLua(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\%d`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
