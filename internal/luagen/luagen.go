// Package luagen renders a validated IR document as Lua source text.
//
// Emission is deterministic: traversal strictly follows the child ID
// lists stored on each node, never table-iteration order, so re-emitting
// an unchanged document is byte-identical. The generator inserts
// parentheses only where the precedence table demands them.
package luagen

import (
	"fmt"
	"strings"

	"github.com/moonsmith/moonsmith/internal/ir"
)

// EmissionError reports a structurally incomplete or unexpected node.
// Emission fails fast: a partial artifact is never returned.
type EmissionError struct {
	Node    ir.NodeID
	Kind    ir.Kind
	Message string
}

func (e *EmissionError) Error() string {
	if e.Node == ir.NilID {
		return fmt.Sprintf("emit: %s", e.Message)
	}
	return fmt.Sprintf("emit %s (%s): %s", e.Node, e.Kind, e.Message)
}

// Emit renders the whole module. When the document contains suspension
// points a small coroutine prelude is prepended; otherwise the output
// starts directly with the first statement.
func Emit(doc *ir.Document) (string, error) {
	e := &emitter{doc: doc}
	if needsPrelude(doc) {
		e.buf.WriteString(prelude)
	}
	for _, sid := range doc.Module.Body {
		if err := e.stmt(sid); err != nil {
			return "", err
		}
	}
	return e.buf.String(), nil
}

type emitter struct {
	doc    *ir.Document
	buf    strings.Builder
	indent int
}

func (e *emitter) node(id ir.NodeID) (*ir.Node, error) {
	n := e.doc.Node(id)
	if n == nil {
		return nil, &EmissionError{Node: id, Message: "reference resolves to no node"}
	}
	return n, nil
}

func (e *emitter) fail(n *ir.Node, format string, args ...any) error {
	return &EmissionError{Node: n.ID, Kind: n.Kind, Message: fmt.Sprintf(format, args...)}
}

func (e *emitter) pad() string {
	return strings.Repeat("  ", e.indent)
}

func (e *emitter) linef(format string, args ...any) {
	e.buf.WriteString(e.pad())
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// prelude backs await and async functions. An async call returns a task
// wrapping a coroutine; awaiting a task yields it to whatever scheduler
// resumed the enclosing coroutine, and awaiting a plain value passes it
// through unchanged.
const prelude = `local function __await(v)
  if type(v) == "table" and v.__task ~= nil then
    return coroutine.yield(v)
  end
  return v
end

local function __async(body)
  return { __task = coroutine.create(body) }
end

`

func needsPrelude(doc *ir.Document) bool {
	for _, n := range doc.Nodes {
		if n.Async || n.Kind == ir.KindAwait {
			return true
		}
	}
	return false
}
