// Package lower desugars the normalized source tree into the flat IR.
//
// The lowerer is the only stage that creates nodes: it walks the tree,
// registers one IR node per construct in the document's flat table, and
// returns the root ID. Destructuring patterns are preserved structurally
// (holes explicit, rest as a tail marker, defaults wrapped, nesting
// recursive); the emitter performs the actual unpacking.
package lower

import (
	"fmt"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/lexer"
)

// UnsupportedError reports a source construct the lowerer does not
// handle. It is always explicit: unknown kinds and operators are never
// silently ignored or approximated.
type UnsupportedError struct {
	Construct string
	Span      lexer.Span
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%d:%d: unsupported construct: %s",
		e.Span.Start.Line, e.Span.Start.Column, e.Construct)
}

// Options configures a lowering run.
type Options struct {
	// BuildCFG partitions every function body into basic blocks and
	// attaches the resulting control-flow graph as function metadata.
	BuildCFG bool
}

// Lower desugars a normalized program into a fresh IR document. Each call
// owns an isolated node table and ID counter, so independent compilations
// may run in parallel.
func Lower(prog *ast.Program, opts Options) (*ir.Document, error) {
	l := &lowerer{
		doc:  ir.NewDocument(),
		ids:  ir.NewIDGen(),
		opts: opts,
	}
	l.pushScope()

	root := l.newNode(ir.KindProgram, prog.Loc)
	for _, stmt := range prog.Body {
		id, err := l.stmt(stmt)
		if err != nil {
			return nil, err
		}
		root.Stmts = append(root.Stmts, id)
	}
	l.popScope()

	l.doc.Module.ID = root.ID
	l.doc.Module.Body = root.Stmts
	return l.doc, nil
}

type lowerer struct {
	doc  *ir.Document
	ids  *ir.IDGen
	opts Options

	// scopes tracks names bound by declarations, one set per function
	// (and one for the program). Every leaf binding a pattern introduces
	// registers exactly once in the innermost scope.
	scopes []map[string]string // name -> declaration kind

	// asyncDepth counts enclosing async function bodies; await is only
	// legal when it is positive.
	asyncDepth int

	// loopDepth and breakDepth count the loop (and, for breakDepth,
	// switch) constructs enclosing the current statement. Both reset to
	// zero inside try and function bodies: those bodies compile to their
	// own function scope in the target, so loop control cannot cross the
	// boundary. tryDepth counts enclosing try bodies.
	loopDepth  int
	breakDepth int
	tryDepth   int
}

func (l *lowerer) newNode(k ir.Kind, span lexer.Span) *ir.Node {
	n := &ir.Node{ID: l.ids.NodeID(k), Kind: k, Span: spanToIR(span)}
	l.doc.Add(n)
	return n
}

func (l *lowerer) unsupported(construct string, span lexer.Span) error {
	return &UnsupportedError{Construct: construct, Span: span}
}

func (l *lowerer) pushScope() {
	l.scopes = append(l.scopes, make(map[string]string))
}

func (l *lowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// register records a leaf binding in the innermost scope. Rebinding a
// name already introduced by let or const in the same scope is rejected;
// var rebinding collapses onto the existing slot.
func (l *lowerer) register(name, kind string, span lexer.Span) error {
	scope := l.scopes[len(l.scopes)-1]
	if prev, ok := scope[name]; ok {
		if prev == "var" && kind == "var" {
			return nil
		}
		return l.unsupported(fmt.Sprintf("duplicate %s binding %q", kind, name), span)
	}
	scope[name] = kind
	return nil
}

func spanToIR(s lexer.Span) *ir.Span {
	if s == (lexer.Span{}) {
		return nil
	}
	return &ir.Span{
		Start: ir.Position{Line: s.Start.Line, Column: s.Start.Column, Offset: s.Start.Offset},
		End:   ir.Position{Line: s.End.Line, Column: s.End.Column, Offset: s.End.Offset},
	}
}
