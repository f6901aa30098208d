package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/lower"
	"github.com/moonsmith/moonsmith/internal/normalize"
	"github.com/moonsmith/moonsmith/internal/parser"
)

func compile(t *testing.T, src string, opts lower.Options) *ir.Document {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	prog, err = normalize.Normalize(prog, src)
	require.NoError(t, err)
	doc, err := lower.Lower(prog, opts)
	require.NoError(t, err)
	return doc
}

func codes(res Result) []string {
	out := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, e.Code)
	}
	return out
}

func TestCompiledDocumentIsValid(t *testing.T) {
	doc := compile(t, `
function greet(name) {
  if (name === null) { return "hello"; }
  return "hello, " + name;
}
let msg = greet("world");
`, lower.Options{BuildCFG: true})

	res := Check(doc)
	assert.True(t, res.OK)
	assert.Empty(t, res.Errors)
}

func TestUnknownKind(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	for _, n := range doc.Nodes {
		if n.Kind == ir.KindLiteral {
			n.Kind = "SpreadElement"
		}
	}
	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrUnknownKind)
}

func TestMalformedAndMismatchedIDs(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	n := &ir.Node{ID: "lit_2", Kind: ir.KindLiteral, Lit: &ir.Literal{Type: "null"}}
	doc.Nodes["bad id!"] = n

	res := Check(doc)
	assert.False(t, res.OK)
	cs := codes(res)
	assert.Contains(t, cs, ErrMalformedID)
	assert.Contains(t, cs, ErrIDMismatch)
}

func TestDanglingReference(t *testing.T) {
	doc := compile(t, "x = a + b;", lower.Options{})
	bin := findKind(doc, ir.KindBinary)
	delete(doc.Nodes, bin.Right)

	res := Check(doc)
	assert.False(t, res.OK)
	found := false
	for _, e := range res.Errors {
		if e.Code == ErrDanglingRef {
			found = true
			assert.Contains(t, e.Field, ".right")
		}
	}
	assert.True(t, found)
}

func TestHolesAreNotDangling(t *testing.T) {
	doc := compile(t, "const [a, , c] = xs;", lower.Options{})
	res := Check(doc)
	assert.True(t, res.OK)
}

func TestInvalidOperator(t *testing.T) {
	doc := compile(t, "x = a + b;", lower.Options{})
	findKind(doc, ir.KindBinary).Op = "instanceof"

	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrInvalidOperator)
}

func TestDeclKindChecks(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	decl := findKind(doc, ir.KindVarDecl)
	doc.Node(decl.Decls[0]).DeclKind = "const"

	res := Check(doc)
	assert.False(t, res.OK)
	cs := codes(res)
	assert.Contains(t, cs, ErrDeclKindMismatch)

	decl.DeclKind = "static"
	res = Check(doc)
	assert.Contains(t, codes(res), ErrInvalidDeclKind)
}

func TestInvalidSpan(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	decl := findKind(doc, ir.KindVarDecl)
	decl.Span = &ir.Span{
		Start: ir.Position{Line: 0, Column: 1, Offset: 9},
		End:   ir.Position{Line: 1, Column: 2, Offset: 3},
	}
	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrInvalidSpan)
}

func TestInvalidLiteral(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	lit := findKind(doc, ir.KindLiteral)
	lit.Lit.Num = math.NaN()

	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrInvalidLiteral)

	lit.Lit = nil
	res = Check(doc)
	assert.Contains(t, codes(res), ErrInvalidLiteral)
}

func TestStatementPosition(t *testing.T) {
	doc := compile(t, "f(1);", lower.Options{})
	lit := findKind(doc, ir.KindLiteral)
	root := doc.Node(doc.Module.ID)
	root.Stmts = append(root.Stmts, lit.ID)

	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrStatementPosition)
}

func TestModuleUnresolved(t *testing.T) {
	doc := compile(t, "let a = 1;", lower.Options{})
	doc.Module.ID = "prog_TTT"

	res := Check(doc)
	assert.False(t, res.OK)
	assert.Contains(t, codes(res), ErrModuleUnresolved)
}

func TestGraphChecks(t *testing.T) {
	doc := compile(t, "function f() { return 1; }", lower.Options{BuildCFG: true})
	fn := findKind(doc, ir.KindFunctionDecl)
	g := doc.Graphs[fn.CFG]
	require.NotNil(t, g)

	t.Run("stmt escape collected with other errors", func(t *testing.T) {
		stranger := &ir.Node{ID: "stmt_TT", Kind: ir.KindBreak}
		doc.Nodes[stranger.ID] = stranger
		g.Blocks[0].Stmts = append(g.Blocks[0].Stmts, stranger.ID)
		findKind(doc, ir.KindLiteral).Lit.Type = "regexp"

		res := Check(doc)
		assert.False(t, res.OK)
		cs := codes(res)
		assert.Contains(t, cs, ErrGraphStmtEscape)
		assert.Contains(t, cs, ErrInvalidLiteral)
	})

	t.Run("detached graph", func(t *testing.T) {
		fn.CFG = ""
		res := Check(doc)
		assert.Contains(t, codes(res), ErrGraphDetached)
		fn.CFG = findGraphID(doc, fn.ID)
	})

	t.Run("missing entry block", func(t *testing.T) {
		saved := g.Entry
		g.Entry = "blk_TTTT"
		res := Check(doc)
		assert.Contains(t, codes(res), ErrGraphNoEntry)
		g.Entry = saved
	})

	t.Run("missing function", func(t *testing.T) {
		saved := g.Function
		g.Function = "fn_TTTT"
		res := Check(doc)
		assert.Contains(t, codes(res), ErrGraphNoFunction)
		g.Function = saved
	})
}

func TestResultIsStable(t *testing.T) {
	doc := compile(t, "x = a + b;\ny = c * d;", lower.Options{})
	findKind(doc, ir.KindBinary).Op = "in"
	doc.Module.Body = append(doc.Module.Body, "stmt_TTT")

	first := Check(doc)
	second := Check(doc)
	assert.Equal(t, first, second)
}

func findKind(doc *ir.Document, kind ir.Kind) *ir.Node {
	ids := make([]ir.NodeID, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	// Deterministic pick: lowest ID of the kind.
	var best *ir.Node
	for _, id := range ids {
		n := doc.Nodes[id]
		if n.Kind != kind {
			continue
		}
		if best == nil || n.ID < best.ID {
			best = n
		}
	}
	return best
}

func findGraphID(doc *ir.Document, fn ir.NodeID) ir.GraphID {
	for gid, g := range doc.Graphs {
		if g.Function == fn {
			return gid
		}
	}
	return ""
}
