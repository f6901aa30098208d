package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/testutil"
)

// buildLetDocument assembles the document for `let answer = 42;` by hand,
// node by node, the way the lowerer registers them.
func buildLetDocument() *ir.Document {
	g := ir.NewIDGen()
	doc := ir.NewDocument()

	progID := g.NodeID(ir.KindProgram)
	declID := g.NodeID(ir.KindVarDecl)
	dtorID := g.NodeID(ir.KindVarDeclarator)
	nameID := g.NodeID(ir.KindIdentifier)
	litID := g.NodeID(ir.KindLiteral)

	doc.Add(&ir.Node{ID: progID, Kind: ir.KindProgram, Stmts: []ir.NodeID{declID}})
	doc.Add(&ir.Node{ID: declID, Kind: ir.KindVarDecl, DeclKind: "let", Decls: []ir.NodeID{dtorID}})
	doc.Add(&ir.Node{ID: dtorID, Kind: ir.KindVarDeclarator, DeclKind: "let", Target: nameID, Init: litID})
	doc.Add(&ir.Node{ID: nameID, Kind: ir.KindIdentifier, Name: "answer", Span: &ir.Span{
		Start: ir.Position{Line: 1, Column: 5, Offset: 4},
		End:   ir.Position{Line: 1, Column: 11, Offset: 10},
	}})
	doc.Add(&ir.Node{ID: litID, Kind: ir.KindLiteral, Lit: &ir.Literal{Type: "number", Num: 42, Raw: "42"}})

	doc.Module = ir.ModuleInfo{
		ID:   progID,
		Body: []ir.NodeID{declID},
		Metadata: ir.Metadata{
			SourcePath: "example.src",
			SourceHash: ir.SourceHash("let answer = 42;\n"),
			Toolchain:  map[string]string{"moonsmith": "0.1.0"},
			Volatile:   &ir.Volatile{RunID: "run-golden"},
		},
	}
	return doc
}

func TestCanonicalDocumentGolden(t *testing.T) {
	testutil.AssertIRGolden(t, "document", buildLetDocument())
}

func TestCanonicalEncodingRoundTrips(t *testing.T) {
	doc := buildLetDocument().StripVolatile()

	data, err := ir.EncodeDocument(doc)
	require.NoError(t, err)
	decoded, err := ir.DecodeDocument(data)
	require.NoError(t, err)

	again, err := ir.EncodeDocument(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
