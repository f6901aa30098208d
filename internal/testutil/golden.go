// Package testutil provides shared test helpers: golden-file comparison
// for emitted Lua and canonical IR JSON, and a deterministic compile
// wrapper that pins volatile metadata.
package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/pipeline"
)

// Golden returns a goldie instance configured for the package's
// testdata/golden directory. Regenerate fixtures with:
//
//	go test ./... -update
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertLuaGolden compares emitted Lua against the named golden file.
func AssertLuaGolden(t *testing.T, name, lua string) {
	t.Helper()
	Golden(t).Assert(t, name, []byte(lua))
}

// AssertIRGolden strips volatile metadata and compares the canonical
// JSON encoding against the named golden file.
func AssertIRGolden(t *testing.T, name string, doc *ir.Document) {
	t.Helper()
	data, err := ir.EncodeDocument(doc.StripVolatile())
	if err != nil {
		t.Fatalf("encode document: %v", err)
	}
	Golden(t).Assert(t, name, data)
}

// Compile runs the pipeline front half with a fixed run ID so the run
// identity never varies between test runs. Timings still vary; callers
// comparing serialized documents strip the volatile block first.
func Compile(t *testing.T, src string, opts pipeline.Options) *ir.Document {
	t.Helper()
	if opts.RunID == nil {
		opts.RunID = pipeline.NewFixedGenerator("run-test")
	}
	doc, err := pipeline.ParseAndLower(src, opts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return doc
}
