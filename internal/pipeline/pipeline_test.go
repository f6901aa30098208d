package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/validate"
)

const sample = `
function clamp(v, lo, hi) {
  if (v < lo) { return lo; }
  if (v > hi) { return hi; }
  return v;
}
let z = clamp(12, 0, 10);
`

func TestBuildProducesCompleteArtifact(t *testing.T) {
	a, err := Build(sample, Options{RunID: NewFixedGenerator("run-1")})
	require.NoError(t, err)

	assert.True(t, a.Result.OK)
	assert.NotEmpty(t, a.Lua)
	assert.NotEmpty(t, a.IRJSON)
	require.NotNil(t, a.Document)
	assert.Equal(t, ir.SchemaVersion, a.Document.SchemaVersion)
}

func TestBuildIsDeterministic(t *testing.T) {
	opts := func() Options {
		return Options{
			SourcePath: "sample.src",
			Toolchain:  map[string]string{"moonsmith": "0.3.0"},
			BuildCFG:   true,
			RunID:      NewFixedGenerator("run-a"),
		}
	}
	first, err := Build(sample, opts())
	require.NoError(t, err)
	second, err := Build(sample, opts())
	require.NoError(t, err)

	assert.Equal(t, first.Lua, second.Lua)

	// Stripped of volatile metadata, the canonical encodings agree byte
	// for byte.
	a, err := ir.EncodeDocument(first.Document.StripVolatile())
	require.NoError(t, err)
	b, err := ir.EncodeDocument(second.Document.StripVolatile())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	h1, err := ir.DocumentHash(first.Document)
	require.NoError(t, err)
	h2, err := ir.DocumentHash(second.Document)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestMetadataStamping(t *testing.T) {
	doc, err := ParseAndLower(sample, Options{
		SourcePath: "lib/clamp.src",
		Toolchain:  map[string]string{"moonsmith": "0.3.0"},
		FnMeta:     map[string]map[string]string{"clamp": {"inline": "never"}},
		RunID:      NewFixedGenerator("run-meta"),
	})
	require.NoError(t, err)

	md := doc.Module.Metadata
	assert.Equal(t, "lib/clamp.src", md.SourcePath)
	assert.Equal(t, ir.SourceHash(sample), md.SourceHash)
	assert.Equal(t, "0.3.0", md.Toolchain["moonsmith"])
	assert.Equal(t, "never", md.Functions["clamp"]["inline"])

	require.NotNil(t, md.Volatile)
	assert.Equal(t, "run-meta", md.Volatile.RunID)
	for _, stage := range []string{"parse", "normalize", "lower"} {
		_, ok := md.Volatile.Timings[stage]
		assert.True(t, ok, "missing %s timing", stage)
	}
}

func TestSourceHashOverride(t *testing.T) {
	doc, err := ParseAndLower(sample, Options{
		SourceHash: "feedface",
		RunID:      NewFixedGenerator("run-x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "feedface", doc.Module.Metadata.SourceHash)
}

func TestSchemaVersionPin(t *testing.T) {
	_, err := ParseAndLower(sample, Options{SchemaVersion: "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")

	_, err = ParseAndLower(sample, Options{
		SchemaVersion: ir.SchemaVersion,
		RunID:         NewFixedGenerator("run-pin"),
	})
	assert.NoError(t, err)
}

func TestBuildSkipValidate(t *testing.T) {
	a, err := Build(sample, Options{
		SkipValidate: true,
		RunID:        NewFixedGenerator("run-skip"),
	})
	require.NoError(t, err)
	assert.True(t, a.Result.OK)
	assert.Empty(t, a.Result.Errors)
}

func TestBuildFailsOnParseError(t *testing.T) {
	_, err := Build("let = ;", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestDumpIRIncludesGraphs(t *testing.T) {
	doc, err := ParseAndLower(sample, Options{
		BuildCFG: true,
		RunID:    NewFixedGenerator("run-dump"),
	})
	require.NoError(t, err)

	out, err := DumpIR(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "module prog_")
	assert.Contains(t, out, "FunctionDeclaration clamp")
	assert.Contains(t, out, "cfg_")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a, err := Build(sample, Options{RunID: NewFixedGenerator("run-rt")})
	require.NoError(t, err)

	doc, err := ir.DecodeDocument(a.IRJSON)
	require.NoError(t, err)

	lua, err := Emit(doc)
	require.NoError(t, err)
	assert.Equal(t, a.Lua, lua)
}

func TestValidationFailedMessage(t *testing.T) {
	err := &ValidationFailed{Result: validate.Result{Errors: []validate.ValidationError{
		{Field: "nodes.expr_1.op", Message: `invalid binary operator "in"`, Code: validate.ErrInvalidOperator},
	}}}
	assert.Contains(t, err.Error(), "E204")

	err.Result.Errors = append(err.Result.Errors, validate.ValidationError{
		Field: "module.id", Message: "missing", Code: validate.ErrModuleUnresolved,
	})
	assert.Contains(t, err.Error(), "2 errors")
}

func TestFixedGeneratorPanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := UUIDv7Generator{}
	assert.NotEqual(t, g.Generate(), g.Generate())
}
