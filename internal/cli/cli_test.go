package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ir"
)

const sampleSource = `
function double(n) {
  return n * 2;
}
let out = double(21);
`

const sampleLua = `local function double(n)
  return n * 2
end
local out = double(21)
`

// chdir mirrors testing.T.Chdir, which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func decodeEnvelope(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestBuildPrintsLua(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)

	out, _, err := run(t, "build", src)
	require.NoError(t, err)
	assert.Equal(t, sampleLua, out)
}

func TestBuildJSONEnvelope(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)

	out, _, err := run(t, "build", "--format", "json", src)
	require.NoError(t, err)

	resp := decodeEnvelope(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, src, data["sourcePath"])
	assert.Equal(t, float64(len(sampleLua)), data["luaBytes"])
	assert.NotZero(t, data["nodes"])
}

func TestBuildWritesOutputFiles(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)
	dir := t.TempDir()
	luaPath := filepath.Join(dir, "out.lua")
	irPath := filepath.Join(dir, "out.ir.json")

	_, _, err := run(t, "build", "-o", luaPath, "--ir", irPath, src)
	require.NoError(t, err)

	lua, err := os.ReadFile(luaPath)
	require.NoError(t, err)
	assert.Equal(t, sampleLua, string(lua))

	data, err := os.ReadFile(irPath)
	require.NoError(t, err)
	doc, err := ir.DecodeDocument(data)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Nodes)
}

func TestBuildMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	out, _, err := run(t, "build", "no-such-file.src")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "[E001]")
}

func TestBuildCompileError(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "broken.src", "let = ;")

	out, _, err := run(t, "build", src)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E002]")
}

func TestBuildHonorsConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfg := "cfg: true\ntoolchain:\n  moonsmith: 0.3.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(cfg), 0o644))
	src := writeSource(t, "double.src", sampleSource)
	irPath := filepath.Join(dir, "out.ir.json")

	_, _, err := run(t, "build", "--ir", irPath, "-o", filepath.Join(dir, "out.lua"), src)
	require.NoError(t, err)

	data, err := os.ReadFile(irPath)
	require.NoError(t, err)
	doc, err := ir.DecodeDocument(data)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Graphs)
	assert.Equal(t, "0.3.0", doc.Module.Metadata.Toolchain["moonsmith"])
}

func TestInvalidFormatRejected(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := run(t, "build", "--format", "xml", "whatever.src")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateSource(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)

	out, _, err := run(t, "validate", src)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestValidateSchemaFlag(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)

	out, _, err := run(t, "validate", "--schema", src)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestValidateRejectsTamperedIR(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)
	dir := t.TempDir()
	irPath := filepath.Join(dir, "doc.ir.json")

	_, _, err := run(t, "lower", "-o", irPath, src)
	require.NoError(t, err)

	data, err := os.ReadFile(irPath)
	require.NoError(t, err)
	tampered := bytes.Replace(data, []byte(`"op":"*"`), []byte(`"op":"instanceof"`), 1)
	require.NotEqual(t, data, tampered)
	require.NoError(t, os.WriteFile(irPath, tampered, 0o644))

	out, _, err := run(t, "validate", "--ir", irPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E204")
}

func TestLowerDump(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)

	out, _, err := run(t, "lower", "--dump", src)
	require.NoError(t, err)
	assert.Contains(t, out, "FunctionDeclaration double")
}

func TestEmitFromIR(t *testing.T) {
	chdir(t, t.TempDir())
	src := writeSource(t, "double.src", sampleSource)
	irPath := filepath.Join(t.TempDir(), "doc.ir.json")

	_, _, err := run(t, "lower", "-o", irPath, src)
	require.NoError(t, err)

	out, _, err := run(t, "emit", irPath)
	require.NoError(t, err)
	assert.Equal(t, sampleLua, out)
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	dbPath := filepath.Join(dir, "cache.db")
	cfg := "cacheDb: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(cfg), 0o644))
	src := writeSource(t, "double.src", sampleSource)
	hash := ir.SourceHash(sampleSource)

	// First build populates the cache.
	out, _, err := run(t, "build", "--cache", src)
	require.NoError(t, err)
	assert.Equal(t, sampleLua, out)

	// Second build is served from it.
	out, _, err = run(t, "build", "--cache", "--format", "json", src)
	require.NoError(t, err)
	resp := decodeEnvelope(t, out)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["fromCache"])

	out, _, err = run(t, "cache", "ls", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, hash[:12])

	out, _, err = run(t, "cache", "show", "--db", dbPath, hash)
	require.NoError(t, err)
	assert.Equal(t, sampleLua, out)

	_, _, err = run(t, "cache", "rm", "--db", dbPath, hash)
	require.NoError(t, err)

	out, _, err = run(t, "cache", "ls", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cache is empty")
}

func TestCacheShowMissing(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	dbPath := filepath.Join(dir, "cache.db")

	_, _, err := run(t, "cache", "show", "--db", dbPath, "deadbeef")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError}))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
