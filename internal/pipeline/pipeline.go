// Package pipeline chains the compilation stages: parse, normalize,
// lower, validate, emit. Each run owns an isolated document and ID
// counter, so independent compilations may run concurrently. No stage
// blocks or performs I/O; callers needing a time bound wrap the call.
package pipeline

import (
	"fmt"
	"time"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/lower"
	"github.com/moonsmith/moonsmith/internal/luagen"
	"github.com/moonsmith/moonsmith/internal/normalize"
	"github.com/moonsmith/moonsmith/internal/parser"
	"github.com/moonsmith/moonsmith/internal/validate"
)

// Options configures one compilation run. The zero value compiles with
// validation on and no provenance metadata.
type Options struct {
	// SourcePath is recorded in the document metadata verbatim.
	SourcePath string

	// SourceHash overrides the hash computed from the source text.
	// Leave empty to record the canonical source hash.
	SourceHash string

	// Toolchain identifies the producing tools, e.g. {"moonsmith": "0.3.0"}.
	Toolchain map[string]string

	// SchemaVersion pins the IR schema the caller expects. Empty accepts
	// the current version; anything else must match it exactly.
	SchemaVersion string

	// FnMeta carries per-function annotations into the document, keyed
	// by function name.
	FnMeta map[string]map[string]string

	// BuildCFG attaches a control-flow graph to every lowered function.
	BuildCFG bool

	// SkipValidate omits the validator stage in Build.
	SkipValidate bool

	// RunID generates the volatile run identifier. Nil selects UUIDv7.
	RunID RunIDGenerator
}

// ValidationFailed reports a document the validator rejected. The full
// error list is preserved; nothing is truncated.
type ValidationFailed struct {
	Result validate.Result
}

func (e *ValidationFailed) Error() string {
	if len(e.Result.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Result.Errors[0])
	}
	return fmt.Sprintf("validation failed with %d errors, first: %s",
		len(e.Result.Errors), e.Result.Errors[0])
}

// Artifact is the product of a full Build: the document, its canonical
// JSON encoding, the emitted target text, and the validation outcome.
type Artifact struct {
	Document *ir.Document
	IRJSON   []byte
	Lua      string
	Result   validate.Result
}

// ParseAndLower runs the front half of the pipeline and stamps the
// document with provenance and volatile run metadata.
func ParseAndLower(src string, opts Options) (*ir.Document, error) {
	if opts.SchemaVersion != "" && opts.SchemaVersion != ir.SchemaVersion {
		return nil, fmt.Errorf("schema version %q not supported, current is %q",
			opts.SchemaVersion, ir.SchemaVersion)
	}

	timings := make(map[string]int64)
	stage := func(name string) func() {
		start := time.Now()
		return func() { timings[name] = time.Since(start).Nanoseconds() }
	}

	done := stage("parse")
	prog, err := parser.Parse(src)
	done()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	done = stage("normalize")
	prog, err = normalize.Normalize(prog, src)
	done()
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	done = stage("lower")
	doc, err := lower.Lower(prog, lower.Options{BuildCFG: opts.BuildCFG})
	done()
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}

	hash := opts.SourceHash
	if hash == "" {
		hash = ir.SourceHash(src)
	}
	gen := opts.RunID
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	doc.Module.Metadata = ir.Metadata{
		SourcePath: opts.SourcePath,
		SourceHash: hash,
		Toolchain:  opts.Toolchain,
		Functions:  opts.FnMeta,
		Volatile: &ir.Volatile{
			RunID:   gen.Generate(),
			Timings: timings,
		},
	}
	return doc, nil
}

// ValidateIR checks a document without modifying it.
func ValidateIR(doc *ir.Document) validate.Result {
	return validate.Check(doc)
}

// Emit renders a document as target text.
func Emit(doc *ir.Document) (string, error) {
	return luagen.Emit(doc)
}

// EncodeIR serializes a document into canonical JSON.
func EncodeIR(doc *ir.Document) ([]byte, error) {
	return ir.EncodeDocument(doc)
}

// DumpIR renders a document as an indented tree, with any control-flow
// graphs appended.
func DumpIR(doc *ir.Document) (string, error) {
	out := ir.DumpTree(doc)
	if len(doc.Graphs) > 0 {
		out += "\n" + ir.DumpGraphs(doc)
	}
	return out, nil
}

// Build runs the whole pipeline. The returned artifact is complete: a
// validation failure or emission error yields an error instead, never a
// partial artifact presented as valid.
func Build(src string, opts Options) (*Artifact, error) {
	doc, err := ParseAndLower(src, opts)
	if err != nil {
		return nil, err
	}

	a := &Artifact{Document: doc}
	if !opts.SkipValidate {
		a.Result = ValidateIR(doc)
		if !a.Result.OK {
			return nil, &ValidationFailed{Result: a.Result}
		}
	} else {
		a.Result = validate.Result{OK: true}
	}

	if a.Lua, err = Emit(doc); err != nil {
		return nil, err
	}
	if a.IRJSON, err = ir.EncodeDocument(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return a, nil
}
