// Package irschema checks serialized IR documents against the embedded
// CUE schema. The Go validator owns the deep structural rules; this
// package pins the wire shape, so external consumers of the artifact
// boundary can be held to the same contract.
package irschema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

var (
	compileOnce sync.Once
	document    cue.Value
	compileErr  error
)

func compiled() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			compileErr = fmt.Errorf("compile embedded schema: %w", err)
			return
		}
		document = v.LookupPath(cue.ParsePath("#Document"))
		if err := document.Err(); err != nil {
			compileErr = fmt.Errorf("resolve #Document: %w", err)
		}
	})
	return document, compileErr
}

// Check unifies a JSON-encoded document with the schema. It returns one
// message per violation; an empty slice with nil error means the document
// conforms.
func Check(data []byte) ([]string, error) {
	schema, err := compiled()
	if err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return nil, fmt.Errorf("parse document JSON: %w", err)
	}
	val := schema.Context().BuildExpr(expr)
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("build document value: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range errors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return msgs, nil
	}
	return nil, nil
}
