package ir

import (
	"bytes"
	"encoding/json"
)

// unmarshalStrict decodes JSON rejecting unknown fields, so documents
// produced by a newer writer fail loudly instead of silently dropping
// payload.
func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
