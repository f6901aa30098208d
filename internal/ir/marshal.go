package ir

import (
	"fmt"
)

// EncodeDocument serializes a document to canonical JSON. The encoding is
// deterministic: sorted keys, normalized strings, stable number rendering.
func EncodeDocument(d *Document) ([]byte, error) {
	data, err := MarshalCanonical(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a serialized document and checks its schema
// version. The round trip EncodeDocument -> DecodeDocument reproduces an
// equivalent document: same nodes, same module body order, same graphs.
func DecodeDocument(data []byte) (*Document, error) {
	var d Document
	if err := unmarshalStrict(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if d.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("decode document: schema version %q, want %q", d.SchemaVersion, SchemaVersion)
	}
	if d.Nodes == nil {
		d.Nodes = make(map[NodeID]*Node)
	}
	return &d, nil
}
