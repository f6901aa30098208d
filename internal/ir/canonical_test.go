package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(got))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"op": "<="})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"<="}`, string(got))
}

func TestMarshalCanonicalNumbers(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"i": 3.0, "f": 2.5})
	require.NoError(t, err)
	// Integral floats render without fraction.
	assert.Equal(t, `{"f":2.5,"i":3}`, string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) normalizes to U+00E9.
	decomposed := "café"
	composed := "café"
	a, err := MarshalCanonical(map[string]any{"k": decomposed})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{"k": composed})
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalStable(t *testing.T) {
	doc := NewDocument()
	gen := NewIDGen()
	for i := 0; i < 10; i++ {
		n := &Node{ID: gen.NodeID(KindLiteral), Kind: KindLiteral,
			Lit: &Literal{Type: "number", Num: float64(i)}}
		doc.Add(n)
		doc.Module.Body = append(doc.Module.Body, n.ID)
	}

	first, err := MarshalCanonical(doc)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := MarshalCanonical(doc)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}
