package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTritsKnownValues(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-1, "T"},
		{2, "1T"},
		{-2, "T1"},
		{3, "10"},
		{4, "11"},
		{5, "1TT"},
		{9, "100"},
		{-9, "T00"},
		{13, "111"},
		{-13, "TTT"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EncodeTrits(tc.n), "encode %d", tc.n)
	}
}

func TestCodecInverse(t *testing.T) {
	values := []int64{
		0, 1, -1, 2, -2, 3, 5, 42, -42, 100, 729, -729,
		1 << 20, -(1 << 20), 1<<33 + 7,
		math.MaxInt64, math.MinInt64, math.MaxInt64 - 1, math.MinInt64 + 1,
	}
	for _, n := range values {
		digits := EncodeTrits(n)
		got, err := DecodeTrits(digits)
		require.NoError(t, err, "decode of encode(%d)", n)
		assert.Equal(t, n, got)
	}
	for n := int64(-2000); n <= 2000; n++ {
		got, err := DecodeTrits(EncodeTrits(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestDecodeTritsRejectsBadInput(t *testing.T) {
	cases := []string{"", "012", "1t", "1 1", "abc", "1T2"}
	for _, in := range cases {
		_, err := DecodeTrits(in)
		var fe *FormatError
		require.ErrorAs(t, err, &fe, "input %q", in)
	}
}

func TestDecodeTritsOverflow(t *testing.T) {
	// One digit beyond the widest encodable value.
	over := "1" + EncodeTrits(math.MaxInt64)
	_, err := DecodeTrits(over)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestGeneratedIDsMatchPattern(t *testing.T) {
	gen := NewIDGen()
	for i := 0; i < 200; i++ {
		id := gen.NodeID(KindIdentifier)
		assert.Regexp(t, IDPattern, string(id))
	}
	assert.Regexp(t, IDPattern, string(gen.BlockID()))
}

func TestIDsAreUniquePerGenerator(t *testing.T) {
	gen := NewIDGen()
	seen := make(map[NodeID]bool)
	for i := 0; i < 1000; i++ {
		id := gen.NodeID(KindLiteral)
		require.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}
