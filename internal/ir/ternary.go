package ir

import (
	"fmt"
	"math"
	"regexp"
)

// Balanced ternary digit characters. 'T' denotes -1.
const (
	digitNeg  = 'T'
	digitZero = '0'
	digitOne  = '1'
)

// IDPattern matches every well-formed node ID.
var IDPattern = regexp.MustCompile(`^[A-Za-z]+_[T01]+$`)

// FormatError reports an invalid balanced-ternary digit string.
type FormatError struct {
	Input   string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid balanced ternary %q: %s", e.Input, e.Message)
}

// EncodeTrits encodes n as a balanced-ternary digit string using the
// alphabet {T, 0, 1} with T = -1. The encoding is canonical (no leading
// zeros except for zero itself) and total over int64. Balanced ternary
// needs no sign character, which gives IDs a single uniform shape
// regardless of magnitude sign.
func EncodeTrits(n int64) string {
	if n == 0 {
		return "0"
	}

	// Digits accumulate least-significant first.
	var buf [41]byte // ceil(64 / log2(3)) + 1
	i := len(buf)

	for n != 0 {
		q, r := n/3, n%3
		i--
		switch r {
		case 0:
			buf[i] = digitZero
			n = q
		case 1:
			buf[i] = digitOne
			n = q
		case 2:
			buf[i] = digitNeg
			n = q + 1
		case -1:
			buf[i] = digitNeg
			n = q
		case -2:
			buf[i] = digitOne
			n = q - 1
		}
	}

	return string(buf[i:])
}

// DecodeTrits decodes a balanced-ternary digit string produced by
// EncodeTrits. Characters outside {T, 0, 1} and values outside the int64
// range fail with a *FormatError.
func DecodeTrits(s string) (int64, error) {
	if s == "" {
		return 0, &FormatError{Input: s, Message: "empty digit string"}
	}

	// Largest/smallest accumulator for which 3n+d still fits in int64 for
	// every digit d. One value below minPre remains reachable because
	// 3*(minPre-1)+1 == MinInt64 exactly; the multiplication would wrap,
	// so it is handled before the general step.
	const maxPre = (math.MaxInt64 - 1) / 3
	const minPre = (math.MinInt64 + 1) / 3

	var n int64
	for i := 0; i < len(s); i++ {
		var d int64
		switch s[i] {
		case digitNeg:
			d = -1
		case digitZero:
			d = 0
		case digitOne:
			d = 1
		default:
			return 0, &FormatError{Input: s, Message: fmt.Sprintf("bad digit %q at index %d", s[i], i)}
		}

		if n == minPre-1 {
			if d == 1 && i == len(s)-1 {
				return math.MinInt64, nil
			}
			return 0, &FormatError{Input: s, Message: "value out of int64 range"}
		}
		if n > maxPre || n < minPre-1 {
			return 0, &FormatError{Input: s, Message: "value out of int64 range"}
		}
		n = n*3 + d
	}
	return n, nil
}
