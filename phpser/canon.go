package phpser

import (
	"math"
	"strconv"
)

// ============================================================
// Fixed Tokens
// ============================================================

const (
	tokenNull     = "N;"
	tokenTrue     = "b:1;"
	tokenFalse    = "b:0;"
	tokenNaN      = "d:NAN;"
	tokenInf      = "d:INF;"
	tokenNegInf   = "d:-INF;"
	tokenResource = "i:0;"
)

// serializePrecision is the digit budget of PHP's serialize_precision=-1
// mode: shortest round-trip digits, plain notation up to 17 integer digits.
const serializePrecision = 17

// ============================================================
// Scalar Encoding
// ============================================================

func appendNull(dst []byte) []byte {
	return append(dst, tokenNull...)
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, tokenTrue...)
	}
	return append(dst, tokenFalse...)
}

// appendInt writes i:<decimal>;
func appendInt(dst []byte, n int64) []byte {
	dst = append(dst, "i:"...)
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, ';')
}

// appendFloat writes d:<float>; with the fixed tokens for non-finite values.
func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, tokenNaN...)
	case math.IsInf(f, 1):
		return append(dst, tokenInf...)
	case math.IsInf(f, -1):
		return append(dst, tokenNegInf...)
	}
	dst = append(dst, "d:"...)
	dst = appendDecimal(dst, f)
	return append(dst, ';')
}

// appendString writes s:<byte-length>:"<raw>";
// The length counts bytes; the payload is not escaped.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, "s:"...)
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':', '"')
	dst = append(dst, s...)
	return append(dst, '"', ';')
}

// appendKey writes an array key as an int or string token.
func appendKey(dst []byte, k Key) []byte {
	if k.isStr {
		return appendString(dst, k.s)
	}
	return appendInt(dst, k.n)
}

// appendBackref writes R:<pos>; (array entry alias) or r:<pos>; (object).
func appendBackref(dst []byte, tag byte, pos int) []byte {
	dst = append(dst, tag, ':')
	dst = strconv.AppendInt(dst, int64(pos), 10)
	return append(dst, ';')
}

// appendHeader writes <tag>:<len>:"<name>":<n>:{
func appendHeader(dst []byte, tag byte, name string, n int) []byte {
	dst = append(dst, tag, ':')
	dst = strconv.AppendInt(dst, int64(len(name)), 10)
	dst = append(dst, ':', '"')
	dst = append(dst, name...)
	dst = append(dst, '"', ':')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, ':', '{')
}

// ============================================================
// Float Formatting
// ============================================================

// FormatFloat renders f the way PHP's serialize() does: shortest digits that
// round-trip, uppercase exponent, no trailing ".0" on whole numbers.
// Non-finite values render as INF, -INF and NAN.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return string(appendDecimal(nil, f))
}

// appendDecimal lays out the shortest round-trip digits of a finite f.
// With value = 0.DIGITS × 10^decpt, exponential form is used when
// decpt < -3 or decpt > serializePrecision.
func appendDecimal(dst []byte, f float64) []byte {
	var scratch [32]byte
	s := strconv.AppendFloat(scratch[:0], f, 'e', -1, 64)
	if s[0] == '-' {
		dst = append(dst, '-')
		s = s[1:]
	}

	// s is d[.ddd]e±xx
	e := 0
	for e < len(s) && s[e] != 'e' {
		e++
	}
	exp, _ := strconv.Atoi(string(s[e+1:]))
	var digitBuf [24]byte
	digits := append(digitBuf[:0], s[0])
	if e > 1 {
		digits = append(digits, s[2:e]...)
	}
	decpt := exp + 1

	switch {
	case decpt < -3 || decpt > serializePrecision:
		dst = append(dst, digits[0], '.')
		if len(digits) == 1 {
			dst = append(dst, '0')
		} else {
			dst = append(dst, digits[1:]...)
		}
		dst = append(dst, 'E')
		if exp < 0 {
			dst = append(dst, '-')
			exp = -exp
		} else {
			dst = append(dst, '+')
		}
		return strconv.AppendInt(dst, int64(exp), 10)

	case decpt <= 0:
		dst = append(dst, '0', '.')
		for i := decpt; i < 0; i++ {
			dst = append(dst, '0')
		}
		return append(dst, digits...)

	default:
		for i := 0; i < decpt; i++ {
			if i < len(digits) {
				dst = append(dst, digits[i])
			} else {
				dst = append(dst, '0')
			}
		}
		if len(digits) > decpt {
			dst = append(dst, '.')
			dst = append(dst, digits[decpt:]...)
		}
		return dst
	}
}
