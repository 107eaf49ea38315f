package ir

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// AppendJSON appends the JSON.stringify encoding of v to dst.
//
// This is the ONLY value encoding used for fingerprint hashing. It differs from
// encoding/json in ways that change hashes:
//  1. Object members keep enumeration order (no key sorting)
//  2. No HTML escaping; U+2028 and U+2029 are written literally
//  3. Numbers use ECMAScript Number::toString (-0 prints as 0)
//  4. Absent prints as undefined at top level, null inside arrays, and is
//     dropped inside objects
func AppendJSON(dst []byte, v Value) []byte {
	switch val := v.(type) {
	case nil, Absent:
		return append(dst, "undefined"...)
	case Null:
		return append(dst, "null"...)
	case String:
		return AppendQuoted(dst, string(val))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return append(dst, "null"...)
		}
		return appendNumber(dst, f)
	case Bool:
		return strconv.AppendBool(dst, bool(val))
	case Array:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			if isAbsent(elem) {
				dst = append(dst, "null"...)
				continue
			}
			dst = AppendJSON(dst, elem)
		}
		return append(dst, ']')
	case Object:
		dst = append(dst, '{')
		first := true
		val.Range(func(k string, elem Value) bool {
			if isAbsent(elem) {
				return true
			}
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = AppendQuoted(dst, k)
			dst = append(dst, ':')
			dst = AppendJSON(dst, elem)
			return true
		})
		return append(dst, '}')
	default:
		return append(dst, "undefined"...)
	}
}

// Stringify returns the JSON.stringify encoding of v as a string.
func Stringify(v Value) string {
	return string(AppendJSON(nil, v))
}

func isAbsent(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Absent)
	return ok
}

const hexDigits = "0123456789abcdef"

// AppendQuoted appends s as a JSON string literal the way JSON.stringify
// quotes it: only '"', '\\' and control characters below U+0020 are escaped.
// Invalid UTF-8 is written as U+FFFD.
func AppendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch b {
			case '"', '\\':
				dst = append(dst, '\\', b)
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, "\uFFFD"...)
			i += size
			start = i
			continue
		}
		i += size
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// FormatNumber renders f with ECMAScript Number::toString.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return string(appendNumber(nil, f))
}

// appendNumber writes the shortest round-trip decimal form of a finite f.
// Fixed notation for 1e-6 <= |f| < 1e21, exponent notation otherwise, with
// the exponent carrying no leading zero ("1e-7", "1e+21").
func appendNumber(dst []byte, f float64) []byte {
	if f == 0 {
		return append(dst, '0')
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// strconv pads the exponent to two digits: e-07 -> e-7
		n := len(dst)
		if n-start >= 4 && dst[n-4] == 'e' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}

// ToString coerces v the way ECMAScript String(v) does.
//
// Arrays join their elements with "," and render null/undefined elements as
// empty strings; objects render as "[object Object]".
func ToString(v Value) string {
	switch val := v.(type) {
	case nil, Absent:
		return "undefined"
	case Null:
		return "null"
	case String:
		return string(val)
	case Number:
		return FormatNumber(float64(val))
	case Bool:
		return strconv.FormatBool(bool(val))
	case Array:
		parts := make([]string, len(val))
		for i, elem := range val {
			switch elem.(type) {
			case nil, Absent, Null:
				parts[i] = ""
			default:
				parts[i] = ToString(elem)
			}
		}
		return strings.Join(parts, ",")
	case Object:
		return "[object Object]"
	default:
		return "undefined"
	}
}

// SortKeys sorts keys in place by UTF-16 code units.
func SortKeys(keys []string) {
	slices.SortFunc(keys, CompareUTF16)
}

// CompareUTF16 compares strings by UTF-16 code units, the comparison
// Array.prototype.sort applies to strings.
// CRITICAL: Must use unicode/utf16.Encode for correct surrogate handling.
func CompareUTF16(a, b string) int {
	// ASCII fast path: UTF-8 byte order equals UTF-16 order below U+0080
	if isASCII(a) && isASCII(b) {
		return strings.Compare(a, b)
	}

	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
