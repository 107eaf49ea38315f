package canonical

import (
	"slices"
	"strings"

	"github.com/roach88/fprecon/internal/ir"
)

// V2 sentinel markers and separators.
const (
	V2Separator      = "|"
	MarkerUndefined  = "undefined"
	MarkerError      = "error"
	keyValueDivider  = ':'
	fieldsSeparator  = '|'
	escapedCharacter = '\\'
)

// EscapeKey backslash-prefixes ':', '|' and '\' in a V2 key.
func EscapeKey(key string) string {
	if !strings.ContainsAny(key, `:|\`) {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == ':' || c == '|' || c == '\\' {
			b.WriteByte(escapedCharacter)
		}
		b.WriteByte(c)
	}
	return b.String()
}

// V2Plan is a dictionary prepared for repeated V2 serialization.
// Immutable after construction and safe for concurrent use.
type V2Plan struct {
	keys      []string          // present keys, UTF-16 sorted
	fragments map[string][]byte // present key -> "escaped:json"
}

// NewV2Plan encodes every member of dict once.
func NewV2Plan(dict ir.Object) *V2Plan {
	p := &V2Plan{
		keys:      dict.SortedKeys(),
		fragments: make(map[string][]byte, dict.Len()),
	}
	dict.Range(func(k string, v ir.Value) bool {
		frag := append([]byte(EscapeKey(k)), keyValueDivider)
		p.fragments[k] = ir.AppendJSON(frag, v)
		return true
	})
	return p
}

// Has reports whether key is present in the planned dictionary.
func (p *V2Plan) Has(key string) bool {
	_, ok := p.fragments[key]
	return ok
}

// Keys returns the present keys in serialization order.
func (p *V2Plan) Keys() []string {
	return slices.Clone(p.keys)
}

// Append serializes the dictionary under h and appends the bytes to dst.
//
// Keys are the union of present keys and h's keys, deduplicated and sorted.
// For each key: an error key emits "key:error" (even when present); an
// undefined key that is not present emits "key:undefined"; anything else
// emits "key:<JSON value>".
func (p *V2Plan) Append(dst []byte, h ir.Hypothesis) []byte {
	extras := p.extraKeys(h)

	i, j := 0, 0
	first := true
	for i < len(p.keys) || j < len(extras) {
		var key string
		present := false
		switch {
		case j >= len(extras):
			key, present = p.keys[i], true
			i++
		case i >= len(p.keys):
			key = extras[j]
			j++
		case ir.CompareUTF16(p.keys[i], extras[j]) < 0:
			key, present = p.keys[i], true
			i++
		default:
			key = extras[j]
			j++
		}

		if !first {
			dst = append(dst, fieldsSeparator)
		}
		first = false

		switch {
		case slices.Contains(h.ErrorKeys, key):
			dst = append(dst, EscapeKey(key)...)
			dst = append(dst, keyValueDivider)
			dst = append(dst, MarkerError...)
		case present:
			dst = append(dst, p.fragments[key]...)
		default:
			dst = append(dst, EscapeKey(key)...)
			dst = append(dst, keyValueDivider)
			dst = append(dst, MarkerUndefined...)
		}
	}
	return dst
}

// extraKeys returns the hypothesis keys not present in the dictionary,
// deduplicated and UTF-16 sorted.
func (p *V2Plan) extraKeys(h ir.Hypothesis) []string {
	n := len(h.UndefinedKeys) + len(h.ErrorKeys)
	if n == 0 {
		return nil
	}
	extras := make([]string, 0, n)
	for _, group := range [2][]string{h.UndefinedKeys, h.ErrorKeys} {
		for _, k := range group {
			if p.Has(k) || slices.Contains(extras, k) {
				continue
			}
			extras = append(extras, k)
		}
	}
	ir.SortKeys(extras)
	return extras
}

// V2 serializes dict under h.
func V2(dict ir.Object, h ir.Hypothesis) string {
	return string(NewV2Plan(dict).Append(nil, h))
}
