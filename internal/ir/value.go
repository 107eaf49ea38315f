package ir

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is a sealed interface over the shapes a fingerprint component can take.
// Only Absent, Null, String, Number, Bool, Array and Object implement it.
type Value interface {
	componentValue() // Sealed - only these types implement it
}

// Absent is a value that was never read at capture time.
// It is the Go spelling of ECMAScript undefined.
type Absent struct{}

func (Absent) componentValue() {}

// Null represents a JSON null.
type Null struct{}

func (Null) componentValue() {}

// String is a component string value.
type String string

func (String) componentValue() {}

// Number is a component number. Components come from a JavaScript runtime, so
// every number is an IEEE-754 double; there is no separate integer type.
type Number float64

func (Number) componentValue() {}

// Bool is a component boolean.
type Bool bool

func (Bool) componentValue() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) componentValue() {}

// Object is an immutable mapping from string keys to values that remembers
// ECMAScript enumeration order: array-index keys ascending, then all other keys
// in insertion order. A component dictionary is an Object at the top level.
//
// The zero Object is empty and ready to use.
type Object struct {
	members *orderedmap.OrderedMap[string, Value]
}

func (Object) componentValue() {}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewObject(P("language", NewString("en-US")), P("hdr", NewBool(true)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewNumber creates a Number value.
func NewNumber(f float64) Number {
	return Number(f)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewArray creates an Array from values.
func NewArray(vals ...Value) Array {
	return Array(vals)
}

// NewObject creates an Object from pairs.
//
// A repeated key keeps its first position and takes the last value, which is
// what JSON.parse does with duplicate members.
func NewObject(pairs ...Pair) Object {
	om := orderedmap.New[string, Value](len(pairs))
	hasIndexKey := false
	for _, p := range pairs {
		om.Set(p.Key, p.Value)
		if isArrayIndex(p.Key) {
			hasIndexKey = true
		}
	}
	if hasIndexKey {
		om = reorderIndexKeys(om)
	}
	return Object{members: om}
}

// reorderIndexKeys moves array-index keys to the front in ascending numeric order.
func reorderIndexKeys(om *orderedmap.OrderedMap[string, Value]) *orderedmap.OrderedMap[string, Value] {
	var indexKeys, otherKeys []string
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if isArrayIndex(pair.Key) {
			indexKeys = append(indexKeys, pair.Key)
		} else {
			otherKeys = append(otherKeys, pair.Key)
		}
	}
	slices.SortFunc(indexKeys, func(a, b string) int {
		// Canonical decimal forms: shorter is smaller, equal length compares lexically.
		if len(a) != len(b) {
			return cmp.Compare(len(a), len(b))
		}
		return strings.Compare(a, b)
	})

	out := orderedmap.New[string, Value](om.Len())
	for _, k := range append(indexKeys, otherKeys...) {
		v, _ := om.Get(k)
		out.Set(k, v)
	}
	return out
}

// isArrayIndex reports whether key is the canonical decimal form of an
// integer in [0, 2^32-2], the keys ECMAScript enumerates before all others.
func isArrayIndex(key string) bool {
	if key == "" || len(key) > 10 {
		return false
	}
	if len(key) > 1 && key[0] == '0' {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	return err == nil && n < 1<<32-1
}

// Len returns the number of members.
func (o Object) Len() int {
	if o.members == nil {
		return 0
	}
	return o.members.Len()
}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	if o.members == nil {
		return nil, false
	}
	return o.members.Get(key)
}

// Has reports whether key is an own member, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns member keys in enumeration order.
func (o Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// SortedKeys returns keys in UTF-16 code unit order, the order
// Array.prototype.sort gives string keys.
// CRITICAL: Go's sort.Strings uses UTF-8 byte order which differs above U+FFFF.
func (o Object) SortedKeys() []string {
	keys := o.Keys()
	SortKeys(keys)
	return keys
}

// Range calls fn for each member in enumeration order until fn returns false.
func (o Object) Range(fn func(key string, value Value) bool) {
	if o.members == nil {
		return
	}
	for pair := o.members.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// MarshalJSON implements json.Marshaler using the JSON.stringify encoding.
func (o Object) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, o), nil
}

// MarshalJSON implements json.Marshaler using the JSON.stringify encoding.
func (a Array) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, a), nil
}
