package ir

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when component JSON is valid but not an object.
var ErrNotObject = errors.New("components must be a JSON object")

// ParseObject decodes a component dictionary from JSON.
//
// Member order is taken from the document (gjson walks the raw bytes), so
// nested objects re-encode exactly as JSON.stringify would after JSON.parse.
// Numbers decode to float64 like any JavaScript runtime.
func ParseObject(data []byte) (Object, error) {
	v, err := ParseValue(data)
	if err != nil {
		return Object{}, err
	}
	obj, ok := v.(Object)
	if !ok {
		return Object{}, ErrNotObject
	}
	return obj, nil
}

// ParseValue decodes any JSON value into a Value.
func ParseValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON: %.40q", data)
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// fromResult converts a gjson result tree into a Value.
func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := Array{}
			r.ForEach(func(_, elem gjson.Result) bool {
				arr = append(arr, fromResult(elem))
				return true
			})
			return arr
		}
		var pairs []Pair
		r.ForEach(func(key, elem gjson.Result) bool {
			pairs = append(pairs, Pair{Key: key.Str, Value: fromResult(elem)})
			return true
		})
		return NewObject(pairs...)
	default:
		return Absent{}
	}
}
