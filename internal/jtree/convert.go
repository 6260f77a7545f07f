package jtree

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ToGo converts a Value to native Go types: objects become map[string]any
// (key order is lost - native maps are unordered), arrays become []any,
// scalars become bool/float64/string, null becomes nil.
//
// Used to expose a tree to the template engine, which consumes native
// values.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Object:
		out := make(map[string]any, val.Len())
		val.Range(func(k string, elem Value) bool {
			out[k] = ToGo(elem)
			return true
		})
		return out
	default:
		return nil
	}
}

// FromGo converts a native Go value into a Value. Maps are inserted in
// sorted key order (native maps carry no insertion order, and sorted is at
// least deterministic). Numeric types widen to Number; anything else is
// rejected.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case int:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case uint32:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			converted, err := FromGo(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.Set(k, converted)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported native type %T", v)
	}
}
