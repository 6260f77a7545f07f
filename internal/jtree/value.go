package jtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is a sealed interface over the JSON-like value variants.
// Only Null, Bool, Number, String, Array, and Object implement it.
type Value interface {
	jtreeValue() // Sealed - only these types implement it
}

// Null represents a JSON null.
// Using an explicit type (rather than a nil Value) keeps "absent" and
// "present but null" distinguishable throughout the engine.
type Null struct{}

func (Null) jtreeValue() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) jtreeValue() {}

// Number represents a JSON number. All numerics are float64 internally;
// integer fidelity up to 2^53 is preserved, which covers loop counters,
// indices, and every arithmetic builtin.
type Number float64

func (Number) jtreeValue() {}

// String represents a JSON string.
type String string

func (String) jtreeValue() {}

// Array represents an ordered JSON array.
type Array []Value

func (Array) jtreeValue() {}

// Object represents a JSON object with insertion-ordered keys.
// The zero Object is not usable; construct with NewObject.
//
// Object is a thin handle around a shared ordered map, so copying an
// Object copies the handle, not the entries. Use Clone for a deep copy.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

func (Object) jtreeValue() {}

// NewObject creates an empty insertion-ordered object.
func NewObject() Object {
	return Object{m: orderedmap.New[string, Value]()}
}

// Set stores a key. An existing key is overwritten in place and keeps its
// original position in the iteration order.
func (o Object) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Get returns the value for key, and whether the key is present.
func (o Object) Get(key string) (Value, bool) {
	if o.m == nil {
		return Null{}, false
	}
	v, ok := o.m.Get(key)
	if !ok {
		return Null{}, false
	}
	return v, true
}

// Delete removes a key. Removing an absent key is a no-op.
func (o Object) Delete(key string) {
	if o.m != nil {
		o.m.Delete(key)
	}
}

// Len returns the number of keys.
func (o Object) Len() int {
	if o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o Object) Keys() []string {
	if o.m == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each key in insertion order until fn returns false.
func (o Object) Range(fn func(key string, v Value) bool) {
	if o.m == nil {
		return
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy of v. Scalars are returned as-is; arrays and
// objects are copied recursively so the result shares no containers with v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Null, Bool, Number, String:
		return val
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		out := NewObject()
		val.Range(func(k string, elem Value) bool {
			out.Set(k, Clone(elem))
			return true
		})
		return out
	default:
		// Unreachable for sealed values; keep Null as a safe fallback.
		return Null{}
	}
}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler for Object, preserving key order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var rangeErr error
	o.Range(func(k string, v Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyBytes, err := json.Marshal(k)
		if err != nil {
			rangeErr = fmt.Errorf("marshal key %q: %w", k, err)
			return false
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := Marshal(v)
		if err != nil {
			rangeErr = fmt.Errorf("marshal value for key %q: %w", k, err)
			return false
		}
		buf.Write(valBytes)
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal serializes a Value to JSON bytes, preserving object key order.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Number:
		return []byte(formatNumber(float64(val))), nil
	case String:
		return json.Marshal(string(val))
	case Array:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := Marshal(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// formatNumber renders a float the way encoding/json does: integral values
// without a fraction part, everything else in shortest round-trip form.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FromJSON parses JSON bytes into a Value. Object key order in the input
// document is preserved (a token-level decode, not map-based).
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

// decodeValue reads one complete value from the decoder's token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("object key %q: %w", key, err)
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return nil, fmt.Errorf("unexpected JSON token %v (%T)", tok, tok)
	}
}
