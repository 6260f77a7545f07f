package jtree

import (
	"math"
	"strconv"
	"strings"
)

// Type names the parameter types a function descriptor may declare.
// These are wire-stable: they appear in serialized function identifiers.
type Type string

const (
	// TypeAny accepts any value unchanged.
	TypeAny Type = "any"
	// TypeBool accepts literal booleans and exact numeric equivalents.
	TypeBool Type = "bool"
	// TypeNumber accepts numbers, booleans are NOT numbers, numeric
	// strings parse as a last resort.
	TypeNumber Type = "number"
	// TypeInt is TypeNumber restricted to integral values.
	TypeInt Type = "int"
	// TypeString accepts strings; scalars render to their JSON text.
	TypeString Type = "string"
	// TypeArray accepts arrays only.
	TypeArray Type = "array"
	// TypeObject accepts objects only.
	TypeObject Type = "object"
	// TypeNone marks a function with no return value.
	TypeNone Type = "none"
)

// ValidTypes enumerates the allowed declared types for parameters and
// return values.
var ValidTypes = map[Type]bool{
	TypeAny:    true,
	TypeBool:   true,
	TypeNumber: true,
	TypeInt:    true,
	TypeString: true,
	TypeArray:  true,
	TypeObject: true,
	TypeNone:   true,
}

// Zero returns the default value for a declared type: the value a
// parameter takes when no input mapping binds it.
func Zero(t Type) Value {
	switch t {
	case TypeBool:
		return Bool(false)
	case TypeNumber, TypeInt:
		return Number(0)
	case TypeString:
		return String("")
	case TypeArray:
		return Array{}
	case TypeObject:
		return NewObject()
	default:
		return Null{}
	}
}

// Coerce converts v to the target type, or returns a CoercionError when no
// lossless-enough conversion exists.
//
// The ladder, in order:
//   - any: identity.
//   - number/int: numbers pass (int additionally requires an integral
//     value); numeric strings parse as a last resort. Booleans do NOT
//     convert to numbers.
//   - bool: literal booleans pass; numbers convert only when exactly 0 or
//     1; strings convert only when literally "true"/"false" or when they
//     parse to exactly 0 or 1. Truthiness is never inferred.
//   - string: strings pass; null/bool/number render to their JSON text.
//     Containers do not flatten to strings.
//   - array/object: exact tag match only.
func Coerce(v Value, target Type) (Value, error) {
	if v == nil {
		v = Null{}
	}
	switch target {
	case TypeAny, "":
		return v, nil

	case TypeNumber, TypeInt:
		n, err := coerceNumber(v, target)
		if err != nil {
			return nil, err
		}
		if target == TypeInt && float64(n) != math.Trunc(float64(n)) {
			return nil, newCoercionError(v, target, "value has a fractional part")
		}
		return n, nil

	case TypeBool:
		return coerceBool(v)

	case TypeString:
		switch val := v.(type) {
		case String:
			return val, nil
		case Null:
			return String("null"), nil
		case Bool:
			return String(strconv.FormatBool(bool(val))), nil
		case Number:
			return String(formatNumber(float64(val))), nil
		default:
			return nil, newCoercionError(v, target, "containers do not flatten to strings")
		}

	case TypeArray:
		if arr, ok := v.(Array); ok {
			return arr, nil
		}
		return nil, newCoercionError(v, target, "not an array")

	case TypeObject:
		if obj, ok := v.(Object); ok {
			return obj, nil
		}
		return nil, newCoercionError(v, target, "not an object")

	default:
		return nil, newCoercionError(v, target, "unknown target type")
	}
}

func coerceNumber(v Value, target Type) (Number, error) {
	switch val := v.(type) {
	case Number:
		return val, nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return 0, newCoercionError(v, target, "string does not parse as a number")
		}
		return Number(f), nil
	default:
		return 0, newCoercionError(v, target, "not a number")
	}
}

func coerceBool(v Value) (Value, error) {
	switch val := v.(type) {
	case Bool:
		return val, nil
	case Number:
		switch float64(val) {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		}
		return nil, newCoercionError(v, TypeBool, "only 0 and 1 convert to bool")
	case String:
		switch strings.TrimSpace(string(val)) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64); err == nil {
			switch f {
			case 0:
				return Bool(false), nil
			case 1:
				return Bool(true), nil
			}
		}
		return nil, newCoercionError(v, TypeBool, "truthiness is not inferred")
	default:
		return nil, newCoercionError(v, TypeBool, "not a boolean")
	}
}
