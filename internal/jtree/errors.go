package jtree

import (
	"errors"
	"fmt"
)

// CoercionError reports that a value could not be converted to a requested
// parameter type. It carries both sides of the failed conversion so callers
// can surface "what was bound to what" without re-deriving it.
type CoercionError struct {
	// Target is the type the caller asked for.
	Target Type

	// Have describes the value that resisted conversion.
	Have string

	// Reason is a human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s to %s: %s", e.Have, e.Target, e.Reason)
}

// IsCoercionError returns true if the error is (or wraps) a CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}

func newCoercionError(v Value, target Type, reason string) *CoercionError {
	return &CoercionError{Target: target, Have: describe(v), Reason: reason}
}

// describe renders a short human-readable tag+preview of a value for errors.
func describe(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return fmt.Sprintf("bool(%v)", bool(val))
	case Number:
		return fmt.Sprintf("number(%s)", formatNumber(float64(val)))
	case String:
		s := string(val)
		if len(s) > 32 {
			s = s[:32] + "..."
		}
		return fmt.Sprintf("string(%q)", s)
	case Array:
		return fmt.Sprintf("array(len=%d)", len(val))
	case Object:
		return fmt.Sprintf("object(len=%d)", val.Len())
	default:
		return fmt.Sprintf("%T", v)
	}
}
