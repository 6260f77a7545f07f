package registry

import (
	"errors"
	"fmt"
)

// FunctionNotFoundError reports an identifier that resolved to nothing,
// even after the structural (version-ignoring) fallback.
type FunctionNotFoundError struct {
	// Identifier is the unresolvable identifier as it appeared.
	Identifier string
}

// Error implements the error interface.
func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function not found: %s", e.Identifier)
}

// IsFunctionNotFound returns true if the error is (or wraps) a
// FunctionNotFoundError.
func IsFunctionNotFound(err error) bool {
	var fe *FunctionNotFoundError
	return errors.As(err, &fe)
}

// InvocationError reports a failure raised by (or on the way into) the
// underlying function.
type InvocationError struct {
	// Function is the identifier of the failing function.
	Function string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s: %v", e.Function, e.Err)
}

// Unwrap supports errors.Is/errors.As on the cause.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsInvocationError returns true if the error is (or wraps) an
// InvocationError.
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
