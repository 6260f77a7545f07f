package graph

import (
	"errors"
	"fmt"
)

// ExecutionError reports a node whose invocation failed. It carries the
// node id and function identifier so a failure can be located in the
// graph without a stack trace.
type ExecutionError struct {
	// NodeID is the failing node.
	NodeID string

	// Function is the node's function identifier.
	Function string

	// Err is the underlying cause (coercion failure, invocation error,
	// or a failed upstream).
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.Function, e.Err)
}

// Unwrap supports errors.Is/errors.As on the cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError returns true if the error is (or wraps) an
// ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

func (n *Node) execErr(err error) error {
	// Avoid double-wrapping when an upstream node already attributed the
	// failure - the outermost error keeps the full chain anyway.
	var ee *ExecutionError
	if errors.As(err, &ee) && ee.NodeID == n.ID {
		return err
	}
	return &ExecutionError{NodeID: n.ID, Function: n.Function.Identifier(), Err: err}
}
