package registry

import (
	"context"
	"fmt"

	"github.com/roach88/weave/internal/jtree"
)

// ParamKind distinguishes user-mapped value parameters from the two
// auto-injected kinds.
type ParamKind int

const (
	// KindValue is an ordinary parameter bound from the node's input map.
	KindValue ParamKind = iota
	// KindGraphContext injects the node context. Never user-mapped.
	KindGraphContext
	// KindServices injects the service locator. Never user-mapped.
	KindServices
)

// Param describes one declared function parameter.
type Param struct {
	// Name is the parameter name input mappings target.
	Name string

	// Type is the declared value type (meaningful for KindValue only).
	Type jtree.Type

	// Kind marks value vs. injected parameters.
	Kind ParamKind

	// Optional parameters take Default when no mapping binds them.
	Optional bool

	// Default overrides the type's zero value for an unbound optional
	// parameter. Nil means "zero value of Type".
	Default jtree.Value
}

// Descriptor describes one registrable function.
type Descriptor struct {
	// Scope is the declaring scope, e.g. "weave/builtin".
	Scope string

	// Version is the scope's version info. Tolerated to drift: resolution
	// falls back to structural identity when the version does not match.
	Version string

	// Name is the function name within the scope.
	Name string

	// Params are the declared parameters, in calling order.
	Params []Param

	// ReturnType declares the result type (jtree.TypeNone for none).
	ReturnType jtree.Type

	// Ports lists declared output port names, in declaration order.
	// Non-empty marks the function port-driven.
	Ports []string
}

// PortDriven reports whether the function declares output ports.
func (d *Descriptor) PortDriven() bool {
	return len(d.Ports) > 0
}

// ValueParams returns the user-mappable parameters in declaration order.
func (d *Descriptor) ValueParams() []Param {
	out := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Kind == KindValue {
			out = append(out, p)
		}
	}
	return out
}

// NeedsGraphContext reports whether any parameter requests the node
// context.
func (d *Descriptor) NeedsGraphContext() bool {
	for _, p := range d.Params {
		if p.Kind == KindGraphContext {
			return true
		}
	}
	return false
}

// NeedsServices reports whether any parameter requests the service
// locator.
func (d *Descriptor) NeedsServices() bool {
	for _, p := range d.Params {
		if p.Kind == KindServices {
			return true
		}
	}
	return false
}

// validate checks a descriptor for registration.
func (d *Descriptor) validate() error {
	if d.Scope == "" || d.Name == "" {
		return fmt.Errorf("descriptor requires scope and name")
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Kind != KindValue {
			continue
		}
		if p.Name == "" {
			return fmt.Errorf("function %s: unnamed value parameter", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("function %s: duplicate parameter %q", d.Name, p.Name)
		}
		seen[p.Name] = true
		if !jtree.ValidTypes[p.Type] {
			return fmt.Errorf("function %s: parameter %q has unknown type %q", d.Name, p.Name, p.Type)
		}
	}
	seenPorts := make(map[string]bool, len(d.Ports))
	for _, port := range d.Ports {
		if port == "" {
			return fmt.Errorf("function %s: empty port name", d.Name)
		}
		if seenPorts[port] {
			return fmt.Errorf("function %s: duplicate port %q", d.Name, port)
		}
		seenPorts[port] = true
	}
	return nil
}

// GraphContext is the engine-facing view a port-driven or context-aware
// function receives. It is implemented by the graph package's node
// context; declaring it here keeps function packages free of a dependency
// on the engine internals.
type GraphContext interface {
	// ExecutePortAsync requests that the named output port fire. Called
	// during the owning node's own invocation it queues; called after the
	// node has a result it executes immediately.
	ExecutePortAsync(port string)

	// Var reads a run-scoped scratch variable.
	Var(key string) (jtree.Value, bool)

	// SetVar writes a run-scoped scratch variable.
	SetVar(key string, v jtree.Value)
}

// Services is the opaque service locator functions may request. The engine
// does not interpret what Lookup returns.
type Services interface {
	Lookup(capability string) (any, error)
}

// Invocation carries the bound arguments and injected collaborators for
// one call.
type Invocation struct {
	// Args holds one value per KindValue parameter, in declaration order,
	// already coerced to the declared types.
	Args []jtree.Value

	// Graph is non-nil iff the descriptor declares a KindGraphContext
	// parameter.
	Graph GraphContext

	// Services is non-nil iff the descriptor declares a KindServices
	// parameter.
	Services Services
}

// Callable is the native implementation behind a descriptor. It returns
// when the work is complete - the engine never fire-and-forgets a plain
// function.
type Callable func(ctx context.Context, inv Invocation) (jtree.Value, error)

// Function pairs a descriptor with its callable.
type Function struct {
	Descriptor Descriptor
	Call       Callable
}

// Identifier returns the stable serialized identifier for the function.
func (f *Function) Identifier() string {
	return f.Descriptor.Identifier()
}
