package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/weave/internal/jtree"
)

// Registry holds the registered functions, indexed twice: by exact
// identifier and by structural key for version-drift fallback.
//
// Thread-safety: Register is expected at startup, Resolve/Invoke at
// execution time; a RWMutex keeps late registration safe anyway.
type Registry struct {
	mu           sync.RWMutex
	byIdentifier map[string]*Function
	byStructural map[string]*Function
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byIdentifier: make(map[string]*Function),
		byStructural: make(map[string]*Function),
	}
}

// Register validates the descriptor and adds the function under both
// indexes. Registering a duplicate identifier is an error - identifiers
// are identities, silently replacing one would repoint persisted
// documents.
func (r *Registry) Register(d Descriptor, call Callable) (*Function, error) {
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if call == nil {
		return nil, fmt.Errorf("register %s: nil callable", d.Name)
	}

	fn := &Function{Descriptor: d, Call: call}
	id := d.Identifier()
	key := d.structuralKey()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byIdentifier[id]; exists {
		return nil, fmt.Errorf("register: duplicate identifier %s", id)
	}
	if _, exists := r.byStructural[key]; exists {
		return nil, fmt.Errorf("register: structural collision for %s (same scope, name, and signature)", id)
	}
	r.byIdentifier[id] = fn
	r.byStructural[key] = fn
	return fn, nil
}

// MustRegister is Register that panics on error. Intended for package-
// level catalogs whose descriptors are compile-time constants.
func (r *Registry) MustRegister(d Descriptor, call Callable) *Function {
	fn, err := r.Register(d, call)
	if err != nil {
		panic(err)
	}
	return fn
}

// Resolve finds the function for a persisted identifier. Exact identifier
// match first; on a miss (typically version drift in the scope component)
// it retries by structural identity. Only when both miss does it fail with
// FunctionNotFoundError.
func (r *Registry) Resolve(id string) (*Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if fn, ok := r.byIdentifier[id]; ok {
		return fn, nil
	}

	parsed, err := ParseIdentifier(id)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	if fn, ok := r.byStructural[parsed.Structural()]; ok {
		slog.Debug("function resolved by structural fallback",
			"requested", id,
			"resolved", fn.Identifier(),
		)
		return fn, nil
	}

	return nil, &FunctionNotFoundError{Identifier: id}
}

// Invoke calls a resolved function and waits for completion. The argument
// count must match the value-parameter count exactly; injected
// collaborators are passed through as given (the caller is responsible
// for supplying them iff the descriptor requests them).
//
// Failures are wrapped as InvocationError and are safe to retry - Invoke
// has no side effects of its own.
func Invoke(ctx context.Context, fn *Function, inv Invocation) (jtree.Value, error) {
	want := len(fn.Descriptor.ValueParams())
	if len(inv.Args) != want {
		return nil, &InvocationError{
			Function: fn.Identifier(),
			Err:      fmt.Errorf("argument count mismatch: got %d, want %d", len(inv.Args), want),
		}
	}

	result, err := fn.Call(ctx, inv)
	if err != nil {
		return nil, &InvocationError{Function: fn.Identifier(), Err: err}
	}
	if result == nil {
		result = jtree.Null{}
	}
	return result, nil
}

// Invoke is the method form of the package-level Invoke, for callers that
// already hold a registry.
func (r *Registry) Invoke(ctx context.Context, fn *Function, inv Invocation) (jtree.Value, error) {
	return Invoke(ctx, fn, inv)
}

// Describe returns all registered descriptors. Order is unspecified.
func (r *Registry) Describe() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.byIdentifier))
	for _, fn := range r.byIdentifier {
		out = append(out, fn.Descriptor)
	}
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentifier)
}
