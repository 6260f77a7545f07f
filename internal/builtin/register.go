package builtin

import (
	"fmt"

	"github.com/roach88/weave/internal/registry"
)

// Scope and Version identify this catalog in serialized function
// identifiers. Version bumps when a descriptor changes shape; resolution
// of older documents falls back to structural identity.
const (
	Scope   = "weave/builtin"
	Version = "1.0.0"
)

type entry struct {
	d    registry.Descriptor
	call registry.Callable
}

func catalog() []entry {
	var entries []entry
	entries = append(entries, controlEntries()...)
	entries = append(entries, mathEntries()...)
	entries = append(entries, compareEntries()...)
	entries = append(entries, stringEntries()...)
	entries = append(entries, scratchEntries()...)
	entries = append(entries, promptEntries()...)
	return entries
}

// Register adds the whole catalog to a registry.
func Register(r *registry.Registry) error {
	for _, e := range catalog() {
		if _, err := r.Register(e.d, e.call); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry pre-loaded with the catalog.
func NewRegistry() (*registry.Registry, error) {
	r := registry.New()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
