package graph

import (
	"sync"

	"github.com/roach88/weave/internal/jtree"
)

// Vars is the run-scoped mutable scratch space shared by every node
// context in a graph. Control-flow functions publish loop state here
// (For writes "index"), and ordinary functions may keep counters or
// accumulators across invocations.
//
// Thread-safety: guarded by its own mutex; nodes on independent branches
// read and write it concurrently.
type Vars struct {
	mu sync.Mutex
	m  map[string]jtree.Value
}

// NewVars creates an empty scratch space.
func NewVars() *Vars {
	return &Vars{m: make(map[string]jtree.Value)}
}

// Get reads a key.
func (v *Vars) Get(key string) (jtree.Value, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.m[key]
	return val, ok
}

// Set writes a key.
func (v *Vars) Set(key string, val jtree.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m[key] = val
}

// apply writes a batch of keys. Used when a queued port flushes to
// restore the variable writes that accompanied the queue request.
func (v *Vars) apply(overlay map[string]jtree.Value) {
	if len(overlay) == 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, val := range overlay {
		v.m[k] = val
	}
}

// Reset clears all keys. Called by Graph.ClearAll for a fresh run.
func (v *Vars) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m = make(map[string]jtree.Value)
}
