package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// PathMap is one directed mapping between a source path (or literal, or
// template expression) and a destination path or parameter name. Order in
// a mapping list is insertion order; duplicates on the same destination
// resolve last-wins.
type PathMap struct {
	From string `json:"From"`
	To   string `json:"To"`
}

// Node is a graph vertex wrapping one function invocation plus its data
// bindings and edges.
//
// Identity fields (ID, Function, maps, ports, position) are set at
// construction/deserialization time and never mutated afterwards.
// Execution mutates only the memoized result and the pending-port queue,
// each behind its own lock.
type Node struct {
	// ID is unique within the owning graph.
	ID string

	// Function is the resolved registry entry this node invokes.
	Function *registry.Function

	// InputMap binds function parameters (To) from sources (From):
	// a JSON literal, a dotted path into the formatted input tree, or a
	// template expression.
	InputMap []PathMap

	// OutputMap places paths of the function's raw return value (From)
	// into this node's result tree under "output." (To).
	OutputMap []PathMap

	// MergeOutputWithInput makes the final result additionally contain
	// the merged upstream tree (the node's own output wins on conflict).
	MergeOutputWithInput bool

	// Ports overrides the function descriptor's declared ports when
	// non-empty. Display metadata only: port-driven behavior follows the
	// descriptor.
	Ports []string

	// X, Y is the editor position. Carried for round-tripping; no effect
	// on execution.
	X, Y float64

	graph       *Graph
	inputs      []*Node
	outputs     []*Node
	portTargets map[string][]*Node
	portOrder   []string

	// result holds the memoized output. Atomic so the fast path can read
	// it without taking execMu; writes happen only under execMu.
	result atomic.Pointer[resultCell]

	// execMu serializes invocation per result epoch.
	execMu sync.Mutex

	// pendMu guards the pending-port queue. Distinct from execMu so a
	// function can queue ports while its own node holds execMu.
	pendMu  sync.Mutex
	pending []pendingPort

	// fired marks the ports that have fired in the current result epoch.
	// A repeat firing of the same port re-arms the port's downstream set
	// first; a first firing does not, so one-shot branches leave
	// already-computed targets memoized. Guarded by pendMu.
	fired map[string]bool
}

type resultCell struct {
	v jtree.Value
}

// pendingPort is one queued port trigger, together with the scratch
// variable writes the queuing invocation had made by the time it queued.
// Replaying the writes at flush time lets a loop body observe the loop
// variable of its own iteration even though all iterations flush after
// the loop function returned.
type pendingPort struct {
	port string // "" means fan-out-all (compat path for non-port-driven functions)
	vars map[string]jtree.Value
}

// Result returns the memoized result, if present.
func (n *Node) Result() (jtree.Value, bool) {
	if cell := n.result.Load(); cell != nil {
		return cell.v, true
	}
	return nil, false
}

// SetResult installs a result directly, bypassing execution. Used by the
// deserializer to restore a persisted result.
func (n *Node) SetResult(v jtree.Value) {
	n.result.Store(&resultCell{v: v})
}

// ClearResult discards the memoized result, starting a new result epoch.
func (n *Node) ClearResult() {
	n.result.Store(nil)
	n.pendMu.Lock()
	n.fired = nil
	n.pendMu.Unlock()
}

// InputNodes returns the upstream neighbors in connection order.
func (n *Node) InputNodes() []*Node { return n.inputs }

// OutputNodes returns the plain downstream neighbors in connection order.
func (n *Node) OutputNodes() []*Node { return n.outputs }

// PortTargets returns the targets registered under a port, in
// registration order.
func (n *Node) PortTargets(port string) []*Node { return n.portTargets[port] }

// PortNames returns the ports that have at least one target, in first-
// registration order.
func (n *Node) PortNames() []string { return n.portOrder }

// AddOutputConnection wires a plain edge n -> target and mirrors it into
// target's input edges. Construction-time only.
func (n *Node) AddOutputConnection(target *Node) {
	n.outputs = append(n.outputs, target)
	target.inputs = append(target.inputs, n)
}

// AddPortConnection wires n's named port to target and mirrors it into
// target's input edges. Construction-time only.
func (n *Node) AddPortConnection(port string, target *Node) {
	if n.portTargets == nil {
		n.portTargets = make(map[string][]*Node)
	}
	if _, seen := n.portTargets[port]; !seen {
		n.portOrder = append(n.portOrder, port)
	}
	n.portTargets[port] = append(n.portTargets[port], target)
	target.inputs = append(target.inputs, n)
}

// GetResult returns the node's result, computing it on first request.
//
// Protocol: fast-path cached result; resolve upstream results (all input
// edges, concurrently when there are several); acquire the execution
// lock; re-check the cache; bind parameters; invoke; shape the result
// tree; store it; release the lock; flush ports queued during the
// invocation.
//
// Errors are not cached - a failed node retries on the next call.
func (n *Node) GetResult(ctx context.Context) (jtree.Value, error) {
	if v, ok := n.Result(); ok {
		return v, nil
	}

	upstream, err := n.resolveUpstream(ctx)
	if err != nil {
		return nil, err
	}

	n.execMu.Lock()
	if v, ok := n.Result(); ok {
		// Another requester computed it while we resolved upstream.
		n.execMu.Unlock()
		return v, nil
	}

	result, err := n.invoke(ctx, upstream)
	if err != nil {
		n.execMu.Unlock()
		return nil, n.execErr(err)
	}
	n.SetResult(result)
	n.execMu.Unlock()

	slog.Debug("node executed",
		"node", n.ID,
		"function", n.Function.Identifier(),
	)

	// Ports queued by the invocation fire now, after the result is
	// visible, so their targets can pull it without deadlocking.
	if err := n.flushPending(ctx); err != nil {
		return result, n.execErr(err)
	}
	return result, nil
}

// Execute computes the node's result and propagates control flow: a
// non-port-driven node triggers every plain output edge in order; a
// port-driven node fires nothing here - its function selected ports
// during the invocation.
func (n *Node) Execute(ctx context.Context) error {
	if _, err := n.GetResult(ctx); err != nil {
		return err
	}
	if n.Function.Descriptor.PortDriven() {
		return nil
	}
	for _, target := range n.outputs {
		if err := target.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// resolveUpstream merges all upstream results into one tree. Zero input
// edges yield an empty tree; several input edges resolve concurrently and
// merge in connection order, so the merge outcome is deterministic
// regardless of completion order.
func (n *Node) resolveUpstream(ctx context.Context) (jtree.Object, error) {
	merged := jtree.NewObject()
	switch len(n.inputs) {
	case 0:
		return merged, nil
	case 1:
		r, err := n.inputs[0].GetResult(ctx)
		if err != nil {
			return jtree.Object{}, err
		}
		if obj, ok := r.(jtree.Object); ok {
			jtree.Merge(merged, obj)
		}
		return merged, nil
	}

	results := make([]jtree.Value, len(n.inputs))
	errs := make([]error, len(n.inputs))
	var wg sync.WaitGroup
	for i, in := range n.inputs {
		wg.Add(1)
		go func(i int, in *Node) {
			defer wg.Done()
			results[i], errs[i] = in.GetResult(ctx)
		}(i, in)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return jtree.Object{}, fmt.Errorf("upstream %s: %w", n.inputs[i].ID, err)
		}
	}
	for _, r := range results {
		if obj, ok := r.(jtree.Object); ok {
			jtree.Merge(merged, obj)
		}
	}
	return merged, nil
}

// invoke binds parameters, calls the function, and shapes its return
// value into the node's result tree. Caller holds execMu.
func (n *Node) invoke(ctx context.Context, upstream jtree.Object) (jtree.Value, error) {
	// The tree exposed to bindings: {input: <merged upstream output>}.
	formatted := jtree.NewObject()
	if out, ok := upstream.Get("output"); ok {
		formatted.Set("input", out)
	} else {
		formatted.Set("input", jtree.NewObject())
	}

	args, err := n.bindArgs(formatted)
	if err != nil {
		return nil, err
	}

	inv := registry.Invocation{Args: args}
	var nc *NodeContext
	if n.Function.Descriptor.NeedsGraphContext() {
		nc = newNodeContext(ctx, n)
		inv.Graph = nc
	}
	if n.Function.Descriptor.NeedsServices() {
		inv.Services = n.graph.services
	}

	raw, err := registry.Invoke(ctx, n.Function, inv)
	if err != nil {
		return nil, err
	}

	result := jtree.NewObject()
	if rawObj, isObj := raw.(jtree.Object); isObj {
		if len(n.OutputMap) == 0 {
			// No mapping declared: the whole return object becomes the
			// output subtree.
			result.Set("output", jtree.Clone(rawObj))
		} else {
			for _, entry := range n.OutputMap {
				v, ok := jtree.GetPath(rawObj, entry.From)
				if !ok {
					continue
				}
				if err := jtree.SetPath(result, "output."+entry.To, jtree.Clone(v)); err != nil {
					return nil, fmt.Errorf("output map %q -> %q: %w", entry.From, entry.To, err)
				}
			}
		}
	} else if _, isNull := raw.(jtree.Null); !isNull {
		if err := jtree.SetPath(result, "output.result", raw); err != nil {
			return nil, err
		}
	}

	if n.MergeOutputWithInput {
		withInput := jtree.Clone(upstream).(jtree.Object)
		jtree.Merge(withInput, result)
		result = withInput
	}
	return result, nil
}

// queuePort appends a pending trigger. Called from ExecutePortAsync while
// the node's own invocation is still running.
func (n *Node) queuePort(port string, vars map[string]jtree.Value) {
	n.pendMu.Lock()
	defer n.pendMu.Unlock()
	n.pending = append(n.pending, pendingPort{port: port, vars: vars})
}

// flushPending drains the queue in FIFO order, firing each port
// synchronously. On failure the remaining queue is discarded: the epoch
// is already inconsistent and stale triggers must not fire on a retry.
func (n *Node) flushPending(ctx context.Context) error {
	for {
		n.pendMu.Lock()
		if len(n.pending) == 0 {
			n.pendMu.Unlock()
			return nil
		}
		next := n.pending[0]
		n.pending = n.pending[1:]
		n.pendMu.Unlock()

		if err := n.firePort(ctx, next); err != nil {
			n.pendMu.Lock()
			n.pending = nil
			n.pendMu.Unlock()
			return err
		}
	}
}

// firePort executes one port trigger: restore the variable writes that
// accompanied it, re-arm the port's downstream set, then run the targets
// in registration order.
func (n *Node) firePort(ctx context.Context, p pendingPort) error {
	n.graph.vars.apply(p.vars)

	if p.port == "" {
		// Fan-out-all: the compat path for non-port-driven functions that
		// declared a context parameter.
		for _, target := range n.outputs {
			if err := target.Execute(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	targets, ok := n.portTargets[p.port]
	if !ok {
		slog.Warn("port has no targets",
			"node", n.ID,
			"port", p.port,
		)
		return nil
	}

	// Re-arming happens between firings of the same port, not before the
	// first one: iteration 2+ of a loop clears the body so it runs again,
	// while a one-shot branch reuses whatever its targets already
	// computed. The downstream set is cached; only the clears repeat.
	n.pendMu.Lock()
	refire := n.fired[p.port]
	if n.fired == nil {
		n.fired = make(map[string]bool)
	}
	n.fired[p.port] = true
	n.pendMu.Unlock()
	if refire {
		n.graph.clearDownstream(n, p.port)
	}

	slog.Debug("port fired",
		"node", n.ID,
		"port", p.port,
		"targets", len(targets),
	)
	for _, target := range targets {
		if err := target.Execute(ctx); err != nil {
			return fmt.Errorf("port %q: %w", p.port, err)
		}
	}
	return nil
}
