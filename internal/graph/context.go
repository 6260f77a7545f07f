package graph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/weave/internal/jtree"
)

// NodeContext is the object injected into context-aware functions. It
// exposes the requesting node's neighbors, the run-scoped scratch space,
// and the port-trigger callback that drives all explicit control flow.
//
// One NodeContext is created per invocation and is only valid for the
// lifetime of that invocation plus its queued port flushes.
type NodeContext struct {
	ctx  context.Context
	node *Node

	// writes accumulates the scratch writes made through this context,
	// so each queued port can carry the variable state of its own
	// iteration (see pendingPort).
	writesMu sync.Mutex
	writes   map[string]jtree.Value
}

func newNodeContext(ctx context.Context, n *Node) *NodeContext {
	return &NodeContext{ctx: ctx, node: n}
}

// CurrentNode returns the node being invoked.
func (c *NodeContext) CurrentNode() *Node { return c.node }

// InputNodes returns the invoked node's upstream neighbors.
func (c *NodeContext) InputNodes() []*Node { return c.node.inputs }

// OutputNodes returns the invoked node's plain downstream neighbors.
func (c *NodeContext) OutputNodes() []*Node { return c.node.outputs }

// Var reads a run-scoped scratch variable.
func (c *NodeContext) Var(key string) (jtree.Value, bool) {
	return c.node.graph.vars.Get(key)
}

// SetVar writes a run-scoped scratch variable. The write applies
// immediately and is additionally recorded so that ports queued after it
// replay it when they flush.
func (c *NodeContext) SetVar(key string, v jtree.Value) {
	c.node.graph.vars.Set(key, v)
	c.writesMu.Lock()
	if c.writes == nil {
		c.writes = make(map[string]jtree.Value)
	}
	c.writes[key] = v
	c.writesMu.Unlock()
}

// snapshotWrites copies the writes made so far, for attachment to a
// queued port.
func (c *NodeContext) snapshotWrites() map[string]jtree.Value {
	c.writesMu.Lock()
	defer c.writesMu.Unlock()
	if len(c.writes) == 0 {
		return nil
	}
	out := make(map[string]jtree.Value, len(c.writes))
	for k, v := range c.writes {
		out[k] = v
	}
	return out
}

// ExecutePortAsync requests that the named output port fire.
//
// State machine:
//   - Function not port-driven: the port name is ignored and the request
//     degrades to fan-out-all-outputs, so a non-branching function that
//     happens to declare a context parameter behaves like a plain node.
//   - Port-driven and the node's result is already memoized: the port's
//     targets execute immediately, in registration order.
//   - Port-driven and the result is not yet set (the function is calling
//     from inside its own still-running invocation): the request is
//     queued and returns without blocking. GetResult flushes the queue
//     in FIFO order right after storing the result. Blocking here would
//     deadlock: the node's result only appears after the function - the
//     caller of this very method - returns.
func (c *NodeContext) ExecutePortAsync(port string) {
	n := c.node

	if !n.Function.Descriptor.PortDriven() {
		if _, done := n.Result(); done {
			c.fireNow(pendingPort{port: ""})
		} else {
			n.queuePort("", c.snapshotWrites())
		}
		return
	}

	if _, done := n.Result(); done {
		c.fireNow(pendingPort{port: port})
		return
	}
	n.queuePort(port, c.snapshotWrites())
}

// fireNow executes a port immediately. ExecutePortAsync has no error
// return - the trigger is a notification, not a call - so failures here
// are logged with full context rather than propagated.
func (c *NodeContext) fireNow(p pendingPort) {
	if err := c.node.firePort(c.ctx, p); err != nil {
		slog.Error("immediate port execution failed",
			"node", c.node.ID,
			"port", p.port,
			"error", err,
		)
	}
}
