// Package graph implements the workflow execution core: nodes, edges,
// ports, and the traversal that runs them.
//
// ARCHITECTURE:
//
// A Graph is an arena of id-addressed Nodes. Each Node wraps one function
// invocation plus its data bindings: an input map resolving function
// parameters from the merged upstream tree (literals, dotted paths, or
// template expressions), and an output map placing the function's return
// value into the node's result tree under "output.".
//
// Execution is pull-based. GetResult resolves all upstream results
// (concurrently when a node has several input edges), binds and invokes
// the function, and memoizes the result. Execute additionally fans out:
// an ordinary node triggers every plain output edge after completing,
// while a port-driven node fires nothing by itself - its function body
// selects ports through the node context.
//
// INVARIANTS:
//   - A node's function runs at most once per result epoch, however many
//     consumers request the result concurrently. Enforced by the node's
//     execution lock around a double-checked result test.
//   - A port requested from inside the node's own still-running invocation
//     is queued, and queued ports flush in FIFO order after the result is
//     stored. Each node's pending-port queue has its own lock, distinct
//     from the execution lock, so queuing under the running invocation
//     never self-deadlocks.
//   - The node map is mutated only during construction/deserialization,
//     which is single-threaded. Execution mutates only per-node state.
//   - Failed invocations are never cached: a failed node can be retried
//     with a fresh GetResult.
//
// Loop bodies re-execute: the downstream set of a port is computed once,
// cached on the graph, and each member's result is cleared before every
// port firing, which re-arms the subgraph at O(subgraph + iterations)
// total cost instead of O(iterations x subgraph).
package graph
