package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
	"github.com/roach88/weave/internal/template"
)

// Graph is an arena of id-addressed nodes plus the run-scoped
// collaborators every node shares: the scratch space, the template
// renderer, and the optional service locator.
//
// The node map is built incrementally (AddNode/Connect/ConnectPort) and
// is immutable once execution starts; construction is single-threaded.
type Graph struct {
	nodes map[string]*Node
	order []string // node ids in insertion order

	vars     *Vars
	renderer template.Renderer
	services registry.Services

	// downstream caches the BFS-reachable set per (node, port). Graph
	// shape never changes after construction, so entries never
	// invalidate.
	downMu     sync.Mutex
	downstream map[string][]*Node
}

// Option configures a Graph.
type Option func(*Graph)

// WithRenderer replaces the template renderer (default: jinja).
func WithRenderer(r template.Renderer) Option {
	return func(g *Graph) { g.renderer = r }
}

// WithServices installs the service locator injected into functions that
// declare a services parameter.
func WithServices(s registry.Services) Option {
	return func(g *Graph) { g.services = s }
}

// New creates an empty graph.
func New(opts ...Option) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]*Node),
		vars:       NewVars(),
		downstream: make(map[string][]*Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.renderer == nil {
		r, err := template.NewJinja()
		if err != nil {
			return nil, fmt.Errorf("new graph: %w", err)
		}
		g.renderer = r
	}
	return g, nil
}

// AddNode creates a node for the given function and registers it.
// Duplicate ids are an error.
func (g *Graph) AddNode(id string, fn *registry.Function) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("add node: empty id")
	}
	if fn == nil {
		return nil, fmt.Errorf("add node %s: nil function", id)
	}
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("add node: duplicate id %s", id)
	}
	n := &Node{ID: id, Function: fn, graph: g}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n, nil
}

// Node returns the node with the given id, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Vars returns the run-scoped scratch space.
func (g *Graph) Vars() *Vars { return g.vars }

// Connect wires a plain edge between two registered nodes.
func (g *Graph) Connect(fromID, toID string) error {
	from, to, err := g.pair(fromID, toID)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	from.AddOutputConnection(to)
	return nil
}

// ConnectPort wires a named port edge between two registered nodes.
func (g *Graph) ConnectPort(fromID, port, toID string) error {
	if port == "" {
		return fmt.Errorf("connect port: empty port name")
	}
	from, to, err := g.pair(fromID, toID)
	if err != nil {
		return fmt.Errorf("connect port: %w", err)
	}
	from.AddPortConnection(port, to)
	return nil
}

func (g *Graph) pair(fromID, toID string) (*Node, *Node, error) {
	from, ok := g.nodes[fromID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown node %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown node %s", toID)
	}
	return from, to, nil
}

// Run executes the graph from the designated root and returns the root's
// result. The root pulls its own upstream inputs on demand; beyond that,
// execution reaches exactly the nodes the root's control flow triggers.
func (g *Graph) Run(ctx context.Context, rootID string) (jtree.Value, error) {
	root, ok := g.nodes[rootID]
	if !ok {
		return nil, fmt.Errorf("run: unknown root node %s", rootID)
	}
	slog.Info("graph run starting",
		"root", rootID,
		"nodes", len(g.nodes),
	)
	if err := root.Execute(ctx); err != nil {
		return nil, err
	}
	result, _ := root.Result()
	return result, nil
}

// ClearAll discards every node's result and the scratch space, re-arming
// the whole graph for a fresh run.
func (g *Graph) ClearAll() {
	for _, n := range g.nodes {
		n.ClearResult()
	}
	g.vars.Reset()
}

// ClearNodes discards the results of the given nodes only.
func ClearNodes(nodes []*Node) {
	for _, n := range nodes {
		n.ClearResult()
	}
}

// Downstream returns the set of nodes reachable from a port's immediate
// targets by following plain output edges (other nodes' ports are not
// re-entered), in BFS order. The set is invariant across a run - graph
// shape is frozen - so it is computed once and cached; loop flushing
// reuses it every iteration.
func (g *Graph) Downstream(n *Node, port string) []*Node {
	key := n.ID + "\x00" + port

	g.downMu.Lock()
	defer g.downMu.Unlock()
	if cached, ok := g.downstream[key]; ok {
		return cached
	}

	var order []*Node
	visited := make(map[*Node]bool)
	queue := append([]*Node(nil), n.portTargets[port]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		order = append(order, cur)
		queue = append(queue, cur.outputs...)
	}

	g.downstream[key] = order
	return order
}

// clearDownstream re-arms a port's cached downstream set.
func (g *Graph) clearDownstream(n *Node, port string) {
	ClearNodes(g.Downstream(n, port))
}
