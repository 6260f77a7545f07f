package flowdoc

import (
	"fmt"
	"log/slog"

	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// Diagnostic reports one non-fatal problem encountered while loading a
// document: an unresolvable function, a dangling edge, a result that
// does not parse. The affected node or edge is skipped; loading
// continues.
type Diagnostic struct {
	NodeID     string
	FunctionID string
	Err        error
}

func (d Diagnostic) String() string {
	if d.FunctionID != "" {
		return fmt.Sprintf("node %s (%s): %v", d.NodeID, d.FunctionID, d.Err)
	}
	return fmt.Sprintf("node %s: %v", d.NodeID, d.Err)
}

// Deserialize rebuilds a graph from a document against a registry.
//
// Nodes whose functions cannot be resolved are skipped with a
// diagnostic, as are edges that reference skipped or unknown nodes.
// The returned graph contains everything that did load; callers that
// need an all-or-nothing load check len(diags) == 0.
func Deserialize(doc *Document, reg *registry.Registry, opts ...graph.Option) (*graph.Graph, []Diagnostic, error) {
	g, err := graph.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	var diags []Diagnostic

	// First pass: nodes. Edges wait until every loadable node exists.
	for _, nd := range doc.Nodes {
		fn, err := reg.Resolve(nd.Function)
		if err != nil {
			diags = append(diags, Diagnostic{NodeID: nd.ID, FunctionID: nd.Function, Err: err})
			continue
		}
		n, err := g.AddNode(nd.ID, fn)
		if err != nil {
			return nil, diags, fmt.Errorf("deserialize: %w", err)
		}
		n.InputMap = pathMapsIn(nd.InputMap)
		n.OutputMap = pathMapsIn(nd.OutputMap)
		n.Ports = nd.Ports
		n.MergeOutputWithInput = nd.MergeOutputWithInput
		n.X, n.Y = nd.X, nd.Y

		if len(nd.Result) > 0 {
			v, err := jtree.FromJSON(nd.Result)
			if err != nil {
				diags = append(diags, Diagnostic{NodeID: nd.ID, FunctionID: nd.Function, Err: fmt.Errorf("stored result: %w", err)})
			} else {
				n.SetResult(v)
			}
		}
	}

	// Second pass: edges. Both endpoints must have loaded.
	for _, nd := range doc.Nodes {
		if _, ok := g.Node(nd.ID); !ok {
			continue
		}
		for _, targetID := range nd.Outputs {
			if err := g.Connect(nd.ID, targetID); err != nil {
				diags = append(diags, Diagnostic{NodeID: nd.ID, Err: fmt.Errorf("edge to %s dropped: %w", targetID, err)})
			}
		}
		for _, pt := range nd.PortTargets {
			for _, targetID := range pt.Targets {
				if err := g.ConnectPort(nd.ID, pt.Port, targetID); err != nil {
					diags = append(diags, Diagnostic{NodeID: nd.ID, Err: fmt.Errorf("port %q edge to %s dropped: %w", pt.Port, targetID, err)})
				}
			}
		}
	}

	if len(diags) > 0 {
		slog.Warn("document loaded with diagnostics",
			"flow", doc.FlowName,
			"diagnostics", len(diags),
		)
	}
	return g, diags, nil
}

func pathMapsIn(maps []PathMapDoc) []graph.PathMap {
	if len(maps) == 0 {
		return nil
	}
	out := make([]graph.PathMap, len(maps))
	for i, m := range maps {
		out[i] = graph.PathMap{From: m.From, To: m.To}
	}
	return out
}
