package flowdoc

import (
	"fmt"
	"time"

	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/jtree"
)

// SerializeOption configures Serialize.
type SerializeOption func(*serializeConfig)

type serializeConfig struct {
	withResults bool
	metadata    map[string]string
	now         func() time.Time
}

// WithResults includes each node's memoized result in the document, so
// a previously-run flow can be inspected or resumed without
// re-executing.
func WithResults() SerializeOption {
	return func(c *serializeConfig) { c.withResults = true }
}

// WithMetadata attaches free-form metadata to the document envelope.
func WithMetadata(md map[string]string) SerializeOption {
	return func(c *serializeConfig) { c.metadata = md }
}

// WithClock overrides the createdAt timestamp source. Tests pin it.
func WithClock(now func() time.Time) SerializeOption {
	return func(c *serializeConfig) { c.now = now }
}

// Serialize renders a graph as a document. Nodes appear in insertion
// order; edges are recorded as ordered target-id lists so connection
// order survives the round trip.
func Serialize(g *graph.Graph, flowName string, opts ...SerializeOption) (*Document, error) {
	cfg := serializeConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc := &Document{
		Version:   FormatVersion,
		FlowName:  flowName,
		CreatedAt: cfg.now().UTC(),
		Metadata:  cfg.metadata,
	}

	for _, n := range g.Nodes() {
		nd := NodeDoc{
			ID:                   n.ID,
			Function:             n.Function.Identifier(),
			InputMap:             pathMapsOut(n.InputMap),
			OutputMap:            pathMapsOut(n.OutputMap),
			Ports:                n.Ports,
			MergeOutputWithInput: n.MergeOutputWithInput,
			X:                    n.X,
			Y:                    n.Y,
		}
		for _, target := range n.OutputNodes() {
			nd.Outputs = append(nd.Outputs, target.ID)
		}
		for _, port := range n.PortNames() {
			pt := PortTargetsDoc{Port: port}
			for _, target := range n.PortTargets(port) {
				pt.Targets = append(pt.Targets, target.ID)
			}
			nd.PortTargets = append(nd.PortTargets, pt)
		}
		if cfg.withResults {
			if result, ok := n.Result(); ok {
				raw, err := jtree.Marshal(result)
				if err != nil {
					return nil, fmt.Errorf("serialize node %s result: %w", n.ID, err)
				}
				nd.Result = raw
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

func pathMapsOut(maps []graph.PathMap) []PathMapDoc {
	if len(maps) == 0 {
		return nil
	}
	out := make([]PathMapDoc, len(maps))
	for i, m := range maps {
		out[i] = PathMapDoc{From: m.From, To: m.To}
	}
	return out
}
