package cli

import (
	"fmt"
	"os"

	"github.com/roach88/weave/internal/builtin"
	"github.com/roach88/weave/internal/flowdoc"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/registry"
)

// LoadResult is a fully loaded workflow: the document, the graph built
// from it, and any non-fatal diagnostics collected along the way.
type LoadResult struct {
	Document    *flowdoc.Document
	Graph       *graph.Graph
	Diagnostics []flowdoc.Diagnostic
}

// readDocument reads and schema-validates a document file without
// building a graph.
func readDocument(path string) (*flowdoc.Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := flowdoc.Validate(data); err != nil {
		return nil, data, err
	}
	doc, err := flowdoc.Parse(data)
	if err != nil {
		return nil, data, err
	}
	return doc, data, nil
}

// loadWorkflow reads, validates, and deserializes a document file
// against the built-in registry.
func loadWorkflow(path string, opts ...graph.Option) (*LoadResult, error) {
	doc, _, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	reg, err := builtin.NewRegistry()
	if err != nil {
		return nil, err
	}
	return buildGraph(doc, reg, opts...)
}

func buildGraph(doc *flowdoc.Document, reg *registry.Registry, opts ...graph.Option) (*LoadResult, error) {
	g, diags, err := flowdoc.Deserialize(doc, reg, opts...)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Document: doc, Graph: g, Diagnostics: diags}, nil
}
