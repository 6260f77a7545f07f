package flowdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/weave/internal/jtree"
)

// FormatVersion is the document format version this build writes.
const FormatVersion = "1"

// Document is the persisted form of a graph.
type Document struct {
	Version   string            `json:"version"`
	FlowName  string            `json:"flowName"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Nodes     []NodeDoc         `json:"nodes"`
}

// NodeDoc is one persisted node.
type NodeDoc struct {
	ID string `json:"id"`

	// Function is the stable function identifier, re-resolvable against
	// a possibly-different build of the registry.
	Function string `json:"function"`

	InputMap  []PathMapDoc `json:"inputMap,omitempty"`
	OutputMap []PathMapDoc `json:"outputMap,omitempty"`

	// Ports are the declared output port names, carried for display.
	Ports []string `json:"declaredOutputPorts,omitempty"`

	MergeOutputWithInput bool `json:"mergeOutputWithInput,omitempty"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Outputs lists plain-edge target node ids in connection order.
	Outputs []string `json:"outputs,omitempty"`

	// PortTargets lists port-edge targets per port, ports in first-
	// registration order, targets in connection order.
	PortTargets []PortTargetsDoc `json:"portTargets,omitempty"`

	// Result is the node's last computed result, when the document was
	// serialized with results. Kept as raw JSON so key order survives
	// the round trip.
	Result json.RawMessage `json:"result,omitempty"`
}

// PathMapDoc is one persisted input or output mapping.
type PathMapDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PortTargetsDoc is the persisted target list of one port.
type PortTargetsDoc struct {
	Port    string   `json:"port"`
	Targets []string `json:"targets"`
}

// Marshal renders the document as indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a document from JSON. Unknown fields are rejected so a
// typo'd hand-edited document fails loudly instead of half-loading.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// DocumentHash returns the canonical-JSON content hash of the document's
// graph content. The createdAt timestamp is excluded, so re-serializing
// an unchanged graph at a different time hashes identically; documents
// that differ only in key order or number formatting do too.
func DocumentHash(doc *Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("document hash: %w", err)
	}
	v, err := jtree.FromJSON(data)
	if err != nil {
		return "", fmt.Errorf("document hash: %w", err)
	}
	if obj, ok := v.(jtree.Object); ok {
		obj.Delete("createdAt")
	}
	return jtree.Hash(v)
}
