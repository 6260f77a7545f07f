package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/weave/internal/flowdoc"
)

// Scenario defines one end-to-end test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Document is the path to a flow document JSON file, relative to
	// the scenario file. Mutually exclusive with Nodes.
	Document string `yaml:"document,omitempty"`

	// Nodes defines the flow inline. Mutually exclusive with Document.
	Nodes []NodeSpec `yaml:"nodes,omitempty"`

	// Vars seeds the run-scoped scratch space before execution.
	Vars map[string]any `yaml:"vars,omitempty"`

	// Root is the node id execution starts from.
	Root string `yaml:"root"`

	// Expect holds the scenario's assertions.
	Expect Expect `yaml:"expect"`

	// dir is the scenario file's directory, for resolving Document.
	dir string
}

// NodeSpec is one inline node definition.
type NodeSpec struct {
	ID                   string     `yaml:"id"`
	Function             string     `yaml:"function"`
	InputMap             []MapSpec  `yaml:"inputMap,omitempty"`
	OutputMap            []MapSpec  `yaml:"outputMap,omitempty"`
	MergeOutputWithInput bool       `yaml:"mergeOutputWithInput,omitempty"`
	Outputs              []string   `yaml:"outputs,omitempty"`
	Ports                []PortSpec `yaml:"ports,omitempty"`
}

// MapSpec is one inline path mapping.
type MapSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// PortSpec wires one port's targets.
type PortSpec struct {
	Port    string   `yaml:"port"`
	Targets []string `yaml:"targets"`
}

// Expect holds a scenario's assertions. All clauses are optional;
// omitted clauses assert nothing.
type Expect struct {
	// Error asserts execution fails with this substring in the error.
	Error string `yaml:"error,omitempty"`

	// Result maps dotted paths in the root node's result tree to
	// expected values. Subset match.
	Result map[string]any `yaml:"result,omitempty"`

	// Vars maps scratch keys to expected final values. Subset match.
	Vars map[string]any `yaml:"vars,omitempty"`

	// Counts maps node ids to exact expected execution counts. A zero
	// asserts the node never ran.
	Counts map[string]int `yaml:"counts,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("load scenario %s: missing name", path)
	}
	if s.Root == "" {
		return nil, fmt.Errorf("load scenario %s: missing root", path)
	}
	if (s.Document == "") == (len(s.Nodes) == 0) {
		return nil, fmt.Errorf("load scenario %s: exactly one of document or nodes required", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario in a directory, sorted by
// filename.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	var out []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// document resolves the scenario's flow document, from file or inline.
func (s *Scenario) document() (*flowdoc.Document, error) {
	if s.Document != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, s.Document))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		if err := flowdoc.Validate(data); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		return flowdoc.Parse(data)
	}

	doc := &flowdoc.Document{
		Version:   flowdoc.FormatVersion,
		FlowName:  s.Name,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ns := range s.Nodes {
		nd := flowdoc.NodeDoc{
			ID:                   ns.ID,
			Function:             ns.Function,
			InputMap:             mapSpecs(ns.InputMap),
			OutputMap:            mapSpecs(ns.OutputMap),
			MergeOutputWithInput: ns.MergeOutputWithInput,
			Outputs:              ns.Outputs,
		}
		for _, ps := range ns.Ports {
			nd.PortTargets = append(nd.PortTargets, flowdoc.PortTargetsDoc{
				Port:    ps.Port,
				Targets: ps.Targets,
			})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

func mapSpecs(specs []MapSpec) []flowdoc.PathMapDoc {
	if len(specs) == 0 {
		return nil
	}
	out := make([]flowdoc.PathMapDoc, len(specs))
	for i, m := range specs {
		out[i] = flowdoc.PathMapDoc{From: m.From, To: m.To}
	}
	return out
}
