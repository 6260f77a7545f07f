package harness

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/weave/internal/builtin"
	"github.com/roach88/weave/internal/flowdoc"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool

	// Errors lists the assertion failures. Empty when Pass.
	Errors []string

	// RootResult is the root node's result tree (nil when execution
	// failed).
	RootResult jtree.Value

	// Counts records how many times each node's function ran.
	Counts map[string]int

	// Graph is the executed graph, for golden serialization.
	Graph *graph.Graph
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario and checks its expectations.
func Run(s *Scenario) (*Result, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	reg, err := builtin.NewRegistry()
	if err != nil {
		return nil, err
	}

	g, diags, err := flowdoc.Deserialize(doc, reg)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		return nil, fmt.Errorf("scenario %s: document has diagnostics, first: %s", s.Name, diags[0])
	}

	result := &Result{Pass: true, Graph: g}
	result.Counts = instrument(g)

	for key, raw := range s.Vars {
		v, err := jtree.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: var %q: %w", s.Name, key, err)
		}
		g.Vars().Set(key, v)
	}

	rootResult, runErr := g.Run(context.Background(), s.Root)
	checkError(result, s, runErr)
	if runErr == nil {
		result.RootResult = rootResult
		checkResult(result, s, rootResult)
	}
	checkVars(result, s, g)
	checkCounts(result, s)
	return result, nil
}

// instrument wraps every node's function so executions are counted by
// node id. Descriptors are shared, so port-driven behavior is
// unchanged.
func instrument(g *graph.Graph) map[string]int {
	counts := make(map[string]int)
	var mu sync.Mutex
	for _, n := range g.Nodes() {
		n := n
		orig := n.Function
		n.Function = &registry.Function{
			Descriptor: orig.Descriptor,
			Call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				mu.Lock()
				counts[n.ID]++
				mu.Unlock()
				return orig.Call(ctx, inv)
			},
		}
	}
	return counts
}

func checkError(result *Result, s *Scenario, runErr error) {
	if s.Expect.Error == "" {
		if runErr != nil {
			result.addError("unexpected execution error: %v", runErr)
		}
		return
	}
	if runErr == nil {
		result.addError("expected error containing %q, execution succeeded", s.Expect.Error)
		return
	}
	if !strings.Contains(runErr.Error(), s.Expect.Error) {
		result.addError("expected error containing %q, got: %v", s.Expect.Error, runErr)
	}
}

func checkResult(result *Result, s *Scenario, root jtree.Value) {
	for path, raw := range s.Expect.Result {
		want, err := jtree.FromGo(raw)
		if err != nil {
			result.addError("result %s: bad expected value: %v", path, err)
			continue
		}
		got, ok := jtree.GetPath(root, path)
		if !ok {
			result.addError("result %s: path absent", path)
			continue
		}
		if !jtree.Equal(got, want) {
			gotJSON, _ := jtree.Marshal(got)
			wantJSON, _ := jtree.Marshal(want)
			result.addError("result %s: got %s, want %s", path, gotJSON, wantJSON)
		}
	}
}

func checkVars(result *Result, s *Scenario, g *graph.Graph) {
	for key, raw := range s.Expect.Vars {
		want, err := jtree.FromGo(raw)
		if err != nil {
			result.addError("var %s: bad expected value: %v", key, err)
			continue
		}
		got, ok := g.Vars().Get(key)
		if !ok {
			result.addError("var %s: not set", key)
			continue
		}
		if !jtree.Equal(got, want) {
			gotJSON, _ := jtree.Marshal(got)
			wantJSON, _ := jtree.Marshal(want)
			result.addError("var %s: got %s, want %s", key, gotJSON, wantJSON)
		}
	}
}

func checkCounts(result *Result, s *Scenario) {
	for nodeID, want := range s.Expect.Counts {
		if got := result.Counts[nodeID]; got != want {
			result.addError("node %s: executed %d time(s), want %d", nodeID, got, want)
		}
	}
}
