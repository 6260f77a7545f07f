package flowdoc

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weave/internal/builtin"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

func setupRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := builtin.NewRegistry()
	require.NoError(t, err)
	return r
}

// branchGraph builds a small If graph: check fires "true" into an Add
// and "false" into a Subtract.
func branchGraph(t *testing.T, reg *registry.Registry) *graph.Graph {
	t.Helper()
	g, err := graph.New()
	require.NoError(t, err)

	resolve := func(id string) *registry.Function {
		fn, err := reg.Resolve(id)
		require.NoError(t, err)
		return fn
	}

	check, err := g.AddNode("check", resolve("weave/builtin, 1.0.0 | If | bool"))
	require.NoError(t, err)
	check.InputMap = []graph.PathMap{{From: "true", To: "condition"}}

	then, err := g.AddNode("then", resolve("weave/builtin, 1.0.0 | Add | number, number"))
	require.NoError(t, err)
	then.InputMap = []graph.PathMap{{From: "1", To: "a"}, {From: "2", To: "b"}}

	elseN, err := g.AddNode("else", resolve("weave/builtin, 1.0.0 | Subtract | number, number"))
	require.NoError(t, err)
	elseN.InputMap = []graph.PathMap{{From: "1", To: "a"}, {From: "2", To: "b"}}

	require.NoError(t, g.ConnectPort("check", "true", "then"))
	require.NoError(t, g.ConnectPort("check", "false", "else"))
	return g
}

func pinnedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
}

func TestSerialize_Golden(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)

	doc, err := Serialize(g, "branch", WithClock(pinnedClock()))
	require.NoError(t, err)

	data, err := Marshal(doc)
	require.NoError(t, err)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "branch", data)
}

func TestRoundTrip(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)

	doc, err := Serialize(g, "branch", WithClock(pinnedClock()))
	require.NoError(t, err)
	data, err := Marshal(doc)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	loaded, diags, err := Deserialize(parsed, reg)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, g.Len(), loaded.Len())

	check, ok := loaded.Node("check")
	require.True(t, ok)
	assert.Equal(t, []graph.PathMap{{From: "true", To: "condition"}}, check.InputMap)
	require.Len(t, check.PortTargets("true"), 1)
	assert.Equal(t, "then", check.PortTargets("true")[0].ID)
	require.Len(t, check.PortTargets("false"), 1)
	assert.Equal(t, "else", check.PortTargets("false")[0].ID)

	// The reloaded graph executes the same way the original does.
	_, err = loaded.Run(context.Background(), "check")
	require.NoError(t, err)
	then, _ := loaded.Node("then")
	result, ok := then.Result()
	require.True(t, ok, "the taken branch ran")
	sum, ok := jtree.GetPath(result, "output.result")
	require.True(t, ok)
	assert.Equal(t, jtree.Number(3), sum)
	elseN, _ := loaded.Node("else")
	_, ok = elseN.Result()
	assert.False(t, ok, "the untaken branch did not run")
}

func TestRoundTrip_WithResults(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)
	_, err := g.Run(context.Background(), "check")
	require.NoError(t, err)

	doc, err := Serialize(g, "branch", WithClock(pinnedClock()), WithResults())
	require.NoError(t, err)

	loaded, diags, err := Deserialize(doc, reg)
	require.NoError(t, err)
	require.Empty(t, diags)

	// Restored results mean the reloaded graph can be inspected without
	// re-executing anything.
	then, _ := loaded.Node("then")
	result, ok := then.Result()
	require.True(t, ok)
	sum, ok := jtree.GetPath(result, "output.result")
	require.True(t, ok)
	assert.Equal(t, jtree.Number(3), sum)
}

func TestDeserialize_UnresolvableFunctionSkipsNode(t *testing.T) {
	reg := setupRegistry(t)
	doc := &Document{
		Version:  FormatVersion,
		FlowName: "partial",
		Nodes: []NodeDoc{
			{ID: "ok", Function: "weave/builtin, 1.0.0 | Add | number, number"},
			{ID: "gone", Function: "weave/removed, 1.0.0 | Vanished | string"},
			{ID: "downstream", Function: "weave/builtin, 1.0.0 | Upper | string",
				Outputs: []string{"gone"}},
		},
	}

	g, diags, err := Deserialize(doc, reg)
	require.NoError(t, err)

	// The unresolvable node and the edge into it are both reported.
	require.Len(t, diags, 2)
	assert.Equal(t, "gone", diags[0].NodeID)
	assert.Equal(t, "downstream", diags[1].NodeID)

	assert.Equal(t, 2, g.Len())
	_, ok := g.Node("gone")
	assert.False(t, ok)
}

func TestDeserialize_StaleVersionResolvesStructurally(t *testing.T) {
	reg := setupRegistry(t)
	doc := &Document{
		Version:  FormatVersion,
		FlowName: "stale",
		Nodes: []NodeDoc{
			{ID: "a", Function: "weave/builtin, 0.1.0 | Add | number, number"},
		},
	}

	g, diags, err := Deserialize(doc, reg)
	require.NoError(t, err)
	require.Empty(t, diags)

	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, "Add", n.Function.Descriptor.Name)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte(`{"version":"1","flowName":"x","createdAt":"2026-01-02T03:04:05Z","nodes":[],"typo":true}`))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)
	doc, err := Serialize(g, "branch", WithClock(pinnedClock()))
	require.NoError(t, err)
	data, err := Marshal(doc)
	require.NoError(t, err)

	assert.NoError(t, Validate(data))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty flow name", doc: `{"version":"1","flowName":"","createdAt":"t","nodes":[{"id":"a","function":"f","x":0,"y":0}]}`},
		{name: "empty node list", doc: `{"version":"1","flowName":"x","createdAt":"t","nodes":[]}`},
		{name: "node missing function", doc: `{"version":"1","flowName":"x","createdAt":"t","nodes":[{"id":"a","x":0,"y":0}]}`},
		{name: "unknown field", doc: `{"version":"1","flowName":"x","createdAt":"t","nodes":[],"extra":1}`},
		{name: "not json", doc: `{"version":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tt.doc)))
		})
	}
}

func TestValidate_ErrorTypePredicate(t *testing.T) {
	err := Validate([]byte(`{"version":"1","flowName":"","createdAt":"t","nodes":[]}`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	err = Validate([]byte(`{"version":`))
	require.Error(t, err)
	assert.False(t, IsValidationError(err), "malformed JSON is not a schema violation")
}

func TestDocumentHash_KeyOrderInsensitive(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)
	doc, err := Serialize(g, "branch", WithClock(pinnedClock()))
	require.NoError(t, err)

	h1, err := DocumentHash(doc)
	require.NoError(t, err)
	h2, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	doc.FlowName = "renamed"
	h3, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

// An unchanged graph re-serialized later hashes the same: the timestamp
// is not content.
func TestDocumentHash_TimestampInsensitive(t *testing.T) {
	reg := setupRegistry(t)
	g := branchGraph(t, reg)

	early, err := Serialize(g, "branch", WithClock(pinnedClock()))
	require.NoError(t, err)
	late, err := Serialize(g, "branch", WithClock(func() time.Time {
		return time.Date(2026, 6, 7, 8, 9, 10, 0, time.UTC)
	}))
	require.NoError(t, err)

	h1, err := DocumentHash(early)
	require.NoError(t, err)
	h2, err := DocumentHash(late)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
