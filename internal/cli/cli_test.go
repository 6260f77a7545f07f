package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weave/internal/store"
)

// sumFlow is a small valid document: two bound constants into an Add.
const sumFlow = `{
  "version": "1",
  "flowName": "sum",
  "createdAt": "2026-01-02T03:04:05Z",
  "nodes": [
    {
      "id": "total",
      "function": "weave/builtin, 1.0.0 | Add | number, number",
      "inputMap": [
        {"from": "2", "to": "a"},
        {"from": "3", "to": "b"}
      ],
      "x": 0,
      "y": 0
    }
  ]
}`

// brokenFlow references a function no build has.
const brokenFlow = `{
  "version": "1",
  "flowName": "broken",
  "createdAt": "2026-01-02T03:04:05Z",
  "nodes": [
    {
      "id": "gone",
      "function": "weave/removed, 9.9.9 | Vanished | string",
      "x": 0,
      "y": 0
    }
  ]
}`

func writeFlow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_ValidDocument(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidate_JSONFormat(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_SchemaViolation(t *testing.T) {
	path := writeFlow(t, `{"version":"1","flowName":"","createdAt":"t","nodes":[]}`)
	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_UnresolvableFunction(t *testing.T) {
	path := writeFlow(t, brokenFlow)
	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_ExecutesFlow(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "run", path, "--root", "total")
	require.NoError(t, err)
	assert.Contains(t, out, `"result":5`)
}

func TestRun_JSONFormat(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "run", path, "--root", "total", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sum", resp.Data.Flow)
	assert.Equal(t, "total", resp.Data.Root)
	assert.JSONEq(t, `{"output":{"result":5}}`, string(resp.Data.Result))
}

func TestRun_UnknownRoot(t *testing.T) {
	path := writeFlow(t, sumFlow)
	_, err := execute(t, "run", path, "--root", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRun_RecordsToDatabase(t *testing.T) {
	path := writeFlow(t, sumFlow)
	dbPath := filepath.Join(t.TempDir(), "weave.db")

	_, err := execute(t, "run", path, "--root", "total", "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	flows, err := st.ListFlows(t.Context())
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "sum", flows[0].Name)

	runs, err := st.ListRuns(t.Context(), "sum", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusOK, runs[0].Status)
	assert.Equal(t, "total", runs[0].RootNode)
	assert.JSONEq(t, `{"output":{"result":5}}`, runs[0].Result)
}

func TestRun_SeedVars(t *testing.T) {
	flow := `{
  "version": "1",
  "flowName": "vars",
  "createdAt": "2026-01-02T03:04:05Z",
  "nodes": [
    {
      "id": "read",
      "function": "weave/builtin, 1.0.0 | GetVar | string",
      "inputMap": [{"from": "\"greeting\"", "to": "key"}],
      "x": 0,
      "y": 0
    }
  ]
}`
	path := writeFlow(t, flow)
	out, err := execute(t, "run", path, "--root", "read", "--var", "greeting=hello")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRun_MalformedVar(t *testing.T) {
	path := writeFlow(t, sumFlow)
	_, err := execute(t, "run", path, "--root", "total", "--var", "novalue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInspect(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "flow: sum")
	assert.Contains(t, out, "weave/builtin, 1.0.0 | Add | number, number")
}

func TestInspect_JSONFormat(t *testing.T) {
	path := writeFlow(t, sumFlow)
	out, err := execute(t, "inspect", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Nodes, 1)
	assert.Equal(t, "total", resp.Data.Nodes[0].ID)
}

func TestFlows_ListsStoredFlows(t *testing.T) {
	path := writeFlow(t, sumFlow)
	dbPath := filepath.Join(t.TempDir(), "weave.db")
	_, err := execute(t, "run", path, "--root", "total", "--db", dbPath)
	require.NoError(t, err)

	out, err := execute(t, "flows", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "sum")
	assert.Contains(t, out, "root=total")
}

func TestFlows_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "weave.db")
	out, err := execute(t, "flows", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no flows stored")
}

func TestRoot_InvalidFormat(t *testing.T) {
	path := writeFlow(t, sumFlow)
	_, err := execute(t, "validate", path, "--format", "xml")
	require.Error(t, err)
}
