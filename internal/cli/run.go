package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Root     string
	Database string
	Vars     []string

	// TokenGenerator overrides the run id source (for testing).
	// Nil defaults to UUIDv7Generator.
	TokenGenerator store.RunTokenGenerator
}

// RunResult is the run command's output payload.
type RunResult struct {
	Flow   string          `json:"flow"`
	Root   string          `json:"root"`
	RunID  string          `json:"runId,omitempty"`
	Result json.RawMessage `json:"result"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a flow document",
		Long: `Load a flow document, resolve its functions against the built-in
registry, and execute it from the designated root node.

With --db, the run is recorded in the given SQLite database (the flow is
saved there first if missing).

Example:
  weave run flow.json --root start
  weave run flow.json --root start --db ./weave.db --var greeting=hello`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "root node id (required)")
	_ = cmd.MarkFlagRequired("root")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for run records")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "seed scratch variable, k=v (repeatable)")

	return cmd
}

func runFlow(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := loadWorkflow(path)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot load document", err)
	}
	if len(loaded.Diagnostics) > 0 {
		details := make([]string, len(loaded.Diagnostics))
		for i, d := range loaded.Diagnostics {
			details[i] = d.String()
		}
		_ = formatter.Error("document loaded with diagnostics", details)
		return WrapExitError(ExitFailure, "document loaded with diagnostics", nil)
	}

	if err := seedVars(loaded, opts.Vars); err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad --var", err)
	}

	var st *store.Store
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	started := time.Now()
	result, runErr := loaded.Graph.Run(cmd.Context(), opts.Root)
	finished := time.Now()

	runID := ""
	if st != nil {
		runID, err = recordRun(cmd, st, opts, loaded, result, runErr, started, finished)
		if err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot record run", err)
		}
	}

	if runErr != nil {
		_ = formatter.Error(runErr.Error(), nil)
		return WrapExitError(ExitFailure, "execution failed", runErr)
	}

	raw, err := jtree.Marshal(result)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot render result", err)
	}
	if opts.Format == "json" {
		return formatter.Success(RunResult{
			Flow:   loaded.Document.FlowName,
			Root:   opts.Root,
			RunID:  runID,
			Result: raw,
		})
	}
	return formatter.Success(string(raw))
}

// seedVars applies --var k=v pairs to the graph's scratch space. Values
// parse as JSON literals, falling back to plain strings the same way
// input mappings do.
func seedVars(loaded *LoadResult, pairs []string) error {
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("malformed --var %q: want k=v", pair)
		}
		v, err := jtree.FromJSON([]byte(raw))
		if err != nil {
			v = jtree.String(raw)
		}
		loaded.Graph.Vars().Set(key, v)
	}
	return nil
}

func recordRun(cmd *cobra.Command, st *store.Store, opts *RunOptions, loaded *LoadResult, result jtree.Value, runErr error, started, finished time.Time) (string, error) {
	ctx := cmd.Context()
	if err := st.SaveFlow(ctx, loaded.Document); err != nil {
		return "", err
	}

	gen := opts.TokenGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}

	rec := store.RunRecord{
		ID:         gen.Generate(),
		FlowName:   loaded.Document.FlowName,
		RootNode:   opts.Root,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if runErr != nil {
		rec.Status = store.StatusError
		rec.Result = runErr.Error()
	} else {
		rec.Status = store.StatusOK
		if raw, err := jtree.Marshal(result); err == nil {
			rec.Result = string(raw)
		}
	}
	if err := st.RecordRun(ctx, rec); err != nil {
		return "", err
	}
	slog.Info("run recorded", "id", rec.ID, "status", rec.Status)
	return rec.ID, nil
}
