package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/store"
)

// FlowsOptions holds flags for the flows command.
type FlowsOptions struct {
	*RootOptions
	Database string
	Runs     int
}

// FlowListing is one flow plus its recent runs in the flows command's
// output.
type FlowListing struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	DocHash   string    `json:"docHash"`
	Runs      []RunLine `json:"runs,omitempty"`
}

// RunLine is one run in the listing.
type RunLine struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	RootNode  string    `json:"rootNode"`
	StartedAt time.Time `json:"startedAt"`
}

// NewFlowsCommand creates the flows command.
func NewFlowsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlowsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "flows",
		Short:         "List stored flows and their recent runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlows(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Runs, "runs", 5, "recent runs to show per flow")

	return cmd
}

func runFlows(opts *FlowsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	flows, err := st.ListFlows(ctx)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot list flows", err)
	}

	listings := make([]FlowListing, 0, len(flows))
	for _, f := range flows {
		listing := FlowListing{
			Name:      f.Name,
			Version:   f.Version,
			CreatedAt: f.CreatedAt,
			DocHash:   f.DocHash,
		}
		runs, err := st.ListRuns(ctx, f.Name, opts.Runs)
		if err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot list runs", err)
		}
		for _, r := range runs {
			listing.Runs = append(listing.Runs, RunLine{
				ID:        r.ID,
				Status:    r.Status,
				RootNode:  r.RootNode,
				StartedAt: r.StartedAt,
			})
		}
		listings = append(listings, listing)
	}

	if opts.Format == "json" {
		return formatter.Success(listings)
	}
	return formatter.Success(renderFlowsText(listings))
}

func renderFlowsText(listings []FlowListing) string {
	if len(listings) == 0 {
		return "no flows stored"
	}
	var b strings.Builder
	for _, l := range listings {
		fmt.Fprintf(&b, "%s  (saved %s, hash %.12s)\n", l.Name, l.CreatedAt.Format(time.RFC3339), l.DocHash)
		for _, r := range l.Runs {
			fmt.Fprintf(&b, "  %s  %-5s  root=%s  %s\n", r.ID, r.Status, r.RootNode, r.StartedAt.Format(time.RFC3339))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
