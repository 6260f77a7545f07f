package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/flowdoc"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Problems    []string `json:"problems,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a flow document",
		Long: `Validate a flow document against the document schema and check that
every node's function resolves against the built-in registry.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := loadWorkflow(path)
	if err != nil {
		var verr *flowdoc.ValidationError
		if errors.As(err, &verr) {
			_ = formatter.Error("document failed validation", verr.Problems)
			return WrapExitError(ExitFailure, "document failed validation", err)
		}
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot load document", err)
	}

	if len(result.Diagnostics) > 0 {
		out := ValidationResult{Valid: false}
		for _, d := range result.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, d.String())
		}
		_ = formatter.Error("document loaded with diagnostics", out.Diagnostics)
		return WrapExitError(ExitFailure, "document loaded with diagnostics", nil)
	}

	formatter.VerboseLog("validated %d node(s)", result.Graph.Len())
	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	return formatter.Success("valid")
}
