package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// InspectNode is one node in the inspect command's output.
type InspectNode struct {
	ID          string              `json:"id"`
	Function    string              `json:"function"`
	Outputs     []string            `json:"outputs,omitempty"`
	PortTargets map[string][]string `json:"portTargets,omitempty"`
	HasResult   bool                `json:"hasResult"`
}

// InspectResult is the inspect command's output payload.
type InspectResult struct {
	Flow        string        `json:"flow"`
	Version     string        `json:"version"`
	Nodes       []InspectNode `json:"nodes"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect <file>",
		Short:         "Show a flow document's nodes, functions, and edges",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	result := InspectResult{
		Flow:    loaded.Document.FlowName,
		Version: loaded.Document.Version,
	}
	for _, d := range loaded.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, d.String())
	}
	for _, n := range loaded.Graph.Nodes() {
		in := InspectNode{
			ID:       n.ID,
			Function: n.Function.Identifier(),
		}
		for _, target := range n.OutputNodes() {
			in.Outputs = append(in.Outputs, target.ID)
		}
		for _, port := range n.PortNames() {
			if in.PortTargets == nil {
				in.PortTargets = make(map[string][]string)
			}
			for _, target := range n.PortTargets(port) {
				in.PortTargets[port] = append(in.PortTargets[port], target.ID)
			}
		}
		_, in.HasResult = n.Result()
		result.Nodes = append(result.Nodes, in)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(renderInspectText(result))
}

func renderInspectText(r InspectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "flow: %s (format %s)\n", r.Flow, r.Version)
	for _, n := range r.Nodes {
		fmt.Fprintf(&b, "  %s  %s\n", n.ID, n.Function)
		if len(n.Outputs) > 0 {
			fmt.Fprintf(&b, "    -> %s\n", strings.Join(n.Outputs, ", "))
		}
		for port, targets := range n.PortTargets {
			fmt.Fprintf(&b, "    [%s] -> %s\n", port, strings.Join(targets, ", "))
		}
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "  ! %s\n", d)
	}
	return strings.TrimRight(b.String(), "\n")
}
