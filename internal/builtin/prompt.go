package builtin

import (
	"context"
	"fmt"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// CapabilityPrompter is the service-locator capability Prompt requests.
const CapabilityPrompter = "prompter"

// Prompter asks the user a question and blocks until an answer arrives
// or the context is cancelled. The host application supplies the
// implementation through the service locator.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

func promptEntries() []entry {
	return []entry{
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "Prompt",
				Params: []registry.Param{
					{Name: "question", Type: jtree.TypeString},
					{Kind: registry.KindServices},
				},
				ReturnType: jtree.TypeString,
			},
			call: promptCall,
		},
	}
}

func promptCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	if inv.Services == nil {
		return nil, fmt.Errorf("prompt: no service locator configured")
	}
	raw, err := inv.Services.Lookup(CapabilityPrompter)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	prompter, ok := raw.(Prompter)
	if !ok {
		return nil, fmt.Errorf("prompt: capability %q is not a Prompter", CapabilityPrompter)
	}

	question := string(inv.Args[0].(jtree.String))
	answer, err := prompter.Ask(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return jtree.String(answer), nil
}
