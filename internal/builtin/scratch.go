package builtin

import (
	"context"
	"fmt"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

func scratchEntries() []entry {
	return []entry{
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "GetVar",
				Params: []registry.Param{
					{Name: "key", Type: jtree.TypeString},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeAny,
			},
			call: getVarCall,
		},
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "SetVar",
				Params: []registry.Param{
					{Name: "key", Type: jtree.TypeString},
					{Name: "value", Type: jtree.TypeAny},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeAny,
			},
			call: setVarCall,
		},
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "Increment",
				Params: []registry.Param{
					{Name: "key", Type: jtree.TypeString},
					{Name: "by", Type: jtree.TypeNumber, Optional: true, Default: jtree.Number(1)},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeNumber,
			},
			call: incrementCall,
		},
	}
}

// getVarCall reads a scratch variable. A missing key reads as null.
func getVarCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	key := string(inv.Args[0].(jtree.String))
	v, ok := inv.Graph.Var(key)
	if !ok {
		return jtree.Null{}, nil
	}
	return v, nil
}

// setVarCall writes a scratch variable and returns the written value.
func setVarCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	key := string(inv.Args[0].(jtree.String))
	inv.Graph.SetVar(key, inv.Args[1])
	return inv.Args[1], nil
}

// incrementCall adds to a numeric scratch variable, treating a missing
// key as zero, and returns the new value.
func incrementCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	key := string(inv.Args[0].(jtree.String))
	by := float64(inv.Args[1].(jtree.Number))

	current := float64(0)
	if v, ok := inv.Graph.Var(key); ok {
		n, err := jtree.Coerce(v, jtree.TypeNumber)
		if err != nil {
			return nil, fmt.Errorf("increment %q: %w", key, err)
		}
		current = float64(n.(jtree.Number))
	}
	next := jtree.Number(current + by)
	inv.Graph.SetVar(key, next)
	return next, nil
}
