package builtin

import (
	"context"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// VarIndex is the scratch key For publishes the current iteration index
// under.
const VarIndex = "index"

func controlEntries() []entry {
	return []entry{
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "If",
				Params: []registry.Param{
					{Name: "condition", Type: jtree.TypeBool},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeBool,
				Ports:      []string{"true", "false"},
			},
			call: ifCall,
		},
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "For",
				Params: []registry.Param{
					{Name: "start", Type: jtree.TypeInt},
					{Name: "end", Type: jtree.TypeInt},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeInt,
				Ports:      []string{"loop", "done"},
			},
			call: forCall,
		},
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "Repeat",
				Params: []registry.Param{
					{Name: "count", Type: jtree.TypeInt},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeInt,
				Ports:      []string{"loop", "done"},
			},
			call: repeatCall,
		},
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "While",
				Params: []registry.Param{
					{Name: "condition", Type: jtree.TypeBool},
					{Kind: registry.KindGraphContext},
				},
				ReturnType: jtree.TypeBool,
				Ports:      []string{"loop", "done"},
			},
			call: whileCall,
		},
	}
}

// ifCall fires exactly one port matching the condition and returns the
// condition.
func ifCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	cond := bool(inv.Args[0].(jtree.Bool))
	if cond {
		inv.Graph.ExecutePortAsync("true")
	} else {
		inv.Graph.ExecutePortAsync("false")
	}
	return jtree.Bool(cond), nil
}

// forCall fires "loop" for each integer in [start, end), publishing the
// index before every trigger, then fires "done". start >= end runs zero
// iterations. Returns the iteration count.
func forCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	start := int64(inv.Args[0].(jtree.Number))
	end := int64(inv.Args[1].(jtree.Number))
	count := int64(0)
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inv.Graph.SetVar(VarIndex, jtree.Number(float64(i)))
		inv.Graph.ExecutePortAsync("loop")
		count++
	}
	inv.Graph.ExecutePortAsync("done")
	return jtree.Number(float64(count)), nil
}

// repeatCall fires "loop" exactly max(count, 0) times, then "done".
// The index is published the same way For publishes it.
func repeatCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	count := int64(inv.Args[0].(jtree.Number))
	ran := int64(0)
	for i := int64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inv.Graph.SetVar(VarIndex, jtree.Number(float64(i)))
		inv.Graph.ExecutePortAsync("loop")
		ran++
	}
	inv.Graph.ExecutePortAsync("done")
	return jtree.Number(float64(ran)), nil
}

// whileCall is one-shot: "loop" if the condition holds, else "done". A
// true while-loop wires loop's downstream back into re-evaluating the
// condition.
func whileCall(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
	cond := bool(inv.Args[0].(jtree.Bool))
	if cond {
		inv.Graph.ExecutePortAsync("loop")
	} else {
		inv.Graph.ExecutePortAsync("done")
	}
	return jtree.Bool(cond), nil
}
