package builtin

import (
	"context"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

func compareEntries() []entry {
	relation := func(name string, holds func(cmp int) bool) entry {
		return entry{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: name,
				Params: []registry.Param{
					{Name: "a", Type: jtree.TypeAny},
					{Name: "b", Type: jtree.TypeAny},
				},
				ReturnType: jtree.TypeBool,
			},
			call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				// Incomparable operands compare false rather than
				// erroring; the typed error stays available at the
				// jtree layer for callers that want it.
				cmp, err := jtree.Compare(inv.Args[0], inv.Args[1])
				if err != nil {
					return jtree.Bool(false), nil
				}
				return jtree.Bool(holds(cmp)), nil
			},
		}
	}

	return []entry{
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "Equal",
				Params: []registry.Param{
					{Name: "a", Type: jtree.TypeAny},
					{Name: "b", Type: jtree.TypeAny},
				},
				ReturnType: jtree.TypeBool,
			},
			call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				return jtree.Bool(jtree.Equal(inv.Args[0], inv.Args[1])), nil
			},
		},
		relation("GreaterThan", func(cmp int) bool { return cmp > 0 }),
		relation("LessThan", func(cmp int) bool { return cmp < 0 }),
	}
}
