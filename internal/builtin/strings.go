package builtin

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

func stringEntries() []entry {
	unary := func(name string, op func(s string) jtree.Value, ret jtree.Type) entry {
		return entry{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: name,
				Params: []registry.Param{
					{Name: "text", Type: jtree.TypeString},
				},
				ReturnType: ret,
			},
			call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				return op(string(inv.Args[0].(jtree.String))), nil
			},
		}
	}

	return []entry{
		{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: "Concat",
				Params: []registry.Param{
					{Name: "a", Type: jtree.TypeString},
					{Name: "b", Type: jtree.TypeString},
				},
				ReturnType: jtree.TypeString,
			},
			call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				a := string(inv.Args[0].(jtree.String))
				b := string(inv.Args[1].(jtree.String))
				return jtree.String(a + b), nil
			},
		},
		unary("Upper", func(s string) jtree.Value { return jtree.String(strings.ToUpper(s)) }, jtree.TypeString),
		unary("Lower", func(s string) jtree.Value { return jtree.String(strings.ToLower(s)) }, jtree.TypeString),
		// Length counts runes, not bytes.
		unary("Length", func(s string) jtree.Value { return jtree.Number(float64(utf8.RuneCountInString(s))) }, jtree.TypeInt),
	}
}
