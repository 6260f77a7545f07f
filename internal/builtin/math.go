package builtin

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

func mathEntries() []entry {
	binary := func(name string, op func(a, b float64) (float64, error)) entry {
		return entry{
			d: registry.Descriptor{
				Scope: Scope, Version: Version, Name: name,
				Params: []registry.Param{
					{Name: "a", Type: jtree.TypeNumber},
					{Name: "b", Type: jtree.TypeNumber},
				},
				ReturnType: jtree.TypeNumber,
			},
			call: func(ctx context.Context, inv registry.Invocation) (jtree.Value, error) {
				a := float64(inv.Args[0].(jtree.Number))
				b := float64(inv.Args[1].(jtree.Number))
				out, err := op(a, b)
				if err != nil {
					return nil, err
				}
				return jtree.Number(out), nil
			},
		}
	}

	return []entry{
		binary("Add", func(a, b float64) (float64, error) { return a + b, nil }),
		binary("Subtract", func(a, b float64) (float64, error) { return a - b, nil }),
		binary("Multiply", func(a, b float64) (float64, error) { return a * b, nil }),
		binary("Divide", func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		}),
		// Power follows math.Pow: 0^0 = 1, negative base with a
		// fractional exponent yields NaN.
		binary("Power", func(a, b float64) (float64, error) { return math.Pow(a, b), nil }),
	}
}
