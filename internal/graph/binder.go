package graph

import (
	"fmt"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
	"github.com/roach88/weave/internal/template"
)

// bindArgs resolves every value parameter of the node's function from the
// input map, against the formatted input tree {input: <merged upstream>}.
//
// Resolution ladder for a mapping source, in order:
//  1. JSON literal: `5`, `"text"`, `true`, `[1,2]`, `{"a":1}`.
//  2. Bare dotted path (no template markers) that resolves in the
//     formatted input: used directly, no render round-trip.
//  3. Template expression: rendered against the tree as native values;
//     the rendered text is parsed as a JSON literal when possible and
//     kept as a plain string otherwise.
//
// The resolved value is then coerced to the parameter's declared type.
// Parameters with no mapping take their default (declared default, else
// the type's zero value). So does a mapped parameter whose source does
// not resolve: a marker-free path absent from the upstream tree, or a
// template that renders to nothing. Absent upstream paths bind defaults,
// never errors.
func (n *Node) bindArgs(formatted jtree.Object) ([]jtree.Value, error) {
	params := n.Function.Descriptor.ValueParams()
	args := make([]jtree.Value, len(params))

	// Last mapping wins on duplicate destinations.
	sources := make(map[string]string, len(n.InputMap))
	for _, entry := range n.InputMap {
		sources[entry.To] = entry.From
	}

	var nativeCtx map[string]any // built lazily, most bindings never render

	for i, p := range params {
		src, mapped := sources[p.Name]
		if !mapped {
			args[i] = paramDefault(p)
			continue
		}

		resolved, ok, err := n.resolveSource(src, formatted, &nativeCtx)
		if err != nil {
			return nil, fmt.Errorf("bind parameter %q: %w", p.Name, err)
		}
		if !ok {
			args[i] = paramDefault(p)
			continue
		}
		coerced, err := jtree.Coerce(resolved, p.Type)
		if err != nil {
			return nil, fmt.Errorf("bind parameter %q from %q: %w", p.Name, src, err)
		}
		args[i] = coerced
	}
	return args, nil
}

func paramDefault(p registry.Param) jtree.Value {
	if p.Default != nil {
		return p.Default
	}
	return jtree.Zero(p.Type)
}

// resolveSource resolves one mapping source. ok is false when the source
// does not resolve to anything - the caller binds the parameter's
// default in that case.
func (n *Node) resolveSource(src string, formatted jtree.Object, nativeCtx *map[string]any) (jtree.Value, bool, error) {
	// Literal JSON first. Bare words ("input.result", "hello") are not
	// valid JSON and fall through.
	if v, err := jtree.FromJSON([]byte(src)); err == nil {
		return v, true, nil
	}

	if !template.HasMarkers(src) {
		// A bare dotted path. Absent in the upstream tree means
		// unresolved, not an error - rendering it would only echo the
		// path text back.
		v, ok := jtree.GetPath(formatted, src)
		return v, ok, nil
	}

	if *nativeCtx == nil {
		m, _ := jtree.ToGo(formatted).(map[string]any)
		*nativeCtx = m
	}
	rendered, err := n.graph.renderer.Render(src, *nativeCtx)
	if err != nil {
		return nil, false, err
	}
	if rendered == "" {
		// The template referenced values that are not there.
		return nil, false, nil
	}
	if v, err := jtree.FromJSON([]byte(rendered)); err == nil {
		return v, true, nil
	}
	return jtree.String(rendered), true, nil
}
