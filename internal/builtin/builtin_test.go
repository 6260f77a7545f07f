package builtin

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weave/internal/jtree"
	"github.com/roach88/weave/internal/registry"
)

// stubContext is a test double for the graph context: it records port
// triggers and backs the scratch space with a plain map.
type stubContext struct {
	fired []string
	vars  map[string]jtree.Value
}

func newStubContext() *stubContext {
	return &stubContext{vars: make(map[string]jtree.Value)}
}

func (s *stubContext) ExecutePortAsync(port string) {
	s.fired = append(s.fired, port)
}

func (s *stubContext) Var(key string) (jtree.Value, bool) {
	v, ok := s.vars[key]
	return v, ok
}

func (s *stubContext) SetVar(key string, v jtree.Value) {
	s.vars[key] = v
}

// stubServices resolves a single capability.
type stubServices struct {
	capability string
	value      any
}

func (s *stubServices) Lookup(capability string) (any, error) {
	if capability != s.capability {
		return nil, fmt.Errorf("unknown capability %q", capability)
	}
	return s.value, nil
}

type stubPrompter struct {
	answer string
	asked  []string
}

func (p *stubPrompter) Ask(ctx context.Context, question string) (string, error) {
	p.asked = append(p.asked, question)
	return p.answer, nil
}

func setupRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

// resolve finds a catalog function by name.
func resolve(t *testing.T, r *registry.Registry, name string, types ...jtree.Type) *registry.Function {
	t.Helper()
	sig := ""
	for i, typ := range types {
		if i > 0 {
			sig += ", "
		}
		sig += string(typ)
	}
	id := fmt.Sprintf("%s, %s | %s | %s", Scope, Version, name, sig)
	fn, err := r.Resolve(id)
	require.NoError(t, err)
	return fn
}

func invoke(t *testing.T, fn *registry.Function, inv registry.Invocation) jtree.Value {
	t.Helper()
	out, err := registry.Invoke(context.Background(), fn, inv)
	require.NoError(t, err)
	return out
}

func TestRegister_CatalogComplete(t *testing.T) {
	r := setupRegistry(t)

	names := map[string]bool{}
	for _, d := range r.Describe() {
		names[d.Name] = true
	}
	for _, want := range []string{
		"If", "For", "Repeat", "While",
		"Add", "Subtract", "Multiply", "Divide", "Power",
		"Equal", "GreaterThan", "LessThan",
		"Concat", "Upper", "Lower", "Length",
		"GetVar", "SetVar", "Increment",
		"Prompt",
	} {
		assert.True(t, names[want], "missing builtin %s", want)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	r := setupRegistry(t)
	// Second registration collides on every identifier.
	assert.Error(t, Register(r))
}

func TestIf_FiresMatchingPort(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "If", jtree.TypeBool)

	for _, cond := range []bool{true, false} {
		sc := newStubContext()
		out := invoke(t, fn, registry.Invocation{
			Args:  []jtree.Value{jtree.Bool(cond)},
			Graph: sc,
		})
		assert.Equal(t, jtree.Bool(cond), out)
		if cond {
			assert.Equal(t, []string{"true"}, sc.fired)
		} else {
			assert.Equal(t, []string{"false"}, sc.fired)
		}
	}
}

func TestFor_IteratesHalfOpenRange(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "For", jtree.TypeInt, jtree.TypeInt)
	sc := newStubContext()

	out := invoke(t, fn, registry.Invocation{
		Args:  []jtree.Value{jtree.Number(2), jtree.Number(5)},
		Graph: sc,
	})

	assert.Equal(t, jtree.Number(3), out)
	assert.Equal(t, []string{"loop", "loop", "loop", "done"}, sc.fired)
	// The last published index is the final iteration's.
	idx, ok := sc.vars[VarIndex]
	require.True(t, ok)
	assert.Equal(t, jtree.Number(4), idx)
}

func TestFor_EmptyRangeFiresDoneOnly(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "For", jtree.TypeInt, jtree.TypeInt)
	sc := newStubContext()

	out := invoke(t, fn, registry.Invocation{
		Args:  []jtree.Value{jtree.Number(5), jtree.Number(2)},
		Graph: sc,
	})

	assert.Equal(t, jtree.Number(0), out)
	assert.Equal(t, []string{"done"}, sc.fired)
	_, ok := sc.vars[VarIndex]
	assert.False(t, ok, "empty range never publishes an index")
}

func TestRepeat(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Repeat", jtree.TypeInt)

	tests := []struct {
		count float64
		loops int
	}{
		{count: 3, loops: 3},
		{count: 0, loops: 0},
		{count: -2, loops: 0},
	}
	for _, tt := range tests {
		sc := newStubContext()
		out := invoke(t, fn, registry.Invocation{
			Args:  []jtree.Value{jtree.Number(tt.count)},
			Graph: sc,
		})
		assert.Equal(t, jtree.Number(float64(tt.loops)), out)
		require.Len(t, sc.fired, tt.loops+1)
		assert.Equal(t, "done", sc.fired[len(sc.fired)-1])
	}
}

func TestWhile_OneShot(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "While", jtree.TypeBool)

	sc := newStubContext()
	invoke(t, fn, registry.Invocation{Args: []jtree.Value{jtree.Bool(true)}, Graph: sc})
	assert.Equal(t, []string{"loop"}, sc.fired)

	sc = newStubContext()
	invoke(t, fn, registry.Invocation{Args: []jtree.Value{jtree.Bool(false)}, Graph: sc})
	assert.Equal(t, []string{"done"}, sc.fired)
}

func TestMath(t *testing.T) {
	r := setupRegistry(t)

	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{name: "Add", a: 2, b: 3, want: 5},
		{name: "Subtract", a: 2, b: 3, want: -1},
		{name: "Multiply", a: 4, b: 2.5, want: 10},
		{name: "Divide", a: 9, b: 3, want: 3},
		{name: "Power", a: 2, b: 10, want: 1024},
		{name: "Power", a: 0, b: 0, want: 1},
	}
	for _, tt := range tests {
		fn := resolve(t, r, tt.name, jtree.TypeNumber, jtree.TypeNumber)
		out := invoke(t, fn, registry.Invocation{
			Args: []jtree.Value{jtree.Number(tt.a), jtree.Number(tt.b)},
		})
		assert.Equal(t, jtree.Number(tt.want), out, "%s(%v, %v)", tt.name, tt.a, tt.b)
	}
}

func TestDivide_ByZero(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Divide", jtree.TypeNumber, jtree.TypeNumber)

	_, err := registry.Invoke(context.Background(), fn, registry.Invocation{
		Args: []jtree.Value{jtree.Number(1), jtree.Number(0)},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "division by zero")
}

func TestPower_NegativeBaseFractionalExponent(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Power", jtree.TypeNumber, jtree.TypeNumber)

	out := invoke(t, fn, registry.Invocation{
		Args: []jtree.Value{jtree.Number(-8), jtree.Number(0.5)},
	})
	assert.True(t, math.IsNaN(float64(out.(jtree.Number))))
}

func TestComparison(t *testing.T) {
	r := setupRegistry(t)

	tests := []struct {
		name string
		a, b jtree.Value
		want bool
	}{
		{name: "Equal", a: jtree.Number(3), b: jtree.Number(3), want: true},
		{name: "Equal", a: jtree.Number(3), b: jtree.String("3"), want: false},
		{name: "GreaterThan", a: jtree.Number(5), b: jtree.Number(3), want: true},
		{name: "GreaterThan", a: jtree.String("10"), b: jtree.Number(9), want: true},
		{name: "GreaterThan", a: jtree.String("b"), b: jtree.String("a"), want: true},
		{name: "LessThan", a: jtree.Number(1), b: jtree.Number(2), want: true},
		{name: "LessThan", a: jtree.String("2026-01-01T00:00:00Z"), b: jtree.String("2026-06-01T00:00:00Z"), want: true},
		// Incomparable operands compare false instead of erroring.
		{name: "GreaterThan", a: jtree.Array{}, b: jtree.Number(1), want: false},
		{name: "LessThan", a: jtree.Array{}, b: jtree.Number(1), want: false},
	}
	for _, tt := range tests {
		fn := resolve(t, r, tt.name, jtree.TypeAny, jtree.TypeAny)
		out := invoke(t, fn, registry.Invocation{Args: []jtree.Value{tt.a, tt.b}})
		assert.Equal(t, jtree.Bool(tt.want), out, "%s(%v, %v)", tt.name, tt.a, tt.b)
	}
}

func TestStrings(t *testing.T) {
	r := setupRegistry(t)

	concat := resolve(t, r, "Concat", jtree.TypeString, jtree.TypeString)
	out := invoke(t, concat, registry.Invocation{
		Args: []jtree.Value{jtree.String("foo"), jtree.String("bar")},
	})
	assert.Equal(t, jtree.String("foobar"), out)

	upper := resolve(t, r, "Upper", jtree.TypeString)
	out = invoke(t, upper, registry.Invocation{Args: []jtree.Value{jtree.String("weave")}})
	assert.Equal(t, jtree.String("WEAVE"), out)

	lower := resolve(t, r, "Lower", jtree.TypeString)
	out = invoke(t, lower, registry.Invocation{Args: []jtree.Value{jtree.String("WEAVE")}})
	assert.Equal(t, jtree.String("weave"), out)

	length := resolve(t, r, "Length", jtree.TypeString)
	out = invoke(t, length, registry.Invocation{Args: []jtree.Value{jtree.String("héllo")}})
	assert.Equal(t, jtree.Number(5), out, "length counts runes")
}

func TestScratch(t *testing.T) {
	r := setupRegistry(t)
	sc := newStubContext()

	getVar := resolve(t, r, "GetVar", jtree.TypeString)
	out := invoke(t, getVar, registry.Invocation{
		Args:  []jtree.Value{jtree.String("missing")},
		Graph: sc,
	})
	assert.Equal(t, jtree.Null{}, out, "missing key reads as null")

	setVar := resolve(t, r, "SetVar", jtree.TypeString, jtree.TypeAny)
	out = invoke(t, setVar, registry.Invocation{
		Args:  []jtree.Value{jtree.String("k"), jtree.Number(7)},
		Graph: sc,
	})
	assert.Equal(t, jtree.Number(7), out)

	out = invoke(t, getVar, registry.Invocation{
		Args:  []jtree.Value{jtree.String("k")},
		Graph: sc,
	})
	assert.Equal(t, jtree.Number(7), out)
}

func TestIncrement(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Increment", jtree.TypeString, jtree.TypeNumber)
	sc := newStubContext()

	// Missing key counts from zero.
	out := invoke(t, fn, registry.Invocation{
		Args:  []jtree.Value{jtree.String("n"), jtree.Number(1)},
		Graph: sc,
	})
	assert.Equal(t, jtree.Number(1), out)

	out = invoke(t, fn, registry.Invocation{
		Args:  []jtree.Value{jtree.String("n"), jtree.Number(10)},
		Graph: sc,
	})
	assert.Equal(t, jtree.Number(11), out)
	assert.Equal(t, jtree.Number(11), sc.vars["n"])

	// Non-numeric current value errors.
	sc.vars["n"] = jtree.Array{}
	_, err := registry.Invoke(context.Background(), fn, registry.Invocation{
		Args:  []jtree.Value{jtree.String("n"), jtree.Number(1)},
		Graph: sc,
	})
	require.Error(t, err)
}

func TestPrompt(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Prompt", jtree.TypeString)

	prompter := &stubPrompter{answer: "yes"}
	svc := &stubServices{capability: CapabilityPrompter, value: prompter}

	out := invoke(t, fn, registry.Invocation{
		Args:     []jtree.Value{jtree.String("continue?")},
		Services: svc,
	})
	assert.Equal(t, jtree.String("yes"), out)
	assert.Equal(t, []string{"continue?"}, prompter.asked)
}

func TestPrompt_NoServices(t *testing.T) {
	r := setupRegistry(t)
	fn := resolve(t, r, "Prompt", jtree.TypeString)

	_, err := registry.Invoke(context.Background(), fn, registry.Invocation{
		Args: []jtree.Value{jtree.String("q")},
	})
	require.Error(t, err)
}

func TestResolve_StructuralFallback(t *testing.T) {
	r := setupRegistry(t)

	// A document persisted by an older build carries a stale version.
	stale := fmt.Sprintf("%s, 0.9.0 | Add | number, number", Scope)
	fn, err := r.Resolve(stale)
	require.NoError(t, err)
	assert.Equal(t, "Add", fn.Descriptor.Name)
	assert.Equal(t, Version, fn.Descriptor.Version)
}
