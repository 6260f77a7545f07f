package jtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON_PreservesObjectKeyOrder(t *testing.T) {
	v, err := FromJSON([]byte(`{"zebra":1,"apple":2,"mango":{"b":1,"a":2}}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok, "top level should decode as Object")
	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys(), "insertion order should survive decoding")

	data, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"apple":2,"mango":{"b":1,"a":2}}`, string(data), "round-trip should be byte-identical")
}

func TestFromJSON_Scalars(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`42`, Number(42)},
		{`-3.5`, Number(-3.5)},
		{`"hello"`, String("hello")},
	}
	for _, tc := range cases {
		v, err := FromJSON([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, v, tc.in)
	}
}

func TestFromJSON_ArrayOrder(t *testing.T) {
	v, err := FromJSON([]byte(`[3,1,2]`))
	require.NoError(t, err)
	assert.Equal(t, Array{Number(3), Number(1), Number(2)}, v)
}

func TestFromJSON_RejectsTrailingData(t *testing.T) {
	_, err := FromJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestObject_SetKeepsPosition(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Number(1))
	obj.Set("b", Number(2))
	obj.Set("a", Number(3)) // overwrite must not move the key

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, Number(3), v)
}

func TestClone_DeepCopiesContainers(t *testing.T) {
	orig := NewObject()
	inner := NewObject()
	inner.Set("x", Number(1))
	orig.Set("nested", inner)
	orig.Set("list", Array{Number(1)})

	copied := Clone(orig).(Object)

	// Mutating the copy must not touch the original.
	nested, _ := copied.Get("nested")
	nested.(Object).Set("x", Number(99))

	got, _ := GetPath(orig, "nested.x")
	assert.Equal(t, Number(1), got, "original should be unaffected by copy mutation")
}

func TestMarshal_NumberFormatting(t *testing.T) {
	data, err := Marshal(Number(3))
	require.NoError(t, err)
	assert.Equal(t, "3", string(data), "integral numbers render without a fraction")

	data, err = Marshal(Number(3.25))
	require.NoError(t, err)
	assert.Equal(t, "3.25", string(data))
}
