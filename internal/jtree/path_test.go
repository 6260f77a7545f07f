package jtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPath_GetPath_RoundTrip(t *testing.T) {
	paths := []string{
		"a",
		"a.b.c",
		"deeply.nested.path.with.many.segments",
	}
	for _, p := range paths {
		root := NewObject()
		require.NoError(t, SetPath(root, p, String("v")))

		got, ok := GetPath(root, p)
		require.True(t, ok, "path %q should resolve after set", p)
		assert.Equal(t, String("v"), got, p)
	}
}

func TestGetPath_AbsentIsNotAnError(t *testing.T) {
	root := NewObject()
	root.Set("a", Number(1))

	_, ok := GetPath(root, "a.b.c")
	assert.False(t, ok, "descending through a scalar yields absent, not a panic or error")

	_, ok = GetPath(root, "missing")
	assert.False(t, ok)
}

func TestGetPath_ArrayIndexing(t *testing.T) {
	v, err := FromJSON([]byte(`{"items":[{"name":"first"},{"name":"second"}]}`))
	require.NoError(t, err)

	got, ok := GetPath(v, "items.1.name")
	require.True(t, ok)
	assert.Equal(t, String("second"), got)

	_, ok = GetPath(v, "items.5.name")
	assert.False(t, ok, "out-of-range index is absent")

	_, ok = GetPath(v, "items.notanumber")
	assert.False(t, ok, "non-numeric segment on an array is absent")
}

func TestSetPath_ScalarCollisionBecomesObject(t *testing.T) {
	root := NewObject()
	root.Set("a", Number(1))

	require.NoError(t, SetPath(root, "a.b", String("v")))

	got, ok := GetPath(root, "a.b")
	require.True(t, ok)
	assert.Equal(t, String("v"), got)
}

func TestSetPath_ExtendsArrays(t *testing.T) {
	root := NewObject()
	root.Set("items", Array{Number(1)})

	require.NoError(t, SetPath(root, "items.3", Number(4)))

	items, ok := GetPath(root, "items")
	require.True(t, ok)
	assert.Equal(t, Array{Number(1), Null{}, Null{}, Number(4)}, items)
}

func TestSetPath_EmptyPathIsError(t *testing.T) {
	assert.Error(t, SetPath(NewObject(), "", Number(1)))
}
