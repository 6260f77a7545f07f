package jtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	obj := mustObject(t, `{"zebra":1,"apple":2}`)

	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"zebra":1}`, string(data), "canonical form sorts keys regardless of insertion order")
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(data))
}

func TestHash_InsertionOrderInvariant(t *testing.T) {
	a := mustObject(t, `{"x":1,"y":2}`)
	b := mustObject(t, `{"y":2,"x":1}`)

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "hash must not depend on insertion order")

	c := mustObject(t, `{"x":1,"y":3}`)
	hc, err := Hash(c)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestMarshalCanonical_ControlCharacters(t *testing.T) {
	data, err := MarshalCanonical(String("line1\nline2\tend"))
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\tend"`, string(data))
}
