package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedValue_ScalarAccessors(t *testing.T) {
	t.Parallel()
	v := Scalar(42, Special("int"))

	assert.Equal(t, ValueScalar, v.Kind())
	got, ok := v.Value()
	require.True(t, ok)
	assert.Equal(t, 42, got)
	assert.Equal(t, "int", v.Type().Name())

	_, ok = v.TypeRef()
	assert.False(t, ok, "scalar has no type reference")
	_, ok = v.Values()
	assert.False(t, ok, "scalar has no elements")
	assert.False(t, v.IsNull())
}

func TestTypedValue_TypeReference(t *testing.T) {
	t.Parallel()
	b := NewBuilder("App")
	widget := b.Type(b.Global(), "Widget", TypeKindClass)
	v := TypeReference(widget)

	ref, ok := v.TypeRef()
	require.True(t, ok)
	assert.Same(t, widget, ref)
	_, ok = v.Value()
	assert.False(t, ok)
}

func TestTypedValue_EmptyVersusNullArray(t *testing.T) {
	t.Parallel()
	empty := Array(ArrayOf(Special("string")))
	null := NullArray(ArrayOf(Special("string")))

	vals, ok := empty.Values()
	require.True(t, ok)
	assert.Empty(t, vals)
	assert.NotNil(t, vals)
	assert.False(t, empty.IsNull())

	vals, ok = null.Values()
	assert.False(t, ok)
	assert.Nil(t, vals)
	assert.True(t, null.IsNull())
	assert.Equal(t, ValueArray, null.Kind())
}

func TestTypedValue_ZeroValue(t *testing.T) {
	t.Parallel()
	var v TypedValue
	assert.Equal(t, ValueNone, v.Kind())
	_, ok := v.Value()
	assert.False(t, ok)
	assert.False(t, v.IsNull())
}

func TestAttribute_SetNamedReplacesInPlace(t *testing.T) {
	t.Parallel()
	a := &Attribute{Class: Special("ObsoleteAttribute")}
	a.SetNamed("Message", Scalar("old", Special("string")))
	a.SetNamed("IsError", Scalar(true, Special("bool")))
	a.SetNamed("Message", Scalar("new", Special("string")))

	require.Len(t, a.Named, 2)
	assert.Equal(t, "Message", a.Named[0].Name)
	got, _ := a.Named[0].Value.Value()
	assert.Equal(t, "new", got)
	assert.Equal(t, "ObsoleteAttribute", a.Name())
}
