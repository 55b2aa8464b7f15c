package hierarchy

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/nameplate/internal/symbols"
)

// sampleTree builds:
//
//	global: G
//	A:      A1 { A1a { A1a1 }, A1b }, A2
//	A.B:    B1
//	C
func sampleTree(t *testing.T) *symbols.Compilation {
	t.Helper()
	b := symbols.NewBuilder("App")
	g := b.Global()
	b.Type(g, "G", symbols.TypeKindClass)

	a := b.Namespace(g, "A")
	a1 := b.Type(a, "A1", symbols.TypeKindClass)
	a1a := b.Type(a1, "A1a", symbols.TypeKindClass)
	b.Type(a1a, "A1a1", symbols.TypeKindStruct)
	b.Method(a1, "Run")
	b.Type(a1, "A1b", symbols.TypeKindEnum)
	b.Type(a, "A2", symbols.TypeKindInterface)

	ab := b.Namespace(g, "A.B")
	b.Type(ab, "B1", symbols.TypeKindRecord)

	b.Namespace(g, "C")
	return b.Build()
}

func names(seq func(func(symbols.Symbol) bool)) []string {
	var out []string
	for s := range seq {
		out = append(out, s.Name())
	}
	return out
}

// =============================================================================
// AllNamespaces
// =============================================================================

func TestAllNamespaces_PreOrder(t *testing.T) {
	t.Parallel()
	seq, err := AllNamespaces(sampleTree(t), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(seq))
}

func TestAllNamespaces_Restartable(t *testing.T) {
	t.Parallel()
	seq, err := AllNamespaces(sampleTree(t), false)
	require.NoError(t, err)
	first := names(seq)
	second := names(seq)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestAllNamespaces_EarlyBreak(t *testing.T) {
	t.Parallel()
	seq, err := AllNamespaces(sampleTree(t), false)
	require.NoError(t, err)

	var seen []string
	for ns := range seq {
		seen = append(seen, ns.Name())
		if ns.Name() == "A" {
			break
		}
	}
	assert.Equal(t, []string{"A"}, seen)
}

func TestAllNamespaces_EmptyTree(t *testing.T) {
	t.Parallel()
	seq, err := AllNamespaces(symbols.NewBuilder("Empty").Build(), false)
	require.NoError(t, err)
	assert.Empty(t, names(seq))
}

func TestAllNamespaces_NilRoot(t *testing.T) {
	t.Parallel()
	_, err := AllNamespaces(nil, false)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)

	var c *symbols.Compilation
	_, err = AllNamespaces(c, true)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

// =============================================================================
// AllTypes
// =============================================================================

func TestAllTypes_Order(t *testing.T) {
	t.Parallel()
	seq, err := AllTypes(sampleTree(t), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"G", "A1", "A1a", "A1a1", "A1b", "A2", "B1"}, names(seq))
}

// Every type appears exactly once, after its containing type and before the
// containing type's next sibling.
func TestAllTypes_ExactlyOnceParentsFirst(t *testing.T) {
	t.Parallel()
	seq, err := AllTypes(sampleTree(t), false)
	require.NoError(t, err)

	pos := make(map[symbols.Symbol]int)
	i := 0
	for typ := range seq {
		_, dup := pos[typ]
		require.False(t, dup, "type %s visited twice", typ.Name())
		pos[typ] = i
		i++
	}
	assert.Len(t, pos, 7)

	for typ, at := range pos {
		parent := typ.ContainingType()
		if parent == nil {
			continue
		}
		assert.Less(t, pos[parent], at, "%s before %s", parent.Name(), typ.Name())
	}
}

func TestAllTypes_MethodsAreNotTypes(t *testing.T) {
	t.Parallel()
	seq, err := AllTypes(sampleTree(t), false)
	require.NoError(t, err)
	for typ := range seq {
		assert.Equal(t, symbols.KindNamedType, typ.Kind())
	}
}

func TestAllTypes_EarlyBreakInsideNested(t *testing.T) {
	t.Parallel()
	seq, err := AllTypes(sampleTree(t), false)
	require.NoError(t, err)

	var seen []string
	for typ := range seq {
		seen = append(seen, typ.Name())
		if typ.Name() == "A1a1" {
			break
		}
	}
	assert.Equal(t, []string{"G", "A1", "A1a", "A1a1"}, seen)
}

func TestAllTypes_DeepNesting(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("Deep")
	parent := b.Type(b.Global(), "T0", symbols.TypeKindClass)
	const depth = 10000
	for i := 1; i < depth; i++ {
		parent = b.Type(parent, "T", symbols.TypeKindClass)
	}

	seq, err := AllTypes(b.Build(), false)
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
	}
	assert.Equal(t, depth, n)
}

// =============================================================================
// External assemblies
// =============================================================================

func externalTree(t *testing.T) *symbols.Compilation {
	t.Helper()
	b := symbols.NewBuilder("App")
	app := b.Namespace(b.Global(), "Shared")
	b.Type(app, "Local", symbols.TypeKindClass)

	lib := b.Reference("Lib")
	b.Type(b.Namespace(lib, "Shared"), "Remote", symbols.TypeKindClass)
	b.Type(b.Namespace(lib, "LibOnly"), "Helper", symbols.TypeKindClass)
	return b.Build()
}

func TestAllNamespaces_IncludeExternal(t *testing.T) {
	t.Parallel()
	c := externalTree(t)

	home, err := AllNamespaces(c, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared"}, names(home))

	all, err := AllNamespaces(c, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared", "LibOnly"}, names(all))
}

func TestAllTypes_IncludeExternal(t *testing.T) {
	t.Parallel()
	c := externalTree(t)

	home, err := AllTypes(c, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Local"}, names(home))

	all, err := AllTypes(c, true)
	require.NoError(t, err)
	got := names(all)
	assert.Equal(t, []string{"Local", "Remote", "Helper"}, got)

	var assemblies []string
	for typ := range all {
		assemblies = append(assemblies, typ.Assembly())
	}
	assert.Equal(t, []string{"App", "Lib", "Lib"}, assemblies)
}

// =============================================================================
// TypesIn / Methods
// =============================================================================

func TestTypesIn(t *testing.T) {
	t.Parallel()
	c := sampleTree(t)
	a, ok, err := Lookup(c, "A", false)
	require.NoError(t, err)
	require.True(t, ok)

	seq, err := TypesIn(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A1a", "A1a1", "A1b", "A2"}, names(seq))

	_, err = TypesIn(nil)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

func TestMethods(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	typ := b.Type(b.Global(), "Svc", symbols.TypeKindClass)
	b.Method(typ, "Start")
	b.Type(typ, "Nested", symbols.TypeKindClass)
	b.Method(typ, "Stop")

	seq, err := Methods(typ)
	require.NoError(t, err)
	assert.Equal(t, []string{"Start", "Stop"}, names(seq))

	_, err = Methods(nil)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

// =============================================================================
// Lookup
// =============================================================================

func TestLookup(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	ns := b.Namespace(b.Global(), "Acme.Core")
	plain := b.Type(ns, "Box", symbols.TypeKindClass)
	generic := b.Type(ns, "Box", symbols.TypeKindClass).AddTypeParameter("T", symbols.Invariant)
	pair := b.Type(ns, "Pair", symbols.TypeKindStruct).
		AddTypeParameter("K", symbols.Invariant).
		AddTypeParameter("V", symbols.Invariant)
	inner := b.Type(generic, "Inner", symbols.TypeKindClass)
	run := b.Method(inner, "Run")
	c := b.Build()

	tests := []struct {
		path string
		want symbols.Symbol
	}{
		{"Acme.Core.Box", plain},
		{"Acme.Core.Box<T>", generic},
		{"Acme.Core.Box<int>", generic},
		{"Acme.Core.Pair<K, V>", pair},
		{"Acme.Core.Pair<string, List<int, int>>", pair},
		{"Acme.Core.Box<T>.Inner", inner},
		{"Acme.Core.Box<T>.Inner.Run(int, string)", run},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok, err := Lookup(c, tt.path, false)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestLookup_Misses(t *testing.T) {
	t.Parallel()
	c := sampleTree(t)
	for _, path := range []string{"", "Nope", "A.Nope", "A.A1<T>", "A.A1.Run.Deeper"} {
		got, ok, err := Lookup(c, path, false)
		require.NoError(t, err, path)
		assert.False(t, ok, path)
		assert.Nil(t, got, path)
	}

	_, _, err := Lookup(nil, "A", false)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

func TestLookupKind_Mismatch(t *testing.T) {
	t.Parallel()
	c := sampleTree(t)

	typ, ok, err := LookupKind(c, "A.A1", false, symbols.KindNamedType)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A1", typ.Name())

	_, ok, err = LookupKind(c, "A.A1.Run", false, symbols.KindNamedType)
	require.Error(t, err)
	assert.False(t, ok)
	var mismatch *symbols.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, symbols.KindNamedType, mismatch.Want)
	assert.Equal(t, symbols.KindMethod, mismatch.Got)
	assert.True(t, strings.Contains(err.Error(), "named type"))
}

// Every type's dotted path resolves back to the same symbol.
func TestLookup_RoundTripAllTypes(t *testing.T) {
	t.Parallel()
	c := sampleTree(t)
	seq, err := AllTypes(c, false)
	require.NoError(t, err)

	for typ := range seq {
		path := dottedPath(typ)
		got, ok, err := LookupKind(c, path, false, symbols.KindNamedType)
		require.NoError(t, err, path)
		require.True(t, ok, path)
		assert.Same(t, typ, got, path)
	}
}

func dottedPath(sym symbols.Symbol) string {
	var parts []string
	for s := sym; s != nil && !s.IsGlobalNamespace(); {
		parts = append(parts, s.Name())
		if ct := s.ContainingType(); ct != nil {
			s = ct
		} else {
			s = s.ContainingNamespace()
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}
