package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/nameplate/internal/symbols"
)

var (
	intType    = symbols.Special("int")
	stringType = symbols.Special("string")
)

type fixture struct {
	core  *symbols.Decl
	outer *symbols.Decl
	inner *symbols.Decl
	run   *symbols.Decl
	dict  *symbols.Decl
	list  *symbols.Decl
	fn    *symbols.Decl
}

// newFixture builds Acme.Core.Outer<T>.Inner.Run(ref int, string) plus a
// couple of generic definitions to construct.
func newFixture(t *testing.T) fixture {
	t.Helper()
	b := symbols.NewBuilder("App")
	var fx fixture
	fx.core = b.Namespace(b.Global(), "Acme.Core")
	fx.outer = b.Type(fx.core, "Outer", symbols.TypeKindClass).AddTypeParameter("T", symbols.Invariant)
	fx.inner = b.Type(fx.outer, "Inner", symbols.TypeKindClass)
	fx.run = b.Method(fx.inner, "Run").
		AddParameter("count", intType, symbols.RefRef).
		AddParameter("label", stringType, symbols.RefNone)
	fx.dict = b.Type(fx.core, "Dictionary", symbols.TypeKindClass).
		AddTypeParameter("TKey", symbols.Invariant).
		AddTypeParameter("TValue", symbols.Invariant)
	fx.list = b.Type(fx.core, "List", symbols.TypeKindClass).AddTypeParameter("T", symbols.Invariant)
	fx.fn = b.Type(fx.core, "Func", symbols.TypeKindDelegate).
		AddTypeParameter("T", symbols.Contravariant).
		AddTypeParameter("TResult", symbols.Covariant)
	b.Build()
	return fx
}

func allFormats() []Format {
	var out []Format
	for f := Format(0); f <= UseTypeArguments|IncludeVariance|IncludeParameterList; f++ {
		out = append(out, f)
	}
	return out
}

// =============================================================================
// WriteGenericName: generic segment
// =============================================================================

func TestGenericName_NoTypeParametersIsBareName(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	typ := b.Type(b.Global(), "Svc", symbols.TypeKindClass)
	m := b.Method(typ, "Start")

	for _, f := range allFormats() {
		got, err := GenericName(m, f.Without(IncludeParameterList))
		require.NoError(t, err)
		assert.Equal(t, "Start", got, f.String())

		got, err = GenericName(typ, f)
		require.NoError(t, err)
		assert.Equal(t, "Svc", got, f.String())
	}
}

func TestGenericName_Variance(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	m := b.Method(b.Type(b.Global(), "Svc", symbols.TypeKindClass), "Name").
		AddTypeParameter("T", symbols.Contravariant).
		AddTypeParameter("U", symbols.Covariant)

	got, err := GenericName(m, IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Name<in T, out U>", got)

	got, err = GenericName(m, 0)
	require.NoError(t, err)
	assert.Equal(t, "Name<T, U>", got)
}

func TestGenericName_InvariantHasNoPrefix(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	got, err := GenericName(fx.dict, IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Dictionary<TKey, TValue>", got)
}

func TestGenericName_TypeArguments(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	constructed := symbols.Construct(fx.dict, intType, stringType)

	got, err := GenericName(constructed, UseTypeArguments)
	require.NoError(t, err)
	assert.Equal(t, "Dictionary<int, string>", got)

	got, err = GenericName(constructed, 0)
	require.NoError(t, err)
	assert.Equal(t, "Dictionary<TKey, TValue>", got)
}

// Variance describes declared parameters. With UseTypeArguments set it is
// ignored, including on a definition that falls back to its parameters.
func TestGenericName_VarianceIgnoredForArguments(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	constructed := symbols.Construct(fx.fn, stringType, intType)

	got, err := GenericName(constructed, UseTypeArguments|IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Func<string, int>", got)

	got, err = GenericName(fx.fn, UseTypeArguments|IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Func<T, TResult>", got)

	got, err = GenericName(fx.fn, IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Func<in T, out TResult>", got)
}

func TestGenericName_NestedArguments(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	inner := symbols.Construct(fx.dict, intType, symbols.ArrayOf(stringType))
	outer := symbols.Construct(fx.list, inner)

	got, err := GenericName(outer, UseTypeArguments|IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "List<Dictionary<int, string[]>>", got)
}

func TestGenericName_TypeParameterArgument(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	got, err := GenericName(symbols.Construct(fx.list, fx.outer.TypeParameterSymbol("T")), UseTypeArguments)
	require.NoError(t, err)
	assert.Equal(t, "List<T>", got)
}

// =============================================================================
// WriteGenericName: pointer rejection
// =============================================================================

func TestGenericName_PointerArgumentRejected(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	tests := []struct {
		name string
		arg  symbols.Symbol
	}{
		{"pointer", symbols.PointerTo(intType)},
		{"function pointer", symbols.FunctionPointer("delegate*<int, void>")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var b strings.Builder
			b.WriteString("x.")
			err := WriteGenericName(&b, symbols.Construct(fx.dict, stringType, tt.arg), UseTypeArguments)
			require.Error(t, err)
			assert.ErrorIs(t, err, symbols.ErrUnsupportedArgument)
			assert.Equal(t, "x.Dictionary", b.String())
			assert.NotContains(t, b.String(), "<")
		})
	}
}

// Without UseTypeArguments the bound pointer argument is never looked at.
func TestGenericName_PointerArgumentIgnoredForParameters(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	got, err := GenericName(symbols.Construct(fx.list, symbols.PointerTo(intType)), 0)
	require.NoError(t, err)
	assert.Equal(t, "List<T>", got)
}

func TestGenericName_PointerAsParameterTypeIsFine(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	m := b.Method(b.Type(b.Global(), "Native", symbols.TypeKindStruct), "Copy").
		AddParameter("src", symbols.PointerTo(intType), symbols.RefNone).
		AddParameter("cb", symbols.FunctionPointer("delegate*<int, void>"), symbols.RefNone)

	got, err := GenericName(m, IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "Copy(int*, delegate*<int, void>)", got)
}

// =============================================================================
// WriteGenericName: parameter lists
// =============================================================================

func TestGenericName_ParameterList(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	got, err := GenericName(fx.run, IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "Run(ref int, string)", got)

	got, err = GenericName(fx.run, 0)
	require.NoError(t, err)
	assert.Equal(t, "Run", got)
}

func TestGenericName_EmptyParameterList(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	m := b.Method(b.Type(b.Global(), "Svc", symbols.TypeKindClass), "Stop")

	got, err := GenericName(m, IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "Stop()", got)
}

func TestGenericName_GenericMethodParameters(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	b := symbols.NewBuilder("App")
	m := b.Method(b.Type(b.Global(), "Svc", symbols.TypeKindClass), "Map").AddTypeParameter("T", symbols.Invariant)
	m.AddParameter("items", symbols.Construct(fx.list, m.TypeParameterSymbol("T")), symbols.RefParams).
		AddParameter("out", symbols.ArrayOf(m.TypeParameterSymbol("T")), symbols.RefOut)

	got, err := GenericName(m, IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "Map<T>(params List<T>, out T[])", got)
}

func TestGenericName_DelegateParameterList(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.fn.AddParameter("arg", fx.fn.TypeParameterSymbol("T"), symbols.RefIn)

	got, err := GenericName(fx.fn, IncludeParameterList|IncludeVariance)
	require.NoError(t, err)
	assert.Equal(t, "Func<in T, out TResult>(in T)", got)

	// a non-delegate type has no signature
	got, err = GenericName(fx.outer, IncludeParameterList)
	require.NoError(t, err)
	assert.Equal(t, "Outer<T>", got)
}

func TestGenericName_OtherShapes(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	tests := []struct {
		sym  symbols.Symbol
		want string
	}{
		{fx.core, "Core"},
		{symbols.ArrayOf(symbols.ArrayOf(intType)), "int[][]"},
		{symbols.PointerTo(intType), "int*"},
		{symbols.FunctionPointer("delegate*<void>"), "delegate*<void>"},
		{symbols.Unresolved("Missing.Thing"), "Missing.Thing"},
		{fx.outer.TypeParameterSymbol("T"), "T"},
	}
	for _, tt := range tests {
		got, err := GenericName(tt.sym, UseTypeArguments)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGenericName_NilArguments(t *testing.T) {
	t.Parallel()
	_, err := GenericName(nil, 0)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)

	err = WriteGenericName(nil, intType, 0)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

// =============================================================================
// Qualified names
// =============================================================================

func TestFullyQualifiedName(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	tests := []struct {
		name string
		sym  symbols.Symbol
		f    Format
		want string
	}{
		{"namespace", fx.core, 0, "Acme.Core"},
		{"type", fx.outer, 0, "Acme.Core.Outer<T>"},
		{"nested", fx.inner, 0, "Acme.Core.Outer<T>.Inner"},
		{"method", fx.run, 0, "Acme.Core.Outer<T>.Inner.Run"},
		{"method with params", fx.run, IncludeParameterList, "Acme.Core.Outer<T>.Inner.Run(ref int, string)"},
		{"constructed", symbols.Construct(fx.dict, intType, stringType), UseTypeArguments, "Acme.Core.Dictionary<int, string>"},
		{"special", intType, 0, "int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FullyQualifiedName(tt.sym, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullyQualifiedName_GlobalType(t *testing.T) {
	t.Parallel()
	b := symbols.NewBuilder("App")
	typ := b.Type(b.Global(), "Program", symbols.TypeKindClass)
	got, err := FullyQualifiedName(typ, 0)
	require.NoError(t, err)
	assert.Equal(t, "Program", got)
}

func TestContainingTypes(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	got, err := ContainingTypes(fx.run, false, false)
	require.NoError(t, err)
	assert.Equal(t, "Outer<T>.Inner", got)

	got, err = ContainingTypes(fx.run, true, false)
	require.NoError(t, err)
	assert.Equal(t, "Outer<T>.Inner.Run", got)

	got, err = ContainingTypes(fx.run, true, true)
	require.NoError(t, err)
	assert.Equal(t, "Outer<T>.Inner.Run(ref int, string)", got)

	got, err = ContainingTypes(fx.outer, true, false)
	require.NoError(t, err)
	assert.Equal(t, "Outer<T>", got)
}

func TestContainingTypes_NoneWithoutSelfWritesNothing(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	var b strings.Builder
	b.WriteString("keep")
	require.NoError(t, WriteContainingTypes(&b, fx.outer, false, false))
	assert.Equal(t, "keep", b.String())
}

func TestWriteNamespace(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	got, err := Namespace(fx.core, true)
	require.NoError(t, err)
	assert.Equal(t, "Acme.Core", got)

	got, err = Namespace(fx.core, false)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got)

	_, err = Namespace(nil, true)
	assert.ErrorIs(t, err, symbols.ErrInvalidArgument)
}

func TestWriteNamespaces_EmptyLeavesBufferUntouched(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteString("prefix")
	require.NoError(t, WriteNamespaces(&b, nil))
	assert.Equal(t, "prefix", b.String())
}

// =============================================================================
// Format
// =============================================================================

func TestFormat_StringAndParse(t *testing.T) {
	t.Parallel()
	for _, f := range allFormats() {
		parsed, ok := ParseFormat(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, parsed)
	}
	assert.Equal(t, "none", Format(0).String())
	assert.Equal(t, "variance|parameters", (IncludeParameterList | IncludeVariance).String())

	_, ok := ParseFormat("variance|bogus")
	assert.False(t, ok)
}

func TestFormat_Predicates(t *testing.T) {
	t.Parallel()
	f := FormatFrom(true, false, true)
	assert.True(t, f.HasTypeArguments())
	assert.False(t, f.HasVariance())
	assert.True(t, f.HasParameterList())
	assert.Equal(t, UseTypeArguments, f.Without(IncludeParameterList))
}
