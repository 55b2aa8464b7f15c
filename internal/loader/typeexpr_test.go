package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeExpr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in    string
		out   string
		path  string
		arity int
	}{
		{"int", "int", "int", 0},
		{"List<int>", "List<int>", "List", 1},
		{"Dictionary<string,List<int>>", "Dictionary<string, List<int>>", "Dictionary", 2},
		{"global::Acme.Box<T>", "Acme.Box<T>", "Acme.Box", 1},
		{"int[]", "int[]", "int", 0},
		{"int[,][]", "int[][]", "int", 0},
		{"byte*", "byte*", "byte", 0},
		{"int?", "int?", "int", 0},
		{" Box < T > [] ", "Box<T>[]", "Box", 1},
		{"@class", "class", "class", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			expr, err := parseTypeExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.out, expr.String())
			assert.Equal(t, tt.path, expr.path())
			assert.Len(t, expr.last().args, tt.arity)
		})
	}
}

func TestParseTypeExpr_VerbatimConstructs(t *testing.T) {
	t.Parallel()

	fp, err := parseTypeExpr("delegate*<int, void>")
	require.NoError(t, err)
	assert.True(t, fp.fnptr)
	assert.Equal(t, "delegate*<int, void>", fp.String())

	tuple, err := parseTypeExpr("(int a, string b)[]")
	require.NoError(t, err)
	assert.True(t, tuple.tuple)
	assert.Equal(t, "(int a, string b)[]", tuple.String())
}

func TestParseTypeExpr_Errors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "List<int", "int]", "A..B", "(int"} {
		_, err := parseTypeExpr(in)
		assert.Error(t, err, in)
	}
}
