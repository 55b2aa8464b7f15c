package nameplate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/nameplate/internal/extract"
	"github.com/jward/nameplate/internal/store"
)

const widgetSource = `namespace Acme.Widgets
{
    [Serializable]
    public class Box<T>
    {
        /// <summary>Runs the box.</summary>
        public void Run(int count) { }

        public class Lid { }
    }
}
`

const toolSource = `namespace Acme.Widgets;

public interface ITool<in TTarget>
{
    void Apply(TTarget target, ref int uses);
}
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// writeFiles writes name -> content under dir and returns the paths in
// argument order.
func writeFiles(t *testing.T, dir string, files ...string) []string {
	t.Helper()
	var paths []string
	for i := 0; i+1 < len(files); i += 2 {
		path := filepath.Join(dir, files[i])
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(files[i+1]), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func symbolNames(t *testing.T, s *store.Store) []string {
	t.Helper()
	rows, err := s.DB().Query(`SELECT name FROM symbols ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_CreatesStore(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	require.NotNil(t, e.Store())
	assert.Equal(t, DefaultAssembly, e.Assembly())

	v, ok, err := e.Store().Metadata(extractorVersionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, extract.Version, v)
}

func TestNew_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := New("/nonexistent/dir/db.sqlite")
	require.Error(t, err)
}

func TestNew_ExtractorVersionChangeClearsIndex(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	paths := writeFiles(t, t.TempDir(), "Box.cs", widgetSource)

	e, err := New(dbPath)
	require.NoError(t, err)
	_, err = e.IndexFiles(context.Background(), paths)
	require.NoError(t, err)
	require.NoError(t, e.Store().SetMetadata(extractorVersionKey, "0"))
	require.NoError(t, e.Close())

	e, err = New(dbPath)
	require.NoError(t, err)
	defer e.Close()
	files, err := e.Store().Files()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, symbolNames(t, e.Store()))
}

// =============================================================================
// Indexing
// =============================================================================

func TestIndexFiles_ExtractsDeclarations(t *testing.T) {
	t.Parallel()
	for _, parallel := range []bool{false, true} {
		e := newTestEngine(t, WithParallel(parallel))
		paths := writeFiles(t, t.TempDir(), "Box.cs", widgetSource, "Tool.cs", toolSource, "README.md", "# not code")

		stats, err := e.IndexFiles(context.Background(), paths)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Indexed)
		assert.Equal(t, 0, stats.Unchanged)
		assert.Equal(t, 1, stats.Attributes)

		assert.ElementsMatch(t,
			[]string{"Acme.Widgets", "Box", "Run", "Lid", "Acme.Widgets", "ITool", "Apply"},
			symbolNames(t, e.Store()), "parallel=%v", parallel)

		files, err := e.Store().FilesByAssembly(DefaultAssembly)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	}
}

func TestIndexFiles_SkipsUnchanged(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	paths := writeFiles(t, dir, "Box.cs", widgetSource, "Tool.cs", toolSource)
	ctx := context.Background()

	_, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)
	before, err := e.Store().FileByPath(paths[0])
	require.NoError(t, err)

	stats, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Indexed)
	assert.Equal(t, 2, stats.Unchanged)

	after, err := e.Store().FileByPath(paths[0])
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
}

func TestIndexFiles_ReindexesChangedFile(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, WithParallel(false))
	dir := t.TempDir()
	paths := writeFiles(t, dir, "Box.cs", widgetSource)
	ctx := context.Background()

	_, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)

	writeFiles(t, dir, "Box.cs", `namespace Acme.Widgets { class Crate { } }`)
	stats, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, []string{"Acme.Widgets", "Crate"}, symbolNames(t, e.Store()))
}

func TestIndexFiles_MissingFileReportsError(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	paths := writeFiles(t, dir, "Box.cs", widgetSource)
	paths = append(paths, filepath.Join(dir, "Gone.cs"))

	stats, err := e.IndexFiles(context.Background(), paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gone.cs")
	assert.Equal(t, 1, stats.Indexed)
}

func TestIndexDirectory_WalksSourceFiles(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	dir := t.TempDir()
	writeFiles(t, dir,
		"src/Box.cs", widgetSource,
		"src/nested/Tool.cs", toolSource,
		"obj/Debug/Generated.cs", `class Generated { }`,
		".hidden/Secret.cs", `class Secret { }`,
		"Form1.Designer.cs", `class Form1 { }`,
	)

	stats, err := e.IndexDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Indexed)

	names := symbolNames(t, e.Store())
	assert.Contains(t, names, "Box")
	assert.Contains(t, names, "ITool")
	assert.NotContains(t, names, "Generated")
	assert.NotContains(t, names, "Secret")
	assert.NotContains(t, names, "Form1")
}

func TestIndexReference_UsesOwnAssembly(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, WithAssembly("Acme"))
	ctx := context.Background()
	libDir := t.TempDir()
	writeFiles(t, libDir, "Tool.cs", toolSource)

	_, err := e.IndexReference(ctx, "Acme.Tools", libDir)
	require.NoError(t, err)

	files, err := e.Store().FilesByAssembly("Acme.Tools")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = e.IndexReference(ctx, "Acme", libDir)
	require.Error(t, err)
	_, err = e.IndexReference(ctx, "", libDir)
	require.Error(t, err)
}

func TestIndexFiles_MovingFileBetweenAssembliesReindexes(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, "Tool.cs", toolSource)

	_, err := e.IndexReference(ctx, "Lib", dir)
	require.NoError(t, err)
	stats, err := e.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)

	assemblies, err := e.Store().Assemblies()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultAssembly}, assemblies)
}

func TestReset(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	paths := writeFiles(t, t.TempDir(), "Box.cs", widgetSource)
	ctx := context.Background()

	_, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)
	require.NoError(t, e.Reset())
	assert.Empty(t, symbolNames(t, e.Store()))

	stats, err := e.IndexFiles(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
}

// =============================================================================
// Loading
// =============================================================================

func TestCompilation_MergesAssemblies(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, WithAssembly("Acme"))
	ctx := context.Background()
	_, err := e.IndexFiles(ctx, writeFiles(t, t.TempDir(), "Box.cs", widgetSource))
	require.NoError(t, err)
	libDir := t.TempDir()
	writeFiles(t, libDir, "Tool.cs", toolSource)
	_, err = e.IndexReference(ctx, "Acme.Tools", libDir)
	require.NoError(t, err)

	c, err := e.Compilation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.AssemblyName())

	q := &QueryBuilder{comp: c, store: e.Store()}
	source, err := q.Types(false, UseTypeArguments)
	require.NoError(t, err)
	all, err := q.Types(true, UseTypeArguments)
	require.NoError(t, err)

	var sourceNames, allNames []string
	for _, r := range source {
		sourceNames = append(sourceNames, r.QualifiedName)
	}
	for _, r := range all {
		allNames = append(allNames, r.QualifiedName)
	}
	assert.Equal(t, []string{"Acme.Widgets.Box<T>", "Acme.Widgets.Box<T>.Lid"}, sourceNames)
	assert.ElementsMatch(t, []string{"Acme.Widgets.Box<T>", "Acme.Widgets.Box<T>.Lid", "Acme.Widgets.ITool<TTarget>"}, allNames)
}
