package nameplate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/nameplate/internal/naming"
)

// Golden test format.
type goldenFile struct {
	Definitions []goldenDef       `json:"definitions,omitempty"`
	Names       []goldenName      `json:"names,omitempty"`
	Attributes  []goldenAttribute `json:"attributes,omitempty"`
}

type goldenDef struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	File string `json:"file"`
	Line int    `json:"line"` // 1-based
}

// goldenName checks the renderings of one symbol. Empty fields are not
// checked.
type goldenName struct {
	Path          string `json:"path"`
	Format        string `json:"format"`
	QualifiedName string `json:"qualified_name"`
	GenericName   string `json:"generic_name,omitempty"`
	XMLSafeName   string `json:"xml_safe_name,omitempty"`
}

type goldenAttribute struct {
	Path       string            `json:"path"`
	Name       string            `json:"name"`
	Positional []string          `json:"positional,omitempty"`
	Named      map[string]string `json:"named,omitempty"`
}

// TestGolden walks testdata/{language}/ directories and runs a golden test
// for every case that has both src/ and golden.json.
func TestGolden(t *testing.T) {
	langDirs, err := os.ReadDir("testdata")
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, langDir := range langDirs {
		if !langDir.IsDir() {
			continue
		}
		lang := langDir.Name()
		langRoot := filepath.Join("testdata", lang)
		levels, err := os.ReadDir(langRoot)
		if err != nil {
			continue
		}

		for _, level := range levels {
			if !level.IsDir() {
				continue
			}
			testDir := filepath.Join(langRoot, level.Name())
			goldenPath := filepath.Join(testDir, "golden.json")
			srcDir := filepath.Join(testDir, "src")

			if _, err := os.Stat(goldenPath); err != nil {
				continue
			}
			if _, err := os.Stat(srcDir); err != nil {
				continue
			}

			t.Run(lang+"/"+level.Name(), func(t *testing.T) {
				t.Parallel()
				runGoldenTest(t, srcDir, goldenPath)
			})
		}
	}
}

func runGoldenTest(t *testing.T, srcDir, goldenPath string) {
	t.Helper()

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	engine := newTestEngine(t)
	srcEntries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	var paths []string
	for _, e := range srcEntries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(srcDir, e.Name()))
		}
	}
	_, err = engine.IndexFiles(context.Background(), paths)
	require.NoError(t, err)

	if len(golden.Definitions) > 0 {
		t.Run("definitions", func(t *testing.T) {
			verifyDefinitions(t, engine, golden.Definitions)
		})
	}

	if len(golden.Names) == 0 && len(golden.Attributes) == 0 {
		return
	}
	q, err := engine.Query(context.Background())
	require.NoError(t, err)

	if len(golden.Names) > 0 {
		t.Run("names", func(t *testing.T) {
			verifyNames(t, q, golden.Names)
		})
	}
	if len(golden.Attributes) > 0 {
		t.Run("attributes", func(t *testing.T) {
			verifyAttributes(t, q, golden.Attributes)
		})
	}
}

func verifyDefinitions(t *testing.T, engine *Engine, expected []goldenDef) {
	t.Helper()

	type defKey struct {
		Name string
		Kind string
		File string
		Line int
	}
	actual := make(map[defKey]bool)

	rows, err := engine.Store().DB().Query(
		`SELECT s.name, s.kind, f.path, s.start_line
		 FROM symbols s JOIN files f ON f.id = s.file_id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name, kind, path string
		var line int
		require.NoError(t, rows.Scan(&name, &kind, &path, &line))
		actual[defKey{name, kind, filepath.Base(path), line + 1}] = true
	}
	require.NoError(t, rows.Err())

	for _, exp := range expected {
		key := defKey{exp.Name, exp.Kind, exp.File, exp.Line}
		assert.True(t, actual[key], "missing definition: %+v", exp)
	}
}

func verifyNames(t *testing.T, q *QueryBuilder, expected []goldenName) {
	t.Helper()
	for _, exp := range expected {
		f, ok := naming.ParseFormat(exp.Format)
		require.True(t, ok, "format %q", exp.Format)

		r, err := q.Describe(exp.Path, f)
		require.NoError(t, err, exp.Path)
		if !assert.NotNil(t, r, "no symbol at %s", exp.Path) {
			continue
		}
		assert.Equal(t, exp.QualifiedName, r.QualifiedName, exp.Path)
		if exp.GenericName != "" {
			assert.Equal(t, exp.GenericName, r.GenericName, exp.Path)
		}
		if exp.XMLSafeName != "" {
			assert.Equal(t, exp.XMLSafeName, r.XMLSafeName, exp.Path)
		}
	}
}

func verifyAttributes(t *testing.T, q *QueryBuilder, expected []goldenAttribute) {
	t.Helper()
	for _, exp := range expected {
		r, err := q.Describe(exp.Path, 0)
		require.NoError(t, err, exp.Path)
		if !assert.NotNil(t, r, "no symbol at %s", exp.Path) {
			continue
		}
		var found *AttributeResult
		for i := range r.Attributes {
			if r.Attributes[i].Name == exp.Name {
				found = &r.Attributes[i]
				break
			}
		}
		if !assert.NotNil(t, found, "%s: missing attribute %s", exp.Path, exp.Name) {
			continue
		}
		assert.Equal(t, exp.Positional, found.Positional, "%s %s positional", exp.Path, exp.Name)
		assert.Equal(t, exp.Named, found.Named, "%s %s named", exp.Path, exp.Name)
	}
}
