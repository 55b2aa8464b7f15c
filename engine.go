package nameplate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/nameplate/internal/diag"
	"github.com/jward/nameplate/internal/extract"
	"github.com/jward/nameplate/internal/loader"
	"github.com/jward/nameplate/internal/store"
	"github.com/jward/nameplate/internal/symbols"
)

// DefaultAssembly names the home assembly when WithAssembly is not given.
const DefaultAssembly = "App"

const extractorVersionKey = "extractor_version"

// Engine orchestrates the nameplate pipeline: file discovery, change
// detection, C# extraction into SQLite, and loading the stored declarations
// as a symbols.Compilation.
type Engine struct {
	store    *store.Store
	log      *diag.Logger
	assembly string

	// useParallel enables the parallel extraction pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel controls parallel extraction. When true (default), IndexFiles
// parses on a worker pool and a single goroutine commits batches to SQLite.
// Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithAssembly names the home assembly that IndexFiles and IndexDirectory
// index into and that Compilation treats as the source assembly.
func WithAssembly(name string) Option {
	return func(e *Engine) {
		e.assembly = name
	}
}

// WithLogger routes progress logs and extraction diagnostics to log.
func WithLogger(log *diag.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// IndexStats summarizes one indexing call.
type IndexStats struct {
	Indexed     int
	Unchanged   int
	Symbols     int
	Attributes  int
	Diagnostics int
}

func (s *IndexStats) add(x extract.Stats) {
	s.Indexed++
	s.Symbols += x.Symbols
	s.Attributes += x.Attributes
	s.Diagnostics += x.Diagnostics
}

// New creates an Engine backed by a SQLite database at dbPath. A database
// written by a different extractor version is cleared so every file is
// extracted again.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("nameplate: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("nameplate: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		log:         diag.Nop(),
		assembly:    DefaultAssembly,
		useParallel: true, // default to parallel extraction
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.checkExtractorVersion(); err != nil {
		s.Close()
		return nil, fmt.Errorf("nameplate: %w", err)
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Assembly is the home assembly name.
func (e *Engine) Assembly() string {
	return e.assembly
}

func (e *Engine) checkExtractorVersion() error {
	stored, ok, err := e.store.Metadata(extractorVersionKey)
	if err != nil {
		return err
	}
	if ok && stored == extract.Version {
		return nil
	}
	if ok {
		e.log.Infof("extractor version changed (%s -> %s), clearing index", stored, extract.Version)
		if err := e.Reset(); err != nil {
			return err
		}
	}
	return e.store.SetMetadata(extractorVersionKey, extract.Version)
}

// Reset deletes every indexed file so the next index call extracts
// everything again.
func (e *Engine) Reset() error {
	files, err := e.store.Files()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for _, f := range files {
		if err := e.store.DeleteFileData(f.ID); err != nil {
			return fmt.Errorf("reset %s: %w", f.Path, err)
		}
	}
	return nil
}

// Compilation loads the stored declarations as a fresh compilation with
// the home assembly as its source assembly.
func (e *Engine) Compilation(ctx context.Context) (*symbols.Compilation, error) {
	c, err := loader.Load(ctx, e.store, e.assembly, loader.WithLogger(e.log))
	if err != nil {
		return nil, fmt.Errorf("nameplate: %w", err)
	}
	return c, nil
}

// IndexFiles indexes the given C# files into the home assembly. Files that
// are not C# source are ignored; files whose content hash and assembly are
// unchanged are skipped.
//
// For each file:
// 1. Skip non-source and unchanged files
// 2. Delete stale data and insert the file record
// 3. Extract declarations
//
// Errors on individual files are collected; processing continues.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) (IndexStats, error) {
	return e.indexInto(ctx, e.assembly, paths)
}

// IndexReference indexes the C# files under root as the referenced
// assembly named assembly.
func (e *Engine) IndexReference(ctx context.Context, assembly, root string) (IndexStats, error) {
	if assembly == "" || assembly == e.assembly {
		return IndexStats{}, fmt.Errorf("index reference %s: assembly name must be set and differ from %q", root, e.assembly)
	}
	paths, err := e.listFiles(root)
	if err != nil {
		return IndexStats{}, err
	}
	return e.indexInto(ctx, assembly, paths)
}

// IndexDirectory indexes every C# file under root into the home assembly.
// If root is inside a git repository, git ls-files is used so .gitignore
// is respected; otherwise the filesystem is walked.
func (e *Engine) IndexDirectory(ctx context.Context, root string) (IndexStats, error) {
	paths, err := e.listFiles(root)
	if err != nil {
		return IndexStats{}, err
	}
	return e.IndexFiles(ctx, paths)
}

func (e *Engine) indexInto(ctx context.Context, assembly string, paths []string) (IndexStats, error) {
	start := time.Now()
	var (
		stats IndexStats
		err   error
	)
	if e.useParallel {
		stats, err = e.indexFilesParallel(ctx, assembly, paths)
	} else {
		stats, err = e.indexFilesSerial(ctx, assembly, paths)
	}
	e.log.Infof("%s: indexed %d files (%d unchanged), %d symbols, %d attributes, %d diagnostics in %s",
		assembly, stats.Indexed, stats.Unchanged, stats.Symbols, stats.Attributes, stats.Diagnostics,
		time.Since(start).Round(time.Millisecond))
	return stats, err
}

func (e *Engine) indexFilesSerial(ctx context.Context, assembly string, paths []string) (IndexStats, error) {
	var (
		stats IndexStats
		errs  []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		item, skip, err := e.prepareFile(assembly, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
			continue
		}
		if skip {
			if extract.IsSourceFile(path) {
				stats.Unchanged++
			}
			continue
		}
		x, err := extract.New(e.store, e.log).ExtractFile(ctx, item.fileID, item.path, item.content)
		if err != nil {
			e.discard(item)
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
			continue
		}
		stats.add(x)
	}
	if len(errs) > 0 {
		return stats, fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return stats, nil
}

// prepareFile does the serial per-file work: hash check, cleanup and the
// new file record. skip is true for non-source and unchanged files.
func (e *Engine) prepareFile(assembly, path string) (workItem, bool, error) {
	if !extract.IsSourceFile(path) {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash && existing.Assembly == assembly {
		return workItem{}, true, nil // unchanged
	}
	if existing != nil {
		if err := e.store.DeleteFileData(existing.ID); err != nil {
			return workItem{}, false, fmt.Errorf("delete old data: %w", err)
		}
	}

	fileID, err := e.store.InsertFile(&store.File{
		Path:        path,
		Assembly:    assembly,
		Hash:        hash,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return workItem{}, false, fmt.Errorf("insert file: %w", err)
	}
	return workItem{path: path, fileID: fileID, content: content}, false, nil
}

// discard removes the file record of a failed extraction so the next run
// retries it instead of trusting its hash.
func (e *Engine) discard(item workItem) {
	if err := e.store.DeleteFileData(item.fileID); err != nil {
		e.log.Errorf("discard %s: %v", item.path, err)
	}
}

// skipDirs are excluded from the filesystem walk.
var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	"packages":     true,
	"node_modules": true,
}

// inSkippedDir reports whether a root-relative path lies under build output.
func inSkippedDir(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, p := range parts[:len(parts)-1] {
		if skipDirs[p] {
			return true
		}
	}
	return false
}

func (e *Engine) listFiles(root string) ([]string, error) {
	paths, err := gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available; fall back to walk.
		return walkListFiles(root)
	}
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) C# files under root.
func gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if extract.IsSourceFile(line) && !inSkippedDir(line) {
			paths = append(paths, filepath.Join(root, line))
		}
	}
	return paths, nil
}

// walkListFiles discovers C# files by walking the filesystem. Hidden
// directories and build output are skipped.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.IsSourceFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
