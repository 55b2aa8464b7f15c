package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/nameplate"
	"github.com/jward/nameplate/internal/config"
	"github.com/jward/nameplate/internal/diag"
)

var (
	flagDB     string
	flagConfig string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// cfg is loaded once per invocation by the root PersistentPreRunE.
var (
	cfg     *config.Config
	cfgPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "nameplate",
	Short:         "Canonical names for C# declarations",
	Long:          "Nameplate indexes C# source with tree-sitter into SQLite and renders generic, qualified and documentation-safe names for its namespaces, types and methods.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return loadConfig()
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .nameplate/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(namespacesCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(runCmd)
}

// loadConfig reads --config, or the nearest config file above the working
// directory, falling back to the defaults.
func loadConfig() error {
	path := flagConfig
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting cwd: %w", err)
		}
		if path, err = config.Find(cwd); err != nil {
			return err
		}
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config not found: %s", path)
	}

	c := config.Default()
	if path != "" {
		var err error
		if c, err = config.Load(path); err != nil {
			return err
		}
	}
	cfg, cfgPath = c, path
	return nil
}

func newLogger() *diag.Logger {
	return diag.New(cfg.FilterMode())
}

var (
	flagForce      bool
	flagReferences []string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a C# source tree",
	Long:  "Parses C# files with tree-sitter and writes their namespaces, types, methods and attributes to the SQLite database. References from the config file and --reference are indexed as separate assemblies.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().StringArrayVar(&flagReferences, "reference", nil, "index a referenced assembly: name=dir (repeatable)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	refs, err := collectReferences(flagReferences)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dbDir, err)
	}

	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	engine, err := nameplate.New(dbPath,
		nameplate.WithAssembly(cfg.Assembly),
		nameplate.WithLogger(newLogger()),
	)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()

	stats, err := engine.IndexDirectory(ctx, targetDir)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	for _, ref := range refs {
		s, err := engine.IndexReference(ctx, ref.Assembly, ref.Path)
		if err != nil {
			return fmt.Errorf("indexing reference %s: %w", ref.Assembly, err)
		}
		stats.Indexed += s.Indexed
		stats.Unchanged += s.Unchanged
		stats.Symbols += s.Symbols
		stats.Attributes += s.Attributes
		stats.Diagnostics += s.Diagnostics
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d files, %d unchanged, %d symbols, %d diagnostics)\n",
		targetDir,
		time.Since(start).Round(time.Millisecond),
		stats.Indexed, stats.Unchanged, stats.Symbols, stats.Diagnostics,
	)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

// collectReferences merges the config file's references with name=dir
// flag values. A flag naming an assembly already in the config replaces
// its directory.
func collectReferences(flags []string) ([]config.Reference, error) {
	var refs []config.Reference
	index := map[string]int{}
	for _, r := range cfg.References {
		index[r.Assembly] = len(refs)
		refs = append(refs, config.Reference{Assembly: r.Assembly, Path: cfg.Resolve(r.Path)})
	}
	for _, f := range flags {
		ref, err := parseReference(f)
		if err != nil {
			return nil, err
		}
		if i, ok := index[ref.Assembly]; ok {
			refs[i] = ref
			continue
		}
		index[ref.Assembly] = len(refs)
		refs = append(refs, ref)
	}
	return refs, nil
}

// parseReference reads "Assembly=dir". The directory is made absolute.
func parseReference(s string) (config.Reference, error) {
	name, dir, ok := strings.Cut(s, "=")
	name, dir = strings.TrimSpace(name), strings.TrimSpace(dir)
	if !ok || name == "" || dir == "" {
		return config.Reference{}, fmt.Errorf("invalid reference %q: want assembly=dir", s)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return config.Reference{}, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	return config.Reference{Assembly: name, Path: abs}, nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath picks the database path: --db first, then the config
// file's database setting, then the default under repoRoot. A relative
// --db is taken from repoRoot; a relative config value from the config
// file's directory.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	if cfgPath != "" {
		return cfg.DatabasePath()
	}
	return filepath.Join(repoRoot, cfg.Database)
}
