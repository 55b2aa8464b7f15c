package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/jward/nameplate"
	"github.com/jward/nameplate/internal/naming"
)

var (
	flagExternal      bool
	flagTypeArguments bool
	flagVariance      bool
	flagParameters    bool
)

// addNameFlags registers the naming switches. Unset switches fall back to
// the config file.
func addNameFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagTypeArguments, "type-arguments", false, "render bound type arguments instead of type parameters")
	cmd.Flags().BoolVar(&flagVariance, "variance", false, "prefix type parameters with in/out")
	cmd.Flags().BoolVar(&flagParameters, "parameters", false, "append method parameter lists")
}

func addExternalFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagExternal, "external", false, "include referenced assemblies")
}

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List namespaces in pre-order",
	Args:  cobra.NoArgs,
	RunE:  runNamespaces,
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List named types, nested types after their container",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

var nameCmd = &cobra.Command{
	Use:   "name <path>",
	Short: "Render every name of one symbol",
	Long:  "Prints the generic, fully qualified, containing-type and XML-safe names of the symbol at a dotted path such as Acme.Box<T>.Run, plus its inheritdoc tag and attributes.",
	Args:  cobra.ExactArgs(1),
	RunE:  runName,
}

var membersCmd = &cobra.Command{
	Use:   "members <path>",
	Short: "List the direct members of a namespace or type",
	Args:  cobra.ExactArgs(1),
	RunE:  runMembers,
}

func init() {
	addExternalFlag(namespacesCmd)
	addExternalFlag(typesCmd)
	addNameFlags(typesCmd)
	addNameFlags(nameCmd)
	addNameFlags(membersCmd)
}

// --- Helpers ---

// openEngine opens the Engine on the existing database.
func openEngine() (*nameplate.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'nameplate index' first)", dbPath)
	}
	return nameplate.New(dbPath,
		nameplate.WithAssembly(cfg.Assembly),
		nameplate.WithLogger(newLogger()),
	)
}

// openQuery opens the database and loads its compilation. The caller
// closes the returned Engine.
func openQuery(ctx context.Context) (*nameplate.Engine, *nameplate.QueryBuilder, error) {
	e, err := openEngine()
	if err != nil {
		return nil, nil, err
	}
	q, err := e.Query(ctx)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, q, nil
}

// resolveFormat starts from the config file's naming section and applies
// each naming flag the user set.
func resolveFormat(cmd *cobra.Command) naming.Format {
	f := cfg.Format()
	set := func(name string, on bool, flag naming.Format) {
		if !cmd.Flags().Changed(name) {
			return
		}
		if on {
			f |= flag
		} else {
			f = f.Without(flag)
		}
	}
	set("type-arguments", flagTypeArguments, naming.UseTypeArguments)
	set("variance", flagVariance, naming.IncludeVariance)
	set("parameters", flagParameters, naming.IncludeParameterList)
	return f
}

func includeExternal(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("external") {
		return flagExternal
	}
	return cfg.IncludeExternal
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	return writeJSON(result)
}

func writeJSON(v any) error {
	if err := json.MarshalWrite(os.Stdout, v, json.Deterministic(true), jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(os.Stdout)
	return err
}

// outputError writes an error in the selected format and returns it so RunE
// exits non-zero.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	_ = writeJSON(CLIResult{
		Command: command,
		Error:   err.Error(),
	})
	return err
}

// --- Commands ---

func runNamespaces(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, q, err := openQuery(ctx)
	if err != nil {
		return outputError("namespaces", err)
	}
	defer e.Close()

	results, err := q.Namespaces(includeExternal(cmd))
	if err != nil {
		return outputError("namespaces", err)
	}
	return outputResult(CLIResult{Command: "namespaces", Results: results})
}

func runTypes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, q, err := openQuery(ctx)
	if err != nil {
		return outputError("types", err)
	}
	defer e.Close()

	results, err := q.Types(includeExternal(cmd), resolveFormat(cmd))
	if err != nil {
		return outputError("types", err)
	}
	return outputResult(CLIResult{Command: "types", Results: results})
}

func runName(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, q, err := openQuery(ctx)
	if err != nil {
		return outputError("name", err)
	}
	defer e.Close()

	report, err := q.Describe(args[0], resolveFormat(cmd))
	if err != nil {
		return outputError("name", err)
	}
	if report == nil {
		return outputError("name", fmt.Errorf("no symbol at %s", args[0]))
	}
	return outputResult(CLIResult{Command: "name", Results: *report})
}

func runMembers(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, q, err := openQuery(ctx)
	if err != nil {
		return outputError("members", err)
	}
	defer e.Close()

	results, err := q.Members(args[0], resolveFormat(cmd))
	if err != nil {
		return outputError("members", err)
	}
	if results == nil {
		return outputError("members", fmt.Errorf("no symbol at %s", args[0]))
	}
	return outputResult(CLIResult{Command: "members", Results: results})
}

var (
	flagScriptsDir string
	flagSet        []string
)

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Run a Risor script against the index",
	Long:  "Runs a Risor script with the traversal, naming and attribute functions as globals and prints the value of its last expression. Imports resolve from --scripts-dir, or the script's own directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	runCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "directory imports resolve from (default: the script's directory)")
	runCmd.Flags().StringArrayVar(&flagSet, "set", nil, "string global for the script: name=value (repeatable)")
}

func runScript(cmd *cobra.Command, args []string) error {
	script, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("run", fmt.Errorf("resolving script path %q: %w", args[0], err))
	}
	globals, err := parseGlobals(flagSet)
	if err != nil {
		return outputError("run", err)
	}
	scriptsDir := flagScriptsDir
	if scriptsDir == "" {
		scriptsDir = filepath.Dir(script)
	}

	e, err := openEngine()
	if err != nil {
		return outputError("run", err)
	}
	defer e.Close()

	result, err := e.RunScript(context.Background(), script, scriptsDir, nil, globals)
	if err != nil {
		return outputError("run", err)
	}
	return outputResult(CLIResult{Command: "run", Results: result})
}

// parseGlobals reads name=value pairs into script globals.
func parseGlobals(pairs []string) (map[string]any, error) {
	globals := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want name=value", p)
		}
		globals[name] = value
	}
	return globals, nil
}
