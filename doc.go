// Package nameplate extracts C# declarations with tree-sitter, stores them
// in SQLite, and renders canonical, documentation-safe names for them.
//
// # Pipeline
//
//  1. Index: each .cs file is parsed and its namespaces, types, methods,
//     type parameters, parameters, attributes and /// comments are written
//     to the store. Unchanged files are skipped by content hash.
//
//  2. Load: [Engine.Compilation] builds a symbol graph from the store, with
//     the home assembly as the source assembly and every other indexed
//     assembly as a reference. Namespaces declared in several files or
//     assemblies are merged.
//
//  3. Name: the graph is walked and formatted, either through the
//     [QueryBuilder] or from Risor scripts via [Engine.RunScript].
//
// # Usage
//
//	e, err := nameplate.New("index.db", nameplate.WithAssembly("Acme"))
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	_, err = e.IndexDirectory(ctx, "src")
//	_, err = e.IndexReference(ctx, "Acme.Core", "../core/src")
//
//	q, err := e.Query(ctx)
//	names, err := q.Describe("Acme.Widgets.Box<T>.Run")
//	fmt.Println(names.XMLSafeName) // Box{T}.Run(int)
//
// # Names
//
// A [Format] combines [UseTypeArguments], [IncludeVariance] and
// [IncludeParameterList]. Qualified names list every enclosing namespace
// and type; XML-safe names replace generic brackets with braces so they
// can be used as cref values.
//
// # Scripts
//
// Scripts receive the compilation through host functions (namespaces,
// types, members, lookup, qualified_name, xml_safe_name, inheritdoc,
// named_arg and others) plus the raw store rows through db_query. See the
// internal/runtime package for the full set of globals.
package nameplate
