package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jward/nameplate"
)

// formatSymbolsText formats SymbolResult rows as aligned columns.
func formatSymbolsText(w io.Writer, syms []nameplate.SymbolResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tASSEMBLY\tQUALIFIED NAME")
	for _, s := range syms {
		kind := s.Kind
		if s.TypeKind != "" {
			kind = s.TypeKind
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, kind, s.Assembly, s.QualifiedName)
	}
	tw.Flush()
}

// formatNameReportText prints one symbol's renderings as "field: value"
// lines followed by its attributes.
func formatNameReportText(w io.Writer, r nameplate.NameReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", label, value)
		}
	}
	row("Name", r.Name)
	row("Kind", r.Kind)
	row("Type kind", r.TypeKind)
	row("Assembly", r.Assembly)
	row("Generic name", r.GenericName)
	row("Qualified name", r.QualifiedName)
	row("Containing types", r.ContainingTypes)
	row("XML-safe name", r.XMLSafeName)
	row("Inheritdoc", r.InheritDoc)
	tw.Flush()

	if len(r.Attributes) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Attributes:")
	for _, a := range r.Attributes {
		fmt.Fprintf(w, "  [%s]\n", attributeText(a))
	}
}

// attributeText renders an attribute application the way it is written
// in source, named arguments sorted by name.
func attributeText(a nameplate.AttributeResult) string {
	args := append([]string(nil), a.Positional...)
	names := make([]string, 0, len(a.Named))
	for n := range a.Named {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		args = append(args, n+" = "+a.Named[n])
	}
	if len(args) == 0 {
		return a.Name
	}
	return a.Name + "(" + strings.Join(args, ", ") + ")"
}

// formatValueText prints a script result: lists one element per line,
// maps as sorted key: value lines, anything else as itself.
func formatValueText(w io.Writer, v any) {
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			fmt.Fprintln(w, scalarText(e))
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		for _, k := range keys {
			fmt.Fprintf(tw, "%s:\t%s\n", k, scalarText(x[k]))
		}
		tw.Flush()
	default:
		fmt.Fprintln(w, scalarText(v))
	}
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case map[string]any:
		// Symbols from the script host carry their name and id.
		if name, ok := x["name"]; ok {
			if id, ok := x["id"]; ok {
				return fmt.Sprintf("%v (#%v)", name, id)
			}
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []nameplate.SymbolResult:
		formatSymbolsText(w, v)
	case nameplate.NameReport:
		formatNameReportText(w, v)
	case nil:
		// Scripts may return nothing.
	default:
		if result.Command != "run" {
			return fmt.Errorf("unsupported result type for text format: %T", v)
		}
		formatValueText(w, v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
