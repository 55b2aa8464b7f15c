package nameplate

import (
	"context"
	"fmt"
	"iter"

	"github.com/jward/nameplate/internal/attrs"
	"github.com/jward/nameplate/internal/docs"
	"github.com/jward/nameplate/internal/hierarchy"
	"github.com/jward/nameplate/internal/naming"
	"github.com/jward/nameplate/internal/store"
	"github.com/jward/nameplate/internal/symbols"
)

// QueryBuilder answers naming questions over one loaded compilation and the
// store it came from.
type QueryBuilder struct {
	comp  *symbols.Compilation
	store *store.Store
}

// Query loads a fresh compilation and returns a QueryBuilder over it.
func (e *Engine) Query(ctx context.Context) (*QueryBuilder, error) {
	c, err := e.Compilation(ctx)
	if err != nil {
		return nil, err
	}
	return &QueryBuilder{comp: c, store: e.store}, nil
}

// Compilation is the graph the builder queries.
func (q *QueryBuilder) Compilation() *symbols.Compilation {
	return q.comp
}

// SymbolResult is one symbol rendered for listing.
type SymbolResult struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	TypeKind      string `json:"type_kind,omitempty"`
	Assembly      string `json:"assembly"`
	QualifiedName string `json:"qualified_name"`
}

// NameReport is every rendering of one symbol.
type NameReport struct {
	SymbolResult    `json:",inline"`
	GenericName     string            `json:"generic_name"`
	ContainingTypes string            `json:"containing_types"`
	XMLSafeName     string            `json:"xml_safe_name"`
	InheritDoc      string            `json:"inheritdoc,omitempty"`
	Attributes      []AttributeResult `json:"attributes,omitempty"`
}

// AttributeResult is an attribute application with its arguments rendered
// as text.
type AttributeResult struct {
	Name       string            `json:"name"`
	Positional []string          `json:"positional,omitempty"`
	Named      map[string]string `json:"named,omitempty"`
}

func (q *QueryBuilder) result(sym symbols.Symbol, f naming.Format) (SymbolResult, error) {
	qn, err := naming.FullyQualifiedName(sym, f)
	if err != nil {
		return SymbolResult{}, err
	}
	r := SymbolResult{
		Name:          sym.Name(),
		Kind:          sym.Kind().String(),
		Assembly:      sym.Assembly(),
		QualifiedName: qn,
	}
	if sym.TypeKind() != symbols.TypeKindNone {
		r.TypeKind = sym.TypeKind().String()
	}
	return r, nil
}

func (q *QueryBuilder) collect(op string, seq iter.Seq[symbols.Symbol], f naming.Format) ([]SymbolResult, error) {
	results := []SymbolResult{}
	for sym := range seq {
		r, err := q.result(sym, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Namespaces lists every namespace in pre-order.
func (q *QueryBuilder) Namespaces(includeExternal bool) ([]SymbolResult, error) {
	seq, err := hierarchy.AllNamespaces(q.comp, includeExternal)
	if err != nil {
		return nil, err
	}
	return q.collect("namespaces", seq, 0)
}

// Types lists every named type, rendering qualified names under f.
func (q *QueryBuilder) Types(includeExternal bool, f naming.Format) ([]SymbolResult, error) {
	seq, err := hierarchy.AllTypes(q.comp, includeExternal)
	if err != nil {
		return nil, err
	}
	return q.collect("types", seq, f)
}

// Lookup resolves a dotted path over every assembly.
func (q *QueryBuilder) Lookup(path string) (symbols.Symbol, bool, error) {
	return hierarchy.Lookup(q.comp, path, true)
}

// Members lists the direct members of the symbol at path, or nil if no
// symbol is there.
func (q *QueryBuilder) Members(path string, f naming.Format) ([]SymbolResult, error) {
	sym, ok, err := q.Lookup(path)
	if err != nil || !ok {
		return nil, err
	}
	results := []SymbolResult{}
	for _, m := range sym.Members() {
		r, err := q.result(m, f)
		if err != nil {
			return nil, fmt.Errorf("members %s: %w", path, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Describe renders the symbol at path every way the formatter can. It
// returns nil if no symbol is there.
func (q *QueryBuilder) Describe(path string, f naming.Format) (*NameReport, error) {
	sym, ok, err := q.Lookup(path)
	if err != nil || !ok {
		return nil, err
	}
	base, err := q.result(sym, f)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	report := &NameReport{SymbolResult: base}

	if report.GenericName, err = naming.GenericName(sym, f); err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	if sym.Kind() == symbols.KindNamespace {
		return report, nil
	}
	if report.ContainingTypes, err = naming.ContainingTypes(sym, true, f.HasParameterList()); err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	if report.XMLSafeName, err = docs.XMLSafeName(sym, true); err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	tag, err := docs.InheritDocTag(sym)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	if tag != nil {
		report.InheritDoc = tag.String()
	}
	for _, a := range sym.Attributes() {
		report.Attributes = append(report.Attributes, attributeResult(a))
	}
	return report, nil
}

// NamedArgument returns the rendered value of a named argument of the
// first attribute called attribute on the symbol at path.
func (q *QueryBuilder) NamedArgument(path, attribute, name string) (string, bool, error) {
	sym, ok, err := q.Lookup(path)
	if err != nil || !ok {
		return "", false, err
	}
	a, ok, err := attrs.FindAttribute(sym, attribute)
	if err != nil || !ok {
		return "", false, err
	}
	v, ok, err := attrs.TryGetNamed(a, name)
	if err != nil || !ok {
		return "", false, err
	}
	return valueText(v), true, nil
}

// Files lists the indexed files of one assembly, or of all assemblies when
// assembly is empty.
func (q *QueryBuilder) Files(assembly string) ([]*store.File, error) {
	if assembly == "" {
		return q.store.Files()
	}
	return q.store.FilesByAssembly(assembly)
}

func attributeResult(a *symbols.Attribute) AttributeResult {
	r := AttributeResult{Name: a.Name()}
	for _, v := range a.Positional {
		r.Positional = append(r.Positional, valueText(v))
	}
	if len(a.Named) > 0 {
		r.Named = make(map[string]string, len(a.Named))
		for _, n := range a.Named {
			r.Named[n.Name] = valueText(n.Value)
		}
	}
	return r
}

// valueText renders a TypedValue the way it would appear in source.
func valueText(v symbols.TypedValue) string {
	switch v.Kind() {
	case symbols.ValueScalar:
		raw, _ := v.Value()
		switch x := raw.(type) {
		case string:
			if v.Type() == nil {
				// Expression kept as source text.
				return x
			}
			return fmt.Sprintf("%q", x)
		case symbols.Char:
			return fmt.Sprintf("%q", rune(x))
		case nil:
			return "null"
		}
		return fmt.Sprint(raw)
	case symbols.ValueType:
		ref, _ := v.TypeRef()
		name, err := naming.FullyQualifiedName(ref, naming.UseTypeArguments)
		if err != nil {
			return "typeof(?)"
		}
		return "typeof(" + name + ")"
	case symbols.ValueArray:
		if v.IsNull() {
			return "null"
		}
		vals, _ := v.Values()
		s := "{"
		for i, e := range vals {
			if i > 0 {
				s += ", "
			}
			s += valueText(e)
		}
		return s + "}"
	default:
		return ""
	}
}
