// Package loader builds a symbols.Compilation from the declarations held in
// the store.
package loader

import (
	"context"
	"fmt"
	"sort"

	"github.com/jward/nameplate/internal/diag"
	"github.com/jward/nameplate/internal/store"
	"github.com/jward/nameplate/internal/symbols"
)

// Option configures a load.
type Option func(*loader)

// WithLogger routes load progress and unresolved-type notes to log.
func WithLogger(log *diag.Logger) Option {
	return func(l *loader) { l.log = log }
}

type loader struct {
	store   *store.Store
	home    string
	log     *diag.Logger
	builder *symbols.Builder

	decls   map[int64]*symbols.Decl
	pending []pendingDecl
	types   *typeIndex
}

// pendingDecl is a declaration whose signature and attributes are filled in
// once every type has been declared.
type pendingDecl struct {
	decl *symbols.Decl
	row  *store.Symbol
}

// Load reads every file in the store and returns the resulting
// compilation. Files of assembly home form the source assembly; other
// assemblies become references.
//
// Source-assembly files are visited first, each assembly in path order, and
// declarations in the order they were extracted, so member order is stable
// across loads.
func Load(ctx context.Context, s *store.Store, home string, opts ...Option) (*symbols.Compilation, error) {
	l := &loader{
		store:   s,
		home:    home,
		builder: symbols.NewBuilder(home),
		decls:   make(map[int64]*symbols.Decl),
		types:   newTypeIndex(),
	}
	for _, opt := range opts {
		opt(l)
	}

	files, err := s.Files()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Assembly == home && files[j].Assembly != home
	})
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.declareFile(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f.Path, err)
		}
	}
	for _, p := range l.pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.complete(p); err != nil {
			return nil, fmt.Errorf("load %s: %w", p.row.Name, err)
		}
	}

	c := l.builder.Build()
	l.log.Infof("loaded %s from %d files", c, len(files))
	return c, nil
}

func (l *loader) globalFor(assembly string) *symbols.Decl {
	if assembly == l.home {
		return l.builder.Global()
	}
	return l.builder.Reference(assembly)
}

// declareFile creates the namespaces, types and methods of one file.
func (l *loader) declareFile(f *store.File) error {
	rows, err := l.store.SymbolsByFile(f.ID)
	if err != nil {
		return err
	}
	global := l.globalFor(f.Assembly)
	for _, row := range rows {
		parent := global
		if row.ParentSymbolID != nil {
			p, ok := l.decls[*row.ParentSymbolID]
			if !ok {
				return fmt.Errorf("symbol %q: parent %d not loaded", row.Name, *row.ParentSymbolID)
			}
			parent = p
		}

		switch row.Kind {
		case store.KindNamespace:
			if parent.Kind() != symbols.KindNamespace {
				return fmt.Errorf("namespace %q declared inside %s", row.Name, parent.Kind())
			}
			l.decls[row.ID] = l.builder.Namespace(parent, row.Name)
		case store.KindMethod:
			if parent.Kind() != symbols.KindNamedType {
				return fmt.Errorf("method %q declared inside %s", row.Name, parent.Kind())
			}
			m := l.builder.Method(parent, row.Name)
			if err := l.declareCommon(m, row); err != nil {
				return err
			}
		default:
			kind, ok := symbols.ParseTypeKind(row.Kind)
			if !ok {
				l.log.Diagnosticf("%s: unknown declaration kind %q for %s", f.Path, row.Kind, row.Name)
				continue
			}
			t := l.builder.Type(parent, row.Name, kind)
			if err := l.declareCommon(t, row); err != nil {
				return err
			}
			l.types.add(t)
		}
	}
	return nil
}

func (l *loader) declareCommon(d *symbols.Decl, row *store.Symbol) error {
	tps, err := l.store.TypeParams(row.ID)
	if err != nil {
		return err
	}
	for _, tp := range tps {
		d.AddTypeParameter(tp.Name, symbols.ParseVariance(tp.Variance))
	}
	d.SetDocumentationComment(row.DocComment)
	l.decls[row.ID] = d
	l.pending = append(l.pending, pendingDecl{decl: d, row: row})
	return nil
}

// complete resolves the signature and attributes of a declared type or
// method.
func (l *loader) complete(p pendingDecl) error {
	d, row := p.decl, p.row
	if d.Kind() == symbols.KindMethod || d.TypeKind() == symbols.TypeKindDelegate {
		params, err := l.store.FunctionParams(row.ID)
		if err != nil {
			return err
		}
		for _, fp := range params {
			d.AddParameter(fp.Name, l.resolve(fp.TypeExpr, d), symbols.ParseRefKind(fp.Modifier))
		}
		if row.ReturnType != "" {
			d.SetReturnType(l.resolve(row.ReturnType, d))
		}
	}

	attrs, err := l.store.AttributesByTarget(row.ID)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		d.AddAttribute(l.attribute(a, d))
	}
	return nil
}

func (l *loader) attribute(a *store.Attribute, ctx *symbols.Decl) *symbols.Attribute {
	out := &symbols.Attribute{Class: l.attributeClass(a.Name, ctx)}
	for _, arg := range a.Positional {
		out.Positional = append(out.Positional, l.value(arg, ctx))
	}
	for _, named := range a.Named {
		out.SetNamed(named.Name, l.value(named.Value, ctx))
	}
	return out
}

// attributeClass resolves Name to NameAttribute when only the suffixed
// class is declared.
func (l *loader) attributeClass(name string, ctx *symbols.Decl) symbols.Symbol {
	for _, candidate := range []string{name, name + "Attribute"} {
		expr, err := parseTypeExpr(candidate)
		if err != nil {
			break
		}
		if t, ok := l.types.lookup(expr, ctx); ok {
			return t
		}
	}
	return symbols.Unresolved(name)
}
