package symbols

import (
	"fmt"
	"strings"
)

// Builder assembles a declaration hierarchy for one home assembly and any
// number of referenced assemblies. It is the only way to create tree
// symbols; once Build is called the graph must not be modified.
type Builder struct {
	home       *Decl
	references []*Decl
	nextID     int64
}

// NewBuilder creates a Builder whose home assembly is named assembly.
func NewBuilder(assembly string) *Builder {
	b := &Builder{}
	b.home = b.newGlobal(assembly)
	return b
}

func (b *Builder) newDecl(kind Kind, name, assembly string) *Decl {
	b.nextID++
	return &Decl{id: b.nextID, kind: kind, name: name, assembly: assembly}
}

func (b *Builder) newGlobal(assembly string) *Decl {
	g := b.newDecl(KindNamespace, "", assembly)
	g.global = true
	return g
}

// Global returns the home assembly's global namespace.
func (b *Builder) Global() *Decl {
	return b.home
}

// Reference returns the global namespace of the referenced assembly with the
// given name, creating it on first use.
func (b *Builder) Reference(assembly string) *Decl {
	for _, r := range b.references {
		if r.assembly == assembly {
			return r
		}
	}
	g := b.newGlobal(assembly)
	b.references = append(b.references, g)
	return g
}

// Namespace returns the child namespace of parent with the given name,
// creating it if this is its first declaration. Dotted names create each
// level in turn.
func (b *Builder) Namespace(parent *Decl, name string) *Decl {
	ns := parent
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			continue
		}
		ns = b.childNamespace(ns, part)
	}
	return ns
}

func (b *Builder) childNamespace(parent *Decl, name string) *Decl {
	for _, m := range parent.members {
		if d, ok := m.(*Decl); ok && d.kind == KindNamespace && d.name == name {
			return d
		}
	}
	ns := b.newDecl(KindNamespace, name, parent.assembly)
	ns.namespace = parent
	parent.members = append(parent.members, ns)
	return ns
}

// Type declares a named type inside a namespace or, when parent is itself a
// type, as a nested type. Delegates get an Invoke method.
func (b *Builder) Type(parent *Decl, name string, kind TypeKind) *Decl {
	t := b.newDecl(KindNamedType, name, parent.assembly)
	t.typeKind = kind
	if parent.kind == KindNamespace {
		t.namespace = parent
	} else {
		t.container = parent
		t.namespace = parent.namespace
	}
	if kind == TypeKindDelegate {
		inv := b.newDecl(KindMethod, "Invoke", parent.assembly)
		inv.container = t
		inv.namespace = t.namespace
		t.invoke = inv
		t.members = append(t.members, inv)
	}
	parent.members = append(parent.members, t)
	return t
}

// Method declares a method on the given type.
func (b *Builder) Method(parent *Decl, name string) *Decl {
	m := b.newDecl(KindMethod, name, parent.assembly)
	m.container = parent
	m.namespace = parent.namespace
	parent.members = append(parent.members, m)
	return m
}

// Build freezes the hierarchy into a Compilation.
func (b *Builder) Build() *Compilation {
	c := &Compilation{
		assembly:     b.home.assembly,
		sourceGlobal: b.home,
		byID:         make(map[int64]*Decl),
	}
	if len(b.references) == 0 {
		c.global = b.home
	} else {
		globals := append([]*Decl{b.home}, b.references...)
		c.global = b.mergeNamespaces(nil, "", globals)
	}
	c.index(b.home)
	for _, r := range b.references {
		c.index(r)
	}
	if c.global != b.home {
		c.index(c.global)
	}
	return c
}

// mergeNamespaces creates the compilation-level view of same-named
// namespaces declared across assemblies. Types keep their own assembly's
// namespace as container; only namespaces are replaced.
func (b *Builder) mergeNamespaces(parent *Decl, name string, sources []*Decl) *Decl {
	merged := b.newDecl(KindNamespace, name, "")
	if parent == nil {
		merged.global = true
	} else {
		merged.namespace = parent
	}

	type slot struct {
		sym     Symbol
		nsName  string
		sources []*Decl
	}
	var slots []*slot
	byName := make(map[string]*slot)
	for _, src := range sources {
		for _, m := range src.members {
			d, ok := m.(*Decl)
			if !ok || d.kind != KindNamespace {
				slots = append(slots, &slot{sym: m})
				continue
			}
			if s, seen := byName[d.name]; seen {
				s.sources = append(s.sources, d)
				continue
			}
			s := &slot{nsName: d.name, sources: []*Decl{d}}
			byName[d.name] = s
			slots = append(slots, s)
		}
	}

	for _, s := range slots {
		if s.sym != nil {
			merged.members = append(merged.members, s.sym)
			continue
		}
		merged.members = append(merged.members, b.mergeNamespaces(merged, s.nsName, s.sources))
	}
	return merged
}

// Compilation is a built declaration hierarchy.
type Compilation struct {
	assembly     string
	sourceGlobal *Decl
	global       *Decl
	byID         map[int64]*Decl
}

// AssemblyName is the home assembly's name.
func (c *Compilation) AssemblyName() string {
	return c.assembly
}

// GlobalNamespace is the merged global namespace spanning the home assembly
// and every referenced assembly.
func (c *Compilation) GlobalNamespace() Symbol {
	if c == nil {
		return nil
	}
	return c.global
}

// SourceGlobalNamespace is the home assembly's own global namespace.
func (c *Compilation) SourceGlobalNamespace() Symbol {
	if c == nil {
		return nil
	}
	return c.sourceGlobal
}

// SymbolByID returns the tree symbol with the given ID, or nil.
func (c *Compilation) SymbolByID(id int64) Symbol {
	if c == nil {
		return nil
	}
	d, ok := c.byID[id]
	if !ok {
		return nil
	}
	return d
}

func (c *Compilation) index(root *Decl) {
	stack := []*Decl{root}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.byID[d.id] = d
		for _, m := range d.members {
			if md, ok := m.(*Decl); ok && md.id != 0 {
				if _, seen := c.byID[md.id]; !seen {
					stack = append(stack, md)
				}
			}
		}
	}
}

func (c *Compilation) String() string {
	return fmt.Sprintf("compilation %s (%d symbols)", c.assembly, len(c.byID))
}
