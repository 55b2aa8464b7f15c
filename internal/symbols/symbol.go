package symbols

// Symbol is a read-only view of one node in a declaration hierarchy. The
// graph behind it is owned by whoever built it; callers never mutate it.
//
// Accessors that return a Symbol return a nil interface (not a typed nil)
// when the relation is absent.
type Symbol interface {
	ID() int64
	Kind() Kind
	TypeKind() TypeKind
	Name() string

	// ContainingNamespace and ContainingType are non-owning back-references.
	ContainingNamespace() Symbol
	ContainingType() Symbol
	IsGlobalNamespace() bool

	TypeParameters() []TypeParameter
	TypeArguments() []Symbol
	Parameters() []Parameter
	ReturnType() Symbol

	// Members returns nested namespaces, types and methods in declaration order.
	Members() []Symbol

	// ElementType is the element of an array or the pointee of a pointer.
	ElementType() Symbol
	DelegateInvokeMethod() Symbol
	OriginalDefinition() Symbol

	Attributes() []*Attribute
	DocumentationComment() string
	Assembly() string
}

// TypeParameter is a declared generic parameter.
type TypeParameter struct {
	Name     string
	Variance Variance
}

// Parameter is one entry of a method or delegate signature.
type Parameter struct {
	Name    string
	Type    Symbol
	RefKind RefKind
}

// Decl is the concrete Symbol produced by Builder and the package-level
// type constructors.
type Decl struct {
	id         int64
	kind       Kind
	typeKind   TypeKind
	name       string
	assembly   string
	global     bool
	namespace  *Decl
	container  *Decl
	typeParams []TypeParameter
	typeArgs   []Symbol
	params     []Parameter
	returnType Symbol
	members    []Symbol
	element    Symbol
	invoke     *Decl
	original   *Decl
	attributes []*Attribute
	doc        string
}

var _ Symbol = (*Decl)(nil)

func (d *Decl) ID() int64 { return d.id }
func (d *Decl) Kind() Kind { return d.kind }
func (d *Decl) TypeKind() TypeKind { return d.typeKind }
func (d *Decl) Name() string { return d.name }
func (d *Decl) IsGlobalNamespace() bool { return d.global }
func (d *Decl) Assembly() string { return d.assembly }

func (d *Decl) DocumentationComment() string { return d.doc }

func (d *Decl) ContainingNamespace() Symbol {
	if d.namespace == nil {
		return nil
	}
	return d.namespace
}

func (d *Decl) ContainingType() Symbol {
	if d.container == nil {
		return nil
	}
	return d.container
}

func (d *Decl) TypeParameters() []TypeParameter { return d.typeParams }
func (d *Decl) TypeArguments() []Symbol { return d.typeArgs }
func (d *Decl) Members() []Symbol { return d.members }
func (d *Decl) Attributes() []*Attribute { return d.attributes }
func (d *Decl) ReturnType() Symbol { return d.returnType }
func (d *Decl) ElementType() Symbol { return d.element }

// Parameters of a delegate type are those of its invoke method.
func (d *Decl) Parameters() []Parameter {
	if d.invoke != nil {
		return d.invoke.params
	}
	return d.params
}

func (d *Decl) DelegateInvokeMethod() Symbol {
	if d.invoke == nil {
		return nil
	}
	return d.invoke
}

// OriginalDefinition returns the generic definition a constructed type was
// built from, or the symbol itself.
func (d *Decl) OriginalDefinition() Symbol {
	if d.original == nil {
		return d
	}
	return d.original
}

// AddTypeParameter appends a declared type parameter.
func (d *Decl) AddTypeParameter(name string, v Variance) *Decl {
	d.typeParams = append(d.typeParams, TypeParameter{Name: name, Variance: v})
	return d
}

// AddParameter appends a signature parameter. On a delegate type the
// parameter goes to its invoke method.
func (d *Decl) AddParameter(name string, typ Symbol, ref RefKind) *Decl {
	target := d
	if d.invoke != nil {
		target = d.invoke
	}
	target.params = append(target.params, Parameter{Name: name, Type: typ, RefKind: ref})
	return d
}

// SetReturnType sets a method's (or a delegate's invoke method's) return type.
func (d *Decl) SetReturnType(typ Symbol) *Decl {
	if d.invoke != nil {
		d.invoke.returnType = typ
	}
	d.returnType = typ
	return d
}

func (d *Decl) SetDocumentationComment(doc string) *Decl {
	d.doc = doc
	return d
}

func (d *Decl) AddAttribute(a *Attribute) *Decl {
	d.attributes = append(d.attributes, a)
	return d
}

// TypeParameterSymbol returns a symbol for the declared type parameter name
// owned by d, for use as a parameter type or type argument.
func (d *Decl) TypeParameterSymbol(name string) *Decl {
	tp := &Decl{kind: KindTypeParameter, name: name, assembly: d.assembly}
	if d.kind == KindMethod {
		tp.container = d.container
	} else {
		tp.container = d
	}
	if d.namespace != nil {
		tp.namespace = d.namespace
	}
	return tp
}

// Construct returns def with args substituted for its type parameters at a
// use site.
func Construct(def *Decl, args ...Symbol) *Decl {
	c := *def
	c.typeArgs = append([]Symbol(nil), args...)
	c.original = def
	c.id = 0
	return &c
}

// ArrayOf returns the single-dimensional array type of elem.
func ArrayOf(elem Symbol) *Decl {
	return &Decl{kind: KindOther, typeKind: TypeKindArray, name: "[]", element: elem}
}

// PointerTo returns the unmanaged pointer type of elem.
func PointerTo(elem Symbol) *Decl {
	return &Decl{kind: KindOther, typeKind: TypeKindPointer, name: "*", element: elem}
}

// FunctionPointer returns a function pointer type rendered by its source
// text, e.g. "delegate*<int, void>".
func FunctionPointer(text string) *Decl {
	return &Decl{kind: KindOther, typeKind: TypeKindFunctionPointer, name: text}
}

// Special returns a keyword type such as "int" or "string". It has no
// containing namespace.
func Special(name string) *Decl {
	tk := TypeKindStruct
	switch name {
	case "string", "object", "dynamic":
		tk = TypeKindClass
	}
	return &Decl{kind: KindNamedType, typeKind: tk, name: name}
}

// Unresolved returns an error type that renders as the given text.
func Unresolved(text string) *Decl {
	return &Decl{kind: KindOther, typeKind: TypeKindError, name: text}
}
