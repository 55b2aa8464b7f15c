package symbols

// ValueKind tags a TypedValue.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueScalar
	ValueType
	ValueArray
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueType:
		return "type"
	case ValueArray:
		return "array"
	default:
		return "none"
	}
}

// Char is a char constant. It is its own type so that narrowing to int32
// does not accept it.
type Char rune

func (c Char) String() string { return string(rune(c)) }

// TypedValue is a constant bound to an attribute argument: a scalar, a type
// reference, or an ordered array of TypedValue. The zero value has kind
// ValueNone.
type TypedValue struct {
	kind   ValueKind
	value  any
	typ    Symbol
	ref    Symbol
	values []TypedValue
	null   bool
}

// Scalar wraps a runtime constant with its declared type. typ may be nil.
func Scalar(value any, typ Symbol) TypedValue {
	return TypedValue{kind: ValueScalar, value: value, typ: typ}
}

// TypeReference wraps a type-literal argument such as typeof(Widget).
func TypeReference(sym Symbol) TypedValue {
	return TypedValue{kind: ValueType, ref: sym}
}

// Array wraps a present array. Zero elements is a valid, present array.
func Array(typ Symbol, values ...TypedValue) TypedValue {
	if values == nil {
		values = []TypedValue{}
	}
	return TypedValue{kind: ValueArray, typ: typ, values: values}
}

// NullArray is an array-tagged value with no payload, distinct from an
// empty array.
func NullArray(typ Symbol) TypedValue {
	return TypedValue{kind: ValueArray, typ: typ, null: true}
}

func (v TypedValue) Kind() ValueKind { return v.kind }

// Type is the declared type of a scalar or array.
func (v TypedValue) Type() Symbol { return v.typ }

// IsNull reports whether an array-tagged value has no payload.
func (v TypedValue) IsNull() bool { return v.kind == ValueArray && v.null }

// Value returns the scalar payload. Other tags report false.
func (v TypedValue) Value() (any, bool) {
	if v.kind != ValueScalar {
		return nil, false
	}
	return v.value, true
}

// TypeRef returns the referenced symbol of a type-literal value.
func (v TypedValue) TypeRef() (Symbol, bool) {
	if v.kind != ValueType || v.ref == nil {
		return nil, false
	}
	return v.ref, true
}

// Values returns the elements of a present array. Null arrays and other
// tags report false.
func (v TypedValue) Values() ([]TypedValue, bool) {
	if v.kind != ValueArray || v.null {
		return nil, false
	}
	return v.values, true
}

// NamedArgument is one name=value pair of an attribute application.
type NamedArgument struct {
	Name  string
	Value TypedValue
}

// Attribute is one attribute application on a symbol.
type Attribute struct {
	Class      Symbol
	Positional []TypedValue
	Named      []NamedArgument
}

// Name is the attribute class name, or "" when the class is unknown.
func (a *Attribute) Name() string {
	if a.Class == nil {
		return ""
	}
	return a.Class.Name()
}

// SetNamed binds name to value, replacing an earlier binding of the same
// name in place so keys stay unique and enumeration order is preserved.
func (a *Attribute) SetNamed(name string, value TypedValue) *Attribute {
	for i := range a.Named {
		if a.Named[i].Name == name {
			a.Named[i].Value = value
			return a
		}
	}
	a.Named = append(a.Named, NamedArgument{Name: name, Value: value})
	return a
}
