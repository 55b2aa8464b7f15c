package symbols

// Kind is the closed set of symbol variants the formatter and traversal
// dispatch on.
type Kind int

const (
	KindOther Kind = iota
	KindNamespace
	KindNamedType
	KindMethod
	KindTypeParameter
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindNamedType:
		return "named type"
	case KindMethod:
		return "method"
	case KindTypeParameter:
		return "type parameter"
	default:
		return "other"
	}
}

// TypeKind refines a type-shaped symbol. Namespaces and methods carry
// TypeKindNone.
type TypeKind int

const (
	TypeKindNone TypeKind = iota
	TypeKindClass
	TypeKindStruct
	TypeKindInterface
	TypeKindEnum
	TypeKindDelegate
	TypeKindRecord
	TypeKindArray
	TypeKindPointer
	TypeKindFunctionPointer
	TypeKindError
)

var typeKindNames = map[TypeKind]string{
	TypeKindNone:            "none",
	TypeKindClass:           "class",
	TypeKindStruct:          "struct",
	TypeKindInterface:       "interface",
	TypeKindEnum:            "enum",
	TypeKindDelegate:        "delegate",
	TypeKindRecord:          "record",
	TypeKindArray:           "array",
	TypeKindPointer:         "pointer",
	TypeKindFunctionPointer: "function_pointer",
	TypeKindError:           "error",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseTypeKind maps a declaration keyword ("class", "struct", ...) to its
// TypeKind. Unknown keywords report false.
func ParseTypeKind(s string) (TypeKind, bool) {
	for k, name := range typeKindNames {
		if name == s && k != TypeKindNone {
			return k, true
		}
	}
	return TypeKindNone, false
}

// IsPointerShaped reports whether values of this kind may never appear as a
// generic argument.
func (k TypeKind) IsPointerShaped() bool {
	return k == TypeKindPointer || k == TypeKindFunctionPointer
}

// Variance of a declared type parameter.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return ""
	}
}

// ParseVariance accepts the source keywords "in" and "out"; anything else is
// Invariant.
func ParseVariance(s string) Variance {
	switch s {
	case "out":
		return Covariant
	case "in":
		return Contravariant
	default:
		return Invariant
	}
}

// RefKind is a parameter passing modifier.
type RefKind int

const (
	RefNone RefKind = iota
	RefRef
	RefOut
	RefIn
	RefParams
	RefThis
)

func (r RefKind) String() string {
	switch r {
	case RefRef:
		return "ref"
	case RefOut:
		return "out"
	case RefIn:
		return "in"
	case RefParams:
		return "params"
	case RefThis:
		return "this"
	default:
		return ""
	}
}

// ParseRefKind maps a modifier keyword to its RefKind.
func ParseRefKind(s string) RefKind {
	switch s {
	case "ref":
		return RefRef
	case "out":
		return RefOut
	case "in":
		return RefIn
	case "params":
		return RefParams
	case "this":
		return RefThis
	default:
		return RefNone
	}
}
