package store

import "time"

// Symbol kinds as stored in symbols.kind.
const (
	KindNamespace = "namespace"
	KindClass     = "class"
	KindStruct    = "struct"
	KindInterface = "interface"
	KindEnum      = "enum"
	KindRecord    = "record"
	KindDelegate  = "delegate"
	KindMethod    = "method"
)

// Argument kinds as stored in attribute argument payloads.
const (
	ArgScalar = "scalar"
	ArgType   = "type"
	ArgArray  = "array"
	ArgNull   = "null"
	// ArgExpr is an expression the extractor could not evaluate; Text holds
	// its source.
	ArgExpr = "expr"
)

type File struct {
	ID          int64
	Path        string
	Assembly    string
	Hash        string
	LastIndexed time.Time
}

// Symbol is one declaration. Namespace rows hold the dotted name exactly as
// declared, so "namespace A.B" is a single row named "A.B".
type Symbol struct {
	ID             int64
	FileID         *int64
	Name           string
	Kind           string
	Modifiers      []string
	SignatureHash  string
	DocComment     string
	ReturnType     string
	StartLine      int
	StartCol       int
	EndLine        int
	EndCol         int
	ParentSymbolID *int64
}

type TypeParam struct {
	ID          int64
	SymbolID    int64
	Name        string
	Ordinal     int
	Variance    string
	Constraints string
}

type FunctionParam struct {
	ID          int64
	SymbolID    int64
	Name        string
	Ordinal     int
	TypeExpr    string
	Modifier    string
	HasDefault  bool
	DefaultExpr string
}

// Argument is a constant attribute argument. Type is the declared type
// expression; Text is the literal text for scalars and the referenced type
// expression for type arguments.
type Argument struct {
	Kind   string     `json:"kind"`
	Type   string     `json:"type,omitempty"`
	Text   string     `json:"text,omitempty"`
	Values []Argument `json:"values,omitempty"`
}

type NamedArgument struct {
	Name  string   `json:"name"`
	Value Argument `json:"value"`
}

// Attribute is one attribute application on a declaration.
type Attribute struct {
	ID             int64
	TargetSymbolID int64
	Name           string
	Ordinal        int
	Positional     []Argument
	Named          []NamedArgument
	FileID         *int64
	Line           int
	Col            int
}
