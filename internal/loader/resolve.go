package loader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jward/nameplate/internal/store"
	"github.com/jward/nameplate/internal/symbols"
)

var keywordTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true,
	"decimal": true, "double": true, "float": true,
	"int": true, "uint": true, "long": true, "ulong": true,
	"short": true, "ushort": true, "nint": true, "nuint": true,
	"object": true, "string": true, "dynamic": true, "void": true,
}

// typeIndex finds declared types by dotted path and generic arity.
type typeIndex struct {
	byPath map[string]*symbols.Decl
	byName map[string]*symbols.Decl
}

func newTypeIndex() *typeIndex {
	return &typeIndex{
		byPath: make(map[string]*symbols.Decl),
		byName: make(map[string]*symbols.Decl),
	}
}

func typeKey(path string, arity int) string {
	return fmt.Sprintf("%s`%d", path, arity)
}

// add indexes t. The first declaration of a path wins, matching the
// source-assembly-first order files are loaded in.
func (ix *typeIndex) add(t *symbols.Decl) {
	arity := len(t.TypeParameters())
	if k := typeKey(declPath(t), arity); ix.byPath[k] == nil {
		ix.byPath[k] = t
	}
	if k := typeKey(t.Name(), arity); ix.byName[k] == nil {
		ix.byName[k] = t
	}
}

// lookup resolves a named type expression from the scope of ctx: nested
// types first, then each enclosing namespace outward, then any type with
// that simple name.
func (ix *typeIndex) lookup(t *typeExpr, ctx symbols.Symbol) (*symbols.Decl, bool) {
	if len(t.segments) == 0 {
		return nil, false
	}
	path, arity := t.path(), len(t.last().args)
	for _, prefix := range scopes(ctx) {
		full := path
		if prefix != "" {
			full = prefix + "." + path
		}
		if d, ok := ix.byPath[typeKey(full, arity)]; ok {
			return d, true
		}
	}
	if len(t.segments) == 1 {
		d, ok := ix.byName[typeKey(path, arity)]
		return d, ok
	}
	return nil, false
}

func scopes(ctx symbols.Symbol) []string {
	if ctx == nil {
		return []string{""}
	}
	var out []string
	t := ctx
	if t.Kind() != symbols.KindNamedType {
		t = t.ContainingType()
	}
	for ; t != nil; t = t.ContainingType() {
		out = append(out, declPath(t))
	}
	ns := ctx.ContainingNamespace()
	if ctx.Kind() == symbols.KindNamespace {
		ns = ctx
	}
	for ; ns != nil; ns = ns.ContainingNamespace() {
		out = append(out, namespacePath(ns))
	}
	return out
}

func namespacePath(ns symbols.Symbol) string {
	var parts []string
	for ; ns != nil && !ns.IsGlobalNamespace(); ns = ns.ContainingNamespace() {
		parts = append(parts, ns.Name())
	}
	reverse(parts)
	return strings.Join(parts, ".")
}

// declPath is the dotted path of a type without generic arguments, e.g.
// "Acme.Core.Outer.Inner".
func declPath(t symbols.Symbol) string {
	var parts []string
	for c := t; c != nil; c = c.ContainingType() {
		parts = append(parts, c.Name())
	}
	reverse(parts)
	if ns := namespacePath(t.ContainingNamespace()); ns != "" {
		return ns + "." + strings.Join(parts, ".")
	}
	return strings.Join(parts, ".")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// resolve turns a type expression into a symbol. Anything that cannot be
// found becomes an error type rendering as its source text.
func (l *loader) resolve(text string, ctx *symbols.Decl) symbols.Symbol {
	expr, err := parseTypeExpr(text)
	if err != nil {
		l.log.Infof("unresolved type %q: %v", text, err)
		return symbols.Unresolved(strings.TrimSpace(text))
	}
	return l.resolveExpr(expr, ctx)
}

func (l *loader) resolveExpr(t *typeExpr, ctx *symbols.Decl) symbols.Symbol {
	var sym symbols.Symbol
	switch {
	case t.fnptr:
		sym = symbols.FunctionPointer(t.raw)
	case t.tuple:
		sym = symbols.Unresolved(t.raw)
	default:
		sym = l.resolveNamed(t, ctx)
	}
	for _, s := range t.suffixes {
		switch s {
		case suffixArray:
			sym = symbols.ArrayOf(sym)
		case suffixPointer:
			sym = symbols.PointerTo(sym)
		}
	}
	return sym
}

func (l *loader) resolveNamed(t *typeExpr, ctx *symbols.Decl) symbols.Symbol {
	last := t.last()
	if len(t.segments) == 1 && len(last.args) == 0 {
		if tp := typeParameterInScope(last.name, ctx); tp != nil {
			return tp
		}
		if keywordTypes[last.name] {
			return symbols.Special(last.name)
		}
	}

	def, ok := l.types.lookup(t, ctx)
	if !ok {
		return symbols.Unresolved(t.baseString())
	}
	if len(last.args) == 0 {
		return def
	}
	args := make([]symbols.Symbol, len(last.args))
	for i, a := range last.args {
		args[i] = l.resolveExpr(a, ctx)
	}
	return symbols.Construct(def, args...)
}

// typeParameterInScope finds name among the type parameters of ctx and its
// containing types, innermost first.
func typeParameterInScope(name string, ctx *symbols.Decl) symbols.Symbol {
	for d := ctx; d != nil; {
		for _, tp := range d.TypeParameters() {
			if tp.Name == name {
				return d.TypeParameterSymbol(name)
			}
		}
		next, _ := d.ContainingType().(*symbols.Decl)
		d = next
	}
	return nil
}

// baseString renders t without array, pointer or nullable suffixes.
func (t *typeExpr) baseString() string {
	if t.raw != "" {
		return t.raw
	}
	var b strings.Builder
	for i, s := range t.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
		if len(s.args) == 0 {
			continue
		}
		b.WriteByte('<')
		for j, a := range s.args {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

func (t *typeExpr) String() string {
	s := t.baseString()
	for _, suf := range t.suffixes {
		switch suf {
		case suffixArray:
			s += "[]"
		case suffixPointer:
			s += "*"
		case suffixNullable:
			s += "?"
		}
	}
	return s
}

// value converts a stored attribute argument into a TypedValue.
func (l *loader) value(arg store.Argument, ctx *symbols.Decl) symbols.TypedValue {
	switch arg.Kind {
	case store.ArgScalar:
		return symbols.Scalar(scalarValue(arg.Type, arg.Text), l.resolve(arg.Type, ctx))
	case store.ArgType:
		return symbols.TypeReference(l.resolve(arg.Text, ctx))
	case store.ArgArray:
		vals := make([]symbols.TypedValue, len(arg.Values))
		for i, v := range arg.Values {
			vals[i] = l.value(v, ctx)
		}
		return symbols.Array(l.resolve(arg.Type, ctx), vals...)
	case store.ArgNull:
		return symbols.NullArray(nil)
	default:
		return symbols.Scalar(arg.Text, nil)
	}
}

// scalarValue parses literal text into the Go type matching the C#
// keyword: int -> int32, long -> int64, float -> float32 and so on. Text
// that does not parse is kept as a string.
func scalarValue(typ, text string) any {
	switch typ {
	case "int":
		if v, err := strconv.ParseInt(text, intBase(text), 32); err == nil {
			return int32(v)
		}
	case "long":
		if v, err := strconv.ParseInt(text, intBase(text), 64); err == nil {
			return v
		}
	case "uint":
		if v, err := strconv.ParseUint(text, intBase(text), 32); err == nil {
			return uint32(v)
		}
	case "ulong":
		if v, err := strconv.ParseUint(text, intBase(text), 64); err == nil {
			return v
		}
	case "float":
		if v, err := strconv.ParseFloat(text, 32); err == nil {
			return float32(v)
		}
	case "double", "decimal":
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return v
		}
	case "bool":
		if v, err := strconv.ParseBool(text); err == nil {
			return v
		}
	case "char":
		if r, size := utf8.DecodeRuneInString(text); size > 0 && size == len(text) {
			return symbols.Char(r)
		}
	}
	return text
}

// intBase is 0 for hex and binary literals, which strconv detects from the
// prefix, and 10 otherwise so a leading zero is not read as octal.
func intBase(text string) int {
	t := strings.ToLower(strings.TrimPrefix(text, "-"))
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0b") {
		return 0
	}
	return 10
}
