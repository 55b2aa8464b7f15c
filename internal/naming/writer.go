package naming

import (
	"fmt"
	"strings"

	"github.com/jward/nameplate/internal/symbols"
)

// argumentFormat is applied to each bound type argument.
func argumentFormat(f Format) Format {
	return f.Without(IncludeParameterList | IncludeVariance)
}

// WriteGenericName appends the canonical name of sym: its bare name, then
// a generic segment if it has type parameters or arguments, then its
// parameter signature if f asks for one and sym is a method or delegate.
func WriteGenericName(b *strings.Builder, sym symbols.Symbol, f Format) error {
	if b == nil {
		return fmt.Errorf("write generic name: nil builder: %w", symbols.ErrInvalidArgument)
	}
	if sym == nil {
		return fmt.Errorf("write generic name: nil symbol: %w", symbols.ErrInvalidArgument)
	}
	return writeName(b, sym, f)
}

func writeName(b *strings.Builder, sym symbols.Symbol, f Format) error {
	switch sym.Kind() {
	case symbols.KindNamespace, symbols.KindTypeParameter:
		b.WriteString(sym.Name())
		return nil
	case symbols.KindNamedType, symbols.KindMethod:
		b.WriteString(sym.Name())
		if err := writeGenericSegment(b, sym, f); err != nil {
			return err
		}
		if f.HasParameterList() && hasSignature(sym) {
			return writeParameterList(b, sym)
		}
		return nil
	default:
		return writeOther(b, sym)
	}
}

// writeOther covers constructed type shapes that have no declaration.
func writeOther(b *strings.Builder, sym symbols.Symbol) error {
	switch sym.TypeKind() {
	case symbols.TypeKindArray, symbols.TypeKindPointer:
		elem := sym.ElementType()
		if elem == nil {
			return fmt.Errorf("write generic name: %s without element type: %w", sym.TypeKind(), symbols.ErrInvalidArgument)
		}
		if err := writeName(b, elem, UseTypeArguments); err != nil {
			return err
		}
		b.WriteString(sym.Name())
		return nil
	default:
		b.WriteString(sym.Name())
		return nil
	}
}

func hasSignature(sym symbols.Symbol) bool {
	return sym.Kind() == symbols.KindMethod || sym.DelegateInvokeMethod() != nil
}

// writeGenericSegment renders into scratch space and appends only on
// success.
func writeGenericSegment(b *strings.Builder, sym symbols.Symbol, f Format) error {
	args := sym.TypeArguments()
	if f.HasTypeArguments() && len(args) > 0 {
		var seg strings.Builder
		seg.WriteByte('<')
		for i, arg := range args {
			if arg == nil {
				return fmt.Errorf("write generic name: %s: nil type argument %d: %w", sym.Name(), i, symbols.ErrInvalidArgument)
			}
			if arg.TypeKind().IsPointerShaped() {
				return fmt.Errorf("write generic name: %s: type argument %d is a %s: %w",
					sym.Name(), i, arg.TypeKind(), symbols.ErrUnsupportedArgument)
			}
			if i > 0 {
				seg.WriteString(", ")
			}
			if err := writeName(&seg, arg, argumentFormat(f)); err != nil {
				return err
			}
		}
		seg.WriteByte('>')
		b.WriteString(seg.String())
		return nil
	}

	params := sym.TypeParameters()
	if len(params) == 0 {
		return nil
	}
	// Variance is dropped when type arguments were asked for, even if the
	// symbol has none bound.
	variance := f.HasVariance() && !f.HasTypeArguments()
	b.WriteByte('<')
	for i, tp := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		if variance && tp.Variance != symbols.Invariant {
			b.WriteString(tp.Variance.String())
			b.WriteByte(' ')
		}
		b.WriteString(tp.Name)
	}
	b.WriteByte('>')
	return nil
}

func writeParameterList(b *strings.Builder, sym symbols.Symbol) error {
	var seg strings.Builder
	seg.WriteByte('(')
	for i, p := range sym.Parameters() {
		if p.Type == nil {
			return fmt.Errorf("write parameter list: %s: parameter %q has no type: %w", sym.Name(), p.Name, symbols.ErrInvalidArgument)
		}
		if i > 0 {
			seg.WriteString(", ")
		}
		if p.RefKind != symbols.RefNone {
			seg.WriteString(p.RefKind.String())
			seg.WriteByte(' ')
		}
		if err := writeName(&seg, p.Type, UseTypeArguments); err != nil {
			return err
		}
	}
	seg.WriteByte(')')
	b.WriteString(seg.String())
	return nil
}

// WriteNamespace appends the dotted chain of namespaces enclosing ns,
// outermost first, and ns itself when includeSelf is set. The global
// namespace is never written.
func WriteNamespace(b *strings.Builder, ns symbols.Symbol, includeSelf bool) error {
	if b == nil || ns == nil {
		return fmt.Errorf("write namespace: nil argument: %w", symbols.ErrInvalidArgument)
	}
	chain := namespaceChain(ns)
	if !includeSelf && len(chain) > 0 && chain[len(chain)-1] == ns {
		chain = chain[:len(chain)-1]
	}
	return WriteNamespaces(b, chain)
}

// namespaceChain lists the non-global namespaces from the outermost down
// to ns.
func namespaceChain(ns symbols.Symbol) []symbols.Symbol {
	var chain []symbols.Symbol
	for n := ns; n != nil && !n.IsGlobalNamespace(); n = n.ContainingNamespace() {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// WriteNamespaces dot-joins the given namespaces. An empty slice leaves b
// untouched.
func WriteNamespaces(b *strings.Builder, namespaces []symbols.Symbol) error {
	if b == nil {
		return fmt.Errorf("write namespaces: nil builder: %w", symbols.ErrInvalidArgument)
	}
	for i, ns := range namespaces {
		if ns == nil {
			return fmt.Errorf("write namespaces: nil namespace at %d: %w", i, symbols.ErrInvalidArgument)
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(ns.Name())
	}
	return nil
}

// containingTypes lists the types enclosing sym, outermost first.
func containingTypes(sym symbols.Symbol) []symbols.Symbol {
	var chain []symbols.Symbol
	for t := sym.ContainingType(); t != nil; t = t.ContainingType() {
		chain = append(chain, t)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// WriteContainingTypes appends the dot-joined chain of types enclosing sym.
// With includeSelf the symbol's own name follows, with its parameter list
// when includeParameters is set. Without includeSelf the separator after
// the innermost containing type is dropped, and a symbol with no
// containing type writes nothing.
func WriteContainingTypes(b *strings.Builder, sym symbols.Symbol, includeSelf, includeParameters bool) error {
	if b == nil || sym == nil {
		return fmt.Errorf("write containing types: nil argument: %w", symbols.ErrInvalidArgument)
	}
	var seg strings.Builder
	for _, t := range containingTypes(sym) {
		if err := writeName(&seg, t, 0); err != nil {
			return err
		}
		seg.WriteByte('.')
	}
	if includeSelf {
		var f Format
		if includeParameters {
			f = IncludeParameterList
		}
		if err := writeName(&seg, sym, f); err != nil {
			return err
		}
	} else {
		s := strings.TrimSuffix(seg.String(), ".")
		seg.Reset()
		seg.WriteString(s)
	}
	b.WriteString(seg.String())
	return nil
}

// WriteFullyQualifiedName appends every enclosing namespace, then every
// enclosing type without parameter lists, then sym's own name under f.
func WriteFullyQualifiedName(b *strings.Builder, sym symbols.Symbol, f Format) error {
	if b == nil || sym == nil {
		return fmt.Errorf("write fully qualified name: nil argument: %w", symbols.ErrInvalidArgument)
	}
	var seg strings.Builder
	if sym.Kind() == symbols.KindNamespace {
		if err := WriteNamespace(&seg, sym, true); err != nil {
			return err
		}
		b.WriteString(seg.String())
		return nil
	}
	if ns := sym.ContainingNamespace(); ns != nil {
		chain := namespaceChain(ns)
		if err := WriteNamespaces(&seg, chain); err != nil {
			return err
		}
		if len(chain) > 0 {
			seg.WriteByte('.')
		}
	}
	for _, t := range containingTypes(sym) {
		if err := writeName(&seg, t, f.Without(IncludeParameterList)); err != nil {
			return err
		}
		seg.WriteByte('.')
	}
	if err := writeName(&seg, sym, f); err != nil {
		return err
	}
	b.WriteString(seg.String())
	return nil
}

// GenericName returns what WriteGenericName would append.
func GenericName(sym symbols.Symbol, f Format) (string, error) {
	var b strings.Builder
	if err := WriteGenericName(&b, sym, f); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FullyQualifiedName returns what WriteFullyQualifiedName would append.
func FullyQualifiedName(sym symbols.Symbol, f Format) (string, error) {
	var b strings.Builder
	if err := WriteFullyQualifiedName(&b, sym, f); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ContainingTypes returns what WriteContainingTypes would append.
func ContainingTypes(sym symbols.Symbol, includeSelf, includeParameters bool) (string, error) {
	var b strings.Builder
	if err := WriteContainingTypes(&b, sym, includeSelf, includeParameters); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Namespace returns what WriteNamespace would append.
func Namespace(ns symbols.Symbol, includeSelf bool) (string, error) {
	var b strings.Builder
	if err := WriteNamespace(&b, ns, includeSelf); err != nil {
		return "", err
	}
	return b.String(), nil
}
