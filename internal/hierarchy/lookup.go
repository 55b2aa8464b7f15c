package hierarchy

import (
	"fmt"
	"strings"

	"github.com/jward/nameplate/internal/symbols"
)

type segment struct {
	name  string
	arity int
}

// splitPath splits a dotted name on the dots that are not inside a generic
// argument list or a parameter list.
func splitPath(path string) []segment {
	var (
		segs  []segment
		depth int
		start int
	)
	flush := func(end int) {
		segs = append(segs, parseSegment(path[start:end]))
	}
	for i, r := range path {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case '.':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(path))
	return segs
}

// parseSegment reads "Name", "Name<A, B<C>>" or "Name<T>(int, string)".
func parseSegment(s string) segment {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	lt := strings.IndexByte(s, '<')
	if lt < 0 {
		return segment{name: s}
	}
	seg := segment{name: s[:lt], arity: 1}
	depth := 0
	for _, r := range s[lt:] {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 1 {
				seg.arity++
			}
		}
	}
	return seg
}

func arityOf(sym symbols.Symbol) int {
	if n := len(sym.TypeArguments()); n > 0 {
		return n
	}
	return len(sym.TypeParameters())
}

// Lookup resolves a dotted name as written by the name formatter, e.g.
// "Acme.Outer<T>.Inner.Run(int)", to the symbol it names. Generic segments
// match by name and arity; the parameter list, if any, is ignored.
func Lookup(root Root, path string, includeExternal bool) (symbols.Symbol, bool, error) {
	global, err := globalOf("lookup", root, includeExternal)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, false, nil
	}

	segs := splitPath(path)
	current := global
	for i, seg := range segs {
		last := i == len(segs)-1
		var next symbols.Symbol
		for _, m := range current.Members() {
			if m.Name() != seg.name || arityOf(m) != seg.arity {
				continue
			}
			if !last && m.Kind() != symbols.KindNamespace && m.Kind() != symbols.KindNamedType {
				continue
			}
			next = m
			break
		}
		if next == nil {
			return nil, false, nil
		}
		current = next
	}
	return current, true, nil
}

// LookupKind is Lookup restricted to one symbol kind. A symbol of any other
// kind at path is a *symbols.TypeMismatchError.
func LookupKind(root Root, path string, includeExternal bool, want symbols.Kind) (symbols.Symbol, bool, error) {
	sym, ok, err := Lookup(root, path, includeExternal)
	if err != nil || !ok {
		return nil, ok, err
	}
	if sym.Kind() != want {
		return nil, false, fmt.Errorf("lookup: %w", &symbols.TypeMismatchError{Path: path, Want: want, Got: sym.Kind()})
	}
	return sym, true, nil
}
