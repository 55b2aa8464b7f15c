// Package hierarchy walks a compilation's namespace and type tree.
//
// Walks are iterative: an explicit stack is seeded with children in reverse
// declaration order so that popping yields them forward. The returned
// sequences are lazy and restartable; each range over them starts a fresh
// walk, and breaking out of the loop stops all further work.
package hierarchy

import (
	"fmt"
	"iter"

	"github.com/jward/nameplate/internal/symbols"
)

// Root is the narrow view of a compilation the walker needs.
type Root interface {
	GlobalNamespace() symbols.Symbol
	SourceGlobalNamespace() symbols.Symbol
}

var _ Root = (*symbols.Compilation)(nil)

func globalOf(op string, root Root, includeExternal bool) (symbols.Symbol, error) {
	if root == nil {
		return nil, fmt.Errorf("%s: nil root: %w", op, symbols.ErrInvalidArgument)
	}
	var g symbols.Symbol
	if includeExternal {
		g = root.GlobalNamespace()
	} else {
		g = root.SourceGlobalNamespace()
	}
	if g == nil {
		return nil, fmt.Errorf("%s: root has no global namespace: %w", op, symbols.ErrInvalidArgument)
	}
	return g, nil
}

// pushReversed appends the members of kind k to stack, last declared first.
func pushReversed(stack []symbols.Symbol, parent symbols.Symbol, k symbols.Kind) []symbols.Symbol {
	members := parent.Members()
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].Kind() == k {
			stack = append(stack, members[i])
		}
	}
	return stack
}

// AllNamespaces yields every namespace below the chosen global namespace in
// pre-order, siblings in declaration order. The global namespace itself is
// not yielded. includeExternal selects the merged global namespace over the
// home assembly's.
func AllNamespaces(root Root, includeExternal bool) (iter.Seq[symbols.Symbol], error) {
	global, err := globalOf("all namespaces", root, includeExternal)
	if err != nil {
		return nil, err
	}
	return namespacesBelow(global), nil
}

func namespacesBelow(global symbols.Symbol) iter.Seq[symbols.Symbol] {
	return func(yield func(symbols.Symbol) bool) {
		stack := pushReversed(nil, global, symbols.KindNamespace)
		for len(stack) > 0 {
			ns := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(ns) {
				return
			}
			stack = pushReversed(stack, ns, symbols.KindNamespace)
		}
	}
}

// AllTypes yields every named type reachable from the chosen global
// namespace exactly once: top-level types of the global namespace first,
// then the types of each namespace in AllNamespaces order. Each type is
// followed by its nested types, depth first, before its next sibling.
func AllTypes(root Root, includeExternal bool) (iter.Seq[symbols.Symbol], error) {
	global, err := globalOf("all types", root, includeExternal)
	if err != nil {
		return nil, err
	}
	return func(yield func(symbols.Symbol) bool) {
		if !typesIn(global, yield) {
			return
		}
		for ns := range namespacesBelow(global) {
			if !typesIn(ns, yield) {
				return
			}
		}
	}, nil
}

// TypesIn yields the types declared directly in scope and all their nested
// types, in the same order AllTypes uses.
func TypesIn(scope symbols.Symbol) (iter.Seq[symbols.Symbol], error) {
	if scope == nil {
		return nil, fmt.Errorf("types in: nil scope: %w", symbols.ErrInvalidArgument)
	}
	return func(yield func(symbols.Symbol) bool) {
		typesIn(scope, yield)
	}, nil
}

// typesIn reports false once yield asks to stop.
func typesIn(scope symbols.Symbol, yield func(symbols.Symbol) bool) bool {
	stack := pushReversed(nil, scope, symbols.KindNamedType)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(t) {
			return false
		}
		stack = pushReversed(stack, t, symbols.KindNamedType)
	}
	return true
}

// Methods yields the methods declared directly on a type in declaration
// order.
func Methods(typ symbols.Symbol) (iter.Seq[symbols.Symbol], error) {
	if typ == nil {
		return nil, fmt.Errorf("methods: nil type: %w", symbols.ErrInvalidArgument)
	}
	return func(yield func(symbols.Symbol) bool) {
		for _, m := range typ.Members() {
			if m.Kind() == symbols.KindMethod && !yield(m) {
				return
			}
		}
	}, nil
}
