package runtime

import (
	"context"
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/risor-io/risor/object"

	"github.com/jward/nameplate/internal/attrs"
	"github.com/jward/nameplate/internal/docs"
	"github.com/jward/nameplate/internal/hierarchy"
	"github.com/jward/nameplate/internal/naming"
	"github.com/jward/nameplate/internal/symbols"
)

// symbolHost holds the compilation the symbol host functions read from.
// Symbols cross into scripts as maps of {id, name, kind, type_kind,
// assembly}; any function taking a symbol also accepts its id or a dotted
// path.
type symbolHost struct {
	comp *symbols.Compilation
}

// namespaces(include_external=false) → list of symbols
func (h *symbolHost) namespacesFn() *object.Builtin {
	return object.NewBuiltin("namespaces", func(ctx context.Context, args ...object.Object) object.Object {
		ext, errObj := optionalBool("namespaces", args, 0, false)
		if errObj != nil {
			return errObj
		}
		seq, err := hierarchy.AllNamespaces(h.comp, ext)
		if err != nil {
			return object.Errorf("namespaces: %v", err)
		}
		return seqToList(seq)
	})
}

// types(include_external=false) → list of symbols
func (h *symbolHost) typesFn() *object.Builtin {
	return object.NewBuiltin("types", func(ctx context.Context, args ...object.Object) object.Object {
		ext, errObj := optionalBool("types", args, 0, false)
		if errObj != nil {
			return errObj
		}
		seq, err := hierarchy.AllTypes(h.comp, ext)
		if err != nil {
			return object.Errorf("types: %v", err)
		}
		return seqToList(seq)
	})
}

// members(symbol) → list of symbols in declaration order
func (h *symbolHost) membersFn() *object.Builtin {
	return object.NewBuiltin("members", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("members", 1, len(args))
		}
		sym, errObj := h.symbolArg("members", args[0])
		if errObj != nil {
			return errObj
		}
		list := make([]object.Object, 0, len(sym.Members()))
		for _, m := range sym.Members() {
			list = append(list, symbolToMap(m))
		}
		return object.NewList(list)
	})
}

// methods(type) → list of method symbols
func (h *symbolHost) methodsFn() *object.Builtin {
	return object.NewBuiltin("methods", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("methods", 1, len(args))
		}
		sym, errObj := h.symbolArg("methods", args[0])
		if errObj != nil {
			return errObj
		}
		seq, err := hierarchy.Methods(sym)
		if err != nil {
			return object.Errorf("methods: %v", err)
		}
		return seqToList(seq)
	})
}

// lookup(path) → symbol or nil
func (h *symbolHost) lookupFn() *object.Builtin {
	return object.NewBuiltin("lookup", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("lookup", 1, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("lookup: %v", err)
		}
		sym, ok, err := hierarchy.Lookup(h.comp, path, true)
		if err != nil {
			return object.Errorf("lookup: %v", err)
		}
		if !ok {
			return object.Nil
		}
		return symbolToMap(sym)
	})
}

// generic_name(symbol, format?) → string
//
// format is either a "type_arguments|variance|parameters" string or a map
// of those keys to booleans.
func (h *symbolHost) genericNameFn() *object.Builtin {
	return h.formattedNameFn("generic_name", naming.GenericName)
}

// qualified_name(symbol, format?) → string
func (h *symbolHost) qualifiedNameFn() *object.Builtin {
	return h.formattedNameFn("qualified_name", naming.FullyQualifiedName)
}

func (h *symbolHost) formattedNameFn(name string, render func(symbols.Symbol, naming.Format) (string, error)) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsRangeError(name, 1, 2, len(args))
		}
		sym, errObj := h.symbolArg(name, args[0])
		if errObj != nil {
			return errObj
		}
		var f naming.Format
		if len(args) == 2 {
			if f, errObj = formatArg(name, args[1]); errObj != nil {
				return errObj
			}
		}
		s, err := render(sym, f)
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		return object.NewString(s)
	})
}

// containing_types(symbol, include_self=true, include_params=false) → string
func (h *symbolHost) containingTypesFn() *object.Builtin {
	return object.NewBuiltin("containing_types", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 3 {
			return object.NewArgsRangeError("containing_types", 1, 3, len(args))
		}
		sym, errObj := h.symbolArg("containing_types", args[0])
		if errObj != nil {
			return errObj
		}
		self, errObj := optionalBool("containing_types", args, 1, true)
		if errObj != nil {
			return errObj
		}
		params, errObj := optionalBool("containing_types", args, 2, false)
		if errObj != nil {
			return errObj
		}
		s, err := naming.ContainingTypes(sym, self, params)
		if err != nil {
			return object.Errorf("containing_types: %v", err)
		}
		return object.NewString(s)
	})
}

// xml_safe_name(symbol, include_params=true) → string
func (h *symbolHost) xmlSafeNameFn() *object.Builtin {
	return object.NewBuiltin("xml_safe_name", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsRangeError("xml_safe_name", 1, 2, len(args))
		}
		sym, errObj := h.symbolArg("xml_safe_name", args[0])
		if errObj != nil {
			return errObj
		}
		params, errObj := optionalBool("xml_safe_name", args, 1, true)
		if errObj != nil {
			return errObj
		}
		s, err := docs.XMLSafeName(sym, params)
		if err != nil {
			return object.Errorf("xml_safe_name: %v", err)
		}
		return object.NewString(s)
	})
}

// inheritdoc(symbol) → "<inheritdoc cref=.../>" or nil when undocumented
func (h *symbolHost) inheritDocFn() *object.Builtin {
	return object.NewBuiltin("inheritdoc", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("inheritdoc", 1, len(args))
		}
		sym, errObj := h.symbolArg("inheritdoc", args[0])
		if errObj != nil {
			return errObj
		}
		tag, err := docs.InheritDocTag(sym)
		if err != nil {
			return object.Errorf("inheritdoc: %v", err)
		}
		if tag == nil {
			return object.Nil
		}
		return object.NewString(tag.String())
	})
}

// attributes(symbol) → list of {name, positional, named}
func (h *symbolHost) attributesFn() *object.Builtin {
	return object.NewBuiltin("attributes", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("attributes", 1, len(args))
		}
		sym, errObj := h.symbolArg("attributes", args[0])
		if errObj != nil {
			return errObj
		}
		list := make([]object.Object, 0, len(sym.Attributes()))
		for _, a := range sym.Attributes() {
			positional := make([]object.Object, len(a.Positional))
			for i, v := range a.Positional {
				positional[i] = valueToObject(v)
			}
			named := make(map[string]object.Object, len(a.Named))
			for _, n := range a.Named {
				named[n.Name] = valueToObject(n.Value)
			}
			list = append(list, object.NewMap(map[string]object.Object{
				"name":       object.NewString(a.Name()),
				"positional": object.NewList(positional),
				"named":      object.NewMap(named),
			}))
		}
		return object.NewList(list)
	})
}

// named_arg(symbol, attribute, name) → value or nil
//
// A null array argument comes back as nil; an empty array as [].
func (h *symbolHost) namedArgFn() *object.Builtin {
	return object.NewBuiltin("named_arg", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("named_arg", 3, len(args))
		}
		sym, errObj := h.symbolArg("named_arg", args[0])
		if errObj != nil {
			return errObj
		}
		attrName, err := toString(args[1])
		if err != nil {
			return object.Errorf("named_arg: %v", err)
		}
		argName, err := toString(args[2])
		if err != nil {
			return object.Errorf("named_arg: %v", err)
		}

		attr, ok, err := attrs.FindAttribute(sym, attrName)
		if err != nil {
			return object.Errorf("named_arg: %v", err)
		}
		if !ok {
			return object.Nil
		}
		v, ok, err := attrs.TryGetNamed(attr, argName)
		if err != nil {
			return object.Errorf("named_arg: %v", err)
		}
		if !ok {
			return object.Nil
		}
		return valueToObject(v)
	})
}

// symbolArg accepts a symbol map, an id, or a dotted path.
func (h *symbolHost) symbolArg(fn string, obj object.Object) (symbols.Symbol, *object.Error) {
	var sym symbols.Symbol
	switch v := obj.(type) {
	case *object.Int:
		sym = h.comp.SymbolByID(v.Value())
	case *object.Map:
		id, ok := getOptionalInt64(v.Value(), "id")
		if !ok {
			return nil, object.Errorf("%s: symbol map has no id", fn)
		}
		sym = h.comp.SymbolByID(id)
	case *object.String:
		found, ok, err := hierarchy.Lookup(h.comp, v.Value(), true)
		if err != nil {
			return nil, object.Errorf("%s: %v", fn, err)
		}
		if ok {
			sym = found
		}
	default:
		return nil, object.Errorf("%s: expected symbol, id or path, got %s", fn, obj.Type())
	}
	if sym == nil {
		return nil, object.Errorf("%s: no such symbol %s", fn, obj.Inspect())
	}
	return sym, nil
}

func symbolToMap(sym symbols.Symbol) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":        object.NewInt(sym.ID()),
		"name":      object.NewString(sym.Name()),
		"kind":      object.NewString(sym.Kind().String()),
		"type_kind": object.NewString(sym.TypeKind().String()),
		"assembly":  object.NewString(sym.Assembly()),
	})
}

func seqToList(seq iter.Seq[symbols.Symbol]) object.Object {
	list := []object.Object{}
	for sym := range seq {
		list = append(list, symbolToMap(sym))
	}
	return object.NewList(list)
}

// valueToObject converts a TypedValue: scalars to their Risor
// equivalent, type literals to symbol maps, arrays to lists and null
// arrays to nil.
func valueToObject(v symbols.TypedValue) object.Object {
	switch v.Kind() {
	case symbols.ValueScalar:
		raw, _ := v.Value()
		return scalarToObject(raw)
	case symbols.ValueType:
		ref, ok := v.TypeRef()
		if !ok {
			return object.Nil
		}
		if ref.ID() == 0 {
			s, err := naming.GenericName(ref, naming.UseTypeArguments)
			if err != nil {
				return object.Nil
			}
			return object.NewString(s)
		}
		return symbolToMap(ref)
	case symbols.ValueArray:
		vals, ok := v.Values()
		if !ok {
			return object.Nil
		}
		list := make([]object.Object, len(vals))
		for i, e := range vals {
			list[i] = valueToObject(e)
		}
		return object.NewList(list)
	default:
		return object.Nil
	}
}

func scalarToObject(raw any) object.Object {
	switch x := raw.(type) {
	case int32:
		return object.NewInt(int64(x))
	case int64:
		return object.NewInt(x)
	case uint32:
		return object.NewInt(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return object.NewString(strconv.FormatUint(x, 10))
		}
		return object.NewInt(int64(x))
	case symbols.Char:
		return object.NewString(x.String())
	case float32:
		return object.NewFloat(float64(x))
	case float64:
		return object.NewFloat(x)
	case bool:
		return object.NewBool(x)
	case string:
		return object.NewString(x)
	case nil:
		return object.Nil
	default:
		return object.NewString(fmt.Sprint(x))
	}
}
