package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/nameplate/internal/naming"
	"github.com/jward/nameplate/internal/store"
)

// Store-backed builtins read the index rows directly, below the loaded
// compilation. They exist for scripts that need source locations, modifiers
// or the raw attribute text.

func makeFilesFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("files", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.NewArgsRangeError("files", 0, 1, len(args))
		}
		var (
			files []*store.File
			err   error
		)
		if len(args) == 1 {
			assembly, convErr := toString(args[0])
			if convErr != nil {
				return object.Errorf("files: %v", convErr)
			}
			files, err = s.FilesByAssembly(assembly)
		} else {
			files, err = s.Files()
		}
		if err != nil {
			return object.Errorf("files: %v", err)
		}
		results := make([]object.Object, 0, len(files))
		for _, f := range files {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":       object.NewInt(f.ID),
				"path":     object.NewString(f.Path),
				"assembly": object.NewString(f.Assembly),
				"hash":     object.NewString(f.Hash),
			}))
		}
		return object.NewList(results)
	})
}

func makeSymbolsByNameFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("symbols_by_name", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("symbols_by_name", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("symbols_by_name: %v", err)
		}
		syms, err := s.SymbolsByName(name)
		if err != nil {
			return object.Errorf("symbols_by_name: %v", err)
		}
		return symbolRowsToList(syms)
	})
}

func makeSymbolsByFileFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("symbols_by_file", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("symbols_by_file", 1, len(args))
		}
		fileID, err := toInt64(args[0])
		if err != nil {
			return object.Errorf("symbols_by_file: %v", err)
		}
		syms, err := s.SymbolsByFile(fileID)
		if err != nil {
			return object.Errorf("symbols_by_file: %v", err)
		}
		return symbolRowsToList(syms)
	})
}

func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}

		trimmed := strings.TrimSpace(strings.ToUpper(sqlStr))
		if !strings.HasPrefix(trimmed, "SELECT") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		var queryArgs []any
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, arg.Inspect())
			}
		}

		rows, err := s.DB().QueryContext(ctx, sqlStr, queryArgs...)
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return object.Errorf("db_query: columns: %v", err)
		}

		results := []object.Object{}
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return object.Errorf("db_query: scan: %v", err)
			}
			row := make(map[string]object.Object, len(cols))
			for i, col := range cols {
				row[col] = sqlValueToObject(values[i])
			}
			results = append(results, object.NewMap(row))
		}
		if err := rows.Err(); err != nil {
			return object.Errorf("db_query: rows: %v", err)
		}
		return object.NewList(results)
	})
}

// sqlValueToObject converts a database value to a Risor object.
func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

func symbolRowsToList(syms []*store.Symbol) object.Object {
	results := make([]object.Object, 0, len(syms))
	for _, sym := range syms {
		mods := make([]object.Object, len(sym.Modifiers))
		for i, m := range sym.Modifiers {
			mods[i] = object.NewString(m)
		}
		m := map[string]object.Object{
			"id":          object.NewInt(sym.ID),
			"name":        object.NewString(sym.Name),
			"kind":        object.NewString(sym.Kind),
			"modifiers":   object.NewList(mods),
			"return_type": object.NewString(sym.ReturnType),
			"start_line":  object.NewInt(int64(sym.StartLine)),
			"start_col":   object.NewInt(int64(sym.StartCol)),
			"end_line":    object.NewInt(int64(sym.EndLine)),
			"end_col":     object.NewInt(int64(sym.EndCol)),
		}
		if sym.FileID != nil {
			m["file_id"] = object.NewInt(*sym.FileID)
		}
		if sym.ParentSymbolID != nil {
			m["parent_symbol_id"] = object.NewInt(*sym.ParentSymbolID)
		}
		results = append(results, object.NewMap(m))
	}
	return object.NewList(results)
}

// --- Argument helpers ---

func getOptionalInt64(m map[string]object.Object, key string) (int64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case *object.Int:
		return n.Value(), true
	case *object.Float:
		return int64(n.Value()), true
	}
	return 0, false
}

func getBool(m map[string]object.Object, key string) bool {
	if b, ok := m[key].(*object.Bool); ok {
		return b.Value()
	}
	return false
}

func toInt64(obj object.Object) (int64, error) {
	if i, ok := obj.(*object.Int); ok {
		return i.Value(), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int64(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

// optionalBool reads args[i] as a bool, or def when the argument is absent.
func optionalBool(fn string, args []object.Object, i int, def bool) (bool, *object.Error) {
	if i >= len(args) {
		return def, nil
	}
	b, ok := args[i].(*object.Bool)
	if !ok {
		return false, object.Errorf("%s: argument %d: expected bool, got %s", fn, i+1, args[i].Type())
	}
	return b.Value(), nil
}

// formatArg reads a naming format from a "type_arguments|variance" string
// or a map of those flags.
func formatArg(fn string, obj object.Object) (naming.Format, *object.Error) {
	switch v := obj.(type) {
	case *object.String:
		f, ok := naming.ParseFormat(v.Value())
		if !ok {
			return 0, object.Errorf("%s: unknown format %q", fn, v.Value())
		}
		return f, nil
	case *object.Map:
		m := v.Value()
		return naming.FormatFrom(
			getBool(m, "type_arguments"),
			getBool(m, "variance"),
			getBool(m, "parameters"),
		), nil
	}
	return 0, object.Errorf("%s: expected format string or map, got %s", fn, obj.Type())
}
