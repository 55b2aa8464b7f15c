// Package attrs resolves named attribute arguments into typed Go values.
//
// Every TryGet function reports a miss as ok == false: an unknown name, a
// value of the wrong shape, and a value that cannot be narrowed to T are all
// ordinary misses. The only error is a nil attribute.
package attrs

import (
	"fmt"

	"github.com/jward/nameplate/internal/symbols"
)

func checkAttribute(op string, attr *symbols.Attribute) error {
	if attr == nil {
		return fmt.Errorf("%s: nil attribute: %w", op, symbols.ErrInvalidArgument)
	}
	return nil
}

// TryGetNamed returns the value bound to name.
func TryGetNamed(attr *symbols.Attribute, name string) (symbols.TypedValue, bool, error) {
	if err := checkAttribute("try get named", attr); err != nil {
		return symbols.TypedValue{}, false, err
	}
	for _, arg := range attr.Named {
		if arg.Name == name {
			return arg.Value, true, nil
		}
	}
	return symbols.TypedValue{}, false, nil
}

// TryGetNamedValue narrows the scalar payload bound to name to T. A value
// that exists but is not a T is reported as not found.
func TryGetNamedValue[T any](attr *symbols.Attribute, name string) (T, bool, error) {
	var zero T
	v, ok, err := TryGetNamed(attr, name)
	if err != nil || !ok {
		return zero, false, err
	}
	got, ok := narrow[T](v)
	return got, ok, nil
}

// TryGetNamedTypeValue narrows the type facet of the value bound to name:
// the referenced symbol of a type literal, otherwise the declared type.
func TryGetNamedTypeValue[T symbols.Symbol](attr *symbols.Attribute, name string) (T, bool, error) {
	var zero T
	v, ok, err := TryGetNamed(attr, name)
	if err != nil || !ok {
		return zero, false, err
	}
	sym, isRef := v.TypeRef()
	if !isRef {
		sym = v.Type()
	}
	if sym == nil {
		return zero, false, nil
	}
	got, ok := sym.(T)
	return got, ok, nil
}

// TryGetNamedArrayValue returns the elements of the array bound to name. A
// null array is not found; an empty array is found with zero elements.
func TryGetNamedArrayValue(attr *symbols.Attribute, name string) ([]symbols.TypedValue, bool, error) {
	v, ok, err := TryGetNamed(attr, name)
	if err != nil || !ok {
		return nil, false, err
	}
	vals, ok := v.Values()
	return vals, ok, nil
}

// TryGetNamedArrayValues narrows each element of the array bound to name to
// T. Elements that cannot be narrowed become T's zero value; they do not
// fail the array.
func TryGetNamedArrayValues[T any](attr *symbols.Attribute, name string) ([]T, bool, error) {
	vals, ok, err := TryGetNamedArrayValue(attr, name)
	if err != nil || !ok {
		return nil, false, err
	}
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i], _ = narrow[T](v)
	}
	return out, true, nil
}

func narrow[T any](v symbols.TypedValue) (T, bool) {
	var zero T
	raw, ok := v.Value()
	if !ok {
		return zero, false
	}
	got, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return got, true
}

// Named is TryGetNamed without the presence flag.
func Named(attr *symbols.Attribute, name string) (symbols.TypedValue, error) {
	v, _, err := TryGetNamed(attr, name)
	return v, err
}

// NamedValue is TryGetNamedValue without the presence flag.
func NamedValue[T any](attr *symbols.Attribute, name string) (T, error) {
	v, _, err := TryGetNamedValue[T](attr, name)
	return v, err
}

// NamedTypeValue is TryGetNamedTypeValue without the presence flag.
func NamedTypeValue[T symbols.Symbol](attr *symbols.Attribute, name string) (T, error) {
	v, _, err := TryGetNamedTypeValue[T](attr, name)
	return v, err
}

// NamedArrayValue is TryGetNamedArrayValue without the presence flag; a null
// array comes back as nil.
func NamedArrayValue(attr *symbols.Attribute, name string) ([]symbols.TypedValue, error) {
	v, _, err := TryGetNamedArrayValue(attr, name)
	return v, err
}

// NamedArrayValues is TryGetNamedArrayValues without the presence flag.
func NamedArrayValues[T any](attr *symbols.Attribute, name string) ([]T, error) {
	v, _, err := TryGetNamedArrayValues[T](attr, name)
	return v, err
}

// FindAttribute returns the first attribute on sym whose class name is name
// or name+"Attribute".
func FindAttribute(sym symbols.Symbol, name string) (*symbols.Attribute, bool, error) {
	if sym == nil {
		return nil, false, fmt.Errorf("find attribute: nil symbol: %w", symbols.ErrInvalidArgument)
	}
	for _, a := range sym.Attributes() {
		n := a.Name()
		if n == name || n == name+"Attribute" {
			return a, true, nil
		}
	}
	return nil, false, nil
}
