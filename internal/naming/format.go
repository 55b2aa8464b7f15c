// Package naming renders canonical text names for symbols.
//
// Every writer appends to a caller-owned strings.Builder. When a writer
// fails, the builder holds only what was written before the failing
// segment started; a generic argument list is never left half open.
package naming

import "strings"

// Format is a combinable set of rendering modes. The zero value renders
// declared type parameters without variance and no parameter list.
type Format uint8

const (
	// UseTypeArguments renders bound type arguments instead of declared
	// type parameters when the symbol has any.
	UseTypeArguments Format = 1 << iota
	// IncludeVariance prefixes declared type parameters with in/out. It has
	// no effect when UseTypeArguments is also set.
	IncludeVariance
	// IncludeParameterList appends the parenthesized parameter signature of
	// a method or delegate.
	IncludeParameterList
)

func (f Format) HasTypeArguments() bool { return f&UseTypeArguments != 0 }
func (f Format) HasVariance() bool { return f&IncludeVariance != 0 }
func (f Format) HasParameterList() bool { return f&IncludeParameterList != 0 }
func (f Format) Without(o Format) Format { return f &^ o }

var formatNames = []struct {
	flag Format
	name string
}{
	{UseTypeArguments, "type_arguments"},
	{IncludeVariance, "variance"},
	{IncludeParameterList, "parameters"},
}

func (f Format) String() string {
	var parts []string
	for _, fn := range formatNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseFormat reads the String form back, e.g. "variance|parameters".
// Unknown flag names report false.
func ParseFormat(s string) (Format, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return 0, true
	}
	var f Format
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		found := false
		for _, fn := range formatNames {
			if fn.name == part {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return f, true
}

// FormatFrom combines individual switches into a Format.
func FormatFrom(typeArguments, variance, parameters bool) Format {
	var f Format
	if typeArguments {
		f |= UseTypeArguments
	}
	if variance {
		f |= IncludeVariance
	}
	if parameters {
		f |= IncludeParameterList
	}
	return f
}
