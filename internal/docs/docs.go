// Package docs derives documentation-comment references from symbol names.
package docs

import (
	"fmt"
	"strings"

	"github.com/jward/nameplate/internal/naming"
	"github.com/jward/nameplate/internal/symbols"
)

// xmlEscaper turns generic syntax into the brace form cref attributes use.
var xmlEscaper = strings.NewReplacer("<", "{", ">", "}", ", ", ",")

// ParentTypesString dot-joins the names of all types containing member with
// member's own name. A member with no containing type yields just its name.
func ParentTypesString(member symbols.Symbol, includeParameters bool) (string, error) {
	if member == nil {
		return "", fmt.Errorf("parent types string: nil member: %w", symbols.ErrInvalidArgument)
	}
	return naming.ContainingTypes(member, true, includeParameters)
}

// XMLSafeName is ParentTypesString escaped for use inside a doc comment:
// "Outer<T>.Run(List<int>, int)" becomes "Outer{T}.Run(List{int},int)".
func XMLSafeName(member symbols.Symbol, includeParameters bool) (string, error) {
	s, err := ParentTypesString(member, includeParameters)
	if err != nil {
		return "", err
	}
	return xmlEscaper.Replace(s), nil
}

// InheritDoc is an <inheritdoc cref="..."/> marker.
type InheritDoc struct {
	Cref string
}

func (d *InheritDoc) String() string {
	return fmt.Sprintf(`<inheritdoc cref="%s"/>`, d.Cref)
}

// InheritDocTag returns the inheritdoc marker pointing at member, or nil if
// member has no documentation comment to inherit.
func InheritDocTag(member symbols.Symbol) (*InheritDoc, error) {
	if member == nil {
		return nil, fmt.Errorf("inheritdoc: nil member: %w", symbols.ErrInvalidArgument)
	}
	if strings.TrimSpace(member.DocumentationComment()) == "" {
		return nil, nil
	}
	cref, err := XMLSafeName(member, true)
	if err != nil {
		return nil, err
	}
	return &InheritDoc{Cref: cref}, nil
}
