package extract

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/nameplate/internal/store"
)

// systemType is the declared type of a typeof(...) argument.
const systemType = "System.Type"

func (fs *fileState) attributes(n *sitter.Node) []*store.Attribute {
	var out []*store.Attribute
	for i := 0; i < int(n.NamedChildCount()); i++ {
		list := n.NamedChild(i)
		if list.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(list.NamedChildCount()); j++ {
			a := list.NamedChild(j)
			if a.Type() != "attribute" {
				continue
			}
			out = append(out, fs.attribute(a, len(out)))
		}
	}
	return out
}

func (fs *fileState) attribute(n *sitter.Node, ordinal int) *store.Attribute {
	p := n.StartPoint()
	fileID := fs.fileID
	attr := &store.Attribute{
		Name:    fs.text(n.ChildByFieldName("name")),
		Ordinal: ordinal,
		FileID:  &fileID,
		Line:    int(p.Row),
		Col:     int(p.Column),
	}

	args := lastNamedOfType(n, "attribute_argument_list")
	if args == nil {
		return attr
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "attribute_argument" || arg.NamedChildCount() == 0 {
			continue
		}
		expr := arg.NamedChild(int(arg.NamedChildCount()) - 1)

		// Name = value parses as an assignment inside the argument.
		if expr.Type() == "assignment_expression" {
			left, right := expr.ChildByFieldName("left"), expr.ChildByFieldName("right")
			if left != nil && right != nil {
				attr.Named = append(attr.Named, store.NamedArgument{
					Name:  strings.TrimSpace(fs.text(left)),
					Value: fs.argument(right),
				})
				continue
			}
		}
		first := arg.NamedChild(0)
		if first.Type() == "name_equals" && !first.Equal(expr) {
			name := fs.text(first)
			if first.NamedChildCount() > 0 {
				name = fs.text(first.NamedChild(0))
			}
			attr.Named = append(attr.Named, store.NamedArgument{
				Name:  strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "=")),
				Value: fs.argument(expr),
			})
			continue
		}
		attr.Positional = append(attr.Positional, fs.argument(expr))
	}
	return attr
}

// argument evaluates a constant attribute argument expression. Anything
// that is not a literal, typeof, array or null is kept as source text.
func (fs *fileState) argument(n *sitter.Node) store.Argument {
	text := fs.text(n)
	switch n.Type() {
	case "string_literal", "verbatim_string_literal", "raw_string_literal":
		return store.Argument{Kind: store.ArgScalar, Type: "string", Text: unquoteString(text)}
	case "character_literal":
		return store.Argument{Kind: store.ArgScalar, Type: "char", Text: unquoteChar(text)}
	case "integer_literal":
		typ, digits := integerLiteral(text)
		return store.Argument{Kind: store.ArgScalar, Type: typ, Text: digits}
	case "real_literal":
		typ, digits := realLiteral(text)
		return store.Argument{Kind: store.ArgScalar, Type: typ, Text: digits}
	case "boolean_literal":
		return store.Argument{Kind: store.ArgScalar, Type: "bool", Text: text}
	case "null_literal":
		return store.Argument{Kind: store.ArgNull}
	case "typeof_expression":
		typ := n.ChildByFieldName("type")
		if typ == nil && n.NamedChildCount() > 0 {
			typ = n.NamedChild(0)
		}
		return store.Argument{Kind: store.ArgType, Type: systemType, Text: fs.text(typ)}
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return fs.argument(n.NamedChild(0))
		}
	case "prefix_unary_expression":
		if n.NamedChildCount() == 1 && strings.HasPrefix(text, "-") {
			inner := fs.argument(n.NamedChild(0))
			if inner.Kind == store.ArgScalar && inner.Type != "string" && inner.Type != "bool" {
				inner.Text = "-" + inner.Text
				return inner
			}
		}
	case "array_creation_expression":
		return fs.arrayArgument(n, fs.text(n.ChildByFieldName("type")))
	case "implicit_array_creation_expression", "collection_expression", "initializer_expression":
		return fs.arrayArgument(n, "")
	}
	fs.diagnostic(n, "attribute argument %q is not a constant; kept as text", text)
	return store.Argument{Kind: store.ArgExpr, Text: text}
}

// arrayArgument collects the elements of an array creation. typ is the
// declared array type; when empty it is inferred from the first element.
func (fs *fileState) arrayArgument(n *sitter.Node, typ string) store.Argument {
	init := lastNamedOfType(n, "initializer_expression")
	if n.Type() != "array_creation_expression" && n.Type() != "implicit_array_creation_expression" {
		init = n
	}
	values := []store.Argument{}
	if init != nil {
		for i := 0; i < int(init.NamedChildCount()); i++ {
			c := init.NamedChild(i)
			if c.Type() == "comment" {
				continue
			}
			values = append(values, fs.argument(c))
		}
	}
	if typ == "" {
		typ = "object[]"
		if len(values) > 0 && values[0].Type != "" {
			typ = values[0].Type + "[]"
		}
	}
	return store.Argument{Kind: store.ArgArray, Type: typ, Values: values}
}

func unquoteString(text string) string {
	switch {
	case strings.HasPrefix(text, `"""`):
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, `"""`), `"""`))
	case strings.HasPrefix(text, `@"`):
		body := strings.TrimSuffix(strings.TrimPrefix(text, `@"`), `"`)
		return strings.ReplaceAll(body, `""`, `"`)
	}
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
}

func unquoteChar(text string) string {
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
}

// integerLiteral splits a C# integer literal into its type keyword and its
// digits, e.g. "10UL" -> ("ulong", "10").
func integerLiteral(text string) (typ, digits string) {
	digits = strings.ReplaceAll(text, "_", "")
	suffix := ""
	for len(digits) > 0 && strings.ContainsRune("uUlL", rune(digits[len(digits)-1])) {
		suffix = strings.ToLower(digits[len(digits)-1:]) + suffix
		digits = digits[:len(digits)-1]
	}
	switch {
	case strings.Contains(suffix, "u") && strings.Contains(suffix, "l"):
		return "ulong", digits
	case strings.Contains(suffix, "l"):
		return "long", digits
	case strings.Contains(suffix, "u"):
		return "uint", digits
	}
	return "int", digits
}

func realLiteral(text string) (typ, digits string) {
	digits = strings.ReplaceAll(text, "_", "")
	if digits == "" {
		return "double", digits
	}
	switch digits[len(digits)-1] {
	case 'f', 'F':
		return "float", digits[:len(digits)-1]
	case 'm', 'M':
		return "decimal", digits[:len(digits)-1]
	case 'd', 'D':
		return "double", digits[:len(digits)-1]
	}
	return "double", digits
}
