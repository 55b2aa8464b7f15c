package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/nameplate/internal/store"
)

var paramModifiers = map[string]bool{
	"ref":    true,
	"out":    true,
	"in":     true,
	"params": true,
	"this":   true,
}

func (fs *fileState) typeParams(n *sitter.Node) []*store.TypeParam {
	list := n.ChildByFieldName("type_parameters")
	if list == nil {
		// Classes, structs and records carry the list without a field name.
		list = lastNamedOfType(n, "type_parameter_list")
	}
	if list == nil {
		return nil
	}
	constraints := fs.constraints(n)

	var tps []*store.TypeParam
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if c.Type() != "type_parameter" {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = lastNamedOfType(c, "identifier")
		}
		name := fs.text(nameNode)
		tps = append(tps, &store.TypeParam{
			Name:        name,
			Ordinal:     len(tps),
			Variance:    fs.variance(c, nameNode),
			Constraints: constraints[name],
		})
	}
	return tps
}

func (fs *fileState) variance(tp, nameNode *sitter.Node) string {
	for i := 0; i < int(tp.ChildCount()); i++ {
		c := tp.Child(i)
		if sameNode(c, nameNode) {
			break
		}
		switch t := fs.text(c); t {
		case "in", "out":
			return t
		}
	}
	return ""
}

// constraints maps each constrained type parameter to its where-clause
// text, e.g. "class, new()".
func (fs *fileState) constraints(n *sitter.Node) map[string]string {
	out := make(map[string]string)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "type_parameter_constraints_clause" || clause.NamedChildCount() == 0 {
			continue
		}
		target := clause.ChildByFieldName("target")
		if target == nil {
			target = clause.NamedChild(0)
		}
		var parts []string
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			if sameNode(c, target) {
				continue
			}
			parts = append(parts, fs.text(c))
		}
		out[fs.text(target)] = strings.Join(parts, ", ")
	}
	return out
}

func (fs *fileState) params(n *sitter.Node) []*store.FunctionParam {
	list := n.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var (
		params    []*store.FunctionParam
		inArray   bool
		arrayType *sitter.Node
	)
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		switch {
		case c.Type() == "parameter":
			params = append(params, fs.param(c, len(params)))
		case c.Type() == "parameter_array":
			p := fs.param(c, len(params))
			p.Modifier = "params"
			params = append(params, p)
		case !c.IsNamed():
			// A params array is inlined into the list as the keyword
			// followed by its type and name.
			if c.Type() == "params" {
				inArray, arrayType = true, nil
			}
		case !inArray, c.Type() == "attribute_list", c.Type() == "comment":
		case arrayType == nil:
			arrayType = c
		default:
			params = append(params, &store.FunctionParam{
				Name:     fs.text(c),
				Ordinal:  len(params),
				TypeExpr: fs.text(arrayType),
				Modifier: "params",
			})
			inArray, arrayType = false, nil
		}
	}
	return params
}

func (fs *fileState) param(c *sitter.Node, ordinal int) *store.FunctionParam {
	nameNode := c.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = lastNamedOfType(c, "identifier")
	}
	typeNode := c.ChildByFieldName("type")
	if typeNode == nil {
		typeNode = firstTypeNode(c, nameNode)
	}
	p := &store.FunctionParam{
		Name:     fs.text(nameNode),
		Ordinal:  ordinal,
		TypeExpr: fs.text(typeNode),
	}
	afterName := false
	for j := 0; j < int(c.ChildCount()); j++ {
		part := c.Child(j)
		switch {
		case sameNode(part, nameNode):
			afterName = true
		case sameNode(part, typeNode):
		case part.Type() == "equals_value_clause":
			p.HasDefault = true
			if part.NamedChildCount() > 0 {
				p.DefaultExpr = fs.text(part.NamedChild(int(part.NamedChildCount()) - 1))
			}
		case afterName && part.IsNamed() && part.Type() != "comment":
			// The default value follows "=" as a bare expression.
			p.HasDefault = true
			p.DefaultExpr = fs.text(part)
		case !afterName && p.Modifier == "" && paramModifiers[fs.text(part)]:
			p.Modifier = fs.text(part)
		}
	}
	return p
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.Equal(b)
}

// firstTypeNode finds the type of a parameter whose grammar rule has no
// field names.
func firstTypeNode(param, nameNode *sitter.Node) *sitter.Node {
	for i := 0; i < int(param.NamedChildCount()); i++ {
		c := param.NamedChild(i)
		switch {
		case sameNode(c, nameNode):
			return nil
		case c.Type() == "attribute_list", c.Type() == "parameter_modifier", c.Type() == "modifier":
			continue
		}
		return c
	}
	return nil
}

func lastNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			found = c
		}
	}
	return found
}
