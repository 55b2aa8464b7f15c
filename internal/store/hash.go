package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ComputeSignatureHash computes a deterministic hash from a declaration's
// semantic identity: name, kind, modifiers, return type, parameters and
// type parameters. Location and doc comment changes do not affect it.
func ComputeSignatureHash(
	name, kind string,
	modifiers []string,
	returnType string,
	params []*FunctionParam,
	typeParams []*TypeParam,
) string {
	h := sha256.New()

	fmt.Fprintf(h, "name:%s\n", name)
	fmt.Fprintf(h, "kind:%s\n", kind)

	sorted := make([]string, len(modifiers))
	copy(sorted, modifiers)
	sort.Strings(sorted)
	fmt.Fprintf(h, "modifiers:%s\n", strings.Join(sorted, ","))
	fmt.Fprintf(h, "returns:%s\n", returnType)

	ps := make([]*FunctionParam, len(params))
	copy(ps, params)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Ordinal < ps[j].Ordinal })
	for _, p := range ps {
		fmt.Fprintf(h, "param:%d:%s:%s:%s\n", p.Ordinal, p.Modifier, p.TypeExpr, p.Name)
	}

	tps := make([]*TypeParam, len(typeParams))
	copy(tps, typeParams)
	sort.Slice(tps, func(i, j int) bool { return tps[i].Ordinal < tps[j].Ordinal })
	for _, tp := range tps {
		fmt.Fprintf(h, "typeparam:%d:%s:%s:%s\n", tp.Ordinal, tp.Name, tp.Variance, tp.Constraints)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
