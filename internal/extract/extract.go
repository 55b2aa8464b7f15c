// Package extract walks a tree-sitter C# syntax tree and records the
// declarations the naming engine cares about: namespaces, types, methods,
// their type parameters, parameters, attributes and doc comments.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/nameplate/internal/diag"
	"github.com/jward/nameplate/internal/store"
)

// Version identifies the shape of the rows this extractor writes. The
// engine reindexes everything when the stored version differs.
const Version = "1"

var typeDeclKinds = map[string]string{
	"class_declaration":         store.KindClass,
	"struct_declaration":        store.KindStruct,
	"interface_declaration":     store.KindInterface,
	"enum_declaration":          store.KindEnum,
	"record_declaration":        store.KindRecord,
	"record_struct_declaration": store.KindRecord,
	"delegate_declaration":      store.KindDelegate,
}

// Extractor writes declarations from C# source into a DataStore.
type Extractor struct {
	store store.DataStore
	log   *diag.Logger
}

// New creates an Extractor. A nil logger discards diagnostics.
func New(ds store.DataStore, log *diag.Logger) *Extractor {
	return &Extractor{store: ds, log: log}
}

// Stats summarizes one extraction.
type Stats struct {
	Symbols     int
	Attributes  int
	Diagnostics int
}

// fileState is the per-file walk state.
type fileState struct {
	e      *Extractor
	fileID int64
	path   string
	src    []byte
	stats  Stats
}

// ExtractFile parses src and records its declarations under fileID. Syntax
// errors do not fail the extraction; the surrounding declarations are
// still recorded and each error is reported as a diagnostic.
func (e *Extractor) ExtractFile(ctx context.Context, fileID int64, path string, src []byte) (Stats, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Stats{}, fmt.Errorf("extract %s: parse: %w", path, err)
	}
	defer tree.Close()

	fs := &fileState{e: e, fileID: fileID, path: path, src: src}
	if err := fs.walkMembers(ctx, tree.RootNode(), nil); err != nil {
		return fs.stats, fmt.Errorf("extract %s: %w", path, err)
	}
	return fs.stats, nil
}

func (fs *fileState) diagnostic(n *sitter.Node, format string, args ...any) {
	fs.stats.Diagnostics++
	p := n.StartPoint()
	msg := fmt.Sprintf(format, args...)
	fs.e.log.Diagnosticf("%s:%d:%d: %s", fs.path, p.Row+1, p.Column+1, msg)
}

func (fs *fileState) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(fs.src)
}

// walkMembers records every declaration directly inside n. A file-scoped
// namespace becomes the parent of the declarations that follow it.
func (fs *fileState) walkMembers(ctx context.Context, n *sitter.Node, parent *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "namespace_declaration":
			id, err := fs.insertNamespace(child, parent)
			if err != nil {
				return err
			}
			if body := child.ChildByFieldName("body"); body != nil {
				if err := fs.walkMembers(ctx, body, &id); err != nil {
					return err
				}
			}
		case "file_scoped_namespace_declaration":
			id, err := fs.insertNamespace(child, parent)
			if err != nil {
				return err
			}
			// Depending on the grammar revision the members are either
			// children of this node or its later siblings.
			if err := fs.walkMembers(ctx, child, &id); err != nil {
				return err
			}
			parent = &id
		case "declaration_list":
			if err := fs.walkMembers(ctx, child, parent); err != nil {
				return err
			}
		case "method_declaration":
			if parent == nil {
				fs.diagnostic(child, "method %q outside a type skipped", fs.text(child.ChildByFieldName("name")))
				continue
			}
			if err := fs.insertMethod(child, *parent); err != nil {
				return err
			}
		case "global_attribute_list", "global_attribute":
			fs.diagnostic(child, "assembly-level attributes are not recorded")
		case "global_statement":
			fs.diagnostic(child, "top-level statements skipped")
		case "ERROR":
			fs.diagnostic(child, "syntax error")
		default:
			if kind, ok := typeDeclKinds[child.Type()]; ok {
				if err := fs.insertType(ctx, child, kind, parent); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (fs *fileState) newSymbol(n *sitter.Node, name, kind string, parent *int64) *store.Symbol {
	start, end := n.StartPoint(), n.EndPoint()
	fileID := fs.fileID
	return &store.Symbol{
		FileID:         &fileID,
		Name:           name,
		Kind:           kind,
		Modifiers:      fs.modifiers(n),
		DocComment:     fs.docComment(n),
		StartLine:      int(start.Row),
		StartCol:       int(start.Column),
		EndLine:        int(end.Row),
		EndCol:         int(end.Column),
		ParentSymbolID: parent,
	}
}

func (fs *fileState) insertNamespace(n *sitter.Node, parent *int64) (int64, error) {
	name := strings.Join(strings.Fields(fs.text(n.ChildByFieldName("name"))), "")
	sym := fs.newSymbol(n, name, store.KindNamespace, parent)
	sym.SignatureHash = store.ComputeSignatureHash(name, store.KindNamespace, nil, "", nil, nil)
	id, err := fs.e.store.InsertSymbol(sym)
	if err != nil {
		return 0, fmt.Errorf("insert namespace %q: %w", name, err)
	}
	fs.stats.Symbols++
	return id, nil
}

func (fs *fileState) insertType(ctx context.Context, n *sitter.Node, kind string, parent *int64) error {
	name := fs.text(n.ChildByFieldName("name"))
	if name == "" {
		fs.diagnostic(n, "unnamed %s skipped", kind)
		return nil
	}
	sym := fs.newSymbol(n, name, kind, parent)
	tps := fs.typeParams(n)
	var params []*store.FunctionParam
	if kind == store.KindDelegate {
		sym.ReturnType = fs.returnType(n)
		params = fs.params(n)
	}
	sym.SignatureHash = store.ComputeSignatureHash(name, kind, sym.Modifiers, sym.ReturnType, params, tps)

	id, err := fs.insertDeclaration(n, sym, tps, params)
	if err != nil {
		return err
	}

	body := n.ChildByFieldName("body")
	if body == nil || kind == store.KindEnum {
		return nil
	}
	return fs.walkMembers(ctx, body, &id)
}

func (fs *fileState) insertMethod(n *sitter.Node, parent int64) error {
	name := fs.text(n.ChildByFieldName("name"))
	sym := fs.newSymbol(n, name, store.KindMethod, &parent)
	sym.ReturnType = fs.returnType(n)
	tps := fs.typeParams(n)
	params := fs.params(n)
	sym.SignatureHash = store.ComputeSignatureHash(name, store.KindMethod, sym.Modifiers, sym.ReturnType, params, tps)
	_, err := fs.insertDeclaration(n, sym, tps, params)
	return err
}

// insertDeclaration writes a type or method row followed by the rows that
// hang off it.
func (fs *fileState) insertDeclaration(n *sitter.Node, sym *store.Symbol, tps []*store.TypeParam, params []*store.FunctionParam) (int64, error) {
	id, err := fs.e.store.InsertSymbol(sym)
	if err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", sym.Kind, sym.Name, err)
	}
	fs.stats.Symbols++

	for _, tp := range tps {
		tp.SymbolID = id
		if _, err := fs.e.store.InsertTypeParam(tp); err != nil {
			return 0, fmt.Errorf("insert type param %q: %w", tp.Name, err)
		}
	}
	for _, p := range params {
		p.SymbolID = id
		if _, err := fs.e.store.InsertFunctionParam(p); err != nil {
			return 0, fmt.Errorf("insert param %q: %w", p.Name, err)
		}
	}
	for _, a := range fs.attributes(n) {
		a.TargetSymbolID = id
		if _, err := fs.e.store.InsertAttribute(a); err != nil {
			return 0, fmt.Errorf("insert attribute %q: %w", a.Name, err)
		}
		fs.stats.Attributes++
	}
	return id, nil
}

func (fs *fileState) modifiers(n *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "modifier" {
			mods = append(mods, fs.text(c))
		}
	}
	return mods
}

// returnType reads the return type of a method or delegate. Older grammar
// revisions name the field "type".
func (fs *fileState) returnType(n *sitter.Node) string {
	if t := n.ChildByFieldName("returns"); t != nil {
		return fs.text(t)
	}
	return fs.text(n.ChildByFieldName("type"))
}

// docComment collects the contiguous /// lines directly above n.
func (fs *fileState) docComment(n *sitter.Node) string {
	var lines []string
	next := n
	for prev := n.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		text := fs.text(prev)
		if !strings.HasPrefix(text, "///") || prev.EndPoint().Row+1 < next.StartPoint().Row {
			break
		}
		line := strings.TrimPrefix(text, "///")
		line = strings.TrimPrefix(line, " ")
		lines = append(lines, strings.TrimRight(line, "\r\n"))
		next = prev
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
