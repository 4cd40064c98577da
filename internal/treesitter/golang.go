package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/gotomethod/internal/symbols"
)

type goDecl struct {
	sym      symbols.DocumentSymbol
	receiver string // methods only
}

// extractGo lists functions and types. Methods are nested under their
// receiver type when the type is declared in the same file.
func extractGo(d *document, root *sitter.Node) []symbols.DocumentSymbol {
	var decls []goDecl
	typeIdx := make(map[string]int)

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "function_declaration":
			if sym, ok := d.symbol(child, symbols.KindFunction); ok {
				decls = append(decls, goDecl{sym: sym})
			}
		case "method_declaration":
			if sym, ok := d.symbol(child, symbols.KindMethod); ok {
				decls = append(decls, goDecl{sym: sym, receiver: goReceiver(d, child.ChildByFieldName("receiver"))})
			}
		case "type_declaration":
			for _, spec := range namedChildren(child) {
				if spec.Type() != "type_spec" && spec.Type() != "type_alias" {
					continue
				}
				if sym, ok := goTypeSpec(d, spec); ok {
					typeIdx[sym.Name] = len(decls)
					decls = append(decls, goDecl{sym: sym})
				}
			}
		}
	}

	nested := make([]bool, len(decls))
	for i, decl := range decls {
		if decl.receiver == "" {
			continue
		}
		if ti, ok := typeIdx[decl.receiver]; ok {
			decls[ti].sym.Children = append(decls[ti].sym.Children, decl.sym)
			nested[i] = true
		}
	}

	out := make([]symbols.DocumentSymbol, 0, len(decls))
	for i, decl := range decls {
		if !nested[i] {
			out = append(out, decl.sym)
		}
	}
	return out
}

func goTypeSpec(d *document, spec *sitter.Node) (symbols.DocumentSymbol, bool) {
	sym, ok := d.symbol(spec, symbols.KindClass)
	if !ok {
		return sym, false
	}
	typeNode := spec.ChildByFieldName("type")
	if typeNode == nil {
		return sym, true
	}
	switch typeNode.Type() {
	case "struct_type":
		sym.Kind = symbols.KindStruct
	case "interface_type":
		sym.Kind = symbols.KindInterface
		for _, elem := range namedChildren(typeNode) {
			if elem.Type() != "method_elem" && elem.Type() != "method_spec" {
				continue
			}
			if m, ok := d.symbol(elem, symbols.KindMethod); ok {
				sym.Children = append(sym.Children, m)
			}
		}
	}
	return sym, true
}

// goReceiver returns the bare type name of a method receiver:
// "(s *Server[T])" becomes "Server".
func goReceiver(d *document, receiver *sitter.Node) string {
	for _, param := range namedChildren(receiver) {
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			return ""
		}
		name := strings.TrimLeft(d.text(typeNode), "*( ")
		if i := strings.IndexAny(name, "[)"); i >= 0 {
			name = name[:i]
		}
		return strings.TrimSpace(name)
	}
	return ""
}
