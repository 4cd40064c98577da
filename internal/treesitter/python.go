package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/gotomethod/internal/symbols"
)

func extractPython(d *document, root *sitter.Node) []symbols.DocumentSymbol {
	return pythonBlock(d, root, false)
}

// pythonBlock lists the definitions directly inside a module, class or
// function body. Decorators are unwrapped; the range starts at def/class.
func pythonBlock(d *document, block *sitter.Node, inClass bool) []symbols.DocumentSymbol {
	var out []symbols.DocumentSymbol
	for _, stmt := range namedChildren(block) {
		if stmt.Type() == "decorated_definition" {
			stmt = stmt.ChildByFieldName("definition")
			if stmt == nil {
				continue
			}
		}
		switch stmt.Type() {
		case "function_definition":
			kind := symbols.KindFunction
			if inClass {
				kind = symbols.KindMethod
			}
			sym, ok := d.symbol(stmt, kind)
			if !ok {
				continue
			}
			if inClass && sym.Name == "__init__" {
				sym.Kind = symbols.KindConstructor
			}
			sym.Children = pythonBlock(d, stmt.ChildByFieldName("body"), false)
			out = append(out, sym)
		case "class_definition":
			sym, ok := d.symbol(stmt, symbols.KindClass)
			if !ok {
				continue
			}
			sym.Children = pythonBlock(d, stmt.ChildByFieldName("body"), true)
			out = append(out, sym)
		}
	}
	return out
}
