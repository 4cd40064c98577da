package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/gotomethod/internal/symbols"
)

func extractJavaScript(d *document, root *sitter.Node) []symbols.DocumentSymbol {
	var out []symbols.DocumentSymbol
	for _, stmt := range namedChildren(root) {
		if stmt.Type() == "export_statement" {
			stmt = stmt.ChildByFieldName("declaration")
			if stmt == nil {
				continue
			}
		}
		switch stmt.Type() {
		case "function_declaration", "generator_function_declaration":
			if sym, ok := d.symbol(stmt, symbols.KindFunction); ok {
				out = append(out, sym)
			}
		case "class_declaration":
			sym, ok := d.symbol(stmt, symbols.KindClass)
			if !ok {
				continue
			}
			sym.Children = jsClassBody(d, stmt.ChildByFieldName("body"))
			out = append(out, sym)
		case "lexical_declaration", "variable_declaration":
			out = append(out, jsFunctionVars(d, stmt)...)
		}
	}
	return out
}

func jsClassBody(d *document, body *sitter.Node) []symbols.DocumentSymbol {
	var out []symbols.DocumentSymbol
	for _, member := range namedChildren(body) {
		if member.Type() != "method_definition" {
			continue
		}
		sym, ok := d.symbol(member, symbols.KindMethod)
		if !ok {
			continue
		}
		if sym.Name == "constructor" {
			sym.Kind = symbols.KindConstructor
		}
		out = append(out, sym)
	}
	return out
}

// jsFunctionVars picks declarators bound to a function value,
// e.g. const handler = () => {}.
func jsFunctionVars(d *document, decl *sitter.Node) []symbols.DocumentSymbol {
	var out []symbols.DocumentSymbol
	for _, declarator := range namedChildren(decl) {
		if declarator.Type() != "variable_declarator" {
			continue
		}
		value := declarator.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function", "function_expression", "generator_function":
		default:
			continue
		}
		name := declarator.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			continue
		}
		out = append(out, symbols.DocumentSymbol{
			Name:  d.text(name),
			Kind:  symbols.KindFunction,
			Range: d.rangeOf(declarator),
		})
	}
	return out
}
