package treesitter

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/xonecas/gotomethod/internal/symbols"
)

type language struct {
	grammar func() *sitter.Language
	extract func(d *document, root *sitter.Node) []symbols.DocumentSymbol
}

var languages = map[string]language{
	".go":  {golang.GetLanguage, extractGo},
	".py":  {python.GetLanguage, extractPython},
	".pyi": {python.GetLanguage, extractPython},
	".js":  {javascript.GetLanguage, extractJavaScript},
	".jsx": {javascript.GetLanguage, extractJavaScript},
	".mjs": {javascript.GetLanguage, extractJavaScript},
	".cjs": {javascript.GetLanguage, extractJavaScript},
}

func langFor(path string) (language, bool) {
	l, ok := languages[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Supported returns true if the file extension has a tree-sitter grammar.
func Supported(path string) bool {
	_, ok := langFor(path)
	return ok
}

// ParseSource parses source bytes and returns the declaration tree. Unknown
// extensions yield no symbols.
func ParseSource(ctx context.Context, path string, src []byte) ([]symbols.DocumentSymbol, error) {
	lang, ok := langFor(path)
	if !ok {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	d := &document{src: src, lines: bytes.Split(src, []byte("\n"))}
	return lang.extract(d, tree.RootNode()), nil
}

// document converts tree-sitter byte offsets into rune columns.
type document struct {
	src   []byte
	lines [][]byte
}

func (d *document) text(n *sitter.Node) string {
	return n.Content(d.src)
}

func (d *document) position(p sitter.Point) symbols.Position {
	row, col := int(p.Row), int(p.Column)
	if row < len(d.lines) {
		line := d.lines[row]
		if col > len(line) {
			col = len(line)
		}
		col = utf8.RuneCount(line[:col])
	}
	return symbols.Position{Line: row, Character: col}
}

func (d *document) rangeOf(n *sitter.Node) symbols.Range {
	return symbols.Range{Start: d.position(n.StartPoint()), End: d.position(n.EndPoint())}
}

// symbol builds a node for decl named by its "name" field. ok is false for
// anonymous declarations.
func (d *document) symbol(decl *sitter.Node, kind symbols.Kind) (symbols.DocumentSymbol, bool) {
	name := decl.ChildByFieldName("name")
	if name == nil {
		return symbols.DocumentSymbol{}, false
	}
	return symbols.DocumentSymbol{
		Name:  d.text(name),
		Kind:  kind,
		Range: d.rangeOf(decl),
	}, true
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}
