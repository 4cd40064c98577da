package lsp

import (
	"encoding/json"
	"testing"

	"github.com/xonecas/gotomethod/internal/symbols"
)

func TestDecodeSymbolsEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", "  null \n"} {
		res, err := decodeSymbols(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		if !res.Empty() {
			t.Errorf("decode %q: want empty result, got %+v", raw, res)
		}
	}
}

func TestDecodeSymbolsFlat(t *testing.T) {
	raw := `[
		{"name":"Run","kind":6,"containerName":"Server",
		 "location":{"uri":"file:///a.go","range":{"start":{"line":4,"character":1},"end":{"line":9,"character":2}}}},
		{"name":"main","kind":12,
		 "location":{"uri":"file:///a.go","range":{"start":{"line":11,"character":0},"end":{"line":13,"character":1}}}}
	]`
	res, err := decodeSymbols(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Tree) != 0 {
		t.Fatalf("flat response decoded into tree: %+v", res.Tree)
	}
	if len(res.Flat) != 2 {
		t.Fatalf("got %d symbols, want 2", len(res.Flat))
	}
	got := res.Flat[0]
	if got.Name != "Run" || got.Container != "Server" || got.Kind != symbols.KindMethod {
		t.Errorf("first = %+v", got)
	}
	if got.Range.Start != (symbols.Position{Line: 4, Character: 1}) {
		t.Errorf("start = %+v", got.Range.Start)
	}
	if res.Flat[1].Kind != symbols.KindFunction || res.Flat[1].Container != "" {
		t.Errorf("second = %+v", res.Flat[1])
	}
}

func TestDecodeSymbolsTree(t *testing.T) {
	raw := `[
		{"name":"Server","kind":5,
		 "range":{"start":{"line":0,"character":0},"end":{"line":20,"character":1}},
		 "selectionRange":{"start":{"line":0,"character":6},"end":{"line":0,"character":12}},
		 "children":[
			{"name":"constructor","kind":9,
			 "range":{"start":{"line":1,"character":2},"end":{"line":3,"character":3}},
			 "selectionRange":{"start":{"line":1,"character":2},"end":{"line":1,"character":13}}}
		 ]},
		{"name":"helper","kind":12,
		 "range":{"start":{"line":22,"character":0},"end":{"line":24,"character":1}},
		 "selectionRange":{"start":{"line":22,"character":9},"end":{"line":22,"character":15}}}
	]`
	res, err := decodeSymbols(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Flat) != 0 || len(res.Tree) != 2 {
		t.Fatalf("got flat=%d tree=%d", len(res.Flat), len(res.Tree))
	}
	class := res.Tree[0]
	if class.Name != "Server" || class.Kind != symbols.KindClass || len(class.Children) != 1 {
		t.Fatalf("class = %+v", class)
	}
	ctor := class.Children[0]
	if ctor.Kind != symbols.KindConstructor || ctor.Range.Start.Line != 1 || ctor.Range.End.Character != 3 {
		t.Errorf("constructor = %+v", ctor)
	}
}

func TestDecodeSymbolsGarbage(t *testing.T) {
	for _, raw := range []string{`{"name":"x"}`, `[{"name":"x","kind":12}]`, `[1,2]`} {
		if _, err := decodeSymbols(json.RawMessage(raw)); err == nil {
			t.Errorf("decode %s: expected error", raw)
		}
	}
}
