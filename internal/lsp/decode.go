package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/xonecas/gotomethod/internal/symbols"
)

// shapeProbe tells SymbolInformation (has location) from DocumentSymbol
// (has selectionRange and maybe children). Both share name/kind.
type shapeProbe struct {
	Location       *json.RawMessage `json:"location"`
	SelectionRange *json.RawMessage `json:"selectionRange"`
	Children       *json.RawMessage `json:"children"`
}

// decodeSymbols converts a textDocument/documentSymbol result into a
// symbols.Result of whichever shape the server chose.
func decodeSymbols(raw json.RawMessage) (symbols.Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return symbols.Result{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return symbols.Result{}, fmt.Errorf("decode symbols: %w", err)
	}
	if len(items) == 0 {
		return symbols.Result{}, nil
	}

	var probe shapeProbe
	if err := json.Unmarshal(items[0], &probe); err != nil {
		return symbols.Result{}, fmt.Errorf("decode symbols: %w", err)
	}

	switch {
	case probe.Location != nil:
		var infos []protocol.SymbolInformation
		if err := json.Unmarshal(raw, &infos); err != nil {
			return symbols.Result{}, fmt.Errorf("decode symbol information: %w", err)
		}
		return symbols.Result{Flat: convertInformation(infos)}, nil
	case probe.SelectionRange != nil || probe.Children != nil:
		var docs []protocol.DocumentSymbol
		if err := json.Unmarshal(raw, &docs); err != nil {
			return symbols.Result{}, fmt.Errorf("decode document symbols: %w", err)
		}
		return symbols.Result{Tree: convertDocumentSymbols(docs)}, nil
	default:
		return symbols.Result{}, fmt.Errorf("decode symbols: response not understood")
	}
}

func convertInformation(infos []protocol.SymbolInformation) []symbols.Information {
	out := make([]symbols.Information, 0, len(infos))
	for _, s := range infos {
		out = append(out, symbols.Information{
			Name:      s.Name,
			Container: s.ContainerName,
			Kind:      symbols.Kind(s.Kind),
			Range:     convertRange(s.Location.Range),
		})
	}
	return out
}

func convertDocumentSymbols(docs []protocol.DocumentSymbol) []symbols.DocumentSymbol {
	if len(docs) == 0 {
		return nil
	}
	out := make([]symbols.DocumentSymbol, 0, len(docs))
	for _, d := range docs {
		out = append(out, symbols.DocumentSymbol{
			Name:     d.Name,
			Kind:     symbols.Kind(d.Kind),
			Range:    convertRange(d.Range),
			Children: convertDocumentSymbols(d.Children),
		})
	}
	return out
}

func convertRange(r protocol.Range) symbols.Range {
	return symbols.Range{
		Start: symbols.Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   symbols.Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}
