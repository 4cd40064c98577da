// Package treesitter extracts document symbols with tree-sitter grammars.
// It answers symbol queries when no language server is available.
package treesitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/gotomethod/internal/symbols"
)

// maxFileSize skips files too large to be worth parsing interactively.
const maxFileSize = 4 << 20

// Source is a symbols.Source backed by tree-sitter.
type Source struct{}

// New returns a tree-sitter symbol source.
func New() *Source { return &Source{} }

// DocumentSymbols parses path and returns its declarations as a symbol tree.
func (s *Source) DocumentSymbols(ctx context.Context, path string) (symbols.Result, error) {
	if !Supported(path) {
		return symbols.Result{}, fmt.Errorf("treesitter: %s: %w", filepath.Ext(path), symbols.ErrUnsupported)
	}

	info, err := os.Stat(path)
	if err != nil {
		return symbols.Result{}, err
	}
	if info.Size() > maxFileSize {
		return symbols.Result{}, fmt.Errorf("treesitter: %s is %d bytes: %w", path, info.Size(), symbols.ErrUnsupported)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return symbols.Result{}, err
	}
	tree, err := ParseSource(ctx, path, src)
	if err != nil {
		return symbols.Result{}, fmt.Errorf("treesitter: parse %s: %w", path, err)
	}
	log.Debug().Str("file", path).Int("symbols", len(tree)).Msg("treesitter: document symbols")
	return symbols.Result{Tree: tree}, nil
}
