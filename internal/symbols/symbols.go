// Package symbols normalizes document symbols reported by an analysis
// source into a flat list of navigable entries.
package symbols

import (
	"context"
	"errors"
)

// Kind classifies a symbol. Values follow the LSP SymbolKind numbering so
// language-server responses map without translation.
type Kind int

const (
	KindFile Kind = iota + 1
	KindModule
	KindNamespace
	KindPackage
	KindClass
	KindMethod
	KindProperty
	KindField
	KindConstructor
	KindEnum
	KindInterface
	KindFunction
	KindVariable
	KindConstant
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindObject
	KindKey
	KindNull
	KindEnumMember
	KindStruct
	KindEvent
	KindOperator
	KindTypeParameter
)

// Callable reports whether symbols of this kind are jump targets.
func (k Kind) Callable() bool {
	return k == KindMethod || k == KindFunction || k == KindConstructor
}

// Position is a zero-based line and character offset.
type Position struct {
	Line      int
	Character int
}

// Range is a span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Information is one element of a flat symbol response. Each symbol names
// its own container.
type Information struct {
	Name      string
	Container string
	Kind      Kind
	Range     Range
}

// DocumentSymbol is one node of a tree-shaped symbol response.
type DocumentSymbol struct {
	Name     string
	Kind     Kind
	Range    Range
	Children []DocumentSymbol
}

// Result holds the answer to one symbol query. A source fills either Flat
// or Tree, never both.
type Result struct {
	Flat []Information
	Tree []DocumentSymbol
}

// Empty reports whether the result carries no symbols at all.
func (r Result) Empty() bool {
	return len(r.Flat) == 0 && len(r.Tree) == 0
}

// ErrUnsupported is returned by a Source that cannot analyse the document.
var ErrUnsupported = errors.New("symbols: document not supported")

// Source reports the structural symbols of a document.
type Source interface {
	DocumentSymbols(ctx context.Context, path string) (Result, error)
}
