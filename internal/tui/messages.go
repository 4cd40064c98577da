package tui

import "github.com/xonecas/gotomethod/internal/symbols"

// ---------------------------------------------------------------------------
// ELM messages
// ---------------------------------------------------------------------------

// symbolsMsg carries the collected entries for invocation seq.
type symbolsMsg struct {
	seq     int
	entries []symbols.Entry
}

// openPickerMsg runs Go To Method once the window has a size.
type openPickerMsg struct{}
