// Package viewer provides a read-only, syntax-highlighted document view for
// bubbletea with a cursor and whole-line decorations.
package viewer

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/gotomethod/internal/highlight"
	"github.com/xonecas/gotomethod/internal/navigator"
	"github.com/xonecas/gotomethod/internal/symbols"
)

const tabWidth = 4

// Model is a read-only document view. It satisfies navigator.View.
type Model struct {
	// TopInset is the number of rows hidden behind an overlay. Minimal
	// reveals keep ranges below it.
	TopInset        int
	ShowLineNumbers bool

	path    string
	theme   string
	palette highlight.Palette

	lines [][]rune // source lines, tabs intact
	hl    []string // highlighted, tab-expanded lines

	row, col int // cursor, in source runes
	top      int // first visible row
	left     int // first visible cell

	width, height int

	decorated map[int]bool
}

// New creates a view of text. path is reported by Document and picks the
// highlighting language.
func New(path, text, theme string, palette highlight.Palette) *Model {
	m := &Model{
		ShowLineNumbers: true,
		path:            path,
		theme:           theme,
		palette:         palette,
	}
	m.SetText(text)
	return m
}

// SetText replaces the document content and resets the cursor.
func (m *Model) SetText(text string) {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	m.lines = make([][]rune, len(raw))
	expanded := make([]string, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
		expanded[i] = expandTabs(l)
	}
	m.hl = highlight.Lines(strings.Join(expanded, "\n"), highlight.DetectLanguage(m.path), m.theme, m.palette.Bg)
	m.row, m.col, m.top, m.left = 0, 0, 0, 0
	m.decorated = nil
}

func (m *Model) SetWidth(w int)  { m.width = w; m.clampScroll() }
func (m *Model) SetHeight(h int) { m.height = h; m.clampScroll() }

// Width returns the view width in cells.
func (m *Model) Width() int { return m.width }

// Height returns the number of text rows.
func (m *Model) Height() int { return m.height }

// LineCount returns the number of document lines.
func (m *Model) LineCount() int { return len(m.lines) }

// Top returns the first visible line.
func (m *Model) Top() int { return m.top }

// Cursor returns the cursor position in zero-based lines and rune columns.
func (m *Model) Cursor() symbols.Position {
	return symbols.Position{Line: m.row, Character: m.col}
}

// Decorated reports whether line carries the preview decoration.
func (m *Model) Decorated(line int) bool { return m.decorated[line] }

// Document implements navigator.View.
func (m *Model) Document() string { return m.path }

// VisibleRange implements navigator.View. The range spans whole lines from
// the first to the last visible row; Start.Character is the first visible
// display column, so Reveal with RevealAtTop restores horizontal scroll too.
func (m *Model) VisibleRange() (symbols.Range, bool) {
	if m.height <= 0 || len(m.lines) == 0 {
		return symbols.Range{}, false
	}
	last := m.top + m.height - 1
	if last >= len(m.lines) {
		last = len(m.lines) - 1
	}
	return symbols.Range{
		Start: symbols.Position{Line: m.top, Character: m.left},
		End:   symbols.Position{Line: last, Character: len(m.lines[last])},
	}, true
}

// Reveal implements navigator.View.
func (m *Model) Reveal(r symbols.Range, how navigator.RevealType) {
	start, end := m.clampLine(r.Start.Line), m.clampLine(r.End.Line)
	if end < start {
		end = start
	}

	switch how {
	case navigator.RevealAtTop:
		m.top = start
		m.left = max(r.Start.Character, 0)
		m.clampTop()
		return
	default:
		inset := m.TopInset
		if inset >= m.height {
			inset = 0
		}
		first := m.top + inset
		last := m.top + m.height - 1
		switch {
		case start >= first && end <= last:
			// Already in view.
		case start < first || end-start+1 > m.height-inset:
			m.top = start - inset
		default:
			m.top = end - m.height + 1
		}
	}
	m.clampTop()
	m.revealColumn(r.Start.Line, r.Start.Character)
}

// SetSelection implements navigator.View.
func (m *Model) SetSelection(p symbols.Position) {
	m.row = m.clampLine(p.Line)
	m.col = p.Character
	m.clampCursor()
	m.revealColumn(m.row, m.col)
}

// ApplyLineHighlight implements navigator.View. Every line touched by a
// range is decorated in full.
func (m *Model) ApplyLineHighlight(ranges []symbols.Range) {
	m.decorated = make(map[int]bool)
	for _, r := range ranges {
		start, end := m.clampLine(r.Start.Line), m.clampLine(r.End.Line)
		for l := start; l <= end; l++ {
			m.decorated[l] = true
		}
	}
}

// ClearHighlight implements navigator.View.
func (m *Model) ClearHighlight() { m.decorated = nil }

func (m *Model) clampLine(l int) int {
	if l < 0 {
		return 0
	}
	if l >= len(m.lines) {
		return len(m.lines) - 1
	}
	return l
}

func (m *Model) clampCursor() {
	m.row = m.clampLine(m.row)
	if m.col < 0 {
		m.col = 0
	}
	if n := len(m.lines[m.row]); m.col > n {
		m.col = n
	}
}

// clampTop keeps the first visible row on a document line. Scrolling past
// the last line is allowed so any line can be pinned to the top.
func (m *Model) clampTop() {
	if m.top > len(m.lines)-1 {
		m.top = len(m.lines) - 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// clampScroll scrolls the minimum needed to keep the cursor visible.
func (m *Model) clampScroll() {
	if m.height <= 0 {
		return
	}
	if m.row < m.top {
		m.top = m.row
	}
	if m.row >= m.top+m.height {
		m.top = m.row - m.height + 1
	}
	m.clampTop()
	m.revealColumn(m.row, m.col)
}

// revealColumn scrolls horizontally so the cell of (line, col) is visible.
func (m *Model) revealColumn(line, col int) {
	tw := m.textWidth()
	if tw <= 0 {
		return
	}
	cell := m.cellOf(m.clampLine(line), col)
	if cell < m.left {
		m.left = cell
	}
	if cell >= m.left+tw {
		m.left = cell - tw + 1
	}
}

// cellOf converts a source rune column to a display cell, expanding tabs.
func (m *Model) cellOf(line, col int) int {
	runes := m.lines[line]
	if col > len(runes) {
		col = len(runes)
	}
	return ansi.StringWidth(expandTabs(string(runes[:col])))
}

// colAt converts a display cell back to a source rune column.
func (m *Model) colAt(line, cell int) int {
	runes := m.lines[line]
	for i := range runes {
		if m.cellOf(line, i+1) > cell {
			return i
		}
	}
	return len(runes)
}

// expandTabs replaces tabs with spaces (tabWidth-aligned).
func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		} else {
			b.WriteRune(r)
			col += ansi.StringWidth(string(r))
		}
	}
	return b.String()
}
