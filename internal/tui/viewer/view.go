package viewer

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/gotomethod/internal/highlight"
)

// gutterWidth returns the width of the line number gutter (0 if disabled).
func (m *Model) gutterWidth() int {
	if !m.ShowLineNumbers {
		return 0
	}
	digits := len(fmt.Sprintf("%d", len(m.lines)))
	if digits < 3 {
		digits = 3
	}
	return digits + 1 // digits + 1 space
}

// textWidth returns the width available for text content.
func (m *Model) textWidth() int {
	return m.width - m.gutterWidth()
}

// View renders exactly height rows of width cells.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	tw := m.textWidth()
	gw := m.gutterWidth()
	bg := lipgloss.NewStyle().Background(lipgloss.Color(m.palette.Bg))
	rangeBg := lipgloss.NewStyle().Background(lipgloss.Color(m.palette.RangeBg))
	themeSeq := highlight.BgSeq(m.palette.Bg)
	rangeSeq := highlight.BgSeq(m.palette.RangeBg)

	var b strings.Builder
	for vi := 0; vi < m.height; vi++ {
		if vi > 0 {
			b.WriteByte('\n')
		}
		row := m.top + vi
		if row >= len(m.lines) {
			b.WriteString(bg.Render(strings.Repeat(" ", m.width)))
			continue
		}

		rowBg, rowHex := bg, m.palette.Bg
		line := m.hl[row]
		if m.decorated[row] {
			rowBg, rowHex = rangeBg, m.palette.RangeBg
			line = rangeSeq + strings.ReplaceAll(line, themeSeq, rangeSeq)
		}

		// -- Gutter ----------------------------------------------------------
		if gw > 0 {
			fg := m.palette.Dim
			if row == m.row {
				fg = m.palette.Fg
			}
			num := fmt.Sprintf("%*d ", gw-1, row+1)
			b.WriteString(rowBg.Foreground(lipgloss.Color(fg)).Render(num))
		}
		if tw <= 0 {
			continue
		}

		// -- Text ------------------------------------------------------------
		var rendered string
		if row == m.row {
			rendered = m.renderCursorLine(line, rowHex, tw)
		} else {
			rendered = ansi.Cut(line, m.left, m.left+tw)
		}
		rw := lipgloss.Width(rendered)
		if rw > tw {
			rendered = ansi.Truncate(rendered, tw, "")
			rw = lipgloss.Width(rendered)
		}
		b.WriteString(rendered)
		if rw < tw {
			b.WriteString(rowBg.Render(strings.Repeat(" ", tw-rw)))
		}
	}
	return b.String()
}

// renderCursorLine renders the visible part of line with the cursor cell
// drawn on top. Uses ansi.Cut on the highlighted line so syntax coloring
// around the cursor is never broken.
func (m *Model) renderCursorLine(line, rowHex string, tw int) string {
	cell := m.cellOf(m.row, m.col)
	if cell < m.left || cell >= m.left+tw {
		return ansi.Cut(line, m.left, m.left+tw)
	}

	char := " "
	if m.col < len(m.lines[m.row]) {
		char = string(m.lines[m.row][m.col])
		if char == "\t" {
			char = " "
		}
	}
	cw := ansi.StringWidth(char)
	if cw < 1 {
		cw = 1
	}

	cursor := lipgloss.NewStyle().
		Background(lipgloss.Color(m.palette.CursorBg)).
		Foreground(lipgloss.Color(m.palette.Fg)).
		Render(char)

	before := ansi.Cut(line, m.left, cell)
	after := ansi.Cut(line, cell+cw, m.left+tw)
	// The cursor style ends in a reset; restore the row background.
	return before + cursor + highlight.BgSeq(rowHex) + after
}
