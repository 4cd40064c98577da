package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.ReportFocus = true
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	content := m.viewer.View()
	if m.picker != nil {
		x, y := m.pickerOrigin()
		content = overlay(content, m.picker.View(), x, y)
	}

	var b strings.Builder
	b.WriteString(content)
	if content != "" {
		b.WriteByte('\n')
	}
	m.renderStatusBar(&b)
	return b.String()
}

// renderStatusBar writes the single status row.
func (m Model) renderStatusBar(b *strings.Builder) {
	cur := m.viewer.Cursor()

	left := m.styles.StatusText.Render(" "+filepath.Base(m.viewer.Document())) +
		m.styles.StatusDim.Render(fmt.Sprintf("  %d:%d/%d", cur.Line+1, cur.Character+1, m.viewer.LineCount()))
	if m.status != "" {
		left += m.styles.Accent.Render("  " + m.status)
	}

	hint := "ctrl+o " + CommandGoToMethod
	if m.picker != nil {
		hint = "enter jump  esc cancel"
	}
	right := m.styles.StatusText.Render(m.providerName) + m.styles.StatusDim.Render("  "+hint+" ")

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	if leftW+rightW > m.width {
		right = ""
		rightW = 0
		if leftW > m.width {
			left = ansi.Truncate(left, m.width, "")
			leftW = lipgloss.Width(left)
		}
	}
	b.WriteString(left)
	b.WriteString(m.styles.BgFill.Render(strings.Repeat(" ", m.width-leftW-rightW)))
	b.WriteString(right)
}

// overlay draws top over base with its top-left corner at x,y.
func overlay(base, top string, x, y int) string {
	baseLines := strings.Split(base, "\n")
	for i, tl := range strings.Split(top, "\n") {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		bl := baseLines[row]
		bw := lipgloss.Width(bl)
		tw := lipgloss.Width(tl)

		left := ansi.Truncate(bl, x, "")
		if lw := lipgloss.Width(left); lw < x {
			left += strings.Repeat(" ", x-lw)
		}
		right := ""
		if x+tw < bw {
			right = ansi.Cut(bl, x+tw, bw)
		}
		baseLines[row] = left + ansi.ResetStyle + tl + ansi.ResetStyle + right
	}
	return strings.Join(baseLines, "\n")
}
