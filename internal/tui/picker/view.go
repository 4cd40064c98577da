package picker

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// View renders the picker box: input, divider and list.
func (m *Model) View() string {
	innerW := m.width - 4 // border + padding
	if innerW < 1 {
		innerW = 1
	}

	bg := lipgloss.Color(m.colors.Bg)
	base := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(m.colors.Fg))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim)).Background(bg)

	lines := make([]string, 0, m.listRows+2)
	lines = append(lines, m.renderInput(innerW, base, dimStyle))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", innerW)))
	lines = append(lines, m.renderList(innerW, base, dimStyle)...)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.colors.Border)).
		BorderBackground(bg).
		Background(bg).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) renderInput(innerW int, base, dim lipgloss.Style) string {
	prompt := base.Render("> ")
	var text string
	if len(m.input) == 0 {
		cursor := lipgloss.NewStyle().Reverse(true).Render(" ")
		text = cursor + dim.Render(m.Placeholder)
	} else {
		before := string(m.input[:m.cursor])
		cursorChar := " "
		after := ""
		if m.cursor < len(m.input) {
			cursorChar = string(m.input[m.cursor])
			after = string(m.input[m.cursor+1:])
		}
		text = base.Render(before) + lipgloss.NewStyle().Reverse(true).Render(cursorChar) + base.Render(after)
	}
	return fit(prompt+text, innerW, base)
}

func (m *Model) renderList(innerW int, base, dim lipgloss.Style) []string {
	lines := make([]string, 0, m.listRows)

	switch {
	case m.loading:
		spin := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Spinner)).Background(base.GetBackground())
		lines = append(lines, fit(spin.Render(strings.TrimSpace(m.spinner.View()))+dim.Render(" Loading symbols"), innerW, base))
	case len(m.items) == 0:
		lines = append(lines, fit(dim.Render("No matching methods"), innerW, base))
	}

	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.SelFg)).
		Background(lipgloss.Color(m.colors.SelBg))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Muted))

	for i := m.offset; i < len(m.items) && len(lines) < m.listRows; i++ {
		e := m.all[m.items[i]]
		rowStyle := base
		if i == m.selected {
			rowStyle = selStyle
		}
		label := e.Label()
		if !e.Navigable() {
			label = dim.Render(label)
		} else {
			label = rowStyle.Render(label)
		}
		line := label
		if ctx := e.Context(); ctx != "" {
			line += muted.Background(rowStyle.GetBackground()).Render("  " + ctx)
		}
		lines = append(lines, fit(line, innerW, rowStyle))
	}

	for len(lines) < m.listRows {
		lines = append(lines, base.Render(strings.Repeat(" ", innerW)))
	}
	return lines
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int, pad lipgloss.Style) string {
	if lipgloss.Width(s) > w {
		s = ansi.Truncate(s, w, "…")
	}
	if n := w - lipgloss.Width(s); n > 0 {
		s += pad.Render(strings.Repeat(" ", n))
	}
	return s
}
