package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/gotomethod/internal/highlight"
	"github.com/xonecas/gotomethod/internal/tui/picker"
)

type styles struct {
	BgFill     lipgloss.Style
	StatusText lipgloss.Style
	StatusDim  lipgloss.Style
	Accent     lipgloss.Style
}

func newStyles(p highlight.Palette) styles {
	bg := lipgloss.Color(p.Bg)
	base := lipgloss.NewStyle().Background(bg)
	return styles{
		BgFill:     base,
		StatusText: base.Foreground(lipgloss.Color(p.Muted)),
		StatusDim:  base.Foreground(lipgloss.Color(p.Dim)),
		Accent:     base.Foreground(lipgloss.Color(p.Accent)),
	}
}

func pickerColors(p highlight.Palette) picker.Colors {
	return picker.Colors{
		Fg:      p.Fg,
		Bg:      p.Bg,
		Dim:     p.Dim,
		Muted:   p.Muted,
		SelFg:   p.Accent,
		SelBg:   p.Border,
		Border:  p.Dim,
		Spinner: p.Accent,
	}
}
