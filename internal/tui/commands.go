package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/gotomethod/internal/navigator"
	"github.com/xonecas/gotomethod/internal/symbols"
	"github.com/xonecas/gotomethod/internal/tui/picker"
)

// CommandGoToMethod is the name of the navigation command.
const CommandGoToMethod = "Go To Method"

type binding struct {
	name string
	keys []string
	run  func(*Model) tea.Cmd
}

var bindings = []binding{
	{name: CommandGoToMethod, keys: []string{"ctrl+o", "ctrl+shift+o", "@"}, run: (*Model).goToMethod},
	{name: "Quit", keys: []string{"q", "ctrl+c"}, run: (*Model).quit},
}

func bindingFor(msg tea.KeyPressMsg) (binding, bool) {
	key := msg.Keystroke()
	for _, b := range bindings {
		for _, k := range b.keys {
			if k == key || (msg.Text != "" && k == msg.Text) {
				return b, true
			}
		}
	}
	return binding{}, false
}

// goToMethod starts a navigation session: the picker opens right away in
// its loading state while symbols are collected in the background.
func (m *Model) goToMethod() tea.Cmd {
	if m.session != nil {
		return nil
	}
	s, ok := navigator.Start(m)
	if !ok {
		m.status = "No active document"
		return nil
	}

	m.seq++
	m.session = s
	m.status = ""
	m.picker = picker.New(pickerColors(m.palette))
	m.picker.SetSize(m.width, m.height)
	m.viewer.TopInset = m.picker.Height()

	m.query, m.cancelQuery = context.WithTimeout(m.ctx, m.timeout)
	return tea.Batch(m.picker.Init(), m.collect(m.query, m.seq, s.Document()))
}

// collect queries the symbol source off the UI goroutine. Closing the
// picker cancels ctx.
func (m *Model) collect(ctx context.Context, seq int, path string) tea.Cmd {
	src := m.source
	return func() tea.Msg {
		entries := symbols.Collect(ctx, src, path)
		log.Debug().Int("seq", seq).Int("entries", len(entries)).Msg("tui: symbols collected")
		return symbolsMsg{seq: seq, entries: entries}
	}
}

// quit resolves any open session before exiting so the view is restored.
func (m *Model) quit() tea.Cmd {
	if m.session != nil {
		m.closePicker().Close()
	}
	return tea.Quit
}
