// Package tui is the gotomethod application: a document view with the
// Go To Method command bound to keys.
package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/spinner"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/gotomethod/internal/highlight"
	"github.com/xonecas/gotomethod/internal/navigator"
	"github.com/xonecas/gotomethod/internal/symbols"
	"github.com/xonecas/gotomethod/internal/tui/picker"
	"github.com/xonecas/gotomethod/internal/tui/viewer"
)

const statusRows = 1

var pickerClosed picker.Action = picker.ActionClose{}

// Options configures a new Model.
type Options struct {
	Path string
	Text string

	// Source answers symbol queries; ProviderName is shown in the status bar.
	Source       symbols.Source
	ProviderName string
	Timeout      time.Duration

	Theme          string
	HighlightColor string

	// Line is the one-based line to place the cursor on; 0 leaves it at the top.
	Line int
	// OpenPicker runs Go To Method as soon as the window is sized.
	OpenPicker bool

	Context context.Context
}

// Result describes how the program ended.
type Result struct {
	// Committed is true when at least one Go To Method jump was confirmed.
	Committed bool
	Cursor    symbols.Position
}

// Model is the application model.
type Model struct {
	width  int
	height int

	viewer  *viewer.Model
	picker  *picker.Model      // nil when closed
	session *navigator.Session // nil between invocations
	seq     int                // invocation counter; stale symbol results are dropped

	// query bounds the symbol collection of the open invocation.
	query       context.Context
	cancelQuery context.CancelFunc

	source       symbols.Source
	providerName string
	timeout      time.Duration
	ctx          context.Context

	palette    highlight.Palette
	styles     styles
	status     string
	openOnSize bool
	committed  bool
}

// New creates the application model for one document.
func New(opts Options) Model {
	palette := highlight.ThemePalette(opts.Theme).WithRange(opts.HighlightColor)
	v := viewer.New(opts.Path, opts.Text, opts.Theme, palette)
	if opts.Line > 0 {
		v.SetSelection(symbols.Position{Line: opts.Line - 1})
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return Model{
		viewer:       v,
		source:       opts.Source,
		providerName: opts.ProviderName,
		timeout:      timeout,
		ctx:          ctx,
		palette:      palette,
		styles:       newStyles(palette),
		openOnSize:   opts.OpenPicker,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// ActiveView implements navigator.Host.
func (m Model) ActiveView() (navigator.View, bool) {
	if m.viewer == nil {
		return nil, false
	}
	return m.viewer, true
}

// Result reports the outcome after the program exits.
func (m Model) Result() Result {
	return Result{Committed: m.committed, Cursor: m.viewer.Cursor()}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		if m.openOnSize {
			m.openOnSize = false
			return m, func() tea.Msg { return openPickerMsg{} }
		}
		return m, nil

	case openPickerMsg:
		return m, m.goToMethod()

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.BlurMsg:
		// Losing focus dismisses the picker, like any quick pick.
		if m.picker != nil {
			return m, m.handlePickerAction(pickerClosed)
		}
		return m, nil

	case symbolsMsg:
		return m, m.handleSymbols(msg)

	case spinner.TickMsg:
		if m.picker == nil {
			return m, nil
		}
		_, cmd := m.picker.HandleMsg(msg)
		return m, cmd
	}
	return m, nil
}

// handleResize applies a window size change and re-derives layout.
func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.viewer.SetWidth(m.width)
	m.viewer.SetHeight(max(m.height-statusRows, 0))
	if m.picker != nil {
		m.picker.SetSize(m.width, m.height)
		m.viewer.TopInset = m.picker.Height()
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.picker != nil {
		if msg.Keystroke() == "ctrl+c" {
			return m.quit()
		}
		action, cmd := m.picker.HandleMsg(msg)
		return tea.Batch(cmd, m.handlePickerAction(action))
	}
	if b, ok := bindingFor(msg); ok {
		return b.run(m)
	}
	return m.viewer.Update(msg)
}

// handleSymbols hands collected entries to the live invocation.
func (m *Model) handleSymbols(msg symbolsMsg) tea.Cmd {
	if msg.seq != m.seq || m.session == nil || m.picker == nil {
		log.Debug().Int("seq", msg.seq).Int("current", m.seq).Msg("tui: dropping stale symbols")
		return nil
	}
	m.stopQuery()
	m.session.Load(msg.entries)
	return m.handlePickerAction(m.picker.SetEntries(m.session.Entries()))
}

// handlePickerAction maps picker actions onto the navigation session.
func (m *Model) handlePickerAction(action picker.Action) tea.Cmd {
	switch a := action.(type) {
	case picker.ActionHighlight:
		m.session.Highlight(a.Entry)
	case picker.ActionSelect:
		s := m.closePicker()
		out := s.Confirm(a.Entry)
		if out.Committed {
			m.committed = true
			m.status = "→ " + a.Entry.Label()
		}
	case picker.ActionClose:
		s := m.closePicker()
		s.Cancel()
	}
	return nil
}

// closePicker removes the overlay and detaches the session so that it can
// be resolved against an unobstructed view.
func (m *Model) closePicker() *navigator.Session {
	s := m.session
	m.stopQuery()
	m.picker = nil
	m.session = nil
	m.viewer.TopInset = 0
	m.seq++
	return s
}

// stopQuery abandons symbol collection for the open invocation, if any.
func (m *Model) stopQuery() {
	if m.cancelQuery != nil {
		m.cancelQuery()
		m.cancelQuery = nil
	}
}

// pickerOrigin returns the screen position of the picker box.
func (m *Model) pickerOrigin() (int, int) {
	if m.picker == nil {
		return 0, 0
	}
	x := (m.width - m.picker.Width()) / 2
	if x < 0 {
		x = 0
	}
	return x, 0
}
