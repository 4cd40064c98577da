// Package picker is the Go To Method quick pick: a filter input over a list
// of symbol entries that reports which entry is active as the user moves.
package picker

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/gotomethod/internal/symbols"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the picker was dismissed without a choice.
type ActionClose struct{}

// ActionSelect signals an entry was chosen.
type ActionSelect struct{ Entry symbols.Entry }

// ActionHighlight signals the active entry changed.
type ActionHighlight struct{ Entry symbols.Entry }

// Colors holds the theme colors for the picker.
type Colors struct {
	Fg      string
	Bg      string
	Dim     string
	Muted   string
	SelFg   string
	SelBg   string
	Border  string
	Spinner string
}

const (
	maxListRows = 12
	maxWidth    = 72
	minWidth    = 30

	// chrome is border top/bottom + input + divider.
	chrome = 4
	// listTop is the first list row relative to the box.
	listTop = 3

	keyDown = "down"
)

// Model is the picker state. The zero value is not usable; call New.
type Model struct {
	input  []rune
	cursor int

	all      []symbols.Entry
	items    []int // indexes into all matching the filter
	selected int   // index into items
	offset   int   // first visible item

	loading bool
	spinner spinner.Model

	width    int // box width
	listRows int

	colors Colors

	// Placeholder is shown dimmed while the filter is empty.
	Placeholder string
}

// New creates a picker in the loading state.
func New(colors Colors) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Model{
		loading:     true,
		spinner:     s,
		colors:      colors,
		Placeholder: "Go to method",
		width:       minWidth,
		listRows:    1,
	}
}

// Init starts the loading spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Loading reports whether entries are still being collected.
func (m *Model) Loading() bool { return m.loading }

// SetSize fits the picker to an app of the given size.
func (m *Model) SetSize(appWidth, appHeight int) {
	w := appWidth - 4
	if w > maxWidth {
		w = maxWidth
	}
	if w < minWidth {
		w = minWidth
	}
	m.width = w

	rows := appHeight/2 - chrome
	if rows > maxListRows {
		rows = maxListRows
	}
	if rows < 1 {
		rows = 1
	}
	m.listRows = rows
	m.clampOffset()
}

// Width returns the rendered box width.
func (m *Model) Width() int { return m.width }

// Height returns the rendered box height.
func (m *Model) Height() int { return m.listRows + chrome }

// SetEntries ends the loading state. The first matching entry becomes
// active and is reported.
func (m *Model) SetEntries(entries []symbols.Entry) Action {
	m.loading = false
	m.all = entries
	return m.refilter(-1)
}

// Active returns the active entry, if any entry matches the filter.
func (m *Model) Active() (symbols.Entry, bool) {
	idx := m.activeIndex()
	if idx < 0 {
		return symbols.Entry{}, false
	}
	return m.all[idx], true
}

// Query returns the current filter text.
func (m *Model) Query() string { return string(m.input) }

// HandleMsg processes a tea.Msg and returns an optional Action. The second
// return is a tea.Cmd the parent must dispatch. Mouse coordinates must be
// relative to the box's top-left corner.
func (m *Model) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg), nil
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case spinner.TickMsg:
		if !m.loading {
			return nil, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return nil, cmd
	}
	return nil, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) Action {
	key := msg.Keystroke()
	switch key {
	case "esc":
		return ActionClose{}
	case "enter":
		return m.handleEnter()
	case "up", keyDown, "ctrl+p", "ctrl+n", "pgup", "pgdown":
		return m.handleNav(key)
	case "backspace", "delete", "ctrl+u", "ctrl+k", "ctrl+w":
		return m.handleDelete(key)
	case "left", "right", "home", "end", "ctrl+a", "ctrl+e":
		m.handleCursor(key)
		return nil
	}

	// Rune input.
	if msg.Text != "" {
		prev := m.activeIndex()
		for _, r := range msg.Text {
			if !unicode.IsPrint(r) {
				continue
			}
			m.input = append(m.input[:m.cursor], append([]rune{r}, m.input[m.cursor:]...)...)
			m.cursor++
		}
		return m.refilter(prev)
	}
	return nil
}

func (m *Model) handleEnter() Action {
	e, ok := m.Active()
	if !ok {
		return nil
	}
	return ActionSelect{Entry: e}
}

func (m *Model) handleNav(key string) Action {
	prev := m.activeIndex()
	switch key {
	case "up", "ctrl+p":
		m.move(-1)
	case keyDown, "ctrl+n":
		m.move(1)
	case "pgup":
		m.move(-m.listRows)
	case "pgdown":
		m.move(m.listRows)
	}
	return m.changed(prev)
}

func (m *Model) handleDelete(key string) Action {
	prev := m.activeIndex()
	switch key {
	case "backspace":
		if m.cursor == 0 {
			return nil
		}
		m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
		m.cursor--
	case "delete":
		if m.cursor >= len(m.input) {
			return nil
		}
		m.input = append(m.input[:m.cursor], m.input[m.cursor+1:]...)
	case "ctrl+u":
		m.input = m.input[m.cursor:]
		m.cursor = 0
	case "ctrl+k":
		m.input = m.input[:m.cursor]
	case "ctrl+w":
		start := m.cursor
		for start > 0 && m.input[start-1] == ' ' {
			start--
		}
		for start > 0 && m.input[start-1] != ' ' {
			start--
		}
		m.input = append(m.input[:start], m.input[m.cursor:]...)
		m.cursor = start
	}
	return m.refilter(prev)
}

func (m *Model) handleCursor(key string) {
	switch key {
	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right":
		if m.cursor < len(m.input) {
			m.cursor++
		}
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = len(m.input)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) Action {
	mouse := msg.Mouse()
	switch msg.(type) {
	case tea.MouseWheelMsg:
		prev := m.activeIndex()
		switch mouse.Button {
		case tea.MouseWheelUp:
			m.move(-1)
		case tea.MouseWheelDown:
			m.move(1)
		}
		return m.changed(prev)
	case tea.MouseMotionMsg:
		idx, ok := m.itemAt(mouse.X, mouse.Y)
		if !ok {
			return nil
		}
		prev := m.activeIndex()
		m.selected = idx
		return m.changed(prev)
	case tea.MouseClickMsg:
		if mouse.Button != tea.MouseLeft {
			return nil
		}
		idx, ok := m.itemAt(mouse.X, mouse.Y)
		if !ok {
			return nil
		}
		m.selected = idx
		return ActionSelect{Entry: m.all[m.items[idx]]}
	}
	return nil
}

// itemAt maps box-relative x,y onto a visible list row.
func (m *Model) itemAt(x, y int) (int, bool) {
	if x <= 0 || x >= m.width-1 {
		return 0, false
	}
	row := y - listTop
	if row < 0 || row >= m.listRows {
		return 0, false
	}
	idx := m.offset + row
	if idx >= len(m.items) {
		return 0, false
	}
	return idx, true
}

func (m *Model) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	m.clampOffset()
}

func (m *Model) clampOffset() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.listRows {
		m.offset = m.selected - m.listRows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) activeIndex() int {
	if m.selected < 0 || m.selected >= len(m.items) {
		return -1
	}
	return m.items[m.selected]
}

// changed reports the active entry when it differs from prev.
func (m *Model) changed(prev int) Action {
	idx := m.activeIndex()
	if idx < 0 || idx == prev {
		return nil
	}
	return ActionHighlight{Entry: m.all[idx]}
}

// refilter recomputes the matches for the current query and activates the
// first one.
func (m *Model) refilter(prev int) Action {
	query := strings.ToLower(string(m.input))
	m.items = m.items[:0]
	for i, e := range m.all {
		if matches(e, query) {
			m.items = append(m.items, i)
		}
	}
	m.selected = 0
	m.offset = 0
	return m.changed(prev)
}

// matches does a case-insensitive subsequence match on label or context.
func matches(e symbols.Entry, query string) bool {
	if query == "" {
		return true
	}
	return subsequence(strings.ToLower(e.Label()), query) ||
		subsequence(strings.ToLower(e.Context()), query)
}

func subsequence(s, query string) bool {
	q := []rune(query)
	i := 0
	for _, r := range s {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}
