package viewer

import tea "charm.land/bubbletea/v2"

// wheelStep is the number of lines one wheel notch scrolls.
const wheelStep = 3

// Update handles navigation keys and mouse input. Mouse coordinates are
// relative to the view's top-left corner.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		m.handleKey(msg.Keystroke())
	case tea.MouseWheelMsg:
		switch msg.Mouse().Button {
		case tea.MouseWheelUp:
			m.Scroll(-wheelStep)
		case tea.MouseWheelDown:
			m.Scroll(wheelStep)
		}
	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		if mouse.Button == tea.MouseLeft {
			m.clickAt(mouse.X, mouse.Y)
		}
	}
	return nil
}

func (m *Model) handleKey(key string) {
	switch key {
	case "up", "k":
		m.row--
	case "down", "j":
		m.row++
	case "left", "h":
		if m.col > 0 {
			m.col--
		} else if m.row > 0 {
			m.row--
			m.col = len(m.lines[m.row])
		}
	case "right", "l":
		if m.col < len(m.lines[m.row]) {
			m.col++
		} else if m.row < len(m.lines)-1 {
			m.row++
			m.col = 0
		}
	case "home", "0":
		m.col = 0
	case "end", "$":
		m.col = len(m.lines[m.row])
	case "pgup", "ctrl+b":
		m.row -= m.height
		m.top -= m.height
		m.clampTop()
	case "pgdown", "ctrl+f", "space":
		m.row += m.height
		m.top += m.height
		m.clampTop()
	case "g", "ctrl+home":
		m.row, m.col = 0, 0
	case "G", "shift+g", "ctrl+end":
		m.row = len(m.lines) - 1
		m.col = 0
	default:
		return
	}
	m.clampCursor()
	m.clampScroll()
}

// Scroll moves the viewport by delta lines without moving the cursor.
func (m *Model) Scroll(delta int) {
	m.top += delta
	m.clampTop()
}

// clickAt places the cursor at screen-relative x,y.
func (m *Model) clickAt(x, y int) {
	if y < 0 || y >= m.height {
		return
	}
	row := m.top + y
	if row >= len(m.lines) {
		row = len(m.lines) - 1
	}
	cell := x - m.gutterWidth()
	if cell < 0 {
		cell = 0
	}
	m.row = row
	m.col = m.colAt(row, m.left+cell)
	m.clampCursor()
}
