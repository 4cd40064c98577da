package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// Mouse filter: throttle high-frequency events at program level.
// ---------------------------------------------------------------------------

var lastMouseEvent time.Time

// MouseEventFilter rate-limits wheel and motion events (15 ms).
// Pass to tea.WithFilter. Never drops clicks or releases.
func MouseEventFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseWheelMsg, tea.MouseMotionMsg:
		now := time.Now()
		if now.Sub(lastMouseEvent) < 15*time.Millisecond {
			return nil
		}
		lastMouseEvent = now
	}
	return msg
}

// translateMouse returns msg with coordinates shifted by -dx, -dy.
func translateMouse(msg tea.MouseMsg, dx, dy int) tea.Msg {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		msg.X -= dx
		msg.Y -= dy
		return msg
	case tea.MouseReleaseMsg:
		msg.X -= dx
		msg.Y -= dy
		return msg
	case tea.MouseWheelMsg:
		msg.X -= dx
		msg.Y -= dy
		return msg
	case tea.MouseMotionMsg:
		msg.X -= dx
		msg.Y -= dy
		return msg
	}
	return msg
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	mouse := msg.Mouse()
	x, y := mouse.X, mouse.Y

	// --- Picker first: it sits on top of the document ------------------------
	if m.picker != nil {
		px, py := m.pickerOrigin()
		inside := x >= px && x < px+m.picker.Width() && y >= py && y < py+m.picker.Height()
		if inside {
			action, cmd := m.picker.HandleMsg(translateMouse(msg, px, py))
			return tea.Batch(cmd, m.handlePickerAction(action))
		}
		if _, isClick := msg.(tea.MouseClickMsg); isClick {
			// Clicking the document dismisses the picker.
			return m.handlePickerAction(pickerClosed)
		}
		if _, isWheel := msg.(tea.MouseWheelMsg); !isWheel {
			return nil
		}
	}

	// --- Document: starts at the origin, no translation needed ---------------
	if y < m.viewer.Height() {
		return m.viewer.Update(msg)
	}
	return nil
}
