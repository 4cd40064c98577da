// Package navigator implements the Go To Method interaction: capture the
// viewport, preview highlighted candidates, and either jump to the chosen
// one or put the viewport back where it was.
package navigator

import (
	"github.com/rs/zerolog/log"

	"github.com/xonecas/gotomethod/internal/symbols"
)

// RevealType controls how a range is scrolled into view.
type RevealType int

const (
	// RevealDefault scrolls as little as possible.
	RevealDefault RevealType = iota
	// RevealAtTop places the range start on the first visible row and its
	// character on the first visible column. Used with ranges obtained from
	// VisibleRange.
	RevealAtTop
)

// View is the document view a session manipulates.
type View interface {
	// Document is the path of the document shown in the view.
	Document() string
	// VisibleRange reports the visible lines; Start.Character is the
	// horizontal scroll offset. ok is false when the view has no visible
	// area yet.
	VisibleRange() (r symbols.Range, ok bool)
	Reveal(r symbols.Range, how RevealType)
	// SetSelection collapses the selection to p and moves the cursor there.
	SetSelection(p symbols.Position)
	// ApplyLineHighlight replaces the preview decoration with ranges.
	ApplyLineHighlight(ranges []symbols.Range)
	ClearHighlight()
}

// Host provides the view the command acts on.
type Host interface {
	ActiveView() (View, bool)
}

// State is the position of a session in its lifecycle.
type State int

const (
	Idle State = iota
	AwaitingSymbols
	Picking
	PreviewActive
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSymbols:
		return "awaiting-symbols"
	case Picking:
		return "picking"
	case PreviewActive:
		return "preview"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome describes how a session ended.
type Outcome struct {
	// Committed is true when the cursor moved to Entry.
	Committed bool
	Entry     symbols.Entry
	Target    symbols.Position
}

// Session is a single Go To Method invocation. It owns its viewport
// snapshot and its preview decoration; nothing survives resolution.
type Session struct {
	view     View
	snapshot symbols.Range
	state    State
	entries  []symbols.Entry
	outcome  Outcome
}

// Start begins a session on the host's active view. It reports false, and
// does nothing, when there is no active view.
func Start(host Host) (*Session, bool) {
	if host == nil {
		return nil, false
	}
	v, ok := host.ActiveView()
	if !ok || v == nil {
		log.Debug().Msg("navigator: no active view")
		return nil, false
	}

	s := &Session{view: v, state: AwaitingSymbols}
	if r, ok := v.VisibleRange(); ok {
		s.snapshot = r
	}
	log.Debug().
		Str("file", v.Document()).
		Int("top", s.snapshot.Start.Line).
		Msg("navigator: session started")
	return s, true
}

// Document is the path of the document the session navigates.
func (s *Session) Document() string { return s.view.Document() }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Snapshot is the visible range captured when the session started.
func (s *Session) Snapshot() symbols.Range { return s.snapshot }

// Entries returns the loaded candidates.
func (s *Session) Entries() []symbols.Entry { return s.entries }

// Load supplies the candidates once collection finishes. An empty list is
// replaced by the placeholder entry.
func (s *Session) Load(entries []symbols.Entry) {
	if s.state != AwaitingSymbols {
		return
	}
	if len(entries) == 0 {
		entries = []symbols.Entry{symbols.Placeholder(symbols.NoSymbolsLabel)}
	}
	s.entries = entries
	s.state = Picking
}

// Highlight previews e: its lines are decorated and scrolled into view,
// replacing any earlier preview. Entries without a range are ignored.
func (s *Session) Highlight(e symbols.Entry) {
	if s.state != Picking && s.state != PreviewActive {
		return
	}
	r, ok := e.Range()
	if !ok {
		return
	}
	s.view.ApplyLineHighlight([]symbols.Range{r})
	s.view.Reveal(r, RevealDefault)
	s.state = PreviewActive
}

// Confirm ends the session by jumping to e. A placeholder entry is treated
// like a cancellation.
func (s *Session) Confirm(e symbols.Entry) Outcome {
	return s.resolve(&e)
}

// Cancel ends the session and restores the captured viewport.
func (s *Session) Cancel() Outcome {
	return s.resolve(nil)
}

// Close cancels the session unless it already ended. Safe to call on every
// exit path.
func (s *Session) Close() {
	if s == nil || s.state == Resolved {
		return
	}
	s.Cancel()
}

func (s *Session) resolve(picked *symbols.Entry) Outcome {
	if s.state == Resolved {
		return s.outcome
	}
	s.state = Resolved
	s.view.ClearHighlight()

	if picked != nil {
		if r, ok := picked.Range(); ok {
			s.view.Reveal(r, RevealDefault)
			s.view.SetSelection(r.Start)
			s.outcome = Outcome{Committed: true, Entry: *picked, Target: r.Start}
			log.Info().
				Str("symbol", picked.Label()).
				Int("line", r.Start.Line+1).
				Msg("navigator: jumped")
			return s.outcome
		}
	}

	s.view.Reveal(s.snapshot, RevealAtTop)
	log.Debug().Int("top", s.snapshot.Start.Line).Msg("navigator: viewport restored")
	return s.outcome
}
