package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/gotomethod/internal/navigator"
	"github.com/xonecas/gotomethod/internal/symbols"
)

type stubSource struct {
	res   symbols.Result
	err   error
	calls int
}

func (s *stubSource) DocumentSymbols(context.Context, string) (symbols.Result, error) {
	s.calls++
	return s.res, s.err
}

// blockingSource answers only when its context ends.
type blockingSource struct {
	started chan struct{}
	err     error
}

func (s *blockingSource) DocumentSymbols(ctx context.Context, _ string) (symbols.Result, error) {
	close(s.started)
	<-ctx.Done()
	s.err = ctx.Err()
	return symbols.Result{}, s.err
}

func lines(start, end int) symbols.Range {
	return symbols.Range{Start: symbols.Position{Line: start}, End: symbols.Position{Line: end}}
}

// serverDoc has main at 50..55 and Server.Start/Stop at 12..15 and 20..25.
func serverDoc() *stubSource {
	return &stubSource{res: symbols.Result{Tree: []symbols.DocumentSymbol{
		{Name: "Server", Kind: symbols.KindStruct, Range: lines(10, 40), Children: []symbols.DocumentSymbol{
			{Name: "Start", Kind: symbols.KindMethod, Range: lines(12, 15)},
			{Name: "Stop", Kind: symbols.KindMethod, Range: lines(20, 25)},
		}},
		{Name: "main", Kind: symbols.KindFunction, Range: lines(50, 55)},
	}}}
}

func document(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("// line %d", i)
	}
	return strings.Join(out, "\n")
}

func newModel(t *testing.T, src symbols.Source) Model {
	t.Helper()
	m := New(Options{Path: "main.go", Text: document(100), Source: src, ProviderName: "test", Theme: "github-dark"})
	return send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

var (
	ctrlO = tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
)

// open runs Go To Method and delivers the collected symbols.
func open(t *testing.T, m Model) Model {
	t.Helper()
	m = send(t, m, ctrlO)
	if m.picker == nil || m.session == nil {
		t.Fatal("Go To Method did not open the picker")
	}
	msg := m.collect(m.query, m.seq, m.session.Document())()
	return send(t, m, msg)
}

func TestGoToMethodOpensLoadingPicker(t *testing.T) {
	m := newModel(t, serverDoc())
	m = send(t, m, ctrlO)

	if m.picker == nil || !m.picker.Loading() {
		t.Fatal("picker should be open and loading")
	}
	if m.session.State() != navigator.AwaitingSymbols {
		t.Errorf("state = %v", m.session.State())
	}
	if m.viewer.TopInset != m.picker.Height() {
		t.Errorf("TopInset = %d, want picker height %d", m.viewer.TopInset, m.picker.Height())
	}
	if !strings.Contains(m.renderContent(), "Loading symbols") {
		t.Error("loading state not rendered")
	}
}

func TestAtSignOpensPicker(t *testing.T) {
	m := newModel(t, serverDoc())
	m = send(t, m, tea.KeyPressMsg{Code: '@', Text: "@"})
	if m.picker == nil {
		t.Fatal("@ should run Go To Method")
	}
}

func TestConfirmMovesCursor(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))

	if m.session.State() != navigator.PreviewActive {
		t.Fatalf("state = %v, want preview of first entry", m.session.State())
	}
	if !m.viewer.Decorated(50) || m.viewer.Decorated(12) {
		t.Error("main should be previewed first")
	}

	m = send(t, m, down)
	if !m.viewer.Decorated(12) || m.viewer.Decorated(50) {
		t.Error("moving down should preview Server.Start only")
	}

	m = send(t, m, enter)
	if m.picker != nil || m.session != nil {
		t.Fatal("picker should close after a choice")
	}
	if got := m.viewer.Cursor(); got != (symbols.Position{Line: 12}) {
		t.Errorf("cursor = %+v, want 12:0", got)
	}
	if m.viewer.Decorated(12) {
		t.Error("decoration left behind")
	}
	if m.viewer.TopInset != 0 {
		t.Error("TopInset should reset when the picker closes")
	}
	if r := m.Result(); !r.Committed || r.Cursor.Line != 12 {
		t.Errorf("result = %+v", r)
	}
}

func TestCancelRestoresViewport(t *testing.T) {
	m := newModel(t, serverDoc())
	for i := 0; i < 10; i++ {
		m = send(t, m, tea.MouseWheelMsg{Button: tea.MouseWheelDown, Y: 5})
	}
	if m.viewer.Top() != 30 {
		t.Fatalf("top = %d, want 30 before opening", m.viewer.Top())
	}

	m = open(t, m)
	if m.viewer.Top() == 30 {
		t.Fatal("preview should have scrolled the view")
	}

	m = send(t, m, esc)
	if m.viewer.Top() != 30 {
		t.Errorf("top = %d, want restored 30", m.viewer.Top())
	}
	if got := m.viewer.Cursor(); got != (symbols.Position{}) {
		t.Errorf("cursor moved to %+v on cancel", got)
	}
	if m.viewer.Decorated(50) {
		t.Error("decoration left behind")
	}
	if m.Result().Committed {
		t.Error("cancel must not commit")
	}
}

func TestBlurCancels(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))
	m = send(t, m, tea.BlurMsg{})
	if m.picker != nil {
		t.Fatal("focus loss should dismiss the picker")
	}
	if m.viewer.Decorated(50) {
		t.Error("decoration left behind")
	}
}

func TestStaleSymbolsDropped(t *testing.T) {
	src := serverDoc()
	m := newModel(t, src)
	m = send(t, m, ctrlO)
	stale := m.collect(m.query, m.seq, m.session.Document())()
	m = send(t, m, esc)

	m = send(t, m, stale)
	if m.picker != nil || m.session != nil {
		t.Fatal("late results must not reopen anything")
	}

	m = send(t, m, ctrlO)
	m = send(t, m, stale)
	if !m.picker.Loading() {
		t.Error("results from an earlier invocation must be ignored")
	}
}

func TestDismissCancelsQuery(t *testing.T) {
	src := &blockingSource{started: make(chan struct{})}
	m := newModel(t, src)
	m = send(t, m, ctrlO)

	collect := m.collect(m.query, m.seq, m.session.Document())
	done := make(chan tea.Msg, 1)
	go func() { done <- collect() }()
	<-src.started

	m = send(t, m, esc)
	select {
	case msg := <-done:
		m = send(t, m, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("symbol query still running after the picker closed")
	}
	if !errors.Is(src.err, context.Canceled) {
		t.Errorf("query ended with %v, want context.Canceled", src.err)
	}
	if m.picker != nil {
		t.Error("the cancelled result must not reopen the picker")
	}
}

func TestSecondInvocationIgnoredWhilePending(t *testing.T) {
	m := newModel(t, serverDoc())
	m = send(t, m, ctrlO)
	seq := m.seq
	m = send(t, m, tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl | tea.ModShift})
	if m.seq != seq {
		t.Error("a second Go To Method must not start while one is open")
	}
}

func TestQueryFailureShowsPlaceholder(t *testing.T) {
	m := open(t, newModel(t, &stubSource{err: errors.New("server crashed")}))

	entries := m.session.Entries()
	if len(entries) != 1 || entries[0].Label() != symbols.NoSymbolsLabel {
		t.Fatalf("entries = %+v", entries)
	}
	if !strings.Contains(m.renderContent(), symbols.NoSymbolsLabel) {
		t.Error("placeholder not rendered")
	}

	m = send(t, m, enter)
	if m.picker != nil {
		t.Fatal("picker should close")
	}
	if m.Result().Committed {
		t.Error("choosing the placeholder must not navigate")
	}
}

func TestQuitWhilePickingRestores(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.viewer.Top() != 0 || m.viewer.Decorated(50) {
		t.Error("quitting mid-pick must restore the view")
	}
}

func TestMouseClickOnPickerRow(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))
	x, y := m.pickerOrigin()
	// Rows: border, input, divider, then entries (main, Start, Stop).
	m = send(t, m, tea.MouseClickMsg{Button: tea.MouseLeft, X: x + 4, Y: y + 3 + 2})
	if got := m.viewer.Cursor(); got != (symbols.Position{Line: 20}) {
		t.Errorf("cursor = %+v, want Stop at 20:0", got)
	}
}

func TestClickOutsidePickerCancels(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))
	m = send(t, m, tea.MouseClickMsg{Button: tea.MouseLeft, X: 1, Y: 20})
	if m.picker != nil {
		t.Fatal("clicking the document should dismiss the picker")
	}
	if m.Result().Committed {
		t.Error("dismissal must not commit")
	}
}

func TestStatusBarShowsPosition(t *testing.T) {
	m := newModel(t, serverDoc())
	m = send(t, m, down)
	if !strings.Contains(m.renderContent(), "2:1/100") {
		t.Error("status bar should show line:col/total")
	}
}

func TestRenderSize(t *testing.T) {
	m := open(t, newModel(t, serverDoc()))
	rows := strings.Split(m.renderContent(), "\n")
	if len(rows) != 24 {
		t.Fatalf("got %d rows, want 24", len(rows))
	}
}

func TestOpenPickerOption(t *testing.T) {
	m := New(Options{Path: "main.go", Text: document(10), Source: serverDoc(), OpenPicker: true, Theme: "github-dark"})
	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a command to open the picker")
	}
	m = send(t, m, cmd())
	if m.picker == nil {
		t.Fatal("picker should open after the first resize")
	}
}
