package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
	"codearch/internal/session"
	"codearch/internal/store"
)

type stubAnalyzer struct {
	fail  map[string]string
	calls []analysis.Target
}

func (a *stubAnalyzer) Analyze(_ context.Context, target analysis.Target) (*analysis.Result, error) {
	a.calls = append(a.calls, target)
	if msg, ok := a.fail[target.Path]; ok {
		return nil, &analysis.FailedError{Message: msg, StatusCode: 500}
	}
	return &analysis.Result{
		Artifacts: map[exhibit.Key][]analysis.Item{
			exhibit.DeadCode: {{"type": "function", "name": "old_helper", "file": "/util.py", "line": float64(42)}},
		},
		Stories: map[string]string{
			"excavation_summary": "Summary of " + target.Path,
			"dead_code_story":    "Here lie the forgotten.",
		},
		Metadata: &analysis.Metadata{RepoPath: target.Path, TotalArtifacts: 1},
	}, nil
}

type memCache struct {
	list []store.RepositoryDescriptor
}

func (c *memCache) GetAll() []store.RepositoryDescriptor {
	return append([]store.RepositoryDescriptor(nil), c.list...)
}

func (c *memCache) Upsert(d store.RepositoryDescriptor) []store.RepositoryDescriptor {
	for _, e := range c.list {
		if e.SameKey(d) {
			return c.GetAll()
		}
	}
	c.list = append([]store.RepositoryDescriptor{d}, c.list...)
	return c.GetAll()
}

func (c *memCache) Remove(d store.RepositoryDescriptor) []store.RepositoryDescriptor {
	var next []store.RepositoryDescriptor
	for _, e := range c.list {
		if !e.SameKey(d) {
			next = append(next, e)
		}
	}
	c.list = next
	return c.GetAll()
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *stubAnalyzer, *memCache) {
	t.Helper()
	an := &stubAnalyzer{fail: map[string]string{}}
	cache := &memCache{}
	sess := session.New(an, cache, session.WithClock(func() time.Time { return fixedNow }))
	return NewModel(sess, WithClock(func() time.Time { return fixedNow })), an, cache
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// resolve runs the command returned by a submit and feeds its message back.
func resolve(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	if _, ok := msg.(excavatedMsg); !ok {
		t.Fatalf("command produced %T, want excavatedMsg", msg)
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestSubmitEntersMuseum(t *testing.T) {
	m, an, cache := newTestModel(t)

	m, _ = press(t, m, runes("https://github.com/acme/site"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.state.Loading {
		t.Fatalf("state.Loading = false after submit")
	}
	if !strings.Contains(m.View(), "Excavating") {
		t.Fatalf("input view does not show loading:\n%s", m.View())
	}

	m = resolve(t, m, cmd)
	if m.mode() != modeMuseum {
		t.Fatalf("mode = %v, want museum", m.mode())
	}
	if m.state.ActiveExhibit != exhibit.Summary || m.state.Direction != exhibit.Forward {
		t.Fatalf("state = %s/%s, want summary/forward", m.state.ActiveExhibit, m.state.Direction)
	}
	if len(an.calls) != 1 || an.calls[0].IsLocal {
		t.Fatalf("calls = %+v", an.calls)
	}
	if len(cache.list) != 1 || cache.list[0].Name != "site" {
		t.Fatalf("cache = %+v", cache.list)
	}
	if v := m.View(); !strings.Contains(v, "The Museum of site") || !strings.Contains(v, "Summary of https://github.com/acme/site") {
		t.Fatalf("museum view:\n%s", v)
	}
}

func TestTabTogglesLocal(t *testing.T) {
	m, an, cache := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("/home/me/proj"))
	if !m.state.IsLocal || m.input.Placeholder != "/path/to/your/repo" {
		t.Fatalf("tab did not switch to local: %+v", m.state)
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = resolve(t, m, cmd)
	if !an.calls[0].IsLocal || !cache.list[0].IsLocal {
		t.Fatalf("local flag not carried: calls=%+v cache=%+v", an.calls, cache.list)
	}
}

func TestSubmitIgnoredWhileLoading(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, runes("/r1"))
	m, first := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if first == nil {
		t.Fatalf("first submit produced no command")
	}
	if _, second := press(t, m, tea.KeyMsg{Type: tea.KeyEnter}); second != nil {
		t.Fatalf("second submit while loading produced a command")
	}
}

func TestEditWhileRunPendingDoesNotResubmit(t *testing.T) {
	m, an, _ := newTestModel(t)
	m, _ = press(t, m, runes("/r1"))
	m, first := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The run has not reached the session yet, so this snapshot is not loading.
	m, _ = press(t, m, runes("x"))
	if m.state.Loading {
		t.Fatalf("session snapshot unexpectedly loading before the run starts")
	}
	if _, second := press(t, m, tea.KeyMsg{Type: tea.KeyEnter}); second != nil {
		t.Fatalf("enter while a run is pending produced a command")
	}

	m = resolve(t, m, first)
	if m.pending || len(an.calls) != 1 {
		t.Fatalf("pending = %v, calls = %d", m.pending, len(an.calls))
	}
}

func TestFailureShowsError(t *testing.T) {
	m, an, cache := newTestModel(t)
	an.fail["/r1"] = "boom"
	m, _ = press(t, m, runes("/r1"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = resolve(t, m, cmd)

	if m.mode() != modeInput || m.state.Error != "boom" || m.state.Loading {
		t.Fatalf("state after failure = %+v", m.state)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("error not rendered:\n%s", m.View())
	}
	if len(cache.list) != 0 {
		t.Fatalf("failed run cached: %+v", cache.list)
	}
}

func TestBlankSubmitShowsValidation(t *testing.T) {
	m, an, _ := newTestModel(t)
	m, cmd := press(t, m, runes("   "), tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.Loading {
		t.Fatalf("blank submit marked loading")
	}
	m = resolve(t, m, cmd)
	if m.state.Error != "Please enter a repository path or URL" || len(an.calls) != 0 {
		t.Fatalf("state = %+v, calls = %d", m.state, len(an.calls))
	}
}

func museum(t *testing.T) Model {
	t.Helper()
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, runes("/r1"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	return resolve(t, m, cmd)
}

func TestMuseumNavigation(t *testing.T) {
	m := museum(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.state.ActiveExhibit != exhibit.DeadCode || m.state.Direction != exhibit.Forward {
		t.Fatalf("after right: %s/%s", m.state.ActiveExhibit, m.state.Direction)
	}
	if !strings.Contains(m.View(), "old_helper") {
		t.Fatalf("dead code not rendered:\n%s", m.View())
	}

	m, _ = press(t, m, runes("8"))
	if m.state.ActiveExhibit != exhibit.Timeline || m.state.Direction != exhibit.Forward {
		t.Fatalf("after 8: %s/%s", m.state.ActiveExhibit, m.state.Direction)
	}
	m, _ = press(t, m, runes("l"))
	if m.state.ActiveExhibit != exhibit.Timeline || m.state.Direction != exhibit.Backward {
		t.Fatalf("next past end: %s/%s", m.state.ActiveExhibit, m.state.Direction)
	}

	m, _ = press(t, m, runes("3"))
	if m.state.ActiveExhibit != exhibit.CommentedCode || m.state.Direction != exhibit.Backward {
		t.Fatalf("after 3: %s/%s", m.state.ActiveExhibit, m.state.Direction)
	}
	if !strings.Contains(m.View(), "◀") {
		t.Fatalf("backward indicator missing")
	}
	m, _ = press(t, m, runes("h"))
	if m.state.ActiveExhibit != exhibit.DeadCode {
		t.Fatalf("after h: %s", m.state.ActiveExhibit)
	}
}

func TestCopyStory(t *testing.T) {
	m := museum(t)
	var copied string
	m.copyText = func(s string) error { copied = s; return nil }

	m, _ = press(t, m, runes("c"))
	if copied != "Summary of /r1" || m.status != "Story copied to clipboard!" {
		t.Fatalf("copied = %q, status = %q", copied, m.status)
	}

	m.copyText = func(string) error { return errors.New("no display") }
	m, _ = press(t, m, runes("c"))
	if !strings.Contains(m.status, "no display") {
		t.Fatalf("status = %q", m.status)
	}

	m, _ = press(t, m, runes("8"), runes("c"))
	if m.status != "No story to copy for this exhibit" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestNewExcavationResets(t *testing.T) {
	m := museum(t)
	m, _ = press(t, m, runes("n"))
	if m.mode() != modeInput || m.state.HasResult() || m.input.Value() != "" {
		t.Fatalf("state after reset = %+v", m.state)
	}
}

func TestPickerLoadAndRemove(t *testing.T) {
	m, an, cache := newTestModel(t)
	cache.list = []store.RepositoryDescriptor{
		store.NewDescriptor("/home/me/b", true, fixedNow.Add(-2*time.Hour)),
		store.NewDescriptor("https://github.com/acme/a", false, fixedNow.Add(-72*time.Hour)),
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.mode() != modePicker {
		t.Fatalf("mode = %v, want picker", m.mode())
	}
	v := m.View()
	if !strings.Contains(v, "analyzed 2 hours ago") || !strings.Contains(v, "analyzed 3 days ago") {
		t.Fatalf("picker view:\n%s", v)
	}

	m, _ = press(t, m, runes("d"))
	if len(cache.list) != 1 || len(m.saved) != 1 || m.saved[0].Name != "a" {
		t.Fatalf("remove: cache=%+v saved=%+v", cache.list, m.saved)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.PickerOpen || !m.state.Loading {
		t.Fatalf("state after picking = %+v", m.state)
	}
	m = resolve(t, m, cmd)
	if m.mode() != modeMuseum || an.calls[0].Path != "https://github.com/acme/a" || an.calls[0].IsLocal {
		t.Fatalf("mode=%v calls=%+v", m.mode(), an.calls)
	}
	if len(cache.list) != 1 || !cache.list[0].AnalyzedAt.Equal(fixedNow.Add(-72*time.Hour)) {
		t.Fatalf("loading a saved entry touched the cache: %+v", cache.list)
	}
}

func TestPickerEscCloses(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if !strings.Contains(m.View(), "No saved repositories yet") {
		t.Fatalf("empty picker view:\n%s", m.View())
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode() != modeInput {
		t.Fatalf("mode = %v, want input", m.mode())
	}
}
