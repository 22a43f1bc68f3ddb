package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
	"codearch/internal/store"
)

const blankInputMessage = "Please enter a repository path or URL"

var ErrNoResult = errors.New("no analysis result")

// ValidationError is returned for input rejected before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Analyzer interface {
	Analyze(ctx context.Context, target analysis.Target) (*analysis.Result, error)
}

type Cache interface {
	GetAll() []store.RepositoryDescriptor
	Upsert(store.RepositoryDescriptor) []store.RepositoryDescriptor
	Remove(store.RepositoryDescriptor) []store.RepositoryDescriptor
}

// State is a snapshot of the session. ActiveExhibit and Direction are empty
// while there is no result. Result is shared and must be treated as read-only.
type State struct {
	Input         string
	IsLocal       bool
	Loading       bool
	Result        *analysis.Result
	Error         string
	ActiveExhibit exhibit.Key
	Direction     exhibit.Direction
	PickerOpen    bool
}

func (s State) HasResult() bool {
	return s.Result != nil
}

type Option func(*Session)

func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session owns the state of one user's excavations: the input, the in-flight
// request, the adopted result and its exhibit navigator.
type Session struct {
	analyzer Analyzer
	cache    Cache
	clock    func() time.Time
	logger   *slog.Logger

	mu         sync.Mutex
	input      string
	isLocal    bool
	loading    bool
	result     *analysis.Result
	errMsg     string
	nav        *exhibit.Navigator
	pickerOpen bool
	observer   func(State)
}

func New(analyzer Analyzer, cache Cache, opts ...Option) *Session {
	s := &Session{
		analyzer: analyzer,
		cache:    cache,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetObserver registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, without the session lock held.
func (s *Session) SetObserver(fn func(State)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) SetInput(text string) State {
	return s.mutate(func() { s.input = text })
}

func (s *Session) SetLocal(isLocal bool) State {
	return s.mutate(func() { s.isLocal = isLocal })
}

func (s *Session) OpenPicker() State {
	return s.mutate(func() { s.pickerOpen = true })
}

func (s *Session) ClosePicker() State {
	return s.mutate(func() { s.pickerOpen = false })
}

// RunAnalysis excavates input and, on success, remembers it in the cache.
// Blank input sets the validation message and clears loading; input, result
// and navigation are left as they were.
func (s *Session) RunAnalysis(ctx context.Context, input string, isLocal bool) (State, error) {
	target := analysis.Target{Path: input, IsLocal: isLocal}
	if snap, err := s.rejectBlank(target); err != nil {
		return snap, err
	}

	s.mu.Lock()
	s.input = input
	s.isLocal = isLocal
	s.mu.Unlock()

	return s.excavate(ctx, target, true)
}

// LoadSaved re-runs a cached descriptor. The cache entry is left as it was:
// its AnalyzedAt is not refreshed and it keeps its position.
func (s *Session) LoadSaved(ctx context.Context, d store.RepositoryDescriptor) (State, error) {
	target := analysis.Target{Path: d.Path, IsLocal: d.IsLocal}
	if snap, err := s.rejectBlank(target); err != nil {
		return snap, err
	}

	s.mu.Lock()
	s.input = d.Path
	s.isLocal = d.IsLocal
	s.pickerOpen = false
	s.mu.Unlock()

	return s.excavate(ctx, target, false)
}

// Reset returns to the pre-analysis state. A request still in flight is not
// cancelled and will adopt its outcome when it resolves.
func (s *Session) Reset() State {
	return s.mutate(func() {
		s.result = nil
		s.errMsg = ""
		s.input = ""
		s.nav = nil
	})
}

func (s *Session) SelectExhibit(k exhibit.Key) (State, error) {
	return s.navigate(func(n *exhibit.Navigator) error { return n.Select(k) })
}

func (s *Session) NextExhibit() (State, error) {
	return s.navigate(func(n *exhibit.Navigator) error { n.Next(); return nil })
}

func (s *Session) PrevExhibit() (State, error) {
	return s.navigate(func(n *exhibit.Navigator) error { n.Prev(); return nil })
}

func (s *Session) SavedRepositories() []store.RepositoryDescriptor {
	return s.cache.GetAll()
}

func (s *Session) RemoveSaved(d store.RepositoryDescriptor) []store.RepositoryDescriptor {
	list := s.cache.Remove(d)
	s.logger.Info("saved_repository_removed", "path", d.Path, "local", d.IsLocal, "remaining", len(list))
	return list
}

func (s *Session) rejectBlank(target analysis.Target) (State, error) {
	if strings.TrimSpace(target.Path) != "" {
		return State{}, nil
	}
	verr := &ValidationError{Message: blankInputMessage}
	snap := s.mutate(func() {
		s.errMsg = verr.Message
		s.loading = false
	})
	return snap, verr
}

func (s *Session) excavate(ctx context.Context, target analysis.Target, remember bool) (State, error) {
	s.mutate(func() {
		s.loading = true
		s.errMsg = ""
		s.result = nil
		s.nav = nil
	})

	result, err := s.analyzer.Analyze(ctx, target)
	if err != nil {
		msg := err.Error()
		if strings.TrimSpace(msg) == "" {
			msg = "Analysis failed"
		}
		snap := s.mutate(func() {
			s.loading = false
			s.errMsg = msg
		})
		s.logger.Warn("excavation_failed", "target", target.Path, "local", target.IsLocal, "error", msg)
		return snap, err
	}

	s.mu.Lock()
	s.loading = false
	s.result = result
	s.nav = exhibit.New()
	s.mu.Unlock()

	if remember {
		s.cache.Upsert(store.NewDescriptor(target.Path, target.IsLocal, s.clock()))
	}
	s.logger.Info("excavation_adopted", "target", target.Path, "local", target.IsLocal, "remembered", remember)

	return s.mutate(func() {}), nil
}

func (s *Session) navigate(fn func(*exhibit.Navigator) error) (State, error) {
	s.mu.Lock()
	if s.result == nil || s.nav == nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNoResult
	}
	if err := fn(s.nav); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.mu.Unlock()
	return s.mutate(func() {}), nil
}

// mutate applies fn under the lock and publishes the resulting snapshot.
func (s *Session) mutate(fn func()) State {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
	return snap
}

func (s *Session) snapshotLocked() State {
	st := State{
		Input:      s.input,
		IsLocal:    s.isLocal,
		Loading:    s.loading,
		Result:     s.result,
		Error:      s.errMsg,
		PickerOpen: s.pickerOpen,
	}
	if s.nav != nil {
		st.ActiveExhibit = s.nav.Active()
		st.Direction = s.nav.Direction()
	}
	return st
}
