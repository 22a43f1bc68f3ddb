package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"codearch/internal/analysis"
	"codearch/internal/store"
)

// Source answers an excavation request with a recorded result.
type Source interface {
	Lookup(ctx context.Context, target analysis.Target) (*analysis.Result, error)
}

// StatusError makes the router answer with Code and an {"error": Message} body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// DirSource reads <name>.json from Dir, where name is the last segment of the
// requested path or URL.
type DirSource struct {
	Dir string
}

func (s DirSource) Lookup(_ context.Context, target analysis.Target) (*analysis.Result, error) {
	name := store.DisplayName(target.Path, target.IsLocal)
	file := filepath.Join(s.Dir, filepath.Base(name)+".json")

	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &StatusError{Code: http.StatusBadRequest, Message: fmt.Sprintf("Repository path does not exist: %s", target.Path)}
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", filepath.Base(file), err)
	}
	return &result, nil
}

// MapSource serves fixtures keyed by the exact requested path. Entries may
// also be errors, which lets tests script failures.
type MapSource struct {
	mu       sync.Mutex
	results  map[string]*analysis.Result
	failures map[string]error
	requests []analysis.Target
}

func NewMapSource() *MapSource {
	return &MapSource{
		results:  make(map[string]*analysis.Result),
		failures: make(map[string]error),
	}
}

func (s *MapSource) Add(path string, result *analysis.Result) *MapSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[path] = result
	delete(s.failures, path)
	return s
}

func (s *MapSource) Fail(path string, code int, message string) *MapSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = &StatusError{Code: code, Message: message}
	delete(s.results, path)
	return s
}

// Requests returns the targets looked up so far.
func (s *MapSource) Requests() []analysis.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]analysis.Target(nil), s.requests...)
}

func (s *MapSource) Lookup(_ context.Context, target analysis.Target) (*analysis.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, target)

	if err, ok := s.failures[target.Path]; ok {
		return nil, err
	}
	if r, ok := s.results[target.Path]; ok {
		return r, nil
	}
	return nil, &StatusError{Code: http.StatusBadRequest, Message: fmt.Sprintf("Repository path does not exist: %s", target.Path)}
}
