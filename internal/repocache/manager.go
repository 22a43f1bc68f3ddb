package repocache

import (
	"log/slog"
	"sync"

	"codearch/internal/store"
)

// MaxEntries bounds the saved repository list.
const MaxEntries = 10

type Descriptor = store.RepositoryDescriptor

// Backend is the persisted slot the manager reads and rewrites.
type Backend interface {
	Load() ([]Descriptor, error)
	Save([]Descriptor) error
}

// Manager applies the dedup, ordering and capacity rules on top of a Backend.
// Storage failures never leave the manager: a failed load reads as an empty
// list and a failed save leaves the in-memory list in charge.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger

	current  []Descriptor
	degraded bool
}

func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{backend: backend, logger: logger}
	m.current = m.load()
	return m
}

func (m *Manager) GetAll() []Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.refresh())
}

// Upsert inserts d at the front unless its (Path, IsLocal) key is already
// present, in which case the existing entry keeps its position and AnalyzedAt.
func (m *Manager) Upsert(d Descriptor) []Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.refresh()
	if indexOf(list, d) >= 0 {
		m.logger.Debug("repocache_upsert_existing", "path", d.Path, "local", d.IsLocal)
		return clone(list)
	}

	next := make([]Descriptor, 0, len(list)+1)
	next = append(next, d)
	next = append(next, list...)
	if len(next) > MaxEntries {
		for _, dropped := range next[MaxEntries:] {
			m.logger.Debug("repocache_evict", "path", dropped.Path, "local", dropped.IsLocal)
		}
		next = next[:MaxEntries]
	}
	return clone(m.persist(next))
}

// Remove deletes the entry with d's key. Removing an absent key changes nothing.
func (m *Manager) Remove(d Descriptor) []Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.refresh()
	next := make([]Descriptor, 0, len(list))
	for _, e := range list {
		if !e.SameKey(d) {
			next = append(next, e)
		}
	}
	return clone(m.persist(next))
}

func (m *Manager) persist(next []Descriptor) []Descriptor {
	m.current = next
	if err := m.backend.Save(next); err != nil {
		m.degraded = true
		m.logger.Warn("repocache_save_failed", "entries", len(next), "error", err.Error())
		return m.current
	}
	m.degraded = false
	return m.refresh()
}

// refresh re-reads the backend. Once a save has failed the in-memory list is
// served instead; a failed re-read yields the empty list.
func (m *Manager) refresh() []Descriptor {
	if m.degraded {
		return m.current
	}
	m.current = m.load()
	return m.current
}

func (m *Manager) load() []Descriptor {
	list, err := m.backend.Load()
	if err != nil {
		m.logger.Warn("repocache_load_failed", "error", err.Error())
		return []Descriptor{}
	}
	if list == nil {
		return []Descriptor{}
	}
	return list
}

func indexOf(list []Descriptor, d Descriptor) int {
	for i, e := range list {
		if e.SameKey(d) {
			return i
		}
	}
	return -1
}

func clone(list []Descriptor) []Descriptor {
	out := make([]Descriptor, len(list))
	copy(out, list)
	return out
}
