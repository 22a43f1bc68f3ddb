package store

import (
	"fmt"
	"strings"
	"time"
)

const (
	Namespace        = "codearch"
	SavedReposKey    = "saved_repositories"
	DatabaseFileName = "codearch.db"
)

// RepositoryDescriptor identifies one analyzable target. Within the saved
// list the pair (Path, IsLocal) is unique.
type RepositoryDescriptor struct {
	Path       string    `json:"path" yaml:"path"`
	IsLocal    bool      `json:"isLocal" yaml:"isLocal"`
	Name       string    `json:"name" yaml:"name"`
	AnalyzedAt time.Time `json:"analyzedAt" yaml:"analyzedAt"`
}

func NewDescriptor(path string, isLocal bool, analyzedAt time.Time) RepositoryDescriptor {
	return RepositoryDescriptor{
		Path:       path,
		IsLocal:    isLocal,
		Name:       DisplayName(path, isLocal),
		AnalyzedAt: analyzedAt.UTC(),
	}
}

// SameKey reports whether d and other share the (Path, IsLocal) identity.
// Comparison is exact: no trailing-slash, case or scheme normalization.
func (d RepositoryDescriptor) SameKey(other RepositoryDescriptor) bool {
	return d.Path == other.Path && d.IsLocal == other.IsLocal
}

func (d RepositoryDescriptor) Kind() string {
	if d.IsLocal {
		return "local"
	}
	return "remote"
}

// DisplayName returns the last non-empty path segment. Remote targets split
// on '/', local ones on '/' or '\'.
func DisplayName(path string, isLocal bool) string {
	isSep := func(r rune) bool { return r == '/' }
	if isLocal {
		isSep = func(r rune) bool { return r == '/' || r == '\\' }
	}
	parts := strings.FieldsFunc(path, isSep)
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

// StorageError reports a failed read or write of the persisted slot.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
