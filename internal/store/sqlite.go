package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db       *sql.DB
	stateDir string
}

func New(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	dbPath := filepath.Join(stateDir, DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, stateDir: stateDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return filepath.Join(s.stateDir, DatabaseFileName)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, key)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the raw value of a slot. A missing slot reports ok == false.
func (s *Store) Get(namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put replaces the slot value in one statement.
func (s *Store) Put(namespace, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) Delete(namespace, key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE namespace = ? AND key = ?", namespace, key)
	return err
}

// Load reads the saved repository list. An absent slot is an empty list;
// read and decode failures come back as *StorageError.
func (s *Store) Load() ([]RepositoryDescriptor, error) {
	raw, ok, err := s.Get(Namespace, SavedReposKey)
	if err != nil {
		return nil, &StorageError{Op: "read", Key: SavedReposKey, Err: err}
	}
	if !ok {
		return []RepositoryDescriptor{}, nil
	}

	var list []RepositoryDescriptor
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, &StorageError{Op: "decode", Key: SavedReposKey, Err: err}
	}
	if list == nil {
		list = []RepositoryDescriptor{}
	}
	return list, nil
}

// Save overwrites the saved repository list as a whole.
func (s *Store) Save(list []RepositoryDescriptor) error {
	if list == nil {
		list = []RepositoryDescriptor{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return &StorageError{Op: "encode", Key: SavedReposKey, Err: err}
	}
	if err := s.Put(Namespace, SavedReposKey, string(data)); err != nil {
		return &StorageError{Op: "write", Key: SavedReposKey, Err: err}
	}
	return nil
}

// Clear drops the saved-repositories slot; the next Load reads an empty list.
func (s *Store) Clear() error {
	if err := s.Delete(Namespace, SavedReposKey); err != nil {
		return &StorageError{Op: "delete", Key: SavedReposKey, Err: err}
	}
	return nil
}
