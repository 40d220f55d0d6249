// Package memory implements the controller's durable stores: the notepad
// (long-term game memory), the thinking history (rolling reasoning log), and
// the comparison state (previous screenshot and last action). All state lives
// in files; every read hits the backing store so no in-memory copy is ever
// authoritative.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store abstracts whole-content durable storage for a single blob of text.
// Implementations must make Write a full replacement, never an incremental
// patch, so a teardown racing a write can not observe a partially-updated
// store.
type Store interface {
	Read() (string, error)
	Write(content string) error
	Exists() bool
}

// FileStore is the file-backed Store implementation.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the entire file content.
func (s *FileStore) Read() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return string(raw), nil
}

// Write replaces the entire file content, creating parent directories as
// needed.
func (s *FileStore) Write(content string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Exists reports whether the backing file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
