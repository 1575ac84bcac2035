package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Store keeps per-user files under a base directory:
//
//	users/<id>.txt        append-only transaction log
//	uploads/<id>/         uploaded statements
//	exports/, backups/    generated downloads
type Store struct {
	basePath string

	// guards appends to user logs
	logMu sync.Mutex
}

// New creates a new file store with the given base path
func New(basePath string) (*Store, error) {
	for _, dir := range []string{"users", "uploads", "exports", "backups"} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, fmt.Errorf("create filestore directory: %w", err)
		}
	}
	return &Store{basePath: basePath}, nil
}

// SaveUpload stores an uploaded statement for a user and returns its path
// relative to the store.
func (s *Store) SaveUpload(userID int64, filename string, r io.Reader) (string, error) {
	dir := filepath.Join("uploads", strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(filepath.Join(s.basePath, dir), 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	// Keep the extension so the importer can pick a format later
	name := filepath.Join(dir, uuid.NewString()+filepath.Ext(filename))
	fullPath := filepath.Join(s.basePath, name)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Get returns a reader for the file at the given path
func (s *Store) Get(name string) (*os.File, error) {
	f, err := os.Open(s.FullPath(name))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the file at the given path
func (s *Store) Delete(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(s.FullPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the full filesystem path for a stored name
func (s *Store) FullPath(name string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+name))
}
