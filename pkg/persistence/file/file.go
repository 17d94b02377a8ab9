// Package file provides file-based persistence implementation for application settings.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dukex/textflow/pkg/persistence"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Persistence implements the persistence.SettingsStore interface using the file system.
// Each key is stored as its own JSON file under <root>/settings.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Get reads the value stored under key.
func (fp *Persistence) Get(_ context.Context, key string) ([]byte, error) {
	path, err := fp.path(key)
	if err != nil {
		return nil, persistence.NewStoreError("Get", key, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewStoreError("Get", key, persistence.ErrKeyNotFound)
		}

		return nil, persistence.NewStoreError("Get", key, err)
	}

	return data, nil
}

// Set atomically replaces the value stored under key.
func (fp *Persistence) Set(_ context.Context, key string, value []byte) error {
	path, err := fp.path(key)
	if err != nil {
		return persistence.NewStoreError("Set", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return persistence.NewStoreError("Set", key, fmt.Errorf("failed to create settings directory: %w", err))
	}

	if err := WriteFileAtomic(path, value, 0o644); err != nil {
		return persistence.NewStoreError("Set", key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (fp *Persistence) Delete(_ context.Context, key string) error {
	path, err := fp.path(key)
	if err != nil {
		return persistence.NewStoreError("Delete", key, err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return persistence.NewStoreError("Delete", key, err)
	}

	return nil
}

func (fp *Persistence) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", persistence.ErrInvalidKey
	}

	return filepath.Join(fp.root, "settings", key+".json"), nil
}
