// Package store provides the persistence layer for apisim.
//
// Projects, collections, mock APIs and request logs are reached through the
// interfaces in this package. Two backends implement them:
//   - sqlite (default): an embedded database file in the data directory
//   - memory: mutex-guarded maps with no persistence
//
// The data directory follows the XDG Base Directory Specification:
// ~/.local/share/apisim on Linux.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a uniqueness rule:
	// a second API with the same method and endpoint in a collection, or a
	// second project with the same slug.
	ErrConflict = errors.New("conflict")
)

// Backend represents a storage backend type.
type Backend string

const (
	// BackendSQLite uses an embedded SQLite database
	BackendSQLite Backend = "sqlite"
	// BackendMemory uses in-memory storage (no persistence)
	BackendMemory Backend = "memory"
)

// ParseBackend validates a backend name. Empty means sqlite.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendSQLite:
		return BackendSQLite, nil
	case BackendMemory:
		return BackendMemory, nil
	}
	return "", fmt.Errorf("unknown store backend %q (want sqlite or memory)", s)
}

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "apisim.db"

// Config holds store configuration.
type Config struct {
	Backend Backend `json:"backend" yaml:"backend"`

	// DataDir is the base directory for data storage.
	// Defaults to XDG_DATA_HOME/apisim or ~/.local/share/apisim
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		DataDir: DefaultDataDir(),
	}
}

// DatabasePath returns the SQLite file path for c.
func (c Config) DatabasePath() string {
	dir := c.DataDir
	if dir == "" {
		dir = DefaultDataDir()
	}
	return filepath.Join(dir, DatabaseFile)
}

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "apisim")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".apisim", "data")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "apisim")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "apisim")
		}
		return filepath.Join(home, "AppData", "Local", "apisim")
	}
	return filepath.Join(home, ".local", "share", "apisim")
}

// EnsureDir creates dir (and parents) with owner-only permissions.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}
