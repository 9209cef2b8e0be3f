// Package storage persists the session document and the registries built on it.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/types"
)

// SessionFileName is the file name of the session document.
const SessionFileName = "db_config.json"

// Store owns the session document. Every mutation is saved before it returns.
type Store struct {
	path    string
	cfg     *types.SessionConfig
	loadErr error
	closed  bool
	mu      sync.RWMutex
}

// DefaultPath returns the session file location under the user config directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, "dbquerytool", SessionFileName)
}

// Open loads the session document at path. A missing or corrupt file yields
// the default session; the corruption is kept as LoadError. Open only fails
// when the parent directory cannot be created.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, &core.ConfigIOError{Op: "write", Path: path, Err: err}
	}
	s := &Store{path: path}
	s.cfg, s.loadErr = Load(path)
	if s.loadErr != nil {
		debug.Warn(debug.CategoryStorage, "session file unusable, starting from defaults", map[string]interface{}{
			"path":  path,
			"error": s.loadErr.Error(),
		})
	}
	return s, nil
}

// Load reads the session document at path. It always returns a usable
// config; the error is a *core.ConfigIOError describing why defaults were used.
func Load(path string) (*types.SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.DefaultSessionConfig(), nil
		}
		return types.DefaultSessionConfig(), &core.ConfigIOError{Op: "read", Path: path, Err: err}
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		return types.DefaultSessionConfig(), &core.ConfigIOError{Op: "parse", Path: path, Err: err}
	}
	return cfg, nil
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// LoadError returns the recovered load failure, if any.
func (s *Store) LoadError() error {
	return s.loadErr
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() *types.SessionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// View runs fn with read access to the session. fn must not retain cfg.
func (s *Store) View(fn func(cfg *types.SessionConfig)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.cfg)
}

// Update applies fn and saves. When fn fails or the save fails the
// in-memory session is rolled back, so callers never observe unsaved state.
func (s *Store) Update(fn func(cfg *types.SessionConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.ErrStoreClosed
	}

	before := s.cfg.Clone()
	if err := fn(s.cfg); err != nil {
		s.cfg = before
		return err
	}
	s.cfg.Normalize()
	if err := s.persist(); err != nil {
		s.cfg = before
		return err
	}
	return nil
}

// Flush writes the current session to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrStoreClosed
	}
	return s.persist()
}

// Close flushes and rejects further mutations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	err := s.persist()
	s.closed = true
	return err
}

// persist writes the session atomically: temp file, fsync, rename.
// Caller must hold s.mu.
func (s *Store) persist() error {
	data, err := encodeConfig(s.cfg)
	if err != nil {
		return &core.ConfigIOError{Op: "write", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, 0600); err != nil {
		return &core.ConfigIOError{Op: "write", Path: s.path, Err: err}
	}
	debug.LogStorage("session saved", map[string]interface{}{"path": s.path, "bytes": len(data)})
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func validKind(kind types.StoreKind) error {
	if !kind.Valid() {
		return core.InvalidKind(kind)
	}
	return nil
}
