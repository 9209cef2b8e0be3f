package core

import (
	"errors"
	"fmt"

	"github.com/peternagy/dbquerytool/internal/types"
)

// =============================================================================
// Custom Error Types
// =============================================================================

// ConfigIOError indicates the session file or a config file could not be
// read, parsed or written.
type ConfigIOError struct {
	Op   string // "read", "parse" or "write"
	Path string
	Err  error
}

func (e *ConfigIOError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigIOError) Unwrap() error { return e.Err }

// ValidationError indicates a malformed request detected before any driver call.
type ValidationError struct {
	Kind   types.StoreKind
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Kind != "" {
		msg = fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConnectionError indicates the driver could not connect or authenticate.
type ConnectionError struct {
	Kind    types.StoreKind
	Profile string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s profile %q: %v", e.Kind, e.Profile, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DriverExecutionError indicates a driver call failed on an established connection.
type DriverExecutionError struct {
	Kind   types.StoreKind
	Target string
	Op     string
	Err    error
}

func (e *DriverExecutionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s on %s failed: %v", e.Kind, e.Op, e.Target, e.Err)
}

func (e *DriverExecutionError) Unwrap() error { return e.Err }

// ProfileNotFoundError indicates a saved connection profile was not found.
type ProfileNotFoundError struct {
	Kind types.StoreKind
	Name string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("%s profile not found: %s", e.Kind, e.Name)
}

// FavoriteNotFoundError indicates a favorite was not found.
type FavoriteNotFoundError struct {
	Kind types.StoreKind
	Name string
}

func (e *FavoriteNotFoundError) Error() string {
	return fmt.Sprintf("%s favorite not found: %s", e.Kind, e.Name)
}

// SessionNotFoundError indicates a session ID does not refer to an open session.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrStoreClosed is returned when mutating a closed session store.
var ErrStoreClosed = errors.New("session store is closed")

// InvalidKind returns the validation error for an unsupported store kind.
func InvalidKind(kind types.StoreKind) error {
	return &ValidationError{Field: "store kind", Reason: fmt.Sprintf("%q is not mongo or redis", kind)}
}
