package storage

import (
	"github.com/peternagy/dbquerytool/internal/types"
)

// ConnectionLifecycle orchestrates operations that span the profile registry
// and its associated data (last connection pointer, stored password).
type ConnectionLifecycle struct {
	connStore *ConnectionService
	secrets   SecretStore
}

// NewConnectionLifecycle creates a new lifecycle manager.
func NewConnectionLifecycle(connStore *ConnectionService, secrets SecretStore) *ConnectionLifecycle {
	return &ConnectionLifecycle{connStore: connStore, secrets: secrets}
}

// DeleteProfile deletes a profile, clears the last connection pointer when it
// names that profile and forgets the stored password. Password cleanup errors
// are ignored since they are secondary to the primary deletion.
func (l *ConnectionLifecycle) DeleteProfile(kind types.StoreKind, name string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	err := l.connStore.store.Update(func(cfg *types.SessionConfig) error {
		cfg.Profiles[kind].Delete(name)
		if last := cfg.LastConnection[kind]; last != nil && *last == name {
			cfg.LastConnection[kind] = nil
		}
		return nil
	})
	if err != nil {
		return err
	}
	if l.secrets != nil {
		_ = l.secrets.DeletePassword(SecretAccount(kind, name))
	}
	return nil
}
