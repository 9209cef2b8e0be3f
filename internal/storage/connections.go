package storage

import (
	"fmt"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/types"
)

// SecretStore keeps profile passwords outside the session file.
type SecretStore interface {
	SetPassword(account, password string) error
	GetPassword(account string) (string, error)
	DeletePassword(account string) error
}

// SecretAccount returns the secret store account for a profile.
func SecretAccount(kind types.StoreKind, name string) string {
	return string(kind) + ":" + name
}

// ConnectionService handles connection profile storage operations.
type ConnectionService struct {
	store   *Store
	secrets SecretStore
}

// NewConnectionService creates a new connection service. secrets may be nil,
// in which case passwords are kept in the session file.
func NewConnectionService(store *Store, secrets SecretStore) *ConnectionService {
	return &ConnectionService{store: store, secrets: secrets}
}

// AddProfile inserts a profile or replaces the one with the same name in place.
func (s *ConnectionService) AddProfile(kind types.StoreKind, profile types.ConnectionProfile) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if profile.Name == "" {
		return &core.ValidationError{Kind: kind, Field: "profile name", Reason: "name cannot be empty"}
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = types.Now()
	}
	if kind == types.KindMongo {
		profile.DB = 0
	} else {
		profile.Username = ""
		profile.Database = ""
	}

	account := SecretAccount(kind, profile.Name)
	var (
		stored   bool
		existed  bool
		previous string
	)
	if s.secrets != nil && profile.Password != "" {
		s.store.View(func(cfg *types.SessionConfig) {
			_, existed = cfg.Profiles[kind].Get(profile.Name)
		})
		if existed {
			previous, _ = s.secrets.GetPassword(account)
		}
		if err := s.secrets.SetPassword(account, profile.Password); err != nil {
			return fmt.Errorf("failed to store password: %w", err)
		}
		stored = true
		profile.Password = ""
	}

	err := s.store.Update(func(cfg *types.SessionConfig) error {
		cfg.Profiles[kind].Upsert(profile)
		return nil
	})
	if err != nil && stored {
		s.restoreSecret(account, previous)
	}
	return err
}

// restoreSecret puts back the password an unsaved AddProfile replaced, or
// removes the entry when there was none.
func (s *ConnectionService) restoreSecret(account, previous string) {
	var err error
	if previous != "" {
		err = s.secrets.SetPassword(account, previous)
	} else {
		err = s.secrets.DeletePassword(account)
	}
	if err != nil {
		debug.Warn(debug.CategoryStorage, "failed to roll back stored password", map[string]interface{}{
			"account": account,
			"error":   err.Error(),
		})
	}
}

// ListProfiles returns the profiles of kind in order.
func (s *ConnectionService) ListProfiles(kind types.StoreKind) ([]types.ConnectionProfile, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	var out []types.ConnectionProfile
	s.store.View(func(cfg *types.SessionConfig) {
		out = cfg.Profiles[kind].Items()
	})
	return out, nil
}

// GetProfile returns a profile by name.
func (s *ConnectionService) GetProfile(kind types.StoreKind, name string) (types.ConnectionProfile, error) {
	if err := validKind(kind); err != nil {
		return types.ConnectionProfile{}, err
	}
	var (
		p  types.ConnectionProfile
		ok bool
	)
	s.store.View(func(cfg *types.SessionConfig) {
		p, ok = cfg.Profiles[kind].Get(name)
	})
	if !ok {
		return types.ConnectionProfile{}, &core.ProfileNotFoundError{Kind: kind, Name: name}
	}
	return p, nil
}

// ResolveProfile returns a profile with its password filled in from the
// secret store when the session file does not carry one.
func (s *ConnectionService) ResolveProfile(kind types.StoreKind, name string) (types.ConnectionProfile, error) {
	p, err := s.GetProfile(kind, name)
	if err != nil {
		return p, err
	}
	if p.Password == "" && s.secrets != nil {
		if pw, err := s.secrets.GetPassword(SecretAccount(kind, name)); err == nil {
			p.Password = pw
		}
	}
	return p, nil
}

// DeleteProfile removes a profile. Deleting an absent name is a no-op.
func (s *ConnectionService) DeleteProfile(kind types.StoreKind, name string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		cfg.Profiles[kind].Delete(name)
		return nil
	})
}

// SetLastConnection records the most recently used profile. An empty name clears it.
func (s *ConnectionService) SetLastConnection(kind types.StoreKind, name string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		if name == "" {
			cfg.LastConnection[kind] = nil
			return nil
		}
		cfg.LastConnection[kind] = &name
		return nil
	})
}

// GetLastConnection returns the most recently used profile name, if any.
func (s *ConnectionService) GetLastConnection(kind types.StoreKind) (string, bool) {
	var name *string
	s.store.View(func(cfg *types.SessionConfig) {
		name = cfg.LastConnection[kind]
	})
	if name == nil {
		return "", false
	}
	return *name, true
}
