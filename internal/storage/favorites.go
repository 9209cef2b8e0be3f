package storage

import (
	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/types"
)

// FavoriteService handles user-named saved requests per store kind.
type FavoriteService struct {
	store *Store
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(store *Store) *FavoriteService {
	return &FavoriteService{store: store}
}

// Save inserts a favorite or replaces the one with the same name in place.
func (s *FavoriteService) Save(kind types.StoreKind, fav types.FavoriteEntry) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if fav.Name == "" {
		return &core.ValidationError{Kind: kind, Field: "favorite name", Reason: "name cannot be empty"}
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = types.Now()
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		cfg.Favorites[kind].Upsert(fav)
		return nil
	})
}

// List returns the favorites of kind in order.
func (s *FavoriteService) List(kind types.StoreKind) ([]types.FavoriteEntry, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	var out []types.FavoriteEntry
	s.store.View(func(cfg *types.SessionConfig) {
		out = cfg.Favorites[kind].Items()
	})
	return out, nil
}

// Get returns a favorite by name.
func (s *FavoriteService) Get(kind types.StoreKind, name string) (types.FavoriteEntry, error) {
	if err := validKind(kind); err != nil {
		return types.FavoriteEntry{}, err
	}
	var (
		fav types.FavoriteEntry
		ok  bool
	)
	s.store.View(func(cfg *types.SessionConfig) {
		fav, ok = cfg.Favorites[kind].Get(name)
	})
	if !ok {
		return types.FavoriteEntry{}, &core.FavoriteNotFoundError{Kind: kind, Name: name}
	}
	return fav, nil
}

// Delete removes a favorite. Deleting an absent name is a no-op.
func (s *FavoriteService) Delete(kind types.StoreKind, name string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		cfg.Favorites[kind].Delete(name)
		return nil
	})
}
