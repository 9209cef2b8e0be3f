package storage

import (
	"github.com/peternagy/dbquerytool/internal/types"
)

// HistoryService keeps a bounded, newest-first log of executed requests per store kind.
type HistoryService struct {
	store *Store
}

// NewHistoryService creates a new history service.
func NewHistoryService(store *Store) *HistoryService {
	return &HistoryService{store: store}
}

// Record inserts entry at the front and truncates to the max_history setting.
// The cap is read at every insert, so a changed setting applies to the next write.
func (s *HistoryService) Record(kind types.StoreKind, entry types.HistoryEntry) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = types.Now()
	}
	if entry.ExecutionTime < 0 {
		entry.ExecutionTime = 0
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		limit := cfg.Settings.MaxHistory()
		history := make([]types.HistoryEntry, 0, len(cfg.History[kind])+1)
		history = append(history, entry)
		history = append(history, cfg.History[kind]...)
		if len(history) > limit {
			history = history[:limit]
		}
		cfg.History[kind] = history
		return nil
	})
}

// List returns the history of kind, newest first.
func (s *HistoryService) List(kind types.StoreKind) ([]types.HistoryEntry, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	var out []types.HistoryEntry
	s.store.View(func(cfg *types.SessionConfig) {
		out = append([]types.HistoryEntry{}, cfg.History[kind]...)
	})
	return out, nil
}

// Get returns the entry at index (0 is the newest).
func (s *HistoryService) Get(kind types.StoreKind, index int) (types.HistoryEntry, bool) {
	entries, err := s.List(kind)
	if err != nil || index < 0 || index >= len(entries) {
		return types.HistoryEntry{}, false
	}
	return entries[index], true
}

// Clear empties the history of kind. Clearing an empty history is a no-op.
func (s *HistoryService) Clear(kind types.StoreKind) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		cfg.History[kind] = []types.HistoryEntry{}
		return nil
	})
}
