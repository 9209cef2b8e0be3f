package storage

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/types"
)

// SettingsService reads and updates display settings.
type SettingsService struct {
	store *Store
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store *Store) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the current settings. Missing keys resolve to defaults.
func (s *SettingsService) Get() types.Settings {
	var out types.Settings
	s.store.View(func(cfg *types.SessionConfig) {
		out = cfg.Settings.Clone()
	})
	return out
}

// Update stores value under key.
func (s *SettingsService) Update(key string, value interface{}) error {
	if key == "" {
		return &core.ValidationError{Field: "setting", Reason: "key cannot be empty"}
	}
	return s.store.Update(func(cfg *types.SessionConfig) error {
		return cfg.Settings.Set(key, value)
	})
}

// UpdateText parses a command-line value and stores it. Known keys are
// checked against their type; unknown keys accept any JSON, falling back
// to a plain string.
func (s *SettingsService) UpdateText(key, text string) error {
	value, err := parseSettingValue(key, text)
	if err != nil {
		return err
	}
	return s.Update(key, value)
}

func parseSettingValue(key, text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	switch key {
	case types.SettingTheme:
		return text, nil
	case types.SettingAutoRefresh:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, &core.ValidationError{Field: key, Reason: "must be true or false", Err: err}
		}
		return b, nil
	case types.SettingRefreshInterval, types.SettingMaxHistory, types.SettingPageSize:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, &core.ValidationError{Field: key, Reason: "must be a whole number", Err: err}
		}
		if n < 1 {
			return nil, &core.ValidationError{Field: key, Reason: "must be at least 1"}
		}
		return n, nil
	}
	var raw json.RawMessage
	if json.Unmarshal([]byte(text), &raw) == nil {
		return raw, nil
	}
	return text, nil
}
