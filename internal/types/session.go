package types

import (
	"encoding/json"
)

// Setting keys and their defaults.
const (
	SettingTheme           = "theme"
	SettingAutoRefresh     = "auto_refresh"
	SettingRefreshInterval = "refresh_interval"
	SettingMaxHistory      = "max_history"
	SettingPageSize        = "page_size"

	DefaultTheme           = "light"
	DefaultAutoRefresh     = false
	DefaultRefreshInterval = 30
	DefaultMaxHistory      = 50
	DefaultPageSize        = 100
)

// SettingKeys lists the known setting keys in persistence order.
var SettingKeys = []string{
	SettingTheme, SettingAutoRefresh, SettingRefreshInterval, SettingMaxHistory, SettingPageSize,
}

// Settings is a flat key/value record. Values are kept as raw JSON so keys
// written by newer versions survive a round trip untouched.
type Settings struct {
	values map[string]json.RawMessage
}

// DefaultSettings returns settings populated with every default.
func DefaultSettings() Settings {
	s := Settings{values: map[string]json.RawMessage{}}
	s.FillDefaults()
	return s
}

// FillDefaults adds every known key that is missing.
func (s *Settings) FillDefaults() {
	if s.values == nil {
		s.values = map[string]json.RawMessage{}
	}
	defaults := map[string]interface{}{
		SettingTheme:           DefaultTheme,
		SettingAutoRefresh:     DefaultAutoRefresh,
		SettingRefreshInterval: DefaultRefreshInterval,
		SettingMaxHistory:      DefaultMaxHistory,
		SettingPageSize:        DefaultPageSize,
	}
	for _, key := range SettingKeys {
		if _, ok := s.values[key]; !ok {
			raw, _ := json.Marshal(defaults[key])
			s.values[key] = raw
		}
	}
}

// Raw returns the stored JSON for key.
func (s Settings) Raw(key string) (json.RawMessage, bool) {
	raw, ok := s.values[key]
	return raw, ok
}

// Set stores value under key.
func (s *Settings) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.values == nil {
		s.values = map[string]json.RawMessage{}
	}
	s.values[key] = raw
	return nil
}

// SetRaw stores already encoded JSON under key.
func (s *Settings) SetRaw(key string, raw json.RawMessage) {
	if s.values == nil {
		s.values = map[string]json.RawMessage{}
	}
	s.values[key] = append(json.RawMessage(nil), raw...)
}

// Keys returns known keys in persistence order followed by unknown keys sorted.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	known := make(map[string]bool, len(SettingKeys))
	for _, k := range SettingKeys {
		known[k] = true
		if _, ok := s.values[k]; ok {
			keys = append(keys, k)
		}
	}
	for _, k := range sortedKeys(s.values) {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	c := Settings{values: make(map[string]json.RawMessage, len(s.values))}
	for k, v := range s.values {
		c.values[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// GetString reads a string setting, falling back to def.
func (s Settings) GetString(key, def string) string {
	var v string
	if raw, ok := s.values[key]; ok && json.Unmarshal(raw, &v) == nil {
		return v
	}
	return def
}

// GetBool reads a boolean setting, falling back to def.
func (s Settings) GetBool(key string, def bool) bool {
	var v bool
	if raw, ok := s.values[key]; ok && json.Unmarshal(raw, &v) == nil {
		return v
	}
	return def
}

// GetInt reads an integer setting, falling back to def. Whole floats are accepted.
func (s Settings) GetInt(key string, def int) int {
	var v float64
	if raw, ok := s.values[key]; ok && json.Unmarshal(raw, &v) == nil && v == float64(int(v)) {
		return int(v)
	}
	return def
}

// Theme returns the display theme.
func (s Settings) Theme() string { return s.GetString(SettingTheme, DefaultTheme) }

// AutoRefresh reports whether the key browser refreshes periodically.
func (s Settings) AutoRefresh() bool { return s.GetBool(SettingAutoRefresh, DefaultAutoRefresh) }

// RefreshInterval returns the auto-refresh period in seconds (always >= 1).
func (s Settings) RefreshInterval() int {
	if v := s.GetInt(SettingRefreshInterval, DefaultRefreshInterval); v >= 1 {
		return v
	}
	return DefaultRefreshInterval
}

// MaxHistory returns the per-kind history cap (always >= 1).
func (s Settings) MaxHistory() int {
	if v := s.GetInt(SettingMaxHistory, DefaultMaxHistory); v >= 1 {
		return v
	}
	return DefaultMaxHistory
}

// PageSize returns the default find limit (always >= 1).
func (s Settings) PageSize() int {
	if v := s.GetInt(SettingPageSize, DefaultPageSize); v >= 1 {
		return v
	}
	return DefaultPageSize
}

// =============================================================================
// Session Config
// =============================================================================

// SessionConfig is the persisted session state.
type SessionConfig struct {
	Profiles       map[StoreKind]*NamedList[ConnectionProfile]
	History        map[StoreKind][]HistoryEntry
	Favorites      map[StoreKind]*NamedList[FavoriteEntry]
	Settings       Settings
	LastConnection map[StoreKind]*string

	// Extra holds unknown top-level keys, preserved verbatim.
	Extra map[string]json.RawMessage
}

// DefaultSessionConfig returns a fresh, fully populated config.
func DefaultSessionConfig() *SessionConfig {
	c := &SessionConfig{}
	c.Normalize()
	return c
}

// Normalize fills every missing collection and setting with its default.
func (c *SessionConfig) Normalize() {
	if c.Profiles == nil {
		c.Profiles = map[StoreKind]*NamedList[ConnectionProfile]{}
	}
	if c.History == nil {
		c.History = map[StoreKind][]HistoryEntry{}
	}
	if c.Favorites == nil {
		c.Favorites = map[StoreKind]*NamedList[FavoriteEntry]{}
	}
	if c.LastConnection == nil {
		c.LastConnection = map[StoreKind]*string{}
	}
	if c.Extra == nil {
		c.Extra = map[string]json.RawMessage{}
	}
	for _, k := range Kinds {
		if c.Profiles[k] == nil {
			c.Profiles[k] = NewNamedList[ConnectionProfile]()
		}
		if c.History[k] == nil {
			c.History[k] = []HistoryEntry{}
		}
		if c.Favorites[k] == nil {
			c.Favorites[k] = NewNamedList[FavoriteEntry]()
		}
		if _, ok := c.LastConnection[k]; !ok {
			c.LastConnection[k] = nil
		}
	}
	c.Settings.FillDefaults()
}

// Clone returns a deep copy.
func (c *SessionConfig) Clone() *SessionConfig {
	out := &SessionConfig{
		Profiles:       make(map[StoreKind]*NamedList[ConnectionProfile], len(c.Profiles)),
		History:        make(map[StoreKind][]HistoryEntry, len(c.History)),
		Favorites:      make(map[StoreKind]*NamedList[FavoriteEntry], len(c.Favorites)),
		Settings:       c.Settings.Clone(),
		LastConnection: make(map[StoreKind]*string, len(c.LastConnection)),
		Extra:          make(map[string]json.RawMessage, len(c.Extra)),
	}
	for k, l := range c.Profiles {
		out.Profiles[k] = l.Clone()
	}
	for k, h := range c.History {
		out.History[k] = append([]HistoryEntry{}, h...)
	}
	for k, l := range c.Favorites {
		out.Favorites[k] = l.Clone()
	}
	for k, v := range c.LastConnection {
		if v != nil {
			name := *v
			out.LastConnection[k] = &name
		} else {
			out.LastConnection[k] = nil
		}
	}
	for k, v := range c.Extra {
		out.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
