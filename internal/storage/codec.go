package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/peternagy/dbquerytool/internal/types"
)

// Top-level keys of the session file.
const (
	keyMongoProfiles  = "mongo_profiles"
	keyRedisProfiles  = "redis_profiles"
	keyQueryHistory   = "query_history"
	keyFavorites      = "favorites"
	keySettings       = "settings"
	keyLastConnection = "last_connection"
)

var knownTopLevelKeys = map[string]bool{
	keyMongoProfiles:  true,
	keyRedisProfiles:  true,
	keyQueryHistory:   true,
	keyFavorites:      true,
	keySettings:       true,
	keyLastConnection: true,
}

// mongoProfileRecord is the on-disk shape of a mongo profile.
type mongoProfileRecord struct {
	Name      string          `json:"name"`
	Host      string          `json:"host"`
	Port      int             `json:"port"`
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Database  string          `json:"database"`
	CreatedAt types.Timestamp `json:"created_at"`
}

// redisProfileRecord is the on-disk shape of a redis profile.
type redisProfileRecord struct {
	Name      string          `json:"name"`
	Host      string          `json:"host"`
	Port      int             `json:"port"`
	Password  string          `json:"password"`
	DB        int             `json:"db"`
	CreatedAt types.Timestamp `json:"created_at"`
}

// orderedObject marshals as a JSON object with keys in slice order.
type orderedObject []orderedField

type orderedField struct {
	key   string
	value interface{}
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalNoEscape(f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", f.key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// kindOrder returns known kinds first, then any other tags sorted.
func kindOrder[V any](m map[types.StoreKind]V) []types.StoreKind {
	out := make([]types.StoreKind, 0, len(m))
	for _, k := range types.Kinds {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	var extra []string
	for k := range m {
		if !k.Valid() {
			extra = append(extra, string(k))
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, types.StoreKind(k))
	}
	return out
}

// encodeConfig serializes cfg into the session file format.
func encodeConfig(cfg *types.SessionConfig) ([]byte, error) {
	mongo := make([]mongoProfileRecord, 0)
	for _, p := range cfg.Profiles[types.KindMongo].Items() {
		mongo = append(mongo, mongoProfileRecord{
			Name: p.Name, Host: p.Host, Port: p.Port,
			Username: p.Username, Password: p.Password, Database: p.Database,
			CreatedAt: p.CreatedAt,
		})
	}
	redis := make([]redisProfileRecord, 0)
	for _, p := range cfg.Profiles[types.KindRedis].Items() {
		redis = append(redis, redisProfileRecord{
			Name: p.Name, Host: p.Host, Port: p.Port,
			Password: p.Password, DB: p.DB,
			CreatedAt: p.CreatedAt,
		})
	}

	history := orderedObject{}
	for _, k := range kindOrder(cfg.History) {
		entries := cfg.History[k]
		if entries == nil {
			entries = []types.HistoryEntry{}
		}
		history = append(history, orderedField{string(k), entries})
	}

	favorites := orderedObject{}
	for _, k := range kindOrder(cfg.Favorites) {
		favorites = append(favorites, orderedField{string(k), cfg.Favorites[k].Items()})
	}

	settings := orderedObject{}
	for _, k := range cfg.Settings.Keys() {
		raw, _ := cfg.Settings.Raw(k)
		settings = append(settings, orderedField{k, raw})
	}

	last := orderedObject{}
	for _, k := range kindOrder(cfg.LastConnection) {
		last = append(last, orderedField{string(k), cfg.LastConnection[k]})
	}

	doc := orderedObject{
		{keyMongoProfiles, mongo},
		{keyRedisProfiles, redis},
		{keyQueryHistory, history},
		{keyFavorites, favorites},
		{keySettings, settings},
		{keyLastConnection, last},
	}
	extraKeys := make([]string, 0, len(cfg.Extra))
	for k := range cfg.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		doc = append(doc, orderedField{k, cfg.Extra[k]})
	}

	compact, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeConfig parses the session file format. Missing sections and
// settings are filled with defaults.
func decodeConfig(data []byte) (*types.SessionConfig, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, fmt.Errorf("session document is null")
	}

	cfg := &types.SessionConfig{
		Profiles:       map[types.StoreKind]*types.NamedList[types.ConnectionProfile]{},
		History:        map[types.StoreKind][]types.HistoryEntry{},
		Favorites:      map[types.StoreKind]*types.NamedList[types.FavoriteEntry]{},
		LastConnection: map[types.StoreKind]*string{},
		Extra:          map[string]json.RawMessage{},
	}

	if raw, ok := top[keyMongoProfiles]; ok && !isNull(raw) {
		var records []mongoProfileRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("%s: %w", keyMongoProfiles, err)
		}
		list := types.NewNamedList[types.ConnectionProfile]()
		for _, r := range records {
			list.Upsert(types.ConnectionProfile{
				Name: r.Name, Host: r.Host, Port: r.Port,
				Username: r.Username, Password: r.Password, Database: r.Database,
				CreatedAt: r.CreatedAt,
			})
		}
		cfg.Profiles[types.KindMongo] = list
	}

	if raw, ok := top[keyRedisProfiles]; ok && !isNull(raw) {
		var records []redisProfileRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("%s: %w", keyRedisProfiles, err)
		}
		list := types.NewNamedList[types.ConnectionProfile]()
		for _, r := range records {
			list.Upsert(types.ConnectionProfile{
				Name: r.Name, Host: r.Host, Port: r.Port,
				Password: r.Password, DB: r.DB,
				CreatedAt: r.CreatedAt,
			})
		}
		cfg.Profiles[types.KindRedis] = list
	}

	if raw, ok := top[keyQueryHistory]; ok && !isNull(raw) {
		var history map[string][]types.HistoryEntry
		if err := json.Unmarshal(raw, &history); err != nil {
			return nil, fmt.Errorf("%s: %w", keyQueryHistory, err)
		}
		for k, entries := range history {
			if entries == nil {
				entries = []types.HistoryEntry{}
			}
			cfg.History[types.StoreKind(k)] = entries
		}
	}

	if raw, ok := top[keyFavorites]; ok && !isNull(raw) {
		var favorites map[string][]types.FavoriteEntry
		if err := json.Unmarshal(raw, &favorites); err != nil {
			return nil, fmt.Errorf("%s: %w", keyFavorites, err)
		}
		for k, entries := range favorites {
			cfg.Favorites[types.StoreKind(k)] = types.NewNamedList(entries...)
		}
	}

	if raw, ok := top[keySettings]; ok && !isNull(raw) {
		var settings map[string]json.RawMessage
		if err := json.Unmarshal(raw, &settings); err != nil {
			return nil, fmt.Errorf("%s: %w", keySettings, err)
		}
		for k, v := range settings {
			var compact bytes.Buffer
			if err := json.Compact(&compact, v); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", keySettings, k, err)
			}
			cfg.Settings.SetRaw(k, compact.Bytes())
		}
	}

	if raw, ok := top[keyLastConnection]; ok && !isNull(raw) {
		var last map[string]*string
		if err := json.Unmarshal(raw, &last); err != nil {
			return nil, fmt.Errorf("%s: %w", keyLastConnection, err)
		}
		for k, v := range last {
			cfg.LastConnection[types.StoreKind(k)] = v
		}
	}

	for k, v := range top {
		if !knownTopLevelKeys[k] {
			var compact bytes.Buffer
			if err := json.Compact(&compact, v); err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			cfg.Extra[k] = compact.Bytes()
		}
	}

	cfg.Normalize()
	return cfg, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
