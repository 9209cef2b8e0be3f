// Package theme manages result highlighting palettes (builtin + user-defined).
package theme

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/peternagy/dbquerytool/internal/debug"
)

// Colors holds one foreground color per span kind.
type Colors struct {
	String  string `json:"string"`
	Number  string `json:"number"`
	Boolean string `json:"boolean"`
	Null    string `json:"null"`
	Key     string `json:"key"`
	Punct   string `json:"punct"`
}

// Palette is a named set of highlighting colors.
type Palette struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Builtin bool   `json:"builtin"`
	Colors  Colors `json:"colors"`
}

// Builtin palettes. Light is the default and matches the "light" theme setting.
var (
	Light = Palette{
		ID:      "light",
		Name:    "Light",
		Builtin: true,
		Colors: Colors{
			String:  "#0451a5",
			Number:  "#098658",
			Boolean: "#0000ff",
			Null:    "#0000ff",
			Key:     "#a31515",
			Punct:   "#000000",
		},
	}

	Dark = Palette{
		ID:      "dark",
		Name:    "Dark",
		Builtin: true,
		Colors: Colors{
			String:  "#ce9178",
			Number:  "#b5cea8",
			Boolean: "#569cd6",
			Null:    "#569cd6",
			Key:     "#9cdcfe",
			Punct:   "#d4d4d4",
		},
	}
)

// Manager resolves theme ids to palettes.
type Manager struct {
	themesDir string

	mu       sync.RWMutex
	palettes map[string]Palette
}

// NewManager loads the builtin palettes and any *.json palettes in themesDir.
// An empty themesDir loads builtins only.
func NewManager(themesDir string) *Manager {
	m := &Manager{
		themesDir: themesDir,
		palettes:  make(map[string]Palette),
	}
	m.palettes[Light.ID] = Light
	m.palettes[Dark.ID] = Dark
	m.loadUserPalettes()
	return m
}

func (m *Manager) loadUserPalettes() {
	if m.themesDir == "" {
		return
	}
	entries, err := os.ReadDir(m.themesDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(m.themesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var p Palette
		if err := json.Unmarshal(data, &p); err != nil {
			debug.Warn(debug.CategoryStorage, "skipping invalid palette", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}

		// Require at minimum an id and name
		if p.ID == "" || p.Name == "" {
			continue
		}

		// Never let a user palette overwrite a builtin
		if existing, ok := m.palettes[p.ID]; ok && existing.Builtin {
			continue
		}

		p.Builtin = false
		m.palettes[p.ID] = p
	}
}

// List returns builtins first, then user palettes, each group sorted by id.
func (m *Manager) List() []Palette {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Palette, 0, len(m.palettes))
	for _, p := range m.palettes {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Builtin != result[j].Builtin {
			return result[i].Builtin
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Get returns the palette for id, falling back to Light for unknown ids.
func (m *Manager) Get(id string) Palette {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.palettes[id]; ok {
		return p
	}
	return Light
}

// Has reports whether id names a known palette.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.palettes[id]
	return ok
}

// Reload rescans the themes directory for new or modified user palettes.
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.palettes {
		if !p.Builtin {
			delete(m.palettes, id)
		}
	}
	m.loadUserPalettes()
}

// Dir returns the user palettes directory.
func (m *Manager) Dir() string {
	return m.themesDir
}
