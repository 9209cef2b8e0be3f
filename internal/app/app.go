// Package app wires the session store, registries, sessions and dispatcher
// into one facade for front ends.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/peternagy/dbquerytool/internal/config"
	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/credential"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/dispatch"
	"github.com/peternagy/dbquerytool/internal/document"
	"github.com/peternagy/dbquerytool/internal/export"
	"github.com/peternagy/dbquerytool/internal/highlight"
	"github.com/peternagy/dbquerytool/internal/importer"
	"github.com/peternagy/dbquerytool/internal/keyspace"
	"github.com/peternagy/dbquerytool/internal/performance"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/storage"
	"github.com/peternagy/dbquerytool/internal/theme"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Options configure New. Dialer and Secrets default to the network dialer
// and, when cfg.UseKeyring is set, the OS keyring.
type Options struct {
	Config   config.Config
	Dialer   session.Dialer
	Secrets  storage.SecretStore
	Observer dispatch.Observer
}

// App holds the application services.
type App struct {
	cfg        config.Config
	store      *storage.Store
	profiles   *storage.ConnectionService
	lifecycle  *storage.ConnectionLifecycle
	history    *storage.HistoryService
	favorites  *storage.FavoriteService
	settings   *storage.SettingsService
	sessions   *session.Manager
	dispatcher *dispatch.Dispatcher
	metrics    *performance.Service
	themes     *theme.Manager
	refreshers *xsync.MapOf[string, *keyspace.AutoRefresher]
	browsers   *xsync.MapOf[string, *keyspace.Browser]
}

// New opens the session store and builds every service on top of it.
func New(opts Options) (*App, error) {
	store, err := storage.Open(opts.Config.SessionFile)
	if err != nil {
		return nil, err
	}

	secrets := opts.Secrets
	if secrets == nil && opts.Config.UseKeyring {
		secrets = credential.NewService()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = session.NetworkDialer{}
	}

	a := &App{
		cfg:        opts.Config,
		store:      store,
		history:    storage.NewHistoryService(store),
		favorites:  storage.NewFavoriteService(store),
		settings:   storage.NewSettingsService(store),
		themes:     theme.NewManager(opts.Config.ThemesDir),
		refreshers: xsync.NewMapOf[string, *keyspace.AutoRefresher](),
		browsers:   xsync.NewMapOf[string, *keyspace.Browser](),
	}
	a.profiles = storage.NewConnectionService(store, secrets)
	a.lifecycle = storage.NewConnectionLifecycle(a.profiles, secrets)
	a.sessions = session.NewManager(a.profiles, dialer, opts.Config.Timeouts)
	a.metrics = performance.NewService(a.sessions.Len)

	dispatchOpts := []dispatch.Option{
		dispatch.WithMetrics(a.metrics),
		dispatch.WithTimeouts(opts.Config.Timeouts),
	}
	if opts.Observer != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithObserver(opts.Observer))
	}
	a.dispatcher = dispatch.New(a.history, a.settings, dispatchOpts...)

	return a, nil
}

// Close stops auto-refresh, releases every session and flushes the store.
func (a *App) Close(ctx context.Context) error {
	a.refreshers.Range(func(id string, r *keyspace.AutoRefresher) bool {
		r.Stop()
		a.refreshers.Delete(id)
		return true
	})
	a.browsers.Clear()
	a.sessions.CloseAll(ctx)
	return a.store.Close()
}

// LoadError reports a session file that could not be read at startup.
func (a *App) LoadError() error {
	return a.store.LoadError()
}

// SessionFile returns the session file location.
func (a *App) SessionFile() string {
	return a.store.Path()
}

// =============================================================================
// Profile Methods
// =============================================================================

func (a *App) SaveProfile(kind types.StoreKind, p types.ConnectionProfile) error {
	return a.profiles.AddProfile(kind, p)
}

func (a *App) ListProfiles(kind types.StoreKind) ([]types.ConnectionProfile, error) {
	return a.profiles.ListProfiles(kind)
}

func (a *App) GetProfile(kind types.StoreKind, name string) (types.ConnectionProfile, error) {
	return a.profiles.GetProfile(kind, name)
}

// DeleteProfile removes a profile with its last-connection pointer and stored password.
func (a *App) DeleteProfile(kind types.StoreKind, name string) error {
	return a.lifecycle.DeleteProfile(kind, name)
}

func (a *App) LastConnection(kind types.StoreKind) (string, bool) {
	return a.profiles.GetLastConnection(kind)
}

// ProfileURI renders a profile as a connection URI. redact masks the password.
func (a *App) ProfileURI(kind types.StoreKind, name string, redact bool) (string, error) {
	p, err := a.profiles.ResolveProfile(kind, name)
	if err != nil {
		return "", err
	}
	return credential.BuildURI(kind, p, redact), nil
}

// SaveProfileFromURI parses uri and saves it as a profile called name.
func (a *App) SaveProfileFromURI(name, uri string) (types.StoreKind, error) {
	kind, p, err := credential.ParseURI(uri)
	if err != nil {
		return "", err
	}
	p.Name = name
	return kind, a.profiles.AddProfile(kind, p)
}

// =============================================================================
// Session Methods
// =============================================================================

// Connect opens a new session for a saved profile.
func (a *App) Connect(ctx context.Context, kind types.StoreKind, profile string) (*session.Session, error) {
	return a.sessions.Open(ctx, kind, profile)
}

// Disconnect closes one session and its auto-refresh.
func (a *App) Disconnect(ctx context.Context, id string) error {
	a.StopAutoRefresh(id)
	a.browsers.Delete(id)
	return a.sessions.Close(ctx, id)
}

func (a *App) Session(id string) (*session.Session, error) {
	return a.sessions.Get(id)
}

func (a *App) Sessions() []*session.Session {
	return a.sessions.List()
}

// =============================================================================
// Query Methods
// =============================================================================

// Execute runs one request on a session.
func (a *App) Execute(ctx context.Context, sessionID string, req types.QueryRequest) (*types.QueryResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.Execute(ctx, sess, req)
}

// ExecuteCommandText runs a key-value command line such as "GET user:1".
func (a *App) ExecuteCommandText(ctx context.Context, sessionID, text string) (*types.QueryResult, error) {
	req, err := dispatch.ParseCommandText(text)
	if err != nil {
		return nil, err
	}
	return a.Execute(ctx, sessionID, req)
}

// Replay runs a saved request on a session. Document-store requests run the
// recorded operation, see types.ReplayOperation.
func (a *App) Replay(ctx context.Context, sessionID string, saved types.QueryRequest) (*types.QueryResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Kind == types.KindRedis {
		return a.ExecuteCommandText(ctx, sessionID, saved.Body)
	}
	return a.dispatcher.Execute(ctx, sess, types.QueryRequest{
		Kind:       types.KindMongo,
		Database:   saved.Database,
		Collection: saved.Collection,
		Operation:  types.ReplayOperation(saved.Operation, saved.Body),
		Body:       saved.Body,
	})
}

// =============================================================================
// History and Favorites Methods
// =============================================================================

func (a *App) History(kind types.StoreKind) ([]types.HistoryEntry, error) {
	return a.history.List(kind)
}

func (a *App) ClearHistory(kind types.StoreKind) error {
	return a.history.Clear(kind)
}

// ReplayHistory re-runs the history entry at index (0 is the newest).
func (a *App) ReplayHistory(ctx context.Context, sessionID string, index int) (*types.QueryResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	entry, ok := a.history.Get(sess.Kind, index)
	if !ok {
		return nil, fmt.Errorf("no %s history entry at index %d", sess.Kind, index)
	}
	return a.Replay(ctx, sessionID, types.QueryRequest{
		Database: entry.Database, Collection: entry.Collection,
		Operation: entry.Operation, Body: entry.Query,
	})
}

// SaveFavorite stores fav. Mongo queries must parse as Extended JSON and
// redis queries as a command line.
func (a *App) SaveFavorite(kind types.StoreKind, fav types.FavoriteEntry) error {
	switch kind {
	case types.KindMongo:
		if fav.Operation != "" {
			if _, err := types.ParseOperation(string(fav.Operation)); err != nil {
				return &core.ValidationError{Kind: kind, Field: "operation", Reason: err.Error()}
			}
		}
		if strings.TrimSpace(fav.Query) != "" {
			if err := document.ValidateJSON(fav.Query); err != nil {
				return &core.ValidationError{Kind: kind, Field: "query", Reason: "not valid Extended JSON", Err: err}
			}
		}
	case types.KindRedis:
		if _, err := dispatch.ParseCommandText(fav.Query); err != nil {
			return err
		}
	}
	return a.favorites.Save(kind, fav)
}

func (a *App) Favorites(kind types.StoreKind) ([]types.FavoriteEntry, error) {
	return a.favorites.List(kind)
}

func (a *App) DeleteFavorite(kind types.StoreKind, name string) error {
	return a.favorites.Delete(kind, name)
}

// RunFavorite runs a favorite on a session of the same kind.
func (a *App) RunFavorite(ctx context.Context, sessionID, name string) (*types.QueryResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	fav, err := a.favorites.Get(sess.Kind, name)
	if err != nil {
		return nil, err
	}
	return a.Replay(ctx, sessionID, types.QueryRequest{
		Database: fav.Database, Collection: fav.Collection,
		Operation: fav.Operation, Body: fav.Query,
	})
}

// =============================================================================
// Settings Methods
// =============================================================================

func (a *App) Settings() types.Settings {
	return a.settings.Get()
}

// UpdateSetting parses text for key and saves it.
func (a *App) UpdateSetting(key, text string) error {
	return a.settings.UpdateText(key, text)
}

// =============================================================================
// Key Browser Methods
// =============================================================================

// browser returns the session's key browser. Manual and timer refreshes share
// it so a tick never queues behind a manual refresh.
func (a *App) browser(sess *session.Session) *keyspace.Browser {
	b, _ := a.browsers.LoadOrCompute(sess.ID, func() *keyspace.Browser {
		list := func(ctx context.Context, pattern string, limit int) ([]string, error) {
			return a.dispatcher.ListKeys(ctx, sess, pattern, limit)
		}
		return keyspace.NewBrowser(list, keyspace.Options{
			Delimiter: a.cfg.KeyDelimiter,
			MaxKeys:   a.cfg.KeyLimit,
		})
	})
	return b
}

// BrowseKeys lists keys matching pattern and groups them into a tree.
func (a *App) BrowseKeys(ctx context.Context, sessionID, pattern string) (*keyspace.Tree, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.browser(sess).Refresh(ctx, pattern)
}

// StartAutoRefresh refreshes the key tree of a session on the configured
// interval. It reports false when auto refresh is turned off in settings.
// Starting again replaces the previous refresher.
func (a *App) StartAutoRefresh(ctx context.Context, sessionID, pattern string, onResult keyspace.RefreshFunc) (bool, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return false, err
	}
	if sess.Kind != types.KindRedis {
		return false, &core.ValidationError{Kind: sess.Kind, Field: "session", Reason: "key browsing needs a redis session"}
	}
	settings := a.settings.Get()
	if !settings.AutoRefresh() {
		return false, nil
	}

	interval := time.Duration(settings.RefreshInterval()) * time.Second
	r := keyspace.NewAutoRefresher(a.browser(sess), interval, pattern, onResult)
	if prev, ok := a.refreshers.LoadAndStore(sessionID, r); ok {
		prev.Stop()
	}
	r.Start(ctx)
	return true, nil
}

// StopAutoRefresh stops a session's auto refresh, if running.
func (a *App) StopAutoRefresh(sessionID string) {
	if r, ok := a.refreshers.LoadAndDelete(sessionID); ok {
		r.Stop()
	}
}

func (a *App) InspectKey(ctx context.Context, sessionID, key string) (*dispatch.KeyInspection, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.InspectKey(ctx, sess, key)
}

func (a *App) WriteValue(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return a.dispatcher.WriteValue(ctx, sess, key, value, ttl)
}

func (a *App) DeleteKey(ctx context.Context, sessionID, key string) (bool, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return false, err
	}
	return a.dispatcher.DeleteKey(ctx, sess, key)
}

// =============================================================================
// Document Browser Methods
// =============================================================================

func (a *App) ListDatabases(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.ListDatabases(ctx, sess)
}

func (a *App) ListCollections(ctx context.Context, sessionID, db string) ([]string, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.ListCollections(ctx, sess, db)
}

func (a *App) CollectionStats(ctx context.Context, sessionID, db, coll string) (*types.CollectionStats, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.CollectionStats(ctx, sess, db, coll)
}

func (a *App) Indexes(ctx context.Context, sessionID, db, coll string) ([]types.IndexInfo, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.Indexes(ctx, sess, db, coll)
}

func (a *App) InferSchema(ctx context.Context, sessionID, db, coll string, sampleSize int) (*types.SchemaResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.InferSchema(ctx, sess, db, coll, sampleSize)
}

// =============================================================================
// Export / Import Methods
// =============================================================================

// ExportResult writes result records to path. An empty format is taken from
// the file extension.
func (a *App) ExportResult(path string, result *types.QueryResult, format export.Format, opts export.Options) error {
	return export.WriteFile(path, result.Records, format, opts)
}

// ImportFile reads records from a JSON, NDJSON or CSV file and inserts them.
func (a *App) ImportFile(ctx context.Context, sessionID, db, coll, path string) (*types.ImportResult, error) {
	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	records, err := importer.ReadFile(path)
	if err != nil {
		return nil, err
	}
	debug.LogImport("importing file", map[string]interface{}{
		"path":       path,
		"records":    len(records),
		"database":   db,
		"collection": coll,
	})
	return a.dispatcher.Import(ctx, sess, db, coll, records)
}

// =============================================================================
// Display Methods
// =============================================================================

// Highlight styles result text with the palette named by the theme setting.
func (a *App) Highlight(text string) string {
	p := a.themes.Get(a.settings.Get().Theme())
	return highlight.NewStyles(p.Colors).Render(text)
}

func (a *App) Palettes() []theme.Palette {
	return a.themes.List()
}

// =============================================================================
// Metrics Methods
// =============================================================================

func (a *App) WriteMetrics(w io.Writer) {
	a.metrics.WritePrometheus(w, false)
}

func (a *App) Runtime() *performance.RuntimeStats {
	return a.metrics.Runtime()
}
