// Package session owns open driver handles. Each session holds exactly one
// handle and runs one request at a time.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/driver/mongodriver"
	"github.com/peternagy/dbquerytool/internal/driver/redisdriver"
	"github.com/peternagy/dbquerytool/internal/storage"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Dialer opens driver handles for a resolved profile.
type Dialer interface {
	DialDocument(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (driver.DocumentStore, error)
	DialKeyValue(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (driver.KeyValueStore, error)
}

// NetworkDialer dials real MongoDB and Redis servers.
type NetworkDialer struct{}

// DialDocument implements Dialer.
func (NetworkDialer) DialDocument(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (driver.DocumentStore, error) {
	return mongodriver.Dial(ctx, p, timeouts)
}

// DialKeyValue implements Dialer.
func (NetworkDialer) DialKeyValue(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (driver.KeyValueStore, error) {
	return redisdriver.Dial(ctx, p, timeouts)
}

// Session is one open connection bound to a profile.
type Session struct {
	ID       string
	Kind     types.StoreKind
	Profile  string
	OpenedAt time.Time

	doc driver.DocumentStore
	kv  driver.KeyValueStore
	mu  sync.Mutex
}

// Document returns the document-store handle of a mongo session.
func (s *Session) Document() (driver.DocumentStore, bool) {
	return s.doc, s.doc != nil
}

// KeyValue returns the key-value handle of a redis session.
func (s *Session) KeyValue() (driver.KeyValueStore, bool) {
	return s.kv, s.kv != nil
}

// Exclusive runs fn while holding the session's request lock.
func (s *Session) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return s.doc.Close(ctx)
	}
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}

// Manager opens, tracks and closes sessions.
type Manager struct {
	profiles *storage.ConnectionService
	dialer   Dialer
	timeouts core.Timeouts
	sessions *xsync.MapOf[string, *Session]
}

// NewManager creates a session manager. A nil dialer dials real servers.
func NewManager(profiles *storage.ConnectionService, dialer Dialer, timeouts core.Timeouts) *Manager {
	if dialer == nil {
		dialer = NetworkDialer{}
	}
	return &Manager{
		profiles: profiles,
		dialer:   dialer,
		timeouts: timeouts.WithDefaults(),
		sessions: xsync.NewMapOf[string, *Session](),
	}
}

// Open dials a fresh handle for the named profile. On success the session is
// registered and becomes the kind's last connection. On failure nothing is
// registered and a *core.ConnectionError is returned.
func (m *Manager) Open(ctx context.Context, kind types.StoreKind, profileName string) (*Session, error) {
	p, err := m.profiles.ResolveProfile(kind, profileName)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:       uuid.New().String(),
		Kind:     kind,
		Profile:  profileName,
		OpenedAt: time.Now(),
	}

	switch kind {
	case types.KindMongo:
		sess.doc, err = m.dialer.DialDocument(ctx, p, m.timeouts)
	case types.KindRedis:
		sess.kv, err = m.dialer.DialKeyValue(ctx, p, m.timeouts)
	}
	if err != nil {
		debug.LogConnection("connect failed", map[string]interface{}{
			"kind":    string(kind),
			"profile": profileName,
			"error":   err.Error(),
		})
		return nil, &core.ConnectionError{Kind: kind, Profile: profileName, Err: err}
	}

	m.sessions.Store(sess.ID, sess)

	if err := m.profiles.SetLastConnection(kind, profileName); err != nil {
		debug.Warn(debug.CategoryConnection, "failed to record last connection", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}

	debug.LogConnection("session opened", map[string]interface{}{
		"session": sess.ID,
		"kind":    string(kind),
		"profile": profileName,
	})
	return sess, nil
}

// Get returns an open session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	sess, ok := m.sessions.Load(id)
	if !ok {
		return nil, &core.SessionNotFoundError{ID: id}
	}
	return sess, nil
}

// List returns the open sessions ordered by open time.
func (m *Manager) List() []*Session {
	out := make([]*Session, 0, m.sessions.Size())
	m.sessions.Range(func(_ string, s *Session) bool {
		out = append(out, s)
		return true
	})
	sortByOpened(out)
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// Close releases one session's handle. Other sessions are untouched.
func (m *Manager) Close(ctx context.Context, id string) error {
	sess, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return &core.SessionNotFoundError{ID: id}
	}
	debug.LogConnection("session closed", map[string]interface{}{"session": id})
	return sess.close(ctx)
}

// CloseAll releases every open session.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, sess := range m.List() {
		if err := m.Close(ctx, sess.ID); err != nil {
			debug.Warn(debug.CategoryConnection, "failed to close session", map[string]interface{}{
				"session": sess.ID,
				"error":   err.Error(),
			})
		}
	}
}

func sortByOpened(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].OpenedAt.Equal(sessions[j].OpenedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].OpenedAt.Before(sessions[j].OpenedAt)
	})
}
