package session

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"webdesk/pkg/content"
	"webdesk/pkg/layout"
	"webdesk/pkg/wm"
)

// DefaultTTL is how long an untouched session stays alive.
const DefaultTTL = 30 * time.Minute

// ManagerConfig holds session manager configuration.
type ManagerConfig struct {
	Content *content.Tree
	Layout  *layout.Store
	Windows wm.Config
	// TTL is the idle time after which a session is dropped.
	TTL    time.Duration
	Logger zerolog.Logger
}

// Manager keeps the live sessions of a server. Sessions that are not
// touched for the configured TTL are evicted.
type Manager struct {
	cache   *gocache.Cache
	ttl     time.Duration
	tree    atomic.Pointer[content.Tree]
	layout  *layout.Store
	windows wm.Config
	log     zerolog.Logger
}

// NewManager creates a session manager. Missing content falls back to the
// embedded tree and a missing layout store to an in-memory one.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Content == nil {
		cfg.Content = content.Default()
	}
	if cfg.Layout == nil {
		cfg.Layout = layout.NewStore(layout.NewMemoryPersister(), layout.WithLogger(cfg.Logger))
	}
	if len(cfg.Windows.Singletons) == 0 && len(cfg.Windows.MultiInstance) == 0 {
		baseZ := cfg.Windows.BaseZ
		cfg.Windows = wm.DefaultConfig()
		if baseZ != 0 {
			cfg.Windows.BaseZ = baseZ
		}
	}

	m := &Manager{
		cache:   gocache.New(cfg.TTL, cfg.TTL/2),
		ttl:     cfg.TTL,
		layout:  cfg.Layout,
		windows: cfg.Windows,
		log:     cfg.Logger.With().Str("component", "sessions").Logger(),
	}
	m.tree.Store(cfg.Content)
	m.cache.OnEvicted(func(id string, _ interface{}) {
		m.log.Debug().Str("session", id).Msg("session ended")
	})
	return m
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := New(m.tree.Load(), m.layout, m.windows, m.log)
	m.cache.Set(s.ID, s, gocache.DefaultExpiration)
	m.log.Info().Str("session", s.ID).Msg("session started")
	return s
}

// Get returns a live session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	v, found := m.cache.Get(id)
	if !found {
		return nil, false
	}
	s, ok := v.(*Session)
	if !ok {
		m.log.Error().Str("session", id).Msg("wrong type in session cache")
		return nil, false
	}
	m.cache.Set(id, s, gocache.DefaultExpiration)
	return s, true
}

// End drops a session.
func (m *Manager) End(id string) {
	m.cache.Delete(id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// Layout returns the shared layout store.
func (m *Manager) Layout() *layout.Store {
	return m.layout
}

// WindowConfig returns the window kinds every session declares.
func (m *Manager) WindowConfig() wm.Config {
	cfg := m.windows
	cfg.Singletons = append([]wm.Kind(nil), cfg.Singletons...)
	cfg.MultiInstance = append([]wm.Kind(nil), cfg.MultiInstance...)
	return cfg
}

// Content returns the content tree new sessions start with.
func (m *Manager) Content() *content.Tree {
	return m.tree.Load()
}

// SetContent swaps the content tree of new and live sessions.
func (m *Manager) SetContent(t *content.Tree) {
	m.tree.Store(t)
	for _, item := range m.cache.Items() {
		if s, ok := item.Object.(*Session); ok {
			s.SetContent(t)
		}
	}
}

// Flush drops every session.
func (m *Manager) Flush() {
	m.cache.Flush()
}
