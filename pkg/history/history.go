// Package history keeps the back/forward navigation stack of a Finder
// window. Locations are compared by their stable id only.
package history

import (
	"sync"

	"github.com/rs/zerolog"
)

// Location is a place that can be navigated to. Two locations with the same
// id are the same place, whatever else differs between them.
type Location interface {
	LocationID() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used to report ignored navigations.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l.With().Str("component", "history").Logger()
	}
}

// Manager is a linear, truncating history over locations.
type Manager struct {
	mu      sync.RWMutex
	root    Location
	entries []Location
	cursor  int
	active  Location
	log     zerolog.Logger
}

// New returns a history holding only root. Reset returns to root.
func New(root Location, opts ...Option) *Manager {
	m := &Manager{
		root: root,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reset()
	return m
}

// missing reports whether loc names no place: a nil interface, a typed nil
// or an empty id.
func missing(loc Location) bool {
	return loc == nil || loc.LocationID() == ""
}

// SetActive moves to loc. A location with the current id only replaces the
// active reference, so a refreshed listing does not add an entry. A new id
// drops any forward entries and appends loc.
func (m *Manager) SetActive(loc Location) {
	if missing(loc) {
		m.log.Debug().Msg("set active without location, ignoring")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.LocationID() != loc.LocationID() {
		m.push(loc)
	}
	m.active = loc
}

// NavigateToPath always appends loc, even when it is the active location.
// It is used for explicit jumps such as breadcrumb clicks.
func (m *Manager) NavigateToPath(loc Location) {
	if missing(loc) {
		m.log.Debug().Msg("navigate without location, ignoring")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.push(loc)
	m.active = loc
}

// push truncates the forward entries and appends loc. Callers hold m.mu.
func (m *Manager) push(loc Location) {
	m.entries = append(m.entries[:m.cursor+1:m.cursor+1], loc)
	m.cursor = len(m.entries) - 1
}

// GoBack moves one entry back if there is one.
func (m *Manager) GoBack() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor > 0 {
		m.cursor--
		m.active = m.entries[m.cursor]
	}
}

// GoForward moves one entry forward if there is one.
func (m *Manager) GoForward() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor < len(m.entries)-1 {
		m.cursor++
		m.active = m.entries[m.cursor]
	}
}

// CanGoBack reports whether GoBack would move.
func (m *Manager) CanGoBack() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor > 0
}

// CanGoForward reports whether GoForward would move.
func (m *Manager) CanGoForward() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor < len(m.entries)-1
}

// Reset returns to a single entry at the root location.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Manager) reset() {
	m.entries = []Location{m.root}
	m.cursor = 0
	m.active = m.root
}

// Active returns the active location.
func (m *Manager) Active() Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Cursor returns the index of the current entry.
func (m *Manager) Cursor() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor
}

// Len returns the number of entries, forward entries included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a copy of the history.
func (m *Manager) Entries() []Location {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Location, len(m.entries))
	copy(out, m.entries)
	return out
}

// IDs returns the ids of the entries, in order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.entries))
	for i, loc := range m.entries {
		if loc != nil {
			out[i] = loc.LocationID()
		}
	}
	return out
}
