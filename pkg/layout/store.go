// Package layout remembers where the user dropped icons, on the desktop and
// inside Finder folders, and persists those offsets across sessions.
package layout

import (
	"sync"

	"github.com/rs/zerolog"
)

// Position is an icon offset in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l.With().Str("component", "layout").Logger()
	}
}

// Store holds two independent namespaces of icon positions: desktop items
// keyed by item id, and container items keyed by container id then item id.
// Every mutation is written through to the Persister.
type Store struct {
	mu         sync.RWMutex
	desktop    map[string]Position
	containers map[string]map[string]Position
	persister  Persister
	log        zerolog.Logger
}

// NewStore creates a store and loads the persisted snapshot. A snapshot that
// cannot be loaded is logged and replaced by an empty one.
func NewStore(p Persister, opts ...Option) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	s := &Store{
		persister: p,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("loading positions, starting empty")
		snap = Snapshot{}
	}
	s.desktop, s.containers = snap.maps()
	return s
}

// SetDesktopPosition records the offset of a desktop item.
func (s *Store) SetDesktopPosition(itemID string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.desktop[itemID] = Position{X: x, Y: y}
	s.save(s.snapshot())
}

// DesktopPosition returns the offset of a desktop item.
func (s *Store) DesktopPosition(itemID string) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.desktop[itemID]
	return p, ok
}

// SetContainerPosition records the offset of an item inside a container.
// Other items of the container and other containers are left alone.
func (s *Store) SetContainerPosition(containerID, itemID string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.containers[containerID]
	if !ok {
		items = make(map[string]Position)
		s.containers[containerID] = items
	}
	items[itemID] = Position{X: x, Y: y}
	s.save(s.snapshot())
}

// ContainerPosition returns the offset of an item inside a container.
func (s *Store) ContainerPosition(containerID, itemID string) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.containers[containerID][itemID]
	return p, ok
}

// ClearAll forgets every position in both namespaces.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.desktop = make(map[string]Position)
	s.containers = make(map[string]map[string]Position)
	s.save(s.snapshot())
}

// Snapshot returns a deep copy of both namespaces.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		Desktop:    make(map[string]Position, len(s.desktop)),
		Containers: make(map[string]map[string]Position, len(s.containers)),
	}
	for id, p := range s.desktop {
		snap.Desktop[id] = p
	}
	for cid, items := range s.containers {
		cp := make(map[string]Position, len(items))
		for id, p := range items {
			cp[id] = p
		}
		snap.Containers[cid] = cp
	}
	return snap
}

// save hands the snapshot to the persister while the write lock is held, so
// saves reach the persister in mutation order. Failures are logged only.
func (s *Store) save(snap Snapshot) {
	if err := s.persister.Save(snap); err != nil {
		s.log.Warn().Err(err).Msg("saving positions")
	}
}
