package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// SnapshotVersion is the serialization version written by this package.
const SnapshotVersion = 1

// ErrUnsupportedVersion is returned when a stored snapshot was written by a
// newer serialization version.
var ErrUnsupportedVersion = errors.New("layout: unsupported snapshot version")

// Snapshot is the durable form of a Store.
type Snapshot struct {
	Version    int                            `json:"version"`
	Desktop    map[string]Position            `json:"desktop"`
	Containers map[string]map[string]Position `json:"containers"`
}

// Empty reports whether the snapshot holds no positions.
func (s Snapshot) Empty() bool {
	for _, items := range s.Containers {
		if len(items) > 0 {
			return false
		}
	}
	return len(s.Desktop) == 0
}

// ContainerIDs returns the container ids in sorted order.
func (s Snapshot) ContainerIDs() []string {
	ids := make([]string, 0, len(s.Containers))
	for id := range s.Containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// maps returns mutable copies of both namespaces, never nil.
func (s Snapshot) maps() (map[string]Position, map[string]map[string]Position) {
	desktop := make(map[string]Position, len(s.Desktop))
	for id, p := range s.Desktop {
		desktop[id] = p
	}
	containers := make(map[string]map[string]Position, len(s.Containers))
	for cid, items := range s.Containers {
		cp := make(map[string]Position, len(items))
		for id, p := range items {
			cp[id] = p
		}
		containers[cid] = cp
	}
	return desktop, containers
}

// MarshalSnapshot encodes a snapshot as versioned JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	s.Version = SnapshotVersion
	if s.Desktop == nil {
		s.Desktop = map[string]Position{}
	}
	if s.Containers == nil {
		s.Containers = map[string]map[string]Position{}
	}
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes JSON written by MarshalSnapshot. Data without a
// version field is read as version 1.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return s, nil
}

// Persister is the durable storage behind a Store. Load is called once when
// the store is created and Save after every mutation.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// MemoryPersister keeps the encoded snapshot in memory.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load implements Persister.
func (m *MemoryPersister) Load() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return Snapshot{}, nil
	}
	return UnmarshalSnapshot(m.data)
}

// Save implements Persister.
func (m *MemoryPersister) Save(s Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

const keyPrefix = "positions-"

// DiskPersister stores one snapshot per profile in a diskv store.
type DiskPersister struct {
	d   *diskv.Diskv
	key string
}

// NewDiskPersister opens (lazily creating) a diskv store under dir and
// returns a persister for the given profile. An empty profile means
// "default".
func NewDiskPersister(dir, profile string) *DiskPersister {
	return &DiskPersister{
		d:   openDiskv(dir),
		key: profileKey(profile),
	}
}

func openDiskv(dir string) *diskv.Diskv {
	return diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 256 * 1024,
	})
}

// profileKey escapes the profile into a single file name. Distinct profiles
// never share a key.
func profileKey(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return keyPrefix + url.PathEscape(profile)
}

// Load implements Persister. A profile that was never saved loads empty.
func (p *DiskPersister) Load() (Snapshot, error) {
	if !p.d.Has(p.key) {
		return Snapshot{}, nil
	}
	data, err := p.d.Read(p.key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading %s: %w", p.key, err)
	}
	return UnmarshalSnapshot(data)
}

// Save implements Persister.
func (p *DiskPersister) Save(s Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	if err := p.d.Write(p.key, data); err != nil {
		return fmt.Errorf("writing %s: %w", p.key, err)
	}
	return nil
}

// Erase removes the stored snapshot of the profile.
func (p *DiskPersister) Erase() error {
	if !p.d.Has(p.key) {
		return nil
	}
	return p.d.Erase(p.key)
}

// Profiles lists the profiles stored under dir.
func Profiles(dir string) []string {
	d := openDiskv(dir)

	var out []string
	for key := range d.Keys(nil) {
		name, ok := strings.CutPrefix(key, keyPrefix)
		if !ok {
			continue
		}
		if profile, err := url.PathUnescape(name); err == nil {
			out = append(out, profile)
		}
	}
	sort.Strings(out)
	return out
}
