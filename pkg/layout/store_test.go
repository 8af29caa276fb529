package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingPersister) Load() (Snapshot, error) { return Snapshot{}, f.loadErr }

func (f *failingPersister) Save(Snapshot) error {
	f.saves++
	return f.saveErr
}

func TestStore_NamespaceIsolation(t *testing.T) {
	s := NewStore(NewMemoryPersister())

	s.SetDesktopPosition("5", 10, 20)
	s.SetContainerPosition("1", "5", 30, 40)

	p, ok := s.DesktopPosition("5")
	require.True(t, ok)
	assert.Equal(t, Position{X: 10, Y: 20}, p)

	p, ok = s.ContainerPosition("1", "5")
	require.True(t, ok)
	assert.Equal(t, Position{X: 30, Y: 40}, p)
}

func TestStore_ContainerMerge(t *testing.T) {
	s := NewStore(nil)

	s.SetContainerPosition("work", "a", 1, 1)
	s.SetContainerPosition("work", "b", 2, 2)
	s.SetContainerPosition("about", "a", 3, 3)
	s.SetContainerPosition("work", "a", 9, 9)

	a, _ := s.ContainerPosition("work", "a")
	b, _ := s.ContainerPosition("work", "b")
	other, _ := s.ContainerPosition("about", "a")
	assert.Equal(t, Position{X: 9, Y: 9}, a)
	assert.Equal(t, Position{X: 2, Y: 2}, b)
	assert.Equal(t, Position{X: 3, Y: 3}, other)
}

func TestStore_Missing(t *testing.T) {
	s := NewStore(nil)

	_, ok := s.DesktopPosition("nope")
	assert.False(t, ok)
	_, ok = s.ContainerPosition("nope", "nope")
	assert.False(t, ok)
}

func TestStore_ClearAll(t *testing.T) {
	mp := NewMemoryPersister()
	s := NewStore(mp)
	s.SetDesktopPosition("a", 1, 2)
	s.SetContainerPosition("c", "a", 3, 4)

	s.ClearAll()

	assert.True(t, s.Snapshot().Empty())
	reloaded := NewStore(mp)
	assert.True(t, reloaded.Snapshot().Empty())
}

func TestStore_WritesThrough(t *testing.T) {
	mp := NewMemoryPersister()
	s := NewStore(mp)

	s.SetDesktopPosition("a", 1, 2)
	s.SetDesktopPosition("a", 1, 2)
	s.SetContainerPosition("c", "a", 3, 4)
	assert.Equal(t, 3, mp.Saves())

	reloaded := NewStore(mp)
	p, ok := reloaded.DesktopPosition("a")
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, p)
	p, ok = reloaded.ContainerPosition("c", "a")
	require.True(t, ok)
	assert.Equal(t, Position{X: 3, Y: 4}, p)
}

func TestStore_PersistenceFailuresAreIgnored(t *testing.T) {
	fp := &failingPersister{
		loadErr: errors.New("storage unavailable"),
		saveErr: errors.New("quota exceeded"),
	}
	s := NewStore(fp)

	s.SetDesktopPosition("a", 1, 2)

	p, ok := s.DesktopPosition("a")
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, p)
	assert.Equal(t, 1, fp.saves)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(nil)
	s.SetContainerPosition("c", "a", 1, 1)

	snap := s.Snapshot()
	snap.Containers["c"]["a"] = Position{X: 99}
	snap.Desktop["new"] = Position{}

	p, _ := s.ContainerPosition("c", "a")
	assert.Equal(t, Position{X: 1, Y: 1}, p)
	_, ok := s.DesktopPosition("new")
	assert.False(t, ok)
}

func TestSnapshot_JSON(t *testing.T) {
	data, err := MarshalSnapshot(Snapshot{
		Desktop:    map[string]Position{"5": {X: 10, Y: 20}},
		Containers: map[string]map[string]Position{"1": {"5": {X: 30, Y: 40}}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"desktop":{"5":{"x":10,"y":20}},"containers":{"1":{"5":{"x":30,"y":40}}}}`, string(data))

	empty, err := MarshalSnapshot(Snapshot{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"desktop":{},"containers":{}}`, string(empty))
}

func TestUnmarshalSnapshot(t *testing.T) {
	s, err := UnmarshalSnapshot([]byte(`{"desktop":{"a":{"x":1,"y":2}}}`))
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, s.Version)
	assert.Equal(t, Position{X: 1, Y: 2}, s.Desktop["a"])

	_, err = UnmarshalSnapshot([]byte(`{"version":2}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = UnmarshalSnapshot([]byte(`{not json`))
	assert.Error(t, err)
}

func TestDiskPersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(NewDiskPersister(dir, "alice"))
	s.SetDesktopPosition("learnhub", 120.5, 48)
	s.SetContainerPosition("work/learnhub", "overview", 10, 10)

	reloaded := NewStore(NewDiskPersister(dir, "alice"))
	p, ok := reloaded.DesktopPosition("learnhub")
	require.True(t, ok)
	assert.Equal(t, Position{X: 120.5, Y: 48}, p)
	p, ok = reloaded.ContainerPosition("work/learnhub", "overview")
	require.True(t, ok)
	assert.Equal(t, Position{X: 10, Y: 10}, p)

	other := NewStore(NewDiskPersister(dir, "bob"))
	assert.True(t, other.Snapshot().Empty())

	assert.Equal(t, []string{"alice"}, Profiles(dir))
}

func TestDiskPersister_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, profileKey("default")), []byte("garbage"), 0o600))

	p := NewDiskPersister(dir, "")
	_, err := p.Load()
	assert.Error(t, err)

	s := NewStore(p)
	assert.True(t, s.Snapshot().Empty())

	s.SetDesktopPosition("a", 1, 1)
	snap, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: 1}, snap.Desktop["a"])
}

func TestDiskPersister_Erase(t *testing.T) {
	dir := t.TempDir()
	p := NewDiskPersister(dir, "x")

	require.NoError(t, p.Erase())
	require.NoError(t, p.Save(Snapshot{Desktop: map[string]Position{"a": {}}}))
	require.NoError(t, p.Erase())

	snap, err := p.Load()
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestProfileKey(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"", "positions-default"},
		{"alice", "positions-alice"},
		{"../etc/passwd", "positions-..%2Fetc%2Fpasswd"},
		{"team a", "positions-team%20a"},
		{"team_a", "positions-team_a"},
	}

	for _, tt := range tests {
		if got := profileKey(tt.in); got != tt.expected {
			t.Errorf("profileKey(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestDiskPersister_ProfilesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	profiles := []string{"a b", "a/b", "a_b", "a%20b"}

	for i, p := range profiles {
		snap := Snapshot{Desktop: map[string]Position{"item": {X: float64(i), Y: 0}}}
		require.NoError(t, NewDiskPersister(dir, p).Save(snap))
	}

	for i, p := range profiles {
		snap, err := NewDiskPersister(dir, p).Load()
		require.NoError(t, err)
		assert.Equal(t, float64(i), snap.Desktop["item"].X, "profile %q", p)
	}
	assert.ElementsMatch(t, profiles, Profiles(dir))
}
