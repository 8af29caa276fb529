package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type place struct {
	id    string
	label string
}

func (p place) LocationID() string { return p.id }

var (
	work  = place{id: "work", label: "Projects"}
	about = place{id: "about", label: "About me"}
	trash = place{id: "trash", label: "Trash"}
)

func TestNew(t *testing.T) {
	m := New(work)

	assert.Equal(t, work, m.Active())
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.CanGoBack())
	assert.False(t, m.CanGoForward())
}

func TestSetActive_BackAndForthScenario(t *testing.T) {
	m := New(work)

	m.SetActive(about)
	assert.Equal(t, []string{"work", "about"}, m.IDs())
	assert.Equal(t, 1, m.Cursor())

	m.GoBack()
	assert.Equal(t, work, m.Active())
	assert.Equal(t, 0, m.Cursor())
	assert.True(t, m.CanGoForward())

	m.SetActive(trash)
	assert.Equal(t, []string{"work", "trash"}, m.IDs())
	assert.Equal(t, 1, m.Cursor())
	assert.False(t, m.CanGoForward())

	m.GoForward()
	assert.Equal(t, trash, m.Active(), "discarded entry must not be reachable")
}

func TestSetActive_TwoBackReturnsToStart(t *testing.T) {
	a := place{id: "a"}
	m := New(a)

	m.SetActive(place{id: "b"})
	m.SetActive(place{id: "c"})
	m.GoBack()
	m.GoBack()

	assert.Equal(t, a, m.Active())
	assert.False(t, m.CanGoBack())
	assert.True(t, m.CanGoForward())

	m.GoForward()
	m.GoForward()
	assert.Equal(t, "c", m.Active().LocationID())
	assert.False(t, m.CanGoForward())
}

func TestSetActive_SameIDRebinds(t *testing.T) {
	m := New(work)
	refreshed := place{id: "work", label: "Projects (refreshed)"}

	m.SetActive(refreshed)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, refreshed, m.Active())
	// only the active reference is rebound
	assert.Equal(t, work, m.Entries()[0])
}

func TestSetActive_Nil(t *testing.T) {
	m := New(work)
	m.SetActive(about)

	m.SetActive(nil)
	m.NavigateToPath(nil)

	assert.Equal(t, about, m.Active())
	assert.Equal(t, 2, m.Len())
}

type node struct{ id string }

func (n *node) LocationID() string {
	if n == nil {
		return ""
	}
	return n.id
}

func TestSetActive_TypedNilAndEmptyID(t *testing.T) {
	m := New(work)
	m.SetActive(about)

	var typedNil *node
	m.SetActive(typedNil)
	m.NavigateToPath(typedNil)
	m.SetActive(place{})
	m.NavigateToPath(&node{})

	assert.Equal(t, about, m.Active())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []Location{work, about}, m.Entries())
}

func TestNavigateToPath_AlwaysAppends(t *testing.T) {
	m := New(work)
	m.SetActive(about)
	m.SetActive(trash)
	m.GoBack()

	m.NavigateToPath(about)

	assert.Equal(t, []string{"work", "about", "about"}, m.IDs())
	assert.Equal(t, 2, m.Cursor())
	assert.False(t, m.CanGoForward())
	assert.Equal(t, about, m.Active())
}

func TestGoBackForward_Bounds(t *testing.T) {
	m := New(work)

	m.GoBack()
	assert.Equal(t, 0, m.Cursor())
	m.GoForward()
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, work, m.Active())
}

func TestReset(t *testing.T) {
	m := New(work)
	m.SetActive(about)
	m.SetActive(trash)

	m.Reset()

	assert.Equal(t, []string{"work"}, m.IDs())
	assert.Equal(t, work, m.Active())
	assert.Equal(t, 0, m.Cursor())
}

func TestEntriesReturnsCopy(t *testing.T) {
	m := New(work)
	entries := m.Entries()
	entries[0] = trash

	require.Equal(t, work, m.Entries()[0])
}

// TestProperty_CursorInBounds verifies the cursor always indexes an entry
// whose id matches the active location.
func TestProperty_CursorInBounds(t *testing.T) {
	ids := []string{"work", "about", "trash", "work/learnhub"}

	rapid.Check(t, func(t *rapid.T) {
		m := New(work)

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := m.Len()
			beforeActive := m.Active().LocationID()
			loc := place{id: rapid.SampledFrom(ids).Draw(t, "id")}

			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				m.SetActive(loc)
				if loc.id == beforeActive && m.Len() != before {
					t.Fatalf("SetActive with same id grew history %d -> %d", before, m.Len())
				}
			case 1:
				cursor := m.Cursor()
				m.NavigateToPath(loc)
				if m.Len() != cursor+2 {
					t.Fatalf("NavigateToPath: len %d, want %d", m.Len(), cursor+2)
				}
			case 2:
				m.GoBack()
			case 3:
				m.GoForward()
			case 4:
				m.Reset()
			}

			cursor := m.Cursor()
			if cursor < 0 || cursor >= m.Len() {
				t.Fatalf("cursor %d out of bounds for len %d", cursor, m.Len())
			}
			if m.Entries()[cursor].LocationID() != m.Active().LocationID() {
				t.Fatalf("active %q does not match entry %q", m.Active().LocationID(), m.Entries()[cursor].LocationID())
			}
			if m.CanGoBack() != (cursor > 0) || m.CanGoForward() != (cursor < m.Len()-1) {
				t.Fatalf("predicates disagree with cursor %d/%d", cursor, m.Len())
			}
		}
	})
}
