package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webdesk/pkg/content"
	"webdesk/pkg/layout"
	"webdesk/pkg/wm"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store := layout.NewStore(layout.NewMemoryPersister())
	return New(content.Default(), store, wm.DefaultConfig(), zerolog.Nop())
}

func TestNew_StartsAtHome(t *testing.T) {
	s := newTestSession(t)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "work", s.History.Active().LocationID())
	assert.Equal(t, []string{"work"}, s.History.IDs())

	_, ok := s.Windows.Topmost()
	assert.False(t, ok, "no window is open at start")
}

func TestToggleDockApp_Finder(t *testing.T) {
	s := newTestSession(t)
	finder := wm.Singleton(wm.KindFinder)

	s.OpenFolderFromDesktop("about")
	s.ToggleDockApp(wm.KindFinder)

	w, ok := s.Windows.Window(finder)
	require.True(t, ok)
	assert.True(t, w.IsOpen)
	assert.Equal(t, "work", s.History.Active().LocationID(), "finder goes back home")

	// finder is never toggled closed from the dock
	s.ToggleDockApp(wm.KindFinder)
	w, _ = s.Windows.Window(finder)
	assert.True(t, w.IsOpen)
}

func TestToggleDockApp_FinderRestoresMinimized(t *testing.T) {
	s := newTestSession(t)
	finder := wm.Singleton(wm.KindFinder)

	s.ToggleDockApp(wm.KindFinder)
	s.MinimizeWindow(finder, wm.Geometry{Top: "10px", Left: "20px"})
	s.ToggleDockApp(wm.KindFinder)

	w, _ := s.Windows.Window(finder)
	assert.True(t, w.IsOpen)
	assert.False(t, w.IsMinimized)
	require.NotNil(t, w.SavedPosition)
	assert.Equal(t, "20px", w.SavedPosition.Left)
}

func TestToggleDockApp_Trash(t *testing.T) {
	s := newTestSession(t)

	s.ToggleDockApp(wm.KindTrash)

	finder, _ := s.Windows.Window(wm.Singleton(wm.KindFinder))
	assert.True(t, finder.IsOpen)
	assert.Equal(t, wm.FinderContent{LocationID: "trash"}, finder.Content)
	assert.Equal(t, "trash", s.History.Active().LocationID())

	trash, _ := s.Windows.Window(wm.Singleton(wm.KindTrash))
	assert.False(t, trash.IsOpen, "the trash slot itself stays closed")
}

func TestToggleDockApp_Cycle(t *testing.T) {
	s := newTestSession(t)
	id := wm.Singleton(wm.KindTerminal)

	s.ToggleDockApp(wm.KindTerminal)
	w, _ := s.Windows.Window(id)
	assert.True(t, w.IsOpen)

	s.ToggleDockApp(wm.KindTerminal)
	w, _ = s.Windows.Window(id)
	assert.True(t, w.Closed())

	s.ToggleDockApp(wm.KindTerminal)
	s.MinimizeWindow(id, wm.Geometry{})
	s.ToggleDockApp(wm.KindTerminal)
	w, _ = s.Windows.Window(id)
	assert.True(t, w.IsOpen)
	assert.False(t, w.IsMinimized)
}

func TestToggleDockApp_UnknownApp(t *testing.T) {
	s := newTestSession(t)

	s.ToggleDockApp(wm.Kind("calculator"))

	assert.Len(t, s.Windows.Windows(), len(wm.DefaultConfig().Singletons))
}

func TestOpenItem(t *testing.T) {
	s := newTestSession(t)

	t.Run("text file opens a new text window", func(t *testing.T) {
		id, ok := s.OpenItem("work/learnhub/overview.txt")
		require.True(t, ok)
		assert.Equal(t, wm.KindTextFile, id.Base)

		w, _ := s.Windows.Window(id)
		text, ok := w.Content.(wm.TextContent)
		require.True(t, ok)
		assert.Equal(t, "Overview.txt", text.Name)
		assert.Nil(t, text.Info)
	})

	t.Run("image file opens a new image window", func(t *testing.T) {
		id, ok := s.OpenItem("work/learnhub/screenshot.png")
		require.True(t, ok)
		assert.Equal(t, wm.KindImageFile, id.Base)

		w, _ := s.Windows.Window(id)
		assert.Equal(t, wm.ImageContent{Name: "Screenshot.png", ImageURL: "/images/learnhub.png"}, w.Content)
	})

	t.Run("link opens the browser", func(t *testing.T) {
		id, ok := s.OpenItem("work/learnhub/repo.github")
		require.True(t, ok)
		assert.Equal(t, wm.Singleton(wm.KindSafari), id)

		w, _ := s.Windows.Window(id)
		assert.Equal(t, "https://github.com/example/learnhub", w.Content.(wm.LinkContent).Href)
	})

	t.Run("folder becomes active", func(t *testing.T) {
		_, ok := s.OpenItem("work/bell-times")
		assert.False(t, ok)
		assert.Equal(t, "work/bell-times", s.History.Active().LocationID())
	})

	t.Run("unknown item is ignored", func(t *testing.T) {
		before := len(s.Windows.Windows())
		_, ok := s.OpenItem("nope")
		assert.False(t, ok)
		assert.Len(t, s.Windows.Windows(), before)
	})
}

func TestOpenItem_SameFileTwice(t *testing.T) {
	s := newTestSession(t)

	a, _ := s.OpenItem("about/aboutme.txt")
	b, _ := s.OpenItem("about/aboutme.txt")

	assert.NotEqual(t, a, b)
	assert.Len(t, s.Windows.Instances(wm.KindTextFile), 2)
}

func TestOpenInfo(t *testing.T) {
	s := newTestSession(t)

	id, ok := s.OpenInfo("about/me.png")
	require.True(t, ok)

	w, _ := s.Windows.Window(id)
	text := w.Content.(wm.TextContent)
	require.NotNil(t, text.Info)
	assert.Equal(t, "about/me.png", text.Info.ItemID)
	assert.Equal(t, "img", text.Info.FileType)
	assert.Equal(t, "About me", text.Info.Location)
}

func TestOpenFolderFromDesktop(t *testing.T) {
	s := newTestSession(t)

	s.OpenFolderFromDesktop("about")
	assert.Equal(t, "about", s.History.Active().LocationID())
	w, _ := s.Windows.Window(wm.Singleton(wm.KindFinder))
	assert.True(t, w.IsOpen)

	s.OpenFolderFromDesktop("about/aboutme.txt")
	assert.Equal(t, "about", s.History.Active().LocationID(), "files are not folders")
}

func TestNavigateBreadcrumb_AlwaysPushes(t *testing.T) {
	s := newTestSession(t)

	s.OpenItem("work/learnhub")
	s.NavigateBreadcrumb("work")
	s.NavigateBreadcrumb("work")

	assert.Equal(t, []string{"work", "work/learnhub", "work", "work"}, s.History.IDs())
	assert.Len(t, s.Breadcrumb(), 1)
}

func TestBreadcrumbAndActiveNode(t *testing.T) {
	s := newTestSession(t)
	s.OpenItem("work/learnhub")

	crumbs := s.Breadcrumb()
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Projects", crumbs[0].Name)
	assert.Equal(t, "LearnHub", crumbs[1].Name)

	n, ok := s.ActiveNode()
	require.True(t, ok)
	assert.Equal(t, "work/learnhub", n.ID)
}

func TestContentFor(t *testing.T) {
	tests := []struct {
		name string
		node *content.Node
		kind wm.Kind
		ok   bool
	}{
		{"nil", nil, "", false},
		{"folder", &content.Node{Kind: content.KindFolder}, "", false},
		{"text", &content.Node{Kind: content.KindFile, FileType: content.FileText}, wm.KindTextFile, true},
		{"image", &content.Node{Kind: content.KindFile, FileType: content.FileImage}, wm.KindImageFile, true},
		{"url", &content.Node{Kind: content.KindFile, FileType: content.FileURL, Href: "https://x"}, wm.KindSafari, true},
		{"github without href", &content.Node{Kind: content.KindFile, FileType: content.FileGitHub}, "", false},
		{"unknown type", &content.Node{Kind: content.KindFile, FileType: "pdf"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, c, ok := ContentFor(tt.node)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
			if ok {
				assert.NotNil(t, c)
			}
		})
	}
}

func TestSetContent(t *testing.T) {
	s := newTestSession(t)

	tree, err := content.Parse([]byte("locations:\n  - id: work\n  - id: extra\n"))
	require.NoError(t, err)
	s.SetContent(tree)

	s.OpenItem("extra")
	assert.Equal(t, "extra", s.History.Active().LocationID())
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(ManagerConfig{Logger: zerolog.Nop()})

	s := m.Create()
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.End(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(ManagerConfig{Logger: zerolog.Nop()})

	a := m.Create()
	b := m.Create()
	a.ToggleDockApp(wm.KindTerminal)

	w, _ := b.Windows.Window(wm.Singleton(wm.KindTerminal))
	assert.False(t, w.IsOpen)

	// icon positions are shared
	a.Layout.SetDesktopPosition("about", 1, 2)
	pos, ok := b.Layout.DesktopPosition("about")
	require.True(t, ok)
	assert.Equal(t, layout.Position{X: 1, Y: 2}, pos)
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(ManagerConfig{TTL: 20 * time.Millisecond, Logger: zerolog.Nop()})

	s := m.Create()
	time.Sleep(40 * time.Millisecond)

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestManager_SetContent(t *testing.T) {
	m := NewManager(ManagerConfig{Logger: zerolog.Nop()})
	live := m.Create()

	tree, err := content.Parse([]byte("locations:\n  - id: fresh\n"))
	require.NoError(t, err)
	m.SetContent(tree)

	assert.Same(t, tree, live.Content())
	assert.Same(t, tree, m.Content())
	assert.Equal(t, "fresh", m.Create().History.Active().LocationID())
}

func TestManager_BaseZOverride(t *testing.T) {
	m := NewManager(ManagerConfig{Windows: wm.Config{BaseZ: 50}, Logger: zerolog.Nop()})

	s := m.Create()
	assert.Equal(t, 50, s.Windows.BaseZ())
	assert.True(t, s.Windows.IsMultiInstance(wm.KindTextFile))
}
