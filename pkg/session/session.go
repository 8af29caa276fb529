// Package session ties the window registry, the navigation history and the
// icon layout of one desktop together. It plays the part of the UI layer
// that composes them: the three components never call each other.
package session

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"webdesk/pkg/content"
	"webdesk/pkg/history"
	"webdesk/pkg/layout"
	"webdesk/pkg/wm"
)

// Session is the state of one desktop in one browser tab.
type Session struct {
	ID      string
	Created time.Time

	Windows *wm.Registry
	History *history.Manager
	Layout  *layout.Store

	tree atomic.Pointer[content.Tree]
	log  zerolog.Logger
}

// New creates a session over tree. The layout store is shared: positions
// outlive sessions.
func New(tree *content.Tree, positions *layout.Store, windows wm.Config, log zerolog.Logger) *Session {
	id := uuid.NewString()
	log = log.With().Str("session", id).Logger()

	s := &Session{
		ID:      id,
		Created: time.Now(),
		Layout:  positions,
		log:     log,
	}
	s.tree.Store(tree)
	s.Windows = wm.NewRegistry(windows,
		wm.WithLogger(log),
		wm.WithObserver(func(ev wm.Event) {
			log.Debug().Str("op", string(ev.Op)).Stringer("window", ev.ID).Msg("window")
		}),
	)
	s.History = history.New(tree.HomeNode(), history.WithLogger(log))
	return s
}

// Content returns the content tree the session browses.
func (s *Session) Content() *content.Tree {
	return s.tree.Load()
}

// SetContent swaps the content tree. History entries keep their old nodes;
// they are matched by id so navigation is unaffected.
func (s *Session) SetContent(t *content.Tree) {
	s.tree.Store(t)
}

func (s *Session) lookup(id string) (*content.Node, bool) {
	n, ok := s.Content().Lookup(id)
	if !ok {
		s.log.Debug().Str("item", id).Msg("unknown content item, ignoring")
	}
	return n, ok
}

// ToggleDockApp applies a click on a dock icon.
//
// The trash icon opens the Finder on the trash folder and the Finder icon
// opens (or restores) the Finder on the home folder. Any other app is
// restored when minimized, closed when open and opened otherwise.
func (s *Session) ToggleDockApp(kind wm.Kind) {
	tree := s.Content()

	switch kind {
	case wm.KindTrash:
		if trash, ok := tree.Lookup("trash"); ok {
			s.Windows.Open(wm.KindFinder, wm.FinderContent{LocationID: trash.ID})
			s.History.SetActive(trash)
			return
		}
		// without a trash folder the trash is an ordinary app
	case wm.KindFinder:
		finder := wm.Singleton(wm.KindFinder)
		home := tree.HomeNode()
		if w, ok := s.Windows.Window(finder); ok && w.IsMinimized {
			s.Windows.Restore(finder)
		} else {
			s.Windows.Open(wm.KindFinder, wm.FinderContent{LocationID: home.ID})
		}
		s.History.SetActive(home)
		return
	}

	id := wm.Singleton(kind)
	w, ok := s.Windows.Window(id)
	switch {
	case !ok:
		s.log.Debug().Str("app", string(kind)).Msg("no window for dock app")
	case w.IsMinimized:
		s.Windows.Restore(id)
	case w.IsOpen:
		s.Windows.Close(id)
	default:
		s.Windows.Open(kind, nil)
	}
}

// OpenItem opens a content item the way a double click in the Finder does:
// folders become the active location, files open in their window kind.
// The returned id is the window that was opened, if any.
func (s *Session) OpenItem(itemID string) (wm.WindowID, bool) {
	n, ok := s.lookup(itemID)
	if !ok {
		return wm.WindowID{}, false
	}
	if n.IsFolder() {
		s.History.SetActive(n)
		return wm.WindowID{}, false
	}

	kind, c, ok := ContentFor(n)
	if !ok {
		return wm.WindowID{}, false
	}
	return s.Windows.Open(kind, c)
}

// OpenInfo opens a text window describing the item.
func (s *Session) OpenInfo(itemID string) (wm.WindowID, bool) {
	n, ok := s.lookup(itemID)
	if !ok {
		return wm.WindowID{}, false
	}
	return s.Windows.Open(wm.KindTextFile, s.infoFor(n))
}

// OpenFolderFromDesktop makes a folder active and brings up the Finder, as
// clicking a folder icon on the desktop does.
func (s *Session) OpenFolderFromDesktop(folderID string) {
	n, ok := s.lookup(folderID)
	if !ok || !n.IsFolder() {
		return
	}
	s.History.SetActive(n)
	s.Windows.Open(wm.KindFinder, wm.FinderContent{LocationID: n.ID})
}

// NavigateBreadcrumb jumps to a folder of the current path. Unlike
// OpenItem it always records a history entry.
func (s *Session) NavigateBreadcrumb(folderID string) {
	n, ok := s.lookup(folderID)
	if !ok || !n.IsFolder() {
		return
	}
	s.History.NavigateToPath(n)
}

// MinimizeWindow saves the window geometry and then minimizes it, so a
// later restore can put it back where it was.
func (s *Session) MinimizeWindow(id wm.WindowID, g wm.Geometry) {
	s.Windows.SavePosition(id, g)
	s.Windows.Minimize(id)
}

// ActiveNode returns the active location as a content node, resolved
// against the current tree.
func (s *Session) ActiveNode() (*content.Node, bool) {
	active := s.History.Active()
	if active == nil {
		return nil, false
	}
	return s.Content().Lookup(active.LocationID())
}

// Breadcrumb returns the path from the top-level folder to the active
// location.
func (s *Session) Breadcrumb() []*content.Node {
	active := s.History.Active()
	if active == nil {
		return nil
	}
	return s.Content().Path(active.LocationID())
}

func (s *Session) infoFor(n *content.Node) wm.TextContent {
	info := &wm.FileInfo{
		ItemID:   n.ID,
		Kind:     string(n.Kind),
		FileType: string(n.FileType),
	}
	if p, ok := s.Content().Parent(n.ID); ok {
		info.Location = p.Name
	}
	return wm.TextContent{
		Name:        n.Name,
		Subtitle:    n.Subtitle,
		Image:       n.Image,
		Description: n.Description,
		Info:        info,
	}
}

// ContentFor maps a file node to the window kind that shows it and the
// payload to open it with. Folders and unknown file types map to nothing.
func ContentFor(n *content.Node) (wm.Kind, wm.Content, bool) {
	if n == nil || n.IsFolder() {
		return "", nil, false
	}

	switch n.FileType {
	case content.FileText:
		return wm.KindTextFile, wm.TextContent{
			Name:        n.Name,
			Subtitle:    n.Subtitle,
			Image:       n.Image,
			Description: n.Description,
		}, true
	case content.FileImage:
		return wm.KindImageFile, wm.ImageContent{Name: n.Name, ImageURL: n.ImageURL}, true
	case content.FileURL, content.FileGitHub:
		if n.Href == "" {
			return "", nil, false
		}
		return wm.KindSafari, wm.LinkContent{Name: n.Name, Href: n.Href}, true
	default:
		return "", nil, false
	}
}
