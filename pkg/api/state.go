package api

import (
	"encoding/json"

	"webdesk/pkg/layout"
	"webdesk/pkg/session"
	"webdesk/pkg/wm"
)

// WindowView is a window slot as the front end sees it.
type WindowView struct {
	wm.WindowState
	Content       json.RawMessage `json:"content,omitempty"`
	CascadeOffset int             `json:"cascadeOffset"`
}

// Crumb is one step of the breadcrumb.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryView is the navigation state of the Finder.
type HistoryView struct {
	Entries      []string `json:"entries"`
	Cursor       int      `json:"cursor"`
	Active       string   `json:"active"`
	CanGoBack    bool     `json:"canGoBack"`
	CanGoForward bool     `json:"canGoForward"`
	Breadcrumb   []Crumb  `json:"breadcrumb"`
}

// StateView is the full state of a session.
type StateView struct {
	Session   string          `json:"session"`
	Windows   []WindowView    `json:"windows"`
	History   HistoryView     `json:"history"`
	Positions layout.Snapshot `json:"positions"`
}

// KindsView lists the declared window kinds.
type KindsView struct {
	Singletons    []wm.Kind `json:"singletons"`
	MultiInstance []wm.Kind `json:"multiInstance"`
	BaseZ         int       `json:"baseZ"`
}

func stateOf(s *session.Session) (StateView, error) {
	windows := s.Windows.Windows()
	views := make([]WindowView, 0, len(windows))
	for _, w := range windows {
		c, err := EncodeContent(w.Content)
		if err != nil {
			return StateView{}, err
		}
		v := WindowView{WindowState: w, Content: c}
		if w.IsInstance {
			v.CascadeOffset = wm.CascadeOffset(w.CascadeIndex)
		}
		views = append(views, v)
	}

	h := HistoryView{
		Entries:      s.History.IDs(),
		Cursor:       s.History.Cursor(),
		CanGoBack:    s.History.CanGoBack(),
		CanGoForward: s.History.CanGoForward(),
		Breadcrumb:   []Crumb{},
	}
	if active := s.History.Active(); active != nil {
		h.Active = active.LocationID()
	}
	for _, n := range s.Breadcrumb() {
		h.Breadcrumb = append(h.Breadcrumb, Crumb{ID: n.ID, Name: n.Name})
	}

	return StateView{
		Session:   s.ID,
		Windows:   views,
		History:   h,
		Positions: s.Layout.Snapshot(),
	}, nil
}
