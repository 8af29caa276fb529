package wm

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnknownWindowKind is returned by ParseWindowID when the base kind is not
// declared in the registry.
var ErrUnknownWindowKind = errors.New("wm: unknown window kind")

// ErrMalformedWindowID is returned by ParseWindowID for ids that cannot name
// any window.
var ErrMalformedWindowID = errors.New("wm: malformed window id")

// Kind names a window type such as "finder" or "txtfile".
type Kind string

// Window kinds of the default desktop.
const (
	KindFinder    Kind = "finder"
	KindContact   Kind = "contact"
	KindPhotos    Kind = "photos"
	KindTerminal  Kind = "terminal"
	KindTrash     Kind = "trash"
	KindSafari    Kind = "safari"
	KindTextFile  Kind = "txtfile"
	KindImageFile Kind = "imgfile"
)

// WindowID identifies a registry slot. Singleton slots have Seq == 0;
// instances of multi-instance kinds carry the registry-wide sequence number
// they were created with.
type WindowID struct {
	Base Kind
	Seq  uint64
}

// Singleton returns the id of the singleton slot for kind.
func Singleton(kind Kind) WindowID {
	return WindowID{Base: kind}
}

// IsInstance reports whether the id names an instance slot.
func (id WindowID) IsInstance() bool {
	return id.Seq != 0
}

// String returns "base" for singletons and "base-seq" for instances.
func (id WindowID) String() string {
	if id.Seq == 0 {
		return string(id.Base)
	}
	return string(id.Base) + "-" + strconv.FormatUint(id.Seq, 10)
}

// MarshalText implements encoding.TextMarshaler so ids can key JSON maps.
func (id WindowID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. With no registry to
// consult, a number after the last "-" is read as the sequence;
// Registry.ParseWindowID validates against declared kinds.
func (id *WindowID) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" {
		return ErrMalformedWindowID
	}
	if i := strings.LastIndex(s, "-"); i > 0 {
		if seq, err := strconv.ParseUint(s[i+1:], 10, 64); err == nil {
			if seq == 0 {
				return ErrMalformedWindowID
			}
			*id = WindowID{Base: Kind(s[:i]), Seq: seq}
			return nil
		}
	}
	*id = WindowID{Base: Kind(s)}
	return nil
}

// parseWindowID splits s on its last "-" when the suffix is a number.
// known reports whether a base kind is declared.
func parseWindowID(s string, known func(Kind) bool) (WindowID, error) {
	if s == "" {
		return WindowID{}, ErrMalformedWindowID
	}
	if known(Kind(s)) {
		return WindowID{Base: Kind(s)}, nil
	}

	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return WindowID{}, ErrUnknownWindowKind
	}
	seq, err := strconv.ParseUint(s[i+1:], 10, 64)
	if err != nil || seq == 0 {
		return WindowID{}, ErrMalformedWindowID
	}
	base := Kind(s[:i])
	if !known(base) {
		return WindowID{}, ErrUnknownWindowKind
	}
	return WindowID{Base: base, Seq: seq}, nil
}

// Geometry is the last-known placement of a window, captured by the rendering
// layer before a minimize. The registry stores it without interpreting it.
type Geometry struct {
	Top       string `json:"top"`
	Left      string `json:"left"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	Transform string `json:"transform,omitempty"`
}

// WindowState is the state of one registry slot. Values handed out by the
// Registry are copies; mutating them has no effect on the registry.
type WindowState struct {
	ID            WindowID  `json:"id"`
	IsOpen        bool      `json:"isOpen"`
	IsMinimized   bool      `json:"isMinimized"`
	IsMaximized   bool      `json:"isMaximized"`
	ZIndex        int       `json:"zIndex"`
	Content       Content   `json:"-"`
	SavedPosition *Geometry `json:"savedPosition,omitempty"`
	IsInstance    bool      `json:"isInstance"`
	BaseKey       Kind      `json:"baseKey,omitempty"`
	CascadeIndex  int       `json:"cascadeIndex,omitempty"`
}

// Closed reports whether the slot is in the default closed shape.
func (s WindowState) Closed() bool {
	return !s.IsOpen && !s.IsMinimized && s.Content == nil
}

func (s WindowState) clone() WindowState {
	if s.SavedPosition != nil {
		g := *s.SavedPosition
		s.SavedPosition = &g
	}
	return s
}

// closedState returns the default closed shape of a singleton slot.
func closedState(id WindowID, baseZ int) WindowState {
	return WindowState{ID: id, ZIndex: baseZ}
}

// CascadeOffset returns the pixel offset applied to a freshly opened
// instance so siblings do not stack exactly on top of each other. The
// offset wraps after six steps.
func CascadeOffset(cascadeIndex int) int {
	if cascadeIndex < 0 {
		return 0
	}
	return 24 * (cascadeIndex % 6)
}
