package wm

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBaseZ is the z-index of closed windows. Front-bringing operations
// hand out values strictly above it.
const DefaultBaseZ = 1000

// Config declares the window kinds a Registry knows about.
type Config struct {
	// Singletons get one slot each for the life of the registry.
	Singletons []Kind
	// MultiInstance kinds get a new slot on every Open.
	MultiInstance []Kind
	// BaseZ is the z-index of a closed slot. Zero means DefaultBaseZ.
	BaseZ int
}

// DefaultConfig returns the window kinds of the default desktop.
func DefaultConfig() Config {
	return Config{
		Singletons: []Kind{
			KindFinder, KindContact, KindPhotos, KindTerminal, KindTrash, KindSafari,
		},
		MultiInstance: []Kind{KindTextFile, KindImageFile},
		BaseZ:         DefaultBaseZ,
	}
}

// Op names a registry mutation.
type Op string

// Registry mutations reported to observers.
const (
	OpOpen           Op = "open"
	OpClose          Op = "close"
	OpMinimize       Op = "minimize"
	OpRestore        Op = "restore"
	OpFocus          Op = "focus"
	OpToggleMaximize Op = "toggle-maximize"
	OpSavePosition   Op = "save-position"
)

// Event describes an applied mutation. No-ops produce no event.
type Event struct {
	Op Op
	ID WindowID
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report ignored operations.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = l.With().Str("component", "wm").Logger()
	}
}

// WithObserver registers fn to be called after every applied mutation.
// Observers run outside the registry lock and may read the registry.
func WithObserver(fn func(Event)) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, fn)
	}
}

// Registry owns the state of every window of a desktop session and their
// stacking order. Operations on unknown windows are ignored.
type Registry struct {
	mu         sync.RWMutex
	windows    map[WindowID]WindowState
	singletons map[Kind]struct{}
	multi      map[Kind]struct{}
	baseZ      int
	nextZ      int
	nextSeq    uint64
	log        zerolog.Logger
	observers  []func(Event)
}

// NewRegistry creates a registry with one closed slot per singleton kind.
// A kind listed as both singleton and multi-instance is multi-instance.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	baseZ := cfg.BaseZ
	if baseZ == 0 {
		baseZ = DefaultBaseZ
	}

	r := &Registry{
		windows:    make(map[WindowID]WindowState),
		singletons: make(map[Kind]struct{}),
		multi:      make(map[Kind]struct{}),
		baseZ:      baseZ,
		nextZ:      baseZ + 1,
		nextSeq:    1,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, k := range cfg.MultiInstance {
		r.multi[k] = struct{}{}
	}
	for _, k := range cfg.Singletons {
		if _, ok := r.multi[k]; ok {
			continue
		}
		r.singletons[k] = struct{}{}
		id := Singleton(k)
		r.windows[id] = closedState(id, baseZ)
	}

	return r
}

// BaseZ returns the z-index of closed slots.
func (r *Registry) BaseZ() int {
	return r.baseZ
}

// front hands out the next z-index. Callers hold r.mu.
func (r *Registry) front() int {
	z := r.nextZ
	r.nextZ++
	return z
}

// Open opens a window of the given kind.
//
// For a multi-instance kind a new instance is always created and its id is
// returned. For a singleton the slot is opened and brought to front; a nil
// content keeps the payload already stored, which is how a minimized window
// comes back without the caller re-supplying it. The bool result is false
// when the kind is not declared.
func (r *Registry) Open(kind Kind, content Content) (WindowID, bool) {
	r.mu.Lock()

	if _, ok := r.multi[kind]; ok {
		cascade := 0
		for id := range r.windows {
			if id.IsInstance() && id.Base == kind {
				cascade++
			}
		}

		id := WindowID{Base: kind, Seq: r.nextSeq}
		r.nextSeq++
		r.windows[id] = WindowState{
			ID:           id,
			IsOpen:       true,
			ZIndex:       r.front(),
			Content:      content,
			IsInstance:   true,
			BaseKey:      kind,
			CascadeIndex: cascade,
		}
		r.mu.Unlock()

		r.notify(Event{Op: OpOpen, ID: id})
		return id, true
	}

	id := Singleton(kind)
	s, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		r.ignored(OpOpen, id)
		return WindowID{}, false
	}

	s.IsOpen = true
	s.IsMinimized = false
	s.ZIndex = r.front()
	if content != nil {
		s.Content = content
	}
	r.windows[id] = s
	r.mu.Unlock()

	r.notify(Event{Op: OpOpen, ID: id})
	return id, true
}

// Close closes a window. Instances are removed together with their content
// and saved geometry. Singletons are reset to the closed shape.
func (r *Registry) Close(id WindowID) {
	r.mu.Lock()
	s, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		r.ignored(OpClose, id)
		return
	}

	if s.IsInstance {
		delete(r.windows, id)
	} else {
		r.windows[id] = closedState(id, r.baseZ)
	}
	r.mu.Unlock()

	r.notify(Event{Op: OpClose, ID: id})
}

// Minimize hides a window. Z-index, content and saved geometry are kept;
// callers save the geometry first with SavePosition.
func (r *Registry) Minimize(id WindowID) {
	r.update(OpMinimize, id, func(s *WindowState) {
		s.IsMinimized = true
		s.IsOpen = false
	})
}

// Restore shows a window again and brings it to front.
func (r *Registry) Restore(id WindowID) {
	r.update(OpRestore, id, func(s *WindowState) {
		s.IsOpen = true
		s.IsMinimized = false
		s.ZIndex = r.front()
	})
}

// Focus brings a window to front.
func (r *Registry) Focus(id WindowID) {
	r.update(OpFocus, id, func(s *WindowState) {
		s.ZIndex = r.front()
	})
}

// ToggleMaximize flips the maximized flag. Maximizing also brings the window
// to front; un-maximizing leaves the z-index alone.
func (r *Registry) ToggleMaximize(id WindowID) {
	r.update(OpToggleMaximize, id, func(s *WindowState) {
		s.IsMaximized = !s.IsMaximized
		if s.IsMaximized {
			s.ZIndex = r.front()
		}
	})
}

// SavePosition records the geometry a window should come back with.
func (r *Registry) SavePosition(id WindowID, g Geometry) {
	r.update(OpSavePosition, id, func(s *WindowState) {
		s.SavedPosition = &g
	})
}

// update applies fn to the slot under the write lock.
func (r *Registry) update(op Op, id WindowID, fn func(s *WindowState)) {
	r.mu.Lock()
	s, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		r.ignored(op, id)
		return
	}
	fn(&s)
	r.windows[id] = s
	r.mu.Unlock()

	r.notify(Event{Op: op, ID: id})
}

func (r *Registry) ignored(op Op, id WindowID) {
	r.log.Debug().Str("op", string(op)).Stringer("window", id).Msg("unknown window, ignoring")
}

func (r *Registry) notify(ev Event) {
	for _, fn := range r.observers {
		fn(ev)
	}
}

// Window returns a copy of the slot's state.
func (r *Registry) Window(id WindowID) (WindowState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.windows[id]
	if !ok {
		return WindowState{}, false
	}
	return s.clone(), true
}

// Windows returns copies of every slot, back to front. Slots sharing a
// z-index (closed singletons) are ordered by id.
func (r *Registry) Windows() []WindowState {
	r.mu.RLock()
	out := make([]WindowState, 0, len(r.windows))
	for _, s := range r.windows {
		out = append(out, s.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Instances returns the live instances of base in creation order.
func (r *Registry) Instances(base Kind) []WindowState {
	r.mu.RLock()
	var out []WindowState
	for id, s := range r.windows {
		if id.IsInstance() && id.Base == base {
			out = append(out, s.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Seq < out[j].ID.Seq })
	return out
}

// Topmost returns the open window with the highest z-index.
func (r *Registry) Topmost() (WindowState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		top   WindowState
		found bool
	)
	for _, s := range r.windows {
		if s.IsOpen && (!found || s.ZIndex > top.ZIndex) {
			top, found = s, true
		}
	}
	return top.clone(), found
}

// IsMultiInstance reports whether kind is declared multi-instance.
func (r *Registry) IsMultiInstance(kind Kind) bool {
	_, ok := r.multi[kind]
	return ok
}

// Declared reports whether kind is declared at all.
func (r *Registry) Declared(kind Kind) bool {
	_, single := r.singletons[kind]
	_, multi := r.multi[kind]
	return single || multi
}

// Kinds returns every declared kind, sorted.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.singletons)+len(r.multi))
	for k := range r.singletons {
		out = append(out, k)
	}
	for k := range r.multi {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseWindowID parses the text form of a window id against the kinds this
// registry declares. The slot itself need not exist.
func (r *Registry) ParseWindowID(s string) (WindowID, error) {
	id, err := parseWindowID(s, r.Declared)
	if err != nil {
		return WindowID{}, err
	}
	if id.IsInstance() != r.IsMultiInstance(id.Base) {
		return WindowID{}, ErrMalformedWindowID
	}
	return id, nil
}
