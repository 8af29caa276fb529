// Package api exposes webdesk sessions as a JSON API under /api/v1.
//
// Mutations on unknown windows or content items follow the fail-silent
// rule of the core: they answer 200 with the unchanged state. Only an
// unknown session (404) and an undecodable request (400) are errors.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"webdesk/pkg/router"
	"webdesk/pkg/server"
	"webdesk/pkg/session"
	"webdesk/pkg/wm"
)

// Prefix is the path prefix of every API route.
const Prefix = "/api/v1"

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("api: empty request body")

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = l.With().Str("component", "api").Logger()
	}
}

// WithCORS allows cross-origin requests from origins, "*" for any. Without
// origins no CORS headers are sent.
func WithCORS(origins ...string) Option {
	return func(h *Handler) {
		h.cors = origins
	}
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(fn func() error) Option {
	return func(h *Handler) {
		h.ready = fn
	}
}

// WithRequestTimeout bounds every request's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// Handler serves the API.
type Handler struct {
	sessions *session.Manager
	router   *router.Router
	log      zerolog.Logger
	cors     []string
	ready    func() error
	timeout  time.Duration
}

// New builds the API over a session manager.
func New(sessions *session.Manager, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		router:   router.New(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	r := h.router
	r.Use(
		router.RecoveryMiddleware(h.log),
		router.RequestIDMiddleware(),
		router.LoggingMiddleware(h.log),
	)
	if len(h.cors) > 0 {
		r.Use(router.CORSMiddleware(h.cors...))
	}
	if h.timeout > 0 {
		r.Use(router.TimeoutMiddleware(h.timeout))
	}
	r.SetNotFoundHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}))
	r.SetMethodNotAllowedHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	r.GET("/healthz", server.HealthHandler())
	r.GET("/readyz", server.ReadyHandler(h.ready))

	r.GET(Prefix+"/kinds", http.HandlerFunc(h.kinds))
	r.GET(Prefix+"/content", http.HandlerFunc(h.content))

	r.POST(Prefix+"/sessions", http.HandlerFunc(h.createSession))
	r.GET(Prefix+"/sessions/:session", h.withSession(h.getSession))
	r.DELETE(Prefix+"/sessions/:session", h.withSession(h.endSession))

	r.POST(Prefix+"/sessions/:session/windows/:window/:action", h.withSession(h.windowAction))
	r.PUT(Prefix+"/sessions/:session/windows/:window/geometry", h.withSession(h.saveGeometry))
	r.POST(Prefix+"/sessions/:session/dock/:window", h.withSession(h.dock))

	r.POST(Prefix+"/sessions/:session/history/:action", h.withSession(h.historyAction))
	r.PUT(Prefix+"/sessions/:session/history/active", h.withSession(h.setActive))

	r.POST(Prefix+"/sessions/:session/items/open", h.withSession(h.openItem))
	r.POST(Prefix+"/sessions/:session/items/info", h.withSession(h.openInfo))
	r.POST(Prefix+"/sessions/:session/folders/open", h.withSession(h.openFolder))

	r.PUT(Prefix+"/sessions/:session/positions/desktop", h.withSession(h.setDesktopPosition))
	r.PUT(Prefix+"/sessions/:session/positions/containers", h.withSession(h.setContainerPosition))
	r.DELETE(Prefix+"/sessions/:session/positions", h.withSession(h.clearPositions))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

func (h *Handler) withSession(fn sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := router.Param(r, "session")
		s, ok := h.sessions.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", id))
			return
		}
		fn(w, r, s)
	})
}

func (h *Handler) kinds(w http.ResponseWriter, _ *http.Request) {
	cfg := h.sessions.WindowConfig()
	writeJSON(w, http.StatusOK, KindsView{
		Singletons:    cfg.Singletons,
		MultiInstance: cfg.MultiInstance,
		BaseZ:         cfg.BaseZ,
	})
}

func (h *Handler) content(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Content())
}

func (h *Handler) createSession(w http.ResponseWriter, _ *http.Request) {
	h.respondState(w, http.StatusCreated, h.sessions.Create())
}

func (h *Handler) getSession(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) endSession(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	h.sessions.End(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

type openRequest struct {
	Content json.RawMessage `json:"content"`
}

func (h *Handler) windowAction(w http.ResponseWriter, r *http.Request, s *session.Session) {
	action := router.Param(r, "action")
	raw := router.Param(r, "window")

	if action == "open" {
		var req openRequest
		if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			h.badRequest(w, err)
			return
		}
		c, err := DecodeContent(req.Content)
		if err != nil {
			h.badRequest(w, err)
			return
		}
		s.Windows.Open(wm.Kind(raw), c)
		h.respondState(w, http.StatusOK, s)
		return
	}

	id, err := s.Windows.ParseWindowID(raw)
	if err != nil {
		// ids that name no window are ignored like any unknown key
		h.log.Debug().Err(err).Str("window", raw).Str("action", action).Msg("ignoring action on unknown window")
		h.respondState(w, http.StatusOK, s)
		return
	}

	switch action {
	case "close":
		s.Windows.Close(id)
	case "minimize":
		var g wm.Geometry
		switch err := decodeBody(r, &g); {
		case errors.Is(err, errEmptyBody):
			s.Windows.Minimize(id)
		case err != nil:
			h.badRequest(w, err)
			return
		default:
			s.MinimizeWindow(id, g)
		}
	case "restore":
		s.Windows.Restore(id)
	case "focus":
		s.Windows.Focus(id)
	case "maximize":
		s.Windows.ToggleMaximize(id)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown window action %q", action))
		return
	}
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) saveGeometry(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var g wm.Geometry
	if err := decodeBody(r, &g); err != nil {
		h.badRequest(w, err)
		return
	}
	raw := router.Param(r, "window")
	if id, err := s.Windows.ParseWindowID(raw); err == nil {
		s.Windows.SavePosition(id, g)
	} else {
		h.log.Debug().Err(err).Str("window", raw).Msg("ignoring geometry of unknown window")
	}
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) dock(w http.ResponseWriter, r *http.Request, s *session.Session) {
	s.ToggleDockApp(wm.Kind(router.Param(r, "window")))
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) historyAction(w http.ResponseWriter, r *http.Request, s *session.Session) {
	switch action := router.Param(r, "action"); action {
	case "back":
		s.History.GoBack()
	case "forward":
		s.History.GoForward()
	case "reset":
		s.History.Reset()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown history action %q", action))
		return
	}
	h.respondState(w, http.StatusOK, s)
}

type itemRequest struct {
	ID string `json:"id"`
}

func (h *Handler) decodeItem(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err)
		return "", false
	}
	if req.ID == "" {
		h.badRequest(w, errors.New("missing id"))
		return "", false
	}
	return req.ID, true
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, s *session.Session) {
	id, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("jump") == "1" {
		s.NavigateBreadcrumb(id)
	} else if n, found := s.Content().Lookup(id); found && n.IsFolder() {
		s.History.SetActive(n)
	}
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) openItem(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if id, ok := h.decodeItem(w, r); ok {
		s.OpenItem(id)
		h.respondState(w, http.StatusOK, s)
	}
}

func (h *Handler) openInfo(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if id, ok := h.decodeItem(w, r); ok {
		s.OpenInfo(id)
		h.respondState(w, http.StatusOK, s)
	}
}

func (h *Handler) openFolder(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if id, ok := h.decodeItem(w, r); ok {
		s.OpenFolderFromDesktop(id)
		h.respondState(w, http.StatusOK, s)
	}
}

type positionRequest struct {
	Container string   `json:"container"`
	Item      string   `json:"item"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
}

func (h *Handler) decodePosition(w http.ResponseWriter, r *http.Request, needContainer bool) (positionRequest, bool) {
	var req positionRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err)
		return req, false
	}
	switch {
	case req.Item == "":
		h.badRequest(w, errors.New("missing item"))
	case needContainer && req.Container == "":
		h.badRequest(w, errors.New("missing container"))
	case req.X == nil || req.Y == nil:
		h.badRequest(w, errors.New("missing coordinates"))
	default:
		return req, true
	}
	return req, false
}

func (h *Handler) setDesktopPosition(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if req, ok := h.decodePosition(w, r, false); ok {
		s.Layout.SetDesktopPosition(req.Item, *req.X, *req.Y)
		h.respondState(w, http.StatusOK, s)
	}
}

func (h *Handler) setContainerPosition(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if req, ok := h.decodePosition(w, r, true); ok {
		s.Layout.SetContainerPosition(req.Container, req.Item, *req.X, *req.Y)
		h.respondState(w, http.StatusOK, s)
	}
}

func (h *Handler) clearPositions(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	s.Layout.ClearAll()
	h.respondState(w, http.StatusOK, s)
}

func (h *Handler) respondState(w http.ResponseWriter, status int, s *session.Session) {
	state, err := stateOf(s)
	if err != nil {
		h.log.Error().Err(err).Str("session", s.ID).Msg("rendering state")
		writeError(w, http.StatusInternalServerError, "rendering state")
		return
	}
	writeJSON(w, status, state)
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.log.Debug().Err(err).Msg("bad request")
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeBody decodes a JSON body into v. errEmptyBody reports a request
// without a body.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
