package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyStarted is returned when Run is called twice.
var ErrAlreadyStarted = errors.New("server: already started")

// Server serves the webdesk API and the front-end bundle.
type Server struct {
	addr          string
	api           http.Handler
	apiPrefix     string
	staticHandler http.Handler
	server        *http.Server
	tlsEnabled    bool
	log           zerolog.Logger

	mu       sync.RWMutex
	started  bool
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	Addr string
	// API receives every request under APIPrefix and the health endpoints.
	API       http.Handler
	APIPrefix string
	// StaticDir holds the front-end bundle. Empty disables static serving.
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TLS             TLSConfig
	Logger          zerolog.Logger
}

const defaultShutdownTimeout = 10 * time.Second

// New creates a server. It fails only when TLS files are configured but
// cannot be loaded.
func New(cfg Config) (*Server, error) {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}

	s := &Server{
		addr:      cfg.Addr,
		api:       cfg.API,
		apiPrefix: cfg.APIPrefix,
		log:       cfg.Logger.With().Str("component", "server").Logger(),
	}
	if cfg.StaticDir != "" {
		s.staticHandler = NewStaticFileHandler(cfg.StaticDir)
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.TLS.Enabled() {
		certs, err := cfg.TLS.LoadCertificates()
		if err != nil {
			return nil, err
		}
		s.server.TLSConfig = ServerTLSConfig(certs)
		s.tlsEnabled = true
	}
	return s, nil
}

// ServeHTTP sends API and health requests to the API handler and
// everything else to the static bundle.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.api != nil && s.isAPIPath(r.URL.Path) {
		s.api.ServeHTTP(w, r)
		return
	}
	if s.staticHandler != nil {
		s.staticHandler.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) isAPIPath(path string) bool {
	switch path {
	case "/healthz", "/readyz":
		return true
	}
	return strings.HasPrefix(path, s.apiPrefix)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.tlsEnabled {
			err = s.server.ServeTLS(ln, "", "")
		} else {
			err = s.server.Serve(ln)
		}
		errCh <- err
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Bool("tls", s.tlsEnabled).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Close closes the server immediately.
func (s *Server) Close() error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil
	}
	return s.server.Close()
}

// Addr returns the listening address once started, the configured one
// before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Started returns whether the server has been started.
func (s *Server) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// HealthHandler answers liveness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
}

// ReadyHandler answers readiness probes. ready may be nil.
func ReadyHandler(ready func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready != nil {
			if err := ready(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})
}
