package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"udhayam/internal/catalog"
	"udhayam/internal/config"
	appLog "udhayam/internal/log"
	"udhayam/internal/metrics"
	"udhayam/internal/timeline"
)

// Server provides the schedule HTTP API and the embedded UI.
type Server struct {
	cfg       *config.Config
	store     *catalog.Store
	metrics   *metrics.Manager
	policy    timeline.Policy
	festStart time.Time
	now       func() time.Time
	mux       *http.ServeMux

	// Computed views keyed by Selection.Key, valid for one catalog version.
	viewMu      sync.RWMutex
	viewVersion string
	viewCache   map[string]timeline.View
}

// embeddedStatic contains the schedule UI.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server. m may be nil when metrics are disabled.
func NewServer(cfg *config.Config, store *catalog.Store, m *metrics.Manager) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("web: config and catalog store are required")
	}
	policy, err := timeline.ParsePolicy(cfg.TimePolicy)
	if err != nil {
		return nil, err
	}
	festStart, err := cfg.FestStartTime()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		metrics:   m,
		policy:    policy,
		festStart: festStart,
		now:       time.Now,
		mux:       http.NewServeMux(),
		viewCache: map[string]timeline.View{},
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	return requestIDMiddleware(h)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Udhayam", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve runs the HTTP server on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/departments", s.instrument("departments", s.handleDepartments))
	s.mux.HandleFunc("GET /api/schedule", s.instrument("schedule", s.handleSchedule))
	s.mux.HandleFunc("GET /api/schedule/tooltip", s.instrument("tooltip", s.handleTooltip))
	s.mux.HandleFunc("GET /api/schedule.csv", s.instrument("schedule_csv", s.handleScheduleCSV))
	s.mux.HandleFunc("GET /api/schedule.ics", s.instrument("schedule_ics", s.handleScheduleICS))
	s.mux.HandleFunc("GET /schedule.svg", s.instrument("schedule_svg", s.handleScheduleSVG))
	s.mux.HandleFunc("GET /api/contacts", s.instrument("contacts", s.handleContacts))
	s.mux.HandleFunc("GET /api/countdown", s.instrument("countdown", s.handleCountdown))

	if s.cfg.Metrics && s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Everything else is the embedded UI.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// staticFileServer serves the embedded files from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Unknown API paths are 404s, never HTML.
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownDepartment):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, timeline.ErrInvalidDay),
		errors.Is(err, timeline.ErrUnknownCategory),
		errors.Is(err, timeline.ErrMissingDepartment),
		errors.Is(err, timeline.ErrUnexpectedDepartment),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
