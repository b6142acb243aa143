// Package server exposes the question corpus over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/store"
)

// Server wires the ContentStore to HTTP handlers.
type Server struct {
	store  store.ContentStore
	source *store.MemoryStore // canonical loaded corpus: plan, localized answers, reload target
	events store.EventLogger

	corpusPath      string
	reloadTokenHash string

	// sync pushes a freshly loaded corpus to a secondary backend
	// (Postgres). invalidate drops cache entries. Either may be nil.
	sync       func(ctx context.Context, c *corpus.Corpus) error
	invalidate func(ctx context.Context) error

	health map[string]func(ctx context.Context) error
}

// Config holds the server's dependencies.
type Config struct {
	Store           store.ContentStore
	Source          *store.MemoryStore
	Events          store.EventLogger
	CorpusPath      string
	ReloadTokenHash string
	Sync            func(ctx context.Context, c *corpus.Corpus) error
	Invalidate      func(ctx context.Context) error
}

// New creates a server. Events defaults to the nop logger.
func New(cfg Config) *Server {
	events := cfg.Events
	if events == nil {
		events = store.NopEventLogger{}
	}
	return &Server{
		store:           cfg.Store,
		source:          cfg.Source,
		events:          events,
		corpusPath:      cfg.CorpusPath,
		reloadTokenHash: cfg.ReloadTokenHash,
		sync:            cfg.Sync,
		invalidate:      cfg.Invalidate,
		health:          map[string]func(ctx context.Context) error{},
	}
}

// AddHealthCheck registers a dependency check for the readiness probe.
func (s *Server) AddHealthCheck(name string, check func(ctx context.Context) error) {
	s.health[name] = check
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/v1/topics", s.handleTopics)
	mux.HandleFunc("GET /api/v1/topics/{topic}/questions", s.handleTopicQuestions)
	mux.HandleFunc("GET /api/v1/questions/sample", s.handleSample)
	mux.HandleFunc("GET /api/v1/questions/{id}", s.handleQuestion)
	mux.HandleFunc("GET /api/v1/plan", s.handlePlan)
	mux.HandleFunc("GET /api/v1/export", s.handleExport)
	mux.HandleFunc("GET /api/v1/drill", s.handleDrill)
	mux.HandleFunc("POST /api/v1/admin/reload", s.handleReload)

	return requestLogger(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.health {
		if err := check(r.Context()); err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":     "unavailable",
				"dependency": name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("store lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// logLookup records a lookup event without letting analytics failures
// surface to the caller.
func (s *Server) logLookup(op, key string, found bool) {
	if err := s.events.LogLookup(store.LookupEvent{Op: op, Key: key, Found: found}); err != nil {
		slog.Debug("lookup analytics failed", "op", op, "error", err)
	}
}
