// Package webui serves the CareerClaw chat widget: an embedded single page
// plus a small JSON API backed by the assistant.
package webui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
)

//go:embed static/index.html
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

// defaultMaxBodyBytes caps /api/chat bodies when the config leaves it unset.
const defaultMaxBodyBytes = 1 << 20

// Assistant is the part of the assistant the web UI needs.
type Assistant interface {
	Answer(ctx context.Context, message string, history []copilot.Message) (string, error)
	Name() string
	Title() string
	Greeting() string
	Repositories() []string
}

// Server is the web UI HTTP server.
type Server struct {
	cfg       copilot.WebUIConfig
	assistant Assistant
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a web UI server.
func New(cfg copilot.WebUIConfig, assistant Assistant, logger *slog.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = copilot.DefaultWebUIAddress
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		assistant: assistant,
		logger:    logger.With("component", "webui"),
		startedAt: time.Now(),
	}
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/health", s.handleHealth)

	return s.securityHeadersMiddleware(s.requestIDMiddleware(s.loggingMiddleware(mux)))
}

// ListenAndServe blocks until the server stops. A clean Shutdown, even one
// issued before the listener is up, returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("web UI starting", "address", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web UI stopping")
	return s.server.Shutdown(ctx)
}
