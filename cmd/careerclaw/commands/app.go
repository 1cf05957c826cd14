package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/notify"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/persona"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// app holds everything a chat surface needs. Close releases it in reverse
// order of construction.
type app struct {
	cfg       *copilot.Config
	store     *repos.Store
	notifier  *notify.Pushover
	assistant *copilot.Assistant
	logger    *slog.Logger

	shutdownTracing func(context.Context) error
}

// newApp loads the persona, clones the repositories and builds the
// assistant. A persona failure aborts startup; repository failures only
// shrink the registry.
func newApp(ctx context.Context, cfg *copilot.Config, logger *slog.Logger) (*app, error) {
	data, err := persona.Load(cfg.Name, cfg.Persona)
	if err != nil {
		return nil, fmt.Errorf("loading persona: %w", err)
	}

	store, err := openStore(ctx, cfg.Repos, logger)
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := copilot.SetupTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	notifier := notify.NewPushover(cfg.Notify, nil, logger)

	return &app{
		cfg:             cfg,
		store:           store,
		notifier:        notifier,
		assistant:       copilot.New(cfg, data, store, notifier, logger),
		logger:          logger,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close waits for in-flight notifications, flushes spans and removes the
// clone scratch directories.
func (a *app) Close() {
	a.notifier.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTracing(ctx); err != nil {
		a.logger.Warn("tracing shutdown failed", "error", err)
	}

	_ = a.store.Close()
}

// openStore creates the GitHub-backed store and runs the initial load.
// The caller owns the store and must Close it.
func openStore(ctx context.Context, cfg repos.Config, logger *slog.Logger) (*repos.Store, error) {
	store, err := repos.NewGitHubStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating repository store: %w", err)
	}
	loaded := store.Load(ctx)
	logger.Info("repositories loaded", "count", len(loaded))
	return store, nil
}
