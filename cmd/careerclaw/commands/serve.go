package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/webui"
)

// newServeCmd creates the `careerclaw serve` command that runs the web chat.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web chat server",
		Long: `Load the persona, clone the configured repositories and serve the
chat widget and its JSON API until interrupted.

Examples:
  careerclaw serve
  careerclaw serve --addr :8080
  careerclaw serve --config ./config.yaml`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides webui.address)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger(cmd, os.Stdout)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.WebUI.Address = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := webui.New(cfg.WebUI, a.assistant, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	logger.Info("CareerClaw running. Press Ctrl+C to stop.",
		"name", cfg.Name,
		"address", cfg.WebUI.Address,
		"repositories", a.store.Len(),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
