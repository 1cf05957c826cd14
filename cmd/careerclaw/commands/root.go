// Package commands implements the CareerClaw CLI commands using cobra.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "careerclaw",
		Short: "CareerClaw - personal career agent",
		Long: `CareerClaw answers questions about your career on your behalf, grounded
in your summary, your LinkedIn profile and your GitHub repositories.

Examples:
  careerclaw serve
  careerclaw chat
  careerclaw repos list
  careerclaw mcp serve
  careerclaw setup`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newReposCmd(),
		newMCPCmd(version),
		newSetupCmd(),
		newCompletionCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logs")

	return rootCmd
}

// resolveConfig loads the explicit config file, else an auto-discovered one,
// else builds the config from the environment alone. Secrets are resolved
// from the keyring afterwards.
func resolveConfig(cmd *cobra.Command, logger *slog.Logger) (*copilot.Config, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	var cfg *copilot.Config
	switch {
	case configPath != "":
		loaded, err := copilot.LoadConfigFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		logger.Debug("config loaded", "path", configPath)

	default:
		if found := copilot.FindConfigFile(); found != "" {
			loaded, err := copilot.LoadConfigFromFile(found)
			if err != nil {
				return nil, fmt.Errorf("loading config from %s: %w", found, err)
			}
			cfg = loaded
			logger.Debug("config loaded", "path", found)
		} else {
			cfg = copilot.LoadConfigFromEnv()
			logger.Debug("no config file found, using environment")
		}
	}

	copilot.ResolveSecrets(cfg, logger)
	return cfg, nil
}

// newLogger builds the slog logger from the logging config and --verbose.
func newLogger(cmd *cobra.Command, cfg copilot.LoggingConfig, w io.Writer) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// loadConfigAndLogger resolves the config with a bootstrap logger, then
// returns the configured logger writing to w.
func loadConfigAndLogger(cmd *cobra.Command, w io.Writer) (*copilot.Config, *slog.Logger, error) {
	bootstrap := newLogger(cmd, copilot.LoggingConfig{Level: "warn", Format: "text"}, os.Stderr)
	cfg, err := resolveConfig(cmd, bootstrap)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd, cfg.Logging, w)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
