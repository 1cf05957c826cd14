package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/mcpserver"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// newMCPCmd creates the `careerclaw mcp` command group for MCP server operations.
func newMCPCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
		Long:  `Expose the cloned repositories as MCP tools for IDEs and other agents.`,
	}

	cmd.AddCommand(newMCPServeCmd(version))
	return cmd
}

// newMCPServeCmd creates the `careerclaw mcp serve` command.
func newMCPServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server over stdio",
		Long: `Start the MCP server using stdio transport (JSON-RPC 2.0 over stdin/stdout).
Logs go to stderr so they never corrupt the protocol stream.

Add to your IDE configuration (.cursor/mcp.json, .vscode/mcp.json or .mcp.json):
  {
    "mcpServers": {
      "careerclaw": {
        "command": "careerclaw",
        "args": ["mcp", "serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger(cmd, os.Stderr)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store, err := openStore(ctx, cfg.Repos, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			server := mcpserver.New(repos.NewBrowser(store), version, logger)
			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
}
