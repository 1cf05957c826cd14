package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// newReposCmd creates the `careerclaw repos` command group.
func newReposCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Inspect the repositories the agent can browse",
		Long: `Clone the configured repositories and inspect them the same way the
agent does, through the same path checks.

Examples:
  careerclaw repos list
  careerclaw repos ls alice/proj src --pattern "*.go"
  careerclaw repos cat alice/proj README.md`,
	}

	cmd.AddCommand(
		newReposListCmd(),
		newReposLsCmd(),
		newReposCatCmd(),
	)
	return cmd
}

func newReposListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Clone and list the available repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger(cmd, os.Stderr)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg.Repos, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			ids := store.IDs()
			if len(ids) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No repositories loaded. Is GITHUB_TOKEN set?")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newReposLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <owner/name> [directory]",
		Short: "List files in a repository",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory := "."
			if len(args) == 2 {
				directory = args[1]
			}
			pattern, _ := cmd.Flags().GetString("pattern")

			return withBrowser(cmd, args[0], func(b *repos.Browser) (string, error) {
				return b.ListFiles(args[0], directory, pattern)
			})
		},
	}
	cmd.Flags().StringP("pattern", "p", "", "glob or substring filter on file names")
	return cmd
}

func newReposCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <owner/name> <path>",
		Short: "Print a file from a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBrowser(cmd, args[0], func(b *repos.Browser) (string, error) {
				return b.ReadFile(args[0], args[1])
			})
		},
	}
}

// withBrowser clones only repoID and prints the result of fn.
func withBrowser(cmd *cobra.Command, repoID string, fn func(*repos.Browser) (string, error)) error {
	if !repos.ValidRepoID(repoID) {
		return fmt.Errorf("invalid repository %q, expected owner/name", repoID)
	}

	cfg, logger, err := loadConfigAndLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}
	cfg.Repos.List = repoID

	store, err := openStore(cmd.Context(), cfg.Repos, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := fn(repos.NewBrowser(store))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
