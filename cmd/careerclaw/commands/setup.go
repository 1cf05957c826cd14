package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// newSetupCmd creates the `careerclaw setup` command for interactive configuration.
func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		Long: `Starts an interactive wizard to create your config.yaml.
Asks for your name, the model, the persona files and the credentials.
Credentials can be stored in the OS keyring instead of the file.

Examples:
  careerclaw setup
  careerclaw setup --output ./configs/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runSetup,
	}

	cmd.Flags().StringP("output", "o", "config.yaml", "where to write the config file")
	return cmd
}

// setupAnswers are the wizard fields bound to huh inputs.
type setupAnswers struct {
	Name          string
	Model         string
	SummaryFile   string
	ProfileFile   string
	APIKey        string
	GitHubToken   string
	RepoList      string
	PushoverToken string
	PushoverUser  string
	Address       string
	UseKeyring    bool
	Overwrite     bool
}

func runSetup(cmd *cobra.Command, _ []string) error {
	target, _ := cmd.Flags().GetString("output")

	cfg := copilot.DefaultConfig()
	ans := setupAnswers{
		Name:        cfg.Name,
		Model:       cfg.Model,
		SummaryFile: cfg.Persona.SummaryFile,
		ProfileFile: cfg.Persona.ProfileFile,
		Address:     cfg.WebUI.Address,
		UseKeyring:  copilot.KeyringAvailable(),
	}

	if _, err := os.Stat(target); err == nil {
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Overwrite?", target)).
			Value(&ans.Overwrite)
		if err := confirm.Run(); err != nil {
			return err
		}
		if !ans.Overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled.")
			return nil
		}
	}

	if err := setupForm(&ans).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled.")
			return nil
		}
		return fmt.Errorf("setup: %w", err)
	}

	applySetupAnswers(cfg, ans)

	storedInKeyring := false
	if ans.UseKeyring {
		if err := copilot.StoreSecrets(cfg); err != nil {
			color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(),
				"Keyring unavailable (%v). Secrets will be read from the environment instead.\n", err)
			applySetupAnswers(cfg, ans)
		} else {
			storedInKeyring = true
		}
	}
	if !storedInKeyring {
		// Secrets are written as ${VAR} references, never in plaintext.
		cfg.API.APIKey = envRefIfSet(ans.APIKey, "OPENAI_API_KEY")
		cfg.Repos.Token = envRefIfSet(ans.GitHubToken, "GITHUB_TOKEN")
		cfg.Notify.Token = envRefIfSet(ans.PushoverToken, "PUSHOVER_TOKEN")
	}

	if err := copilot.SaveConfigToFile(cfg, target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen, color.Bold).Fprintf(out, "Config written to %s\n", target)
	if storedInKeyring {
		fmt.Fprintln(out, "  Secrets stored in the OS keyring.")
	} else {
		fmt.Fprintln(out, "  Secrets are read from OPENAI_API_KEY, GITHUB_TOKEN and PUSHOVER_TOKEN.")
	}
	fmt.Fprintf(out, "  Place your summary at %s and your LinkedIn export at %s.\n",
		cfg.Persona.SummaryFile, cfg.Persona.ProfileFile)
	fmt.Fprintln(out, "  Start with: careerclaw serve")
	return nil
}

func setupForm(ans *setupAnswers) *huh.Form {
	notEmpty := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Your name").
				Description("The agent speaks on behalf of this person.").
				Value(&ans.Name).Validate(notEmpty("name")),
			huh.NewSelect[string]().Title("Model").
				Options(huh.NewOptions("gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1")...).
				Value(&ans.Model),
			huh.NewInput().Title("LLM API key").
				EchoMode(huh.EchoModePassword).
				Value(&ans.APIKey),
		),
		huh.NewGroup(
			huh.NewInput().Title("Summary file").
				Value(&ans.SummaryFile).Validate(notEmpty("summary file")),
			huh.NewInput().Title("LinkedIn profile PDF").
				Value(&ans.ProfileFile).Validate(notEmpty("profile file")),
		),
		huh.NewGroup(
			huh.NewInput().Title("GitHub token").
				Description("Optional. Enables repository browsing.").
				EchoMode(huh.EchoModePassword).
				Value(&ans.GitHubToken),
			huh.NewInput().Title("Repositories").
				Description("Optional comma-separated owner/name list. Empty means all repositories you own.").
				Value(&ans.RepoList).Validate(validRepoList),
		),
		huh.NewGroup(
			huh.NewInput().Title("Pushover application token").
				Description("Optional. Enables lead notifications.").
				EchoMode(huh.EchoModePassword).
				Value(&ans.PushoverToken),
			huh.NewInput().Title("Pushover user key").
				Value(&ans.PushoverUser),
			huh.NewInput().Title("Web UI listen address").
				Value(&ans.Address),
			huh.NewConfirm().Title("Store secrets in the OS keyring?").
				Value(&ans.UseKeyring),
		),
	)
}

func applySetupAnswers(cfg *copilot.Config, ans setupAnswers) {
	cfg.Name = strings.TrimSpace(ans.Name)
	cfg.Model = ans.Model
	cfg.Persona.SummaryFile = strings.TrimSpace(ans.SummaryFile)
	cfg.Persona.ProfileFile = strings.TrimSpace(ans.ProfileFile)
	cfg.API.APIKey = strings.TrimSpace(ans.APIKey)
	cfg.Repos.Token = strings.TrimSpace(ans.GitHubToken)
	cfg.Repos.List = strings.Join(repos.ParseRepoList(ans.RepoList), ",")
	cfg.Notify.Token = strings.TrimSpace(ans.PushoverToken)
	cfg.Notify.User = strings.TrimSpace(ans.PushoverUser)
	if addr := strings.TrimSpace(ans.Address); addr != "" {
		cfg.WebUI.Address = addr
	}
}

func validRepoList(s string) error {
	for _, id := range repos.ParseRepoList(s) {
		if !repos.ValidRepoID(id) {
			return fmt.Errorf("%q is not in owner/name form", id)
		}
	}
	return nil
}

// envRefIfSet returns a ${VAR} reference when a secret was entered, so the
// file records where the value must come from without storing it.
func envRefIfSet(value, envVar string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return "${" + envVar + "}"
}
