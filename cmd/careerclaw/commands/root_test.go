package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zalando/go-keyring"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd("test")

	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	sort.Strings(got)

	for _, want := range []string{"chat", "completion", "mcp", "repos", "serve", "setup"} {
		if !contains(got, want) {
			t.Errorf("missing subcommand %q in %v", want, got)
		}
	}

	reposCmd, _, err := root.Find([]string{"repos"})
	if err != nil {
		t.Fatal(err)
	}
	var sub []string
	for _, c := range reposCmd.Commands() {
		sub = append(sub, c.Name())
	}
	sort.Strings(sub)
	if diff := cmp.Diff([]string{"cat", "list", "ls"}, sub); diff != "" {
		t.Errorf("repos subcommands mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := root.Find([]string{"mcp", "serve"}); err != nil {
		t.Errorf("mcp serve: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "careerclaw") {
		t.Error("completion script does not mention the binary")
	}
}

func TestReposRejectsInvalidID(t *testing.T) {
	root := NewRootCmd("test")
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"repos", "cat", "not-a-repo", "README.md"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "owner/name") {
		t.Errorf("err = %v, want owner/name validation error", err)
	}
}

func TestResolveConfigExplicitFile(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("name: Alice\nmodel: gpt-4o\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAREERCLAW_NAME", "")
	t.Setenv("CAREERCLAW_MODEL", "")

	root := NewRootCmd("test")
	if err := root.PersistentFlags().Set("config", path); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(root, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Name != "Alice" || cfg.Model != "gpt-4o" {
		t.Errorf("cfg = name %q model %q", cfg.Name, cfg.Model)
	}
	if cfg.Persona.SummaryFile != filepath.Join(dir, "me", "summary.txt") {
		t.Errorf("summary path not resolved against the config dir: %q", cfg.Persona.SummaryFile)
	}
}

func TestApplySetupAnswers(t *testing.T) {
	cfg := copilot.DefaultConfig()
	applySetupAnswers(cfg, setupAnswers{
		Name:         "  Alice ",
		Model:        "gpt-4o",
		SummaryFile:  "me/summary.txt",
		ProfileFile:  "me/linkedin.pdf",
		GitHubToken:  "gh-1",
		RepoList:     " alice/a, ,alice/b ",
		PushoverUser: "u-1",
	})

	if cfg.Name != "Alice" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.Repos.List != "alice/a,alice/b" {
		t.Errorf("repo list = %q", cfg.Repos.List)
	}
	if cfg.WebUI.Address != copilot.DefaultWebUIAddress {
		t.Errorf("empty address should keep the default, got %q", cfg.WebUI.Address)
	}
	if cfg.Repos.Token != "gh-1" || cfg.Notify.User != "u-1" {
		t.Errorf("credentials not applied: %+v %+v", cfg.Repos, cfg.Notify)
	}
}

func TestValidRepoList(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"alice/a, bob/b", false},
		{"alice", true},
		{"alice/a,../etc", true},
	}
	for _, tt := range tests {
		if err := validRepoList(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validRepoList(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestEnvRefIfSet(t *testing.T) {
	if got := envRefIfSet("", "GITHUB_TOKEN"); got != "" {
		t.Errorf("empty secret = %q", got)
	}
	if got := envRefIfSet("gh-1", "GITHUB_TOKEN"); got != "${GITHUB_TOKEN}" {
		t.Errorf("secret = %q", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
