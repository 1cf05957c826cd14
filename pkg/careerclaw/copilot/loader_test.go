package copilot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CC_TEST_SET", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${CC_TEST_SET}", "value"},
		{"$CC_TEST_SET", "value"},
		{"${CC_TEST_UNSET}", "${CC_TEST_UNSET}"},
		{"${CC_TEST_UNSET:-fallback}", "fallback"},
		{"${CC_TEST_SET:-fallback}", "value"},
		{"key: ${CC_TEST_SET}/x", "key: value/x"},
	}
	for _, tt := range tests {
		if got := expandEnvVars(tt.in); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandEnvVarsRequired(t *testing.T) {
	_, err := expandEnvVarsWithValidation("api_key: ${CC_TEST_MISSING:?set the key}\nname: x\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "CC_TEST_MISSING - set the key") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
name: Ada
model: ${CC_TEST_MODEL:-gpt-4o}
persona:
  summary_file: me/summary.txt
  profile_file: /abs/linkedin.pdf
repos:
  list: ada/one
agent:
  max_turns: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GITHUB_REPOS", "")
	t.Setenv("CAREERCLAW_NAME", "")
	t.Setenv("CAREERCLAW_API_KEY", "")

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile: %v", err)
	}

	if cfg.Name != "Ada" || cfg.Model != "gpt-4o" {
		t.Errorf("name/model = %q/%q", cfg.Name, cfg.Model)
	}
	if cfg.Persona.SummaryFile != filepath.Join(dir, "me", "summary.txt") {
		t.Errorf("summary file = %q", cfg.Persona.SummaryFile)
	}
	if cfg.Persona.ProfileFile != "/abs/linkedin.pdf" {
		t.Errorf("profile file = %q", cfg.Persona.ProfileFile)
	}
	if cfg.Repos.Token != "gh-token" || cfg.API.APIKey != "sk-env" {
		t.Errorf("secrets not taken from env: %q %q", cfg.Repos.Token, cfg.API.APIKey)
	}
	if cfg.Repos.List != "ada/one" {
		t.Errorf("repo list = %q", cfg.Repos.List)
	}
	if cfg.Agent.MaxTurns != 4 || cfg.Agent.RunTimeoutSeconds != 120 {
		t.Errorf("agent = %+v", cfg.Agent)
	}
	if cfg.WebUI.Address != DefaultWebUIAddress {
		t.Errorf("webui address = %q", cfg.WebUI.Address)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CAREERCLAW_NAME", "Grace")
	t.Setenv("GITHUB_REPOS", "grace/a,grace/b")
	t.Setenv("PUSHOVER_TOKEN", "pt")
	t.Setenv("PUSHOVER_USER", "pu")

	cfg := LoadConfigFromEnv()
	if cfg.Name != "Grace" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.Repos.List != "grace/a,grace/b" {
		t.Errorf("repo list = %q", cfg.Repos.List)
	}
	if !cfg.Notify.Enabled() {
		t.Error("pushover should be enabled")
	}
	if cfg.Model != DefaultModel {
		t.Errorf("model = %q", cfg.Model)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-secret")
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Name = "Ada"
	cfg.API.APIKey = "sk-secret"
	if err := SaveConfigToFile(cfg, path); err != nil {
		t.Fatalf("SaveConfigToFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "sk-secret") {
		t.Error("secret written to disk in plain text")
	}

	loaded, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile: %v", err)
	}
	if loaded.Name != "Ada" || loaded.API.APIKey != "sk-secret" {
		t.Errorf("loaded = %q / %q", loaded.Name, loaded.API.APIKey)
	}
}
