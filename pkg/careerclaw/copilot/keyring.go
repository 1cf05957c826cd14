// Package copilot – keyring.go stores credentials in the operating system's
// native keyring (Secret Service, Keychain, Credential Manager).
//
// Priority for resolving secrets:
//  1. OS keyring
//  2. Environment variable (including .env files loaded by godotenv)
//  3. config.yaml value
package copilot

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "careerclaw"

	// Key names for each secret stored in the keyring.
	KeyringAPIKey        = "api_key"
	KeyringGitHubToken   = "github_token"
	KeyringPushoverToken = "pushover_token"
)

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring.
// Returns empty string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// KeyringAvailable checks if the OS keyring is accessible.
func KeyringAvailable() bool {
	testKey := "__careerclaw_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// ResolveSecrets overlays keyring values onto cfg. Values already resolved
// from the environment or config are kept when the keyring has nothing.
// Missing secrets are reported once each; none of them is fatal.
func ResolveSecrets(cfg *Config, logger *slog.Logger) {
	secrets := []struct {
		key    string
		target *string
		label  string
	}{
		{KeyringAPIKey, &cfg.API.APIKey, "LLM API key"},
		{KeyringGitHubToken, &cfg.Repos.Token, "GitHub token"},
		{KeyringPushoverToken, &cfg.Notify.Token, "Pushover token"},
	}

	for _, s := range secrets {
		if val := GetKeyring(s.key); val != "" {
			*s.target = val
			logger.Debug("secret loaded from OS keyring", "secret", s.label)
			continue
		}
		if *s.target != "" && !IsEnvReference(*s.target) {
			logger.Debug("secret loaded from config/env", "secret", s.label)
			continue
		}
		*s.target = ""
	}

	if cfg.API.APIKey == "" {
		logger.Warn("no LLM API key found. Set OPENAI_API_KEY or run: careerclaw setup")
	}
}

// StoreSecrets moves non-empty secrets from cfg into the keyring and clears
// them from cfg so they are not written to disk.
func StoreSecrets(cfg *Config) error {
	secrets := []struct {
		key    string
		target *string
	}{
		{KeyringAPIKey, &cfg.API.APIKey},
		{KeyringGitHubToken, &cfg.Repos.Token},
		{KeyringPushoverToken, &cfg.Notify.Token},
	}
	for _, s := range secrets {
		if *s.target == "" || IsEnvReference(*s.target) {
			continue
		}
		if err := StoreKeyring(s.key, *s.target); err != nil {
			return fmt.Errorf("storing %s in keyring: %w", s.key, err)
		}
		*s.target = ""
	}
	return nil
}
