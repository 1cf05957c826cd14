// Package copilot – loader.go loads configuration from YAML files and the
// environment. .env files are honoured and ${VAR} references are expanded
// before parsing.
package copilot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR}, ${VAR:-default}, ${VAR:?error} and bare $VAR.
//
// Capture groups: 1 name, 2 modifier ("-" or "?"), 3 modifier value,
// 4 bare name.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(-|\?)([^}]*))?\}|\$([A-Z_][A-Z0-9_]*)`)

// LoadConfigFromFile reads and parses a YAML configuration file, then
// overlays secrets from the environment and resolves relative paths
// against the file's directory.
func LoadConfigFromFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded, err := expandEnvVarsWithValidation(string(data))
	if err != nil {
		return nil, fmt.Errorf("expanding environment variables: %w", err)
	}

	cfg, err := ParseConfig([]byte(expanded))
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	resolveRelativePaths(cfg, path)
	checkFilePermissions(path)

	return cfg, nil
}

// LoadConfigFromEnv builds a config from defaults and environment variables
// alone, for running without a config file.
func LoadConfigFromEnv() *Config {
	loadEnvFiles()
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// ParseConfig parses YAML bytes on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// SaveConfigToFile writes cfg as YAML with owner-only permissions. Secrets
// that match an environment variable are written as ${VAR} references.
func SaveConfigToFile(cfg *Config, path string) error {
	sanitized := *cfg
	sanitized.API.APIKey = sanitizeSecret(cfg.API.APIKey, "OPENAI_API_KEY")
	sanitized.Repos.Token = sanitizeSecret(cfg.Repos.Token, "GITHUB_TOKEN")
	sanitized.Notify.Token = sanitizeSecret(cfg.Notify.Token, "PUSHOVER_TOKEN")

	data, err := yaml.Marshal(&sanitized)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FindConfigFile searches for config files in standard locations.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"careerclaw.yaml",
		"careerclaw.yml",
		"configs/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ---------- Internal ----------

// loadEnvFiles loads .env files. godotenv never overwrites variables that
// are already set.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// expandEnvVars replaces environment references in input. Unset ${VAR} and
// $VAR references are kept verbatim; an unset ${VAR:?msg} becomes an
// "ERROR:VAR:msg" marker picked up by expandEnvVarsWithValidation.
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		varName, modifier, value, bare := sub[1], sub[2], sub[3], sub[4]

		if bare != "" {
			if val, ok := os.LookupEnv(bare); ok {
				return val
			}
			return match
		}

		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		switch modifier {
		case "?":
			if value == "" {
				value = "required environment variable not set"
			}
			return "ERROR:" + varName + ":" + value
		case "-":
			return value
		}
		return match
	})
}

// expandEnvVarsWithValidation is like expandEnvVars but fails on the first
// unset ${VAR:?error} reference.
func expandEnvVarsWithValidation(input string) (string, error) {
	result := expandEnvVars(input)
	idx := strings.Index(result, "ERROR:")
	if idx < 0 {
		return result, nil
	}

	rest := result[idx+len("ERROR:"):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	name, msg, ok := strings.Cut(rest, ":")
	if !ok {
		return "", fmt.Errorf("config error: malformed error marker")
	}
	return "", fmt.Errorf("config error: %s - %s", name, msg)
}

// applyEnvOverrides fills config fields from the environment. Secrets only
// replace empty or unexpanded values; GITHUB_REPOS and CAREERCLAW_NAME
// always win when set.
func applyEnvOverrides(cfg *Config) {
	if cfg.API.APIKey == "" || IsEnvReference(cfg.API.APIKey) {
		cfg.API.APIKey = firstEnv("CAREERCLAW_API_KEY", "OPENAI_API_KEY")
	}
	if cfg.Repos.Token == "" || IsEnvReference(cfg.Repos.Token) {
		cfg.Repos.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Notify.Token == "" || IsEnvReference(cfg.Notify.Token) {
		cfg.Notify.Token = os.Getenv("PUSHOVER_TOKEN")
	}
	if cfg.Notify.User == "" || IsEnvReference(cfg.Notify.User) {
		cfg.Notify.User = os.Getenv("PUSHOVER_USER")
	}
	if v := os.Getenv("GITHUB_REPOS"); v != "" {
		cfg.Repos.List = v
	}
	if v := os.Getenv("CAREERCLAW_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("CAREERCLAW_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CAREERCLAW_ADDRESS"); v != "" {
		cfg.WebUI.Address = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" && cfg.Tracing.OTLPEndpoint == "" {
		cfg.Tracing.OTLPEndpoint = v
	}
	if v, err := strconv.ParseBool(os.Getenv("CAREERCLAW_TRACING")); err == nil {
		cfg.Tracing.Enabled = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// resolveRelativePaths makes persona and scratch paths absolute relative to
// the config file's directory.
func resolveRelativePaths(cfg *Config, configPath string) {
	configDir := filepath.Dir(configPath)
	cfg.Persona.SummaryFile = resolvePathFromConfig(cfg.Persona.SummaryFile, configDir)
	cfg.Persona.ProfileFile = resolvePathFromConfig(cfg.Persona.ProfileFile, configDir)
	cfg.Repos.ScratchParent = resolvePathFromConfig(cfg.Repos.ScratchParent, configDir)
}

// resolvePathFromConfig expands ~ and anchors relative paths at configDir.
func resolvePathFromConfig(path, configDir string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		path = filepath.Join(home, path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

// sanitizeSecret replaces value with a ${envVar} reference when the
// environment already holds the same value.
func sanitizeSecret(value, envVar string) string {
	if value == "" || IsEnvReference(value) {
		return value
	}
	if os.Getenv(envVar) == value {
		return "${" + envVar + "}"
	}
	return value
}

// IsEnvReference checks if a string is an environment variable reference.
func IsEnvReference(s string) bool {
	return strings.HasPrefix(s, "$")
}

// checkFilePermissions warns if the config file is group or world readable.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode().Perm()
	if mode&0o044 != 0 {
		slog.Warn("config file has open permissions, consider restricting",
			"path", path,
			"current", fmt.Sprintf("%04o", mode),
			"fix", fmt.Sprintf("chmod 600 %s", path),
		)
	}
}
