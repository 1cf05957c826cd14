// Package copilot – config.go defines the configuration structures for the
// CareerClaw assistant.
package copilot

import (
	"github.com/jholhewres/careerclaw/pkg/careerclaw/notify"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/persona"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

const (
	// DefaultName is the owner name used when none is configured.
	DefaultName = "Seung-Gu"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the OpenAI-compatible API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultWebUIAddress is the listen address of the chat widget.
	DefaultWebUIAddress = ":7860"
)

// Config holds all assistant configuration.
type Config struct {
	// Name is the owner the assistant speaks for.
	Name string `yaml:"name"`

	// Model is the chat completion model (e.g. "gpt-4o-mini").
	Model string `yaml:"model"`

	// API configures the LLM provider endpoint.
	API APIConfig `yaml:"api"`

	// Persona points at the summary and profile files.
	Persona persona.Config `yaml:"persona"`

	// Repos configures repository loading and browsing.
	Repos repos.Config `yaml:"repos"`

	// Notify configures the Pushover sink.
	Notify notify.Config `yaml:"notify"`

	// Agent configures the agent loop.
	Agent AgentConfig `yaml:"agent"`

	// WebUI configures the chat widget server.
	WebUI WebUIConfig `yaml:"webui"`

	// Tracing configures OpenTelemetry export.
	Tracing TracingConfig `yaml:"tracing"`

	// Logging configures slog output.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the OpenAI-compatible endpoint.
type APIConfig struct {
	// BaseURL is the API root (default: https://api.openai.com/v1).
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates requests. Prefer the keyring or OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`

	// TimeoutSeconds bounds a single completion call (default: 60).
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// WebUIConfig configures the chat widget server.
type WebUIConfig struct {
	// Address is the listen address (default: ":7860").
	Address string `yaml:"address"`

	// MaxBodyBytes caps /api/chat request bodies (default: 1 MiB).
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	// Enabled installs an SDK tracer provider (default: true). Set false to
	// leave the global no-op provider in place.
	Enabled bool `yaml:"enabled"`

	// OTLPEndpoint is the collector gRPC endpoint (host:port). Empty keeps
	// spans in-process.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as service.name (default: "careerclaw").
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info).
	Level string `yaml:"level"`

	// Format is json or text (default: json).
	Format string `yaml:"format"`
}

// DefaultConfig returns a config usable with only environment variables set.
func DefaultConfig() *Config {
	return &Config{
		Name:    DefaultName,
		Model:   DefaultModel,
		API:     APIConfig{BaseURL: DefaultBaseURL, TimeoutSeconds: 60},
		Persona: persona.DefaultConfig(),
		Agent:   DefaultAgentConfig(),
		WebUI: WebUIConfig{
			Address:      DefaultWebUIAddress,
			MaxBodyBytes: 1 << 20,
		},
		Tracing: TracingConfig{Enabled: true, ServiceName: "careerclaw"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}
