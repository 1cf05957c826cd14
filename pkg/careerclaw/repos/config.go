// Package repos clones the owner's private repositories into a scratch
// directory and lets the assistant browse them read-only.
//
// Store owns the identifier → clone path registry and its scratch storage.
// Browser answers list/read requests against the current registry snapshot,
// treating every argument as untrusted.
package repos

import "time"

const (
	// PageSize is the page size used when listing the owner's repositories.
	PageSize = 100

	// DefaultCloneTimeout bounds a single shallow clone.
	DefaultCloneTimeout = 60 * time.Second

	// DefaultMaxListEntries caps list results before the truncation marker.
	DefaultMaxListEntries = 200

	// DefaultCloneBaseURL is the clone origin for "owner/name" identifiers.
	DefaultCloneBaseURL = "https://github.com"
)

// DefaultSkipDirs are pruned from listings in addition to any dot-directory.
var DefaultSkipDirs = []string{
	".git", "node_modules", "__pycache__", "venv", ".venv",
	"dist", "build", ".pytest_cache", "target", "out", "vendor",
}

// DefaultSkipExtensions are compiled or binary artifacts hidden from listings.
var DefaultSkipExtensions = []string{
	".pyc", ".pyo", ".so", ".dylib", ".dll", ".exe", ".bin",
	".o", ".a", ".class", ".jar",
}

// Config configures repository loading and browsing.
type Config struct {
	// Token is the GitHub credential (GITHUB_TOKEN). Empty disables repositories.
	Token string `yaml:"token"`

	// List is an optional comma-separated "owner/name" list (GITHUB_REPOS).
	// Empty means every repository owned by the token's user.
	List string `yaml:"list"`

	// APIURL overrides the GitHub REST base URL (GitHub Enterprise, tests).
	APIURL string `yaml:"api_url"`

	// CloneBaseURL is prefixed to "owner/name.git" to build clone URLs.
	CloneBaseURL string `yaml:"clone_base_url"`

	// CloneTimeoutSeconds bounds each clone (default: 60).
	CloneTimeoutSeconds int `yaml:"clone_timeout_seconds"`

	// ScratchParent is where the scratch directory is created (default: OS temp).
	ScratchParent string `yaml:"scratch_parent"`

	// MaxListEntries caps list_repo_files output (default: 200).
	MaxListEntries int `yaml:"max_list_entries"`

	// SkipDirs replaces DefaultSkipDirs when non-empty.
	SkipDirs []string `yaml:"skip_dirs"`

	// SkipExtensions replaces DefaultSkipExtensions when non-empty.
	SkipExtensions []string `yaml:"skip_extensions"`
}

// Effective returns the config with defaults filled in.
func (c Config) Effective() Config {
	out := c
	if out.CloneBaseURL == "" {
		out.CloneBaseURL = DefaultCloneBaseURL
	}
	if out.CloneTimeoutSeconds <= 0 {
		out.CloneTimeoutSeconds = int(DefaultCloneTimeout / time.Second)
	}
	if out.MaxListEntries <= 0 {
		out.MaxListEntries = DefaultMaxListEntries
	}
	if len(out.SkipDirs) == 0 {
		out.SkipDirs = DefaultSkipDirs
	}
	if len(out.SkipExtensions) == 0 {
		out.SkipExtensions = DefaultSkipExtensions
	}
	return out
}

// CloneTimeout returns the per-clone timeout.
func (c Config) CloneTimeout() time.Duration {
	return time.Duration(c.Effective().CloneTimeoutSeconds) * time.Second
}
