package repos

import (
	"context"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Cloner produces a working copy of repoID at dest.
type Cloner interface {
	Clone(ctx context.Context, repoID, dest string) error
}

// GitCloner performs shallow, single-branch clones over HTTPS.
// Authentication goes through basic auth so the token never appears in a URL.
type GitCloner struct {
	baseURL string
	token   string
}

// NewGitCloner creates a cloner for repositories hosted under baseURL.
func NewGitCloner(baseURL, token string) *GitCloner {
	if baseURL == "" {
		baseURL = DefaultCloneBaseURL
	}
	return &GitCloner{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// CloneURL returns the HTTPS clone URL for an "owner/name" identifier.
func (c *GitCloner) CloneURL(repoID string) string {
	return c.baseURL + "/" + repoID + ".git"
}

// Clone fetches only the latest revision (depth 1). It never prompts; the
// caller bounds it with ctx.
func (c *GitCloner) Clone(ctx context.Context, repoID, dest string) error {
	opts := &git.CloneOptions{
		URL:          c.CloneURL(repoID),
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if c.token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: c.token,
		}
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return fmt.Errorf("cloning %s: %w", repoID, err)
	}
	return nil
}
