package repos

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-github/v72/github"
)

// repoIDPattern accepts "owner/name" with GitHub's allowed characters.
var repoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ValidRepoID reports whether id is a well-formed "owner/name" identifier
// that can safely name a directory.
func ValidRepoID(id string) bool {
	if !repoIDPattern.MatchString(id) {
		return false
	}
	for _, part := range strings.Split(id, "/") {
		if part == "." || part == ".." {
			return false
		}
	}
	return true
}

// RepoLister lists repositories owned by the authenticated user, one page at a time.
type RepoLister interface {
	ListOwnedRepos(ctx context.Context, page, perPage int) ([]string, error)
}

// ParseRepoList splits a comma-separated list, trimming entries and dropping empties.
func ParseRepoList(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolveRepositoryList returns the explicit list when given, otherwise pages
// through the lister until a short or empty page. Any listing failure yields
// an empty result; the failure is logged, never returned.
func ResolveRepositoryList(ctx context.Context, lister RepoLister, explicit string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if ids := ParseRepoList(explicit); len(ids) > 0 {
		return ids
	}
	if lister == nil {
		return nil
	}

	var ids []string
	for page := 1; ; page++ {
		names, err := lister.ListOwnedRepos(ctx, page, PageSize)
		if err != nil {
			logger.Error("listing repositories failed",
				"page", page,
				"error", err,
				"hint", "set GITHUB_REPOS explicitly or check GITHUB_TOKEN permissions",
			)
			return nil
		}
		ids = append(ids, names...)
		if len(names) < PageSize {
			break
		}
	}

	logger.Info("auto-fetched repositories", "count", len(ids))
	return ids
}

// GitHubLister lists repositories through the GitHub REST API.
type GitHubLister struct {
	client *github.Client
}

// NewGitHubLister creates a lister authenticated with a bearer token.
// apiURL overrides the API base (GitHub Enterprise or tests).
func NewGitHubLister(token, apiURL string) (*GitHubLister, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if apiURL != "" {
		base, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = base
	}
	return &GitHubLister{client: client}, nil
}

// ListOwnedRepos returns the "owner/name" identifiers on one page, most
// recently updated first.
func (l *GitHubLister) ListOwnedRepos(ctx context.Context, page, perPage int) ([]string, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	repos, _, err := l.client.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("GitHub API: %w", err)
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		if name := r.GetFullName(); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
