package repos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// registry is an immutable snapshot. A reload builds a new one and swaps the
// pointer, so readers never observe a half-populated map.
type registry struct {
	paths map[string]string
	ids   []string // sorted
}

func newRegistry(paths map[string]string) *registry {
	r := &registry{paths: make(map[string]string, len(paths))}
	for id, p := range paths {
		r.paths[id] = p
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r
}

// Store owns the repository registry and the scratch directories backing it.
type Store struct {
	cfg    Config
	lister RepoLister
	cloner Cloner
	logger *slog.Logger

	current atomic.Pointer[registry]

	// loadMu serializes Load; scratch is guarded by scratchMu.
	loadMu    sync.Mutex
	scratchMu sync.Mutex
	scratch   []string
}

// NewStore creates a store with an empty registry. lister and cloner may be
// nil when only Publish is used.
func NewStore(cfg Config, lister RepoLister, cloner Cloner, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		cfg:    cfg.Effective(),
		lister: lister,
		cloner: cloner,
		logger: logger.With("component", "repos"),
	}
	s.current.Store(newRegistry(nil))
	return s
}

// NewGitHubStore wires the GitHub lister and the go-git cloner from cfg.
func NewGitHubStore(cfg Config, logger *slog.Logger) (*Store, error) {
	eff := cfg.Effective()
	var lister RepoLister
	if eff.Token != "" {
		gh, err := NewGitHubLister(eff.Token, eff.APIURL)
		if err != nil {
			return nil, err
		}
		lister = gh
	}
	return NewStore(eff, lister, NewGitCloner(eff.CloneBaseURL, eff.Token), logger), nil
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// Lookup returns the clone path for repoID.
func (s *Store) Lookup(repoID string) (string, bool) {
	p, ok := s.current.Load().paths[repoID]
	return p, ok
}

// IDs returns the registered identifiers, sorted.
func (s *Store) IDs() []string {
	ids := s.current.Load().ids
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Len returns the number of registered repositories.
func (s *Store) Len() int {
	return len(s.current.Load().ids)
}

// Snapshot returns a copy of the current identifier → path mapping.
func (s *Store) Snapshot() map[string]string {
	cur := s.current.Load().paths
	out := make(map[string]string, len(cur))
	for id, p := range cur {
		out[id] = p
	}
	return out
}

// Publish atomically replaces the registry with a copy of paths.
func (s *Store) Publish(paths map[string]string) {
	s.current.Store(newRegistry(paths))
}

// Load resolves the repository list, shallow-clones each repository into a
// fresh scratch directory and publishes the successful clones. A missing
// token or an empty list publishes an empty registry without touching disk.
// A failed clone is logged and skipped; it never aborts the others.
func (s *Store) Load(ctx context.Context) map[string]string {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.cfg.Token == "" {
		s.logger.Info("GITHUB_TOKEN not set, skipping repository loading")
		s.Publish(nil)
		return map[string]string{}
	}

	ids := ResolveRepositoryList(ctx, s.lister, s.cfg.List, s.logger)
	if len(ids) == 0 || s.cloner == nil {
		s.Publish(nil)
		return map[string]string{}
	}

	scratch, err := s.newScratchDir()
	if err != nil {
		s.logger.Error("creating scratch directory failed", "error", err)
		s.Publish(nil)
		return map[string]string{}
	}

	paths := make(map[string]string, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("repository loading interrupted", "error", err)
			break
		}
		if !ValidRepoID(id) {
			s.logger.Warn("skipping malformed repository identifier", "repo", id)
			continue
		}
		dest := filepath.Join(scratch, strings.ReplaceAll(id, "/", "_"))
		if err := s.cloneOne(ctx, id, dest); err != nil {
			s.logger.Warn("clone failed, skipping repository", "repo", id, "error", err)
			_ = os.RemoveAll(dest)
			continue
		}
		paths[id] = dest
	}

	s.Publish(paths)
	s.logger.Info("repositories loaded", "requested", len(ids), "loaded", len(paths))
	return s.Snapshot()
}

func (s *Store) cloneOne(ctx context.Context, id, dest string) error {
	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.CloneTimeout())
	defer cancel()
	return s.cloner.Clone(cloneCtx, id, dest)
}

// newScratchDir creates and tracks a scratch directory so Close removes it
// no matter how the caller exits.
func (s *Store) newScratchDir() (string, error) {
	dir, err := os.MkdirTemp(s.cfg.ScratchParent, "careerclaw-repos-")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	s.scratchMu.Lock()
	s.scratch = append(s.scratch, dir)
	s.scratchMu.Unlock()
	return dir, nil
}

// Close empties the registry and removes every scratch directory created by
// Load. Removal is best-effort: failures are logged and returned joined, and
// callers normally ignore them.
func (s *Store) Close() error {
	s.Publish(nil)

	s.scratchMu.Lock()
	dirs := s.scratch
	s.scratch = nil
	s.scratchMu.Unlock()

	var errs []error
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("removing scratch directory failed", "dir", dir, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
