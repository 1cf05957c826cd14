package repos

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Browser lists and reads files inside registered clones. It holds no path
// state of its own: every call looks the repository up in the current store
// snapshot and re-runs the containment checks.
type Browser struct {
	store      *Store
	skipDirs   map[string]bool
	skipExts   []string
	maxEntries int
}

// NewBrowser creates a browser over store using the store's configuration.
func NewBrowser(store *Store) *Browser {
	cfg := store.Config().Effective()
	skipDirs := make(map[string]bool, len(cfg.SkipDirs))
	for _, d := range cfg.SkipDirs {
		skipDirs[d] = true
	}
	return &Browser{
		store:      store,
		skipDirs:   skipDirs,
		skipExts:   cfg.SkipExtensions,
		maxEntries: cfg.MaxListEntries,
	}
}

// Store returns the backing store.
func (b *Browser) Store() *Store {
	return b.store
}

func (b *Browser) shouldSkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || b.skipDirs[name]
}

func (b *Browser) shouldSkipFile(name string) bool {
	for _, ext := range b.skipExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// matchesPattern accepts a shell glob match or a literal substring.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}
	return strings.Contains(name, pattern)
}

func (b *Browser) repoRoot(repoID string) (string, error) {
	root, ok := b.store.Lookup(repoID)
	if !ok {
		available := "none"
		if ids := b.store.IDs(); len(ids) > 0 {
			available = strings.Join(ids, ", ")
		}
		return "", &browseError{
			kind: ErrRepoNotFound,
			msg:  fmt.Sprintf("repository '%s' not found. Available repositories: %s", repoID, available),
		}
	}
	return root, nil
}

// ListFiles lists files under directory (relative to the clone root) in
// depth-first order, pruning dot and noise directories and binary files.
// A non-empty pattern keeps names matching it as a glob or containing it.
// Output is newline-joined, root-relative, slash-separated and capped at
// the configured maximum. Reaching the cap stops the walk and appends one
// truncation marker line.
func (b *Browser) ListFiles(repoID, directory, pattern string) (string, error) {
	if directory == "" {
		directory = "."
	}

	root, err := b.repoRoot(repoID)
	if err != nil {
		return "", err
	}

	candidate, err := candidatePath(root, directory)
	if err != nil {
		return "", err
	}

	resolvedRoot, start, err := resolveExisting(root, candidate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", &browseError{kind: ErrNotFound, msg: fmt.Sprintf("directory not found in %s: %s", repoID, directory)}
		}
		return "", err
	}

	info, err := os.Stat(start)
	if err != nil {
		return "", &browseError{kind: ErrNotFound, msg: fmt.Sprintf("directory not found in %s: %s", repoID, directory)}
	}
	if !info.IsDir() {
		return "", &browseError{kind: ErrWrongKind, msg: fmt.Sprintf("path is not a directory in %s: %s", repoID, directory)}
	}

	var files []string
	truncated := false
	walkErr := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != start && b.shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if b.shouldSkipFile(name) || !matchesPattern(name, pattern) {
			return nil
		}

		rel, err := filepath.Rel(resolvedRoot, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		if len(files) >= b.maxEntries {
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("listing files in %s: %w", repoID, walkErr)
	}

	if len(files) == 0 {
		return fmt.Sprintf("No files found in %s/%s", repoID, directory), nil
	}
	if truncated {
		files = append(files, fmt.Sprintf("... (showing first %d files)", b.maxEntries))
	}
	return strings.Join(files, "\n"), nil
}

// ReadFile returns the text of one regular file inside the clone. Invalid
// UTF-8 sequences are dropped rather than failing the read.
func (b *Browser) ReadFile(repoID, filePath string) (string, error) {
	root, err := b.repoRoot(repoID)
	if err != nil {
		return "", err
	}

	candidate, err := candidatePath(root, filePath)
	if err != nil {
		return "", err
	}

	_, resolved, err := resolveExisting(root, candidate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", &browseError{kind: ErrNotFound, msg: fmt.Sprintf("file not found in %s: %s", repoID, filePath)}
		}
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &browseError{kind: ErrNotFound, msg: fmt.Sprintf("file not found in %s: %s", repoID, filePath)}
	}
	if !info.Mode().IsRegular() {
		return "", &browseError{kind: ErrWrongKind, msg: fmt.Sprintf("path is not a file in %s: %s", repoID, filePath)}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("reading %s from %s: %w", filePath, repoID, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
