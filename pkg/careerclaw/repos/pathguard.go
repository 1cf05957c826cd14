package repos

import (
	"errors"
	"path/filepath"
	"strings"
)

// Sentinel errors for errors.Is checks. Browser errors carry a descriptive
// message and unwrap to one of these.
var (
	ErrRepoNotFound  = errors.New("repository not found")
	ErrPathTraversal = errors.New("invalid path (path traversal attempt)")
	ErrNotFound      = errors.New("path not found")
	ErrWrongKind     = errors.New("wrong entry kind")
)

type browseError struct {
	kind error
	msg  string
}

func (e *browseError) Error() string { return e.msg }
func (e *browseError) Unwrap() error { return e.kind }

// within reports whether p equals root or lies beneath it. Both must be clean.
func within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// candidatePath joins rel onto root lexically and rejects anything that
// escapes it. Absolute arguments are taken as-is so they get rejected unless
// they already point inside root. No filesystem access happens here.
func candidatePath(root, rel string) (string, error) {
	root = filepath.Clean(root)
	var candidate string
	if filepath.IsAbs(rel) {
		candidate = filepath.Clean(rel)
	} else {
		candidate = filepath.Join(root, rel)
	}
	if !within(root, candidate) {
		return "", ErrPathTraversal
	}
	return candidate, nil
}

// resolveExisting follows symlinks in both root and candidate and re-checks
// containment, so a link inside a clone cannot point outside it.
func resolveExisting(root, candidate string) (resolvedRoot, resolved string, err error) {
	resolvedRoot, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", "", ErrNotFound
	}
	resolved, err = filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", "", ErrNotFound
	}
	if !within(resolvedRoot, resolved) {
		return "", "", ErrPathTraversal
	}
	return resolvedRoot, resolved, nil
}
