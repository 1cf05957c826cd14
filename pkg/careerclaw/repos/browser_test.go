package repos

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestBrowser(t *testing.T, paths map[string]string) *Browser {
	t.Helper()
	store := NewStore(Config{}, nil, nil, testLogger())
	store.Publish(paths)
	return NewBrowser(store)
}

func TestListFilesSkipsGitMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Hello")
	writeFile(t, filepath.Join(dir, ".git", "config"), "[core]")

	b := newTestBrowser(t, map[string]string{"alice/proj": dir})

	got, err := b.ListFiles("alice/proj", ".", "")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if got != "README.md" {
		t.Errorf("ListFiles = %q, want %q", got, "README.md")
	}

	content, err := b.ReadFile("alice/proj", "README.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != "# Hello" {
		t.Errorf("ReadFile = %q, want %q", content, "# Hello")
	}
}

func TestUnknownRepository(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		b := newTestBrowser(t, nil)
		_, err := b.ListFiles("bob/none", ".", "")
		if !errors.Is(err, ErrRepoNotFound) {
			t.Fatalf("err = %v, want ErrRepoNotFound", err)
		}
		if !strings.Contains(err.Error(), "none") {
			t.Errorf("error %q should mention none", err)
		}
		_, err = b.ReadFile("bob/none", "README.md")
		if !errors.Is(err, ErrRepoNotFound) {
			t.Fatalf("ReadFile err = %v, want ErrRepoNotFound", err)
		}
	})

	t.Run("lists known ids", func(t *testing.T) {
		b := newTestBrowser(t, map[string]string{
			"zed/b":   t.TempDir(),
			"alice/a": t.TempDir(),
		})
		_, err := b.ReadFile("bob/none", "x")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "alice/a, zed/b") {
			t.Errorf("error %q should list sorted ids", err)
		}
	})
}

func TestTraversalRejected(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "clone")
	writeFile(t, filepath.Join(root, "ok.txt"), "ok")
	writeFile(t, filepath.Join(parent, "clone-sibling", "secret.txt"), "secret")
	writeFile(t, filepath.Join(parent, "secret.txt"), "secret")

	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	cases := []string{
		"../../etc/passwd",
		"..",
		"../secret.txt",
		"../clone-sibling/secret.txt",
		"sub/../../secret.txt",
		"/etc/passwd",
		filepath.Join(parent, "secret.txt"),
	}
	for _, arg := range cases {
		t.Run(arg, func(t *testing.T) {
			if _, err := b.ReadFile("alice/proj", arg); !errors.Is(err, ErrPathTraversal) {
				t.Errorf("ReadFile(%q) err = %v, want ErrPathTraversal", arg, err)
			}
			if _, err := b.ListFiles("alice/proj", arg, ""); !errors.Is(err, ErrPathTraversal) {
				t.Errorf("ListFiles(%q) err = %v, want ErrPathTraversal", arg, err)
			}
		})
	}
}

func TestAbsolutePathInsideRootAllowed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "abc")

	b := newTestBrowser(t, map[string]string{"alice/proj": root})
	got, err := b.ReadFile("alice/proj", filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "abc" {
		t.Errorf("ReadFile = %q, want abc", got)
	}
}

func TestSymlinkEscapeRejected(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "clone")
	outside := filepath.Join(parent, "outside")
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")
	writeFile(t, filepath.Join(outside, "secret.txt"), "secret")

	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	if _, err := b.ReadFile("alice/proj", "link.txt"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("ReadFile(link.txt) err = %v, want ErrPathTraversal", err)
	}
	if _, err := b.ListFiles("alice/proj", "linkdir", ""); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("ListFiles(linkdir) err = %v, want ErrPathTraversal", err)
	}
}

func TestListFilesFilters(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"main.go",
		"cmd/app/main.go",
		"cmd/app/app.exe",
		"lib/util.py",
		"lib/util.pyc",
		"lib/__pycache__/util.cpython.pyc",
		"lib/deep/node_modules/pkg/index.js",
		"web/node_modules/react/index.js",
		"web/src/.cache/x.js",
		"web/src/index.js",
		"build/out.txt",
		"vendor/dep/dep.go",
		".github/workflows/ci.yml",
	} {
		writeFile(t, filepath.Join(root, rel), "x")
	}

	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	tests := []struct {
		name      string
		directory string
		pattern   string
		want      []string
	}{
		{
			name:      "all",
			directory: ".",
			want:      []string{"cmd/app/main.go", "lib/util.py", "main.go", "web/src/index.js"},
		},
		{
			name:      "glob",
			directory: ".",
			pattern:   "*.go",
			want:      []string{"cmd/app/main.go", "main.go"},
		},
		{
			name:      "substring",
			directory: ".",
			pattern:   "util",
			want:      []string{"lib/util.py"},
		},
		{
			name:      "subdirectory keeps root-relative paths",
			directory: "cmd",
			want:      []string{"cmd/app/main.go"},
		},
		{
			name:      "empty directory argument",
			directory: "",
			pattern:   "index",
			want:      []string{"web/src/index.js"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.ListFiles("alice/proj", tt.directory, tt.pattern)
			if err != nil {
				t.Fatalf("ListFiles: %v", err)
			}
			if diff := cmp.Diff(tt.want, strings.Split(got, "\n")); diff != "" {
				t.Errorf("ListFiles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListFilesSkippedDirectoryCanBeStart(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build", "gen.txt"), "x")

	b := newTestBrowser(t, map[string]string{"alice/proj": root})
	got, err := b.ListFiles("alice/proj", "build", "")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if got != "build/gen.txt" {
		t.Errorf("ListFiles = %q, want build/gen.txt", got)
	}
}

func TestListFilesNoMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	b := newTestBrowser(t, map[string]string{"alice/proj": root})
	got, err := b.ListFiles("alice/proj", ".", "*.rs")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if got != "No files found in alice/proj/." {
		t.Errorf("ListFiles = %q", got)
	}
}

func TestListFilesCap(t *testing.T) {
	tests := []struct {
		name       string
		files      int
		wantLines  int
		wantMarker bool
	}{
		{"under cap", 10, 10, false},
		{"one below cap", 199, 199, false},
		{"exactly cap", 200, 201, true},
		{"over cap", 250, 201, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for i := 0; i < tt.files; i++ {
				writeFile(t, filepath.Join(root, fmt.Sprintf("f%03d.txt", i)), "x")
			}
			b := newTestBrowser(t, map[string]string{"alice/proj": root})

			got, err := b.ListFiles("alice/proj", ".", "")
			if err != nil {
				t.Fatalf("ListFiles: %v", err)
			}
			lines := strings.Split(got, "\n")
			if len(lines) != tt.wantLines {
				t.Errorf("lines = %d, want %d", len(lines), tt.wantLines)
			}
			hasMarker := lines[len(lines)-1] == "... (showing first 200 files)"
			if hasMarker != tt.wantMarker {
				t.Errorf("marker = %v, want %v", hasMarker, tt.wantMarker)
			}
		})
	}
}

func TestWrongKindAndMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.txt"), "x")

	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	if _, err := b.ListFiles("alice/proj", "src/a.txt", ""); !errors.Is(err, ErrWrongKind) {
		t.Errorf("ListFiles(file) err = %v, want ErrWrongKind", err)
	}
	if _, err := b.ListFiles("alice/proj", "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListFiles(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := b.ReadFile("alice/proj", "src"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("ReadFile(dir) err = %v, want ErrWrongKind", err)
	}
	if _, err := b.ReadFile("alice/proj", "src/missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadFile(missing) err = %v, want ErrNotFound", err)
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	for _, content := range []string{"", "line1\nline2\n", "unicode: héllo 世界", "tabs\tand\r\nCRLF"} {
		writeFile(t, filepath.Join(root, "f.txt"), content)
		got, err := b.ReadFile("alice/proj", "f.txt")
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if got != content {
			t.Errorf("ReadFile = %q, want %q", got, content)
		}
	}
}

func TestReadFileDropsInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "bin.txt"), []byte("ab\xffcd"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := newTestBrowser(t, map[string]string{"alice/proj": root})

	got, err := b.ReadFile("alice/proj", "bin.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "abcd" {
		t.Errorf("ReadFile = %q, want abcd", got)
	}
}

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/tmp/repo")
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/repo", true},
		{"/tmp/repo/a", true},
		{"/tmp/repo/a/b", true},
		{"/tmp/repo-other", false},
		{"/tmp/repository/a", false},
		{"/tmp", false},
	}
	for _, tt := range tests {
		if got := within(root, filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("within(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
