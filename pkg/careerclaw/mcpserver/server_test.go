package mcpserver_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/mcpserver"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

func newTestSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	root := t.TempDir()
	for rel, content := range map[string]string{
		"README.md":   "# proj\n",
		"cmd/main.go": "package main\n",
		".git/HEAD":   "ref: refs/heads/main\n",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repos.NewStore(repos.Config{}, nil, nil, logger)
	store.Publish(map[string]string{"alice/proj": root})
	srv := mcpserver.New(repos.NewBrowser(store), "test", logger)

	ctx := context.Background()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	var text strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	return text.String(), res.IsError
}

func TestToolDiscovery(t *testing.T) {
	session := newTestSession(t)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	want := []string{"list_repo_files", "list_repositories", "read_repo_file"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestListRepositories(t *testing.T) {
	session := newTestSession(t)

	text, isErr := callTool(t, session, "list_repositories", map[string]any{})
	if isErr || text != "alice/proj" {
		t.Errorf("list_repositories = %q (error=%v)", text, isErr)
	}
}

func TestListRepoFiles(t *testing.T) {
	session := newTestSession(t)

	text, isErr := callTool(t, session, "list_repo_files", map[string]any{"repo_name": "alice/proj"})
	if isErr {
		t.Fatalf("unexpected error: %s", text)
	}
	got := strings.Split(text, "\n")
	sort.Strings(got)
	if diff := cmp.Diff([]string{"README.md", "cmd/main.go"}, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	text, isErr = callTool(t, session, "list_repo_files", map[string]any{
		"repo_name": "alice/proj",
		"pattern":   "*.go",
	})
	if isErr || text != "cmd/main.go" {
		t.Errorf("filtered listing = %q (error=%v)", text, isErr)
	}
}

func TestReadRepoFile(t *testing.T) {
	session := newTestSession(t)

	text, isErr := callTool(t, session, "read_repo_file", map[string]any{
		"repo_name": "alice/proj",
		"file_path": "cmd/main.go",
	})
	if isErr || text != "package main\n" {
		t.Errorf("read_repo_file = %q (error=%v)", text, isErr)
	}
}

func TestToolErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{
			name:     "unknown repository",
			tool:     "read_repo_file",
			args:     map[string]any{"repo_name": "bob/other", "file_path": "README.md"},
			contains: "Available repositories: alice/proj",
		},
		{
			name:     "path traversal",
			tool:     "read_repo_file",
			args:     map[string]any{"repo_name": "alice/proj", "file_path": "../../etc/passwd"},
			contains: "path traversal",
		},
		{
			name:     "missing directory",
			tool:     "list_repo_files",
			args:     map[string]any{"repo_name": "alice/proj", "directory": "nope"},
			contains: "directory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession(t)
			text, isErr := callTool(t, session, tt.tool, tt.args)
			if !isErr {
				t.Fatalf("expected error result, got %q", text)
			}
			if !strings.Contains(text, tt.contains) {
				t.Errorf("error text %q does not contain %q", text, tt.contains)
			}
		})
	}
}
