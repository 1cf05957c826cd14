// Package mcpserver exposes the repository browser over the Model Context
// Protocol so editors and other agents can read the same code the career
// assistant reads.
package mcpserver

import (
	"context"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

const instructions = "Read-only access to the cloned GitHub repositories of the portfolio owner. " +
	"Call list_repositories first, then list_repo_files to find files and read_repo_file to read them."

// Server wraps the MCP SDK server around a repository browser.
type Server struct {
	MCPServer *sdkmcp.Server

	browser *repos.Browser
	logger  *slog.Logger
}

// New creates an MCP server with the repository tools registered.
func New(browser *repos.Browser, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		browser: browser,
		logger:  logger.With("component", "mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "careerclaw", Version: version},
		&sdkmcp.ServerOptions{Instructions: instructions},
	)
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting", "transport", "stdio", "repositories", s.browser.Store().Len())
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_repositories",
		Description: "List the repositories available for browsing, as owner/name.",
	}, s.handleListRepositories)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        copilot.ToolListRepoFiles.String(),
		Description: copilot.ToolListRepoFiles.Definition().Function.Description,
	}, s.handleListRepoFiles)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        copilot.ToolReadRepoFile.String(),
		Description: copilot.ToolReadRepoFile.Definition().Function.Description,
	}, s.handleReadRepoFile)
}

type listRepositoriesInput struct{}

type listRepoFilesInput struct {
	RepoName  string `json:"repo_name" jsonschema:"repository in owner/name form"`
	Directory string `json:"directory,omitempty" jsonschema:"directory inside the repository (default: root)"`
	Pattern   string `json:"pattern,omitempty" jsonschema:"glob or substring filter on file names"`
}

type readRepoFileInput struct {
	RepoName string `json:"repo_name" jsonschema:"repository in owner/name form"`
	FilePath string `json:"file_path" jsonschema:"file path relative to the repository root"`
}

func (s *Server) handleListRepositories(_ context.Context, _ *sdkmcp.CallToolRequest, _ listRepositoriesInput) (*sdkmcp.CallToolResult, any, error) {
	ids := s.browser.Store().IDs()
	if len(ids) == 0 {
		return textResult("No repositories are loaded."), nil, nil
	}
	return textResult(strings.Join(ids, "\n")), nil, nil
}

func (s *Server) handleListRepoFiles(_ context.Context, _ *sdkmcp.CallToolRequest, in listRepoFilesInput) (*sdkmcp.CallToolResult, any, error) {
	if in.Directory == "" {
		in.Directory = copilot.DefaultDirectory
	}
	out, err := s.browser.ListFiles(in.RepoName, in.Directory, in.Pattern)
	if err != nil {
		s.logger.Warn("list_repo_files failed", "repo", in.RepoName, "directory", in.Directory, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(out), nil, nil
}

func (s *Server) handleReadRepoFile(_ context.Context, _ *sdkmcp.CallToolRequest, in readRepoFileInput) (*sdkmcp.CallToolResult, any, error) {
	out, err := s.browser.ReadFile(in.RepoName, in.FilePath)
	if err != nil {
		s.logger.Warn("read_repo_file failed", "repo", in.RepoName, "path", in.FilePath, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(out), nil, nil
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "Error: " + err.Error()}},
	}
}
