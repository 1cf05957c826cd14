// Package copilot – tools.go defines the four operations the assistant may
// invoke: two notification tools and two repository browsing tools.
package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/notify"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// ToolKind identifies one of the assistant's tools.
type ToolKind int

const (
	ToolRecordUserDetails ToolKind = iota
	ToolRecordUnknownQuestion
	ToolListRepoFiles
	ToolReadRepoFile
)

// String returns the tool name the model calls.
func (k ToolKind) String() string {
	if k < 0 || int(k) >= len(toolSpecs) {
		return fmt.Sprintf("ToolKind(%d)", int(k))
	}
	return toolSpecs[k].name
}

// ParseToolKind maps a tool name back to its kind.
func ParseToolKind(name string) (ToolKind, bool) {
	for i, spec := range toolSpecs {
		if spec.name == name {
			return ToolKind(i), true
		}
	}
	return 0, false
}

// Default argument values applied when the model omits a field.
const (
	DefaultContactName  = "Name not provided"
	DefaultContactNotes = "not provided"
	DefaultDirectory    = "."
)

// RecordUserDetailsArgs are the arguments of record_user_details.
type RecordUserDetailsArgs struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// RecordUnknownQuestionArgs are the arguments of record_unknown_question.
type RecordUnknownQuestionArgs struct {
	Question string `json:"question"`
}

// ListRepoFilesArgs are the arguments of list_repo_files.
type ListRepoFilesArgs struct {
	RepoName  string `json:"repo_name"`
	Directory string `json:"directory"`
	Pattern   string `json:"pattern"`
}

// ReadRepoFileArgs are the arguments of read_repo_file.
type ReadRepoFileArgs struct {
	RepoName string `json:"repo_name"`
	FilePath string `json:"file_path"`
}

type toolSpec struct {
	name        string
	description string
	parameters  map[string]any
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// toolSpecs is indexed by ToolKind.
var toolSpecs = [...]toolSpec{
	ToolRecordUserDetails: {
		name:        "record_user_details",
		description: "Record that a user is interested in being in touch and provided an email address.",
		parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email": stringProp("The email address of this user"),
				"name":  stringProp("The user's name, if provided"),
				"notes": stringProp("Any extra context from the conversation"),
			},
			"required":             []string{"email"},
			"additionalProperties": false,
		},
	},
	ToolRecordUnknownQuestion: {
		name:        "record_unknown_question",
		description: "Record any question the assistant couldn't answer.",
		parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": stringProp("The question that could not be answered"),
			},
			"required":             []string{"question"},
			"additionalProperties": false,
		},
	},
	ToolListRepoFiles: {
		name: "list_repo_files",
		description: "List files in a GitHub repository directory, optionally filtered by pattern. " +
			"ALWAYS use this tool FIRST when users ask about private projects, " +
			"then use read_repo_file to read specific files based on what you found.",
		parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"repo_name": stringProp(`The repository name in format "owner/repo"`),
				"directory": stringProp(`Relative directory path from repo root (default: ".", e.g. "src", "docs")`),
				"pattern":   stringProp(`Optional pattern to filter files (e.g. "*.md", "README*", "log")`),
			},
			"required":             []string{"repo_name"},
			"additionalProperties": false,
		},
	},
	ToolReadRepoFile: {
		name: "read_repo_file",
		description: "Read a specific file from a GitHub repository. " +
			"Use this AFTER list_repo_files to read README, documentation or source files.",
		parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"repo_name": stringProp(`The repository name in format "owner/repo"`),
				"file_path": stringProp(`Relative path to the file from repo root (e.g. "README.md", "src/main.py")`),
			},
			"required":             []string{"repo_name", "file_path"},
			"additionalProperties": false,
		},
	},
}

// Definition returns the function-calling definition for k.
func (k ToolKind) Definition() ToolDefinition {
	spec := toolSpecs[k]
	return MakeToolDefinition(spec.name, spec.description, spec.parameters)
}

// Toolbox implements the tools against a notifier and a repository browser.
type Toolbox struct {
	notifier notify.Notifier
	browser  *repos.Browser
}

// NewToolbox creates a toolbox. A nil notifier discards notifications.
func NewToolbox(notifier notify.Notifier, browser *repos.Browser) *Toolbox {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Toolbox{notifier: notifier, browser: browser}
}

// RegisterAll registers every tool kind with the executor, in kind order.
func (t *Toolbox) RegisterAll(e *ToolExecutor) {
	for i := range toolSpecs {
		kind := ToolKind(i)
		e.Register(kind.Definition(), t.handler(kind))
	}
}

func (t *Toolbox) handler(kind ToolKind) ToolHandlerFunc {
	switch kind {
	case ToolRecordUserDetails:
		return func(_ context.Context, raw json.RawMessage) ToolOutcome {
			args := RecordUserDetailsArgs{Name: DefaultContactName, Notes: DefaultContactNotes}
			if err := json.Unmarshal(raw, &args); err != nil {
				return Fail(fmt.Errorf("invalid arguments: %w", err))
			}
			return t.RecordUserDetails(args)
		}
	case ToolRecordUnknownQuestion:
		return func(_ context.Context, raw json.RawMessage) ToolOutcome {
			var args RecordUnknownQuestionArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return Fail(fmt.Errorf("invalid arguments: %w", err))
			}
			return t.RecordUnknownQuestion(args)
		}
	case ToolListRepoFiles:
		return func(_ context.Context, raw json.RawMessage) ToolOutcome {
			args := ListRepoFilesArgs{Directory: DefaultDirectory}
			if err := json.Unmarshal(raw, &args); err != nil {
				return Fail(fmt.Errorf("invalid arguments: %w", err))
			}
			return t.ListRepoFiles(args)
		}
	case ToolReadRepoFile:
		return func(_ context.Context, raw json.RawMessage) ToolOutcome {
			var args ReadRepoFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return Fail(fmt.Errorf("invalid arguments: %w", err))
			}
			return t.ReadRepoFile(args)
		}
	}
	panic(fmt.Sprintf("copilot: no handler for %s", kind))
}

// RecordUserDetails notifies the owner about a new contact.
func (t *Toolbox) RecordUserDetails(args RecordUserDetailsArgs) ToolOutcome {
	if strings.TrimSpace(args.Email) == "" {
		return Fail(errors.New("email is required"))
	}
	t.notifier.Notify(fmt.Sprintf("Recording %s with email %s and notes %s", args.Name, args.Email, args.Notes))
	return OK("ok")
}

// RecordUnknownQuestion notifies the owner about a question that went unanswered.
func (t *Toolbox) RecordUnknownQuestion(args RecordUnknownQuestionArgs) ToolOutcome {
	if strings.TrimSpace(args.Question) == "" {
		return Fail(errors.New("question is required"))
	}
	t.notifier.Notify("Recording " + args.Question)
	return OK("ok")
}

// ListRepoFiles lists files in a cloned repository.
func (t *Toolbox) ListRepoFiles(args ListRepoFilesArgs) ToolOutcome {
	if t.browser == nil {
		return Fail(errors.New("no repositories are available"))
	}
	out, err := t.browser.ListFiles(args.RepoName, args.Directory, args.Pattern)
	if err != nil {
		return Fail(err)
	}
	return OK(out)
}

// ReadRepoFile returns the text of one file in a cloned repository.
func (t *Toolbox) ReadRepoFile(args ReadRepoFileArgs) ToolOutcome {
	if t.browser == nil {
		return Fail(errors.New("no repositories are available"))
	}
	out, err := t.browser.ReadFile(args.RepoName, args.FilePath)
	if err != nil {
		return Fail(err)
	}
	return OK(out)
}
