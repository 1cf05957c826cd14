// Package copilot – agent.go implements the agentic loop: call LLM → if
// tool_calls → execute tools → append results → call LLM again, until the
// LLM produces a final text response with no tool calls.
package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultRunTimeout bounds an entire agent run.
	DefaultRunTimeout = 120 * time.Second

	// DefaultMaxTurns caps LLM round-trips that request tools.
	DefaultMaxTurns = 10
)

// AgentConfig holds configurable agent loop parameters.
type AgentConfig struct {
	// RunTimeoutSeconds is the max seconds for the entire run (default: 120).
	RunTimeoutSeconds int `yaml:"run_timeout_seconds"`

	// MaxTurns caps tool-calling turns (default: 10). When hit, the model
	// is asked for a final answer without tools.
	MaxTurns int `yaml:"max_turns"`
}

// DefaultAgentConfig returns the default loop limits.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		RunTimeoutSeconds: int(DefaultRunTimeout / time.Second),
		MaxTurns:          DefaultMaxTurns,
	}
}

// Message is one prior conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentRun encapsulates a single agent execution with its dependencies.
type AgentRun struct {
	llm        *LLMClient
	executor   *ToolExecutor
	runTimeout time.Duration
	maxTurns   int
	logger     *slog.Logger
}

// NewAgentRun creates an agent runner with explicit configuration.
func NewAgentRun(llm *LLMClient, executor *ToolExecutor, cfg AgentConfig, logger *slog.Logger) *AgentRun {
	ar := &AgentRun{
		llm:        llm,
		executor:   executor,
		runTimeout: DefaultRunTimeout,
		maxTurns:   DefaultMaxTurns,
		logger:     logger.With("component", "agent"),
	}
	if cfg.RunTimeoutSeconds > 0 {
		ar.runTimeout = time.Duration(cfg.RunTimeoutSeconds) * time.Second
	}
	if cfg.MaxTurns > 0 {
		ar.maxTurns = cfg.MaxTurns
	}
	return ar
}

// Run executes the loop and returns the final assistant text unchanged.
func (a *AgentRun) Run(ctx context.Context, systemPrompt string, history []Message, userMessage string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.runTimeout)
	defer cancel()

	runStart := time.Now()
	messages := a.buildMessages(systemPrompt, history, userMessage)
	tools := a.executor.Tools()

	a.logger.Debug("agent run started",
		"history_entries", len(history),
		"tools_available", len(tools),
		"run_timeout_s", int(a.runTimeout.Seconds()),
		"max_turns", a.maxTurns,
	)

	for turn := 1; ; turn++ {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("agent run timeout (%s) after %d turns: %w", a.runTimeout, turn-1, runCtx.Err())
		}

		if turn > a.maxTurns {
			a.logger.Warn("agent reached turn limit, requesting final answer", "max_turns", a.maxTurns)
			messages = append(messages, chatMessage{
				Role: "user",
				Content: "[System: You have used many turns. " +
					"Please provide your best response with the information gathered so far.]",
			})
			resp, err := a.llm.CompleteWithTools(runCtx, messages, nil)
			if err != nil {
				return "", fmt.Errorf("final answer call failed: %w", err)
			}
			return resp.Content, nil
		}

		resp, err := a.llm.CompleteWithTools(runCtx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("LLM call failed (turn %d): %w", turn, err)
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Info("agent run complete",
				"turns", turn,
				"duration_ms", time.Since(runStart).Milliseconds(),
			)
			return resp.Content, nil
		}

		messages = append(messages, chatMessage{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		names := make([]string, len(resp.ToolCalls))
		for i, tc := range resp.ToolCalls {
			names[i] = tc.Function.Name
		}
		a.logger.Info("executing tool calls",
			"count", len(resp.ToolCalls),
			"tools", strings.Join(names, ","),
			"turn", turn,
		)

		for _, result := range a.executor.Execute(runCtx, resp.ToolCalls) {
			messages = append(messages, chatMessage{
				Role:       "tool",
				Content:    result.Content,
				ToolCallID: result.ToolCallID,
			})
		}
	}
}

// buildMessages lays out system prompt, history and the new user message.
// Only user and assistant history entries are forwarded.
func (a *AgentRun) buildMessages(systemPrompt string, history []Message, userMessage string) []chatMessage {
	messages := make([]chatMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range FilterHistory(history) {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	return append(messages, chatMessage{Role: "user", Content: userMessage})
}

// FilterHistory keeps only user and assistant entries, in order.
func FilterHistory(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role == "user" || m.Role == "assistant" {
			out = append(out, m)
		}
	}
	return out
}
