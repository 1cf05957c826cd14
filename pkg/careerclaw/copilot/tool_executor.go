// Package copilot – tool_executor.go keeps the registry of callable tools
// and dispatches tool calls from the LLM to their handlers.
package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultToolTimeout bounds a single tool handler.
const DefaultToolTimeout = 30 * time.Second

// ToolOutcome is the result of one tool invocation: either text for the
// model or an error. Errors are rendered as "Error: <message>" so the model
// can relay them conversationally.
type ToolOutcome struct {
	Text string
	Err  error
}

// OK wraps a successful result.
func OK(text string) ToolOutcome { return ToolOutcome{Text: text} }

// Fail wraps a failed result.
func Fail(err error) ToolOutcome { return ToolOutcome{Err: err} }

// String renders the outcome for the model.
func (o ToolOutcome) String() string {
	if o.Err != nil {
		return "Error: " + o.Err.Error()
	}
	return o.Text
}

// ToolHandlerFunc executes a tool given its raw JSON arguments.
type ToolHandlerFunc func(ctx context.Context, args json.RawMessage) ToolOutcome

// registeredTool pairs a definition with its handler.
type registeredTool struct {
	Definition ToolDefinition
	Handler    ToolHandlerFunc
}

// ToolResult is a dispatched call's outcome, keyed by the call ID.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
	Error      error
}

// ToolExecutor manages tool registration and dispatch.
type ToolExecutor struct {
	mu      sync.RWMutex
	tools   map[string]*registeredTool
	order   []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewToolExecutor creates an empty executor.
func NewToolExecutor(logger *slog.Logger) *ToolExecutor {
	return &ToolExecutor{
		tools:   make(map[string]*registeredTool),
		timeout: DefaultToolTimeout,
		logger:  logger.With("component", "tools"),
	}
}

// Register adds a tool with its definition and handler.
// If a tool with the same name already exists, it is overwritten.
func (e *ToolExecutor) Register(def ToolDefinition, handler ToolHandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := def.Function.Name
	if _, exists := e.tools[name]; !exists {
		e.order = append(e.order, name)
	}
	e.tools[name] = &registeredTool{Definition: def, Handler: handler}
	e.logger.Debug("tool registered", "name", name)
}

// Tools returns definitions in registration order.
func (e *ToolExecutor) Tools() []ToolDefinition {
	e.mu.RLock()
	defer e.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(e.order))
	for _, name := range e.order {
		defs = append(defs, e.tools[name].Definition)
	}
	return defs
}

// ToolNames returns registered names in registration order.
func (e *ToolExecutor) ToolNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Execute runs calls sequentially in request order.
func (e *ToolExecutor) Execute(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	for i, call := range calls {
		results[i] = e.executeSingle(ctx, call)
	}
	return results
}

// Call invokes a tool by name, outside of an LLM turn.
func (e *ToolExecutor) Call(ctx context.Context, name string, args json.RawMessage) ToolOutcome {
	e.mu.RLock()
	tool, ok := e.tools[name]
	e.mu.RUnlock()
	if !ok {
		return Fail(fmt.Errorf("unknown tool %q", name))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return tool.Handler(callCtx, args)
}

// executeSingle runs a single tool call and returns the result.
func (e *ToolExecutor) executeSingle(ctx context.Context, call ToolCall) ToolResult {
	name := call.Function.Name
	result := ToolResult{ToolCallID: call.ID, Name: name}

	args, err := parseToolArgs(call.Function.Arguments)
	if err != nil {
		result.Content = formatToolError(name, fmt.Errorf("error parsing arguments: %w", err))
		result.Error = err
		e.logger.Warn("tool argument parse error", "name", name, "error", err)
		return result
	}

	start := time.Now()
	outcome := e.Call(ctx, name, args)
	result.Content = outcome.String()
	result.Error = outcome.Err

	if outcome.Err != nil {
		e.logger.Info("tool returned error",
			"name", name,
			"error", outcome.Err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		e.logger.Debug("tool executed",
			"name", name,
			"result_len", len(result.Content),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return result
}

// formatToolError renders an executor-level failure (unknown tool, bad JSON).
func formatToolError(toolName string, err error) string {
	return fmt.Sprintf("Error: tool %s failed: %v", toolName, err)
}

// MakeToolDefinition creates a ToolDefinition from a JSON schema map.
func MakeToolDefinition(name, description string, params map[string]any) ToolDefinition {
	schema := map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
	if params != nil {
		schema = params
	}
	schemaJSON, _ := json.Marshal(schema)

	return ToolDefinition{
		Type: "function",
		Function: FunctionDef{
			Name:        name,
			Description: description,
			Parameters:  schemaJSON,
		},
	}
}

// parseToolArgs validates the arguments string as a JSON object. Empty
// arguments are treated as {}.
func parseToolArgs(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return json.RawMessage("{}"), nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
