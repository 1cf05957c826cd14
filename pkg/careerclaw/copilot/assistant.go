// Package copilot implements the CareerClaw assistant: a chat agent that
// speaks for the site owner, grounded in their biography, profile and
// private repositories, and that notifies the owner about leads and
// unanswered questions.
package copilot

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/notify"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/persona"
	"github.com/jholhewres/careerclaw/pkg/careerclaw/repos"
)

// TraceName names the span wrapping each answer.
const TraceName = "Career Agent"

const tracerName = "github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"

// Assistant answers visitor messages on the owner's behalf.
type Assistant struct {
	cfg          *Config
	data         persona.Data
	store        *repos.Store
	llm          *LLMClient
	executor     *ToolExecutor
	instructions string
	tracer       trace.Tracer
	logger       *slog.Logger
}

// New wires the LLM client, the four tools and the instructions. The
// instructions are built once from data and the store's current snapshot.
func New(cfg *Config, data persona.Data, store *repos.Store, notifier notify.Notifier, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "assistant")

	var browser *repos.Browser
	if store != nil {
		browser = repos.NewBrowser(store)
	}

	executor := NewToolExecutor(logger)
	NewToolbox(notifier, browser).RegisterAll(executor)

	var ids []string
	if store != nil {
		ids = store.IDs()
	}

	a := &Assistant{
		cfg:          cfg,
		data:         data,
		store:        store,
		llm:          NewLLMClient(cfg, logger),
		executor:     executor,
		instructions: BuildInstructions(data, ids),
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
	logger.Info("assistant ready",
		"name", data.Name,
		"model", a.llm.Model(),
		"repositories", len(ids),
		"tools", len(executor.ToolNames()),
	)
	return a
}

// SetTracerProvider replaces the global tracer provider for this assistant.
func (a *Assistant) SetTracerProvider(tp trace.TracerProvider) {
	a.tracer = tp.Tracer(tracerName)
}

// Name returns the owner's name.
func (a *Assistant) Name() string { return a.data.Name }

// Greeting is the first assistant message shown in the chat widget.
func (a *Assistant) Greeting() string {
	return fmt.Sprintf("Hi, I'm %s's agent. Ask me anything!", a.data.Name)
}

// Title is the chat widget heading.
func (a *Assistant) Title() string {
	return fmt.Sprintf("%s's Career Agent", a.data.Name)
}

// Instructions returns the system prompt.
func (a *Assistant) Instructions() string { return a.instructions }

// Repositories returns the registered repository identifiers.
func (a *Assistant) Repositories() []string {
	if a.store == nil {
		return nil
	}
	return a.store.IDs()
}

// Executor exposes the tool executor, mainly for the CLI.
func (a *Assistant) Executor() *ToolExecutor { return a.executor }

// Answer runs the agent for one visitor message. Only user and assistant
// history entries are forwarded. The final text is returned unchanged.
func (a *Assistant) Answer(ctx context.Context, message string, history []Message) (string, error) {
	ctx, span := a.tracer.Start(ctx, TraceName, trace.WithAttributes(
		attribute.String("careerclaw.owner", a.data.Name),
		attribute.Int("careerclaw.history_len", len(history)),
	))
	defer span.End()

	run := NewAgentRun(a.llm, a.executor, a.cfg.Agent, a.logger)
	reply, err := run.Run(ctx, a.instructions, history, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("answer failed", "error", err)
		return "", err
	}
	return reply, nil
}
