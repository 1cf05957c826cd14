package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
)

// newChatCmd creates the `careerclaw chat` command for terminal conversations.
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the career agent in the terminal",
		Long: `Ask the career agent a question. With a message argument, or with a
question piped on stdin, prints one answer and exits. On a terminal
without arguments starts an interactive session that keeps the history.

Examples:
  careerclaw chat "What languages do you work with?"
  echo "Tell me about your last job" | careerclaw chat
  careerclaw chat  # interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().StringP("model", "m", "", "LLM model to use (e.g. gpt-4o-mini)")
	return cmd
}

var (
	userLabel  = color.New(color.FgGreen, color.Bold)
	agentLabel = color.New(color.FgCyan, color.Bold)
	errorLabel = color.New(color.FgRed, color.Bold)
)

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if len(args) > 0 {
		return answerOnce(ctx, a.assistant, args[0], out)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		question := strings.TrimSpace(string(data))
		if question == "" {
			return errors.New("no question given on stdin")
		}
		return answerOnce(ctx, a.assistant, question, out)
	}

	return chatLoop(ctx, a.assistant, out)
}

func answerOnce(ctx context.Context, assistant *copilot.Assistant, question string, out io.Writer) error {
	reply, err := assistant.Answer(ctx, question, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}

// chatLoop runs the interactive session until EOF, Ctrl+C on an empty line
// or /exit.
func chatLoop(ctx context.Context, assistant *copilot.Assistant, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          userLabel.Sprint("you> "),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	agentPrefix := agentLabel.Sprintf("%s> ", assistant.Name())
	fmt.Fprintln(out, agentPrefix+assistant.Greeting())
	fmt.Fprintln(out, color.New(color.Faint).Sprint("Type /exit or press Ctrl+D to quit."))

	var history []copilot.Message
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		reply, err := assistant.Answer(ctx, line, history)
		if err != nil {
			fmt.Fprintln(out, errorLabel.Sprint("error> ")+err.Error())
			continue
		}
		fmt.Fprintln(out, agentPrefix+reply)

		history = append(history,
			copilot.Message{Role: "user", Content: line},
			copilot.Message{Role: "assistant", Content: reply},
		)
	}
}
