// Package notify delivers short operator notifications (new contact, unanswered
// question) to a push-notification service. Delivery is best-effort: callers
// fire and forget, failures are only logged.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultPushoverURL is the Pushover message endpoint.
const DefaultPushoverURL = "https://api.pushover.net/1/messages.json"

// DefaultTimeout bounds a single notification request.
const DefaultTimeout = 10 * time.Second

// Notifier sends a text message to the site owner.
type Notifier interface {
	// Notify queues the message and returns immediately.
	Notify(text string)
}

// Config configures the Pushover sink.
type Config struct {
	// Token is the Pushover application token (PUSHOVER_TOKEN).
	Token string `yaml:"token"`

	// User is the Pushover recipient key (PUSHOVER_USER).
	User string `yaml:"user"`

	// APIURL overrides the message endpoint (tests, proxies).
	APIURL string `yaml:"api_url"`

	// TimeoutSeconds bounds each request (default: 10).
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Enabled reports whether both credentials are present.
func (c Config) Enabled() bool {
	return c.Token != "" && c.User != ""
}

// Pushover posts messages to the Pushover API.
type Pushover struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration

	warnOnce sync.Once

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPushover creates a Pushover sink. A nil client uses a default one.
func NewPushover(cfg Config, httpClient *http.Client, logger *slog.Logger) *Pushover {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultPushoverURL
	}
	timeout := DefaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Pushover{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With("component", "notify"),
		timeout:    timeout,
	}
}

// Send posts one message synchronously. The response body is not inspected;
// only transport errors and non-2xx statuses are reported.
func (p *Pushover) Send(ctx context.Context, text string) error {
	if !p.cfg.Enabled() {
		p.warnOnce.Do(func() {
			p.logger.Warn("pushover credentials not set, notifications disabled")
		})
		return nil
	}

	form := url.Values{
		"token":   {p.cfg.Token},
		"user":    {p.cfg.User},
		"message": {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned %d", resp.StatusCode)
	}
	return nil
}

// Notify sends the message in the background. It never blocks the caller and
// never reports failure beyond a log line. After Close it drops the message.
func (p *Pushover) Notify(text string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("notification dropped after shutdown", "chars", len(text))
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.Send(ctx, text); err != nil {
			p.logger.Warn("notification failed", "error", err)
			return
		}
		p.logger.Debug("notification sent", "chars", len(text))
	}()
}

// Close stops accepting notifications and blocks until in-flight ones finish.
// It is safe to call concurrently with Notify and more than once.
func (p *Pushover) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Discard is a Notifier that drops every message.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(string) {}
