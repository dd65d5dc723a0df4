package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/codemaster-backend/internal/pkg/httpx"
	"github.com/yungbote/codemaster-backend/internal/platform/ctxutil"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 1 * time.Second
	diagnosticLimit   = 300
)

type CompletionResult struct {
	RawText   string
	Succeeded bool
	// Attempt is the 1-based attempt that produced RawText.
	Attempt int
}

// AcceptFunc inspects a raw completion; a non-nil error spends one attempt.
type AcceptFunc func(raw string) error

// Observer receives one call per provider attempt.
type Observer interface {
	ObserveLLMRequest(provider, status string, dur time.Duration)
}

type Client struct {
	log      *logger.Logger
	provider Provider
	backoff  time.Duration
	observer Observer
}

type Option func(*Client)

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(log *logger.Logger, provider Provider, opts ...Option) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider required")
	}
	c := &Client{
		log:      log.With("service", "LLMClient", "provider", provider.Name()),
		provider: provider,
		backoff:  DefaultBackoff,
	}
	for _, o := range opts {
		o(c)
	}
	if c.backoff < 0 {
		c.backoff = 0
	}
	return c, nil
}

func (c *Client) ProviderName() string { return c.provider.Name() }

// Complete makes up to maxRetries+1 attempts, waiting the backoff between
// transport failures.
func (c *Client) Complete(ctx context.Context, system, user string, maxRetries int) (CompletionResult, error) {
	return c.CompleteFunc(ctx, system, user, maxRetries, nil)
}

// CompleteFunc is Complete with an accept check sharing the same attempt budget.
// A rejected response is retried at once with a fresh completion; if the last
// attempt is rejected, the accept error is returned as is.
func (c *Client) CompleteFunc(ctx context.Context, system, user string, maxRetries int, accept AcceptFunc) (CompletionResult, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var (
		lastErr    error
		lastReject error
	)
	log := c.log.With(ctxutil.LogFields(ctx)...)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return CompletionResult{Attempt: attempt}, err
		}

		start := time.Now()
		raw, err := c.provider.Generate(ctx, system, user)
		if err == nil {
			if accept == nil {
				c.observe("ok", start)
				return CompletionResult{RawText: raw, Succeeded: true, Attempt: attempt + 1}, nil
			}
			rejectErr := accept(raw)
			if rejectErr == nil {
				c.observe("ok", start)
				return CompletionResult{RawText: raw, Succeeded: true, Attempt: attempt + 1}, nil
			}
			c.observe("rejected", start)
			lastReject, lastErr = rejectErr, nil
			log.Warn("completion rejected",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"error", rejectErr.Error(),
			)
			continue
		}

		// Caller cancellation is never retried.
		if ctx.Err() != nil {
			c.observe("canceled", start)
			return CompletionResult{Attempt: attempt + 1}, ctx.Err()
		}
		c.observe("error", start)
		lastErr, lastReject = err, nil
		if attempt == maxRetries {
			break
		}
		log.Warn("completion retrying",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"sleep", c.backoff.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, c.backoff); err != nil {
			return CompletionResult{Attempt: attempt + 1}, err
		}
	}

	if lastReject != nil {
		return CompletionResult{Attempt: maxRetries + 1}, lastReject
	}
	return CompletionResult{Attempt: maxRetries + 1}, &CompletionError{
		Provider:   c.provider.Name(),
		Attempts:   maxRetries + 1,
		Diagnostic: diagnostic(lastErr),
		Err:        lastErr,
	}
}

func (c *Client) observe(status string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveLLMRequest(c.provider.Name(), status, time.Since(start))
}

func diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *providerHTTPError
	if errors.As(err, &httpErr) {
		return httpx.Truncate(httpErr.Body, diagnosticLimit)
	}
	return httpx.Truncate(err.Error(), diagnosticLimit)
}
