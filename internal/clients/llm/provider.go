package llm

import (
	"context"
	"fmt"

	"github.com/yungbote/codemaster-backend/internal/pkg/httpx"
)

// Provider performs a single completion attempt. Retries belong to Client.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, user string) (string, error)
}

type providerHTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *providerHTTPError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, httpx.Truncate(e.Body, diagnosticLimit))
}

func (e *providerHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// CompletionError is returned once every attempt has failed.
type CompletionError struct {
	Provider string
	Attempts int
	// Diagnostic is the last failure body, truncated.
	Diagnostic string
	Err        error
}

func (e *CompletionError) Error() string {
	msg := fmt.Sprintf("completion failed after %d attempt(s) via %s", e.Attempts, e.Provider)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompletionError) Unwrap() error { return e.Err }
