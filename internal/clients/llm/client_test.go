package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type step struct {
	text string
	err  error
}

type scriptedProvider struct {
	steps []step
	calls atomic.Int32
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, system, user string) (string, error) {
	i := int(p.calls.Add(1)) - 1
	if i >= len(p.steps) {
		return "", errors.New("script exhausted")
	}
	return p.steps[i].text, p.steps[i].err
}

func newTestClient(t *testing.T, p Provider) *Client {
	t.Helper()
	log, _ := logger.New("test")
	c, err := NewClient(log, p, WithBackoff(0))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCompleteRetriesTransportFailures(t *testing.T) {
	p := &scriptedProvider{steps: []step{
		{err: &providerHTTPError{Provider: "scripted", StatusCode: 503, Body: "busy"}},
		{text: `{"ok":true}`},
	}}
	res, err := newTestClient(t, p).Complete(context.Background(), "sys", "user", 2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Succeeded || res.Attempt != 2 || res.RawText != `{"ok":true}` {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCompleteExhaustsBudget(t *testing.T) {
	body := strings.Repeat("x", 1000)
	p := &scriptedProvider{steps: []step{
		{err: errors.New("dial tcp: refused")},
		{err: errors.New("dial tcp: refused")},
		{err: &providerHTTPError{Provider: "scripted", StatusCode: 500, Body: body}},
	}}
	_, err := newTestClient(t, p).Complete(context.Background(), "sys", "user", 2)
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompletionError, got %v", err)
	}
	if ce.Attempts != 3 || p.calls.Load() != 3 {
		t.Fatalf("attempts=%d calls=%d", ce.Attempts, p.calls.Load())
	}
	if len(ce.Diagnostic) != diagnosticLimit {
		t.Fatalf("diagnostic length %d", len(ce.Diagnostic))
	}
}

func TestCompleteFuncRetriesRejectedResponses(t *testing.T) {
	p := &scriptedProvider{steps: []step{{text: "not json"}, {text: "still not"}, {text: "{}"}}}
	accept := func(raw string) error {
		if raw != "{}" {
			return errors.New("bad shape")
		}
		return nil
	}
	res, err := newTestClient(t, p).CompleteFunc(context.Background(), "sys", "user", 2, accept)
	if err != nil {
		t.Fatalf("CompleteFunc: %v", err)
	}
	if res.Attempt != 3 {
		t.Fatalf("attempt=%d", res.Attempt)
	}
}

func TestCompleteFuncReturnsLastRejection(t *testing.T) {
	sentinel := errors.New("validation failed")
	p := &scriptedProvider{steps: []step{{text: "a"}, {text: "b"}}}
	_, err := newTestClient(t, p).CompleteFunc(context.Background(), "sys", "user", 1, func(string) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected accept error, got %v", err)
	}
	if p.calls.Load() != 2 {
		t.Fatalf("calls=%d", p.calls.Load())
	}
}

func TestCompleteStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedProvider{steps: []step{{text: "{}"}}}
	_, err := newTestClient(t, p).Complete(ctx, "sys", "user", 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls.Load() != 0 {
		t.Fatalf("provider called after cancellation")
	}
}

type blockingProvider struct{}

func (blockingProvider) Name() string { return "blocking" }

func (blockingProvider) Generate(ctx context.Context, system, user string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestCompleteCancelsInFlightAttempt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := newTestClient(t, blockingProvider{}).Complete(ctx, "sys", "user", 5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancellation was not prompt")
	}
}

func TestBackoffHonorsCancellation(t *testing.T) {
	log, _ := logger.New("test")
	p := &scriptedProvider{steps: []step{{err: errors.New("boom")}, {text: "{}"}}}
	c, _ := NewClient(log, p, WithBackoff(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, "sys", "user", 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline during backoff, got %v", err)
	}
}

type recordingObserver struct {
	statuses []string
}

func (o *recordingObserver) ObserveLLMRequest(provider, status string, dur time.Duration) {
	o.statuses = append(o.statuses, provider+":"+status)
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	p := &scriptedProvider{steps: []step{
		{err: errors.New("reset")},
		{text: "garbage"},
		{text: "fine"},
	}}
	obs := &recordingObserver{}
	log, _ := logger.New("test")
	c, err := NewClient(log, p, WithBackoff(0), WithObserver(obs))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.CompleteFunc(context.Background(), "sys", "user", 2, func(raw string) error {
		if raw != "fine" {
			return errors.New("reject")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CompleteFunc: %v", err)
	}
	want := []string{"scripted:error", "scripted:rejected", "scripted:ok"}
	if strings.Join(obs.statuses, ",") != strings.Join(want, ",") {
		t.Fatalf("statuses: got=%v want=%v", obs.statuses, want)
	}
}
