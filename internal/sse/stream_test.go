package sse

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type frame struct {
	Step int `json:"step"`
}

func TestRelayWritesEveryEventInOrder(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := Open(rec, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	Relay(context.Background(), s, time.Hour, func(ctx context.Context, emit func(frame)) {
		for i := 0; i < 3; i++ {
			emit(frame{Step: i})
		}
	})
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
	want := "data: {\"step\":0}\n\ndata: {\"step\":1}\n\ndata: {\"step\":2}\n\n"
	if rec.Body.String() != want {
		t.Fatalf("body:\n%q", rec.Body.String())
	}
}

func TestRelayPingsWhileIdle(t *testing.T) {
	rec := httptest.NewRecorder()
	s, _ := Open(rec, nil)
	Relay(context.Background(), s, 5*time.Millisecond, func(ctx context.Context, emit func(frame)) {
		time.Sleep(40 * time.Millisecond)
		emit(frame{Step: 1})
	})
	body := rec.Body.String()
	if !strings.Contains(body, ": ping\n\n") {
		t.Fatalf("no heartbeat in %q", body)
	}
	if !strings.HasSuffix(body, "data: {\"step\":1}\n\n") {
		t.Fatalf("event missing: %q", body)
	}
}

func TestRelayCancelsProducerWhenClientLeaves(t *testing.T) {
	rec := httptest.NewRecorder()
	s, _ := Open(rec, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	Relay(ctx, s, time.Hour, func(ctx context.Context, emit func(frame)) {
		defer close(stopped)
		<-ctx.Done()
		emit(frame{Step: 9})
	})
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("producer not canceled")
	}
}
