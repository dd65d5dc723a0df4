package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const DefaultHeartbeat = 15 * time.Second

// Stream writes server-sent events as "data: <json>" frames.
type Stream struct {
	log     *logger.Logger
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

// Open sends the stream headers. It fails when w cannot flush.
func Open(w http.ResponseWriter, log *logger.Logger) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Stream{log: log, w: w, flusher: flusher}, nil
}

func (s *Stream) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *Stream) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Relay runs produce on its own goroutine and forwards everything it emits,
// pinging every heartbeat while idle. It returns once produce has returned and
// its events are written, or when ctx ends; produce sees ctx canceled in both cases.
func Relay[T any](ctx context.Context, s *Stream, heartbeat time.Duration, produce func(ctx context.Context, emit func(T))) {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan T, 16)
	go func() {
		defer close(events)
		produce(ctx, func(v T) {
			select {
			case events <- v:
			case <-ctx.Done():
			}
		})
	}()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case v, ok := <-events:
			if !ok {
				return
			}
			if err := s.Send(v); err != nil {
				if s.log != nil {
					s.log.Debug("sse write failed; stopping stream", "error", err)
				}
				return
			}
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
