package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

func TestOpenAIProviderSendsChatRequest(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization=%q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"id\":\"go\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	log, _ := logger.New("test")
	p, err := NewOpenAIProvider(log, OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	text, err := p.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"id":"go"}` {
		t.Fatalf("text=%q", text)
	}
	if captured.Model != DefaultOpenAIModel || captured.MaxTokens != DefaultMaxTokens || captured.Temperature != DefaultTemperature {
		t.Fatalf("defaults not applied: %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "user" {
		t.Fatalf("messages: %+v", captured.Messages)
	}
}

func TestOpenAIProviderThroughClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[]"}}]}`))
	}))
	defer srv.Close()

	log, _ := logger.New("test")
	p, _ := NewOpenAIProvider(log, OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	c, _ := NewClient(log, p, WithBackoff(0))
	res, err := c.Complete(context.Background(), "sys", "user", 2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.RawText != "[]" || res.Attempt != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestOpenAIProviderReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	log, _ := logger.New("test")
	p, _ := NewOpenAIProvider(log, OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	_, err := p.Generate(context.Background(), "sys", "user")
	var httpErr *providerHTTPError
	if !errors.As(err, &httpErr) || httpErr.HTTPStatusCode() != http.StatusUnauthorized {
		t.Fatalf("expected 401 providerHTTPError, got %v", err)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewOpenAIProvider(log, OpenAIConfig{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
