package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/codemaster-backend/internal/clients/llm"
	"github.com/yungbote/codemaster-backend/internal/data/repos/testutil"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/questioncache"
)

// promptLLM answers gameplay prompts by looking at what the prompt asks for.
type promptLLM struct {
	mu       sync.Mutex
	prompts  []string
	failWhen string
}

func (p *promptLLM) CompleteFunc(ctx context.Context, system, user string, maxRetries int, accept llm.AcceptFunc) (llm.CompletionResult, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, user)
	p.mu.Unlock()
	if p.failWhen != "" && strings.Contains(user, p.failWhen) {
		return llm.CompletionResult{}, &llm.CompletionError{Provider: "fake", Attempts: 1, Err: errors.New("timeout")}
	}
	var raw string
	switch {
	case strings.Contains(user, "what does this print"):
		raw = `[{"code":"print(1)","choices":["1","2","3","4"],"correct":0,"explanation":"e"},{"code":"","choices":[],"correct":0,"explanation":"bad"}]`
	case strings.Contains(user, "exactly one bug"):
		raw = "```json\n[{\"difficulty\":1,\"category\":\"bases\",\"title\":\"t\",\"buggyCode\":\"a\\nb\",\"fixedCode\":\"a\\nc\",\"hint\":\"h\",\"bugLine\":2,\"explanation\":\"e\"}]\n```"
	default:
		raw = `{"questions":[{"category":"bases","difficulty":1,"question":"q1","choices":["a","b","c","d"],"correct":2,"explanation":"e"},{"category":"bases","difficulty":1,"question":"q2","choices":["a","b","c","d"],"correct":1,"explanation":"e"}]}`
	}
	if err := accept(raw); err != nil {
		return llm.CompletionResult{}, err
	}
	return llm.CompletionResult{RawText: raw, Succeeded: true, Attempt: 1}, nil
}

func newQuestionService(t *testing.T, completer *promptLLM) (QuestionService, *questioncache.Cache) {
	t.Helper()
	log := testutil.Logger(t)
	cache := questioncache.New(log, questioncache.NewMemoryStore())
	if completer == nil {
		return NewQuestionService(log, nil, cache, nil, 0), cache
	}
	return NewQuestionService(log, completer, cache, nil, 0), cache
}

func TestGenerateBatchFillsEveryBucket(t *testing.T) {
	fake := &promptLLM{}
	svc, _ := newQuestionService(t, fake)
	ctx := context.Background()

	res, err := svc.GenerateBatch(ctx, "python", QuestionOptions{Difficulty: 2, Avoid: []string{"What is a list?"}})
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if !res.Generated || res.Counts["quiz"] != 2 || res.Counts["output"] != 1 || res.Counts["bug"] != 1 {
		t.Fatalf("result: %+v", res)
	}
	if len(fake.prompts) != 3 {
		t.Fatalf("prompts: %d", len(fake.prompts))
	}

	stats := map[string]int{}
	for _, s := range svc.Stats(ctx) {
		stats[s.Kind] = s.Total
	}
	if stats["quiz"] != 2 || stats["output"] != 1 || stats["bug"] != 1 {
		t.Fatalf("stats: %v", stats)
	}

	items, err := svc.Draw(ctx, "quiz", "python", 10)
	if err != nil || len(items) != 2 {
		t.Fatalf("Draw: %d %v", len(items), err)
	}
	var q content.QuizQuestion
	if err := json.Unmarshal(items[0], &q); err != nil || q.ID != "" {
		t.Fatalf("drawn item: %s", items[0])
	}
	if n := svc.Clear(ctx); n == 0 {
		t.Fatalf("Clear removed nothing")
	}
}

func TestGenerateBatchKeepsPartialResults(t *testing.T) {
	fake := &promptLLM{failWhen: "exactly one bug"}
	svc, _ := newQuestionService(t, fake)

	res, err := svc.GenerateBatch(context.Background(), "python", QuestionOptions{})
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if !res.Generated || res.Counts["quiz"] != 2 || res.Errors["bug"] == "" {
		t.Fatalf("result: %+v", res)
	}
	if _, ok := res.Counts["bug"]; ok {
		t.Fatalf("failed kind reported a count")
	}
}

func TestGenerateBatchWithoutProvider(t *testing.T) {
	svc, _ := newQuestionService(t, nil)
	_, err := svc.GenerateBatch(context.Background(), "python", QuestionOptions{})
	if status, code := statusOf(t, err); status != http.StatusServiceUnavailable || code != "llm_unavailable" {
		t.Fatalf("status=%d code=%s", status, code)
	}
}

func TestDrawValidatesInput(t *testing.T) {
	svc, _ := newQuestionService(t, &promptLLM{})
	ctx := context.Background()
	if _, err := svc.Draw(ctx, "poem", "python", 3); err == nil {
		t.Fatalf("expected invalid kind")
	}
	if _, err := svc.Draw(ctx, "quiz", "", 3); err == nil {
		t.Fatalf("expected lang_required")
	}
	items, err := svc.Draw(ctx, "bug", "go", 0)
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("empty draw: %v %v", items, err)
	}
}
