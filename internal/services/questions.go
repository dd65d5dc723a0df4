package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/generation"
	"github.com/yungbote/codemaster-backend/internal/learning/prompts"
	"github.com/yungbote/codemaster-backend/internal/learning/questioncache"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const (
	gameplayQuizCount   = 5
	gameplayOutputCount = 4
	gameplayBugCount    = 3
	defaultDrawCount    = 5
	maxDrawCount        = 50
)

type QuestionOptions struct {
	Difficulty int      `json:"difficulty,omitempty"`
	Categories []string `json:"categories,omitempty"`
	// Avoid lists question texts the player has already seen.
	Avoid []string `json:"avoid,omitempty"`
}

type QuestionBatchResult struct {
	Generated bool              `json:"generated"`
	Counts    map[string]int    `json:"counts"`
	Added     map[string]int    `json:"added"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type QuestionService interface {
	// GenerateBatch asks for quiz, output and bug items at once. Each kind succeeds
	// or fails on its own; successful items go to the cache.
	GenerateBatch(ctx context.Context, lang string, opts QuestionOptions) (*QuestionBatchResult, error)
	Draw(ctx context.Context, kind, lang string, count int) ([]json.RawMessage, error)
	Stats(ctx context.Context) []questioncache.BucketStats
	Clear(ctx context.Context) int
}

type questionService struct {
	log        *logger.Logger
	llm        generation.Completer
	cache      *questioncache.Cache
	catalog    *catalog.Catalog
	maxRetries int
}

// NewQuestionService accepts a nil completer; generation then reports llm_unavailable.
func NewQuestionService(baseLog *logger.Logger, completer generation.Completer, cache *questioncache.Cache, cat *catalog.Catalog, maxRetries int) QuestionService {
	return &questionService{
		log:        baseLog.With("service", "QuestionService"),
		llm:        completer,
		cache:      cache,
		catalog:    cat,
		maxRetries: maxRetries,
	}
}

type gameplayJob struct {
	kind   string
	prompt prompts.PromptName
	count  int
	parse  func(kind, raw string) ([]json.RawMessage, error)
}

var gameplayJobs = []gameplayJob{
	{questioncache.KindQuiz, prompts.PromptGameplayQuiz, gameplayQuizCount, parseGameplayQuiz},
	{questioncache.KindOutput, prompts.PromptGameplayOutput, gameplayOutputCount, parseGameplayOutput},
	{questioncache.KindBug, prompts.PromptGameplayBug, gameplayBugCount, parseGameplayBugs},
}

func (s *questionService) GenerateBatch(ctx context.Context, lang string, opts QuestionOptions) (*QuestionBatchResult, error) {
	if s.llm == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "llm_unavailable", fmt.Errorf("no completion provider configured"))
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return nil, apierr.New(http.StatusBadRequest, "lang_required", fmt.Errorf("missing lang"))
	}
	base, err := s.promptInput(ctx, lang, opts)
	if err != nil {
		return nil, err
	}

	res := &QuestionBatchResult{Counts: map[string]int{}, Added: map[string]int{}}
	var mu sync.Mutex
	var g errgroup.Group
	for _, job := range gameplayJobs {
		g.Go(func() error {
			in := base
			in.Count = job.count
			items, err := s.generate(ctx, job, in)
			added := 0
			if err == nil && len(items) > 0 {
				added = s.cache.Add(ctx, job.kind, lang, items)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("gameplay generation failed", "kind", job.kind, "lang", lang, "error", err)
				if res.Errors == nil {
					res.Errors = map[string]string{}
				}
				res.Errors[job.kind] = err.Error()
				return nil
			}
			res.Counts[job.kind] = len(items)
			res.Added[job.kind] = added
			if len(items) > 0 {
				res.Generated = true
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

func (s *questionService) promptInput(ctx context.Context, lang string, opts QuestionOptions) (prompts.Input, error) {
	name := lang
	if s.catalog != nil {
		reg, err := s.catalog.Registry(dbctx.Background(ctx))
		if err != nil {
			return prompts.Input{}, apierr.New(http.StatusInternalServerError, "content_read_failed", err)
		}
		if e, ok := content.FindLanguage(reg, lang); ok {
			name = e.Name
		}
	}
	in := prompts.Input{Language: name, LanguageID: lang}
	if opts.Difficulty >= 1 && opts.Difficulty <= 3 {
		in.Difficulty = opts.Difficulty
	}
	if len(opts.Categories) > 0 {
		in.Categories = strings.Join(opts.Categories, ", ")
	}
	if len(opts.Avoid) > 0 {
		raw, err := json.Marshal(opts.Avoid)
		if err != nil {
			return prompts.Input{}, err
		}
		in.AvoidJSON = string(raw)
	}
	return in, nil
}

func (s *questionService) generate(ctx context.Context, job gameplayJob, in prompts.Input) ([]json.RawMessage, error) {
	p, err := prompts.Build(job.prompt, in)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	_, err = s.llm.CompleteFunc(ctx, p.System, p.User, s.maxRetries, func(raw string) error {
		out, err := job.parse(string(job.prompt), raw)
		if err != nil {
			return err
		}
		items = out
		return nil
	})
	return items, err
}

func parseGameplayQuiz(kind, raw string) ([]json.RawMessage, error) {
	list, _, err := content.ParseList[content.QuizQuestion](kind, raw)
	if err != nil {
		return nil, err
	}
	valid, _ := content.NormalizeGameplayQuiz(list)
	for i := range valid {
		valid[i].ID = ""
	}
	return nonEmpty(kind, questioncache.Encode(valid))
}

func parseGameplayOutput(kind, raw string) ([]json.RawMessage, error) {
	list, _, err := content.ParseList[content.OutputQuestion](kind, raw)
	if err != nil {
		return nil, err
	}
	valid, _ := content.NormalizeOutputQuestions(list)
	return nonEmpty(kind, questioncache.Encode(valid))
}

func parseGameplayBugs(kind, raw string) ([]json.RawMessage, error) {
	list, _, err := content.ParseList[content.BugSnippet](kind, raw)
	if err != nil {
		return nil, err
	}
	valid, _ := content.NormalizeGameplayBugs(list)
	for i := range valid {
		valid[i].ID = ""
	}
	return nonEmpty(kind, questioncache.Encode(valid))
}

func nonEmpty(kind string, items []json.RawMessage) ([]json.RawMessage, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: no valid items in response", kind)
	}
	return items, nil
}

func validKind(kind string) bool {
	switch kind {
	case questioncache.KindQuiz, questioncache.KindOutput, questioncache.KindBug:
		return true
	}
	return false
}

func (s *questionService) Draw(ctx context.Context, kind, lang string, count int) ([]json.RawMessage, error) {
	kind, lang = strings.TrimSpace(kind), strings.TrimSpace(lang)
	if !validKind(kind) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_kind", fmt.Errorf("kind must be quiz, output or bug"))
	}
	if lang == "" {
		return nil, apierr.New(http.StatusBadRequest, "lang_required", fmt.Errorf("missing lang"))
	}
	if count <= 0 {
		count = defaultDrawCount
	}
	if count > maxDrawCount {
		count = maxDrawCount
	}
	items := s.cache.Draw(ctx, kind, lang, count)
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func (s *questionService) Stats(ctx context.Context) []questioncache.BucketStats {
	return s.cache.Stats(ctx)
}

func (s *questionService) Clear(ctx context.Context) int {
	return s.cache.Clear(ctx)
}
