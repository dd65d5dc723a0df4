package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/clients/llm"
	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/plan"
	"github.com/yungbote/codemaster-backend/internal/learning/prompts"
	"github.com/yungbote/codemaster-backend/internal/platform/ctxutil"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const (
	DefaultMaxRetries  = llm.DefaultMaxRetries
	advancedQuizCount  = 15
	tracerName         = "github.com/yungbote/codemaster-backend/internal/learning/generation"
	labelSave          = "Sauvegarde en base de données..."
	labelQuizStart     = "Quiz, typing et memory..."
	labelQuizDone      = "Quiz et jeux générés ✓"
	labelBugStart      = "Exercices de débogage..."
	labelBugDone       = "Exercices générés ✓"
	labelAdvQuizStart  = "Quiz avancé..."
	labelAdvQuizDone   = "Quiz avancé généré ✓"
	labelPrepareFormat = "Préparation de %s..."
	labelSaveFailed    = "Contenu généré mais non sauvegardé"
)

// Completer is the part of the completion client a run needs.
type Completer interface {
	CompleteFunc(ctx context.Context, system, user string, maxRetries int, accept llm.AcceptFunc) (llm.CompletionResult, error)
}

// QuestionSink receives gameplay items once a run is saved. Failures are its own concern.
type QuestionSink interface {
	Add(ctx context.Context, kind, lang string, items []json.RawMessage) int
}

// Observer records run and step outcomes, e.g. as metrics.
type Observer interface {
	ObserveGenerationRun(kind, status string, dur time.Duration)
	ObserveGenerationStep(step, status string, dur time.Duration)
}

type Config struct {
	MaxRetries    int
	ContentLocale string
	Observer      Observer
}

type Result struct {
	Language content.LanguageEntry `json:"language"`
	Stats    Stats                 `json:"stats"`
}

type Orchestrator struct {
	log     *logger.Logger
	db      *gorm.DB
	catalog *catalog.Catalog
	llm     Completer
	cache   QuestionSink
	plan    *plan.Plan
	runs    *Runs
	cfg     Config
	tracer  trace.Tracer
}

// New builds an orchestrator. cache may be nil.
func New(log *logger.Logger, db *gorm.DB, cat *catalog.Catalog, completer Completer, cache QuestionSink, p *plan.Plan, cfg Config) (*Orchestrator, error) {
	switch {
	case log == nil:
		return nil, fmt.Errorf("logger required")
	case db == nil:
		return nil, fmt.Errorf("db required")
	case cat == nil:
		return nil, fmt.Errorf("catalog required")
	case completer == nil:
		return nil, fmt.Errorf("completer required")
	case p == nil:
		return nil, fmt.Errorf("plan required")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if strings.TrimSpace(cfg.ContentLocale) == "" {
		cfg.ContentLocale = prompts.DefaultContentLocale
	}
	return &Orchestrator{
		log:     log.With("service", "GenerationOrchestrator"),
		db:      db,
		catalog: cat,
		llm:     completer,
		cache:   cache,
		plan:    p,
		runs:    NewRuns(),
		cfg:     cfg,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

func (o *Orchestrator) ActiveRuns() []RunInfo { return o.runs.Active() }

// run carries the state of one generation run.
type run struct {
	o      *Orchestrator
	log    *logger.Logger
	kind   RunKind
	langID string
	name   string
	total  int
	emit   Emitter
	label  string
}

type stepSpec struct {
	index  int
	label  string
	prompt prompts.PromptName
	input  prompts.Input
	accept llm.AcceptFunc
	done   func() string
}

// start resolves the language id, claims the per-language lock and opens the run span.
// The returned finish func must be called with the run's outcome.
func (o *Orchestrator) start(ctx context.Context, kind RunKind, name string, total func() int, emit Emitter) (context.Context, *run, func(error), error) {
	name = strings.TrimSpace(name)
	langID, err := content.LanguageID(name)
	if err != nil {
		emit.emit(Event{Step: StepFailed, Message: err.Error(), Code: ErrorCode(err)})
		return ctx, nil, nil, err
	}
	n := total()
	runID, err := o.runs.Begin(langID, name, kind, n)
	if err != nil {
		emit.emit(Event{Step: StepFailed, Message: err.Error(), Code: ErrorCode(err)})
		return ctx, nil, nil, err
	}
	ctx, span := o.tracer.Start(ctx, "generation."+string(kind), trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("language.id", langID),
		attribute.Int("steps.total", n),
	))
	ctx = ctxutil.WithRunID(ctx, runID.String())
	r := &run{
		o:      o,
		log:    o.log.With("run_id", runID.String(), "language_id", langID, "kind", string(kind)),
		kind:   kind,
		langID: langID,
		name:   name,
		total:  n,
		emit:   emit,
	}
	r.log.Info("generation started", "language", name, "total", n)
	started := time.Now()
	finish := func(err error) {
		defer o.runs.End(langID)
		defer span.End()
		if obs := o.cfg.Observer; obs != nil {
			obs.ObserveGenerationRun(string(kind), outcome(err), time.Since(started))
		}
		if err == nil {
			o.runs.Update(langID, StateComplete, n)
			r.log.Info("generation complete")
			return
		}
		o.runs.Update(langID, StateFailed, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Warn("generation failed", "error", err, "code", ErrorCode(err))
		code, label := ErrorCode(err), r.label
		if code == CodeStoreFailed {
			label = labelSaveFailed
		}
		r.emit.emit(Event{Step: StepFailed, Label: label, Message: err.Error(), Code: code})
	}
	return ctx, r, finish, nil
}

func (r *run) step(ctx context.Context, s stepSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.label = s.label
	r.o.runs.Update(r.langID, StateGenerating, s.index)
	r.emit.emit(Event{Step: s.index, Total: r.total, Label: s.label})

	ctx, span := r.o.tracer.Start(ctx, "generation.step", trace.WithAttributes(
		attribute.Int("step.index", s.index),
		attribute.String("step.kind", string(s.prompt)),
	))
	defer span.End()

	p, err := prompts.Build(s.prompt, s.input)
	if err != nil {
		return &StepError{Step: s.index, Kind: string(s.prompt), Label: s.label, Err: err}
	}
	span.SetAttributes(
		attribute.Int("prompt.version", p.Version),
		attribute.String("prompt.fingerprint", p.Fingerprint()),
	)
	started := time.Now()
	res, err := r.o.llm.CompleteFunc(ctx, p.System, p.User, r.o.cfg.MaxRetries, s.accept)
	if obs := r.o.cfg.Observer; obs != nil {
		obs.ObserveGenerationStep(string(s.prompt), outcome(err), time.Since(started))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StepError{Step: s.index, Kind: string(s.prompt), Label: s.label, Err: err}
	}
	span.SetAttributes(attribute.Int("llm.attempt", res.Attempt))
	r.emit.emit(Event{Step: s.index, Total: r.total, Label: s.done(), Done: true})
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return ErrorCode(err)
}

func (r *run) input() prompts.Input {
	return prompts.Input{
		Language:      r.name,
		LanguageID:    r.langID,
		ContentLocale: r.o.cfg.ContentLocale,
	}
}

func (r *run) warn(kind string, warnings []string) {
	if len(warnings) > 0 {
		r.log.Warn("content normalized with warnings", "content_kind", kind, "warnings", warnings)
	}
}

// Generate runs the base plan for a new language and saves everything in one
// transaction. emit may be nil.
func (o *Orchestrator) Generate(ctx context.Context, name string, emit Emitter) (*Result, error) {
	ctx, r, finish, err := o.start(ctx, RunBase, name, o.plan.BaseSteps, emit)
	if err != nil {
		return nil, err
	}
	res, err := r.generateBase(ctx)
	finish(err)
	return res, err
}

type baseOutput struct {
	language content.LanguageEntry
	levels   []content.CurriculumLevel
	quiz     content.QuizBatch
	bugs     content.BugSnippetBatch
}

func (r *run) generateBase(ctx context.Context) (*Result, error) {
	var out baseOutput

	kind := string(prompts.PromptLanguageInfo)
	if err := r.step(ctx, stepSpec{
		index:  0,
		label:  fmt.Sprintf(labelPrepareFormat, r.name),
		prompt: prompts.PromptLanguageInfo,
		input:  r.input(),
		accept: func(raw string) error {
			entry, err := content.RepairAndParse[content.LanguageEntry](kind, raw)
			if err != nil {
				return err
			}
			out.language = content.NormalizeLanguage(r.langID, r.name, entry)
			return nil
		},
		done: func() string { return out.language.Icon + " " + r.name },
	}); err != nil {
		return nil, err
	}

	for i, lvl := range r.o.plan.Base {
		var level content.CurriculumLevel
		in := r.input()
		in.LevelID, in.LevelTitle, in.LevelTopic = lvl.ID, lvl.Title, lvl.Topic
		in.LessonCount, in.Recap = lvl.Lessons, lvl.Recap
		kind := string(prompts.PromptCurriculumLevel)
		if err := r.step(ctx, stepSpec{
			index:  i + 1,
			label:  fmt.Sprintf("Niveau %d: %s (%d leçons)...", lvl.ID, lvl.Title, lvl.Lessons),
			prompt: prompts.PromptCurriculumLevel,
			input:  in,
			accept: r.acceptLevel(kind, lvl, &level),
			done: func() string {
				return fmt.Sprintf("Niveau %d: %s · %d leçons ✓", lvl.ID, lvl.Title, len(level.Lessons))
			},
		}); err != nil {
			return nil, err
		}
		out.levels = append(out.levels, level)
	}

	kind = string(prompts.PromptQuizBatch)
	if err := r.step(ctx, stepSpec{
		index:  len(r.o.plan.Base) + 1,
		label:  labelQuizStart,
		prompt: prompts.PromptQuizBatch,
		input:  r.input(),
		accept: func(raw string) error {
			batch, err := content.RepairAndParse[content.QuizBatch](kind, raw)
			if err != nil {
				return err
			}
			batch, warnings, err := content.NormalizeQuizBatch(kind, r.langID, batch)
			if err != nil {
				return err
			}
			r.warn(kind, warnings)
			out.quiz = batch
			return nil
		},
		done: func() string { return labelQuizDone },
	}); err != nil {
		return nil, err
	}

	kind = string(prompts.PromptBugSnippetBatch)
	if err := r.step(ctx, stepSpec{
		index:  len(r.o.plan.Base) + 2,
		label:  labelBugStart,
		prompt: prompts.PromptBugSnippetBatch,
		input:  r.input(),
		accept: func(raw string) error {
			batch, err := content.RepairAndParse[content.BugSnippetBatch](kind, raw)
			if err != nil {
				return err
			}
			batch, warnings, err := content.NormalizeBugBatch(kind, r.langID, batch)
			if err != nil {
				return err
			}
			r.warn(kind, warnings)
			out.bugs = batch
			return nil
		},
		done: func() string { return labelBugDone },
	}); err != nil {
		return nil, err
	}

	entry, err := r.saveBase(ctx, &out)
	if err != nil {
		return nil, err
	}
	res := &Result{Language: entry, Stats: levelStats(out.levels)}
	r.emit.emit(Event{Step: StepComplete, Language: &res.Language, Stats: &res.Stats})
	r.refillCache(ctx, out.quiz.QuizQuestions, out.bugs.BugSnippets)
	return res, nil
}

func (r *run) acceptLevel(kind string, lvl plan.Level, dst *content.CurriculumLevel) llm.AcceptFunc {
	return func(raw string) error {
		batch, err := content.RepairAndParse[content.LevelBatch](kind, raw)
		if err != nil {
			return err
		}
		level, warnings, err := content.NormalizeLevel(kind, r.langID, lvl, batch)
		if err != nil {
			return err
		}
		r.warn(kind, warnings)
		*dst = level
		return nil
	}
}

// GenerateAdvanced appends the advanced levels and an advanced quiz to a language
// that already has a curriculum. name may be the display name or the id.
func (o *Orchestrator) GenerateAdvanced(ctx context.Context, name string, emit Emitter) (*Result, error) {
	ctx, r, finish, err := o.start(ctx, RunAdvanced, name, o.plan.AdvancedSteps, emit)
	if err != nil {
		return nil, err
	}
	res, err := r.generateAdvanced(ctx)
	finish(err)
	return res, err
}

// storedLevel is the part of a stored level that numbering depends on.
type storedLevel struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	RequiredXP int    `json:"requiredXP"`
}

type storedID struct {
	ID string `json:"id"`
}

func (r *run) generateAdvanced(ctx context.Context) (*Result, error) {
	dbc := r.o.dbc(ctx, nil)
	curRaw, err := r.o.catalog.Raw(dbc, contentTypeCurriculum, r.langID)
	if err != nil {
		return nil, err
	}
	existing, err := decodeStoredLevels(curRaw)
	if err != nil {
		return nil, err
	}
	registry, err := r.o.catalog.Registry(dbc)
	if err != nil {
		return nil, err
	}
	entry, ok := content.FindLanguage(registry, r.langID)
	if !ok {
		entry = content.NormalizeLanguage(r.langID, r.name, content.LanguageEntry{})
	}
	r.name = entry.Name
	quizIDs, err := r.storedQuizIDs(dbc)
	if err != nil {
		return nil, err
	}

	lastID, lastXP := 0, 0
	covered := make([]string, 0, len(existing))
	for _, l := range existing {
		lastID = max(lastID, l.ID)
		lastXP = max(lastXP, l.RequiredXP)
		covered = append(covered, l.Title)
	}
	levels := r.o.plan.ContinueAfter(lastID, lastXP)

	var out []content.CurriculumLevel
	newTopics := make([]string, 0, len(levels))
	for i, lvl := range levels {
		var level content.CurriculumLevel
		in := r.input()
		in.LevelID, in.LevelTitle, in.LevelTopic = lvl.ID, lvl.Title, lvl.Topic
		in.LessonCount, in.Recap = lvl.Lessons, lvl.Recap
		in.CoveredTopics = strings.Join(covered, ", ")
		kind := string(prompts.PromptAdvancedLevel)
		if err := r.step(ctx, stepSpec{
			index:  i + 1,
			label:  fmt.Sprintf("Niveau %d: %s (%d leçons)...", lvl.ID, lvl.Title, lvl.Lessons),
			prompt: prompts.PromptAdvancedLevel,
			input:  in,
			accept: r.acceptLevel(kind, lvl, &level),
			done: func() string {
				return fmt.Sprintf("Niveau %d: %s · %d leçons ✓", lvl.ID, lvl.Title, len(level.Lessons))
			},
		}); err != nil {
			return nil, err
		}
		out = append(out, level)
		newTopics = append(newTopics, lvl.Title+" ("+lvl.Topic+")")
	}

	var questions []content.QuizQuestion
	kind := string(prompts.PromptAdvancedQuiz)
	in := r.input()
	in.Count = advancedQuizCount
	in.CoveredTopics = strings.Join(newTopics, "; ")
	if err := r.step(ctx, stepSpec{
		index:  len(levels) + 1,
		label:  labelAdvQuizStart,
		prompt: prompts.PromptAdvancedQuiz,
		input:  in,
		accept: func(raw string) error {
			batch, err := content.RepairAndParse[content.AdvancedQuizBatch](kind, raw)
			if err != nil {
				return err
			}
			qs, warnings, err := content.NormalizeAdvancedQuiz(kind, r.langID, batch, quizIDs)
			if err != nil {
				return err
			}
			r.warn(kind, warnings)
			questions = qs
			return nil
		},
		done: func() string { return labelAdvQuizDone },
	}); err != nil {
		return nil, err
	}

	entry, questions, err = r.saveAdvanced(ctx, entry, out, questions)
	if err != nil {
		return nil, err
	}
	res := &Result{Language: entry, Stats: levelStats(out)}
	r.emit.emit(Event{Step: StepComplete, Language: &res.Language, Stats: &res.Stats})
	r.refillCache(ctx, questions, nil)
	return res, nil
}

func decodeStoredLevels(raw []byte) ([]storedLevel, error) {
	if raw == nil {
		return nil, ErrLanguageNotFound
	}
	var levels []storedLevel
	if err := json.Unmarshal(raw, &levels); err != nil {
		return nil, fmt.Errorf("stored curriculum: %w", err)
	}
	if len(levels) == 0 {
		return nil, ErrLanguageNotFound
	}
	return levels, nil
}

func levelStats(levels []content.CurriculumLevel) Stats {
	s := Stats{Levels: len(levels)}
	for _, l := range levels {
		s.Lessons += len(l.Lessons)
	}
	return s
}
