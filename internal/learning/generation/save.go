package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/codemaster-backend/internal/domain"
	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/questioncache"
	"github.com/yungbote/codemaster-backend/internal/pkg/dbctx"
)

const contentTypeCurriculum = types.ContentTypeCurriculum

func (o *Orchestrator) dbc(ctx context.Context, tx *gorm.DB) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: tx}
}

// beginSave is the last cancellation point. Past it the run commits or fails as a whole.
func (r *run) beginSave(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.label = labelSave
	r.o.runs.Update(r.langID, StateSaving, r.total)
	r.emit.emit(Event{Step: StepSave, Label: labelSave})
	return nil
}

func (r *run) transaction(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	ctx, span := r.o.tracer.Start(ctx, "generation.save")
	defer span.End()
	err := r.o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.o.dbc(ctx, tx))
	})
	if err == nil {
		return nil
	}
	span.RecordError(err)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var se *catalog.ContentStoreError
	if errors.As(err, &se) || errors.Is(err, ErrLanguageNotFound) {
		return err
	}
	return &catalog.ContentStoreError{Op: "save", Err: err}
}

func (r *run) saveBase(ctx context.Context, out *baseOutput) (content.LanguageEntry, error) {
	if err := r.beginSave(ctx); err != nil {
		return content.LanguageEntry{}, err
	}
	entry := out.language
	err := r.transaction(ctx, func(dbc dbctx.Context) error {
		registry, err := r.o.catalog.Registry(dbc)
		if err != nil {
			return err
		}
		registry = content.MergeRegistry(registry, out.language, false)
		if err := r.o.catalog.SaveRegistry(dbc, registry); err != nil {
			return err
		}
		entry, _ = content.FindLanguage(registry, r.langID)

		collections := []struct {
			contentType string
			payload     any
		}{
			{types.ContentTypeCurriculum, out.levels},
			{types.ContentTypeQuizQuestions, out.quiz.QuizQuestions},
			{types.ContentTypeTypingWords, out.quiz.TypingWords},
			{types.ContentTypeMemoryPairs, out.quiz.MemoryPairs},
			{types.ContentTypeBugSnippets, out.bugs.BugSnippets},
			{types.ContentTypeCompletionChallenges, out.bugs.CompletionChallenges},
		}
		for _, c := range collections {
			if err := r.o.catalog.Put(dbc, c.contentType, r.langID, c.payload); err != nil {
				return err
			}
		}
		return nil
	})
	return entry, err
}

// saveAdvanced re-reads the stored curriculum and quiz bank inside the transaction
// and appends to them; question ids are re-checked against the fresh bank.
func (r *run) saveAdvanced(ctx context.Context, entry content.LanguageEntry, levels []content.CurriculumLevel, questions []content.QuizQuestion) (content.LanguageEntry, []content.QuizQuestion, error) {
	if err := r.beginSave(ctx); err != nil {
		return entry, nil, err
	}
	var saved []content.QuizQuestion
	err := r.transaction(ctx, func(dbc dbctx.Context) error {
		curRaw, err := r.o.catalog.Raw(dbc, types.ContentTypeCurriculum, r.langID)
		if err != nil {
			return err
		}
		if curRaw == nil {
			return ErrLanguageNotFound
		}
		curriculum, err := appendItems(curRaw, levels)
		if err != nil {
			return err
		}

		quizRaw, err := r.o.catalog.Raw(dbc, types.ContentTypeQuizQuestions, r.langID)
		if err != nil {
			return err
		}
		ids, err := quizIDs(quizRaw)
		if err != nil {
			return err
		}
		saved, _ = content.NormalizeQuizQuestions(r.langID, questions, ids)
		bank, err := appendItems(quizRaw, saved)
		if err != nil {
			return err
		}

		if err := r.o.catalog.PutRaw(dbc, types.ContentTypeCurriculum, r.langID, curriculum); err != nil {
			return err
		}
		if err := r.o.catalog.PutRaw(dbc, types.ContentTypeQuizQuestions, r.langID, bank); err != nil {
			return err
		}

		registry, err := r.o.catalog.Registry(dbc)
		if err != nil {
			return err
		}
		registry = content.MergeRegistry(registry, entry, false)
		entry, _ = content.FindLanguage(registry, r.langID)
		return r.o.catalog.SaveRegistry(dbc, registry)
	})
	return entry, saved, err
}

func (r *run) storedQuizIDs(dbc dbctx.Context) ([]string, error) {
	raw, err := r.o.catalog.Raw(dbc, types.ContentTypeQuizQuestions, r.langID)
	if err != nil {
		return nil, err
	}
	return quizIDs(raw)
}

func quizIDs(raw []byte) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	var items []storedID
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("stored quiz bank: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.ID != "" {
			ids = append(ids, it.ID)
		}
	}
	return ids, nil
}

// appendItems keeps stored elements verbatim so fields this service does not
// model survive the rewrite.
func appendItems[T any](stored []byte, add []T) ([]byte, error) {
	var items []json.RawMessage
	if stored != nil {
		if err := json.Unmarshal(stored, &items); err != nil {
			return nil, fmt.Errorf("stored collection: %w", err)
		}
	}
	for _, v := range add {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return json.Marshal(items)
}

// refillCache seeds the gameplay buckets with a saved run's questions. Items are
// stored without ids so they fingerprint like freshly generated gameplay items.
func (r *run) refillCache(ctx context.Context, quiz []content.QuizQuestion, bugs []content.BugSnippet) {
	if r.o.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if len(quiz) > 0 {
		items := make([]content.QuizQuestion, len(quiz))
		for i, q := range quiz {
			q.ID = ""
			items[i] = q
		}
		r.o.cache.Add(ctx, questioncache.KindQuiz, r.langID, questioncache.Encode(items))
	}
	if len(bugs) > 0 {
		items := make([]content.BugSnippet, len(bugs))
		for i, b := range bugs {
			b.ID = ""
			items[i] = b
		}
		r.o.cache.Add(ctx, questioncache.KindBug, r.langID, questioncache.Encode(items))
	}
}
