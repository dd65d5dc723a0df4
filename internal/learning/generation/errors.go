package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/codemaster-backend/internal/clients/llm"
	"github.com/yungbote/codemaster-backend/internal/learning/catalog"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
)

var (
	ErrRunInProgress    = errors.New("a generation run is already active for this language")
	ErrLanguageNotFound = errors.New("language has no stored curriculum")
)

const (
	CodeInvalidLanguage  = "invalid_language"
	CodeRunInProgress    = "run_in_progress"
	CodeLanguageNotFound = "language_not_found"
	CodeCompletionFailed = "completion_failed"
	CodeMalformedContent = "malformed_content"
	CodeCanceled         = "canceled"
	CodeStoreFailed      = "store_failed"
	CodeGenerationFailed = "generation_failed"
)

// StepError ties a failure to the step that produced it.
type StepError struct {
	Step  int
	Kind  string
	Label string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ErrorCode classifies err for the error event and the HTTP layer.
func ErrorCode(err error) string {
	var (
		invalid    *content.InvalidLanguageNameError
		store      *catalog.ContentStoreError
		malformed  *content.MalformedContentError
		completion *llm.CompletionError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return CodeInvalidLanguage
	case errors.Is(err, ErrRunInProgress):
		return CodeRunInProgress
	case errors.Is(err, ErrLanguageNotFound):
		return CodeLanguageNotFound
	case errors.As(err, &store):
		return CodeStoreFailed
	case errors.As(err, &malformed):
		return CodeMalformedContent
	case errors.As(err, &completion):
		return CodeCompletionFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeGenerationFailed
	}
}
