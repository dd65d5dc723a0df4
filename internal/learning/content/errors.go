package content

import (
	"fmt"

	"github.com/yungbote/codemaster-backend/internal/pkg/httpx"
)

const (
	StageSyntax     = "syntax"
	StageValidation = "validation"
)

// MalformedContentError is returned when a model response cannot be turned into a
// valid payload: either it never parsed as JSON (syntax) or it broke a cardinality
// or bounds contract (validation).
type MalformedContentError struct {
	Kind    string
	Stage   string
	Err     error
	Snippet string
}

func (e *MalformedContentError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("malformed %s content (%s)", e.Kind, e.Stage)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedContentError) Unwrap() error { return e.Err }

func malformed(kind, stage string, err error, raw string) *MalformedContentError {
	return &MalformedContentError{Kind: kind, Stage: stage, Err: err, Snippet: httpx.Truncate(raw, 300)}
}

// InvalidLanguageNameError reports a display name that slugifies to nothing.
type InvalidLanguageNameError struct {
	Name string
}

func (e *InvalidLanguageNameError) Error() string {
	return fmt.Sprintf("invalid language name %q: no usable characters for an id", e.Name)
}
