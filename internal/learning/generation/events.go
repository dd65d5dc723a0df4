package generation

import "github.com/yungbote/codemaster-backend/internal/learning/content"

const (
	StepSave     = "save"
	StepComplete = "complete"
	StepFailed   = "error"
)

type Stats struct {
	Levels  int `json:"levels"`
	Lessons int `json:"lessons"`
}

// Event is one progress message. Step is a step index or one of StepSave,
// StepComplete and StepFailed.
type Event struct {
	Step     any                    `json:"step"`
	Total    int                    `json:"total,omitempty"`
	Label    string                 `json:"label,omitempty"`
	Done     bool                   `json:"done,omitempty"`
	Language *content.LanguageEntry `json:"language,omitempty"`
	Stats    *Stats                 `json:"stats,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Code     string                 `json:"code,omitempty"`
}

// Terminal reports whether the stream ends after e.
func (e Event) Terminal() bool {
	s, ok := e.Step.(string)
	return ok && (s == StepComplete || s == StepFailed)
}

// Emitter receives events in order on the generating goroutine.
type Emitter func(Event)

func (f Emitter) emit(e Event) {
	if f != nil {
		f(e)
	}
}
