package generation

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RunState string

const (
	StateIdle       RunState = "idle"
	StatePreparing  RunState = "preparing"
	StateGenerating RunState = "generating"
	StateSaving     RunState = "saving"
	StateComplete   RunState = "complete"
	StateFailed     RunState = "failed"
)

type RunKind string

const (
	RunBase     RunKind = "base"
	RunAdvanced RunKind = "advanced"
)

type RunInfo struct {
	ID         uuid.UUID `json:"id"`
	LanguageID string    `json:"languageId"`
	Language   string    `json:"language"`
	Kind       RunKind   `json:"kind"`
	State      RunState  `json:"state"`
	Step       int       `json:"step"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"startedAt"`
}

// Runs holds the active run per language id.
type Runs struct {
	mu     sync.Mutex
	active map[string]*RunInfo
}

func NewRuns() *Runs {
	return &Runs{active: map[string]*RunInfo{}}
}

func (r *Runs) Begin(languageID, language string, kind RunKind, total int) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[languageID]; busy {
		return uuid.Nil, ErrRunInProgress
	}
	info := &RunInfo{
		ID:         uuid.New(),
		LanguageID: languageID,
		Language:   language,
		Kind:       kind,
		State:      StatePreparing,
		Total:      total,
		StartedAt:  time.Now().UTC(),
	}
	r.active[languageID] = info
	return info.ID, nil
}

func (r *Runs) Update(languageID string, state RunState, step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.active[languageID]; ok {
		info.State = state
		info.Step = step
	}
}

func (r *Runs) End(languageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, languageID)
}

// Active returns a snapshot ordered by start time.
func (r *Runs) Active() []RunInfo {
	r.mu.Lock()
	out := make([]RunInfo, 0, len(r.active))
	for _, info := range r.active {
		out = append(out, *info)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].LanguageID < out[j].LanguageID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
