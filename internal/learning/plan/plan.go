package plan

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed plan.yaml
var defaultPlanYAML []byte

type Level struct {
	ID          int    `yaml:"id"`
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Topic       string `yaml:"topic"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
	RequiredXP  int    `yaml:"required_xp"`
	XPIncrement int    `yaml:"xp_increment"`
	Lessons     int    `yaml:"lessons"`
	Recap       bool   `yaml:"recap"`
	Advanced    bool   `yaml:"-"`
}

type Plan struct {
	Base     []Level `yaml:"base"`
	Advanced []Level `yaml:"advanced"`
}

var (
	defaultOnce sync.Once
	defaultPlan *Plan
	defaultErr  error
)

// Default returns the embedded plan, parsed once.
func Default() (*Plan, error) {
	defaultOnce.Do(func() {
		defaultPlan, defaultErr = Parse(defaultPlanYAML)
	})
	return defaultPlan, defaultErr
}

func Parse(raw []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	for i := range p.Advanced {
		p.Advanced[i].Advanced = true
	}
	return &p, nil
}

func (p *Plan) validate() error {
	if len(p.Base) == 0 {
		return fmt.Errorf("no base levels")
	}
	seen := map[int]bool{}
	prevXP := -1
	for _, l := range p.Base {
		if l.ID <= 0 || seen[l.ID] {
			return fmt.Errorf("base level id %d missing or duplicated", l.ID)
		}
		seen[l.ID] = true
		if l.Lessons <= 0 {
			return fmt.Errorf("base level %d has no lessons", l.ID)
		}
		if l.RequiredXP <= prevXP {
			return fmt.Errorf("base level %d: required_xp must increase", l.ID)
		}
		prevXP = l.RequiredXP
	}
	for i, l := range p.Advanced {
		if l.Lessons <= 0 || l.XPIncrement <= 0 {
			return fmt.Errorf("advanced level %d (%s) needs lessons and xp_increment", i, l.Slug)
		}
	}
	return nil
}

// BaseSteps is the progress total reported for a base run: one step per level plus
// the quiz and bug batches. The language-info step is numbered 0 and not counted.
func (p *Plan) BaseSteps() int { return len(p.Base) + 2 }

// AdvancedSteps counts one step per advanced level plus the advanced quiz.
func (p *Plan) AdvancedSteps() int { return len(p.Advanced) + 1 }

func (p *Plan) BaseLessons() int {
	n := 0
	for _, l := range p.Base {
		n += l.Lessons
	}
	return n
}

// ContinueAfter numbers the advanced levels after an existing curriculum whose last
// level has id lastID and threshold lastXP. Thresholds accumulate each level's increment.
func (p *Plan) ContinueAfter(lastID, lastXP int) []Level {
	out := make([]Level, len(p.Advanced))
	xp := lastXP
	for i, l := range p.Advanced {
		xp += l.XPIncrement
		l.ID = lastID + i + 1
		l.RequiredXP = xp
		out[i] = l
	}
	return out
}
