package content

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/codemaster-backend/internal/learning/plan"
)

const (
	DefaultLessonXP      = 50
	RecapLessonXP        = 75
	DefaultChallengeXP   = 20
	DefaultCategory      = "bases"
	minTheoryWords       = 150
	choicesPerQuestion   = 4
	maxIconRunes         = 8
	validationTypeOutput = "output"
)

// LessonID is the canonical lesson id: {languageId}-l{levelId}-{seq:02}.
func LessonID(languageID string, levelID, seq int) string {
	return fmt.Sprintf("%s-l%d-%02d", languageID, levelID, seq)
}

// NormalizeLanguage pins id and name to the resolved values and replaces an unusable icon.
func NormalizeLanguage(languageID, name string, in LanguageEntry) LanguageEntry {
	icon := strings.TrimSpace(in.Icon)
	if !ValidIcon(icon) {
		icon = FallbackIcon
	}
	return LanguageEntry{ID: languageID, Name: strings.TrimSpace(name), Icon: icon}
}

// ValidIcon accepts a single short glyph sequence (emoji with modifiers included)
// and rejects words, digits and whitespace.
func ValidIcon(icon string) bool {
	n := utf8.RuneCountInString(icon)
	if n == 0 || n > maxIconRunes {
		return false
	}
	for _, r := range icon {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// NormalizeLevel turns the model's lesson list into a stored level. A lesson count
// that differs from the plan is rejected, never padded or truncated. Lesson ids are
// rewritten to the canonical scheme and the last lesson of a recap level is flagged.
func NormalizeLevel(kind, languageID string, lvl plan.Level, batch LevelBatch) (CurriculumLevel, []string, error) {
	if len(batch.Lessons) != lvl.Lessons {
		return CurriculumLevel{}, nil, malformed(kind, StageValidation,
			fmt.Errorf("level %d: got %d lessons, want %d", lvl.ID, len(batch.Lessons), lvl.Lessons), "")
	}
	var warnings []string
	lessons := make([]Lesson, len(batch.Lessons))
	for i, l := range batch.Lessons {
		want := LessonID(languageID, lvl.ID, i+1)
		if l.ID != want {
			if l.ID != "" {
				warnings = append(warnings, fmt.Sprintf("lesson id %q rewritten to %q", l.ID, want))
			}
			l.ID = want
		}
		l.Title = strings.TrimSpace(l.Title)
		l.Theory = strings.TrimSpace(l.Theory)
		if l.Title == "" || l.Theory == "" {
			return CurriculumLevel{}, nil, malformed(kind, StageValidation,
				fmt.Errorf("lesson %s is missing a title or theory", want), "")
		}
		if words := len(strings.Fields(stripTags(l.Theory))); words < minTheoryWords {
			warnings = append(warnings, fmt.Sprintf("lesson %s theory is short (%d words)", want, words))
		}
		if strings.TrimSpace(l.Exercise.Validation.Type) == "" {
			l.Exercise.Validation.Type = validationTypeOutput
		}
		if l.Exercise.Hints == nil {
			l.Exercise.Hints = []string{}
		}
		if l.Exercise.XPReward <= 0 {
			l.Exercise.XPReward = DefaultLessonXP
		}
		l.Recap = lvl.Recap && i == len(batch.Lessons)-1
		if l.Recap && l.Exercise.XPReward < RecapLessonXP {
			l.Exercise.XPReward = RecapLessonXP
		}
		lessons[i] = l
	}
	return CurriculumLevel{
		ID:         lvl.ID,
		Slug:       lvl.Slug,
		Title:      lvl.Title,
		Subtitle:   lvl.Topic,
		Icon:       lvl.Icon,
		Color:      lvl.Color,
		RequiredXP: lvl.RequiredXP,
		Advanced:   lvl.Advanced,
		Lessons:    lessons,
	}, warnings, nil
}

// NormalizeQuizBatch drops quiz questions and memory sets that break their
// contracts, regenerates missing or colliding ids and fills absent collections.
func NormalizeQuizBatch(kind, languageID string, in QuizBatch) (QuizBatch, []string, error) {
	questions, warnings := NormalizeQuizQuestions(languageID, in.QuizQuestions, nil)
	if len(questions) == 0 {
		return QuizBatch{}, nil, malformed(kind, StageValidation, fmt.Errorf("no valid quiz questions"), "")
	}
	pairs, pairWarnings := normalizeMemoryPairs(languageID, in.MemoryPairs)
	warnings = append(warnings, pairWarnings...)
	return QuizBatch{
		QuizQuestions: questions,
		TypingWords: TypingWords{
			Keywords:    cleanStrings(in.TypingWords.Keywords),
			Expressions: cleanStrings(in.TypingWords.Expressions),
			Statements:  cleanStrings(in.TypingWords.Statements),
		},
		MemoryPairs: pairs,
	}, warnings, nil
}

// NormalizeQuizQuestions validates questions for languageID. existingIDs are treated
// as taken, so appended questions never collide with a stored bank.
func NormalizeQuizQuestions(languageID string, in []QuizQuestion, existingIDs []string) ([]QuizQuestion, []string) {
	ids := newIDAllocator("q-"+languageID+"-", existingIDs...)
	out := make([]QuizQuestion, 0, len(in))
	var warnings []string
	for i, q := range in {
		if err := checkQuizQuestion(q); err != nil {
			warnings = append(warnings, fmt.Sprintf("quiz question %d dropped: %v", i, err))
			continue
		}
		q = tidyQuizQuestion(q)
		q.ID = ids.claim(q.ID)
		out = append(out, q)
	}
	return out, warnings
}

// NormalizeAdvancedQuiz validates questions appended to a stored bank. At least one
// question must survive.
func NormalizeAdvancedQuiz(kind, languageID string, in AdvancedQuizBatch, existingIDs []string) ([]QuizQuestion, []string, error) {
	questions, warnings := NormalizeQuizQuestions(languageID, in.QuizQuestions, existingIDs)
	if len(questions) == 0 {
		return nil, nil, malformed(kind, StageValidation, fmt.Errorf("no valid quiz questions"), "")
	}
	return questions, warnings, nil
}

// NormalizeGameplayQuiz validates id-less quiz items produced for live play.
func NormalizeGameplayQuiz(in []QuizQuestion) ([]QuizQuestion, []string) {
	out := make([]QuizQuestion, 0, len(in))
	var warnings []string
	for i, q := range in {
		if err := checkQuizQuestion(q); err != nil {
			warnings = append(warnings, fmt.Sprintf("quiz item %d dropped: %v", i, err))
			continue
		}
		out = append(out, tidyQuizQuestion(q))
	}
	return out, warnings
}

func NormalizeOutputQuestions(in []OutputQuestion) ([]OutputQuestion, []string) {
	out := make([]OutputQuestion, 0, len(in))
	var warnings []string
	for i, q := range in {
		q.Code = strings.TrimSpace(q.Code)
		if q.Code == "" {
			warnings = append(warnings, fmt.Sprintf("output item %d dropped: empty code", i))
			continue
		}
		if err := checkChoices(q.Choices, q.Correct); err != nil {
			warnings = append(warnings, fmt.Sprintf("output item %d dropped: %v", i, err))
			continue
		}
		out = append(out, q)
	}
	return out, warnings
}

func checkQuizQuestion(q QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("empty question")
	}
	return checkChoices(q.Choices, q.Correct)
}

func checkChoices(choices []string, correct int) error {
	if len(choices) != choicesPerQuestion {
		return fmt.Errorf("has %d choices, want %d", len(choices), choicesPerQuestion)
	}
	if correct < 0 || correct >= len(choices) {
		return fmt.Errorf("correct index %d out of range", correct)
	}
	return nil
}

func tidyQuizQuestion(q QuizQuestion) QuizQuestion {
	q.Question = strings.TrimSpace(q.Question)
	q.Difficulty = clampDifficulty(q.Difficulty)
	if strings.TrimSpace(q.Category) == "" {
		q.Category = DefaultCategory
	}
	return q
}

func normalizeMemoryPairs(languageID string, in []MemoryPairSet) ([]MemoryPairSet, []string) {
	ids := newIDAllocator("mp-" + languageID + "-")
	out := make([]MemoryPairSet, 0, len(in))
	var warnings []string
	for i, set := range in {
		pairs := make([]MemoryPair, 0, len(set.Pairs))
		for _, p := range set.Pairs {
			p.Term, p.Match = strings.TrimSpace(p.Term), strings.TrimSpace(p.Match)
			if p.Term == "" || p.Match == "" {
				continue
			}
			pairs = append(pairs, p)
		}
		if len(pairs) == 0 {
			warnings = append(warnings, fmt.Sprintf("memory set %d dropped: no complete pairs", i))
			continue
		}
		set.Pairs = pairs
		set.Difficulty = clampDifficulty(set.Difficulty)
		if strings.TrimSpace(set.Category) == "" {
			set.Category = DefaultCategory
		}
		set.ID = ids.claim(set.ID)
		out = append(out, set)
	}
	return out, warnings
}

// NormalizeBugBatch checks bug line bounds and blank counts, dropping offenders.
func NormalizeBugBatch(kind, languageID string, in BugSnippetBatch) (BugSnippetBatch, []string, error) {
	bugIDs := newIDAllocator("bug-" + languageID + "-")
	snippets, warnings := normalizeBugSnippets(in.BugSnippets)
	for i := range snippets {
		snippets[i].ID = bugIDs.claim(snippets[i].ID)
	}

	ccIDs := newIDAllocator("cc-" + languageID + "-")
	challenges := make([]CompletionChallenge, 0, len(in.CompletionChallenges))
	for i, c := range in.CompletionChallenges {
		blanks := strings.Count(c.Template, BlankMarker)
		if blanks == 0 || blanks != len(c.Blanks) {
			warnings = append(warnings, fmt.Sprintf("completion challenge %d dropped: %d markers for %d blanks", i, blanks, len(c.Blanks)))
			continue
		}
		c.Difficulty = clampDifficulty(c.Difficulty)
		if strings.TrimSpace(c.Category) == "" {
			c.Category = DefaultCategory
		}
		if c.Hints == nil {
			c.Hints = []string{}
		}
		if c.XPReward <= 0 {
			c.XPReward = DefaultChallengeXP
		}
		c.ID = ccIDs.claim(c.ID)
		challenges = append(challenges, c)
	}
	if len(snippets) == 0 && len(challenges) == 0 {
		return BugSnippetBatch{}, nil, malformed(kind, StageValidation, fmt.Errorf("no valid bug snippets or completion challenges"), "")
	}
	return BugSnippetBatch{BugSnippets: snippets, CompletionChallenges: challenges}, warnings, nil
}

// NormalizeGameplayBugs validates id-less bug items produced for live play.
func NormalizeGameplayBugs(in []BugSnippet) ([]BugSnippet, []string) {
	return normalizeBugSnippets(in)
}

func normalizeBugSnippets(in []BugSnippet) ([]BugSnippet, []string) {
	out := make([]BugSnippet, 0, len(in))
	var warnings []string
	for i, b := range in {
		if strings.TrimSpace(b.BuggyCode) == "" || strings.TrimSpace(b.FixedCode) == "" {
			warnings = append(warnings, fmt.Sprintf("bug snippet %d dropped: missing code", i))
			continue
		}
		if lines := lineCount(b.BuggyCode); b.BugLine < 1 || b.BugLine > lines {
			warnings = append(warnings, fmt.Sprintf("bug snippet %d dropped: bugLine %d outside 1..%d", i, b.BugLine, lines))
			continue
		}
		b.Difficulty = clampDifficulty(b.Difficulty)
		if strings.TrimSpace(b.Category) == "" {
			b.Category = DefaultCategory
		}
		out = append(out, b)
	}
	return out, warnings
}

func lineCount(code string) int {
	return strings.Count(strings.TrimRight(code, "\n"), "\n") + 1
}

func clampDifficulty(d int) int {
	switch {
	case d < 1:
		return 1
	case d > 3:
		return 3
	default:
		return d
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type idAllocator struct {
	prefix string
	taken  map[string]bool
	seq    int
}

func newIDAllocator(prefix string, existing ...string) *idAllocator {
	a := &idAllocator{prefix: prefix, taken: make(map[string]bool, len(existing))}
	for _, id := range existing {
		a.taken[id] = true
	}
	return a
}

// claim keeps id when it is free and otherwise hands out the next free {prefix}{NN}.
func (a *idAllocator) claim(id string) string {
	id = strings.TrimSpace(id)
	if id != "" && !a.taken[id] {
		a.taken[id] = true
		return id
	}
	for {
		a.seq++
		cand := fmt.Sprintf("%s%02d", a.prefix, a.seq)
		if !a.taken[cand] {
			a.taken[cand] = true
			return cand
		}
	}
}
