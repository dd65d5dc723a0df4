package content

// BlankMarker is the placeholder a completion challenge template uses for each blank.
const BlankMarker = "___BLANK___"

const FallbackIcon = "📦"

type LanguageEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Validation struct {
	Type     string `json:"type"`
	Expected string `json:"expected"`
}

type Exercise struct {
	Instruction string     `json:"instruction"`
	StarterCode string     `json:"starterCode"`
	Validation  Validation `json:"validation"`
	Hints       []string   `json:"hints"`
	XPReward    int        `json:"xpReward"`
}

type Lesson struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Theory   string   `json:"theory"`
	Recap    bool     `json:"recap,omitempty"`
	Exercise Exercise `json:"exercise"`
}

type CurriculumLevel struct {
	ID         int      `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Icon       string   `json:"icon"`
	Color      string   `json:"color"`
	RequiredXP int      `json:"requiredXP"`
	Advanced   bool     `json:"advanced,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// LevelBatch is the model's answer for one curriculum level.
type LevelBatch struct {
	Lessons []Lesson `json:"lessons"`
}

type QuizQuestion struct {
	ID          string   `json:"id,omitempty"`
	Category    string   `json:"category"`
	Difficulty  int      `json:"difficulty"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

type TypingWords struct {
	Keywords    []string `json:"keywords"`
	Expressions []string `json:"expressions"`
	Statements  []string `json:"statements"`
}

type MemoryPair struct {
	Term  string `json:"term"`
	Match string `json:"match"`
}

type MemoryPairSet struct {
	ID         string       `json:"id"`
	Category   string       `json:"category"`
	Difficulty int          `json:"difficulty"`
	Pairs      []MemoryPair `json:"pairs"`
}

type QuizBatch struct {
	QuizQuestions []QuizQuestion  `json:"quiz_questions"`
	TypingWords   TypingWords     `json:"typing_words"`
	MemoryPairs   []MemoryPairSet `json:"memory_pairs"`
}

// AdvancedQuizBatch extends an existing quiz bank; it carries questions only.
type AdvancedQuizBatch struct {
	QuizQuestions []QuizQuestion `json:"quiz_questions"`
}

type BugSnippet struct {
	ID          string `json:"id,omitempty"`
	Difficulty  int    `json:"difficulty"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	BuggyCode   string `json:"buggyCode"`
	FixedCode   string `json:"fixedCode"`
	Hint        string `json:"hint"`
	BugLine     int    `json:"bugLine"`
	Explanation string `json:"explanation"`
}

type CompletionChallenge struct {
	ID          string   `json:"id"`
	Difficulty  int      `json:"difficulty"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Template    string   `json:"template"`
	Blanks      []string `json:"blanks"`
	Hints       []string `json:"hints"`
	XPReward    int      `json:"xpReward"`
}

type BugSnippetBatch struct {
	BugSnippets          []BugSnippet          `json:"bug_snippets"`
	CompletionChallenges []CompletionChallenge `json:"completion_challenges"`
}

// OutputQuestion is a "guess the output" gameplay item.
type OutputQuestion struct {
	Code        string   `json:"code"`
	Choices     []string `json:"choices"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}
