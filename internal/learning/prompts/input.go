package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Target language
	Language      string
	LanguageID    string
	ContentLocale string
	// Curriculum level
	LevelID       int
	LevelTitle    string
	LevelTopic    string
	LessonCount   int
	Recap         bool
	CoveredTopics string
	// Batches
	Count      int
	Difficulty int
	Categories string
	AvoidJSON  string
}
