package prompts

type PromptName string

const (
	// Language generation
	PromptLanguageInfo    PromptName = "language_info"
	PromptCurriculumLevel PromptName = "curriculum_level"
	PromptQuizBatch       PromptName = "quiz_batch"
	PromptBugSnippetBatch PromptName = "bug_snippet_batch"

	// Advanced extension
	PromptAdvancedLevel PromptName = "advanced_level"
	PromptAdvancedQuiz  PromptName = "advanced_quiz"

	// Gameplay refills
	PromptGameplayQuiz   PromptName = "gameplay_quiz"
	PromptGameplayOutput PromptName = "gameplay_output"
	PromptGameplayBug    PromptName = "gameplay_bug"
)
