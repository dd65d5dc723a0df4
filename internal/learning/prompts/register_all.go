package prompts

const systemJSONOnly = `
You are an expert programming teacher writing content for a gamified learning app.
Learner-facing text (titles, theory, instructions, hints, explanations, questions) is written in {{.ContentLocale}}.
Code, identifiers and keywords stay in {{.Language}}.
Respond with ONLY valid JSON matching the contract you are given.
No prose before or after the JSON. No markdown code fences. No comments inside the JSON.`

func init() { RegisterAll() }

// RegisterAll registers every prompt kind. Safe to call more than once.
func RegisterAll() {
	// ---------- Language generation ----------

	RegisterSpec(Spec{
		Name:       PromptLanguageInfo,
		Version:    1,
		SchemaName: "language_info",
		Schema:     languageInfoSchema,
		System:     systemJSONOnly,
		User: `
Describe the programming language "{{.Language}}" for the course catalog.

JSON contract:
{{.Contract}}

Rules:
- id must be exactly "{{.LanguageID}}" and name exactly "{{.Language}}".
- icon is ONE emoji that evokes the language (Rust 🦀, Go 🐹, Java ☕, PHP 🐘, Ruby 💎, Swift 🍎, Kotlin 🟣, TypeScript 🔷, SQL 🗄️).
- No words or letters in icon.`,
		Validators: []Validator{requireLanguage},
	})

	RegisterSpec(Spec{
		Name:       PromptCurriculumLevel,
		Version:    1,
		SchemaName: "curriculum_level",
		Schema:     levelSchema,
		System:     systemJSONOnly,
		User:       curriculumLevelUser,
		Validators: []Validator{requireLanguage, requireLevel},
	})

	RegisterSpec(Spec{
		Name:       PromptQuizBatch,
		Version:    1,
		SchemaName: "quiz_batch",
		Schema:     quizBatchSchema,
		System:     systemJSONOnly,
		User: `
Write the practice bank for {{.Language}}.

JSON contract:
{{.Contract}}

Rules:
- quiz_questions: exactly 20, ids "q-{{.LanguageID}}-01" to "q-{{.LanguageID}}-20", spread across every category and difficulties 1 to 3.
- Each question has exactly 4 choices; correct is the 0-based index of the right one.
- typing_words: 25 keywords, 20 short expressions, 10 full statements, all valid {{.Language}}.
- memory_pairs: exactly 6 sets of 6 pairs, ids "mp-{{.LanguageID}}-01" to "mp-{{.LanguageID}}-06"; term is code, match is its meaning.`,
		Validators: []Validator{requireLanguage},
	})

	RegisterSpec(Spec{
		Name:       PromptBugSnippetBatch,
		Version:    1,
		SchemaName: "bug_snippet_batch",
		Schema:     bugBatchSchema,
		System:     systemJSONOnly,
		User: `
Write debugging and completion exercises for {{.Language}}.

JSON contract:
{{.Contract}}

Rules:
- bug_snippets: exactly 10, ids "bug-{{.LanguageID}}-01" to "bug-{{.LanguageID}}-10".
- buggyCode contains exactly one bug; bugLine is its 1-indexed line; fixedCode is the corrected program.
- completion_challenges: exactly 10, ids "cc-{{.LanguageID}}-01" to "cc-{{.LanguageID}}-10".
- template marks each missing piece with {{blank}}; blanks lists the answers in order, one per marker.
- xpReward is 20 unless the challenge is unusually long.
- Escape newlines inside strings as \n.`,
		Validators: []Validator{requireLanguage},
	})

	// ---------- Advanced extension ----------

	RegisterSpec(Spec{
		Name:       PromptAdvancedLevel,
		Version:    1,
		SchemaName: "advanced_level",
		Schema:     levelSchema,
		System:     systemJSONOnly,
		User: `
Extend an existing {{.Language}} course with an advanced level.

Level {{.LevelID}}: "{{.LevelTitle}}" ({{.LevelTopic}}).
Topics the learner already covered: {{.CoveredTopics}}

JSON contract:
{{.Contract}}

Rules:
- Exactly {{.LessonCount}} lessons. Lesson ids are "{{lessonID .LanguageID .LevelID 1}}", "{{lessonID .LanguageID .LevelID 2}}" and so on.
- Assume the covered topics are known; go deeper rather than repeating them.
- theory is HTML (h2, h3, p, pre>code, ul/li, div class="tip") of at least 150 words.
- exercise.validation.type is "output" and expected is the exact stdout of a correct solution.
- Every lesson has 2 or 3 hints and a xpReward between 60 and 120.`,
		Validators: []Validator{requireLanguage, requireLevel},
	})

	RegisterSpec(Spec{
		Name:       PromptAdvancedQuiz,
		Version:    1,
		SchemaName: "advanced_quiz",
		Schema:     advancedQuizSchema,
		System:     systemJSONOnly,
		User: `
Write {{.Count}} advanced quiz questions for {{.Language}} on: {{.CoveredTopics}}

JSON contract:
{{.Contract}}

Rules:
- Ids "q-{{.LanguageID}}-adv-01" onwards.
- Difficulty 2 or 3, category "avance".
- Exactly 4 choices; correct is the 0-based index of the right one.`,
		Validators: []Validator{requireLanguage, requireCount},
	})

	// ---------- Gameplay refills ----------

	RegisterSpec(Spec{
		Name:       PromptGameplayQuiz,
		Version:    1,
		SchemaName: "gameplay_quiz",
		Schema:     gameplayQuizSchema,
		System:     systemJSONOnly,
		User: `
Write {{.Count}} quiz questions about {{.Language}}{{if .Difficulty}} at difficulty {{.Difficulty}}{{end}}.
{{- if .Categories}}
Categories: {{.Categories}}
{{- end}}

Return a JSON array matching:
{{.Contract}}

Exactly 4 choices per question; correct is the 0-based index.
{{- if .AvoidJSON}}
Do not repeat any of these existing questions:
{{.AvoidJSON}}
{{- end}}`,
		Validators: []Validator{requireLanguage, requireCount},
	})

	RegisterSpec(Spec{
		Name:       PromptGameplayOutput,
		Version:    1,
		SchemaName: "gameplay_output",
		Schema:     gameplayOutputSchema,
		System:     systemJSONOnly,
		User: `
Write {{.Count}} "what does this print?" questions in {{.Language}}{{if .Difficulty}} at difficulty {{.Difficulty}}{{end}}.

Return a JSON array matching:
{{.Contract}}

code is 1 to 3 lines that print something deterministic. Exactly 4 choices; correct is the 0-based index of the actual output.
{{- if .AvoidJSON}}
Do not repeat any of these existing snippets:
{{.AvoidJSON}}
{{- end}}`,
		Validators: []Validator{requireLanguage, requireCount},
	})

	RegisterSpec(Spec{
		Name:       PromptGameplayBug,
		Version:    1,
		SchemaName: "gameplay_bug",
		Schema:     gameplayBugSchema,
		System:     systemJSONOnly,
		User: `
Write {{.Count}} short {{.Language}} programs that each contain exactly one bug{{if .Difficulty}}, difficulty {{.Difficulty}}{{end}}.

Return a JSON array matching:
{{.Contract}}

bugLine is the 1-indexed line of buggyCode holding the bug. Escape newlines inside strings as \n.
{{- if .AvoidJSON}}
Do not repeat any of these existing snippets:
{{.AvoidJSON}}
{{- end}}`,
		Validators: []Validator{requireLanguage, requireCount},
	})
}

const curriculumLevelUser = `
Write level {{.LevelID}} of a {{.Language}} course: "{{.LevelTitle}}" ({{.LevelTopic}}).

JSON contract:
{{.Contract}}

Rules:
- Exactly {{.LessonCount}} lessons, in teaching order. Lesson ids are "{{lessonID .LanguageID .LevelID 1}}", "{{lessonID .LanguageID .LevelID 2}}" and so on up to lesson {{.LessonCount}}.
- theory is HTML (h2, h3, p, pre>code, ul/li, div class="tip") of at least 150 words with runnable examples.
- exercise.starterCode compiles or runs as given; exercise.validation.type is "output" and expected is the exact stdout of a correct solution.
- Every lesson has 2 or 3 hints and xpReward 50.
{{- if .Recap}}
- The LAST lesson is a recap: its theory reviews the whole level and its exercise combines the level's topics (xpReward 75).
{{- end}}`
