package prompts

var quizCategories = []string{"bases", "conditions", "boucles", "fonctions", "structures", "avance"}

func languageInfoSchema(in Input) map[string]any {
	return ObjectSchema(map[string]any{
		"id":   ConstStringSchema(in.LanguageID),
		"name": ConstStringSchema(in.Language),
		"icon": map[string]any{"type": "string", "description": "exactly one emoji"},
	}, "id", "name", "icon")
}

func lessonSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"id":     StringSchema(),
		"title":  StringSchema(),
		"theory": map[string]any{"type": "string", "description": "HTML with h2, h3, p, pre>code, ul/li, div.tip; at least 150 words"},
		"exercise": ObjectSchema(map[string]any{
			"instruction": StringSchema(),
			"starterCode": StringSchema(),
			"validation": ObjectSchema(map[string]any{
				"type":     EnumSchema("output"),
				"expected": StringSchema(),
			}, "type", "expected"),
			"hints":    StringArraySchema(),
			"xpReward": IntSchema(),
		}, "instruction", "starterCode", "validation", "hints", "xpReward"),
	}, "id", "title", "theory", "exercise")
}

func levelSchema(in Input) map[string]any {
	return ObjectSchema(map[string]any{
		"lessons": ExactArraySchema(lessonSchema(), in.LessonCount),
	}, "lessons")
}

func quizQuestionSchema(withID bool) map[string]any {
	props := map[string]any{
		"category":    EnumSchema(quizCategories...),
		"difficulty":  IntRangeSchema(1, 3),
		"question":    StringSchema(),
		"choices":     ExactArraySchema(StringSchema(), 4),
		"correct":     IntRangeSchema(0, 3),
		"explanation": StringSchema(),
	}
	required := []string{"category", "difficulty", "question", "choices", "correct", "explanation"}
	if withID {
		props["id"] = StringSchema()
		required = append([]string{"id"}, required...)
	}
	return ObjectSchema(props, required...)
}

func quizBatchSchema(Input) map[string]any {
	pair := ObjectSchema(map[string]any{"term": StringSchema(), "match": StringSchema()}, "term", "match")
	return ObjectSchema(map[string]any{
		"quiz_questions": ExactArraySchema(quizQuestionSchema(true), 20),
		"typing_words": ObjectSchema(map[string]any{
			"keywords":    ExactArraySchema(StringSchema(), 25),
			"expressions": ExactArraySchema(StringSchema(), 20),
			"statements":  ExactArraySchema(StringSchema(), 10),
		}, "keywords", "expressions", "statements"),
		"memory_pairs": ExactArraySchema(ObjectSchema(map[string]any{
			"id":         StringSchema(),
			"category":   EnumSchema(quizCategories...),
			"difficulty": IntRangeSchema(1, 3),
			"pairs":      ExactArraySchema(pair, 6),
		}, "id", "category", "difficulty", "pairs"), 6),
	}, "quiz_questions", "typing_words", "memory_pairs")
}

func bugSnippetSchema(withID bool) map[string]any {
	props := map[string]any{
		"difficulty":  IntRangeSchema(1, 3),
		"category":    EnumSchema(quizCategories...),
		"title":       StringSchema(),
		"buggyCode":   StringSchema(),
		"fixedCode":   StringSchema(),
		"hint":        StringSchema(),
		"bugLine":     map[string]any{"type": "integer", "minimum": 1, "description": "1-indexed line of buggyCode"},
		"explanation": StringSchema(),
	}
	required := []string{"difficulty", "category", "title", "buggyCode", "fixedCode", "hint", "bugLine", "explanation"}
	if withID {
		props["id"] = StringSchema()
		required = append([]string{"id"}, required...)
	}
	return ObjectSchema(props, required...)
}

func bugBatchSchema(Input) map[string]any {
	return ObjectSchema(map[string]any{
		"bug_snippets": ExactArraySchema(bugSnippetSchema(true), 10),
		"completion_challenges": ExactArraySchema(ObjectSchema(map[string]any{
			"id":          StringSchema(),
			"difficulty":  IntRangeSchema(1, 3),
			"category":    EnumSchema(quizCategories...),
			"title":       StringSchema(),
			"description": StringSchema(),
			"template":    map[string]any{"type": "string", "description": "code with one ___BLANK___ per entry of blanks"},
			"blanks":      StringArraySchema(),
			"hints":       StringArraySchema(),
			"xpReward":    IntSchema(),
		}, "id", "difficulty", "category", "title", "description", "template", "blanks", "hints", "xpReward"), 10),
	}, "bug_snippets", "completion_challenges")
}

func advancedQuizSchema(in Input) map[string]any {
	return ObjectSchema(map[string]any{
		"quiz_questions": ExactArraySchema(quizQuestionSchema(true), in.Count),
	}, "quiz_questions")
}

func gameplayQuizSchema(in Input) map[string]any {
	return ExactArraySchema(quizQuestionSchema(false), in.Count)
}

func gameplayOutputSchema(in Input) map[string]any {
	return ExactArraySchema(ObjectSchema(map[string]any{
		"code":        map[string]any{"type": "string", "description": "1 to 3 lines"},
		"choices":     ExactArraySchema(StringSchema(), 4),
		"correct":     IntRangeSchema(0, 3),
		"explanation": StringSchema(),
	}, "code", "choices", "correct", "explanation"), in.Count)
}

func gameplayBugSchema(in Input) map[string]any {
	return ExactArraySchema(bugSnippetSchema(false), in.Count)
}
