package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Content types stored in content_items.
const (
	TypeLanguages            = "languages"
	TypeCurriculum           = "curriculum"
	TypeQuizQuestions        = "quiz_questions"
	TypeTypingWords          = "typing_words"
	TypeMemoryPairs          = "memory_pairs"
	TypeBugSnippets          = "bug_snippets"
	TypeCompletionChallenges = "completion_challenges"
)

// DefaultKey is the content_key of every generated collection.
const DefaultKey = "default"

// ContentItem is one JSON payload keyed by (type, lang, content_key). Lang is NULL
// for global rows such as the language registry.
type ContentItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type       string         `gorm:"column:type;not null;uniqueIndex:idx_content_items_key,priority:1" json:"type"`
	Lang       *string        `gorm:"column:lang;uniqueIndex:idx_content_items_key,priority:2;index" json:"lang"`
	ContentKey string         `gorm:"column:content_key;not null;uniqueIndex:idx_content_items_key,priority:3" json:"content_key"`
	Data       datatypes.JSON `gorm:"column:data;not null" json:"data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (ContentItem) TableName() string { return "content_items" }

// ContentTypes lists the per-language collection types in export order.
func ContentTypes() []string {
	return []string{
		TypeCurriculum,
		TypeQuizQuestions,
		TypeTypingWords,
		TypeMemoryPairs,
		TypeBugSnippets,
		TypeCompletionChallenges,
	}
}
