package domain

import (
	"github.com/yungbote/codemaster-backend/internal/domain/content"
	"github.com/yungbote/codemaster-backend/internal/domain/user"
)

const (
	ContentTypeLanguages            = content.TypeLanguages
	ContentTypeCurriculum           = content.TypeCurriculum
	ContentTypeQuizQuestions        = content.TypeQuizQuestions
	ContentTypeTypingWords          = content.TypeTypingWords
	ContentTypeMemoryPairs          = content.TypeMemoryPairs
	ContentTypeBugSnippets          = content.TypeBugSnippets
	ContentTypeCompletionChallenges = content.TypeCompletionChallenges

	DefaultContentKey = content.DefaultKey
)

type ContentItem = content.ContentItem
type Profile = user.Profile

var ContentTypes = content.ContentTypes

// Models lists every table the service migrates.
func Models() []any {
	return []any{
		&ContentItem{},
		&Profile{},
	}
}
