package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/data/repos/content"
	"github.com/yungbote/codemaster-backend/internal/data/repos/user"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type ContentRepo = content.ContentRepo
type ProfileRepo = user.ProfileRepo

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return content.NewContentRepo(db, baseLog)
}
func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}
