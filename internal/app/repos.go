package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/data/repos"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type Repos struct {
	Content repos.ContentRepo
	Profile repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Content: repos.NewContentRepo(db, log),
		Profile: repos.NewProfileRepo(db, log),
	}
}
