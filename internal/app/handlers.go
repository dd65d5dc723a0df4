package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/codemaster-backend/internal/http/handlers"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Content    *httpH.ContentHandler
	Generation *httpH.GenerationHandler
	Profile    *httpH.ProfileHandler
	Questions  *httpH.QuestionHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg *Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	// A nil orchestrator must stay a nil Generator.
	var gen httpH.Generator
	if services.Generation != nil {
		gen = services.Generation
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Content:    httpH.NewContentHandler(services.Content),
		Generation: httpH.NewGenerationHandler(log, gen, cfg.Generation.Heartbeat),
		Profile:    httpH.NewProfileHandler(services.Profile),
		Questions:  httpH.NewQuestionHandler(services.Questions),
	}
}
