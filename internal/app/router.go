package app

import (
	"github.com/yungbote/codemaster-backend/internal/http"
	"github.com/yungbote/codemaster-backend/internal/observability"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(cfg.Server.Addr(), http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		AllowedOrigins:    cfg.CORS.Origins(),
		Metrics:           metrics,
		HealthHandler:     handlers.Health,
		ContentHandler:    handlers.Content,
		GenerationHandler: handlers.Generation,
		ProfileHandler:    handlers.Profile,
		QuestionHandler:   handlers.Questions,
	})
}
