package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/codemaster-backend/internal/http/handlers"
	httpMW "github.com/yungbote/codemaster-backend/internal/http/middleware"
	"github.com/yungbote/codemaster-backend/internal/observability"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	HealthHandler     *httpH.HealthHandler
	ContentHandler    *httpH.ContentHandler
	GenerationHandler *httpH.GenerationHandler
	ProfileHandler    *httpH.ProfileHandler
	QuestionHandler   *httpH.QuestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Health
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}

		// Content
		if cfg.ContentHandler != nil {
			api.GET("/content", cfg.ContentHandler.GetContent)
			api.GET("/content/all", cfg.ContentHandler.GetAll)
			api.GET("/content/languages", cfg.ContentHandler.ListLanguages)
			api.DELETE("/content/language/:id", cfg.ContentHandler.DeleteLanguage)
			api.GET("/content/export/:id", cfg.ContentHandler.ExportLanguage)
			api.POST("/content/import", cfg.ContentHandler.ImportLanguage)
		}

		// Generation (SSE + POST fallback)
		if cfg.GenerationHandler != nil {
			api.GET("/content/generate-language", cfg.GenerationHandler.StreamLanguage)
			api.POST("/content/generate-language", cfg.GenerationHandler.GenerateLanguage)
			api.GET("/content/generate-advanced", cfg.GenerationHandler.StreamAdvanced)
			api.POST("/content/generate-advanced", cfg.GenerationHandler.GenerateAdvanced)
			api.GET("/content/generation-runs", cfg.GenerationHandler.ListRuns)
		}

		// Profiles
		if cfg.ProfileHandler != nil {
			api.GET("/profile/:deviceId", cfg.ProfileHandler.GetProfile)
			api.PUT("/profile/:deviceId", cfg.ProfileHandler.PutProfile)
		}

		// Gameplay questions
		if cfg.QuestionHandler != nil {
			api.POST("/questions/generate", cfg.QuestionHandler.Generate)
			api.GET("/questions/draw", cfg.QuestionHandler.Draw)
			api.GET("/questions/cache", cfg.QuestionHandler.CacheStats)
			api.DELETE("/questions/cache", cfg.QuestionHandler.ClearCache)
		}
	}

	return r
}
