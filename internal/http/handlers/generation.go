package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/http/response"
	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/generation"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
	"github.com/yungbote/codemaster-backend/internal/sse"
)

// Generator is the orchestrator surface the handlers drive.
type Generator interface {
	Generate(ctx context.Context, name string, emit generation.Emitter) (*generation.Result, error)
	GenerateAdvanced(ctx context.Context, name string, emit generation.Emitter) (*generation.Result, error)
	ActiveRuns() []generation.RunInfo
}

type runFunc func(ctx context.Context, name string, emit generation.Emitter) (*generation.Result, error)

type GenerationHandler struct {
	log       *logger.Logger
	gen       Generator
	heartbeat time.Duration
}

// NewGenerationHandler accepts a nil gen; generation endpoints then answer 503.
func NewGenerationHandler(log *logger.Logger, gen Generator, heartbeat time.Duration) *GenerationHandler {
	return &GenerationHandler{
		log:       log.With("handler", "GenerationHandler"),
		gen:       gen,
		heartbeat: heartbeat,
	}
}

// GET /api/content/generate-language?language=
func (h *GenerationHandler) StreamLanguage(c *gin.Context) {
	h.stream(c, c.Query("language"), h.base())
}

// POST /api/content/generate-language
// body: { "language": "Rust" }
func (h *GenerationHandler) GenerateLanguage(c *gin.Context) {
	h.call(c, h.base())
}

// GET /api/content/generate-advanced?language=
func (h *GenerationHandler) StreamAdvanced(c *gin.Context) {
	h.stream(c, c.Query("language"), h.advanced())
}

// POST /api/content/generate-advanced
func (h *GenerationHandler) GenerateAdvanced(c *gin.Context) {
	h.call(c, h.advanced())
}

// GET /api/content/generation-runs
func (h *GenerationHandler) ListRuns(c *gin.Context) {
	runs := []generation.RunInfo{}
	if h.gen != nil {
		runs = append(runs, h.gen.ActiveRuns()...)
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

func (h *GenerationHandler) base() runFunc {
	if h.gen == nil {
		return nil
	}
	return h.gen.Generate
}

func (h *GenerationHandler) advanced() runFunc {
	if h.gen == nil {
		return nil
	}
	return h.gen.GenerateAdvanced
}

// validate answers the request itself and returns false when generation cannot start.
func (h *GenerationHandler) validate(c *gin.Context, name string, run runFunc) bool {
	if strings.TrimSpace(name) == "" {
		response.RespondError(c, http.StatusBadRequest, "language_required", fmt.Errorf("missing language"))
		return false
	}
	if run == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "llm_unavailable", fmt.Errorf("no completion provider configured"))
		return false
	}
	if _, err := content.LanguageID(name); err != nil {
		response.RespondError(c, http.StatusBadRequest, generation.CodeInvalidLanguage, err)
		return false
	}
	return true
}

func (h *GenerationHandler) stream(c *gin.Context, name string, run runFunc) {
	if !h.validate(c, name, run) {
		return
	}
	stream, err := sse.Open(c.Writer, h.log)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", err)
		return
	}
	sse.Relay(c.Request.Context(), stream, h.heartbeat, func(ctx context.Context, emit func(generation.Event)) {
		_, _ = run(ctx, name, generation.Emitter(emit))
	})
}

func (h *GenerationHandler) call(c *gin.Context, run runFunc) {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !h.validate(c, req.Language, run) {
		return
	}
	res, err := run(c.Request.Context(), req.Language, nil)
	if err != nil {
		code := generation.ErrorCode(err)
		response.RespondError(c, generationStatus(code), code, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "language": res.Language, "stats": res.Stats})
}

func generationStatus(code string) int {
	switch code {
	case generation.CodeInvalidLanguage:
		return http.StatusBadRequest
	case generation.CodeLanguageNotFound:
		return http.StatusNotFound
	case generation.CodeRunInProgress:
		return http.StatusConflict
	case generation.CodeCompletionFailed, generation.CodeMalformedContent:
		return http.StatusBadGateway
	case generation.CodeCanceled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
