package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/http/response"
	"github.com/yungbote/codemaster-backend/internal/services"
)

type QuestionHandler struct {
	questions services.QuestionService
}

func NewQuestionHandler(questions services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// POST /api/questions/generate
// body: { "lang": "python", "difficulty": 2, "categories": [...], "avoid": [...] }
func (h *QuestionHandler) Generate(c *gin.Context) {
	var req struct {
		Lang string `json:"lang"`
		services.QuestionOptions
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.questions.GenerateBatch(c.Request.Context(), req.Lang, req.QuestionOptions)
	if err != nil {
		response.RespondAPIError(c, err, "generate_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/questions/draw?kind=&lang=&count=
func (h *QuestionHandler) Draw(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_count", err)
			return
		}
		count = n
	}
	items, err := h.questions.Draw(c.Request.Context(), c.Query("kind"), c.Query("lang"), count)
	if err != nil {
		response.RespondAPIError(c, err, "draw_failed")
		return
	}
	response.RespondData(c, items)
}

// GET /api/questions/cache
func (h *QuestionHandler) CacheStats(c *gin.Context) {
	response.RespondOK(c, gin.H{"buckets": h.questions.Stats(c.Request.Context())})
}

// DELETE /api/questions/cache
func (h *QuestionHandler) ClearCache(c *gin.Context) {
	n := h.questions.Clear(c.Request.Context())
	response.RespondOK(c, gin.H{"ok": true, "cleared": n})
}
