package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/http/response"
	"github.com/yungbote/codemaster-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/profile/:deviceId
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	snap, err := h.profiles.Get(c.Request.Context(), c.Param("deviceId"))
	if err != nil {
		if isCode(err, "profile_not_found") {
			response.RespondNoData(c)
			return
		}
		response.RespondAPIError(c, err, "load_failed")
		return
	}
	response.RespondOK(c, snap)
}

// PUT /api/profile/:deviceId
// body: { "data": {...} }
func (h *ProfileHandler) PutProfile(c *gin.Context) {
	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.profiles.Put(c.Request.Context(), c.Param("deviceId"), req.Data); err != nil {
		response.RespondAPIError(c, err, "save_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
