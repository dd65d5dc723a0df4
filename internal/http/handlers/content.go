package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/http/response"
	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
	"github.com/yungbote/codemaster-backend/internal/services"
)

type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GET /api/content?type=&lang=&key=
func (h *ContentHandler) GetContent(c *gin.Context) {
	data, err := h.content.Get(c.Request.Context(), c.Query("type"), c.Query("lang"), c.Query("key"))
	if err != nil {
		if isCode(err, "content_not_found") {
			response.RespondNoData(c)
			return
		}
		response.RespondAPIError(c, err, "content_load_failed")
		return
	}
	response.RespondData(c, data)
}

// GET /api/content/all
func (h *ContentHandler) GetAll(c *gin.Context) {
	all, err := h.content.All(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "content_load_failed")
		return
	}
	response.RespondData(c, all)
}

// GET /api/content/languages
func (h *ContentHandler) ListLanguages(c *gin.Context) {
	langs, err := h.content.Languages(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "content_load_failed")
		return
	}
	response.RespondData(c, langs)
}

// DELETE /api/content/language/:id
func (h *ContentHandler) DeleteLanguage(c *gin.Context) {
	removed, err := h.content.DeleteLanguage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err, "delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "removed": removed})
}

// GET /api/content/export/:id
func (h *ContentHandler) ExportLanguage(c *gin.Context) {
	doc, err := h.content.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="codemaster-`+doc.Language.ID+`.json"`)
	response.RespondOK(c, doc)
}

// POST /api/content/import
func (h *ContentHandler) ImportLanguage(c *gin.Context) {
	var doc services.ExportDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_format", err)
		return
	}
	entry, err := h.content.Import(c.Request.Context(), &doc)
	if err != nil {
		response.RespondAPIError(c, err, "import_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "language": entry})
}

func isCode(err error, code string) bool {
	var ae *apierr.Error
	return errors.As(err, &ae) && ae.Code == code
}
