package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err with the status and code carried by an *apierr.Error,
// or a 500 with fallbackCode.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	status, code, resolved := apierr.Resolve(err, fallbackCode)
	RespondError(c, status, code, resolved)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondData wraps payload as {"data": payload}.
func RespondData(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, gin.H{"data": payload})
}

func RespondNoData(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"data": nil})
}
