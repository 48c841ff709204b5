package resp

import (
	"errors"
	"net/http"

	"restaurant/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
}
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": msg})
}
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": msg})
}
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"ok": false, "error": msg})
}

// ServerError never echoes err to the client; the request logger picks it
// up from c.Errors.
func ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
}

// SeeOther is the redirect used after a successful form POST.
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Error maps the apperr taxonomy onto a JSON response.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrInvalidCredentials):
		Unauthorized(c, apperr.ErrInvalidCredentials.Error())
	case errors.Is(err, apperr.ErrUsernameTaken):
		Conflict(c, apperr.ErrUsernameTaken.Error())
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, "not found")
	case errors.Is(err, apperr.ErrReferenced):
		Conflict(c, apperr.ErrReferenced.Error())
	case errors.Is(err, apperr.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, "forbidden")
	case errors.Is(err, apperr.ErrUnauthenticated):
		Unauthorized(c, "unauthenticated")
	default:
		ServerError(c, err)
	}
}
