package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"target-shooting/internal/scoring"
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
	})
}

// writeDomainError maps the scoring error taxonomy onto HTTP statuses. Storage
// failures are reported generically.
func (s *Server) writeDomainError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, scoring.ErrNotFound):
		writeError(c, http.StatusNotFound, "game not found")
	case errors.Is(err, scoring.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, scoring.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, scoring.ErrInvalidState), errors.Is(err, scoring.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		s.log.Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		writeError(c, http.StatusInternalServerError, fallback)
	}
}
