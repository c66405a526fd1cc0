package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/gin-gonic/gin"
)

var errTooLarge = errors.New("upload exceeds the per-file limit")

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, contract.CodeTooLarge
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, contract.CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, contract.CodeNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, contract.CodeConflict
	default:
		return http.StatusInternalServerError, contract.CodeInternal
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("api_internal_error", "path", c.Request.URL.Path, "error", msg)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, contract.ErrorBody{Error: msg, Code: code})
}

// badRequest reports a body that could not be decoded.
func (s *Server) badRequest(c *gin.Context, err error) {
	s.writeError(c, domain.NewValidationError("body", "malformed", "%v", err))
}
