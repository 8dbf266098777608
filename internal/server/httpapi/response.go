package httpapi

import (
	"errors"
	"net/http"

	"github.com/avoropay/finsync/internal/common"
	"github.com/gin-gonic/gin"
)

// errorResponse is the single error payload shape: a machine-readable
// reason code under "error".
type errorResponse struct {
	Error string `json:"error"`
}

// reason maps a sentinel error to its HTTP status and reason code.
// Anything unmapped is an internal failure: logged, reported as a bare
// server_error, detail never leaked.
func reason(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, common.ErrPasswordMismatch):
		return http.StatusBadRequest, "passwords_do_not_match"
	case errors.Is(err, common.ErrPasswordTooShort):
		return http.StatusBadRequest, "password_too_short"
	case errors.Is(err, common.ErrPasswordTooSimple):
		return http.StatusBadRequest, "password_needs_letter_and_digit"
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusConflict, "username_exists"
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusBadRequest, "user_not_found"
	case errors.Is(err, common.ErrInvalidRecoveryKey):
		return http.StatusBadRequest, "invalid_recovery_key"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrRefreshTokenExpired), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := reason(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "internal error", "error", err.Error())
	}
	c.JSON(status, errorResponse{Error: code})
}
