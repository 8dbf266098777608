package httpapi

import (
	"errors"
	"net/http"

	"github.com/avoropay/finsync/internal/common"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type registerResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	RecoveryKey string `json:"recoveryKey"`
}

// register creates an account. The response carries the recovery key —
// the only time it is ever revealed.
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, registerResponse{
		ID:          user.ID,
		Username:    user.Username,
		RecoveryKey: user.RecoveryKey,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	// Token duplicates AccessToken for older desktop builds.
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
}

// login verifies credentials and issues the token pair. Failed credentials
// are a bare 401 with no body, so nothing distinguishes an unknown
// username from a wrong password.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	res, err := s.auth.Login(c.Request.Context(), req.Username, req.Password, req.DeviceID)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.Status(http.StatusUnauthorized)
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  res.AccessToken,
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		UserID:       res.UserID,
		Username:     res.Username,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// refresh rotates the refresh session and mints a new access token.
func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	pair, err := s.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// logout is idempotent and always reports success.
func (s *Server) logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		_ = s.auth.Logout(c.Request.Context(), req.RefreshToken)
	}
	c.Status(http.StatusOK)
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	RecoveryKey string `json:"recoveryKey"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// resetPassword authenticates by recovery key; the key is rotated on
// success, so each one works exactly once.
func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	if err := s.auth.ResetPassword(c.Request.Context(), req.Username, req.RecoveryKey, req.NewPassword); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password_reset_success"})
}
