package httpapi

import (
	"net/http"
	"strings"

	"github.com/avoropay/finsync/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// requireAccessToken verifies the bearer access token structurally
// (signature + expiry, no lookup) and stores the subject in the request
// context. The failure wording is uniform: a forged, malformed, or expired
// token all read the same to the caller.
func (s *Server) requireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid_token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid_token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
