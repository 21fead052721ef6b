package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/server/auth"
)

const ctxUserIDKey = "userID"

// bearerToken extracts the access token from the accessToken cookie, falling
// back to an Authorization: Bearer header.
func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie(common.AccessTokenCookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	return ""
}

// requireAuth rejects requests without a valid access token and puts the
// authenticated user id into the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := auth.ParseAccessToken(token, []byte(s.cfg.AccessTokenSecret))
		if err != nil {
			s.logger.Debug(c.Request.Context(), "access token rejected", "reason", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

// optionalAuth sets the user id when a valid token is present and lets the
// request through either way.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ParseAccessToken(token, []byte(s.cfg.AccessTokenSecret)); err == nil {
				c.Set(ctxUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
