package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/server/services"
)

// setTokenCookies installs the pair as HttpOnly cookies. The same values are
// also returned in response bodies for clients that do not keep a cookie jar.
func (s *Server) setTokenCookies(c *gin.Context, pair *services.TokenPair) {
	access := int(s.cfg.AccessTokenValidityDuration.Seconds())
	refresh := int(s.cfg.RefreshTokenValidityDuration.Seconds())

	c.SetCookie(common.AccessTokenCookieName, pair.AccessToken, access, "/", "", s.cfg.SecureCookies, true)
	c.SetCookie(common.RefreshTokenCookieName, pair.RefreshToken, refresh, "/", "", s.cfg.SecureCookies, true)
}

func (s *Server) clearTokenCookies(c *gin.Context) {
	c.SetCookie(common.AccessTokenCookieName, "", -1, "/", "", s.cfg.SecureCookies, true)
	c.SetCookie(common.RefreshTokenCookieName, "", -1, "/", "", s.cfg.SecureCookies, true)
}
