package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
)

// ServeWS upgrades the connection and joins the caller's notification
// room. Browsers cannot set headers on websocket dials, so the token
// rides in the query string.
func (s *Server) ServeWS(c *gin.Context) {
	if s.hub == nil {
		c.Error(apperrors.New("REALTIME_DISABLED", "realtime surface is not enabled", http.StatusServiceUnavailable))
		return
	}

	token := c.Query("token")
	if token == "" {
		c.Error(apperrors.Unauthorized(apperrors.CodeTokenInvalid, "token query parameter is required"))
		return
	}
	claims, err := middleware.ParseToken(s.jwtCfg.SigningKey, token)
	if err != nil {
		c.Error(apperrors.Unauthorized(apperrors.CodeTokenInvalid, "invalid token"))
		return
	}

	if err := s.hub.Serve(c.Writer, c.Request, claims.UserID); err != nil {
		c.Error(err)
	}
}
