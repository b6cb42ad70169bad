package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"workdesk.io/workdesk/internal/api/middleware"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "username and password are required"))
		return
	}

	user, err := s.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		// Same answer for unknown user and bad password.
		c.Error(apperrors.Unauthorized(apperrors.CodeAuthFailed, "invalid credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.Error(apperrors.Unauthorized(apperrors.CodeAuthFailed, "invalid credentials"))
		return
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwtCfg, user.ID, user.Username)
	if err != nil {
		c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue token", http.StatusInternalServerError))
		return
	}

	ok(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Me returns the authenticated user.
func (s *Server) Me(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err, apperrors.CodeUserNotFound, "user not found")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
