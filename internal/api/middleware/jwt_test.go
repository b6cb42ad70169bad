package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key-1234567890123456")

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SigningKey: testSigningKey,
		Issuer:     "workdesk",
		ExpiresIn:  time.Hour,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	token, expiresAt, err := GenerateToken(testJWTConfig(), 42, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ParseToken(testSigningKey, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "workdesk", claims.Issuer)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, _, err := GenerateToken(testJWTConfig(), 42, "alice")
	require.NoError(t, err)

	_, err = ParseToken([]byte("another-key-another-key-another!"), token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Minute

	token, _, err := GenerateToken(cfg, 42, "alice")
	require.NoError(t, err)

	_, err = ParseToken(testSigningKey, token)
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(testSigningKey))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c.Request.Context()),
			"username": GetUsername(c.Request.Context()),
		})
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := GenerateToken(testJWTConfig(), 7, "bob")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"username":"bob"`)
	})
}
