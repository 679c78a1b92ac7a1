package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/store/backend/internal/infrastructure/auth"
	"github.com/store/backend/internal/infrastructure/config"
)

func newJWTService(t *testing.T, expiration time.Duration) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters!",
		AccessTokenExpiration: expiration,
		Issuer:                "store-backend-test",
	})
}

func authRouter(svc *auth.JWTService, blacklist auth.TokenBlacklist, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(JWTAuthConfig{JWTService: svc, TokenBlacklist: blacklist})}
	handlers = append(handlers, extra...)
	group := r.Group("/", handlers...)
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"member_id": GetJWTMemberID(c),
			"role":      GetJWTRole(c),
		})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	svc := newJWTService(t, time.Hour)
	memberID := uuid.New()

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(memberID, "buyer@example.com", "buyer")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		authRouter(svc, nil).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), memberID.String())
		assert.Contains(t, w.Body.String(), "buyer")
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		authRouter(svc, nil).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		authRouter(svc, nil).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token reports TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := newJWTService(t, -time.Minute)
		token, err := expiredSvc.GenerateAccessToken(memberID, "buyer@example.com", "buyer")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		authRouter(expiredSvc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("blacklisted token is rejected", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(memberID, "buyer@example.com", "buyer")
		require.NoError(t, err)
		claims, err := svc.ValidateAccessToken(token.Token)
		require.NoError(t, err)

		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		authRouter(svc, blacklist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	svc := newJWTService(t, time.Hour)

	request := func(role string) *httptest.ResponseRecorder {
		token, _ := svc.GenerateAccessToken(uuid.New(), role+"@example.com", role)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		authRouter(svc, nil, RequireRole("seller")).ServeHTTP(w, req)
		return w
	}

	t.Run("matching role passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request("seller").Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		w := request("buyer")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})
}
