package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventx/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: testSecret},
	}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", JWTAuthWithConfig(testConfig()), guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	router := newProtectedRouter(RequireRole(RoleOrganizer))
	token := signToken(t, jwt.MapClaims{
		"type":    "access",
		"user_id": "org-1",
		"role":    RoleOrganizer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	router := newProtectedRouter(RequireRole(RoleOrganizer))
	token := signToken(t, jwt.MapClaims{
		"type":    "access",
		"user_id": "user-1",
		"role":    RoleUser,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_MissingRoleClaim(t *testing.T) {
	router := newProtectedRouter(RequireRole(RoleOrganizer))
	// Token without a role claim: the stored value is nil, not a string.
	token := signToken(t, jwt.MapClaims{
		"type":    "access",
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoles_MissingRoleClaim(t *testing.T) {
	router := newProtectedRouter(RequireRoles(RoleOrganizer, RoleAdmin))
	token := signToken(t, jwt.MapClaims{
		"type":    "access",
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuth_RejectsMissingHeader(t *testing.T) {
	router := newProtectedRouter(RequireRole(RoleUser))

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_RejectsRefreshToken(t *testing.T) {
	router := newProtectedRouter(RequireRole(RoleUser))
	token := signToken(t, jwt.MapClaims{
		"type":    "refresh",
		"user_id": "user-1",
		"role":    RoleUser,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
