package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string { return "test-secret" }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newAdminEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", AuthRequired(testJWTConfig{}), RequireRole("admin"), func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID.String(), "admin": id.HasRole("admin")})
	})
	return engine
}

func doGet(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredAndRole(t *testing.T) {
	engine := newAdminEngine()
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("admin token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"admin"}, "exp": exp})
		rec := doGet(engine, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doGet(engine, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "refresh", "roles": []string{"admin"}, "exp": exp})
		assert.Equal(t, http.StatusUnauthorized, doGet(engine, token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access", "exp": time.Now().Add(-time.Minute).Unix()})
		assert.Equal(t, http.StatusUnauthorized, doGet(engine, token).Code)
	})

	t.Run("non admin", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"viewer"}, "exp": exp})
		rec := doGet(engine, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
	})
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", func(c *gin.Context) {
		c.Set(ContextRolesKey, []string{"admin"})
		c.Next()
	}, RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doGet(engine, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0, 2, nil)
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
