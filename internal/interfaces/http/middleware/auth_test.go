package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/listwise/backend/internal/infrastructure/identity"
	"github.com/stretchr/testify/assert"
)

func setupRouter(verifier identity.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(verifier))
	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, "subject=%s", Subject(c))
	})
	r.GET("/protected", RequireSubject(), func(c *gin.Context) {
		c.String(http.StatusOK, "subject=%s", Subject(c))
	})
	return r
}

func doRequest(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity_ValidToken(t *testing.T) {
	verifier := identity.NewHMACVerifier("test-secret")
	r := setupRouter(verifier)

	token := verifier.Sign("auth0|alice", time.Hour)
	w := doRequest(r, "/open", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "subject=auth0|alice", w.Body.String())
}

func TestIdentity_AnonymousPassesThrough(t *testing.T) {
	r := setupRouter(identity.NewHMACVerifier("test-secret"))

	// 未携带令牌作为匿名放行
	w := doRequest(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "subject=", w.Body.String())
}

func TestIdentity_MalformedHeader(t *testing.T) {
	r := setupRouter(identity.NewHMACVerifier("test-secret"))

	w := doRequest(r, "/open", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "401001")
}

func TestIdentity_InvalidToken(t *testing.T) {
	verifier := identity.NewHMACVerifier("test-secret")
	r := setupRouter(verifier)

	w := doRequest(r, "/open", "Bearer garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "401002")

	// 过期令牌同样拒绝
	expired := verifier.Sign("auth0|alice", -time.Minute)
	w = doRequest(r, "/open", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSubject(t *testing.T) {
	verifier := identity.NewHMACVerifier("test-secret")
	r := setupRouter(verifier)

	// 匿名访问被拒绝
	w := doRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "401003")

	// 认证后放行
	token := verifier.Sign("auth0|alice", time.Hour)
	w = doRequest(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}
