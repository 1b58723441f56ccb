package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayMartirosyan/svmotors-backend/auth"
	"github.com/MayMartirosyan/svmotors-backend/models"
)

func ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := auth.NewTokenManager("test-secret")
	r := gin.New()
	r.GET("/protected", RequireAuth(tm), ping())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	token, err := tm.Issue(&models.User{ID: 1, Email: "ivan@example.com"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAdminAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAPIKey("sekret"), ping())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "sekret")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAdminAPIKeyLockedWhenUnset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAPIKey(""), ping())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestWebhookBasicAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/callback", WebhookBasicAuth("shop", "pass"), ping())

	req := httptest.NewRequest(http.MethodPost, "/callback", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/callback", nil)
	req.SetBasicAuth("shop", "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/callback", nil)
	req.SetBasicAuth("shop", "pass")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestWebhookBasicAuthOpenWhenUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/callback", WebhookBasicAuth("", ""), ping())

	req := httptest.NewRequest(http.MethodPost, "/callback", nil)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}
