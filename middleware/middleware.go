package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MayMartirosyan/svmotors-backend/auth"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	"github.com/MayMartirosyan/svmotors-backend/metrics"
)

// ClaimsKey is the context key the auth middleware stores parsed claims
// under.
const ClaimsKey = "claims"

// RequireAuth aborts requests without a valid session token and stores the
// parsed claims in the request context.
func RequireAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartControllers.BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		claims, err := tm.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// AdminAPIKey guards the back-office routes with a shared key supplied in
// the X-API-KEY header. An empty configured key locks the routes entirely.
func AdminAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin key"})
			return
		}
		c.Next()
	}
}

// WebhookBasicAuth protects the payment callback with HTTP basic auth.
// Credentials are compared in constant time. When none are configured the
// endpoint stays open, matching a gateway sandbox without auth support.
func WebhookBasicAuth(user, pass string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user == "" && pass == "" {
			c.Next()
			return
		}
		gotUser, gotPass, ok := c.Request.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(gotUser), []byte(user)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(gotPass), []byte(pass)) == 1
		if !ok || !userOK || !passOK {
			c.Header("WWW-Authenticate", `Basic realm="payment-callback"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
