package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-service/pkg/metrics"
)

func serve(r http.Handler, method, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/recipes", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes"))
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes"))

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/recipes", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.JSONEq(t, `{"message":"Rate limit exceeded"}`, w.Body.String())
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	// one token refills after 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes"))
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ClaimsKey, map[string]interface{}{"sub": c.Query("user")})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/recipes", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes?user=a"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/recipes?user=a"))
	// same IP, different subject: separate bucket
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes?user=b"))
}

func TestRateLimitMiddleware_InstancesDoNotShareBuckets(t *testing.T) {
	r1 := gin.New()
	r1.Use(RateLimitMiddleware(0.5, 1))
	r1.GET("/recipes", func(c *gin.Context) { c.Status(http.StatusOK) })
	r2 := gin.New()
	r2.Use(RateLimitMiddleware(0.5, 1))
	r2.GET("/recipes", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r1, http.MethodGet, "/recipes"))
	require.Equal(t, http.StatusOK, serve(r2, http.MethodGet, "/recipes"))
}
