package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func get(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	router := newRouter(SecurityHeaders())

	w := get(router, nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestCorrelationID_Generated(t *testing.T) {
	router := newRouter(CorrelationID())

	w := get(router, nil)

	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestCorrelationID_Propagated(t *testing.T) {
	router := newRouter(CorrelationID())

	w := get(router, map[string]string{"X-Correlation-ID": "req-123"})

	assert.Equal(t, "req-123", w.Header().Get("X-Correlation-ID"))
}

func TestCORS_Preflight(t *testing.T) {
	router := newRouter(CORS())

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	limiter := NewRateLimiter(logger, 1, 2)
	router := newRouter(limiter.Handler())

	// Burst of 2 passes, the third request in the same instant is
	// rejected.
	assert.Equal(t, http.StatusOK, get(router, nil).Code)
	assert.Equal(t, http.StatusOK, get(router, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, nil).Code)
}

func TestRateLimiter_Stop(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	limiter := NewRateLimiter(logger, 1, 1)
	limiter.Stop()
	limiter.Stop() // idempotent

	select {
	case <-limiter.done:
	default:
		t.Fatal("Stop() did not signal the cleanup goroutine")
	}
}
