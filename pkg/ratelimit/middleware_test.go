package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestMiddleware_ExceedingBurstReturns429(t *testing.T) {
	r := newLimitedRouter(Config{
		RPS:             1,
		Burst:           2,
		CleanupInterval: time.Minute,
		MaxAge:          time.Minute,
	})

	assert.Equal(t, http.StatusOK, get(r))
	assert.Equal(t, http.StatusOK, get(r))
	assert.Equal(t, http.StatusTooManyRequests, get(r))
}

func TestMiddleware_ZeroConfigUsesDefaults(t *testing.T) {
	// A zero config must not panic the cleanup ticker and must allow
	// traffic up to the default burst.
	r := newLimitedRouter(Config{})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r))
	}
}
