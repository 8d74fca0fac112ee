package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterResetsAfterWindow(t *testing.T) {
	current := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	limiter := NewLimiter(2, time.Minute)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))

	current = current.Add(time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestLimiterDisabledWhenRateZero(t *testing.T) {
	limiter := NewLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("client"))
	}
}

func TestMiddlewareReturnsTooManyRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(NewLimiter(1, time.Hour), nil))
	router.POST("/compute", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/compute", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/compute", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
