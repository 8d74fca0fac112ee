package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/middleware/requestid"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

// Limiter counts requests per client inside a fixed window.
type Limiter struct {
	mu        sync.Mutex
	counts    map[string]int
	windowEnd time.Time
	rate      int
	window    time.Duration
	now       func() time.Time
}

// NewLimiter builds a limiter allowing rate requests per window for each key.
func NewLimiter(rate int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		counts: make(map[string]int),
		rate:   rate,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it is within budget.
func (l *Limiter) Allow(key string) bool {
	if l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.windowEnd) {
		l.counts = make(map[string]int)
		l.windowEnd = now.Add(l.window)
	}

	if l.counts[key] >= l.rate {
		return false
	}
	l.counts[key]++
	return true
}

// Middleware rejects clients that exceed the limiter budget with 429.
func Middleware(limiter *Limiter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("request_id", requestid.Value(c)),
				zap.String("path", c.FullPath()),
			)
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
