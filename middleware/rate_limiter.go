package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 200 requests per minute per IP, with the full minute available as
// burst.
const (
	requestsPerMinute = 200
	burstSize         = 200
)

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var ipLimiters = &limiterStore{limiters: make(map[string]*rate.Limiter)}

func (s *limiterStore) forIP(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), burstSize)
		s.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware rejects callers that exceed the per-IP budget
// with a 429.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !ipLimiters.forIP(ip).Allow() {
			zap.L().Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
