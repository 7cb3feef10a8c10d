package middelware

import (
	"kodikas-backend/models"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 5 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token bucket per client IP
type RateLimitMiddleware struct {
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimitMiddleware creates a limiter allowing requestsPerMinute per
// client. Zero or negative disables limiting.
func NewRateLimitMiddleware(requestsPerMinute int) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
	if requestsPerMinute > 0 {
		m.limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
		m.burst = requestsPerMinute
	}
	return m
}

// RateLimit returns a gin.HandlerFunc rejecting clients over their budget
func (m *RateLimitMiddleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.burst == 0 {
			c.Next()
			return
		}

		limiter := m.limiterFor(c.ClientIP())
		if !limiter.Allow() {
			retry := limiter.Reserve()
			delay := retry.Delay()
			retry.Cancel()

			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.APIResponse{
				Status:  "error",
				Code:    http.StatusTooManyRequests,
				Message: "Too many requests",
				Error: &models.APIError{
					Type:    "RateLimited",
					Details: "request budget exceeded, retry later",
				},
			})
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > limiterIdleTTL {
		for key, cl := range m.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(m.clients, key)
			}
		}
		m.lastSweep = now
	}

	cl, ok := m.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}
