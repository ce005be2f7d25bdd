package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/datacite/datafiles-service/config"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*clientLimiter{}
	limitersMu sync.Mutex
)

// SubmissionRateLimit applies a per-IP token bucket to the access request
// form, the only route a visitor can write through.
func SubmissionRateLimit() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := cfg.RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	interval := rate.Every(time.Minute / time.Duration(perMinute))

	return func(ctx *gin.Context) {
		if !getLimiter(ctx.ClientIP(), interval, perMinute).Allow() {
			ctx.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"code":    http.StatusTooManyRequests,
				"status":  "Too many requests",
				"message": "You have submitted too many requests, please try again later",
			})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	now := time.Now()
	for k, l := range limiters {
		if now.After(l.expires) {
			delete(limiters, k)
		}
	}

	if l, ok := limiters[key]; ok {
		l.expires = now.Add(limiterIdleTTL)
		return l.limiter
	}
	l := &clientLimiter{
		limiter: rate.NewLimiter(limit, burst),
		expires: now.Add(limiterIdleTTL),
	}
	limiters[key] = l
	return l.limiter
}
