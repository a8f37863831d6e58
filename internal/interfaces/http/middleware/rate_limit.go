package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const rateWindow = time.Minute

// RateCounter counts hits per key within a fixed window
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP per minute. Counting happens
// in Redis when a counter is given; otherwise each process keeps a token
// bucket per IP. A failing counter lets the request through.
func RateLimit(limit int, counter RateCounter, log *logrus.Logger) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if counter == nil {
		return localRateLimit(limit)
	}

	limitHeader := strconv.Itoa(limit)
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		current, err := counter.Hit(ctx, c.ClientIP(), rateWindow)
		if err != nil {
			log.WithError(err).Warn("rate limit counter unavailable")
			c.Next()
			return
		}

		remaining := int64(limit) - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if current > int64(limit) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.Header("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": msgRateLimited.in(Language(c)),
		"code":  "RATE_LIMITED",
	})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu    sync.Mutex
	byIP  map[string]*visitor
	limit rate.Limit
	burst int
}

const (
	visitorIdle  = 10 * time.Minute
	visitorSweep = 10000
)

func (v *visitors) get(ip string, now time.Time) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.byIP) >= visitorSweep {
		for key, vis := range v.byIP {
			if now.Sub(vis.lastSeen) > visitorIdle {
				delete(v.byIP, key)
			}
		}
	}

	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func localRateLimit(limit int) gin.HandlerFunc {
	v := &visitors{
		byIP:  make(map[string]*visitor),
		limit: rate.Every(rateWindow / time.Duration(limit)),
		burst: limit,
	}
	limitHeader := strconv.Itoa(limit)

	return func(c *gin.Context) {
		limiter := v.get(c.ClientIP(), time.Now())
		c.Header("X-RateLimit-Limit", limitHeader)
		if !limiter.Allow() {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}
