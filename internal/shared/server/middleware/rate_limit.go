package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/shared/telemetry"
)

// RateLimitConfig limits one route group per principal.
type RateLimitConfig struct {
	Group   string
	Limiter *limiter.Limiter
}

// PerMinute turns an average rate and a burst into a fixed window of burst requests.
// A zero rate means unlimited.
func PerMinute(perMinute float64, burst int) limiter.Rate {
	if perMinute <= 0 || burst <= 0 {
		return limiter.Rate{}
	}
	period := time.Duration(float64(burst) / perMinute * float64(time.Minute))
	return limiter.Rate{Period: period, Limit: int64(burst)}
}

// NewRateLimiter builds an in-memory limiter for rate.
func NewRateLimiter(rate limiter.Rate) *limiter.Limiter {
	return limiter.New(memory.NewStore(), rate)
}

// RateLimit counts requests by session username, falling back to the client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil || cfg.Limiter.Rate.Limit <= 0 || cfg.Limiter.Rate.Period <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		principal := strings.TrimSpace(IdentityFromContext(c).Username)
		if principal == "" {
			principal = "ip:" + strings.TrimSpace(c.ClientIP())
		}
		res, err := cfg.Limiter.Get(c.Request.Context(), cfg.Group+"|"+principal)
		if err != nil {
			telemetry.Warn("rate_limit.store_error", map[string]any{
				"group": cfg.Group,
				"error": err.Error(),
			})
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))
		if !res.Reached {
			c.Next()
			return
		}
		retryAfter := res.Reset - time.Now().Unix()
		if retryAfter < 1 {
			retryAfter = 1
		}
		seconds := strconv.FormatInt(retryAfter, 10)
		c.Header("Retry-After", seconds)
		respond.Error(c, http.StatusTooManyRequests, "rate_limited",
			"Too many requests. Please wait "+seconds+"s and try again.")
	}
}
