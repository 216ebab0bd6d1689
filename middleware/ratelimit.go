package middleware

import (
	"strconv"
	"time"

	"personal-site-ai/internal/config"
	"personal-site-ai/internal/ratelimit"
	"personal-site-ai/utils"

	"github.com/gin-gonic/gin"
)

// RateLimit wraps any handler chain with a fixed-window quota for one
// endpoint class. It resolves the caller's identity, consults the
// limiter, and attaches X-RateLimit-* headers before the handler runs,
// so denials and failed handlers still carry them. Denials
// short-circuit with 429 and a Retry-After hint.
func RateLimit(limiter *ratelimit.Limiter, class string, preset config.RateLimitPreset) gin.HandlerFunc {
	window := time.Duration(preset.Window) * time.Second

	return func(c *gin.Context) {
		// Health probes are not subject to quotas
		if c.FullPath() == "/health" {
			c.Next()
			return
		}

		identity := utils.ResolveClientIdentity(c.Request.Header)
		key := "ratelimit:" + class + ":" + identity

		decision := limiter.Check(c.Request.Context(), key, preset.Requests, window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		c.Header("X-RateLimit-Backend", decision.Backend)

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			utils.RespondWithError(c, 429,
				"rate_limit_exceeded",
				"Too many requests. Please try again later.",
				gin.H{
					"retry_after": retryAfter,
					"limit":       decision.Limit,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}
