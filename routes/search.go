package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"personal-site-ai/internal/config"
	"personal-site-ai/internal/rag"
	"personal-site-ai/internal/ratelimit"
	"personal-site-ai/middleware"
	"personal-site-ai/models"
	"personal-site-ai/utils"

	"github.com/gin-gonic/gin"
)

const maxSearchLimit = 20

// SetupSearchRoutes wires semantic search over the site's content.
// Unlike chat, search has no meaningful degraded mode: if the query
// cannot be embedded the request fails outright.
func SetupSearchRoutes(router *gin.Engine, cfg *config.Config, retriever *rag.Retriever, limiter *ratelimit.Limiter) {
	router.GET("/api/search",
		middleware.RateLimit(limiter, "standard", cfg.RateLimitStd),
		func(c *gin.Context) {
			q := strings.TrimSpace(c.Query("q"))

			// Trivial queries short-circuit before any provider call
			if utf8.RuneCountInString(q) < rag.MinQueryLength {
				c.JSON(http.StatusOK, gin.H{"results": []models.SearchResult{}, "count": 0})
				return
			}

			limit := cfg.RetrievalLimit
			if raw := c.Query("limit"); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					limit = parsed
				}
			}
			if limit > maxSearchLimit {
				limit = maxSearchLimit
			}

			results, err := retriever.Retrieve(c.Request.Context(), q, limit)
			if err != nil {
				switch {
				case errors.Is(err, rag.ErrRetrievalUnavailable):
					utils.RespondWithServiceUnavailable(c, "retrieval_unavailable",
						"The embedding provider is unreachable. Please try again later.")
				case errors.Is(err, rag.ErrStoreRead):
					utils.RespondWithInternalError(c, "store_error",
						"Failed to search stored content")
				default:
					utils.RespondWithInternalError(c, "internal_error",
						"Failed to process search request")
				}
				return
			}

			if results == nil {
				results = []models.SearchResult{}
			}
			c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
		})
}
