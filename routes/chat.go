package routes

import (
	"errors"
	"net/http"

	"personal-site-ai/internal/config"
	"personal-site-ai/internal/logger"
	"personal-site-ai/internal/rag"
	"personal-site-ai/internal/ratelimit"
	"personal-site-ai/middleware"
	"personal-site-ai/models"
	"personal-site-ai/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes wires the chat endpoint. Each call costs a provider
// invocation, so it sits behind the strict AI-heavy quota.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, orch *rag.Orchestrator, limiter *ratelimit.Limiter) {
	router.POST("/api/chat",
		middleware.RateLimit(limiter, "ai", cfg.RateLimitAI),
		func(c *gin.Context) {
			var req models.ChatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
				return
			}

			turn, err := orch.Chat(c.Request.Context(), req.Query)
			if err != nil {
				if !errors.Is(err, rag.ErrInvalidQuery) {
					logger.Error("Chat request failed",
						"request_id", middleware.GetRequestID(c),
						"error", err)
				}
				switch {
				case errors.Is(err, rag.ErrInvalidQuery):
					utils.RespondWithBadRequest(c, "Query must be 1-1000 characters", nil)
				case errors.Is(err, rag.ErrNoProviderAvailable):
					utils.RespondWithServiceUnavailable(c, "service_unavailable",
						"No AI provider is reachable right now. Please try again later.")
				case errors.Is(err, rag.ErrGenerationFailed):
					utils.RespondWithInternalError(c, "generation_failed",
						"The AI provider failed to produce an answer.")
				default:
					utils.RespondWithInternalError(c, "internal_error",
						"Failed to process chat request")
				}
				return
			}

			c.JSON(http.StatusOK, turn)
		})
}
