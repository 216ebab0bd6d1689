package routes

import (
	"net/http"

	"personal-site-ai/internal/ai"
	"personal-site-ai/internal/config"
	"personal-site-ai/internal/rag"
	"personal-site-ai/internal/ratelimit"
	"personal-site-ai/middleware"

	"github.com/gin-gonic/gin"
)

// SetupStatusRoutes exposes the RAG stack's configuration and provider
// reachability for the site's status card.
func SetupStatusRoutes(router *gin.Engine, cfg *config.Config, embedder ai.Embedder, retriever *rag.Retriever, providers []rag.ChatProvider, storeKind string, limiter *ratelimit.Limiter) {
	router.GET("/api/rag-status",
		middleware.RateLimit(limiter, "public", cfg.RateLimitPublic),
		func(c *gin.Context) {
			providerStatus := make([]gin.H, 0, len(providers))
			reachable := false
			for _, p := range providers {
				available := p.Available(c.Request.Context())
				reachable = reachable || available
				providerStatus = append(providerStatus, gin.H{
					"name":      p.Name(),
					"model":     p.Model(),
					"available": available,
				})
			}

			c.JSON(http.StatusOK, gin.H{
				"embeddings": gin.H{
					"provider":   embedder.Provider(),
					"dimensions": embedder.Dimensions(),
					"threshold":  retriever.Threshold(),
				},
				"store": storeKind,
				"chat": gin.H{
					"available": reachable,
					"providers": providerStatus,
				},
			})
		})
}
