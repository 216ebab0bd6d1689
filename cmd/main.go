package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personal-site-ai/internal/ai"
	"personal-site-ai/internal/config"
	"personal-site-ai/internal/logger"
	"personal-site-ai/internal/rag"
	"personal-site-ai/internal/ratelimit"
	"personal-site-ai/internal/telemetry"
	"personal-site-ai/middleware"
	"personal-site-ai/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTracer("personal-site-ai", cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracing", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Embedding backend: Gemini when a key is present, Ollama otherwise
	embedder, err := ai.NewEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	// Vector store: Postgres when DATABASE_URL is set, in-process
	// otherwise (single-instance only). An explicitly configured store
	// that cannot be reached fails startup; silently serving zero
	// results from an empty fallback would just look healthy.
	store, storeKind, closeStore, err := buildVectorStore(cfg)
	if err != nil {
		log.Fatal("Failed to connect to the configured vector store: ", err)
	}
	defer closeStore()
	if storeKind == "memory" {
		logger.Warn("DATABASE_URL not set, using in-process vector store")
	}

	retriever := rag.NewRetriever(embedder, store, cfg.EmbeddingMatchThreshold)

	// Chat providers in priority order: remote first when configured
	var providers []rag.ChatProvider
	providerTimeout := time.Duration(cfg.ProviderTimeoutSecs) * time.Second
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiChatModel, cfg.GeminiTier)
		if err != nil {
			logger.Error("Failed to initialize Gemini provider", "error", err)
		} else {
			providers = append(providers, gemini)
			defer gemini.Close()
		}
	}
	providers = append(providers, ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel, providerTimeout))

	orchestrator := rag.NewOrchestrator(retriever, providers, cfg.RetrievalLimit, providerTimeout)

	// Rate limiting: Redis when configured, always with the in-process
	// fallback so a Redis outage degrades to local limiting
	memBackend := ratelimit.NewMemoryBackend()
	defer memBackend.Close()
	limiter := ratelimit.New(memBackend, nil)
	if rdb, err := config.NewRedisClient(cfg); err == nil {
		limiter = ratelimit.New(ratelimit.NewRedisBackend(rdb), memBackend)
		defer rdb.Close()
	} else {
		logger.Warn("Using in-process rate limiting", "reason", err.Error())
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware("personal-site-ai"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupSearchRoutes(router, cfg, retriever, limiter)
	routes.SetupChatRoutes(router, cfg, orchestrator, limiter)
	routes.SetupStatusRoutes(router, cfg, embedder, retriever, providers, storeKind, limiter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "store", storeKind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// buildVectorStore selects the store backend. Unset DATABASE_URL means
// the in-process store; a set but unreachable one is an error.
func buildVectorStore(cfg *config.Config) (rag.VectorStore, string, func(), error) {
	if cfg.DatabaseURL == "" {
		return rag.NewMemoryStore(), "memory", func() {}, nil
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return nil, "", nil, err
	}
	return rag.NewPostgresStore(db), "postgres", func() { db.Close() }, nil
}
