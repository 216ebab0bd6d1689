package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// RateLimitPreset is a per-endpoint-class request quota.
type RateLimitPreset struct {
	Requests int
	Window   int // seconds
}

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Remote provider (Gemini)
	GeminiAPIKey    string
	GeminiChatModel string
	GeminiTier      string

	// Local provider (Ollama)
	OllamaBaseURL   string
	OllamaChatModel string

	// Embeddings
	EmbeddingsProvider    string // "google" (default when key present), "ollama"
	GoogleEmbeddingsModel string
	OllamaEmbedModel      string

	// Retrieval tuning. The threshold is a calibrated recall/precision
	// knob; re-tune it when the embedding model changes.
	EmbeddingMatchThreshold float64
	MaxChunkLength          int
	RetrievalLimit          int
	ProviderTimeoutSecs     int

	// Vector store. Empty DatabaseURL means the in-process store.
	DatabaseURL string

	// Rate limiting. Empty RedisURL means in-process counters only,
	// which is fine for a single instance and wrong for more than one.
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitWindow int
	RateLimitAI     RateLimitPreset
	RateLimitStd    RateLimitPreset
	RateLimitPublic RateLimitPreset

	// Ingestion
	DataDir string

	OTLPEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, err
		}
	}

	window := getEnvInt("RATE_LIMIT_WINDOW", 60)

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiChatModel: getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),

		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaChatModel: getEnv("OLLAMA_CHAT_MODEL", "llama3.2"),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OllamaEmbedModel:      getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		EmbeddingMatchThreshold: getEnvFloat64("EMBEDDING_MATCH_THRESHOLD", 0.5),
		MaxChunkLength:          getEnvInt("MAX_CHUNK_LENGTH", 1500),
		RetrievalLimit:          getEnvInt("RETRIEVAL_LIMIT", 5),
		ProviderTimeoutSecs:     getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RateLimitWindow: window,
		RateLimitAI:     RateLimitPreset{Requests: getEnvInt("RATE_LIMIT_AI", 5), Window: window},
		RateLimitStd:    RateLimitPreset{Requests: getEnvInt("RATE_LIMIT_STANDARD", 30), Window: window},
		RateLimitPublic: RateLimitPreset{Requests: getEnvInt("RATE_LIMIT_PUBLIC", 100), Window: window},

		DataDir: getEnv("DATA_DIR", "./data"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	// Default embeddings to whichever chat provider is configured, so a
	// deployment with only Ollama works without extra settings.
	if cfg.EmbeddingsProvider == "" {
		if cfg.GeminiAPIKey != "" {
			cfg.EmbeddingsProvider = "google"
		} else {
			cfg.EmbeddingsProvider = "ollama"
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
