package ai

import (
	"context"
	"errors"
	"fmt"

	"personal-site-ai/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmbeddingUnavailable marks a network/provider failure while
// producing an embedding. Callers must fail the operation rather than
// substitute a zero vector, which would corrupt similarity rankings.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// Embedder maps text to a fixed-dimension vector. Implementations are
// swappable; the dimension is fixed per deployment by the model in use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Provider() string
	Dimensions() int
}

// NewEmbedder selects the embedding backend: Gemini when an API key is
// configured, otherwise a local Ollama server.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
		}
		return NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.OllamaEmbedModel), nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
}

// GeminiEmbedder produces embeddings via Google Generative AI
// (text-embedding-004, 768 dimensions).
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(apiKey, model string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEmbeddingUnavailable)
	}
	return resp.Embedding.Values, nil
}

func (e *GeminiEmbedder) Provider() string { return "google" }

func (e *GeminiEmbedder) Dimensions() int { return 768 }

func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
