package rag

import (
	"context"
	"fmt"

	"personal-site-ai/internal/ai"
	"personal-site-ai/models"
)

// MinQueryLength guards the embedding provider from trivial input.
// Shorter queries short-circuit to an empty result set upstream.
const MinQueryLength = 2

// Retriever composes the embedding generator with the vector store:
// query in, ranked passages out. Read-only, no side effects.
type Retriever struct {
	embedder  ai.Embedder
	store     VectorStore
	threshold float64
}

func NewRetriever(embedder ai.Embedder, store VectorStore, threshold float64) *Retriever {
	return &Retriever{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
	}
}

// Retrieve embeds the query and searches the store. An embedding
// failure fails the whole retrieval with ErrRetrievalUnavailable;
// store read failures keep their own error kind.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	return r.store.Search(ctx, vector, r.threshold, limit)
}

// Threshold exposes the configured similarity cutoff for status
// reporting.
func (r *Retriever) Threshold() float64 { return r.threshold }
