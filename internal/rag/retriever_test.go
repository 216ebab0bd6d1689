package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"personal-site-ai/internal/ai"
)

// stubEmbedder maps known texts to canned vectors so retrieval can be
// exercised without a provider.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: no stub vector for %q", ai.ErrEmbeddingUnavailable, text)
}

func (e *stubEmbedder) Provider() string { return "stub" }
func (e *stubEmbedder) Dimensions() int  { return 2 }

func TestRetrieveEndToEnd(t *testing.T) {
	store := NewMemoryStore()
	bio := "I am a software engineer."
	if err := store.Insert(context.Background(), bio, []float32{0.9, 0.44}, map[string]any{"source": "bio.md"}); err != nil {
		t.Fatal(err)
	}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"what do you do for work": {1, 0},
		"favorite recipes":        {0, 1},
	}}

	r := NewRetriever(embedder, store, 0.3)

	results, err := r.Retrieve(context.Background(), "what do you do for work", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Text != bio {
		t.Errorf("got %q", results[0].Text)
	}
	if results[0].Similarity < 0.3 {
		t.Errorf("similarity %v below threshold", results[0].Similarity)
	}
	if src := results[0].Metadata["source"]; src != "bio.md" {
		t.Errorf("metadata source = %v", src)
	}

	// Unrelated topic at a strict threshold finds nothing
	strict := NewRetriever(embedder, store, 0.9)
	results, err = strict.Retrieve(context.Background(), "favorite recipes", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{err: fmt.Errorf("%w: connection refused", ai.ErrEmbeddingUnavailable)}
	r := NewRetriever(embedder, NewMemoryStore(), 0.5)

	_, err := r.Retrieve(context.Background(), "anything", 5)
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Fatalf("expected ErrRetrievalUnavailable, got %v", err)
	}
}
