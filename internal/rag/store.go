package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"personal-site-ai/models"
)

// VectorStore persists (text, vector, metadata) rows and answers
// nearest-neighbor queries. The similarity metric is cosine similarity
// and is fixed per deployment; mixing metrics silently changes recall.
type VectorStore interface {
	// Insert persists one embedded chunk. Failures wrap ErrStoreWrite;
	// batch callers skip-and-log per row rather than aborting.
	Insert(ctx context.Context, text string, vector []float32, metadata map[string]any) error

	// Search returns at most limit rows with similarity >= threshold,
	// ordered by similarity descending, ties stable by insertion order.
	Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error)

	// DeleteBySource removes all rows for a source, making re-ingestion
	// idempotent. Returns the number of rows removed.
	DeleteBySource(ctx context.Context, source string) (int, error)
}

type memoryRow struct {
	text     string
	vector   []float32
	metadata map[string]any
}

// MemoryStore is the in-process VectorStore: a linear cosine scan over
// an append-only slice. Suitable for a single instance and for tests;
// multi-instance deployments use the Postgres store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []memoryRow
	dims int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, text string, vector []float32, metadata map[string]any) error {
	if text == "" || len(vector) == 0 {
		return fmt.Errorf("%w: empty text or vector", ErrStoreWrite)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Vector length is fixed per deployment; a mismatch means two
	// embedding models were mixed, which is a configuration fault.
	if s.dims == 0 {
		s.dims = len(vector)
	} else if len(vector) != s.dims {
		return fmt.Errorf("%w: vector dimension %d does not match store dimension %d",
			ErrStoreWrite, len(vector), s.dims)
	}

	s.rows = append(s.rows, memoryRow{text: text, vector: vector, metadata: metadata})
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrStoreRead)
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.SearchResult, 0, limit)
	for _, row := range s.rows {
		sim, err := cosineSimilarity(vector, row.vector)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
		}
		if sim >= threshold {
			results = append(results, models.SearchResult{
				Text:       row.text,
				Metadata:   row.metadata,
				Similarity: sim,
			})
		}
	}

	// Stable keeps insertion order for equal similarities.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	removed := 0
	for _, row := range s.rows {
		if src, ok := row.metadata["source"].(string); ok && src == source {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return removed, nil
}

// Len reports the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same dimension (%d vs %d)", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
