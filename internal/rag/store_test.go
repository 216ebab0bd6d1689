package rag

import (
	"context"
	"errors"
	"testing"
)

func mustInsert(t *testing.T, s *MemoryStore, text string, vector []float32, metadata map[string]any) {
	t.Helper()
	if err := s.Insert(context.Background(), text, vector, metadata); err != nil {
		t.Fatalf("insert %q: %v", text, err)
	}
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	s := NewMemoryStore()
	// Unit vectors at varying angles from the query (1,0)
	mustInsert(t, s, "exact", []float32{1, 0}, nil)
	mustInsert(t, s, "close", []float32{0.9, 0.1}, nil)
	mustInsert(t, s, "orthogonal", []float32{0, 1}, nil)
	mustInsert(t, s, "far", []float32{-1, 0}, nil)

	results, err := s.Search(context.Background(), []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results above 0.5, got %d", len(results))
	}
	if results[0].Text != "exact" || results[1].Text != "close" {
		t.Errorf("wrong order: %q, %q", results[0].Text, results[1].Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not descending at %d", i)
		}
	}
}

func TestMemoryStoreThresholdMonotonicity(t *testing.T) {
	s := NewMemoryStore()
	mustInsert(t, s, "a", []float32{1, 0}, nil)
	mustInsert(t, s, "b", []float32{0.8, 0.6}, nil)
	mustInsert(t, s, "c", []float32{0.6, 0.8}, nil)
	mustInsert(t, s, "d", []float32{0, 1}, nil)

	query := []float32{1, 0}
	var prevCount = -1
	var prevOrder []string

	for _, threshold := range []float64{0.95, 0.7, 0.5, 0.0} {
		results, err := s.Search(context.Background(), query, threshold, 10)
		if err != nil {
			t.Fatal(err)
		}

		// Raising the threshold never increases the count; iterating
		// from strict to loose, counts must be non-decreasing.
		if prevCount >= 0 && len(results) < prevCount {
			t.Errorf("threshold %v returned fewer results than stricter threshold", threshold)
		}

		// Retained results keep their relative order.
		order := make([]string, len(results))
		for i, r := range results {
			order[i] = r.Text
		}
		for i := range prevOrder {
			if order[i] != prevOrder[i] {
				t.Errorf("threshold %v reordered retained results: %v vs %v", threshold, order, prevOrder)
			}
		}

		prevCount = len(results)
		prevOrder = order
	}
}

func TestMemoryStoreStableTies(t *testing.T) {
	s := NewMemoryStore()
	// Identical vectors: ties must keep insertion order
	mustInsert(t, s, "first", []float32{1, 0}, nil)
	mustInsert(t, s, "second", []float32{1, 0}, nil)
	mustInsert(t, s, "third", []float32{1, 0}, nil)

	results, err := s.Search(context.Background(), []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, r := range results {
		if r.Text != want[i] {
			t.Errorf("tie order broken at %d: got %q want %q", i, r.Text, want[i])
		}
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	s := NewMemoryStore()
	mustInsert(t, s, "a", []float32{1, 0}, nil)
	mustInsert(t, s, "b", []float32{1, 0}, nil)
	mustInsert(t, s, "c", []float32{1, 0}, nil)

	results, err := s.Search(context.Background(), []float32{1, 0}, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit 2, got %d", len(results))
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	s := NewMemoryStore()
	mustInsert(t, s, "a", []float32{1, 0, 0}, nil)

	err := s.Insert(context.Background(), "b", []float32{1, 0}, nil)
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite for mixed dimensions, got %v", err)
	}
}

func TestMemoryStoreDeleteBySource(t *testing.T) {
	s := NewMemoryStore()
	mustInsert(t, s, "a", []float32{1, 0}, map[string]any{"source": "bio.md"})
	mustInsert(t, s, "b", []float32{1, 0}, map[string]any{"source": "bio.md"})
	mustInsert(t, s, "c", []float32{1, 0}, map[string]any{"source": "other.md"})

	removed, err := s.DeleteBySource(context.Background(), "bio.md")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 row left, got %d", s.Len())
	}
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := cosineSimilarity([]float32{1, 0}, []float32{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if sim < 0.999 {
		t.Errorf("identical vectors should score ~1, got %v", sim)
	}

	sim, _ = cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if sim > 0.001 {
		t.Errorf("orthogonal vectors should score ~0, got %v", sim)
	}

	if _, err := cosineSimilarity([]float32{1}, []float32{1, 0}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}

	// Zero vector scores 0 rather than dividing by zero
	sim, err = cosineSimilarity([]float32{0, 0}, []float32{1, 0})
	if err != nil || sim != 0 {
		t.Errorf("zero vector: sim=%v err=%v", sim, err)
	}
}
