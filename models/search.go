package models

// SearchResult is one ranked passage returned by the retrieval service.
// Similarity is cosine similarity in [0,1], higher is closer; rank is
// implicit in result ordering. Results are per-query and never persisted.
type SearchResult struct {
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}
