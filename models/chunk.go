package models

// Chunk is a bounded span of source text produced during ingestion.
// It is the unit of embedding and retrieval. Chunks are immutable;
// re-ingesting a source replaces its chunks wholesale.
type Chunk struct {
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Index    int    `json:"index"`
}

// EmbeddedChunk pairs a chunk's text with its vector representation.
// Vector length is fixed per deployment by the embedding model in use;
// mixing dimensions in one store is a configuration error.
type EmbeddedChunk struct {
	Text     string         `json:"text"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata"`
}
