package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"personal-site-ai/models"
)

// PostgresStore is the durable VectorStore, backed by pgvector. The
// ANN/threshold search primitive is the database's match_embeddings
// function; this adapter only marshals vectors and translates errors.
//
// Expected schema:
//
//	CREATE TABLE embeddings (
//	    id        bigserial PRIMARY KEY,
//	    content   text NOT NULL,
//	    embedding vector(768) NOT NULL,
//	    metadata  jsonb NOT NULL DEFAULT '{}'
//	);
//	-- match_embeddings(query vector, threshold float, match_count int)
//	-- returns (content, metadata, similarity) ordered by similarity
//	-- descending using cosine similarity (1 - cosine distance).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, text string, vector []float32, metadata map[string]any) error {
	if text == "" || len(vector) == 0 {
		return fmt.Errorf("%w: empty text or vector", ErrStoreWrite)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO embeddings (content, embedding, metadata) VALUES ($1, $2::vector, $3::jsonb)`,
		text, encodeVector(vector), metaJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrStoreRead)
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content, metadata, similarity FROM match_embeddings($1::vector, $2, $3)`,
		encodeVector(vector), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var (
			text     string
			metaJSON []byte
			sim      float64
		)
		if err := rows.Scan(&text, &metaJSON, &sim); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
		}

		metadata := map[string]any{}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &metadata); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
			}
		}

		results = append(results, models.SearchResult{
			Text:       text,
			Metadata:   metadata,
			Similarity: sim,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	return results, nil
}

func (s *PostgresStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM embeddings WHERE metadata->>'source' = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return int(n), nil
}

// encodeVector renders a vector in pgvector's text format: [1,2,3]
func encodeVector(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
