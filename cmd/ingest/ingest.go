package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"personal-site-ai/internal/ai"
	"personal-site-ai/internal/config"
	"personal-site-ai/internal/logger"
	"personal-site-ai/internal/rag"
	"personal-site-ai/models"

	"github.com/google/uuid"
)

// Minimum spacing between embedding calls so a full re-ingest stays
// inside the provider's request quota.
const embedPacing = 500 * time.Millisecond

// pacer enforces embedPacing between calls across the whole batch. The
// first call goes through immediately and nothing sleeps after the
// last one.
type pacer struct {
	last time.Time
}

func (p *pacer) wait() {
	if !p.last.IsZero() {
		if d := embedPacing - time.Since(p.last); d > 0 {
			time.Sleep(d)
		}
	}
	p.last = time.Now()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatal("Ingestion requires DATABASE_URL (the in-process store does not outlive this run): ", err)
	}
	defer db.Close()
	store := rag.NewPostgresStore(db)

	embedder, err := ai.NewEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	appendMode := os.Getenv("APPEND") == "1"
	batchID := uuid.NewString()
	ctx := context.Background()

	files, err := collectSourceFiles(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to read data directory %s: %v", cfg.DataDir, err)
	}
	if len(files) == 0 {
		log.Fatalf("No .md or .txt files found under %s", cfg.DataDir)
	}

	logger.Info("Ingestion starting",
		"files", len(files),
		"provider", embedder.Provider(),
		"dimensions", embedder.Dimensions(),
		"batch_id", batchID,
		"append", appendMode)

	inserted, failed := 0, 0
	pace := &pacer{}
	for _, path := range files {
		n, f := processFile(ctx, cfg, store, embedder, pace, path, appendMode, batchID)
		inserted += n
		failed += f
	}

	logger.Info("Ingestion finished", "inserted", inserted, "failed", failed, "batch_id", batchID)
	if inserted == 0 {
		os.Exit(1)
	}
}

func collectSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// processFile chunks, embeds and stores one document. Per-chunk
// failures are logged and skipped so one bad chunk or a transient
// provider error does not abort the batch.
func processFile(ctx context.Context, cfg *config.Config, store rag.VectorStore, embedder ai.Embedder, pace *pacer, path string, appendMode bool, batchID string) (inserted, failed int) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read file, skipping", "file", path, "error", err)
		return 0, 0
	}

	source := filepath.Base(path)

	// Replace-by-source keeps reruns idempotent
	if !appendMode {
		removed, err := store.DeleteBySource(ctx, source)
		if err != nil {
			logger.Error("Failed to clear existing chunks, skipping file", "source", source, "error", err)
			return 0, 0
		}
		if removed > 0 {
			logger.Info("Removed existing chunks", "source", source, "removed", removed)
		}
	}

	chunks := rag.SplitChunks(source, string(content), cfg.MaxChunkLength)
	logger.Info("Processing file", "source", source, "chunks", len(chunks))

	for _, chunk := range chunks {
		pace.wait()

		vector, err := embedder.Embed(ctx, chunk.Text)
		if err != nil {
			logger.Error("Embedding failed, skipping chunk", "source", source, "chunk", chunk.Index, "error", err)
			failed++
			continue
		}

		embedded := models.EmbeddedChunk{
			Text:   chunk.Text,
			Vector: vector,
			Metadata: map[string]any{
				"source":      source,
				"chunk_index": chunk.Index,
				"chunk_total": len(chunks),
				"provider":    embedder.Provider(),
				"dimensions":  embedder.Dimensions(),
				"batch_id":    batchID,
			},
		}

		if err := store.Insert(ctx, embedded.Text, embedded.Vector, embedded.Metadata); err != nil {
			logger.Error("Store insert failed, skipping chunk", "source", source, "chunk", chunk.Index, "error", err)
			failed++
		} else {
			inserted++
		}
	}

	return inserted, failed
}
