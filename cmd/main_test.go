package main

import (
	"testing"

	"personal-site-ai/internal/config"
	"personal-site-ai/internal/rag"
)

func TestBuildVectorStoreDefaultsToMemory(t *testing.T) {
	store, kind, closeStore, err := buildVectorStore(&config.Config{})
	if err != nil {
		t.Fatalf("unset DATABASE_URL must not error: %v", err)
	}
	defer closeStore()

	if kind != "memory" {
		t.Errorf("kind = %q, want memory", kind)
	}
	if _, ok := store.(*rag.MemoryStore); !ok {
		t.Errorf("store is %T, want *rag.MemoryStore", store)
	}
}

func TestBuildVectorStoreFailsWhenConfiguredStoreUnreachable(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "postgres://127.0.0.1:1/vectors?sslmode=disable&connect_timeout=1",
	}

	_, _, _, err := buildVectorStore(cfg)
	if err == nil {
		t.Fatal("expected a startup error when the configured store is unreachable")
	}
}
