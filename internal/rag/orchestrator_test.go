package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"personal-site-ai/models"
)

type stubRetriever struct {
	results []models.SearchResult
	err     error
}

func (r *stubRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	return r.results, r.err
}

type stubProvider struct {
	name      string
	available bool
	answer    string
	err       error
	calls     int
}

func (p *stubProvider) Name() string                       { return p.name }
func (p *stubProvider) Model() string                      { return p.name + "-model" }
func (p *stubProvider) Available(ctx context.Context) bool { return p.available }
func (p *stubProvider) Generate(ctx context.Context, systemPrompt, query string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.answer, nil
}

func newTestOrchestrator(retriever ContextRetriever, providers ...ChatProvider) *Orchestrator {
	return NewOrchestrator(retriever, providers, 5, 5*time.Second)
}

func TestChatValidation(t *testing.T) {
	orch := newTestOrchestrator(&stubRetriever{}, &stubProvider{name: "gemini", available: true, answer: "ok"})

	cases := []string{"", "   ", strings.Repeat("a", 1001)}
	for _, query := range cases {
		_, err := orch.Chat(context.Background(), query)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("query %q: expected ErrInvalidQuery, got %v", query, err)
		}
	}

	// Exactly 1000 chars is still valid
	if _, err := orch.Chat(context.Background(), strings.Repeat("a", 1000)); err != nil {
		t.Errorf("1000-char query should pass validation: %v", err)
	}
}

func TestChatGrounded(t *testing.T) {
	retriever := &stubRetriever{results: []models.SearchResult{
		{Text: "I build backend systems.", Similarity: 0.8},
	}}
	primary := &stubProvider{name: "gemini", available: true, answer: "I work on backends."}

	orch := newTestOrchestrator(retriever, primary)

	turn, err := orch.Chat(context.Background(), "what do you do?")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Degraded {
		t.Error("grounded answer from the primary provider should not be degraded")
	}
	if turn.Provider != "gemini" {
		t.Errorf("provider = %q", turn.Provider)
	}
	if turn.Answer == "" {
		t.Error("empty answer")
	}
}

func TestChatDegradesOnRetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("embedding provider down")}
	provider := &stubProvider{name: "gemini", available: true, answer: "best effort answer"}

	orch := newTestOrchestrator(retriever, provider)

	turn, err := orch.Chat(context.Background(), "what do you do?")
	if err != nil {
		t.Fatalf("retrieval failure must not fail the chat: %v", err)
	}
	if !turn.Degraded {
		t.Error("expected degraded=true without grounding context")
	}
	if turn.Answer == "" {
		t.Error("expected a non-empty answer")
	}
}

func TestChatFallbackProvider(t *testing.T) {
	retriever := &stubRetriever{results: []models.SearchResult{{Text: "ctx", Similarity: 0.9}}}
	primary := &stubProvider{name: "gemini", available: false}
	secondary := &stubProvider{name: "ollama", available: true, answer: "local answer"}

	orch := newTestOrchestrator(retriever, primary, secondary)

	turn, err := orch.Chat(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Provider != "ollama" {
		t.Errorf("provider = %q", turn.Provider)
	}
	if !turn.Degraded {
		t.Error("answer from a fallback provider must be flagged degraded")
	}
	if primary.calls != 0 {
		t.Errorf("unavailable primary was called %d times", primary.calls)
	}
}

func TestChatNoProviderAvailable(t *testing.T) {
	primary := &stubProvider{name: "gemini", available: false}
	secondary := &stubProvider{name: "ollama", available: false}

	orch := newTestOrchestrator(&stubRetriever{}, primary, secondary)

	_, err := orch.Chat(context.Background(), "hello there")
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable, got %v", err)
	}
	if primary.calls != 0 || secondary.calls != 0 {
		t.Error("no completion call should be made beyond the liveness probes")
	}
}

func TestChatGenerationFailed(t *testing.T) {
	provider := &stubProvider{name: "gemini", available: true, err: errors.New("upstream 500")}

	orch := newTestOrchestrator(&stubRetriever{}, provider)

	_, err := orch.Chat(context.Background(), "hello there")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", provider.calls)
	}
}

func TestChatFallsThroughAfterGenerationError(t *testing.T) {
	primary := &stubProvider{name: "gemini", available: true, err: errors.New("upstream 500")}
	secondary := &stubProvider{name: "ollama", available: true, answer: "local answer"}

	orch := newTestOrchestrator(&stubRetriever{results: []models.SearchResult{{Text: "ctx"}}}, primary, secondary)

	turn, err := orch.Chat(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Provider != "ollama" || !turn.Degraded {
		t.Errorf("expected degraded ollama answer, got provider=%q degraded=%v", turn.Provider, turn.Degraded)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected one attempt each, got %d and %d", primary.calls, secondary.calls)
	}
}

func TestAssemblePromptIncludesPassages(t *testing.T) {
	prompt := assemblePrompt([]models.SearchResult{
		{Text: "passage one"},
		{Text: "passage two"},
	})
	if !strings.Contains(prompt, "passage one") || !strings.Contains(prompt, "passage two") {
		t.Error("prompt missing context passages")
	}
	if !strings.Contains(prompt, "Context 1") || !strings.Contains(prompt, "Context 2") {
		t.Error("prompt missing passage numbering")
	}
}
