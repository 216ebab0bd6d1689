package rag

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"personal-site-ai/internal/logger"
	"personal-site-ai/models"
)

// MaxQueryLength caps chat queries. Anything longer fails validation
// before a single provider call is made.
const MaxQueryLength = 1000

const systemPrompt = `You are the author of this personal website, answering visitors in first person. Ground your answers in the context passages below, which come from the site's own writing. Use a friendly, professional tone.

If a question goes beyond what the context covers, say so and suggest reaching out through the contact page rather than inventing details.`

// ChatProvider is one language-model backend. Available is a cheap
// liveness/configuration probe; Generate is a single completion attempt.
type ChatProvider interface {
	Name() string
	Model() string
	Available(ctx context.Context) bool
	Generate(ctx context.Context, systemPrompt, query string) (string, error)
}

// ContextRetriever is what the orchestrator needs from the retrieval
// service.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Orchestrator answers a query grounded in retrieved passages, using
// whichever provider is reachable, and reports what actually happened.
// Providers are tried in priority order, one attempt each; retrieval
// failure degrades the answer instead of failing the request.
type Orchestrator struct {
	retriever ContextRetriever
	providers []ChatProvider
	limit     int
	timeout   time.Duration
}

func NewOrchestrator(retriever ContextRetriever, providers []ChatProvider, retrievalLimit int, providerTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		providers: providers,
		limit:     retrievalLimit,
		timeout:   providerTimeout,
	}
}

// Chat runs one request through the fixed pipeline: validate, retrieve,
// assemble, select provider, generate. The returned ChatTurn carries
// provenance: which provider answered and whether the answer is
// degraded (no grounding context, or a fallback provider).
func (o *Orchestrator) Chat(ctx context.Context, query string) (*models.ChatTurn, error) {
	query = strings.TrimSpace(query)
	if query == "" || utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, fmt.Errorf("%w: query must be 1-%d characters", ErrInvalidQuery, MaxQueryLength)
	}

	// Losing grounding degrades answer quality; losing generation is a
	// hard failure. Retrieval errors are therefore swallowed here.
	passages, err := o.retriever.Retrieve(ctx, query, o.limit)
	if err != nil {
		logger.Warn("Context retrieval failed, continuing without grounding", "error", err)
		passages = nil
	}

	prompt := assemblePrompt(passages)

	answered := false
	turn := &models.ChatTurn{Query: query, Context: passages, Degraded: len(passages) == 0}

	for i, provider := range o.providers {
		if !provider.Available(ctx) {
			continue
		}

		genCtx, cancel := context.WithTimeout(ctx, o.timeout)
		answer, err := provider.Generate(genCtx, prompt, query)
		cancel()
		if err != nil {
			logger.Error("Provider completion failed", "provider", provider.Name(), "error", err)
			answered = true // reachable but errored: GenerationFailed, not NoProvider
			continue
		}

		turn.Answer = answer
		turn.Provider = provider.Name()
		turn.Model = provider.Model()
		if i > 0 {
			turn.Degraded = true
		}
		return turn, nil
	}

	if answered {
		return nil, ErrGenerationFailed
	}
	return nil, ErrNoProviderAvailable
}

func assemblePrompt(passages []models.SearchResult) string {
	if len(passages) == 0 {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nContext passages:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "\nContext %d:\n%s\n", i+1, p.Text)
	}
	return b.String()
}
