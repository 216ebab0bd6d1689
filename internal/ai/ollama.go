package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama speaks plain HTTP on localhost; there is no SDK to import.
// Models in use: nomic-embed-text for embeddings (768 dimensions),
// llama3.2 for chat.

const ollamaProbeTimeout = 5 * time.Second

// OllamaEmbedder produces embeddings via a local Ollama server.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(map[string]string{
		"model":  e.model,
		"prompt": text,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: ollama embedding failed: %s", ErrEmbeddingUnavailable, msg)
	}

	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from ollama", ErrEmbeddingUnavailable)
	}
	return parsed.Embedding, nil
}

func (e *OllamaEmbedder) Provider() string { return "ollama" }

func (e *OllamaEmbedder) Dimensions() int { return 768 }

// OllamaProvider is the local/self-hosted chat backend. Liveness is
// probed via /api/tags before it is ever selected.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Model() string { return p.model }

// Available reports whether the Ollama server answers its tags endpoint.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, ollamaProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *OllamaProvider) Generate(ctx context.Context, systemPrompt, query string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		"stream": false,
		"options": map[string]any{
			"temperature": 0.4,
			"num_predict": 1000,
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama chat failed: %s", msg)
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Message.Content == "" {
		return "", fmt.Errorf("empty completion from ollama")
	}
	return parsed.Message.Content, nil
}
