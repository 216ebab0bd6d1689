package models

// ChatRequest is the inbound chat payload. History lives client-side;
// the server only sees the current query.
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// ChatTurn is a single answered exchange. Provider identifies which
// backend produced the answer; Degraded is true when the answer was
// produced without grounding context or by a fallback provider.
type ChatTurn struct {
	Query    string         `json:"-"`
	Context  []SearchResult `json:"-"`
	Answer   string         `json:"answer"`
	Provider string         `json:"provider"`
	Model    string         `json:"model,omitempty"`
	Degraded bool           `json:"degraded"`
}
