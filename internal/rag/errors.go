package rag

import "errors"

// Component failures are translated into this taxonomy at each
// boundary; raw provider errors never reach the HTTP layer.
var (
	// ErrInvalidQuery is a client error: empty query or over the
	// 1000-character cap. Never retried, never a server fault.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrievalUnavailable means the query could not be embedded.
	// Chat degrades to no-context; search surfaces it as a hard failure.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrNoProviderAvailable means neither the remote nor the local
	// chat backend is reachable. "Try later", not "broken".
	ErrNoProviderAvailable = errors.New("no chat provider available")

	// ErrGenerationFailed means a provider was reachable but its
	// completion call errored. Not retried automatically.
	ErrGenerationFailed = errors.New("completion generation failed")

	ErrStoreWrite = errors.New("vector store write failed")
	ErrStoreRead  = errors.New("vector store read failed")
)
