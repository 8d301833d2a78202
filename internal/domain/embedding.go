package domain

import "context"

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "matchmaker:"

// EmbeddingResult is a vector plus the token usage the provider reported.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by collaborator clients that can probe
// upstream availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
