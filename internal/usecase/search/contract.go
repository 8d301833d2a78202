package search

import (
	"context"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// Understander turns free text into the canonical filter.
type Understander interface {
	Understand(ctx context.Context, text string) domain.Filter
}

// StructuredRetriever fetches candidates matching the filter's hard
// constraints, with full display payloads.
type StructuredRetriever interface {
	Retrieve(ctx context.Context, f domain.Filter) ([]domain.Candidate, error)
}

// SemanticRetriever fetches the nearest candidates to a query embedding.
// Candidates carry similarity only, payload hydration is the service's job.
type SemanticRetriever interface {
	Retrieve(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error)
}

// JobGetter hydrates display payloads for semantic-only candidates.
type JobGetter interface {
	GetMulti(ctx context.Context, jobIDs []string) ([]*domain.Job, error)
}
