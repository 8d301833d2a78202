package query

import (
	"context"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// Strategy turns free text into the canonical filter. Exactly two
// implementations exist: the rule-based parser (infallible) and the
// LLM-assisted parser (may fail, triggering fallback in the facade).
type Strategy interface {
	Parse(ctx context.Context, text string) (domain.Filter, error)
}

// ChatClient is the external LLM understanding collaborator. It receives the
// full instruction prompt and returns the model's raw text response.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
