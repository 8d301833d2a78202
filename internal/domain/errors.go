package domain

import "errors"

// Sentinel errors mapped to HTTP statuses at the transport boundary.
var (
	// ErrNotFound is returned when a job does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidQuery is returned for empty or unusable search input.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidJob is returned when an ingested job fails validation.
	ErrInvalidJob = errors.New("invalid job")

	// ErrSearchUnavailable is returned when both candidate sources fail.
	// Callers must be able to tell "no matches" from "search is down".
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrLLMUnavailable is returned when the LLM collaborator cannot be reached
	// (network error, breaker open, quota rejection, timeout).
	ErrLLMUnavailable = errors.New("llm collaborator unavailable")

	// ErrMalformedLLMResponse is returned when the collaborator answered but its
	// output does not contain the canonical filter shape.
	ErrMalformedLLMResponse = errors.New("malformed llm response")

	// ErrEmbeddingProviderError marks upstream embedding API failures.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
