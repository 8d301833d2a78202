package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Service is the query understanding facade: it selects between the two
// parsing strategies and guarantees a canonical filter for any input. The
// fallback is single-shot — no retries, no backoff at this layer.
type Service struct {
	rule   Strategy
	llm    Strategy // nil when the LLM path is disabled
	logger *zap.Logger
}

// New creates the facade. Pass llm == nil to run rule-based only.
func New(rule, llm Strategy, logger *zap.Logger) *Service {
	return &Service{rule: rule, llm: llm, logger: logger}
}

// Understand parses raw query text into the canonical filter. The output is
// identically shaped whichever path produced it; only the parsed_by tag
// differs.
func (s *Service) Understand(ctx context.Context, text string) domain.Filter {
	if s.llm != nil {
		f, err := s.llm.Parse(ctx, text)
		if err == nil {
			metrics.QueryParseTotal.WithLabelValues(domain.ParsedByLLM, "ok").Inc()
			return f
		}
		// Parsing degradation is never surfaced to the caller.
		s.logger.Warn("llm parse failed, falling back to rule-based",
			zap.Error(err),
		)
		metrics.QueryParseTotal.WithLabelValues(domain.ParsedByLLM, "fallback").Inc()
	}

	f, _ := s.rule.Parse(ctx, text)
	metrics.QueryParseTotal.WithLabelValues(domain.ParsedByRule, "ok").Inc()
	return f
}
