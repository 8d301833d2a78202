// Package search orchestrates hybrid retrieval: understand the query,
// fan out to the structured and semantic sources concurrently, and fuse
// the two candidate streams into one ranked list.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Config holds the fusion weights and retrieval bounds.
type Config struct {
	StructWeight    float64
	SemWeight       float64
	MaxSemantic     int
	MaxResults      int
	RetrieveTimeout time.Duration
}

// Service implements the search operation.
type Service struct {
	understander Understander
	structured   StructuredRetriever
	semantic     SemanticRetriever
	embedder     domain.Embedder
	jobs         JobGetter
	cfg          Config
	logger       *zap.Logger
}

// Response is the search outcome: the echoed query, the canonical filter the
// parsers produced, and the fused ranking. Note carries a degradation hint
// when one retrieval source was unavailable.
type Response struct {
	Query   string
	Filter  domain.Filter
	Results []domain.FusedResult
	Note    string
}

// New creates the search service.
func New(
	understander Understander,
	structured StructuredRetriever,
	semantic SemanticRetriever,
	embedder domain.Embedder,
	jobs JobGetter,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		understander: understander,
		structured:   structured,
		semantic:     semantic,
		embedder:     embedder,
		jobs:         jobs,
		cfg:          cfg,
		logger:       logger,
	}
}

// Search runs the full pipeline for one query. limit <= 0 or above the
// configured ceiling falls back to the configured maximum.
func (s *Service) Search(ctx context.Context, query string, limit int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	filter := s.understander.Understand(ctx, query)

	rctx, cancel := context.WithTimeout(ctx, s.cfg.RetrieveTimeout)
	defer cancel()

	var (
		wg          sync.WaitGroup
		structCands []domain.Candidate
		structErr   error
		semCands    []domain.Candidate
		semErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		structCands, structErr = s.structured.Retrieve(rctx, filter)
		if structErr != nil {
			metrics.RetrievalTotal.WithLabelValues("structured", "error").Inc()
			s.logger.Warn("Structured retrieval failed", zap.Error(structErr))
			return
		}
		metrics.RetrievalTotal.WithLabelValues("structured", "ok").Inc()
	}()
	go func() {
		defer wg.Done()
		semCands, semErr = s.retrieveSemantic(rctx, query)
	}()
	wg.Wait()

	if structErr != nil && semErr != nil {
		return nil, fmt.Errorf("both retrieval sources failed: %w", domain.ErrSearchUnavailable)
	}

	s.hydrate(ctx, structCands, semCands)

	results := fuse(structCands, semCands, s.cfg.StructWeight, s.cfg.SemWeight, limit, s.logger)
	metrics.FusedResults.Observe(float64(len(results)))

	resp := &Response{
		Query:   query,
		Filter:  filter,
		Results: results,
	}
	switch {
	case structErr != nil:
		resp.Note = "structured search was unavailable, results are semantic-only"
	case semErr != nil:
		resp.Note = "semantic search was unavailable, results are keyword-only"
	}
	return resp, nil
}

// retrieveSemantic embeds the query text and fetches the nearest jobs.
// An embedding failure degrades the request to structured-only fusion.
func (s *Service) retrieveSemantic(ctx context.Context, query string) ([]domain.Candidate, error) {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		metrics.RetrievalTotal.WithLabelValues("semantic", "skipped").Inc()
		s.logger.Warn("Query embedding failed, skipping semantic retrieval", zap.Error(err))
		return nil, err
	}

	cands, err := s.semantic.Retrieve(ctx, emb.Embedding, s.cfg.MaxSemantic)
	if err != nil {
		metrics.RetrievalTotal.WithLabelValues("semantic", "error").Inc()
		s.logger.Warn("Semantic retrieval failed", zap.Error(err))
		return nil, err
	}

	metrics.RetrievalTotal.WithLabelValues("semantic", "ok").Inc()
	return cands, nil
}

// hydrate fills display payloads for semantic candidates. Jobs already
// fetched by the structured source are reused instead of re-read.
func (s *Service) hydrate(ctx context.Context, structured, semantic []domain.Candidate) {
	if len(semantic) == 0 {
		return
	}

	known := make(map[string]*domain.Job, len(structured))
	for _, c := range structured {
		if c.Job != nil {
			known[c.JobID] = c.Job
		}
	}

	var missing []string
	for i := range semantic {
		if semantic[i].Job != nil {
			continue
		}
		if job, ok := known[semantic[i].JobID]; ok {
			semantic[i].Job = job
			continue
		}
		missing = append(missing, semantic[i].JobID)
	}
	if len(missing) == 0 {
		return
	}

	jobs, err := s.jobs.GetMulti(ctx, missing)
	if err != nil {
		s.logger.Warn("Payload hydration failed, unhydrated candidates will be dropped",
			zap.Int("count", len(missing)), zap.Error(err))
		return
	}

	byID := make(map[string]*domain.Job, len(jobs))
	for _, job := range jobs {
		if job != nil {
			byID[job.JobID] = job
		}
	}
	for i := range semantic {
		if semantic[i].Job == nil {
			semantic[i].Job = byID[semantic[i].JobID]
		}
	}
}
