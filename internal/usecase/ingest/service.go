// Package ingest writes job postings into both retrieval stores so the
// structured index and the vector index stay in step.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
)

// JobWriter persists the structured job record.
type JobWriter interface {
	Insert(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, jobID string) error
}

// VectorWriter persists the job embedding.
type VectorWriter interface {
	Insert(ctx context.Context, jobID string, vector []float32) error
	Delete(ctx context.Context, jobID string) error
}

// IndexManager creates the FT indexes both stores depend on.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Service validates, canonicalizes and stores job postings.
type Service struct {
	jobs     JobWriter
	vectors  VectorWriter
	embedder domain.Embedder
	lex      *lexicon.Lexicon
	logger   *zap.Logger
}

// New creates the ingestion service.
func New(
	jobs JobWriter,
	vectors VectorWriter,
	embedder domain.Embedder,
	lex *lexicon.Lexicon,
	logger *zap.Logger,
) *Service {
	return &Service{
		jobs:     jobs,
		vectors:  vectors,
		embedder: embedder,
		lex:      lex,
		logger:   logger,
	}
}

// Ingest canonicalizes the posting through the shared lexicon, embeds its
// text and writes both stores. The structured record is written first so a
// failed embedding never leaves a vector without its payload.
func (s *Service) Ingest(ctx context.Context, job *domain.Job) error {
	if err := s.validate(job); err != nil {
		return err
	}
	s.canonicalize(job)

	if err := s.jobs.Insert(ctx, job); err != nil {
		return fmt.Errorf("store job: %w", err)
	}

	emb, err := s.embedder.Embed(ctx, embeddingText(job))
	if err != nil {
		// Roll back so search never returns a job invisible to the
		// semantic side while its structured twin claims otherwise.
		if delErr := s.jobs.Delete(ctx, job.JobID); delErr != nil {
			s.logger.Error("Failed to roll back job after embedding failure",
				zap.String("job_id", job.JobID), zap.Error(delErr))
		}
		return fmt.Errorf("embed job %s: %w", job.JobID, err)
	}

	if err := s.vectors.Insert(ctx, job.JobID, emb.Embedding); err != nil {
		if delErr := s.jobs.Delete(ctx, job.JobID); delErr != nil {
			s.logger.Error("Failed to roll back job after vector write failure",
				zap.String("job_id", job.JobID), zap.Error(delErr))
		}
		return fmt.Errorf("store embedding %s: %w", job.JobID, err)
	}

	s.logger.Info("Job ingested",
		zap.String("job_id", job.JobID),
		zap.String("category", job.Category),
		zap.Int("skills", len(job.Skills)))
	return nil
}

// Remove deletes a posting from both stores.
func (s *Service) Remove(ctx context.Context, jobID string) error {
	if jobID == "" {
		return fmt.Errorf("%w: job_id is required", domain.ErrInvalidJob)
	}
	if err := s.vectors.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete embedding %s: %w", jobID, err)
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job %s: %w", jobID, err)
	}
	return nil
}

// EnsureIndexes creates the FT indexes, tolerating ones that already exist.
func EnsureIndexes(ctx context.Context, m IndexManager, defs ...*db.IndexDefinition) error {
	for _, def := range defs {
		if err := m.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

func (s *Service) validate(job *domain.Job) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", domain.ErrInvalidJob)
	}
	if job.JobID == "" {
		return fmt.Errorf("%w: job_id is required", domain.ErrInvalidJob)
	}
	if strings.TrimSpace(job.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidJob)
	}
	if job.SalaryMin < 0 || job.SalaryMax < 0 {
		return fmt.Errorf("%w: negative salary", domain.ErrInvalidJob)
	}
	if job.SalaryMin > 0 && job.SalaryMax > 0 && job.SalaryMin > job.SalaryMax {
		return fmt.Errorf("%w: salary_min above salary_max", domain.ErrInvalidJob)
	}
	return nil
}

// canonicalize aligns the stored vocabulary with what the query parsers
// produce, so TAG matching works without fuzzy logic.
func (s *Service) canonicalize(job *domain.Job) {
	if job.Status == "" {
		job.Status = domain.StatusActive
	}
	if city, ok := s.lex.CanonicalCity(job.City); ok {
		job.City = city
	}

	skills := make([]string, 0, len(job.Skills))
	seen := make(map[string]struct{}, len(job.Skills))
	for _, skill := range job.Skills {
		canonical, ok := s.lex.CanonicalSkill(skill)
		if !ok {
			canonical = skill
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		skills = append(skills, canonical)
	}
	job.Skills = skills

	if job.Category == "" {
		if cat, ok := s.lex.CategoryFor(job.Skills, strings.ToLower(job.Title)); ok {
			job.Category = cat
		}
	}
	job.EmploymentType = strings.ToLower(job.EmploymentType)
	job.ExperienceLevel = strings.ToLower(job.ExperienceLevel)
}

// embeddingText combines the fields that carry semantic signal.
func embeddingText(job *domain.Job) string {
	parts := []string{job.Title, job.Description}
	if len(job.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(job.Skills, ", "))
	}
	if job.Category != "" {
		parts = append(parts, "Category: "+job.Category)
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " | ")
}
