package search

import (
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// fuse merges the two candidate streams into one deduplicated, ranked list.
//
// Per-record score: wStruct when the structured source matched it, plus
// wSem times the clamped semantic similarity. A record found by both sources
// therefore outranks one found by a single source. Candidates without a
// display payload are dropped, not surfaced as errors.
func fuse(
	structured, semantic []domain.Candidate,
	wStruct, wSem float64,
	limit int,
	logger *zap.Logger,
) []domain.FusedResult {
	merged := make(map[string]*domain.FusedResult, len(structured)+len(semantic))

	for _, c := range structured {
		if c.JobID == "" {
			continue
		}
		merged[c.JobID] = &domain.FusedResult{
			JobID:      c.JobID,
			Origin:     domain.OriginStructured,
			MatchScore: wStruct,
			Job:        c.Job,
		}
	}

	for _, c := range semantic {
		if c.JobID == "" {
			continue
		}
		semScore := wSem * clamp01(c.Similarity)
		if r, ok := merged[c.JobID]; ok {
			r.Origin = domain.OriginBoth
			r.MatchScore += semScore
			if r.Job == nil {
				r.Job = c.Job
			}
			continue
		}
		merged[c.JobID] = &domain.FusedResult{
			JobID:      c.JobID,
			Origin:     domain.OriginSemantic,
			MatchScore: semScore,
			Job:        c.Job,
		}
	}

	results := make([]domain.FusedResult, 0, len(merged))
	for _, r := range merged {
		if r.Job == nil {
			logger.Warn("Dropping candidate without display payload",
				zap.String("job_id", r.JobID),
				zap.String("origin", string(r.Origin)))
			continue
		}
		results = append(results, *r)
	}

	// Descending by score, job ID as the stable tie-break.
	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].JobID < results[j].JobID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
