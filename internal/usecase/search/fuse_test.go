package search

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

func job(id string) *domain.Job {
	return &domain.Job{JobID: id, Title: "Job " + id, Status: domain.StatusActive}
}

func TestFuse_StructuredOnlyVsSemanticOnly(t *testing.T) {
	structured := []domain.Candidate{
		{JobID: "A", StructuredMatch: true, Job: job("A")},
	}
	semantic := []domain.Candidate{
		{JobID: "B", Similarity: 0.9, Job: job("B")},
	}

	results := fuse(structured, semantic, 0.6, 0.4, 20, zap.NewNop())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].JobID != "A" || results[1].JobID != "B" {
		t.Fatalf("unexpected order: %s, %s", results[0].JobID, results[1].JobID)
	}
	if math.Abs(results[0].MatchScore-0.6) > 1e-9 {
		t.Errorf("structured-only score: got %f, want 0.6", results[0].MatchScore)
	}
	if math.Abs(results[1].MatchScore-0.36) > 1e-9 {
		t.Errorf("semantic-only score: got %f, want 0.36", results[1].MatchScore)
	}
	if results[0].Origin != domain.OriginStructured || results[1].Origin != domain.OriginSemantic {
		t.Errorf("unexpected origins: %s, %s", results[0].Origin, results[1].Origin)
	}
}

func TestFuse_BothSourcesOutrankSingle(t *testing.T) {
	structured := []domain.Candidate{
		{JobID: "A", StructuredMatch: true, Job: job("A")},
		{JobID: "C", StructuredMatch: true, Job: job("C")},
	}
	semantic := []domain.Candidate{
		{JobID: "A", Similarity: 0.5},
		{JobID: "B", Similarity: 1.0, Job: job("B")},
	}

	results := fuse(structured, semantic, 0.6, 0.4, 20, zap.NewNop())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// A: 0.6 + 0.4*0.5 = 0.8, C: 0.6, B: 0.4
	if results[0].JobID != "A" || results[0].Origin != domain.OriginBoth {
		t.Fatalf("expected A (both) first, got %s (%s)", results[0].JobID, results[0].Origin)
	}
	if math.Abs(results[0].MatchScore-0.8) > 1e-9 {
		t.Errorf("both-source score: got %f, want 0.8", results[0].MatchScore)
	}
	if results[1].JobID != "C" || results[2].JobID != "B" {
		t.Errorf("unexpected tail order: %s, %s", results[1].JobID, results[2].JobID)
	}
	// The structured payload must survive the merge untouched.
	if results[0].Job == nil || results[0].Job.Title != "Job A" {
		t.Errorf("payload lost in merge: %+v", results[0].Job)
	}
}

func TestFuse_SimilarityClamped(t *testing.T) {
	semantic := []domain.Candidate{
		{JobID: "hot", Similarity: 1.8, Job: job("hot")},
		{JobID: "cold", Similarity: -0.3, Job: job("cold")},
	}

	results := fuse(nil, semantic, 0.6, 0.4, 20, zap.NewNop())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if math.Abs(results[0].MatchScore-0.4) > 1e-9 {
		t.Errorf("over-unit similarity must clamp to 1: got %f", results[0].MatchScore)
	}
	if results[1].MatchScore != 0 {
		t.Errorf("negative similarity must clamp to 0: got %f", results[1].MatchScore)
	}
}

func TestFuse_DropsMissingPayload(t *testing.T) {
	semantic := []domain.Candidate{
		{JobID: "ghost", Similarity: 0.99},
		{JobID: "real", Similarity: 0.5, Job: job("real")},
	}

	results := fuse(nil, semantic, 0.6, 0.4, 20, zap.NewNop())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].JobID != "real" {
		t.Errorf("unexpected survivor: %s", results[0].JobID)
	}
}

func TestFuse_DeterministicTieBreak(t *testing.T) {
	structured := []domain.Candidate{
		{JobID: "z", StructuredMatch: true, Job: job("z")},
		{JobID: "a", StructuredMatch: true, Job: job("a")},
		{JobID: "m", StructuredMatch: true, Job: job("m")},
	}

	for i := 0; i < 10; i++ {
		results := fuse(structured, nil, 0.6, 0.4, 20, zap.NewNop())
		if results[0].JobID != "a" || results[1].JobID != "m" || results[2].JobID != "z" {
			t.Fatalf("iteration %d: unstable tie order: %s, %s, %s",
				i, results[0].JobID, results[1].JobID, results[2].JobID)
		}
	}
}

func TestFuse_Truncates(t *testing.T) {
	semantic := []domain.Candidate{
		{JobID: "a", Similarity: 0.9, Job: job("a")},
		{JobID: "b", Similarity: 0.8, Job: job("b")},
		{JobID: "c", Similarity: 0.7, Job: job("c")},
	}

	results := fuse(nil, semantic, 0.6, 0.4, 2, zap.NewNop())
	if len(results) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(results))
	}
	if results[0].JobID != "a" || results[1].JobID != "b" {
		t.Errorf("truncation must keep the best: %s, %s", results[0].JobID, results[1].JobID)
	}
}

func TestFuse_EmptySources(t *testing.T) {
	results := fuse(nil, nil, 0.6, 0.4, 20, zap.NewNop())
	if len(results) != 0 {
		t.Fatalf("expected empty list, got %d", len(results))
	}
}
