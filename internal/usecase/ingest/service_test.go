package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
)

type mockJobWriter struct {
	inserted []*domain.Job
	deleted  []string
	insErr   error
}

func (m *mockJobWriter) Insert(_ context.Context, job *domain.Job) error {
	if m.insErr != nil {
		return m.insErr
	}
	m.inserted = append(m.inserted, job)
	return nil
}

func (m *mockJobWriter) Delete(_ context.Context, jobID string) error {
	m.deleted = append(m.deleted, jobID)
	return nil
}

type mockVectorWriter struct {
	inserted map[string][]float32
	deleted  []string
	insErr   error
}

func (m *mockVectorWriter) Insert(_ context.Context, jobID string, vector []float32) error {
	if m.insErr != nil {
		return m.insErr
	}
	if m.inserted == nil {
		m.inserted = map[string][]float32{}
	}
	m.inserted[jobID] = vector
	return nil
}

func (m *mockVectorWriter) Delete(_ context.Context, jobID string) error {
	m.deleted = append(m.deleted, jobID)
	return nil
}

type mockEmbedder struct {
	gotText string
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.gotText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func newTestService(jw *mockJobWriter, vw *mockVectorWriter, emb *mockEmbedder) *Service {
	return New(jw, vw, emb, lexicon.Default(), zap.NewNop())
}

func validJob() *domain.Job {
	return &domain.Job{
		JobID:       "j1",
		Title:       "ML Engineer",
		Description: "Train and ship models",
		City:        "DHAKA",
		Skills:      []string{"python", "tensorflow", "python"},
		SalaryMin:   60000,
		SalaryMax:   90000,
	}
}

func TestIngest_CanonicalizesAndStoresBoth(t *testing.T) {
	jw := &mockJobWriter{}
	vw := &mockVectorWriter{}
	emb := &mockEmbedder{}

	svc := newTestService(jw, vw, emb)
	if err := svc.Ingest(context.Background(), validJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jw.inserted) != 1 {
		t.Fatalf("expected 1 job insert, got %d", len(jw.inserted))
	}
	job := jw.inserted[0]
	if job.Status != domain.StatusActive {
		t.Errorf("status should default to active, got %q", job.Status)
	}
	if job.City != "Dhaka" {
		t.Errorf("city should canonicalize, got %q", job.City)
	}
	if len(job.Skills) != 2 || job.Skills[0] != "Python" || job.Skills[1] != "TensorFlow" {
		t.Errorf("skills should canonicalize and dedup, got %v", job.Skills)
	}
	if job.Category != "AI/ML" {
		t.Errorf("category should derive from skills, got %q", job.Category)
	}

	if _, ok := vw.inserted["j1"]; !ok {
		t.Fatal("expected vector insert")
	}
	want := "ML Engineer | Train and ship models | Skills: Python, TensorFlow | Category: AI/ML"
	if emb.gotText != want {
		t.Errorf("embedding text:\n got %q\nwant %q", emb.gotText, want)
	}
}

func TestIngest_Invalid(t *testing.T) {
	svc := newTestService(&mockJobWriter{}, &mockVectorWriter{}, &mockEmbedder{})
	ctx := context.Background()

	cases := []struct {
		name string
		job  *domain.Job
	}{
		{"nil job", nil},
		{"missing id", &domain.Job{Title: "x"}},
		{"missing title", &domain.Job{JobID: "j1", Title: "  "}},
		{"negative salary", &domain.Job{JobID: "j1", Title: "x", SalaryMin: -1}},
		{"inverted band", &domain.Job{JobID: "j1", Title: "x", SalaryMin: 90, SalaryMax: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Ingest(ctx, tc.job); !errors.Is(err, domain.ErrInvalidJob) {
				t.Errorf("expected ErrInvalidJob, got %v", err)
			}
		})
	}
}

func TestIngest_EmbeddingFailureRollsBack(t *testing.T) {
	jw := &mockJobWriter{}
	vw := &mockVectorWriter{}
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}

	svc := newTestService(jw, vw, emb)
	err := svc.Ingest(context.Background(), validJob())
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected embedding error, got %v", err)
	}
	if len(jw.deleted) != 1 || jw.deleted[0] != "j1" {
		t.Errorf("expected structured rollback, got %v", jw.deleted)
	}
	if len(vw.inserted) != 0 {
		t.Error("no vector should be written")
	}
}

func TestIngest_VectorFailureRollsBack(t *testing.T) {
	jw := &mockJobWriter{}
	vw := &mockVectorWriter{insErr: errors.New("store down")}

	svc := newTestService(jw, vw, &mockEmbedder{})
	if err := svc.Ingest(context.Background(), validJob()); err == nil {
		t.Fatal("expected error")
	}
	if len(jw.deleted) != 1 {
		t.Errorf("expected structured rollback, got %v", jw.deleted)
	}
}

func TestIngest_ExplicitCategoryKept(t *testing.T) {
	jw := &mockJobWriter{}
	svc := newTestService(jw, &mockVectorWriter{}, &mockEmbedder{})

	job := validJob()
	job.Category = "Design"
	if err := svc.Ingest(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jw.inserted[0].Category != "Design" {
		t.Errorf("explicit category must win, got %q", jw.inserted[0].Category)
	}
}

func TestRemove_DeletesBoth(t *testing.T) {
	jw := &mockJobWriter{}
	vw := &mockVectorWriter{}

	svc := newTestService(jw, vw, &mockEmbedder{})
	if err := svc.Remove(context.Background(), "j1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vw.deleted) != 1 || len(jw.deleted) != 1 {
		t.Errorf("expected both deletes, got vectors=%v jobs=%v", vw.deleted, jw.deleted)
	}
}

type mockIndexManager struct {
	created []string
	err     error
}

func (m *mockIndexManager) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = append(m.created, def.Name)
	return m.err
}

func TestEnsureIndexes(t *testing.T) {
	m := &mockIndexManager{}
	defs := []*db.IndexDefinition{
		{Name: "idx1", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}},
		{Name: "idx2", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}},
	}
	if err := EnsureIndexes(context.Background(), m, defs...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.created) != 2 {
		t.Errorf("expected 2 creates, got %v", m.created)
	}

	m = &mockIndexManager{err: db.ErrIndexExists}
	if err := EnsureIndexes(context.Background(), m, defs...); err != nil {
		t.Errorf("existing indexes must be tolerated: %v", err)
	}

	m = &mockIndexManager{err: errors.New("boom")}
	if err := EnsureIndexes(context.Background(), m, defs...); err == nil {
		t.Error("expected error")
	}
}
