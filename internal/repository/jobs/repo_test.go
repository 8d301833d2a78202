package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// mockStore implements the store consumer interface with function fields.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetallFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetallMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	searchFn       func(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return m.hsetFn(ctx, key, fields)
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return m.hgetallFn(ctx, key)
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	return m.hgetallMultiFn(ctx, keys)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.delFn(ctx, key)
}

func (m *mockStore) SearchStructured(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error) {
	return m.searchFn(ctx, q)
}

func sampleJob() *domain.Job {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Job{
		JobID:           "j1",
		ProviderID:      "p1",
		Title:           "Senior ML Engineer",
		Description:     "Build recommendation models",
		Category:        "AI/ML",
		City:            "Dhaka",
		Country:         "Bangladesh",
		EmploymentType:  "full-time",
		SalaryMin:       80000,
		SalaryMax:       120000,
		Currency:        "BDT",
		ExperienceLevel: "senior",
		Skills:          []string{"Python", "TensorFlow"},
		Status:          "active",
		IsVerified:      true,
		DatePosted:      &posted,
	}
}

func TestInsert_WritesHash(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	s := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			gotKey = key
			gotFields = fields
			return nil
		},
	}

	r := New(s, 100)
	if err := r.Insert(context.Background(), sampleJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "matchmaker:job:j1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["city"] != "dhaka" {
		t.Errorf("city should be lowercased, got %q", gotFields["city"])
	}
	if gotFields["skills"] != "Python,TensorFlow" {
		t.Errorf("unexpected skills: %q", gotFields["skills"])
	}
	if gotFields["salary_min"] != "80000" {
		t.Errorf("unexpected salary_min: %q", gotFields["salary_min"])
	}
	if gotFields["date_posted"] != "2025-06-01T00:00:00Z" {
		t.Errorf("unexpected date_posted: %q", gotFields["date_posted"])
	}
}

func TestInsert_MissingID(t *testing.T) {
	r := New(&mockStore{}, 100)
	err := r.Insert(context.Background(), &domain.Job{Title: "No ID"})
	if !errors.Is(err, domain.ErrInvalidJob) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	want := sampleJob()
	s := &mockStore{
		hgetallFn: func(_ context.Context, key string) (map[string]string, error) {
			if key != "matchmaker:job:j1" {
				t.Errorf("unexpected key: %s", key)
			}
			return jobToHash(want), nil
		},
	}

	r := New(s, 100)
	got, err := r.Get(context.Background(), "j1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.JobID != "j1" || got.Title != want.Title || got.Category != want.Category {
		t.Errorf("unexpected job: %+v", got)
	}
	if got.SalaryMin != 80000 || got.SalaryMax != 120000 {
		t.Errorf("unexpected salary band: %d-%d", got.SalaryMin, got.SalaryMax)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Python" {
		t.Errorf("unexpected skills: %v", got.Skills)
	}
	if !got.IsVerified {
		t.Error("expected verified job")
	}
	if got.DatePosted == nil || !got.DatePosted.Equal(*want.DatePosted) {
		t.Errorf("unexpected date_posted: %v", got.DatePosted)
	}
	if got.Latitude != nil || got.ExpiryDate != nil {
		t.Error("absent optional fields should stay nil")
	}
}

func TestGet_NotFound(t *testing.T) {
	s := &mockStore{
		hgetallFn: func(_ context.Context, _ string) (map[string]string, error) {
			return map[string]string{}, nil
		},
	}

	r := New(s, 100)
	_, err := r.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRetrieve_BuildsQuery(t *testing.T) {
	var gotQuery *db.StructuredQuery
	s := &mockStore{
		searchFn: func(_ context.Context, q *db.StructuredQuery) (*db.SearchResult, error) {
			gotQuery = q
			return &db.SearchResult{
				Total: 1,
				Entries: []db.SearchEntry{
					{Key: "matchmaker:job:j1", Fields: jobToHash(sampleJob())},
				},
			}, nil
		},
	}

	f := domain.NewFilter("senior ml engineer in dhaka")
	f.Location = domain.StringPtr("Dhaka")
	f.ExperienceLevel = domain.StringPtr("senior")
	f.Skills = []string{"Python", "TensorFlow"}
	f.SalaryMin = domain.IntPtr(50000)

	r := New(s, 100)
	candidates, err := r.Retrieve(context.Background(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.IndexName != IndexName {
		t.Errorf("unexpected index: %s", gotQuery.IndexName)
	}
	if gotQuery.Limit != 100 {
		t.Errorf("unexpected limit: %d", gotQuery.Limit)
	}

	tags := map[string][]string{}
	for _, tag := range gotQuery.Tags {
		tags[tag.Key] = tag.Values
	}
	if got := tags["status"]; len(got) != 1 || got[0] != "active" {
		t.Errorf("status tag always present, got %v", got)
	}
	if got := tags["city"]; len(got) != 1 || got[0] != "dhaka" {
		t.Errorf("city should be lowercased, got %v", got)
	}
	if got := tags["skills"]; len(got) != 2 {
		t.Errorf("skills should be an any-of group, got %v", got)
	}
	if _, ok := tags["category"]; ok {
		t.Error("absent category must not be constrained")
	}

	if len(gotQuery.Ranges) != 1 || gotQuery.Ranges[0].Key != "salary_min" {
		t.Fatalf("unexpected ranges: %+v", gotQuery.Ranges)
	}
	if gotQuery.Ranges[0].Min == nil || *gotQuery.Ranges[0].Min != 50000 {
		t.Errorf("unexpected salary_min bound: %+v", gotQuery.Ranges[0])
	}
	if gotQuery.Ranges[0].Max != nil {
		t.Error("salary_min filter must be open above")
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.JobID != "j1" || !c.StructuredMatch || c.Job == nil {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c.Similarity != 0 {
		t.Errorf("structured hits carry no similarity, got %f", c.Similarity)
	}
}

func TestRetrieve_EmptyFilterStillScopedToActive(t *testing.T) {
	var gotQuery *db.StructuredQuery
	s := &mockStore{
		searchFn: func(_ context.Context, q *db.StructuredQuery) (*db.SearchResult, error) {
			gotQuery = q
			return &db.SearchResult{}, nil
		},
	}

	r := New(s, 100)
	if _, err := r.Retrieve(context.Background(), domain.NewFilter("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotQuery.Tags) != 1 || gotQuery.Tags[0].Key != "status" {
		t.Errorf("expected only status tag, got %+v", gotQuery.Tags)
	}
}

func TestRetrieve_StoreError(t *testing.T) {
	s := &mockStore{
		searchFn: func(_ context.Context, _ *db.StructuredQuery) (*db.SearchResult, error) {
			return nil, context.DeadlineExceeded
		},
	}

	r := New(s, 100)
	_, err := r.Retrieve(context.Background(), domain.NewFilter("anything"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetMulti_SkipsMissing(t *testing.T) {
	s := &mockStore{
		hgetallMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			if len(keys) != 2 {
				t.Fatalf("expected 2 keys, got %v", keys)
			}
			return []map[string]string{
				jobToHash(sampleJob()),
				{},
			}, nil
		},
	}

	r := New(s, 100)
	jobs, err := r.GetMulti(context.Background(), []string{"j1", "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected positional results, got %d", len(jobs))
	}
	if jobs[0] == nil || jobs[0].JobID != "j1" {
		t.Errorf("unexpected first job: %+v", jobs[0])
	}
	if jobs[1] != nil {
		t.Error("missing job should be nil")
	}
}
