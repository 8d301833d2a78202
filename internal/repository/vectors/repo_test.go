package vectors

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
)

type mockStore struct {
	hsetFn   func(ctx context.Context, key string, fields map[string]string) error
	delFn    func(ctx context.Context, key string) error
	searchFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return m.hsetFn(ctx, key, fields)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.delFn(ctx, key)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	return m.searchFn(ctx, q)
}

func TestInsert_WritesBlob(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	s := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			gotKey = key
			gotFields = fields
			return nil
		},
	}

	r := New(s, 3, 50)
	if err := r.Insert(context.Background(), "j1", []float32{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "matchmaker:vec:j1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["job_id"] != "j1" {
		t.Errorf("unexpected job_id: %q", gotFields["job_id"])
	}
	if len(gotFields["vector"]) != 12 {
		t.Errorf("expected 12-byte blob, got %d bytes", len(gotFields["vector"]))
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	r := New(&mockStore{}, 768, 50)
	err := r.Insert(context.Background(), "j1", []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrInvalidJob) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}
}

func TestInsert_MissingID(t *testing.T) {
	r := New(&mockStore{}, 3, 50)
	err := r.Insert(context.Background(), "", []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrInvalidJob) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}
}

func TestRetrieve_ReturnsSimilarities(t *testing.T) {
	var gotQuery *db.KNNQuery
	s := &mockStore{
		searchFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
			gotQuery = q
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "matchmaker:vec:j1", Score: 0.92, Fields: map[string]string{"job_id": "j1"}},
					{Key: "matchmaker:vec:j2", Score: 0.75, Fields: map[string]string{"job_id": "j2"}},
				},
			}, nil
		},
	}

	r := New(s, 3, 50)
	candidates, err := r.Retrieve(context.Background(), []float32{0.1, 0.2, 0.3}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.IndexName != IndexName || gotQuery.K != 10 {
		t.Errorf("unexpected query: %+v", gotQuery)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].JobID != "j1" || candidates[0].Similarity != 0.92 {
		t.Errorf("unexpected candidate: %+v", candidates[0])
	}
	if candidates[0].StructuredMatch {
		t.Error("semantic hits carry no structured match")
	}
	if candidates[0].Job != nil {
		t.Error("payload hydration is the caller's job")
	}
}

func TestRetrieve_CapsK(t *testing.T) {
	var gotK int
	s := &mockStore{
		searchFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
			gotK = q.K
			return &db.SearchResult{}, nil
		},
	}

	r := New(s, 3, 50)
	if _, err := r.Retrieve(context.Background(), []float32{0.1}, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotK != 50 {
		t.Errorf("expected k capped at 50, got %d", gotK)
	}

	if _, err := r.Retrieve(context.Background(), []float32{0.1}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotK != 50 {
		t.Errorf("expected default k 50, got %d", gotK)
	}
}

func TestRetrieve_SkipsEntriesWithoutJobID(t *testing.T) {
	s := &mockStore{
		searchFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "matchmaker:vec:j1", Score: 0.9, Fields: map[string]string{"job_id": "j1"}},
					{Key: "matchmaker:vec:bad", Score: 0.8, Fields: map[string]string{}},
				},
			}, nil
		},
	}

	r := New(s, 3, 50)
	candidates, err := r.Retrieve(context.Background(), []float32{0.1}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("expected 1 candidate, got %d", len(candidates))
	}
}

func TestRetrieve_StoreError(t *testing.T) {
	s := &mockStore{
		searchFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return nil, context.DeadlineExceeded
		},
	}

	r := New(s, 3, 50)
	if _, err := r.Retrieve(context.Background(), []float32{0.1}, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestIndexDefinition(t *testing.T) {
	r := New(&mockStore{}, 768, 50)
	def := r.IndexDefinition()
	if err := def.Validate(); err != nil {
		t.Fatalf("invalid definition: %v", err)
	}
	var vec *db.IndexField
	for i := range def.Fields {
		if def.Fields[i].Type == db.IndexFieldVector {
			vec = &def.Fields[i]
		}
	}
	if vec == nil || vec.VectorDim != 768 {
		t.Errorf("unexpected vector field: %+v", vec)
	}
}
