// Package vectors stores job embeddings and retrieves nearest neighbours
// through the FT vector index.
package vectors

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "vec:"
	// IndexName is the FT index over embedding hashes.
	IndexName = domain.KeyPrefix + "vectors:idx"
)

// store is the consumer interface for vector persistence and KNN search (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the semantic side of hybrid retrieval.
type Repo struct {
	store store
	dim   int
	limit int
	hnsw  HNSWConfig
}

// New creates a vector repository. dim is the embedding dimensionality,
// limit caps how many neighbours a single search may return.
func New(s store, dim, limit int) *Repo {
	return &Repo{store: s, dim: dim, limit: limit}
}

// WithHNSW overrides the index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// IndexDefinition returns the FT schema for the vector index.
func (r *Repo) IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "job_id", Type: db.IndexFieldTag},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorDim:         r.dim,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
}

// Key returns the hash key for a job's embedding.
func Key(jobID string) string {
	return keyPrefix + jobID
}

// Insert writes a job embedding. An existing embedding for the same job is
// overwritten.
func (r *Repo) Insert(ctx context.Context, jobID string, vector []float32) error {
	if jobID == "" {
		return fmt.Errorf("%w: job_id is required", domain.ErrInvalidJob)
	}
	if len(vector) != r.dim {
		return fmt.Errorf("%w: embedding has %d dimensions, want %d", domain.ErrInvalidJob, len(vector), r.dim)
	}
	fields := map[string]string{
		"job_id": jobID,
		"vector": string(vectorToBytes(vector)),
	}
	if err := r.store.HSet(ctx, Key(jobID), fields); err != nil {
		return fmt.Errorf("insert embedding %s: %w", jobID, err)
	}
	return nil
}

// Delete removes a job's embedding.
func (r *Repo) Delete(ctx context.Context, jobID string) error {
	if err := r.store.Del(ctx, Key(jobID)); err != nil {
		return fmt.Errorf("delete embedding %s: %w", jobID, err)
	}
	return nil
}

// Retrieve returns the nearest jobs to the query embedding as candidates
// carrying cosine similarity. Display payloads are hydrated by the caller.
func (r *Repo) Retrieve(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	if k <= 0 || k > r.limit {
		k = r.limit
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"job_id"},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		jobID := e.Fields["job_id"]
		if jobID == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			JobID:      jobID,
			Similarity: e.Score,
		})
	}
	return candidates, nil
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}
