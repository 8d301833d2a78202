// Package db defines the storage contracts the repositories consume.
// The only implementation is Redis Stack via rueidis (package db/redis).
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces. Consumers
// declare narrow interfaces over the operations they actually use.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchStructured(ctx context.Context, q *StructuredQuery) (*SearchResult, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// TagFilter matches a TAG field against any of the given values.
type TagFilter struct {
	Key    string
	Values []string
}

// RangeFilter bounds a NUMERIC field. Nil bounds are open (inclusive
// otherwise).
type RangeFilter struct {
	Key string
	Min *float64
	Max *float64
}

// StructuredQuery is an FT.SEARCH pre-filter query over TAG/NUMERIC fields.
type StructuredQuery struct {
	IndexName    string
	Tags         []TagFilter
	Ranges       []RangeFilter
	Limit        int
	ReturnFields []string
}

// KNNQuery is an FT.SEARCH vector similarity query.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one hit: the raw key, a score (similarity for KNN, zero for
// structured) and the returned hash fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the parsed FT.SEARCH reply.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
