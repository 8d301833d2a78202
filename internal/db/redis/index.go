package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/matchmaker/internal/db"
)

// CreateIndex issues FT.CREATE for the given definition. Returns
// db.ErrIndexExists when an index with the same name is already present.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	args := []string{"ON", "HASH"}
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for _, f := range def.Fields {
		switch f.Type {
		case db.IndexFieldTag:
			args = append(args, f.Name, "TAG")
			if f.TagSeparator != "" {
				args = append(args, "SEPARATOR", f.TagSeparator)
			}
		case db.IndexFieldNumeric:
			args = append(args, f.Name, "NUMERIC")
		case db.IndexFieldVector:
			m := f.VectorM
			if m <= 0 {
				m = 16
			}
			ef := f.VectorEFConstruct
			if ef <= 0 {
				ef = 200
			}
			args = append(args, f.Name, "VECTOR", "HNSW", "10",
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.VectorDim),
				"DISTANCE_METRIC", "COSINE",
				"M", strconv.Itoa(m),
				"EF_CONSTRUCTION", strconv.Itoa(ef),
			)
		}
	}

	cmd := s.b().Arbitrary("FT.CREATE").Keys(def.Name).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether an FT index with the given name exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Keys(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}
