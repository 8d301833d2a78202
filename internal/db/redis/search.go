package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchmaker/internal/db"
)

// distanceField is the implicit score field FT.SEARCH attaches to KNN hits
// when the schema vector field is named "vector".
const distanceField = "__vector_score"

// SearchStructured runs an FT.SEARCH over TAG/NUMERIC filters only.
func (s *Store) SearchStructured(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("index name is required")}
	}
	if q.Limit <= 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("limit must be positive")}
	}

	query := buildFilterExpr(q.Tags, q.Ranges)

	args := []string{query}
	args = append(args, returnArgs(q.ReturnFields)...)
	args = append(args, "LIMIT", "0", strconv.Itoa(q.Limit), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Keys(q.IndexName).Args(args...).ReadOnly()
	reply, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchReply(reply, false)
}

// SearchKNN runs an FT.SEARCH KNN vector query returning the nearest K hits.
// Scores are cosine similarity in [0, 1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("index name is required")}
	}
	if len(q.Vector) == 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("vector is required")}
	}
	if q.K <= 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("k must be positive")}
	}

	query := fmt.Sprintf("*=>[KNN %d @vector $BLOB]", q.K)

	args := []string{query}
	args = append(args, returnArgs(append([]string{distanceField}, q.ReturnFields...))...)
	args = append(args,
		"PARAMS", "2", "BLOB", rueidis.BinaryString(vectorToBytes(q.Vector)),
		"SORTBY", distanceField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Keys(q.IndexName).Args(args...).ReadOnly()
	reply, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchReply(reply, true)
}

// buildFilterExpr renders TAG and NUMERIC filters into an FT query string.
// No filters means match-all.
func buildFilterExpr(tags []db.TagFilter, ranges []db.RangeFilter) string {
	var sb strings.Builder

	for _, t := range tags {
		if len(t.Values) == 0 {
			continue
		}
		escaped := make([]string, len(t.Values))
		for i, v := range t.Values {
			escaped[i] = escapeTag(v)
		}
		fmt.Fprintf(&sb, "@%s:{%s} ", t.Key, strings.Join(escaped, "|"))
	}

	for _, r := range ranges {
		if r.Min == nil && r.Max == nil {
			continue
		}
		min, max := "-inf", "+inf"
		if r.Min != nil {
			min = strconv.FormatFloat(*r.Min, 'f', -1, 64)
		}
		if r.Max != nil {
			max = strconv.FormatFloat(*r.Max, 'f', -1, 64)
		}
		fmt.Fprintf(&sb, "@%s:[%s %s] ", r.Key, min, max)
	}

	expr := strings.TrimSpace(sb.String())
	if expr == "" {
		return "*"
	}
	return expr
}

var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}",
	"[", "\\[", "]", "\\]", "\"", "\\\"", "'", "\\'", ":", "\\:", ";", "\\;",
	"!", "\\!", "@", "\\@", "#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)", "-", "\\-", "+", "\\+",
	"=", "\\=", "~", "\\~", "|", "\\|", "/", "\\/", " ", "\\ ",
)

func escapeTag(v string) string {
	return tagEscaper.Replace(v)
}

func returnArgs(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	args := make([]string, 0, len(fields)+2)
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}

// vectorToBytes serializes float32s little-endian, the layout FT expects for
// FLOAT32 vector blobs.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// parseSearchReply decodes a RESP2 FT.SEARCH reply: total count followed by
// alternating key and field-value-array elements.
func parseSearchReply(reply []rueidis.RedisMessage, knn bool) (*db.SearchResult, error) {
	if len(reply) == 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty reply")}
	}

	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("total count: %w", err)}
	}

	res := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(reply); i += 2 {
		key, err := reply[i].ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("entry key: %w", err)}
		}
		fields, err := reply[i+1].AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("entry fields: %w", err)}
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if knn {
			if raw, ok := fields[distanceField]; ok {
				dist, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("vector score: %w", err)}
				}
				entry.Score = math.Max(0, 1.0-dist)
				delete(fields, distanceField)
			}
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}
