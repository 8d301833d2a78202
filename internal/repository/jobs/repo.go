// Package jobs persists job postings as hashes and retrieves them through
// the structured FT index.
package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "job:"
	// IndexName is the FT index over job hashes.
	IndexName = domain.KeyPrefix + "jobs:idx"
)

// store is the consumer interface for job persistence and retrieval (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SearchStructured(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error)
}

// Repo implements the structured side of hybrid retrieval.
type Repo struct {
	store store
	limit int
}

// New creates a job repository. limit caps how many structured hits a single
// search may return.
func New(s store, limit int) *Repo {
	return &Repo{store: s, limit: limit}
}

// IndexDefinition returns the FT schema for the structured job index.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "city", Type: db.IndexFieldTag},
			{Name: "category", Type: db.IndexFieldTag},
			{Name: "employment_type", Type: db.IndexFieldTag},
			{Name: "experience_level", Type: db.IndexFieldTag},
			{Name: "status", Type: db.IndexFieldTag},
			{Name: "skills", Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: "salary_min", Type: db.IndexFieldNumeric},
			{Name: "salary_max", Type: db.IndexFieldNumeric},
		},
	}
}

// Key returns the hash key for a job ID.
func Key(jobID string) string {
	return keyPrefix + jobID
}

// Insert writes a job hash. An existing job with the same ID is overwritten.
func (r *Repo) Insert(ctx context.Context, job *domain.Job) error {
	if job.JobID == "" {
		return fmt.Errorf("%w: job_id is required", domain.ErrInvalidJob)
	}
	if err := r.store.HSet(ctx, Key(job.JobID), jobToHash(job)); err != nil {
		return fmt.Errorf("insert job %s: %w", job.JobID, err)
	}
	return nil
}

// Get fetches a single job by ID. Returns domain.ErrNotFound when absent.
func (r *Repo) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	fields, err := r.store.HGetAll(ctx, Key(jobID))
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return hashToJob(fields), nil
}

// Delete removes a job hash.
func (r *Repo) Delete(ctx context.Context, jobID string) error {
	if err := r.store.Del(ctx, Key(jobID)); err != nil {
		return fmt.Errorf("delete job %s: %w", jobID, err)
	}
	return nil
}

// GetMulti fetches several jobs in one round-trip. Missing IDs yield nil
// entries at their positions.
func (r *Repo) GetMulti(ctx context.Context, jobIDs []string) ([]*domain.Job, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(jobIDs))
	for i, id := range jobIDs {
		keys[i] = Key(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}
	jobs := make([]*domain.Job, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		jobs[i] = hashToJob(fields)
	}
	return jobs, nil
}

// Retrieve runs the structured pre-filter search for a canonical filter and
// returns full job payloads as candidates.
func (r *Repo) Retrieve(ctx context.Context, f domain.Filter) ([]domain.Candidate, error) {
	q := filterToQuery(f, r.limit)

	sr, err := r.store.SearchStructured(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("structured search: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if len(e.Fields) == 0 {
			continue
		}
		job := hashToJob(e.Fields)
		candidates = append(candidates, domain.Candidate{
			JobID:           job.JobID,
			StructuredMatch: true,
			Job:             job,
		})
	}
	return candidates, nil
}

// filterToQuery maps the canonical filter onto TAG/NUMERIC pre-filters.
// Status is always constrained. A salary_min ask requires the job floor to
// reach it, a salary_max ask requires the job ceiling to stay within it.
func filterToQuery(f domain.Filter, limit int) *db.StructuredQuery {
	q := &db.StructuredQuery{
		IndexName: IndexName,
		Limit:     limit,
	}

	status := f.Status
	if status == "" {
		status = domain.StatusActive
	}
	q.Tags = append(q.Tags, db.TagFilter{Key: "status", Values: []string{status}})

	if f.Location != nil && *f.Location != "" {
		q.Tags = append(q.Tags, db.TagFilter{Key: "city", Values: []string{strings.ToLower(*f.Location)}})
	}
	if f.Category != nil && *f.Category != "" {
		q.Tags = append(q.Tags, db.TagFilter{Key: "category", Values: []string{*f.Category}})
	}
	if f.EmploymentType != nil && *f.EmploymentType != "" {
		q.Tags = append(q.Tags, db.TagFilter{Key: "employment_type", Values: []string{*f.EmploymentType}})
	}
	if f.ExperienceLevel != nil && *f.ExperienceLevel != "" {
		q.Tags = append(q.Tags, db.TagFilter{Key: "experience_level", Values: []string{*f.ExperienceLevel}})
	}
	if len(f.Skills) > 0 {
		q.Tags = append(q.Tags, db.TagFilter{Key: "skills", Values: f.Skills})
	}

	if f.SalaryMin != nil {
		min := float64(*f.SalaryMin)
		q.Ranges = append(q.Ranges, db.RangeFilter{Key: "salary_min", Min: &min})
	}
	if f.SalaryMax != nil {
		max := float64(*f.SalaryMax)
		q.Ranges = append(q.Ranges, db.RangeFilter{Key: "salary_max", Max: &max})
	}

	return q
}

func jobToHash(job *domain.Job) map[string]string {
	fields := map[string]string{
		"job_id":           job.JobID,
		"provider_id":      job.ProviderID,
		"title":            job.Title,
		"description":      job.Description,
		"category":         job.Category,
		"city":             strings.ToLower(job.City),
		"country":          job.Country,
		"employment_type":  job.EmploymentType,
		"salary_min":       strconv.Itoa(job.SalaryMin),
		"salary_max":       strconv.Itoa(job.SalaryMax),
		"currency":         job.Currency,
		"experience_level": job.ExperienceLevel,
		"skills":           strings.Join(job.Skills, ","),
		"status":           job.Status,
		"is_verified":      strconv.FormatBool(job.IsVerified),
	}
	if job.Latitude != nil {
		fields["lat"] = strconv.FormatFloat(*job.Latitude, 'f', -1, 64)
	}
	if job.Longitude != nil {
		fields["lng"] = strconv.FormatFloat(*job.Longitude, 'f', -1, 64)
	}
	if job.DatePosted != nil {
		fields["date_posted"] = job.DatePosted.UTC().Format(time.RFC3339)
	}
	if job.ExpiryDate != nil {
		fields["expiry_date"] = job.ExpiryDate.UTC().Format(time.RFC3339)
	}
	return fields
}

func hashToJob(fields map[string]string) *domain.Job {
	job := &domain.Job{
		JobID:           fields["job_id"],
		ProviderID:      fields["provider_id"],
		Title:           fields["title"],
		Description:     fields["description"],
		Category:        fields["category"],
		City:            fields["city"],
		Country:         fields["country"],
		EmploymentType:  fields["employment_type"],
		Currency:        fields["currency"],
		ExperienceLevel: fields["experience_level"],
		Status:          fields["status"],
	}
	job.SalaryMin, _ = strconv.Atoi(fields["salary_min"])
	job.SalaryMax, _ = strconv.Atoi(fields["salary_max"])
	job.IsVerified, _ = strconv.ParseBool(fields["is_verified"])
	if s := fields["skills"]; s != "" {
		job.Skills = strings.Split(s, ",")
	}
	if v, err := strconv.ParseFloat(fields["lat"], 64); err == nil {
		job.Latitude = &v
	}
	if v, err := strconv.ParseFloat(fields["lng"], 64); err == nil {
		job.Longitude = &v
	}
	if t, err := time.Parse(time.RFC3339, fields["date_posted"]); err == nil {
		job.DatePosted = &t
	}
	if t, err := time.Parse(time.RFC3339, fields["expiry_date"]); err == nil {
		job.ExpiryDate = &t
	}
	return job
}
