package http

import (
	"time"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// jobPayload is the wire shape of a job posting, shared by ingestion
// requests and search results.
type jobPayload struct {
	JobID           string     `json:"job_id"`
	ProviderID      string     `json:"provider_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	City            string     `json:"city,omitempty"`
	Country         string     `json:"country,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	EmploymentType  string     `json:"employment_type,omitempty"`
	SalaryMin       int        `json:"salary_min"`
	SalaryMax       int        `json:"salary_max"`
	Currency        string     `json:"currency,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Skills          []string   `json:"skills"`
	Status          string     `json:"status,omitempty"`
	IsVerified      bool       `json:"is_verified"`
	DatePosted      *time.Time `json:"date_posted,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
}

// resultItem is one fused search hit.
type resultItem struct {
	jobPayload
	Origin     string  `json:"origin"`
	MatchScore float64 `json:"match_score"`
}

// searchResponse echoes the query, exposes the canonical filter and lists
// the fused ranking.
type searchResponse struct {
	Query   string        `json:"query"`
	Filters domain.Filter `json:"filters"`
	Results []resultItem  `json:"results"`
	Note    string        `json:"note,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func jobToPayload(job *domain.Job) jobPayload {
	skills := job.Skills
	if skills == nil {
		skills = []string{}
	}
	return jobPayload{
		JobID:           job.JobID,
		ProviderID:      job.ProviderID,
		Title:           job.Title,
		Description:     job.Description,
		Category:        job.Category,
		City:            job.City,
		Country:         job.Country,
		Latitude:        job.Latitude,
		Longitude:       job.Longitude,
		EmploymentType:  job.EmploymentType,
		SalaryMin:       job.SalaryMin,
		SalaryMax:       job.SalaryMax,
		Currency:        job.Currency,
		ExperienceLevel: job.ExperienceLevel,
		Skills:          skills,
		Status:          job.Status,
		IsVerified:      job.IsVerified,
		DatePosted:      job.DatePosted,
		ExpiryDate:      job.ExpiryDate,
	}
}

func payloadToJob(p *jobPayload) *domain.Job {
	return &domain.Job{
		JobID:           p.JobID,
		ProviderID:      p.ProviderID,
		Title:           p.Title,
		Description:     p.Description,
		Category:        p.Category,
		City:            p.City,
		Country:         p.Country,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		EmploymentType:  p.EmploymentType,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		Currency:        p.Currency,
		ExperienceLevel: p.ExperienceLevel,
		Skills:          p.Skills,
		Status:          p.Status,
		IsVerified:      p.IsVerified,
		DatePosted:      p.DatePosted,
		ExpiryDate:      p.ExpiryDate,
	}
}
