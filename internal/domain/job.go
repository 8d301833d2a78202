package domain

import "time"

// Job is the display payload of a posting. Fusion treats it as opaque and
// passes it through untouched.
type Job struct {
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
	SalaryMin       int        `json:"salary_min,omitempty"`
	SalaryMax       int        `json:"salary_max,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Skills          []string   `json:"skills,omitempty"`
	Status          string     `json:"status,omitempty"`
	IsVerified      bool       `json:"is_verified,omitempty"`
	DatePosted      *time.Time `json:"date_posted,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
}
