package domain

// Intent is the only intent this service understands.
const Intent = "job_search"

// StatusActive is the default posting status every search targets.
const StatusActive = "active"

// Employment types recognized in the canonical filter.
const (
	EmploymentFullTime = "full-time"
	EmploymentPartTime = "part-time"
	EmploymentContract = "contract"
	EmploymentRemote   = "remote"
)

// Experience levels recognized in the canonical filter.
const (
	ExperienceEntry  = "entry"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// Parser path tags recorded in Filter.ParsedBy.
const (
	ParsedByLLM  = "llm"
	ParsedByRule = "rule"
)

// Filter is the canonical structured-query shape both parsers produce.
// The object is always fully shaped: absent signals are explicit nulls
// (nil pointers) or empty slices, never omitted fields.
type Filter struct {
	Intent           string   `json:"intent"`
	Keywords         []string `json:"keywords"`
	Location         *string  `json:"location"`
	GeoRadiusKM      *float64 `json:"geo_radius_km"`
	SalaryMin        *int     `json:"salary_min"`
	SalaryMax        *int     `json:"salary_max"`
	EmploymentType   *string  `json:"employment_type"`
	ExperienceLevel  *string  `json:"experience_level"`
	Skills           []string `json:"skills"`
	Category         *string  `json:"category"`
	Status           string   `json:"status"`
	DetectedLanguage *string  `json:"detected_language"`
	OriginalQuery    string   `json:"original_query"`
	ParsedBy         string   `json:"parsed_by"`
}

// NewFilter returns an empty but fully shaped filter for the given query.
func NewFilter(query string) Filter {
	return Filter{
		Intent:        Intent,
		Keywords:      []string{},
		Skills:        []string{},
		Status:        StatusActive,
		OriginalQuery: query,
	}
}

// ValidEmploymentType reports whether v is one of the enumerated employment types.
func ValidEmploymentType(v string) bool {
	switch v {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentRemote:
		return true
	}
	return false
}

// ValidExperienceLevel reports whether v is one of the enumerated experience levels.
func ValidExperienceLevel(v string) bool {
	switch v {
	case ExperienceEntry, ExperienceMid, ExperienceSenior:
		return true
	}
	return false
}

// StringPtr returns a pointer to s. Convenience for optional filter fields.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
