package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
)

// LLMParser delegates extraction to the external understanding collaborator
// and validates its output against the canonical shape. It never trusts the
// model blindly: wrong types, unknown enum values and inconsistent ranges are
// discarded to null.
type LLMParser struct {
	client  ChatClient
	lex     *lexicon.Lexicon
	timeout time.Duration
}

// NewLLMParser creates the LLM-assisted parsing strategy.
func NewLLMParser(client ChatClient, lex *lexicon.Lexicon, timeout time.Duration) *LLMParser {
	return &LLMParser{client: client, lex: lex, timeout: timeout}
}

var _ Strategy = (*LLMParser)(nil)

// llmFilter is the loosely-typed wire shape the collaborator emits.
type llmFilter struct {
	Keywords         []string `json:"keywords"`
	Location         *string  `json:"location"`
	GeoRadiusKM      *float64 `json:"geo_radius_km"`
	SalaryMin        *float64 `json:"salary_min"`
	SalaryMax        *float64 `json:"salary_max"`
	EmploymentType   *string  `json:"employment_type"`
	ExperienceLevel  *string  `json:"experience_level"`
	Skills           []string `json:"skills"`
	Category         *string  `json:"category"`
	DetectedLanguage *string  `json:"detected_language"`
}

// Parse implements Strategy. Any failure (transport, quota, timeout,
// malformed response) is returned as an error for the facade to fall back on.
func (p *LLMParser) Parse(ctx context.Context, text string) (domain.Filter, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.client.Complete(ctx, buildPrompt(text))
	if err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	payload := extractJSONObject(raw)
	if payload == "" {
		return domain.Filter{}, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedLLMResponse)
	}

	var wire llmFilter
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %w", domain.ErrMalformedLLMResponse, err)
	}

	f := p.sanitize(text, wire)
	return f, nil
}

// sanitize converts the wire shape into a fully shaped canonical filter,
// dropping anything that fails validation instead of propagating it.
func (p *LLMParser) sanitize(text string, wire llmFilter) domain.Filter {
	f := domain.NewFilter(text)
	f.ParsedBy = domain.ParsedByLLM
	f.DetectedLanguage = trimmedPtr(wire.DetectedLanguage)

	for _, kw := range wire.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		f.Keywords = append(f.Keywords, strings.ToLower(kw))
		if len(f.Keywords) == maxKeywords {
			break
		}
	}

	if loc := trimmedPtr(wire.Location); loc != nil {
		if city, ok := p.lex.CanonicalCity(*loc); ok {
			f.Location = domain.StringPtr(city)
		} else {
			f.Location = loc
		}
	}

	if wire.GeoRadiusKM != nil && *wire.GeoRadiusKM > 0 {
		f.GeoRadiusKM = domain.Float64Ptr(*wire.GeoRadiusKM)
	}

	f.SalaryMin, f.SalaryMax = sanitizeSalary(wire.SalaryMin, wire.SalaryMax)

	if v := trimmedPtr(wire.EmploymentType); v != nil {
		if lower := strings.ToLower(*v); domain.ValidEmploymentType(lower) {
			f.EmploymentType = domain.StringPtr(lower)
		}
	}

	if v := trimmedPtr(wire.ExperienceLevel); v != nil {
		if lower := strings.ToLower(*v); domain.ValidExperienceLevel(lower) {
			f.ExperienceLevel = domain.StringPtr(lower)
		}
	}

	// Spelling variants collapse through the same lexicon the rule parser
	// uses; unknown skills are kept as the model reported them.
	seen := make(map[string]bool)
	for _, s := range wire.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if canonical, ok := p.lex.CanonicalSkill(s); ok {
			s = canonical
		}
		if !seen[s] {
			seen[s] = true
			f.Skills = append(f.Skills, s)
		}
	}

	if v := trimmedPtr(wire.Category); v != nil {
		if cat, ok := p.lex.CanonicalCategory(*v); ok {
			f.Category = domain.StringPtr(cat)
		}
	}

	return f
}

// sanitizeSalary discards negative bounds and inconsistent ranges (min > max).
func sanitizeSalary(minVal, maxVal *float64) (*int, *int) {
	var lo, hi *int
	if minVal != nil && *minVal >= 0 {
		lo = domain.IntPtr(int(*minVal + 0.5))
	}
	if maxVal != nil && *maxVal >= 0 {
		hi = domain.IntPtr(int(*maxVal + 0.5))
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil
	}
	return lo, hi
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// extractJSONObject pulls the first JSON object out of the model response,
// tolerating markdown code fences and surrounding prose.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
