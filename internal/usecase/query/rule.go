package query

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
)

// maxKeywords caps the leftover keyword list.
const maxKeywords = 5

// RuleParser extracts the canonical filter from raw text with deterministic
// lexicon and pattern passes. It never fails: unrecognized input yields an
// empty but fully shaped filter.
type RuleParser struct {
	lex *lexicon.Lexicon
}

// NewRuleParser creates the rule-based parsing strategy.
func NewRuleParser(lex *lexicon.Lexicon) *RuleParser {
	return &RuleParser{lex: lex}
}

var _ Strategy = (*RuleParser)(nil)

// Parse implements Strategy. The returned error is always nil.
func (p *RuleParser) Parse(_ context.Context, text string) (domain.Filter, error) {
	f := domain.NewFilter(text)
	f.ParsedBy = domain.ParsedByRule

	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return f, nil
	}

	// Terms claimed by a pass are excluded from the leftover keywords.
	removed := newRemovalSet()

	if city, ok := p.lex.MatchCity(lower); ok {
		f.Location = domain.StringPtr(city)
		removed.add(strings.ToLower(city))
	}

	p.parseSalary(lower, &f)

	if emp, cues, ok := p.lex.MatchEmployment(lower); ok {
		f.EmploymentType = domain.StringPtr(emp)
		removed.add(cues...)
	}

	if level, cues, ok := p.lex.MatchExperience(lower); ok {
		f.ExperienceLevel = domain.StringPtr(level)
		removed.add(cues...)
	}

	skills, matched := p.lex.MatchSkills(lower)
	if len(skills) > 0 {
		f.Skills = skills
		removed.add(matched...)
	}

	if cat, ok := p.lex.CategoryFor(f.Skills, lower); ok {
		f.Category = domain.StringPtr(cat)
	}

	if radius, ok := parseRadius(lower); ok {
		f.GeoRadiusKM = domain.Float64Ptr(radius)
	}

	f.Keywords = p.leftoverKeywords(text, removed)

	return f, nil
}

// --- Salary ---

var (
	// "40k-60k", "40000 to 60000", "1.5 lakh - 2 lakh"
	salaryRangeRe = regexp.MustCompile(
		`(\d+(?:\.\d+)?)\s*([a-z]+)?\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)\s*([a-z]+)?`)

	// "minimum 50k", "at least 50000 taka"
	salaryMinRe = regexp.MustCompile(
		`(?:minimum|min|at least|starting at)\s+(?:salary\s+)?(\d+(?:\.\d+)?)\s*([a-z]+)?`)

	// "50k minimum"
	salaryMinPostRe = regexp.MustCompile(
		`(\d+(?:\.\d+)?)\s*([a-z]+)?\s+minimum`)

	// "maximum 60k", "up to 60000"
	salaryMaxRe = regexp.MustCompile(
		`(?:maximum|max|up to|at most)\s+(?:salary\s+)?(\d+(?:\.\d+)?)\s*([a-z]+)?`)

	// "60k maximum"
	salaryMaxPostRe = regexp.MustCompile(
		`(\d+(?:\.\d+)?)\s*([a-z]+)?\s+maximum`)
)

// parseSalary fills salary bounds. A range pattern wins over single-bound
// patterns; single bounds require a min/max cue word. Numbers with a trailing
// word that is not a known multiplier or salary term ("3 years", "2 km") are
// left for other passes.
func (p *RuleParser) parseSalary(lower string, f *domain.Filter) {
	if lo, hi, ok := p.matchSalaryRange(lower); ok {
		if lo > hi {
			lo, hi = hi, lo
		}
		f.SalaryMin = domain.IntPtr(lo)
		f.SalaryMax = domain.IntPtr(hi)
		return
	}

	if v, ok := p.matchSingleBound(lower, salaryMinRe, salaryMinPostRe); ok {
		f.SalaryMin = domain.IntPtr(v)
	}
	if v, ok := p.matchSingleBound(lower, salaryMaxRe, salaryMaxPostRe); ok {
		f.SalaryMax = domain.IntPtr(v)
	}
	if f.SalaryMin != nil && f.SalaryMax != nil && *f.SalaryMin > *f.SalaryMax {
		f.SalaryMin, f.SalaryMax = f.SalaryMax, f.SalaryMin
	}
}

func (p *RuleParser) matchSalaryRange(lower string) (int, int, bool) {
	for _, m := range salaryRangeRe.FindAllStringSubmatch(lower, -1) {
		loStr, loWord, hiStr, hiWord := m[1], m[2], m[3], m[4]
		if !p.salaryWordOK(loWord) || !p.salaryWordOK(hiWord) {
			continue
		}
		// "40-60k" applies the trailing multiplier to both sides.
		if loWord == "" {
			loWord = hiWord
		}
		lo, okLo := p.salaryValue(loStr, loWord)
		hi, okHi := p.salaryValue(hiStr, hiWord)
		if !okLo || !okHi {
			continue
		}
		return lo, hi, true
	}
	return 0, 0, false
}

func (p *RuleParser) matchSingleBound(lower string, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if !p.salaryWordOK(m[2]) {
				continue
			}
			if v, ok := p.salaryValue(m[1], m[2]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// salaryWordOK accepts an empty trailing word, a multiplier, or a currency
// cue. Anything else ("years", "km") disqualifies the number as a salary.
func (p *RuleParser) salaryWordOK(word string) bool {
	if word == "" {
		return true
	}
	if _, ok := p.lex.Multiplier(word); ok {
		return true
	}
	switch word {
	case "salary", "taka", "tk", "bdt", "usd":
		return true
	}
	return false
}

func (p *RuleParser) salaryValue(numStr, word string) (int, bool) {
	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	if mult, ok := p.lex.Multiplier(word); ok {
		v *= float64(mult)
	}
	return int(v + 0.5), true
}

// --- Geo radius ---

var radiusRes = []*regexp.Regexp{
	regexp.MustCompile(`within\s+(\d+(?:\.\d+)?)\s*(?:km|kilometers?|kilometres?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:km|kilometers?|kilometres?)\s+radius`),
	regexp.MustCompile(`radius\s+of\s+(\d+(?:\.\d+)?)\s*(?:km|kilometers?|kilometres?)`),
}

func parseRadius(lower string) (float64, bool) {
	for _, re := range radiusRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 {
			continue
		}
		return v, true
	}
	return 0, false
}

// --- Leftover keywords ---

// leftoverKeywords keeps alphabetic tokens that survived every other pass,
// in their original order.
func (p *RuleParser) leftoverKeywords(text string, removed *removalSet) []string {
	keywords := []string{}
	for _, raw := range strings.Fields(text) {
		token := cleanToken(raw)
		if len(token) < 3 || hasDigit(token) {
			continue
		}
		if p.lex.IsStopword(token) {
			continue
		}
		if _, ok := p.lex.Multiplier(token); ok {
			continue
		}
		if removed.contains(token) {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// removalSet tracks words claimed by earlier passes, normalized the same way
// leftover tokens are.
type removalSet struct {
	words map[string]struct{}
}

func newRemovalSet() *removalSet {
	return &removalSet{words: make(map[string]struct{})}
}

func (s *removalSet) add(phrases ...string) {
	for _, phrase := range phrases {
		if w := cleanToken(phrase); w != "" {
			s.words[w] = struct{}{}
		}
		for _, field := range strings.Fields(phrase) {
			if w := cleanToken(field); w != "" {
				s.words[w] = struct{}{}
			}
		}
	}
}

func (s *removalSet) contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// cleanToken lowercases and strips everything but letters and digits.
func cleanToken(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
