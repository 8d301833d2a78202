// Package lexicon holds the static vocabulary shared by query parsing and
// job ingestion: cities, skills, categories, employment/experience synonyms,
// salary multiplier words and stopwords. A Lexicon is built once at startup
// and is read-only afterwards, so concurrent use needs no locking.
package lexicon

import (
	"sort"
	"strings"
)

// Lexicon is the immutable vocabulary table set.
type Lexicon struct {
	cities          []string          // longest name first
	skillCanonical  map[string]string // lowercased form -> canonical casing
	skillScanOrder  []string          // lowercased, longest first
	skillCategories map[string]string // canonical skill -> category
	categoryOrder   []string          // category priority, most specific first
	categoryCues    map[string][]string
	employmentOrder []string
	employmentCues  map[string][]string
	experienceOrder []string
	experienceCues  map[string][]string
	multipliers     map[string]int
	stopwords       map[string]struct{}
}

// Default builds the built-in vocabulary.
func Default() *Lexicon {
	lx := &Lexicon{
		cities: []string{
			"Dhaka", "Chittagong", "Sylhet", "Rajshahi", "Khulna", "Barisal",
			"Rangpur", "Mymensingh", "Cumilla", "Comilla", "Gazipur",
			"Narayanganj", "Jessore", "Bogra", "Dinajpur", "Pabna",
			"New York", "London", "Toronto", "Sydney", "Dubai", "Singapore",
			"Bangalore", "Mumbai",
		},
		skillCanonical: make(map[string]string),
		skillCategories: map[string]string{
			"TensorFlow": "AI/ML", "PyTorch": "AI/ML", "OpenCV": "AI/ML",
			"Machine Learning": "AI/ML", "Deep Learning": "AI/ML", "AI": "AI/ML",
			"Scikit-learn": "Data Science", "Pandas": "Data Science",
			"NumPy": "Data Science", "Data Science": "Data Science",
			"AWS": "DevOps", "Azure": "DevOps", "GCP": "DevOps",
			"Docker": "DevOps", "Kubernetes": "DevOps", "Jenkins": "DevOps",
			"DevOps": "DevOps",
			"Python": "Software Engineering", "Java": "Software Engineering",
			"JavaScript": "Software Engineering", "TypeScript": "Software Engineering",
			"C++": "Software Engineering", "C#": "Software Engineering",
			"Go": "Software Engineering", "Rust": "Software Engineering",
			"PHP": "Software Engineering", "Ruby": "Software Engineering",
			"Swift": "Software Engineering", "Kotlin": "Software Engineering",
			"React": "Software Engineering", "Angular": "Software Engineering",
			"Vue": "Software Engineering", "Node.js": "Software Engineering",
			"Express": "Software Engineering", "FastAPI": "Software Engineering",
			"Django": "Software Engineering", "Flask": "Software Engineering",
			"Spring": "Software Engineering", "Laravel": "Software Engineering",
			"Git": "Software Engineering", "MongoDB": "Software Engineering",
			"PostgreSQL": "Software Engineering", "MySQL": "Software Engineering",
			"Redis": "Software Engineering", "Frontend": "Software Engineering",
			"Backend": "Software Engineering", "Full-stack": "Software Engineering",
			"Mobile": "Software Engineering",
		},
		// Most specific first: the generic programming bucket is the fallback.
		categoryOrder: []string{
			"AI/ML", "Data Science", "DevOps", "Design", "Marketing",
			"Sales", "Finance", "HR", "Education", "Software Engineering",
		},
		categoryCues: map[string][]string{
			"AI/ML":                {"artificial intelligence", "machine learning", "deep learning", "ai"},
			"Data Science":         {"data science", "data scientist", "data analyst", "analytics"},
			"DevOps":               {"devops", "infrastructure", "deployment", "cloud"},
			"Design":               {"designer", "graphic", "creative", "ui", "ux"},
			"Marketing":            {"digital marketing", "social media", "marketing", "content"},
			"Sales":                {"business development", "account manager", "sales"},
			"Finance":              {"financial analyst", "accounting", "finance"},
			"HR":                   {"human resources", "talent acquisition", "recruiter", "hr"},
			"Education":            {"teacher", "tutor", "instructor", "professor", "education"},
			"Software Engineering": {"software", "developer", "programmer", "engineer", "coding"},
		},
		// Remote wins over other cues by fixed priority.
		employmentOrder: []string{"remote", "full-time", "part-time", "contract"},
		employmentCues: map[string][]string{
			"remote":    {"work from home", "telecommute", "remote", "wfh"},
			"full-time": {"full-time", "full time", "fulltime", "permanent"},
			"part-time": {"part-time", "part time", "parttime"},
			"contract":  {"contractor", "freelance", "consulting", "contract"},
		},
		// Senior outranks the "experienced" -> mid overlap.
		experienceOrder: []string{"senior", "entry", "mid"},
		experienceCues: map[string][]string{
			"senior": {"principal", "architect", "senior", "sr."},
			"entry":  {"entry-level", "entry level", "fresher", "graduate", "beginner", "junior", "intern", "entry"},
			"mid":    {"mid-level", "mid level", "midlevel", "intermediate", "experienced", "mid"},
		},
		multipliers: map[string]int{
			"k": 1_000, "thousand": 1_000, "hazar": 1_000, "hajar": 1_000,
			"lakh": 100_000, "lac": 100_000,
			"million": 1_000_000, "m": 1_000_000,
			"crore": 10_000_000,
		},
		stopwords: sliceToSet([]string{
			"the", "and", "with", "for", "from", "job", "jobs", "work",
			"role", "position", "opening", "vacancy", "salary", "minimum",
			"maximum", "least", "experience", "looking", "need", "want",
			"near", "within", "radius",
		}),
	}

	for canonical := range lx.skillCategories {
		lx.skillCanonical[strings.ToLower(canonical)] = canonical
	}
	for lower := range lx.skillCanonical {
		lx.skillScanOrder = append(lx.skillScanOrder, lower)
	}
	// Longer entries first so "machine learning" beats "machine", and ties
	// break alphabetically for deterministic scans.
	sortLongestFirst(lx.skillScanOrder)
	sortLongestFirst(lx.cities)

	return lx
}

func sliceToSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func sortLongestFirst(items []string) {
	sort.Slice(items, func(i, j int) bool {
		if len(items[i]) != len(items[j]) {
			return len(items[i]) > len(items[j])
		}
		return items[i] < items[j]
	})
}

// MatchCity returns the first city whose name occurs in the lowercased text.
// Longer names are checked before shorter ones so "New York" wins over "York".
func (lx *Lexicon) MatchCity(lower string) (string, bool) {
	for _, city := range lx.cities {
		if containsTerm(lower, strings.ToLower(city)) {
			return city, true
		}
	}
	return "", false
}

// CanonicalCity maps any casing of a known city to its canonical form.
func (lx *Lexicon) CanonicalCity(name string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, city := range lx.cities {
		if strings.ToLower(city) == lower {
			return city, true
		}
	}
	return "", false
}

// MatchSkills scans the lowercased text and returns every recognized skill in
// canonical casing, plus the raw terms that matched (for leftover removal).
func (lx *Lexicon) MatchSkills(lower string) (skills, matched []string) {
	for _, term := range lx.skillScanOrder {
		if containsTerm(lower, term) {
			skills = append(skills, lx.skillCanonical[term])
			matched = append(matched, term)
		}
	}
	return skills, matched
}

// CanonicalSkill collapses a spelling variant to the canonical skill name.
func (lx *Lexicon) CanonicalSkill(s string) (string, bool) {
	canonical, ok := lx.skillCanonical[strings.ToLower(strings.TrimSpace(s))]
	return canonical, ok
}

// CanonicalCategory validates a category name case-insensitively.
func (lx *Lexicon) CanonicalCategory(s string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, cat := range lx.categoryOrder {
		if strings.ToLower(cat) == lower {
			return cat, true
		}
	}
	return "", false
}

// CategoryFor derives a job category: first from recognized skills via the
// skill->category table, then from category cue words in the text. Both
// lookups honor the fixed priority order (AI/ML before the generic
// Software Engineering fallback).
func (lx *Lexicon) CategoryFor(skills []string, lower string) (string, bool) {
	have := make(map[string]bool)
	for _, s := range skills {
		if cat, ok := lx.skillCategories[s]; ok {
			have[cat] = true
		}
	}
	for _, cat := range lx.categoryOrder {
		if have[cat] {
			return cat, true
		}
	}
	for _, cat := range lx.categoryOrder {
		for _, cue := range lx.categoryCues[cat] {
			if containsTerm(lower, cue) {
				return cat, true
			}
		}
	}
	return "", false
}

// MatchEmployment returns the employment type by fixed priority plus every
// employment cue found in the text (winners and losers alike, so "part-time"
// does not leak into keywords when "remote" wins).
func (lx *Lexicon) MatchEmployment(lower string) (string, []string, bool) {
	var winner string
	var matched []string
	for _, typ := range lx.employmentOrder {
		for _, cue := range lx.employmentCues[typ] {
			if containsTerm(lower, cue) {
				matched = append(matched, cue)
				if winner == "" {
					winner = typ
				}
			}
		}
	}
	return winner, matched, winner != ""
}

// MatchExperience mirrors MatchEmployment for experience levels.
func (lx *Lexicon) MatchExperience(lower string) (string, []string, bool) {
	var winner string
	var matched []string
	for _, level := range lx.experienceOrder {
		for _, cue := range lx.experienceCues[level] {
			if containsTerm(lower, cue) {
				matched = append(matched, cue)
				if winner == "" {
					winner = level
				}
			}
		}
	}
	return winner, matched, winner != ""
}

// Multiplier returns the absolute factor for a salary multiplier word.
func (lx *Lexicon) Multiplier(word string) (int, bool) {
	m, ok := lx.multipliers[strings.ToLower(word)]
	return m, ok
}

// IsStopword reports whether the word carries no search signal.
func (lx *Lexicon) IsStopword(word string) bool {
	_, ok := lx.stopwords[word]
	return ok
}

// containsTerm reports whether term occurs in text on word boundaries.
// Characters that are part of skill spellings (".", "+", "#") do not count
// as boundaries, so "go" never matches inside "google" but "node.js" and
// "c++" match as whole terms.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		if boundedLeft(text, idx) && boundedRight(text, end) {
			return true
		}
		start = idx + 1
	}
}

func boundedLeft(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isTermChar(text[idx-1])
}

func boundedRight(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	return !isTermChar(text[end])
}

func isTermChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '+', c == '#':
		return true
	}
	return false
}
