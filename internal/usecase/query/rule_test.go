package query

import (
	"context"
	"reflect"
	"testing"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
)

func newRule() *RuleParser {
	return NewRuleParser(lexicon.Default())
}

func TestRuleParse_SkillAndCategory(t *testing.T) {
	f, err := newRule().Parse(context.Background(), "Python developer")
	if err != nil {
		t.Fatalf("rule parse must not fail: %v", err)
	}

	if !reflect.DeepEqual(f.Skills, []string{"Python"}) {
		t.Errorf("unexpected skills: %v", f.Skills)
	}
	if f.Category == nil || *f.Category != "Software Engineering" {
		t.Errorf("unexpected category: %v", f.Category)
	}
	if !reflect.DeepEqual(f.Keywords, []string{"developer"}) {
		t.Errorf("unexpected keywords: %v", f.Keywords)
	}
	if f.ParsedBy != domain.ParsedByRule {
		t.Errorf("unexpected parsed_by: %q", f.ParsedBy)
	}
}

func TestRuleParse_SalaryLocationExperience(t *testing.T) {
	f, _ := newRule().Parse(context.Background(), "minimum 50k salary senior AI engineer in Dhaka")

	if f.Location == nil || *f.Location != "Dhaka" {
		t.Errorf("unexpected location: %v", f.Location)
	}
	if f.SalaryMin == nil || *f.SalaryMin != 50000 {
		t.Errorf("unexpected salary_min: %v", f.SalaryMin)
	}
	if f.SalaryMax != nil {
		t.Errorf("salary_max must stay null, got %v", *f.SalaryMax)
	}
	if f.ExperienceLevel == nil || *f.ExperienceLevel != "senior" {
		t.Errorf("unexpected experience: %v", f.ExperienceLevel)
	}
	if f.Category == nil || *f.Category != "AI/ML" {
		t.Errorf("unexpected category: %v", f.Category)
	}
	if !reflect.DeepEqual(f.Keywords, []string{"engineer"}) {
		t.Errorf("unexpected keywords: %v", f.Keywords)
	}
}

func TestRuleParse_EmploymentPriority(t *testing.T) {
	f, _ := newRule().Parse(context.Background(), "Remote part-time React developer")

	if f.EmploymentType == nil || *f.EmploymentType != "remote" {
		t.Errorf("unexpected employment: %v", f.EmploymentType)
	}
	if !reflect.DeepEqual(f.Skills, []string{"React"}) {
		t.Errorf("unexpected skills: %v", f.Skills)
	}
	// Losing employment cue must not leak into keywords.
	if !reflect.DeepEqual(f.Keywords, []string{"developer"}) {
		t.Errorf("unexpected keywords: %v", f.Keywords)
	}
}

func TestRuleParse_SalaryRange(t *testing.T) {
	cases := []struct {
		text   string
		lo, hi int
	}{
		{"developer 40k-60k", 40000, 60000},
		{"developer 40-60k", 40000, 60000},
		{"developer 40000 to 60000 taka", 40000, 60000},
		{"developer 1.5 lakh to 2 lakh", 150000, 200000},
		{"developer 60k-40k", 40000, 60000}, // reversed bounds swap
	}
	for _, tc := range cases {
		f, _ := newRule().Parse(context.Background(), tc.text)
		if f.SalaryMin == nil || f.SalaryMax == nil {
			t.Errorf("%q: expected a salary range, got %v/%v", tc.text, f.SalaryMin, f.SalaryMax)
			continue
		}
		if *f.SalaryMin != tc.lo || *f.SalaryMax != tc.hi {
			t.Errorf("%q: got %d-%d, want %d-%d", tc.text, *f.SalaryMin, *f.SalaryMax, tc.lo, tc.hi)
		}
	}
}

func TestRuleParse_NonSalaryNumbersIgnored(t *testing.T) {
	f, _ := newRule().Parse(context.Background(), "developer with at least 3 years experience")

	if f.SalaryMin != nil || f.SalaryMax != nil {
		t.Errorf("years must not become a salary: %v/%v", f.SalaryMin, f.SalaryMax)
	}
}

func TestRuleParse_MaxSalaryPhrases(t *testing.T) {
	f, _ := newRule().Parse(context.Background(), "designer up to 80k")

	if f.SalaryMax == nil || *f.SalaryMax != 80000 {
		t.Errorf("unexpected salary_max: %v", f.SalaryMax)
	}
	if f.SalaryMin != nil {
		t.Errorf("salary_min must stay null, got %v", *f.SalaryMin)
	}
}

func TestRuleParse_GeoRadius(t *testing.T) {
	f, _ := newRule().Parse(context.Background(), "jobs in Dhaka within 10 km")

	if f.GeoRadiusKM == nil || *f.GeoRadiusKM != 10 {
		t.Errorf("unexpected radius: %v", f.GeoRadiusKM)
	}
	if f.Location == nil || *f.Location != "Dhaka" {
		t.Errorf("unexpected location: %v", f.Location)
	}
}

func TestRuleParse_EmptyInputFullyShaped(t *testing.T) {
	f, err := newRule().Parse(context.Background(), "   ")
	if err != nil {
		t.Fatalf("rule parse must not fail: %v", err)
	}

	if f.Intent != domain.Intent || f.Status != domain.StatusActive {
		t.Errorf("missing canonical constants: %+v", f)
	}
	if f.Keywords == nil || len(f.Keywords) != 0 {
		t.Errorf("keywords must be an empty slice, got %v", f.Keywords)
	}
	if f.Skills == nil || len(f.Skills) != 0 {
		t.Errorf("skills must be an empty slice, got %v", f.Skills)
	}
	if f.Location != nil || f.SalaryMin != nil || f.SalaryMax != nil ||
		f.EmploymentType != nil || f.ExperienceLevel != nil || f.Category != nil {
		t.Errorf("absent signals must be nil: %+v", f)
	}
}

func TestRuleParse_KeywordCap(t *testing.T) {
	f, _ := newRule().Parse(context.Background(),
		"alpha bravo charlie delta echo foxtrot golf hotel")

	if len(f.Keywords) != maxKeywords {
		t.Errorf("expected %d keywords, got %v", maxKeywords, f.Keywords)
	}
}

func TestRuleParse_Deterministic(t *testing.T) {
	const text = "senior Python and React developer in Dhaka 50k-80k"

	first, _ := newRule().Parse(context.Background(), text)
	for i := 0; i < 5; i++ {
		next, _ := newRule().Parse(context.Background(), text)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("parse is not deterministic:\n%+v\n%+v", first, next)
		}
	}
}
