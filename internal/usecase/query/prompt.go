package query

import "fmt"

// instructionTemplate is the fixed prompt for the LLM understanding
// collaborator. The model must emit the canonical filter shape as JSON and
// normalize locations, skills and enums to the canonical English vocabulary
// regardless of the query language or script.
const instructionTemplate = `You are a multilingual job search query parser that understands queries in ANY language including English, Bengali/Bangla, Hindi, Arabic, Spanish and French. Extract structured information from the natural language query and return ONLY a valid JSON object with these exact fields:

{
  "intent": "job_search",
  "keywords": [],
  "location": null,
  "geo_radius_km": null,
  "salary_min": null,
  "salary_max": null,
  "employment_type": null,
  "experience_level": null,
  "skills": [],
  "category": null,
  "status": "active",
  "detected_language": null,
  "original_query": null
}

PARSING RULES:
- Understand queries in ANY language or script.
- keywords: main search terms in English (translate if needed).
- location: city name in English (the Bengali name of Dhaka becomes "Dhaka", of Chittagong becomes "Chittagong").
- geo_radius_km: numeric radius regardless of how it is phrased.
- salary_min/salary_max: absolute amounts; expand multiplier words (hazar/thousand = x1000, lakh = x100000).
- employment_type: one of "full-time", "part-time", "contract", "remote".
- experience_level: one of "entry", "mid", "senior".
- skills: technology names in canonical English ("Python", "JavaScript", "React").
- category: a job category in English ("Software Engineering", "Data Science", "AI/ML", ...).
- detected_language: primary language of the query ("english", "bengali", "hindi", ...).
- original_query: the exact query as provided.
- Use null for missing fields, never empty strings.

Query: %q

JSON:`

// buildPrompt renders the instruction template for a query.
func buildPrompt(query string) string {
	return fmt.Sprintf(instructionTemplate, query)
}
