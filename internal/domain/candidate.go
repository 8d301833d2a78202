package domain

// Origin marks which retrieval source produced a candidate.
type Origin string

// Candidate origins.
const (
	OriginStructured Origin = "structured"
	OriginSemantic   Origin = "semantic"
	OriginBoth       Origin = "both"
)

// Candidate is a per-request retrieval hit. Instances live only for the
// duration of fusion.
type Candidate struct {
	JobID string
	// StructuredMatch is set when the structured source returned this job,
	// i.e. its stored attributes satisfied the filter's non-null fields.
	StructuredMatch bool
	// Similarity is the semantic score reported by the vector source,
	// on its native scale (typically 0..1). Zero when semantic-only miss.
	Similarity float64
	// Job is the display payload. A candidate without one is dropped
	// during fusion.
	Job *Job
}

// FusedResult is one entry of the final ranked list. Job is never nil:
// payload-less candidates are dropped during fusion.
type FusedResult struct {
	JobID      string
	Origin     Origin
	MatchScore float64
	Job        *Job
}
