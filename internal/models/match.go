package models

type MatchStatus string

const (
	StatusStrongMatch MatchStatus = "STRONG_MATCH"
	StatusMatch       MatchStatus = "MATCH"
	StatusConsider    MatchStatus = "CONSIDER"
)

// Rank orders statuses from strongest (highest) to weakest.
func (s MatchStatus) Rank() int {
	switch s {
	case StatusStrongMatch:
		return 3
	case StatusMatch:
		return 2
	case StatusConsider:
		return 1
	default:
		return 0
	}
}

// MatchOutcome is the final per-candidate answer of a match request.
type MatchOutcome struct {
	CandidateID      string        `json:"candidate_id"`
	Kind             CandidateKind `json:"kind"`
	Name             string        `json:"name"`
	Email            string        `json:"email,omitempty"`
	PhoneNumber      string        `json:"phone_number,omitempty"`
	ExperienceYears  int           `json:"experience_years"`
	Tier             int           `json:"tier,omitempty"`
	Skills           []string      `json:"technical_expertise,omitempty"`
	Specializations  []string      `json:"specializations,omitempty"`
	Similarity       float64       `json:"similarity"`
	MatchScore       int           `json:"match_score"`
	MatchExplanation string        `json:"match_explanation"`
	MatchStatus      MatchStatus   `json:"match_status"`
	Locked           bool          `json:"locked,omitempty"`
	ManagerID        string        `json:"manager_id,omitempty"`
}

// NewMatchOutcome copies the candidate summary fields into an outcome.
func NewMatchOutcome(hit SimilarityResult, score int, explanation string, status MatchStatus) MatchOutcome {
	c := hit.Candidate
	return MatchOutcome{
		CandidateID:      c.ID,
		Kind:             c.Kind,
		Name:             c.Name,
		Email:            c.Email,
		PhoneNumber:      c.PhoneNumber,
		ExperienceYears:  c.ExperienceYears,
		Tier:             c.Tier,
		Skills:           c.Skills,
		Specializations:  c.Specializations,
		Similarity:       hit.Similarity,
		MatchScore:       score,
		MatchExplanation: explanation,
		MatchStatus:      status,
	}
}

type TierCounts struct {
	StrongMatch int `json:"strong_match"`
	Match       int `json:"match"`
	Consider    int `json:"consider"`
	Excluded    int `json:"excluded"`
}

type MatchResult struct {
	Results    []MatchOutcome `json:"results"`
	Tiers      TierCounts     `json:"tiers"`
	StoreEmpty bool           `json:"store_empty"`
}
