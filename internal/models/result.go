package models

type UploadResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Indexed      bool   `json:"indexed"`
}

type CreateInterviewerRequest struct {
	Name               string         `json:"name" validate:"required"`
	Email              string         `json:"email" validate:"required,email"`
	ExperienceYears    int            `json:"experience_years" validate:"gte=0,lte=60"`
	Tier               int            `json:"tier" validate:"omitempty,gte=1,lte=5"`
	TechnicalExpertise []string       `json:"technical_expertise" validate:"dive,required"`
	Specializations    []string       `json:"specializations" validate:"dive,required"`
	Availability       map[string]int `json:"availability" validate:"dive,gte=0"`
}

// UpdateInterviewerRequest replaces every profile field. Availability is only
// replaced when present in the body.
type UpdateInterviewerRequest struct {
	Name               string         `json:"name" validate:"required"`
	Email              string         `json:"email" validate:"required,email"`
	ExperienceYears    int            `json:"experience_years" validate:"gte=0,lte=60"`
	Tier               int            `json:"tier" validate:"omitempty,gte=1,lte=5"`
	TechnicalExpertise []string       `json:"technical_expertise" validate:"dive,required"`
	Specializations    []string       `json:"specializations" validate:"dive,required"`
	Availability       map[string]int `json:"availability" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,gte=0"`
}

type SetAvailabilityRequest struct {
	Availability map[string]int `json:"availability" validate:"required,dive,keys,datetime=2006-01-02,endkeys,gte=0"`
}

type ReserveSlotRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type JobDescriptionMatchRequest struct {
	JobDescription       string `json:"job_description" validate:"required"`
	Limit                int    `json:"limit" validate:"gte=0"`
	IncludeLowConfidence bool   `json:"include_low_confidence"`
}

type ExpertiseMatchRequest struct {
	Query   string           `json:"query" validate:"required"`
	Filters []MetadataFilter `json:"filters" validate:"dive"`
	Limit   int              `json:"limit" validate:"gte=0"`
}

type BatchMatchRequest struct {
	ResumeIDs []string `json:"resume_ids" validate:"required,min=1,dive,uuid"`
	Limit     int      `json:"limit" validate:"gte=0"`
}

type MatchResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Count      int            `json:"count"`
	Tiers      TierCounts     `json:"tiers"`
	Results    []MatchOutcome `json:"results"`
	StoreEmpty bool           `json:"store_empty,omitempty"`
}

// NewMatchResponse shapes a MatchResult for the HTTP layer.
func NewMatchResponse(result *MatchResult) MatchResponse {
	if result == nil {
		return MatchResponse{Success: false, Results: []MatchOutcome{}}
	}
	if result.StoreEmpty {
		return MatchResponse{
			Success:    false,
			Message:    "No candidates are indexed yet. Run a sync first.",
			Results:    []MatchOutcome{},
			StoreEmpty: true,
		}
	}
	results := result.Results
	if results == nil {
		results = []MatchOutcome{}
	}
	return MatchResponse{
		Success: true,
		Count:   len(results),
		Tiers:   result.Tiers,
		Results: results,
	}
}

type BatchMatchEntry struct {
	ResumeID string         `json:"resume_id"`
	Match    *MatchResponse `json:"match,omitempty"`
	Error    string         `json:"error,omitempty"`
}
