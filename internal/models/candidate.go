package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type CandidateKind string

const (
	KindResume      CandidateKind = "resume"
	KindInterviewer CandidateKind = "interviewer"
)

// Label is the human-facing noun for the kind, used in generated text.
func (k CandidateKind) Label() string {
	switch k {
	case KindInterviewer:
		return "Interviewer"
	default:
		return "Candidate"
	}
}

// Metadata keys stored next to every vector.
const (
	MetaCandidateID        = "candidateId"
	MetaType               = "type"
	MetaName               = "name"
	MetaEmail              = "email"
	MetaPhoneNumber        = "phoneNumber"
	MetaExperienceYears    = "experienceYears"
	MetaTier               = "tier"
	MetaTechnicalExpertise = "technicalExpertise"
	MetaSpecializations    = "specializations"
)

// Candidate is a read-only view of a person that can be matched, either a
// resume or an interviewer profile.
type Candidate struct {
	ID              string        `json:"id"`
	Kind            CandidateKind `json:"kind"`
	Name            string        `json:"name"`
	Email           string        `json:"email,omitempty"`
	PhoneNumber     string        `json:"phone_number,omitempty"`
	Content         string        `json:"-"`
	Skills          []string      `json:"technical_expertise,omitempty"`
	Specializations []string      `json:"specializations,omitempty"`
	ExperienceYears int           `json:"experience_years"`
	Tier            int           `json:"tier,omitempty"`
}

type SimilarityResult struct {
	Candidate  Candidate
	Similarity float64
}

// MetadataFilter restricts a similarity search to vectors whose metadata
// value under Key equals Value.
type MetadataFilter struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Metadata flattens the candidate into the payload stored with its vector.
// Lists are []any so both JSON columns and Qdrant payloads accept them.
func (c Candidate) Metadata() map[string]any {
	meta := map[string]any{
		MetaCandidateID:     c.ID,
		MetaType:            string(c.Kind),
		MetaName:            c.Name,
		MetaEmail:           c.Email,
		MetaExperienceYears: int64(c.ExperienceYears),
	}
	if c.PhoneNumber != "" {
		meta[MetaPhoneNumber] = c.PhoneNumber
	}
	if c.Tier > 0 {
		meta[MetaTier] = int64(c.Tier)
	}
	if len(c.Skills) > 0 {
		meta[MetaTechnicalExpertise] = toAnySlice(c.Skills)
	}
	if len(c.Specializations) > 0 {
		meta[MetaSpecializations] = toAnySlice(c.Specializations)
	}
	return meta
}

// CandidateFromMetadata rebuilds a candidate from a stored payload.
func CandidateFromMetadata(content string, meta map[string]any) Candidate {
	return Candidate{
		ID:              metaString(meta, MetaCandidateID),
		Kind:            CandidateKind(metaString(meta, MetaType)),
		Name:            metaString(meta, MetaName),
		Email:           metaString(meta, MetaEmail),
		PhoneNumber:     metaString(meta, MetaPhoneNumber),
		Content:         content,
		Skills:          metaStrings(meta, MetaTechnicalExpertise),
		Specializations: metaStrings(meta, MetaSpecializations),
		ExperienceYears: metaInt(meta, MetaExperienceYears),
		Tier:            metaInt(meta, MetaTier),
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func metaStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
