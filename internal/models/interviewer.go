package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InterviewerProfile struct {
	ID                 uuid.UUID                           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name               string                              `gorm:"type:text;not null" json:"name"`
	Email              string                              `gorm:"type:text;uniqueIndex" json:"email"`
	ExperienceYears    int                                 `gorm:"default:0" json:"experience_years"`
	Tier               int                                 `gorm:"default:1" json:"tier"`
	TechnicalExpertise datatypes.JSONSlice[string]         `gorm:"type:jsonb" json:"technical_expertise"`
	Specializations    datatypes.JSONSlice[string]         `gorm:"type:jsonb" json:"specializations"`
	Availability       datatypes.JSONType[map[string]int] `gorm:"type:jsonb" json:"availability"`
	CreatedAt          time.Time                           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InterviewerProfile) TableName() string {
	return "interviewer_profiles"
}

// ProfileContent is the text embedded into the vector index for this interviewer.
func (p *InterviewerProfile) ProfileContent() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "Email: %s\n", p.Email)
	fmt.Fprintf(&sb, "Experience: %d years\n", p.ExperienceYears)
	fmt.Fprintf(&sb, "Tier: %d\n", p.Tier)
	fmt.Fprintf(&sb, "Technical Expertise: %s\n", strings.Join(p.TechnicalExpertise, ", "))
	fmt.Fprintf(&sb, "Specializations: %s\n", strings.Join(p.Specializations, ", "))
	return sb.String()
}

func (p *InterviewerProfile) ToCandidate() Candidate {
	return Candidate{
		ID:              p.ID.String(),
		Kind:            KindInterviewer,
		Name:            p.Name,
		Email:           p.Email,
		Content:         p.ProfileContent(),
		Skills:          append([]string(nil), p.TechnicalExpertise...),
		Specializations: append([]string(nil), p.Specializations...),
		ExperienceYears: p.ExperienceYears,
		Tier:            p.Tier,
	}
}

// SlotsOn returns the number of open interview slots for a date (YYYY-MM-DD).
func (p *InterviewerProfile) SlotsOn(date string) int {
	slots := p.Availability.Data()
	if slots == nil {
		return 0
	}
	return slots[date]
}
