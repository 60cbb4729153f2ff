package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CandidateEvaluation is a hiring manager's assessment of a resume. Matching
// only reads these rows; the evaluation workflow owns writes.
type CandidateEvaluation struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"resume_id"`
	JobTitle         string                      `gorm:"type:text" json:"job_title"`
	ExecutiveSummary string                      `gorm:"type:text" json:"executive_summary"`
	KeyStrengths     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"key_strengths"`
	TechnicalSkills  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"technical_skills"`
	Recommendation   string                      `gorm:"type:text" json:"recommendation"`
	Locked           bool                        `gorm:"not null;default:false;index" json:"locked"`
	ManagerID        *string                     `gorm:"type:text" json:"manager_id,omitempty"`
	CreatedAt        time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Resume Resume `gorm:"foreignKey:ResumeID" json:"-"`
}

func (CandidateEvaluation) TableName() string {
	return "candidate_evaluations"
}
