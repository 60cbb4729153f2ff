package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Resume struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string                      `gorm:"type:text" json:"name"`
	Email            string                      `gorm:"type:text" json:"email"`
	PhoneNumber      string                      `gorm:"type:text" json:"phone_number"`
	FullText         string                      `gorm:"type:text" json:"-"`
	Skills           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	ExperienceYears  int                         `gorm:"default:0" json:"experience_years"`
	Filename         string                      `gorm:"type:text" json:"filename"`
	OriginalFileName string                      `gorm:"type:text" json:"original_filename"`
	FilePath         string                      `gorm:"type:text" json:"-"`
	CreatedAt        time.Time                   `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (r *Resume) TableName() string {
	return "resumes"
}

// ToCandidate projects the resume into the read-only shape used by matching.
func (r *Resume) ToCandidate() Candidate {
	return Candidate{
		ID:              r.ID.String(),
		Kind:            KindResume,
		Name:            r.Name,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		Content:         r.FullText,
		Skills:          append([]string(nil), r.Skills...),
		ExperienceYears: r.ExperienceYears,
	}
}
