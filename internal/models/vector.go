package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CandidateVector is one embedded candidate in the pgvector backend.
type CandidateVector struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Kind        string            `gorm:"type:text;not null;uniqueIndex:idx_candidate_vectors_kind_candidate" json:"kind"`
	CandidateID string            `gorm:"type:text;not null;uniqueIndex:idx_candidate_vectors_kind_candidate" json:"candidate_id"`
	Content     string            `gorm:"type:text" json:"content"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	Embedding   pgvector.Vector   `gorm:"type:vector" json:"-"`
	CreatedAt   time.Time         `gorm:"type:timestamptz;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"type:timestamptz;default:now()" json:"updated_at"`
}

func (CandidateVector) TableName() string { return "candidate_vectors" }
