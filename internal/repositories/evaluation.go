package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-matcher/internal/models"
)

type EvaluationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CandidateEvaluation, error)
	// FindLockedManagers maps each locked resume to the manager holding it.
	FindLockedManagers(ctx context.Context, resumeIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CandidateEvaluation, error) {
	var eval models.CandidateEvaluation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) FindLockedManagers(ctx context.Context, resumeIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	locked := make(map[uuid.UUID]string, len(resumeIDs))
	if len(resumeIDs) == 0 {
		return locked, nil
	}

	var evals []models.CandidateEvaluation
	err := r.db.WithContext(ctx).
		Select("resume_id", "manager_id", "updated_at").
		Where("locked = ? AND resume_id IN ?", true, resumeIDs).
		Order("updated_at ASC").
		Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find locked evaluations: %w", err)
	}

	// Later rows win so the most recent lock owner is reported.
	for _, e := range evals {
		manager := ""
		if e.ManagerID != nil {
			manager = *e.ManagerID
		}
		locked[e.ResumeID] = manager
	}
	return locked, nil
}
