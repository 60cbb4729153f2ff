package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/cv-matcher/internal/models"
)

// VectorMatch is a candidate_vectors row annotated with its cosine similarity.
type VectorMatch struct {
	CandidateID string
	Kind        string
	Content     string
	Metadata    datatypes.JSONMap
	Similarity  float64
}

type VectorStoreRepository interface {
	Upsert(ctx context.Context, vec *models.CandidateVector) error
	// Search ranks rows of kind against a pgvector literal such as "[0.1,0.2]".
	Search(ctx context.Context, kind string, vectorLiteral string, limit int, filterKey, filterValue string) ([]VectorMatch, error)
	DeleteByCandidate(ctx context.Context, kind, candidateID string) error
	Count(ctx context.Context, kind string) (int64, error)
}

type vectorStoreRepository struct {
	db *gorm.DB
}

func NewVectorStoreRepository(db *gorm.DB) VectorStoreRepository {
	return &vectorStoreRepository{db: db}
}

func (r *vectorStoreRepository) Upsert(ctx context.Context, vec *models.CandidateVector) error {
	if vec.ID == uuid.Nil {
		vec.ID = uuid.New()
	}
	vec.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "metadata", "embedding", "updated_at"}),
	}).Create(vec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert candidate vector: %w", err)
	}
	return nil
}

func (r *vectorStoreRepository) Search(ctx context.Context, kind string, vectorLiteral string, limit int, filterKey, filterValue string) ([]VectorMatch, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CandidateVector{}).
		Select("candidate_id, kind, content, metadata, 1 - (embedding <=> ?::vector) AS similarity", vectorLiteral).
		Where("kind = ?", kind)

	if filterKey != "" {
		query = query.Where("metadata ->> ? = ?", filterKey, filterValue)
	}

	var rows []VectorMatch
	err := query.
		Order(clause.Expr{SQL: "embedding <=> ?::vector", Vars: []any{vectorLiteral}}).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search candidate vectors: %w", err)
	}
	return rows, nil
}

func (r *vectorStoreRepository) DeleteByCandidate(ctx context.Context, kind, candidateID string) error {
	err := r.db.WithContext(ctx).
		Where("kind = ? AND candidate_id = ?", kind, candidateID).
		Delete(&models.CandidateVector{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete candidate vector: %w", err)
	}
	return nil
}

func (r *vectorStoreRepository) Count(ctx context.Context, kind string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.CandidateVector{}).Where("kind = ?", kind).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count candidate vectors: %w", err)
	}
	return n, nil
}
