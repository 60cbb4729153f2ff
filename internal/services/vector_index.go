package services

import (
	"context"

	"alfredoptarigan/cv-matcher/internal/models"
)

// VectorIndex is a vector store holding one kind of candidate.
type VectorIndex interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, candidate models.Candidate, vector []float32) error
	Search(ctx context.Context, vector []float32, limit int, filter *models.MetadataFilter) ([]models.SimilarityResult, error)
	Delete(ctx context.Context, candidateID string) error
	Count(ctx context.Context) (int, error)
}
