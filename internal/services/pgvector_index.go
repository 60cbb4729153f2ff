package services

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

type pgvectorIndex struct {
	repo repositories.VectorStoreRepository
	kind models.CandidateKind
	log  *zap.Logger
}

// NewPgvectorIndex keeps vectors in the candidate_vectors table, scoped by kind.
func NewPgvectorIndex(repo repositories.VectorStoreRepository, kind models.CandidateKind, log *zap.Logger) VectorIndex {
	return &pgvectorIndex{
		repo: repo,
		kind: kind,
		log:  logger.OrNop(log).With(zap.String("kind", string(kind))),
	}
}

// Init is a no-op; the table is created by the database migration.
func (p *pgvectorIndex) Init(context.Context) error {
	return nil
}

func (p *pgvectorIndex) Upsert(ctx context.Context, candidate models.Candidate, vector []float32) error {
	return p.repo.Upsert(ctx, &models.CandidateVector{
		Kind:        string(p.kind),
		CandidateID: candidate.ID,
		Content:     candidate.Content,
		Metadata:    datatypes.JSONMap(candidate.Metadata()),
		Embedding:   pgvector.NewVector(vector),
	})
}

func (p *pgvectorIndex) Search(ctx context.Context, vector []float32, limit int, filter *models.MetadataFilter) ([]models.SimilarityResult, error) {
	var key, value string
	if filter != nil {
		key, value = filter.Key, filter.Value
	}

	rows, err := p.repo.Search(ctx, string(p.kind), ToIndexString(vector), limit, key, value)
	if err != nil {
		return nil, err
	}

	results := make([]models.SimilarityResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.SimilarityResult{
			Candidate:  models.CandidateFromMetadata(row.Content, map[string]any(row.Metadata)),
			Similarity: row.Similarity,
		})
	}
	p.log.Debug("pgvector search", zap.Int("hits", len(results)))
	return results, nil
}

func (p *pgvectorIndex) Delete(ctx context.Context, candidateID string) error {
	return p.repo.DeleteByCandidate(ctx, string(p.kind), candidateID)
}

func (p *pgvectorIndex) Count(ctx context.Context) (int, error) {
	n, err := p.repo.Count(ctx, string(p.kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s vectors: %w", p.kind, err)
	}
	return int(n), nil
}
