package services

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

// SimilaritySearchGateway is the read side of a VectorIndex. Backend failures
// are logged and reported as "nothing found" so callers never see them.
type SimilaritySearchGateway interface {
	FindSimilar(ctx context.Context, vector []float32, limit int, filter *models.MetadataFilter) []models.SimilarityResult
	ExistsAny(ctx context.Context) bool
	Count(ctx context.Context) int
}

type similaritySearchGateway struct {
	index VectorIndex
	log   *zap.Logger
}

func NewSimilaritySearchGateway(index VectorIndex, log *zap.Logger) SimilaritySearchGateway {
	return &similaritySearchGateway{index: index, log: logger.OrNop(log)}
}

func (s *similaritySearchGateway) FindSimilar(ctx context.Context, vector []float32, limit int, filter *models.MetadataFilter) []models.SimilarityResult {
	if limit <= 0 {
		return []models.SimilarityResult{}
	}

	results, err := s.index.Search(ctx, vector, limit, filter)
	if err != nil {
		s.log.Error("❌ similarity search failed", zap.Int("limit", limit), zap.Error(err))
		return []models.SimilarityResult{}
	}

	for i := range results {
		results[i].Similarity = clampSimilarity(results[i].Similarity)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (s *similaritySearchGateway) ExistsAny(ctx context.Context) bool {
	return s.Count(ctx) > 0
}

func (s *similaritySearchGateway) Count(ctx context.Context) int {
	n, err := s.index.Count(ctx)
	if err != nil {
		s.log.Error("❌ vector count failed", zap.Error(err))
		return 0
	}
	return n
}

func clampSimilarity(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FirstFilter picks the single filter a search supports; extra filters are ignored.
func FirstFilter(filters []models.MetadataFilter) *models.MetadataFilter {
	for _, f := range filters {
		if f.Key != "" {
			first := f
			return &first
		}
	}
	return nil
}
