package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/models"
)

// memoryIndex is an in-memory VectorIndex used across service tests.
type memoryIndex struct {
	mu         sync.Mutex
	hits       []models.SimilarityResult
	upserted   map[string][]float32
	contents   map[string]string
	deleted    []string
	lastFilter *models.MetadataFilter
	lastLimit  int
	searchErr  error
	countErr   error
	searches   int
}

func (m *memoryIndex) Init(context.Context) error { return nil }

func (m *memoryIndex) Upsert(_ context.Context, c models.Candidate, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upserted == nil {
		m.upserted = map[string][]float32{}
		m.contents = map[string]string{}
	}
	m.upserted[c.ID] = vector
	m.contents[c.ID] = c.Content
	return nil
}

func (m *memoryIndex) Search(_ context.Context, _ []float32, limit int, filter *models.MetadataFilter) ([]models.SimilarityResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	m.lastFilter = filter
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := append([]models.SimilarityResult(nil), m.hits...)
	return out, nil
}

func (m *memoryIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memoryIndex) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.hits) + len(m.upserted), nil
}

func hit(id string, sim float64) models.SimilarityResult {
	return models.SimilarityResult{
		Candidate:  models.Candidate{ID: id, Kind: models.KindInterviewer, Name: "name-" + id, ExperienceYears: 5, Skills: []string{"Go"}},
		Similarity: sim,
	}
}

func TestFindSimilarSortsAndClamps(t *testing.T) {
	idx := &memoryIndex{hits: []models.SimilarityResult{hit("a", 0.4), hit("b", 1.2), hit("c", 0.8)}}
	gw := NewSimilaritySearchGateway(idx, zap.NewNop())

	got := gw.FindSimilar(context.Background(), []float32{1}, 2, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Candidate.ID)
	assert.Equal(t, 1.0, got[0].Similarity)
	assert.Equal(t, "c", got[1].Candidate.ID)
}

func TestFindSimilarBackendErrorIsEmpty(t *testing.T) {
	idx := &memoryIndex{searchErr: errors.New("connection refused")}
	gw := NewSimilaritySearchGateway(idx, zap.NewNop())

	got := gw.FindSimilar(context.Background(), []float32{1}, 5, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindSimilarPassesFilter(t *testing.T) {
	idx := &memoryIndex{}
	gw := NewSimilaritySearchGateway(idx, zap.NewNop())

	filter := FirstFilter([]models.MetadataFilter{{Key: "type", Value: "resume"}, {Key: "tier", Value: "2"}})
	gw.FindSimilar(context.Background(), []float32{1}, 3, filter)

	require.NotNil(t, idx.lastFilter)
	assert.Equal(t, "type", idx.lastFilter.Key)
	assert.Equal(t, "resume", idx.lastFilter.Value)
	assert.Equal(t, 3, idx.lastLimit)
}

func TestExistsAnyAndCount(t *testing.T) {
	empty := NewSimilaritySearchGateway(&memoryIndex{}, zap.NewNop())
	assert.False(t, empty.ExistsAny(context.Background()))

	broken := NewSimilaritySearchGateway(&memoryIndex{countErr: errors.New("down")}, zap.NewNop())
	assert.False(t, broken.ExistsAny(context.Background()))
	assert.Zero(t, broken.Count(context.Background()))

	full := NewSimilaritySearchGateway(&memoryIndex{hits: []models.SimilarityResult{hit("a", 0.9)}}, zap.NewNop())
	assert.True(t, full.ExistsAny(context.Background()))
	assert.Equal(t, 1, full.Count(context.Background()))
}

func TestFirstFilterSkipsBlankKeys(t *testing.T) {
	assert.Nil(t, FirstFilter(nil))
	f := FirstFilter([]models.MetadataFilter{{Key: ""}, {Key: "tier", Value: "3"}})
	require.NotNil(t, f)
	assert.Equal(t, "tier", f.Key)
}
