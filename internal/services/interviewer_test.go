package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

func newInterviewerFixture() (*syncFixture, InterviewerService) {
	f := newSyncFixture(0)
	return f, newInterviewerService(f)
}

func newInterviewerService(f *syncFixture) InterviewerService {
	return NewInterviewerService(
		f.interviewers,
		f.svc,
		NewEmbeddingGateway(f.embedder, 2, fastRetry(1), zap.NewNop()),
		NewSimilaritySearchGateway(f.interviewIdx, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestCreateInterviewerIndexesProfile(t *testing.T) {
	f, svc := newInterviewerFixture()

	profile, indexed, err := svc.Create(context.Background(), models.CreateInterviewerRequest{
		Name:               "Ada",
		Email:              "ada@example.com",
		ExperienceYears:    12,
		TechnicalExpertise: []string{"Go"},
	})

	require.NoError(t, err)
	assert.True(t, indexed)
	assert.Equal(t, 1, profile.Tier)
	assert.Contains(t, f.interviewIdx.upserted, profile.ID.String())
}

func TestCreateInterviewerSurvivesEmbeddingOutage(t *testing.T) {
	f := newSyncFixture(1)
	svc := newInterviewerService(f)

	profile, indexed, err := svc.Create(context.Background(), models.CreateInterviewerRequest{Name: "Ada", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.False(t, indexed)
	assert.Contains(t, f.interviewers.profiles, profile.ID)
}

func TestDeleteInterviewerRemovesIndexEntry(t *testing.T) {
	f, svc := newInterviewerFixture()
	id := uuid.New()
	f.interviewers.profiles[id] = &models.InterviewerProfile{ID: id, Name: "Ada"}

	require.NoError(t, svc.Delete(context.Background(), id))

	assert.Equal(t, []string{id.String()}, f.interviewIdx.deleted)
	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrCandidateNotFound)
}

func TestReserveSlot(t *testing.T) {
	f, svc := newInterviewerFixture()
	id := uuid.New()
	f.interviewers.profiles[id] = &models.InterviewerProfile{
		ID:           id,
		Availability: datatypes.NewJSONType(map[string]int{"2026-11-02": 2, "2026-11-03": 0}),
	}

	avail, err := svc.Availability(context.Background(), id, "2026-11-02")
	require.NoError(t, err)
	assert.Equal(t, 2, avail.Slots)

	reserved, err := svc.Reserve(context.Background(), id, "2026-11-02")
	require.NoError(t, err)
	assert.Equal(t, 1, reserved.Slots)

	_, err = svc.Reserve(context.Background(), id, "2026-11-03")
	assert.ErrorIs(t, err, repositories.ErrNoSlots)

	_, err = svc.Reserve(context.Background(), uuid.New(), "2026-11-02")
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestUpdateInterviewerReindexesProfile(t *testing.T) {
	f, svc := newInterviewerFixture()
	ctx := context.Background()
	profile, _, err := svc.Create(ctx, models.CreateInterviewerRequest{
		Name:               "Ada",
		Email:              "ada@example.com",
		ExperienceYears:    12,
		TechnicalExpertise: []string{"Go"},
		Availability:       map[string]int{"2026-11-02": 3},
	})
	require.NoError(t, err)
	assert.Contains(t, f.interviewIdx.contents[profile.ID.String()], "Technical Expertise: Go\n")

	updated, indexed, err := svc.Update(ctx, profile.ID, models.UpdateInterviewerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		ExperienceYears:    14,
		Tier:               3,
		TechnicalExpertise: []string{"Go", "Kafka"},
	})

	require.NoError(t, err)
	assert.True(t, indexed)
	assert.Equal(t, 3, updated.Tier)
	assert.Equal(t, 3, updated.SlotsOn("2026-11-02"), "availability kept when omitted")
	content := f.interviewIdx.contents[profile.ID.String()]
	assert.Contains(t, content, "Name: Ada Lovelace\n")
	assert.Contains(t, content, "Technical Expertise: Go, Kafka\n")
	assert.Len(t, f.interviewIdx.upserted, 1)

	_, _, err = svc.Update(ctx, uuid.New(), models.UpdateInterviewerRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestSetAvailabilityReplacesSlots(t *testing.T) {
	f, svc := newInterviewerFixture()
	id := uuid.New()
	f.interviewers.profiles[id] = &models.InterviewerProfile{
		ID:           id,
		Availability: datatypes.NewJSONType(map[string]int{"2026-11-02": 2}),
	}

	profile, err := svc.SetAvailability(context.Background(), id, map[string]int{"2026-11-05": 4})

	require.NoError(t, err)
	assert.Zero(t, profile.SlotsOn("2026-11-02"))
	assert.Equal(t, 4, profile.SlotsOn("2026-11-05"))
	assert.Empty(t, f.interviewIdx.upserted)

	_, err = svc.SetAvailability(context.Background(), uuid.New(), map[string]int{})
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestListInterviewersFilters(t *testing.T) {
	f, svc := newInterviewerFixture()
	for _, p := range []*models.InterviewerProfile{
		{ID: uuid.New(), Name: "Ada", Tier: 2, ExperienceYears: 12},
		{ID: uuid.New(), Name: "Grace", Tier: 2, ExperienceYears: 4},
		{ID: uuid.New(), Name: "Linus", Tier: 1, ExperienceYears: 20},
	} {
		f.interviewers.profiles[p.ID] = p
	}

	got, err := svc.List(context.Background(), repositories.InterviewerQuery{Tier: 2, MinExperience: 10})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
}

func TestSearchInterviewersKeepsSimilarityOrder(t *testing.T) {
	f, svc := newInterviewerFixture()
	ada, grace, gone := uuid.New(), uuid.New(), uuid.New()
	f.interviewers.profiles[ada] = &models.InterviewerProfile{ID: ada, Name: "Ada"}
	f.interviewers.profiles[grace] = &models.InterviewerProfile{ID: grace, Name: "Grace"}
	f.interviewIdx.hits = []models.SimilarityResult{
		{Candidate: models.Candidate{ID: grace.String()}, Similarity: 0.8},
		{Candidate: models.Candidate{ID: gone.String()}, Similarity: 0.85},
		{Candidate: models.Candidate{ID: ada.String()}, Similarity: 0.9},
	}
	filter := &models.MetadataFilter{Key: models.MetaTier, Value: "2"}

	hits, err := svc.Search(context.Background(), "kafka streaming", 5, filter)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Ada", hits[0].Interviewer.Name)
	assert.Equal(t, 0.9, hits[0].Similarity)
	assert.Equal(t, "Grace", hits[1].Interviewer.Name)
	assert.Equal(t, filter, f.interviewIdx.lastFilter)
	assert.Equal(t, 5, f.interviewIdx.lastLimit)

	_, err = svc.Search(context.Background(), "  ", 5, nil)
	assert.ErrorIs(t, err, ErrQueryRequired)
}
