package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/cache"
	"alfredoptarigan/cv-matcher/internal/models"
)

type syncFixture struct {
	interviewers *stubInterviewerRepo
	resumes      *stubResumeRepo
	interviewIdx *memoryIndex
	resumeIdx    *memoryIndex
	embedder     *stubEmbeddingProvider
	svc          IndexSyncService
}

func newSyncFixture(embedFailures int) *syncFixture {
	f := &syncFixture{
		interviewers: &stubInterviewerRepo{profiles: map[uuid.UUID]*models.InterviewerProfile{}},
		resumes:      &stubResumeRepo{resumes: map[uuid.UUID]*models.Resume{}},
		interviewIdx: &memoryIndex{},
		resumeIdx:    &memoryIndex{},
		embedder:     &stubEmbeddingProvider{vector: []float32{0.5, 0.5}, failN: embedFailures},
	}
	// a nil *cache.Redis behaves like an unreachable server
	var redis *cache.Redis
	f.svc = NewIndexSyncService(
		f.interviewers,
		f.resumes,
		NewEmbeddingGateway(f.embedder, 2, fastRetry(1), zap.NewNop()),
		map[models.CandidateKind]VectorIndex{
			models.KindInterviewer: f.interviewIdx,
			models.KindResume:      f.resumeIdx,
		},
		redis,
		0,
		zap.NewNop(),
	)
	return f
}

func TestSyncAllIndexesEveryCandidate(t *testing.T) {
	f := newSyncFixture(0)
	ada := &models.InterviewerProfile{ID: uuid.New(), Name: "Ada"}
	grace := &models.Resume{ID: uuid.New(), Name: "Grace", FullText: "Go"}
	f.interviewers.profiles[ada.ID] = ada
	f.resumes.resumes[grace.ID] = grace

	status, err := f.svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SyncCompleted, status.State)
	assert.Equal(t, 1, status.Interviewers)
	assert.Equal(t, 1, status.Resumes)
	assert.Contains(t, f.interviewIdx.upserted, ada.ID.String())
	assert.Contains(t, f.resumeIdx.upserted, grace.ID.String())

	stored, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncCompleted, stored.State)
	assert.NotNil(t, stored.FinishedAt)
}

func TestSyncSkipsZeroVectors(t *testing.T) {
	f := newSyncFixture(1)
	ada := &models.InterviewerProfile{ID: uuid.New(), Name: "Ada"}
	f.interviewers.profiles[ada.ID] = ada

	status, err := f.svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, status.Interviewers)
	assert.Equal(t, 1, status.Failed)
	assert.Empty(t, f.interviewIdx.upserted)
}

func TestSyncStatusDefaultsToIdle(t *testing.T) {
	status, err := newSyncFixture(0).svc.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SyncIdle, status.State)
}

func TestSyncRejectsConcurrentRunWithoutRedis(t *testing.T) {
	f := newSyncFixture(0)
	s := f.svc.(*indexSyncService)
	s.localLock.Lock()
	defer s.localLock.Unlock()

	_, err := f.svc.SyncAll(context.Background())

	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestRemoveCandidate(t *testing.T) {
	f := newSyncFixture(0)
	id := uuid.New()

	require.NoError(t, f.svc.RemoveCandidate(context.Background(), models.KindInterviewer, id))

	assert.Equal(t, []string{id.String()}, f.interviewIdx.deleted)
	assert.Empty(t, f.resumeIdx.deleted)
}
