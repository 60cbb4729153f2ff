package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/cache"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

const (
	syncLockKey   = "cv-matcher:sync:lock"
	syncStatusKey = "cv-matcher:sync:status"
	syncBatchSize = 100
)

// ErrSyncInProgress is returned when another sync holds the lock.
var ErrSyncInProgress = errors.New("index sync already in progress")

type SyncState string

const (
	SyncIdle      SyncState = "idle"
	SyncRunning   SyncState = "running"
	SyncCompleted SyncState = "completed"
	SyncFailed    SyncState = "failed"
)

type SyncStatus struct {
	State        SyncState  `json:"state"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Interviewers int        `json:"interviewers"`
	Resumes      int        `json:"resumes"`
	Failed       int        `json:"failed"`
	Error        string     `json:"error,omitempty"`
}

// IndexSyncService keeps the vector indexes in step with the database.
type IndexSyncService interface {
	SyncAll(ctx context.Context) (*SyncStatus, error)
	Status(ctx context.Context) (*SyncStatus, error)
	IndexInterviewer(ctx context.Context, profile *models.InterviewerProfile) error
	IndexResume(ctx context.Context, resume *models.Resume) error
	RemoveCandidate(ctx context.Context, kind models.CandidateKind, id uuid.UUID) error
}

type indexSyncService struct {
	interviewers repositories.InterviewerRepository
	resumes      repositories.ResumeRepository
	embedder     EmbeddingGateway
	indexes      map[models.CandidateKind]VectorIndex
	redis        *cache.Redis
	lockTTL      time.Duration
	log          *zap.Logger

	// used when redis is unavailable
	localLock   sync.Mutex
	statusMu    sync.RWMutex
	localStatus SyncStatus
}

func NewIndexSyncService(
	interviewers repositories.InterviewerRepository,
	resumes repositories.ResumeRepository,
	embedder EmbeddingGateway,
	indexes map[models.CandidateKind]VectorIndex,
	redis *cache.Redis,
	lockTTL time.Duration,
	log *zap.Logger,
) IndexSyncService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &indexSyncService{
		interviewers: interviewers,
		resumes:      resumes,
		embedder:     embedder,
		indexes:      indexes,
		redis:        redis,
		lockTTL:      lockTTL,
		log:          logger.OrNop(log),
		localStatus:  SyncStatus{State: SyncIdle},
	}
}

func (s *indexSyncService) SyncAll(ctx context.Context) (*SyncStatus, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	status := &SyncStatus{State: SyncRunning, StartedAt: &started}
	s.saveStatus(ctx, status)
	s.log.Info("🔄 Starting index sync")

	for kind, index := range s.indexes {
		if err := index.Init(ctx); err != nil {
			return s.finish(ctx, status, fmt.Errorf("failed to init %s index: %w", kind, err))
		}
	}

	if _, ok := s.indexes[models.KindInterviewer]; ok {
		err = s.interviewers.FindAll(ctx, syncBatchSize, func(batch []models.InterviewerProfile) error {
			for i := range batch {
				if err := s.IndexInterviewer(ctx, &batch[i]); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					status.Failed++
					continue
				}
				status.Interviewers++
			}
			return nil
		})
		if err != nil {
			return s.finish(ctx, status, err)
		}
	}

	if _, ok := s.indexes[models.KindResume]; ok {
		err = s.resumes.FindAll(ctx, syncBatchSize, func(batch []models.Resume) error {
			for i := range batch {
				if err := s.IndexResume(ctx, &batch[i]); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					status.Failed++
					continue
				}
				status.Resumes++
			}
			return nil
		})
		if err != nil {
			return s.finish(ctx, status, err)
		}
	}

	return s.finish(ctx, status, nil)
}

func (s *indexSyncService) finish(ctx context.Context, status *SyncStatus, err error) (*SyncStatus, error) {
	finished := time.Now()
	status.FinishedAt = &finished
	status.State = SyncCompleted
	if err != nil {
		status.State = SyncFailed
		status.Error = err.Error()
	}
	// the caller's context may already be cancelled; the status must still land
	s.saveStatus(context.WithoutCancel(ctx), status)

	fields := []zap.Field{
		zap.Int("interviewers", status.Interviewers),
		zap.Int("resumes", status.Resumes),
		zap.Int("failed", status.Failed),
		zap.Duration("elapsed", finished.Sub(*status.StartedAt)),
	}
	if err != nil {
		s.log.Error("❌ index sync failed", append(fields, zap.Error(err))...)
		return status, fmt.Errorf("failed to sync index: %w", err)
	}
	s.log.Info("✅ index sync completed", fields...)
	return status, nil
}

func (s *indexSyncService) Status(ctx context.Context) (*SyncStatus, error) {
	var status SyncStatus
	found, err := s.redis.GetJSON(ctx, syncStatusKey, &status)
	if err != nil {
		s.log.Warn("⚠️ failed to read sync status from redis", zap.Error(err))
	} else if found {
		return &status, nil
	}

	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	local := s.localStatus
	return &local, nil
}

func (s *indexSyncService) IndexInterviewer(ctx context.Context, profile *models.InterviewerProfile) error {
	return s.index(ctx, profile.ToCandidate())
}

func (s *indexSyncService) IndexResume(ctx context.Context, resume *models.Resume) error {
	return s.index(ctx, resume.ToCandidate())
}

func (s *indexSyncService) RemoveCandidate(ctx context.Context, kind models.CandidateKind, id uuid.UUID) error {
	index, ok := s.indexes[kind]
	if !ok {
		return fmt.Errorf("no index for %s candidates", kind)
	}
	if err := index.Delete(ctx, id.String()); err != nil {
		return fmt.Errorf("failed to remove %s %s from index: %w", kind, id, err)
	}
	return nil
}

// index embeds and upserts one candidate. A zero vector means the embedding
// provider is down, and storing it would poison every later search.
func (s *indexSyncService) index(ctx context.Context, c models.Candidate) error {
	index, ok := s.indexes[c.Kind]
	if !ok {
		return fmt.Errorf("no index for %s candidates", c.Kind)
	}

	vector := s.embedder.Embed(ctx, c.Content)
	if isZeroVector(vector) {
		s.log.Warn("⚠️ skipping candidate with empty embedding", logger.CandidateFields(c.ID, string(c.Kind), c.Name)...)
		return fmt.Errorf("embedding unavailable for %s %s", c.Kind, c.ID)
	}

	if err := index.Upsert(ctx, c, vector); err != nil {
		s.log.Error("❌ failed to index candidate", append(logger.CandidateFields(c.ID, string(c.Kind), c.Name), zap.Error(err))...)
		return fmt.Errorf("failed to index %s %s: %w", c.Kind, c.ID, err)
	}
	s.log.Debug("indexed candidate", logger.CandidateFields(c.ID, string(c.Kind), c.Name)...)
	return nil
}

func (s *indexSyncService) acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := s.redis.SetIfNotExists(ctx, syncLockKey, token, s.lockTTL)
	switch {
	case err == nil && !ok:
		return nil, ErrSyncInProgress
	case err == nil:
		return func() {
			if err := s.redis.ReleaseIfOwner(context.WithoutCancel(ctx), syncLockKey, token); err != nil {
				s.log.Warn("⚠️ failed to release sync lock", zap.Error(err))
			}
		}, nil
	case errors.Is(err, cache.ErrUnavailable):
		if !s.localLock.TryLock() {
			return nil, ErrSyncInProgress
		}
		return s.localLock.Unlock, nil
	default:
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
}

func (s *indexSyncService) saveStatus(ctx context.Context, status *SyncStatus) {
	s.statusMu.Lock()
	s.localStatus = *status
	s.statusMu.Unlock()

	if err := s.redis.SetJSON(ctx, syncStatusKey, status, 0); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		s.log.Warn("⚠️ failed to store sync status", zap.Error(err))
	}
}
