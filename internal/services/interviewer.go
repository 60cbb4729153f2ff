package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

type Availability struct {
	InterviewerID uuid.UUID `json:"interviewer_id"`
	Date          string    `json:"date"`
	Slots         int       `json:"slots"`
}

// InterviewerHit is one interviewer found by similarity search.
type InterviewerHit struct {
	Interviewer models.InterviewerProfile `json:"interviewer"`
	Similarity  float64                   `json:"similarity"`
}

type InterviewerService interface {
	// Create stores the profile and indexes it. An indexing failure is
	// logged; the next sync picks the profile up.
	Create(ctx context.Context, req models.CreateInterviewerRequest) (*models.InterviewerProfile, bool, error)
	// Update replaces the profile and re-indexes it the same way Create does.
	Update(ctx context.Context, id uuid.UUID, req models.UpdateInterviewerRequest) (*models.InterviewerProfile, bool, error)
	SetAvailability(ctx context.Context, id uuid.UUID, availability map[string]int) (*models.InterviewerProfile, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InterviewerProfile, error)
	List(ctx context.Context, q repositories.InterviewerQuery) ([]models.InterviewerProfile, error)
	// Search ranks interviewers by embedding similarity alone, without asking
	// the model for explanations.
	Search(ctx context.Context, query string, limit int, filter *models.MetadataFilter) ([]InterviewerHit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Availability(ctx context.Context, id uuid.UUID, date string) (*Availability, error)
	Reserve(ctx context.Context, id uuid.UUID, date string) (*Availability, error)
}

type interviewerService struct {
	repo     repositories.InterviewerRepository
	sync     IndexSyncService
	embedder EmbeddingGateway
	search   SimilaritySearchGateway
	log      *zap.Logger
}

func NewInterviewerService(repo repositories.InterviewerRepository, sync IndexSyncService, embedder EmbeddingGateway, search SimilaritySearchGateway, log *zap.Logger) InterviewerService {
	return &interviewerService{
		repo:     repo,
		sync:     sync,
		embedder: embedder,
		search:   search,
		log:      logger.OrNop(log),
	}
}

func (s *interviewerService) Create(ctx context.Context, req models.CreateInterviewerRequest) (*models.InterviewerProfile, bool, error) {
	tier := req.Tier
	if tier == 0 {
		tier = 1
	}
	availability := req.Availability
	if availability == nil {
		availability = map[string]int{}
	}

	profile := &models.InterviewerProfile{
		Name:               req.Name,
		Email:              req.Email,
		ExperienceYears:    req.ExperienceYears,
		Tier:               tier,
		TechnicalExpertise: datatypes.JSONSlice[string](req.TechnicalExpertise),
		Specializations:    datatypes.JSONSlice[string](req.Specializations),
		Availability:       datatypes.NewJSONType(availability),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, false, err
	}

	indexed := s.index(ctx, profile)
	s.log.Info("✅ Interviewer created", zap.String("id", profile.ID.String()), zap.Bool("indexed", indexed))
	return profile, indexed, nil
}

func (s *interviewerService) Update(ctx context.Context, id uuid.UUID, req models.UpdateInterviewerRequest) (*models.InterviewerProfile, bool, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	profile.Name = req.Name
	profile.Email = req.Email
	profile.ExperienceYears = req.ExperienceYears
	profile.Tier = max(req.Tier, 1)
	profile.TechnicalExpertise = datatypes.JSONSlice[string](req.TechnicalExpertise)
	profile.Specializations = datatypes.JSONSlice[string](req.Specializations)
	if req.Availability != nil {
		profile.Availability = datatypes.NewJSONType(req.Availability)
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, false, notFound(err)
	}

	indexed := s.index(ctx, profile)
	s.log.Info("✅ Interviewer updated", zap.String("id", id.String()), zap.Bool("indexed", indexed))
	return profile, indexed, nil
}

// SetAvailability replaces the slot map. Availability is not part of the
// embedded profile, so the index is left alone.
func (s *interviewerService) SetAvailability(ctx context.Context, id uuid.UUID, availability map[string]int) (*models.InterviewerProfile, error) {
	if err := s.repo.SetAvailability(ctx, id, availability); err != nil {
		return nil, notFound(err)
	}
	return s.Get(ctx, id)
}

func (s *interviewerService) List(ctx context.Context, q repositories.InterviewerQuery) ([]models.InterviewerProfile, error) {
	return s.repo.List(ctx, q)
}

func (s *interviewerService) Search(ctx context.Context, query string, limit int, filter *models.MetadataFilter) ([]InterviewerHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	if limit <= 0 {
		limit = 10
	}

	vector := s.embedder.Embed(ctx, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := s.search.FindSimilar(ctx, vector, limit, filter)

	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		if id, err := uuid.Parse(h.Candidate.ID); err == nil {
			ids = append(ids, id)
		}
	}
	profiles, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.InterviewerProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID.String()] = p
	}

	// hits whose profile was deleted since the last sync are dropped
	out := make([]InterviewerHit, 0, len(hits))
	for _, h := range hits {
		if p, ok := byID[h.Candidate.ID]; ok {
			out = append(out, InterviewerHit{Interviewer: p, Similarity: h.Similarity})
		}
	}
	return out, nil
}

func (s *interviewerService) index(ctx context.Context, profile *models.InterviewerProfile) bool {
	if err := s.sync.IndexInterviewer(ctx, profile); err != nil {
		s.log.Warn("⚠️ interviewer saved but not indexed", append(logger.CandidateFields(profile.ID.String(), string(models.KindInterviewer), profile.Name), zap.Error(err))...)
		return false
	}
	return true
}

func (s *interviewerService) Get(ctx context.Context, id uuid.UUID) (*models.InterviewerProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return profile, nil
}

func (s *interviewerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	if err := s.sync.RemoveCandidate(ctx, models.KindInterviewer, id); err != nil {
		s.log.Warn("⚠️ interviewer deleted but index entry remains", zap.String("id", id.String()), zap.Error(err))
	}
	return nil
}

func (s *interviewerService) Availability(ctx context.Context, id uuid.UUID, date string) (*Availability, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Availability{InterviewerID: id, Date: date, Slots: profile.SlotsOn(date)}, nil
}

func (s *interviewerService) Reserve(ctx context.Context, id uuid.UUID, date string) (*Availability, error) {
	remaining, err := s.repo.ReserveSlot(ctx, id, date)
	if err != nil {
		if errors.Is(err, repositories.ErrNoSlots) {
			return nil, fmt.Errorf("interviewer %s on %s: %w", id, date, err)
		}
		return nil, notFound(err)
	}
	s.log.Info("📅 Interview slot reserved", zap.String("id", id.String()), zap.String("date", date), zap.Int("remaining", remaining))
	return &Availability{InterviewerID: id, Date: date, Slots: remaining}, nil
}
