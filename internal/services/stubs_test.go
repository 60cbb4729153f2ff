package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

type stubResumeRepo struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]*models.Resume
	created []*models.Resume
}

func (s *stubResumeRepo) Create(_ context.Context, r *models.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if s.resumes == nil {
		s.resumes = map[uuid.UUID]*models.Resume{}
	}
	s.resumes[r.ID] = r
	s.created = append(s.created, r)
	return nil
}

func (s *stubResumeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %s not found: %w", id, repositories.ErrNotFound)
	}
	return r, nil
}

func (s *stubResumeRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Resume
	for _, id := range ids {
		if r, ok := s.resumes[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubResumeRepo) FindAll(_ context.Context, _ int, fn func([]models.Resume) error) error {
	s.mu.Lock()
	all := make([]models.Resume, 0, len(s.resumes))
	for _, r := range s.resumes {
		all = append(all, *r)
	}
	s.mu.Unlock()
	if len(all) == 0 {
		return nil
	}
	return fn(all)
}

type stubEvaluationRepo struct {
	evals  map[uuid.UUID]*models.CandidateEvaluation
	locked map[uuid.UUID]string
}

func (s *stubEvaluationRepo) FindByID(_ context.Context, id uuid.UUID) (*models.CandidateEvaluation, error) {
	e, ok := s.evals[id]
	if !ok {
		return nil, fmt.Errorf("evaluation %s not found: %w", id, repositories.ErrNotFound)
	}
	return e, nil
}

func (s *stubEvaluationRepo) FindLockedManagers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if m, ok := s.locked[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

type stubInterviewerRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.InterviewerProfile
	deleted  []uuid.UUID
}

func (s *stubInterviewerRepo) Create(_ context.Context, p *models.InterviewerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if s.profiles == nil {
		s.profiles = map[uuid.UUID]*models.InterviewerProfile{}
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *stubInterviewerRepo) Update(_ context.Context, p *models.InterviewerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return fmt.Errorf("interviewer %s not found: %w", p.ID, repositories.ErrNotFound)
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *stubInterviewerRepo) SetAvailability(_ context.Context, id uuid.UUID, availability map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("interviewer %s not found: %w", id, repositories.ErrNotFound)
	}
	p.Availability = datatypes.NewJSONType(availability)
	return nil
}

func (s *stubInterviewerRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.InterviewerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InterviewerProfile
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// List applies the tier and experience filters; JSON containment is left to
// the database.
func (s *stubInterviewerRepo) List(_ context.Context, q repositories.InterviewerQuery) ([]models.InterviewerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InterviewerProfile
	for _, p := range s.profiles {
		if q.Tier > 0 && p.Tier != q.Tier {
			continue
		}
		if p.ExperienceYears < q.MinExperience {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubInterviewerRepo) FindByID(_ context.Context, id uuid.UUID) (*models.InterviewerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("interviewer %s not found: %w", id, repositories.ErrNotFound)
	}
	return p, nil
}

func (s *stubInterviewerRepo) FindAll(_ context.Context, _ int, fn func([]models.InterviewerProfile) error) error {
	s.mu.Lock()
	all := make([]models.InterviewerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		all = append(all, *p)
	}
	s.mu.Unlock()
	if len(all) == 0 {
		return nil
	}
	return fn(all)
}

func (s *stubInterviewerRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return fmt.Errorf("interviewer %s not found: %w", id, repositories.ErrNotFound)
	}
	delete(s.profiles, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubInterviewerRepo) ReserveSlot(_ context.Context, id uuid.UUID, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return 0, fmt.Errorf("interviewer %s not found: %w", id, repositories.ErrNotFound)
	}
	slots := p.SlotsOn(date)
	if slots <= 0 {
		return 0, repositories.ErrNoSlots
	}
	return slots - 1, nil
}
