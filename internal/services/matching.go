package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

// ErrJobDescriptionRequired and ErrQueryRequired reject blank query text.
var (
	ErrJobDescriptionRequired = errors.New("job description is required")
	ErrQueryRequired          = errors.New("query is required")
)

type MatchParams struct {
	Limit                int
	IncludeLowConfidence bool
}

type BatchMatchResult struct {
	ResumeID uuid.UUID
	Result   *models.MatchResult
	Err      error
}

type InterviewerMatchingService interface {
	MatchJobDescription(ctx context.Context, jobDescription string, params MatchParams) (*models.MatchResult, error)
	MatchJobDescriptionAsync(ctx context.Context, jobDescription string, params MatchParams) <-chan MatchResponse
	MatchResume(ctx context.Context, resumeID uuid.UUID, params MatchParams) (*models.MatchResult, error)
	MatchEvaluation(ctx context.Context, evaluationID uuid.UUID, params MatchParams) (*models.MatchResult, error)
	MatchExpertise(ctx context.Context, query string, filters []models.MetadataFilter, params MatchParams) (*models.MatchResult, error)
	// MatchMany matches several resumes at once. A missing resume only fails
	// its own entry; cancellation fails the whole batch.
	MatchMany(ctx context.Context, resumeIDs []uuid.UUID, params MatchParams) ([]BatchMatchResult, error)
	MatchSummary(ctx context.Context, interviewerID, resumeID uuid.UUID) (string, error)
}

type interviewerMatchingService struct {
	orch             MatchOrchestrator
	prompts          *PromptBuilder
	interviewers     repositories.InterviewerRepository
	resumes          repositories.ResumeRepository
	policy           ScorePolicy
	batchConcurrency int
	log              *zap.Logger
}

func NewInterviewerMatchingService(
	orch MatchOrchestrator,
	prompts *PromptBuilder,
	interviewers repositories.InterviewerRepository,
	resumes repositories.ResumeRepository,
	policy ScorePolicy,
	batchConcurrency int,
	log *zap.Logger,
) InterviewerMatchingService {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &interviewerMatchingService{
		orch:             orch,
		prompts:          prompts,
		interviewers:     interviewers,
		resumes:          resumes,
		policy:           policy,
		batchConcurrency: batchConcurrency,
		log:              logger.OrNop(log),
	}
}

// MatchJobDescription ranks by the model's score rather than by similarity.
func (s *interviewerMatchingService) MatchJobDescription(ctx context.Context, jobDescription string, params MatchParams) (*models.MatchResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrJobDescriptionRequired
	}
	return s.orch.Match(ctx, s.jobRequest(jobDescription, params))
}

func (s *interviewerMatchingService) MatchJobDescriptionAsync(ctx context.Context, jobDescription string, params MatchParams) <-chan MatchResponse {
	if strings.TrimSpace(jobDescription) == "" {
		ch := make(chan MatchResponse, 1)
		ch <- MatchResponse{Err: ErrJobDescriptionRequired}
		close(ch)
		return ch
	}
	return s.orch.MatchAsync(ctx, s.jobRequest(jobDescription, params))
}

func (s *interviewerMatchingService) jobRequest(jobDescription string, params MatchParams) MatchRequest {
	return MatchRequest{
		Source:               RawTextQuery{Text: jobDescription},
		Limit:                params.Limit,
		Template:             s.prompts.Template(PromptInterviewerForJob),
		ScorePolicy:          s.policy,
		IncludeLowConfidence: params.IncludeLowConfidence,
		SortByScore:          true,
	}
}

func (s *interviewerMatchingService) MatchResume(ctx context.Context, resumeID uuid.UUID, params MatchParams) (*models.MatchResult, error) {
	return s.orch.Match(ctx, s.candidateRequest(ResumeQuery{ResumeID: resumeID}, params))
}

func (s *interviewerMatchingService) MatchEvaluation(ctx context.Context, evaluationID uuid.UUID, params MatchParams) (*models.MatchResult, error) {
	return s.orch.Match(ctx, s.candidateRequest(EvaluationQuery{EvaluationID: evaluationID}, params))
}

func (s *interviewerMatchingService) MatchExpertise(ctx context.Context, query string, filters []models.MetadataFilter, params MatchParams) (*models.MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	req := s.candidateRequest(RawTextQuery{Text: query}, params)
	req.Filter = FirstFilter(filters)
	if len(filters) > 1 {
		s.log.Debug("only the first metadata filter is applied", zap.Int("filters", len(filters)))
	}
	return s.orch.Match(ctx, req)
}

func (s *interviewerMatchingService) MatchMany(ctx context.Context, resumeIDs []uuid.UUID, params MatchParams) ([]BatchMatchResult, error) {
	out := make([]BatchMatchResult, len(resumeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, id := range resumeIDs {
		g.Go(func() error {
			res, err := s.MatchResume(gctx, id, params)
			out[i] = BatchMatchResult{ResumeID: id, Result: res, Err: err}
			if err != nil && !errors.Is(err, ErrCandidateNotFound) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to match batch: %w", err)
	}

	s.log.Info("✅ batch match completed", zap.Int("resumes", len(resumeIDs)))
	return out, nil
}

// MatchSummary describes a pairing without calling the model.
func (s *interviewerMatchingService) MatchSummary(ctx context.Context, interviewerID, resumeID uuid.UUID) (string, error) {
	interviewer, err := s.interviewers.FindByID(ctx, interviewerID)
	if err != nil {
		return "", notFound(err)
	}
	resume, err := s.resumes.FindByID(ctx, resumeID)
	if err != nil {
		return "", notFound(err)
	}
	return fmt.Sprintf(
		"Interviewer %s with %d years of experience and expertise in %s is a good match for candidate %s. The interviewer's specializations in %s align well with the candidate's background.",
		interviewer.Name,
		interviewer.ExperienceYears,
		strings.Join(interviewer.TechnicalExpertise, ", "),
		resume.Name,
		strings.Join(interviewer.Specializations, ", "),
	), nil
}

func (s *interviewerMatchingService) candidateRequest(src QuerySource, params MatchParams) MatchRequest {
	return MatchRequest{
		Source:               src,
		Limit:                params.Limit,
		Template:             s.prompts.Template(PromptInterviewerForCandidate),
		ScorePolicy:          s.policy,
		IncludeLowConfidence: params.IncludeLowConfidence,
	}
}

type ResumeMatchingService interface {
	// MatchJobDescription finds resumes for a job and marks candidates whose
	// evaluation is locked by a hiring manager.
	MatchJobDescription(ctx context.Context, jobDescription string, params MatchParams) (*models.MatchResult, error)
}

type resumeMatchingService struct {
	orch        MatchOrchestrator
	prompts     *PromptBuilder
	evaluations repositories.EvaluationRepository
	policy      ScorePolicy
	log         *zap.Logger
}

func NewResumeMatchingService(
	orch MatchOrchestrator,
	prompts *PromptBuilder,
	evaluations repositories.EvaluationRepository,
	policy ScorePolicy,
	log *zap.Logger,
) ResumeMatchingService {
	return &resumeMatchingService{
		orch:        orch,
		prompts:     prompts,
		evaluations: evaluations,
		policy:      policy,
		log:         logger.OrNop(log),
	}
}

func (s *resumeMatchingService) MatchJobDescription(ctx context.Context, jobDescription string, params MatchParams) (*models.MatchResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrJobDescriptionRequired
	}
	res, err := s.orch.Match(ctx, MatchRequest{
		Source:               RawTextQuery{Text: jobDescription},
		Limit:                params.Limit,
		Filter:               &models.MetadataFilter{Key: models.MetaType, Value: string(models.KindResume)},
		Template:             s.prompts.Template(PromptResumeForJob),
		ScorePolicy:          s.policy,
		IncludeLowConfidence: params.IncludeLowConfidence,
		SortByScore:          true,
	})
	if err != nil || len(res.Results) == 0 {
		return res, err
	}

	s.annotateLocks(ctx, res)
	return res, nil
}

// annotateLocks is best effort; a lookup failure leaves results unlocked.
func (s *resumeMatchingService) annotateLocks(ctx context.Context, res *models.MatchResult) {
	ids := make([]uuid.UUID, 0, len(res.Results))
	for _, o := range res.Results {
		if id, err := uuid.Parse(o.CandidateID); err == nil {
			ids = append(ids, id)
		}
	}

	locked, err := s.evaluations.FindLockedManagers(ctx, ids)
	if err != nil {
		s.log.Warn("⚠️ could not load evaluation locks", zap.Error(err))
		return
	}
	for i := range res.Results {
		id, err := uuid.Parse(res.Results[i].CandidateID)
		if err != nil {
			continue
		}
		if manager, ok := locked[id]; ok {
			res.Results[i].Locked = true
			res.Results[i].ManagerID = manager
		}
	}
}
