package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

// ErrCandidateNotFound is returned when a query refers to a missing resume or evaluation.
var ErrCandidateNotFound = errors.New("candidate not found")

// QuerySource says where the text of a match query comes from.
type QuerySource interface {
	querySource()
}

type RawTextQuery struct {
	Text string
}

type ResumeQuery struct {
	ResumeID uuid.UUID
}

type EvaluationQuery struct {
	EvaluationID uuid.UUID
}

func (RawTextQuery) querySource()    {}
func (ResumeQuery) querySource()     {}
func (EvaluationQuery) querySource() {}

// ResolvedQuery is the text to embed plus the prompt variables that describe it.
type ResolvedQuery struct {
	Text string
	Vars map[string]string
}

type QueryResolver interface {
	Resolve(ctx context.Context, src QuerySource) (ResolvedQuery, error)
}

type queryResolver struct {
	resumes     repositories.ResumeRepository
	evaluations repositories.EvaluationRepository
}

func NewQueryResolver(resumes repositories.ResumeRepository, evaluations repositories.EvaluationRepository) QueryResolver {
	return &queryResolver{resumes: resumes, evaluations: evaluations}
}

func (r *queryResolver) Resolve(ctx context.Context, src QuerySource) (ResolvedQuery, error) {
	switch q := src.(type) {
	case RawTextQuery:
		return ResolvedQuery{
			Text: q.Text,
			Vars: map[string]string{
				VarJobDescription:   q.Text,
				VarCandidateSummary: q.Text,
			},
		}, nil

	case ResumeQuery:
		resume, err := r.resumes.FindByID(ctx, q.ResumeID)
		if err != nil {
			return ResolvedQuery{}, notFound(err)
		}
		return ResolvedQuery{
			Text: BuildResumeQuery(resume),
			Vars: map[string]string{
				VarCandidateName:    resume.Name,
				VarCandidateSummary: resume.FullText,
				VarResumeText:       resume.FullText,
			},
		}, nil

	case EvaluationQuery:
		eval, err := r.evaluations.FindByID(ctx, q.EvaluationID)
		if err != nil {
			return ResolvedQuery{}, notFound(err)
		}
		return ResolvedQuery{
			Text: BuildEvaluationQuery(eval),
			Vars: map[string]string{
				VarCandidateSummary:   eval.ExecutiveSummary,
				VarCandidateStrengths: strings.Join(eval.KeyStrengths, ", "),
			},
		}, nil

	default:
		return ResolvedQuery{}, fmt.Errorf("unsupported query source %T", src)
	}
}

func BuildResumeQuery(resume *models.Resume) string {
	return "Resume content: " + resume.FullText
}

func BuildEvaluationQuery(eval *models.CandidateEvaluation) string {
	var sb strings.Builder
	sb.WriteString("Candidate evaluation summary: ")
	sb.WriteString(eval.ExecutiveSummary)
	sb.WriteString(". ")
	if len(eval.KeyStrengths) > 0 {
		sb.WriteString("Key strengths: ")
		sb.WriteString(strings.Join(eval.KeyStrengths, ", "))
		sb.WriteString(". ")
	}
	if len(eval.TechnicalSkills) > 0 {
		sb.WriteString("Technical skills: ")
		sb.WriteString(strings.Join(eval.TechnicalSkills, ", "))
		sb.WriteString(". ")
	}
	return sb.String()
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrCandidateNotFound, err)
	}
	return err
}
