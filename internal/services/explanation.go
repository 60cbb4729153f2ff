package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

const exclusionMarker = "Candidate does not meet the minimum filter criteria"

// ErrCandidateExcluded means the model ruled the candidate out entirely.
var ErrCandidateExcluded = errors.New("candidate does not meet the minimum filter criteria")

type ExplanationRequest struct {
	Template  string
	Vars      map[string]string
	Candidate models.Candidate
}

type ExplanationGenerator interface {
	// Explain returns the model's explanation, a deterministic fallback when
	// the model stays unavailable, ErrCandidateExcluded, or ctx.Err().
	Explain(ctx context.Context, req ExplanationRequest) (string, error)
}

type ExplanationOptions struct {
	Temperature   float32
	FallbackScore int
	MaxLogLength  int
}

type explanationGenerator struct {
	llm   LLMClient
	retry RetryPolicy
	opts  ExplanationOptions
	log   *zap.Logger
}

func NewExplanationGenerator(llm LLMClient, retry RetryPolicy, opts ExplanationOptions, log *zap.Logger) ExplanationGenerator {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = 200
	}
	return &explanationGenerator{
		llm:   llm,
		retry: retry,
		opts:  opts,
		log:   logger.OrNop(log),
	}
}

func (g *explanationGenerator) Explain(ctx context.Context, req ExplanationRequest) (string, error) {
	prompt := RenderTemplate(req.Template, req.Vars)
	c := req.Candidate
	fields := logger.CandidateFields(c.ID, string(c.Kind), c.Name)

	g.log.Debug("requesting explanation", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.opts.MaxLogLength)),
	)...)

	text, err := retryWithBackoff(ctx, g.retry, g.log, "explain", func(ctx context.Context) (string, error) {
		return g.llm.GenerateText(ctx, prompt, g.opts.Temperature)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.log.Warn("⚠️ AI explanation unavailable, using fallback", append(fields, zap.Error(err))...)
		return FallbackExplanation(c, g.opts.FallbackScore), nil
	}

	if strings.Contains(text, exclusionMarker) {
		g.log.Info("candidate excluded by model", fields...)
		return text, ErrCandidateExcluded
	}

	g.log.Debug("explanation received", append(fields,
		zap.String("response_preview", logger.TruncateForLog(text, g.opts.MaxLogLength)),
	)...)
	return text, nil
}

// FallbackExplanation is the text used when the model cannot be reached. Its
// score marker keeps the outcome out of the recommended tiers.
func FallbackExplanation(c models.Candidate, score int) string {
	return fmt.Sprintf(
		"%s %s has %d years of experience with expertise in %s. Manual review recommended due to AI service unavailability. Final Match Score: %d%%",
		c.Kind.Label(), c.Name, c.ExperienceYears, strings.Join(c.Skills, ", "), clampScore(score),
	)
}
