package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

var ErrPromptRequired = errors.New("prompt is required")

// GeneratorService drafts hiring material with the LLM. Unlike explanations
// there is no deterministic fallback: a failed generation is an error.
type GeneratorService interface {
	GenerateJobDescription(ctx context.Context, request string) (*models.JobDescription, error)
	GenerateInterviewQuestions(ctx context.Context, jobDescription string) (string, error)
}

type generatorService struct {
	llm         LLMClient
	prompts     *PromptBuilder
	retry       RetryPolicy
	temperature float32
	log         *zap.Logger
}

func NewGeneratorService(llm LLMClient, prompts *PromptBuilder, retry RetryPolicy, temperature float32, log *zap.Logger) GeneratorService {
	return &generatorService{
		llm:         llm,
		prompts:     prompts,
		retry:       retry,
		temperature: temperature,
		log:         logger.OrNop(log),
	}
}

func (g *generatorService) GenerateJobDescription(ctx context.Context, request string) (*models.JobDescription, error) {
	if strings.TrimSpace(request) == "" {
		return nil, ErrPromptRequired
	}

	prompt := RenderTemplate(g.prompts.Template(PromptJobDescription), map[string]string{VarJobRequest: request})
	text, err := g.generate(ctx, "generate job description", prompt)
	if err != nil {
		return nil, err
	}

	var jd models.JobDescription
	if err := json.Unmarshal([]byte(extractJSON(text)), &jd); err != nil {
		g.log.Warn("⚠️ job description reply is not valid JSON", zap.String("response_preview", logger.TruncateForLog(text, 200)))
		return nil, fmt.Errorf("failed to parse generated job description: %w", err)
	}
	if strings.TrimSpace(jd.Title) == "" {
		return nil, errors.New("generated job description has no title")
	}

	g.log.Info("📝 Job description generated", zap.String("title", jd.Title))
	return &jd, nil
}

func (g *generatorService) GenerateInterviewQuestions(ctx context.Context, jobDescription string) (string, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return "", ErrJobDescriptionRequired
	}

	prompt := RenderTemplate(g.prompts.Template(PromptInterviewQuestions), map[string]string{VarJobDescription: jobDescription})
	text, err := g.generate(ctx, "generate interview questions", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *generatorService) generate(ctx context.Context, op, prompt string) (string, error) {
	text, err := retryWithBackoff(ctx, g.retry, g.log, op, func(ctx context.Context) (string, error) {
		return g.llm.GenerateText(ctx, prompt, g.temperature)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to %s: %w", op, err)
	}
	return text, nil
}

// extractJSON cuts the outermost JSON object out of a reply that may be
// wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}
