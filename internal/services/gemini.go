package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/cv-matcher/internal/logger"
)

// EmbeddingProvider turns text into a vector.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// LLMClient completes a prompt.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

type GeminiService interface {
	EmbeddingProvider
	LLMClient
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	EmbedModel string
	Dimension  int
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	dimension  int32
	log        *zap.Logger
}

const maxEmbeddingInput = 40000

func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (GeminiService, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  opts.Model,
		embedModel: opts.EmbedModel,
		dimension:  int32(opts.Dimension),
		log:        logger.OrNop(log).With(logger.AIFields("gemini", opts.Model)...),
	}, nil
}

// GenerateEmbedding implements EmbeddingProvider.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// the embedding model caps input at roughly 10k tokens
	text = truncateUTF8(text, maxEmbeddingInput)

	var cfg *genai.EmbedContentConfig
	if g.dimension > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &g.dimension}
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements LLMClient.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		g.log.Debug("gemini returned no text", zap.Int("candidates", len(resp.Candidates)))
		return "", errors.New("no text content in response")
	}

	return text, nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
