package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
)

// EmbeddingGateway always yields a vector of Dimension() entries. When the
// provider keeps failing it degrades to the zero vector instead of erroring.
type EmbeddingGateway interface {
	Embed(ctx context.Context, text string) []float32
	Dimension() int
}

type embeddingGateway struct {
	provider  EmbeddingProvider
	dimension int
	retry     RetryPolicy
	log       *zap.Logger
}

func NewEmbeddingGateway(provider EmbeddingProvider, dimension int, retry RetryPolicy, log *zap.Logger) EmbeddingGateway {
	return &embeddingGateway{
		provider:  provider,
		dimension: dimension,
		retry:     retry,
		log:       logger.OrNop(log),
	}
}

func (e *embeddingGateway) Dimension() int {
	return e.dimension
}

func (e *embeddingGateway) Embed(ctx context.Context, text string) []float32 {
	vec, err := retryWithBackoff(ctx, e.retry, e.log, "embed", func(ctx context.Context) ([]float32, error) {
		return e.provider.GenerateEmbedding(ctx, text)
	})
	if err != nil {
		e.log.Error("❌ embedding failed, using zero vector",
			zap.Int("text_length", len(text)),
			zap.Int("dimension", e.dimension),
			zap.Error(err),
		)
		return make([]float32, e.dimension)
	}

	if len(vec) != e.dimension {
		e.log.Warn("embedding dimension mismatch, resizing",
			zap.Int("got", len(vec)),
			zap.Int("want", e.dimension),
		)
		resized := make([]float32, e.dimension)
		copy(resized, vec)
		return resized
	}
	return vec
}

// ToIndexString renders vec in the bracketed form vector stores accept,
// e.g. "[0.1,-2,3.5e-07]". Each value uses the shortest text that parses back
// to the same float32.
func ToIndexString(vec []float32) string {
	var sb strings.Builder
	sb.Grow(len(vec)*10 + 2)
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
