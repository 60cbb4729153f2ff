package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/models"
)

type stubLLM struct {
	mu          sync.Mutex
	response    string
	err         error
	failN       int
	calls       int
	lastPrompt  string
	delay       time.Duration
	delayFunc   func(prompt string) time.Duration
	respondFunc func(prompt string) (string, error)
}

func (s *stubLLM) GenerateText(ctx context.Context, prompt string, _ float32) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.lastPrompt = prompt
	s.mu.Unlock()

	delay := s.delay
	if s.delayFunc != nil {
		delay = s.delayFunc(prompt)
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if s.respondFunc != nil {
		return s.respondFunc(prompt)
	}
	if call <= s.failN || s.err != nil {
		if s.err != nil {
			return "", s.err
		}
		return "", errors.New("503")
	}
	return s.response, nil
}

func (s *stubLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var adaCandidate = models.Candidate{
	ID:              "i-1",
	Kind:            models.KindInterviewer,
	Name:            "Ada",
	ExperienceYears: 12,
	Skills:          []string{"Go", "Kafka"},
}

func newTestExplainer(llm LLMClient) ExplanationGenerator {
	return NewExplanationGenerator(llm, fastRetry(3), ExplanationOptions{FallbackScore: 50}, zap.NewNop())
}

func TestExplainRendersTemplate(t *testing.T) {
	llm := &stubLLM{response: "Great overlap. Final Match Score: 91%"}
	gen := newTestExplainer(llm)

	text, err := gen.Explain(context.Background(), ExplanationRequest{
		Template:  "Interviewer {{interviewer_name}} vs {{candidate_summary}} ({{unknown}})",
		Vars:      map[string]string{VarInterviewerName: "Ada", VarCandidateSummary: "Go dev"},
		Candidate: adaCandidate,
	})

	require.NoError(t, err)
	assert.Equal(t, "Great overlap. Final Match Score: 91%", text)
	assert.Equal(t, "Interviewer Ada vs Go dev ()", llm.lastPrompt)
}

func TestExplainFallsBackWhenRetriesExhausted(t *testing.T) {
	llm := &stubLLM{err: errors.New("503 overloaded")}
	gen := newTestExplainer(llm)

	text, err := gen.Explain(context.Background(), ExplanationRequest{Template: "x", Candidate: adaCandidate})

	require.NoError(t, err)
	assert.Equal(t, 3, llm.Calls())
	assert.Equal(t,
		"Interviewer Ada has 12 years of experience with expertise in Go, Kafka. Manual review recommended due to AI service unavailability. Final Match Score: 50%",
		text,
	)

	score, ok := NewScoreExtractor().Extract(text)
	require.True(t, ok)
	assert.Equal(t, 50, score)
	assert.Equal(t, models.StatusConsider, NewMatchStatusClassifier().Classify(text, score))
}

func TestExplainRecoversAfterTransientFailure(t *testing.T) {
	llm := &stubLLM{failN: 1, response: "Final Match Score: 77%"}
	gen := newTestExplainer(llm)

	text, err := gen.Explain(context.Background(), ExplanationRequest{Template: "x", Candidate: adaCandidate})

	require.NoError(t, err)
	assert.Equal(t, "Final Match Score: 77%", text)
	assert.Equal(t, 2, llm.Calls())
}

func TestExplainReportsExclusion(t *testing.T) {
	llm := &stubLLM{response: "Candidate does not meet the minimum filter criteria"}
	gen := newTestExplainer(llm)

	_, err := gen.Explain(context.Background(), ExplanationRequest{Template: "x", Candidate: adaCandidate})

	assert.ErrorIs(t, err, ErrCandidateExcluded)
}

func TestExplainReturnsContextErrorOnDeadline(t *testing.T) {
	llm := &stubLLM{delay: time.Second}
	gen := newTestExplainer(llm)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gen.Explain(ctx, ExplanationRequest{Template: "x", Candidate: adaCandidate})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFallbackExplanationForResume(t *testing.T) {
	text := FallbackExplanation(models.Candidate{Kind: models.KindResume, Name: "Bob", ExperienceYears: 3}, 50)
	assert.Contains(t, text, "Candidate Bob has 3 years")
}
