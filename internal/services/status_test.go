package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/cv-matcher/internal/models"
)

func TestClassifyExactPhrasesWinOverScore(t *testing.T) {
	c := NewMatchStatusClassifier()

	assert.Equal(t, models.StatusConsider, c.Classify("NOT A MATCH: Consider other options", 99))
	assert.Equal(t, models.StatusStrongMatch, c.Classify("MATCH: Highly recommended for interview", 10))
	assert.Equal(t, models.StatusMatch, c.Classify("MATCH: Recommended for interview", 10))
}

func TestClassifyKeywordsAndThresholds(t *testing.T) {
	c := NewMatchStatusClassifier()

	cases := []struct {
		name  string
		text  string
		score int
		want  models.MatchStatus
	}{
		{"strong keyword high score", "An excellent match for the platform team.", 90, models.StatusStrongMatch},
		{"strong keyword below strong threshold", "An excellent match overall.", 80, models.StatusMatch},
		{"strong keyword at boundary", "Perfect fit.", 85, models.StatusStrongMatch},
		{"neutral text at match threshold", "Solid distributed systems work.", 70, models.StatusMatch},
		{"neutral text below threshold", "Solid distributed systems work.", 69, models.StatusConsider},
		{"negative without moderate", "There is a significant mismatch in seniority.", 95, models.StatusConsider},
		{"negative with moderate", "Some misalignment, but a promising profile.", 75, models.StatusMatch},
		{"fallback text", "Manual review recommended due to AI service unavailability. Final Match Score: 50%", 50, models.StatusConsider},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.text, tc.score))
		})
	}
}
