package services

import (
	"strings"

	"alfredoptarigan/cv-matcher/internal/models"
)

const (
	strongMatchThreshold = 85
	matchThreshold       = 70
)

// Exact verdict lines the prompts ask the model to end with.
var statusPhrases = []struct {
	phrase string
	status models.MatchStatus
}{
	{"NOT A MATCH: Consider other options", models.StatusConsider},
	{"MATCH: Highly recommended for interview", models.StatusStrongMatch},
	{"MATCH: Recommended for interview", models.StatusMatch},
}

var (
	strongKeywords = []string{
		"excellent match", "perfect fit", "highly qualified", "ideal candidate",
		"strong alignment", "exceptional", "outstanding", "highly recommended",
	}
	moderateKeywords = []string{
		"good match", "suitable", "qualified", "promising",
		"potential", "adequate", "satisfactory", "recommended",
	}
	negativeKeywords = []string{
		"mismatch", "misalignment", "not align", "inappropriate",
		"consider other options", "significant mismatch", "not recommended",
		"mismatched", "not suitable", "not appropriate", "poor match", "not a match",
	}
)

// MatchStatusClassifier maps an explanation and its score to a tier.
type MatchStatusClassifier struct{}

func NewMatchStatusClassifier() *MatchStatusClassifier {
	return &MatchStatusClassifier{}
}

func (MatchStatusClassifier) Classify(text string, score int) models.MatchStatus {
	for _, p := range statusPhrases {
		if strings.Contains(text, p.phrase) {
			return p.status
		}
	}

	lower := strings.ToLower(text)
	strong := containsAny(lower, strongKeywords)
	moderate := containsAny(lower, moderateKeywords)
	negative := containsAny(lower, negativeKeywords)

	switch {
	case strong && score >= strongMatchThreshold:
		return models.StatusStrongMatch
	case (moderate || !negative) && score >= matchThreshold:
		return models.StatusMatch
	default:
		return models.StatusConsider
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
