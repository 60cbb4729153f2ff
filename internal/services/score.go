package services

import (
	"regexp"
	"strconv"
	"strings"
)

// ScorePolicy carries the score a call site falls back to when an
// explanation contains no recognisable score.
type ScorePolicy struct {
	Default int
}

type scoreRule struct {
	name  string
	match func(text string) (int, bool)
}

// ScoreExtractor pulls a 0-100 match score out of free-form LLM text.
// Rules are tried in order and the first hit wins.
type ScoreExtractor struct {
	rules []scoreRule
}

var (
	finalScorePattern  = regexp.MustCompile(`Final Match Score:\s*(\d{1,3})%`)
	inlineScorePattern = regexp.MustCompile(`\b(\d{1,3})\s*[/%]`)
)

var scorePhrases = []struct {
	phrase string
	score  int
}{
	{"highly recommended", 90},
	{"match: recommended", 75},
	{"not a match", 40},
}

func NewScoreExtractor() *ScoreExtractor {
	return &ScoreExtractor{rules: []scoreRule{
		{name: "final_marker", match: regexpScore(finalScorePattern)},
		{name: "inline_number", match: regexpScore(inlineScorePattern)},
		{name: "phrase", match: phraseScore},
	}}
}

// Extract returns the score and whether any rule matched.
func (e *ScoreExtractor) Extract(text string) (int, bool) {
	for _, rule := range e.rules {
		if score, ok := rule.match(text); ok {
			return clampScore(score), true
		}
	}
	return 0, false
}

func (e *ScoreExtractor) ScoreOrDefault(text string, policy ScorePolicy) int {
	if score, ok := e.Extract(text); ok {
		return score
	}
	return clampScore(policy.Default)
}

func regexpScore(re *regexp.Regexp) func(string) (int, bool) {
	return func(text string) (int, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
}

func phraseScore(text string) (int, bool) {
	lower := strings.ToLower(text)
	for _, p := range scorePhrases {
		if strings.Contains(lower, p.phrase) {
			return p.score, true
		}
	}
	return 0, false
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
