package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/models"
)

const generatedPosting = "Here is the posting:\n```json\n" + `{
  "title": "Senior Go Engineer",
  "company": "Acme",
  "location": "Remote",
  "summary": "Own the matching backend.",
  "responsibilities": ["Design services", "Review code"],
  "required_qualifications": ["5+ years of Go"],
  "technical_skills": ["Go", "PostgreSQL"]
}` + "\n```"

func newGenerator(llm *stubLLM) GeneratorService {
	return NewGeneratorService(llm, NewPromptBuilder(), fastRetry(2), 0.4, zap.NewNop())
}

func TestGenerateJobDescriptionParsesFencedJSON(t *testing.T) {
	llm := &stubLLM{response: generatedPosting}

	jd, err := newGenerator(llm).GenerateJobDescription(context.Background(), "backend engineer for matching")

	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", jd.Title)
	assert.Equal(t, []string{"Design services", "Review code"}, jd.Responsibilities)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, jd.TechnicalSkills)
	assert.Contains(t, llm.lastPrompt, "backend engineer for matching")
	assert.NotContains(t, llm.lastPrompt, "{{")
}

func TestGenerateJobDescriptionRejectsProse(t *testing.T) {
	_, err := newGenerator(&stubLLM{response: "I cannot help with that."}).GenerateJobDescription(context.Background(), "anything")
	assert.Error(t, err)

	_, err = newGenerator(&stubLLM{response: `{"company":"Acme"}`}).GenerateJobDescription(context.Background(), "anything")
	assert.EqualError(t, err, "generated job description has no title")
}

func TestGenerateJobDescriptionBlankPrompt(t *testing.T) {
	llm := &stubLLM{response: generatedPosting}

	_, err := newGenerator(llm).GenerateJobDescription(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrPromptRequired)
	assert.Equal(t, 0, llm.Calls())
}

func TestGenerateInterviewQuestions(t *testing.T) {
	llm := &stubLLM{failN: 1, response: "  Technical\n1. How do goroutines leak?\n"}

	out, err := newGenerator(llm).GenerateInterviewQuestions(context.Background(), "Senior Go Engineer")

	require.NoError(t, err)
	assert.Equal(t, "Technical\n1. How do goroutines leak?", out)
	assert.Equal(t, 2, llm.Calls())
	assert.Contains(t, llm.lastPrompt, "Senior Go Engineer")
}

func TestGenerateInterviewQuestionsSurfacesFailure(t *testing.T) {
	_, err := newGenerator(&stubLLM{err: errors.New("quota exceeded")}).GenerateInterviewQuestions(context.Background(), "Go engineer")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = newGenerator(&stubLLM{}).GenerateInterviewQuestions(context.Background(), "\t")
	assert.ErrorIs(t, err, ErrJobDescriptionRequired)
}

func TestJobDescriptionText(t *testing.T) {
	jd := models.JobDescription{
		Title:                  "Senior Go Engineer",
		Company:                "Acme",
		Responsibilities:       []string{"Design services"},
		RequiredQualifications: []string{"5+ years of Go"},
		TechnicalSkills:        []string{"Go", "PostgreSQL"},
	}

	assert.Equal(t,
		"Title: Senior Go Engineer\n\nCompany: Acme\n\nResponsibilities:\n- Design services\n\nRequired Qualifications:\n- 5+ years of Go\n\nTechnical Skills: Go, PostgreSQL",
		jd.Text())
}

func TestGeneratorTemplatesRender(t *testing.T) {
	pb := NewPromptBuilder()
	for _, name := range []string{PromptJobDescription, PromptInterviewQuestions} {
		tmpl := pb.Template(name)
		require.NotEmpty(t, tmpl, name)
		assert.NotContains(t, RenderTemplate(tmpl, nil), "{{", name)
	}
}
