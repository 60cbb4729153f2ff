package services

import (
	"embed"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"alfredoptarigan/cv-matcher/internal/models"
)

//go:embed prompts/*.prompt
var promptFS embed.FS

const (
	PromptInterviewerForCandidate = "interviewer_candidate"
	PromptInterviewerForJob       = "interviewer_job"
	PromptResumeForJob            = "resume_job"
	PromptJobDescription          = "job_description_generate"
	PromptInterviewQuestions      = "interview_questions"
)

// Placeholder names shared by the templates and the variable builders.
const (
	VarInterviewerName            = "interviewer_name"
	VarInterviewerExperience      = "interviewer_experience"
	VarInterviewerExpertise       = "interviewer_expertise"
	VarInterviewerSpecializations = "interviewer_specializations"
	VarCandidateName              = "candidate_name"
	VarCandidateExperience        = "candidate_experience"
	VarCandidateSkills            = "candidate_skills"
	VarCandidateSummary           = "candidate_summary"
	VarCandidateStrengths         = "candidate_strengths"
	VarResumeText                 = "resume_text"
	VarJobDescription             = "job_description"
	VarMatchPercentage            = "match_percentage"
	VarJobRequest                 = "job_request"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type PromptBuilder struct {
	templates map[string]string
}

func NewPromptBuilder() *PromptBuilder {
	pb := &PromptBuilder{templates: make(map[string]string)}
	for _, name := range []string{
		PromptInterviewerForCandidate, PromptInterviewerForJob, PromptResumeForJob,
		PromptJobDescription, PromptInterviewQuestions,
	} {
		raw, err := promptFS.ReadFile("prompts/" + name + ".prompt")
		if err != nil {
			panic(fmt.Sprintf("missing embedded prompt %q: %v", name, err))
		}
		pb.templates[name] = string(raw)
	}
	return pb
}

// Template returns the raw template text, or "" when name is unknown.
func (pb *PromptBuilder) Template(name string) string {
	return pb.templates[name]
}

// RenderTemplate substitutes every {{name}} token. Tokens with no value
// render as the empty string so no placeholder reaches the model.
func RenderTemplate(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		m := placeholderPattern.FindStringSubmatch(token)
		return vars[m[1]]
	})
}

// CandidateVars describes the matched candidate to the templates.
func CandidateVars(hit models.SimilarityResult) map[string]string {
	c := hit.Candidate
	vars := map[string]string{
		VarMatchPercentage: strconv.Itoa(int(math.Round(hit.Similarity * 100))),
	}

	switch c.Kind {
	case models.KindInterviewer:
		vars[VarInterviewerName] = c.Name
		vars[VarInterviewerExperience] = strconv.Itoa(c.ExperienceYears)
		vars[VarInterviewerExpertise] = strings.Join(c.Skills, ", ")
		vars[VarInterviewerSpecializations] = strings.Join(c.Specializations, ", ")
	default:
		vars[VarCandidateName] = c.Name
		vars[VarCandidateExperience] = strconv.Itoa(c.ExperienceYears)
		vars[VarCandidateSkills] = strings.Join(c.Skills, ", ")
		vars[VarResumeText] = c.Content
	}
	return vars
}

func mergeVars(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
