package models

import "strings"

// JobDescription is a structured posting produced by the generator or
// supplied by a client that wants interview questions for it.
type JobDescription struct {
	Title                   string   `json:"title" validate:"required"`
	Company                 string   `json:"company"`
	Location                string   `json:"location"`
	Overview                string   `json:"overview"`
	Summary                 string   `json:"summary"`
	Responsibilities        []string `json:"responsibilities"`
	RequiredQualifications  []string `json:"required_qualifications"`
	PreferredQualifications []string `json:"preferred_qualifications"`
	Benefits                []string `json:"benefits"`
	TechnicalSkills         []string `json:"technical_skills"`
}

// Text renders the posting as plain text for prompts. Empty sections are left out.
func (jd *JobDescription) Text() string {
	var b strings.Builder
	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label + ": " + value)
	}
	list := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label + ":")
		for _, item := range items {
			b.WriteString("\n- " + item)
		}
	}

	line("Title", jd.Title)
	line("Company", jd.Company)
	line("Location", jd.Location)
	line("Summary", jd.Summary)
	list("Responsibilities", jd.Responsibilities)
	list("Required Qualifications", jd.RequiredQualifications)
	list("Preferred Qualifications", jd.PreferredQualifications)
	line("Technical Skills", strings.Join(jd.TechnicalSkills, ", "))
	return b.String()
}

type GenerateJobDescriptionRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type GenerateQuestionsRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
}
