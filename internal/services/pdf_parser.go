package services

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
)

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	// ParseResume extracts the text of a resume PDF and the contact details
	// that can be read from it without a model.
	ParseResume(filePath string) (*ParsedResume, error)
}

type ParsedResume struct {
	Name            string
	Email           string
	PhoneNumber     string
	ExperienceYears int
	Skills          []string
	Text            string
	PageCount       int
}

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	experiencePattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
	skillsLinePattern = regexp.MustCompile(`(?im)^\s*(?:technical\s+)?skills\s*[:\-]\s*(.+)$`)
)

type pdfParserService struct {
	log *zap.Logger
}

func NewPDFParserService(log *zap.Logger) PDFParserService {
	return &pdfParserService{log: logger.OrNop(log)}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	text, _, err := p.readPages(filePath)
	return text, err
}

func (p *pdfParserService) ParseResume(filePath string) (*ParsedResume, error) {
	text, pages, err := p.readPages(filePath)
	if err != nil {
		return nil, err
	}

	text = CleanText(text)
	parsed := &ParsedResume{
		Name:            firstLine(text),
		Email:           emailPattern.FindString(text),
		PhoneNumber:     strings.TrimSpace(phonePattern.FindString(text)),
		ExperienceYears: maxExperience(text),
		Skills:          skillsFrom(text),
		Text:            text,
		PageCount:       pages,
	}

	p.log.Debug("parsed resume",
		zap.String("file", filePath),
		zap.Int("pages", pages),
		zap.String("name", parsed.Name),
		zap.Int("skills", len(parsed.Skills)),
	)
	return parsed, nil
}

func (p *pdfParserService) readPages(filePath string) (string, int, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", 0, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.log.Warn("⚠️ skipping unreadable page", zap.String("file", filePath), zap.Int("page", pageIndex), zap.Error(err))
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", totalPage, fmt.Errorf("no text content found in PDF")
	}
	return text, totalPage, nil
}

// CleanText trims every line and drops the blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}
	return strings.Join(cleanedLines, "\n")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

// maxExperience takes the largest "N years" mention as the candidate's total.
func maxExperience(text string) int {
	best := 0
	for _, m := range experiencePattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best && n <= 60 {
			best = n
		}
	}
	return best
}

func skillsFrom(text string) []string {
	m := skillsLinePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var skills []string
	for _, s := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
