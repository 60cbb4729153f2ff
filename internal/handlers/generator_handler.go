package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/services"
)

type GeneratorHandler struct {
	service services.GeneratorService
}

func NewGeneratorHandler(service services.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: service}
}

// HandleGenerate handles POST /job-descriptions/generate
func (h *GeneratorHandler) HandleGenerate(c *fiber.Ctx) error {
	var req models.GenerateJobDescriptionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	jd, err := h.service.GenerateJobDescription(c.UserContext(), req.Prompt)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(jd)
}

// HandleQuestions handles POST /job-descriptions/generate-questions
func (h *GeneratorHandler) HandleQuestions(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	return h.questions(c, req.JobDescription)
}

// HandleQuestionsFromJobDescription handles POST /job-descriptions/generate-questions-from-dto
func (h *GeneratorHandler) HandleQuestionsFromJobDescription(c *fiber.Ctx) error {
	var jd models.JobDescription
	if err := bindJSON(c, &jd); err != nil {
		return err
	}
	return h.questions(c, jd.Text())
}

func (h *GeneratorHandler) questions(c *fiber.Ctx, jobDescription string) error {
	questions, err := h.service.GenerateInterviewQuestions(c.UserContext(), jobDescription)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"questions": questions,
	})
}
