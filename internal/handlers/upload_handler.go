package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/services"
)

type UploadHandler struct {
	resumeService services.ResumeService
	maxFileSize   int64
}

func NewUploadHandler(resumeService services.ResumeService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		resumeService: resumeService,
		maxFileSize:   maxFileSize,
	}
}

// HandleUpload handles POST /resumes
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please upload the resume PDF as 'file'",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	resume, indexed, err := h.resumeService.Upload(c.UserContext(), file)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to store resume: %v", err),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Resume uploaded successfully",
		"resume": models.UploadResponse{
			ID:           resume.ID.String(),
			Name:         resume.Name,
			Filename:     resume.Filename,
			OriginalName: resume.OriginalFileName,
			Indexed:      indexed,
		},
	})
}

// HandleGetResume handles GET /resumes/:id
func (h *UploadHandler) HandleGetResume(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	resume, err := h.resumeService.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resume)
}
