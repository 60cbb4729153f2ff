package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Upload      *UploadHandler
	Interviewer *InterviewerHandler
	Match       *MatchHandler
	Admin       *AdminHandler
	Generator   *GeneratorHandler
}

// RegisterRoutes mounts the API under /api/v1. Nil handlers are skipped.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	if h.Upload != nil {
		api.Post("/resumes", h.Upload.HandleUpload)
		api.Get("/resumes/:id", h.Upload.HandleGetResume)
	}

	if h.Interviewer != nil {
		api.Post("/interviewers", h.Interviewer.HandleCreate)
		api.Get("/interviewers", h.Interviewer.HandleList)
		api.Get("/interviewers/search", h.Interviewer.HandleSearch)
		api.Get("/interviewers/:id", h.Interviewer.HandleGet)
		api.Put("/interviewers/:id", h.Interviewer.HandleUpdate)
		api.Delete("/interviewers/:id", h.Interviewer.HandleDelete)
		api.Get("/interviewers/:id/availability", h.Interviewer.HandleAvailability)
		api.Put("/interviewers/:id/availability", h.Interviewer.HandleSetAvailability)
		api.Post("/interviewers/:id/reserve", h.Interviewer.HandleReserve)
	}

	if h.Match != nil {
		match := api.Group("/match")
		match.Post("/interviewers/job-description", h.Match.HandleJobDescription)
		match.Get("/interviewers/resume/:id", h.Match.HandleResume)
		match.Get("/interviewers/evaluation/:id", h.Match.HandleEvaluation)
		match.Post("/interviewers/expertise", h.Match.HandleExpertise)
		match.Post("/interviewers/batch", h.Match.HandleBatch)
		match.Post("/resumes", h.Match.HandleResumes)
		match.Get("/summary/:interviewerId/:resumeId", h.Match.HandleSummary)
	}

	if h.Generator != nil {
		jd := api.Group("/job-descriptions")
		jd.Post("/generate", h.Generator.HandleGenerate)
		jd.Post("/generate-questions", h.Generator.HandleQuestions)
		jd.Post("/generate-questions-from-dto", h.Generator.HandleQuestionsFromJobDescription)
	}

	if h.Admin != nil {
		api.Post("/admin/sync", h.Admin.HandleSync)
		api.Get("/admin/sync-status", h.Admin.HandleSyncStatus)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes",
				"POST /api/v1/interviewers",
				"GET /api/v1/interviewers",
				"GET /api/v1/interviewers/search",
				"PUT /api/v1/interviewers/:id",
				"PUT /api/v1/interviewers/:id/availability",
				"POST /api/v1/match/interviewers/job-description",
				"GET /api/v1/match/interviewers/resume/:id",
				"GET /api/v1/match/interviewers/evaluation/:id",
				"POST /api/v1/match/interviewers/expertise",
				"POST /api/v1/match/interviewers/batch",
				"POST /api/v1/match/resumes",
				"GET /api/v1/match/summary/:interviewerId/:resumeId",
				"POST /api/v1/job-descriptions/generate",
				"POST /api/v1/job-descriptions/generate-questions",
				"POST /api/v1/job-descriptions/generate-questions-from-dto",
				"POST /api/v1/admin/sync",
			},
		})
	})
}
