package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/services"
)

type MatchHandler struct {
	interviewers services.InterviewerMatchingService
	resumes      services.ResumeMatchingService
}

func NewMatchHandler(interviewers services.InterviewerMatchingService, resumes services.ResumeMatchingService) *MatchHandler {
	return &MatchHandler{
		interviewers: interviewers,
		resumes:      resumes,
	}
}

// HandleJobDescription handles POST /match/interviewers/job-description
func (h *MatchHandler) HandleJobDescription(c *fiber.Ctx) error {
	var req models.JobDescriptionMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	ch := h.interviewers.MatchJobDescriptionAsync(ctx, req.JobDescription, services.MatchParams{
		Limit:                req.Limit,
		IncludeLowConfidence: req.IncludeLowConfidence,
	})

	select {
	case resp := <-ch:
		if resp.Err != nil {
			return errorResponse(c, resp.Err)
		}
		return c.JSON(models.NewMatchResponse(resp.Result))
	case <-ctx.Done():
		return errorResponse(c, ctx.Err())
	}
}

// HandleResume handles GET /match/interviewers/resume/:id?limit=
func (h *MatchHandler) HandleResume(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interviewers.MatchResume(c.UserContext(), id, services.MatchParams{Limit: c.QueryInt("limit")})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(models.NewMatchResponse(res))
}

// HandleEvaluation handles GET /match/interviewers/evaluation/:id?limit=&include_non_matches=
func (h *MatchHandler) HandleEvaluation(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interviewers.MatchEvaluation(c.UserContext(), id, services.MatchParams{
		Limit:                c.QueryInt("limit"),
		IncludeLowConfidence: c.QueryBool("include_non_matches"),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(models.NewMatchResponse(res))
}

// HandleExpertise handles POST /match/interviewers/expertise
func (h *MatchHandler) HandleExpertise(c *fiber.Ctx) error {
	var req models.ExpertiseMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := h.interviewers.MatchExpertise(c.UserContext(), req.Query, req.Filters, services.MatchParams{Limit: req.Limit})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(models.NewMatchResponse(res))
}

// HandleBatch handles POST /match/interviewers/batch
func (h *MatchHandler) HandleBatch(c *fiber.Ctx) error {
	var req models.BatchMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(req.ResumeIDs))
	for i, raw := range req.ResumeIDs {
		ids[i] = uuid.MustParse(raw) // validated by the uuid tag
	}

	results, err := h.interviewers.MatchMany(c.UserContext(), ids, services.MatchParams{Limit: req.Limit})
	if err != nil {
		return errorResponse(c, err)
	}

	entries := make([]models.BatchMatchEntry, len(results))
	for i, r := range results {
		entries[i] = models.BatchMatchEntry{ResumeID: r.ResumeID.String()}
		if r.Err != nil {
			entries[i].Error = r.Err.Error()
			continue
		}
		resp := models.NewMatchResponse(r.Result)
		entries[i].Match = &resp
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(entries),
		"results": entries,
	})
}

// HandleResumes handles POST /match/resumes
func (h *MatchHandler) HandleResumes(c *fiber.Ctx) error {
	var req models.JobDescriptionMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := h.resumes.MatchJobDescription(c.UserContext(), req.JobDescription, services.MatchParams{
		Limit:                req.Limit,
		IncludeLowConfidence: req.IncludeLowConfidence,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(models.NewMatchResponse(res))
}

// HandleSummary handles GET /match/summary/:interviewerId/:resumeId
func (h *MatchHandler) HandleSummary(c *fiber.Ctx) error {
	interviewerID, err := uuidParam(c, "interviewerId")
	if err != nil {
		return err
	}
	resumeID, err := uuidParam(c, "resumeId")
	if err != nil {
		return err
	}

	summary, err := h.interviewers.MatchSummary(c.UserContext(), interviewerID, resumeID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"interviewer_id": interviewerID,
		"resume_id":      resumeID,
		"summary":        summary,
	})
}
