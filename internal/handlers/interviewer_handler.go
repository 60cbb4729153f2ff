package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
	"alfredoptarigan/cv-matcher/internal/services"
)

type InterviewerHandler struct {
	service services.InterviewerService
}

func NewInterviewerHandler(service services.InterviewerService) *InterviewerHandler {
	return &InterviewerHandler{service: service}
}

// HandleCreate handles POST /interviewers
func (h *InterviewerHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateInterviewerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	profile, indexed, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"interviewer": profile,
		"indexed":     indexed,
	})
}

// HandleUpdate handles PUT /interviewers/:id
func (h *InterviewerHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateInterviewerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	profile, indexed, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"interviewer": profile,
		"indexed":     indexed,
	})
}

// HandleSetAvailability handles PUT /interviewers/:id/availability
func (h *InterviewerHandler) HandleSetAvailability(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req models.SetAvailabilityRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	profile, err := h.service.SetAvailability(c.UserContext(), id, req.Availability)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(profile)
}

// HandleList handles GET /interviewers?tier=&min_experience=&expertise=&specialization=&limit=
func (h *InterviewerHandler) HandleList(c *fiber.Ctx) error {
	q := repositories.InterviewerQuery{
		Tier:           c.QueryInt("tier"),
		MinExperience:  c.QueryInt("min_experience"),
		Expertise:      strings.TrimSpace(c.Query("expertise")),
		Specialization: strings.TrimSpace(c.Query("specialization")),
		Limit:          c.QueryInt("limit"),
	}
	if q.Tier < 0 || q.MinExperience < 0 || q.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "tier, min_experience and limit must not be negative")
	}

	profiles, err := h.service.List(c.UserContext(), q)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"count":        len(profiles),
		"interviewers": profiles,
	})
}

// HandleSearch handles GET /interviewers/search?q=&limit=&key=&value=
func (h *InterviewerHandler) HandleSearch(c *fiber.Ctx) error {
	var filter *models.MetadataFilter
	if key := strings.TrimSpace(c.Query("key")); key != "" {
		filter = &models.MetadataFilter{Key: key, Value: c.Query("value")}
	}

	hits, err := h.service.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 10), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"count":   len(hits),
		"results": hits,
	})
}

// HandleGet handles GET /interviewers/:id
func (h *InterviewerHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(profile)
}

// HandleDelete handles DELETE /interviewers/:id
func (h *InterviewerHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Interviewer deleted successfully",
	})
}

// HandleAvailability handles GET /interviewers/:id/availability?date=YYYY-MM-DD
func (h *InterviewerHandler) HandleAvailability(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	date := c.Query("date", time.Now().Format(time.DateOnly))
	if err := validate.Var(date, "datetime=2006-01-02"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}

	avail, err := h.service.Availability(c.UserContext(), id, date)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(avail)
}

// HandleReserve handles POST /interviewers/:id/reserve
func (h *InterviewerHandler) HandleReserve(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req models.ReserveSlotRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	avail, err := h.service.Reserve(c.UserContext(), id, req.Date)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(avail)
}
