package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/services"
)

type AdminHandler struct {
	sync services.IndexSyncService
	log  *zap.Logger
}

func NewAdminHandler(sync services.IndexSyncService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{sync: sync, log: logger.OrNop(log)}
}

// HandleSync handles POST /admin/sync. The sync runs in the background and
// outlives the request; progress is read from /admin/sync-status.
func (h *AdminHandler) HandleSync(c *fiber.Ctx) error {
	status, err := h.sync.Status(c.UserContext())
	if err == nil && status.State == services.SyncRunning {
		return errorResponse(c, services.ErrSyncInProgress)
	}

	ctx := context.WithoutCancel(c.UserContext())
	go func() {
		if _, err := h.sync.SyncAll(ctx); err != nil && !errors.Is(err, services.ErrSyncInProgress) {
			h.log.Error("❌ background sync failed", zap.Error(err))
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "Index sync started",
	})
}

// HandleSyncStatus handles GET /admin/sync-status
func (h *AdminHandler) HandleSyncStatus(c *fiber.Ctx) error {
	status, err := h.sync.Status(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(status)
}
