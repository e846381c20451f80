package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/service"
)

// DashboardHandler exposes the read-only aggregate surface.
type DashboardHandler struct {
	service *service.TriageService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(triageService *service.TriageService) *DashboardHandler {
	return &DashboardHandler{service: triageService}
}

// Summary GET /dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Dashboard(c.UserContext())})
}
