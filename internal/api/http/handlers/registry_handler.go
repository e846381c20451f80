package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// RegistryHandler manages agent, customer and pattern registration.
type RegistryHandler struct {
	service *service.TriageService
}

// NewRegistryHandler constructs handler.
func NewRegistryHandler(triageService *service.TriageService) *RegistryHandler {
	return &RegistryHandler{service: triageService}
}

// RegisterAgent POST /agents.
func (h *RegistryHandler) RegisterAgent(c *fiber.Ctx) error {
	var req dto.RegisterAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err := h.service.RegisterAgent(c.UserContext(), domain.Agent{
		ID:           req.ID,
		Name:         req.Name,
		Specialties:  req.Specialties,
		MaxCapacity:  req.MaxCapacity,
		Satisfaction: req.Satisfaction,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": req.ID}})
}

// ListAgents GET /agents.
func (h *RegistryHandler) ListAgents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.AgentUtilization(c.UserContext())})
}

// ReleaseAgent POST /agents/:id/release.
func (h *RegistryHandler) ReleaseAgent(c *fiber.Ctx) error {
	if err := h.service.ReleaseAgent(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id")}})
}

// RegisterCustomer POST /customers.
func (h *RegistryHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req dto.RegisterCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err := h.service.RegisterCustomer(c.UserContext(), domain.Customer{
		ID:   req.ID,
		Name: req.Name,
		Tier: domain.CustomerTier(req.Tier),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": req.ID}})
}

// RegisterPattern POST /patterns.
func (h *RegistryHandler) RegisterPattern(c *fiber.Ctx) error {
	var req dto.RegisterPatternRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err := h.service.RegisterPattern(c.UserContext(), domain.ProblemPattern{
		Name:                      req.Name,
		Keywords:                  req.Keywords,
		Category:                  req.Category,
		DefaultPriority:           domain.Priority(req.DefaultPriority),
		DefaultRouting:            domain.RoutingDecision(req.DefaultRouting),
		ExpectedResolutionMinutes: req.ExpectedResolutionMinutes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"name": req.Name}})
}
