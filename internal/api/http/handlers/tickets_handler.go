package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// TicketsHandler manages ticket submission and lifecycle endpoints.
type TicketsHandler struct {
	service *service.TriageService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(triageService *service.TriageService) *TicketsHandler {
	return &TicketsHandler{service: triageService}
}

// Submit POST /tickets.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == "" && req.Content == "" {
		return apperrors.NewValidationError("subject or content required", nil)
	}

	ticket, rec, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		Subject:    req.Subject,
		Content:    req.Content,
		CustomerID: req.CustomerID,
		Channel:    domain.Channel(req.Channel),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": decisionResponse(ticket, rec)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, rec, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": decisionResponse(ticket, rec)})
}

// Escalate POST /tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	var req dto.EscalateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Escalate(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	ticket, err := h.service.Resolve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Reroute POST /tickets/:id/reroute.
func (h *TicketsHandler) Reroute(c *fiber.Ctx) error {
	ticket, rec, err := h.service.Reroute(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": decisionResponse(ticket, rec)})
}

func ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                ticket.ID,
		Subject:           ticket.Subject,
		Channel:           ticket.Channel,
		CustomerID:        ticket.CustomerID,
		Priority:          ticket.Priority,
		SentimentScore:    ticket.SentimentScore,
		UrgencyScore:      ticket.UrgencyScore,
		ComplexityScore:   ticket.ComplexityScore,
		Category:          ticket.Category,
		Keywords:          ticket.Keywords,
		State:             ticket.State,
		AssignedAgentID:   ticket.AssignedAgentID,
		EscalationReasons: ticket.EscalationReasons,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		ResolvedAt:        ticket.ResolvedAt,
	}
}

func recommendationResponse(rec *domain.RoutingRecommendation) *dto.RecommendationResponse {
	if rec == nil {
		return nil
	}
	return &dto.RecommendationResponse{
		Decision:                   rec.Decision,
		TargetID:                   rec.TargetID,
		Confidence:                 rec.Confidence,
		Reasoning:                  rec.Reasoning,
		Alternatives:               rec.Alternatives,
		EstimatedResolutionMinutes: int(rec.EstimatedResolution / time.Minute),
		CreatedAt:                  rec.CreatedAt,
	}
}

func decisionResponse(ticket domain.Ticket, rec *domain.RoutingRecommendation) dto.TicketDecisionResponse {
	return dto.TicketDecisionResponse{
		Ticket:         ticketResponse(ticket),
		Recommendation: recommendationResponse(rec),
	}
}
