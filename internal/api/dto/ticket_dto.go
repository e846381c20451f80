package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// SubmitTicketRequest is the submission payload.
type SubmitTicketRequest struct {
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	CustomerID string `json:"customer_id"`
	Channel    string `json:"channel"`
}

// EscalateTicketRequest carries a manual escalation reason.
type EscalateTicketRequest struct {
	Reason string `json:"reason"`
}

// TicketResponse is the external view of one ticket.
type TicketResponse struct {
	ID                string                    `json:"id"`
	Subject           string                    `json:"subject"`
	Channel           domain.Channel            `json:"channel"`
	CustomerID        string                    `json:"customer_id"`
	Priority          domain.Priority           `json:"priority"`
	SentimentScore    float64                   `json:"sentiment_score"`
	UrgencyScore      float64                   `json:"urgency_score"`
	ComplexityScore   float64                   `json:"complexity_score"`
	Category          string                    `json:"category"`
	Keywords          []string                  `json:"keywords"`
	State             domain.TicketState        `json:"state"`
	AssignedAgentID   *string                   `json:"assigned_agent_id,omitempty"`
	EscalationReasons []domain.EscalationReason `json:"escalation_reasons,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	ResolvedAt        *time.Time                `json:"resolved_at,omitempty"`
}

// RecommendationResponse is the external view of one routing recommendation.
type RecommendationResponse struct {
	Decision                   domain.RoutingDecision      `json:"decision"`
	TargetID                   string                      `json:"target_id"`
	Confidence                 float64                     `json:"confidence"`
	Reasoning                  []string                    `json:"reasoning"`
	Alternatives               []domain.RoutingAlternative `json:"alternatives,omitempty"`
	EstimatedResolutionMinutes int                         `json:"estimated_resolution_minutes"`
	CreatedAt                  time.Time                   `json:"created_at"`
}

// TicketDecisionResponse couples a ticket with its recommendation.
type TicketDecisionResponse struct {
	Ticket         TicketResponse          `json:"ticket"`
	Recommendation *RecommendationResponse `json:"recommendation,omitempty"`
}
