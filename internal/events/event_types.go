package events

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted EventType = "ticket_submitted"
	EventTicketRouted    EventType = "ticket_routed"
	EventTicketEscalated EventType = "ticket_escalated"
	EventTicketResolved  EventType = "ticket_resolved"
	EventAgentRegistered EventType = "agent_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	CustomerID string          `json:"customer_id"`
	Channel    domain.Channel  `json:"channel"`
	Priority   domain.Priority `json:"priority"`
	Category   string          `json:"category"`
	Subject    string          `json:"subject"`
}

// TicketRoutedPayload payload.
type TicketRoutedPayload struct {
	Decision   domain.RoutingDecision `json:"decision"`
	TargetID   string                 `json:"target_id"`
	Confidence float64                `json:"confidence"`
	Priority   domain.Priority        `json:"priority"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
}

// AgentRegisteredPayload payload.
type AgentRegisteredPayload struct {
	AgentID     string   `json:"agent_id"`
	Specialties []string `json:"specialties"`
	MaxCapacity int      `json:"max_capacity"`
}
