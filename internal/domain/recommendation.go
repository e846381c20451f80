package domain

import "time"

// RoutingDecision is the chosen handling path for a ticket.
type RoutingDecision string

const (
	DecisionHumanSpecialist RoutingDecision = "HUMAN_SPECIALIST"
	DecisionBotAutomation   RoutingDecision = "BOT_AUTOMATION"
	DecisionEscalate        RoutingDecision = "ESCALATE"
)

// Valid reports whether the decision is one of the declared values.
func (d RoutingDecision) Valid() bool {
	switch d {
	case DecisionHumanSpecialist, DecisionBotAutomation, DecisionEscalate:
		return true
	}
	return false
}

// RoutingAlternative is a ranked option that was considered but not chosen.
type RoutingAlternative struct {
	Decision   RoutingDecision `json:"decision"`
	TargetID   string          `json:"target_id"`
	Confidence float64         `json:"confidence"`
}

// RoutingRecommendation is the scored, explainable routing outcome produced
// once per ticket. It is immutable after creation; a ticket gains a new
// recommendation only through an explicit re-routing operation.
type RoutingRecommendation struct {
	TicketID            string               `json:"ticket_id"`
	Decision            RoutingDecision      `json:"decision"`
	TargetID            string               `json:"target_id"`
	Confidence          float64              `json:"confidence"` // in [0, 1]
	Reasoning           []string             `json:"reasoning"`  // ordered, never empty
	Alternatives        []RoutingAlternative `json:"alternatives"`
	EstimatedResolution time.Duration        `json:"estimated_resolution"`
	CreatedAt           time.Time            `json:"created_at"`
}
