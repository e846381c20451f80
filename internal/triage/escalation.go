package triage

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

const (
	escalationSourceSystem = "system"
	escalationSourceManual = "manual"
)

// EscalationTracker manages ticket lifecycle transitions and the append-only
// escalation reason log. The state machine is
//
//	OPEN -> ROUTED -> {RESOLVED, ESCALATED}
//	ESCALATED -> RESOLVED (terminal)
//
// Transitions on one ticket are serialized through the store's per-ticket
// lock; unrelated tickets transition independently.
type EscalationTracker struct {
	store *TicketStore
}

// NewEscalationTracker constructs the tracker over the owning store.
func NewEscalationTracker(store *TicketStore) *EscalationTracker {
	return &EscalationTracker{store: store}
}

// MarkRouted records that the routing engine produced a recommendation.
func (t *EscalationTracker) MarkRouted(ticketID string) (domain.Ticket, error) {
	return t.store.Update(ticketID, func(ticket *domain.Ticket) error {
		if ticket.State != domain.TicketStateOpen {
			return apperrors.NewInvalidTransition(ticket.ID, string(ticket.State), string(domain.TicketStateRouted))
		}
		ticket.State = domain.TicketStateRouted
		return nil
	})
}

// AutoEscalate fires exactly when a ticket is classified CRITICAL, regardless
// of the chosen routing decision, appending a system-generated reason.
func (t *EscalationTracker) AutoEscalate(ticketID string) (domain.Ticket, error) {
	return t.escalate(ticketID, "auto-escalated: priority CRITICAL", escalationSourceSystem)
}

// Escalate applies a manual escalation. Permitted from ROUTED and from
// ESCALATED (the reason is appended without a duplicate state transition);
// rejected with InvalidTransition from RESOLVED and from OPEN.
func (t *EscalationTracker) Escalate(ticketID, reason string) (domain.Ticket, error) {
	return t.escalate(ticketID, reason, escalationSourceManual)
}

// Resolve moves a ticket to its terminal state.
func (t *EscalationTracker) Resolve(ticketID string) (domain.Ticket, error) {
	return t.store.Update(ticketID, func(ticket *domain.Ticket) error {
		if ticket.State != domain.TicketStateRouted && ticket.State != domain.TicketStateEscalated {
			return apperrors.NewInvalidTransition(ticket.ID, string(ticket.State), string(domain.TicketStateResolved))
		}
		now := time.Now()
		ticket.State = domain.TicketStateResolved
		ticket.ResolvedAt = &now
		return nil
	})
}

func (t *EscalationTracker) escalate(ticketID, reason, source string) (domain.Ticket, error) {
	return t.store.Update(ticketID, func(ticket *domain.Ticket) error {
		switch ticket.State {
		case domain.TicketStateRouted:
			ticket.State = domain.TicketStateEscalated
		case domain.TicketStateEscalated:
			// already escalated: append the reason, never regress the state
		default:
			return apperrors.NewInvalidTransition(ticket.ID, string(ticket.State), string(domain.TicketStateEscalated))
		}
		ticket.EscalationReasons = append(ticket.EscalationReasons, domain.EscalationReason{
			Reason:    reason,
			Source:    source,
			Timestamp: time.Now(),
		})
		return nil
	})
}
