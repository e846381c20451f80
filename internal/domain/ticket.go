package domain

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen      TicketState = "OPEN"
	TicketStateRouted    TicketState = "ROUTED"
	TicketStateEscalated TicketState = "ESCALATED"
	TicketStateResolved  TicketState = "RESOLVED"
)

// Terminal reports whether the state admits no further transitions.
func (s TicketState) Terminal() bool {
	return s == TicketStateResolved
}

// Priority enumerates severity classification driving escalation and SLA.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

var severityRank = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// Rank returns the numeric severity of the priority, higher is more severe.
// Unknown priorities rank below LOW.
func (p Priority) Rank() int {
	return severityRank[p]
}

// Valid reports whether the priority is one of the declared levels.
func (p Priority) Valid() bool {
	_, ok := severityRank[p]
	return ok
}

// MaxSeverity returns the more severe of two priorities.
func MaxSeverity(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Bump shifts the priority one level toward CRITICAL, never past it.
func (p Priority) Bump() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	}
	return PriorityCritical
}

// Channel identifies the intake channel of a submission.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
	ChannelPhone Channel = "phone"
	ChannelWeb   Channel = "web"
)

// Synchronous reports whether the channel implies a live interaction.
func (c Channel) Synchronous() bool {
	return c == ChannelChat || c == ChannelPhone
}

// EscalationReason is one append-only entry in a ticket's escalation log.
type EscalationReason struct {
	Reason    string    `json:"reason"`
	Source    string    `json:"source"` // "system" or "manual"
	Timestamp time.Time `json:"timestamp"`
}

// Ticket is the aggregate for one support request and its derived
// classification and routing state.
type Ticket struct {
	ID                string
	Subject           string
	Content           string
	Channel           Channel
	CustomerID        string
	Priority          Priority
	SentimentScore    float64 // within [-1, 1]
	UrgencyScore      float64 // within [0, 1]
	ComplexityScore   float64 // within [0, 1]
	Category          string
	Keywords          []string
	RelatedTicketIDs  []string
	State             TicketState
	AssignedAgentID   *string
	EscalationReasons []EscalationReason
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ResolvedAt        *time.Time
}

// NewTicketID returns a time-ordered, collision-resistant identifier.
func NewTicketID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
