package triage

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// ticketEntry serializes all mutations of one ticket. Different tickets
// transition independently.
type ticketEntry struct {
	mu     sync.Mutex
	ticket *domain.Ticket
}

// TicketStore owns live ticket records and their identity. It is the only
// component other components persist tickets through. Tickets are never
// deleted, only transitioned to a terminal state.
type TicketStore struct {
	mu      sync.RWMutex
	tickets map[string]*ticketEntry
}

// NewTicketStore creates an empty store.
func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]*ticketEntry)}
}

// Insert commits a newly created ticket, validating its score ranges.
func (s *TicketStore) Insert(ticket *domain.Ticket) error {
	if ticket.ID == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}
	if !ticket.Priority.Valid() {
		return apperrors.NewValidationError("unknown priority",
			map[string]any{"ticket_id": ticket.ID, "priority": string(ticket.Priority)})
	}
	if ticket.SentimentScore < -1 || ticket.SentimentScore > 1 ||
		ticket.UrgencyScore < 0 || ticket.UrgencyScore > 1 ||
		ticket.ComplexityScore < 0 || ticket.ComplexityScore > 1 {
		return apperrors.NewValidationError("ticket scores out of declared ranges",
			map[string]any{"ticket_id": ticket.ID})
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[ticket.ID]; exists {
		return apperrors.NewValidationError("ticket id already present",
			map[string]any{"ticket_id": ticket.ID})
	}
	s.tickets[ticket.ID] = &ticketEntry{ticket: ticket}
	return nil
}

// Get returns a copy of the ticket.
func (s *TicketStore) Get(id string) (domain.Ticket, error) {
	entry, err := s.entry(id)
	if err != nil {
		return domain.Ticket{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.ticket, nil
}

// Update applies fn to the ticket under the ticket's own lock, serializing
// transitions per ticket id. The mutated copy is returned.
func (s *TicketStore) Update(id string, fn func(*domain.Ticket) error) (domain.Ticket, error) {
	entry, err := s.entry(id)
	if err != nil {
		return domain.Ticket{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry.ticket); err != nil {
		return domain.Ticket{}, err
	}
	entry.ticket.UpdatedAt = time.Now()
	return *entry.ticket, nil
}

// CountByState aggregates live tickets per lifecycle state.
func (s *TicketStore) CountByState() map[domain.TicketState]int {
	counts := make(map[domain.TicketState]int)
	s.scan(func(t domain.Ticket) {
		counts[t.State]++
	})
	return counts
}

// CountByPriority aggregates live tickets per priority level.
func (s *TicketStore) CountByPriority() map[domain.Priority]int {
	counts := make(map[domain.Priority]int)
	s.scan(func(t domain.Ticket) {
		counts[t.Priority]++
	})
	return counts
}

// ListByPriority returns copies of tickets at the given priority, newest id
// last (ids are time-ordered).
func (s *TicketStore) ListByPriority(priority domain.Priority) []domain.Ticket {
	var out []domain.Ticket
	s.scan(func(t domain.Ticket) {
		if t.Priority == priority {
			out = append(out, t)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByAgent returns copies of tickets assigned to the given agent.
func (s *TicketStore) ListByAgent(agentID string) []domain.Ticket {
	var out []domain.Ticket
	s.scan(func(t domain.Ticket) {
		if t.AssignedAgentID != nil && *t.AssignedAgentID == agentID {
			out = append(out, t)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of live tickets.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func (s *TicketStore) scan(visit func(domain.Ticket)) {
	s.mu.RLock()
	entries := make([]*ticketEntry, 0, len(s.tickets))
	for _, e := range s.tickets {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		ticket := *e.ticket
		e.mu.Unlock()
		visit(ticket)
	}
}

func (s *TicketStore) entry(id string) (*ticketEntry, error) {
	s.mu.RLock()
	entry, ok := s.tickets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return entry, nil
}
