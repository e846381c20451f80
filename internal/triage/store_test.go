package triage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

func TestInsertRejectsDuplicateID(t *testing.T) {
	store := NewTicketStore()
	ticket := routedTicket(domain.PriorityLow, "billing")
	require.NoError(t, store.Insert(ticket))

	dup := routedTicket(domain.PriorityLow, "billing")
	dup.ID = ticket.ID
	err := store.Insert(dup)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Equal(t, 1, store.Len())
}

func TestInsertValidatesScoreRanges(t *testing.T) {
	store := NewTicketStore()

	bad := routedTicket(domain.PriorityLow, "billing")
	bad.SentimentScore = -1.5
	require.Error(t, store.Insert(bad))

	bad = routedTicket(domain.PriorityLow, "billing")
	bad.UrgencyScore = 1.2
	require.Error(t, store.Insert(bad))

	bad = routedTicket(domain.PriorityLow, "billing")
	bad.Priority = "SEVERE"
	require.Error(t, store.Insert(bad))
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := NewTicketStore()
	ticket := routedTicket(domain.PriorityLow, "billing")
	require.NoError(t, store.Insert(ticket))

	got, err := store.Get(ticket.ID)
	require.NoError(t, err)
	got.Subject = "mutated"

	again, err := store.Get(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "subject", again.Subject)
}

func TestUpdateAppliesAndBumpsUpdatedAt(t *testing.T) {
	store := NewTicketStore()
	ticket := routedTicket(domain.PriorityLow, "billing")
	require.NoError(t, store.Insert(ticket))
	inserted, err := store.Get(ticket.ID)
	require.NoError(t, err)

	updated, err := store.Update(ticket.ID, func(tk *domain.Ticket) error {
		tk.Category = "account"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "account", updated.Category)
	assert.False(t, updated.UpdatedAt.Before(inserted.UpdatedAt))
}

func TestUpdateErrorLeavesTicketUntouched(t *testing.T) {
	store := NewTicketStore()
	ticket := routedTicket(domain.PriorityLow, "billing")
	require.NoError(t, store.Insert(ticket))

	before, err := store.Get(ticket.ID)
	require.NoError(t, err)

	_, err = store.Update(ticket.ID, func(tk *domain.Ticket) error {
		return apperrors.NewValidationError("rejected", nil)
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	after, err := store.Get(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "failed update must not bump UpdatedAt")
}

func TestCountByStateAndPriority(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(routedTicket(domain.PriorityHigh, "billing")))
	}
	low := routedTicket(domain.PriorityLow, "account")
	require.NoError(t, store.Insert(low))
	_, err := tracker.MarkRouted(low.ID)
	require.NoError(t, err)

	byState := store.CountByState()
	assert.Equal(t, 3, byState[domain.TicketStateOpen])
	assert.Equal(t, 1, byState[domain.TicketStateRouted])

	byPriority := store.CountByPriority()
	assert.Equal(t, 3, byPriority[domain.PriorityHigh])
	assert.Equal(t, 1, byPriority[domain.PriorityLow])
}

func TestListByAgent(t *testing.T) {
	store := NewTicketStore()
	agentID := "bill-1"

	assigned := routedTicket(domain.PriorityHigh, "billing")
	assigned.AssignedAgentID = &agentID
	require.NoError(t, store.Insert(assigned))
	require.NoError(t, store.Insert(routedTicket(domain.PriorityHigh, "billing")))

	tickets := store.ListByAgent(agentID)
	require.Len(t, tickets, 1)
	assert.Equal(t, assigned.ID, tickets[0].ID)
}

func TestConcurrentUpdatesOnOneTicketSerialize(t *testing.T) {
	store := NewTicketStore()
	ticket := routedTicket(domain.PriorityLow, "billing")
	require.NoError(t, store.Insert(ticket))

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ticket.ID, func(tk *domain.Ticket) error {
				tk.RelatedTicketIDs = append(tk.RelatedTicketIDs, domain.NewTicketID())
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ticket.ID)
	require.NoError(t, err)
	assert.Len(t, got.RelatedTicketIDs, writers, "no update may be lost")
}
