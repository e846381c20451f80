package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

func newTrackedTicket(t *testing.T, store *TicketStore) string {
	t.Helper()
	ticket := routedTicket(domain.PriorityMedium, "billing")
	require.NoError(t, store.Insert(ticket))
	return ticket.ID
}

func TestLifecycleHappyPath(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	ticket, err := tracker.MarkRouted(id)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateRouted, ticket.State)

	ticket, err = tracker.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateResolved, ticket.State)
	require.NotNil(t, ticket.ResolvedAt)
	assert.True(t, ticket.State.Terminal())
}

func TestEscalateFromRouted(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.MarkRouted(id)
	require.NoError(t, err)

	ticket, err := tracker.Escalate(id, "customer called twice")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateEscalated, ticket.State)
	require.Len(t, ticket.EscalationReasons, 1)
	assert.Equal(t, "customer called twice", ticket.EscalationReasons[0].Reason)
	assert.Equal(t, "manual", ticket.EscalationReasons[0].Source)
	assert.False(t, ticket.EscalationReasons[0].Timestamp.IsZero())
}

func TestEscalateAgainAppendsWithoutRegressing(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.MarkRouted(id)
	require.NoError(t, err)
	_, err = tracker.Escalate(id, "first")
	require.NoError(t, err)

	ticket, err := tracker.Escalate(id, "second")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateEscalated, ticket.State)
	require.Len(t, ticket.EscalationReasons, 2)
	assert.Equal(t, "first", ticket.EscalationReasons[0].Reason)
	assert.Equal(t, "second", ticket.EscalationReasons[1].Reason)
}

func TestAutoEscalateRecordsSystemSource(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.MarkRouted(id)
	require.NoError(t, err)

	ticket, err := tracker.AutoEscalate(id)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateEscalated, ticket.State)
	require.Len(t, ticket.EscalationReasons, 1)
	assert.Equal(t, "system", ticket.EscalationReasons[0].Source)
	assert.Contains(t, ticket.EscalationReasons[0].Reason, "CRITICAL")
}

func TestEscalateFromOpenRejected(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.Escalate(id, "too early")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestTransitionsOutOfResolvedRejected(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.MarkRouted(id)
	require.NoError(t, err)
	_, err = tracker.Resolve(id)
	require.NoError(t, err)

	_, err = tracker.Escalate(id, "post-mortem complaint")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = tracker.Resolve(id)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = tracker.MarkRouted(id)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestResolveFromEscalated(t *testing.T) {
	store := NewTicketStore()
	tracker := NewEscalationTracker(store)
	id := newTrackedTicket(t, store)

	_, err := tracker.MarkRouted(id)
	require.NoError(t, err)
	_, err = tracker.Escalate(id, "stuck")
	require.NoError(t, err)

	ticket, err := tracker.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateResolved, ticket.State)
	// escalation history survives resolution
	require.Len(t, ticket.EscalationReasons, 1)
}

func TestResolveUnknownTicket(t *testing.T) {
	tracker := NewEscalationTracker(NewTicketStore())
	_, err := tracker.Resolve("missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
