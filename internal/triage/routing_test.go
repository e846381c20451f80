package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newTestEngine(t *testing.T) (*RoutingEngine, *AgentRegistry) {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	registry := NewAgentRegistry()
	return NewRoutingEngine(registry, NewPriorityClassifier(cfg), cfg), registry
}

func routedTicket(priority domain.Priority, category string) *domain.Ticket {
	return &domain.Ticket{
		ID:              domain.NewTicketID(),
		Subject:         "subject",
		Content:         "content",
		Channel:         domain.ChannelEmail,
		CustomerID:      "cust-1",
		Priority:        priority,
		ComplexityScore: 0.4,
		Category:        category,
		State:           domain.TicketStateOpen,
	}
}

func TestRouteCriticalEscalates(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("spec", []string{"infrastructure"}, 0, 5, 4.8)))

	ticket := routedTicket(domain.PriorityCritical, "infrastructure")
	rec, err := engine.Route(ticket, Signals{Urgency: 0.95, Sentiment: -0.8, Complexity: 0.7}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionEscalate, rec.Decision)
	assert.Equal(t, "escalation-queue", rec.TargetID)
	assert.InDelta(t, 0.95, rec.Confidence, 1e-9)
	assert.NotEmpty(t, rec.Reasoning)

	// available specialist untouched, surfaced only as an alternative
	agent, err := registry.Get("spec")
	require.NoError(t, err)
	assert.Equal(t, 0, agent.CurrentLoad)
	require.Len(t, rec.Alternatives, 1)
	assert.Equal(t, "spec", rec.Alternatives[0].TargetID)
}

func TestRouteCriticalAllowsPatternSanctionedAutomation(t *testing.T) {
	engine, _ := newTestEngine(t)

	pattern := passwordResetPattern()
	match := &PatternMatch{Pattern: pattern, Score: 1.0}
	ticket := routedTicket(domain.PriorityCritical, pattern.Category)

	rec, err := engine.Route(ticket, Signals{Urgency: 0.9, Sentiment: -0.9, Complexity: 0.5}, match)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionBotAutomation, rec.Decision)
	assert.Equal(t, "bot:password_reset", rec.TargetID)
}

func TestRouteStrongBotMatchConsumesNoCapacity(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("acct", []string{"account"}, 0, 5, 4.0)))

	pattern := passwordResetPattern()
	match := &PatternMatch{Pattern: pattern, Score: 0.75}
	ticket := routedTicket(domain.PriorityLow, pattern.Category)

	rec, err := engine.Route(ticket, Signals{Urgency: 0.1, Sentiment: 0.1, Complexity: 0.1}, match)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionBotAutomation, rec.Decision)

	agent, err := registry.Get("acct")
	require.NoError(t, err)
	assert.Equal(t, 0, agent.CurrentLoad, "automation must not reserve specialist capacity")
}

func TestRouteWeakBotMatchFallsThroughToSpecialist(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("acct", []string{"account"}, 0, 5, 4.0)))

	pattern := passwordResetPattern()
	match := &PatternMatch{Pattern: pattern, Score: 0.5} // below the 0.75 automation bar
	ticket := routedTicket(domain.PriorityLow, pattern.Category)

	rec, err := engine.Route(ticket, Signals{Urgency: 0.1, Sentiment: 0.1, Complexity: 0.1}, match)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionHumanSpecialist, rec.Decision)
	assert.Equal(t, "acct", rec.TargetID)
}

func TestRouteSpecialistReservesCapacity(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("bill-1", []string{"billing"}, 0, 5, 4.6)))
	require.NoError(t, registry.Register(testAgent("bill-2", []string{"billing"}, 2, 5, 4.0)))

	pattern := paymentFailurePattern()
	match := &PatternMatch{Pattern: pattern, Score: 0.75}
	ticket := routedTicket(domain.PriorityHigh, "billing")

	rec, err := engine.Route(ticket, Signals{Urgency: 0.6, Sentiment: -0.5, Complexity: 0.4}, match)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionHumanSpecialist, rec.Decision)
	assert.Equal(t, "bill-1", rec.TargetID, "least loaded specialist wins")
	assert.Greater(t, rec.Confidence, 0.0)
	assert.LessOrEqual(t, rec.Confidence, 1.0)

	agent, err := registry.Get("bill-1")
	require.NoError(t, err)
	assert.Equal(t, 1, agent.CurrentLoad, "reservation happens before the recommendation returns")

	require.Len(t, rec.Alternatives, 1)
	assert.Equal(t, "bill-2", rec.Alternatives[0].TargetID)
}

func TestRouteNoCandidatesEscalates(t *testing.T) {
	engine, _ := newTestEngine(t)

	ticket := routedTicket(domain.PriorityMedium, "billing")
	rec, err := engine.Route(ticket, Signals{Urgency: 0.45, Sentiment: -0.2, Complexity: 0.3}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionEscalate, rec.Decision)
	assert.Equal(t, "escalation-queue", rec.TargetID)
	assert.GreaterOrEqual(t, rec.Confidence, 0.4)
	assert.LessOrEqual(t, rec.Confidence, 1.0)
	assert.Empty(t, rec.Alternatives)
}

func TestRouteSaturatedSpecialistsEscalate(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("bill-1", []string{"billing"}, 3, 3, 4.6)))

	ticket := routedTicket(domain.PriorityMedium, "billing")
	rec, err := engine.Route(ticket, Signals{Urgency: 0.45, Sentiment: -0.2, Complexity: 0.3}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionEscalate, rec.Decision)
}

func TestRouteGeneralistServesUnmatchedCategory(t *testing.T) {
	engine, registry := newTestEngine(t)
	require.NoError(t, registry.Register(testAgent("gen", []string{domain.SpecialtyGeneral}, 0, 5, 3.8)))

	ticket := routedTicket(domain.PriorityLow, "shipping")
	rec, err := engine.Route(ticket, Signals{Urgency: 0.1, Sentiment: 0, Complexity: 0.2}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionHumanSpecialist, rec.Decision)
	assert.Equal(t, "gen", rec.TargetID)
}

func TestSpecialistConfidencePrefersDirectSpecialty(t *testing.T) {
	engine, _ := newTestEngine(t)

	direct := testAgent("d", []string{"billing"}, 0, 5, 4.0)
	general := testAgent("g", []string{domain.SpecialtyGeneral}, 0, 5, 4.0)

	cd := engine.specialistConfidence(direct, "billing", 0.5, 0.6)
	cg := engine.specialistConfidence(general, "billing", 0.5, 0.6)
	assert.Greater(t, cd, cg)
}

func TestSpecialistConfidencePenalizesLoad(t *testing.T) {
	engine, _ := newTestEngine(t)

	idle := testAgent("i", []string{"billing"}, 0, 10, 4.0)
	loaded := testAgent("l", []string{"billing"}, 8, 10, 4.0)

	assert.Greater(t,
		engine.specialistConfidence(idle, "billing", 0.5, 0.6),
		engine.specialistConfidence(loaded, "billing", 0.5, 0.6))
}

func TestEstimateResolutionPatternOverridesDefault(t *testing.T) {
	engine, _ := newTestEngine(t)

	pattern := paymentFailurePattern() // 120 minutes declared
	match := &PatternMatch{Pattern: pattern, Score: 0.75}

	got := engine.EstimateResolution(domain.PriorityHigh, 0, match)
	assert.Equal(t, 120*time.Minute, got)

	// zero complexity, no pattern: priority default applies
	got = engine.EstimateResolution(domain.PriorityHigh, 0, nil)
	assert.Equal(t, 240*time.Minute, got)
}

func TestEstimateResolutionComplexityScaling(t *testing.T) {
	engine, _ := newTestEngine(t)

	base := engine.EstimateResolution(domain.PriorityMedium, 0, nil)
	scaled := engine.EstimateResolution(domain.PriorityMedium, 1.0, nil)
	assert.Greater(t, scaled, base)
	// factor 0.5 means full complexity adds half again
	assert.Equal(t, base+base/2, scaled)
}

func TestEstimateResolutionClampedToBounds(t *testing.T) {
	engine, _ := newTestEngine(t)

	quick := &PatternMatch{Pattern: domain.ProblemPattern{
		Name:                      "instant",
		Keywords:                  []string{"x"},
		Category:                  "general",
		DefaultRouting:            domain.DecisionBotAutomation,
		ExpectedResolutionMinutes: 1,
	}}
	got := engine.EstimateResolution(domain.PriorityLow, 0, quick)
	assert.Equal(t, 15*time.Minute, got, "floor applies")

	got = engine.EstimateResolution(domain.PriorityLow, 1.0, nil)
	assert.LessOrEqual(t, got, 2880*time.Minute, "ceiling applies")
}
