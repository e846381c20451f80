package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// RecommendationCache is the optional write-through cache for produced
// recommendations. Failures are logged, never surfaced.
type RecommendationCache interface {
	Put(ctx context.Context, rec *domain.RoutingRecommendation) error
}

// TriageService orchestrates the decision pipeline for one submission:
// signal extraction, pattern matching, priority classification, routing with
// capacity reservation, lifecycle tracking and final commit.
type TriageService struct {
	store      *triage.TicketStore
	customers  *triage.CustomerRegistry
	agents     *triage.AgentRegistry
	patterns   *triage.PatternTable
	extractor  *triage.SignalExtractor
	classifier *triage.PriorityClassifier
	engine     *triage.RoutingEngine
	tracker    *triage.EscalationTracker
	dispatcher events.Dispatcher
	archive    repository.TicketArchiveRepository
	recArchive repository.RecommendationRepository
	cache      RecommendationCache
	metrics    *observability.Metrics
	logger     *zap.Logger

	recMu           sync.RWMutex
	recommendations map[string]*domain.RoutingRecommendation
}

// TriageDependencies bundles collaborators for the triage service. Archive,
// cache, dispatcher and metrics are optional.
type TriageDependencies struct {
	Store      *triage.TicketStore
	Customers  *triage.CustomerRegistry
	Agents     *triage.AgentRegistry
	Patterns   *triage.PatternTable
	Extractor  *triage.SignalExtractor
	Classifier *triage.PriorityClassifier
	Engine     *triage.RoutingEngine
	Tracker    *triage.EscalationTracker
	Dispatcher events.Dispatcher
	Archive    repository.TicketArchiveRepository
	RecArchive repository.RecommendationRepository
	Cache      RecommendationCache
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}
	return &TriageService{
		store:           deps.Store,
		customers:       deps.Customers,
		agents:          deps.Agents,
		patterns:        deps.Patterns,
		extractor:       deps.Extractor,
		classifier:      deps.Classifier,
		engine:          deps.Engine,
		tracker:         deps.Tracker,
		dispatcher:      deps.Dispatcher,
		archive:         deps.Archive,
		recArchive:      deps.RecArchive,
		cache:           deps.Cache,
		metrics:         deps.Metrics,
		logger:          logger,
		recommendations: make(map[string]*domain.RoutingRecommendation),
	}
}

// SubmitInput describes one incoming support request.
type SubmitInput struct {
	Subject    string
	Content    string
	CustomerID string
	Channel    domain.Channel
}

// Submit runs the full decision pipeline and commits the resulting ticket
// and recommendation. An unregistered customer does not fail the submission:
// classification proceeds with tier-neutral defaults and the recommendation
// records that fallback.
func (s *TriageService) Submit(ctx context.Context, input SubmitInput) (domain.Ticket, *domain.RoutingRecommendation, error) {
	if strings.TrimSpace(input.Subject) == "" && strings.TrimSpace(input.Content) == "" {
		return domain.Ticket{}, nil, apperrors.NewValidationError("subject or content required", nil)
	}
	if input.Channel == "" {
		input.Channel = domain.ChannelWeb
	}

	tier := domain.TierStandard
	knownCustomer := true
	if customer, err := s.customers.Get(input.CustomerID); err != nil {
		knownCustomer = false
		s.logger.Warn("unknown customer; classifying with tier-neutral defaults",
			zap.String("customer_id", input.CustomerID))
	} else {
		tier = customer.Tier
	}

	signals := s.extractor.Extract(input.Subject, input.Content, input.Channel)

	var hint *domain.ProblemPattern
	var matchPtr *triage.PatternMatch
	category := domain.CategoryGeneral
	if match, ok := s.patterns.Match(signals.Keywords, input.Subject+" "+input.Content); ok {
		matchPtr = &match
		hint = &match.Pattern
		category = match.Pattern.Category
	}

	priority := s.classifier.Classify(signals, hint, tier)

	ticket := &domain.Ticket{
		ID:              domain.NewTicketID(),
		Subject:         strings.TrimSpace(input.Subject),
		Content:         strings.TrimSpace(input.Content),
		Channel:         input.Channel,
		CustomerID:      input.CustomerID,
		Priority:        priority,
		SentimentScore:  signals.Sentiment,
		UrgencyScore:    signals.Urgency,
		ComplexityScore: signals.Complexity,
		Category:        category,
		Keywords:        signals.Keywords,
		State:           domain.TicketStateOpen,
	}
	if err := s.store.Insert(ticket); err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}

	rec, err := s.engine.Route(ticket, signals, matchPtr)
	if err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}
	if !knownCustomer {
		rec.Reasoning = append(rec.Reasoning, "customer not registered; tier-neutral defaults applied")
	}
	if tier.Boosted() {
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("customer tier %s boosted priority", tier))
	}

	if _, err := s.tracker.MarkRouted(ticket.ID); err != nil {
		s.rollbackReservation(rec)
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}
	if rec.Decision == domain.DecisionHumanSpecialist {
		if _, err := s.store.Update(ticket.ID, func(t *domain.Ticket) error {
			agentID := rec.TargetID
			t.AssignedAgentID = &agentID
			return nil
		}); err != nil {
			s.rollbackReservation(rec)
			return domain.Ticket{}, nil, apperrors.MapError(err)
		}
	}

	updated, _ := s.store.Get(ticket.ID)
	if priority == domain.PriorityCritical {
		if updated, err = s.tracker.AutoEscalate(ticket.ID); err != nil {
			return domain.Ticket{}, nil, apperrors.MapError(err)
		}
		s.metrics.RecordEscalation()
		s.publish(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticket.ID,
			Payload:  events.TicketEscalatedPayload{Reason: "auto-escalated: priority CRITICAL", Source: "system"},
		})
	}

	s.setRecommendation(ticket.ID, rec)
	s.customers.IncrementHistory(input.CustomerID)
	s.metrics.RecordDecision(string(rec.Decision))

	s.publish(ctx, events.Event{
		Type:     events.EventTicketSubmitted,
		TicketID: ticket.ID,
		Payload: events.TicketSubmittedPayload{
			CustomerID: input.CustomerID,
			Channel:    input.Channel,
			Priority:   priority,
			Category:   category,
			Subject:    ticket.Subject,
		},
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketRouted,
		TicketID: ticket.ID,
		Payload: events.TicketRoutedPayload{
			Decision:   rec.Decision,
			TargetID:   rec.TargetID,
			Confidence: rec.Confidence,
			Priority:   priority,
		},
	})

	s.persist(ctx, &updated, rec)
	return updated, rec, nil
}

// GetTicket returns the ticket and its current recommendation.
func (s *TriageService) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, *domain.RoutingRecommendation, error) {
	ticket, err := s.store.Get(ticketID)
	if err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}
	return ticket, s.getRecommendation(ticketID), nil
}

// Escalate applies a manual escalation to the ticket.
func (s *TriageService) Escalate(ctx context.Context, ticketID, reason string) (domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.Ticket{}, apperrors.NewValidationError("reason required", nil)
	}
	ticket, err := s.tracker.Escalate(ticketID, reason)
	if err != nil {
		return domain.Ticket{}, apperrors.MapError(err)
	}
	s.metrics.RecordEscalation()
	s.publish(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticketID,
		Payload:  events.TicketEscalatedPayload{Reason: reason, Source: "manual"},
	})
	s.persist(ctx, &ticket, nil)
	return ticket, nil
}

// Resolve moves the ticket to its terminal state and releases any capacity
// still held for it.
func (s *TriageService) Resolve(ctx context.Context, ticketID string) (domain.Ticket, error) {
	ticket, err := s.tracker.Resolve(ticketID)
	if err != nil {
		return domain.Ticket{}, apperrors.MapError(err)
	}
	if ticket.AssignedAgentID != nil {
		if err := s.agents.Release(*ticket.AssignedAgentID); err != nil {
			s.logger.Warn("release on resolve failed",
				zap.String("agent_id", *ticket.AssignedAgentID), zap.Error(err))
		}
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticketID,
		Payload:  events.TicketResolvedPayload{ResolvedAt: time.Now()},
	})
	s.persist(ctx, &ticket, nil)
	return ticket, nil
}

// Reroute re-runs classification and routing for a routed ticket, producing
// a fresh recommendation. Capacity held by the previous recommendation is
// released first; the old recommendation is replaced, never mutated.
func (s *TriageService) Reroute(ctx context.Context, ticketID string) (domain.Ticket, *domain.RoutingRecommendation, error) {
	current, err := s.store.Get(ticketID)
	if err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}
	if current.State != domain.TicketStateRouted && current.State != domain.TicketStateEscalated {
		return domain.Ticket{}, nil, apperrors.NewInvalidTransition(ticketID, string(current.State), string(domain.TicketStateRouted))
	}

	if current.AssignedAgentID != nil {
		if err := s.agents.Release(*current.AssignedAgentID); err != nil {
			s.logger.Warn("release on reroute failed",
				zap.String("agent_id", *current.AssignedAgentID), zap.Error(err))
		}
	}

	tier := domain.TierStandard
	if customer, err := s.customers.Get(current.CustomerID); err == nil {
		tier = customer.Tier
	}

	signals := s.extractor.Extract(current.Subject, current.Content, current.Channel)
	var hint *domain.ProblemPattern
	var matchPtr *triage.PatternMatch
	category := domain.CategoryGeneral
	if match, ok := s.patterns.Match(signals.Keywords, current.Subject+" "+current.Content); ok {
		matchPtr = &match
		hint = &match.Pattern
		category = match.Pattern.Category
	}
	priority := s.classifier.Classify(signals, hint, tier)

	updated, err := s.store.Update(ticketID, func(t *domain.Ticket) error {
		t.Priority = priority
		t.Category = category
		t.AssignedAgentID = nil
		return nil
	})
	if err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}

	rec, err := s.engine.Route(&updated, signals, matchPtr)
	if err != nil {
		return domain.Ticket{}, nil, apperrors.MapError(err)
	}
	if rec.Decision == domain.DecisionHumanSpecialist {
		updated, err = s.store.Update(ticketID, func(t *domain.Ticket) error {
			agentID := rec.TargetID
			t.AssignedAgentID = &agentID
			return nil
		})
		if err != nil {
			s.rollbackReservation(rec)
			return domain.Ticket{}, nil, apperrors.MapError(err)
		}
	}
	if priority == domain.PriorityCritical && updated.State == domain.TicketStateRouted {
		if updated, err = s.tracker.AutoEscalate(ticketID); err != nil {
			return domain.Ticket{}, nil, apperrors.MapError(err)
		}
		s.metrics.RecordEscalation()
	}

	s.setRecommendation(ticketID, rec)
	s.metrics.RecordDecision(string(rec.Decision))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketRouted,
		TicketID: ticketID,
		Payload: events.TicketRoutedPayload{
			Decision:   rec.Decision,
			TargetID:   rec.TargetID,
			Confidence: rec.Confidence,
			Priority:   priority,
		},
	})
	s.persist(ctx, &updated, rec)
	return updated, rec, nil
}

// RegisterAgent adds a responder to the live registry.
func (s *TriageService) RegisterAgent(ctx context.Context, agent domain.Agent) error {
	if err := s.agents.Register(agent); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type: events.EventAgentRegistered,
		Payload: events.AgentRegisteredPayload{
			AgentID:     agent.ID,
			Specialties: agent.Specialties,
			MaxCapacity: agent.MaxCapacity,
		},
	})
	return nil
}

// RegisterCustomer adds a customer record.
func (s *TriageService) RegisterCustomer(ctx context.Context, customer domain.Customer) error {
	return apperrors.MapError(s.customers.Register(customer))
}

// RegisterPattern adds or overrides a problem pattern.
func (s *TriageService) RegisterPattern(ctx context.Context, pattern domain.ProblemPattern) error {
	return apperrors.MapError(s.patterns.Register(pattern))
}

// ReleaseAgent returns one unit of an agent's capacity. Callers that discard
// a produced recommendation use this to roll back the reservation.
func (s *TriageService) ReleaseAgent(ctx context.Context, agentID string) error {
	return apperrors.MapError(s.agents.Release(agentID))
}

// DashboardSummary is the read-only aggregate surface for dashboards.
type DashboardSummary struct {
	OpenTickets      int                     `json:"open_tickets"`
	RoutedTickets    int                     `json:"routed_tickets"`
	EscalatedTickets int                     `json:"escalated_tickets"`
	ResolvedTickets  int                     `json:"resolved_tickets"`
	CriticalTickets  int                     `json:"critical_tickets"`
	ByPriority       map[domain.Priority]int `json:"by_priority"`
	Decisions        map[string]int64        `json:"decisions"`
	Agents           []AgentUtilization      `json:"agents"`
}

// AgentUtilization reports one agent's live load.
type AgentUtilization struct {
	AgentID      string  `json:"agent_id"`
	CurrentLoad  int     `json:"current_load"`
	MaxCapacity  int     `json:"max_capacity"`
	LoadRatio    float64 `json:"load_ratio"`
	Satisfaction float64 `json:"satisfaction"`
}

// Dashboard aggregates counts over the store and registry.
func (s *TriageService) Dashboard(ctx context.Context) DashboardSummary {
	states := s.store.CountByState()
	priorities := s.store.CountByPriority()

	return DashboardSummary{
		OpenTickets:      states[domain.TicketStateOpen],
		RoutedTickets:    states[domain.TicketStateRouted],
		EscalatedTickets: states[domain.TicketStateEscalated],
		ResolvedTickets:  states[domain.TicketStateResolved],
		CriticalTickets:  priorities[domain.PriorityCritical],
		ByPriority:       priorities,
		Decisions:        s.metrics.DecisionCounts(),
		Agents:           s.AgentUtilization(ctx),
	}
}

// AgentUtilization reports live load per registered agent.
func (s *TriageService) AgentUtilization(ctx context.Context) []AgentUtilization {
	agents := s.agents.Snapshot()
	out := make([]AgentUtilization, 0, len(agents))
	for _, agent := range agents {
		out = append(out, AgentUtilization{
			AgentID:      agent.ID,
			CurrentLoad:  agent.CurrentLoad,
			MaxCapacity:  agent.MaxCapacity,
			LoadRatio:    agent.LoadRatio(),
			Satisfaction: agent.Satisfaction,
		})
	}
	return out
}

func (s *TriageService) rollbackReservation(rec *domain.RoutingRecommendation) {
	if rec == nil || rec.Decision != domain.DecisionHumanSpecialist {
		return
	}
	if err := s.agents.Release(rec.TargetID); err != nil {
		s.logger.Warn("reservation rollback failed", zap.String("agent_id", rec.TargetID), zap.Error(err))
	}
}

func (s *TriageService) setRecommendation(ticketID string, rec *domain.RoutingRecommendation) {
	s.recMu.Lock()
	s.recommendations[ticketID] = rec
	s.recMu.Unlock()
}

func (s *TriageService) getRecommendation(ticketID string) *domain.RoutingRecommendation {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	return s.recommendations[ticketID]
}

// persist writes the ticket and recommendation to the archive and cache,
// best effort: the decision already happened, collaborator failures only log.
func (s *TriageService) persist(ctx context.Context, ticket *domain.Ticket, rec *domain.RoutingRecommendation) {
	if s.archive != nil && ticket != nil {
		if err := s.archive.Upsert(ctx, ticket); err != nil {
			s.logger.Warn("archive ticket failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	if rec != nil {
		if s.recArchive != nil {
			if err := s.recArchive.Append(ctx, rec); err != nil {
				s.logger.Warn("archive recommendation failed", zap.String("ticket_id", rec.TicketID), zap.Error(err))
			}
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, rec); err != nil {
				s.logger.Warn("cache recommendation failed", zap.String("ticket_id", rec.TicketID), zap.Error(err))
			}
		}
	}
}

func (s *TriageService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
