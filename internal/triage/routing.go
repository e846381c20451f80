package triage

import (
	"fmt"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// RoutingEngine combines priority, category, pattern suggestion and live
// registry state into a RoutingRecommendation. Decision policy, in order:
//
//  1. CRITICAL priority escalates unless the matched pattern declares bot
//     automation as safe for the issue type.
//  2. A strong pattern match declaring BOT_AUTOMATION routes to the bot.
//  3. Otherwise the best available specialist is selected and capacity is
//     reserved before the recommendation is returned; a reservation lost to
//     a concurrent claimant is retried once against refreshed registry state.
//  4. With no candidates the ticket escalates.
type RoutingEngine struct {
	registry   *AgentRegistry
	classifier *PriorityClassifier
	routing    RoutingConfig
	resolution ResolutionConfig
}

// NewRoutingEngine constructs the engine.
func NewRoutingEngine(registry *AgentRegistry, classifier *PriorityClassifier, cfg *Config) *RoutingEngine {
	return &RoutingEngine{
		registry:   registry,
		classifier: classifier,
		routing:    cfg.Routing,
		resolution: cfg.Resolution,
	}
}

// Route produces the recommendation for a classified ticket. When the
// decision is HUMAN_SPECIALIST the target agent's capacity has already been
// reserved; a caller discarding the recommendation must release it.
func (e *RoutingEngine) Route(ticket *domain.Ticket, signals Signals, match *PatternMatch) (*domain.RoutingRecommendation, error) {
	rec := &domain.RoutingRecommendation{
		TicketID:  ticket.ID,
		CreatedAt: time.Now(),
	}

	matchStrength := 0.0
	if match != nil {
		matchStrength = match.Score
		rec.Reasoning = append(rec.Reasoning,
			fmt.Sprintf("pattern %q matched category %q with score %.2f",
				match.Pattern.Name, match.Pattern.Category, match.Score))
	} else {
		rec.Reasoning = append(rec.Reasoning, "no registered pattern matched; classified from signals only")
	}
	certainty := e.classifier.Certainty(signals)

	// Rule 1: CRITICAL overrides everything except pattern-sanctioned automation.
	automationSafe := match != nil && match.Pattern.DefaultRouting == domain.DecisionBotAutomation
	if ticket.Priority == domain.PriorityCritical && !automationSafe {
		rec.Decision = domain.DecisionEscalate
		rec.TargetID = e.routing.EscalationQueueID
		// policy certainty, not prediction uncertainty
		rec.Confidence = e.routing.CriticalConfidence
		rec.Reasoning = append(rec.Reasoning, "CRITICAL priority forces escalation")
		rec.Alternatives = e.candidateAlternatives(ticket.Category, matchStrength, certainty, 1)
		rec.EstimatedResolution = e.EstimateResolution(ticket.Priority, ticket.ComplexityScore, match)
		return rec, nil
	}

	// Rule 2: high-confidence automation match.
	if match != nil && match.Pattern.DefaultRouting == domain.DecisionBotAutomation &&
		match.Score >= e.routing.AutomationThreshold {
		rec.Decision = domain.DecisionBotAutomation
		rec.TargetID = "bot:" + match.Pattern.Name
		rec.Confidence = clamp(0.7*match.Score+0.3*certainty, 0, 1)
		rec.Reasoning = append(rec.Reasoning,
			fmt.Sprintf("pattern %q declares automation safe at match %.2f (threshold %.2f)",
				match.Pattern.Name, match.Score, e.routing.AutomationThreshold))
		rec.Alternatives = e.candidateAlternatives(ticket.Category, matchStrength, certainty, 2)
		rec.EstimatedResolution = e.EstimateResolution(ticket.Priority, ticket.ComplexityScore, match)
		return rec, nil
	}

	// Rule 3: best available specialist, capacity secured before returning.
	// Candidate ranking races with concurrent reservations, so a lost claim
	// is retried once against refreshed registry state.
	for attempt := 0; attempt < 2; attempt++ {
		candidates := e.registry.Candidates(ticket.Category)
		if len(candidates) == 0 {
			break
		}
		top := candidates[0]
		if err := e.registry.Reserve(top.ID); err != nil {
			if apperrors.HasCode(err, apperrors.CodeCapacityExceeded) {
				continue
			}
			return nil, err
		}
		rec.Decision = domain.DecisionHumanSpecialist
		rec.TargetID = top.ID
		rec.Confidence = e.specialistConfidence(top, ticket.Category, matchStrength, certainty)
		rec.Reasoning = append(rec.Reasoning,
			fmt.Sprintf("specialist %s selected for category %q (load %d/%d, rating %.1f)",
				top.ID, ticket.Category, top.CurrentLoad, top.MaxCapacity, top.Satisfaction),
			"capacity reserved on "+top.ID)
		for _, alt := range candidates[1:] {
			rec.Alternatives = append(rec.Alternatives, domain.RoutingAlternative{
				Decision:   domain.DecisionHumanSpecialist,
				TargetID:   alt.ID,
				Confidence: e.specialistConfidence(alt, ticket.Category, matchStrength, certainty),
			})
			if len(rec.Alternatives) == 2 {
				break
			}
		}
		rec.EstimatedResolution = e.EstimateResolution(ticket.Priority, ticket.ComplexityScore, match)
		return rec, nil
	}

	// Rule 4: nothing available.
	rec.Decision = domain.DecisionEscalate
	rec.TargetID = e.routing.EscalationQueueID
	rec.Confidence = clamp(0.4+0.3*certainty, 0, 1)
	rec.Reasoning = append(rec.Reasoning,
		fmt.Sprintf("no available specialist for category %q", ticket.Category))
	rec.EstimatedResolution = e.EstimateResolution(ticket.Priority, ticket.ComplexityScore, match)
	return rec, nil
}

// specialistConfidence blends pattern match strength, agent fit and signal
// certainty into [0, 1]. Agent fit rewards a direct specialty over the
// general fallback and a lightly loaded agent over a saturated one.
func (e *RoutingEngine) specialistConfidence(agent domain.Agent, category string, matchStrength, certainty float64) float64 {
	specialtyFit := 0.6
	for _, s := range agent.Specialties {
		if s == category {
			specialtyFit = 1.0
			break
		}
	}
	fit := specialtyFit * (1 - agent.LoadRatio()*0.5)
	return clamp(0.3*matchStrength+0.45*fit+0.25*certainty, 0, 1)
}

func (e *RoutingEngine) candidateAlternatives(category string, matchStrength, certainty float64, limit int) []domain.RoutingAlternative {
	candidates := e.registry.Candidates(category)
	alternatives := make([]domain.RoutingAlternative, 0, limit)
	for _, c := range candidates {
		alternatives = append(alternatives, domain.RoutingAlternative{
			Decision:   domain.DecisionHumanSpecialist,
			TargetID:   c.ID,
			Confidence: e.specialistConfidence(c, category, matchStrength, certainty),
		})
		if len(alternatives) == limit {
			break
		}
	}
	return alternatives
}

// EstimateResolution derives the expected handling time: the matched
// pattern's declared time when available, else the configured default for
// the priority, scaled linearly by complexity and clamped to the configured
// floor and ceiling.
func (e *RoutingEngine) EstimateResolution(priority domain.Priority, complexity float64, match *PatternMatch) time.Duration {
	minutes := e.resolution.DefaultMinutes[priority]
	if match != nil && match.Pattern.ExpectedResolutionMinutes > 0 {
		minutes = match.Pattern.ExpectedResolutionMinutes
	}
	adjusted := float64(minutes) * (1 + e.resolution.ComplexityFactor*complexity)
	if adjusted < float64(e.resolution.FloorMinutes) {
		adjusted = float64(e.resolution.FloorMinutes)
	}
	if adjusted > float64(e.resolution.CeilingMinutes) {
		adjusted = float64(e.resolution.CeilingMinutes)
	}
	return time.Duration(adjusted) * time.Minute
}
