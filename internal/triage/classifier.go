package triage

import (
	"math"

	"github.com/spec-kit/triage-service/internal/domain"
)

// PriorityClassifier fuses extracted signals, the pattern suggestion and
// customer context into one discrete priority level. Thresholds and weights
// come from validated configuration; the classifier itself is immutable once
// constructed.
type PriorityClassifier struct {
	cfg PriorityConfig
}

// NewPriorityClassifier builds a classifier from validated configuration.
func NewPriorityClassifier(cfg *Config) *PriorityClassifier {
	return &PriorityClassifier{cfg: cfg.Priority}
}

// Classify fuses the signals into a priority. The fused score is monotonic
// non-decreasing in urgency. Premium and enterprise customers shift the
// signal-derived level one step toward CRITICAL. A pattern-declared default
// priority acts as a severity floor: the final value is the maximum severity
// of the computed level and the hint, keeping operator-curated patterns
// authoritative for known issue types while still allowing signal-driven
// escalation.
func (c *PriorityClassifier) Classify(signals Signals, hint *domain.ProblemPattern, tier domain.CustomerTier) domain.Priority {
	level := c.levelFromScore(c.FusedScore(signals))
	if tier.Boosted() {
		level = level.Bump()
	}
	if hint != nil && hint.DefaultPriority != "" {
		level = domain.MaxSeverity(level, hint.DefaultPriority)
	}
	return level
}

// FusedScore returns the weighted signal combination in [0, 1]. Only the
// negative magnitude of sentiment contributes: an angry ticket raises the
// score, a happy one does not lower urgency.
func (c *PriorityClassifier) FusedScore(signals Signals) float64 {
	negMagnitude := math.Max(0, -signals.Sentiment)
	total := c.cfg.UrgencyWeight + c.cfg.SentimentWeight + c.cfg.ComplexityWeight
	score := (c.cfg.UrgencyWeight*signals.Urgency +
		c.cfg.SentimentWeight*negMagnitude +
		c.cfg.ComplexityWeight*signals.Complexity) / total
	return clamp(score, 0, 1)
}

// Certainty measures how far the fused score sits from its nearest decision
// threshold, normalized into [0, 1]. Scores near a cut point yield low
// certainty; scores deep inside a band yield high certainty.
func (c *PriorityClassifier) Certainty(signals Signals) float64 {
	score := c.FusedScore(signals)
	nearest := math.Inf(1)
	for _, t := range []float64{c.cfg.CriticalThreshold, c.cfg.HighThreshold, c.cfg.MediumThreshold} {
		if d := math.Abs(score - t); d < nearest {
			nearest = d
		}
	}
	return clamp(0.5+nearest*2, 0, 1)
}

func (c *PriorityClassifier) levelFromScore(score float64) domain.Priority {
	switch {
	case score >= c.cfg.CriticalThreshold:
		return domain.PriorityCritical
	case score >= c.cfg.HighThreshold:
		return domain.PriorityHigh
	case score >= c.cfg.MediumThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
