package triage

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// Config holds every tunable of the decision pipeline: lexicons, thresholds,
// blending weights, resolution-time defaults and the seed pattern table.
// It is data, not behavior, and must pass Validate before any ticket flows.
type Config struct {
	Sentiment  SentimentConfig         `yaml:"sentiment"`
	Urgency    UrgencyConfig           `yaml:"urgency"`
	Priority   PriorityConfig          `yaml:"priority"`
	Routing    RoutingConfig           `yaml:"routing"`
	Resolution ResolutionConfig        `yaml:"resolution"`
	Patterns   []domain.ProblemPattern `yaml:"patterns"`
}

// SentimentConfig configures the lexical sentiment scorer.
type SentimentConfig struct {
	PositiveWords []string            `yaml:"positive_words"`
	NegativeWords []string            `yaml:"negative_words"`
	Thresholds    SentimentThresholds `yaml:"thresholds"`
}

// SentimentThresholds partition the [-1,1] sentiment range. They must be
// strictly decreasing from very_positive to negative.
type SentimentThresholds struct {
	VeryPositive float64 `yaml:"very_positive"`
	Positive     float64 `yaml:"positive"`
	Neutral      float64 `yaml:"neutral"`
	Negative     float64 `yaml:"negative"`
}

// UrgencyTier holds the indicator phrases and score band for one severity tier.
type UrgencyTier struct {
	Indicators []string `yaml:"indicators"`
	Floor      float64  `yaml:"floor"`
	Ceiling    float64  `yaml:"ceiling"`
}

// UrgencyConfig configures tiered urgency detection. The highest tier with a
// matching indicator wins; match count modulates the score inside the band.
type UrgencyConfig struct {
	High   UrgencyTier `yaml:"high"`
	Medium UrgencyTier `yaml:"medium"`
	Low    UrgencyTier `yaml:"low"`
}

// PriorityConfig configures the weighted signal fusion and its cut points.
type PriorityConfig struct {
	UrgencyWeight    float64 `yaml:"urgency_weight"`
	SentimentWeight  float64 `yaml:"sentiment_weight"`
	ComplexityWeight float64 `yaml:"complexity_weight"`
	// Thresholds on the fused [0,1] score, strictly decreasing.
	CriticalThreshold float64 `yaml:"critical_threshold"`
	HighThreshold     float64 `yaml:"high_threshold"`
	MediumThreshold   float64 `yaml:"medium_threshold"`
}

// RoutingConfig configures the decision policy of the routing engine.
type RoutingConfig struct {
	EscalationQueueID   string  `yaml:"escalation_queue_id"`
	PatternMinScore     float64 `yaml:"pattern_min_score"`
	AutomationThreshold float64 `yaml:"automation_threshold"`
	CriticalConfidence  float64 `yaml:"critical_confidence"`
}

// ResolutionConfig configures resolution-time estimation.
type ResolutionConfig struct {
	DefaultMinutes   map[domain.Priority]int `yaml:"default_minutes"`
	ComplexityFactor float64                 `yaml:"complexity_factor"`
	FloorMinutes     int                     `yaml:"floor_minutes"`
	CeilingMinutes   int                     `yaml:"ceiling_minutes"`
}

// DefaultConfig returns the built-in decision configuration. A YAML file
// overlays these values; operators normally tune rather than replace them.
func DefaultConfig() *Config {
	return &Config{
		Sentiment: SentimentConfig{
			PositiveWords: []string{
				"thanks", "thank", "great", "good", "appreciate", "love",
				"excellent", "happy", "pleased", "wonderful", "helpful",
			},
			NegativeWords: []string{
				"angry", "frustrated", "terrible", "awful", "unacceptable",
				"worst", "broken", "useless", "disappointed", "furious",
				"ridiculous", "horrible", "annoyed", "upset",
			},
			Thresholds: SentimentThresholds{
				VeryPositive: 0.6,
				Positive:     0.2,
				Neutral:      -0.2,
				Negative:     -0.6,
			},
		},
		Urgency: UrgencyConfig{
			High: UrgencyTier{
				Indicators: []string{
					"urgent", "immediately", "asap", "emergency", "critical",
					"down", "outage", "completely inaccessible", "data loss",
					"production", "cannot access", "security breach",
				},
				Floor:   0.7,
				Ceiling: 1.0,
			},
			Medium: UrgencyTier{
				Indicators: []string{
					"soon", "today", "not working", "error", "failed",
					"blocked", "deadline", "important",
				},
				Floor:   0.4,
				Ceiling: 0.7,
			},
			Low: UrgencyTier{
				Indicators: []string{
					"when possible", "question", "wondering", "how do i",
					"feature request", "suggestion",
				},
				Floor:   0.15,
				Ceiling: 0.4,
			},
		},
		Priority: PriorityConfig{
			UrgencyWeight:     0.55,
			SentimentWeight:   0.25,
			ComplexityWeight:  0.2,
			CriticalThreshold: 0.68,
			HighThreshold:     0.5,
			MediumThreshold:   0.3,
		},
		Routing: RoutingConfig{
			EscalationQueueID:   "escalation-queue",
			PatternMinScore:     0.5,
			AutomationThreshold: 0.75,
			CriticalConfidence:  0.95,
		},
		Resolution: ResolutionConfig{
			DefaultMinutes: map[domain.Priority]int{
				domain.PriorityCritical: 60,
				domain.PriorityHigh:     240,
				domain.PriorityMedium:   480,
				domain.PriorityLow:      1440,
			},
			ComplexityFactor: 0.5,
			FloorMinutes:     15,
			CeilingMinutes:   2880,
		},
	}
}

// LoadConfig reads path over the built-in defaults. A missing file is not an
// error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("read triage config: %v", err), map[string]any{"path": path})
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("parse triage config: %v", err), map[string]any{"path": path})
	}
	return cfg, nil
}

// Validate rejects malformed configuration before any ticket is processed.
// Violations are configuration errors, never deferred to classification time.
func (c *Config) Validate() error {
	if len(c.Sentiment.PositiveWords) == 0 || len(c.Sentiment.NegativeWords) == 0 {
		return apperrors.NewConfigurationError("sentiment lexicons must not be empty", nil)
	}
	st := c.Sentiment.Thresholds
	if !(st.VeryPositive > st.Positive && st.Positive > st.Neutral && st.Neutral > st.Negative) {
		return apperrors.NewConfigurationError(
			"sentiment thresholds must be strictly decreasing (very_positive > positive > neutral > negative)",
			map[string]any{
				"very_positive": st.VeryPositive,
				"positive":      st.Positive,
				"neutral":       st.Neutral,
				"negative":      st.Negative,
			})
	}

	tiers := []struct {
		name string
		tier UrgencyTier
	}{
		{"high", c.Urgency.High},
		{"medium", c.Urgency.Medium},
		{"low", c.Urgency.Low},
	}
	for _, t := range tiers {
		if len(t.tier.Indicators) == 0 {
			return apperrors.NewConfigurationError("urgency indicator tier must not be empty",
				map[string]any{"tier": t.name})
		}
		if t.tier.Floor < 0 || t.tier.Ceiling > 1 || t.tier.Floor > t.tier.Ceiling {
			return apperrors.NewConfigurationError("urgency tier band must satisfy 0 <= floor <= ceiling <= 1",
				map[string]any{"tier": t.name, "floor": t.tier.Floor, "ceiling": t.tier.Ceiling})
		}
	}
	if !(c.Urgency.High.Floor > c.Urgency.Medium.Floor && c.Urgency.Medium.Floor > c.Urgency.Low.Floor) {
		return apperrors.NewConfigurationError("urgency tiers must be strictly decreasing (high > medium > low)",
			map[string]any{
				"high":   c.Urgency.High.Floor,
				"medium": c.Urgency.Medium.Floor,
				"low":    c.Urgency.Low.Floor,
			})
	}

	p := c.Priority
	if p.UrgencyWeight < 0 || p.SentimentWeight < 0 || p.ComplexityWeight < 0 ||
		p.UrgencyWeight+p.SentimentWeight+p.ComplexityWeight <= 0 {
		return apperrors.NewConfigurationError("priority weights must be non-negative with positive sum", nil)
	}
	if !(p.CriticalThreshold > p.HighThreshold && p.HighThreshold > p.MediumThreshold && p.MediumThreshold > 0) {
		return apperrors.NewConfigurationError(
			"priority thresholds must be strictly decreasing (critical > high > medium > 0)",
			map[string]any{
				"critical": p.CriticalThreshold,
				"high":     p.HighThreshold,
				"medium":   p.MediumThreshold,
			})
	}
	if p.CriticalThreshold > 1 {
		return apperrors.NewConfigurationError("priority thresholds must lie within (0, 1]", nil)
	}

	r := c.Routing
	if strings.TrimSpace(r.EscalationQueueID) == "" {
		return apperrors.NewConfigurationError("routing escalation_queue_id must not be empty", nil)
	}
	for name, v := range map[string]float64{
		"pattern_min_score":    r.PatternMinScore,
		"automation_threshold": r.AutomationThreshold,
		"critical_confidence":  r.CriticalConfidence,
	} {
		if v < 0 || v > 1 {
			return apperrors.NewConfigurationError("routing threshold must lie within [0, 1]",
				map[string]any{"field": name, "value": v})
		}
	}

	res := c.Resolution
	for _, pr := range []domain.Priority{domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
		if res.DefaultMinutes[pr] <= 0 {
			return apperrors.NewConfigurationError("resolution default_minutes required for every priority",
				map[string]any{"priority": string(pr)})
		}
	}
	if res.ComplexityFactor < 0 {
		return apperrors.NewConfigurationError("resolution complexity_factor must be non-negative", nil)
	}
	if res.FloorMinutes <= 0 || res.CeilingMinutes < res.FloorMinutes {
		return apperrors.NewConfigurationError("resolution floor/ceiling must satisfy 0 < floor <= ceiling", nil)
	}

	for i, pat := range c.Patterns {
		if err := validatePattern(pat); err != nil {
			return apperrors.NewConfigurationError(fmt.Sprintf("pattern %d invalid: %v", i, err), nil)
		}
	}
	return nil
}

func validatePattern(p domain.ProblemPattern) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name required")
	}
	if len(p.Keywords) == 0 {
		return fmt.Errorf("keywords required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("category required")
	}
	if p.DefaultPriority != "" && !p.DefaultPriority.Valid() {
		return fmt.Errorf("unknown default priority %q", p.DefaultPriority)
	}
	if p.DefaultRouting != "" && !p.DefaultRouting.Valid() {
		return fmt.Errorf("unknown default routing %q", p.DefaultRouting)
	}
	if p.ExpectedResolutionMinutes < 0 {
		return fmt.Errorf("expected resolution minutes must be non-negative")
	}
	return nil
}
