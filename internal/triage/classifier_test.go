package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newTestClassifier(t *testing.T) *PriorityClassifier {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return NewPriorityClassifier(cfg)
}

func TestClassifyReturnsDeclaredLevels(t *testing.T) {
	classifier := newTestClassifier(t)
	for urgency := 0.0; urgency <= 1.0; urgency += 0.05 {
		signals := Signals{Urgency: urgency, Sentiment: -0.5, Complexity: 0.5}
		priority := classifier.Classify(signals, nil, domain.TierStandard)
		assert.True(t, priority.Valid(), "priority %q for urgency %.2f", priority, urgency)
	}
}

func TestClassifyMonotonicInUrgency(t *testing.T) {
	classifier := newTestClassifier(t)
	previous := 0
	for urgency := 0.0; urgency <= 1.0; urgency += 0.01 {
		signals := Signals{Urgency: urgency, Sentiment: -0.3, Complexity: 0.4}
		rank := classifier.Classify(signals, nil, domain.TierStandard).Rank()
		assert.GreaterOrEqual(t, rank, previous, "priority regressed at urgency %.2f", urgency)
		previous = rank
	}
}

func TestClassifyTierBoost(t *testing.T) {
	classifier := newTestClassifier(t)
	signals := Signals{Urgency: 0.55, Sentiment: 0, Complexity: 0.2}

	standard := classifier.Classify(signals, nil, domain.TierStandard)
	enterprise := classifier.Classify(signals, nil, domain.TierEnterprise)
	premium := classifier.Classify(signals, nil, domain.TierPremium)

	assert.Equal(t, standard.Rank()+1, enterprise.Rank())
	assert.Equal(t, enterprise, premium)
}

func TestClassifyTierBoostNeverPastCritical(t *testing.T) {
	classifier := newTestClassifier(t)
	signals := Signals{Urgency: 1.0, Sentiment: -1.0, Complexity: 1.0}

	priority := classifier.Classify(signals, nil, domain.TierEnterprise)
	assert.Equal(t, domain.PriorityCritical, priority)
}

func TestClassifyPatternFloorPolicy(t *testing.T) {
	classifier := newTestClassifier(t)
	lowSignals := Signals{Urgency: 0.1, Sentiment: 0.2, Complexity: 0.1}

	hint := &domain.ProblemPattern{
		Name:            "payment_failure",
		Keywords:        []string{"payment"},
		Category:        "billing",
		DefaultPriority: domain.PriorityHigh,
	}
	priority := classifier.Classify(lowSignals, hint, domain.TierStandard)
	assert.Equal(t, domain.PriorityHigh, priority)

	// a hot signal overrides a milder pattern floor
	hotSignals := Signals{Urgency: 1.0, Sentiment: -1.0, Complexity: 0.9}
	mild := &domain.ProblemPattern{
		Name:            "faq",
		Keywords:        []string{"question"},
		Category:        "general",
		DefaultPriority: domain.PriorityLow,
	}
	priority = classifier.Classify(hotSignals, mild, domain.TierStandard)
	assert.Equal(t, domain.PriorityCritical, priority)
}

func TestClassifyPositiveSentimentDoesNotLowerUrgency(t *testing.T) {
	classifier := newTestClassifier(t)
	neutral := Signals{Urgency: 0.8, Sentiment: 0, Complexity: 0.3}
	happy := Signals{Urgency: 0.8, Sentiment: 0.9, Complexity: 0.3}

	assert.Equal(t,
		classifier.Classify(neutral, nil, domain.TierStandard),
		classifier.Classify(happy, nil, domain.TierStandard))
}

func TestCertaintyStaysInBounds(t *testing.T) {
	classifier := newTestClassifier(t)
	for urgency := 0.0; urgency <= 1.0; urgency += 0.1 {
		certainty := classifier.Certainty(Signals{Urgency: urgency, Sentiment: -0.4, Complexity: 0.6})
		assert.GreaterOrEqual(t, certainty, 0.0)
		assert.LessOrEqual(t, certainty, 1.0)
	}
}
