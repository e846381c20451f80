package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

func newTestTable(t *testing.T, patterns ...domain.ProblemPattern) *PatternTable {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Patterns = nil
	table, err := NewPatternTable(cfg)
	require.NoError(t, err)
	for _, p := range patterns {
		require.NoError(t, table.Register(p))
	}
	return table
}

func passwordResetPattern() domain.ProblemPattern {
	return domain.ProblemPattern{
		Name:                      "password_reset",
		Keywords:                  []string{"password", "reset", "locked", "login"},
		Category:                  "account",
		DefaultPriority:           domain.PriorityLow,
		DefaultRouting:            domain.DecisionBotAutomation,
		ExpectedResolutionMinutes: 10,
	}
}

func paymentFailurePattern() domain.ProblemPattern {
	return domain.ProblemPattern{
		Name:                      "payment_failure",
		Keywords:                  []string{"payment", "charge", "declined", "card"},
		Category:                  "billing",
		DefaultPriority:           domain.PriorityHigh,
		DefaultRouting:            domain.DecisionHumanSpecialist,
		ExpectedResolutionMinutes: 120,
	}
}

func TestMatchScoresKeywordFraction(t *testing.T) {
	table := newTestTable(t, passwordResetPattern())

	match, ok := table.Match([]string{"password", "reset"}, "I need a password reset")
	require.True(t, ok)
	assert.Equal(t, "password_reset", match.Pattern.Name)
	assert.InDelta(t, 0.5, match.Score, 1e-9)
}

func TestMatchBelowThresholdReturnsFalse(t *testing.T) {
	table := newTestTable(t, passwordResetPattern())

	_, ok := table.Match([]string{"password"}, "something about my password")
	assert.False(t, ok, "1 of 4 keywords is below the 0.5 threshold")

	_, ok = table.Match([]string{"shipping", "address"}, "please update my shipping address")
	assert.False(t, ok)
}

func TestMatchHighestScorerWins(t *testing.T) {
	table := newTestTable(t, passwordResetPattern(), paymentFailurePattern())

	match, ok := table.Match(
		[]string{"payment", "declined", "card", "login"},
		"my payment was declined, card rejected at login")
	require.True(t, ok)
	assert.Equal(t, "payment_failure", match.Pattern.Name)
	assert.InDelta(t, 0.75, match.Score, 1e-9)
}

func TestMatchTieGoesToFirstRegistered(t *testing.T) {
	first := domain.ProblemPattern{
		Name:            "first",
		Keywords:        []string{"alpha", "beta"},
		Category:        "general",
		DefaultPriority: domain.PriorityLow,
		DefaultRouting:  domain.DecisionHumanSpecialist,
	}
	second := domain.ProblemPattern{
		Name:            "second",
		Keywords:        []string{"alpha", "gamma"},
		Category:        "general",
		DefaultPriority: domain.PriorityLow,
		DefaultRouting:  domain.DecisionHumanSpecialist,
	}
	table := newTestTable(t, first, second)

	match, ok := table.Match([]string{"alpha", "beta", "gamma"}, "")
	require.True(t, ok)
	assert.Equal(t, "first", match.Pattern.Name)
	assert.InDelta(t, 1.0, match.Score, 1e-9)
}

func TestMatchMultiWordKeywordAgainstContent(t *testing.T) {
	outage := domain.ProblemPattern{
		Name:            "service_outage",
		Keywords:        []string{"outage", "data loss"},
		Category:        "infrastructure",
		DefaultPriority: domain.PriorityCritical,
		DefaultRouting:  domain.DecisionEscalate,
	}
	table := newTestTable(t, outage)

	// "data loss" never survives tokenization; containment does the work
	match, ok := table.Match([]string{"servers"}, "we are seeing data loss across servers")
	require.True(t, ok)
	assert.Equal(t, "service_outage", match.Pattern.Name)
	assert.InDelta(t, 0.5, match.Score, 1e-9)
}

func TestRegisterOverrideKeepsPosition(t *testing.T) {
	table := newTestTable(t, passwordResetPattern(), paymentFailurePattern())

	updated := passwordResetPattern()
	updated.ExpectedResolutionMinutes = 5
	require.NoError(t, table.Register(updated))

	patterns := table.List()
	require.Len(t, patterns, 2)
	assert.Equal(t, "password_reset", patterns[0].Name)
	assert.Equal(t, 5, patterns[0].ExpectedResolutionMinutes)
	assert.Equal(t, "payment_failure", patterns[1].Name)
}

func TestRegisterRejectsInvalidPattern(t *testing.T) {
	table := newTestTable(t)

	err := table.Register(domain.ProblemPattern{
		Name:           "no_keywords",
		Category:       "general",
		DefaultRouting: domain.DecisionHumanSpecialist,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	err = table.Register(domain.ProblemPattern{
		Name:           "bad_routing",
		Keywords:       []string{"alpha"},
		Category:       "general",
		DefaultRouting: "CARRIER_PIGEON",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestRegisterNormalizesKeywordCase(t *testing.T) {
	table := newTestTable(t, domain.ProblemPattern{
		Name:            "refund_request",
		Keywords:        []string{"  Refund ", "MONEY BACK"},
		Category:        "billing",
		DefaultPriority: domain.PriorityMedium,
		DefaultRouting:  domain.DecisionHumanSpecialist,
	})

	match, ok := table.Match([]string{"refund"}, "i want my money back")
	require.True(t, ok)
	assert.InDelta(t, 1.0, match.Score, 1e-9)
}
