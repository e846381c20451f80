package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newTestExtractor(t *testing.T) *SignalExtractor {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return NewSignalExtractor(cfg)
}

func TestExtractEmptyTextYieldsNeutralScores(t *testing.T) {
	extractor := newTestExtractor(t)
	signals := extractor.Extract("", "", domain.ChannelEmail)

	assert.Equal(t, 0.0, signals.Sentiment)
	assert.LessOrEqual(t, signals.Urgency, 0.1)
	assert.Equal(t, 0.0, signals.Complexity)
	assert.Empty(t, signals.Keywords)
}

func TestExtractScoresStayInBounds(t *testing.T) {
	extractor := newTestExtractor(t)
	inputs := []struct {
		subject, content string
		channel          domain.Channel
	}{
		{"Production server down", "everything is completely inaccessible and broken, urgent, emergency", domain.ChannelPhone},
		{"thanks", "great service, really appreciate the help, excellent", domain.ChannelEmail},
		{"angry angry angry", "terrible awful unacceptable worst broken useless", domain.ChannelChat},
		{"question", "wondering how do i export my data when possible", domain.ChannelWeb},
	}
	for _, in := range inputs {
		signals := extractor.Extract(in.subject, in.content, in.channel)
		assert.GreaterOrEqual(t, signals.Sentiment, -1.0)
		assert.LessOrEqual(t, signals.Sentiment, 1.0)
		assert.GreaterOrEqual(t, signals.Urgency, 0.0)
		assert.LessOrEqual(t, signals.Urgency, 1.0)
		assert.GreaterOrEqual(t, signals.Complexity, 0.0)
		assert.LessOrEqual(t, signals.Complexity, 1.0)
	}
}

func TestUrgencyHighestTierWins(t *testing.T) {
	extractor := newTestExtractor(t)
	cfg := DefaultConfig()

	high := extractor.Extract("server down", "production outage, urgent", domain.ChannelEmail)
	assert.GreaterOrEqual(t, high.Urgency, cfg.Urgency.High.Floor)

	medium := extractor.Extract("export not working", "getting an error on export", domain.ChannelEmail)
	assert.GreaterOrEqual(t, medium.Urgency, cfg.Urgency.Medium.Floor)
	assert.Less(t, medium.Urgency, cfg.Urgency.High.Floor)

	low := extractor.Extract("question", "wondering about invoices when possible", domain.ChannelEmail)
	assert.GreaterOrEqual(t, low.Urgency, cfg.Urgency.Low.Floor)
	assert.Less(t, low.Urgency, cfg.Urgency.Medium.Floor)
}

func TestUrgencyMatchCountStaysInsideBand(t *testing.T) {
	extractor := newTestExtractor(t)
	cfg := DefaultConfig()

	one := extractor.Extract("urgent", "", domain.ChannelEmail)
	many := extractor.Extract("urgent emergency", "production down, outage, data loss, critical, asap", domain.ChannelEmail)

	assert.Greater(t, many.Urgency, one.Urgency)
	assert.LessOrEqual(t, many.Urgency, cfg.Urgency.High.Ceiling)
}

func TestSentimentDirection(t *testing.T) {
	extractor := newTestExtractor(t)

	positive := extractor.Extract("thanks", "great support, appreciate it", domain.ChannelEmail)
	assert.Greater(t, positive.Sentiment, 0.0)

	negative := extractor.Extract("furious", "this is terrible and unacceptable", domain.ChannelEmail)
	assert.Less(t, negative.Sentiment, 0.0)
}

func TestComplexitySynchronousChannelBias(t *testing.T) {
	extractor := newTestExtractor(t)
	content := "my invoice export fails with an error message"

	email := extractor.Extract("billing", content, domain.ChannelEmail)
	phone := extractor.Extract("billing", content, domain.ChannelPhone)

	assert.Greater(t, phone.Complexity, email.Complexity)
}

func TestComplexityMultipleIssuesRaiseScore(t *testing.T) {
	extractor := newTestExtractor(t)

	single := extractor.Extract("billing", "my invoice is wrong", domain.ChannelEmail)
	multi := extractor.Extract("billing", "my invoice is wrong, also the export fails, additionally several charts are empty as well", domain.ChannelEmail)

	assert.Greater(t, multi.Complexity, single.Complexity)
}

func TestKeywordsDeduplicatedAndLowercased(t *testing.T) {
	extractor := newTestExtractor(t)
	signals := extractor.Extract("Payment PAYMENT payment", "declined declined card", domain.ChannelEmail)

	assert.Contains(t, signals.Keywords, "payment")
	assert.Contains(t, signals.Keywords, "declined")
	counts := map[string]int{}
	for _, kw := range signals.Keywords {
		counts[kw]++
	}
	assert.Equal(t, 1, counts["payment"])
}
