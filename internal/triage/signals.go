package triage

import (
	"sort"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// Signals are the lexical scores and keyword evidence derived from one
// submission. All scores stay inside their declared ranges.
type Signals struct {
	Sentiment  float64 // [-1, 1]
	Urgency    float64 // [0, 1]
	Complexity float64 // [0, 1]
	Keywords   []string
}

// SignalExtractor derives sentiment, urgency and complexity scores plus a
// keyword set from ticket text. Extraction is a pure function of the text and
// the configured lexicons: no hidden state, no I/O, no error conditions.
type SignalExtractor struct {
	sentiment SentimentConfig
	urgency   UrgencyConfig
}

// NewSignalExtractor builds an extractor from validated configuration.
func NewSignalExtractor(cfg *Config) *SignalExtractor {
	return &SignalExtractor{
		sentiment: cfg.Sentiment,
		urgency:   cfg.Urgency,
	}
}

// Extract scores the submission. Empty text yields neutral sentiment and
// minimum urgency/complexity.
func (e *SignalExtractor) Extract(subject, content string, channel domain.Channel) Signals {
	text := strings.ToLower(strings.TrimSpace(subject + " " + content))
	return Signals{
		Sentiment:  e.sentimentScore(text),
		Urgency:    e.urgencyScore(text),
		Complexity: e.complexityScore(text, channel),
		Keywords:   extractKeywords(text),
	}
}

// sentimentScore normalizes positive/negative indicator counts into [-1, 1],
// clipped at the boundaries. Never NaN.
func (e *SignalExtractor) sentimentScore(text string) float64 {
	if text == "" {
		return 0
	}
	positive := countOccurrences(text, e.sentiment.PositiveWords)
	negative := countOccurrences(text, e.sentiment.NegativeWords)
	total := positive + negative
	if total == 0 {
		return 0
	}
	return clamp(float64(positive-negative)/float64(total), -1, 1)
}

// urgencyScore tests indicator phrases per severity tier and takes the
// highest tier matched. Presence count modulates the score within the tier's
// band; the band ceiling is never exceeded.
func (e *SignalExtractor) urgencyScore(text string) float64 {
	for _, tier := range []UrgencyTier{e.urgency.High, e.urgency.Medium, e.urgency.Low} {
		matches := countOccurrences(text, tier.Indicators)
		if matches == 0 {
			continue
		}
		span := tier.Ceiling - tier.Floor
		step := span / 4
		return clamp(tier.Floor+float64(matches-1)*step, tier.Floor, tier.Ceiling)
	}
	return 0.05
}

// complexityScore blends text length, distinct issue keyword count and the
// channel's synchronous-urgency bias.
func (e *SignalExtractor) complexityScore(text string, channel domain.Channel) float64 {
	if text == "" {
		return 0
	}
	score := clamp(float64(len(text))/2000, 0, 0.5)

	issues := 0
	for _, marker := range issueMarkers {
		if strings.Contains(text, marker) {
			issues++
		}
	}
	if issues > 3 {
		issues = 3
	}
	score += float64(issues) * 0.1

	if channel.Synchronous() {
		score += 0.1
	}
	return clamp(score, 0, 1)
}

// issueMarkers indicate that a ticket spans more than one distinct problem.
var issueMarkers = []string{
	"also", "another", "additionally", "second issue", "as well",
	"multiple", "several", "both",
}

// stopwords are excluded from the keyword set.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "they": {}, "them": {}, "there": {}, "their": {}, "would": {},
	"could": {}, "should": {}, "about": {}, "which": {}, "when": {}, "what": {},
	"your": {}, "please": {}, "very": {}, "just": {}, "into": {}, "some": {},
	"will": {}, "after": {}, "before": {}, "because": {}, "then": {},
}

func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 4 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		seen[f] = struct{}{}
	}
	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

func countOccurrences(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
