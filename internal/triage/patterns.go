package triage

import (
	"strings"
	"sync"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// PatternMatch couples a registered pattern with its keyword match score.
type PatternMatch struct {
	Pattern domain.ProblemPattern
	Score   float64 // fraction of pattern keywords present, [0, 1]
}

// PatternTable is the registered, override-able table of problem patterns.
// Entries are validated on insert; registration order is preserved and is
// the documented tie-break for equal match scores (first registered wins).
// Re-registering a name overrides the entry in place, keeping its position.
type PatternTable struct {
	mu       sync.RWMutex
	ordered  []domain.ProblemPattern
	index    map[string]int
	minScore float64
}

// NewPatternTable builds a table seeded from validated configuration.
func NewPatternTable(cfg *Config) (*PatternTable, error) {
	t := &PatternTable{
		index:    make(map[string]int),
		minScore: cfg.Routing.PatternMinScore,
	}
	for _, p := range cfg.Patterns {
		if err := t.Register(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register validates and inserts a pattern, overriding any entry with the
// same name without changing its registration position.
func (t *PatternTable) Register(p domain.ProblemPattern) error {
	if err := validatePattern(p); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"pattern": p.Name})
	}
	normalized := p
	normalized.Keywords = make([]string, len(p.Keywords))
	for i, kw := range p.Keywords {
		normalized.Keywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if pos, ok := t.index[p.Name]; ok {
		t.ordered[pos] = normalized
		return nil
	}
	t.index[p.Name] = len(t.ordered)
	t.ordered = append(t.ordered, normalized)
	return nil
}

// List returns the registered patterns in registration order.
func (t *PatternTable) List() []domain.ProblemPattern {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.ProblemPattern, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Match scores every registered pattern by keyword-subset containment and
// returns the highest scorer at or above the minimum threshold. Ties go to
// the first registered pattern. A false return means no pattern matched and
// downstream classification falls back to signals only.
func (t *PatternTable) Match(keywords []string, content string) (PatternMatch, bool) {
	keywordSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		keywordSet[strings.ToLower(kw)] = struct{}{}
	}
	text := strings.ToLower(content)

	t.mu.RLock()
	defer t.mu.RUnlock()

	best := PatternMatch{}
	found := false
	for _, p := range t.ordered {
		score := matchScore(p, keywordSet, text)
		if score < t.minScore {
			continue
		}
		// strict > keeps the first registered pattern on ties
		if !found || score > best.Score {
			best = PatternMatch{Pattern: p, Score: score}
			found = true
		}
	}
	return best, found
}

func matchScore(p domain.ProblemPattern, keywordSet map[string]struct{}, text string) float64 {
	if len(p.Keywords) == 0 {
		return 0
	}
	present := 0
	for _, kw := range p.Keywords {
		if _, ok := keywordSet[kw]; ok {
			present++
			continue
		}
		// multi-word indicators are matched against the raw content
		if strings.Contains(text, kw) {
			present++
		}
	}
	return float64(present) / float64(len(p.Keywords))
}
