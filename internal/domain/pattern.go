package domain

// CategoryGeneral is the fallback category when no pattern matches.
const CategoryGeneral = "general"

// ProblemPattern is an operator-registered rule mapping keyword evidence to
// category, priority and routing defaults. Entries are configuration data:
// registering one never changes decision code.
type ProblemPattern struct {
	Name                      string          `yaml:"name" json:"name"`
	Keywords                  []string        `yaml:"keywords" json:"keywords"`
	Category                  string          `yaml:"category" json:"category"`
	DefaultPriority           Priority        `yaml:"default_priority,omitempty" json:"default_priority,omitempty"`
	DefaultRouting            RoutingDecision `yaml:"default_routing,omitempty" json:"default_routing,omitempty"`
	ExpectedResolutionMinutes int             `yaml:"expected_resolution_minutes,omitempty" json:"expected_resolution_minutes,omitempty"`
}
