package dto

// RegisterAgentRequest is the agent registration payload.
type RegisterAgentRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Specialties  []string `json:"specialties"`
	MaxCapacity  int      `json:"max_capacity"`
	Satisfaction float64  `json:"satisfaction"`
}

// RegisterCustomerRequest is the customer registration payload.
type RegisterCustomerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// RegisterPatternRequest is the problem pattern registration payload.
type RegisterPatternRequest struct {
	Name                      string   `json:"name"`
	Keywords                  []string `json:"keywords"`
	Category                  string   `json:"category"`
	DefaultPriority           string   `json:"default_priority,omitempty"`
	DefaultRouting            string   `json:"default_routing,omitempty"`
	ExpectedResolutionMinutes int      `json:"expected_resolution_minutes,omitempty"`
}
