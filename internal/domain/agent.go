package domain

import "time"

// SpecialtyGeneral marks an agent as eligible for any ticket category.
const SpecialtyGeneral = "general"

// Agent models a human responder with bounded concurrent capacity.
type Agent struct {
	ID           string
	Name         string
	Specialties  []string
	CurrentLoad  int
	MaxCapacity  int
	Satisfaction float64 // rating in [0, 5]
	CreatedAt    time.Time
}

// HasSpecialty reports whether the agent covers the given category,
// either directly or via the general specialty.
func (a Agent) HasSpecialty(category string) bool {
	for _, s := range a.Specialties {
		if s == category || s == SpecialtyGeneral {
			return true
		}
	}
	return false
}

// LoadRatio returns current load as a fraction of capacity.
func (a Agent) LoadRatio() float64 {
	if a.MaxCapacity <= 0 {
		return 1
	}
	return float64(a.CurrentLoad) / float64(a.MaxCapacity)
}

// HasCapacity reports whether the agent can take one more ticket.
func (a Agent) HasCapacity() bool {
	return a.CurrentLoad < a.MaxCapacity
}
