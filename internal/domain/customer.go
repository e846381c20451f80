package domain

import "time"

// CustomerTier enumerates service tiers affecting classification.
type CustomerTier string

const (
	TierStandard   CustomerTier = "standard"
	TierPremium    CustomerTier = "premium"
	TierEnterprise CustomerTier = "enterprise"
)

// Valid reports whether the tier is one of the declared values.
func (t CustomerTier) Valid() bool {
	switch t {
	case TierStandard, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// Boosted reports whether the tier shifts classification toward CRITICAL.
func (t CustomerTier) Boosted() bool {
	return t == TierPremium || t == TierEnterprise
}

// Customer is a read-only input to classification and routing. It is
// immutable after registration except for the history counter.
type Customer struct {
	ID           string
	Name         string
	Tier         CustomerTier
	HistoryCount int
	CreatedAt    time.Time
}
