package triage

import (
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// CustomerRegistry holds the registered customers the decision pipeline
// queries. Records are immutable after registration except for the history
// counter.
type CustomerRegistry struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
}

// NewCustomerRegistry creates an empty registry.
func NewCustomerRegistry() *CustomerRegistry {
	return &CustomerRegistry{customers: make(map[string]domain.Customer)}
}

// Register adds a customer, rejecting duplicates and unknown tiers.
func (r *CustomerRegistry) Register(customer domain.Customer) error {
	if strings.TrimSpace(customer.ID) == "" {
		return apperrors.NewValidationError("customer id required", nil)
	}
	if !customer.Tier.Valid() {
		return apperrors.NewValidationError("unknown customer tier",
			map[string]any{"customer_id": customer.ID, "tier": string(customer.Tier)})
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customers[customer.ID]; exists {
		return apperrors.NewValidationError("customer already registered",
			map[string]any{"customer_id": customer.ID})
	}
	r.customers[customer.ID] = customer
	return nil
}

// Get returns the customer record. Fails with UnknownCustomer.
func (r *CustomerRegistry) Get(customerID string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[customerID]
	if !ok {
		return domain.Customer{}, apperrors.NewUnknownCustomer(customerID)
	}
	return customer, nil
}

// IncrementHistory bumps the customer's submission counter.
func (r *CustomerRegistry) IncrementHistory(customerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer, ok := r.customers[customerID]; ok {
		customer.HistoryCount++
		r.customers[customerID] = customer
	}
}
