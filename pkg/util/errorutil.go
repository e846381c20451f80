package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the triage taxonomy.
const (
	CodeConfigurationInvalid = "CONFIGURATION_INVALID"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeUnknownCustomer      = "UNKNOWN_CUSTOMER"
	CodeUnknownAgent         = "UNKNOWN_AGENT"
	CodeDuplicateAgent       = "DUPLICATE_AGENT"
	CodeCapacityExceeded     = "CAPACITY_EXCEEDED"
	CodeInvalidRelease       = "INVALID_RELEASE"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInternalError        = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewConfigurationError marks invalid configuration. Fatal at load time,
// never raised during ticket processing.
func NewConfigurationError(message string, details map[string]any) error {
	return NewDomainError(CodeConfigurationInvalid, message, http.StatusInternalServerError, details)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnknownCustomer(customerID string) error {
	return NewDomainError(CodeUnknownCustomer, "customer not registered", http.StatusNotFound,
		map[string]any{"customer_id": customerID})
}

func NewUnknownAgent(agentID string) error {
	return NewDomainError(CodeUnknownAgent, "agent not registered", http.StatusNotFound,
		map[string]any{"agent_id": agentID})
}

func NewDuplicateAgent(agentID string) error {
	return NewDomainError(CodeDuplicateAgent, "agent already registered", http.StatusConflict,
		map[string]any{"agent_id": agentID})
}

// NewCapacityExceeded signals a failed reservation. Recoverable: routing
// retries or falls back to escalation, it is never a submission failure.
func NewCapacityExceeded(agentID string) error {
	return NewDomainError(CodeCapacityExceeded, "agent at maximum capacity", http.StatusConflict,
		map[string]any{"agent_id": agentID})
}

// NewInvalidRelease signals a release on an agent with zero load. It marks a
// caller bug rather than corrupting registry state.
func NewInvalidRelease(agentID string) error {
	return NewDomainError(CodeInvalidRelease, "agent has no load to release", http.StatusConflict,
		map[string]any{"agent_id": agentID})
}

func NewInvalidTransition(ticketID string, from, to string) error {
	return NewDomainError(CodeInvalidTransition, "lifecycle transition not permitted", http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "from": from, "to": to})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
