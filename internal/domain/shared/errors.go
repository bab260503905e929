package shared

import "errors"

// ErrorKind classifies domain errors so callers can map them without
// inspecting individual codes
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindStateTransition    ErrorKind = "STATE_TRANSITION"
	KindInvariantViolation ErrorKind = "INVARIANT_VIOLATION"
	KindTenantViolation    ErrorKind = "TENANT_VIOLATION"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindConflict           ErrorKind = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so
// errors.Is(err, ErrInvalidState) holds for every state error
// regardless of its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewStateError creates an INVALID_STATE error with a specific message
func NewStateError(message string) *DomainError {
	return NewDomainError(KindStateTransition, ErrInvalidState.Code, message)
}

// KindOf returns the kind of the first DomainError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Common domain errors
var (
	ErrInvalidInput        = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidAmount       = NewDomainError(KindValidation, "INVALID_AMOUNT", "Invalid amount")
	ErrInvalidCurrency     = NewDomainError(KindValidation, "INVALID_CURRENCY", "Invalid currency code")
	ErrDivisionByZero      = NewDomainError(KindValidation, "DIVISION_BY_ZERO", "Cannot divide by zero")
	ErrInvalidState        = NewDomainError(KindStateTransition, "INVALID_STATE", "Operation not allowed in current state")
	ErrCurrencyMismatch    = NewDomainError(KindInvariantViolation, "CURRENCY_MISMATCH", "Currencies do not match")
	ErrUnbalanced          = NewDomainError(KindInvariantViolation, "UNBALANCED_ENTRY", "Journal entry is not balanced")
	ErrSelfApproval        = NewDomainError(KindInvariantViolation, "SELF_APPROVAL", "Users cannot approve their own transactions")
	ErrForbidden           = NewDomainError(KindTenantViolation, "FORBIDDEN", "Access to this resource is forbidden")
	ErrTenantRequired      = NewDomainError(KindTenantViolation, "TENANT_REQUIRED", "Tenant context is required")
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
