package identity

import (
	"github.com/finledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCompany = "Company"
	AggregateTypeUser    = "User"
)

// Event type constants
const (
	EventTypeCompanyCreated = "CompanyCreated"
	EventTypeUserCreated    = "UserCreated"
)

// CompanyCreatedEvent is published when a new company is registered
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID shared.ID `json:"company_id,string"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedBy shared.ID `json:"created_by,string"`
}

// EventType returns the event type name
func (e *CompanyCreatedEvent) EventType() string {
	return EventTypeCompanyCreated
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(company *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, company.ID, company.GetTenantID()),
		CompanyID:       company.ID,
		Name:            company.Name,
		Email:           company.Email,
		CreatedBy:       company.CreatedBy,
	}
}

// UserCreatedEvent is published when a user joins a company
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   shared.ID `json:"user_id,string"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		UserID:          user.ID,
		Username:        user.Username,
		Email:           user.Email,
	}
}
