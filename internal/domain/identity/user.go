package identity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/finledger/backend/internal/domain/shared"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ErrUserLimitReached is returned when a company has no seat left for a new user
var ErrUserLimitReached = shared.NewDomainError(shared.KindInvariantViolation, "USER_LIMIT_REACHED", "Company has reached its user limit")

// User defaults
const (
	DefaultLanguage = "zh-CN"
	DefaultTimezone = "Asia/Shanghai"
)

// User is a member of a company. Credentials live outside this aggregate.
type User struct {
	shared.TenantAggregateRoot
	Username          string
	Email             string
	FullName          string
	Enabled           bool
	ExternalID        string // SSO subject, empty for local users
	DepartmentID      *shared.ID
	PreferredLanguage string
	Timezone          string
}

// NewUser creates an enabled user belonging to tenantID
func NewUser(tenantID shared.TenantID, username, email, fullName string) (*User, []shared.DomainEvent, error) {
	if tenantID <= 0 {
		return nil, nil, shared.NewValidationError("INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	if err := validateUsername(username); err != nil {
		return nil, nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validateFullName(fullName); err != nil {
		return nil, nil, err
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            username,
		Email:               normalizeEmail(email),
		FullName:            strings.TrimSpace(fullName),
		Enabled:             true,
		PreferredLanguage:   DefaultLanguage,
		Timezone:            DefaultTimezone,
	}

	return user, shared.Events(NewUserCreatedEvent(user)), nil
}

// NewSSOUser creates a user provisioned by an external identity provider
func NewSSOUser(tenantID shared.TenantID, username, email, fullName, externalID string) (*User, []shared.DomainEvent, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, nil, shared.NewValidationError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	user, events, err := NewUser(tenantID, username, email, fullName)
	if err != nil {
		return nil, nil, err
	}
	user.ExternalID = externalID
	return user, events, nil
}

// UpdateBasicInfo changes full name and email. Empty values keep the current ones.
func (u *User) UpdateBasicInfo(fullName, email string) error {
	if strings.TrimSpace(fullName) != "" {
		if err := validateFullName(fullName); err != nil {
			return err
		}
	}
	if strings.TrimSpace(email) != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	if strings.TrimSpace(fullName) != "" {
		u.FullName = strings.TrimSpace(fullName)
	}
	if strings.TrimSpace(email) != "" {
		u.Email = normalizeEmail(email)
	}
	u.Touch()
	return nil
}

// SetDepartment assigns the user to a department, or clears it when nil
func (u *User) SetDepartment(departmentID *shared.ID) {
	u.DepartmentID = departmentID
	u.Touch()
}

// UpdatePreferences sets language and timezone, ignoring empty values
func (u *User) UpdatePreferences(language, timezone string) {
	if strings.TrimSpace(language) != "" {
		u.PreferredLanguage = language
	}
	if strings.TrimSpace(timezone) != "" {
		u.Timezone = timezone
	}
	u.Touch()
}

// Enable enables the user
func (u *User) Enable() {
	u.Enabled = true
	u.Touch()
}

// Disable disables the user
func (u *User) Disable() {
	u.Enabled = false
	u.Touch()
}

// IsSSO returns true if the user is managed by an external provider
func (u *User) IsSSO() bool {
	return u.ExternalID != ""
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 50 {
		return shared.NewValidationError("INVALID_USERNAME", "Username must be between 3 and 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("INVALID_USERNAME", "Username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

func validateFullName(fullName string) error {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return shared.NewValidationError("INVALID_FULL_NAME", "Full name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return shared.NewValidationError("INVALID_FULL_NAME", "Full name cannot exceed 100 characters")
	}
	return nil
}
