package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
)

// CompanyStatus represents the lifecycle status of a company
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "ACTIVE"
	CompanyStatusInactive CompanyStatus = "INACTIVE"
)

// IsValid checks if the status is a valid CompanyStatus
func (s CompanyStatus) IsValid() bool {
	return s == CompanyStatusActive || s == CompanyStatusInactive
}

// String returns the string representation of CompanyStatus
func (s CompanyStatus) String() string {
	return string(s)
}

// IsOperational returns true if the company is active
func (s CompanyStatus) IsOperational() bool {
	return s == CompanyStatusActive
}

// AcceptsNewUsers returns true if users may be added to the company
func (s CompanyStatus) AcceptsNewUsers() bool {
	return s == CompanyStatusActive
}

// CanBeModified returns true if company details may be changed
func (s CompanyStatus) CanBeModified() bool {
	return s == CompanyStatusActive
}

// Company defaults
const (
	DefaultFiscalYearStart = "01-01"
	DefaultMaxUsers        = 100
	MaxCompanyNameLength   = 200
)

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)
	fiscalYearPattern = regexp.MustCompile(`^\d{2}-\d{2}$`)
)

// Company is the tenant root. Its ID is also the TenantID of every
// aggregate the company owns.
type Company struct {
	shared.BaseAggregateRoot
	Name                  string
	Email                 string
	Phone                 string
	Address               string
	City                  string
	StateProvince         string
	PostalCode            string
	Country               string
	Website               string
	RegistrationNumber    string
	TaxID                 string
	FiscalYearStart       string
	DefaultCurrency       valueobject.Currency
	Status                CompanyStatus
	MaxUsers              *int
	SubscriptionExpiresAt *time.Time
	CreatedBy             shared.ID
}

// NewCompany creates a new active company
func NewCompany(name, email, address, city, stateProvince, postalCode string, createdBy shared.ID) (*Company, []shared.DomainEvent, error) {
	if err := validateCompanyName(name); err != nil {
		return nil, nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}

	maxUsers := DefaultMaxUsers
	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             normalizeEmail(email),
		Address:           address,
		City:              city,
		StateProvince:     stateProvince,
		PostalCode:        postalCode,
		FiscalYearStart:   DefaultFiscalYearStart,
		DefaultCurrency:   valueobject.DefaultCurrency,
		Status:            CompanyStatusActive,
		MaxUsers:          &maxUsers,
		CreatedBy:         createdBy,
	}

	return company, shared.Events(NewCompanyCreatedEvent(company)), nil
}

// GetTenantID returns the tenant this company represents
func (c *Company) GetTenantID() shared.TenantID {
	return shared.TenantIDFromID(c.ID)
}

// UpdateBasicInfo updates name and address details. An empty name keeps the current one.
func (c *Company) UpdateBasicInfo(name, address, city, stateProvince, postalCode, website string) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	if strings.TrimSpace(name) != "" {
		if err := validateCompanyName(name); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(name)
	}
	c.Address = address
	c.City = city
	c.StateProvince = stateProvince
	c.PostalCode = postalCode
	c.Website = website
	c.Touch()
	return nil
}

// UpdateContact sets phone and country
func (c *Company) UpdateContact(phone, country string) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	c.Phone = phone
	c.Country = country
	c.Touch()
	return nil
}

// UpdateFinancialSettings sets the fiscal year start ("MM-DD") and default currency.
// Empty arguments leave the current value unchanged.
func (c *Company) UpdateFinancialSettings(fiscalYearStart string, currency string) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	var (
		cur valueobject.Currency
		err error
	)
	if fiscalYearStart != "" {
		if err = validateFiscalYearStart(fiscalYearStart); err != nil {
			return err
		}
	}
	if currency != "" {
		if cur, err = valueobject.ParseCurrency(currency); err != nil {
			return err
		}
	}

	if fiscalYearStart != "" {
		c.FiscalYearStart = fiscalYearStart
	}
	if cur != "" {
		c.DefaultCurrency = cur
	}
	c.Touch()
	return nil
}

// UpdateRegistrationInfo sets the business registration number and tax ID
func (c *Company) UpdateRegistrationInfo(registrationNumber, taxID string) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	c.RegistrationNumber = registrationNumber
	c.TaxID = taxID
	c.Touch()
	return nil
}

// UpdateUserLimit sets the maximum number of users
func (c *Company) UpdateUserLimit(maxUsers int) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	if maxUsers <= 0 {
		return shared.NewValidationError("INVALID_USER_LIMIT", "User limit must be positive")
	}
	c.MaxUsers = &maxUsers
	c.Touch()
	return nil
}

// RemoveUserLimit lifts the user cap entirely
func (c *Company) RemoveUserLimit() error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	c.MaxUsers = nil
	c.Touch()
	return nil
}

// UpdateSubscription sets the subscription expiry. A nil value means no expiry.
func (c *Company) UpdateSubscription(expiresAt *time.Time) error {
	if err := c.ensureCanBeModified(); err != nil {
		return err
	}
	c.SubscriptionExpiresAt = expiresAt
	c.Touch()
	return nil
}

// Activate activates the company
func (c *Company) Activate() error {
	if c.Status == CompanyStatusActive {
		return shared.NewDomainError(shared.KindStateTransition, "ALREADY_ACTIVE", "Company is already active")
	}
	c.Status = CompanyStatusActive
	c.Touch()
	return nil
}

// Deactivate deactivates the company
func (c *Company) Deactivate() error {
	if c.Status == CompanyStatusInactive {
		return shared.NewDomainError(shared.KindStateTransition, "ALREADY_INACTIVE", "Company is already inactive")
	}
	c.Status = CompanyStatusInactive
	c.Touch()
	return nil
}

// IsActive returns true if the company is active
func (c *Company) IsActive() bool {
	return c.Status.IsOperational()
}

// CanBeModified returns true if company details may be changed
func (c *Company) CanBeModified() bool {
	return c.Status.CanBeModified()
}

// IsSubscriptionValid returns true if there is no expiry or it lies after now
func (c *Company) IsSubscriptionValid(now time.Time) bool {
	return c.SubscriptionExpiresAt == nil || now.Before(*c.SubscriptionExpiresAt)
}

// CanAddUser reports whether one more user fits under the company's limit
func (c *Company) CanAddUser(currentUserCount int) bool {
	return c.Status.AcceptsNewUsers() && (c.MaxUsers == nil || currentUserCount < *c.MaxUsers)
}

func (c *Company) ensureCanBeModified() error {
	if !c.CanBeModified() {
		return shared.NewStateError(fmt.Sprintf("Company cannot be modified in %s status", c.Status))
	}
	return nil
}

// Validation functions

func validateCompanyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewValidationError("INVALID_NAME", "Company name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxCompanyNameLength {
		return shared.NewValidationError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return shared.NewValidationError("INVALID_EMAIL", "Email cannot be empty")
	}
	if !emailPattern.MatchString(trimmed) {
		return shared.NewValidationError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateFiscalYearStart(value string) error {
	if !fiscalYearPattern.MatchString(value) {
		return shared.NewValidationError("INVALID_FISCAL_YEAR_START", "Fiscal year start must be in MM-DD format")
	}
	if _, err := time.Parse("01-02", value); err != nil {
		return shared.NewValidationError("INVALID_FISCAL_YEAR_START", "Fiscal year start is not a valid month and day")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmail returns the canonical form used for uniqueness checks
func NormalizeEmail(email string) string {
	return normalizeEmail(email)
}
