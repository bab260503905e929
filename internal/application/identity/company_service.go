package identity

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CreateCompanyCommand onboards a new company, and with it a new tenant
type CreateCompanyCommand struct {
	Name          string    `json:"name" validate:"required,max=200"`
	Email         string    `json:"email" validate:"required,email"`
	Address       string    `json:"address" validate:"max=500"`
	City          string    `json:"city" validate:"max=100"`
	StateProvince string    `json:"state_province" validate:"max=100"`
	PostalCode    string    `json:"postal_code" validate:"max=20"`
	CreatedBy     shared.ID `json:"created_by"`
}

// UpdateCompanyCommand changes the acting company's profile. Sections left
// nil are not touched.
type UpdateCompanyCommand struct {
	BasicInfo    *CompanyBasicInfo    `json:"basic_info"`
	Contact      *CompanyContact      `json:"contact"`
	Financial    *CompanyFinancial    `json:"financial"`
	Registration *CompanyRegistration `json:"registration"`
}

// CompanyBasicInfo is the name and address section of a company
type CompanyBasicInfo struct {
	Name          string `json:"name" validate:"max=200"`
	Address       string `json:"address" validate:"max=500"`
	City          string `json:"city" validate:"max=100"`
	StateProvince string `json:"state_province" validate:"max=100"`
	PostalCode    string `json:"postal_code" validate:"max=20"`
	Website       string `json:"website" validate:"omitempty,url"`
}

// CompanyContact is the contact section of a company
type CompanyContact struct {
	Phone   string `json:"phone" validate:"max=50"`
	Country string `json:"country" validate:"max=100"`
}

// CompanyFinancial is the bookkeeping settings section of a company
type CompanyFinancial struct {
	FiscalYearStart string `json:"fiscal_year_start" validate:"omitempty,len=5"`
	Currency        string `json:"currency" validate:"omitempty,iso4217"`
}

// CompanyRegistration is the legal registration section of a company
type CompanyRegistration struct {
	RegistrationNumber string `json:"registration_number" validate:"max=100"`
	TaxID              string `json:"tax_id" validate:"max=100"`
}

// CompanyService manages companies. Create, Activate and Deactivate are
// platform operations; everything else acts on the company of the acting
// tenant.
type CompanyService struct {
	repo      identity.CompanyRepository
	store     shared.AggregateStore[*identity.Company]
	publisher shared.EventPublisher
	validator *usecase.Validator
	obs       *usecase.Observer
}

// NewCompanyService creates a CompanyService. store is normally the tenant
// guard around repo.
func NewCompanyService(
	repo identity.CompanyRepository,
	store shared.AggregateStore[*identity.Company],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
) *CompanyService {
	return &CompanyService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		validator: usecase.NewValidator(),
		obs:       obs,
	}
}

// Create registers a company. The email must not be used by another company.
func (s *CompanyService) Create(ctx context.Context, cmd CreateCompanyCommand) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", "create")
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEmail(ctx, identity.NormalizeEmail(cmd.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.KindConflict, shared.ErrAlreadyExists.Code, "A company with this email already exists")
	}

	company, events, err := identity.NewCompany(cmd.Name, cmd.Email, cmd.Address, cmd.City, cmd.StateProvince, cmd.PostalCode, cmd.CreatedBy)
	if err != nil {
		return nil, err
	}
	// no tenant exists before this save, so it bypasses the guard
	if err := usecase.Create(ctx, s.repo, s.publisher, company, events); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("name", company.Name),
	)
	return company, nil
}

// Current returns the acting tenant's company
func (s *CompanyService) Current(ctx context.Context) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", "current")
	defer func() { end(err) }()

	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Load(ctx, shared.ID(tenantID), tenantID)
}

// Update applies the non-nil sections of cmd in one save
func (s *CompanyService) Update(ctx context.Context, cmd UpdateCompanyCommand) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", "update")
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return s.mutate(ctx, func(c *identity.Company) error {
		if b := cmd.BasicInfo; b != nil {
			if err := c.UpdateBasicInfo(b.Name, b.Address, b.City, b.StateProvince, b.PostalCode, b.Website); err != nil {
				return err
			}
		}
		if ct := cmd.Contact; ct != nil {
			if err := c.UpdateContact(ct.Phone, ct.Country); err != nil {
				return err
			}
		}
		if f := cmd.Financial; f != nil {
			if err := c.UpdateFinancialSettings(f.FiscalYearStart, f.Currency); err != nil {
				return err
			}
		}
		if r := cmd.Registration; r != nil {
			return c.UpdateRegistrationInfo(r.RegistrationNumber, r.TaxID)
		}
		return nil
	})
}

// SetUserLimit caps the number of users. A nil limit removes the cap.
func (s *CompanyService) SetUserLimit(ctx context.Context, maxUsers *int) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", "set_user_limit")
	defer func() { end(err) }()

	return s.mutate(ctx, func(c *identity.Company) error {
		if maxUsers == nil {
			return c.RemoveUserLimit()
		}
		return c.UpdateUserLimit(*maxUsers)
	})
}

// UpdateSubscription sets the subscription expiry; nil means none
func (s *CompanyService) UpdateSubscription(ctx context.Context, expiresAt *time.Time) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", "update_subscription")
	defer func() { end(err) }()

	return s.mutate(ctx, func(c *identity.Company) error {
		return c.UpdateSubscription(expiresAt)
	})
}

// Activate reactivates a company
func (s *CompanyService) Activate(ctx context.Context, id shared.ID) (*identity.Company, error) {
	return s.setStatus(ctx, "activate", id, (*identity.Company).Activate)
}

// Deactivate suspends a company. Its users can no longer be added and its
// profile becomes read-only.
func (s *CompanyService) Deactivate(ctx context.Context, id shared.ID) (*identity.Company, error) {
	return s.setStatus(ctx, "deactivate", id, (*identity.Company).Deactivate)
}

func (s *CompanyService) setStatus(ctx context.Context, method string, id shared.ID, change func(*identity.Company) error) (company *identity.Company, err error) {
	ctx, end := s.obs.Begin(ctx, "company", method, telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	company, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(company); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, company); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("company status changed",
		zap.String("company_id", company.ID.String()),
		zap.String("status", company.Status.String()),
	)
	return company, nil
}

func (s *CompanyService) mutate(ctx context.Context, change func(*identity.Company) error) (*identity.Company, error) {
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, shared.ID(tenantID), usecase.NoEvents(change))
}
