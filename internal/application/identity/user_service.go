package identity

import (
	"context"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrCompanyInactive is returned when users are added to an inactive company
var ErrCompanyInactive = shared.NewDomainError(shared.KindStateTransition, "COMPANY_INACTIVE", "Company is not active")

// RegisterUserCommand adds a user to the acting tenant's company.
// ExternalID is set for users provisioned through SSO.
type RegisterUserCommand struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required,max=100"`
	ExternalID string `json:"external_id" validate:"max=255"`
}

// UpdateUserCommand changes a user's profile. Empty fields are kept.
type UpdateUserCommand struct {
	ID           shared.ID  `json:"id" validate:"required"`
	FullName     string     `json:"full_name" validate:"max=100"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Language     string     `json:"language" validate:"max=10"`
	Timezone     string     `json:"timezone" validate:"omitempty,timezone"`
	DepartmentID *shared.ID `json:"department_id"`
}

// UserService manages the users of a company
type UserService struct {
	users     identity.UserRepository
	store     shared.AggregateStore[*identity.User]
	companies shared.AggregateStore[*identity.Company]
	publisher shared.EventPublisher
	validator *usecase.Validator
	obs       *usecase.Observer
}

// NewUserService creates a UserService. store and companies are normally
// tenant guards.
func NewUserService(
	users identity.UserRepository,
	store shared.AggregateStore[*identity.User],
	companies shared.AggregateStore[*identity.Company],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
) *UserService {
	return &UserService{
		users:     users,
		store:     store,
		companies: companies,
		publisher: publisher,
		validator: usecase.NewValidator(),
		obs:       obs,
	}
}

// Register creates a user when the company is active and below its user
// limit. Usernames are unique per tenant and emails across all tenants.
func (s *UserService) Register(ctx context.Context, cmd RegisterUserCommand) (user *identity.User, err error) {
	ctx, end := s.obs.Begin(ctx, "user", "register")
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.Load(ctx, shared.ID(tenantID), tenantID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive() {
		return nil, ErrCompanyInactive
	}
	count, err := s.users.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !company.CanAddUser(int(count)) {
		return nil, identity.ErrUserLimitReached
	}

	taken, err := s.users.ExistsByUsername(ctx, tenantID, cmd.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError(shared.KindConflict, shared.ErrAlreadyExists.Code, "Username is already taken")
	}
	taken, err = s.users.ExistsByEmail(ctx, identity.NormalizeEmail(cmd.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError(shared.KindConflict, shared.ErrAlreadyExists.Code, "Email is already registered")
	}

	var events []shared.DomainEvent
	if cmd.ExternalID != "" {
		user, events, err = identity.NewSSOUser(tenantID, cmd.Username, cmd.Email, cmd.FullName, cmd.ExternalID)
	} else {
		user, events, err = identity.NewUser(tenantID, cmd.Username, cmd.Email, cmd.FullName)
	}
	if err != nil {
		return nil, err
	}
	if err := usecase.Create(ctx, s.store, s.publisher, user, events); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("sso", user.IsSSO()),
	)
	return user, nil
}

// UsernameAvailable reports whether username is free in the acting tenant
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (ok bool, err error) {
	ctx, end := s.obs.Begin(ctx, "user", "username_available")
	defer func() { end(err) }()

	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return false, err
	}
	taken, err := s.users.ExistsByUsername(ctx, tenantID, username)
	return !taken, err
}

// Update changes a user's profile and department
func (s *UserService) Update(ctx context.Context, cmd UpdateUserCommand) (user *identity.User, err error) {
	ctx, end := s.obs.Begin(ctx, "user", "update", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, usecase.NoEvents(func(u *identity.User) error {
		if err := u.UpdateBasicInfo(cmd.FullName, cmd.Email); err != nil {
			return err
		}
		u.UpdatePreferences(cmd.Language, cmd.Timezone)
		u.SetDepartment(cmd.DepartmentID)
		return nil
	}))
}

// Enable lets a user sign in again
func (s *UserService) Enable(ctx context.Context, id shared.ID) (*identity.User, error) {
	return s.toggle(ctx, "enable", id, (*identity.User).Enable)
}

// Disable blocks a user without deleting it
func (s *UserService) Disable(ctx context.Context, id shared.ID) (*identity.User, error) {
	return s.toggle(ctx, "disable", id, (*identity.User).Disable)
}

func (s *UserService) toggle(ctx context.Context, method string, id shared.ID, change func(*identity.User)) (user *identity.User, err error) {
	ctx, end := s.obs.Begin(ctx, "user", method, telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(u *identity.User) error {
		change(u)
		return nil
	}))
}

// Get returns a user of the acting tenant
func (s *UserService) Get(ctx context.Context, id shared.ID) (user *identity.User, err error) {
	ctx, end := s.obs.Begin(ctx, "user", "get", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Load(ctx, s.store, id)
}
