package identity

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/config"
	"github.com/finledger/backend/internal/infrastructure/persistence"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fixture struct {
	publisher *recordingPublisher
	companies *CompanyService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyStore := tenant.NewGuard[*identity.Company](companyRepo, identity.AggregateTypeCompany)
	userStore := tenant.NewGuard[*identity.User](userRepo, identity.AggregateTypeUser)

	pub := &recordingPublisher{}
	obs := usecase.NewObserver(nil)
	return &fixture{
		publisher: pub,
		companies: NewCompanyService(companyRepo, companyStore, pub, obs),
		users:     NewUserService(userRepo, userStore, companyStore, pub, obs),
	}
}

func (f *fixture) company(t *testing.T, email string) (*identity.Company, context.Context) {
	t.Helper()
	c, err := f.companies.Create(context.Background(), CreateCompanyCommand{
		Name:  "Acme " + email,
		Email: email,
		City:  "Shanghai",
	})
	require.NoError(t, err)
	return c, shared.WithTenant(context.Background(), c.GetTenantID())
}

func TestCompanyService_Create(t *testing.T) {
	f := newFixture(t)

	c, _ := f.company(t, "Books@Acme.test")
	assert.Equal(t, "books@acme.test", c.Email)
	assert.Equal(t, identity.CompanyStatusActive, c.Status)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, identity.EventTypeCompanyCreated, f.publisher.events[0].EventType())
	assert.Equal(t, c.GetTenantID(), f.publisher.events[0].TenantID())

	_, err := f.companies.Create(context.Background(), CreateCompanyCommand{Name: "Other", Email: "books@acme.test"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.companies.Create(context.Background(), CreateCompanyCommand{Name: "Other", Email: "not-an-email"})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestCompanyService_Update(t *testing.T) {
	f := newFixture(t)
	c, ctx := f.company(t, "a@acme.test")

	updated, err := f.companies.Update(ctx, UpdateCompanyCommand{
		BasicInfo:    &CompanyBasicInfo{Name: "Acme Holdings", Website: "https://acme.test"},
		Contact:      &CompanyContact{Phone: "123", Country: "CN"},
		Financial:    &CompanyFinancial{FiscalYearStart: "04-01", Currency: "USD"},
		Registration: &CompanyRegistration{TaxID: "TAX-9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.Name)
	assert.Equal(t, "04-01", updated.FiscalYearStart)
	assert.Equal(t, "USD", updated.DefaultCurrency.String())
	assert.Equal(t, "TAX-9", updated.TaxID)

	current, err := f.companies.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, current.ID)
	assert.Equal(t, "CN", current.Country)

	_, err = f.companies.Update(ctx, UpdateCompanyCommand{Financial: &CompanyFinancial{FiscalYearStart: "13-01"}})
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = f.companies.Current(context.Background())
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestCompanyService_ActivateDeactivate(t *testing.T) {
	f := newFixture(t)
	c, ctx := f.company(t, "a@acme.test")

	_, err := f.companies.Activate(context.Background(), c.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_ACTIVE", de.Code)

	inactive, err := f.companies.Deactivate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive())

	_, err = f.companies.Update(ctx, UpdateCompanyCommand{Contact: &CompanyContact{Phone: "1"}})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.companies.Activate(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = f.companies.Deactivate(context.Background(), shared.NewID())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompanyService_Subscription(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.company(t, "a@acme.test")

	expires := time.Now().Add(24 * time.Hour)
	c, err := f.companies.UpdateSubscription(ctx, &expires)
	require.NoError(t, err)
	assert.True(t, c.IsSubscriptionValid(time.Now()))
	assert.False(t, c.IsSubscriptionValid(expires.Add(time.Second)))
}

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.company(t, "a@acme.test")

	u, err := f.users.Register(ctx, RegisterUserCommand{Username: "alice", Email: "Alice@Acme.test", FullName: "Alice"})
	require.NoError(t, err)
	assert.True(t, u.Enabled)
	assert.Equal(t, "alice@acme.test", u.Email)
	assert.Equal(t, identity.EventTypeUserCreated, f.publisher.events[len(f.publisher.events)-1].EventType())

	t.Run("username unique per tenant", func(t *testing.T) {
		_, err := f.users.Register(ctx, RegisterUserCommand{Username: "alice", Email: "other@acme.test", FullName: "Other"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		ok, err := f.users.UsernameAvailable(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok)

		_, otherCtx := f.company(t, "b@acme.test")
		ok, err = f.users.UsernameAvailable(otherCtx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("email unique across tenants", func(t *testing.T) {
		_, otherCtx := f.company(t, "c@acme.test")
		_, err := f.users.Register(otherCtx, RegisterUserCommand{Username: "alice2", Email: "alice@acme.test", FullName: "Alice"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("sso user", func(t *testing.T) {
		sso, err := f.users.Register(ctx, RegisterUserCommand{Username: "bob", Email: "bob@acme.test", FullName: "Bob", ExternalID: "oidc|42"})
		require.NoError(t, err)
		assert.True(t, sso.IsSSO())
	})
}

func TestUserService_UserLimit(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.company(t, "a@acme.test")

	limit := 1
	_, err := f.companies.SetUserLimit(ctx, &limit)
	require.NoError(t, err)

	_, err = f.users.Register(ctx, RegisterUserCommand{Username: "first", Email: "first@acme.test", FullName: "First"})
	require.NoError(t, err)

	_, err = f.users.Register(ctx, RegisterUserCommand{Username: "second", Email: "second@acme.test", FullName: "Second"})
	assert.ErrorIs(t, err, identity.ErrUserLimitReached)
	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))

	_, err = f.companies.SetUserLimit(ctx, nil)
	require.NoError(t, err)
	_, err = f.users.Register(ctx, RegisterUserCommand{Username: "second", Email: "second@acme.test", FullName: "Second"})
	require.NoError(t, err)
}

func TestUserService_InactiveCompany(t *testing.T) {
	f := newFixture(t)
	c, ctx := f.company(t, "a@acme.test")

	_, err := f.companies.Deactivate(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = f.users.Register(ctx, RegisterUserCommand{Username: "alice", Email: "alice@acme.test", FullName: "Alice"})
	assert.ErrorIs(t, err, ErrCompanyInactive)
}

func TestUserService_UpdateAndToggle(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.company(t, "a@acme.test")
	u, err := f.users.Register(ctx, RegisterUserCommand{Username: "alice", Email: "alice@acme.test", FullName: "Alice"})
	require.NoError(t, err)

	dept := shared.ID(5)
	updated, err := f.users.Update(ctx, UpdateUserCommand{ID: u.ID, FullName: "Alice Liddell", Timezone: "Europe/London", DepartmentID: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "Europe/London", updated.Timezone)
	assert.Equal(t, identity.DefaultLanguage, updated.PreferredLanguage)

	disabled, err := f.users.Disable(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	enabled, err := f.users.Enable(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)

	_, otherCtx := f.company(t, "b@acme.test")
	_, err = f.users.Disable(otherCtx, u.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
