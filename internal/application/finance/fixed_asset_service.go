package finance

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RegisterAssetCommand registers a fixed asset at its acquisition cost
type RegisterAssetCommand struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Description     string     `json:"description" validate:"max=1000"`
	SerialNumber    string     `json:"serial_number" validate:"max=100"`
	Location        string     `json:"location" validate:"max=200"`
	Cost            string     `json:"cost" validate:"required,numeric"`
	Currency        string     `json:"currency" validate:"omitempty,iso4217"`
	AcquisitionDate time.Time  `json:"acquisition_date" validate:"required"`
	DepartmentID    *shared.ID `json:"department_id"`
}

// UpdateAssetCommand changes the descriptive fields of an active asset
type UpdateAssetCommand struct {
	ID           shared.ID `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"max=200"`
	Description  string    `json:"description" validate:"max=1000"`
	Location     string    `json:"location" validate:"max=200"`
	SerialNumber string    `json:"serial_number" validate:"max=100"`
}

// DisposeAssetCommand sells or scraps an active asset
type DisposeAssetCommand struct {
	ID     shared.ID `json:"id" validate:"required"`
	Amount string    `json:"amount" validate:"required,numeric"`
	Reason string    `json:"reason" validate:"max=500"`
}

// FixedAssetService runs the fixed asset use cases
type FixedAssetService struct {
	repo      finance.FixedAssetRepository
	store     shared.AggregateStore[*finance.FixedAsset]
	publisher shared.EventPublisher
	validator *usecase.Validator
	obs       *usecase.Observer
	currency  valueobject.Currency
}

// NewFixedAssetService creates a FixedAssetService. store is normally the
// tenant guard around repo.
func NewFixedAssetService(
	repo finance.FixedAssetRepository,
	store shared.AggregateStore[*finance.FixedAsset],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
	defaultCurrency valueobject.Currency,
) *FixedAssetService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &FixedAssetService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		validator: usecase.NewValidator(),
		obs:       obs,
		currency:  defaultCurrency,
	}
}

// Register creates an active asset
func (s *FixedAssetService) Register(ctx context.Context, cmd RegisterAssetCommand) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "register", telemetry.SpanAttrAmount, cmd.Cost)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	currency := s.currency
	if cmd.Currency != "" {
		if currency, err = valueobject.ParseCurrency(cmd.Currency); err != nil {
			return nil, err
		}
	}
	cost, err := valueobject.NewMoneyFromString(cmd.Cost, currency)
	if err != nil {
		return nil, err
	}

	asset, events, err := finance.NewFixedAsset(tenantID, cmd.Name, cmd.Description, cost, cmd.AcquisitionDate, cmd.DepartmentID)
	if err != nil {
		return nil, err
	}
	if cmd.SerialNumber != "" {
		if err := asset.SetSerialNumber(cmd.SerialNumber); err != nil {
			return nil, err
		}
	}
	if cmd.Location != "" {
		if err := asset.SetLocation(cmd.Location); err != nil {
			return nil, err
		}
	}
	if err := usecase.Create(ctx, s.store, s.publisher, asset, events); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("fixed asset registered",
		zap.String("asset_id", asset.ID.String()),
		zap.String("cost", cost.String()),
	)
	return asset, nil
}

// UpdateInfo changes name, description, location and serial number
func (s *FixedAssetService) UpdateInfo(ctx context.Context, cmd UpdateAssetCommand) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "update_info", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, usecase.NoEvents(func(a *finance.FixedAsset) error {
		if err := a.UpdateInfo(cmd.Name, cmd.Description, cmd.Location); err != nil {
			return err
		}
		return a.SetSerialNumber(cmd.SerialNumber)
	}))
}

// Transfer moves an asset to another department, or to none when departmentID is nil
func (s *FixedAssetService) Transfer(ctx context.Context, id shared.ID, departmentID *shared.ID) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "transfer", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(a *finance.FixedAsset) error {
		return a.TransferTo(departmentID)
	}))
}

// Depreciate records depreciation in the asset's currency
func (s *FixedAssetService) Depreciate(ctx context.Context, id shared.ID, amount string) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "depreciate",
		telemetry.SpanAttrAggregateID, id,
		telemetry.SpanAttrAmount, amount,
	)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, func(a *finance.FixedAsset) ([]shared.DomainEvent, error) {
		m, err := valueobject.NewMoneyFromString(amount, a.AcquisitionCost.Currency())
		if err != nil {
			return nil, err
		}
		return a.RecordDepreciation(m)
	})
}

// DepreciateAll records amountFor(asset) on every active asset of the
// acting tenant. Assets for which amountFor returns zero are skipped. It
// stops at the first failure and returns the assets already depreciated.
func (s *FixedAssetService) DepreciateAll(ctx context.Context, amountFor func(*finance.FixedAsset) valueobject.Money) (done []*finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "depreciate_all")
	defer func() { end(err) }()

	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for _, candidate := range active {
		amount := amountFor(candidate)
		if amount.IsZero() {
			continue
		}
		asset, err := usecase.Mutate(ctx, s.store, s.publisher, candidate.ID, func(a *finance.FixedAsset) ([]shared.DomainEvent, error) {
			return a.RecordDepreciation(amount)
		})
		if err != nil {
			return done, err
		}
		done = append(done, asset)
	}

	logger.L(ctx).Info("depreciation run finished",
		zap.Int("active", len(active)),
		zap.Int("depreciated", len(done)),
	)
	return done, nil
}

// Dispose retires an asset for the given proceeds
func (s *FixedAssetService) Dispose(ctx context.Context, cmd DisposeAssetCommand) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "dispose", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, func(a *finance.FixedAsset) ([]shared.DomainEvent, error) {
		m, err := valueobject.NewMoneyFromString(cmd.Amount, a.AcquisitionCost.Currency())
		if err != nil {
			return nil, err
		}
		return a.Dispose(m, cmd.Reason)
	})
}

// WriteOff retires an asset with no proceeds
func (s *FixedAssetService) WriteOff(ctx context.Context, id shared.ID, reason string) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "write_off", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, func(a *finance.FixedAsset) ([]shared.DomainEvent, error) {
		return a.WriteOff(reason)
	})
}

// Get returns an asset of the acting tenant
func (s *FixedAssetService) Get(ctx context.Context, id shared.ID) (asset *finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "get", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Load(ctx, s.store, id)
}

// ListActive lists the acting tenant's assets still in service
func (s *FixedAssetService) ListActive(ctx context.Context) (assets []*finance.FixedAsset, err error) {
	ctx, end := s.obs.Begin(ctx, "fixed_asset", "list_active")
	defer func() { end(err) }()

	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindActive(ctx, tenantID)
}
