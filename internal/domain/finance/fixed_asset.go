package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AssetStatus represents the status of a fixed asset
type AssetStatus string

const (
	AssetStatusActive     AssetStatus = "ACTIVE"
	AssetStatusDisposed   AssetStatus = "DISPOSED"
	AssetStatusWrittenOff AssetStatus = "WRITTEN_OFF"
)

// IsValid checks if the status is a valid AssetStatus
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusActive, AssetStatusDisposed, AssetStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of AssetStatus
func (s AssetStatus) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the status
func (s AssetStatus) DisplayName() string {
	switch s {
	case AssetStatusActive:
		return "Active"
	case AssetStatusDisposed:
		return "Disposed"
	case AssetStatusWrittenOff:
		return "Written Off"
	default:
		return string(s)
	}
}

// FixedAsset tracks a long-lived asset and its depreciation.
// CurrentValue always equals AcquisitionCost minus AccumulatedDepreciation.
type FixedAsset struct {
	shared.TenantAggregateRoot
	Name                    string
	Description             string
	SerialNumber            string
	Location                string
	DepartmentID            *shared.ID
	AcquisitionDate         time.Time
	AcquisitionCost         valueobject.Money
	CurrentValue            valueobject.Money
	AccumulatedDepreciation valueobject.Money
	Status                  AssetStatus
	DisposedAt              *time.Time
	DisposalAmount          *valueobject.Money
	DisposalReason          string
}

// NewFixedAsset registers an active asset at its acquisition cost
func NewFixedAsset(
	tenantID shared.TenantID,
	name, description string,
	cost valueobject.Money,
	acquisitionDate time.Time,
	departmentID *shared.ID,
) (*FixedAsset, []shared.DomainEvent, error) {
	if tenantID <= 0 {
		return nil, nil, shared.NewValidationError("INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil, shared.NewValidationError("INVALID_NAME", "Asset name cannot be empty")
	}
	if !cost.IsPositive() {
		return nil, nil, shared.NewValidationError(shared.ErrInvalidAmount.Code, "Acquisition cost must be positive")
	}
	if acquisitionDate.IsZero() {
		return nil, nil, shared.NewValidationError("INVALID_DATE", "Acquisition date cannot be empty")
	}
	if dateOnly(acquisitionDate).After(dateOnly(time.Now())) {
		return nil, nil, shared.NewValidationError("INVALID_DATE", "Acquisition date cannot be in the future")
	}

	asset := &FixedAsset{
		TenantAggregateRoot:     shared.NewTenantAggregateRoot(tenantID),
		Name:                    strings.TrimSpace(name),
		Description:             description,
		DepartmentID:            departmentID,
		AcquisitionDate:         acquisitionDate,
		AcquisitionCost:         cost,
		CurrentValue:            cost,
		AccumulatedDepreciation: valueobject.Zero(cost.Currency()),
		Status:                  AssetStatusActive,
	}

	return asset, shared.Events(NewFixedAssetCreatedEvent(asset)), nil
}

// UpdateInfo changes name, description and location. An empty name keeps the current one.
func (a *FixedAsset) UpdateInfo(name, description, location string) error {
	if err := a.ensureActive("modify"); err != nil {
		return err
	}
	if strings.TrimSpace(name) != "" {
		a.Name = strings.TrimSpace(name)
	}
	a.Description = description
	a.Location = location
	a.Touch()
	return nil
}

// SetLocation sets the physical location
func (a *FixedAsset) SetLocation(location string) error {
	if err := a.ensureActive("modify"); err != nil {
		return err
	}
	a.Location = location
	a.Touch()
	return nil
}

// SetSerialNumber sets the serial number
func (a *FixedAsset) SetSerialNumber(serialNumber string) error {
	if err := a.ensureActive("modify"); err != nil {
		return err
	}
	a.SerialNumber = serialNumber
	a.Touch()
	return nil
}

// TransferTo moves the asset to another department
func (a *FixedAsset) TransferTo(departmentID *shared.ID) error {
	if err := a.ensureActive("transfer"); err != nil {
		return err
	}
	a.DepartmentID = departmentID
	a.Touch()
	return nil
}

// RecordDepreciation adds amount to the accumulated depreciation
func (a *FixedAsset) RecordDepreciation(amount valueobject.Money) ([]shared.DomainEvent, error) {
	if err := a.ensureActive("depreciate"); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError(shared.ErrInvalidAmount.Code, "Depreciation amount must be positive")
	}
	accumulated, err := a.AccumulatedDepreciation.Add(amount)
	if err != nil {
		return nil, err
	}
	if exceeds, _ := accumulated.GreaterThan(a.AcquisitionCost); exceeds {
		return nil, shared.NewDomainError(shared.KindInvariantViolation, "DEPRECIATION_EXCEEDS_COST",
			"Total depreciation cannot exceed acquisition cost")
	}
	current, err := a.AcquisitionCost.Subtract(accumulated)
	if err != nil {
		return nil, err
	}

	a.AccumulatedDepreciation = accumulated
	a.CurrentValue = current
	a.Touch()

	return shared.Events(NewFixedAssetDepreciatedEvent(a, amount)), nil
}

// Dispose sells or otherwise disposes of the asset for amount
func (a *FixedAsset) Dispose(amount valueobject.Money, reason string) ([]shared.DomainEvent, error) {
	if err := a.ensureActive("dispose"); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError(shared.ErrInvalidAmount.Code, "Disposal amount cannot be negative")
	}
	if !amount.SameCurrency(a.AcquisitionCost) {
		return nil, shared.ErrCurrencyMismatch
	}
	return a.retire(AssetStatusDisposed, amount, reason), nil
}

// WriteOff retires the asset with no proceeds
func (a *FixedAsset) WriteOff(reason string) ([]shared.DomainEvent, error) {
	if err := a.ensureActive("write off"); err != nil {
		return nil, err
	}
	return a.retire(AssetStatusWrittenOff, valueobject.Zero(a.AcquisitionCost.Currency()), reason), nil
}

func (a *FixedAsset) retire(status AssetStatus, amount valueobject.Money, reason string) []shared.DomainEvent {
	now := time.Now()
	a.Status = status
	a.DisposedAt = &now
	a.DisposalAmount = &amount
	a.DisposalReason = reason
	a.UpdatedAt = now
	return shared.Events(NewFixedAssetDisposedEvent(a, amount, reason))
}

// NetBookValue returns cost minus accumulated depreciation
func (a *FixedAsset) NetBookValue() valueobject.Money {
	v, _ := a.AcquisitionCost.Subtract(a.AccumulatedDepreciation)
	return v
}

// DepreciationRate returns accumulated depreciation as a fraction of cost, in [0, 1]
func (a *FixedAsset) DepreciationRate() decimal.Decimal {
	if a.AcquisitionCost.IsZero() {
		return decimal.Zero
	}
	return a.AccumulatedDepreciation.Amount().DivRound(a.AcquisitionCost.Amount(), 4)
}

// IsActive returns true if the asset is in service
func (a *FixedAsset) IsActive() bool {
	return a.Status == AssetStatusActive
}

func (a *FixedAsset) ensureActive(action string) error {
	if a.Status != AssetStatusActive {
		return shared.NewStateError(fmt.Sprintf("Cannot %s asset in %s status", action, a.Status))
	}
	return nil
}
