package models

import (
	"fmt"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BaseModel provides common persistence fields for all models.
// IDs are generated by the domain, so the key is not auto-incremented.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic locking version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID.Int64()
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        shared.ID(m.ID),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// TenantAggregateModel adds the owning tenant
type TenantAggregateModel struct {
	AggregateModel
	TenantID int64 `gorm:"not null;index"`
}

// FromDomainTenantAggregateRoot populates TenantAggregateModel from domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TenantID = t.TenantID.Int64()
}

// ToDomainTenantAggregateRoot converts TenantAggregateModel to domain TenantAggregateRoot
func (m *TenantAggregateModel) ToDomainTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          shared.TenantID(m.TenantID),
	}
}

// moneyDecoder rebuilds Money values from stored columns and keeps the
// first failure, so a model can convert all its amounts before checking.
type moneyDecoder struct {
	err error
}

func (d *moneyDecoder) money(amount decimal.Decimal, currency string) valueobject.Money {
	m, err := valueobject.NewMoney(amount, valueobject.Currency(currency))
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("stored amount %s %s: %w", amount, currency, err)
	}
	return m
}

func idPtr(v *int64) *shared.ID {
	if v == nil {
		return nil
	}
	id := shared.ID(*v)
	return &id
}

func int64Ptr(v *shared.ID) *int64 {
	if v == nil {
		return nil
	}
	raw := v.Int64()
	return &raw
}
