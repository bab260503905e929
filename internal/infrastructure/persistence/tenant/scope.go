// Package tenant keeps each tenant's data out of every other tenant's reach.
//
// Guard decorates an aggregate store and rejects loads and saves whose
// tenant differs from the acting tenant in the context. TenantScope and
// TenantDB add the tenant_id filter to ad-hoc GORM queries:
//
//	db := tenant.NewTenantDB(gormDB)
//	db.WithContext(ctx).Find(&rows) // WHERE tenant_id = <ctx tenant>
package tenant

import (
	"context"

	"github.com/finledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID shared.TenantID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID.Int64())
	}
}

// TenantDB wraps GORM DB with automatic tenant scoping
type TenantDB struct {
	db *gorm.DB
}

// NewTenantDB creates a new TenantDB
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// WithContext returns a GORM DB scoped to the tenant in ctx. Without a
// tenant the returned DB carries ErrTenantRequired and fails every operation.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(err)
		return db
	}
	return t.db.WithContext(ctx).Scopes(TenantScope(tenantID))
}

// WithTenant returns a GORM DB scoped to tenantID
func (t *TenantDB) WithTenant(ctx context.Context, tenantID shared.TenantID) *gorm.DB {
	if tenantID.IsZero() {
		db := t.db.WithContext(ctx)
		_ = db.AddError(shared.ErrTenantRequired)
		return db
	}
	return t.db.WithContext(ctx).Scopes(TenantScope(tenantID))
}

// Transaction runs fn in a transaction scoped to the tenant in ctx
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return err
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx.Scopes(TenantScope(tenantID)))
	})
}

// Unscoped returns the underlying DB without tenant scoping.
// Only migrations and the outbox processor should need it.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}
