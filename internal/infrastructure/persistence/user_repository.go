package persistence

import (
	"context"

	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Load finds a user by ID for a specific tenant
func (r *GormUserRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*identity.User, error) {
	var model models.UserModel
	if err := dbtx.Conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID.Int64(), id.Int64()).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// OwnerOf returns the tenant owning the row, whichever tenant asks
func (r *GormUserRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	return ownerOf(ctx, r.db, &models.UserModel{}, id)
}

// Save inserts or updates the user with an optimistic version check
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return saveVersioned(ctx, r.db, user, versionedWrite{
		table:    &models.UserModel{},
		model:    model,
		version:  &model.Version,
		id:       model.ID,
		tenantID: &model.TenantID,
	})
}

// CountForTenant counts users of a tenant
func (r *GormUserRepository) CountForTenant(ctx context.Context, tenantID shared.TenantID) (int64, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.UserModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByUsername checks username uniqueness within a tenant
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, tenantID shared.TenantID, username string) (bool, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.UserModel{}).
		Where("tenant_id = ? AND username = ?", tenantID.Int64(), username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail checks global email uniqueness
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.UserModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
