package persistence

import (
	"context"
	"strings"

	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements identity.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Load finds a company acting as its own tenant. Asking for a company under
// any other tenant is reported as not found.
func (r *GormCompanyRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*identity.Company, error) {
	if shared.TenantIDFromID(id) != tenantID {
		return nil, shared.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// OwnerOf returns the tenant a stored company acts as
func (r *GormCompanyRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.CompanyModel{}).
		Where("id = ?", id.Int64()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, shared.ErrNotFound
	}
	return shared.TenantIDFromID(id), nil
}

// FindByID finds a company by ID without tenant scoping
func (r *GormCompanyRepository) FindByID(ctx context.Context, id shared.ID) (*identity.Company, error) {
	var model models.CompanyModel
	if err := dbtx.Conn(ctx, r.db).First(&model, "id = ?", id.Int64()).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the company with an optimistic version check
func (r *GormCompanyRepository) Save(ctx context.Context, company *identity.Company) error {
	model := models.CompanyModelFromDomain(company)
	return saveVersioned(ctx, r.db, company, versionedWrite{
		table:   &models.CompanyModel{},
		model:   model,
		version: &model.Version,
		id:      model.ID,
	})
}

// ExistsByEmail checks whether a company already uses the normalized email
func (r *GormCompanyRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.CompanyModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByName checks whether a company already uses the name, ignoring case
func (r *GormCompanyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := dbtx.Conn(ctx, r.db).Model(&models.CompanyModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ identity.CompanyRepository = (*GormCompanyRepository)(nil)
