package persistence

import (
	"context"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFixedAssetRepository implements finance.FixedAssetRepository using GORM
type GormFixedAssetRepository struct {
	db *gorm.DB
}

// NewGormFixedAssetRepository creates a new GormFixedAssetRepository
func NewGormFixedAssetRepository(db *gorm.DB) *GormFixedAssetRepository {
	return &GormFixedAssetRepository{db: db}
}

// Load finds a fixed asset by ID for a specific tenant
func (r *GormFixedAssetRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*finance.FixedAsset, error) {
	var model models.FixedAssetModel
	if err := dbtx.Conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID.Int64(), id.Int64()).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain()
}

// OwnerOf returns the tenant owning the row, whichever tenant asks
func (r *GormFixedAssetRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	return ownerOf(ctx, r.db, &models.FixedAssetModel{}, id)
}

// Save inserts or updates the asset with an optimistic version check
func (r *GormFixedAssetRepository) Save(ctx context.Context, asset *finance.FixedAsset) error {
	model := models.FixedAssetModelFromDomain(asset)
	return saveVersioned(ctx, r.db, asset, versionedWrite{
		table:    &models.FixedAssetModel{},
		model:    model,
		version:  &model.Version,
		id:       model.ID,
		tenantID: &model.TenantID,
	})
}

// FindActive lists assets still in service, oldest acquisition first
func (r *GormFixedAssetRepository) FindActive(ctx context.Context, tenantID shared.TenantID) ([]*finance.FixedAsset, error) {
	var rows []models.FixedAssetModel
	if err := dbtx.Conn(ctx, r.db).
		Where("tenant_id = ? AND status = ?", tenantID.Int64(), finance.AssetStatusActive).
		Order("acquisition_date ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	assets := make([]*finance.FixedAsset, 0, len(rows))
	for i := range rows {
		asset, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

var _ finance.FixedAssetRepository = (*GormFixedAssetRepository)(nil)
