package persistence

import (
	"context"
	"fmt"

	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormReportRepository implements report.ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Load finds a report by ID for a specific tenant
func (r *GormReportRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*report.Report, error) {
	var model models.ReportModel
	if err := dbtx.Conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID.Int64(), id.Int64()).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// OwnerOf returns the tenant owning the row, whichever tenant asks
func (r *GormReportRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	return ownerOf(ctx, r.db, &models.ReportModel{}, id)
}

// Save inserts or updates the report with an optimistic version check
func (r *GormReportRepository) Save(ctx context.Context, rpt *report.Report) error {
	model := models.ReportModelFromDomain(rpt)
	return saveVersioned(ctx, r.db, rpt, versionedWrite{
		table:    &models.ReportModel{},
		model:    model,
		version:  &model.Version,
		id:       model.ID,
		tenantID: &model.TenantID,
	})
}

// FindAllForTenant lists reports of a tenant, newest first unless the
// filter says otherwise
func (r *GormReportRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter report.ReportFilter) ([]*report.Report, int64, error) {
	scoped := func() *gorm.DB {
		query := dbtx.Conn(ctx, r.db).Model(&models.ReportModel{}).
			Scopes(tenant.TenantScope(tenantID))
		if filter.Search != "" {
			query = query.Where("name LIKE ?", "%"+filter.Search+"%")
		}
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	var rows []models.ReportModel
	query := orderAndPage(scoped(), filter.OrderBy, filter.OrderDir, ReportSortFields, filter.Limit(), filter.Offset())
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]*report.Report, len(rows))
	for i := range rows {
		reports[i] = rows[i].ToDomain()
	}
	return reports, total, nil
}

var _ report.ReportRepository = (*GormReportRepository)(nil)
