package persistence

import (
	"context"
	"fmt"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormTransactionRepository implements finance.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Load finds a transaction by ID for a specific tenant
func (r *GormTransactionRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*finance.Transaction, error) {
	var model models.TransactionModel
	if err := dbtx.Conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID.Int64(), id.Int64()).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain()
}

// OwnerOf returns the tenant owning the row, whichever tenant asks
func (r *GormTransactionRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	return ownerOf(ctx, r.db, &models.TransactionModel{}, id)
}

// Save inserts or updates the transaction with an optimistic version check
func (r *GormTransactionRepository) Save(ctx context.Context, txn *finance.Transaction) error {
	model := models.TransactionModelFromDomain(txn)
	return saveVersioned(ctx, r.db, txn, versionedWrite{
		table:    &models.TransactionModel{},
		model:    model,
		version:  &model.Version,
		id:       model.ID,
		tenantID: &model.TenantID,
	})
}

// FindAllForTenant lists transactions of a tenant with filtering and
// returns the total count before pagination
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter finance.TransactionFilter) ([]*finance.Transaction, int64, error) {
	scoped := func() *gorm.DB {
		query := dbtx.Conn(ctx, r.db).Model(&models.TransactionModel{}).
			Scopes(tenant.TenantScope(tenantID))
		return r.applyFilterWithoutPagination(query, filter)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	var rows []models.TransactionModel
	query := orderAndPage(scoped(), filter.OrderBy, filter.OrderDir, TransactionSortFields, filter.Limit(), filter.Offset())
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	txns := make([]*finance.Transaction, 0, len(rows))
	for i := range rows {
		txn, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}
	return txns, total, nil
}

func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.TransactionFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(description LIKE ? OR reference_number LIKE ?)", pattern, pattern)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	return query
}

var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)
