package persistence

import (
	"context"
	"fmt"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements finance.JournalEntryRepository.
// The header carries the version; lines are rewritten on every save.
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Load finds a journal entry and its lines for a specific tenant
func (r *GormJournalEntryRepository) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (*finance.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := dbtx.Conn(ctx, r.db).Scopes(preloadLines).
		Where("tenant_id = ? AND id = ?", tenantID.Int64(), id.Int64()).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain()
}

// OwnerOf returns the tenant owning the row, whichever tenant asks
func (r *GormJournalEntryRepository) OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error) {
	return ownerOf(ctx, r.db, &models.JournalEntryModel{}, id)
}

// FindByReference finds the entry carrying an external reference
func (r *GormJournalEntryRepository) FindByReference(ctx context.Context, tenantID shared.TenantID, reference string) (*finance.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := dbtx.Conn(ctx, r.db).Scopes(preloadLines).
		Where("tenant_id = ? AND reference = ?", tenantID.Int64(), reference).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain()
}

// Save writes the header under an optimistic version check and replaces
// the lines in the same transaction
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	lines := model.Lines
	return saveVersioned(ctx, r.db, entry, versionedWrite{
		table:    &models.JournalEntryModel{},
		model:    model,
		version:  &model.Version,
		id:       model.ID,
		tenantID: &model.TenantID,
		children: func(tx *gorm.DB) error {
			if err := tx.Where("entry_id = ?", model.ID).Delete(&models.JournalLineModel{}).Error; err != nil {
				return fmt.Errorf("delete journal lines: %w", err)
			}
			if len(lines) == 0 {
				return nil
			}
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("insert journal lines: %w", err)
			}
			return nil
		},
	})
}

var _ finance.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
