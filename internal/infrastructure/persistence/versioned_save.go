package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// versionedWrite describes one aggregate row written under optimistic locking
type versionedWrite struct {
	// table is an empty model used to look the row up
	table any
	// model is the populated model; version points into it
	model   any
	version *int
	id      int64
	// tenantID is nil for platform-level aggregates
	tenantID *int64
	// children replaces owned rows inside the same transaction
	children func(tx *gorm.DB) error
}

// saveVersioned inserts the row when it is new and otherwise updates it only
// if the stored version still equals the aggregate's version. On an update
// the stored version is bumped and the aggregate follows it. The write joins
// the transaction carried by ctx when there is one.
func saveVersioned(ctx context.Context, db *gorm.DB, agg shared.AggregateRoot, w versionedWrite) error {
	expected := agg.GetVersion()
	updated := false

	err := dbtx.Run(ctx, db, func(ctx context.Context) error {
		tx := dbtx.Conn(ctx, db)
		var count int64
		lookup := tx.Model(w.table).Where("id = ?", w.id)
		if w.tenantID != nil {
			lookup = lookup.Where("tenant_id = ?", *w.tenantID)
		}
		if err := lookup.Count(&count).Error; err != nil {
			return fmt.Errorf("lookup row: %w", err)
		}

		if count == 0 {
			if err := tx.Omit(clause.Associations).Create(w.model).Error; err != nil {
				return fmt.Errorf("insert row: %w", err)
			}
		} else {
			*w.version = expected + 1
			update := tx.Model(w.model).Where("version = ?", expected)
			if w.tenantID != nil {
				update = update.Where("tenant_id = ?", *w.tenantID)
			}
			result := update.Select("*").Omit(clause.Associations).Updates(w.model)
			if result.Error != nil {
				return fmt.Errorf("update row: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
			updated = true
		}

		if w.children != nil {
			return w.children(tx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if updated {
		agg.IncrementVersion()
	}
	return nil
}

// translateNotFound maps GORM's missing-row error to the domain one
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// ownerOf reads the tenant_id of a row in table without tenant scoping
func ownerOf(ctx context.Context, db *gorm.DB, table any, id shared.ID) (shared.TenantID, error) {
	var owners []int64
	if err := dbtx.Conn(ctx, db).Model(table).
		Where("id = ?", id.Int64()).
		Limit(1).
		Pluck("tenant_id", &owners).Error; err != nil {
		return 0, err
	}
	if len(owners) == 0 {
		return 0, shared.ErrNotFound
	}
	return shared.TenantID(owners[0]), nil
}
