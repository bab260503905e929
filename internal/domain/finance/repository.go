package finance

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
)

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	Type     *TransactionType
	Status   *TransactionStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionRepository persists transactions
type TransactionRepository interface {
	shared.AggregateStore[*Transaction]
	// FindAllForTenant lists transactions of a tenant
	FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter TransactionFilter) ([]*Transaction, int64, error)
}

// JournalEntryRepository persists journal entries together with their lines
type JournalEntryRepository interface {
	shared.AggregateStore[*JournalEntry]
	// FindByReference finds the entry carrying an external reference
	FindByReference(ctx context.Context, tenantID shared.TenantID, reference string) (*JournalEntry, error)
}

// FixedAssetRepository persists fixed assets
type FixedAssetRepository interface {
	shared.AggregateStore[*FixedAsset]
	// FindActive lists assets still in service
	FindActive(ctx context.Context, tenantID shared.TenantID) ([]*FixedAsset, error)
}
