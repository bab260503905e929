package finance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/finledger/backend/internal/infrastructure/config"
	"github.com/finledger/backend/internal/infrastructure/persistence"
	"github.com/finledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/require"
)

const (
	tenantA shared.TenantID = 11
	tenantB shared.TenantID = 22
)

var (
	owner    = shared.ID(100)
	approver = shared.ID(200)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

func (p *recordingPublisher) last() shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

var errBrokerDown = errors.New("broker down")

// ledger wires the finance services over an in-memory SQLite database,
// with every store behind the tenant guard
type ledger struct {
	publisher    *recordingPublisher
	transactions *TransactionService
	journal      *JournalService
	assets       *FixedAssetService
	entries      *persistence.GormJournalEntryRepository
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	txnRepo := persistence.NewGormTransactionRepository(db.DB)
	entryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	assetRepo := persistence.NewGormFixedAssetRepository(db.DB)

	txnStore := tenant.NewGuard[*finance.Transaction](txnRepo, finance.AggregateTypeTransaction)
	entryStore := tenant.NewGuard[*finance.JournalEntry](entryRepo, finance.AggregateTypeJournalEntry)
	assetStore := tenant.NewGuard[*finance.FixedAsset](assetRepo, finance.AggregateTypeFixedAsset)

	pub := &recordingPublisher{}
	obs := usecase.NewObserver(nil)
	return &ledger{
		publisher:    pub,
		transactions: NewTransactionService(txnRepo, txnStore, pub, obs),
		journal:      NewJournalService(entryRepo, entryStore, txnStore, pub, obs, DefaultPostingAccounts(), valueobject.CNY),
		assets:       NewFixedAssetService(assetRepo, assetStore, pub, obs, valueobject.CNY),
		entries:      entryRepo,
	}
}

func tenantCtx(tenantID shared.TenantID) context.Context {
	return shared.WithTenant(context.Background(), tenantID)
}

func yesterday() time.Time {
	return time.Now().AddDate(0, 0, -1)
}

func (l *ledger) approvedIncome(t *testing.T, ctx context.Context, amount string) *finance.Transaction {
	t.Helper()
	txn, err := l.transactions.CreateIncome(ctx, RecordTransactionCommand{
		Amount:      amount,
		Date:        yesterday(),
		Description: "invoice 7",
		UserID:      owner,
	})
	require.NoError(t, err)
	txn, err = l.transactions.Approve(ctx, ApproveTransactionCommand{ID: txn.ID, ApproverID: approver})
	require.NoError(t, err)
	return txn
}
