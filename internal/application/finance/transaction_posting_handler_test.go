package finance

import (
	"context"
	"testing"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransactionPostingHandler_PostsApprovedTransaction(t *testing.T) {
	l := newLedger(t)
	txn := l.approvedIncome(t, tenantCtx(tenantA), "321.00")

	approved, ok := l.publisher.last().(*finance.TransactionApprovedEvent)
	require.True(t, ok)

	handler := NewTransactionPostingHandler(l.journal)
	assert.Equal(t, []string{finance.EventTypeTransactionApproved}, handler.EventTypes())

	// delivered by the outbox processor, so no tenant in the context
	require.NoError(t, handler.Handle(context.Background(), approved))

	entry, err := l.entries.FindByReference(context.Background(), tenantA, TransactionReference(txn.ID))
	require.NoError(t, err)
	assert.Equal(t, finance.JournalEntryStatusPosted, entry.Status)
}

func TestTransactionPostingHandler_RedeliveryPostsOnce(t *testing.T) {
	l := newLedger(t)
	txn := l.approvedIncome(t, tenantCtx(tenantA), "99.00")
	approved := l.publisher.last()

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewTransactionPostingHandler(l.journal))
	l.publisher.reset()

	require.NoError(t, bus.Publish(context.Background(), approved))
	require.NoError(t, bus.Publish(context.Background(), approved))

	assert.Equal(t, []string{finance.EventTypeJournalEntryPosted}, l.publisher.types())
	_, err := l.entries.FindByReference(context.Background(), tenantA, TransactionReference(txn.ID))
	require.NoError(t, err)
}

func TestTransactionPostingHandler_RejectsOtherEvents(t *testing.T) {
	l := newLedger(t)
	handler := NewTransactionPostingHandler(l.journal)

	other := shared.NewBaseDomainEvent(finance.EventTypeTransactionApproved, finance.AggregateTypeTransaction, shared.NewID(), tenantA)
	assert.Error(t, handler.Handle(context.Background(), &other))
}
