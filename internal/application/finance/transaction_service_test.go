package finance

import (
	"testing"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_CreateIncome(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	txn, err := l.transactions.CreateIncome(ctx, RecordTransactionCommand{
		Amount:      "250.50",
		Date:        yesterday(),
		Description: "consulting",
		UserID:      owner,
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, txn.TenantID)
	assert.Equal(t, finance.TransactionTypeIncome, txn.Type)
	assert.Equal(t, finance.TransactionStatusDraft, txn.Status)
	assert.Equal(t, "CNY", txn.Money.Currency().String())
	assert.Equal(t, []string{finance.EventTypeTransactionCreated}, l.publisher.types())

	loaded, err := l.transactions.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, txn.Money.Equals(loaded.Money))
}

func TestTransactionService_CreateValidation(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	tests := []struct {
		name string
		cmd  RecordTransactionCommand
		code string
	}{
		{"missing amount", RecordTransactionCommand{Date: yesterday(), UserID: owner}, "INVALID_INPUT"},
		{"not a number", RecordTransactionCommand{Amount: "ten", Date: yesterday(), UserID: owner}, "INVALID_INPUT"},
		{"bad currency", RecordTransactionCommand{Amount: "10", Currency: "XYZ1", Date: yesterday(), UserID: owner}, "INVALID_INPUT"},
		{"zero amount", RecordTransactionCommand{Amount: "0", Date: yesterday(), UserID: owner}, shared.ErrInvalidAmount.Code},
		{"missing user", RecordTransactionCommand{Amount: "10", Date: yesterday()}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.transactions.CreateExpense(ctx, tt.cmd)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
	assert.Empty(t, l.publisher.types())
}

func TestTransactionService_RequiresTenant(t *testing.T) {
	l := newLedger(t)

	_, err := l.transactions.CreateIncome(tenantCtx(0), RecordTransactionCommand{
		Amount: "10", Date: yesterday(), UserID: owner,
	})
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestTransactionService_Approve(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	txn, err := l.transactions.CreateExpense(ctx, RecordTransactionCommand{
		Amount: "80", Date: yesterday(), Description: "paper", UserID: owner,
	})
	require.NoError(t, err)

	t.Run("owner cannot approve", func(t *testing.T) {
		_, err := l.transactions.Approve(ctx, ApproveTransactionCommand{ID: txn.ID, ApproverID: owner})
		assert.ErrorIs(t, err, shared.ErrSelfApproval)

		stored, err := l.transactions.Get(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusDraft, stored.Status)
	})

	t.Run("other user approves", func(t *testing.T) {
		approved, err := l.transactions.Approve(ctx, ApproveTransactionCommand{ID: txn.ID, ApproverID: approver})
		require.NoError(t, err)
		assert.Equal(t, finance.TransactionStatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, approver, *approved.ApprovedBy)
		assert.Equal(t, finance.EventTypeTransactionApproved, l.publisher.last().EventType())
	})

	t.Run("approved cannot be updated", func(t *testing.T) {
		_, err := l.transactions.Update(ctx, UpdateTransactionCommand{ID: txn.ID, Amount: "90"})
		assert.True(t, shared.IsKind(err, shared.KindStateTransition))
	})
}

func TestTransactionService_CancelAndVoid(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	draft, err := l.transactions.CreateIncome(ctx, RecordTransactionCommand{Amount: "10", Date: yesterday(), UserID: owner})
	require.NoError(t, err)

	cancelled, err := l.transactions.Cancel(ctx, CancelTransactionCommand{ID: draft.ID, Reason: "typo"})
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionStatusCancelled, cancelled.Status)

	approved := l.approvedIncome(t, ctx, "40")

	_, err = l.transactions.Cancel(ctx, CancelTransactionCommand{ID: approved.ID})
	assert.True(t, shared.IsKind(err, shared.KindStateTransition), "approved transactions are voided, not cancelled")

	_, err = l.transactions.Void(ctx, VoidTransactionCommand{ID: approved.ID, VoidedBy: approver})
	assert.True(t, shared.IsKind(err, shared.KindValidation), "a void needs a reason")

	voided, err := l.transactions.Void(ctx, VoidTransactionCommand{ID: approved.ID, VoidedBy: approver, Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionStatusVoided, voided.Status)

	cancelEvent, ok := l.publisher.last().(*finance.TransactionCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, finance.TransactionStatusVoided, cancelEvent.Status)
}

func TestTransactionService_UpdateAndClassify(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	txn, err := l.transactions.CreateExpense(ctx, RecordTransactionCommand{Amount: "10", Date: yesterday(), UserID: owner})
	require.NoError(t, err)

	updated, err := l.transactions.Update(ctx, UpdateTransactionCommand{
		ID: txn.ID, Amount: "12.34", Description: "taxi", PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "12.34", updated.Money.Amount().StringFixed(2))

	category := shared.ID(9)
	classified, err := l.transactions.Classify(ctx, ClassifyTransactionCommand{ID: txn.ID, CategoryID: &category, Taxable: true})
	require.NoError(t, err)
	require.NotNil(t, classified.CategoryID)
	assert.Equal(t, category, *classified.CategoryID)
	assert.True(t, classified.IsTaxable)

	tax, err := l.transactions.CalculateTax(ctx, txn.ID, decimal.RequireFromString("0.06"))
	require.NoError(t, err)
	assert.Equal(t, "0.74", tax.Amount().StringFixed(2))

	_, err = l.transactions.CalculateTax(ctx, txn.ID, decimal.RequireFromString("1.5"))
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_TAX_RATE", de.Code)
}

func TestTransactionService_TenantIsolation(t *testing.T) {
	l := newLedger(t)

	txn, err := l.transactions.CreateIncome(tenantCtx(tenantA), RecordTransactionCommand{Amount: "10", Date: yesterday(), UserID: owner})
	require.NoError(t, err)

	_, err = l.transactions.Get(tenantCtx(tenantB), txn.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.True(t, shared.IsKind(err, shared.KindTenantViolation))

	_, err = l.transactions.Approve(tenantCtx(tenantB), ApproveTransactionCommand{ID: txn.ID, ApproverID: approver})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = l.transactions.Get(tenantCtx(tenantB), shared.NewID())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	stored, err := l.transactions.Get(tenantCtx(tenantA), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionStatusDraft, stored.Status)

	page, err := l.transactions.List(tenantCtx(tenantB), ListTransactionsQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestTransactionService_List(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)

	for _, amount := range []string{"1", "2", "3"} {
		_, err := l.transactions.CreateIncome(ctx, RecordTransactionCommand{Amount: amount, Date: yesterday(), UserID: owner})
		require.NoError(t, err)
	}
	_, err := l.transactions.CreateExpense(ctx, RecordTransactionCommand{Amount: "4", Date: yesterday(), UserID: owner})
	require.NoError(t, err)

	page, err := l.transactions.List(ctx, ListTransactionsQuery{Type: "INCOME", PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)

	_, err = l.transactions.List(ctx, ListTransactionsQuery{Type: "REFUND"})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestTransactionService_PublishFailureReturnsUndeliveredEvents(t *testing.T) {
	l := newLedger(t)
	ctx := tenantCtx(tenantA)
	txn, err := l.transactions.CreateIncome(ctx, RecordTransactionCommand{Amount: "10", Date: yesterday(), UserID: owner})
	require.NoError(t, err)

	l.publisher.err = errBrokerDown
	_, err = l.transactions.Approve(ctx, ApproveTransactionCommand{ID: txn.ID, ApproverID: approver})
	require.ErrorIs(t, err, errBrokerDown)

	var undelivered *shared.UndeliveredEventsError
	require.ErrorAs(t, err, &undelivered)
	require.Len(t, undelivered.Events, 1)
	assert.Equal(t, finance.EventTypeTransactionApproved, undelivered.Events[0].EventType())

	stored, err := l.transactions.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionStatusApproved, stored.Status, "this publisher cannot roll the save back")

	l.publisher.err = nil
	require.NoError(t, l.publisher.Publish(ctx, undelivered.Events...))
	assert.Equal(t, finance.EventTypeTransactionApproved, l.publisher.last().EventType())
}
