package finance

import (
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenant shared.TenantID = 1
	testOwner  shared.ID       = 5
)

func cny(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.CNYFromString(amount)
	require.NoError(t, err)
	return m
}

func newDraftIncome(t *testing.T) *Transaction {
	t.Helper()
	txn, _, err := NewIncome(testTenant, cny(t, "100.00"), time.Now(), "Consulting fee", testOwner)
	require.NoError(t, err)
	return txn
}

func TestTransactionStatus_FromCode(t *testing.T) {
	tests := []struct {
		code     int
		expected TransactionStatus
	}{
		{0, TransactionStatusDraft},
		{1, TransactionStatusPendingApproval},
		{2, TransactionStatusApproved},
		{3, TransactionStatusRejected},
		{4, TransactionStatusCancelled},
		{5, TransactionStatusVoided},
	}

	for _, tc := range tests {
		t.Run(string(tc.expected), func(t *testing.T) {
			status, err := TransactionStatusFromCode(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
			assert.Equal(t, tc.code, status.Code())
		})
	}

	_, err := TransactionStatusFromCode(6)
	assert.Error(t, err)
	assert.False(t, TransactionStatus("BOGUS").IsValid())
}

func TestNewTransaction(t *testing.T) {
	t.Run("creates draft income with defaults", func(t *testing.T) {
		txn, events, err := NewIncome(testTenant, cny(t, "100.00"), time.Now(), "Consulting fee", testOwner)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeIncome, txn.Type)
		assert.Equal(t, TransactionStatusDraft, txn.Status)
		assert.False(t, txn.IsRecurring)
		assert.False(t, txn.IsTaxable)
		assert.True(t, txn.BelongsToTenant(testTenant))

		require.Len(t, events, 1)
		created, ok := events[0].(*TransactionCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, txn.ID, created.TransactionID)
		assert.Equal(t, testTenant, created.TenantID())
	})

	t.Run("creates expense", func(t *testing.T) {
		txn, _, err := NewExpense(testTenant, cny(t, "20.00"), time.Now(), "Paper", testOwner)
		require.NoError(t, err)
		assert.Equal(t, TransactionTypeExpense, txn.Type)
		assert.False(t, txn.IsIncome())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "-0.01", "-100"} {
			txn, events, err := NewIncome(testTenant, cny(t, amount), time.Now(), "x", testOwner)
			assert.Nil(t, txn)
			assert.Nil(t, events)
			assert.ErrorIs(t, err, shared.ErrInvalidAmount, "amount %s", amount)
			assert.True(t, shared.IsKind(err, shared.KindValidation))
		}
	})

	t.Run("allows tomorrow but not later", func(t *testing.T) {
		_, _, err := NewIncome(testTenant, cny(t, "1.00"), time.Now().AddDate(0, 0, 1), "x", testOwner)
		assert.NoError(t, err)

		_, _, err = NewIncome(testTenant, cny(t, "1.00"), time.Now().AddDate(0, 0, 2), "x", testOwner)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("requires tenant and user", func(t *testing.T) {
		_, _, err := NewIncome(0, cny(t, "1.00"), time.Now(), "x", testOwner)
		assert.Error(t, err)
		_, _, err = NewIncome(testTenant, cny(t, "1.00"), time.Now(), "x", 0)
		assert.Error(t, err)
	})
}

func TestTransaction_Approve(t *testing.T) {
	t.Run("owner cannot approve", func(t *testing.T) {
		txn := newDraftIncome(t)

		events, err := txn.Approve(testOwner)

		assert.ErrorIs(t, err, shared.ErrSelfApproval)
		assert.Nil(t, events)
		assert.Equal(t, TransactionStatusDraft, txn.Status)
		assert.Nil(t, txn.ApprovedBy)
	})

	t.Run("another user approves", func(t *testing.T) {
		txn := newDraftIncome(t)

		events, err := txn.Approve(6)

		require.NoError(t, err)
		assert.Equal(t, TransactionStatusApproved, txn.Status)
		require.NotNil(t, txn.ApprovedBy)
		assert.Equal(t, shared.ID(6), *txn.ApprovedBy)
		assert.NotNil(t, txn.ApprovedAt)

		require.Len(t, events, 1)
		approved := events[0].(*TransactionApprovedEvent)
		assert.Equal(t, shared.ID(6), approved.ApprovedBy)
		assert.Equal(t, EventTypeTransactionApproved, approved.EventType())
	})

	t.Run("approving twice fails the same way", func(t *testing.T) {
		txn := newDraftIncome(t)
		_, err := txn.Approve(6)
		require.NoError(t, err)

		_, first := txn.Approve(6)
		_, second := txn.Approve(6)
		assert.ErrorIs(t, first, shared.ErrInvalidState)
		assert.Equal(t, first, second)
	})
}

func TestTransaction_CancelAndVoid(t *testing.T) {
	t.Run("cancel draft", func(t *testing.T) {
		txn := newDraftIncome(t)

		events, err := txn.Cancel("duplicate")

		require.NoError(t, err)
		assert.Equal(t, TransactionStatusCancelled, txn.Status)
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransactionCancelled, events[0].EventType())
	})

	t.Run("approved must be voided not cancelled", func(t *testing.T) {
		txn := newDraftIncome(t)
		_, err := txn.Approve(6)
		require.NoError(t, err)

		_, err = txn.Cancel("")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Contains(t, err.Error(), "void")

		events, err := txn.Void(6, "entered in error")
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusVoided, txn.Status)
		assert.Equal(t, "entered in error", txn.VoidReason)
		cancelled := events[0].(*TransactionCancelledEvent)
		assert.Equal(t, "entered in error", cancelled.Reason)
		assert.Equal(t, TransactionStatusVoided, cancelled.Status)
	})

	t.Run("draft cannot be voided", func(t *testing.T) {
		txn := newDraftIncome(t)
		_, err := txn.Void(6, "x")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestTransaction_TerminalStatesAreImmutable(t *testing.T) {
	cancelled := newDraftIncome(t)
	_, err := cancelled.Cancel("")
	require.NoError(t, err)

	voided := newDraftIncome(t)
	_, err = voided.Approve(6)
	require.NoError(t, err)
	_, err = voided.Void(6, "x")
	require.NoError(t, err)

	category := shared.ID(3)
	for name, txn := range map[string]*Transaction{"cancelled": cancelled, "voided": voided} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				err := txn.Update(cny(t, "5.00"), "x", "cash", "r")
				assert.ErrorIs(t, err, shared.ErrInvalidState)
				assert.True(t, shared.IsKind(err, shared.KindStateTransition))

				assert.ErrorIs(t, txn.SetCategory(&category), shared.ErrInvalidState)
				assert.ErrorIs(t, txn.MarkTaxable(), shared.ErrInvalidState)

				_, err = txn.Approve(6)
				assert.ErrorIs(t, err, shared.ErrInvalidState)
			}
			assert.Nil(t, txn.CategoryID)
			assert.True(t, txn.IsFinal())
		})
	}
}

func TestTransaction_Classification(t *testing.T) {
	txn := newDraftIncome(t)
	_, err := txn.Approve(6)
	require.NoError(t, err)

	fund, dept, category := shared.ID(1), shared.ID(2), shared.ID(3)
	require.NoError(t, txn.SetFund(&fund))
	require.NoError(t, txn.SetDepartment(&dept))
	require.NoError(t, txn.SetCategory(&category))
	require.NoError(t, txn.MarkRecurring())
	require.NoError(t, txn.MarkTaxable())

	assert.Equal(t, fund, *txn.FundID)
	assert.True(t, txn.IsRecurring)
	assert.True(t, txn.IsTaxable)

	err = txn.Update(cny(t, "5.00"), "x", "", "")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTransaction_Update(t *testing.T) {
	txn := newDraftIncome(t)

	require.NoError(t, txn.Update(cny(t, "250.00"), "Revised", "bank", "INV-7"))
	assert.Equal(t, "250.00 CNY", txn.Money.String())
	assert.Equal(t, "INV-7", txn.ReferenceNumber)

	err := txn.Update(cny(t, "0"), "Revised", "bank", "INV-7")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	assert.Equal(t, "250.00 CNY", txn.Money.String())
}

func TestTransaction_CalculateTax(t *testing.T) {
	txn := newDraftIncome(t)
	rate := decimal.RequireFromString("0.13")

	assert.True(t, txn.CalculateTax(rate).IsZero())

	require.NoError(t, txn.MarkTaxable())
	tax := txn.CalculateTax(rate)
	assert.Equal(t, "13.00 CNY", tax.String())
	assert.Equal(t, TransactionStatusDraft, txn.Status)
	assert.Equal(t, "100.00 CNY", txn.Money.String())
}
