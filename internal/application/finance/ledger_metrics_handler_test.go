package finance

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLedgerRecorder struct {
	mock.Mock
}

func (m *mockLedgerRecorder) RecordTransactionCreated(ctx context.Context, tenantID shared.TenantID, txnType string) {
	m.Called(tenantID, txnType)
}

func (m *mockLedgerRecorder) RecordTransactionApproved(ctx context.Context, tenantID shared.TenantID) {
	m.Called(tenantID)
}

func (m *mockLedgerRecorder) RecordTransactionCancelled(ctx context.Context, tenantID shared.TenantID, status string) {
	m.Called(tenantID, status)
}

func (m *mockLedgerRecorder) RecordJournalPosted(ctx context.Context, tenantID shared.TenantID, currency string, debitTotal decimal.Decimal) {
	m.Called(tenantID, currency, debitTotal.String())
}

func (m *mockLedgerRecorder) RecordJournalVoided(ctx context.Context, tenantID shared.TenantID) {
	m.Called(tenantID)
}

func (m *mockLedgerRecorder) RecordDepreciation(ctx context.Context, tenantID shared.TenantID, currency string, amount decimal.Decimal) {
	m.Called(tenantID, currency, amount.String())
}

func (m *mockLedgerRecorder) RecordAssetRetired(ctx context.Context, tenantID shared.TenantID, status string) {
	m.Called(tenantID, status)
}

func (m *mockLedgerRecorder) RecordReportFinished(ctx context.Context, tenantID shared.TenantID, reportType string, succeeded bool) {
	m.Called(tenantID, reportType, succeeded)
}

const metricsTenant = shared.TenantID(42)

func cny(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.CNYFromString(amount)
	require.NoError(t, err)
	return m
}

func TestLedgerMetricsHandler_Transactions(t *testing.T) {
	recorder := new(mockLedgerRecorder)
	handler := NewLedgerMetricsHandler(recorder)
	ctx := context.Background()

	txn, events, err := finance.NewIncome(metricsTenant, cny(t, "120.50"), time.Now(), "consulting", shared.ID(1))
	require.NoError(t, err)

	recorder.On("RecordTransactionCreated", metricsTenant, "INCOME").Once()
	require.NoError(t, handler.Handle(ctx, events[0]))

	approved, err := txn.Approve(shared.ID(2))
	require.NoError(t, err)
	recorder.On("RecordTransactionApproved", metricsTenant).Once()
	require.NoError(t, handler.Handle(ctx, approved[0]))

	voided, err := txn.Void(shared.ID(2), "duplicate")
	require.NoError(t, err)
	recorder.On("RecordTransactionCancelled", metricsTenant, "VOIDED").Once()
	require.NoError(t, handler.Handle(ctx, voided[0]))

	recorder.AssertExpectations(t)
}

func TestLedgerMetricsHandler_Journal(t *testing.T) {
	recorder := new(mockLedgerRecorder)
	handler := NewLedgerMetricsHandler(recorder)
	ctx := context.Background()

	entry, err := finance.NewJournalEntry(metricsTenant, time.Now(), "rent", valueobject.CNY, shared.ID(1))
	require.NoError(t, err)
	amount := cny(t, "3000")
	require.NoError(t, entry.AddLine(5001, &amount, nil, ""))
	require.NoError(t, entry.AddLine(1001, nil, &amount, ""))

	posted, err := entry.Post()
	require.NoError(t, err)
	recorder.On("RecordJournalPosted", metricsTenant, "CNY", "3000").Once()
	require.NoError(t, handler.Handle(ctx, posted[0]))

	voided, err := entry.Void("wrong month")
	require.NoError(t, err)
	recorder.On("RecordJournalVoided", metricsTenant).Once()
	require.NoError(t, handler.Handle(ctx, voided[0]))

	recorder.AssertExpectations(t)
}

func TestLedgerMetricsHandler_FixedAssets(t *testing.T) {
	recorder := new(mockLedgerRecorder)
	handler := NewLedgerMetricsHandler(recorder)
	ctx := context.Background()

	asset, _, err := finance.NewFixedAsset(metricsTenant, "Laptop", "", cny(t, "8000"), time.Now().AddDate(0, -6, 0), nil)
	require.NoError(t, err)

	depreciated, err := asset.RecordDepreciation(cny(t, "250.25"))
	require.NoError(t, err)
	recorder.On("RecordDepreciation", metricsTenant, "CNY", "250.25").Once()
	require.NoError(t, handler.Handle(ctx, depreciated[0]))

	written, err := asset.WriteOff("broken")
	require.NoError(t, err)
	recorder.On("RecordAssetRetired", metricsTenant, "WRITTEN_OFF").Once()
	require.NoError(t, handler.Handle(ctx, written[0]))

	recorder.AssertExpectations(t)
}

func TestLedgerMetricsHandler_Reports(t *testing.T) {
	recorder := new(mockLedgerRecorder)
	handler := NewLedgerMetricsHandler(recorder)
	ctx := context.Background()

	period, err := report.Yearly(2024)
	require.NoError(t, err)

	ok, err := report.NewReportForPeriod(metricsTenant, report.ReportTypeBalanceSheet, "2024", period, shared.ID(1))
	require.NoError(t, err)
	generated, err := ok.CompleteGeneration("/reports/2024.pdf", 2048)
	require.NoError(t, err)
	recorder.On("RecordReportFinished", metricsTenant, "BALANCE_SHEET", true).Once()
	require.NoError(t, handler.Handle(ctx, generated[0]))

	bad, err := report.NewReportForPeriod(metricsTenant, report.ReportTypeIncomeStatement, "2024", period, shared.ID(1))
	require.NoError(t, err)
	failed, err := bad.FailGeneration("no data")
	require.NoError(t, err)
	recorder.On("RecordReportFinished", metricsTenant, "INCOME_STATEMENT", false).Once()
	require.NoError(t, handler.Handle(ctx, failed[0]))

	recorder.AssertExpectations(t)
}

func TestLedgerMetricsHandler_EventTypes(t *testing.T) {
	handler := NewLedgerMetricsHandler(new(mockLedgerRecorder))
	types := handler.EventTypes()
	assert.Contains(t, types, finance.EventTypeJournalEntryPosted)
	assert.Contains(t, types, report.EventTypeReportGenerationFailed)
	assert.NotContains(t, types, finance.EventTypeFixedAssetCreated)
}
