package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerMetrics records bookkeeping activity. Monetary counters are kept
// in minor units (cents) per currency.
type LedgerMetrics struct {
	logger *zap.Logger

	transactionsCreated   *Counter
	transactionsApproved  *Counter
	transactionsCancelled *Counter
	journalPosted         *Counter
	journalPostedAmount   *Counter
	journalVoided         *Counter
	depreciationAmount    *Counter
	assetsRetired         *Counter
	reportsFinished       *Counter
	tenantViolations      *Counter
	useCaseDuration       *Histogram
}

// NewLedgerMetrics creates all ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{logger: logger}
	counters := []struct {
		target     **Counter
		name, desc string
		unit       string
	}{
		{&lm.transactionsCreated, "ledger_transactions_created_total", "Income and expense transactions recorded", "{transactions}"},
		{&lm.transactionsApproved, "ledger_transactions_approved_total", "Transactions approved", "{transactions}"},
		{&lm.transactionsCancelled, "ledger_transactions_cancelled_total", "Transactions cancelled or voided", "{transactions}"},
		{&lm.journalPosted, "ledger_journal_entries_posted_total", "Journal entries posted", "{entries}"},
		{&lm.journalPostedAmount, "ledger_journal_posted_amount_total", "Debit total of posted journal entries in minor units", "{cents}"},
		{&lm.journalVoided, "ledger_journal_entries_voided_total", "Journal entries voided", "{entries}"},
		{&lm.depreciationAmount, "ledger_depreciation_amount_total", "Depreciation recorded on fixed assets in minor units", "{cents}"},
		{&lm.assetsRetired, "ledger_fixed_assets_retired_total", "Fixed assets disposed or written off", "{assets}"},
		{&lm.reportsFinished, "ledger_reports_finished_total", "Report generations that completed or failed", "{reports}"},
		{&lm.tenantViolations, "ledger_tenant_violations_total", "Cross-tenant access attempts rejected by the tenant guard", "{attempts}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	lm.useCaseDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_use_case_duration_seconds",
		Description: "Duration of application use cases",
		Unit:        "s",
		Boundaries:  UseCaseDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return lm, nil
}

func tenantAttr(tenantID shared.TenantID) attribute.KeyValue {
	return AttrTenantID.String(tenantID.String())
}

// RecordTransactionCreated counts a new transaction of txnType (INCOME, EXPENSE)
func (lm *LedgerMetrics) RecordTransactionCreated(ctx context.Context, tenantID shared.TenantID, txnType string) {
	lm.transactionsCreated.Inc(ctx, tenantAttr(tenantID), AttrTxnType.String(txnType))
}

// RecordTransactionApproved counts an approval
func (lm *LedgerMetrics) RecordTransactionApproved(ctx context.Context, tenantID shared.TenantID) {
	lm.transactionsApproved.Inc(ctx, tenantAttr(tenantID))
}

// RecordTransactionCancelled counts a cancel or void, labelled by the resulting status
func (lm *LedgerMetrics) RecordTransactionCancelled(ctx context.Context, tenantID shared.TenantID, status string) {
	lm.transactionsCancelled.Inc(ctx, tenantAttr(tenantID), AttrStatus.String(status))
}

// RecordJournalPosted counts a posted entry and adds its debit total
func (lm *LedgerMetrics) RecordJournalPosted(ctx context.Context, tenantID shared.TenantID, currency string, debitTotal decimal.Decimal) {
	lm.journalPosted.Inc(ctx, tenantAttr(tenantID))
	lm.journalPostedAmount.Add(ctx, minorUnits(debitTotal), tenantAttr(tenantID), AttrCurrency.String(currency))
}

// RecordJournalVoided counts a voided entry
func (lm *LedgerMetrics) RecordJournalVoided(ctx context.Context, tenantID shared.TenantID) {
	lm.journalVoided.Inc(ctx, tenantAttr(tenantID))
}

// RecordDepreciation adds a depreciation amount
func (lm *LedgerMetrics) RecordDepreciation(ctx context.Context, tenantID shared.TenantID, currency string, amount decimal.Decimal) {
	lm.depreciationAmount.Add(ctx, minorUnits(amount), tenantAttr(tenantID), AttrCurrency.String(currency))
}

// RecordAssetRetired counts a disposal or write-off, labelled by the resulting status
func (lm *LedgerMetrics) RecordAssetRetired(ctx context.Context, tenantID shared.TenantID, status string) {
	lm.assetsRetired.Inc(ctx, tenantAttr(tenantID), AttrStatus.String(status))
}

// RecordReportFinished counts a report generation outcome
func (lm *LedgerMetrics) RecordReportFinished(ctx context.Context, tenantID shared.TenantID, reportType string, succeeded bool) {
	outcome := "completed"
	if !succeeded {
		outcome = "failed"
	}
	lm.reportsFinished.Inc(ctx, tenantAttr(tenantID), AttrReportType.String(reportType), AttrOutcome.String(outcome))
}

// RecordTenantViolation counts a rejected cross-tenant access
func (lm *LedgerMetrics) RecordTenantViolation(ctx context.Context, operation string, acting, owner shared.TenantID) {
	lm.tenantViolations.Inc(ctx,
		AttrOperation.String(operation),
		tenantAttr(acting),
		AttrActingOwner.String(owner.String()),
	)
}

// RecordUseCase records the duration of a use case. Failed calls carry
// the domain error code when there is one.
func (lm *LedgerMetrics) RecordUseCase(ctx context.Context, useCase string, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrUseCase.String(useCase), AttrOutcome.String("ok")}
	if err != nil {
		attrs[1] = AttrOutcome.String("error")
		if code := errorCode(err); code != "" {
			attrs = append(attrs, AttrErrorCode.String(code))
		}
	}
	lm.useCaseDuration.RecordDuration(ctx, elapsed, attrs...)
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
