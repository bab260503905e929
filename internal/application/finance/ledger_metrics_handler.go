package finance

import (
	"context"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerRecorder receives bookkeeping counts.
// *telemetry.LedgerMetrics implements it.
type LedgerRecorder interface {
	RecordTransactionCreated(ctx context.Context, tenantID shared.TenantID, txnType string)
	RecordTransactionApproved(ctx context.Context, tenantID shared.TenantID)
	RecordTransactionCancelled(ctx context.Context, tenantID shared.TenantID, status string)
	RecordJournalPosted(ctx context.Context, tenantID shared.TenantID, currency string, debitTotal decimal.Decimal)
	RecordJournalVoided(ctx context.Context, tenantID shared.TenantID)
	RecordDepreciation(ctx context.Context, tenantID shared.TenantID, currency string, amount decimal.Decimal)
	RecordAssetRetired(ctx context.Context, tenantID shared.TenantID, status string)
	RecordReportFinished(ctx context.Context, tenantID shared.TenantID, reportType string, succeeded bool)
}

// LedgerMetricsHandler turns delivered domain events into ledger metrics.
// Counting from events rather than in the services means a retried
// delivery is the only way a count can repeat, and the idempotent wrapper
// removes that.
type LedgerMetricsHandler struct {
	recorder LedgerRecorder
}

// NewLedgerMetricsHandler creates a LedgerMetricsHandler
func NewLedgerMetricsHandler(recorder LedgerRecorder) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		finance.EventTypeTransactionCreated,
		finance.EventTypeTransactionApproved,
		finance.EventTypeTransactionCancelled,
		finance.EventTypeJournalEntryPosted,
		finance.EventTypeJournalEntryVoided,
		finance.EventTypeFixedAssetDepreciated,
		finance.EventTypeFixedAssetDisposed,
		report.EventTypeReportGenerated,
		report.EventTypeReportGenerationFailed,
	}
}

// Handle records the event. Unknown events are ignored.
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenantID := event.TenantID()
	switch e := event.(type) {
	case *finance.TransactionCreatedEvent:
		h.recorder.RecordTransactionCreated(ctx, tenantID, string(e.Type))
	case *finance.TransactionApprovedEvent:
		h.recorder.RecordTransactionApproved(ctx, tenantID)
	case *finance.TransactionCancelledEvent:
		h.recorder.RecordTransactionCancelled(ctx, tenantID, string(e.Status))
	case *finance.JournalEntryPostedEvent:
		h.recorder.RecordJournalPosted(ctx, tenantID, e.TotalDebit.Currency().String(), e.TotalDebit.Amount())
	case *finance.JournalEntryVoidedEvent:
		h.recorder.RecordJournalVoided(ctx, tenantID)
	case *finance.FixedAssetDepreciatedEvent:
		h.recorder.RecordDepreciation(ctx, tenantID, e.Amount.Currency().String(), e.Amount.Amount())
	case *finance.FixedAssetDisposedEvent:
		h.recorder.RecordAssetRetired(ctx, tenantID, string(e.Status))
	case *report.ReportGeneratedEvent:
		h.recorder.RecordReportFinished(ctx, tenantID, string(e.ReportType), true)
	case *report.ReportGenerationFailedEvent:
		h.recorder.RecordReportFinished(ctx, tenantID, string(e.ReportType), false)
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
