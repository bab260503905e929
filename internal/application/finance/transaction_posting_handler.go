package finance

import (
	"context"
	"fmt"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TransactionPoster posts the journal entry of an approved transaction.
// *JournalService implements it.
type TransactionPoster interface {
	CreateFromTransaction(ctx context.Context, transactionID shared.ID) (*finance.JournalEntry, error)
}

// TransactionPostingHandler posts approved transactions to the journal.
// Handlers run outside any request, so the tenant is taken from the event.
type TransactionPostingHandler struct {
	poster TransactionPoster
}

// NewTransactionPostingHandler creates a TransactionPostingHandler
func NewTransactionPostingHandler(poster TransactionPoster) *TransactionPostingHandler {
	return &TransactionPostingHandler{poster: poster}
}

// EventTypes returns the event types this handler is interested in
func (h *TransactionPostingHandler) EventTypes() []string {
	return []string{finance.EventTypeTransactionApproved}
}

// Handle posts the transaction named by a TransactionApproved event
func (h *TransactionPostingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approved, ok := event.(*finance.TransactionApprovedEvent)
	if !ok {
		return fmt.Errorf("transaction posting: unexpected event %T", event)
	}

	ctx = shared.WithTenant(ctx, approved.TenantID())
	entry, err := h.poster.CreateFromTransaction(ctx, approved.TransactionID)
	if err != nil {
		return fmt.Errorf("post transaction %s: %w", approved.TransactionID, err)
	}

	logger.L(ctx).Debug("approved transaction posted",
		zap.String("event_id", approved.EventID().String()),
		zap.String("transaction_id", approved.TransactionID.String()),
		zap.String("entry_id", entry.ID.String()),
	)
	return nil
}

var _ shared.EventHandler = (*TransactionPostingHandler)(nil)
