package event

import (
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/report"
)

// RegisterLedgerEvents registers every domain event type with the serializer.
// The outbox processor needs this to decode stored payloads.
func RegisterLedgerEvents(serializer *EventSerializer) {
	// Identity
	serializer.Register(&identity.CompanyCreatedEvent{})
	serializer.Register(&identity.UserCreatedEvent{})

	// Finance - transactions
	serializer.Register(&finance.TransactionCreatedEvent{})
	serializer.Register(&finance.TransactionApprovedEvent{})
	serializer.Register(&finance.TransactionCancelledEvent{})

	// Finance - journal entries
	serializer.Register(&finance.JournalEntryPostedEvent{})
	serializer.Register(&finance.JournalEntryVoidedEvent{})

	// Finance - fixed assets
	serializer.Register(&finance.FixedAssetCreatedEvent{})
	serializer.Register(&finance.FixedAssetDepreciatedEvent{})
	serializer.Register(&finance.FixedAssetDisposedEvent{})

	// Reports
	serializer.Register(&report.ReportGeneratedEvent{})
	serializer.Register(&report.ReportGenerationFailedEvent{})
}
