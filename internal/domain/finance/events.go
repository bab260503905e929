package finance

import (
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeTransaction  = "Transaction"
	AggregateTypeJournalEntry = "JournalEntry"
	AggregateTypeFixedAsset   = "FixedAsset"
)

// Event type constants
const (
	EventTypeTransactionCreated    = "TransactionCreated"
	EventTypeTransactionApproved   = "TransactionApproved"
	EventTypeTransactionCancelled  = "TransactionCancelled"
	EventTypeJournalEntryPosted    = "JournalEntryPosted"
	EventTypeJournalEntryVoided    = "JournalEntryVoided"
	EventTypeFixedAssetCreated     = "FixedAssetCreated"
	EventTypeFixedAssetDepreciated = "FixedAssetDepreciated"
	EventTypeFixedAssetDisposed    = "FixedAssetDisposed"
)

// TransactionCreatedEvent is raised when a transaction is recorded
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID   shared.ID         `json:"transaction_id,string"`
	Type            TransactionType   `json:"type"`
	Amount          valueobject.Money `json:"amount"`
	TransactionDate time.Time         `json:"transaction_date"`
	UserID          shared.ID         `json:"user_id,string"`
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return EventTypeTransactionCreated
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(txn *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		Type:            txn.Type,
		Amount:          txn.Money,
		TransactionDate: txn.TransactionDate,
		UserID:          txn.UserID,
	}
}

// TransactionApprovedEvent is raised when a transaction is approved
type TransactionApprovedEvent struct {
	shared.BaseDomainEvent
	TransactionID shared.ID         `json:"transaction_id,string"`
	Type          TransactionType   `json:"type"`
	Amount        valueobject.Money `json:"amount"`
	ApprovedBy    shared.ID         `json:"approved_by,string"`
	ApprovedAt    time.Time         `json:"approved_at"`
}

// EventType returns the event type name
func (e *TransactionApprovedEvent) EventType() string {
	return EventTypeTransactionApproved
}

// NewTransactionApprovedEvent creates a new TransactionApprovedEvent
func NewTransactionApprovedEvent(txn *Transaction) *TransactionApprovedEvent {
	event := &TransactionApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionApproved, AggregateTypeTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		Type:            txn.Type,
		Amount:          txn.Money,
	}
	if txn.ApprovedBy != nil {
		event.ApprovedBy = *txn.ApprovedBy
	}
	if txn.ApprovedAt != nil {
		event.ApprovedAt = *txn.ApprovedAt
	}
	return event
}

// TransactionCancelledEvent is raised when a draft is cancelled or an approved transaction is voided
type TransactionCancelledEvent struct {
	shared.BaseDomainEvent
	TransactionID shared.ID         `json:"transaction_id,string"`
	Status        TransactionStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *TransactionCancelledEvent) EventType() string {
	return EventTypeTransactionCancelled
}

// NewTransactionCancelledEvent creates a new TransactionCancelledEvent
func NewTransactionCancelledEvent(txn *Transaction, reason string) *TransactionCancelledEvent {
	return &TransactionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCancelled, AggregateTypeTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		Status:          txn.Status,
		Reason:          reason,
	}
}

// JournalEntryPostedEvent is raised when a balanced entry is posted
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID     shared.ID         `json:"entry_id,string"`
	Reference   string            `json:"reference,omitempty"`
	TotalDebit  valueobject.Money `json:"total_debit"`
	TotalCredit valueobject.Money `json:"total_credit"`
	LineCount   int               `json:"line_count"`
}

// EventType returns the event type name
func (e *JournalEntryPostedEvent) EventType() string {
	return EventTypeJournalEntryPosted
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(entry *JournalEntry) *JournalEntryPostedEvent {
	debit, credit := entry.Totals()
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		Reference:       entry.Reference,
		TotalDebit:      debit,
		TotalCredit:     credit,
		LineCount:       entry.LineCount(),
	}
}

// JournalEntryVoidedEvent is raised when a posted entry is voided
type JournalEntryVoidedEvent struct {
	shared.BaseDomainEvent
	EntryID shared.ID `json:"entry_id,string"`
	Reason  string    `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *JournalEntryVoidedEvent) EventType() string {
	return EventTypeJournalEntryVoided
}

// NewJournalEntryVoidedEvent creates a new JournalEntryVoidedEvent
func NewJournalEntryVoidedEvent(entry *JournalEntry) *JournalEntryVoidedEvent {
	return &JournalEntryVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryVoided, AggregateTypeJournalEntry, entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		Reason:          entry.VoidReason,
	}
}

// FixedAssetCreatedEvent is raised when an asset is registered
type FixedAssetCreatedEvent struct {
	shared.BaseDomainEvent
	AssetID shared.ID         `json:"asset_id,string"`
	Name    string            `json:"name"`
	Cost    valueobject.Money `json:"cost"`
}

// EventType returns the event type name
func (e *FixedAssetCreatedEvent) EventType() string {
	return EventTypeFixedAssetCreated
}

// NewFixedAssetCreatedEvent creates a new FixedAssetCreatedEvent
func NewFixedAssetCreatedEvent(asset *FixedAsset) *FixedAssetCreatedEvent {
	return &FixedAssetCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFixedAssetCreated, AggregateTypeFixedAsset, asset.ID, asset.TenantID),
		AssetID:         asset.ID,
		Name:            asset.Name,
		Cost:            asset.AcquisitionCost,
	}
}

// FixedAssetDepreciatedEvent is raised when depreciation is recorded
type FixedAssetDepreciatedEvent struct {
	shared.BaseDomainEvent
	AssetID      shared.ID         `json:"asset_id,string"`
	Amount       valueobject.Money `json:"amount"`
	CurrentValue valueobject.Money `json:"current_value"`
}

// EventType returns the event type name
func (e *FixedAssetDepreciatedEvent) EventType() string {
	return EventTypeFixedAssetDepreciated
}

// NewFixedAssetDepreciatedEvent creates a new FixedAssetDepreciatedEvent
func NewFixedAssetDepreciatedEvent(asset *FixedAsset, amount valueobject.Money) *FixedAssetDepreciatedEvent {
	return &FixedAssetDepreciatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFixedAssetDepreciated, AggregateTypeFixedAsset, asset.ID, asset.TenantID),
		AssetID:         asset.ID,
		Amount:          amount,
		CurrentValue:    asset.CurrentValue,
	}
}

// FixedAssetDisposedEvent is raised when an asset is disposed or written off
type FixedAssetDisposedEvent struct {
	shared.BaseDomainEvent
	AssetID shared.ID         `json:"asset_id,string"`
	Status  AssetStatus       `json:"status"`
	Amount  valueobject.Money `json:"amount"`
	Reason  string            `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *FixedAssetDisposedEvent) EventType() string {
	return EventTypeFixedAssetDisposed
}

// NewFixedAssetDisposedEvent creates a new FixedAssetDisposedEvent
func NewFixedAssetDisposedEvent(asset *FixedAsset, amount valueobject.Money, reason string) *FixedAssetDisposedEvent {
	return &FixedAssetDisposedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFixedAssetDisposed, AggregateTypeFixedAsset, asset.ID, asset.TenantID),
		AssetID:         asset.ID,
		Status:          asset.Status,
		Amount:          amount,
		Reason:          reason,
	}
}
