package finance

import (
	"context"
	"errors"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PostingAccounts are the chart-of-accounts codes used when an approved
// transaction is turned into a journal entry
type PostingAccounts struct {
	Cash    int64
	Revenue int64
	Expense int64
}

// DefaultPostingAccounts returns cash 1001, revenue 4001 and expense 5001
func DefaultPostingAccounts() PostingAccounts {
	return PostingAccounts{Cash: 1001, Revenue: 4001, Expense: 5001}
}

// JournalLineInput is one line of a manual journal entry. Amounts are
// decimal strings; an empty side counts as zero.
type JournalLineInput struct {
	AccountID   int64  `json:"account_id" validate:"required,gt=0"`
	Debit       string `json:"debit" validate:"omitempty,numeric"`
	Credit      string `json:"credit" validate:"omitempty,numeric"`
	Description string `json:"description" validate:"max=255"`
}

// CreateJournalEntryCommand creates a draft journal entry with its lines
type CreateJournalEntryCommand struct {
	EntryDate   time.Time          `json:"entry_date" validate:"required"`
	Description string             `json:"description" validate:"max=500"`
	Currency    string             `json:"currency" validate:"omitempty,iso4217"`
	Reference   string             `json:"reference" validate:"max=100"`
	FundID      *shared.ID         `json:"fund_id"`
	CreatedBy   shared.ID          `json:"created_by" validate:"required,gt=0"`
	Lines       []JournalLineInput `json:"lines" validate:"required,min=2,dive"`
	PostNow     bool               `json:"post_now"`
}

// VoidJournalEntryCommand voids a posted entry
type VoidJournalEntryCommand struct {
	ID     shared.ID `json:"id" validate:"required"`
	Reason string    `json:"reason" validate:"required,max=500"`
}

// JournalService runs the double-entry use cases
type JournalService struct {
	entries         finance.JournalEntryRepository
	store           shared.AggregateStore[*finance.JournalEntry]
	transactions    shared.AggregateStore[*finance.Transaction]
	publisher       shared.EventPublisher
	validator       *usecase.Validator
	obs             *usecase.Observer
	accounts        PostingAccounts
	defaultCurrency valueobject.Currency
}

// NewJournalService creates a JournalService. store and transactions are
// normally tenant guards; entries serves reference lookups.
func NewJournalService(
	entries finance.JournalEntryRepository,
	store shared.AggregateStore[*finance.JournalEntry],
	transactions shared.AggregateStore[*finance.Transaction],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
	accounts PostingAccounts,
	defaultCurrency valueobject.Currency,
) *JournalService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &JournalService{
		entries:         entries,
		store:           store,
		transactions:    transactions,
		publisher:       publisher,
		validator:       usecase.NewValidator(),
		obs:             obs,
		accounts:        accounts,
		defaultCurrency: defaultCurrency,
	}
}

// CreateManual creates a draft entry from cmd, and posts it at once when
// cmd.PostNow is set. An unbalanced entry is rejected before anything is
// saved in that case.
func (s *JournalService) CreateManual(ctx context.Context, cmd CreateJournalEntryCommand) (entry *finance.JournalEntry, err error) {
	ctx, end := s.obs.Begin(ctx, "journal", "create_manual")
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	currency := s.defaultCurrency
	if cmd.Currency != "" {
		if currency, err = valueobject.ParseCurrency(cmd.Currency); err != nil {
			return nil, err
		}
	}

	entry, err = finance.NewJournalEntry(tenantID, cmd.EntryDate, cmd.Description, currency, cmd.CreatedBy)
	if err != nil {
		return nil, err
	}
	if cmd.Reference != "" {
		if err := entry.SetReference(cmd.Reference); err != nil {
			return nil, err
		}
	}
	if err := entry.SetFund(cmd.FundID); err != nil {
		return nil, err
	}
	for _, line := range cmd.Lines {
		debit, err := optionalAmount(line.Debit, currency)
		if err != nil {
			return nil, err
		}
		credit, err := optionalAmount(line.Credit, currency)
		if err != nil {
			return nil, err
		}
		if err := entry.AddLine(line.AccountID, debit, credit, line.Description); err != nil {
			return nil, err
		}
	}

	var events []shared.DomainEvent
	if cmd.PostNow {
		if events, err = entry.Post(); err != nil {
			return nil, err
		}
	}
	if err := usecase.Create(ctx, s.store, s.publisher, entry, events); err != nil {
		return nil, err
	}
	return entry, nil
}

// Post posts a balanced draft entry
func (s *JournalService) Post(ctx context.Context, id shared.ID) (entry *finance.JournalEntry, err error) {
	ctx, end := s.obs.Begin(ctx, "journal", "post", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	entry, err = usecase.Mutate(ctx, s.store, s.publisher, id, func(e *finance.JournalEntry) ([]shared.DomainEvent, error) {
		return e.Post()
	})
	if err != nil {
		return nil, err
	}
	debit, _ := entry.Totals()
	logger.L(ctx).Info("journal entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("total", debit.String()),
		zap.Int("lines", entry.LineCount()),
	)
	return entry, nil
}

// Void voids a posted entry
func (s *JournalService) Void(ctx context.Context, cmd VoidJournalEntryCommand) (entry *finance.JournalEntry, err error) {
	ctx, end := s.obs.Begin(ctx, "journal", "void", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, func(e *finance.JournalEntry) ([]shared.DomainEvent, error) {
		return e.Void(cmd.Reason)
	})
}

// Get returns an entry of the acting tenant
func (s *JournalService) Get(ctx context.Context, id shared.ID) (entry *finance.JournalEntry, err error) {
	ctx, end := s.obs.Begin(ctx, "journal", "get", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Load(ctx, s.store, id)
}

// TransactionReference is the journal reference of the entry posted for a transaction
func TransactionReference(id shared.ID) string {
	return "TXN-" + id.String()
}

// CreateFromTransaction posts the journal entry for an approved transaction.
// Income debits cash and credits revenue; expense debits expense and credits
// cash. When an entry for the transaction already exists it is returned
// unchanged.
func (s *JournalService) CreateFromTransaction(ctx context.Context, transactionID shared.ID) (entry *finance.JournalEntry, err error) {
	ctx, end := s.obs.Begin(ctx, "journal", "create_from_transaction", telemetry.SpanAttrAggregateID, transactionID)
	defer func() { end(err) }()

	txn, err := usecase.Load(ctx, s.transactions, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != finance.TransactionStatusApproved {
		return nil, shared.NewStateError("Only approved transactions can be posted to the journal, transaction is " + string(txn.Status))
	}

	reference := TransactionReference(txn.ID)
	existing, err := s.entries.FindByReference(ctx, txn.TenantID, reference)
	switch {
	case err == nil:
		logger.L(ctx).Debug("journal entry already posted for transaction",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("entry_id", existing.ID.String()),
		)
		return existing, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	createdBy := txn.UserID
	if txn.ApprovedBy != nil {
		createdBy = *txn.ApprovedBy
	}
	entry, err = finance.NewJournalEntry(txn.TenantID, txn.TransactionDate, txn.Description, txn.Money.Currency(), createdBy)
	if err != nil {
		return nil, err
	}
	if err := entry.SetReference(reference); err != nil {
		return nil, err
	}
	if err := entry.SetFund(txn.FundID); err != nil {
		return nil, err
	}

	debitAccount, creditAccount := s.accounts.Expense, s.accounts.Cash
	if txn.IsIncome() {
		debitAccount, creditAccount = s.accounts.Cash, s.accounts.Revenue
	}
	amount := txn.Money
	if err := entry.AddLine(debitAccount, &amount, nil, txn.Description); err != nil {
		return nil, err
	}
	if err := entry.AddLine(creditAccount, nil, &amount, txn.Description); err != nil {
		return nil, err
	}

	events, err := entry.Post()
	if err != nil {
		return nil, err
	}
	if err := usecase.Create(ctx, s.store, s.publisher, entry, events); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("journal entry posted for transaction",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.Int64("debit_account", debitAccount),
		zap.Int64("credit_account", creditAccount),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

func optionalAmount(amount string, currency valueobject.Currency) (*valueobject.Money, error) {
	if amount == "" {
		return nil, nil
	}
	m, err := valueobject.NewMoneyFromString(amount, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
