package finance

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordTransactionCommand records a new income or expense
type RecordTransactionCommand struct {
	Amount      string    `json:"amount" validate:"required,numeric"`
	Currency    string    `json:"currency" validate:"omitempty,iso4217"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"max=500"`
	UserID      shared.ID `json:"user_id" validate:"required,gt=0"`
}

// UpdateTransactionCommand replaces the core fields of a draft transaction
type UpdateTransactionCommand struct {
	ID              shared.ID `json:"id" validate:"required"`
	Amount          string    `json:"amount" validate:"required,numeric"`
	Currency        string    `json:"currency" validate:"omitempty,iso4217"`
	Description     string    `json:"description" validate:"max=500"`
	PaymentMethod   string    `json:"payment_method" validate:"max=50"`
	ReferenceNumber string    `json:"reference_number" validate:"max=100"`
}

// ApproveTransactionCommand approves a draft transaction
type ApproveTransactionCommand struct {
	ID         shared.ID `json:"id" validate:"required"`
	ApproverID shared.ID `json:"approver_id" validate:"required,gt=0"`
}

// CancelTransactionCommand cancels a draft transaction
type CancelTransactionCommand struct {
	ID     shared.ID `json:"id" validate:"required"`
	Reason string    `json:"reason" validate:"max=500"`
}

// VoidTransactionCommand voids an approved transaction
type VoidTransactionCommand struct {
	ID       shared.ID `json:"id" validate:"required"`
	VoidedBy shared.ID `json:"voided_by" validate:"required,gt=0"`
	Reason   string    `json:"reason" validate:"required,max=500"`
}

// ClassifyTransactionCommand sets the optional classification of a
// transaction. Nil IDs clear the field. The flags can only be switched on.
type ClassifyTransactionCommand struct {
	ID           shared.ID  `json:"id" validate:"required"`
	CategoryID   *shared.ID `json:"category_id"`
	FundID       *shared.ID `json:"fund_id"`
	DepartmentID *shared.ID `json:"department_id"`
	Recurring    bool       `json:"recurring"`
	Taxable      bool       `json:"taxable"`
}

// ListTransactionsQuery filters the transaction list
type ListTransactionsQuery struct {
	Type     string     `json:"type" validate:"omitempty,oneof=INCOME EXPENSE"`
	Status   string     `json:"status" validate:"omitempty,oneof=DRAFT PENDING_APPROVAL APPROVED REJECTED CANCELLED VOIDED"`
	FromDate *time.Time `json:"from_date"`
	ToDate   *time.Time `json:"to_date"`
	Search   string     `json:"search" validate:"max=100"`
	OrderBy  string     `json:"order_by"`
	OrderDir string     `json:"order_dir" validate:"omitempty,oneof=asc desc"`
	Page     int        `json:"page" validate:"gte=0"`
	PageSize int        `json:"page_size" validate:"gte=0,lte=100"`
}

// TransactionService runs the income and expense use cases
type TransactionService struct {
	repo            finance.TransactionRepository
	store           shared.AggregateStore[*finance.Transaction]
	publisher       shared.EventPublisher
	validator       *usecase.Validator
	obs             *usecase.Observer
	defaultCurrency valueobject.Currency
}

// TransactionServiceOption configures a TransactionService
type TransactionServiceOption func(*TransactionService)

// WithDefaultCurrency sets the currency used when a command names none
func WithDefaultCurrency(c valueobject.Currency) TransactionServiceOption {
	return func(s *TransactionService) {
		s.defaultCurrency = c
	}
}

// NewTransactionService creates a TransactionService. store is normally the
// tenant guard around repo; repo also serves the list queries.
func NewTransactionService(
	repo finance.TransactionRepository,
	store shared.AggregateStore[*finance.Transaction],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
	opts ...TransactionServiceOption,
) *TransactionService {
	s := &TransactionService{
		repo:            repo,
		store:           store,
		publisher:       publisher,
		validator:       usecase.NewValidator(),
		obs:             obs,
		defaultCurrency: valueobject.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIncome records a draft income transaction
func (s *TransactionService) CreateIncome(ctx context.Context, cmd RecordTransactionCommand) (*finance.Transaction, error) {
	return s.record(ctx, "create_income", finance.NewIncome, cmd)
}

// CreateExpense records a draft expense transaction
func (s *TransactionService) CreateExpense(ctx context.Context, cmd RecordTransactionCommand) (*finance.Transaction, error) {
	return s.record(ctx, "create_expense", finance.NewExpense, cmd)
}

type transactionFactory func(shared.TenantID, valueobject.Money, time.Time, string, shared.ID) (*finance.Transaction, []shared.DomainEvent, error)

func (s *TransactionService) record(ctx context.Context, method string, factory transactionFactory, cmd RecordTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", method, telemetry.SpanAttrAmount, cmd.Amount)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	money, err := s.money(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	txn, events, err := factory(tenantID, money, cmd.Date, cmd.Description, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := usecase.Create(ctx, s.store, s.publisher, txn, events); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Money.String()),
	)
	return txn, nil
}

// Update replaces amount, description, payment method and reference of a draft
func (s *TransactionService) Update(ctx context.Context, cmd UpdateTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "update", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	money, err := s.money(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, usecase.NoEvents(func(t *finance.Transaction) error {
		return t.Update(money, cmd.Description, cmd.PaymentMethod, cmd.ReferenceNumber)
	}))
}

// Approve approves a draft transaction on behalf of another user than its owner
func (s *TransactionService) Approve(ctx context.Context, cmd ApproveTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "approve", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	txn, err = usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, func(t *finance.Transaction) ([]shared.DomainEvent, error) {
		return t.Approve(cmd.ApproverID)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("transaction approved",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("approved_by", cmd.ApproverID.String()),
	)
	return txn, nil
}

// Cancel cancels a draft transaction
func (s *TransactionService) Cancel(ctx context.Context, cmd CancelTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "cancel", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, func(t *finance.Transaction) ([]shared.DomainEvent, error) {
		return t.Cancel(cmd.Reason)
	})
}

// Void reverses an approved transaction
func (s *TransactionService) Void(ctx context.Context, cmd VoidTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "void", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, func(t *finance.Transaction) ([]shared.DomainEvent, error) {
		return t.Void(cmd.VoidedBy, cmd.Reason)
	})
}

// Classify sets category, fund, department and flags in one save
func (s *TransactionService) Classify(ctx context.Context, cmd ClassifyTransactionCommand) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "classify", telemetry.SpanAttrAggregateID, cmd.ID)
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	return usecase.Mutate(ctx, s.store, s.publisher, cmd.ID, usecase.NoEvents(func(t *finance.Transaction) error {
		if err := t.SetCategory(cmd.CategoryID); err != nil {
			return err
		}
		if err := t.SetFund(cmd.FundID); err != nil {
			return err
		}
		if err := t.SetDepartment(cmd.DepartmentID); err != nil {
			return err
		}
		if cmd.Recurring {
			if err := t.MarkRecurring(); err != nil {
				return err
			}
		}
		if cmd.Taxable {
			return t.MarkTaxable()
		}
		return nil
	}))
}

// Get returns a transaction of the acting tenant
func (s *TransactionService) Get(ctx context.Context, id shared.ID) (txn *finance.Transaction, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "get", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Load(ctx, s.store, id)
}

// List returns one page of the acting tenant's transactions
func (s *TransactionService) List(ctx context.Context, q ListTransactionsQuery) (page shared.Paginated[*finance.Transaction], err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "list")
	defer func() { end(err) }()

	if err := s.validator.Validate(q); err != nil {
		return page, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return page, err
	}

	filter := finance.TransactionFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   q.Search,
		},
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
	}
	if q.Type != "" {
		t := finance.TransactionType(q.Type)
		filter.Type = &t
	}
	if q.Status != "" {
		st := finance.TransactionStatus(q.Status)
		filter.Status = &st
	}

	items, total, err := s.repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return page, err
	}
	pageNum := q.Page
	if pageNum < 1 {
		pageNum = 1
	}
	return shared.NewPaginated(items, total, pageNum, filter.Limit()), nil
}

// CalculateTax returns the tax due on a transaction at rate (0.06 for 6%)
func (s *TransactionService) CalculateTax(ctx context.Context, id shared.ID, rate decimal.Decimal) (tax valueobject.Money, err error) {
	ctx, end := s.obs.Begin(ctx, "transaction", "calculate_tax", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return tax, shared.NewValidationError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}
	txn, err := usecase.Load(ctx, s.store, id)
	if err != nil {
		return tax, err
	}
	return txn.CalculateTax(rate), nil
}

func (s *TransactionService) money(amount, currency string) (valueobject.Money, error) {
	cur := s.defaultCurrency
	if currency != "" {
		parsed, err := valueobject.ParseCurrency(currency)
		if err != nil {
			return valueobject.Money{}, err
		}
		cur = parsed
	}
	return valueobject.NewMoneyFromString(amount, cur)
}
