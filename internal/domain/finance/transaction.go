package finance

import (
	"fmt"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the type
func (t TransactionType) DisplayName() string {
	switch t {
	case TransactionTypeIncome:
		return "收入"
	case TransactionTypeExpense:
		return "支出"
	default:
		return string(t)
	}
}

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusDraft           TransactionStatus = "DRAFT"            // 草稿
	TransactionStatusPendingApproval TransactionStatus = "PENDING_APPROVAL" // 待审批
	TransactionStatusApproved        TransactionStatus = "APPROVED"         // 已批准
	TransactionStatusRejected        TransactionStatus = "REJECTED"         // 已拒绝
	TransactionStatusCancelled       TransactionStatus = "CANCELLED"        // 已取消
	TransactionStatusVoided          TransactionStatus = "VOIDED"           // 已作废
)

var transactionStatusCodes = []TransactionStatus{
	TransactionStatusDraft,
	TransactionStatusPendingApproval,
	TransactionStatusApproved,
	TransactionStatusRejected,
	TransactionStatusCancelled,
	TransactionStatusVoided,
}

// TransactionStatusFromCode maps the numeric status code (0-5) to a status
func TransactionStatusFromCode(code int) (TransactionStatus, error) {
	if code < 0 || code >= len(transactionStatusCodes) {
		return "", shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Invalid transaction status code: %d", code))
	}
	return transactionStatusCodes[code], nil
}

// Code returns the numeric status code, or -1 for unknown statuses
func (s TransactionStatus) Code() int {
	for i, status := range transactionStatusCodes {
		if status == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	return s.Code() >= 0
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// CanBeModified returns true if core fields may be changed
func (s TransactionStatus) CanBeModified() bool {
	return s == TransactionStatusDraft
}

// CanBeApproved returns true if the transaction can be approved
func (s TransactionStatus) CanBeApproved() bool {
	return s == TransactionStatusDraft
}

// CanBeCancelled returns true if the transaction can be cancelled
func (s TransactionStatus) CanBeCancelled() bool {
	return s == TransactionStatusDraft
}

// CanBeVoided returns true if the transaction can be voided
func (s TransactionStatus) CanBeVoided() bool {
	return s == TransactionStatusApproved
}

// CanBeClassified returns true if category, fund, department and flags may be set
func (s TransactionStatus) CanBeClassified() bool {
	return s == TransactionStatusDraft || s == TransactionStatusApproved
}

// IsTerminal returns true if no further transition is possible
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCancelled || s == TransactionStatusVoided || s == TransactionStatusRejected
}

// Transaction is a single income or expense record owned by one tenant
type Transaction struct {
	shared.TenantAggregateRoot
	Money           valueobject.Money
	Type            TransactionType
	Status          TransactionStatus
	TransactionDate time.Time
	Description     string
	PaymentMethod   string
	ReferenceNumber string
	IsRecurring     bool
	IsTaxable       bool
	UserID          shared.ID
	DepartmentID    *shared.ID
	FundID          *shared.ID
	CategoryID      *shared.ID
	ApprovedAt      *time.Time
	ApprovedBy      *shared.ID
	VoidedAt        *time.Time
	VoidedBy        *shared.ID
	VoidReason      string
	CancelReason    string
}

// NewIncome creates a draft income transaction
func NewIncome(tenantID shared.TenantID, money valueobject.Money, date time.Time, description string, userID shared.ID) (*Transaction, []shared.DomainEvent, error) {
	return newTransaction(TransactionTypeIncome, tenantID, money, date, description, userID)
}

// NewExpense creates a draft expense transaction
func NewExpense(tenantID shared.TenantID, money valueobject.Money, date time.Time, description string, userID shared.ID) (*Transaction, []shared.DomainEvent, error) {
	return newTransaction(TransactionTypeExpense, tenantID, money, date, description, userID)
}

func newTransaction(
	txType TransactionType,
	tenantID shared.TenantID,
	money valueobject.Money,
	date time.Time,
	description string,
	userID shared.ID,
) (*Transaction, []shared.DomainEvent, error) {
	if tenantID <= 0 {
		return nil, nil, shared.NewValidationError("INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	if userID <= 0 {
		return nil, nil, shared.NewValidationError("INVALID_USER", "User ID cannot be empty")
	}
	if err := validateTransactionMoney(money); err != nil {
		return nil, nil, err
	}
	if err := validateTransactionDate(date, time.Now()); err != nil {
		return nil, nil, err
	}
	if len(description) > 500 {
		return nil, nil, shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	txn := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Money:               money,
		Type:                txType,
		Status:              TransactionStatusDraft,
		TransactionDate:     date,
		Description:         description,
		UserID:              userID,
	}

	return txn, shared.Events(NewTransactionCreatedEvent(txn)), nil
}

// Update replaces the amount and descriptive fields of a draft transaction
func (t *Transaction) Update(money valueobject.Money, description, paymentMethod, referenceNumber string) error {
	if !t.Status.CanBeModified() {
		return shared.NewStateError(fmt.Sprintf("Cannot update transaction in %s status", t.Status))
	}
	if err := validateTransactionMoney(money); err != nil {
		return err
	}
	if len(description) > 500 {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	t.Money = money
	t.Description = description
	t.PaymentMethod = paymentMethod
	t.ReferenceNumber = referenceNumber
	t.Touch()
	return nil
}

// SetCategory sets or clears the category
func (t *Transaction) SetCategory(categoryID *shared.ID) error {
	if err := t.ensureClassifiable(); err != nil {
		return err
	}
	t.CategoryID = categoryID
	t.Touch()
	return nil
}

// SetFund sets or clears the fund
func (t *Transaction) SetFund(fundID *shared.ID) error {
	if err := t.ensureClassifiable(); err != nil {
		return err
	}
	t.FundID = fundID
	t.Touch()
	return nil
}

// SetDepartment sets or clears the department
func (t *Transaction) SetDepartment(departmentID *shared.ID) error {
	if err := t.ensureClassifiable(); err != nil {
		return err
	}
	t.DepartmentID = departmentID
	t.Touch()
	return nil
}

// MarkRecurring flags the transaction as recurring
func (t *Transaction) MarkRecurring() error {
	if err := t.ensureClassifiable(); err != nil {
		return err
	}
	t.IsRecurring = true
	t.Touch()
	return nil
}

// MarkTaxable flags the transaction as taxable
func (t *Transaction) MarkTaxable() error {
	if err := t.ensureClassifiable(); err != nil {
		return err
	}
	t.IsTaxable = true
	t.Touch()
	return nil
}

// Approve approves a draft transaction. The owner cannot approve their own transaction.
func (t *Transaction) Approve(approverID shared.ID) ([]shared.DomainEvent, error) {
	if !t.Status.CanBeApproved() {
		return nil, shared.NewStateError(fmt.Sprintf("Cannot approve transaction in %s status", t.Status))
	}
	if approverID <= 0 {
		return nil, shared.NewValidationError("INVALID_USER", "Approver user ID cannot be empty")
	}
	if approverID == t.UserID {
		return nil, shared.ErrSelfApproval
	}

	now := time.Now()
	t.Status = TransactionStatusApproved
	t.ApprovedAt = &now
	t.ApprovedBy = &approverID
	t.UpdatedAt = now

	return shared.Events(NewTransactionApprovedEvent(t)), nil
}

// Cancel cancels a draft transaction. Approved transactions must be voided instead.
func (t *Transaction) Cancel(reason string) ([]shared.DomainEvent, error) {
	if !t.Status.CanBeCancelled() {
		msg := fmt.Sprintf("Cannot cancel transaction in %s status", t.Status)
		if t.Status == TransactionStatusApproved {
			msg += "; void it instead"
		}
		return nil, shared.NewStateError(msg)
	}

	t.Status = TransactionStatusCancelled
	t.CancelReason = reason
	t.Touch()

	return shared.Events(NewTransactionCancelledEvent(t, reason)), nil
}

// Void reverses an approved transaction
func (t *Transaction) Void(voidedBy shared.ID, reason string) ([]shared.DomainEvent, error) {
	if !t.Status.CanBeVoided() {
		return nil, shared.NewStateError(fmt.Sprintf("Cannot void transaction in %s status", t.Status))
	}
	if voidedBy <= 0 {
		return nil, shared.NewValidationError("INVALID_USER", "Voiding user ID cannot be empty")
	}

	now := time.Now()
	t.Status = TransactionStatusVoided
	t.VoidedAt = &now
	t.VoidedBy = &voidedBy
	t.VoidReason = reason
	t.UpdatedAt = now

	return shared.Events(NewTransactionCancelledEvent(t, reason)), nil
}

// CalculateTax returns money multiplied by rate when taxable, zero otherwise
func (t *Transaction) CalculateTax(rate decimal.Decimal) valueobject.Money {
	if !t.IsTaxable {
		return valueobject.Zero(t.Money.Currency())
	}
	return t.Money.Multiply(rate)
}

// CanModify returns true if core fields may be changed
func (t *Transaction) CanModify() bool {
	return t.Status.CanBeModified()
}

// IsFinal returns true if the transaction reached a terminal status
func (t *Transaction) IsFinal() bool {
	return t.Status.IsTerminal()
}

// IsIncome returns true for income transactions
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

func (t *Transaction) ensureClassifiable() error {
	if !t.Status.CanBeClassified() {
		return shared.NewStateError(fmt.Sprintf("Transaction is in final state %s and cannot be modified", t.Status))
	}
	return nil
}

func validateTransactionMoney(money valueobject.Money) error {
	if !money.IsPositive() {
		return shared.NewValidationError(shared.ErrInvalidAmount.Code, "Transaction amount must be positive")
	}
	return nil
}

// validateTransactionDate accepts dates up to and including tomorrow
func validateTransactionDate(date, now time.Time) error {
	if date.IsZero() {
		return shared.NewValidationError("INVALID_DATE", "Transaction date cannot be empty")
	}
	limit := dateOnly(now).AddDate(0, 0, 1)
	if dateOnly(date).After(limit) {
		return shared.NewValidationError("INVALID_DATE", "Transaction date cannot be in the future")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
