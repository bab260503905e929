package finance

import (
	"fmt"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
)

// JournalEntryStatus represents the status of a journal entry
type JournalEntryStatus string

const (
	JournalEntryStatusDraft  JournalEntryStatus = "DRAFT"
	JournalEntryStatusPosted JournalEntryStatus = "POSTED"
	JournalEntryStatusVoided JournalEntryStatus = "VOIDED"
)

// IsValid checks if the status is a valid JournalEntryStatus
func (s JournalEntryStatus) IsValid() bool {
	switch s {
	case JournalEntryStatusDraft, JournalEntryStatusPosted, JournalEntryStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of JournalEntryStatus
func (s JournalEntryStatus) String() string {
	return string(s)
}

// JournalLine is one debit or credit against an account. Exactly one side
// is positive and the other is zero.
type JournalLine struct {
	AccountID   int64
	Description string
	Debit       valueobject.Money
	Credit      valueobject.Money
}

// JournalEntry is a double-entry record. Lines may only change while the
// entry is a draft, and an entry only posts when its debits equal its credits.
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryDate   time.Time
	Reference   string
	Description string
	Currency    valueobject.Currency
	Status      JournalEntryStatus
	FundID      *shared.ID
	CreatedBy   shared.ID
	PostedAt    *time.Time
	VoidedAt    *time.Time
	VoidReason  string
	lines       []JournalLine
}

// NewJournalEntry creates an empty draft entry
func NewJournalEntry(tenantID shared.TenantID, entryDate time.Time, description string, currency valueobject.Currency, createdBy shared.ID) (*JournalEntry, error) {
	if tenantID <= 0 {
		return nil, shared.NewValidationError("INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	if entryDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DATE", "Entry date cannot be empty")
	}
	if _, err := valueobject.ParseCurrency(string(currency)); err != nil {
		return nil, err
	}
	if len(description) > 500 {
		return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	return &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryDate:           entryDate,
		Description:         description,
		Currency:            currency,
		Status:              JournalEntryStatusDraft,
		CreatedBy:           createdBy,
	}, nil
}

// RestoreJournalEntry rebuilds an entry from storage without re-running validation
func RestoreJournalEntry(entry JournalEntry, lines []JournalLine) *JournalEntry {
	restored := entry
	restored.lines = append([]JournalLine(nil), lines...)
	return &restored
}

// Lines returns a copy of the entry's lines in insertion order
func (e *JournalEntry) Lines() []JournalLine {
	out := make([]JournalLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// LineCount returns the number of lines
func (e *JournalEntry) LineCount() int {
	return len(e.lines)
}

// AddLine appends a line. A nil side is treated as zero.
func (e *JournalEntry) AddLine(accountID int64, debit, credit *valueobject.Money, description string) error {
	if err := e.ensureDraft("add lines to"); err != nil {
		return err
	}
	if accountID <= 0 {
		return shared.NewValidationError("INVALID_ACCOUNT", "Account ID must be positive")
	}
	d, err := e.lineAmount(debit)
	if err != nil {
		return err
	}
	c, err := e.lineAmount(credit)
	if err != nil {
		return err
	}
	if err := checkLineSides(d, c); err != nil {
		return err
	}

	e.lines = append(e.lines, JournalLine{
		AccountID:   accountID,
		Description: description,
		Debit:       d,
		Credit:      c,
	})
	e.Touch()
	return nil
}

// RemoveLine removes the line at index
func (e *JournalEntry) RemoveLine(index int) error {
	if err := e.ensureDraft("remove lines from"); err != nil {
		return err
	}
	if index < 0 || index >= len(e.lines) {
		return shared.NewValidationError("INVALID_LINE", fmt.Sprintf("Line index %d out of range", index))
	}
	e.lines = append(e.lines[:index:index], e.lines[index+1:]...)
	e.Touch()
	return nil
}

// SetReference sets the external reference
func (e *JournalEntry) SetReference(reference string) error {
	if err := e.ensureDraft("modify"); err != nil {
		return err
	}
	e.Reference = reference
	e.Touch()
	return nil
}

// SetDescription sets the description
func (e *JournalEntry) SetDescription(description string) error {
	if err := e.ensureDraft("modify"); err != nil {
		return err
	}
	if len(description) > 500 {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	e.Description = description
	e.Touch()
	return nil
}

// SetFund sets or clears the fund
func (e *JournalEntry) SetFund(fundID *shared.ID) error {
	if err := e.ensureDraft("modify"); err != nil {
		return err
	}
	e.FundID = fundID
	e.Touch()
	return nil
}

// Totals returns the summed debits and credits
func (e *JournalEntry) Totals() (debit, credit valueobject.Money) {
	debit = valueobject.Zero(e.Currency)
	credit = valueobject.Zero(e.Currency)
	for _, line := range e.lines {
		// AddLine guarantees every line is in the entry currency
		debit, _ = debit.Add(line.Debit)
		credit, _ = credit.Add(line.Credit)
	}
	return debit, credit
}

// checkBalance is the single balance predicate behind both IsBalanced and Post.
// An entry needs at least two one-sided lines and equal totals.
func (e *JournalEntry) checkBalance() error {
	if len(e.lines) < 2 {
		return shared.NewDomainError(shared.KindInvariantViolation, shared.ErrUnbalanced.Code,
			fmt.Sprintf("Journal entry needs at least two lines, has %d", len(e.lines)))
	}
	for i, line := range e.lines {
		if err := checkLineSides(line.Debit, line.Credit); err != nil {
			return shared.NewDomainError(shared.KindInvariantViolation, shared.ErrUnbalanced.Code,
				fmt.Sprintf("Journal line %d must carry exactly one positive side", i))
		}
	}
	debit, credit := e.Totals()
	if !debit.Equals(credit) {
		return shared.NewDomainError(shared.KindInvariantViolation, shared.ErrUnbalanced.Code,
			fmt.Sprintf("Journal entry is not balanced: Debit=%s, Credit=%s",
				debit.Amount().StringFixed(valueobject.Scale), credit.Amount().StringFixed(valueobject.Scale)))
	}
	return nil
}

// IsBalanced reports whether the entry would pass the balance check in Post
func (e *JournalEntry) IsBalanced() bool {
	return e.checkBalance() == nil
}

// Post validates the balance and moves the entry to POSTED.
// On failure the entry is left unchanged in DRAFT.
func (e *JournalEntry) Post() ([]shared.DomainEvent, error) {
	if e.Status != JournalEntryStatusDraft {
		return nil, shared.NewStateError(fmt.Sprintf("Cannot post journal entry in %s status", e.Status))
	}
	if err := e.checkBalance(); err != nil {
		return nil, err
	}

	now := time.Now()
	e.Status = JournalEntryStatusPosted
	e.PostedAt = &now
	e.UpdatedAt = now

	return shared.Events(NewJournalEntryPostedEvent(e)), nil
}

// Void voids a posted entry
func (e *JournalEntry) Void(reason string) ([]shared.DomainEvent, error) {
	if e.Status != JournalEntryStatusPosted {
		return nil, shared.NewStateError(fmt.Sprintf("Cannot void journal entry in %s status", e.Status))
	}

	now := time.Now()
	e.Status = JournalEntryStatusVoided
	e.VoidedAt = &now
	e.VoidReason = reason
	e.UpdatedAt = now

	return shared.Events(NewJournalEntryVoidedEvent(e)), nil
}

// IsDraft returns true if the entry still accepts changes
func (e *JournalEntry) IsDraft() bool {
	return e.Status == JournalEntryStatusDraft
}

func (e *JournalEntry) ensureDraft(action string) error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewStateError(fmt.Sprintf("Cannot %s journal entry in %s status", action, e.Status))
	}
	return nil
}

func (e *JournalEntry) lineAmount(amount *valueobject.Money) (valueobject.Money, error) {
	if amount == nil {
		return valueobject.Zero(e.Currency), nil
	}
	if amount.Currency() != e.Currency {
		return valueobject.Money{}, shared.NewDomainError(shared.KindInvariantViolation, shared.ErrCurrencyMismatch.Code,
			fmt.Sprintf("Line currency %s does not match entry currency %s", amount.Currency(), e.Currency))
	}
	if amount.IsNegative() {
		return valueobject.Money{}, shared.NewValidationError(shared.ErrInvalidAmount.Code, "Line amounts cannot be negative")
	}
	return *amount, nil
}

func checkLineSides(debit, credit valueobject.Money) error {
	if debit.IsPositive() == credit.IsPositive() {
		return shared.NewValidationError("INVALID_LINE", "A journal line must carry exactly one positive side")
	}
	return nil
}
