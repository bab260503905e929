package models

import (
	"time"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction aggregate
type TransactionModel struct {
	TenantAggregateModel
	Amount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Currency        string                    `gorm:"type:varchar(3);not null"`
	Type            finance.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status          finance.TransactionStatus `gorm:"type:varchar(30);not null;index"`
	TransactionDate time.Time                 `gorm:"not null;index"`
	Description     string                    `gorm:"type:varchar(500)"`
	PaymentMethod   string                    `gorm:"type:varchar(50)"`
	ReferenceNumber string                    `gorm:"type:varchar(100)"`
	IsRecurring     bool                      `gorm:"not null"`
	IsTaxable       bool                      `gorm:"not null"`
	UserID          int64                     `gorm:"not null;index"`
	DepartmentID    *int64
	FundID          *int64
	CategoryID      *int64
	ApprovedAt      *time.Time
	ApprovedBy      *int64
	VoidedAt        *time.Time
	VoidedBy        *int64
	VoidReason      string `gorm:"type:varchar(500)"`
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() (*finance.Transaction, error) {
	var d moneyDecoder
	txn := &finance.Transaction{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Money:               d.money(m.Amount, m.Currency),
		Type:                m.Type,
		Status:              m.Status,
		TransactionDate:     m.TransactionDate,
		Description:         m.Description,
		PaymentMethod:       m.PaymentMethod,
		ReferenceNumber:     m.ReferenceNumber,
		IsRecurring:         m.IsRecurring,
		IsTaxable:           m.IsTaxable,
		UserID:              shared.ID(m.UserID),
		DepartmentID:        idPtr(m.DepartmentID),
		FundID:              idPtr(m.FundID),
		CategoryID:          idPtr(m.CategoryID),
		ApprovedAt:          m.ApprovedAt,
		ApprovedBy:          idPtr(m.ApprovedBy),
		VoidedAt:            m.VoidedAt,
		VoidedBy:            idPtr(m.VoidedBy),
		VoidReason:          m.VoidReason,
		CancelReason:        m.CancelReason,
	}
	if d.err != nil {
		return nil, d.err
	}
	return txn, nil
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{
		Amount:          t.Money.Amount(),
		Currency:        t.Money.Currency().String(),
		Type:            t.Type,
		Status:          t.Status,
		TransactionDate: t.TransactionDate,
		Description:     t.Description,
		PaymentMethod:   t.PaymentMethod,
		ReferenceNumber: t.ReferenceNumber,
		IsRecurring:     t.IsRecurring,
		IsTaxable:       t.IsTaxable,
		UserID:          t.UserID.Int64(),
		DepartmentID:    int64Ptr(t.DepartmentID),
		FundID:          int64Ptr(t.FundID),
		CategoryID:      int64Ptr(t.CategoryID),
		ApprovedAt:      t.ApprovedAt,
		ApprovedBy:      int64Ptr(t.ApprovedBy),
		VoidedAt:        t.VoidedAt,
		VoidedBy:        int64Ptr(t.VoidedBy),
		VoidReason:      t.VoidReason,
		CancelReason:    t.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// JournalEntryModel is the persistence model for the JournalEntry header
type JournalEntryModel struct {
	TenantAggregateModel
	EntryDate   time.Time                  `gorm:"not null;index"`
	Reference   string                     `gorm:"type:varchar(100);index"`
	Description string                     `gorm:"type:varchar(500)"`
	Currency    string                     `gorm:"type:varchar(3);not null"`
	Status      finance.JournalEntryStatus `gorm:"type:varchar(20);not null;index"`
	FundID      *int64
	CreatedBy   int64 `gorm:"not null"`
	PostedAt    *time.Time
	VoidedAt    *time.Time
	VoidReason  string             `gorm:"type:varchar(500)"`
	Lines       []JournalLineModel `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalLineModel is one line of a journal entry. Position keeps line order.
type JournalLineModel struct {
	EntryID     int64           `gorm:"primaryKey;autoIncrement:false"`
	Position    int             `gorm:"primaryKey;autoIncrement:false"`
	AccountID   int64           `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the header and its lines to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() (*finance.JournalEntry, error) {
	var d moneyDecoder
	lines := make([]finance.JournalLine, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = finance.JournalLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       d.money(l.Debit, m.Currency),
			Credit:      d.money(l.Credit, m.Currency),
		}
	}
	if d.err != nil {
		return nil, d.err
	}

	return finance.RestoreJournalEntry(finance.JournalEntry{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		EntryDate:           m.EntryDate,
		Reference:           m.Reference,
		Description:         m.Description,
		Currency:            valueobject.Currency(m.Currency),
		Status:              m.Status,
		FundID:              idPtr(m.FundID),
		CreatedBy:           shared.ID(m.CreatedBy),
		PostedAt:            m.PostedAt,
		VoidedAt:            m.VoidedAt,
		VoidReason:          m.VoidReason,
	}, lines), nil
}

// JournalEntryModelFromDomain creates a persistence model, lines included
func JournalEntryModelFromDomain(e *finance.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		EntryDate:   e.EntryDate,
		Reference:   e.Reference,
		Description: e.Description,
		Currency:    e.Currency.String(),
		Status:      e.Status,
		FundID:      int64Ptr(e.FundID),
		CreatedBy:   e.CreatedBy.Int64(),
		PostedAt:    e.PostedAt,
		VoidedAt:    e.VoidedAt,
		VoidReason:  e.VoidReason,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)

	for i, l := range e.Lines() {
		m.Lines = append(m.Lines, JournalLineModel{
			EntryID:     m.ID,
			Position:    i,
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit.Amount(),
			Credit:      l.Credit.Amount(),
		})
	}
	return m
}

// FixedAssetModel is the persistence model for the FixedAsset aggregate
type FixedAssetModel struct {
	TenantAggregateModel
	Name                    string              `gorm:"type:varchar(200);not null"`
	Description             string              `gorm:"type:text"`
	SerialNumber            string              `gorm:"type:varchar(100)"`
	Location                string              `gorm:"type:varchar(200)"`
	DepartmentID            *int64              `gorm:"index"`
	AcquisitionDate         time.Time           `gorm:"not null"`
	Currency                string              `gorm:"type:varchar(3);not null"`
	AcquisitionCost         decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	CurrentValue            decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	AccumulatedDepreciation decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Status                  finance.AssetStatus `gorm:"type:varchar(20);not null;index"`
	DisposedAt              *time.Time
	DisposalAmount          *decimal.Decimal `gorm:"type:decimal(18,2)"`
	DisposalReason          string           `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FixedAssetModel) TableName() string {
	return "fixed_assets"
}

// ToDomain converts the persistence model to a domain FixedAsset
func (m *FixedAssetModel) ToDomain() (*finance.FixedAsset, error) {
	var d moneyDecoder
	asset := &finance.FixedAsset{
		TenantAggregateRoot:     m.ToDomainTenantAggregateRoot(),
		Name:                    m.Name,
		Description:             m.Description,
		SerialNumber:            m.SerialNumber,
		Location:                m.Location,
		DepartmentID:            idPtr(m.DepartmentID),
		AcquisitionDate:         m.AcquisitionDate,
		AcquisitionCost:         d.money(m.AcquisitionCost, m.Currency),
		CurrentValue:            d.money(m.CurrentValue, m.Currency),
		AccumulatedDepreciation: d.money(m.AccumulatedDepreciation, m.Currency),
		Status:                  m.Status,
		DisposedAt:              m.DisposedAt,
		DisposalReason:          m.DisposalReason,
	}
	if m.DisposalAmount != nil {
		amount := d.money(*m.DisposalAmount, m.Currency)
		asset.DisposalAmount = &amount
	}
	if d.err != nil {
		return nil, d.err
	}
	return asset, nil
}

// FixedAssetModelFromDomain creates a persistence model from a domain FixedAsset
func FixedAssetModelFromDomain(a *finance.FixedAsset) *FixedAssetModel {
	m := &FixedAssetModel{
		Name:                    a.Name,
		Description:             a.Description,
		SerialNumber:            a.SerialNumber,
		Location:                a.Location,
		DepartmentID:            int64Ptr(a.DepartmentID),
		AcquisitionDate:         a.AcquisitionDate,
		Currency:                a.AcquisitionCost.Currency().String(),
		AcquisitionCost:         a.AcquisitionCost.Amount(),
		CurrentValue:            a.CurrentValue.Amount(),
		AccumulatedDepreciation: a.AccumulatedDepreciation.Amount(),
		Status:                  a.Status,
		DisposedAt:              a.DisposedAt,
		DisposalReason:          a.DisposalReason,
	}
	if a.DisposalAmount != nil {
		amount := a.DisposalAmount.Amount()
		m.DisposalAmount = &amount
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}
