package models

import (
	"time"

	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
)

// ReportModel is the persistence model for the Report aggregate
type ReportModel struct {
	TenantAggregateModel
	Type              report.ReportType   `gorm:"type:varchar(30);not null;index"`
	Name              string              `gorm:"type:varchar(255);not null"`
	StartDate         time.Time           `gorm:"not null"`
	EndDate           time.Time           `gorm:"not null"`
	Status            report.ReportStatus `gorm:"type:varchar(20);not null;index"`
	FileFormat        string              `gorm:"type:varchar(20)"`
	FilePath          string              `gorm:"type:varchar(500)"`
	FileSize          *int64
	AIAnalysisEnabled bool                    `gorm:"not null"`
	AIAnalysisStatus  report.AIAnalysisStatus `gorm:"type:varchar(20)"`
	AIAnalysisData    string                  `gorm:"type:text"`
	ErrorMessage      string                  `gorm:"type:varchar(1000)"`
	CreatedBy         int64                   `gorm:"not null"`
	CompletedAt       *time.Time
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report
func (m *ReportModel) ToDomain() *report.Report {
	return &report.Report{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Type:                m.Type,
		Name:                m.Name,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Status:              m.Status,
		FileFormat:          m.FileFormat,
		FilePath:            m.FilePath,
		FileSize:            m.FileSize,
		AIAnalysisEnabled:   m.AIAnalysisEnabled,
		AIAnalysisStatus:    m.AIAnalysisStatus,
		AIAnalysisData:      m.AIAnalysisData,
		ErrorMessage:        m.ErrorMessage,
		CreatedBy:           shared.ID(m.CreatedBy),
		CompletedAt:         m.CompletedAt,
	}
}

// ReportModelFromDomain creates a persistence model from a domain Report
func ReportModelFromDomain(r *report.Report) *ReportModel {
	m := &ReportModel{
		Type:              r.Type,
		Name:              r.Name,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		Status:            r.Status,
		FileFormat:        r.FileFormat,
		FilePath:          r.FilePath,
		FileSize:          r.FileSize,
		AIAnalysisEnabled: r.AIAnalysisEnabled,
		AIAnalysisStatus:  r.AIAnalysisStatus,
		AIAnalysisData:    r.AIAnalysisData,
		ErrorMessage:      r.ErrorMessage,
		CreatedBy:         r.CreatedBy.Int64(),
		CompletedAt:       r.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&CompanyModel{},
		&UserModel{},
		&TransactionModel{},
		&JournalEntryModel{},
		&JournalLineModel{},
		&FixedAssetModel{},
		&ReportModel{},
		&OutboxEntryModel{},
	}
}
