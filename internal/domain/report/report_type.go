package report

import (
	"strings"
	"time"
)

// ReportType represents the kind of financial report
type ReportType string

const (
	ReportTypeBalanceSheet      ReportType = "BALANCE_SHEET"      // 资产负债表
	ReportTypeIncomeStatement   ReportType = "INCOME_STATEMENT"   // 损益表
	ReportTypeIncomeExpense     ReportType = "INCOME_EXPENSE"     // 收入与支出报表
	ReportTypeFinancialGrouping ReportType = "FINANCIAL_GROUPING" // 财务项目分组
)

// IsValid checks if the report type is valid
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeBalanceSheet, ReportTypeIncomeStatement, ReportTypeIncomeExpense, ReportTypeFinancialGrouping:
		return true
	}
	return false
}

// String returns the string representation
func (t ReportType) String() string {
	return string(t)
}

// DisplayName returns the English display name
func (t ReportType) DisplayName() string {
	switch t {
	case ReportTypeBalanceSheet:
		return "Balance Sheet"
	case ReportTypeIncomeStatement:
		return "Income Statement"
	case ReportTypeIncomeExpense:
		return "Income and Expense Report"
	case ReportTypeFinancialGrouping:
		return "Financial Grouping Report"
	}
	return string(t)
}

// DefaultFileName builds a file name such as income_statement_20240101_to_20240131
func (t ReportType) DefaultFileName(start, end time.Time) string {
	return strings.ToLower(string(t)) + "_" + start.Format("20060102") + "_to_" + end.Format("20060102")
}

// ReportStatus represents the lifecycle status of a report
type ReportStatus string

const (
	ReportStatusGenerating ReportStatus = "GENERATING" // 生成中
	ReportStatusCompleted  ReportStatus = "COMPLETED"  // 已完成
	ReportStatusFailed     ReportStatus = "FAILED"     // 失败
	ReportStatusArchived   ReportStatus = "ARCHIVED"   // 已归档
)

// IsValid checks if the status is valid
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusGenerating, ReportStatusCompleted, ReportStatusFailed, ReportStatusArchived:
		return true
	}
	return false
}

// String returns the string representation
func (s ReportStatus) String() string {
	return string(s)
}

// CanDownload returns true if the report file may be downloaded
func (s ReportStatus) CanDownload() bool {
	return s == ReportStatusCompleted || s == ReportStatusArchived
}

// CanModify returns true once generation has finished
func (s ReportStatus) CanModify() bool {
	return s != ReportStatusGenerating
}

// IsFinal returns true if generation has finished one way or another
func (s ReportStatus) IsFinal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed || s == ReportStatusArchived
}

// AIAnalysisStatus tracks the AI analysis side channel of a report
type AIAnalysisStatus string

const (
	AIAnalysisStatusNone      AIAnalysisStatus = ""
	AIAnalysisStatusPending   AIAnalysisStatus = "PENDING"
	AIAnalysisStatusReady     AIAnalysisStatus = "READY"
	AIAnalysisStatusCompleted AIAnalysisStatus = "COMPLETED"
)
