package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
)

// DefaultFileFormat is the rendering format recorded for new reports
const DefaultFileFormat = "XLSX"

// ErrAINotEnabled is returned by AI analysis steps on reports without AI analysis
var ErrAINotEnabled = shared.NewDomainError(shared.KindStateTransition, "AI_NOT_ENABLED", "AI analysis is not enabled for this report")

// Report is the aggregate root tracking a financial report request.
// It records where the rendered file lives; rendering happens elsewhere.
type Report struct {
	shared.TenantAggregateRoot
	Type              ReportType
	Name              string
	StartDate         time.Time
	EndDate           time.Time
	Status            ReportStatus
	FileFormat        string
	FilePath          string
	FileSize          *int64
	AIAnalysisEnabled bool
	AIAnalysisStatus  AIAnalysisStatus
	AIAnalysisData    string
	ErrorMessage      string
	CreatedBy         shared.ID
	CompletedAt       *time.Time
}

// NewReport requests a report over [start, end]. The report starts in GENERATING.
func NewReport(tenantID shared.TenantID, reportType ReportType, name string, start, end time.Time, createdBy shared.ID) (*Report, error) {
	if tenantID <= 0 {
		return nil, shared.NewValidationError("INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	if !reportType.IsValid() {
		return nil, shared.NewValidationError("INVALID_REPORT_TYPE", fmt.Sprintf("Invalid report type: %s", reportType))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Report name cannot be empty")
	}
	if err := validateRange(start, end, time.Now()); err != nil {
		return nil, err
	}
	if createdBy <= 0 {
		return nil, shared.NewValidationError("INVALID_USER", "Creator user ID cannot be empty")
	}

	return &Report{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                reportType,
		Name:                name,
		StartDate:           dateOnly(start),
		EndDate:             dateOnly(end),
		Status:              ReportStatusGenerating,
		FileFormat:          DefaultFileFormat,
		CreatedBy:           createdBy,
	}, nil
}

// NewReportForPeriod requests a report over a predefined period
func NewReportForPeriod(tenantID shared.TenantID, reportType ReportType, name string, period ReportPeriod, createdBy shared.ID) (*Report, error) {
	return NewReport(tenantID, reportType, name, period.Start, period.End, createdBy)
}

// NewReportWithAI requests a report with AI analysis enabled
func NewReportWithAI(tenantID shared.TenantID, reportType ReportType, name string, start, end time.Time, createdBy shared.ID) (*Report, error) {
	r, err := NewReport(tenantID, reportType, name, start, end, createdBy)
	if err != nil {
		return nil, err
	}
	r.EnableAIAnalysis()
	return r, nil
}

// CompleteGeneration records the rendered file and moves the report to COMPLETED
func (r *Report) CompleteGeneration(filePath string, fileSize int64) ([]shared.DomainEvent, error) {
	if r.Status != ReportStatusGenerating {
		return nil, shared.NewStateError("Report is not in generating status")
	}
	if strings.TrimSpace(filePath) == "" {
		return nil, shared.NewValidationError("INVALID_FILE_PATH", "File path cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewValidationError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	now := time.Now()
	r.FilePath = filePath
	r.FileSize = &fileSize
	r.Status = ReportStatusCompleted
	r.CompletedAt = &now
	r.ErrorMessage = ""
	r.UpdatedAt = now

	return shared.Events(NewReportGeneratedEvent(r)), nil
}

// FailGeneration moves the report to FAILED
func (r *Report) FailGeneration(message string) ([]shared.DomainEvent, error) {
	if r.Status != ReportStatusGenerating {
		return nil, shared.NewStateError("Report is not in generating status")
	}

	r.Status = ReportStatusFailed
	r.ErrorMessage = message
	r.Touch()

	return shared.Events(NewReportGenerationFailedEvent(r)), nil
}

// EnableAIAnalysis turns on AI analysis and marks it pending
func (r *Report) EnableAIAnalysis() {
	r.AIAnalysisEnabled = true
	r.AIAnalysisStatus = AIAnalysisStatusPending
	r.Touch()
}

// PrepareForAIAnalysis stores the data handed to the analyzer
func (r *Report) PrepareForAIAnalysis(data string) error {
	if !r.AIAnalysisEnabled {
		return ErrAINotEnabled
	}
	r.AIAnalysisData = data
	r.AIAnalysisStatus = AIAnalysisStatusReady
	r.Touch()
	return nil
}

// CompleteAIAnalysis stores the analyzer result
func (r *Report) CompleteAIAnalysis(result string) error {
	if !r.AIAnalysisEnabled {
		return ErrAINotEnabled
	}
	r.AIAnalysisData = result
	r.AIAnalysisStatus = AIAnalysisStatusCompleted
	r.Touch()
	return nil
}

// Rename changes the report name. Not allowed while generating.
func (r *Report) Rename(name string) error {
	if !r.Status.CanModify() {
		return shared.NewStateError("Cannot modify report while generating")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Report name cannot be empty")
	}
	r.Name = name
	r.Touch()
	return nil
}

// Archive moves a completed report to ARCHIVED
func (r *Report) Archive() error {
	if r.Status != ReportStatusCompleted {
		return shared.NewStateError("Only completed reports can be archived")
	}
	r.Status = ReportStatusArchived
	r.Touch()
	return nil
}

// IsReadyForDownload returns true if a completed file is available
func (r *Report) IsReadyForDownload() bool {
	return r.Status == ReportStatusCompleted && r.FilePath != ""
}

// IsAIAnalysisReady returns true if analysis data is prepared
func (r *Report) IsAIAnalysisReady() bool {
	return r.AIAnalysisEnabled && r.AIAnalysisStatus == AIAnalysisStatusReady
}

// PeriodDescription returns "2024-01-01 to 2024-01-31"
func (r *Report) PeriodDescription() string {
	return r.StartDate.Format(time.DateOnly) + " to " + r.EndDate.Format(time.DateOnly)
}

// FileSizeFormatted renders the file size in B, KB or MB
func (r *Report) FileSizeFormatted() string {
	if r.FileSize == nil {
		return "Unknown"
	}
	size := *r.FileSize
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
