package report

import (
	"github.com/finledger/backend/internal/domain/shared"
)

// AggregateTypeReport is the aggregate type name for reports
const AggregateTypeReport = "Report"

// Event type constants
const (
	EventTypeReportGenerated        = "ReportGenerated"
	EventTypeReportGenerationFailed = "ReportGenerationFailed"
)

// ReportGeneratedEvent is raised when a report file has been produced
type ReportGeneratedEvent struct {
	shared.BaseDomainEvent
	ReportID          shared.ID  `json:"report_id,string"`
	ReportType        ReportType `json:"report_type"`
	FilePath          string     `json:"file_path"`
	AIAnalysisEnabled bool       `json:"ai_analysis_enabled"`
}

// EventType returns the event type name
func (e *ReportGeneratedEvent) EventType() string {
	return EventTypeReportGenerated
}

// NewReportGeneratedEvent creates a new ReportGeneratedEvent
func NewReportGeneratedEvent(r *Report) *ReportGeneratedEvent {
	return &ReportGeneratedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReportGenerated, AggregateTypeReport, r.ID, r.TenantID),
		ReportID:          r.ID,
		ReportType:        r.Type,
		FilePath:          r.FilePath,
		AIAnalysisEnabled: r.AIAnalysisEnabled,
	}
}

// ReportGenerationFailedEvent is raised when report generation fails
type ReportGenerationFailedEvent struct {
	shared.BaseDomainEvent
	ReportID     shared.ID  `json:"report_id,string"`
	ReportType   ReportType `json:"report_type"`
	ErrorMessage string     `json:"error_message"`
}

// EventType returns the event type name
func (e *ReportGenerationFailedEvent) EventType() string {
	return EventTypeReportGenerationFailed
}

// NewReportGenerationFailedEvent creates a new ReportGenerationFailedEvent
func NewReportGenerationFailedEvent(r *Report) *ReportGenerationFailedEvent {
	return &ReportGenerationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportGenerationFailed, AggregateTypeReport, r.ID, r.TenantID),
		ReportID:        r.ID,
		ReportType:      r.Type,
		ErrorMessage:    r.ErrorMessage,
	}
}
