package report

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/application/usecase"
	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RequestReportCommand requests a report. The period is either a preset
// (MONTHLY, QUARTERLY, YEARLY with Year and Month or Quarter) or CUSTOM
// with StartDate and EndDate.
type RequestReportCommand struct {
	Type       string    `json:"type" validate:"required,oneof=BALANCE_SHEET INCOME_STATEMENT INCOME_EXPENSE FINANCIAL_GROUPING"`
	Name       string    `json:"name" validate:"max=200"`
	PeriodType string    `json:"period_type" validate:"required,oneof=MONTHLY QUARTERLY YEARLY CUSTOM"`
	Year       int       `json:"year" validate:"required_unless=PeriodType CUSTOM,gte=0,lte=9999"`
	Month      int       `json:"month" validate:"required_if=PeriodType MONTHLY,gte=0,lte=12"`
	Quarter    int       `json:"quarter" validate:"required_if=PeriodType QUARTERLY,gte=0,lte=4"`
	StartDate  time.Time `json:"start_date" validate:"required_if=PeriodType CUSTOM"`
	EndDate    time.Time `json:"end_date" validate:"required_if=PeriodType CUSTOM"`
	EnableAI   bool      `json:"enable_ai"`
	CreatedBy  shared.ID `json:"created_by" validate:"required,gt=0"`
}

// ListReportsQuery filters the report list
type ListReportsQuery struct {
	Type     string `json:"type" validate:"omitempty,oneof=BALANCE_SHEET INCOME_STATEMENT INCOME_EXPENSE FINANCIAL_GROUPING"`
	Status   string `json:"status" validate:"omitempty,oneof=GENERATING COMPLETED FAILED ARCHIVED"`
	Search   string `json:"search" validate:"max=100"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=0,lte=100"`
}

// ReportService tracks report requests through generation and AI analysis.
// Rendering itself happens outside; the renderer reports back through
// Complete or Fail.
type ReportService struct {
	repo      report.ReportRepository
	store     shared.AggregateStore[*report.Report]
	publisher shared.EventPublisher
	validator *usecase.Validator
	obs       *usecase.Observer
}

// NewReportService creates a ReportService. store is normally the tenant
// guard around repo.
func NewReportService(
	repo report.ReportRepository,
	store shared.AggregateStore[*report.Report],
	publisher shared.EventPublisher,
	obs *usecase.Observer,
) *ReportService {
	return &ReportService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		validator: usecase.NewValidator(),
		obs:       obs,
	}
}

// Request records a report in GENERATING. An empty name defaults to the
// type's file name for the period.
func (s *ReportService) Request(ctx context.Context, cmd RequestReportCommand) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "request")
	defer func() { end(err) }()

	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	period, err := periodOf(cmd)
	if err != nil {
		return nil, err
	}

	reportType := report.ReportType(cmd.Type)
	name := cmd.Name
	if name == "" {
		name = reportType.DefaultFileName(period.Start, period.End)
	}
	r, err = report.NewReportForPeriod(tenantID, reportType, name, period, cmd.CreatedBy)
	if err != nil {
		return nil, err
	}
	if cmd.EnableAI {
		r.EnableAIAnalysis()
	}
	if err := usecase.Create(ctx, s.store, s.publisher, r, nil); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("report requested",
		zap.String("report_id", r.ID.String()),
		zap.String("type", string(r.Type)),
		zap.String("period", r.PeriodDescription()),
	)
	return r, nil
}

func periodOf(cmd RequestReportCommand) (report.ReportPeriod, error) {
	switch report.PeriodType(cmd.PeriodType) {
	case report.PeriodTypeMonthly:
		return report.Monthly(cmd.Year, time.Month(cmd.Month))
	case report.PeriodTypeQuarterly:
		return report.Quarterly(cmd.Year, cmd.Quarter)
	case report.PeriodTypeYearly:
		return report.Yearly(cmd.Year)
	default:
		return report.Custom(cmd.StartDate, cmd.EndDate)
	}
}

// Complete records the rendered file
func (s *ReportService) Complete(ctx context.Context, id shared.ID, filePath string, fileSize int64) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "complete", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, func(r *report.Report) ([]shared.DomainEvent, error) {
		return r.CompleteGeneration(filePath, fileSize)
	})
}

// Fail records that rendering failed
func (s *ReportService) Fail(ctx context.Context, id shared.ID, message string) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "fail", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	r, err = usecase.Mutate(ctx, s.store, s.publisher, id, func(r *report.Report) ([]shared.DomainEvent, error) {
		return r.FailGeneration(message)
	})
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Warn("report generation failed",
		zap.String("report_id", id.String()),
		zap.String("error_message", message),
	)
	return r, nil
}

// Rename changes the name of a finished report
func (s *ReportService) Rename(ctx context.Context, id shared.ID, name string) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "rename", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(r *report.Report) error {
		return r.Rename(name)
	}))
}

// Archive archives a completed report
func (s *ReportService) Archive(ctx context.Context, id shared.ID) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "archive", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents((*report.Report).Archive))
}

// EnableAI turns on AI analysis for a report
func (s *ReportService) EnableAI(ctx context.Context, id shared.ID) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "enable_ai", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(r *report.Report) error {
		r.EnableAIAnalysis()
		return nil
	}))
}

// PrepareAI stores the data handed to the analyzer
func (s *ReportService) PrepareAI(ctx context.Context, id shared.ID, data string) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "prepare_ai", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(r *report.Report) error {
		return r.PrepareForAIAnalysis(data)
	}))
}

// CompleteAI stores the analyzer's result
func (s *ReportService) CompleteAI(ctx context.Context, id shared.ID, result string) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "complete_ai", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Mutate(ctx, s.store, s.publisher, id, usecase.NoEvents(func(r *report.Report) error {
		return r.CompleteAIAnalysis(result)
	}))
}

// Get returns a report of the acting tenant
func (s *ReportService) Get(ctx context.Context, id shared.ID) (r *report.Report, err error) {
	ctx, end := s.obs.Begin(ctx, "report", "get", telemetry.SpanAttrAggregateID, id)
	defer func() { end(err) }()

	return usecase.Load(ctx, s.store, id)
}

// List returns one page of the acting tenant's reports, newest first
func (s *ReportService) List(ctx context.Context, q ListReportsQuery) (page shared.Paginated[*report.Report], err error) {
	ctx, end := s.obs.Begin(ctx, "report", "list")
	defer func() { end(err) }()

	if err := s.validator.Validate(q); err != nil {
		return page, err
	}
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return page, err
	}

	filter := report.ReportFilter{
		Filter: shared.Filter{Page: q.Page, PageSize: q.PageSize, Search: q.Search},
	}
	if q.Type != "" {
		t := report.ReportType(q.Type)
		filter.Type = &t
	}
	if q.Status != "" {
		st := report.ReportStatus(q.Status)
		filter.Status = &st
	}

	items, total, err := s.repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return page, err
	}
	pageNum := max(q.Page, 1)
	return shared.NewPaginated(items, total, pageNum, filter.Limit()), nil
}
