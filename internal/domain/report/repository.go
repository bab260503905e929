package report

import (
	"context"

	"github.com/finledger/backend/internal/domain/shared"
)

// ReportFilter defines filtering options for report queries
type ReportFilter struct {
	shared.Filter
	Type   *ReportType
	Status *ReportStatus
}

// ReportRepository persists reports
type ReportRepository interface {
	shared.AggregateStore[*Report]
	// FindAllForTenant lists reports of a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter ReportFilter) ([]*Report, int64, error)
}
