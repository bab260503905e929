package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_date": true,
	"amount":           true,
	"type":             true,
	"status":           true,
}

// ReportSortFields contains allowed sort fields for reports
var ReportSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"type":         true,
	"status":       true,
	"start_date":   true,
	"end_date":     true,
	"completed_at": true,
}

// orderAndPage applies a whitelisted ORDER BY, with id as tie breaker,
// followed by LIMIT/OFFSET from the filter.
func orderAndPage(query *gorm.DB, orderBy, orderDir string, allowed map[string]bool, limit, offset int) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, "created_at")
	dir := ValidateSortOrder(orderDir)
	query = query.Order(fmt.Sprintf("%s %s", field, dir))
	if field != "id" {
		query = query.Order(fmt.Sprintf("id %s", dir))
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
