package persistence

import (
	"testing"

	"github.com/finledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE transactions;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"valid field returns field", "amount", "amount"},
		{"invalid field returns default", "tenant_id", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE transactions;--", "created_at"},
		{"case sensitive", "AMOUNT", "created_at"},
		{"whitespace around valid field returns field", "  transaction_date ", "transaction_date"},
		{"quotes injection returns default", "amount'--", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, TransactionSortFields, "created_at"))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"TransactionSortFields": TransactionSortFields,
		"ReportSortFields":      ReportSortFields,
	}
	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			for _, field := range []string{"id", "created_at", "updated_at"} {
				assert.True(t, whitelist[field], "%s should contain %q", name, field)
			}
			assert.False(t, whitelist["tenant_id"])
		})
	}
}

func TestOrderAndPage(t *testing.T) {
	db, _, cleanup := newMockDatabase(t)
	defer cleanup()

	t.Run("adds id tie breaker and offset", func(t *testing.T) {
		stmt := db.DB.Session(&gorm.Session{DryRun: true}).Model(&models.TransactionModel{})
		stmt = orderAndPage(stmt, "amount", "asc", TransactionSortFields, 20, 40)
		var rows []models.TransactionModel
		sql := stmt.Find(&rows).Statement.SQL.String()

		assert.Contains(t, sql, "ORDER BY amount ASC")
		assert.Contains(t, sql, "id ASC")
		assert.Contains(t, sql, "LIMIT $1 OFFSET $2")
	})

	t.Run("falls back to created_at desc without offset", func(t *testing.T) {
		stmt := db.DB.Session(&gorm.Session{DryRun: true}).Model(&models.ReportModel{})
		stmt = orderAndPage(stmt, "bogus", "", ReportSortFields, 10, 0)
		var rows []models.ReportModel
		sql := stmt.Find(&rows).Statement.SQL.String()

		assert.Contains(t, sql, "ORDER BY created_at DESC")
		assert.Contains(t, sql, "id DESC")
		assert.NotContains(t, sql, "OFFSET")
	})
}
