package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/backend/internal/domain/finance"
	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/report"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cny(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.CNYFromString(amount)
	require.NoError(t, err)
	return m
}

func newIncome(t *testing.T, tenantID shared.TenantID, amount, description string) *finance.Transaction {
	t.Helper()
	txn, _, err := finance.NewIncome(tenantID, cny(t, amount), time.Now().AddDate(0, 0, -2), description, shared.NewID())
	require.NoError(t, err)
	return txn
}

func TestGormCompanyRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and loads a company as its own tenant", func(t *testing.T) {
		repo := NewGormCompanyRepository(newSQLiteDatabase(t).DB)
		company, _, err := identity.NewCompany("Acme Ltd", "Ops@Acme.example", "1 Road", "Shanghai", "SH", "200000", shared.NewID())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, company))

		loaded, err := repo.Load(ctx, company.ID, company.GetTenantID())
		require.NoError(t, err)
		assert.Equal(t, "Acme Ltd", loaded.Name)
		assert.Equal(t, "ops@acme.example", loaded.Email)
		assert.Equal(t, company.DefaultCurrency, loaded.DefaultCurrency)
		require.NotNil(t, loaded.MaxUsers)
		assert.Equal(t, *company.MaxUsers, *loaded.MaxUsers)
		assert.Equal(t, 1, loaded.Version)
	})

	t.Run("load under another tenant is not found", func(t *testing.T) {
		repo := NewGormCompanyRepository(newSQLiteDatabase(t).DB)
		company, _, err := identity.NewCompany("Acme Ltd", "ops@acme.example", "", "", "", "", shared.NewID())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, company))

		_, err = repo.Load(ctx, company.ID, company.GetTenantID()+1)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctx, shared.NewID())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		owner, err := repo.OwnerOf(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, company.GetTenantID(), owner)

		_, err = repo.OwnerOf(ctx, shared.NewID())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists lookups normalize input", func(t *testing.T) {
		repo := NewGormCompanyRepository(newSQLiteDatabase(t).DB)
		company, _, err := identity.NewCompany("Acme Ltd", "ops@acme.example", "", "", "", "", shared.NewID())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, company))

		exists, err := repo.ExistsByEmail(ctx, "  OPS@acme.example ")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, "acme ltd")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, "Other Co")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("stale copy conflicts", func(t *testing.T) {
		repo := NewGormCompanyRepository(newSQLiteDatabase(t).DB)
		company, _, err := identity.NewCompany("Acme Ltd", "ops@acme.example", "", "", "", "", shared.NewID())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, company))

		first, err := repo.FindByID(ctx, company.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, company.ID)
		require.NoError(t, err)

		require.NoError(t, first.UpdateUserLimit(50))
		require.NoError(t, repo.Save(ctx, first))
		assert.Equal(t, 2, first.Version)

		require.NoError(t, second.Deactivate())
		err = repo.Save(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, second.Version)

		stored, err := repo.FindByID(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, *stored.MaxUsers)
		assert.True(t, stored.IsActive())
	})
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newSQLiteDatabase(t).DB)

	alice, _, err := identity.NewUser(1, "alice", "alice@acme.example", "Alice")
	require.NoError(t, err)
	bob, _, err := identity.NewUser(1, "bob", "bob@acme.example", "Bob")
	require.NoError(t, err)
	carol, _, err := identity.NewUser(2, "carol", "carol@other.example", "Carol")
	require.NoError(t, err)
	for _, u := range []*identity.User{alice, bob, carol} {
		require.NoError(t, repo.Save(ctx, u))
	}

	t.Run("counts per tenant", func(t *testing.T) {
		count, err := repo.CountForTenant(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("username is unique within a tenant", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, 1, "alice")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUsername(ctx, 2, "alice")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("email is unique globally", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "Carol@Other.example")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("foreign tenant cannot load", func(t *testing.T) {
		_, err := repo.Load(ctx, carol.ID, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		owner, err := repo.OwnerOf(ctx, carol.ID)
		require.NoError(t, err)
		assert.Equal(t, carol.GetTenantID(), owner)
	})

	t.Run("update persists and bumps version", func(t *testing.T) {
		loaded, err := repo.Load(ctx, alice.ID, 1)
		require.NoError(t, err)
		loaded.Disable()
		require.NoError(t, repo.Save(ctx, loaded))

		again, err := repo.Load(ctx, alice.ID, 1)
		require.NoError(t, err)
		assert.False(t, again.Enabled)
		assert.Equal(t, 2, again.Version)
	})
}

func TestGormTransactionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips amounts and approval", func(t *testing.T) {
		repo := NewGormTransactionRepository(newSQLiteDatabase(t).DB)
		txn := newIncome(t, 1, "1234.56", "consulting")
		require.NoError(t, repo.Save(ctx, txn))

		approver := shared.NewID()
		_, err := txn.Approve(approver)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, txn))

		loaded, err := repo.Load(ctx, txn.ID, 1)
		require.NoError(t, err)
		assert.True(t, loaded.Money.Equals(cny(t, "1234.56")))
		assert.Equal(t, finance.TransactionStatusApproved, loaded.Status)
		require.NotNil(t, loaded.ApprovedBy)
		assert.Equal(t, approver, *loaded.ApprovedBy)
		assert.Equal(t, 2, loaded.Version)
	})

	t.Run("foreign tenant gets not found", func(t *testing.T) {
		repo := NewGormTransactionRepository(newSQLiteDatabase(t).DB)
		txn := newIncome(t, 1, "10.00", "")
		require.NoError(t, repo.Save(ctx, txn))

		_, err := repo.Load(ctx, txn.ID, 2)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		repo := NewGormTransactionRepository(newSQLiteDatabase(t).DB)
		txn := newIncome(t, 1, "10.00", "")
		require.NoError(t, repo.Save(ctx, txn))

		first, err := repo.Load(ctx, txn.ID, 1)
		require.NoError(t, err)
		second, err := repo.Load(ctx, txn.ID, 1)
		require.NoError(t, err)

		_, err = first.Cancel("duplicate")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		_, err = second.Approve(shared.NewID())
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)
	})

	t.Run("lists with filter and pagination", func(t *testing.T) {
		repo := NewGormTransactionRepository(newSQLiteDatabase(t).DB)
		for _, amount := range []string{"10.00", "20.00", "30.00"} {
			require.NoError(t, repo.Save(ctx, newIncome(t, 1, amount, "sale")))
		}
		expense, _, err := finance.NewExpense(1, cny(t, "5.00"), time.Now().AddDate(0, 0, -1), "rent", shared.NewID())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, expense))
		require.NoError(t, repo.Save(ctx, newIncome(t, 2, "99.00", "other tenant")))

		income := finance.TransactionTypeIncome
		filter := finance.TransactionFilter{
			Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "amount", OrderDir: "asc"},
			Type:   &income,
		}
		txns, total, err := repo.FindAllForTenant(ctx, 1, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, txns, 2)
		assert.True(t, txns[0].Money.Equals(cny(t, "10.00")))
		assert.True(t, txns[1].Money.Equals(cny(t, "20.00")))

		filter.Page = 2
		txns, _, err = repo.FindAllForTenant(ctx, 1, filter)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.True(t, txns[0].Money.Equals(cny(t, "30.00")))

		txns, total, err = repo.FindAllForTenant(ctx, 1, finance.TransactionFilter{Filter: shared.Filter{Search: "rent"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, txns, 1)
		assert.Equal(t, expense.ID, txns[0].ID)
	})
}

func newBalancedEntry(t *testing.T, tenantID shared.TenantID) *finance.JournalEntry {
	t.Helper()
	entry, err := finance.NewJournalEntry(tenantID, time.Now(), "office supplies", valueobject.CNY, shared.NewID())
	require.NoError(t, err)
	debit := cny(t, "100.00")
	credit1 := cny(t, "60.00")
	credit2 := cny(t, "40.00")
	require.NoError(t, entry.AddLine(5001, &debit, nil, "supplies"))
	require.NoError(t, entry.AddLine(1001, nil, &credit1, "cash"))
	require.NoError(t, entry.AddLine(2001, nil, &credit2, "payable"))
	return entry
}

func TestGormJournalEntryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips lines in order", func(t *testing.T) {
		repo := NewGormJournalEntryRepository(newSQLiteDatabase(t).DB)
		entry := newBalancedEntry(t, 1)
		require.NoError(t, entry.SetReference("INV-7"))
		require.NoError(t, repo.Save(ctx, entry))

		loaded, err := repo.Load(ctx, entry.ID, 1)
		require.NoError(t, err)
		lines := loaded.Lines()
		require.Len(t, lines, 3)
		assert.Equal(t, int64(5001), lines[0].AccountID)
		assert.Equal(t, int64(1001), lines[1].AccountID)
		assert.Equal(t, int64(2001), lines[2].AccountID)
		assert.True(t, lines[2].Credit.Equals(cny(t, "40.00")))
		assert.True(t, loaded.IsBalanced())

		byRef, err := repo.FindByReference(ctx, 1, "INV-7")
		require.NoError(t, err)
		assert.Equal(t, entry.ID, byRef.ID)

		_, err = repo.FindByReference(ctx, 2, "INV-7")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("resave replaces lines and keeps posting", func(t *testing.T) {
		repo := NewGormJournalEntryRepository(newSQLiteDatabase(t).DB)
		entry := newBalancedEntry(t, 1)
		require.NoError(t, repo.Save(ctx, entry))

		loaded, err := repo.Load(ctx, entry.ID, 1)
		require.NoError(t, err)
		require.NoError(t, loaded.RemoveLine(2))
		extra := cny(t, "40.00")
		require.NoError(t, loaded.AddLine(2002, nil, &extra, "accrued"))
		_, err = loaded.Post()
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, loaded))

		again, err := repo.Load(ctx, entry.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, finance.JournalEntryStatusPosted, again.Status)
		require.Len(t, again.Lines(), 3)
		assert.Equal(t, int64(2002), again.Lines()[2].AccountID)
		assert.NotNil(t, again.PostedAt)
	})

	t.Run("missing entry is not found", func(t *testing.T) {
		repo := NewGormJournalEntryRepository(newSQLiteDatabase(t).DB)
		_, err := repo.Load(ctx, shared.NewID(), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormFixedAssetRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFixedAssetRepository(newSQLiteDatabase(t).DB)

	laptop, _, err := finance.NewFixedAsset(1, "Laptop", "dev machine", cny(t, "12000.00"), time.Now().AddDate(-1, 0, 0), nil)
	require.NoError(t, err)
	server, _, err := finance.NewFixedAsset(1, "Server", "", cny(t, "50000.00"), time.Now().AddDate(-2, 0, 0), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, laptop))
	require.NoError(t, repo.Save(ctx, server))

	_, err = laptop.RecordDepreciation(cny(t, "2000.00"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, laptop))

	_, err = server.Dispose(cny(t, "8000.00"), "sold")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, server))

	t.Run("persists depreciation", func(t *testing.T) {
		loaded, err := repo.Load(ctx, laptop.ID, 1)
		require.NoError(t, err)
		assert.True(t, loaded.AccumulatedDepreciation.Equals(cny(t, "2000.00")))
		assert.True(t, loaded.CurrentValue.Equals(cny(t, "10000.00")))
	})

	t.Run("persists disposal", func(t *testing.T) {
		loaded, err := repo.Load(ctx, server.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, finance.AssetStatusDisposed, loaded.Status)
		require.NotNil(t, loaded.DisposalAmount)
		assert.True(t, loaded.DisposalAmount.Amount().Equal(decimal.NewFromInt(8000)))
	})

	t.Run("find active skips retired assets", func(t *testing.T) {
		active, err := repo.FindActive(ctx, 1)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, laptop.ID, active[0].ID)

		active, err = repo.FindActive(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestGormReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormReportRepository(newSQLiteDatabase(t).DB)
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now().AddDate(0, 0, -1)

	done, err := report.NewReport(1, report.ReportTypeBalanceSheet, "Balance Q1", start, end, shared.NewID())
	require.NoError(t, err)
	_, err = done.CompleteGeneration("/reports/q1.xlsx", 2048)
	require.NoError(t, err)
	pending, err := report.NewReport(1, report.ReportTypeIncomeStatement, "Income Q1", start, end, shared.NewID())
	require.NoError(t, err)
	foreign, err := report.NewReport(2, report.ReportTypeIncomeStatement, "Other", start, end, shared.NewID())
	require.NoError(t, err)
	for _, r := range []*report.Report{done, pending, foreign} {
		require.NoError(t, repo.Save(ctx, r))
	}

	t.Run("load round trips file details", func(t *testing.T) {
		loaded, err := repo.Load(ctx, done.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, report.ReportStatusCompleted, loaded.Status)
		assert.Equal(t, "/reports/q1.xlsx", loaded.FilePath)
		require.NotNil(t, loaded.FileSize)
		assert.Equal(t, int64(2048), *loaded.FileSize)
		assert.True(t, loaded.IsReadyForDownload())
	})

	t.Run("lists by status within tenant", func(t *testing.T) {
		status := report.ReportStatusGenerating
		reports, total, err := repo.FindAllForTenant(ctx, 1, report.ReportFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, reports, 1)
		assert.Equal(t, pending.ID, reports[0].ID)
	})

	t.Run("lists all within tenant", func(t *testing.T) {
		reports, total, err := repo.FindAllForTenant(ctx, 1, report.ReportFilter{Filter: shared.Filter{OrderBy: "name", OrderDir: "asc"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, reports, 2)
		assert.Equal(t, "Balance Q1", reports[0].Name)
	})
}
