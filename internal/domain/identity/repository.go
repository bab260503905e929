package identity

import (
	"context"

	"github.com/finledger/backend/internal/domain/shared"
)

// CompanyRepository persists companies. Load treats the company's own ID as
// its tenant; FindByID and the Exists lookups are platform-level.
type CompanyRepository interface {
	shared.AggregateStore[*Company]
	// FindByID finds a company by ID without tenant scoping
	FindByID(ctx context.Context, id shared.ID) (*Company, error)
	// ExistsByEmail checks whether a company already uses the normalized email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByName checks whether a company already uses the name
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// UserRepository persists users within a tenant
type UserRepository interface {
	shared.AggregateStore[*User]
	// CountForTenant counts users of a tenant
	CountForTenant(ctx context.Context, tenantID shared.TenantID) (int64, error)
	// ExistsByUsername checks username uniqueness within a tenant
	ExistsByUsername(ctx context.Context, tenantID shared.TenantID, username string) (bool, error)
	// ExistsByEmail checks global email uniqueness
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
