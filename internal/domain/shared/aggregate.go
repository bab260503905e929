package shared

// AggregateRoot is the base interface for all aggregate roots.
// Aggregates do not buffer their own events; business methods return
// the events they raise and the caller collects them in an EventBuffer.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// TenantOwned is an aggregate root scoped to a single tenant
type TenantOwned interface {
	AggregateRoot
	GetTenantID() TenantID
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// TenantAggregateRoot extends BaseAggregateRoot with multi-tenant support
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID TenantID
}

// GetTenantID returns the owning tenant
func (t *TenantAggregateRoot) GetTenantID() TenantID {
	return t.TenantID
}

// BelongsToTenant reports whether the aggregate is owned by tenantID
func (t *TenantAggregateRoot) BelongsToTenant(tenantID TenantID) bool {
	return t.TenantID == tenantID
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID TenantID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}
