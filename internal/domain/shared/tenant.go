package shared

import (
	"context"
	"strconv"
)

// TenantID identifies the company that owns a piece of data.
// A company's own ID doubles as the tenant ID of everything it owns.
type TenantID int64

// NewTenantID validates and wraps a raw tenant value
func NewTenantID(value int64) (TenantID, error) {
	if value <= 0 {
		return 0, NewDomainError(KindValidation, "INVALID_TENANT_ID", "Tenant ID must be positive")
	}
	return TenantID(value), nil
}

// TenantIDFromID converts a company ID into the tenant ID it represents
func TenantIDFromID(id ID) TenantID {
	return TenantID(id)
}

// Int64 returns the raw value
func (t TenantID) Int64() int64 {
	return int64(t)
}

// IsZero reports whether the tenant is unset
func (t TenantID) IsZero() bool {
	return t == 0
}

// Equals compares two tenant IDs by value
func (t TenantID) Equals(other TenantID) bool {
	return t == other
}

// String returns the decimal representation
func (t TenantID) String() string {
	return strconv.FormatInt(int64(t), 10)
}

type tenantContextKey struct{}

// WithTenant returns a copy of ctx carrying the acting tenant
func WithTenant(ctx context.Context, tenantID TenantID) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// TenantFromContext returns the acting tenant, if any
func TenantFromContext(ctx context.Context) (TenantID, bool) {
	if ctx == nil {
		return 0, false
	}
	t, ok := ctx.Value(tenantContextKey{}).(TenantID)
	if !ok || t <= 0 {
		return 0, false
	}
	return t, true
}

// RequireTenant returns the acting tenant or ErrTenantRequired
func RequireTenant(ctx context.Context) (TenantID, error) {
	t, ok := TenantFromContext(ctx)
	if !ok {
		return 0, ErrTenantRequired
	}
	return t, nil
}
