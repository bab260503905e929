package tenant

import (
	"context"
	"errors"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ViolationRecorder counts rejected cross-tenant accesses.
// *telemetry.LedgerMetrics implements it.
type ViolationRecorder interface {
	RecordTenantViolation(ctx context.Context, operation string, acting, owner shared.TenantID)
}

// OwnerLookup is implemented by stores that can name the tenant owning an
// aggregate without tenant scoping. The guard uses it to tell a foreign
// aggregate apart from a missing one.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, id shared.ID) (shared.TenantID, error)
}

// Guard decorates an AggregateStore so that every load and save happens on
// behalf of the tenant carried in the context
type Guard[T shared.TenantOwned] struct {
	store         shared.AggregateStore[T]
	aggregateType string
	logger        *zap.Logger
	violations    ViolationRecorder
}

// GuardOption configures a Guard
type GuardOption func(*guardOptions)

type guardOptions struct {
	logger     *zap.Logger
	violations ViolationRecorder
}

// WithLogger sets the logger used for security events
func WithLogger(l *zap.Logger) GuardOption {
	return func(o *guardOptions) {
		o.logger = l
	}
}

// WithViolationRecorder sets where violations are counted
func WithViolationRecorder(r ViolationRecorder) GuardOption {
	return func(o *guardOptions) {
		o.violations = r
	}
}

// NewGuard wraps store. aggregateType only labels the security log.
func NewGuard[T shared.TenantOwned](store shared.AggregateStore[T], aggregateType string, opts ...GuardOption) *Guard[T] {
	o := guardOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Guard[T]{
		store:         store,
		aggregateType: aggregateType,
		logger:        o.logger,
		violations:    o.violations,
	}
}

// Load returns the aggregate only when both the requested tenant and the
// stored owner match the acting tenant. An aggregate that exists under
// another tenant is rejected as forbidden rather than reported missing.
func (g *Guard[T]) Load(ctx context.Context, id shared.ID, tenantID shared.TenantID) (T, error) {
	var zero T

	acting, ok := shared.TenantFromContext(ctx)
	if !ok || acting != tenantID {
		return zero, g.reject(ctx, "load", acting, tenantID, id)
	}

	agg, err := g.store.Load(ctx, id, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		if owner, found := g.ownerOf(ctx, id); found && owner != acting {
			return zero, g.reject(ctx, "load", acting, owner, id)
		}
		return zero, err
	}
	if err != nil {
		return zero, err
	}
	if owner := agg.GetTenantID(); owner != acting {
		return zero, g.reject(ctx, "load", acting, owner, id)
	}
	return agg, nil
}

// Save persists aggregate only when it belongs to the acting tenant
func (g *Guard[T]) Save(ctx context.Context, aggregate T) error {
	owner := aggregate.GetTenantID()
	acting, ok := shared.TenantFromContext(ctx)
	if !ok || acting != owner {
		return g.reject(ctx, "save", acting, owner, aggregate.GetID())
	}
	return g.store.Save(ctx, aggregate)
}

func (g *Guard[T]) ownerOf(ctx context.Context, id shared.ID) (shared.TenantID, bool) {
	lookup, ok := g.store.(OwnerLookup)
	if !ok {
		return 0, false
	}
	owner, err := lookup.OwnerOf(ctx, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.WithLogger(ctx, g.logger).Warn("owner lookup failed",
				zap.String("aggregate_type", g.aggregateType),
				zap.String("aggregate_id", id.String()),
				zap.Error(err),
			)
		}
		return 0, false
	}
	return owner, true
}

func (g *Guard[T]) reject(ctx context.Context, operation string, acting, owner shared.TenantID, id shared.ID) error {
	logger.WithLogger(ctx, g.logger).Warn("cross-tenant access rejected",
		zap.Bool("security_event", true),
		zap.String("operation", operation),
		zap.String("aggregate_type", g.aggregateType),
		zap.String("aggregate_id", id.String()),
		zap.String("acting_tenant_id", acting.String()),
		zap.String("owner_tenant_id", owner.String()),
	)
	if g.violations != nil {
		g.violations.RecordTenantViolation(ctx, operation, acting, owner)
	}
	return shared.ErrForbidden
}

var _ shared.AggregateStore[shared.TenantOwned] = (*Guard[shared.TenantOwned])(nil)
