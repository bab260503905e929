package usecase

import (
	"context"

	"github.com/finledger/backend/internal/domain/shared"
)

// Create saves a new aggregate and publishes the events its factory returned
func Create[T shared.TenantOwned](ctx context.Context, store shared.AggregateStore[T], publisher shared.EventPublisher, aggregate T, events []shared.DomainEvent) error {
	var buf shared.EventBuffer
	buf.Record(events...)
	return shared.Commit(ctx, func(ctx context.Context) error {
		return store.Save(ctx, aggregate)
	}, publisher, &buf)
}

// Mutate loads an aggregate of the acting tenant, applies change, then saves
// it and publishes the events change returned. Nothing is saved when change
// fails.
func Mutate[T shared.TenantOwned](
	ctx context.Context,
	store shared.AggregateStore[T],
	publisher shared.EventPublisher,
	id shared.ID,
	change func(T) ([]shared.DomainEvent, error),
) (T, error) {
	var zero T

	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		return zero, err
	}
	aggregate, err := store.Load(ctx, id, tenantID)
	if err != nil {
		return zero, err
	}

	events, err := change(aggregate)
	if err != nil {
		return zero, err
	}
	if err := Create(ctx, store, publisher, aggregate, events); err != nil {
		return zero, err
	}
	return aggregate, nil
}

// Load fetches an aggregate of the acting tenant
func Load[T shared.TenantOwned](ctx context.Context, store shared.AggregateStore[T], id shared.ID) (T, error) {
	tenantID, err := shared.RequireTenant(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return store.Load(ctx, id, tenantID)
}

// NoEvents adapts a business method that raises no events for Mutate
func NoEvents[T any](change func(T) error) func(T) ([]shared.DomainEvent, error) {
	return func(aggregate T) ([]shared.DomainEvent, error) {
		return nil, change(aggregate)
	}
}
