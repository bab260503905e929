package event

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/dbtx"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table instead of
// delivering them directly. The OutboxProcessor delivers them later.
type OutboxPublisher struct {
	db         *gorm.DB
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher. maxRetries <= 0 keeps
// the entry default.
func NewOutboxPublisher(db *gorm.DB, serializer *EventSerializer, maxRetries int) *OutboxPublisher {
	return &OutboxPublisher{
		db:         db,
		serializer: serializer,
		maxRetries: maxRetries,
	}
}

// Publish stores the events in the order given, all or none. Inside
// InTransaction it writes in the transaction carried by ctx.
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return dbtx.Run(ctx, p.db, func(ctx context.Context) error {
		return p.PublishWithTx(ctx, dbtx.Conn(ctx, p.db), events...)
	})
}

// InTransaction runs fn in a database transaction carried by its ctx. Stores
// that write through dbtx.Conn and Publish both join it, so the aggregate
// rows and their outbox entries commit or roll back together.
func (p *OutboxPublisher) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbtx.Run(ctx, p.db, fn)
}

// PublishWithTx stores the events inside tx, so they commit atomically
// with the aggregate changes written in the same transaction
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}

		entry := shared.NewOutboxEntry(event, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		// keep insertion order visible to the processor's created_at ordering
		entry.CreatedAt = entry.CreatedAt.Truncate(time.Microsecond)
		if n := len(entries); n > 0 && !entry.CreatedAt.After(entries[n-1].CreatedAt) {
			entry.CreatedAt = entries[n-1].CreatedAt.Add(time.Microsecond)
		}
		entry.UpdatedAt = entry.CreatedAt
		entries = append(entries, entry)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

var (
	_ shared.EventPublisher = (*OutboxPublisher)(nil)
	_ shared.Transactor     = (*OutboxPublisher)(nil)
)
