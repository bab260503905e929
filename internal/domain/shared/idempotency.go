package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which events a handler has already applied,
// so redelivery from the outbox does not post the same journal entry twice.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL. It returns false when the key
	// was already recorded.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether key has been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Unmark forgets key so a failed handler can be retried
	Unmark(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns a 24h TTL with checking enabled
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
