package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxService is the operator view of the event outbox: dead letters,
// manual retry and per-status counts. It is platform level and not scoped
// to a tenant.
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{
		repo:   repo,
		logger: logger,
	}
}

// OutboxEntryDTO is the read model of an outbox entry. The payload is left out.
type OutboxEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      shared.TenantID `json:"tenant_id,string"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   shared.ID       `json:"aggregate_id,string"`
	AggregateType string          `json:"aggregate_type"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
	LastError     string          `json:"last_error,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OutboxStatsDTO counts outbox entries per status
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetDeadLetterEntries lists dead letter entries, newest first
func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, page, pageSize int) (shared.Paginated[OutboxEntryDTO], error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	limit := filter.Limit()

	entries, total, err := s.repo.FindDead(ctx, filter.Page, limit)
	if err != nil {
		s.logger.Error("failed to find dead letter entries", zap.Error(err))
		return shared.Paginated[OutboxEntryDTO]{}, fmt.Errorf("find dead letter entries: %w", err)
	}

	dtos := make([]OutboxEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toOutboxEntryDTO(entry)
	}
	return shared.NewPaginated(dtos, total, filter.Page, limit), nil
}

// GetEntry returns a single outbox entry
func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry moves one dead letter entry back to pending
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.NewStateError(err.Error())
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("failed to update outbox entry", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("retry outbox entry %s: %w", id, err)
	}

	s.logger.Info("dead letter entry reset for retry",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
		zap.String("tenant_id", entry.TenantID.String()),
	)

	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAllDeadEntries moves every dead letter entry back to pending and
// returns how many were reset
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	const pageSize = 100
	var count int64

	// reset entries leave the dead set, so the first page always holds the rest
	for {
		entries, _, err := s.repo.FindDead(ctx, 1, pageSize)
		if err != nil {
			s.logger.Error("failed to find dead letter entries", zap.Error(err))
			return count, fmt.Errorf("find dead letter entries: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		progressed := false
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("failed to update outbox entry", zap.String("id", entry.ID.String()), zap.Error(err))
				continue
			}
			progressed = true
			count++
		}
		if !progressed || len(entries) < pageSize {
			break
		}
	}

	s.logger.Info("retried dead letter entries", zap.Int64("count", count))
	return count, nil
}

// GetStats counts entries per status
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("failed to get outbox stats", zap.Error(err))
		return nil, fmt.Errorf("count outbox entries: %w", err)
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func (s *OutboxService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && entry == nil) {
		return nil, shared.NewDomainError(shared.KindNotFound, "ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	if err != nil {
		s.logger.Error("failed to find outbox entry", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("find outbox entry %s: %w", id, err)
	}
	return entry, nil
}

func toOutboxEntryDTO(entry *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            entry.ID,
		TenantID:      entry.TenantID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
