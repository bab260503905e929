// Package usecase holds what every application service does around a use
// case: command validation, a span, a duration metric and failure logging.
package usecase

import (
	"context"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DurationRecorder records how long a use case took.
// *telemetry.LedgerMetrics implements it.
type DurationRecorder interface {
	RecordUseCase(ctx context.Context, useCase string, elapsed time.Duration, err error)
}

// Observer instruments use cases
type Observer struct {
	metrics DurationRecorder
}

// NewObserver creates an Observer. metrics may be nil.
func NewObserver(metrics DurationRecorder) *Observer {
	return &Observer{metrics: metrics}
}

// Begin starts the span "service.method". The returned func ends it and
// must be called exactly once with the use case's result:
//
//	ctx, end := s.obs.Begin(ctx, "journal", "post", telemetry.SpanAttrAggregateID, id)
//	defer func() { end(err) }()
func (o *Observer) Begin(ctx context.Context, service, method string, keyValues ...any) (context.Context, func(err error)) {
	if o == nil {
		o = &Observer{}
	}
	useCase := service + "." + method
	if tenantID, ok := shared.TenantFromContext(ctx); ok {
		keyValues = append(keyValues, telemetry.SpanAttrTenantID, tenantID)
	}
	ctx, span := telemetry.StartServiceSpan(ctx, service, method, keyValues...)
	started := time.Now()

	return ctx, func(err error) {
		defer span.End()
		elapsed := time.Since(started)
		if o.metrics != nil {
			o.metrics.RecordUseCase(ctx, useCase, elapsed, err)
		}
		if err == nil {
			logger.L(ctx).Debug("use case completed",
				zap.String("use_case", useCase),
				zap.Duration("elapsed", elapsed),
			)
			return
		}

		telemetry.RecordError(span, err)
		if kind, ok := shared.KindOf(err); ok {
			// rejected by a business rule, not a fault
			logger.L(ctx).Info("use case rejected",
				zap.String("use_case", useCase),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			return
		}
		logger.L(ctx).Error("use case failed",
			zap.String("use_case", useCase),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}
