package usecase

import (
	"context"
	"time"

	"github.com/allisson/secrets/internal/auditlog/domain"
	"github.com/allisson/secrets/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &auditLogUseCaseWithMetrics{next: useCase, metrics: m}
}

// Append records metrics for audit chain appends.
func (u *auditLogUseCaseWithMetrics) Append(
	ctx context.Context,
	internalID, callerID, conclusion string,
	inferenceMS *int64,
) (*domain.Entry, error) {
	start := time.Now()
	entry, err := u.next.Append(ctx, internalID, callerID, conclusion, inferenceMS)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "auditlog", "append", status)
	u.metrics.RecordDuration(ctx, "auditlog", "append", time.Since(start), status)

	return entry, err
}

// VerifyChain records metrics for hash-chain verification.
func (u *auditLogUseCaseWithMetrics) VerifyChain(ctx context.Context, internalID string) (bool, error) {
	start := time.Now()
	ok, err := u.next.VerifyChain(ctx, internalID)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "auditlog", "verify_chain", status)
	u.metrics.RecordDuration(ctx, "auditlog", "verify_chain", time.Since(start), status)

	return ok, err
}

// CountRecent records metrics for the rate-limit lookback count.
func (u *auditLogUseCaseWithMetrics) CountRecent(
	ctx context.Context,
	internalID, callerID string,
	window time.Duration,
) (int, error) {
	start := time.Now()
	count, err := u.next.CountRecent(ctx, internalID, callerID, window)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "auditlog", "count_recent", status)
	u.metrics.RecordDuration(ctx, "auditlog", "count_recent", time.Since(start), status)

	return count, err
}
