package usecase

import (
	"context"
	"time"

	invocationDomain "github.com/allisson/secrets/internal/invocation/domain"
	"github.com/allisson/secrets/internal/metrics"
)

// invocationUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type invocationUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewInvocationUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewInvocationUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &invocationUseCaseWithMetrics{next: useCase, metrics: m}
}

// Invoke records metrics for the invocation pipeline, tagged by the mode the
// pipeline actually resolved (best effort — "unknown" when it errored before
// mode resolution).
func (u *invocationUseCaseWithMetrics) Invoke(
	ctx context.Context,
	req invocationDomain.Request,
) (*invocationDomain.Result, error) {
	start := time.Now()
	result, err := u.next.Invoke(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	mode := "unknown"
	if result != nil {
		mode = result.Mode
	}
	u.metrics.RecordOperation(ctx, "invocation", "invoke_"+mode, status)
	u.metrics.RecordDuration(ctx, "invocation", "invoke_"+mode, time.Since(start), status)

	return result, err
}
