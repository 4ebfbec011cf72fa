package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secrets/internal/auditlog/domain"
)

type recordedCall struct {
	domain, operation, status string
}

type fakeBusinessMetrics struct {
	operations []recordedCall
	durations  []recordedCall
}

func (f *fakeBusinessMetrics) RecordOperation(_ context.Context, domain, operation, status string) {
	f.operations = append(f.operations, recordedCall{domain, operation, status})
}

func (f *fakeBusinessMetrics) RecordDuration(
	_ context.Context,
	domain, operation string,
	_ time.Duration,
	status string,
) {
	f.durations = append(f.durations, recordedCall{domain, operation, status})
}

type fakeAuditUseCase struct {
	entry    *domain.Entry
	verifyOK bool
	count    int
	err      error
}

func (f *fakeAuditUseCase) Append(
	_ context.Context,
	_, _, _ string,
	_ *int64,
) (*domain.Entry, error) {
	return f.entry, f.err
}

func (f *fakeAuditUseCase) VerifyChain(_ context.Context, _ string) (bool, error) {
	return f.verifyOK, f.err
}

func (f *fakeAuditUseCase) CountRecent(_ context.Context, _, _ string, _ time.Duration) (int, error) {
	return f.count, f.err
}

func TestAuditLogUseCaseWithMetrics_Append(t *testing.T) {
	metrics := &fakeBusinessMetrics{}
	decorator := NewAuditLogUseCaseWithMetrics(&fakeAuditUseCase{entry: &domain.Entry{}}, metrics)

	_, err := decorator.Append(context.Background(), "internal-1", "caller-1", "ok", nil)
	require.NoError(t, err)

	require.Len(t, metrics.operations, 1)
	assert.Equal(t, recordedCall{"auditlog", "append", "success"}, metrics.operations[0])
}

func TestAuditLogUseCaseWithMetrics_VerifyChain_Error(t *testing.T) {
	metrics := &fakeBusinessMetrics{}
	decorator := NewAuditLogUseCaseWithMetrics(&fakeAuditUseCase{err: errors.New("corrupt chain")}, metrics)

	_, err := decorator.VerifyChain(context.Background(), "internal-1")
	assert.Error(t, err)

	require.Len(t, metrics.operations, 1)
	assert.Equal(t, recordedCall{"auditlog", "verify_chain", "error"}, metrics.operations[0])
}

func TestAuditLogUseCaseWithMetrics_CountRecent(t *testing.T) {
	metrics := &fakeBusinessMetrics{}
	decorator := NewAuditLogUseCaseWithMetrics(&fakeAuditUseCase{count: 3}, metrics)

	count, err := decorator.CountRecent(context.Background(), "internal-1", "caller-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.Len(t, metrics.operations, 1)
	assert.Equal(t, recordedCall{"auditlog", "count_recent", "success"}, metrics.operations[0])
}
