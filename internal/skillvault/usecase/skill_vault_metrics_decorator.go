package usecase

import (
	"context"
	"time"

	"github.com/allisson/secrets/internal/metrics"
)

// skillVaultUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type skillVaultUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewSkillVaultUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewSkillVaultUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &skillVaultUseCaseWithMetrics{next: useCase, metrics: m}
}

// Upload records metrics for skill rule document uploads.
func (u *skillVaultUseCaseWithMetrics) Upload(
	ctx context.Context,
	callerID, packageID string,
	plaintext []byte,
) (string, error) {
	start := time.Now()
	expertShare, err := u.next.Upload(ctx, callerID, packageID, plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "skillvault", "upload", status)
	u.metrics.RecordDuration(ctx, "skillvault", "upload", time.Since(start), status)

	return expertShare, err
}

// Read records metrics for plaintext retrieval.
func (u *skillVaultUseCaseWithMetrics) Read(ctx context.Context, callerID, packageID string) ([]byte, error) {
	start := time.Now()
	plaintext, err := u.next.Read(ctx, callerID, packageID)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "skillvault", "read", status)
	u.metrics.RecordDuration(ctx, "skillvault", "read", time.Since(start), status)

	return plaintext, err
}

// Revoke records metrics for crypto-shredding revocations.
func (u *skillVaultUseCaseWithMetrics) Revoke(
	ctx context.Context,
	callerID, packageID string,
) (int, int, error) {
	start := time.Now()
	deletedShares, deletedVersions, err := u.next.Revoke(ctx, callerID, packageID)

	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "skillvault", "revoke", status)
	u.metrics.RecordDuration(ctx, "skillvault", "revoke", time.Since(start), status)

	return deletedShares, deletedVersions, err
}
