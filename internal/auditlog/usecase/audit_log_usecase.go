// Package usecase orchestrates appends and verification for the
// hash-chained invocation audit log.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/secrets/internal/auditlog/domain"
	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
)

// AuditEntryRepository is the persistence contract this use case depends on.
type AuditEntryRepository interface {
	Append(ctx context.Context, txManager database.TxManager, internalID string, build func(prevHash string) (*domain.Entry, error)) error
	ListForPackage(ctx context.Context, internalID string) ([]*domain.Entry, error)
	CountRecent(ctx context.Context, internalID, callerID string, since int64) (int, error)
}

// UseCase defines audit log operations used by the invocation pipeline.
type UseCase interface {
	Append(ctx context.Context, internalID, callerID, conclusion string, inferenceMS *int64) (*domain.Entry, error)
	VerifyChain(ctx context.Context, internalID string) (bool, error)
	CountRecent(ctx context.Context, internalID, callerID string, window time.Duration) (int, error)
}

type auditLogUseCase struct {
	repo      AuditEntryRepository
	txManager database.TxManager
}

// New creates a new audit log UseCase.
func New(repo AuditEntryRepository, txManager database.TxManager) UseCase {
	return &auditLogUseCase{repo: repo, txManager: txManager}
}

// Append computes conclusion_hash and event_hash and inserts the next chain
// entry for internalID. It must only be called after step 7 of the
// invocation pipeline has already produced a conclusion; a failure here is
// the only failure mode that surfaces after the audit row is guaranteed
// never written.
func (u *auditLogUseCase) Append(ctx context.Context, internalID, callerID, conclusion string, inferenceMS *int64) (*domain.Entry, error) {
	var entry *domain.Entry

	err := u.repo.Append(ctx, u.txManager, internalID, func(prevHash string) (*domain.Entry, error) {
		conclusionHash := domain.ConclusionHash(conclusion)
		entry = &domain.Entry{
			ID:             uuid.Must(uuid.NewV7()).String(),
			InternalID:     internalID,
			CallerID:       callerID,
			ConclusionHash: conclusionHash,
			PrevHash:       prevHash,
			EventHash:      domain.ComputeEventHash(internalID, callerID, conclusionHash, prevHash),
			InferenceMS:    inferenceMS,
			CreatedAt:      time.Now().UTC(),
		}
		return entry, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to append audit entry")
	}

	return entry, nil
}

// VerifyChain recomputes every entry's event_hash from its stored fields and
// checks prev_hash linkage across the whole package history. A hash chain
// break is a detectable tamper signal; this never repairs it, only reports it.
func (u *auditLogUseCase) VerifyChain(ctx context.Context, internalID string) (bool, error) {
	entries, err := u.repo.ListForPackage(ctx, internalID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to load audit chain")
	}

	expectedPrev := domain.Genesis
	for _, e := range entries {
		if !e.Verify() {
			return false, nil
		}
		if e.PrevHash != expectedPrev {
			return false, nil
		}
		expectedPrev = e.EventHash
	}

	return true, nil
}

// CountRecent reports how many entries exist for (internalID, callerID)
// created within the last window, the advisory rate-limit signal.
func (u *auditLogUseCase) CountRecent(ctx context.Context, internalID, callerID string, window time.Duration) (int, error) {
	since := time.Now().Add(-window).UnixMilli()
	count, err := u.repo.CountRecent(ctx, internalID, callerID, since)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count recent audit entries")
	}
	return count, nil
}
