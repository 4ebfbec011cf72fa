// Package repository persists the per-package invocation audit chain.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/secrets/internal/auditlog/domain"
	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
)

// PostgreSQLAuditEntryRepository implements Entry persistence for PostgreSQL.
type PostgreSQLAuditEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEntryRepository creates a new PostgreSQL audit entry repository.
func NewPostgreSQLAuditEntryRepository(db *sql.DB) *PostgreSQLAuditEntryRepository {
	return &PostgreSQLAuditEntryRepository{db: db}
}

// Append runs build under a per-package advisory lock, in the same order
// every caller must observe: read the last event_hash for internalID (or
// Genesis if none), hand it to build so the caller can compute the next
// entry's event_hash, then insert it. The lock is held for the lifetime of
// the enclosing transaction, so concurrent appends for the same package
// serialize instead of racing on prev_hash.
func (r *PostgreSQLAuditEntryRepository) Append(
	ctx context.Context,
	txManager database.TxManager,
	internalID string,
	build func(prevHash string) (*domain.Entry, error),
) error {
	return txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, r.db)

		if _, err := querier.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, internalID); err != nil {
			return apperrors.Wrap(err, "failed to acquire audit append lock")
		}

		prevHash := domain.Genesis
		var lastHash string
		err := querier.QueryRowContext(
			ctx,
			`SELECT event_hash FROM audit_entries WHERE internal_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
			internalID,
		).Scan(&lastHash)
		switch {
		case err == sql.ErrNoRows:
			// first entry for this package; prevHash stays Genesis.
		case err != nil:
			return apperrors.Wrap(err, "failed to load last audit entry")
		default:
			prevHash = lastHash
		}

		entry, err := build(prevHash)
		if err != nil {
			return err
		}

		query := `INSERT INTO audit_entries
			(id, internal_id, caller_id, conclusion_hash, prev_hash, event_hash, inference_ms, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = querier.ExecContext(
			ctx, query,
			entry.ID, entry.InternalID, entry.CallerID, entry.ConclusionHash,
			entry.PrevHash, entry.EventHash, entry.InferenceMS, entry.CreatedAt,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to insert audit entry")
		}

		return nil
	})
}

// ListForPackage returns every entry for internalID in append order, the
// shape VerifyChain walks to recompute the hash chain.
func (r *PostgreSQLAuditEntryRepository) ListForPackage(ctx context.Context, internalID string) ([]*domain.Entry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, internal_id, caller_id, conclusion_hash, prev_hash, event_hash, inference_ms, created_at
		FROM audit_entries
		WHERE internal_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, internalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.InternalID, &e.CallerID, &e.ConclusionHash, &e.PrevHash, &e.EventHash, &e.InferenceMS, &e.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// CountRecent counts entries for (internalID, callerID) created after since,
// backing the invocation pipeline's advisory rate limit.
func (r *PostgreSQLAuditEntryRepository) CountRecent(ctx context.Context, internalID, callerID string, since int64) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM audit_entries
		WHERE internal_id = $1 AND caller_id = $2 AND created_at > to_timestamp($3 / 1000.0)`

	var count int
	if err := querier.QueryRowContext(ctx, query, internalID, callerID, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count recent audit entries")
	}
	return count, nil
}
