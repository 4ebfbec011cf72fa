package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PostgreSQLShareRepository persists the platform and backup Shamir shares
// retained for a package's current DEK.
type PostgreSQLShareRepository struct {
	db *sql.DB
}

// NewPostgreSQLShareRepository creates a new PostgreSQLShareRepository.
func NewPostgreSQLShareRepository(db *sql.DB) *PostgreSQLShareRepository {
	return &PostgreSQLShareRepository{db: db}
}

// Insert persists a new share row.
func (r *PostgreSQLShareRepository) Insert(ctx context.Context, share *vaultDomain.ShareRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO share_records (id, internal_id, share_index, share_data, custodian, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		share.ID,
		share.InternalID,
		share.ShareIndex,
		share.ShareData,
		share.Custodian,
		share.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert share record")
	}
	return nil
}

// DeleteAll removes every share row for internalID and reports how many
// were deleted.
func (r *PostgreSQLShareRepository) DeleteAll(ctx context.Context, internalID string) (int, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM share_records WHERE internal_id = $1`, internalID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete share records")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted share records")
	}
	return int(affected), nil
}

// ListByInternalID returns every stored share row for internalID, ordered by
// share_index so platform (1) precedes backup (3).
func (r *PostgreSQLShareRepository) ListByInternalID(ctx context.Context, internalID string) ([]*vaultDomain.ShareRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, internal_id, share_index, share_data, custodian, created_at
			  FROM share_records
			  WHERE internal_id = $1
			  ORDER BY share_index ASC`

	rows, err := querier.QueryContext(ctx, query, internalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list share records")
	}
	defer rows.Close()

	var shares []*vaultDomain.ShareRecord
	for rows.Next() {
		var share vaultDomain.ShareRecord
		if err := rows.Scan(&share.ID, &share.InternalID, &share.ShareIndex, &share.ShareData, &share.Custodian, &share.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan share record")
		}
		shares = append(shares, &share)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate share records")
	}

	return shares, nil
}
