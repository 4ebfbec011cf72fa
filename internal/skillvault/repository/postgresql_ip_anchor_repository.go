package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
)

// PostgreSQLIpAnchorRepository persists one witness record per upload.
type PostgreSQLIpAnchorRepository struct {
	db *sql.DB
}

// NewPostgreSQLIpAnchorRepository creates a new PostgreSQLIpAnchorRepository.
func NewPostgreSQLIpAnchorRepository(db *sql.DB) *PostgreSQLIpAnchorRepository {
	return &PostgreSQLIpAnchorRepository{db: db}
}

// Insert records a witness reference for internalID/contentHash.
func (r *PostgreSQLIpAnchorRepository) Insert(ctx context.Context, internalID, contentHash, witnessRef string) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO ip_anchor_records (id, internal_id, content_hash, witness_ref, registered_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		uuid.Must(uuid.NewV7()).String(),
		internalID,
		contentHash,
		witnessRef,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert ip anchor record")
	}
	return nil
}
