package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PostgreSQLKnowledgeRepository persists encrypted knowledge versions.
type PostgreSQLKnowledgeRepository struct {
	db *sql.DB
}

// NewPostgreSQLKnowledgeRepository creates a new PostgreSQLKnowledgeRepository.
func NewPostgreSQLKnowledgeRepository(db *sql.DB) *PostgreSQLKnowledgeRepository {
	return &PostgreSQLKnowledgeRepository{db: db}
}

// DeactivateAll clears is_active on every row for internalID. Safe to call
// when no row yet exists.
func (r *PostgreSQLKnowledgeRepository) DeactivateAll(ctx context.Context, internalID string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE encrypted_knowledge SET is_active = false WHERE internal_id = $1 AND is_active = true`

	if _, err := querier.ExecContext(ctx, query, internalID); err != nil {
		return apperrors.Wrap(err, "failed to deactivate encrypted knowledge")
	}
	return nil
}

// Insert persists a new encrypted knowledge row.
func (r *PostgreSQLKnowledgeRepository) Insert(ctx context.Context, knowledge *vaultDomain.EncryptedKnowledge) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO encrypted_knowledge (id, internal_id, wrapped_dek, ciphertext, content_hash, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		knowledge.ID,
		knowledge.InternalID,
		knowledge.WrappedDEK,
		knowledge.Ciphertext,
		knowledge.ContentHash,
		knowledge.IsActive,
		knowledge.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert encrypted knowledge")
	}
	return nil
}

// GetActive returns the package's single active knowledge row.
func (r *PostgreSQLKnowledgeRepository) GetActive(ctx context.Context, internalID string) (*vaultDomain.EncryptedKnowledge, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, internal_id, wrapped_dek, ciphertext, content_hash, is_active, created_at
			  FROM encrypted_knowledge
			  WHERE internal_id = $1 AND is_active = true
			  LIMIT 1`

	var knowledge vaultDomain.EncryptedKnowledge
	err := querier.QueryRowContext(ctx, query, internalID).Scan(
		&knowledge.ID,
		&knowledge.InternalID,
		&knowledge.WrappedDEK,
		&knowledge.Ciphertext,
		&knowledge.ContentHash,
		&knowledge.IsActive,
		&knowledge.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNoKnowledge
		}
		return nil, apperrors.Wrap(err, "failed to get active encrypted knowledge")
	}

	return &knowledge, nil
}

// DeleteAll removes every knowledge row (active and archived) for internalID
// and reports how many were deleted.
func (r *PostgreSQLKnowledgeRepository) DeleteAll(ctx context.Context, internalID string) (int, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM encrypted_knowledge WHERE internal_id = $1`, internalID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete encrypted knowledge")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted encrypted knowledge")
	}
	return int(affected), nil
}
