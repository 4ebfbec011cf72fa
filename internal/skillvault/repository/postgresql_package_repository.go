// Package repository implements PostgreSQL persistence for the Skill Vault:
// packages, encrypted knowledge versions, retained Shamir shares, and IP
// anchor witness records.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PostgreSQLPackageRepository resolves packages by their external slug.
type PostgreSQLPackageRepository struct {
	db *sql.DB
}

// NewPostgreSQLPackageRepository creates a new PostgreSQLPackageRepository.
func NewPostgreSQLPackageRepository(db *sql.DB) *PostgreSQLPackageRepository {
	return &PostgreSQLPackageRepository{db: db}
}

// Get resolves a package by its external package_id.
func (r *PostgreSQLPackageRepository) Get(ctx context.Context, packageID string) (*vaultDomain.Package, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT package_id, internal_id, author_id FROM packages WHERE package_id = $1`

	var pkg vaultDomain.Package
	err := querier.QueryRowContext(ctx, query, packageID).Scan(&pkg.PackageID, &pkg.InternalID, &pkg.AuthorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get package")
	}

	return &pkg, nil
}
