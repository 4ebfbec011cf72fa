// Package usecase implements upload, read, and revoke for the Skill Vault:
// envelope-encrypted storage of skill rule documents with Shamir-split DEK
// custody and a best-effort external IP anchor per upload.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PackageRepository resolves the package a Skill Vault operation is scoped to.
type PackageRepository interface {
	Get(ctx context.Context, packageID string) (*vaultDomain.Package, error)
}

// KnowledgeRepository persists encrypted rule document versions.
type KnowledgeRepository interface {
	// DeactivateAll clears IsActive on every row for internalID.
	DeactivateAll(ctx context.Context, internalID string) error
	Insert(ctx context.Context, knowledge *vaultDomain.EncryptedKnowledge) error
	// GetActive returns the single active row, or apperrors.ErrNoKnowledge if none.
	GetActive(ctx context.Context, internalID string) (*vaultDomain.EncryptedKnowledge, error)
	// DeleteAll removes every row (active and archived) and returns the count deleted.
	DeleteAll(ctx context.Context, internalID string) (int, error)
}

// ShareRepository persists the two retained Shamir shares (indexes 1 and 3).
type ShareRepository interface {
	Insert(ctx context.Context, share *vaultDomain.ShareRecord) error
	// DeleteAll removes every row for internalID and returns the count deleted.
	DeleteAll(ctx context.Context, internalID string) (int, error)
	// ListByInternalID returns every stored share row for internalID, the
	// invocation pipeline's view into whether DEK recovery requires an
	// expert share.
	ListByInternalID(ctx context.Context, internalID string) ([]*vaultDomain.ShareRecord, error)
}

// IpAnchorRegistrar records a best-effort external witness for an upload.
// Satisfied by ipanchor/service.Anchor.
type IpAnchorRegistrar interface {
	Register(ctx context.Context, packageID, contentHash, callerID string) string
}

// IpAnchorRepository persists the witness reference returned by an IpAnchorRegistrar.
type IpAnchorRepository interface {
	Insert(ctx context.Context, internalID, contentHash, witnessRef string) error
}

// UseCase implements upload, read, and revoke of skill rule documents, all
// author-scoped.
type UseCase interface {
	// Upload encrypts plaintext under a fresh DEK, replaces the package's
	// active knowledge and share rows, and returns the hex-encoded expert
	// share (index 2). The share is returned exactly once and never stored.
	Upload(ctx context.Context, callerID, packageID string, plaintext []byte) (expertShare string, err error)

	// Read decrypts and returns the package's current plaintext. Author-only.
	Read(ctx context.Context, callerID, packageID string) (plaintext []byte, err error)

	// Revoke deletes every share and knowledge row for the package, making
	// the plaintext permanently unrecoverable. Idempotent: a second revoke
	// succeeds with zero counts.
	Revoke(ctx context.Context, callerID, packageID string) (deletedShares, deletedVersions int, err error)
}
