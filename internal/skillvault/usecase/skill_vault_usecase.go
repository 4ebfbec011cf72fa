package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/database"
	apperrors "github.com/allisson/secrets/internal/errors"
	"github.com/allisson/secrets/internal/securescope"
	"github.com/allisson/secrets/internal/sharesplit"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

type skillVaultUseCase struct {
	txManager     database.TxManager
	packageRepo   PackageRepository
	knowledgeRepo KnowledgeRepository
	shareRepo     ShareRepository
	ipAnchorRepo  IpAnchorRepository
	ipAnchor      IpAnchorRegistrar
	keyManager    cryptoService.KeyManager
}

// New creates a Skill Vault UseCase.
func New(
	txManager database.TxManager,
	packageRepo PackageRepository,
	knowledgeRepo KnowledgeRepository,
	shareRepo ShareRepository,
	ipAnchorRepo IpAnchorRepository,
	ipAnchor IpAnchorRegistrar,
	keyManager cryptoService.KeyManager,
) UseCase {
	return &skillVaultUseCase{
		txManager:     txManager,
		packageRepo:   packageRepo,
		knowledgeRepo: knowledgeRepo,
		shareRepo:     shareRepo,
		ipAnchorRepo:  ipAnchorRepo,
		ipAnchor:      ipAnchor,
		keyManager:    keyManager,
	}
}

// authorize resolves the package and enforces the author-only gate shared by
// all three operations.
func (u *skillVaultUseCase) authorize(ctx context.Context, callerID, packageID string) (*vaultDomain.Package, error) {
	pkg, err := u.packageRepo.Get(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.AuthorID != callerID {
		return nil, apperrors.ErrForbidden
	}
	return pkg, nil
}

// Upload runs the upload transaction: generate a DEK,
// encrypt plaintext under it, archive the prior active knowledge row, split
// the DEK three ways, retain the platform and backup shares, anchor the
// content hash externally, and hand back the expert share exactly once.
func (u *skillVaultUseCase) Upload(ctx context.Context, callerID, packageID string, plaintext []byte) (string, error) {
	pkg, err := u.authorize(ctx, callerID, packageID)
	if err != nil {
		return "", err
	}

	dek, err := u.keyManager.GenerateDEK()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate dek")
	}
	defer securescope.Zero(dek)

	ciphertext, err := u.keyManager.Encrypt(plaintext, dek)
	if err != nil {
		return "", err
	}

	wrappedDEK, err := u.keyManager.WrapDEK(dek)
	if err != nil {
		return "", err
	}

	shares, err := sharesplit.Split(dek)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to split dek")
	}

	contentHash := vaultDomain.ContentHash(plaintext)
	now := time.Now().UTC()

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.knowledgeRepo.DeactivateAll(ctx, pkg.InternalID); err != nil {
			return err
		}

		knowledge := &vaultDomain.EncryptedKnowledge{
			ID:          uuid.Must(uuid.NewV7()).String(),
			InternalID:  pkg.InternalID,
			WrappedDEK:  wrappedDEK,
			Ciphertext:  ciphertext,
			ContentHash: contentHash,
			IsActive:    true,
			CreatedAt:   now,
		}
		if err := u.knowledgeRepo.Insert(ctx, knowledge); err != nil {
			return err
		}

		if _, err := u.shareRepo.DeleteAll(ctx, pkg.InternalID); err != nil {
			return err
		}

		platformShare := shares[sharesplit.PlatformIndex-1]
		if err := u.shareRepo.Insert(ctx, &vaultDomain.ShareRecord{
			ID:         uuid.Must(uuid.NewV7()).String(),
			InternalID: pkg.InternalID,
			ShareIndex: platformShare.Index,
			ShareData:  platformShare.Data,
			Custodian:  vaultDomain.CustodianPlatform,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		backupShare := shares[sharesplit.BackupIndex-1]
		if err := u.shareRepo.Insert(ctx, &vaultDomain.ShareRecord{
			ID:         uuid.Must(uuid.NewV7()).String(),
			InternalID: pkg.InternalID,
			ShareIndex: backupShare.Index,
			ShareData:  backupShare.Data,
			Custodian:  vaultDomain.CustodianBackup,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		witnessRef := u.ipAnchor.Register(ctx, packageID, contentHash, callerID)
		return u.ipAnchorRepo.Insert(ctx, pkg.InternalID, contentHash, witnessRef)
	})
	if err != nil {
		return "", err
	}

	expertShare := shares[sharesplit.ExpertIndex-1]
	return expertShare.MarshalHex(), nil
}

// Read decrypts the package's current plaintext inside a Secure Scope that
// holds both the unwrapped DEK and the decrypted plaintext.
func (u *skillVaultUseCase) Read(ctx context.Context, callerID, packageID string) ([]byte, error) {
	pkg, err := u.authorize(ctx, callerID, packageID)
	if err != nil {
		return nil, err
	}

	knowledge, err := u.knowledgeRepo.GetActive(ctx, pkg.InternalID)
	if err != nil {
		return nil, err
	}

	result, err := securescope.Run(
		func() ([]byte, error) { return u.keyManager.UnwrapDEK(knowledge.WrappedDEK) },
		func(dek []byte) (any, error) { return u.keyManager.Decrypt(knowledge.Ciphertext, dek) },
	)
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Revoke crypto-shreds a package: once every share and knowledge row is
// deleted, no remaining code path can reconstruct the DEK or the plaintext.
// The audit log is deliberately left untouched. Calling Revoke again on an
// already-revoked package is a no-op that reports zero deletions.
func (u *skillVaultUseCase) Revoke(ctx context.Context, callerID, packageID string) (int, int, error) {
	pkg, err := u.authorize(ctx, callerID, packageID)
	if err != nil {
		return 0, 0, err
	}

	var deletedShares, deletedVersions int
	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		n, err := u.shareRepo.DeleteAll(ctx, pkg.InternalID)
		if err != nil {
			return err
		}
		deletedShares = n

		n, err = u.knowledgeRepo.DeleteAll(ctx, pkg.InternalID)
		if err != nil {
			return err
		}
		deletedVersions = n

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return deletedShares, deletedVersions, nil
}
