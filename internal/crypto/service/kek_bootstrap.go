package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	apperrors "github.com/allisson/secrets/internal/errors"
)

// LoadKEK resolves the process-wide key-encryption key at boot.
//
// Two modes:
//   - Plain-hex (default, spec-mandated minimum): kekHex is the 64-hex-character
//     KEK read directly from configuration.
//   - KMS-wrapped: when kmsKeyURI is non-empty, kekHex is instead treated as a
//     base64-encoded ciphertext, decrypted through a gocloud.dev/secrets.Keeper
//     (e.g. the HashiCorp Vault transit backend) to recover the 32-byte KEK.
//
// Both modes return ErrNoKek when no key material is configured at all — a missing KEK is always a startup fault.
func LoadKEK(
	ctx context.Context,
	kekHex string,
	kmsProvider string,
	kmsKeyURI string,
	kms KMSService,
	logger *slog.Logger,
) ([]byte, error) {
	if kmsKeyURI == "" && kmsProvider == "" {
		return cryptoDomain.LoadKEKFromHex(kekHex)
	}
	if kmsProvider != "" && kmsKeyURI == "" {
		return nil, cryptoDomain.ErrKMSKeyURINotSet
	}
	if kmsKeyURI != "" && kmsProvider == "" {
		return nil, cryptoDomain.ErrKMSProviderNotSet
	}
	if kekHex == "" {
		return nil, apperrors.ErrNoKek
	}

	if logger != nil {
		logger.Info("opening kms keeper for process kek",
			slog.String("kms_provider", kmsProvider),
			slog.String("kms_key_uri", maskKeyURI(kmsKeyURI)),
		)
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKMSOpenKeeperFailed, err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil && logger != nil {
			logger.Error("failed to close kms keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := base64.StdEncoding.DecodeString(kekHex)
	if err != nil {
		return nil, fmt.Errorf("kek is not valid base64 ciphertext: %w", err)
	}

	key, err := keeper.Decrypt(ctx, ciphertext)
	cryptoDomain.Zero(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKMSDecryptionFailed, err)
	}

	if len(key) != cryptoDomain.KEKSize {
		cryptoDomain.Zero(key)
		return nil, fmt.Errorf("kms-unwrapped kek must be %d bytes, got %d", cryptoDomain.KEKSize, len(key))
	}

	return key, nil
}

// maskKeyURI masks sensitive components of a KMS key URI for secure logging.
func maskKeyURI(uri string) string {
	if uri == "" {
		return ""
	}

	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 {
		return "***"
	}

	scheme := parts[0]
	switch scheme {
	case "gcpkms":
		pathParts := strings.Split(parts[1], "/")
		for i := range pathParts {
			if i%2 == 1 {
				pathParts[i] = "***"
			}
		}
		return scheme + "://" + strings.Join(pathParts, "/")
	case "awskms":
		queryParts := strings.SplitN(parts[1], "?", 2)
		masked := scheme + "://***"
		if len(queryParts) == 2 {
			masked += "?" + queryParts[1]
		}
		return masked
	default:
		return scheme + "://***"
	}
}
