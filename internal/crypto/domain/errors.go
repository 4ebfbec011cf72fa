// Package domain defines core cryptographic domain models for envelope encryption
// of skill rule plaintext: a process-wide KEK wraps a per-upload DEK, and the DEK
// encrypts the rule document.
package domain

import (
	"github.com/allisson/secrets/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid (must be 32 bytes).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrKMSProviderNotSet indicates KMS_KEY_URI is configured without KMS_PROVIDER.
	ErrKMSProviderNotSet = errors.Wrap(errors.ErrInvalidInput, "kms provider not set")

	// ErrKMSKeyURINotSet indicates KMS_PROVIDER is configured without KMS_KEY_URI.
	ErrKMSKeyURINotSet = errors.Wrap(errors.ErrInvalidInput, "kms key uri not set")

	// ErrKMSOpenKeeperFailed indicates opening the KMS keeper failed.
	ErrKMSOpenKeeperFailed = errors.Wrap(errors.ErrInvalidInput, "failed to open kms keeper")

	// ErrKMSDecryptionFailed indicates KMS decryption of the wrapped KEK failed.
	ErrKMSDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "kms decryption failed")
)
