package domain

import (
	"context"
	"encoding/hex"
	"fmt"

	apperrors "github.com/allisson/secrets/internal/errors"
)

// KEKSize is the required byte length of the process-wide key-encryption key (256 bits).
const KEKSize = 32

// KMSKeeper defines the interface for KMS decrypt operations, satisfied by
// *gocloud.dev/secrets.Keeper, used to recover a KMS-wrapped KEK at boot.
type KMSKeeper interface {
	// Decrypt decrypts ciphertext using the KMS key.
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)

	// Close releases resources held by the keeper.
	Close() error
}

// LoadKEKFromHex decodes and validates the 64-hex-character (256-bit) process KEK
// read from configuration. A missing or malformed KEK is a startup fault: the
// process must never run without one.
func LoadKEKFromHex(hexKey string) ([]byte, error) {
	if hexKey == "" {
		return nil, apperrors.ErrNoKek
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: kek is not valid hex", apperrors.ErrInvalidInput)
	}

	if len(key) != KEKSize {
		Zero(key)
		return nil, fmt.Errorf("%w: kek must decode to %d bytes, got %d", apperrors.ErrInvalidInput, KEKSize, len(key))
	}

	return key, nil
}
