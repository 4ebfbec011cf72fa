package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	apperrors "github.com/allisson/secrets/internal/errors"
)

// dekSize is the byte length of a generated data-encryption key (256 bits).
const dekSize = 32

// tagSize is the AEAD authentication tag length shared by AES-256-GCM and
// ChaCha20-Poly1305 (128 bits).
const tagSize = 16

// DefaultPlaintextMaxBytes is the default bound on rule plaintext size.
const DefaultPlaintextMaxBytes = 100_000

// KeyManagerService implements the KeyManager interface: envelope encryption of
// skill rule plaintext under a process-wide KEK.
//
// The KEK is supplied once at construction and held only in process memory —
// never persisted, never logged. A nil/empty KEK means the process has no key
// loaded: every wrap/unwrap call fails with ErrNoKek.
type KeyManagerService struct {
	aeadManager       AEADManager
	algorithm         cryptoDomain.Algorithm
	kek               []byte
	plaintextMaxBytes int
}

// NewKeyManager creates a KeyManagerService bound to the given process KEK and
// AEAD algorithm. kek must be nil or exactly 32 bytes. plaintextMaxBytes <= 0
// falls back to DefaultPlaintextMaxBytes.
func NewKeyManager(
	aeadManager AEADManager,
	algorithm cryptoDomain.Algorithm,
	kek []byte,
	plaintextMaxBytes int,
) *KeyManagerService {
	if plaintextMaxBytes <= 0 {
		plaintextMaxBytes = DefaultPlaintextMaxBytes
	}
	return &KeyManagerService{
		aeadManager:       aeadManager,
		algorithm:         algorithm,
		kek:               kek,
		plaintextMaxBytes: plaintextMaxBytes,
	}
}

// GenerateDEK returns a fresh, cryptographically random 32-byte data-encryption key.
func (km *KeyManagerService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, dekSize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate dek: %w", err)
	}
	return dek, nil
}

// WrapDEK encrypts dek under the process KEK.
func (km *KeyManagerService) WrapDEK(dek []byte) ([]byte, error) {
	if len(km.kek) == 0 {
		return nil, apperrors.ErrNoKek
	}
	return km.seal(km.kek, dek)
}

// UnwrapDEK decrypts a DEK previously wrapped under the process KEK.
func (km *KeyManagerService) UnwrapDEK(blob []byte) ([]byte, error) {
	if len(km.kek) == 0 {
		return nil, apperrors.ErrNoKek
	}
	dek, err := km.open(km.kek, blob)
	if err != nil {
		return nil, apperrors.ErrCorruptWrap
	}
	return dek, nil
}

// Encrypt encrypts plaintext under dek.
func (km *KeyManagerService) Encrypt(plaintext, dek []byte) ([]byte, error) {
	if len(plaintext) > km.plaintextMaxBytes {
		return nil, apperrors.ErrTooLarge
	}
	return km.seal(dek, plaintext)
}

// Decrypt decrypts a blob previously produced by Encrypt under dek.
func (km *KeyManagerService) Decrypt(blob, dek []byte) ([]byte, error) {
	plaintext, err := km.open(dek, blob)
	if err != nil {
		return nil, apperrors.ErrCorruptCiphertext
	}
	return plaintext, nil
}

// seal produces the fixed wire framing nonce ‖ tag ‖ ciphertext for the given key
// and plaintext.
func (km *KeyManagerService) seal(key, plaintext []byte) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(key, km.algorithm)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}
	if len(sealed) < tagSize {
		return nil, fmt.Errorf("sealed output shorter than tag size")
	}

	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, len(nonce)+tagSize+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

// open is the inverse of seal.
func (km *KeyManagerService) open(key, blob []byte) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(key, km.algorithm)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(blob) < nonceSize+tagSize {
		return nil, fmt.Errorf("blob too short")
	}

	nonce := blob[:nonceSize]
	tag := blob[nonceSize : nonceSize+tagSize]
	ciphertext := blob[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	return aead.Decrypt(sealed, nonce, nil)
}
