// Package service provides cryptographic service interfaces and implementations.
//
// This package implements the service layer for envelope encryption of skill rule
// plaintext: a process-wide KEK (loaded once at boot, immutable thereafter) wraps a
// per-upload Data Encryption Key, and the DEK encrypts the rule document.
//
// # Services Overview
//
// AEADManagerService: Factory for creating AEAD cipher instances. Supports
// AES-256-GCM and ChaCha20-Poly1305.
//
// KeyManagerService: generates DEKs, wraps/unwraps them under the process KEK,
// and encrypts/decrypts rule plaintext under a DEK.
//
// AESGCMCipher / ChaCha20Poly1305Cipher: concrete AEAD implementations.
//
// # Thread Safety
//
// All service implementations are stateless and thread-safe.
package service

import (
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// Implementations: AESGCMCipher, ChaCha20Poly1305Cipher
type AEAD interface {
	// Encrypt encrypts plaintext with optional additional authenticated data (AAD).
	// A unique nonce is generated for each call and returned alongside the
	// ciphertext (which carries the authentication tag appended at its end, per
	// Go's cipher.AEAD.Seal convention).
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length in bytes required by this cipher.
	NonceSize() int
}

// AEADManager is a factory for AEAD cipher instances keyed by algorithm.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	// The key must be exactly 32 bytes (256 bits).
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager implements envelope encryption of skill rule plaintext.
//
// The KEK is loaded once at process start from configuration and held immutable
// for the process lifetime; it is never persisted or logged. Every operation
// uses the fixed wire framing nonce(12) ‖ tag(16) ‖ ciphertext(N).
type KeyManager interface {
	// GenerateDEK returns a fresh, cryptographically random 32-byte data-encryption
	// key. The key is never logged.
	GenerateDEK() ([]byte, error)

	// WrapDEK encrypts dek under the process KEK, returning
	// nonce(12) ‖ tag(16) ‖ ciphertext(32) — 60 bytes total.
	// Returns errors.ErrNoKek if the process has no KEK loaded.
	WrapDEK(dek []byte) ([]byte, error)

	// UnwrapDEK is the inverse of WrapDEK.
	// Returns errors.ErrNoKek if the process has no KEK loaded, or
	// errors.ErrCorruptWrap if authentication fails.
	UnwrapDEK(blob []byte) ([]byte, error)

	// Encrypt encrypts plaintext under dek, returning
	// nonce(12) ‖ tag(16) ‖ ciphertext(N). Returns errors.ErrTooLarge if plaintext
	// exceeds the configured bound.
	Encrypt(plaintext, dek []byte) ([]byte, error)

	// Decrypt is the inverse of Encrypt.
	// Returns errors.ErrCorruptCiphertext if authentication fails.
	Decrypt(blob, dek []byte) ([]byte, error)
}
