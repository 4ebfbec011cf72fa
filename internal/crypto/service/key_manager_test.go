package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	apperrors "github.com/allisson/secrets/internal/errors"
)

func randomKEK(t *testing.T) []byte {
	t.Helper()
	kek := make([]byte, cryptoDomain.KEKSize)
	_, err := rand.Read(kek)
	require.NoError(t, err)
	return kek
}

func newTestKeyManager(t *testing.T, kek []byte) *KeyManagerService {
	t.Helper()
	return NewKeyManager(NewAEADManager(), cryptoDomain.AESGCM, kek, 0)
}

func TestKeyManagerService_GenerateDEK(t *testing.T) {
	km := newTestKeyManager(t, randomKEK(t))

	dek1, err := km.GenerateDEK()
	require.NoError(t, err)
	assert.Len(t, dek1, dekSize)

	dek2, err := km.GenerateDEK()
	require.NoError(t, err)
	assert.NotEqual(t, dek1, dek2)
}

func TestKeyManagerService_WrapUnwrapDEK_RoundTrip(t *testing.T) {
	km := newTestKeyManager(t, randomKEK(t))

	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	wrapped, err := km.WrapDEK(dek)
	require.NoError(t, err)
	assert.Len(t, wrapped, 12+16+32) // nonce ‖ tag ‖ ciphertext(32)

	unwrapped, err := km.UnwrapDEK(wrapped)
	require.NoError(t, err)
	assert.Equal(t, dek, unwrapped)
}

func TestKeyManagerService_WrapDEK_NoKek(t *testing.T) {
	km := newTestKeyManager(t, nil)

	_, err := km.WrapDEK(make([]byte, dekSize))
	assert.ErrorIs(t, err, apperrors.ErrNoKek)

	_, err = km.UnwrapDEK(make([]byte, 60))
	assert.ErrorIs(t, err, apperrors.ErrNoKek)
}

func TestKeyManagerService_UnwrapDEK_CorruptWrap(t *testing.T) {
	km := newTestKeyManager(t, randomKEK(t))

	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	wrapped, err := km.WrapDEK(dek)
	require.NoError(t, err)

	wrapped[len(wrapped)-1] ^= 0xFF // flip a ciphertext byte

	_, err = km.UnwrapDEK(wrapped)
	assert.ErrorIs(t, err, apperrors.ErrCorruptWrap)
}

func TestKeyManagerService_EncryptDecrypt_RoundTrip(t *testing.T) {
	km := newTestKeyManager(t, randomKEK(t))
	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	plaintext := []byte(`[{"id":"r1","dimension":"market_fit","condition":{"keywords":["B2B"]},"conclusion":"strong","weight":0.9}]`)

	blob, err := km.Encrypt(plaintext, dek)
	require.NoError(t, err)

	decrypted, err := km.Decrypt(blob, dek)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestKeyManagerService_Encrypt_TooLarge(t *testing.T) {
	km := NewKeyManager(NewAEADManager(), cryptoDomain.AESGCM, randomKEK(t), 10)
	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	_, err = km.Encrypt([]byte("this plaintext exceeds ten bytes"), dek)
	assert.ErrorIs(t, err, apperrors.ErrTooLarge)
}

func TestKeyManagerService_Decrypt_CorruptCiphertext(t *testing.T) {
	km := newTestKeyManager(t, randomKEK(t))
	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	blob, err := km.Encrypt([]byte("hello"), dek)
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xFF

	_, err = km.Decrypt(blob, dek)
	assert.ErrorIs(t, err, apperrors.ErrCorruptCiphertext)
}

func TestKeyManagerService_ChaCha20_RoundTrip(t *testing.T) {
	km := NewKeyManager(NewAEADManager(), cryptoDomain.ChaCha20, randomKEK(t), 0)
	dek, err := km.GenerateDEK()
	require.NoError(t, err)

	wrapped, err := km.WrapDEK(dek)
	require.NoError(t, err)

	unwrapped, err := km.UnwrapDEK(wrapped)
	require.NoError(t, err)
	assert.Equal(t, dek, unwrapped)
}
