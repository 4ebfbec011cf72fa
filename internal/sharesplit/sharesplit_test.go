package sharesplit

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrets/internal/errors"
)

func randomDEK(t *testing.T) []byte {
	t.Helper()
	dek := make([]byte, 32)
	_, err := rand.Read(dek)
	require.NoError(t, err)
	return dek
}

func TestSplit_ProducesThreeDistinctShares(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	assert.Equal(t, PlatformIndex, shares[0].Index)
	assert.Equal(t, ExpertIndex, shares[1].Index)
	assert.Equal(t, BackupIndex, shares[2].Index)

	assert.NotEqual(t, shares[0].Data, shares[1].Data)
	assert.NotEqual(t, shares[1].Data, shares[2].Data)
	assert.Len(t, shares[0].Data, len(secret)+checksumSize)
}

func TestSplit_EmptySecret(t *testing.T) {
	_, err := Split(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// TestReconstruct_EveryTwoSubsetRecovers exercises the threshold invariant:
// every pair among the three shares reconstructs the secret exactly.
func TestReconstruct_EveryTwoSubsetRecovers(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	pairs := [][2]Share{
		{shares[0], shares[1]},
		{shares[0], shares[2]},
		{shares[1], shares[2]},
	}
	for _, pair := range pairs {
		got, err := Reconstruct([]Share{pair[0], pair[1]})
		require.NoError(t, err)
		assert.Equal(t, secret, got)
		assert.True(t, Verify([]Share{pair[0], pair[1]}, secret))
	}

	got, err := Reconstruct(shares[:])
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestReconstruct_SingleShareInsufficient(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	_, err = Reconstruct([]Share{shares[0]})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientShares)

	_, err = Reconstruct(nil)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientShares)
}

func TestReconstruct_DuplicateIndex(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	_, err = Reconstruct([]Share{shares[0], shares[0]})
	assert.ErrorIs(t, err, apperrors.ErrIncompatibleShares)
}

func TestReconstruct_SharesFromDifferentSecrets(t *testing.T) {
	sharesA, err := Split(randomDEK(t))
	require.NoError(t, err)
	sharesB, err := Split(randomDEK(t))
	require.NoError(t, err)

	_, err = Reconstruct([]Share{sharesA[0], sharesB[1]})
	assert.ErrorIs(t, err, apperrors.ErrIncompatibleShares)
}

func TestReconstruct_MismatchedLength(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	truncated := Share{Index: shares[1].Index, Data: shares[1].Data[:len(shares[1].Data)-1]}
	_, err = Reconstruct([]Share{shares[0], truncated})
	assert.ErrorIs(t, err, apperrors.ErrIncompatibleShares)
}

func TestVerify_WrongSecret(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	other := randomDEK(t)
	assert.False(t, Verify([]Share{shares[0], shares[1]}, other))
}

func TestShareHex_RoundTrip(t *testing.T) {
	secret := randomDEK(t)
	shares, err := Split(secret)
	require.NoError(t, err)

	encoded := shares[1].MarshalHex()
	decoded, err := ParseShareHex(encoded)
	require.NoError(t, err)
	assert.Equal(t, shares[1], decoded)
}

func TestParseShareHex_Malformed(t *testing.T) {
	_, err := ParseShareHex("no-colon-here")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ParseShareHex("abc:deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ParseShareHex("1:zz")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGFArithmetic_MultiplicativeInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		assert.Equal(t, byte(1), mulGF(byte(a), invGF(byte(a))), "a=%d", a)
	}
}
