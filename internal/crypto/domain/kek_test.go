package domain

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrets/internal/errors"
)

func TestLoadKEKFromHex(t *testing.T) {
	t.Run("valid 64-hex kek", func(t *testing.T) {
		raw := make([]byte, KEKSize)
		for i := range raw {
			raw[i] = byte(i)
		}
		key, err := LoadKEKFromHex(hex.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("empty kek is a startup fault", func(t *testing.T) {
		_, err := LoadKEKFromHex("")
		assert.ErrorIs(t, err, apperrors.ErrNoKek)
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, err := LoadKEKFromHex("not-hex")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := LoadKEKFromHex(hex.EncodeToString([]byte("too short")))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
