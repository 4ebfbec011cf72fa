package securescope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ZeroizesOnSuccess(t *testing.T) {
	var probe []byte
	result, err := Run(
		func() ([]byte, error) {
			probe = []byte{1, 2, 3, 4}
			return probe, nil
		},
		func(buf []byte) (any, error) {
			assert.Equal(t, []byte{1, 2, 3, 4}, buf)
			return "ok", nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []byte{0, 0, 0, 0}, probe)
}

func TestRun_ZeroizesOnBodyError(t *testing.T) {
	var probe []byte
	_, err := Run(
		func() ([]byte, error) {
			probe = []byte{9, 9, 9}
			return probe, nil
		},
		func(buf []byte) (any, error) {
			return nil, errors.New("boom")
		},
	)
	require.Error(t, err)
	assert.Equal(t, []byte{0, 0, 0}, probe)
}

func TestRun_ZeroizesOnPanic(t *testing.T) {
	var probe []byte
	func() {
		defer func() {
			_ = recover()
		}()
		_, _ = Run(
			func() ([]byte, error) {
				probe = []byte{7, 7, 7, 7, 7}
				return probe, nil
			},
			func(buf []byte) (any, error) {
				panic("induced fault")
			},
		)
	}()
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, probe)
}

func TestRun_ProviderError_NothingToZero(t *testing.T) {
	_, err := Run(
		func() ([]byte, error) { return nil, errors.New("provider failed") },
		func(buf []byte) (any, error) { t.Fatal("body must not run"); return nil, nil },
	)
	assert.Error(t, err)
}

func TestWithBytes_ZeroizesDerivedPlaintext(t *testing.T) {
	plaintext := []byte("rule document plaintext")
	_, err := WithBytes(plaintext, func(buf []byte) (any, error) {
		assert.Equal(t, "rule document plaintext", string(buf))
		return nil, nil
	})
	require.NoError(t, err)
	for _, b := range plaintext {
		assert.Equal(t, byte(0), b)
	}
}

func TestZero_NilAndEmpty(t *testing.T) {
	Zero(nil)
	Zero([]byte{})
}
