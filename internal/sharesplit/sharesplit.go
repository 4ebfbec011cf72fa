// Package sharesplit implements (2,3)-threshold Shamir secret sharing over
// GF(256) for the platform/expert/backup split of a data-encryption key: any
// two of the three shares reconstruct the key exactly, and any single share
// carries no information about it.
//
// The arithmetic is classic byte-wise Shamir, not curve-scalar secret
// sharing — an arbitrary 256-bit AES key cannot be safely mapped onto a
// P-256 scalar without risking values outside the curve's order.
package sharesplit

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/allisson/secrets/internal/errors"
)

// Positional share indices. Index 2 (expert) is the only share ever returned
// to a caller; it is never persisted.
const (
	PlatformIndex byte = 1
	ExpertIndex   byte = 2
	BackupIndex   byte = 3
)

const checksumSize = 4

// Share is one point on the degree-1 polynomial generated for a secret,
// evaluated at x = Index.
type Share struct {
	Index byte
	Data  []byte
}

// Split produces three shares of secret such that any two reconstruct it
// exactly and any one reveals nothing about it. A 4-byte checksum is folded
// into the shared payload so Reconstruct can detect shares that were not cut
// from the same secret.
func Split(secret []byte) ([3]Share, error) {
	var out [3]Share
	if len(secret) == 0 {
		return out, fmt.Errorf("%w: secret must not be empty", apperrors.ErrInvalidInput)
	}

	sum := sha256.Sum256(secret)
	payload := make([]byte, 0, len(secret)+checksumSize)
	payload = append(payload, secret...)
	payload = append(payload, sum[:checksumSize]...)

	out[0] = Share{Index: PlatformIndex, Data: make([]byte, len(payload))}
	out[1] = Share{Index: ExpertIndex, Data: make([]byte, len(payload))}
	out[2] = Share{Index: BackupIndex, Data: make([]byte, len(payload))}

	coeff := make([]byte, len(payload))
	if _, err := rand.Read(coeff); err != nil {
		return out, fmt.Errorf("generate share coefficients: %w", err)
	}

	for pos, secretByte := range payload {
		a1 := coeff[pos]
		if a1 == 0 {
			// a1 = 0 collapses f(x) to the constant secretByte, so a single
			// share would leak this byte outright. Re-roll from crypto/rand
			// until nonzero; only 1 in 256 draws is zero, so this terminates
			// immediately in practice.
			for a1 == 0 {
				var b [1]byte
				if _, err := rand.Read(b[:]); err != nil {
					return out, fmt.Errorf("generate share coefficient: %w", err)
				}
				a1 = b[0]
			}
		}
		for i := range out {
			x := out[i].Index
			out[i].Data[pos] = addGF(secretByte, mulGF(a1, x))
		}
	}

	return out, nil
}

// Reconstruct recovers the original secret from two or three shares via
// Lagrange interpolation at x = 0. It returns ErrInsufficientShares with
// fewer than two shares and ErrIncompatibleShares when the supplied shares
// are malformed, duplicated, or were not cut from the same secret.
func Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, apperrors.ErrInsufficientShares
	}

	length := len(shares[0].Data)
	if length <= checksumSize {
		return nil, apperrors.ErrIncompatibleShares
	}

	seen := make(map[byte]bool, len(shares))
	for _, s := range shares {
		if s.Index == 0 || len(s.Data) != length {
			return nil, apperrors.ErrIncompatibleShares
		}
		if seen[s.Index] {
			return nil, apperrors.ErrIncompatibleShares
		}
		seen[s.Index] = true
	}

	payload := make([]byte, length)
	for pos := range payload {
		var y byte
		for i, si := range shares {
			num := byte(1)
			den := byte(1)
			for j, sj := range shares {
				if i == j {
					continue
				}
				num = mulGF(num, sj.Index)
				den = mulGF(den, si.Index^sj.Index)
			}
			term := mulGF(si.Data[pos], mulGF(num, invGF(den)))
			y = addGF(y, term)
		}
		payload[pos] = y
	}

	secret := payload[:length-checksumSize]
	wantSum := sha256.Sum256(secret)
	if !bytes.Equal(payload[length-checksumSize:], wantSum[:checksumSize]) {
		return nil, apperrors.ErrIncompatibleShares
	}
	return secret, nil
}

// Verify reports whether shares reconstruct exactly to secret.
func Verify(shares []Share, secret []byte) bool {
	got, err := Reconstruct(shares)
	if err != nil {
		return false
	}
	return bytes.Equal(got, secret)
}

// MarshalHex renders a share as "<index>:<hex data>", the stable external
// representation persisted in share_records and handed back to callers.
func (s Share) MarshalHex() string {
	return strconv.Itoa(int(s.Index)) + ":" + hex.EncodeToString(s.Data)
}

// ParseShareHex parses the representation produced by MarshalHex.
func ParseShareHex(encoded string) (Share, error) {
	idxStr, dataStr, ok := strings.Cut(encoded, ":")
	if !ok {
		return Share{}, fmt.Errorf("%w: malformed share encoding", apperrors.ErrInvalidInput)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 1 || idx > 255 {
		return Share{}, fmt.Errorf("%w: malformed share index", apperrors.ErrInvalidInput)
	}
	data, err := hex.DecodeString(dataStr)
	if err != nil {
		return Share{}, fmt.Errorf("%w: malformed share data", apperrors.ErrInvalidInput)
	}
	return Share{Index: byte(idx), Data: data}, nil
}
