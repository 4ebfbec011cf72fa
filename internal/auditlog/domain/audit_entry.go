// Package domain defines the per-package, hash-chained invocation audit log.
// Entries are append-only: nothing in this package ever updates or deletes
// a row, and revocation never touches it.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Genesis is the literal prev_hash of the first entry ever appended for a
// package.
const Genesis = "GENESIS"

// Entry is one invocation record in a package's audit chain.
type Entry struct {
	ID             string
	InternalID     string
	CallerID       string
	ConclusionHash string // hex-SHA-256 of the emitted conclusion text.
	PrevHash       string // Genesis or the previous entry's EventHash.
	EventHash      string
	InferenceMS    *int64
	CreatedAt      time.Time
}

// ConclusionHash hashes conclusion text into the hex-SHA-256 the chain
// commits to, without ever persisting the conclusion text itself here.
func ConclusionHash(conclusion string) string {
	sum := sha256.Sum256([]byte(conclusion))
	return hex.EncodeToString(sum[:])
}

// ComputeEventHash reproduces SHA-256(internal_id ‖ caller_id ‖
// conclusion_hash ‖ prev_hash) with no separators, the exact preimage the
// persisted byte format commits to.
func ComputeEventHash(internalID, callerID, conclusionHash, prevHash string) string {
	h := sha256.New()
	h.Write([]byte(internalID))
	h.Write([]byte(callerID))
	h.Write([]byte(conclusionHash))
	h.Write([]byte(prevHash))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes e's event hash from its stored fields and reports
// whether it matches what's on record.
func (e *Entry) Verify() bool {
	return ComputeEventHash(e.InternalID, e.CallerID, e.ConclusionHash, e.PrevHash) == e.EventHash
}
