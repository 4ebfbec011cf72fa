// Package usecase implements the invocation pipeline: resolve a package,
// enforce rate limiting/quota/authorization, recover the DEK, evaluate the
// rule document inside a Secure Scope in one of three modes, and append the
// result to the hash-chained audit log.
package usecase

import (
	"context"

	invocationDomain "github.com/allisson/secrets/internal/invocation/domain"
	meteringDomain "github.com/allisson/secrets/internal/metering/domain"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PackageRepository resolves the package an invocation is scoped to.
type PackageRepository interface {
	Get(ctx context.Context, packageID string) (*vaultDomain.Package, error)
}

// KnowledgeRepository loads the package's current encrypted rule document.
type KnowledgeRepository interface {
	GetActive(ctx context.Context, internalID string) (*vaultDomain.EncryptedKnowledge, error)
}

// ShareRepository reads the package's retained Shamir shares, if any.
type ShareRepository interface {
	ListByInternalID(ctx context.Context, internalID string) ([]*vaultDomain.ShareRecord, error)
}

// MeteringGate consults the external metering collaborator for quota checks.
type MeteringGate interface {
	Allow(ctx context.Context, callerID, tier string) (bool, error)
}

// MeteringQueue submits usage for asynchronous, non-blocking recording.
type MeteringQueue interface {
	Enqueue(record meteringDomain.UsageRecord)
}

// KeyManager is the subset of crypto/service.KeyManager the pipeline uses
// for the legacy (pre-Shamir) DEK recovery path and rule decryption.
type KeyManager interface {
	UnwrapDEK(blob []byte) ([]byte, error)
	Decrypt(blob, dek []byte) ([]byte, error)
}

// LLMPolisher is the external LLM contract: the first text block of the
// model reply, or an error on failure/timeout.
type LLMPolisher interface {
	Polish(ctx context.Context, system, user string, maxTokens int, apiKey string) (string, error)
}

// UseCase implements invoke(): the full ten-step pipeline.
type UseCase interface {
	Invoke(ctx context.Context, req invocationDomain.Request) (*invocationDomain.Result, error)
}
