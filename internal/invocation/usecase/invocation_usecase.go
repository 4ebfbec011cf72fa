package usecase

import (
	"context"
	"log/slog"
	"time"

	auditlogUsecase "github.com/allisson/secrets/internal/auditlog/usecase"
	apperrors "github.com/allisson/secrets/internal/errors"
	invocationDomain "github.com/allisson/secrets/internal/invocation/domain"
	meteringDomain "github.com/allisson/secrets/internal/metering/domain"
	ruleengine "github.com/allisson/secrets/internal/ruleengine/service"
	"github.com/allisson/secrets/internal/securescope"
	"github.com/allisson/secrets/internal/sharesplit"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// Config carries the tunables the invocation pipeline exposes to deployments.
type Config struct {
	RateLimitWindow     time.Duration
	RateLimitCount      int
	ExternalCallTimeout time.Duration
	MaxTokens           int
	PlatformLLMKey      string // empty disables Mode B entirely.
}

type invocationUseCase struct {
	packageRepo   PackageRepository
	knowledgeRepo KnowledgeRepository
	shareRepo     ShareRepository
	auditLog      auditlogUsecase.UseCase
	meteringGate  MeteringGate
	meteringQueue MeteringQueue
	keyManager    KeyManager
	llm           LLMPolisher
	logger        *slog.Logger
	cfg           Config
}

// New creates the invocation pipeline UseCase.
func New(
	packageRepo PackageRepository,
	knowledgeRepo KnowledgeRepository,
	shareRepo ShareRepository,
	auditLog auditlogUsecase.UseCase,
	meteringGate MeteringGate,
	meteringQueue MeteringQueue,
	keyManager KeyManager,
	llm LLMPolisher,
	logger *slog.Logger,
	cfg Config,
) UseCase {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = 10 * time.Minute
	}
	if cfg.RateLimitCount <= 0 {
		cfg.RateLimitCount = 20
	}
	if cfg.ExternalCallTimeout <= 0 {
		cfg.ExternalCallTimeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &invocationUseCase{
		packageRepo:   packageRepo,
		knowledgeRepo: knowledgeRepo,
		shareRepo:     shareRepo,
		auditLog:      auditLog,
		meteringGate:  meteringGate,
		meteringQueue: meteringQueue,
		keyManager:    keyManager,
		llm:           llm,
		logger:        logger,
		cfg:           cfg,
	}
}

// Invoke runs one caller query against one package's active rule document.
// Steps 1-6 never touch the audit log: a rejection before evaluation leaves
// no trace. Once step 7 produces a conclusion, the audit row is guaranteed,
// even if the async metering submit in step 9 later fails.
func (uc *invocationUseCase) Invoke(ctx context.Context, req invocationDomain.Request) (*invocationDomain.Result, error) {
	pkg, err := uc.packageRepo.Get(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}

	count, err := uc.auditLog.CountRecent(ctx, pkg.InternalID, req.CallerID, uc.cfg.RateLimitWindow)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to check invocation rate limit")
	}
	if count > uc.cfg.RateLimitCount {
		return nil, apperrors.ErrRateLimited
	}

	allowed, err := uc.meteringGate.Allow(ctx, req.CallerID, req.Tier)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to consult metering collaborator")
	}
	if !allowed {
		return nil, apperrors.ErrQuotaExceeded
	}

	if req.LabKey != "" && req.CallerID != pkg.AuthorID {
		return nil, apperrors.ErrForbidden
	}

	knowledge, err := uc.knowledgeRepo.GetActive(ctx, pkg.InternalID)
	if err != nil {
		return nil, err
	}

	shares, err := uc.shareRepo.ListByInternalID(ctx, pkg.InternalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stored shares")
	}

	start := time.Now()

	scopeResult, err := securescope.Run(
		func() ([]byte, error) { return uc.recoverDEK(knowledge, shares, req.ExpertShare) },
		func(dek []byte) (any, error) {
			plaintext, decErr := uc.keyManager.Decrypt(knowledge.Ciphertext, dek)
			if decErr != nil {
				return nil, decErr
			}
			return securescope.WithBytes(plaintext, func(pt []byte) (any, error) {
				return uc.evaluate(ctx, req, pt)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	inferenceMS := time.Since(start).Milliseconds()

	result, _ := scopeResult.(*invocationDomain.Result)

	if _, appendErr := uc.auditLog.Append(ctx, pkg.InternalID, req.CallerID, result.Conclusion, &inferenceMS); appendErr != nil {
		return nil, apperrors.Wrap(appendErr, "failed to append audit entry")
	}

	uc.meteringQueue.Enqueue(meteringDomain.UsageRecord{
		InternalID:  pkg.InternalID,
		CallerID:    req.CallerID,
		Mode:        result.Mode,
		InferenceMS: inferenceMS,
	})

	return result, nil
}

// recoverDEK implements step 6: reconstruct from the stored platform share
// plus the caller-supplied expert share when both custodial shares are on
// record, or fall back to a direct KEK unwrap for packages uploaded before
// the Shamir split existed.
func (uc *invocationUseCase) recoverDEK(knowledge *vaultDomain.EncryptedKnowledge, shares []*vaultDomain.ShareRecord, expertShareHex string) ([]byte, error) {
	if len(shares) < 2 {
		return uc.keyManager.UnwrapDEK(knowledge.WrappedDEK)
	}

	if expertShareHex == "" {
		return nil, apperrors.ErrShareRequired
	}

	expertShare, err := sharesplit.ParseShareHex(expertShareHex)
	if err != nil {
		return nil, err
	}

	var platformShare *vaultDomain.ShareRecord
	for _, s := range shares {
		if s.ShareIndex == sharesplit.PlatformIndex {
			platformShare = s
			break
		}
	}
	if platformShare == nil {
		return nil, apperrors.ErrIncompatibleShares
	}

	return sharesplit.Reconstruct([]sharesplit.Share{
		{Index: platformShare.ShareIndex, Data: platformShare.ShareData},
		expertShare,
	})
}

// evaluate implements step 7: mode selection and evaluation, entirely inside
// the Secure Scope that owns the decrypted rule plaintext. The returned
// Result never carries rule plaintext, a keyword, or a rule id except the
// author's own conclusion/dimension tokens surfaced via ToSafePrompt.
func (uc *invocationUseCase) evaluate(ctx context.Context, req invocationDomain.Request, plaintext []byte) (*invocationDomain.Result, error) {
	if req.LabKey != "" {
		reply, err := uc.callLLM(ctx, string(plaintext), req.Query, req.LabKey)
		if err != nil {
			return nil, apperrors.ErrExternalUnavailable
		}
		return &invocationDomain.Result{
			Conclusion: reply,
			Mode:       invocationDomain.ModeLabPreview,
			Notice:     "rule plaintext was transmitted to the external model under the author's own agreement",
		}, nil
	}

	rules, ok := ruleengine.TryParseRules(plaintext)
	if !ok {
		return &invocationDomain.Result{
			Conclusion: ruleengine.MockFreeformResponse(req.Query),
			Mode:       invocationDomain.ModeLocal,
			Notice:     "no data transmitted",
		}, nil
	}

	evaluation := ruleengine.Evaluate(rules, req.Query)
	safeReport := ruleengine.ToSafePrompt(evaluation, req.Query)

	if uc.cfg.PlatformLLMKey != "" {
		reply, err := uc.callLLM(ctx, safeReport, req.Query, uc.cfg.PlatformLLMKey)
		if err == nil {
			return &invocationDomain.Result{
				Conclusion: reply,
				Mode:       invocationDomain.ModeHybrid,
				Notice:     "only the safe skeleton was transmitted",
			}, nil
		}
		if uc.logger != nil {
			uc.logger.Warn("mode b external call failed, degrading to local evaluation",
				slog.Any("error", err),
			)
		}
	}

	return &invocationDomain.Result{
		Conclusion: safeReport,
		Mode:       invocationDomain.ModeLocal,
		Notice:     "no data transmitted",
	}, nil
}

func (uc *invocationUseCase) callLLM(ctx context.Context, system, user, apiKey string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.ExternalCallTimeout)
	defer cancel()
	return uc.llm.Polish(callCtx, system, user, uc.cfg.MaxTokens, apiKey)
}
