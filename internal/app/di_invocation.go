package app

import (
	"fmt"

	"github.com/allisson/secrets/internal/invocation/service"
	invocationUsecase "github.com/allisson/secrets/internal/invocation/usecase"
)

// LLMPolisher returns the adapter that calls the external LLM: with the safe
// report under the platform key in Mode B, and with the rule plaintext as the
// system prompt under the caller's own key in Mode C.
func (c *Container) LLMPolisher() *service.Polisher {
	c.llmPolisherInit.Do(func() {
		c.llmPolisher = service.New(service.Config{
			Timeout: c.config.ExternalCallTimeout,
		})
	})
	return c.llmPolisher
}

// InvocationUseCase returns the invocation pipeline use case.
func (c *Container) InvocationUseCase() (invocationUsecase.UseCase, error) {
	var err error
	c.invocationInit.Do(func() {
		c.invocation, err = c.initInvocationUseCase()
		if err != nil {
			c.initErrors["invocation"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["invocation"]; exists {
		return nil, storedErr
	}
	return c.invocation, nil
}

func (c *Container) initInvocationUseCase() (invocationUsecase.UseCase, error) {
	packageRepo, err := c.PackageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get package repository for invocation use case: %w", err)
	}
	knowledgeRepo, err := c.KnowledgeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge repository for invocation use case: %w", err)
	}
	shareRepo, err := c.ShareRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get share repository for invocation use case: %w", err)
	}
	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for invocation use case: %w", err)
	}
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for invocation use case: %w", err)
	}

	// MeteringQueue must be started before anything enqueues to it; the
	// server command starts it right after building the container.
	c.MeteringQueue()

	baseUseCase := invocationUsecase.New(
		packageRepo,
		knowledgeRepo,
		shareRepo,
		auditLog,
		c.MeteringGate(),
		c.MeteringQueue(),
		keyManager,
		c.LLMPolisher(),
		c.Logger(),
		invocationUsecase.Config{
			RateLimitWindow:     c.config.RateLimitWindow,
			RateLimitCount:      c.config.RateLimitCount,
			ExternalCallTimeout: c.config.ExternalCallTimeout,
			PlatformLLMKey:      c.config.AnthropicKey,
		},
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for invocation use case: %w", err)
	}
	return invocationUsecase.NewInvocationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
}
