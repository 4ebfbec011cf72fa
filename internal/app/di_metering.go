package app

import (
	invocationUsecase "github.com/allisson/secrets/internal/invocation/usecase"
	meteringService "github.com/allisson/secrets/internal/metering/service"
)

// MeteringGate returns the quota gate the invocation pipeline consults
// before running an evaluation. An unconfigured metering backend always
// allows: the external collaborator is optional infrastructure.
func (c *Container) MeteringGate() invocationUsecase.MeteringGate {
	c.meteringGateInit.Do(func() {
		if c.config.MeteringBaseURL == "" {
			c.meteringGate = meteringService.AlwaysAllowGate{}
			return
		}
		c.meteringGate = meteringService.NewGate(c.config.MeteringBaseURL, c.config.ExternalCallTimeout)
	})
	return c.meteringGate
}

// MeteringRecorder returns the usage recorder the metering queue submits to.
func (c *Container) MeteringRecorder() meteringService.Recorder {
	c.meteringRecorderInit.Do(func() {
		if c.config.MeteringBaseURL == "" {
			c.meteringRecorder = meteringService.NoopRecorder{}
			return
		}
		c.meteringRecorder = meteringService.NewHTTPRecorder(c.config.MeteringBaseURL, c.config.ExternalCallTimeout)
	})
	return c.meteringRecorder
}

// MeteringQueue returns the bounded background queue that records usage
// without blocking the invocation pipeline. Callers must invoke Start once
// at process boot and rely on Container.Shutdown to Stop it.
func (c *Container) MeteringQueue() *meteringService.Queue {
	c.meteringQueueInit.Do(func() {
		c.meteringQueue = meteringService.NewQueue(
			c.MeteringRecorder(),
			c.Logger(),
			c.config.WorkerBufferSize,
			c.config.WorkerCount,
		)
	})
	return c.meteringQueue
}
