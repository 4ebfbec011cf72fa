package app

import (
	"fmt"

	auditlogHTTP "github.com/allisson/secrets/internal/auditlog/http"
	invocationHTTP "github.com/allisson/secrets/internal/invocation/http"
	"github.com/allisson/secrets/internal/metrics"
	skillvaultHTTP "github.com/allisson/secrets/internal/skillvault/http"
	transportHTTP "github.com/allisson/secrets/internal/transport/http"
)

// MetricsProvider returns the Prometheus-backed OpenTelemetry metrics
// provider, or nil when metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business operation metrics recorder used by
// the skill vault, invocation, and audit log usecase decorators. Falls back
// to a no-op implementation when metrics are disabled in configuration.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["businessMetrics"] = err
			return
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the application's HTTP server, wired with every route
// the skill vault, invocation pipeline, and audit log expose.
func (c *Container) HTTPServer() (*transportHTTP.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

func (c *Container) initHTTPServer() (*transportHTTP.Server, error) {
	skillVault, err := c.SkillVaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get skill vault use case: %w", err)
	}
	invocation, err := c.InvocationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation use case: %w", err)
	}
	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case: %w", err)
	}
	packageRepo, err := c.PackageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get package repository: %w", err)
	}

	packageHandler := skillvaultHTTP.NewPackageHandler(skillVault, c.Logger())
	invokeHandler := invocationHTTP.NewInvokeHandler(invocation, c.Logger())
	auditHandler := auditlogHTTP.NewAuditHandler(auditLog, packageRepo, c.Logger())

	server := transportHTTP.NewServer(c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRoutes(packageHandler, invokeHandler, auditHandler)
	return server, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled in configuration.
func (c *Container) MetricsServer() (*transportHTTP.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = transportHTTP.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}
