// Package app provides the dependency injection container assembling the
// Skill Security Subsystem core: config, database, crypto, the skill vault,
// the audit log, metering, and the invocation pipeline.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/secrets/internal/auditlog/repository"
	auditlogUsecase "github.com/allisson/secrets/internal/auditlog/usecase"
	"github.com/allisson/secrets/internal/config"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/database"
	"github.com/allisson/secrets/internal/invocation/service"
	invocationUsecase "github.com/allisson/secrets/internal/invocation/usecase"
	ipanchorService "github.com/allisson/secrets/internal/ipanchor/service"
	meteringService "github.com/allisson/secrets/internal/metering/service"
	"github.com/allisson/secrets/internal/metrics"
	vaultRepository "github.com/allisson/secrets/internal/skillvault/repository"
	skillvaultUsecase "github.com/allisson/secrets/internal/skillvault/usecase"
	transportHTTP "github.com/allisson/secrets/internal/transport/http"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily, on first access, and cached for the
// remainder of the process.
type Container struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	txManager database.TxManager

	mu            sync.Mutex
	loggerInit    sync.Once
	dbInit        sync.Once
	txManagerInit sync.Once
	initErrors    map[string]error

	// crypto
	kekInit         sync.Once
	kek             []byte
	aeadManagerInit sync.Once
	aeadManager     cryptoService.AEADManager
	keyManagerInit  sync.Once
	keyManager      cryptoService.KeyManager
	kmsServiceInit  sync.Once
	kmsService      cryptoService.KMSService

	// skill vault
	packageRepoInit   sync.Once
	packageRepo       *vaultRepository.PostgreSQLPackageRepository
	knowledgeRepoInit sync.Once
	knowledgeRepo     *vaultRepository.PostgreSQLKnowledgeRepository
	shareRepoInit     sync.Once
	shareRepo         *vaultRepository.PostgreSQLShareRepository
	ipAnchorRepoInit  sync.Once
	ipAnchorRepo      *vaultRepository.PostgreSQLIpAnchorRepository
	ipAnchorInit      sync.Once
	ipAnchor          *ipanchorService.Anchor
	skillVaultInit    sync.Once
	skillVault        skillvaultUsecase.UseCase

	// audit log
	auditEntryRepoInit sync.Once
	auditEntryRepo     *repository.PostgreSQLAuditEntryRepository
	auditLogInit       sync.Once
	auditLog           auditlogUsecase.UseCase

	// metering
	meteringGateInit     sync.Once
	meteringGate         invocationUsecase.MeteringGate
	meteringRecorderInit sync.Once
	meteringRecorder     meteringService.Recorder
	meteringQueueInit    sync.Once
	meteringQueue        *meteringService.Queue

	// invocation
	llmPolisherInit sync.Once
	llmPolisher     *service.Polisher
	invocationInit  sync.Once
	invocation      invocationUsecase.UseCase

	// http transport
	metricsProviderInit sync.Once
	metricsProvider     *metrics.Provider
	businessMetricsInit sync.Once
	businessMetrics     metrics.BusinessMetrics
	httpServerInit      sync.Once
	httpServer          *transportHTTP.Server
	metricsServerInit   sync.Once
	metricsServer       *transportHTTP.MetricsServer
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance, created on first access
// based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection, created and configured on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Shutdown performs cleanup of all initialized resources. It stops the
// metering queue (draining in-flight records) before closing the database
// connection.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.meteringQueue != nil {
		if err := c.meteringQueue.Stop(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metering queue stop: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}
	return nil
}

// initLogger creates a structured logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
