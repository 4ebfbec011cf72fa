package app

import (
	"fmt"

	"github.com/allisson/secrets/internal/auditlog/repository"
	auditlogUsecase "github.com/allisson/secrets/internal/auditlog/usecase"
)

// AuditEntryRepository returns the hash-chained audit entry repository.
func (c *Container) AuditEntryRepository() (*repository.PostgreSQLAuditEntryRepository, error) {
	var err error
	c.auditEntryRepoInit.Do(func() {
		c.auditEntryRepo, err = c.initAuditEntryRepository()
		if err != nil {
			c.initErrors["auditEntryRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEntryRepo"]; exists {
		return nil, storedErr
	}
	return c.auditEntryRepo, nil
}

// AuditLogUseCase returns the audit log use case: append, verify, count recent.
func (c *Container) AuditLogUseCase() (auditlogUsecase.UseCase, error) {
	var err error
	c.auditLogInit.Do(func() {
		c.auditLog, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLog"]; exists {
		return nil, storedErr
	}
	return c.auditLog, nil
}

func (c *Container) initAuditEntryRepository() (*repository.PostgreSQLAuditEntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit entry repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver for audit log: %s", c.config.DBDriver)
	}
	return repository.NewPostgreSQLAuditEntryRepository(db), nil
}

func (c *Container) initAuditLogUseCase() (auditlogUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit log use case: %w", err)
	}
	auditEntryRepo, err := c.AuditEntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry repository for audit log use case: %w", err)
	}
	baseUseCase := auditlogUsecase.New(auditEntryRepo, txManager)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
	}
	return auditlogUsecase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
}
