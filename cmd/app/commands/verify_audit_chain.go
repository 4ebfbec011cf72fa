package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/secrets/internal/app"
	"github.com/allisson/secrets/internal/config"
)

// VerifyAuditChain recomputes a package's hash-chained audit history and
// reports whether it is intact. A broken chain means some entry's fields
// were altered after the fact, or a row was deleted from the middle.
func VerifyAuditChain(ctx context.Context, packageID string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	packageRepo, err := container.PackageRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize package repository: %w", err)
	}
	auditLog, err := container.AuditLogUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit log use case: %w", err)
	}

	pkg, err := packageRepo.Get(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to resolve package %q: %w", packageID, err)
	}

	valid, err := auditLog.VerifyChain(ctx, pkg.InternalID)
	if err != nil {
		return fmt.Errorf("failed to verify audit chain: %w", err)
	}

	if valid {
		logger.Info("audit chain intact", slog.String("package_id", packageID))
	} else {
		logger.Error("audit chain broken", slog.String("package_id", packageID))
		return fmt.Errorf("audit chain for package %q failed verification", packageID)
	}

	return nil
}
