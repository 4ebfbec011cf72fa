// Package http provides the HTTP handler for audit chain verification.
package http

import (
	"context"
	"log/slog"
	"net/http"

	auditlogUsecase "github.com/allisson/secrets/internal/auditlog/usecase"
	"github.com/allisson/secrets/internal/httputil"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

// PackageRepository resolves a package's internal ID for chain verification.
type PackageRepository interface {
	Get(ctx context.Context, packageID string) (*vaultDomain.Package, error)
}

// AuditHandler handles HTTP requests for audit chain verification.
type AuditHandler struct {
	useCase     auditlogUsecase.UseCase
	packageRepo PackageRepository
	logger      *slog.Logger
}

// NewAuditHandler creates a new audit log HTTP handler.
func NewAuditHandler(useCase auditlogUsecase.UseCase, packageRepo PackageRepository, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{useCase: useCase, packageRepo: packageRepo, logger: logger}
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// VerifyHandler recomputes and checks a package's hash-chained audit history.
// GET /v1/packages/{id}/audit/verify
func (h *AuditHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	packageID := r.PathValue("id")

	pkg, err := h.packageRepo.Get(r.Context(), packageID)
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}

	valid, err := h.useCase.VerifyChain(r.Context(), pkg.InternalID)
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}

	httputil.MakeJSONResponse(w, http.StatusOK, verifyResponse{Valid: valid})
}
