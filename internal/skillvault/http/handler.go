// Package http provides the HTTP handlers for skill vault upload, read, and
// revoke operations.
package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/allisson/secrets/internal/httputil"
	"github.com/allisson/secrets/internal/skillvault/http/dto"
	vaultUsecase "github.com/allisson/secrets/internal/skillvault/usecase"
	customValidation "github.com/allisson/secrets/internal/validation"
)

// PackageHandler handles HTTP requests for skill vault operations.
type PackageHandler struct {
	useCase vaultUsecase.UseCase
	logger  *slog.Logger
}

// NewPackageHandler creates a new skill vault HTTP handler.
func NewPackageHandler(useCase vaultUsecase.UseCase, logger *slog.Logger) *PackageHandler {
	return &PackageHandler{useCase: useCase, logger: logger}
}

type uploadResponse struct {
	ExpertShare string `json:"expert_share"`
}

// UploadHandler encrypts a skill rule document under a fresh DEK.
// POST /v1/packages/{id}/upload
func (h *PackageHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r)
	if !ok {
		httputil.HandleValidationError(w, fmt.Errorf("X-Caller-ID header is required"), h.logger)
		return
	}
	packageID := r.PathValue("id")

	var req dto.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.HandleValidationError(w, fmt.Errorf("invalid request body: %w", err), h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleError(w, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// req.Validate already confirmed req.Plaintext is well-formed base64.
	plaintext, _ := base64.StdEncoding.DecodeString(req.Plaintext)

	expertShare, err := h.useCase.Upload(r.Context(), callerID, packageID, plaintext)
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}

	httputil.MakeJSONResponse(w, http.StatusCreated, uploadResponse{ExpertShare: expertShare})
}

type readResponse struct {
	Plaintext string `json:"plaintext"`
}

// ReadHandler decrypts and returns a package's current plaintext. Author-only.
// GET /v1/packages/{id}
func (h *PackageHandler) ReadHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r)
	if !ok {
		httputil.HandleValidationError(w, fmt.Errorf("X-Caller-ID header is required"), h.logger)
		return
	}
	packageID := r.PathValue("id")

	plaintext, err := h.useCase.Read(r.Context(), callerID, packageID)
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}
	defer func() {
		for i := range plaintext {
			plaintext[i] = 0
		}
	}()

	httputil.MakeJSONResponse(w, http.StatusOK, readResponse{
		Plaintext: base64.StdEncoding.EncodeToString(plaintext),
	})
}

type revokeResponse struct {
	DeletedShares   int `json:"deleted_shares"`
	DeletedVersions int `json:"deleted_versions"`
}

// RevokeHandler crypto-shreds a package: every share and knowledge row is
// deleted, making the plaintext permanently unrecoverable. Idempotent.
// DELETE /v1/packages/{id}
func (h *PackageHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r)
	if !ok {
		httputil.HandleValidationError(w, fmt.Errorf("X-Caller-ID header is required"), h.logger)
		return
	}
	packageID := r.PathValue("id")

	deletedShares, deletedVersions, err := h.useCase.Revoke(r.Context(), callerID, packageID)
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}

	httputil.MakeJSONResponse(w, http.StatusOK, revokeResponse{
		DeletedShares:   deletedShares,
		DeletedVersions: deletedVersions,
	})
}
