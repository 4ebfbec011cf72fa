// Package http provides the HTTP handler for the invocation pipeline.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	invocationDomain "github.com/allisson/secrets/internal/invocation/domain"
	"github.com/allisson/secrets/internal/invocation/http/dto"
	invocationUsecase "github.com/allisson/secrets/internal/invocation/usecase"

	"github.com/allisson/secrets/internal/httputil"
	customValidation "github.com/allisson/secrets/internal/validation"
)

// InvokeHandler handles HTTP requests for skill invocation.
type InvokeHandler struct {
	useCase invocationUsecase.UseCase
	logger  *slog.Logger
}

// NewInvokeHandler creates a new invocation HTTP handler.
func NewInvokeHandler(useCase invocationUsecase.UseCase, logger *slog.Logger) *InvokeHandler {
	return &InvokeHandler{useCase: useCase, logger: logger}
}

type invokeResponse struct {
	Conclusion string `json:"conclusion"`
	Mode       string `json:"mode"`
	Notice     string `json:"notice,omitempty"`
}

// InvokeHandler runs the ten-step invocation pipeline for a package.
// POST /v1/packages/{id}/invoke
func (h *InvokeHandler) InvokeHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r)
	if !ok {
		httputil.HandleValidationError(w, fmt.Errorf("X-Caller-ID header is required"), h.logger)
		return
	}
	packageID := r.PathValue("id")

	var req dto.InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.HandleValidationError(w, fmt.Errorf("invalid request body: %w", err), h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleError(w, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.useCase.Invoke(r.Context(), invocationDomain.Request{
		CallerID:    callerID,
		PackageID:   packageID,
		Query:       req.Query,
		ExpertShare: req.ExpertShare,
		LabKey:      req.LabKey,
		Tier:        req.Tier,
	})
	if err != nil {
		httputil.HandleError(w, err, h.logger)
		return
	}

	httputil.MakeJSONResponse(w, http.StatusOK, invokeResponse{
		Conclusion: result.Conclusion,
		Mode:       result.Mode,
		Notice:     result.Notice,
	})
}
