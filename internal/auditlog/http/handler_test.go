package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secrets/internal/auditlog/domain"
	apperrors "github.com/allisson/secrets/internal/errors"
	vaultDomain "github.com/allisson/secrets/internal/skillvault/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUseCase struct {
	valid bool
	err   error
}

func (f *fakeUseCase) Append(_ context.Context, _, _, _ string, _ *int64) (*domain.Entry, error) {
	return nil, nil
}

func (f *fakeUseCase) VerifyChain(_ context.Context, _ string) (bool, error) {
	return f.valid, f.err
}

func (f *fakeUseCase) CountRecent(_ context.Context, _, _ string, _ time.Duration) (int, error) {
	return 0, nil
}

type fakePackageRepo struct {
	packages map[string]*vaultDomain.Package
}

func (f *fakePackageRepo) Get(_ context.Context, packageID string) (*vaultDomain.Package, error) {
	pkg, ok := f.packages[packageID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return pkg, nil
}

func newTestMux(handler *AuditHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/packages/{id}/audit/verify", handler.VerifyHandler)
	return mux
}

func TestVerifyHandler_PackageNotFound(t *testing.T) {
	handler := NewAuditHandler(&fakeUseCase{}, &fakePackageRepo{packages: map[string]*vaultDomain.Package{}}, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/packages/pkg-1/audit/verify", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyHandler_ChainIntact(t *testing.T) {
	repo := &fakePackageRepo{packages: map[string]*vaultDomain.Package{
		"pkg-1": {PackageID: "pkg-1", InternalID: "internal-1", AuthorID: "author-1"},
	}}
	handler := NewAuditHandler(&fakeUseCase{valid: true}, repo, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/packages/pkg-1/audit/verify", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp verifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
}

func TestVerifyHandler_ChainBroken(t *testing.T) {
	repo := &fakePackageRepo{packages: map[string]*vaultDomain.Package{
		"pkg-1": {PackageID: "pkg-1", InternalID: "internal-1", AuthorID: "author-1"},
	}}
	handler := NewAuditHandler(&fakeUseCase{valid: false}, repo, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/packages/pkg-1/audit/verify", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp verifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
}
