package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrets/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUseCase struct {
	uploadShare string
	uploadErr   error
	readPlain   []byte
	readErr     error
	revokeS     int
	revokeV     int
	revokeErr   error
}

func (f *fakeUseCase) Upload(_ context.Context, _, _ string, _ []byte) (string, error) {
	return f.uploadShare, f.uploadErr
}

func (f *fakeUseCase) Read(_ context.Context, _, _ string) ([]byte, error) {
	return f.readPlain, f.readErr
}

func (f *fakeUseCase) Revoke(_ context.Context, _, _ string) (int, int, error) {
	return f.revokeS, f.revokeV, f.revokeErr
}

func newTestMux(handler *PackageHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/packages/{id}/upload", handler.UploadHandler)
	mux.HandleFunc("GET /v1/packages/{id}", handler.ReadHandler)
	mux.HandleFunc("DELETE /v1/packages/{id}", handler.RevokeHandler)
	return mux
}

func TestUploadHandler_MissingCallerID(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{}, discardLogger())
	mux := newTestMux(handler)

	body := bytes.NewBufferString(`{"plaintext":"aGVsbG8="}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/packages/pkg-1/upload", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_InvalidBase64(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{}, discardLogger())
	mux := newTestMux(handler)

	body := bytes.NewBufferString(`{"plaintext":"not-base64!!"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/packages/pkg-1/upload", body)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUploadHandler_Success(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{uploadShare: "deadbeef"}, discardLogger())
	mux := newTestMux(handler)

	body := bytes.NewBufferString(`{"plaintext":"aGVsbG8="}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/packages/pkg-1/upload", body)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deadbeef", resp.ExpertShare)
}

func TestUploadHandler_UseCaseError(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{uploadErr: apperrors.ErrForbidden}, discardLogger())
	mux := newTestMux(handler)

	body := bytes.NewBufferString(`{"plaintext":"aGVsbG8="}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/packages/pkg-1/upload", body)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReadHandler_Success(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{readPlain: []byte("top secret rule")}, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/packages/pkg-1", nil)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp readResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	plaintext, err := base64.StdEncoding.DecodeString(resp.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, "top secret rule", string(plaintext))
}

func TestReadHandler_NotFound(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{readErr: apperrors.ErrNoKnowledge}, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/packages/pkg-1", nil)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevokeHandler_Success(t *testing.T) {
	handler := NewPackageHandler(&fakeUseCase{revokeS: 2, revokeV: 3}, discardLogger())
	mux := newTestMux(handler)

	req := httptest.NewRequest(http.MethodDelete, "/v1/packages/pkg-1", nil)
	req.Header.Set("X-Caller-ID", "author-1")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp revokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.DeletedShares)
	assert.Equal(t, 3, resp.DeletedVersions)
}
