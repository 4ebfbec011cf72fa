package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secrets/internal/metrics"
)

func TestMetricsServer_ServesMetricsEndpoint(t *testing.T) {
	provider, err := metrics.NewProvider("test")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(t.Context()) }()

	server := NewMetricsServer("localhost", 0, discardLogger(), provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.server.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsServer_NilProviderHasNoMetricsRoute(t *testing.T) {
	server := NewMetricsServer("localhost", 0, discardLogger(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.server.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
