package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_NoneBackend_ReturnsHMACWitness(t *testing.T) {
	a := New(Config{WitnessBackend: WitnessBackendNone, HMACSecret: []byte("top-secret")}, nil)

	ref := a.Register(context.Background(), "pkg-1", "contenthash", "caller-1")
	assert.True(t, strings.HasPrefix(ref, "sha256:"))
	assert.Len(t, ref, len("sha256:")+64)
}

func TestRegister_NoneBackend_DeterministicPerInput(t *testing.T) {
	a := New(Config{WitnessBackend: WitnessBackendNone, HMACSecret: []byte("top-secret")}, nil)

	ref1 := a.Register(context.Background(), "pkg-1", "hash-a", "caller-1")
	ref2 := a.Register(context.Background(), "pkg-1", "hash-a", "caller-1")
	ref3 := a.Register(context.Background(), "pkg-1", "hash-b", "caller-1")

	assert.Equal(t, ref1, ref2)
	assert.NotEqual(t, ref1, ref3)
}

func TestRegister_GitHubBackend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/commits", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"sha":"deadbeefcafef00d"}]`))
	}))
	defer server.Close()

	a := New(Config{
		WitnessBackend: WitnessBackendGitHub,
		HMACSecret:     []byte("fallback-secret"),
		GitHubRepo:     "owner/repo",
		GitHubAPIBase:  server.URL,
	}, nil)

	ref := a.Register(context.Background(), "pkg-1", "contenthash", "caller-1")
	assert.Equal(t, "github:deadbeefcafef00d", ref)
}

func TestRegister_GitHubBackend_FallsBackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := New(Config{
		WitnessBackend: WitnessBackendGitHub,
		HMACSecret:     []byte("fallback-secret"),
		GitHubRepo:     "owner/repo",
		GitHubAPIBase:  server.URL,
	}, nil)

	ref := a.Register(context.Background(), "pkg-1", "contenthash", "caller-1")
	assert.True(t, strings.HasPrefix(ref, "sha256:"))
}

func TestRegister_GitHubBackend_FallsBackOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	a := New(Config{
		WitnessBackend: WitnessBackendGitHub,
		HMACSecret:     []byte("fallback-secret"),
		GitHubRepo:     "owner/repo",
		GitHubAPIBase:  server.URL,
	}, nil)

	ref := a.Register(context.Background(), "pkg-1", "contenthash", "caller-1")
	assert.True(t, strings.HasPrefix(ref, "sha256:"))
}

func TestRegister_GitHubBackend_MissingRepoFallsBack(t *testing.T) {
	a := New(Config{
		WitnessBackend: WitnessBackendGitHub,
		HMACSecret:     []byte("fallback-secret"),
	}, nil)

	ref := a.Register(context.Background(), "pkg-1", "contenthash", "caller-1")
	require.True(t, strings.HasPrefix(ref, "sha256:"), "missing repo must fall back to hmac witness")
}
