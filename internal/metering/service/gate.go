package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/allisson/secrets/internal/errors"
)

// Gate consults an external metering collaborator over HTTP to decide
// whether a caller's tier still has quota for one more invocation. The
// collaborator, its quota policy, and its storage are entirely outside this
// subsystem; Gate only shapes the one question the pipeline needs answered.
type Gate struct {
	baseURL string
	client  *http.Client
}

// NewGate constructs a Gate pointed at baseURL. A zero timeout defaults to 10s.
func NewGate(baseURL string, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gate{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type quotaResponse struct {
	Allowed bool `json:"allowed"`
}

// Allow reports whether callerID on tier may make one more invocation.
func (g *Gate) Allow(ctx context.Context, callerID, tier string) (bool, error) {
	url := fmt.Sprintf("%s/v1/quota?caller_id=%s&tier=%s", g.baseURL, callerID, tier)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to build quota request")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", apperrors.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", apperrors.ErrExternalUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false, fmt.Errorf("%w: %w", apperrors.ErrExternalUnavailable, err)
	}

	var decoded quotaResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false, fmt.Errorf("%w: malformed quota response", apperrors.ErrExternalUnavailable)
	}
	return decoded.Allowed, nil
}

// AlwaysAllowGate is a MeteringGate that never consults an external
// collaborator; deployments without a metering backend wire this instead.
type AlwaysAllowGate struct{}

// Allow always reports true.
func (AlwaysAllowGate) Allow(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}
