package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/allisson/secrets/internal/errors"
	"github.com/allisson/secrets/internal/metering/domain"
)

// HTTPRecorder submits a UsageRecord to an external metering collaborator
// over HTTP. Queue treats any error here as non-fatal: logged, never raised.
type HTTPRecorder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRecorder constructs an HTTPRecorder pointed at baseURL. A zero
// timeout defaults to 10s.
func NewHTTPRecorder(baseURL string, timeout time.Duration) *HTTPRecorder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRecorder{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Record posts record to the collaborator's usage endpoint.
func (r *HTTPRecorder) Record(ctx context.Context, record domain.UsageRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode usage record")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/usage", bytes.NewReader(payload))
	if err != nil {
		return apperrors.Wrap(err, "failed to build usage request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: status %d", apperrors.ErrExternalUnavailable, resp.StatusCode)
	}
	return nil
}

// NoopRecorder discards every record; deployments without a metering
// backend wire this instead of HTTPRecorder.
type NoopRecorder struct{}

// Record always succeeds and does nothing.
func (NoopRecorder) Record(_ context.Context, _ domain.UsageRecord) error {
	return nil
}
