package hashlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LeakCheckConfig captures the subset of LeakCheck public API behaviour we
// need.
type LeakCheckConfig struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// LeakCheckClient queries the LeakCheck public breach database.
type LeakCheckClient struct {
	baseURL string
	client  *http.Client
}

// LeakCheckResponse is the decoded public API answer. Found counts the
// breaches the queried identifier appears in.
type LeakCheckResponse struct {
	Success bool     `json:"success"`
	Found   int      `json:"found"`
	Sources []string `json:"sources"`
}

// NewLeakCheckClient builds a LeakCheck client. Callers should pass a
// validated config.
func NewLeakCheckClient(cfg LeakCheckConfig) (*LeakCheckClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("leakcheck base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &LeakCheckClient{
		baseURL: baseURL,
		client:  hc,
	}, nil
}

// Check queries the public API for the given identifier (email, username or
// truncated hash per the LeakCheck docs).
func (c *LeakCheckClient) Check(ctx context.Context, value string) (*LeakCheckResponse, error) {
	reqURL := c.baseURL + "?check=" + url.QueryEscape(value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create leakcheck request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leakcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("leakcheck %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded LeakCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode leakcheck response: %w", err)
	}
	return &decoded, nil
}

// Summary renders the breach count the way results are stored: a short
// human-readable line in the plaintext field.
func (r *LeakCheckResponse) Summary() string {
	if r.Found > 0 {
		return fmt.Sprintf("%d breach(es) detected", r.Found)
	}
	return "no breaches found"
}
