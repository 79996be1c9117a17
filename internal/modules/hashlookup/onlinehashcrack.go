package hashlookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OnlineHashCrackConfig captures the OnlineHashCrack v2 API settings.
type OnlineHashCrackConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// OnlineHashCrackClient submits hashes to the OnlineHashCrack service.
// Cracking is asynchronous on the provider side; a submission never returns
// a plaintext directly.
type OnlineHashCrackClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOnlineHashCrackClient builds an OnlineHashCrack client.
func NewOnlineHashCrackClient(cfg OnlineHashCrackConfig) (*OnlineHashCrackClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("onlinehashcrack base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("onlinehashcrack api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &OnlineHashCrackClient{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  hc,
	}, nil
}

type onlineHashCrackSubmission struct {
	APIKey     string   `json:"api_key"`
	AgreeTerms string   `json:"agree_terms"`
	AlgoMode   int      `json:"algo_mode"`
	Hashes     []string `json:"hashes"`
}

// Submit posts one hash for cracking. The provider acknowledges the
// submission; results arrive out of band.
func (c *OnlineHashCrackClient) Submit(ctx context.Context, hashValue string, algoMode int) error {
	payload := onlineHashCrackSubmission{
		APIKey:     c.apiKey,
		AgreeTerms: "yes",
		AlgoMode:   algoMode,
		Hashes:     []string{hashValue},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode onlinehashcrack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create onlinehashcrack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("onlinehashcrack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("onlinehashcrack %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain onlinehashcrack response: %w", err)
	}
	return nil
}
