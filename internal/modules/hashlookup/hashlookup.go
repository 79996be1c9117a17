// Package hashlookup implements the hash_lookup job handler: it dispatches on
// the params mode field and queries external hash/breach intelligence
// services, accumulating findings in hash_results.
package hashlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/worker"
)

// Modes dispatched on within hash_lookup params.
const (
	ModeHash      = "hash"
	ModeLeakCheck = "leakcheck"
)

// Options holds the dependencies for creating a Handler. Nil clients mean
// the corresponding service is disabled.
type Options struct {
	LeakCheck       *LeakCheckClient
	OnlineHashCrack *OnlineHashCrackClient

	// CacheTTL controls how long leakcheck answers are cached when the run
	// store carries a cache. Zero disables caching.
	CacheTTL time.Duration
}

// Handler executes hash_lookup jobs.
type Handler struct {
	leakcheck *LeakCheckClient
	ohc       *OnlineHashCrackClient
	cacheTTL  time.Duration
}

// New creates a hash_lookup Handler.
func New(opts Options) *Handler {
	return &Handler{
		leakcheck: opts.LeakCheck,
		ohc:       opts.OnlineHashCrack,
		cacheTTL:  opts.CacheTTL,
	}
}

// Run is the worker.HandlerFunc for hash_lookup jobs.
//
// Expected params:
//
//	{"mode": "hash", "value": "ABCD...", "hash_algo": "md5",
//	 "services": ["onlinehashcrack"]}
//
//	{"mode": "leakcheck", "value": "user@example.com",
//	 "services": ["leakcheck"]}
func (h *Handler) Run(ctx context.Context, rc *worker.RunContext) error {
	params, err := rc.Job.ParamsMap()
	if err != nil {
		return err
	}

	mode, _ := params["mode"].(string)
	services := stringSlice(params["services"])

	rc.Logger.InfoContext(ctx, "hash lookup starting", "mode", mode, "services", services)

	switch mode {
	case ModeHash:
		return h.runHashMode(ctx, rc, params, services)
	case ModeLeakCheck:
		return h.runLeakCheckMode(ctx, rc, params, services)
	default:
		return fmt.Errorf("unsupported hash_lookup mode %q", mode)
	}
}

// runHashMode submits the hash to cracking services. Plaintext is rarely
// returned synchronously, so only an attempt marker is recorded; there is no
// result polling.
func (h *Handler) runHashMode(
	ctx context.Context,
	rc *worker.RunContext,
	params map[string]any,
	services []string,
) error {
	value, err := requireStringParam(params, "value", ModeHash)
	if err != nil {
		return err
	}
	hashAlgo, _ := params["hash_algo"].(string)
	if hashAlgo == "" {
		hashAlgo = "unknown"
	}

	if !contains(services, model.ServiceOnlineHashCrack) {
		fmt.Fprintln(rc.Stdout, "no supported cracking service requested; nothing to do")
		return nil
	}

	if h.ohc == nil {
		fmt.Fprintln(rc.Stdout, "onlinehashcrack is disabled; skipping submission")
	} else if err := h.ohc.Submit(ctx, value, 0); err != nil {
		// The attempt marker is recorded either way; the submission outcome
		// only shows in the run output.
		rc.Logger.ErrorContext(ctx, "onlinehashcrack submission failed", "error", err)
		fmt.Fprintf(rc.Stderr, "onlinehashcrack submission failed: %v\n", err)
	} else {
		fmt.Fprintf(rc.Stdout, "submitted %s hash to onlinehashcrack\n", hashAlgo)
	}

	result, err := rc.Store.HashResults.Create(ctx, &model.CreateHashResultRequest{
		JobID:   &rc.Job.ID,
		Service: model.ServiceOnlineHashCrack,
		Hash:    value,
	})
	if err != nil {
		return fmt.Errorf("store cracking attempt: %w", err)
	}

	fmt.Fprintf(rc.Stdout, "recorded cracking attempt (result id %d)\n", result.ID)
	return nil
}

// runLeakCheckMode queries the breach database and stores a summarized count.
func (h *Handler) runLeakCheckMode(
	ctx context.Context,
	rc *worker.RunContext,
	params map[string]any,
	services []string,
) error {
	value, err := requireStringParam(params, "value", ModeLeakCheck)
	if err != nil {
		return err
	}

	if !contains(services, model.ServiceLeakCheck) {
		fmt.Fprintln(rc.Stdout, "leakcheck not in requested services; nothing to do")
		return nil
	}
	if h.leakcheck == nil {
		fmt.Fprintln(rc.Stdout, "leakcheck is disabled; skipping lookup")
		return nil
	}

	resp, err := h.lookupLeakCheck(ctx, rc, value)
	if err != nil {
		return err
	}

	summary := resp.Summary()
	result, storeErr := rc.Store.HashResults.Create(ctx, &model.CreateHashResultRequest{
		JobID:     &rc.Job.ID,
		Service:   model.ServiceLeakCheck,
		Hash:      value,
		Plaintext: &summary,
	})
	if storeErr != nil {
		return fmt.Errorf("store leakcheck result: %w", storeErr)
	}

	fmt.Fprintf(rc.Stdout, "leakcheck: %s (result id %d)\n", summary, result.ID)
	return nil
}

// lookupLeakCheck consults the cache before hitting the service. Cache
// failures degrade to a direct lookup.
func (h *Handler) lookupLeakCheck(
	ctx context.Context,
	rc *worker.RunContext,
	value string,
) (*LeakCheckResponse, error) {
	cacheKey := "leakcheck:" + value
	useCache := rc.Store.Cache != nil && h.cacheTTL > 0

	if useCache {
		cached, err := rc.Store.Cache.Get(ctx, cacheKey)
		if err != nil {
			rc.Logger.WarnContext(ctx, "leakcheck cache read failed", "error", err)
		} else if cached != nil {
			var resp LeakCheckResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				rc.Logger.DebugContext(ctx, "leakcheck cache hit", "value", value)
				fmt.Fprintln(rc.Stdout, "leakcheck: answer served from cache")
				return &resp, nil
			}
		}
	}

	resp, err := h.leakcheck.Check(ctx, value)
	if err != nil {
		return nil, err
	}

	if useCache {
		if encoded, err := json.Marshal(resp); err == nil {
			if err := rc.Store.Cache.Set(ctx, cacheKey, encoded, h.cacheTTL); err != nil {
				rc.Logger.WarnContext(ctx, "leakcheck cache write failed", "error", err)
			}
		}
	}
	return resp, nil
}

func requireStringParam(params map[string]any, key, mode string) (string, error) {
	value, _ := params[key].(string)
	if value == "" {
		return "", fmt.Errorf("missing %q param for mode %q", key, mode)
	}
	return value, nil
}

func stringSlice(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
