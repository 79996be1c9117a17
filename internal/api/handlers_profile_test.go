package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/profile"
	"github.com/blackboxsec/blackbox/internal/service"
)

const testCatalogYAML = `
profiles:
  default:
    description: idle profile
    internet_via: "off"
  wifi_audit:
    description: wifi audit posture
    internet_via: bluetooth
    interfaces:
      enable: [wlan1]
      disable: [hci0]
    modules_enabled: [wifi_recon, wifi_active]
`

type memProfileLog struct {
	mu      sync.Mutex
	entries []*model.ProfileChange
}

func (m *memProfileLog) Append(_ context.Context, req *model.AppendProfileChangeRequest) (*model.ProfileChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := &model.ProfileChange{
		ID:          int64(len(m.entries) + 1),
		OldProfile:  req.OldProfile,
		NewProfile:  req.NewProfile,
		Reason:      req.Reason,
		TriggeredBy: req.TriggeredBy,
		CreatedAt:   time.Now().UTC(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memProfileLog) List(_ context.Context, limit int) ([]*model.ProfileChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ProfileChange, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type noopRunner struct{}

func (noopRunner) Run(context.Context, string, ...string) error { return nil }

func newTestProfileService(t *testing.T, jobs core.JobRepository, log *memProfileLog) *service.ProfileService {
	t.Helper()

	catalog, err := profile.ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	switcher := profile.NewSwitcher(profile.SwitcherOptions{
		Catalog:        catalog,
		Runner:         noopRunner{},
		Log:            log,
		InitialProfile: "default",
	})

	svc, err := service.NewProfileService(service.ProfileServiceOptions{
		Catalog:  catalog,
		Switcher: switcher,
		Jobs:     jobs,
		Log:      log,
	})
	require.NoError(t, err)
	return svc
}

func TestGetProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/profile", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var active service.ActiveProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Equal(t, "default", active.Name)
	assert.Equal(t, []string{"default", "wifi_audit"}, active.Available)
}

func TestSwitchProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/profile/switch", map[string]any{
		"profile": "wifi_audit",
		"reason":  "scheduled audit window",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var active service.ActiveProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Equal(t, "wifi_audit", active.Name)
	assert.Equal(t, "bluetooth", active.InternetVia)

	require.Len(t, f.log.entries, 1)
	entry := f.log.entries[0]
	assert.Equal(t, "wifi_audit", entry.NewProfile)
	require.NotNil(t, entry.TriggeredBy)
	assert.Equal(t, model.TriggeredByAPI, *entry.TriggeredBy)
}

func TestSwitchProfile_UnknownProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/profile/switch", map[string]any{
		"profile": "missing",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown profile")
}

func TestSwitchProfile_RefusedWhileRunning(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/jobs", map[string]any{
		"type":   "wifi_recon",
		"params": map[string]any{},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	f.jobs.setStatus(1, model.JobStatusRunning, time.Now())

	rec = f.do(t, http.MethodPost, "/api/profile/switch", map[string]any{
		"profile": "wifi_audit",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "refusing to switch")
	assert.Empty(t, f.log.entries)
}

func TestSwitchProfile_MissingName(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/profile/switch", map[string]any{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileLog(t *testing.T) {
	f := newRouterFixture(t)

	for _, name := range []string{"wifi_audit", "default"} {
		rec := f.do(t, http.MethodPost, "/api/profile/switch", map[string]any{"profile": name})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/profile/log?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []*model.ProfileChange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "default", entries[0].NewProfile)
	require.NotNil(t, entries[0].OldProfile)
	assert.Equal(t, "wifi_audit", *entries[0].OldProfile)
}
