package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/blackboxsec/blackbox/internal/domain/model"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - api",
			input: "api",
			expected: map[ServiceMode]bool{
				ServiceModeAPI: true,
			},
			expectError: false,
		},
		{
			name:  "single service - worker",
			input: "worker",
			expected: map[ServiceMode]bool{
				ServiceModeWorker: true,
			},
			expectError: false,
		},
		{
			name:  "both services",
			input: "api,worker",
			expected: map[ServiceMode]bool{
				ServiceModeAPI:    true,
				ServiceModeWorker: true,
			},
			expectError: false,
		},
		{
			name:  "services with spaces",
			input: " api , worker ",
			expected: map[ServiceMode]bool{
				ServiceModeAPI:    true,
				ServiceModeWorker: true,
			},
			expectError: false,
		},
		{
			name:  "duplicate services",
			input: "api,api,worker",
			expected: map[ServiceMode]bool{
				ServiceModeAPI:    true,
				ServiceModeWorker: true,
			},
			expectError: false,
		},
		{
			name:        "empty string",
			input:       "",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "api,invalid-service",
			expected:    nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d services, got %d", len(tt.expected), len(result))
				return
			}

			for service, expected := range tt.expected {
				if result[service] != expected {
					t.Errorf("expected service %s to be %v, got %v", service, expected, result[service])
				}
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name           string
		services       string
		expectedAPI    bool
		expectedWorker bool
	}{
		{
			name:           "api only",
			services:       "api",
			expectedAPI:    true,
			expectedWorker: false,
		},
		{
			name:           "worker only",
			services:       "worker",
			expectedAPI:    false,
			expectedWorker: true,
		},
		{
			name:           "both",
			services:       "api,worker",
			expectedAPI:    true,
			expectedWorker: true,
		},
		{
			name:           "invalid",
			services:       "invalid-service",
			expectedAPI:    false,
			expectedWorker: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if cfg.IsAPIEnabled() != tt.expectedAPI {
				t.Errorf("IsAPIEnabled(): expected %v, got %v", tt.expectedAPI, cfg.IsAPIEnabled())
			}

			if cfg.IsWorkerEnabled() != tt.expectedWorker {
				t.Errorf("IsWorkerEnabled(): expected %v, got %v", tt.expectedWorker, cfg.IsWorkerEnabled())
			}
		})
	}
}

func TestAppConfig_ParseWorkerEnv(t *testing.T) {
	t.Setenv("WORKER_POLL_INTERVAL", "2s")
	t.Setenv("WORKER_HANDLER_TIMEOUT", "1m")
	t.Setenv("WORKER_JOB_TYPES", "wifi_recon, hash_lookup")
	t.Setenv("WORKER_STALE_AFTER", "30m")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Worker.PollInterval != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %v", cfg.Worker.PollInterval)
	}
	if cfg.Worker.HandlerTimeout != time.Minute {
		t.Errorf("expected handler timeout 1m, got %v", cfg.Worker.HandlerTimeout)
	}
	if cfg.Worker.StaleAfter != 30*time.Minute {
		t.Errorf("expected stale after 30m, got %v", cfg.Worker.StaleAfter)
	}

	types := cfg.Worker.TypeFilter()
	expected := []model.JobType{model.JobTypeWifiRecon, model.JobTypeHashLookup}
	if len(types) != len(expected) {
		t.Fatalf("expected %d job types, got %d", len(expected), len(types))
	}
	for i, typ := range types {
		if typ != expected[i] {
			t.Errorf("expected job type %s at index %d, got %s", expected[i], i, typ)
		}
	}
}

func TestWorkerConfig_Sanitize(t *testing.T) {
	cfg := WorkerConfig{
		PollInterval:   time.Millisecond,
		HandlerTimeout: -time.Second,
		StaleAfter:     time.Second,
		JobTypes:       []string{" wifi_recon ", "", "bt_recon"},
	}

	cfg.Sanitize()

	if cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("expected poll interval clamped to 100ms, got %v", cfg.PollInterval)
	}
	if cfg.HandlerTimeout != 0 {
		t.Errorf("expected handler timeout clamped to 0, got %v", cfg.HandlerTimeout)
	}
	if cfg.StaleAfter != time.Minute {
		t.Errorf("expected stale after clamped to 1m, got %v", cfg.StaleAfter)
	}
	if len(cfg.JobTypes) != 2 || cfg.JobTypes[0] != "wifi_recon" || cfg.JobTypes[1] != "bt_recon" {
		t.Errorf("expected trimmed job types, got %v", cfg.JobTypes)
	}
}

func TestHashServicesConfig_Sanitize(t *testing.T) {
	cfg := HashServicesConfig{
		LeakCheck: LeakCheckConfig{
			Enabled: true,
			BaseURL: " https://leakcheck.io/api/public/ ",
		},
		OnlineHashCrack: OnlineHashCrackConfig{
			Enabled: true,
			BaseURL: " ",
		},
	}

	cfg.Sanitize()

	if cfg.LeakCheck.BaseURL != "https://leakcheck.io/api/public" {
		t.Errorf("expected trimmed base url, got %q", cfg.LeakCheck.BaseURL)
	}
	if cfg.LeakCheck.Timeout <= 0 {
		t.Errorf("expected default timeout, got %v", cfg.LeakCheck.Timeout)
	}
	if cfg.OnlineHashCrack.Enabled {
		t.Error("expected onlinehashcrack to be disabled without a base url")
	}
}

func TestProfilesConfig_Sanitize(t *testing.T) {
	cfg := ProfilesConfig{
		CatalogPath:    "  ",
		Default:        "",
		CommandTimeout: 0,
	}

	cfg.Sanitize()

	if cfg.CatalogPath != "profiles.yaml" {
		t.Errorf("expected default catalog path, got %q", cfg.CatalogPath)
	}
	if cfg.Default != "default" {
		t.Errorf("expected default profile name, got %q", cfg.Default)
	}
	if cfg.CommandTimeout != 30*time.Second {
		t.Errorf("expected default command timeout, got %v", cfg.CommandTimeout)
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityConfig{
		Metrics: ObservabilityMetricsConfig{
			Enabled:       true,
			StatsdAddress: "  ",
		},
		Notifications: ObservabilityNotificationsConfig{
			Enabled:    true,
			Timeout:    0,
			RetryLimit: -1,
			Slack: SlackNotificationConfig{
				Enabled:    true,
				WebhookURL: " ",
			},
			PagerDuty: PagerDutyNotificationConfig{
				Enabled:    true,
				RoutingKey: "rk-123",
				Source:     "  ",
			},
		},
	}

	cfg.Sanitize()

	if cfg.Metrics.IsEnabled() {
		t.Error("expected metrics to be disabled without a statsd address")
	}
	if cfg.Notifications.Timeout != 5*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Notifications.Timeout)
	}
	if cfg.Notifications.RetryLimit != 0 {
		t.Errorf("expected retry limit clamped to 0, got %d", cfg.Notifications.RetryLimit)
	}
	if cfg.Notifications.Slack.Enabled {
		t.Error("expected slack to be disabled without a webhook url")
	}
	if !cfg.Notifications.PagerDuty.Enabled {
		t.Error("expected pagerduty to stay enabled with a routing key")
	}
	if cfg.Notifications.PagerDuty.Source != "blackbox" {
		t.Errorf("expected default pagerduty source, got %q", cfg.Notifications.PagerDuty.Source)
	}
	if cfg.Notifications.Slack.Username != "blackbox" {
		t.Errorf("expected default slack username, got %q", cfg.Notifications.Slack.Username)
	}
}

func TestObservabilityNotifications_DisabledMasterSwitch(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled: false,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/x",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "rk",
		},
	}

	cfg.Sanitize()

	if cfg.Slack.Enabled || cfg.PagerDuty.Enabled {
		t.Error("expected all sinks disabled when notifications are off")
	}
}
