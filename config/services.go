package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeAPI runs the HTTP API server.
	ServiceModeAPI ServiceMode = "api"
	// ServiceModeWorker runs the job execution worker.
	ServiceModeWorker ServiceMode = "worker"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeAPI,
		ServiceModeWorker,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeAPI, ServiceModeWorker:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: api, worker)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// WorkerConfig contains job worker service configuration.
type WorkerConfig struct {
	// PollInterval is the fallback claim interval used when no queue
	// notification arrives.
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"5s"`

	// HandlerTimeout bounds the execution of a single job handler.
	// Zero means no timeout.
	HandlerTimeout time.Duration `env:"WORKER_HANDLER_TIMEOUT" envDefault:"0"`

	// JobTypes restricts the worker to claiming only the listed job types.
	// Empty means claim everything.
	JobTypes []string `env:"WORKER_JOB_TYPES" envDefault:"" envSeparator:","`

	// StaleAfter is the running-job age beyond which a job is reported as
	// stale by the stale-jobs endpoint.
	StaleAfter time.Duration `env:"WORKER_STALE_AFTER" envDefault:"1h"`
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.PollInterval < 100*time.Millisecond {
		w.PollInterval = 100 * time.Millisecond
	}
	if w.HandlerTimeout < 0 {
		w.HandlerTimeout = 0
	}
	if w.StaleAfter < time.Minute {
		w.StaleAfter = time.Minute
	}

	filtered := w.JobTypes[:0]
	for _, t := range w.JobTypes {
		t = strings.TrimSpace(t)
		if t != "" {
			filtered = append(filtered, t)
		}
	}
	w.JobTypes = filtered
}

// TypeFilter returns the configured job types as model values.
func (w *WorkerConfig) TypeFilter() []model.JobType {
	if len(w.JobTypes) == 0 {
		return nil
	}
	types := make([]model.JobType, 0, len(w.JobTypes))
	for _, t := range w.JobTypes {
		types = append(types, model.JobType(t))
	}
	return types
}
