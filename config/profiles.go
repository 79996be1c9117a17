package config

import (
	"strings"
	"time"
)

// ProfilesConfig controls network profile switching.
type ProfilesConfig struct {
	// CatalogPath is the path to the YAML profile catalog.
	CatalogPath string `env:"PROFILE_CATALOG_PATH" envDefault:"profiles.yaml"`

	// Default is the profile assumed at startup before any switch is logged.
	Default string `env:"PROFILE_DEFAULT" envDefault:"default"`

	// CommandTimeout bounds each interface enable/disable command run
	// during a profile switch.
	CommandTimeout time.Duration `env:"PROFILE_COMMAND_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to profile configuration values.
func (p *ProfilesConfig) Sanitize() {
	p.CatalogPath = strings.TrimSpace(p.CatalogPath)
	if p.CatalogPath == "" {
		p.CatalogPath = "profiles.yaml"
	}
	p.Default = strings.TrimSpace(p.Default)
	if p.Default == "" {
		p.Default = "default"
	}
	if p.CommandTimeout <= 0 {
		p.CommandTimeout = 30 * time.Second
	}
}
