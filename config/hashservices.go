package config

import (
	"strings"
	"time"
)

// HashServicesConfig groups configuration for the external hash intelligence
// services queried by hash lookup jobs.
type HashServicesConfig struct {
	LeakCheck       LeakCheckConfig       `envPrefix:"LEAKCHECK_"`
	OnlineHashCrack OnlineHashCrackConfig `envPrefix:"ONLINEHASHCRACK_"`
}

// Sanitize applies guardrails to hash service configuration values.
func (h *HashServicesConfig) Sanitize() {
	h.LeakCheck.sanitize()
	h.OnlineHashCrack.sanitize()
}

// LeakCheckConfig controls breach database lookups against the LeakCheck
// public API.
type LeakCheckConfig struct {
	Enabled bool          `env:"ENABLED"  envDefault:"true"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://leakcheck.io/api/public"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
}

func (c *LeakCheckConfig) sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.Enabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// OnlineHashCrackConfig controls hash submission to the OnlineHashCrack
// service. Submissions are asynchronous on the provider side, so a lookup
// only records that an attempt was made.
type OnlineHashCrackConfig struct {
	Enabled bool          `env:"ENABLED"  envDefault:"false"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.onlinehashcrack.com"`
	Email   string        `env:"EMAIL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`
}

func (c *OnlineHashCrackConfig) sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Email = strings.TrimSpace(c.Email)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.BaseURL == "" {
		c.Enabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
